package pacman

import "context"

// MockRunner implements Executor for testing.
type MockRunner struct {
	ForeignPackagesFunc func(ctx context.Context) (Inventory, error)
	Calls               int
}

// ForeignPackages returns the configured inventory
func (m *MockRunner) ForeignPackages(ctx context.Context) (Inventory, error) {
	m.Calls++
	if m.ForeignPackagesFunc != nil {
		return m.ForeignPackagesFunc(ctx)
	}
	return Inventory{}, nil
}

// NewMockInventory returns a MockRunner that reports the given name/version pairs
func NewMockInventory(versions map[string]string) *MockRunner {
	return &MockRunner{
		ForeignPackagesFunc: func(ctx context.Context) (Inventory, error) {
			inv := make(Inventory, len(versions))
			for name, version := range versions {
				inv[name] = LocalPackage{Name: name, Version: version}
			}
			return inv, nil
		},
	}
}

// Ensure MockRunner implements Executor interface
var _ Executor = (*MockRunner)(nil)
