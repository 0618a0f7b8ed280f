package pacman

import (
	"context"
	"sort"
)

// Executor defines the interface for querying the local package database.
// This interface allows for mocking pacman in tests.
type Executor interface {
	// ForeignPackages returns packages not found in any sync database (pacman -Qm)
	ForeignPackages(ctx context.Context) (Inventory, error)
}

// LocalPackage is one installed package as reported by pacman
type LocalPackage struct {
	Name    string
	Version string
}

// Inventory maps package names to installed packages
type Inventory map[string]LocalPackage

// Names returns the package names in sorted order
func (inv Inventory) Names() []string {
	names := make([]string, 0, len(inv))
	for name := range inv {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Without returns a copy of the inventory minus the given names
func (inv Inventory) Without(ignore map[string]bool) Inventory {
	out := make(Inventory, len(inv))
	for name, pkg := range inv {
		if ignore[name] {
			continue
		}
		out[name] = pkg
	}
	return out
}
