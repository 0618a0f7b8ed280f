package aur

import (
	"context"
	"strings"
)

// MockClient implements Lookup for testing.
// Each method can be configured with a custom function to control behavior.
type MockClient struct {
	InfoFunc   func(ctx context.Context, names []string) ([]Package, error)
	SearchFunc func(ctx context.Context, query string, by SearchBy) ([]Package, error)

	InfoCalls   [][]string
	SearchCalls []string
}

// NewMockIndex returns a MockClient backed by a fixed set of packages.
// Info returns the requested names that exist; Search matches names by substring.
func NewMockIndex(pkgs ...Package) *MockClient {
	index := make(map[string]Package, len(pkgs))
	for _, p := range pkgs {
		index[p.Name] = p
	}
	return &MockClient{
		InfoFunc: func(ctx context.Context, names []string) ([]Package, error) {
			var out []Package
			for _, name := range names {
				if p, ok := index[name]; ok {
					out = append(out, p)
				}
			}
			return out, nil
		},
		SearchFunc: func(ctx context.Context, query string, by SearchBy) ([]Package, error) {
			var out []Package
			for _, p := range pkgs {
				if strings.Contains(p.Name, query) {
					out = append(out, p)
				}
			}
			return out, nil
		},
	}
}

// Info returns package metadata
func (m *MockClient) Info(ctx context.Context, names []string) ([]Package, error) {
	m.InfoCalls = append(m.InfoCalls, names)
	if m.InfoFunc != nil {
		return m.InfoFunc(ctx, names)
	}
	return nil, nil
}

// Search returns search results
func (m *MockClient) Search(ctx context.Context, query string, by SearchBy) ([]Package, error) {
	m.SearchCalls = append(m.SearchCalls, query)
	if m.SearchFunc != nil {
		return m.SearchFunc(ctx, query, by)
	}
	return nil, nil
}

// Ensure MockClient implements Lookup interface
var _ Lookup = (*MockClient)(nil)
