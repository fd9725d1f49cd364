package config

import (
	"fmt"
	"sync/atomic"

	"github.com/neox5/countbox/internal/catalog"
)

// CatalogStore holds the catalog handed to newly mounted sessions. It is
// swapped atomically on reload; sessions keep the catalog they started with.
type CatalogStore struct {
	current  atomic.Pointer[catalog.Catalog]
	version  atomic.Uint64
	onChange func(*catalog.Catalog)
}

// NewCatalogStore creates a store holding cat.
func NewCatalogStore(cat *catalog.Catalog) (*CatalogStore, error) {
	if cat == nil {
		return nil, fmt.Errorf("catalog cannot be nil")
	}
	s := &CatalogStore{}
	s.current.Store(cat)
	s.version.Store(1)
	return s, nil
}

// Catalog returns the current catalog.
func (s *CatalogStore) Catalog() *catalog.Catalog {
	return s.current.Load()
}

// Version increments on every successful swap.
func (s *CatalogStore) Version() uint64 {
	return s.version.Load()
}

// OnChange registers a callback for successful swaps. Must be set before
// the store is shared.
func (s *CatalogStore) OnChange(fn func(*catalog.Catalog)) {
	s.onChange = fn
}

// Swap replaces the current catalog.
func (s *CatalogStore) Swap(cat *catalog.Catalog) error {
	if cat == nil {
		return fmt.Errorf("catalog cannot be nil")
	}
	s.current.Store(cat)
	s.version.Add(1)
	if s.onChange != nil {
		s.onChange(cat)
	}
	return nil
}

// Reload re-reads the config file at path and swaps in its catalog. Other
// sections of the file are ignored; they need a restart.
func (s *CatalogStore) Reload(path string) error {
	cfg, err := Load(path)
	if err != nil {
		return err
	}
	cat, err := cfg.Catalog()
	if err != nil {
		return err
	}
	return s.Swap(cat)
}
