package core

import (
	"context"
	"fmt"

	"ripperdoc/internal/catalog"
	"ripperdoc/pkg/domain"
)

// GetAllCyberware returns the full catalog ordered by name.
func (s *Service) GetAllCyberware() []domain.CyberwareCatalogItem {
	return s.store.ListCyberware()
}

// GetCyberwareByCategory returns the catalog entries in category.
func (s *Service) GetCyberwareByCategory(category domain.Category) ([]domain.CyberwareCatalogItem, error) {
	if !category.Valid() {
		return nil, domain.NewError(domain.CodeInvalidArgument, fmt.Sprintf("unknown category %q", category))
	}
	return catalog.FilterCategory(s.store.ListCyberware(), category), nil
}

// GetCyberware returns one catalog entry.
func (s *Service) GetCyberware(id string) (domain.CyberwareCatalogItem, error) {
	item, ok := s.store.GetCyberware(id)
	if !ok {
		return domain.CyberwareCatalogItem{}, cyberwareNotFound(id)
	}
	return item, nil
}

// ListCyberware filters by category (empty means all) and orders by sort.
func (s *Service) ListCyberware(category domain.Category, sort string) ([]domain.CyberwareCatalogItem, error) {
	key, err := catalog.ParseSortKey(sort)
	if err != nil {
		return nil, err
	}
	items := s.store.ListCyberware()
	if category != "" {
		if items, err = s.GetCyberwareByCategory(category); err != nil {
			return nil, err
		}
	}
	catalog.Sort(items, key)
	return items, nil
}

// SeedCatalog stores every embedded catalog entry not already present and
// returns how many were added.
func (s *Service) SeedCatalog(ctx context.Context) (n int, err error) {
	ctx, done := s.observe(ctx, "seed_catalog")
	defer func() { done(err) }()
	items, err := catalog.Seed()
	if err != nil {
		return 0, err
	}
	n, err = catalog.Populate(ctx, s.store, items)
	if err != nil {
		return 0, err
	}
	if n > 0 {
		s.logger.Info("catalog seeded", "added", n, "total", len(items))
	}
	return n, nil
}
