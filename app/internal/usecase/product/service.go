package product

import (
	"context"
	"strings"

	domcategory "example.com/voltcart/app/internal/domain/category"
	dom "example.com/voltcart/app/internal/domain/product"
)

type CategoryLookup interface {
	GetByID(ctx context.Context, id int64) (*domcategory.Category, error)
}

// Service is the storefront's read-only view of the catalog. Inactive products
// are hidden from shoppers.
type Service struct {
	repo       dom.Repository
	categories CategoryLookup
}

func NewService(repo dom.Repository, categories CategoryLookup) *Service {
	return &Service{repo: repo, categories: categories}
}

func (s *Service) GetByID(ctx context.Context, id int64) (*dom.Product, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !p.IsActive {
		return nil, dom.ErrProductNotFound
	}
	return p, nil
}

func (s *Service) List(ctx context.Context, filter dom.ListFilter) ([]*dom.Product, error) {
	filter.Search = strings.TrimSpace(filter.Search)
	filter.OnlyActive = true

	if filter.CategoryID != nil && s.categories != nil {
		c, err := s.categories.GetByID(ctx, *filter.CategoryID)
		if err != nil {
			return nil, err
		}
		if !c.IsActive {
			return nil, domcategory.ErrCategoryNotFound
		}
	}
	return s.repo.List(ctx, filter)
}
