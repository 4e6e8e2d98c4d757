package category

import (
	"context"

	dom "example.com/voltcart/app/internal/domain/category"
)

type Service struct {
	repo dom.Repository
}

func NewService(repo dom.Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) GetByID(ctx context.Context, id int64) (*dom.Category, error) {
	c, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !c.IsActive {
		return nil, dom.ErrCategoryNotFound
	}
	return c, nil
}

// List returns the categories shown in the storefront navigation.
func (s *Service) List(ctx context.Context) ([]*dom.Category, error) {
	return s.repo.List(ctx, dom.ListFilter{OnlyActive: true})
}
