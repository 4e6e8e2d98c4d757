package product

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	domcategory "example.com/voltcart/app/internal/domain/category"
	dom "example.com/voltcart/app/internal/domain/product"
)

// AdminService manages the catalog from the back office. It sees inactive
// products. A nil writer means the catalog belongs to another backend and
// every write fails with ErrCatalogReadOnly.
type AdminService struct {
	repo       dom.Repository
	writer     dom.Writer
	categories CategoryLookup
}

func NewAdminService(repo dom.Repository, writer dom.Writer, categories CategoryLookup) *AdminService {
	return &AdminService{repo: repo, writer: writer, categories: categories}
}

type CreateInput struct {
	Name        string
	Description string
	Price       decimal.Decimal
	Stock       int64
	CategoryID  int64
	ImageRefs   []string
	IsActive    *bool
}

// UpdateInput patches a product. A nil field is left as is; a non-nil
// ImageRefs replaces the whole image list.
type UpdateInput struct {
	ID          int64
	Name        *string
	Description *string
	Price       *decimal.Decimal
	Stock       *int64
	CategoryID  *int64
	ImageRefs   []string
	IsActive    *bool
}

func (s *AdminService) List(ctx context.Context, filter dom.ListFilter) ([]*dom.Product, error) {
	filter.Search = strings.TrimSpace(filter.Search)
	filter.OnlyActive = false
	return s.repo.List(ctx, filter)
}

func (s *AdminService) GetByID(ctx context.Context, id int64) (*dom.Product, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *AdminService) Create(ctx context.Context, in CreateInput) (*dom.Product, error) {
	if s.writer == nil {
		return nil, dom.ErrCatalogReadOnly
	}
	p := &dom.Product{
		Name:        strings.TrimSpace(in.Name),
		Description: in.Description,
		Price:       in.Price,
		Stock:       in.Stock,
		CategoryID:  in.CategoryID,
		ImageRefs:   in.ImageRefs,
		IsActive:    true,
	}
	if in.IsActive != nil {
		p.IsActive = *in.IsActive
	}
	if err := s.check(ctx, p); err != nil {
		return nil, err
	}
	return s.writer.Create(ctx, p)
}

func (s *AdminService) Update(ctx context.Context, in UpdateInput) (*dom.Product, error) {
	if s.writer == nil {
		return nil, dom.ErrCatalogReadOnly
	}
	p, err := s.repo.GetByID(ctx, in.ID)
	if err != nil {
		return nil, err
	}

	if in.Name != nil {
		p.Name = strings.TrimSpace(*in.Name)
	}
	if in.Description != nil {
		p.Description = *in.Description
	}
	if in.Price != nil {
		p.Price = *in.Price
	}
	if in.Stock != nil {
		p.Stock = *in.Stock
	}
	if in.CategoryID != nil {
		p.CategoryID = *in.CategoryID
	}
	if in.ImageRefs != nil {
		p.ImageRefs = in.ImageRefs
	}
	if in.IsActive != nil {
		p.IsActive = *in.IsActive
	}
	if err := s.check(ctx, p); err != nil {
		return nil, err
	}
	return s.writer.Update(ctx, p)
}

func (s *AdminService) Delete(ctx context.Context, id int64) error {
	if s.writer == nil {
		return dom.ErrCatalogReadOnly
	}
	return s.writer.Delete(ctx, id)
}

func (s *AdminService) check(ctx context.Context, p *dom.Product) error {
	if err := p.Validate(); err != nil {
		return err
	}
	if s.categories == nil {
		return nil
	}
	if _, err := s.categories.GetByID(ctx, p.CategoryID); err != nil {
		if errors.Is(err, domcategory.ErrCategoryNotFound) {
			return dom.ErrUnknownCategory
		}
		return fmt.Errorf("look up category %d: %w", p.CategoryID, err)
	}
	return nil
}
