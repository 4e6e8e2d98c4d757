package category

import (
	"context"
	"strings"

	dom "example.com/voltcart/app/internal/domain/category"
)

// AdminService manages the storefront menu from the back office. Unlike
// Service it sees inactive categories.
type AdminService struct {
	repo   dom.Repository
	writer dom.Writer
}

func NewAdminService(repo dom.Repository, writer dom.Writer) *AdminService {
	return &AdminService{repo: repo, writer: writer}
}

type CreateInput struct {
	Name        string
	Slug        string
	Description string
	ImageRef    string
	Position    int
	IsActive    *bool
}

type UpdateInput struct {
	ID          int64
	Name        *string
	Slug        *string
	Description *string
	ImageRef    *string
	Position    *int
	IsActive    *bool
}

func (s *AdminService) List(ctx context.Context) ([]*dom.Category, error) {
	return s.repo.List(ctx, dom.ListFilter{})
}

func (s *AdminService) GetByID(ctx context.Context, id int64) (*dom.Category, error) {
	return s.repo.GetByID(ctx, id)
}

// Create adds a category. An empty slug is derived from the name; a new
// category is active unless IsActive says otherwise.
func (s *AdminService) Create(ctx context.Context, in CreateInput) (*dom.Category, error) {
	c := &dom.Category{
		Name:        strings.TrimSpace(in.Name),
		Slug:        strings.TrimSpace(in.Slug),
		Description: in.Description,
		ImageRef:    in.ImageRef,
		Position:    in.Position,
		IsActive:    true,
	}
	if in.IsActive != nil {
		c.IsActive = *in.IsActive
	}
	if err := normalize(c); err != nil {
		return nil, err
	}
	return s.writer.Create(ctx, c)
}

func (s *AdminService) Update(ctx context.Context, in UpdateInput) (*dom.Category, error) {
	c, err := s.repo.GetByID(ctx, in.ID)
	if err != nil {
		return nil, err
	}

	if in.Name != nil {
		c.Name = strings.TrimSpace(*in.Name)
	}
	if in.Slug != nil {
		c.Slug = strings.TrimSpace(*in.Slug)
	}
	if in.Description != nil {
		c.Description = *in.Description
	}
	if in.ImageRef != nil {
		c.ImageRef = *in.ImageRef
	}
	if in.Position != nil {
		c.Position = *in.Position
	}
	if in.IsActive != nil {
		c.IsActive = *in.IsActive
	}
	if err := normalize(c); err != nil {
		return nil, err
	}
	return s.writer.Update(ctx, c)
}

func (s *AdminService) Delete(ctx context.Context, id int64) error {
	return s.writer.Delete(ctx, id)
}

func normalize(c *dom.Category) error {
	if c.Name == "" {
		return dom.ErrCategoryInvalidName
	}
	if c.Slug == "" {
		c.Slug = dom.Slugify(c.Name)
	}
	if !dom.ValidSlug(c.Slug) {
		return dom.ErrCategoryInvalidSlug
	}
	return nil
}
