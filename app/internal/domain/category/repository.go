package category

import "context"

type Repository interface {
	GetByID(ctx context.Context, id int64) (*Category, error)
	List(ctx context.Context, filter ListFilter) ([]*Category, error)
}

// Writer manages the category rows behind the storefront menu.
type Writer interface {
	Create(ctx context.Context, c *Category) (*Category, error)
	Update(ctx context.Context, c *Category) (*Category, error)
	Delete(ctx context.Context, id int64) error
}
