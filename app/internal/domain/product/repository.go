package product

import "context"

// Repository is the read side of the catalog that carts and shoppers use.
type Repository interface {
	GetByID(ctx context.Context, id int64) (*Product, error)
	GetByIDs(ctx context.Context, ids []int64) ([]*Product, error)
	List(ctx context.Context, filter ListFilter) ([]*Product, error)
}

// Writer manages catalog rows from the back office. Only a catalog this
// service owns has one.
type Writer interface {
	Create(ctx context.Context, p *Product) (*Product, error)
	Update(ctx context.Context, p *Product) (*Product, error)
	Delete(ctx context.Context, id int64) error
}
