package order

import "context"

type Repository interface {
	RecordOrder(ctx context.Context, rec Record) (*Order, error)
	List(ctx context.Context, filter ListFilter) ([]*Order, error)
	GetByID(ctx context.Context, id int64) (*Order, error)
	UpdateStatus(ctx context.Context, id int64, status Status) (*Order, error)
	Stats(ctx context.Context) ([]StatusStats, error)
}
