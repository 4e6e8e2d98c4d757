package reconciliation

import "context"

type Repository interface {
	Create(ctx context.Context, e *Entry) (*Entry, error)
	GetByID(ctx context.Context, id int64) (*Entry, error)
	List(ctx context.Context, filter ListFilter) ([]*Entry, error)
	Resolve(ctx context.Context, id int64, resolvedBy, note string) (*Entry, error)
	HasOpenForSession(ctx context.Context, sessionID string) (bool, error)
}
