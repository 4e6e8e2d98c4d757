package user

import "context"

type Repository interface {
	GetByID(ctx context.Context, id int64) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
}

// AccountRepository adds the writes behind signup and user administration.
type AccountRepository interface {
	Repository
	Create(ctx context.Context, u *User) (*User, error)
	Update(ctx context.Context, u *User) (*User, error)
	List(ctx context.Context, filter ListFilter) ([]*User, error)
}
