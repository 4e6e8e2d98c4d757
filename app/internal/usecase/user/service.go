package user

import (
	"context"
	"errors"
	"strings"

	dom "example.com/voltcart/app/internal/domain/user"
)

type PasswordHasher interface {
	Hash(password string) (string, error)
}

// Service manages accounts: shopper signup and staff administration. Accounts
// are deactivated rather than deleted so order history keeps its owner.
type Service struct {
	repo   dom.AccountRepository
	hasher PasswordHasher
}

func NewService(repo dom.AccountRepository, hasher PasswordHasher) *Service {
	return &Service{repo: repo, hasher: hasher}
}

type RegisterInput struct {
	Name     string
	Email    string
	Password string
}

type CreateUserInput struct {
	ExecutorRole dom.RoleCode
	Name         string
	Email        string
	Password     string
	RoleCode     dom.RoleCode
}

type UpdateUserInput struct {
	ExecutorRole dom.RoleCode
	ID           int64
	Name         *string
	Email        *string
	Password     *string
	RoleCode     *dom.RoleCode
	IsActive     *bool
}

// Register opens an active customer account.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*dom.User, error) {
	return s.create(ctx, in.Name, in.Email, in.Password, dom.RoleCodeCustomer)
}

func (s *Service) CreateUser(ctx context.Context, in CreateUserInput) (*dom.User, error) {
	if !in.RoleCode.IsValid() {
		return nil, dom.ErrInvalidRoleCode
	}
	if !dom.CanAssignRole(in.ExecutorRole, in.RoleCode) {
		return nil, dom.ErrCannotAssignRole
	}
	return s.create(ctx, in.Name, in.Email, in.Password, in.RoleCode)
}

func (s *Service) GetUser(ctx context.Context, id int64) (*dom.User, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) ListUsers(ctx context.Context, filter dom.ListFilter) ([]*dom.User, error) {
	filter.Search = strings.TrimSpace(filter.Search)
	return s.repo.List(ctx, filter)
}

// UpdateUser patches an account. The executor must be allowed to hand out both
// the account's current role and any new one, so an admin cannot edit staff.
func (s *Service) UpdateUser(ctx context.Context, in UpdateUserInput) (*dom.User, error) {
	u, err := s.repo.GetByID(ctx, in.ID)
	if err != nil {
		return nil, err
	}
	if !dom.CanAssignRole(in.ExecutorRole, u.RoleCode) {
		return nil, dom.ErrCannotAssignRole
	}

	if in.RoleCode != nil {
		if !in.RoleCode.IsValid() {
			return nil, dom.ErrInvalidRoleCode
		}
		if !dom.CanAssignRole(in.ExecutorRole, *in.RoleCode) {
			return nil, dom.ErrCannotAssignRole
		}
		u.RoleCode = *in.RoleCode
	}

	if in.Name != nil {
		u.Name = strings.TrimSpace(*in.Name)
		if u.Name == "" {
			return nil, dom.ErrInvalidName
		}
	}
	if in.Email != nil {
		email := normalizeEmail(*in.Email)
		if email != u.Email {
			if err := s.ensureEmailFree(ctx, email); err != nil {
				return nil, err
			}
			u.Email = email
		}
	}
	if in.Password != nil {
		hash, err := s.hasher.Hash(*in.Password)
		if err != nil {
			return nil, err
		}
		u.PasswordHash = hash
	}
	if in.IsActive != nil {
		u.IsActive = *in.IsActive
	}

	return s.repo.Update(ctx, u)
}

func (s *Service) create(ctx context.Context, name, email, password string, role dom.RoleCode) (*dom.User, error) {
	u := &dom.User{
		Name:     strings.TrimSpace(name),
		Email:    normalizeEmail(email),
		RoleCode: role,
		IsActive: true,
	}
	if u.Name == "" {
		return nil, dom.ErrInvalidName
	}
	if err := s.ensureEmailFree(ctx, u.Email); err != nil {
		return nil, err
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, err
	}
	u.PasswordHash = hash

	return s.repo.Create(ctx, u)
}

// ensureEmailFree gives a clean error for the common case; the unique index
// still decides under concurrent signups.
func (s *Service) ensureEmailFree(ctx context.Context, email string) error {
	_, err := s.repo.GetByEmail(ctx, email)
	switch {
	case err == nil:
		return dom.ErrEmailAlreadyUsed
	case errors.Is(err, dom.ErrUserNotFound):
		return nil
	default:
		return err
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
