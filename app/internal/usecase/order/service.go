package order

import (
	"context"

	domorder "example.com/voltcart/app/internal/domain/order"
)

type Service struct {
	repo domorder.Repository
}

func NewService(repo domorder.Repository) *Service {
	return &Service{repo: repo}
}

// ListMine returns the orders placed by userID, newest first.
func (s *Service) ListMine(ctx context.Context, userID int64) ([]*domorder.Order, error) {
	return s.repo.List(ctx, domorder.ListFilter{UserID: &userID})
}

func (s *Service) List(ctx context.Context, filter domorder.ListFilter) ([]*domorder.Order, error) {
	if filter.Status != nil && !filter.Status.IsValid() {
		return nil, domorder.ErrInvalidStatus
	}
	return s.repo.List(ctx, filter)
}

func (s *Service) GetByID(ctx context.Context, id int64) (*domorder.Order, error) {
	return s.repo.GetByID(ctx, id)
}

// GetMine is GetByID restricted to the orders of userID. Someone else's order
// is reported as not found.
func (s *Service) GetMine(ctx context.Context, userID, id int64) (*domorder.Order, error) {
	o, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if o.UserID != userID {
		return nil, domorder.ErrOrderNotFound
	}
	return o, nil
}

func (s *Service) UpdateStatus(ctx context.Context, id int64, status domorder.Status) (*domorder.Order, error) {
	if !status.IsValid() {
		return nil, domorder.ErrInvalidStatus
	}
	return s.repo.UpdateStatus(ctx, id, status)
}

func (s *Service) Stats(ctx context.Context) ([]domorder.StatusStats, error) {
	return s.repo.Stats(ctx)
}
