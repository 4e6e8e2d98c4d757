package category

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	domcategory "example.com/voltcart/app/internal/domain/category"
)

type mockCategoryRepository struct {
	categories map[int64]*domcategory.Category
	lastFilter domcategory.ListFilter
	listErr    error
}

func (m *mockCategoryRepository) GetByID(ctx context.Context, id int64) (*domcategory.Category, error) {
	if c, ok := m.categories[id]; ok {
		cloned := *c
		return &cloned, nil
	}
	return nil, domcategory.ErrCategoryNotFound
}

func (m *mockCategoryRepository) List(ctx context.Context, filter domcategory.ListFilter) ([]*domcategory.Category, error) {
	m.lastFilter = filter
	if m.listErr != nil {
		return nil, m.listErr
	}
	var result []*domcategory.Category
	for _, c := range m.categories {
		if filter.OnlyActive && !c.IsActive {
			continue
		}
		cloned := *c
		result = append(result, &cloned)
	}
	return result, nil
}

func newRepo() *mockCategoryRepository {
	return &mockCategoryRepository{categories: map[int64]*domcategory.Category{
		1: {ID: 1, Name: "Lighting", Slug: "lighting", IsActive: true},
		2: {ID: 2, Name: "Wiring", Slug: "wiring", IsActive: true},
		3: {ID: 3, Name: "Clearance", Slug: "clearance", IsActive: false},
	}}
}

func TestList_OnlyActive(t *testing.T) {
	repo := newRepo()
	svc := NewService(repo)

	categories, err := svc.List(context.Background())

	require.NoError(t, err)
	require.True(t, repo.lastFilter.OnlyActive)
	require.Len(t, categories, 2)
}

func TestList_RepositoryError(t *testing.T) {
	repo := newRepo()
	repo.listErr = errors.New("db down")
	svc := NewService(repo)

	_, err := svc.List(context.Background())

	require.Error(t, err)
}

func TestGetByID(t *testing.T) {
	tests := []struct {
		name    string
		id      int64
		wantErr error
	}{
		{name: "Active", id: 1},
		{name: "Inactive", id: 3, wantErr: domcategory.ErrCategoryNotFound},
		{name: "Missing", id: 7, wantErr: domcategory.ErrCategoryNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := NewService(newRepo())

			c, err := svc.GetByID(context.Background(), tt.id)

			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			require.Equal(t, "lighting", c.Slug)
		})
	}
}
