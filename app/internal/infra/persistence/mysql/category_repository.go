package mysql

import (
	"context"
	"database/sql"
	"errors"

	domcategory "example.com/voltcart/app/internal/domain/category"
)

type CategoryRepository struct {
	db *sql.DB
}

func NewCategoryRepository(db *sql.DB) *CategoryRepository {
	return &CategoryRepository{db: db}
}

func (r *CategoryRepository) Create(ctx context.Context, c *domcategory.Category) (*domcategory.Category, error) {
	res, err := r.db.ExecContext(ctx, `
        INSERT INTO categories (name, slug, description, image_ref, position, is_active)
        VALUES (?, ?, ?, ?, ?, ?)
    `, c.Name, c.Slug, nullString(c.Description), nullString(c.ImageRef), c.Position, c.IsActive)
	if err != nil {
		if isMySQLError(err, errDuplicateEntry) {
			return nil, domcategory.ErrCategorySlugExists
		}
		return nil, err
	}
	c.ID, err = res.LastInsertId()
	if err != nil {
		return nil, err
	}
	return c, nil
}

func (r *CategoryRepository) Update(ctx context.Context, c *domcategory.Category) (*domcategory.Category, error) {
	_, err := r.db.ExecContext(ctx, `
        UPDATE categories
        SET name = ?, slug = ?, description = ?, image_ref = ?, position = ?, is_active = ?
        WHERE id = ?
    `, c.Name, c.Slug, nullString(c.Description), nullString(c.ImageRef), c.Position, c.IsActive, c.ID)
	if err != nil {
		if isMySQLError(err, errDuplicateEntry) {
			return nil, domcategory.ErrCategorySlugExists
		}
		return nil, err
	}
	// RowsAffected is 0 for an unchanged row, so existence is checked by reading back.
	return r.GetByID(ctx, c.ID)
}

func (r *CategoryRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM categories WHERE id = ?`, id)
	if err != nil {
		if isMySQLError(err, errRowIsReferenced) {
			return domcategory.ErrCategoryInUse
		}
		return err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return domcategory.ErrCategoryNotFound
	}
	return nil
}

func (r *CategoryRepository) GetByID(ctx context.Context, id int64) (*domcategory.Category, error) {
	row := r.db.QueryRowContext(ctx, `
        SELECT id, name, slug, description, image_ref, position, is_active
        FROM categories WHERE id = ?
    `, id)

	c, err := scanCategory(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domcategory.ErrCategoryNotFound
		}
		return nil, err
	}
	return c, nil
}

func (r *CategoryRepository) List(ctx context.Context, filter domcategory.ListFilter) ([]*domcategory.Category, error) {
	query := `
        SELECT id, name, slug, description, image_ref, position, is_active
        FROM categories
    `
	if filter.OnlyActive {
		query += " WHERE is_active = 1"
	}
	query += " ORDER BY position, name"

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	categories := []*domcategory.Category{}
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, err
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

func scanCategory(s rowScanner) (*domcategory.Category, error) {
	var c domcategory.Category
	var description, image sql.NullString
	if err := s.Scan(&c.ID, &c.Name, &c.Slug, &description, &image, &c.Position, &c.IsActive); err != nil {
		return nil, err
	}
	c.Description = description.String
	c.ImageRef = image.String
	return &c, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
