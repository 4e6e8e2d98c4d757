package mysql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	domproduct "example.com/voltcart/app/internal/domain/product"
)

const productColumns = `id, name, description, price, stock, category_id, is_active`

type ProductRepository struct {
	db *sql.DB
}

func NewProductRepository(db *sql.DB) *ProductRepository {
	return &ProductRepository{db: db}
}

func (r *ProductRepository) GetByID(ctx context.Context, id int64) (*domproduct.Product, error) {
	row := r.db.QueryRowContext(ctx, `
        SELECT `+productColumns+`
        FROM products WHERE id = ?
    `, id)

	p, err := scanProduct(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domproduct.ErrProductNotFound
		}
		return nil, err
	}
	if err := r.attachImages(ctx, []*domproduct.Product{p}); err != nil {
		return nil, err
	}
	return p, nil
}

func (r *ProductRepository) Create(ctx context.Context, p *domproduct.Product) (*domproduct.Product, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx, `
        INSERT INTO products (name, description, price, stock, category_id, is_active)
        VALUES (?, ?, ?, ?, ?, ?)
    `, p.Name, nullString(p.Description), p.Price, p.Stock, p.CategoryID, p.IsActive)
	if err != nil {
		return nil, productWriteError(err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	if err := replaceImages(ctx, tx, id, p.ImageRefs); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return r.GetByID(ctx, id)
}

// Update overwrites every column of p and replaces its image list.
func (r *ProductRepository) Update(ctx context.Context, p *domproduct.Product) (*domproduct.Product, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback() }()

	var exists int
	err = tx.QueryRowContext(ctx, `SELECT 1 FROM products WHERE id = ? FOR UPDATE`, p.ID).Scan(&exists)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domproduct.ErrProductNotFound
	}
	if err != nil {
		return nil, err
	}

	if _, err := tx.ExecContext(ctx, `
        UPDATE products
        SET name = ?, description = ?, price = ?, stock = ?, category_id = ?, is_active = ?
        WHERE id = ?
    `, p.Name, nullString(p.Description), p.Price, p.Stock, p.CategoryID, p.IsActive, p.ID); err != nil {
		return nil, productWriteError(err)
	}
	if err := replaceImages(ctx, tx, p.ID, p.ImageRefs); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return r.GetByID(ctx, p.ID)
}

func (r *ProductRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM products WHERE id = ?`, id)
	if err != nil {
		return err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return domproduct.ErrProductNotFound
	}
	return nil
}

func replaceImages(ctx context.Context, tx *sql.Tx, productID int64, urls []string) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM product_images WHERE product_id = ?`, productID); err != nil {
		return fmt.Errorf("clear product images: %w", err)
	}
	for i, url := range urls {
		if _, err := tx.ExecContext(ctx, `
            INSERT INTO product_images (product_id, url, sort_order)
            VALUES (?, ?, ?)
        `, productID, url, i); err != nil {
			return fmt.Errorf("insert product image: %w", err)
		}
	}
	return nil
}

func productWriteError(err error) error {
	if isMySQLError(err, errNoReferencedRow) {
		return domproduct.ErrUnknownCategory
	}
	return err
}

func (r *ProductRepository) List(ctx context.Context, filter domproduct.ListFilter) ([]*domproduct.Product, error) {
	query := `
        SELECT ` + productColumns + `
        FROM products
    `
	var clauses []string
	var args []any

	if filter.CategoryID != nil {
		clauses = append(clauses, "category_id = ?")
		args = append(args, *filter.CategoryID)
	}
	if filter.Search != "" {
		clauses = append(clauses, "(name LIKE ? OR description LIKE ?)")
		like := fmt.Sprintf("%%%s%%", filter.Search)
		args = append(args, like, like)
	}
	if filter.OnlyActive {
		clauses = append(clauses, "is_active = 1")
	}

	if len(clauses) > 0 {
		query += " WHERE " + strings.Join(clauses, " AND ")
	}
	query += " ORDER BY id DESC"

	return r.query(ctx, query, args...)
}

func (r *ProductRepository) GetByIDs(ctx context.Context, ids []int64) ([]*domproduct.Product, error) {
	if len(ids) == 0 {
		return []*domproduct.Product{}, nil
	}

	query := `
        SELECT ` + productColumns + `
        FROM products
        WHERE id IN (` + placeholders(len(ids)) + `)
    `
	return r.query(ctx, query, int64Args(ids)...)
}

func (r *ProductRepository) query(ctx context.Context, query string, args ...any) ([]*domproduct.Product, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	products := []*domproduct.Product{}
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if err := r.attachImages(ctx, products); err != nil {
		return nil, err
	}
	return products, nil
}

// attachImages loads image references for all products in one query, keeping
// the configured display order.
func (r *ProductRepository) attachImages(ctx context.Context, products []*domproduct.Product) error {
	if len(products) == 0 {
		return nil
	}
	byID := make(map[int64]*domproduct.Product, len(products))
	ids := make([]int64, 0, len(products))
	for _, p := range products {
		byID[p.ID] = p
		ids = append(ids, p.ID)
	}

	rows, err := r.db.QueryContext(ctx, `
        SELECT product_id, url
        FROM product_images
        WHERE product_id IN (`+placeholders(len(ids))+`)
        ORDER BY product_id, sort_order, id
    `, int64Args(ids)...)
	if err != nil {
		return fmt.Errorf("load product images: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var productID int64
		var url string
		if err := rows.Scan(&productID, &url); err != nil {
			return err
		}
		if p, ok := byID[productID]; ok {
			p.ImageRefs = append(p.ImageRefs, url)
		}
	}
	return rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProduct(s rowScanner) (*domproduct.Product, error) {
	var p domproduct.Product
	var description sql.NullString
	if err := s.Scan(&p.ID, &p.Name, &description, &p.Price, &p.Stock, &p.CategoryID, &p.IsActive); err != nil {
		return nil, err
	}
	p.Description = description.String
	return &p, nil
}

func placeholders(n int) string {
	return "?" + strings.Repeat(",?", n-1)
}

func int64Args(ids []int64) []any {
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	return args
}
