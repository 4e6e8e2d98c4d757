package mysql

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	domorder "example.com/voltcart/app/internal/domain/order"
)

const orderColumns = `id, user_id, session_id, idempotency_key, payment_reference, status, total_amount, created_at`

type OrderRepository struct {
	db *sql.DB
}

func NewOrderRepository(db *sql.DB) *OrderRepository {
	return &OrderRepository{db: db}
}

// RecordOrder stores a paid order. The idempotency key is unique in the
// orders table, so replaying a record returns the order created first.
func (r *OrderRepository) RecordOrder(ctx context.Context, rec domorder.Record) (_ *domorder.Order, retErr error) {
	if rec.IdempotencyKey == "" {
		return nil, domorder.ErrMissingIdempotency
	}
	if len(rec.Items) == 0 {
		return nil, domorder.ErrEmptyOrderItems
	}

	if existing, err := r.getByIdempotencyKey(ctx, rec.IdempotencyKey); err == nil {
		return existing, nil
	} else if !errors.Is(err, domorder.ErrOrderNotFound) {
		return nil, err
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer func() {
		if retErr != nil {
			_ = tx.Rollback()
		}
	}()

	res, err := tx.ExecContext(ctx, `
        INSERT INTO orders (user_id, session_id, idempotency_key, payment_reference, status, total_amount)
        VALUES (?, ?, ?, ?, ?, ?)
    `, rec.UserID, rec.SessionID, rec.IdempotencyKey, rec.PaymentReference, domorder.StatusPaid, rec.TotalAmount)
	if err != nil {
		if isMySQLError(err, errDuplicateEntry) {
			_ = tx.Rollback()
			return r.getByIdempotencyKey(ctx, rec.IdempotencyKey)
		}
		return nil, err
	}
	orderID, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}

	for _, item := range rec.Items {
		if _, err := tx.ExecContext(ctx, `
            INSERT INTO order_items (order_id, product_id, product_name, unit_price, quantity, image)
            VALUES (?, ?, ?, ?, ?, ?)
        `, orderID, item.ProductID, item.Name, item.UnitPrice, item.Quantity, item.Image); err != nil {
			return nil, err
		}
		// Payment has been taken, so a short stock never blocks the order.
		if _, err := tx.ExecContext(ctx, `
            UPDATE products SET stock = GREATEST(stock - ?, 0)
            WHERE id = ?
        `, item.Quantity, item.ProductID); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	return r.GetByID(ctx, orderID)
}

func (r *OrderRepository) List(ctx context.Context, filter domorder.ListFilter) ([]*domorder.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders`
	var clauses []string
	var args []any

	if filter.UserID != nil {
		clauses = append(clauses, "user_id = ?")
		args = append(args, *filter.UserID)
	}
	if filter.Status != nil {
		clauses = append(clauses, "status = ?")
		args = append(args, *filter.Status)
	}
	if len(clauses) > 0 {
		query += " WHERE " + strings.Join(clauses, " AND ")
	}
	query += " ORDER BY id DESC"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	orders := []*domorder.Order{}
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for _, o := range orders {
		items, err := r.listOrderItems(ctx, o.ID)
		if err != nil {
			return nil, err
		}
		o.Items = items
	}
	return orders, nil
}

func (r *OrderRepository) GetByID(ctx context.Context, id int64) (*domorder.Order, error) {
	return r.getOne(ctx, `WHERE id = ?`, id)
}

func (r *OrderRepository) getByIdempotencyKey(ctx context.Context, key string) (*domorder.Order, error) {
	return r.getOne(ctx, `WHERE idempotency_key = ?`, key)
}

func (r *OrderRepository) getOne(ctx context.Context, where string, arg any) (*domorder.Order, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+orderColumns+` FROM orders `+where, arg)

	o, err := scanOrder(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domorder.ErrOrderNotFound
		}
		return nil, err
	}
	items, err := r.listOrderItems(ctx, o.ID)
	if err != nil {
		return nil, err
	}
	o.Items = items
	return o, nil
}

func (r *OrderRepository) UpdateStatus(ctx context.Context, id int64, status domorder.Status) (*domorder.Order, error) {
	if _, err := r.db.ExecContext(ctx, `
        UPDATE orders SET status = ? WHERE id = ?
    `, status, id); err != nil {
		return nil, err
	}
	// MySQL reports 0 affected rows for an unchanged status too, so a missing
	// order is detected by the read below.
	return r.GetByID(ctx, id)
}

func (r *OrderRepository) Stats(ctx context.Context) ([]domorder.StatusStats, error) {
	rows, err := r.db.QueryContext(ctx, `
        SELECT status, COUNT(*), COALESCE(SUM(total_amount), 0)
        FROM orders
        GROUP BY status
        ORDER BY status
    `)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	stats := []domorder.StatusStats{}
	for rows.Next() {
		var s domorder.StatusStats
		if err := rows.Scan(&s.Status, &s.Count, &s.Revenue); err != nil {
			return nil, err
		}
		stats = append(stats, s)
	}
	return stats, rows.Err()
}

func (r *OrderRepository) listOrderItems(ctx context.Context, orderID int64) ([]domorder.OrderItem, error) {
	rows, err := r.db.QueryContext(ctx, `
        SELECT id, order_id, product_id, product_name, unit_price, quantity, image
        FROM order_items WHERE order_id = ?
        ORDER BY id
    `, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := []domorder.OrderItem{}
	for rows.Next() {
		var item domorder.OrderItem
		var image sql.NullString
		if err := rows.Scan(&item.ID, &item.OrderID, &item.ProductID, &item.Name, &item.UnitPrice, &item.Quantity, &image); err != nil {
			return nil, err
		}
		item.Image = image.String
		items = append(items, item)
	}
	return items, rows.Err()
}

func scanOrder(s rowScanner) (*domorder.Order, error) {
	var o domorder.Order
	var sessionID, paymentRef sql.NullString
	if err := s.Scan(&o.ID, &o.UserID, &sessionID, &o.IdempotencyKey, &paymentRef, &o.Status, &o.TotalAmount, &o.CreatedAt); err != nil {
		return nil, err
	}
	o.SessionID = sessionID.String
	o.PaymentReference = paymentRef.String
	return &o, nil
}
