package order

import (
	"context"
	"errors"
	"fmt"

	"storefront/internal/db"
	"storefront/internal/domain"
	"storefront/internal/logging"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const orderColumns = `id::text, user_id::text, total_price::text, status, notes, created_at, updated_at`

type postgresRepo struct {
	pool   *pgxpool.Pool
	logger *zap.Logger
}

func NewPostgres(pool *pgxpool.Pool, logger *zap.Logger) Repository {
	return &postgresRepo{pool: pool, logger: logging.OrNop(logger)}
}

// Insert writes the order row and its items using q, which is normally the
// checkout transaction.
func Insert(ctx context.Context, q db.Querier, o *domain.Order) error {
	err := q.QueryRow(ctx, `
INSERT INTO orders (id, user_id, total_price, status)
VALUES ($1, $2, $3::numeric, $4)
RETURNING created_at, updated_at
`, o.ID, o.UserID, o.TotalPrice.StringFixed(2), string(o.Status)).Scan(&o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert order: %w", err)
	}
	for i := range o.Items {
		it := &o.Items[i]
		courseID, productID := it.Item.Columns()
		err := q.QueryRow(ctx, `
INSERT INTO order_items (order_id, item_type, course_id, product_id, name, quantity, price)
VALUES ($1, $2, $3, $4, $5, $6, $7::numeric)
RETURNING id::text
`, o.ID, string(it.Item.Type()), courseID, productID, it.Name, it.Quantity, it.Price.StringFixed(2)).Scan(&it.ID)
		if err != nil {
			return fmt.Errorf("insert order item %s: %w", it.Item, err)
		}
		it.OrderID = o.ID
	}
	return nil
}

func (r *postgresRepo) GetForUser(ctx context.Context, userID, orderID string) (*domain.Order, error) {
	if !db.ValidID(orderID) {
		return nil, domain.ErrNotFound
	}
	return r.fetch(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = $1 AND user_id = $2`, orderID, userID)
}

func (r *postgresRepo) GetByID(ctx context.Context, orderID string) (*domain.Order, error) {
	if !db.ValidID(orderID) {
		return nil, domain.ErrNotFound
	}
	return r.fetch(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = $1`, orderID)
}

func (r *postgresRepo) ListByUser(ctx context.Context, userID string) ([]domain.Order, error) {
	return r.list(ctx, `SELECT `+orderColumns+` FROM orders WHERE user_id = $1 ORDER BY created_at DESC, id`, userID)
}

func (r *postgresRepo) List(ctx context.Context, status domain.OrderStatus) ([]domain.Order, error) {
	return r.list(ctx, `SELECT `+orderColumns+` FROM orders WHERE ($1 = '' OR status = $1) ORDER BY created_at DESC, id`, string(status))
}

// UpdateStatus only applies when the order is still in status from, so two
// operators editing the same order cannot skip the transition check.
func (r *postgresRepo) UpdateStatus(ctx context.Context, orderID string, from, to domain.OrderStatus, notes string) (*domain.Order, error) {
	if !db.ValidID(orderID) {
		return nil, domain.ErrNotFound
	}
	o, err := scanOrder(r.pool.QueryRow(ctx, `
UPDATE orders
SET status = $3, notes = $4, updated_at = now()
WHERE id = $1 AND status = $2
RETURNING `+orderColumns, orderID, string(from), string(to), notes))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrInvalidTransition
		}
		r.logger.Error("order repo: update status", zap.String("order_id", orderID), zap.Error(err))
		return nil, err
	}
	items, err := r.items(ctx, o.ID)
	if err != nil {
		return nil, err
	}
	o.Items = items
	r.logger.Info("order repo: status updated", zap.String("order_id", orderID), zap.String("from", string(from)), zap.String("to", string(to)))
	return o, nil
}

func (r *postgresRepo) fetch(ctx context.Context, q string, args ...any) (*domain.Order, error) {
	o, err := scanOrder(r.pool.QueryRow(ctx, q, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		r.logger.Error("order repo: get", zap.Error(err))
		return nil, err
	}
	items, err := r.items(ctx, o.ID)
	if err != nil {
		return nil, err
	}
	o.Items = items
	return o, nil
}

func (r *postgresRepo) list(ctx context.Context, q string, args ...any) ([]domain.Order, error) {
	rows, err := r.pool.Query(ctx, q, args...)
	if err != nil {
		r.logger.Error("order repo: list", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	var out []domain.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *o)
	}
	return out, rows.Err()
}

func (r *postgresRepo) items(ctx context.Context, orderID string) ([]domain.OrderItem, error) {
	rows, err := r.pool.Query(ctx, `
SELECT id::text, order_id::text, item_type, course_id::text, product_id::text, name, quantity, price::text
FROM order_items
WHERE order_id = $1
ORDER BY id
`, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []domain.OrderItem
	for rows.Next() {
		var (
			it        domain.OrderItem
			itemType  string
			courseID  *string
			productID *string
			price     string
		)
		if err := rows.Scan(&it.ID, &it.OrderID, &itemType, &courseID, &productID, &it.Name, &it.Quantity, &price); err != nil {
			return nil, err
		}
		if it.Item, err = domain.ItemRefFromColumns(itemType, courseID, productID); err != nil {
			return nil, fmt.Errorf("order item %s: %w", it.ID, err)
		}
		if it.Price, err = decimal.NewFromString(price); err != nil {
			return nil, fmt.Errorf("order item %s: parse price %q: %w", it.ID, price, err)
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

func scanOrder(row pgx.Row) (*domain.Order, error) {
	var (
		o      domain.Order
		total  string
		status string
	)
	if err := row.Scan(&o.ID, &o.UserID, &total, &status, &o.Notes, &o.CreatedAt, &o.UpdatedAt); err != nil {
		return nil, err
	}
	d, err := decimal.NewFromString(total)
	if err != nil {
		return nil, fmt.Errorf("order %s: parse total %q: %w", o.ID, total, err)
	}
	o.TotalPrice = d
	o.Status = domain.OrderStatus(status)
	return &o, nil
}
