package checkout

import (
	"context"
	"errors"
	"fmt"

	"storefront/internal/db"
	"storefront/internal/domain"
	"storefront/internal/logging"
	cartrepo "storefront/internal/repository/cart"
	orderrepo "storefront/internal/repository/order"
	"storefront/internal/repository/outbox"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

const checkViolation = "23514"

type postgresRepo struct {
	pool   *pgxpool.Pool
	logger *zap.Logger
}

func NewPostgres(pool *pgxpool.Pool, logger *zap.Logger) Repository {
	return &postgresRepo{pool: pool, logger: logging.OrNop(logger)}
}

func (r *postgresRepo) WithinTx(ctx context.Context, fn func(tx Tx) error) error {
	return db.InTx(ctx, r.pool, func(tx pgx.Tx) error {
		return fn(&pgTx{tx: tx, logger: r.logger})
	})
}

type pgTx struct {
	tx     pgx.Tx
	logger *zap.Logger
}

func (t *pgTx) LockCart(ctx context.Context, userID string) (*domain.Cart, error) {
	var cart domain.Cart
	err := t.tx.QueryRow(ctx, `
SELECT id::text, user_id::text, created_at
FROM carts
WHERE user_id = $1
FOR UPDATE
`, userID).Scan(&cart.ID, &cart.UserID, &cart.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	items, err := cartrepo.QueryItems(ctx, t.tx, `WHERE ci.cart_id = $1 ORDER BY ci.created_at ASC, ci.id`, cart.ID)
	if err != nil {
		return nil, fmt.Errorf("load cart items: %w", err)
	}
	cart.Items = items
	return &cart, nil
}

func (t *pgTx) CreateOrder(ctx context.Context, o *domain.Order) error {
	return orderrepo.Insert(ctx, t.tx, o)
}

func (t *pgTx) DecrementStock(ctx context.Context, productID string, quantity int) error {
	cmd, err := t.tx.Exec(ctx, `
UPDATE products
SET stock_quantity = stock_quantity - $2, updated_at = now()
WHERE id = $1 AND stock_quantity >= $2
`, productID, quantity)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == checkViolation {
			return domain.ErrInsufficientStock
		}
		return err
	}
	if cmd.RowsAffected() == 0 {
		t.logger.Info("checkout repo: stock guard rejected decrement", zap.String("product_id", productID), zap.Int("quantity", quantity))
		return domain.ErrInsufficientStock
	}
	return nil
}

func (t *pgTx) DeleteCart(ctx context.Context, cartID string) error {
	cmd, err := t.tx.Exec(ctx, `DELETE FROM carts WHERE id = $1`, cartID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (t *pgTx) Enqueue(ctx context.Context, topic, key string, payload any) error {
	_, err := outbox.Insert(ctx, t.tx, topic, key, payload)
	return err
}
