package cart

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

// itemSelect joins each cart item with the live catalog row it references.
const itemSelect = `
SELECT ci.id::text, ci.cart_id::text, ci.item_type, ci.course_id::text, ci.product_id::text, ci.quantity, ci.created_at,
       COALESCE(co.title, p.name, ''),
       COALESCE(co.price, p.price, 0)::text,
       p.stock_quantity,
       COALESCE(co.is_active, p.is_active, false)
FROM cart_items ci
JOIN carts c ON c.id = ci.cart_id
LEFT JOIN courses co ON co.id = ci.course_id
LEFT JOIN products p ON p.id = ci.product_id
`

type postgresRepo struct {
	pool   *pgxpool.Pool
	logger *zap.Logger
}

func NewPostgres(pool *pgxpool.Pool, logger *zap.Logger) Repository {
	return &postgresRepo{pool: pool, logger: logging.OrNop(logger)}
}

func (r *postgresRepo) GetByUser(ctx context.Context, userID string) (*domain.Cart, error) {
	const q = `SELECT id::text, user_id::text, created_at FROM carts WHERE user_id = $1`
	var cart domain.Cart
	if err := r.pool.QueryRow(ctx, q, userID).Scan(&cart.ID, &cart.UserID, &cart.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	items, err := queryItems(ctx, r.pool, itemSelect+`WHERE ci.cart_id = $1 ORDER BY ci.created_at ASC, ci.id`, cart.ID)
	if err != nil {
		r.logger.Error("cart repo: load items", zap.String("cart_id", cart.ID), zap.Error(err))
		return nil, err
	}
	cart.Items = items
	return &cart, nil
}

func (r *postgresRepo) Ensure(ctx context.Context, userID string) (*domain.Cart, error) {
	const q = `
INSERT INTO carts (user_id)
VALUES ($1)
ON CONFLICT (user_id) DO UPDATE SET user_id = EXCLUDED.user_id
RETURNING id::text, user_id::text, created_at
`
	var cart domain.Cart
	if err := r.pool.QueryRow(ctx, q, userID).Scan(&cart.ID, &cart.UserID, &cart.CreatedAt); err != nil {
		r.logger.Error("cart repo: ensure", zap.String("user_id", userID), zap.Error(err))
		return nil, err
	}
	return &cart, nil
}

func (r *postgresRepo) GetItem(ctx context.Context, userID, itemID string) (*domain.CartItem, error) {
	if !db.ValidID(itemID) {
		return nil, domain.ErrNotFound
	}
	return getItem(ctx, r.pool, userID, itemID)
}

func (r *postgresRepo) InsertItem(ctx context.Context, cartID string, ref domain.ItemRef) (*domain.CartItem, bool, error) {
	courseID, productID := ref.Columns()
	var itemID string
	err := r.pool.QueryRow(ctx, `
INSERT INTO cart_items (cart_id, item_type, course_id, product_id, quantity)
VALUES ($1, $2, $3, $4, 1)
ON CONFLICT DO NOTHING
RETURNING id::text
`, cartID, string(ref.Type()), courseID, productID).Scan(&itemID)
	created := err == nil
	if errors.Is(err, pgx.ErrNoRows) {
		err = r.pool.QueryRow(ctx, `
SELECT id::text
FROM cart_items
WHERE cart_id = $1 AND course_id IS NOT DISTINCT FROM $2 AND product_id IS NOT DISTINCT FROM $3
`, cartID, courseID, productID).Scan(&itemID)
	}
	if err != nil {
		r.logger.Error("cart repo: insert item", zap.String("cart_id", cartID), zap.Stringer("item", ref), zap.Error(err))
		return nil, false, err
	}

	items, err := queryItems(ctx, r.pool, itemSelect+`WHERE ci.id = $1`, itemID)
	if err != nil {
		return nil, false, err
	}
	if len(items) == 0 {
		return nil, false, domain.ErrNotFound
	}
	r.logger.Debug("cart repo: insert item", zap.String("cart_id", cartID), zap.Stringer("item", ref), zap.Bool("created", created))
	return &items[0], created, nil
}

func (r *postgresRepo) IncrementItem(ctx context.Context, userID, itemID string) (*domain.CartItem, error) {
	return r.changeQuantity(ctx, userID, itemID, func(current int) int { return current + 1 })
}

func (r *postgresRepo) SetItemQuantity(ctx context.Context, userID, itemID string, quantity int) (*domain.CartItem, error) {
	if quantity <= 0 {
		return nil, fmt.Errorf("%w: quantity must be positive", domain.ErrValidation)
	}
	return r.changeQuantity(ctx, userID, itemID, func(int) int { return quantity })
}

// changeQuantity locks the cart item and, for products, the product row, so
// the stock comparison and the write see the same stock value.
func (r *postgresRepo) changeQuantity(ctx context.Context, userID, itemID string, next func(current int) int) (*domain.CartItem, error) {
	if !db.ValidID(itemID) {
		return nil, domain.ErrNotFound
	}
	var out *domain.CartItem
	err := db.InTx(ctx, r.pool, func(tx pgx.Tx) error {
		var (
			itemType  string
			productID *string
			current   int
		)
		err := tx.QueryRow(ctx, `
SELECT ci.item_type, ci.product_id::text, ci.quantity
FROM cart_items ci
JOIN carts c ON c.id = ci.cart_id
WHERE ci.id = $1 AND c.user_id = $2
FOR UPDATE OF ci
`, itemID, userID).Scan(&itemType, &productID, &current)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return domain.ErrNotFound
			}
			return err
		}

		quantity := next(current)
		if itemType == string(domain.ItemTypeProduct) && productID != nil {
			var stock int
			if err := tx.QueryRow(ctx, `SELECT stock_quantity FROM products WHERE id = $1 FOR SHARE`, *productID).Scan(&stock); err != nil {
				return err
			}
			if quantity > stock {
				return domain.ErrInsufficientStock
			}
		}

		if _, err := tx.Exec(ctx, `UPDATE cart_items SET quantity = $1 WHERE id = $2`, quantity, itemID); err != nil {
			return err
		}
		item, err := getItem(ctx, tx, userID, itemID)
		if err != nil {
			return err
		}
		out = item
		return nil
	})
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) && !errors.Is(err, domain.ErrInsufficientStock) {
			r.logger.Error("cart repo: change quantity", zap.String("item_id", itemID), zap.Error(err))
		}
		return nil, err
	}
	return out, nil
}

func (r *postgresRepo) DeleteItem(ctx context.Context, userID, itemID string) error {
	if !db.ValidID(itemID) {
		return domain.ErrNotFound
	}
	cmd, err := r.pool.Exec(ctx, `
DELETE FROM cart_items ci
USING carts c
WHERE ci.id = $1 AND ci.cart_id = c.id AND c.user_id = $2
`, itemID, userID)
	if err != nil {
		r.logger.Error("cart repo: delete item", zap.String("item_id", itemID), zap.Error(err))
		return err
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *postgresRepo) CountItems(ctx context.Context, userID string) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx, `
SELECT COALESCE(SUM(ci.quantity), 0)
FROM cart_items ci
JOIN carts c ON c.id = ci.cart_id
WHERE c.user_id = $1
`, userID).Scan(&n)
	return n, err
}

func getItem(ctx context.Context, q db.Querier, userID, itemID string) (*domain.CartItem, error) {
	items, err := queryItems(ctx, q, itemSelect+`WHERE ci.id = $1 AND c.user_id = $2`, itemID, userID)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, domain.ErrNotFound
	}
	return &items[0], nil
}

// QueryItems is shared with the checkout repository, which reads the same
// live view inside its transaction.
func QueryItems(ctx context.Context, q db.Querier, where string, args ...any) ([]domain.CartItem, error) {
	return queryItems(ctx, q, itemSelect+where, args...)
}

func queryItems(ctx context.Context, q db.Querier, query string, args ...any) ([]domain.CartItem, error) {
	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []domain.CartItem
	for rows.Next() {
		var (
			it        domain.CartItem
			itemType  string
			courseID  *string
			productID *string
			price     string
		)
		if err := rows.Scan(
			&it.ID,
			&it.CartID,
			&itemType,
			&courseID,
			&productID,
			&it.Quantity,
			&it.CreatedAt,
			&it.Name,
			&price,
			&it.Stock,
			&it.Active,
		); err != nil {
			return nil, err
		}
		ref, err := domain.ItemRefFromColumns(itemType, courseID, productID)
		if err != nil {
			return nil, fmt.Errorf("cart item %s: %w", it.ID, err)
		}
		it.Item = ref
		if it.UnitPrice, err = decimal.NewFromString(price); err != nil {
			return nil, fmt.Errorf("cart item %s: parse price %q: %w", it.ID, price, err)
		}
		items = append(items, it)
	}
	return items, rows.Err()
}
