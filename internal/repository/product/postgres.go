package product

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

const productColumns = `id::text, key, name, description, price::text, category, stock_quantity, image_url, is_active, created_at, updated_at`

type postgresRepo struct {
	pool   *pgxpool.Pool
	logger *zap.Logger
}

func NewPostgres(pool *pgxpool.Pool, logger *zap.Logger) Repository {
	return &postgresRepo{pool: pool, logger: logging.OrNop(logger)}
}

func (r *postgresRepo) List(ctx context.Context, f ListFilter) ([]domain.Product, int, error) {
	const q = `
SELECT ` + productColumns + `, count(*) OVER()
FROM products
WHERE ($1 = false OR is_active)
  AND ($2 = '' OR name ILIKE $3 OR description ILIKE $3)
  AND ($4 = '' OR category = $4)
ORDER BY created_at DESC, id
LIMIT NULLIF($5, 0) OFFSET $6
`
	rows, err := r.pool.Query(ctx, q, f.ActiveOnly, f.Query, db.LikePattern(f.Query), string(f.Category), f.Limit, f.Offset)
	if err != nil {
		r.logger.Error("product repo: list", zap.Error(err))
		return nil, 0, err
	}
	defer rows.Close()

	var (
		result []domain.Product
		total  int
	)
	for rows.Next() {
		p, err := scanProduct(rows, &total)
		if err != nil {
			return nil, 0, err
		}
		result = append(result, *p)
	}
	if err := rows.Err(); err != nil {
		r.logger.Error("product repo: list rows", zap.Error(err))
		return nil, 0, err
	}
	r.logger.Debug("product repo: list", zap.Int("count", len(result)), zap.Int("total", total))
	return result, total, nil
}

func (r *postgresRepo) GetByID(ctx context.Context, id string) (*domain.Product, error) {
	if !db.ValidID(id) {
		return nil, domain.ErrNotFound
	}
	const q = `SELECT ` + productColumns + ` FROM products WHERE id = $1`
	p, err := scanProduct(r.pool.QueryRow(ctx, q, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			r.logger.Debug("product repo: get not found", zap.String("id", id))
			return nil, domain.ErrNotFound
		}
		r.logger.Error("product repo: get", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return p, nil
}

func (r *postgresRepo) Upsert(ctx context.Context, p domain.Product) (*domain.Product, error) {
	if !p.Category.Valid() {
		return nil, fmt.Errorf("%w: unknown category %q", domain.ErrValidation, p.Category)
	}
	if p.StockQuantity < 0 {
		return nil, fmt.Errorf("%w: stock must be non-negative", domain.ErrValidation)
	}
	const q = `
INSERT INTO products (key, name, description, price, category, stock_quantity, image_url, is_active)
VALUES ($1, $2, $3, $4::numeric, $5, $6, $7, $8)
ON CONFLICT (key) DO UPDATE SET
    name = EXCLUDED.name,
    description = EXCLUDED.description,
    price = EXCLUDED.price,
    category = EXCLUDED.category,
    stock_quantity = EXCLUDED.stock_quantity,
    image_url = EXCLUDED.image_url,
    is_active = EXCLUDED.is_active,
    updated_at = now()
RETURNING ` + productColumns
	res, err := scanProduct(r.pool.QueryRow(ctx, q,
		p.Key,
		p.Name,
		p.Description,
		p.Price.StringFixed(2),
		string(p.Category),
		p.StockQuantity,
		p.ImageURL,
		p.Active,
	))
	if err != nil {
		r.logger.Error("product repo: upsert", zap.String("key", p.Key), zap.Error(err))
		return nil, err
	}
	r.logger.Info("product repo: upserted", zap.String("key", res.Key), zap.String("id", res.ID))
	return res, nil
}

func scanProduct(row pgx.Row, extra ...any) (*domain.Product, error) {
	var (
		p        domain.Product
		price    string
		category string
	)
	dest := []any{&p.ID, &p.Key, &p.Name, &p.Description, &price, &category, &p.StockQuantity, &p.ImageURL, &p.Active, &p.CreatedAt, &p.UpdatedAt}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		return nil, err
	}
	d, err := decimal.NewFromString(price)
	if err != nil {
		return nil, fmt.Errorf("product %s: parse price %q: %w", p.ID, price, err)
	}
	p.Price = d
	p.Category = domain.ProductCategory(category)
	return &p, nil
}
