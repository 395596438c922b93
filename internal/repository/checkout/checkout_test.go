package checkout

import (
	"context"
	"errors"
	"sync"
	"testing"

	"storefront/internal/db/dbtest"
	"storefront/internal/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// placeOrder runs the minimal cart-to-order sequence against the repository.
func placeOrder(ctx context.Context, repo Repository, userID string) error {
	return repo.WithinTx(ctx, func(tx Tx) error {
		cart, err := tx.LockCart(ctx, userID)
		if err != nil {
			return err
		}
		o := &domain.Order{
			ID:         uuid.NewString(),
			UserID:     userID,
			TotalPrice: cart.TotalPrice(),
			Status:     domain.OrderStatusPending,
		}
		for _, it := range cart.Items {
			o.Items = append(o.Items, domain.OrderItem{Item: it.Item, Quantity: it.Quantity, Price: it.UnitPrice, Name: it.Name})
		}
		if err := tx.CreateOrder(ctx, o); err != nil {
			return err
		}
		for _, it := range cart.Items {
			if id, ok := it.Item.ProductID(); ok {
				if err := tx.DecrementStock(ctx, id, it.Quantity); err != nil {
					return err
				}
			}
		}
		if err := tx.Enqueue(ctx, "orders.created", o.ID, map[string]string{"orderId": o.ID}); err != nil {
			return err
		}
		return tx.DeleteCart(ctx, cart.ID)
	})
}

func fillCart(ctx context.Context, t *testing.T, pool *pgxpool.Pool, userID, productID string, qty int) {
	t.Helper()
	var cartID string
	require.NoError(t, pool.QueryRow(ctx, `INSERT INTO carts (user_id) VALUES ($1) RETURNING id::text`, userID).Scan(&cartID))
	_, err := pool.Exec(ctx, `INSERT INTO cart_items (cart_id, item_type, product_id, quantity) VALUES ($1, 'product', $2, $3)`, cartID, productID, qty)
	require.NoError(t, err)
}

func TestPostgres_CommitConvertsCart(t *testing.T) {
	ctx := context.Background()
	pool := dbtest.Pool(ctx, t)

	userID := dbtest.InsertUser(ctx, t, pool, "ana@example.com")
	productID := dbtest.InsertProduct(ctx, t, pool, "esp32", "12.50", 3)
	fillCart(ctx, t, pool, userID, productID, 2)

	repo := NewPostgres(pool, nil)
	require.NoError(t, placeOrder(ctx, repo, userID))

	assert.Equal(t, 1, dbtest.ProductStock(ctx, t, pool, productID))
	assert.Equal(t, 1, dbtest.Count(ctx, t, pool, "orders"))
	assert.Equal(t, 1, dbtest.Count(ctx, t, pool, "order_items"))
	assert.Equal(t, 1, dbtest.Count(ctx, t, pool, "outbox"))
	assert.Zero(t, dbtest.Count(ctx, t, pool, "carts"))
	assert.Zero(t, dbtest.Count(ctx, t, pool, "cart_items"))

	err := placeOrder(ctx, repo, userID)
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

func TestPostgres_RollbackOnInsufficientStock(t *testing.T) {
	ctx := context.Background()
	pool := dbtest.Pool(ctx, t)

	userID := dbtest.InsertUser(ctx, t, pool, "ana@example.com")
	productID := dbtest.InsertProduct(ctx, t, pool, "esp32", "12.50", 1)
	fillCart(ctx, t, pool, userID, productID, 2)

	repo := NewPostgres(pool, nil)
	err := placeOrder(ctx, repo, userID)
	require.True(t, errors.Is(err, domain.ErrInsufficientStock))

	assert.Equal(t, 1, dbtest.ProductStock(ctx, t, pool, productID))
	assert.Zero(t, dbtest.Count(ctx, t, pool, "orders"))
	assert.Zero(t, dbtest.Count(ctx, t, pool, "outbox"))
	assert.Equal(t, 1, dbtest.Count(ctx, t, pool, "cart_items"))
}

func TestPostgres_ConcurrentCheckoutsNeverOversell(t *testing.T) {
	ctx := context.Background()
	pool := dbtest.Pool(ctx, t)

	productID := dbtest.InsertProduct(ctx, t, pool, "esp32", "12.50", 3)
	first := dbtest.InsertUser(ctx, t, pool, "a@example.com")
	second := dbtest.InsertUser(ctx, t, pool, "b@example.com")
	fillCart(ctx, t, pool, first, productID, 2)
	fillCart(ctx, t, pool, second, productID, 2)

	repo := NewPostgres(pool, nil)
	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i, userID := range []string{first, second} {
		wg.Add(1)
		go func(i int, userID string) {
			defer wg.Done()
			errs[i] = placeOrder(ctx, repo, userID)
		}(i, userID)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		assert.True(t, errors.Is(err, domain.ErrInsufficientStock), "unexpected error: %v", err)
	}
	assert.Equal(t, 1, succeeded)
	assert.Equal(t, 1, dbtest.ProductStock(ctx, t, pool, productID))
	assert.Equal(t, 1, dbtest.Count(ctx, t, pool, "orders"))
}
