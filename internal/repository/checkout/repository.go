package checkout

import (
	"context"

	"storefront/internal/domain"
)

// Repository runs the cart-to-order conversion as one database transaction.
// When fn returns an error nothing it did through Tx is kept.
type Repository interface {
	WithinTx(ctx context.Context, fn func(tx Tx) error) error
}

// Tx is the set of writes checkout performs atomically.
type Tx interface {
	// LockCart loads the user's cart with live catalog prices and locks it
	// against concurrent checkouts. Returns domain.ErrNotFound when absent.
	LockCart(ctx context.Context, userID string) (*domain.Cart, error)
	CreateOrder(ctx context.Context, o *domain.Order) error
	// DecrementStock fails with domain.ErrInsufficientStock instead of
	// driving stock below zero.
	DecrementStock(ctx context.Context, productID string, quantity int) error
	DeleteCart(ctx context.Context, cartID string) error
	Enqueue(ctx context.Context, topic, key string, payload any) error
}
