package cart

import (
	"context"

	"storefront/internal/domain"
)

// Repository persists carts. Every item-level method is scoped to the owning
// user so items in other users' carts look absent.
type Repository interface {
	GetByUser(ctx context.Context, userID string) (*domain.Cart, error)
	Ensure(ctx context.Context, userID string) (*domain.Cart, error)
	GetItem(ctx context.Context, userID, itemID string) (*domain.CartItem, error)
	InsertItem(ctx context.Context, cartID string, ref domain.ItemRef) (*domain.CartItem, bool, error)
	IncrementItem(ctx context.Context, userID, itemID string) (*domain.CartItem, error)
	SetItemQuantity(ctx context.Context, userID, itemID string, quantity int) (*domain.CartItem, error)
	DeleteItem(ctx context.Context, userID, itemID string) error
	CountItems(ctx context.Context, userID string) (int, error)
}
