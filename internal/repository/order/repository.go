package order

import (
	"context"

	"storefront/internal/domain"
)

// Repository reads orders and applies operator edits. Orders are created by
// the checkout repository inside its transaction via Insert.
type Repository interface {
	GetForUser(ctx context.Context, userID, orderID string) (*domain.Order, error)
	GetByID(ctx context.Context, orderID string) (*domain.Order, error)
	ListByUser(ctx context.Context, userID string) ([]domain.Order, error)
	List(ctx context.Context, status domain.OrderStatus) ([]domain.Order, error)
	UpdateStatus(ctx context.Context, orderID string, from, to domain.OrderStatus, notes string) (*domain.Order, error)
}
