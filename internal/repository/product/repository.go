package product

import (
	"context"

	"storefront/internal/domain"
)

// ListFilter narrows catalog listings. Zero values mean "no filter".
type ListFilter struct {
	Query      string
	Category   domain.ProductCategory
	ActiveOnly bool
	Limit      int
	Offset     int
}

type Repository interface {
	List(ctx context.Context, f ListFilter) ([]domain.Product, int, error)
	GetByID(ctx context.Context, id string) (*domain.Product, error)
	Upsert(ctx context.Context, p domain.Product) (*domain.Product, error)
}
