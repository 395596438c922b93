package domain

import "errors"

var (
	// ErrNotFound indicates the requested entity was not found.
	ErrNotFound = errors.New("not found")
	// ErrAlreadyExists indicates a uniqueness constraint was hit.
	ErrAlreadyExists = errors.New("already exists")
	// ErrOutOfStock is returned when a product with no stock is added to a cart.
	ErrOutOfStock = errors.New("out of stock")
	// ErrInsufficientStock is returned when a requested quantity exceeds available stock.
	ErrInsufficientStock = errors.New("insufficient stock")
	// ErrEmptyCart is returned when checkout is attempted without items.
	ErrEmptyCart = errors.New("cart is empty")
	// ErrValidation marks malformed input.
	ErrValidation = errors.New("validation failed")
	// ErrInvalidTransition is returned for order status changes outside the allowed graph.
	ErrInvalidTransition = errors.New("invalid status transition")
)
