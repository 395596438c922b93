package order

import (
	"context"
	"fmt"
	"strings"

	"storefront/internal/domain"
	"storefront/internal/logging"
	orderrepo "storefront/internal/repository/order"

	"go.uber.org/zap"
)

// BankDetails is the static transfer information shown with every order.
type BankDetails struct {
	AccountNumber string `json:"bankAccount"`
	Name          string `json:"bankName"`
	Instructions  string `json:"instructions"`
}

// PaymentInstructions pairs an order with where to pay for it.
type PaymentInstructions struct {
	Order *domain.Order `json:"order"`
	BankDetails
}

type Service struct {
	repo   orderrepo.Repository
	bank   BankDetails
	logger *zap.Logger
}

func New(repo orderrepo.Repository, bank BankDetails, logger *zap.Logger) *Service {
	return &Service{repo: repo, bank: bank, logger: logging.OrNop(logger)}
}

// GetForUser returns the order only when userID owns it.
func (s *Service) GetForUser(ctx context.Context, userID, orderID string) (*domain.Order, error) {
	return s.repo.GetForUser(ctx, userID, orderID)
}

// ListForUser returns the user's orders, newest first.
func (s *Service) ListForUser(ctx context.Context, userID string) ([]domain.Order, error) {
	orders, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if orders == nil {
		orders = []domain.Order{}
	}
	return orders, nil
}

func (s *Service) PaymentInstructions(ctx context.Context, userID, orderID string) (*PaymentInstructions, error) {
	o, err := s.repo.GetForUser(ctx, userID, orderID)
	if err != nil {
		return nil, err
	}
	return &PaymentInstructions{Order: o, BankDetails: s.bank}, nil
}

// ListAll returns every order, optionally filtered by status.
func (s *Service) ListAll(ctx context.Context, status string) ([]domain.Order, error) {
	st := domain.OrderStatus(strings.ToLower(strings.TrimSpace(status)))
	if st != "" && !st.Valid() {
		return nil, fmt.Errorf("%w: unknown status %q", domain.ErrValidation, status)
	}
	orders, err := s.repo.List(ctx, st)
	if err != nil {
		return nil, err
	}
	if orders == nil {
		orders = []domain.Order{}
	}
	return orders, nil
}

type UpdateStatusInput struct {
	Status string  `json:"status"`
	Notes  *string `json:"notes"`
}

// UpdateStatus applies an operator edit. An empty status keeps the current
// one, nil notes keep the current notes.
func (s *Service) UpdateStatus(ctx context.Context, orderID string, in UpdateStatusInput) (*domain.Order, error) {
	current, err := s.repo.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	next := current.Status
	if raw := strings.TrimSpace(in.Status); raw != "" {
		next = domain.OrderStatus(strings.ToLower(raw))
		if !next.Valid() {
			return nil, fmt.Errorf("%w: unknown status %q", domain.ErrValidation, in.Status)
		}
	}
	if !current.Status.CanTransitionTo(next) {
		return nil, fmt.Errorf("%w: %s -> %s", domain.ErrInvalidTransition, current.Status, next)
	}
	notes := current.Notes
	if in.Notes != nil {
		notes = strings.TrimSpace(*in.Notes)
	}
	updated, err := s.repo.UpdateStatus(ctx, current.ID, current.Status, next, notes)
	if err != nil {
		return nil, err
	}
	s.logger.Info("order: status changed",
		zap.String("order_id", updated.ID),
		zap.String("from", string(current.Status)),
		zap.String("to", string(updated.Status)),
	)
	return updated, nil
}
