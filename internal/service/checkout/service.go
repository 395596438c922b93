package checkout

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"storefront/internal/domain"
	"storefront/internal/logging"
	"storefront/internal/metrics"
	checkoutrepo "storefront/internal/repository/checkout"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// EventOrderCreated is the type carried by OrderCreated events.
const EventOrderCreated = "order.created"

// OrderCreated is the outbox payload published for each new order.
type OrderCreated struct {
	EventType  string             `json:"eventType"`
	OrderID    string             `json:"orderId"`
	UserID     string             `json:"userId"`
	TotalPrice string             `json:"totalPrice"`
	Items      []OrderCreatedItem `json:"items"`
	CreatedAt  time.Time          `json:"createdAt"`
}

type OrderCreatedItem struct {
	ItemType domain.ItemType `json:"itemType"`
	ItemID   string          `json:"itemId"`
	Quantity int             `json:"quantity"`
	Price    string          `json:"price"`
}

type Service struct {
	repo    checkoutrepo.Repository
	topic   string
	logger  *zap.Logger
	metrics *metrics.Metrics
	newID   func() string
}

type Option func(*Service)

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// WithIDGenerator replaces uuid.NewString for order IDs.
func WithIDGenerator(fn func() string) Option {
	return func(s *Service) { s.newID = fn }
}

func New(repo checkoutrepo.Repository, topic string, logger *zap.Logger, opts ...Option) *Service {
	s := &Service{
		repo:   repo,
		topic:  topic,
		logger: logging.OrNop(logger),
		newID:  uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Checkout converts the user's cart into a pending order. Order creation,
// price snapshots, stock decrements, the order event and cart deletion commit
// together or not at all.
func (s *Service) Checkout(ctx context.Context, userID string) (*domain.Order, error) {
	var order *domain.Order
	err := s.repo.WithinTx(ctx, func(tx checkoutrepo.Tx) error {
		cart, err := tx.LockCart(ctx, userID)
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrEmptyCart
		}
		if err != nil {
			return err
		}
		if len(cart.Items) == 0 {
			return domain.ErrEmptyCart
		}

		o := s.buildOrder(userID, cart)
		if err := tx.CreateOrder(ctx, o); err != nil {
			return err
		}
		for _, d := range stockDecrements(cart.Items) {
			if err := tx.DecrementStock(ctx, d.productID, d.quantity); err != nil {
				if errors.Is(err, domain.ErrInsufficientStock) {
					return fmt.Errorf("product %s: %w", d.productID, err)
				}
				return err
			}
		}
		if err := tx.Enqueue(ctx, s.topic, o.ID, newOrderCreated(o)); err != nil {
			return err
		}
		if err := tx.DeleteCart(ctx, cart.ID); err != nil {
			return err
		}
		order = o
		return nil
	})

	switch {
	case err == nil:
		s.metrics.CheckoutOutcome(metrics.OutcomeSuccess)
		s.logger.Info("checkout: order created",
			zap.String("user_id", userID),
			zap.String("order_id", order.ID),
			zap.String("total", order.TotalPrice.StringFixed(2)),
			zap.Int("items", len(order.Items)),
		)
		return order, nil
	case errors.Is(err, domain.ErrEmptyCart):
		s.metrics.CheckoutOutcome(metrics.OutcomeEmptyCart)
	case errors.Is(err, domain.ErrInsufficientStock):
		s.metrics.CheckoutOutcome(metrics.OutcomeInsufficientStock)
		s.logger.Info("checkout: rejected", zap.String("user_id", userID), zap.Error(err))
	default:
		s.metrics.CheckoutOutcome(metrics.OutcomeError)
		s.logger.Error("checkout: failed", zap.String("user_id", userID), zap.Error(err))
	}
	return nil, err
}

// buildOrder snapshots each item's current unit price. The order total is
// the live cart total at this moment, which equals the sum of the snapshots.
func (s *Service) buildOrder(userID string, cart *domain.Cart) *domain.Order {
	o := &domain.Order{
		ID:         s.newID(),
		UserID:     userID,
		TotalPrice: cart.TotalPrice(),
		Status:     domain.OrderStatusPending,
		Items:      make([]domain.OrderItem, 0, len(cart.Items)),
	}
	for _, it := range cart.Items {
		o.Items = append(o.Items, domain.OrderItem{
			Item:     it.Item,
			Quantity: it.Quantity,
			Price:    it.UnitPrice,
			Name:     it.Name,
		})
	}
	return o
}

type decrement struct {
	productID string
	quantity  int
}

// stockDecrements lists product quantities in ID order so concurrent
// checkouts lock product rows in the same sequence.
func stockDecrements(items []domain.CartItem) []decrement {
	var out []decrement
	for _, it := range items {
		if id, ok := it.Item.ProductID(); ok {
			out = append(out, decrement{productID: id, quantity: it.Quantity})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].productID < out[j].productID })
	return out
}

func newOrderCreated(o *domain.Order) OrderCreated {
	ev := OrderCreated{
		EventType:  EventOrderCreated,
		OrderID:    o.ID,
		UserID:     o.UserID,
		TotalPrice: o.TotalPrice.StringFixed(2),
		Items:      make([]OrderCreatedItem, 0, len(o.Items)),
		CreatedAt:  o.CreatedAt,
	}
	for _, it := range o.Items {
		ev.Items = append(ev.Items, OrderCreatedItem{
			ItemType: it.Item.Type(),
			ItemID:   it.Item.ID(),
			Quantity: it.Quantity,
			Price:    it.Price.StringFixed(2),
		})
	}
	return ev
}
