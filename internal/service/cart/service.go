package cart

import (
	"context"
	"errors"

	"storefront/internal/domain"
	"storefront/internal/logging"
	cartrepo "storefront/internal/repository/cart"

	"go.uber.org/zap"
)

type Service struct {
	repo     cartrepo.Repository
	courses  courseLookup
	products productLookup
	logger   *zap.Logger
}

type courseLookup interface {
	GetByID(ctx context.Context, id string) (*domain.Course, error)
}

type productLookup interface {
	GetByID(ctx context.Context, id string) (*domain.Product, error)
}

func New(repo cartrepo.Repository, courses courseLookup, products productLookup, logger *zap.Logger) *Service {
	return &Service{repo: repo, courses: courses, products: products, logger: logging.OrNop(logger)}
}

// AddResult reports the line item after an add. Created is false when the
// item was already in the cart.
type AddResult struct {
	Item    *domain.CartItem `json:"item"`
	Created bool             `json:"created"`
}

// AddItem puts a course or product into the user's cart with quantity 1.
// Adding an entry that is already present leaves its quantity unchanged.
func (s *Service) AddItem(ctx context.Context, userID string, itemType domain.ItemType, itemID string) (*AddResult, error) {
	ref, err := domain.NewItemRef(itemType, itemID)
	if err != nil {
		return nil, err
	}
	if err := s.checkAvailable(ctx, ref); err != nil {
		return nil, err
	}
	cart, err := s.repo.Ensure(ctx, userID)
	if err != nil {
		return nil, err
	}
	item, created, err := s.repo.InsertItem(ctx, cart.ID, ref)
	if err != nil {
		return nil, err
	}
	s.logger.Debug("cart: add item", zap.String("user_id", userID), zap.Stringer("item", ref), zap.Bool("created", created))
	return &AddResult{Item: item, Created: created}, nil
}

// IncrementOrAddProduct adds one unit of a product, creating the line item on
// first use. The resulting quantity never exceeds the product's stock.
func (s *Service) IncrementOrAddProduct(ctx context.Context, userID, productID string) (*AddResult, error) {
	ref, err := domain.NewItemRef(domain.ItemTypeProduct, productID)
	if err != nil {
		return nil, err
	}
	if err := s.checkAvailable(ctx, ref); err != nil {
		return nil, err
	}
	cart, err := s.repo.Ensure(ctx, userID)
	if err != nil {
		return nil, err
	}
	item, created, err := s.repo.InsertItem(ctx, cart.ID, ref)
	if err != nil {
		return nil, err
	}
	if created {
		return &AddResult{Item: item, Created: true}, nil
	}
	item, err = s.repo.IncrementItem(ctx, userID, item.ID)
	if err != nil {
		return nil, err
	}
	return &AddResult{Item: item}, nil
}

// SetQuantity changes a line item's quantity. A non-positive quantity removes
// the item, in which case the returned item is nil.
func (s *Service) SetQuantity(ctx context.Context, userID, itemID string, quantity int) (*domain.CartItem, error) {
	if quantity <= 0 {
		return nil, s.repo.DeleteItem(ctx, userID, itemID)
	}
	return s.repo.SetItemQuantity(ctx, userID, itemID, quantity)
}

func (s *Service) RemoveItem(ctx context.Context, userID, itemID string) error {
	return s.repo.DeleteItem(ctx, userID, itemID)
}

// View returns the user's cart without creating one. A user with no cart
// gets an empty cart whose Exists reports false.
func (s *Service) View(ctx context.Context, userID string) (*domain.Cart, error) {
	cart, err := s.repo.GetByUser(ctx, userID)
	if errors.Is(err, domain.ErrNotFound) {
		return &domain.Cart{UserID: userID, Items: []domain.CartItem{}}, nil
	}
	if err != nil {
		return nil, err
	}
	if cart.Items == nil {
		cart.Items = []domain.CartItem{}
	}
	return cart, nil
}

func (s *Service) Count(ctx context.Context, userID string) (int, error) {
	return s.repo.CountItems(ctx, userID)
}

// checkAvailable resolves ref against the catalog. Inactive entries count as
// absent and products without stock cannot be added.
func (s *Service) checkAvailable(ctx context.Context, ref domain.ItemRef) error {
	if id, ok := ref.CourseID(); ok {
		c, err := s.courses.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if !c.Active {
			return domain.ErrNotFound
		}
		return nil
	}
	id, _ := ref.ProductID()
	p, err := s.products.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if !p.Active {
		return domain.ErrNotFound
	}
	if !p.IsInStock() {
		return domain.ErrOutOfStock
	}
	return nil
}
