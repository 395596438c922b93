package httpserver

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"storefront/internal/domain"
	cartsvc "storefront/internal/service/cart"
	catalogsvc "storefront/internal/service/catalog"
	ordersvc "storefront/internal/service/order"
	usersvc "storefront/internal/service/user"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const testToken = "good-token"

var testUser = &domain.User{ID: "user-1", Email: "ana@example.com", CreatedAt: time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)}

type stubCatalog struct {
	courses  catalogsvc.Page[domain.Course]
	products catalogsvc.Page[domain.Product]
	course   *domain.Course
	product  *domain.Product
	err      error
	lastCQ   catalogsvc.CourseQuery
	lastPQ   catalogsvc.ProductQuery
}

func (s *stubCatalog) ListCourses(_ context.Context, q catalogsvc.CourseQuery) (catalogsvc.Page[domain.Course], error) {
	s.lastCQ = q
	return s.courses, s.err
}

func (s *stubCatalog) GetCourse(_ context.Context, _ string) (*domain.Course, error) {
	return s.course, s.err
}

func (s *stubCatalog) ListProducts(_ context.Context, q catalogsvc.ProductQuery) (catalogsvc.Page[domain.Product], error) {
	s.lastPQ = q
	return s.products, s.err
}

func (s *stubCatalog) GetProduct(_ context.Context, _ string) (*domain.Product, error) {
	return s.product, s.err
}

func (s *stubCatalog) Featured(_ context.Context) (*catalogsvc.Featured, error) {
	return &catalogsvc.Featured{Courses: s.courses.Items, Products: s.products.Items}, s.err
}

type stubUsers struct {
	signupUser *domain.User
	signupErr  error
	session    *usersvc.Session
	loginErr   error
	profile    *usersvc.Profile
	loggedOut  string
}

func (s *stubUsers) Signup(_ context.Context, in usersvc.SignupInput) (*domain.User, error) {
	if s.signupErr != nil {
		return nil, s.signupErr
	}
	return s.signupUser, nil
}

func (s *stubUsers) Login(_ context.Context, _, _ string) (*usersvc.Session, error) {
	return s.session, s.loginErr
}

func (s *stubUsers) LookupByToken(_ context.Context, token string) (*domain.User, error) {
	if token != testToken {
		return nil, usersvc.ErrInvalidToken
	}
	return testUser, nil
}

func (s *stubUsers) Logout(_ context.Context, token string) error {
	s.loggedOut = token
	return nil
}

func (s *stubUsers) Profile(_ context.Context, _ string) (*usersvc.Profile, error) {
	if s.profile == nil {
		return &usersvc.Profile{User: testUser, Orders: []domain.Order{}}, nil
	}
	return s.profile, nil
}

type stubCarts struct {
	cart      *domain.Cart
	addResult *cartsvc.AddResult
	setItem   *domain.CartItem
	err       error
	lastUser  string
	lastType  domain.ItemType
	lastID    string
	lastQty   int
}

func (s *stubCarts) AddItem(_ context.Context, userID string, t domain.ItemType, id string) (*cartsvc.AddResult, error) {
	s.lastUser, s.lastType, s.lastID = userID, t, id
	return s.addResult, s.err
}

func (s *stubCarts) IncrementOrAddProduct(_ context.Context, userID, id string) (*cartsvc.AddResult, error) {
	s.lastUser, s.lastID = userID, id
	return s.addResult, s.err
}

func (s *stubCarts) SetQuantity(_ context.Context, userID, itemID string, q int) (*domain.CartItem, error) {
	s.lastUser, s.lastID, s.lastQty = userID, itemID, q
	return s.setItem, s.err
}

func (s *stubCarts) RemoveItem(_ context.Context, userID, itemID string) error {
	s.lastUser, s.lastID = userID, itemID
	return s.err
}

func (s *stubCarts) View(_ context.Context, userID string) (*domain.Cart, error) {
	s.lastUser = userID
	return s.cart, s.err
}

func (s *stubCarts) Count(_ context.Context, _ string) (int, error) {
	if s.cart == nil {
		return 0, s.err
	}
	return s.cart.TotalItems(), s.err
}

type stubCheckout struct {
	order *domain.Order
	err   error
}

func (s *stubCheckout) Checkout(_ context.Context, _ string) (*domain.Order, error) {
	return s.order, s.err
}

type stubOrders struct {
	order      *domain.Order
	orders     []domain.Order
	payment    *ordersvc.PaymentInstructions
	err        error
	lastUpdate ordersvc.UpdateStatusInput
	lastStatus string
}

func (s *stubOrders) GetForUser(_ context.Context, _, _ string) (*domain.Order, error) {
	return s.order, s.err
}

func (s *stubOrders) ListForUser(_ context.Context, _ string) ([]domain.Order, error) {
	return s.orders, s.err
}

func (s *stubOrders) PaymentInstructions(_ context.Context, _, _ string) (*ordersvc.PaymentInstructions, error) {
	return s.payment, s.err
}

func (s *stubOrders) ListAll(_ context.Context, status string) ([]domain.Order, error) {
	s.lastStatus = status
	return s.orders, s.err
}

func (s *stubOrders) UpdateStatus(_ context.Context, _ string, in ordersvc.UpdateStatusInput) (*domain.Order, error) {
	s.lastUpdate = in
	return s.order, s.err
}

type testDeps struct {
	catalog  *stubCatalog
	users    *stubUsers
	carts    *stubCarts
	checkout *stubCheckout
	orders   *stubOrders
}

func newTestDeps() *testDeps {
	return &testDeps{
		catalog:  &stubCatalog{},
		users:    &stubUsers{},
		carts:    &stubCarts{},
		checkout: &stubCheckout{},
		orders:   &stubOrders{},
	}
}

func (d *testDeps) router(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	router, err := buildRouter(zap.NewNop(), nil, Deps{
		Catalog:    d.catalog,
		Users:      d.users,
		Carts:      d.carts,
		Checkout:   d.checkout,
		Orders:     d.orders,
		AdminToken: "admin-secret",
	})
	require.NoError(t, err)
	return router
}

func do(router http.Handler, method, path, body string, headers ...string) *httptest.ResponseRecorder {
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func authed(router http.Handler, method, path, body string) *httptest.ResponseRecorder {
	return do(router, method, path, body, "Authorization", "Bearer "+testToken)
}
