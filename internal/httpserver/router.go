package httpserver

import (
	"context"
	"errors"
	"net/http"
	"time"

	"storefront/internal/domain"
	"storefront/internal/metrics"
	cartsvc "storefront/internal/service/cart"
	catalogsvc "storefront/internal/service/catalog"
	ordersvc "storefront/internal/service/order"
	usersvc "storefront/internal/service/user"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

type CatalogService interface {
	ListCourses(ctx context.Context, q catalogsvc.CourseQuery) (catalogsvc.Page[domain.Course], error)
	GetCourse(ctx context.Context, id string) (*domain.Course, error)
	ListProducts(ctx context.Context, q catalogsvc.ProductQuery) (catalogsvc.Page[domain.Product], error)
	GetProduct(ctx context.Context, id string) (*domain.Product, error)
	Featured(ctx context.Context) (*catalogsvc.Featured, error)
}

type UserService interface {
	Signup(ctx context.Context, in usersvc.SignupInput) (*domain.User, error)
	Login(ctx context.Context, email, password string) (*usersvc.Session, error)
	LookupByToken(ctx context.Context, token string) (*domain.User, error)
	Logout(ctx context.Context, token string) error
	Profile(ctx context.Context, userID string) (*usersvc.Profile, error)
}

type CartService interface {
	AddItem(ctx context.Context, userID string, itemType domain.ItemType, itemID string) (*cartsvc.AddResult, error)
	IncrementOrAddProduct(ctx context.Context, userID, productID string) (*cartsvc.AddResult, error)
	SetQuantity(ctx context.Context, userID, itemID string, quantity int) (*domain.CartItem, error)
	RemoveItem(ctx context.Context, userID, itemID string) error
	View(ctx context.Context, userID string) (*domain.Cart, error)
	Count(ctx context.Context, userID string) (int, error)
}

type CheckoutService interface {
	Checkout(ctx context.Context, userID string) (*domain.Order, error)
}

type OrderService interface {
	GetForUser(ctx context.Context, userID, orderID string) (*domain.Order, error)
	ListForUser(ctx context.Context, userID string) ([]domain.Order, error)
	PaymentInstructions(ctx context.Context, userID, orderID string) (*ordersvc.PaymentInstructions, error)
	ListAll(ctx context.Context, status string) ([]domain.Order, error)
	UpdateStatus(ctx context.Context, orderID string, in ordersvc.UpdateStatusInput) (*domain.Order, error)
}

// Deps carries the services behind the router. Metrics and MetricsHandler
// are optional.
type Deps struct {
	Catalog        CatalogService
	Users          UserService
	Carts          CartService
	Checkout       CheckoutService
	Orders         OrderService
	Metrics        *metrics.Metrics
	MetricsHandler http.Handler
	AdminToken     string
	CORSOrigins    []string
}

type handlers struct {
	Deps
	logger *zap.Logger
}

// buildRouter wires routes for the API.
func buildRouter(logger *zap.Logger, db *pgxpool.Pool, deps Deps) (*gin.Engine, error) {
	if deps.Catalog == nil || deps.Users == nil || deps.Carts == nil || deps.Checkout == nil || deps.Orders == nil {
		return nil, errors.New("httpserver: missing service dependency")
	}
	if gin.Mode() != gin.TestMode {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(requestLogger(logger), gin.Recovery(), deps.Metrics.Middleware())
	router.Use(cors.New(corsConfig(deps.CORSOrigins)))

	router.GET("/healthz", healthHandler)
	router.GET("/readyz", readyHandler(db))
	if deps.MetricsHandler != nil {
		router.GET("/metrics", gin.WrapH(deps.MetricsHandler))
	}

	h := &handlers{Deps: deps, logger: logger}

	router.GET("/featured", h.featured)
	router.GET("/courses", h.listCourses)
	router.GET("/courses/:id", h.getCourse)
	router.GET("/products", h.listProducts)
	router.GET("/products/:id", h.getProduct)

	router.POST("/auth/signup", h.signup)
	router.POST("/auth/token", h.token)

	authed := router.Group("/", authMiddleware(deps.Users))
	authed.DELETE("/auth/token", h.logout)
	authed.GET("/me", h.me)

	authed.GET("/cart", h.viewCart)
	authed.GET("/cart/count", h.cartCount)
	authed.POST("/cart/items", h.addCartItem)
	authed.POST("/cart/products/:id", h.incrementProduct)
	authed.PUT("/cart/items/:itemId", h.setCartItemQuantity)
	authed.DELETE("/cart/items/:itemId", h.removeCartItem)

	authed.POST("/checkout", h.checkout)
	authed.GET("/orders", h.listOrders)
	authed.GET("/orders/:id", h.getOrder)
	authed.GET("/orders/:id/payment", h.paymentInstructions)

	admin := router.Group("/admin", adminMiddleware(deps.AdminToken))
	admin.GET("/orders", h.adminListOrders)
	admin.PATCH("/orders/:id", h.adminUpdateOrder)

	return router, nil
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", adminTokenHeader},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}
	if len(origins) == 0 || (len(origins) == 1 && origins[0] == "*") {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
	}
	return cfg
}
