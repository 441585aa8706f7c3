package httpserver

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/SUHAIBCHEMBAN/autozen/internal/domain"
	"github.com/SUHAIBCHEMBAN/autozen/internal/metrics"
	cartsvc "github.com/SUHAIBCHEMBAN/autozen/internal/service/cart"
	checkoutsvc "github.com/SUHAIBCHEMBAN/autozen/internal/service/checkout"
	usersvc "github.com/SUHAIBCHEMBAN/autozen/internal/service/user"
)

// AuthService is what the router needs from the account service.
type AuthService interface {
	Register(ctx context.Context, in usersvc.RegisterInput) (*domain.User, error)
	Login(ctx context.Context, identifier, password string) (*domain.User, string, error)
	ValidateToken(ctx context.Context, token string) (*domain.User, error)
	Logout(ctx context.Context, token string) error
	TokenTTLSeconds() int
}

// ProductService is what the router needs from the catalog service.
type ProductService interface {
	List(ctx context.Context) ([]domain.Product, error)
	GetBySlug(ctx context.Context, slug string) (*domain.Product, error)
}

// CartService is what the router needs from the cart service.
type CartService interface {
	Get(ctx context.Context, userID string) (domain.CartView, error)
	GetSummary(ctx context.Context, userID string) (cartsvc.Summary, error)
	AddItem(ctx context.Context, userID, productID string, quantity int) (domain.CartView, error)
	UpdateItemQuantity(ctx context.Context, userID, productID string, quantity int) (domain.CartView, error)
	RemoveItem(ctx context.Context, userID, productID string) (domain.CartView, error)
	Clear(ctx context.Context, userID string) (domain.CartView, error)
}

// WishlistService is what the router needs from the wishlist service.
type WishlistService interface {
	Get(ctx context.Context, userID string) (domain.Wishlist, error)
	Add(ctx context.Context, userID, productID string) (domain.Wishlist, bool, error)
	Remove(ctx context.Context, userID, productID string) (domain.Wishlist, error)
	Clear(ctx context.Context, userID string) (domain.Wishlist, error)
}

// CheckoutService is what the router needs from the checkout service.
type CheckoutService interface {
	Checkout(ctx context.Context, userID string, in checkoutsvc.Input) (*domain.Order, error)
}

// OrderService is what the router needs from the order service.
type OrderService interface {
	Get(ctx context.Context, orderNumber string) (*domain.Order, error)
	ListForUser(ctx context.Context, userID string) ([]domain.Order, error)
	ListAll(ctx context.Context) ([]domain.Order, error)
	UpdateStatus(ctx context.Context, orderNumber string, next domain.OrderStatus, notes string) (*domain.Order, error)
	Cancel(ctx context.Context, orderNumber, notes string) (*domain.Order, error)
	Track(ctx context.Context, orderNumber, email string) (*domain.Order, error)
}

// PaymentService is what the router needs from the payment service.
type PaymentService interface {
	Pay(ctx context.Context, userID, orderNumber string, gateway domain.PaymentGateway) (*domain.Transaction, *domain.Order, error)
	TransactionsForOrder(ctx context.Context, userID, orderNumber string, staff bool) ([]domain.Transaction, error)
	ListConfigs(ctx context.Context) ([]domain.PaymentConfiguration, error)
	UpsertConfig(ctx context.Context, cfg domain.PaymentConfiguration) (*domain.PaymentConfiguration, error)
}

// Deps groups the services the router dispatches to.
type Deps struct {
	AuthSvc     AuthService
	ProductSvc  ProductService
	CartSvc     CartService
	WishlistSvc WishlistService
	CheckoutSvc CheckoutService
	OrderSvc    OrderService
	PaymentSvc  PaymentService

	// Metrics is optional; when nil no request metrics are recorded.
	Metrics *metrics.Metrics

	// Rate limit for the public order tracking endpoint, per client address.
	TrackRateRPS   float64
	TrackRateBurst int
}

// buildRouter wires routes for the API.
func buildRouter(logger *log.Logger, db *pgxpool.Pool, deps Deps) *gin.Engine {
	router := gin.New()
	router.Use(gin.LoggerWithWriter(logger.Writer()), gin.Recovery())
	router.Use(cors.New(cors.Config{
		AllowAllOrigins: true,
		AllowMethods:    []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete},
		AllowHeaders:    []string{"Authorization", "Content-Type"},
		MaxAge:          12 * time.Hour,
	}))
	if deps.Metrics != nil {
		router.Use(metricsMiddleware(deps.Metrics))
	}

	router.GET("/healthz", healthHandler)
	router.GET("/readyz", readyHandler(db))
	router.GET("/metrics", gin.WrapH(metrics.Handler()))

	router.GET("/products", listProductsHandler(deps.ProductSvc))
	router.GET("/products/:slug", getProductHandler(deps.ProductSvc))

	router.POST("/auth/register", registerHandler(deps.AuthSvc))
	router.POST("/auth/login", loginHandler(deps.AuthSvc))

	// Order tracking is unauthenticated, so it gets a per-client budget.
	track := newClientLimiter(deps.TrackRateRPS, deps.TrackRateBurst)
	router.POST("/orders/track", rateLimit(track), trackOrderHandler(deps.OrderSvc))

	authed := router.Group("", authMiddleware(deps.AuthSvc))

	authed.POST("/auth/logout", logoutHandler(deps.AuthSvc))
	authed.GET("/me", meHandler())

	authed.GET("/cart", getCartHandler(deps.CartSvc))
	authed.GET("/cart/summary", cartSummaryHandler(deps.CartSvc))
	authed.POST("/cart/items", addCartItemHandler(deps.CartSvc))
	authed.PUT("/cart/items/:productID", updateCartItemHandler(deps.CartSvc))
	authed.DELETE("/cart/items/:productID", removeCartItemHandler(deps.CartSvc))
	authed.DELETE("/cart", clearCartHandler(deps.CartSvc))

	authed.GET("/wishlist", getWishlistHandler(deps.WishlistSvc))
	authed.POST("/wishlist/items", addWishlistItemHandler(deps.WishlistSvc))
	authed.DELETE("/wishlist/items/:productID", removeWishlistItemHandler(deps.WishlistSvc))
	authed.DELETE("/wishlist", clearWishlistHandler(deps.WishlistSvc))

	authed.POST("/checkout", checkoutHandler(deps.CheckoutSvc))

	authed.GET("/orders", listOrdersHandler(deps.OrderSvc))
	authed.GET("/orders/:orderNumber", getOrderHandler(deps.OrderSvc))
	authed.POST("/orders/:orderNumber/cancel", cancelOrderHandler(deps.OrderSvc))
	authed.POST("/orders/:orderNumber/status", staffOnly(), updateOrderStatusHandler(deps.OrderSvc))
	authed.POST("/orders/:orderNumber/pay", payOrderHandler(deps.PaymentSvc))
	authed.GET("/orders/:orderNumber/transactions", orderTransactionsHandler(deps.PaymentSvc))

	authed.GET("/payments/gateways", staffOnly(), listGatewaysHandler(deps.PaymentSvc))
	authed.PUT("/payments/gateways", staffOnly(), upsertGatewayHandler(deps.PaymentSvc))

	return router
}
