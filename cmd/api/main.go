package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/SUHAIBCHEMBAN/autozen/internal/cache"
	"github.com/SUHAIBCHEMBAN/autozen/internal/config"
	"github.com/SUHAIBCHEMBAN/autozen/internal/db"
	"github.com/SUHAIBCHEMBAN/autozen/internal/httpserver"
	"github.com/SUHAIBCHEMBAN/autozen/internal/metrics"
	"github.com/SUHAIBCHEMBAN/autozen/internal/notify"
	cartrepo "github.com/SUHAIBCHEMBAN/autozen/internal/repository/cart"
	orderrepo "github.com/SUHAIBCHEMBAN/autozen/internal/repository/order"
	paymentrepo "github.com/SUHAIBCHEMBAN/autozen/internal/repository/payment"
	productrepo "github.com/SUHAIBCHEMBAN/autozen/internal/repository/product"
	userrepo "github.com/SUHAIBCHEMBAN/autozen/internal/repository/user"
	wishlistrepo "github.com/SUHAIBCHEMBAN/autozen/internal/repository/wishlist"
	cartsvc "github.com/SUHAIBCHEMBAN/autozen/internal/service/cart"
	checkoutsvc "github.com/SUHAIBCHEMBAN/autozen/internal/service/checkout"
	ordersvc "github.com/SUHAIBCHEMBAN/autozen/internal/service/order"
	paymentsvc "github.com/SUHAIBCHEMBAN/autozen/internal/service/payment"
	productsvc "github.com/SUHAIBCHEMBAN/autozen/internal/service/product"
	usersvc "github.com/SUHAIBCHEMBAN/autozen/internal/service/user"
	wishlistsvc "github.com/SUHAIBCHEMBAN/autozen/internal/service/wishlist"
)

func main() {
	_ = godotenv.Load()
	cfg := config.FromEnv()
	logger := log.New(os.Stdout, "[api] ", log.LstdFlags|log.LUTC|log.Lshortfile)

	ctx := context.Background()
	dbpool, err := db.Connect(ctx, cfg.DBConnString)
	if err != nil {
		logger.Fatalf("connect to db: %v", err)
	}
	defer dbpool.Close()

	m := metrics.New("api")
	store := cache.New(cfg.CacheTTL)
	store.Instrument(m.CacheHits, m.CacheMisses)

	var events notify.Publisher = notify.Nop{}
	if cfg.AMQPURL != "" {
		amqpPub, err := notify.Dial(cfg.AMQPURL, cfg.AMQPExchange, logger)
		if err != nil {
			logger.Fatalf("connect to amqp: %v", err)
		}
		events = amqpPub
	}
	defer events.Close()

	userRepo := userrepo.NewPostgres(dbpool, logger)
	productRepo := productrepo.NewPostgres(dbpool, logger)
	cartRepo := cartrepo.NewPostgres(dbpool, logger)
	wishlistRepo := wishlistrepo.NewPostgres(dbpool, logger)
	orderRepo := orderrepo.NewPostgres(dbpool, logger)
	paymentRepo := paymentrepo.NewPostgres(dbpool, logger)

	authService := usersvc.New(userRepo, cfg.TokenTTL)
	productService := productsvc.New(productRepo, store)
	cartService := cartsvc.New(cartRepo, productRepo, store)
	wishlistService := wishlistsvc.New(wishlistRepo, productRepo, store)
	checkoutService := checkoutsvc.New(orderRepo, productRepo, store, checkoutsvc.PricingPolicy{
		TaxRate:               cfg.TaxRate,
		ShippingCents:         cfg.ShippingFlatCents,
		FreeShippingOverCents: cfg.FreeShippingOverCents,
	}, events, logger)
	orderService := ordersvc.New(orderRepo, store, events, logger)
	paymentService := paymentsvc.New(orderRepo, paymentRepo, store, cfg.PaymentConfigTTL, events, logger)

	srv := httpserver.New(cfg.HTTPAddr, logger, dbpool, httpserver.Deps{
		AuthSvc:        authService,
		ProductSvc:     productService,
		CartSvc:        cartService,
		WishlistSvc:    wishlistService,
		CheckoutSvc:    checkoutService,
		OrderSvc:       orderService,
		PaymentSvc:     paymentService,
		Metrics:        m,
		TrackRateRPS:   cfg.TrackRateRPS,
		TrackRateBurst: cfg.TrackRateBurst,
	})

	// Expired tokens are also dropped on touch; the purge catches the ones
	// nobody presents again.
	purgeCtx, stopPurge := context.WithCancel(ctx)
	defer stopPurge()
	go func() {
		ticker := time.NewTicker(time.Hour)
		defer ticker.Stop()
		for {
			select {
			case <-purgeCtx.Done():
				return
			case <-ticker.C:
				if _, err := userRepo.DeleteExpiredTokens(purgeCtx, time.Now()); err != nil {
					logger.Printf("token purge: %v", err)
				}
			}
		}
	}()

	serverErr := make(chan error, 1)
	go func() {
		logger.Printf("starting http server on %s", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	stopCh := make(chan os.Signal, 1)
	signal.Notify(stopCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-stopCh:
		logger.Printf("received signal %s, shutting down", sig)
	case err := <-serverErr:
		logger.Printf("server error: %v", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Printf("graceful shutdown failed: %v", err)
	} else {
		logger.Printf("server stopped")
	}
}
