package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"abc-retailers/internal/auth"
	"abc-retailers/internal/cart"
	"abc-retailers/internal/category"
	"abc-retailers/internal/config"
	"abc-retailers/internal/db"
	"abc-retailers/internal/home"
	"abc-retailers/internal/logger"
	"abc-retailers/internal/metrics"
	"abc-retailers/internal/middleware"
	"abc-retailers/internal/notify"
	"abc-retailers/internal/order"
	"abc-retailers/internal/product"
	"abc-retailers/internal/transport"
	"abc-retailers/internal/upload"
	"abc-retailers/internal/user"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

var (
	initDBFunc      = db.InitDB
	startServerFunc = func(srv *http.Server) error { return srv.ListenAndServe() }
)

const shutdownTimeout = 10 * time.Second

func main() {
	if err := run(); err != nil {
		logger.L().Fatal("server stopped", zap.Error(err))
	}
}

func run() error {
	cfg := config.LoadConfig()
	logger.Init(cfg.AppEnv)
	defer logger.Sync()
	log := logger.L()

	database := initDBFunc(cfg)
	defer database.Close()

	if cfg.MigrationsAuto {
		if err := db.Migrate(database, log); err != nil {
			return err
		}
	}

	var rdb redis.Cmdable
	if cfg.RedisAddr != "" {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		defer client.Close()
		rdb = client
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := &http.Server{
		Addr:         ":" + cfg.AppPort,
		Handler:      newServer(ctx, cfg, database, rdb),
		IdleTimeout:  time.Minute,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("server running", zap.String("addr", srv.Addr), zap.String("env", cfg.AppEnv))
		errCh <- startServerFunc(srv)
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
		log.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

// newServer wires stores, services and handlers. Redis backs carts and
// notifications when rdb is non-nil; otherwise carts live in memory and
// notifications go to the log.
func newServer(ctx context.Context, cfg *config.Config, database *sql.DB, rdb redis.Cmdable) http.Handler {
	log := logger.L()
	registry := metrics.NewRegistry()

	var (
		carts     cart.Store
		publisher notify.Publisher
	)
	if rdb != nil {
		carts = cart.NewRedisStore(rdb, cfg.CartTTL)
		publisher = notify.NewRedisPublisher(rdb, notify.DefaultQueue)
	} else {
		log.Warn("REDIS_ADDR not set, using in-memory carts and log notifications")
		carts = cart.NewMemoryStore(cfg.CartTTL)
		publisher = notify.NewLogPublisher()
	}

	var uploader product.ImageUploader
	if cfg.UploadFunctionURL != "" {
		uploader = upload.NewClient(cfg.UploadFunctionURL)
	}

	productSvc := product.NewService(product.NewRepository(database), uploader)
	cartSvc := cart.NewService(carts, productSvc, registry)
	orderSvc := order.NewService(order.NewRepository(database), cartSvc, productSvc, publisher, registry)
	issuer := auth.NewIssuer(cfg.JWTSecret)
	userSvc := user.NewService(user.NewRepository(database), issuer)

	secure := cfg.AppEnv == "production"

	return setupRouter(
		issuer,
		middleware.NewRateLimiter(ctx),
		middleware.CartSession(cfg.CartTTL, secure),
		transport.NewHealthHandler(database, registry),
		transport.NewHomeHandler(home.NewService(home.NewRepository(database), productSvc)),
		transport.NewProductHandler(productSvc),
		transport.NewCategoryHandler(category.NewService(category.NewRepository(database))),
		transport.NewCartHandler(cartSvc),
		transport.NewCheckoutHandler(cartSvc, orderSvc),
		transport.NewOrderHandler(orderSvc),
		transport.NewUserHandler(userSvc, secure),
	)
}

type routeRegistrar interface {
	RegisterRoutes(r chi.Router)
}

func setupRouter(
	parser middleware.TokenParser,
	limiter *middleware.RateLimiter,
	session func(http.Handler) http.Handler,
	handlers ...routeRegistrar,
) http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RealIP)
	r.Use(logger.RequestIDMiddleware)
	r.Use(logger.LoggingMiddleware)
	r.Use(middleware.ErrorHandlingMiddleware)
	r.Use(middleware.AuthMiddleware(parser))
	r.Use(session)
	r.Use(limiter.Middleware)

	for _, h := range handlers {
		h.RegisterRoutes(r)
	}
	return r
}
