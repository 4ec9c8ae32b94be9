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

	"storefront-be/internal/auth"
	"storefront-be/internal/buynow"
	"storefront-be/internal/cache"
	"storefront-be/internal/cart"
	"storefront-be/internal/category"
	"storefront-be/internal/comment"
	"storefront-be/internal/config"
	"storefront-be/internal/dashboard"
	"storefront-be/internal/db"
	"storefront-be/internal/events"
	"storefront-be/internal/logger"
	"storefront-be/internal/middleware"
	"storefront-be/internal/order"
	"storefront-be/internal/product"
	"storefront-be/internal/rating"
	"storefront-be/internal/rest"
	"storefront-be/internal/search"
	"storefront-be/internal/user"

	"go.uber.org/zap"
)

const (
	shutdownTimeout  = 10 * time.Second
	janitorInterval  = time.Minute
	cacheSweepPeriod = time.Minute
	cachePingTimeout = 2 * time.Second
)

var (
	initDBFunc      = db.InitDB
	startServerFunc = func(srv *http.Server) error { return srv.ListenAndServe() }
	pingCacheFunc   = func(ctx context.Context, c *cache.Redis) error { return c.Ping(ctx) }
)

// server is the wired application: the HTTP handler plus the background
// workers and resources that live as long as the process.
type server struct {
	handler http.Handler
	broker  *events.Broker
	workers []func(ctx context.Context)
	closers []func() error
}

func (s *server) close() {
	s.broker.Close()
	for i := len(s.closers) - 1; i >= 0; i-- {
		if err := s.closers[i](); err != nil {
			logger.L().Warn("shutdown: close failed", zap.Error(err))
		}
	}
}

func newServer(cfg *config.Config, database *sql.DB) *server {
	s := &server{broker: events.NewBroker(64)}
	log := logger.L()

	var productCache cache.Cache
	if cfg.RedisAddr != "" {
		client := cache.NewRedisClient(cfg.RedisAddr, cfg.RedisPassword)
		rc := cache.NewRedis(client, "storefront:")

		ctx, cancel := context.WithTimeout(context.Background(), cachePingTimeout)
		err := pingCacheFunc(ctx, rc)
		cancel()

		if err == nil {
			productCache = rc
			s.closers = append(s.closers, client.Close)
			log.Info("product cache: redis", zap.String("addr", cfg.RedisAddr))
		} else {
			_ = client.Close()
			log.Warn("product cache: redis unreachable, using in-memory cache",
				zap.String("addr", cfg.RedisAddr),
				zap.Error(err),
			)
		}
	}
	if productCache == nil {
		mem := cache.NewMemory(cfg.CacheTTL)
		productCache = mem
		s.workers = append(s.workers, func(ctx context.Context) { mem.Run(ctx, cacheSweepPeriod) })
		log.Info("product cache: in-memory")
	}

	publisher := events.Fanout{s.broker}
	if len(cfg.KafkaBrokers) > 0 {
		kafka := events.NewKafkaPublisher(events.NewKafkaWriter(cfg.KafkaBrokers, cfg.KafkaProductTopic))
		publisher = append(publisher, kafka)
		s.closers = append(s.closers, kafka.Close)
		log.Info("product events: kafka enabled",
			zap.Strings("brokers", cfg.KafkaBrokers),
			zap.String("topic", cfg.KafkaProductTopic),
		)
	}

	tokens := auth.NewTokenManager(cfg.JWTSecret, cfg.JWTTTL)

	userSvc := user.NewService(user.NewRepository(database), tokens)
	productSvc := product.NewService(product.NewRepository(database), productCache, publisher)
	cartSvc := cart.NewService(cart.NewRepository(database), productSvc)
	orderSvc := order.NewService(order.NewRepository(database), productSvc, cartSvc)
	buyNowSvc := buynow.NewService(buynow.NewRepository(database), productSvc, orderSvc, cfg.BuyNowTTL)

	h := rest.NewHandler(rest.Services{
		Users:      userSvc,
		Products:   productSvc,
		Categories: category.NewService(category.NewRepository(database), productCache),
		Ratings:    rating.NewService(rating.NewRepository(database), productSvc),
		Comments:   comment.NewService(comment.NewRepository(database), productSvc),
		Cart:       cartSvc,
		BuyNow:     buyNowSvc,
		Orders:     orderSvc,
		Search:     search.NewService(productSvc, search.NewHTTPMatcher(cfg.ImageSearchURL), &search.Stats{}),
		Dashboard:  dashboard.NewService(dashboard.NewRepository(database), cfg.LowStockThreshold),
	})
	h.LowStockThreshold = cfg.LowStockThreshold
	h.CookieSecure = cfg.AppEnv == "production"
	h.TokenTTLSeconds = int(tokens.TTL().Seconds())

	limiter := middleware.NewRateLimiter(cfg.InternalSecretKey)

	s.workers = append(s.workers,
		limiter.Run,
		func(ctx context.Context) { buyNowSvc.Run(ctx, janitorInterval) },
	)

	s.handler = rest.NewRouter(h, rest.RouterOptions{
		Tokens:     tokens,
		Limiter:    limiter,
		CORSOrigin: cfg.CORSOrigin,
		Events:     s.broker,
	})
	return s
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger.Init(cfg.AppEnv)
	defer logger.Sync()
	log := logger.L()

	database := initDBFunc(cfg)
	defer database.Close()

	app := newServer(cfg, database)
	defer app.close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	for _, w := range app.workers {
		go w(ctx)
	}

	srv := &http.Server{
		Addr:              ":" + cfg.AppPort,
		Handler:           app.handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("http server listening", zap.String("addr", srv.Addr), zap.String("env", cfg.AppEnv))
		errCh <- startServerFunc(srv)
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("shutting down")

	// SSE streams only end when the broker closes them.
	app.broker.Close()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func main() {
	if err := run(); err != nil {
		logger.L().Fatal("server stopped", zap.Error(err))
	}
}
