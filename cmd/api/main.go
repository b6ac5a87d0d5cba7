package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"golang.org/x/sync/errgroup"

	"github.com/angelmondragon/minimart-backend/api/routes"
	"github.com/angelmondragon/minimart-backend/internal/auth"
	"github.com/angelmondragon/minimart-backend/internal/cart"
	"github.com/angelmondragon/minimart-backend/internal/follows"
	"github.com/angelmondragon/minimart-backend/internal/items"
	"github.com/angelmondragon/minimart-backend/internal/orders"
	"github.com/angelmondragon/minimart-backend/internal/qna"
	"github.com/angelmondragon/minimart-backend/internal/reviews"
	"github.com/angelmondragon/minimart-backend/internal/sellers"
	"github.com/angelmondragon/minimart-backend/internal/statistics"
	"github.com/angelmondragon/minimart-backend/internal/users"
	"github.com/angelmondragon/minimart-backend/internal/verification"
	"github.com/angelmondragon/minimart-backend/pkg/auth/session"
	"github.com/angelmondragon/minimart-backend/pkg/config"
	"github.com/angelmondragon/minimart-backend/pkg/db"
	"github.com/angelmondragon/minimart-backend/pkg/logger"
	"github.com/angelmondragon/minimart-backend/pkg/metrics"
	"github.com/angelmondragon/minimart-backend/pkg/migrate"
	"github.com/angelmondragon/minimart-backend/pkg/outbox"
	"github.com/angelmondragon/minimart-backend/pkg/redis"
	"github.com/angelmondragon/minimart-backend/pkg/security"
)

const shutdownTimeout = 15 * time.Second

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}
	cfg.Service.Kind = "api"

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
		Format:      cfg.App.LogFormat,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	params, err := buildServices(cfg, logg, dbClient, redisClient, registry)
	if err != nil {
		logg.Error(context.Background(), "failed to wire services", err)
		os.Exit(1)
	}
	params.Metrics = metrics.NewHTTPMetrics(registry)
	params.Gatherer = registry

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = logg.WithFields(ctx, map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})

	server := &http.Server{
		Addr:              addr,
		Handler:           routes.NewRouter(params),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	group, gctx := errgroup.WithContext(ctx)
	group.Go(func() error {
		logg.Info(ctx, "starting api server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	group.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
		defer cancel()
		logg.Info(ctx, "api server shutting down")
		return server.Shutdown(shutdownCtx)
	})

	if err := group.Wait(); err != nil {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
	logg.Info(ctx, "api server stopped")
}

func buildServices(cfg *config.Config, logg *logger.Logger, dbClient *db.Client, redisClient *redis.Client, reg prometheus.Registerer) (routes.Params, error) {
	gdb := dbClient.DB()
	hasher := security.NewHasher(cfg.Password)

	userRepo := users.NewRepository(gdb)
	sellerRepo := sellers.NewRepository(gdb)
	itemRepo := items.NewRepository(gdb)
	emitter := outbox.NewService(outbox.NewRepository(gdb), logg)

	sessionManager, err := session.NewManager(redisClient, cfg.JWT)
	if err != nil {
		return routes.Params{}, err
	}

	sender, err := verification.NewRedisSender(redisClient, cfg.Verification.Channel)
	if err != nil {
		return routes.Params{}, err
	}
	verifier, err := verification.NewService(redisClient, sender, cfg.Verification, logg)
	if err != nil {
		return routes.Params{}, err
	}

	authService, err := auth.NewService(auth.ServiceParams{
		UserRepo:       userRepo,
		SessionManager: sessionManager,
		Verification:   verifier,
		Hasher:         hasher,
		JWTConfig:      cfg.JWT,
	})
	if err != nil {
		return routes.Params{}, err
	}
	registerService, err := auth.NewRegisterService(userRepo, hasher)
	if err != nil {
		return routes.Params{}, err
	}
	userService, err := users.NewService(userRepo, hasher, sessionManager)
	if err != nil {
		return routes.Params{}, err
	}
	sellerService, err := sellers.NewService(sellers.ServiceParams{
		Repo:     sellerRepo,
		DBClient: dbClient,
		Outbox:   emitter,
	})
	if err != nil {
		return routes.Params{}, err
	}
	followService, err := follows.NewService(follows.NewRepository(gdb), sellerRepo)
	if err != nil {
		return routes.Params{}, err
	}
	itemService, err := items.NewService(itemRepo, dbClient, sellerRepo)
	if err != nil {
		return routes.Params{}, err
	}
	reviewService, err := reviews.NewService(reviews.NewRepository(gdb), itemRepo)
	if err != nil {
		return routes.Params{}, err
	}
	cartRepo := cart.NewRepository(gdb)
	cartService, err := cart.NewService(cart.ServiceParams{Repo: cartRepo, Catalog: itemRepo})
	if err != nil {
		return routes.Params{}, err
	}
	orderService, err := orders.NewService(orders.ServiceParams{
		Repo:      orders.NewRepository(gdb),
		Tx:        dbClient,
		Outbox:    emitter,
		Inventory: items.NewInventory(itemRepo),
		Carts:     cartRepo,
		Sellers:   sellerRepo,
		Hasher:    hasher,
		Metrics:   metrics.NewOrderMetrics(reg),
		Logger:    logg,
	})
	if err != nil {
		return routes.Params{}, err
	}
	qnaService, err := qna.NewService(qna.NewRepository(gdb))
	if err != nil {
		return routes.Params{}, err
	}
	statsService, err := statistics.NewService(statistics.NewRepository(gdb), sellerRepo)
	if err != nil {
		return routes.Params{}, err
	}

	return routes.Params{
		Config:     cfg,
		Logger:     logg,
		DB:         dbClient,
		Redis:      redisClient,
		Sessions:   sessionManager,
		Auth:       authService,
		Register:   registerService,
		Users:      userService,
		Sellers:    sellerService,
		Follows:    followService,
		Items:      itemService,
		Reviews:    reviewService,
		Cart:       cartService,
		Orders:     orderService,
		Qna:        qnaService,
		Statistics: statsService,
	}, nil
}
