package app

import (
	"context"
	"net/http"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/app"
	"github.com/go-faster/sdk/zctx"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/xenking/food-delivery/internal/domain/analytics"
	"github.com/xenking/food-delivery/internal/domain/catalog"
	"github.com/xenking/food-delivery/internal/domain/customer"
	"github.com/xenking/food-delivery/internal/domain/order"
	"github.com/xenking/food-delivery/internal/domain/promotion"
	"github.com/xenking/food-delivery/internal/handler"
	"github.com/xenking/food-delivery/internal/jobs"
	"github.com/xenking/food-delivery/internal/notify"
	"github.com/xenking/food-delivery/internal/seed"
	"github.com/xenking/food-delivery/internal/storage/memory"
	"github.com/xenking/food-delivery/internal/storage/postgres"
	"github.com/xenking/food-delivery/pkg/health"
	"github.com/xenking/food-delivery/pkg/httpmiddleware"
)

const serviceName = "food-delivery"

// Run creates all dependencies, starts the HTTP server, and handles graceful
// shutdown. It is the single wiring point for the application.
func Run(ctx context.Context, lg *zap.Logger, m *app.Telemetry, cfg *Config) error {
	return run(ctx, lg, m.TracerProvider(), m.MeterProvider(), cfg)
}

func run(ctx context.Context, lg *zap.Logger, tp trace.TracerProvider, mp metric.MeterProvider, cfg *Config) error {
	lg.Info("Initializing",
		zap.String("addr", cfg.Addr),
		zap.Bool("postgres", cfg.DatabaseURL != ""),
	)

	loc, err := cfg.Location()
	if err != nil {
		return err
	}
	clock := func() time.Time { return time.Now().In(loc) }

	// In-memory stores: customers and orders always live here, the catalog
	// and promotions unless Postgres is configured.
	stores := seed.Stores{
		Catalog:    memory.NewCatalogStore(),
		Customers:  memory.NewCustomerStore(),
		Promotions: memory.NewPromotionStore(),
	}
	if err := loadSeed(ctx, lg, cfg.SeedFile, clock(), stores); err != nil {
		return err
	}
	orders := memory.NewOrderStore()

	healthSvc := health.New()
	healthSvc.AddLivenessCheck("goroutines", time.Second, health.GoroutineCountCheck(10000))

	var (
		catalogRepo   catalog.Repository   = stores.Catalog
		promotionRepo promotion.Repository = stores.Promotions
		scheduled     []jobs.Job
	)
	if cfg.DatabaseURL != "" {
		pool, err := postgres.NewPool(ctx, cfg.DatabaseURL)
		if err != nil {
			return errors.Wrap(err, "create db pool")
		}
		defer pool.Close()

		if err := postgres.RunMigrations(ctx, pool); err != nil {
			return errors.Wrap(err, "run migrations")
		}
		healthSvc.AddReadinessCheck("postgres", 5*time.Second, func(ctx context.Context) error {
			return pool.Ping(ctx)
		})

		promotions := postgres.NewPromotionRepository(pool)
		n, err := promotions.LoadFilter(ctx)
		if err != nil {
			return errors.Wrap(err, "load promotion filter")
		}
		lg.Info("Promotion filter loaded", zap.Int("codes", n))

		catalogRepo = postgres.NewCatalogRepository(pool)
		promotionRepo = promotions
		scheduled = append(scheduled, jobs.Job{
			Name:     "promotion-filter",
			Schedule: cfg.Jobs.PromotionFilter,
			Timeout:  30 * time.Second,
			Run:      jobs.RefreshPromotionFilter(promotions, lg.Named("jobs")),
		})
	}

	// Domain services. Notifications are logged and kept for the customer feed.
	inbox := notify.NewInbox(notify.DefaultInboxSize)
	orderService, err := order.NewService(stores.Customers, catalogRepo, promotionRepo, orders,
		notify.Multi{notify.NewLog(lg.Named("notify")), inbox},
		order.WithLogger(lg.Named("order")),
		order.WithClock(clock),
		order.WithLeadTime(cfg.LeadTime),
		order.WithMeterProvider(mp),
		order.WithTracerProvider(tp),
	)
	if err != nil {
		return errors.Wrap(err, "create order service")
	}
	cartService := customer.NewCartService(stores.Customers, catalogRepo, lg.Named("cart"))
	analyticsService := analytics.NewService(orders, promotionRepo, clock)

	scheduled = append(scheduled, jobs.Job{
		Name:     "analytics-report",
		Schedule: cfg.Jobs.AnalyticsReport,
		Timeout:  30 * time.Second,
		Run:      jobs.AnalyticsReport(analyticsService, lg.Named("analytics")),
	})
	scheduler := jobs.New(lg.Named("jobs"), scheduled...)

	// Mux: health endpoints + API routes on one server.
	mux := http.NewServeMux()
	mux.HandleFunc("GET /livez", healthSvc.LiveEndpoint)
	mux.HandleFunc("GET /readyz", healthSvc.ReadyEndpoint)
	handler.New(orderService, cartService, analyticsService, inbox).Register(mux)

	routeFinder := httpmiddleware.MakeRouteFinder(mux)
	limiter := httpmiddleware.NewRateLimiter(httpmiddleware.RateLimitConfig{
		Max:    cfg.RateLimit.Max,
		Window: cfg.RateLimit.Window,
	})

	server := &http.Server{
		ReadHeaderTimeout: time.Second,
		ReadTimeout:       5 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       120 * time.Second,
		MaxHeaderBytes:    1 << 20,
		Addr:              cfg.Addr,
		Handler: httpmiddleware.Wrap(mux,
			httpmiddleware.Recovery(),
			httpmiddleware.CORS(httpmiddleware.CORSConfig{
				AllowOrigins:     cfg.CORS.Origins,
				AllowHeaders:     []string{"Content-Type", httpmiddleware.RequestIDHeader},
				ExposeHeaders:    []string{httpmiddleware.RequestIDHeader, "X-RateLimit-Limit", "X-RateLimit-Remaining", "X-RateLimit-Reset", "Retry-After"},
				AllowCredentials: cfg.CORS.AllowCredentials,
				MaxAge:           86400,
			}),
			limiter.Middleware(),
			httpmiddleware.RequestID(),
			httpmiddleware.InjectLogger(zctx.From(ctx)),
			httpmiddleware.Instrument(serviceName, routeFinder, tp, mp),
			httpmiddleware.LogRequests(routeFinder),
		),
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return healthSvc.Run(ctx, 10*time.Second)
	})
	g.Go(func() error {
		return limiter.Run(ctx)
	})
	g.Go(func() error {
		return scheduler.Run(ctx)
	})
	g.Go(func() error {
		// Graceful shutdown: wait for context cancellation, drain, then stop.
		<-ctx.Done()
		healthSvc.SetReady(false)
		lg.Info("Readiness set to false, draining", zap.Duration("delay", cfg.Graceful.ReadinessDelay))
		time.Sleep(cfg.Graceful.ReadinessDelay)

		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), cfg.Graceful.ShutdownTimeout)
		defer cancel()

		lg.Info("Shutting down server", zap.Duration("timeout", cfg.Graceful.ShutdownTimeout))
		if err := server.Shutdown(shutdownCtx); err != nil {
			return errors.Wrap(err, "shutdown")
		}
		return nil
	})
	g.Go(func() error {
		healthSvc.SetReady(true)
		lg.Info("Server listening", zap.String("addr", cfg.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return errors.Wrap(err, "server")
		}
		return nil
	})
	return g.Wait()
}

// loadSeed fills the in-memory stores from the seed file, or from the
// built-in sample data when no file is configured.
func loadSeed(ctx context.Context, lg *zap.Logger, path string, now time.Time, st seed.Stores) error {
	data := seed.Default()
	if path != "" {
		var err error
		if data, err = seed.LoadFiles(ctx, path); err != nil {
			return errors.Wrap(err, "load seed")
		}
	}
	set, err := data.Build(now)
	if err != nil {
		return errors.Wrap(err, "build seed")
	}
	if err := set.Apply(st); err != nil {
		return errors.Wrap(err, "apply seed")
	}
	lg.Info("Seed loaded",
		zap.String("file", path),
		zap.Int("restaurants", len(set.Restaurants)),
		zap.Int("menu_items", len(set.MenuItems)),
		zap.Int("customers", len(set.Customers)),
		zap.Int("promotions", len(set.Promotions)),
	)
	return nil
}
