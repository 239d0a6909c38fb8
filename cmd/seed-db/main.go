// Command seed-db loads catalog and promotion seed files into PostgreSQL.
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"time"

	"github.com/go-faster/errors"
	"go.uber.org/zap"

	"github.com/xenking/food-delivery/internal/seed"
	"github.com/xenking/food-delivery/internal/storage/postgres"
)

func main() {
	var (
		databaseURL string
		useDefault  bool
	)

	flag.StringVar(&databaseURL, "database-url", "", "PostgreSQL connection URL (or DATABASE_URL env)")
	flag.BoolVar(&useDefault, "default", false, "seed the built-in sample data in addition to the given files")
	flag.Parse()

	lg, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer func() { _ = lg.Sync() }()

	if databaseURL == "" {
		databaseURL = os.Getenv("DATABASE_URL")
	}
	if databaseURL == "" {
		lg.Fatal("Database URL is required: set --database-url or DATABASE_URL")
	}
	files := flag.Args()
	if len(files) == 0 && !useDefault {
		lg.Fatal("Nothing to seed: pass seed files (.json or .json.gz) or --default")
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := run(ctx, lg, databaseURL, files, useDefault); err != nil {
		lg.Fatal("Seed failed", zap.Error(err))
	}
	lg.Info("Seed completed")
}

func run(ctx context.Context, lg *zap.Logger, databaseURL string, files []string, useDefault bool) error {
	data := &seed.Data{}
	if useDefault {
		data.Merge(seed.Default())
	}
	if len(files) > 0 {
		loaded, err := seed.LoadFiles(ctx, files...)
		if err != nil {
			return errors.Wrap(err, "load seed files")
		}
		data.Merge(loaded)
	}
	set, err := data.Build(time.Now())
	if err != nil {
		return errors.Wrap(err, "build seed")
	}
	if len(set.Customers) > 0 {
		lg.Warn("Customers are kept in memory by the API server and are not seeded",
			zap.Int("skipped", len(set.Customers)))
	}

	lg.Info("Connecting to database")
	pool, err := postgres.NewPool(ctx, databaseURL)
	if err != nil {
		return errors.Wrap(err, "connect to database")
	}
	defer pool.Close()

	if err := postgres.RunMigrations(ctx, pool); err != nil {
		return errors.Wrap(err, "run migrations")
	}

	catalogRepo := postgres.NewCatalogRepository(pool)
	for _, r := range set.Restaurants {
		if err := catalogRepo.UpsertRestaurant(ctx, r); err != nil {
			return errors.Wrapf(err, "upsert restaurant %d", r.ID)
		}
	}
	for _, it := range set.MenuItems {
		if err := catalogRepo.UpsertMenuItem(ctx, it); err != nil {
			return errors.Wrapf(err, "upsert menu item %d", it.ID)
		}
	}
	for _, dp := range set.DeliveryPeople {
		if err := catalogRepo.UpsertDeliveryPerson(ctx, dp); err != nil {
			return errors.Wrapf(err, "upsert delivery person %d", dp.ID)
		}
	}

	promotions := postgres.NewPromotionRepository(pool)
	for _, p := range set.Promotions {
		if err := promotions.Upsert(ctx, p); err != nil {
			return errors.Wrapf(err, "upsert promotion %s", p.Code)
		}
	}

	lg.Info("Catalog upserted",
		zap.Int("restaurants", len(set.Restaurants)),
		zap.Int("menu_items", len(set.MenuItems)),
		zap.Int("delivery_people", len(set.DeliveryPeople)),
		zap.Int("promotions", len(set.Promotions)),
	)
	return nil
}
