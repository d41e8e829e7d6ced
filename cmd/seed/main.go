// Command seed loads a demo user and a handful of sample listings.
package main

import (
	"context"
	"errors"
	"log/slog"
	"os"

	"github.com/joho/godotenv"

	"github.com/baharkarakas/roamr-backend/internal/auth"
	"github.com/baharkarakas/roamr-backend/internal/config"
	"github.com/baharkarakas/roamr-backend/internal/db"
	"github.com/baharkarakas/roamr-backend/internal/logger"
	"github.com/baharkarakas/roamr-backend/internal/models"
	"github.com/baharkarakas/roamr-backend/internal/repository/postgres"
	"github.com/baharkarakas/roamr-backend/internal/services"
)

const (
	demoUsername = "testuser"
	demoEmail    = "test@example.com"
	demoPassword = "testpassword"
)

func price(v float64) *float64 { return &v }

var sampleListings = []services.ListingInput{
	{
		Title:       "Cozy Beachfront Cottage",
		Description: "Escape to this charming beachfront cottage for a relaxing getaway.",
		Price:       price(1500),
		Location:    "Malibu",
		Country:     "United States",
		Category:    []string{"Beach", "Trending"},
	},
	{
		Title:       "Modern Loft in Downtown",
		Description: "Stay in the heart of the city in this stylish loft apartment.",
		Price:       price(1200),
		Location:    "New York City",
		Country:     "United States",
		Category:    []string{"Apartments", "City"},
	},
	{
		Title:       "Mountain Retreat",
		Description: "Unplug and unwind in this peaceful mountain cabin.",
		Price:       price(1000),
		Location:    "Aspen",
		Country:     "United States",
		Category:    []string{"Cabins", "Mountains"},
	},
	{
		Title:       "Historic Villa in Tuscany",
		Description: "Experience the charm of Tuscany in this beautifully restored villa.",
		Price:       price(2500),
		Location:    "Florence",
		Country:     "Italy",
		Category:    []string{"Villas", "Luxury", "Countryside"},
	},
	{
		Title:       "Secluded Treehouse Getaway",
		Description: "Live among the treetops in this unique treehouse retreat.",
		Price:       price(800),
		Location:    "Portland",
		Country:     "United States",
		Category:    []string{"Unique Stays", "Pet Friendly"},
	},
}

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("config", "err", err)
		os.Exit(1)
	}
	log := logger.New(cfg.Env, cfg.LogLevel)

	if err := seed(context.Background(), cfg, log); err != nil {
		log.Error("seed", "err", err)
		os.Exit(1)
	}
}

func seed(ctx context.Context, cfg config.Config, log *slog.Logger) error {
	if cfg.StoreDriver != config.StorePostgres {
		return errors.New("seed needs STORE_DRIVER=postgres")
	}
	pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns)
	if err != nil {
		return err
	}
	defer pool.Close()
	if err := db.RunMigrations(ctx, pool); err != nil {
		return err
	}

	repos := postgres.NewRepositories(pool)
	tokens := auth.NewTokenManager(cfg.JWTIssuer, cfg.JWTAccessSecret, cfg.JWTRefreshSecret, cfg.JWTAccessTTL, cfg.JWTRefreshTTL)
	users := services.NewUserService(repos.Users, tokens, services.WithLogger(log))
	listings := services.NewListingService(repos.Listings, repos.Reviews, repos.AuditLogs, services.WithLogger(log))

	owner, err := repos.Users.GetByUsername(ctx, demoUsername)
	switch {
	case errors.Is(err, models.ErrNotFound):
		owner, err = users.Register(ctx, demoUsername, demoEmail, demoPassword)
		if err != nil {
			return err
		}
		log.Info("demo user created", "username", owner.Username)
	case err != nil:
		return err
	default:
		log.Info("demo user exists", "username", owner.Username)
	}

	p := auth.Principal{ID: owner.ID}
	for _, in := range sampleListings {
		l, err := listings.Create(ctx, p, in, nil)
		if err != nil {
			return err
		}
		log.Info("listing created", "id", l.ID, "title", l.Title)
	}
	return nil
}
