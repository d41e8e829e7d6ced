package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	"github.com/baharkarakas/roamr-backend/internal/api/handlers"
	"github.com/baharkarakas/roamr-backend/internal/auth"
	"github.com/baharkarakas/roamr-backend/internal/config"
	"github.com/baharkarakas/roamr-backend/internal/metrics"
	"github.com/baharkarakas/roamr-backend/internal/middleware"
	"github.com/baharkarakas/roamr-backend/internal/services"
)

type RouterDeps struct {
	Cfg        config.Config
	Tokens     *auth.TokenManager
	UserSvc    *services.UserService
	ListingSvc *services.ListingService
	QuerySvc   *services.QueryService
	ReviewSvc  *services.ReviewService
	Uploader   handlers.Uploader
}

func NewRouter(d RouterDeps) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.Recover, middleware.HTTPMetrics, middleware.RateLimit(d.Cfg.RateRPS))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Authorization", "Content-Type", middleware.RequestIDHeader},
		ExposedHeaders: []string{middleware.RequestIDHeader, "Location"},
	}))

	// health & metrics
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) { _, _ = w.Write([]byte("ok")) })
	r.Handle("/metrics", metrics.Handler())

	authH := handlers.NewAuthHandler(d.UserSvc)
	listingH := &handlers.ListingHandler{
		Listings:       d.ListingSvc,
		Query:          d.QuerySvc,
		Uploader:       d.Uploader,
		MaxUploadBytes: d.Cfg.MaxUploadBytes,
	}
	reviewH := &handlers.ReviewHandler{Reviews: d.ReviewSvc}
	authMW := middleware.NewAuthMiddleware(d.Tokens)

	r.Route("/api/v1", func(r chi.Router) {
		// ---------- auth ----------
		r.Post("/auth/register", authH.Register)
		r.Post("/auth/login", authH.Login)
		r.Post("/auth/refresh", authH.Refresh)

		// ---------- listings ----------
		r.Get("/listings", listingH.List)
		r.Get("/listings/search", listingH.Search)
		r.Get("/listings/{id}", listingH.Show)

		r.Group(func(r chi.Router) {
			r.Use(authMW.Auth)
			r.Post("/listings", listingH.Create)
			r.Get("/listings/{id}/edit", listingH.Edit)
			r.Put("/listings/{id}", listingH.Update)
			r.Delete("/listings/{id}", listingH.Delete)

			// ---------- reviews ----------
			r.Post("/listings/{id}/reviews", reviewH.Create)
			r.Delete("/listings/{id}/reviews/{reviewID}", reviewH.Delete)
		})
	})

	return r
}
