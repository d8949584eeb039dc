package main

import (
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/devicelink/backend/internal/config"
	"github.com/devicelink/backend/internal/handlers"
	appMiddleware "github.com/devicelink/backend/internal/middleware"
	"github.com/devicelink/backend/internal/services"
	"github.com/devicelink/backend/internal/storage"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	db, err := storage.Open(cfg.DatabasePath)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	// Services share the injected store handle.
	userService := services.NewUserService(db)
	listingService := services.NewListingService(db)
	moderationService := services.NewModerationService(db, userService, listingService)
	guard := services.NewGuard(userService)

	// Handlers
	authHandler := handlers.NewAuthHandler(userService, cfg.JWTSecret, cfg.JWTExpiration)
	listingHandler := handlers.NewListingHandler(listingService, guard)
	adminHandler := handlers.NewAdminHandler(userService, listingService, moderationService, guard)

	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(appMiddleware.Metrics)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})
	r.Handle("/metrics", promhttp.Handler())

	// Public auth endpoints
	r.Post("/register", authHandler.Register)
	r.Post("/login", authHandler.Login)

	// Listings
	r.Route("/listings", func(r chi.Router) {
		r.With(appMiddleware.OptionalAuth(cfg.JWTSecret)).Get("/", listingHandler.Search)

		r.Group(func(r chi.Router) {
			r.Use(appMiddleware.RequireAuth(cfg.JWTSecret))
			r.Post("/", listingHandler.Create)
			r.Put("/{listingID}", listingHandler.Update)
			r.Delete("/{listingID}", listingHandler.Delete)
		})
	})

	// Admin surface; every route requires a verified identity, and all but
	// the admin check are additionally gated on the admin flag.
	r.Route("/admin", func(r chi.Router) {
		r.Use(appMiddleware.RequireAuth(cfg.JWTSecret))

		r.Get("/check/{username}", adminHandler.CheckAdmin)
		r.Get("/users", adminHandler.ListUsers)
		r.Get("/listings", adminHandler.ListListings)
		r.Post("/warning", adminHandler.IssueWarning)
		r.Post("/suspend", adminHandler.SuspendUser)
		r.Post("/approve-listing", adminHandler.ApproveListing)
		r.Get("/warnings/{username}", adminHandler.ListWarnings)
		r.Get("/activity-logs", adminHandler.ListActivityLogs)
	})

	log.Printf("DeviceLink API server starting on %s", cfg.ServerAddress)
	if err := http.ListenAndServe(cfg.ServerAddress, r); err != nil {
		log.Fatalf("Server failed to start: %v", err)
	}
}
