package routes

import (
	"database/sql"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"userauth/internal/config"
	"userauth/internal/services"
)

func SetupRoutes(db *sql.DB, cfg *config.Config, uploader services.ImageUploader) *chi.Mux {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{"message": "server is running."})
	})

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		status := http.StatusOK
		resp := map[string]any{
			"status": "ok",
			"db":     map[string]any{"status": "ok"},
		}
		if err := db.PingContext(r.Context()); err != nil {
			status = http.StatusServiceUnavailable
			resp["status"] = "degraded"
			resp["db"] = map[string]any{"status": "down", "error": err.Error()}
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(resp)
	})

	RegisterSwaggerRoutes(r)

	r.Route("/api/user", func(api chi.Router) {
		RegisterAuthRoutes(api, db, cfg, uploader)
		RegisterAccountRoutes(api, db, cfg)
	})

	return r
}
