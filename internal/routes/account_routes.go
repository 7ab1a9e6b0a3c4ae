package routes

import (
	"database/sql"

	"github.com/go-chi/chi/v5"

	"userauth/internal/auth"
	"userauth/internal/config"
	"userauth/internal/handlers"
	mw "userauth/internal/middleware"
	"userauth/internal/repository"
)

func RegisterAccountRoutes(router chi.Router, db *sql.DB, cfg *config.Config) {
	sessions := auth.NewSessionIssuer(cfg.JWTSecret)
	accountHandler := handlers.NewAccountHandler(repository.NewAccountRepository(db))

	router.Group(func(r chi.Router) {
		r.Use(mw.SessionAuth(sessions))
		r.Get("/me", accountHandler.Me)
	})
}
