package routes

import (
	"database/sql"

	"github.com/go-chi/chi/v5"

	"userauth/internal/auth"
	"userauth/internal/config"
	"userauth/internal/handlers"
	"userauth/internal/repository"
	"userauth/internal/services"
)

func RegisterAuthRoutes(router chi.Router, db *sql.DB, cfg *config.Config, uploader services.ImageUploader) {
	mailer := &services.SMTPSender{
		Host:   cfg.SMTPHost,
		Port:   cfg.SMTPPort,
		User:   cfg.SMTPUser,
		Pass:   cfg.SMTPPassword,
		From:   cfg.SMTPFrom,
		UseTLS: cfg.SMTPUseTLS,
	}

	svc := services.NewAuthService(
		repository.NewAccountRepository(db),
		repository.NewResetTokenRepository(db, cfg.ResetTokenTTL),
		auth.NewHasher(cfg.BcryptCost),
		auth.NewSessionIssuer(cfg.JWTSecret),
		mailer,
		cfg.ClientURL,
		cfg.SessionTTL,
	)
	authHandler := handlers.NewAuthHandler(svc, uploader, cfg)

	router.Post("/register", authHandler.Register)
	router.Post("/login", authHandler.Login)
	router.Post("/logout", authHandler.Logout)
	router.Post("/forgot", authHandler.ForgotPassword)
	router.Post("/reset/{token}", authHandler.ResetPassword)
}
