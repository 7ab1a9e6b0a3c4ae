package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"userauth/internal/config"
	"userauth/internal/models"
	"userauth/internal/services"
)

const sessionCookieName = "token"

type AuthHandler struct {
	svc    *services.AuthService
	images services.ImageUploader
	cfg    *config.Config
	v      *validator.Validate
}

func NewAuthHandler(svc *services.AuthService, images services.ImageUploader, cfg *config.Config) *AuthHandler {
	return &AuthHandler{
		svc:    svc,
		images: images,
		cfg:    cfg,
		v:      validator.New(),
	}
}

// Register creates an account from a multipart form carrying the profile
// image alongside the text fields.
// @Tags Auth
// @Summary Register a new account
// @Accept multipart/form-data
// @Produce json
// @Param first_name formData string true "First name"
// @Param last_name formData string true "Last name"
// @Param email formData string true "Email"
// @Param password formData string true "Password"
// @Param role formData string false "Role (User or Admin)"
// @Param profile_image formData file true "Profile image"
// @Success 201 {object} map[string]interface{}
// @Failure 400 {object} map[string]interface{}
// @Failure 500 {object} map[string]interface{}
// @Router /api/user/register [post]
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	const maxMemory = 10 << 20
	if err := r.ParseMultipartForm(maxMemory); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid_request", "Failed to parse form")
		return
	}

	firstName := r.FormValue("first_name")
	lastName := r.FormValue("last_name")
	email := r.FormValue("email")
	password := r.FormValue("password")
	role := r.FormValue("role")

	if firstName == "" || lastName == "" || email == "" || password == "" {
		writeJSONError(w, http.StatusBadRequest, "validation_error", "All fields are required.")
		return
	}
	if err := h.v.Var(email, "required,email"); err != nil {
		writeJSONError(w, http.StatusBadRequest, "validation_error", "A valid email is required.")
		return
	}

	file, header, err := r.FormFile("profile_image")
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "validation_error", "Profile image is required.")
		return
	}
	defer file.Close()

	imageURL, err := h.images.Upload(r.Context(), header.Filename, header.Header.Get("Content-Type"), file)
	if err != nil {
		log.Printf("Failed to upload profile image: %v", err)
		writeJSONError(w, http.StatusInternalServerError, "upload_failed", "Failed to upload profile image")
		return
	}

	_, err = h.svc.Register(r.Context(), services.RegisterParams{
		FirstName:       firstName,
		LastName:        lastName,
		Email:           email,
		Password:        password,
		ProfileImageURL: imageURL,
		Role:            models.Role(role),
	})
	if err != nil {
		if errors.Is(err, services.ErrDuplicateEmail) {
			writeJSONError(w, http.StatusBadRequest, "duplicate_email", "User already registered.")
			return
		}
		log.Printf("Failed to register user: %v", err)
		writeJSONError(w, http.StatusInternalServerError, "server_error", "Failed to create user")
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{"message": "User created successfully."})
}

// Login checks credentials and returns the session token both as an
// http-only cookie and in the response body.
// @Tags Auth
// @Summary Log in
// @Accept json
// @Produce json
// @Param body body models.LoginRequest true "Credentials"
// @Success 200 {object} models.LoginResponse
// @Failure 400 {object} map[string]interface{}
// @Failure 401 {object} map[string]interface{}
// @Failure 404 {object} map[string]interface{}
// @Router /api/user/login [post]
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid_request", "Invalid request body")
		return
	}
	if err := h.v.Struct(req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "validation_error", "All fields are required.")
		return
	}

	token, account, err := h.svc.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrAccountNotFound):
			writeJSONError(w, http.StatusNotFound, "not_found", "User not found.")
		case errors.Is(err, services.ErrInvalidCredentials):
			writeJSONError(w, http.StatusUnauthorized, "invalid_credentials", "Invalid credentials.")
		default:
			log.Printf("Failed to log in %s: %v", req.Email, err)
			writeJSONError(w, http.StatusInternalServerError, "server_error", "Failed to login")
		}
		return
	}

	http.SetCookie(w, h.sessionCookie(token, int(h.cfg.SessionTTL.Seconds())))
	writeJSON(w, http.StatusOK, models.LoginResponse{
		Message: "User login successful.",
		Token:   token,
		Account: account,
	})
}

// Logout clears the session cookie. The token itself stays valid until its
// expiry; there is no server-side revocation.
// @Tags Auth
// @Summary Log out
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /api/user/logout [post]
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, h.sessionCookie("", -1))
	writeJSON(w, http.StatusOK, map[string]any{"message": "User logged out successfully."})
}

// ForgotPassword issues a reset token and emails the reset link.
// @Tags Auth
// @Summary Request a password reset link
// @Accept json
// @Produce json
// @Param body body models.ForgotPasswordRequest true "Account email"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} map[string]interface{}
// @Router /api/user/forgot [post]
func (h *AuthHandler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req models.ForgotPasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid_request", "Invalid request body")
		return
	}
	if err := h.v.Struct(req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "validation_error", "A valid email is required.")
		return
	}

	if err := h.svc.ForgotPassword(r.Context(), req.Email); err != nil {
		if errors.Is(err, services.ErrAccountNotFound) {
			writeJSONError(w, http.StatusBadRequest, "not_found", "User not found.")
			return
		}
		log.Printf("Failed to send reset link to %s: %v", req.Email, err)
		writeJSONError(w, http.StatusInternalServerError, "server_error", "Failed to send reset link")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"message": "Reset password link sent to your email."})
}

// ResetPassword consumes the token from the URL and stores the new password.
// @Tags Auth
// @Summary Reset password with a one-time token
// @Accept json
// @Produce json
// @Param token path string true "Reset token"
// @Param body body models.ResetPasswordRequest true "New password"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} map[string]interface{}
// @Failure 404 {object} map[string]interface{}
// @Router /api/user/reset/{token} [post]
func (h *AuthHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	token := chi.URLParam(r, "token")
	if token == "" {
		writeJSONError(w, http.StatusBadRequest, "invalid_request", "Reset token is required.")
		return
	}

	var req models.ResetPasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid_request", "Invalid request body")
		return
	}
	if err := h.v.Struct(req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "validation_error", "Password is required.")
		return
	}

	if err := h.svc.ResetPassword(r.Context(), token, req.Password); err != nil {
		switch {
		case errors.Is(err, services.ErrWeakPassword):
			writeJSONError(w, http.StatusBadRequest, "weak_password", err.Error())
		case errors.Is(err, services.ErrInvalidResetToken):
			writeJSONError(w, http.StatusBadRequest, "invalid_token", "Invalid or expired reset token.")
		case errors.Is(err, services.ErrAccountNotFound):
			writeJSONError(w, http.StatusNotFound, "not_found", "User not found.")
		default:
			log.Printf("Failed to reset password: %v", err)
			writeJSONError(w, http.StatusInternalServerError, "server_error", "Failed to reset password")
		}
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"message": "Password updated successfully."})
}

func (h *AuthHandler) sessionCookie(token string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     sessionCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   h.cfg.Environment == "production",
		SameSite: http.SameSiteStrictMode,
	}
}
