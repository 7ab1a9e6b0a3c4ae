package handlers

import (
	"errors"
	"log"
	"net/http"

	"userauth/internal/middleware"
	"userauth/internal/repository"
)

type AccountHandler struct {
	accounts repository.AccountRepository
}

func NewAccountHandler(accounts repository.AccountRepository) *AccountHandler {
	return &AccountHandler{accounts: accounts}
}

// Me returns the account behind the current session token.
// @Tags Account
// @Summary Current account
// @Security BearerAuth
// @Produce json
// @Success 200 {object} models.Account
// @Failure 401 {object} map[string]interface{}
// @Failure 404 {object} map[string]interface{}
// @Router /api/user/me [get]
func (h *AccountHandler) Me(w http.ResponseWriter, r *http.Request) {
	accountID, _ := r.Context().Value(middleware.CtxAccountID).(string)
	if accountID == "" {
		writeJSONError(w, http.StatusUnauthorized, "unauthorized", "Missing session")
		return
	}

	account, err := h.accounts.FindByID(r.Context(), accountID)
	if err != nil {
		if errors.Is(err, repository.ErrAccountNotFound) {
			writeJSONError(w, http.StatusNotFound, "not_found", "User not found.")
			return
		}
		log.Printf("Failed to load account %s: %v", accountID, err)
		writeJSONError(w, http.StatusInternalServerError, "server_error", "Failed to load account")
		return
	}

	writeJSON(w, http.StatusOK, account)
}
