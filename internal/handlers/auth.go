package handlers

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	mw "happythings/internal/middleware"
	"happythings/internal/services"
)

type AuthHandler struct {
	auth   *services.AuthService
	logger *zap.Logger
}

func NewAuthHandler(auth *services.AuthService, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{auth: auth, logger: logger}
}

// Login godoc
// @Summary Admin login
// @Description Checks the admin password and returns a session token
// @Tags auth
// @Accept json
// @Produce json
// @Success 200 {object} services.LoginResult
// @Failure 401 {string} string "Invalid password"
// @Failure 429 {string} string "Too many attempts"
// @Router /auth/login [post]
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}
	if req.Password == "" {
		http.Error(w, "password required", http.StatusBadRequest)
		return
	}
	res, err := h.auth.Login(r.Context(), mw.ClientID(r), req.Password)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// Logout accepts the token as a bearer header or in the body.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	token := mw.BearerToken(r)
	if token == "" {
		var req logoutRequest
		// an unreadable body carries no token, and logout without one is a no-op
		_ = json.NewDecoder(r.Body).Decode(&req)
		token = req.Token
	}
	if err := h.auth.Logout(r.Context(), token); err != nil {
		writeError(w, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *AuthHandler) Check(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.auth.CheckAuth(r.Context(), mw.BearerToken(r)))
}
