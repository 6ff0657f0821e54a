package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"happythings/internal/services"
)

type AdminHandler struct {
	entries *services.EntryService
	auth    *services.AuthService
	logger  *zap.Logger
}

func NewAdminHandler(entries *services.EntryService, auth *services.AuthService, logger *zap.Logger) *AdminHandler {
	return &AdminHandler{entries: entries, auth: auth, logger: logger}
}

// Overview godoc
// @Summary Get admin overview
// @Description Returns counts of entries, sessions and weekly images (admin only)
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Success 200 {object} models.Overview
// @Failure 401 {string} string "Unauthorized"
// @Failure 500 {string} string "Internal server error"
// @Router /admin/overview [get]
func (h *AdminHandler) Overview(w http.ResponseWriter, r *http.Request) {
	out, err := h.entries.Overview(r.Context())
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *AdminHandler) CleanupSessions(w http.ResponseWriter, r *http.Request) {
	n, err := h.auth.CleanupExpiredSessions(r.Context())
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int64{"deleted": n})
}
