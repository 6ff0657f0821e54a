package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	mw "happythings/internal/middleware"
	"happythings/internal/services"
)

type EntryHandler struct {
	entries *services.EntryService
	logger  *zap.Logger
}

func NewEntryHandler(entries *services.EntryService, logger *zap.Logger) *EntryHandler {
	return &EntryHandler{entries: entries, logger: logger}
}

// List godoc
// @Summary List entries
// @Description Returns live entries newest first. Pass continueCursor back as cursor for the next page.
// @Tags entries
// @Produce json
// @Param cursor query string false "Cursor from the previous page"
// @Param numItems query int false "Page size (default 10, max 100)"
// @Success 200 {object} services.EntryPage
// @Failure 400 {string} string "Bad request"
// @Router /entries [get]
func (h *EntryHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	numItems := 0
	if raw := q.Get("numItems"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			http.Error(w, "invalid numItems", http.StatusBadRequest)
			return
		}
		numItems = n
	}
	page, err := h.entries.List(r.Context(), q.Get("cursor"), numItems)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

func (h *EntryHandler) GetByDate(w http.ResponseWriter, r *http.Request) {
	e, err := h.entries.GetByDate(r.Context(), chi.URLParam(r, "date"))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, e)
}

// Upsert replaces the things for a date (admin only).
func (h *EntryHandler) Upsert(w http.ResponseWriter, r *http.Request) {
	var req upsertEntryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}
	id, err := h.entries.Upsert(r.Context(), chi.URLParam(r, "date"), req.Things, req.Bonus)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, idResponse{ID: id})
}

// UpdateBonus godoc
// @Summary Set the daily bonus
// @Description Anyone may edit today's bonus; other dates need an admin token (bearer header or adminToken field).
// @Tags entries
// @Accept json
// @Produce json
// @Param date path string true "YYYY-MM-DD"
// @Success 200 {object} idResponse
// @Failure 400 {string} string "Bad request"
// @Failure 403 {string} string "Edit window closed"
// @Router /entries/date/{date}/bonus [put]
func (h *EntryHandler) UpdateBonus(w http.ResponseWriter, r *http.Request) {
	var req bonusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}
	token := mw.BearerToken(r)
	if token == "" {
		token = req.AdminToken
	}
	id, err := h.entries.UpdateBonus(r.Context(), chi.URLParam(r, "date"), req.Bonus, token)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, idResponse{ID: id})
}

func (h *EntryHandler) Week(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	entries, err := h.entries.WeekEntries(r.Context(), q.Get("start"), q.Get("end"))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

func (h *EntryHandler) SoftDelete(w http.ResponseWriter, r *http.Request) {
	if err := h.entries.SoftDelete(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
