package handlers

import (
	"encoding/json"
	"net/http"
)

// Import godoc
// @Summary Bulk import entries
// @Description Upserts a list of entries in one transaction. Nothing is written if any entry is invalid.
// @Tags entries
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param data body importRequest true "Entries to import"
// @Success 201 {object} map[string]interface{} "Entries imported"
// @Failure 400 {string} string "Bad request"
// @Failure 500 {string} string "Internal server error"
// @Router /entries/import [post]
func (h *EntryHandler) Import(w http.ResponseWriter, r *http.Request) {
	var req importRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	n, err := h.entries.Import(r.Context(), req.Entries)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{
		"message":  "Entries imported successfully",
		"imported": n,
	})
}
