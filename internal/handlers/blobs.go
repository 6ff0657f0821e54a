package handlers

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
)

// BlobReader is a blob store that can hand back what it stored.
type BlobReader interface {
	Get(key string) ([]byte, string, bool)
}

// BlobHandler serves blobs kept by an in-process store at the URLs that
// store returned from Put.
type BlobHandler struct {
	blobs BlobReader
}

func NewBlobHandler(blobs BlobReader) *BlobHandler {
	return &BlobHandler{blobs: blobs}
}

func (h *BlobHandler) Get(w http.ResponseWriter, r *http.Request) {
	data, contentType, ok := h.blobs.Get(chi.URLParam(r, "*"))
	if !ok {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.Header().Set("Cache-Control", "public, max-age=3600")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}
