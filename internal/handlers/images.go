package handlers

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"io"
	"mime"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"happythings/internal/services"
)

// MaxImageBytes caps an uploaded image after base64 decoding.
const MaxImageBytes = 20 << 20

type ImageHandler struct {
	images *services.ImageService
	logger *zap.Logger
}

func NewImageHandler(images *services.ImageService, logger *zap.Logger) *ImageHandler {
	return &ImageHandler{images: images, logger: logger}
}

// Store godoc
// @Summary Store a weekly collage
// @Description Accepts raw image bytes, or JSON {imageData, prompt, thingCount} with base64 data.
// @Tags images
// @Accept png,jpeg,webp,json
// @Produce json
// @Security BearerAuth
// @Param weekStart query string true "YYYY-MM-DD"
// @Success 201 {object} storeImageResponse
// @Failure 400 {string} string "Bad request"
// @Failure 401 {string} string "Unauthorized"
// @Router /storeImage [post]
func (h *ImageHandler) Store(w http.ResponseWriter, r *http.Request) {
	// base64 inflates by 4/3, leave room for the JSON envelope
	r.Body = http.MaxBytesReader(w, r.Body, MaxImageBytes*4/3+64<<10)

	in, err := h.decodeUpload(r)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			http.Error(w, "image too large", http.StatusRequestEntityTooLarge)
			return
		}
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if len(in.Data) > MaxImageBytes {
		http.Error(w, "image too large", http.StatusRequestEntityTooLarge)
		return
	}

	img, err := h.images.Store(r.Context(), in)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	h.logger.Info("weekly image stored",
		zap.String("week_start", img.WeekStart),
		zap.String("storage_id", img.StorageID),
		zap.Int("bytes", len(in.Data)))
	writeJSON(w, http.StatusCreated, storeImageResponse{StorageID: img.StorageID, URL: img.ImageURL})
}

func (h *ImageHandler) decodeUpload(r *http.Request) (services.StoreImageInput, error) {
	q := r.URL.Query()
	in := services.StoreImageInput{WeekStart: q.Get("weekStart"), Prompt: q.Get("prompt")}

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "application/json" {
		var req storeImageRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			return in, errors.New("invalid body")
		}
		data, err := base64.StdEncoding.DecodeString(stripDataURL(req.ImageData))
		if err != nil {
			return in, errors.New("imageData must be base64")
		}
		if req.WeekStart != "" {
			in.WeekStart = req.WeekStart
		}
		if req.Prompt != "" {
			in.Prompt = req.Prompt
		}
		in.ThingCount = req.ThingCount
		in.Data = data
		in.ContentType = http.DetectContentType(data)
		return in, nil
	}

	if raw := q.Get("thingCount"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return in, errors.New("invalid thingCount")
		}
		in.ThingCount = n
	}
	data, err := io.ReadAll(r.Body)
	if err != nil {
		return in, err
	}
	in.Data = data
	in.ContentType = mediaType
	return in, nil
}

// stripDataURL drops a "data:image/png;base64," prefix if present.
func stripDataURL(s string) string {
	if strings.HasPrefix(s, "data:") {
		if i := strings.Index(s, ","); i >= 0 {
			return s[i+1:]
		}
	}
	return s
}

func (h *ImageHandler) List(w http.ResponseWriter, r *http.Request) {
	images, err := h.images.List(r.Context())
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, images)
}

func (h *ImageHandler) Get(w http.ResponseWriter, r *http.Request) {
	img, err := h.images.Get(r.Context(), chi.URLParam(r, "weekStart"))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, img)
}
