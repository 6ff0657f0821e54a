package handlers

import (
	"bytes"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"happythings/internal/clock"
	"happythings/internal/feed"
	"happythings/internal/services"
)

type FeedHandler struct {
	entries *services.EntryService
	channel feed.Channel
	clock   clock.Clock
	logger  *zap.Logger
}

// NewFeedHandler renders channel. An empty SiteURL is derived from each request.
func NewFeedHandler(entries *services.EntryService, channel feed.Channel, clk clock.Clock, logger *zap.Logger) *FeedHandler {
	return &FeedHandler{entries: entries, channel: channel, clock: clk, logger: logger}
}

func requestOrigin(r *http.Request) string {
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	if proto := r.Header.Get("X-Forwarded-Proto"); proto != "" {
		scheme = strings.TrimSpace(strings.Split(proto, ",")[0])
	}
	host := r.Host
	if fwd := r.Header.Get("X-Forwarded-Host"); fwd != "" {
		host = strings.TrimSpace(strings.Split(fwd, ",")[0])
	}
	return scheme + "://" + host
}

func (h *FeedHandler) Feed(w http.ResponseWriter, r *http.Request) {
	page, err := h.entries.List(r.Context(), "", feed.Limit)
	if err != nil {
		h.logger.Error("load feed entries", zap.Error(err))
		http.Error(w, "error generating rss feed", http.StatusInternalServerError)
		return
	}
	ch := h.channel
	if ch.SiteURL == "" {
		ch.SiteURL = requestOrigin(r)
	}

	var buf bytes.Buffer
	if err := feed.Render(&buf, ch, page.Page, h.clock.Now()); err != nil {
		h.logger.Error("render feed", zap.Error(err))
		http.Error(w, "error generating rss feed", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", feed.ContentType)
	w.Header().Set("Cache-Control", feed.CacheControl)
	w.Write(buf.Bytes())
}
