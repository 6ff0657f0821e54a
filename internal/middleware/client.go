package middleware

import (
	"net"
	"net/http"
	"strings"

	"github.com/google/uuid"
)

// ClientID identifies the caller for login throttling: the first
// X-Forwarded-For hop, then X-Real-IP, then the peer address. A request
// with none of these gets a random id and is effectively unthrottled.
func ClientID(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		if first := strings.TrimSpace(strings.Split(xff, ",")[0]); first != "" {
			return first
		}
	}
	if realIP := strings.TrimSpace(r.Header.Get("X-Real-IP")); realIP != "" {
		return realIP
	}
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil && host != "" {
		return host
	}
	if r.RemoteAddr != "" {
		return r.RemoteAddr
	}
	return "unknown-" + uuid.NewString()
}
