package auth

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/odyssey-erp/roomstats/internal/shared"
)

// CookieName is read when no Authorization header is present, so the HTML
// dashboard works from a browser.
const CookieName = "roomstats_token"

// Middleware resolves the caller's principal. Requests without a valid token
// pass through anonymously; guards decide whether that is acceptable.
func Middleware(tokens *Tokens, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := bearerToken(r)
			if raw == "" || tokens == nil {
				next.ServeHTTP(w, r)
				return
			}
			principal, err := tokens.Parse(raw)
			if err != nil {
				if logger != nil {
					logger.Debug("reject token", slog.Any("error", err))
				}
				next.ServeHTTP(w, r)
				return
			}
			next.ServeHTTP(w, r.WithContext(shared.ContextWithPrincipal(r.Context(), principal)))
		})
	}
}

func bearerToken(r *http.Request) string {
	header := strings.TrimSpace(r.Header.Get("Authorization"))
	if len(header) > 7 && strings.EqualFold(header[:7], "bearer ") {
		return strings.TrimSpace(header[7:])
	}
	if cookie, err := r.Cookie(CookieName); err == nil {
		return strings.TrimSpace(cookie.Value)
	}
	return ""
}
