package analytichttp

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/httprate"

	"github.com/odyssey-erp/roomstats/internal/platform/httpx"
	"github.com/odyssey-erp/roomstats/internal/shared"
)

// MountRoutes registers room analytics endpoints onto the router.
func (h *Handler) MountRoutes(r chi.Router) {
	if h == nil {
		return
	}
	limiter := httprate.Limit(10, time.Minute,
		httprate.WithKeyFuncs(rateLimitKey),
		httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
			httpx.Problem(w, http.StatusTooManyRequests, http.StatusText(http.StatusTooManyRequests), "export rate limit reached")
		}),
	)

	r.Route("/analytics", func(r chi.Router) {
		r.Group(func(gr chi.Router) {
			gr.Use(h.guard.RequireAny(shared.PermRoomsViewAnalytics))
			gr.Get("/", h.handleDashboard)
			gr.Get("/series.json", h.handleSeries)
			gr.Get("/charts/{chart}", h.handleChart)
		})
		r.Group(func(gr chi.Router) {
			gr.Use(h.guard.RequireAny(shared.PermRoomsExportAnalytics))
			gr.Use(limiter)
			gr.Get("/export/csv", h.handleCSV)
			gr.Get("/export/json", h.handleJSON)
			gr.Get("/export/xlsx", h.handleXLSX)
			gr.Get("/export/pdf", h.handlePDF)
		})
	})
}

func rateLimitKey(r *http.Request) (string, error) {
	if principal := shared.PrincipalFromContext(r.Context()); principal != nil {
		return "user:" + strconv.FormatInt(principal.UserID, 10), nil
	}
	key, err := httprate.KeyByIP(r)
	if err != nil {
		return "", err
	}
	return "ip:" + key, nil
}
