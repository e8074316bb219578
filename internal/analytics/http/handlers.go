package analytichttp

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"reflect"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/odyssey-erp/roomstats/internal/analytics"
	"github.com/odyssey-erp/roomstats/internal/analytics/chartdata"
	"github.com/odyssey-erp/roomstats/internal/analytics/export"
	"github.com/odyssey-erp/roomstats/internal/analytics/render"
	"github.com/odyssey-erp/roomstats/internal/analytics/ui"
	"github.com/odyssey-erp/roomstats/internal/platform/httpx"
	"github.com/odyssey-erp/roomstats/internal/rbac"
	"github.com/odyssey-erp/roomstats/internal/shared"
	"github.com/odyssey-erp/roomstats/internal/view"
)

const dateLayout = "2006-01-02"

const defaultRequestTimeout = 2 * time.Second

// AnalyticsService defines the dashboard data contract used by the handler.
type AnalyticsService interface {
	GetTopRooms(ctx context.Context, filter analytics.Filter) ([]analytics.RoomBookingCount, error)
	GetAverageOccupancy(ctx context.Context, filter analytics.Filter) ([]analytics.RoomOccupancy, error)
	GetBookingHeatmap(ctx context.Context, filter analytics.Filter) ([]analytics.HeatmapCell, error)
	GetAutoCancelStats(ctx context.Context, filter analytics.Filter) (analytics.AutoCancelStats, error)
}

// PDFService renders dashboard content to PDF bytes.
type PDFService interface {
	RenderDashboard(ctx context.Context, payload export.DashboardPayload) ([]byte, error)
}

// Handler coordinates HTTP requests for the room analytics dashboard.
type Handler struct {
	logger       *slog.Logger
	service      AnalyticsService
	templates    *view.Engine
	inline       render.Renderer
	interactive  render.Renderer
	pdf          PDFService
	guard        rbac.Middleware
	validate     *validator.Validate
	csvPool      sync.Pool
	now          func() time.Time
	timeout      time.Duration
	defaultLimit int
}

// NewHandler constructs the analytics HTTP handler. inline renders the charts
// embedded in the dashboard page, interactive serves the standalone chart pages.
func NewHandler(logger *slog.Logger, service AnalyticsService, templates *view.Engine, inline, interactive render.Renderer, pdf PDFService) *Handler {
	h := &Handler{
		logger:       logger,
		service:      service,
		templates:    templates,
		inline:       inline,
		interactive:  interactive,
		pdf:          pdf,
		guard:        rbac.Middleware{Logger: logger},
		validate:     newValidator(),
		now:          time.Now,
		timeout:      defaultRequestTimeout,
		defaultLimit: analytics.DefaultTopRoomsLimit,
	}
	h.csvPool.New = func() interface{} { return new(bytes.Buffer) }
	return h
}

// WithNow overrides the handler clock for testing.
func (h *Handler) WithNow(fn func() time.Time) {
	if fn != nil {
		h.now = fn
	}
}

// WithTimeout bounds how long dataset loads may take per request.
func (h *Handler) WithTimeout(d time.Duration) {
	if d > 0 {
		h.timeout = d
	}
}

// WithDefaultLimit changes the ranking size used when the query omits limit.
func (h *Handler) WithDefaultLimit(limit int) {
	if limit > 0 && limit <= analytics.MaxTopRoomsLimit {
		h.defaultLimit = limit
	}
}

func (h *Handler) handleDashboard(w http.ResponseWriter, r *http.Request) {
	filters, filter, err := h.parseFilters(r)
	if err != nil {
		h.handleFilterError(w, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	data, err := h.loadDashboardData(ctx, filter)
	if err != nil {
		h.handleServerError(w, "load dashboard", err)
		return
	}

	vm, err := h.buildViewModel(r, filters, data)
	if err != nil {
		h.handleServerError(w, "render charts", err)
		return
	}

	viewData := view.TemplateData{
		Title:       "Room Analytics",
		CurrentPath: r.URL.Path,
		Data:        vm,
	}
	if err := h.templates.Render(w, "pages/room_analytics.html", viewData); err != nil {
		h.handleServerError(w, "render template", err)
	}
}

func (h *Handler) handleSeries(w http.ResponseWriter, r *http.Request) {
	_, filter, err := h.parseFilters(r)
	if err != nil {
		h.handleFilterError(w, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	data, err := h.loadDashboardData(ctx, filter)
	if err != nil {
		h.handleServerError(w, "load series", err)
		return
	}
	httpx.JSON(w, http.StatusOK, data.series())
}

func (h *Handler) handleChart(w http.ResponseWriter, r *http.Request) {
	if h.interactive == nil {
		h.handleServerError(w, "chart renderer", errors.New("interactive renderer not configured"))
		return
	}
	_, filter, err := h.parseFilters(r)
	if err != nil {
		h.handleFilterError(w, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var chart render.Chart
	switch id := chi.URLParam(r, "chart"); id {
	case render.ChartTopRooms:
		rooms, err := h.service.GetTopRooms(ctx, filter)
		if err != nil {
			h.handleServerError(w, "load top rooms", err)
			return
		}
		chart = render.TopRoomsChart(chartdata.ToTopRoomsSeries(rooms))
	case render.ChartOccupancy:
		rooms, err := h.service.GetAverageOccupancy(ctx, filter)
		if err != nil {
			h.handleServerError(w, "load occupancy", err)
			return
		}
		chart = render.OccupancyChart(chartdata.ToOccupancySeries(rooms))
	case render.ChartHeatmap:
		cells, err := h.service.GetBookingHeatmap(ctx, filter)
		if err != nil {
			h.handleServerError(w, "load heatmap", err)
			return
		}
		chart = render.HeatmapChart(chartdata.ToHeatmapPoints(cells))
	default:
		httpx.RespondError(w, fmt.Errorf("chart %q: %w", id, httpx.ErrNotFound))
		return
	}

	html, err := render.HTML(h.interactive, chart)
	if err != nil {
		h.handleServerError(w, "render chart", err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if _, err := w.Write([]byte(html)); err != nil {
		h.logError("stream chart", err)
	}
}

func (h *Handler) handlePDF(w http.ResponseWriter, r *http.Request) {
	if h.pdf == nil {
		h.handleServerError(w, "pdf exporter", errors.New("pdf exporter not configured"))
		return
	}

	filters, filter, err := h.parseFilters(r)
	if err != nil {
		h.handleFilterError(w, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	data, err := h.loadDashboardData(ctx, filter)
	if err != nil {
		h.handleServerError(w, "load dashboard", err)
		return
	}

	payload := h.exportPayload(filters, data)
	if h.inline != nil {
		charts, err := h.renderInline(data.series())
		if err != nil {
			h.handleServerError(w, "render charts", err)
			return
		}
		payload.Charts = charts
	}
	// Gotenberg gets the remaining request budget rather than the load timeout.
	pdfBytes, err := h.pdf.RenderDashboard(r.Context(), payload)
	if err != nil {
		h.handleServerError(w, "render pdf", err)
		return
	}

	h.attachment(w, "application/pdf", "pdf")
	if _, err := w.Write(pdfBytes); err != nil {
		h.logError("stream pdf", err)
	}
}

func (h *Handler) handleXLSX(w http.ResponseWriter, r *http.Request) {
	filters, filter, err := h.parseFilters(r)
	if err != nil {
		h.handleFilterError(w, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	data, err := h.loadDashboardData(ctx, filter)
	if err != nil {
		h.handleServerError(w, "load dashboard", err)
		return
	}

	buf := h.csvPool.Get().(*bytes.Buffer)
	buf.Reset()
	defer func() {
		buf.Reset()
		h.csvPool.Put(buf)
	}()

	if err := export.WriteWorkbook(buf, h.exportPayload(filters, data)); err != nil {
		h.handleServerError(w, "write workbook", err)
		return
	}
	h.attachment(w, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", "xlsx")
	if _, err := w.Write(buf.Bytes()); err != nil {
		h.logError("stream xlsx", err)
	}
}

func (h *Handler) handleCSV(w http.ResponseWriter, r *http.Request) {
	rooms, ok := h.loadUserTopRooms(w, r)
	if !ok {
		return
	}

	buf := h.csvPool.Get().(*bytes.Buffer)
	buf.Reset()
	defer func() {
		buf.Reset()
		h.csvPool.Put(buf)
	}()

	if err := export.WriteTopRoomsCSV(buf, rooms); err != nil {
		h.handleServerError(w, "write top rooms csv", err)
		return
	}

	h.attachment(w, "text/csv; charset=utf-8", "csv")
	if _, err := w.Write(buf.Bytes()); err != nil {
		h.logError("stream csv", err)
	}
}

func (h *Handler) handleJSON(w http.ResponseWriter, r *http.Request) {
	rooms, ok := h.loadUserTopRooms(w, r)
	if !ok {
		return
	}
	if rooms == nil {
		rooms = []analytics.RoomBookingCount{}
	}
	h.attachment(w, "application/json", "json")
	httpx.JSON(w, http.StatusOK, rooms)
}

// loadUserTopRooms resolves the ranking restricted to the caller's own bookings.
func (h *Handler) loadUserTopRooms(w http.ResponseWriter, r *http.Request) ([]analytics.RoomBookingCount, bool) {
	principal := shared.PrincipalFromContext(r.Context())
	if principal == nil {
		httpx.RespondError(w, httpx.ErrUnauthorized)
		return nil, false
	}
	_, filter, err := h.parseFilters(r)
	if err != nil {
		h.handleFilterError(w, err)
		return nil, false
	}
	userID := principal.UserID
	filter.UserID = &userID

	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	rooms, err := h.service.GetTopRooms(ctx, filter)
	if err != nil {
		h.handleServerError(w, "load top rooms", err)
		return nil, false
	}
	return rooms, true
}

func (h *Handler) attachment(w http.ResponseWriter, contentType, ext string) {
	exportID := uuid.NewString()
	filename := fmt.Sprintf("room-analytics-%s.%s", h.now().UTC().Format("20060102"), ext)
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s\"", filename))
	w.Header().Set("X-Export-Id", exportID)
	if h.logger != nil {
		h.logger.Info("analytics export", slog.String("export_id", exportID), slog.String("format", ext))
	}
}

type filterQuery struct {
	From  string `query:"from" validate:"omitempty,datetime=2006-01-02"`
	To    string `query:"to" validate:"omitempty,datetime=2006-01-02"`
	Limit int    `query:"limit" validate:"min=1,max=50"`
}

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		return field.Tag.Get("query")
	})
	return v
}

// parseFilters validates the query string. The to date is inclusive, so the
// returned analytics filter ends at the following midnight.
func (h *Handler) parseFilters(r *http.Request) (ui.DashboardFilters, analytics.Filter, error) {
	q := r.URL.Query()
	query := filterQuery{
		From:  strings.TrimSpace(q.Get("from")),
		To:    strings.TrimSpace(q.Get("to")),
		Limit: h.defaultLimit,
	}
	if raw := strings.TrimSpace(q.Get("limit")); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil {
			return ui.DashboardFilters{}, analytics.Filter{}, httpx.FieldError{Field: "limit", Reason: "expected an integer"}
		}
		query.Limit = limit
	}
	if err := h.validate.Struct(query); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return ui.DashboardFilters{}, analytics.Filter{}, httpx.FieldError{Field: verrs[0].Field(), Reason: reasonFor(verrs[0])}
		}
		return ui.DashboardFilters{}, analytics.Filter{}, err
	}

	filter := analytics.Filter{Limit: query.Limit}
	if query.From != "" {
		from, _ := time.Parse(dateLayout, query.From)
		filter.From = from
	}
	if query.To != "" {
		to, _ := time.Parse(dateLayout, query.To)
		filter.To = to.AddDate(0, 0, 1)
	}
	if !filter.From.IsZero() && !filter.To.IsZero() && !filter.From.Before(filter.To) {
		return ui.DashboardFilters{}, analytics.Filter{}, httpx.FieldError{Field: "to", Reason: "must not be before from"}
	}
	return ui.DashboardFilters{From: query.From, To: query.To, Limit: query.Limit}, filter, nil
}

func reasonFor(fe validator.FieldError) string {
	switch fe.Tag() {
	case "datetime":
		return "expected YYYY-MM-DD"
	case "min", "max":
		return fmt.Sprintf("must be between 1 and %d", analytics.MaxTopRoomsLimit)
	default:
		return fe.Tag()
	}
}

type dashboardData struct {
	topRooms   []analytics.RoomBookingCount
	occupancy  []analytics.RoomOccupancy
	heatmap    []analytics.HeatmapCell
	autoCancel analytics.AutoCancelStats
}

func (d dashboardData) series() ui.Series {
	return ui.ToSeries(d.topRooms, d.occupancy, d.heatmap, d.autoCancel)
}

func (h *Handler) loadDashboardData(ctx context.Context, filter analytics.Filter) (dashboardData, error) {
	var data dashboardData

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		rooms, err := h.service.GetTopRooms(ctx, filter)
		if err != nil {
			return fmt.Errorf("top rooms: %w", err)
		}
		data.topRooms = rooms
		return nil
	})

	g.Go(func() error {
		rooms, err := h.service.GetAverageOccupancy(ctx, filter)
		if err != nil {
			return fmt.Errorf("occupancy: %w", err)
		}
		data.occupancy = rooms
		return nil
	})

	g.Go(func() error {
		cells, err := h.service.GetBookingHeatmap(ctx, filter)
		if err != nil {
			return fmt.Errorf("heatmap: %w", err)
		}
		data.heatmap = cells
		return nil
	})

	g.Go(func() error {
		stats, err := h.service.GetAutoCancelStats(ctx, filter)
		if err != nil {
			return fmt.Errorf("auto cancel: %w", err)
		}
		data.autoCancel = stats
		return nil
	})

	if err := g.Wait(); err != nil {
		return dashboardData{}, err
	}
	return data, nil
}

func (h *Handler) renderInline(series ui.Series) (map[string]template.HTML, error) {
	if h.inline == nil {
		return nil, fmt.Errorf("svg renderer missing")
	}
	charts := []struct {
		id    string
		chart render.Chart
	}{
		{render.ChartTopRooms, render.TopRoomsChart(series.TopRooms)},
		{render.ChartOccupancy, render.OccupancyChart(series.Occupancy)},
		{render.ChartHeatmap, render.HeatmapChart(series.Heatmap)},
	}
	out := make(map[string]template.HTML, len(charts))
	for _, c := range charts {
		html, err := render.HTML(h.inline, c.chart)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", c.id, err)
		}
		out[c.id] = html
	}
	return out, nil
}

func (h *Handler) buildViewModel(r *http.Request, filters ui.DashboardFilters, data dashboardData) (ui.DashboardViewModel, error) {
	series := data.series()
	charts, err := h.renderInline(series)
	if err != nil {
		return ui.DashboardViewModel{}, err
	}

	principal := shared.PrincipalFromContext(r.Context())
	query := r.URL.RawQuery
	link := func(id string) string {
		if query == "" {
			return "/analytics/charts/" + id
		}
		return "/analytics/charts/" + id + "?" + query
	}

	return ui.DashboardViewModel{
		Filters:          filters,
		Series:           series,
		TopRooms:         data.topRooms,
		AutoCancel:       data.autoCancel,
		AutoCancelledPct: series.AutoCancelledPct,
		TopRoomsSVG:      charts[render.ChartTopRooms],
		OccupancySVG:     charts[render.ChartOccupancy],
		HeatmapSVG:       charts[render.ChartHeatmap],
		ChartLinks: []ui.ChartLink{
			{ID: render.ChartTopRooms, Title: "Top Rooms", URL: link(render.ChartTopRooms)},
			{ID: render.ChartOccupancy, Title: "Average Occupancy", URL: link(render.ChartOccupancy)},
			{ID: render.ChartHeatmap, Title: "Booking Heatmap", URL: link(render.ChartHeatmap)},
		},
		CanExport: principal.Has(shared.PermRoomsExportAnalytics),
	}, nil
}

func (h *Handler) exportPayload(filters ui.DashboardFilters, data dashboardData) export.DashboardPayload {
	return export.DashboardPayload{
		Period:      filters.Period(),
		GeneratedAt: h.now(),
		TopRooms:    data.topRooms,
		Occupancy:   data.occupancy,
		Heatmap:     data.heatmap,
		AutoCancel:  data.autoCancel,
	}
}

func (h *Handler) handleFilterError(w http.ResponseWriter, err error) {
	if errors.Is(err, httpx.ErrValidation) {
		httpx.RespondError(w, err)
		return
	}
	h.handleServerError(w, "parse filters", err)
}

func (h *Handler) handleServerError(w http.ResponseWriter, context string, err error) {
	h.logError(context, err)
	httpx.RespondError(w, err)
}

func (h *Handler) logError(context string, err error) {
	if h.logger != nil {
		h.logger.Error(context, slog.Any("error", err))
	}
}
