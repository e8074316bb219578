package app

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/odyssey-erp/roomstats/internal/observability"
	"github.com/odyssey-erp/roomstats/jobs"
)

func TestLoadConfigRequiresJWTSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")
	_, err := LoadConfig()
	require.Error(t, err)
}

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "secret")
	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.AppAddr)
	assert.Equal(t, 10*time.Minute, cfg.AnalyticsCacheTTL)
	assert.Equal(t, 5, cfg.AnalyticsTopLimit)
	assert.Equal(t, 2*time.Second, cfg.AnalyticsQueryTimeout)
	assert.Equal(t, "*/30 * * * *", cfg.WarmupCron)
	assert.Equal(t, ":9091", cfg.WorkerMetricsAddr)
	assert.Equal(t, "roomstats", cfg.JWTIssuer)
	assert.False(t, cfg.IsProduction())

	loc, err := cfg.Location()
	require.NoError(t, err)
	assert.Equal(t, time.UTC, loc)
}

func TestConfigValidate(t *testing.T) {
	base := Config{JWTSecret: "s", AnalyticsTopLimit: 5, AnalyticsTimezone: "Europe/Berlin"}
	require.NoError(t, base.Validate())

	tooMany := base
	tooMany.AnalyticsTopLimit = 51
	assert.Error(t, tooMany.Validate())

	badZone := base
	badZone.AnalyticsTimezone = "Mars/Olympus"
	assert.Error(t, badZone.Validate())
}

func TestNewLoggerFormats(t *testing.T) {
	var buf bytes.Buffer
	newLogger(&Config{LogFormat: "json", LogLevel: "warn"}, &buf).Info("hidden")
	assert.Empty(t, buf.String())

	newLogger(&Config{LogFormat: "json", LogLevel: "debug"}, &buf).Debug("shown", slog.Int("n", 1))
	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "shown", line["msg"])

	buf.Reset()
	newLogger(nil, &buf).Info("text")
	assert.Contains(t, buf.String(), "msg=text")
}

func newTestRouter(checks ...HealthCheck) http.Handler {
	return NewRouter(RouterParams{
		Config:     &Config{AppEnv: "test", AppRequestTimeout: time.Second},
		JobHandler: jobs.NewHandler(nil, nil),
		Metrics:    observability.NewMetrics(),
		Checks:     checks,
	})
}

func TestHealthz(t *testing.T) {
	rr := httptest.NewRecorder()
	newTestRouter().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rr.Body.String())
}

func TestReadyz(t *testing.T) {
	ok := HealthCheck{Name: "postgres", Check: func(ctx context.Context) error { return nil }}
	down := HealthCheck{Name: "gotenberg", Check: func(ctx context.Context) error { return errors.New("connection refused") }}

	rr := httptest.NewRecorder()
	newTestRouter(ok).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"status":"ok","checks":{"postgres":"ok"}}`, rr.Body.String())

	rr = httptest.NewRecorder()
	newTestRouter(ok, down).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
	assert.JSONEq(t, `{"status":"degraded","checks":{"postgres":"ok","gotenberg":"connection refused"}}`, rr.Body.String())
}

func TestSecurityHeaders(t *testing.T) {
	rr := httptest.NewRecorder()
	newTestRouter().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, "DENY", rr.Header().Get("X-Frame-Options"))
	assert.Equal(t, "nosniff", rr.Header().Get("X-Content-Type-Options"))
	assert.Contains(t, rr.Header().Get("Content-Security-Policy"), "https://go-echarts.github.io")
}

func TestRootRedirectsToDashboard(t *testing.T) {
	rr := httptest.NewRecorder()
	newTestRouter().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusSeeOther, rr.Code)
	assert.Equal(t, "/analytics", rr.Header().Get("Location"))
}

func TestStaticAssetsCached(t *testing.T) {
	rr := httptest.NewRecorder()
	newTestRouter().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/static/css/dashboard.css", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "public, max-age=3600", rr.Header().Get("Cache-Control"))
	assert.True(t, strings.HasPrefix(rr.Header().Get("Content-Type"), "text/css"))
}

func TestMetricsAndJobsMounted(t *testing.T) {
	router := newTestRouter()

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/jobs/health", nil))
	assert.Equal(t, http.StatusOK, rr.Code)

	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `roomstats_http_requests_total{code="200",route="/jobs/health"} 1`)
}

func TestAccessLogRecordsRequest(t *testing.T) {
	var buf bytes.Buffer
	router := NewRouter(RouterParams{
		Logger:     newLogger(&Config{LogFormat: "json"}, &buf),
		Config:     &Config{AppEnv: "test", AppRequestTimeout: time.Second},
		JobHandler: jobs.NewHandler(nil, nil),
	})

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	require.Equal(t, http.StatusOK, rr.Code)

	var line map[string]any
	for _, raw := range bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n")) {
		var entry map[string]any
		if json.Unmarshal(raw, &entry) == nil && entry["msg"] == "http request" {
			line = entry
		}
	}
	require.NotNil(t, line, "no access log line in %q", buf.String())
	assert.Equal(t, "/healthz", line["path"])
	assert.Equal(t, float64(http.StatusOK), line["status"])
	assert.NotEmpty(t, line["request_id"])
}
