package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetricsExposure(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/v1/tweets/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})
	handler := HTTPMetricsMiddleware(mux)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/tweets/123", nil))
	require.Equal(t, http.StatusNotFound, rec.Code)

	ObserveOperationError("not_found")
	ObserveEngagement("like")

	rec = httptest.NewRecorder()
	promhttp.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	body := rec.Body.String()
	for _, m := range []string{
		"tweeter_http_requests_total",
		"tweeter_http_request_duration_seconds",
		"tweeter_operation_errors_total",
		"tweeter_engagement_events_total",
	} {
		assert.Contains(t, body, m)
	}
	assert.Contains(t, body, `route="GET /api/v1/tweets/{id}"`)
	assert.NotContains(t, body, "/api/v1/tweets/123")
}
