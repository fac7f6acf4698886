package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMiddleware_RecordsRequestsAndErrors(t *testing.T) {
	gin.SetMode(gin.TestMode)

	reg := prometheus.NewRegistry()
	exporter := NewPrometheusExporter(reg)

	router := gin.New()
	router.Use(Middleware(exporter))
	router.GET("/ok", func(c *gin.Context) { c.Status(http.StatusOK) })
	router.GET("/boom", func(c *gin.Context) { c.Status(http.StatusInternalServerError) })

	for _, path := range []string{"/ok", "/ok", "/boom"} {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, path, nil)
		router.ServeHTTP(w, req)
	}

	requests := testutil.ToFloat64(exporter.httpRequests.WithLabelValues("GET", "/ok"))
	if requests != 2 {
		t.Errorf("requests for /ok = %v, want 2", requests)
	}

	errors := testutil.ToFloat64(exporter.httpErrors.WithLabelValues("GET", "/boom"))
	if errors != 1 {
		t.Errorf("errors for /boom = %v, want 1", errors)
	}

	okErrors := testutil.ToFloat64(exporter.httpErrors.WithLabelValues("GET", "/ok"))
	if okErrors != 0 {
		t.Errorf("errors for /ok = %v, want 0", okErrors)
	}
}

func TestExporter_PollCounters(t *testing.T) {
	reg := prometheus.NewRegistry()
	exporter := NewPrometheusExporter(reg)

	exporter.RecordPollCycle(0.01)
	exporter.RecordPollCycle(0.02)
	exporter.RecordPollCoalesced()
	exporter.RecordPollFailure()
	exporter.RecordWatermarkRollback()

	if got := testutil.ToFloat64(exporter.pollCycles); got != 2 {
		t.Errorf("pollCycles = %v, want 2", got)
	}
	if got := testutil.ToFloat64(exporter.pollCoalesced); got != 1 {
		t.Errorf("pollCoalesced = %v, want 1", got)
	}
	if got := testutil.ToFloat64(exporter.pollFailures); got != 1 {
		t.Errorf("pollFailures = %v, want 1", got)
	}
	if got := testutil.ToFloat64(exporter.watermarkRollbacks); got != 1 {
		t.Errorf("watermarkRollbacks = %v, want 1", got)
	}
}
