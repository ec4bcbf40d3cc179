package observability

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_Counters(t *testing.T) {
	m := NewMetrics()
	m.ObserveHTTP("POST", "/api/claim", 201, 40*time.Millisecond)
	m.ObserveHTTP("POST", "/api/claim", 201, 10*time.Millisecond)
	m.IncrEvent("claim.submitted", "ok")
	m.IncrExternalError("elasticsearch")

	assert.Equal(t, 2.0, testutil.ToFloat64(m.requestsTotal.WithLabelValues("POST", "/api/claim", "201")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.eventsPublished.WithLabelValues("claim.submitted", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.externalErrors.WithLabelValues("elasticsearch")))
}

func TestMetrics_NewMetricsTwice(t *testing.T) {
	assert.NotPanics(t, func() {
		NewMetrics()
		NewMetrics()
	})
}

func TestMetrics_Handler(t *testing.T) {
	m := NewMetrics()
	m.IncrEvent("policy.created", "ok")

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	body, _ := io.ReadAll(rec.Body)
	assert.Contains(t, string(body), `insureclaim_events_published_total{result="ok",type="policy.created"} 1`)
	assert.Contains(t, string(body), "go_goroutines")
}
