package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObserveUpstreamOutcomes(t *testing.T) {
	m := New()

	m.ObserveUpstream("advanced", "ticker", 200, nil, 10*time.Millisecond)
	m.ObserveUpstream("advanced", "ticker", 503, errors.New("status"), 10*time.Millisecond)
	m.ObserveUpstream("advanced", "ticker", 0, errors.New("dial"), time.Millisecond)
	m.ObserveUpstream("advanced", "ticker", 200, errors.New("bad json"), time.Millisecond)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.UpstreamRequests.WithLabelValues("advanced", "ticker", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.UpstreamRequests.WithLabelValues("advanced", "ticker", "503")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.UpstreamRequests.WithLabelValues("advanced", "ticker", "transport_error")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.UpstreamRequests.WithLabelValues("advanced", "ticker", "decode_error")))
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	m.ObserveUpstream("x", "y", 200, nil, time.Second)
	m.ObserveAnchor("snapshot", "last_trade")
	m.ObserveDiscrepancy("none")
	m.ObserveHTTP("/", 200, time.Second)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandlerExposesCounters(t *testing.T) {
	m := New()
	m.ObserveDiscrepancy("material")

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), `ethanchor_cross_check_level_total{level="material"} 1`))
}
