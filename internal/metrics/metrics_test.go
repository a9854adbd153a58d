package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObserveOperation(t *testing.T) {
	m := New()

	m.ObserveOperation("create_bet", time.Now(), nil)
	m.ObserveOperation("create_bet", time.Now(), errors.New("boom"))
	m.ObserveOperation("create_bet", time.Now(), nil)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.OperationCounter.WithLabelValues("create_bet", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.OperationCounter.WithLabelValues("create_bet", "error")))
}

func TestCreditsMoved(t *testing.T) {
	m := New()

	m.AddDebited(500)
	m.AddCredited(1000)
	m.AddCredited(0)

	assert.Equal(t, 500.0, testutil.ToFloat64(m.CreditsMoved.WithLabelValues("debit")))
	assert.Equal(t, 1000.0, testutil.ToFloat64(m.CreditsMoved.WithLabelValues("credit")))
}

func TestNilMetricsIsSafe(t *testing.T) {
	var m *Metrics

	assert.NotPanics(t, func() {
		m.ObserveOperation("x", time.Now(), nil)
		m.AddDebited(1)
		m.AddCredited(1)
		m.SubscriberOpened()
		m.SubscriberClosed()
		m.ObserveRequest(http.MethodGet, "/", http.StatusOK)
	})
}

func TestHandlerExposesMetrics(t *testing.T) {
	m := New()
	m.SubscriberOpened()

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "ronda_feed_subscribers 1")
}
