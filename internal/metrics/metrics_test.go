package metrics

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCounters(t *testing.T) {
	m := New()

	m.SessionStarted()
	m.SessionStarted()
	m.SessionEnded()
	assert.Equal(t, 1.0, testutil.ToFloat64(m.SessionsActive))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.SessionsTotal))

	m.ObserveAction("APP_CLICK")
	m.ObserveAction("APP_CLICK")
	assert.Equal(t, 2.0, testutil.ToFloat64(m.Actions.WithLabelValues("APP_CLICK")))

	m.ObserveNavigation("not_found")
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Navigations.WithLabelValues("not_found")))
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.SessionStarted()
		m.SessionEnded()
		m.ObserveAction("x")
		m.ObserveNavigation("x")
		m.ObserveHTTP("x", "200")
		m.ObserveMail("ok")
		m.ObserveRenderFailure("mail")
	})
}

func TestHandlerExposesMetrics(t *testing.T) {
	m := New()
	m.ObserveMail("ok")

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	require.Equal(t, 200, rec.Code)

	body, _ := io.ReadAll(rec.Body)
	assert.True(t, strings.Contains(string(body), `deskfolio_mail_submitted_total{result="ok"} 1`))
}
