package web

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Gaurav-Gosain/deskfolio/internal/metrics"
	"github.com/Gaurav-Gosain/deskfolio/internal/registry"
)

func setupTestServer(t *testing.T, m *metrics.Metrics) *Server {
	t.Helper()
	gin.SetMode(gin.TestMode)
	return NewServer(Config{SSHHost: "deskfolio.dev", SSHPort: "2222", Metrics: m})
}

func get(s *Server, path, accept string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if accept != "" {
		req.Header.Set("Accept", accept)
	}
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	return w
}

func TestHealth(t *testing.T) {
	s := setupTestServer(t, nil)
	w := get(s, "/healthz", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ok", w.Body.String())
}

func TestDeepLinks(t *testing.T) {
	s := setupTestServer(t, nil)

	tests := []struct {
		name       string
		path       string
		wantStatus int
		wantBody   string
	}{
		{"root", "/", http.StatusOK, "ssh -t deskfolio.dev -p 2222\n"},
		{"mapped", "/resume", http.StatusOK, "ssh -t deskfolio.dev -p 2222 /resume"},
		{"trailing slash", "/chrome/", http.StatusOK, "ssh -t deskfolio.dev -p 2222 /chrome"},
		{"unmapped", "/nope", http.StatusNotFound, "404: /nope was not found."},
		{"reserved not found page", "/404.html", http.StatusNotFound, "404: /404.html was not found."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := get(s, tt.path, "")
			assert.Equal(t, tt.wantStatus, w.Code)
			assert.Contains(t, w.Body.String(), tt.wantBody)
		})
	}
}

func TestDeepLinkJSON(t *testing.T) {
	s := setupTestServer(t, nil)

	w := get(s, "/projects", "application/json")
	require.Equal(t, http.StatusOK, w.Code)
	var resp DeepLinkResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Found)
	assert.Equal(t, "/projects", resp.Path)
	assert.Equal(t, "ssh -t deskfolio.dev -p 2222 /projects", resp.Command)

	w = get(s, "/missing", "application/json")
	require.Equal(t, http.StatusNotFound, w.Code)
	resp = DeepLinkResponse{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.False(t, resp.Found)
	assert.Empty(t, resp.Command)
}

func TestDeepLinkRejectsWrites(t *testing.T) {
	s := setupTestServer(t, nil)
	req := httptest.NewRequest(http.MethodPost, "/resume", strings.NewReader("x"))
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
}

func TestAPIApps(t *testing.T) {
	s := setupTestServer(t, nil)
	w := get(s, "/api/apps", "")
	require.Equal(t, http.StatusOK, w.Code)

	var apps []AppInfo
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &apps))
	require.Len(t, apps, len(registry.AppIDs()))
	assert.Equal(t, string(registry.AboutMe), apps[0].ID)
	assert.Contains(t, apps[0].Views, "Resume")
}

func TestAPIRoutes(t *testing.T) {
	s := setupTestServer(t, nil)
	w := get(s, "/api/routes", "")
	require.Equal(t, http.StatusOK, w.Code)

	var routes []RouteInfo
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &routes))
	require.NotEmpty(t, routes)
	for _, r := range routes {
		assert.True(t, strings.HasSuffix(r.Command, " "+r.Path), r.Command)
	}
}

func TestSSHCommandOmitsDefaultPort(t *testing.T) {
	s := NewServer(Config{SSHHost: "example.com", SSHPort: "22"})
	assert.Equal(t, "ssh -t example.com /mail", s.SSHCommand("/mail"))
	assert.Equal(t, "ssh -t example.com", s.SSHCommand("/"))
}

func TestMetricsEndpoint(t *testing.T) {
	m := metrics.New()
	s := setupTestServer(t, m)

	get(s, "/healthz", "")
	get(s, "/nope", "")

	assert.Equal(t, 1.0, testutil.ToFloat64(m.HTTPRequests.WithLabelValues("/healthz", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.HTTPRequests.WithLabelValues("deeplink", "404")))

	w := get(s, "/metrics", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "http_requests_total")
}

func TestConnectionLimit(t *testing.T) {
	gin.SetMode(gin.TestMode)
	s := NewServer(Config{MaxConnections: 1})
	s.connCount.Store(1)

	w := get(s, "/healthz", "")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)

	s.connCount.Store(0)
	w = get(s, "/healthz", "")
	assert.Equal(t, http.StatusOK, w.Code)
}
