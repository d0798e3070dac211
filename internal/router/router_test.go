package router

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/agenda-api/internal/middleware"
	"github.com/jwalitptl/agenda-api/internal/model"
	"github.com/jwalitptl/agenda-api/pkg/auth"
	"github.com/jwalitptl/agenda-api/pkg/metrics"
)

type stubHandler struct {
	path string
}

func (h stubHandler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET(h.path, func(c *gin.Context) {
		session, _ := middleware.GetSession(c)
		c.String(http.StatusOK, session.Subject)
	})
}

func newTestRouter(t *testing.T) (*gin.Engine, *metrics.Metrics) {
	t.Helper()
	m := metrics.NewMetrics("test", prometheus.NewRegistry())
	r := NewRouter(
		middleware.NewAuthMiddleware(auth.NewJWTService("secret", "agenda")),
		stubHandler{path: "/health/live"},
		m,
		RouterConfig{
			Mode:           gin.TestMode,
			RateLimit:      100,
			RateBurst:      100,
			RequestTimeout: time.Second,
			CORSConfig:     middleware.DefaultCORSConfig(),
		},
		stubHandler{path: "/whoami"},
	)
	r.Setup()
	return r.Engine(), m
}

func TestRouter_PublicAndProtected(t *testing.T) {
	engine, m := newTestRouter(t)

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/health/live", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "1.0", w.Header().Get("X-API-Version"))
	assert.NotEmpty(t, w.Header().Get(middleware.HeaderXRequestID))

	w = httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/whoami", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, model.SessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{Issuer: "agenda", Subject: "user:5"},
		UserID:           5,
		Role:             "patient",
	}).SignedString([]byte("secret"))
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/whoami", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w = httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "user:5", w.Body.String())

	assert.Equal(t, 1.0, testutil.ToFloat64(m.HTTPRequests.WithLabelValues(http.MethodGet, "/api/v1/whoami", "401")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.HTTPRequests.WithLabelValues(http.MethodGet, "/api/v1/whoami", "200")))
}

func TestRouter_Unmatched(t *testing.T) {
	engine, m := newTestRouter(t)

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/nope", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.HTTPRequests.WithLabelValues(http.MethodGet, "unmatched", "404")))
}
