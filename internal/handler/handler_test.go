package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/agenda-api/pkg/metrics"
)

func setupRouter(h *Handler) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	h.RegisterRoutes(r.Group(""))
	return r
}

func up(context.Context) error { return nil }

func TestLivenessCheck(t *testing.T) {
	r := setupRouter(NewHandler(prometheus.NewRegistry(), nil))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health/live", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"alive"`)
}

func TestReadinessCheck(t *testing.T) {
	tests := []struct {
		name   string
		checks map[string]Checker
		status int
		want   map[string]string
	}{
		{
			name:   "all up",
			checks: map[string]Checker{"database": CheckerFunc(up), "redis": CheckerFunc(up)},
			status: http.StatusOK,
			want:   map[string]string{"database": "up", "redis": "up"},
		},
		{
			name: "redis down",
			checks: map[string]Checker{
				"database": CheckerFunc(up),
				"redis":    CheckerFunc(func(context.Context) error { return errors.New("connection refused") }),
			},
			status: http.StatusServiceUnavailable,
			want:   map[string]string{"database": "up", "redis": "down"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := setupRouter(NewHandler(prometheus.NewRegistry(), tt.checks))

			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health/ready", nil))

			assert.Equal(t, tt.status, w.Code)
			var body struct {
				Checks map[string]string `json:"checks"`
			}
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.Equal(t, tt.want, body.Checks)
		})
	}
}

func TestMetricsHandler(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.NewMetrics("agenda", reg)
	m.BoardStaleLoads.Inc()

	r := setupRouter(NewHandler(reg, nil))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health/metrics", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "agenda_board_stale_loads_total 1")
}
