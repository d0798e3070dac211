package router

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/jwalitptl/agenda-api/internal/middleware"
	"github.com/jwalitptl/agenda-api/pkg/metrics"
)

type Handler interface {
	RegisterRoutes(*gin.RouterGroup)
}

type Router struct {
	engine    *gin.Engine
	auth      *middleware.AuthMiddleware
	health    Handler
	protected []Handler
	metrics   *metrics.Metrics
	config    RouterConfig
}

type RouterConfig struct {
	Mode           string
	RateLimit      rate.Limit
	RateBurst      int
	RequestTimeout time.Duration
	CORSConfig     middleware.CORSConfig
}

// NewRouter builds the engine and its global middleware chain. health is
// mounted without authentication; every protected handler sits behind the
// session middleware.
func NewRouter(
	auth *middleware.AuthMiddleware,
	health Handler,
	m *metrics.Metrics,
	config RouterConfig,
	protected ...Handler,
) *Router {
	if config.Mode != "" {
		gin.SetMode(config.Mode)
	}
	if m == nil {
		m = metrics.NewNop()
	}

	engine := gin.New() // Use New() instead of Default() for more control

	r := &Router{
		engine:    engine,
		auth:      auth,
		health:    health,
		protected: protected,
		metrics:   m,
		config:    config,
	}

	// Add core middlewares
	engine.Use(
		middleware.RequestID(),
		middleware.Recovery(),
		middleware.Logger(),
		r.metricsMiddleware(),
		middleware.ErrorHandler(),
		middleware.CORS(config.CORSConfig),
	)

	return r
}

func (r *Router) Setup() {
	api := r.engine.Group("/api/v1")

	// Add version header
	api.Use(func(c *gin.Context) {
		c.Header("X-API-Version", "1.0")
		c.Next()
	})

	// Health check endpoints
	r.health.RegisterRoutes(api)

	rateLimiter := middleware.NewRateLimiter(middleware.RateLimiterConfig{
		Rate:  r.config.RateLimit,
		Burst: r.config.RateBurst,
	})

	// Protected routes
	protected := api.Group("")
	protected.Use(
		r.auth.Authenticate(),
		rateLimiter.RateLimit(),
		middleware.Timeout(middleware.TimeoutConfig{Duration: r.config.RequestTimeout}),
	)
	for _, h := range r.protected {
		h.RegisterRoutes(protected)
	}
}

func (r *Router) Engine() *gin.Engine {
	return r.engine
}

func (r *Router) metricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		status := strconv.Itoa(c.Writer.Status())

		r.metrics.HTTPDuration.WithLabelValues(c.Request.Method, path).Observe(time.Since(start).Seconds())
		r.metrics.HTTPRequests.WithLabelValues(c.Request.Method, path, status).Inc()
	}
}
