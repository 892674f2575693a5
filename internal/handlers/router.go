package handlers

import (
	"context"
	"database/sql"
	"log/slog"
	"net/http"
	"slices"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"catalogadmin/internal/middleware"
)

// RouterConfig holds the pieces of the engine that live outside the API group.
type RouterConfig struct {
	APIPrefix       string
	ImagesDir       string
	ImagesURLPrefix string
	CORSOrigins     []string

	// DB backs /health. Nil reports healthy without a ping.
	DB *sql.DB
	// Gatherer backs /metrics. Nil leaves the route unregistered.
	Gatherer prometheus.Gatherer
	Logger   *slog.Logger
}

// NewRouter builds the gin engine with middleware, static images, health,
// metrics and the API routes of h.
func NewRouter(h *Handler, rc RouterConfig) *gin.Engine {
	logger := rc.Logger
	if logger == nil {
		logger = slog.Default()
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger(logger))
	r.Use(cors.New(corsConfig(rc.CORSOrigins)))

	if rc.ImagesDir != "" && rc.ImagesURLPrefix != "" {
		r.Static(rc.ImagesURLPrefix, rc.ImagesDir)
	}

	r.GET("/health", func(c *gin.Context) {
		if rc.DB != nil {
			ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
			defer cancel()
			if err := rc.DB.PingContext(ctx); err != nil {
				c.JSON(http.StatusServiceUnavailable, gin.H{"ok": false, "db": err.Error()})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})

	if rc.Gatherer != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(rc.Gatherer, promhttp.HandlerOpts{})))
	}

	h.Register(r.Group(rc.APIPrefix))
	return r
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.DefaultConfig()
	if len(origins) == 0 || slices.Contains(origins, "*") {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
	}
	cfg.AllowMethods = []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"}
	cfg.AllowHeaders = []string{"Origin", "Content-Type", "Accept", "Authorization"}
	return cfg
}
