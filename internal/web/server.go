package web

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"

	"github.com/paddleworks/slalomboard/internal/observability"
	"github.com/paddleworks/slalomboard/internal/scoreboard"
	"github.com/paddleworks/slalomboard/internal/settings"
)

const version = "0.1.0"

// StateSource hands out read-only snapshot copies.
type StateSource interface {
	View() scoreboard.Snapshot
}

// Config shapes the HTTP surface.
type Config struct {
	ListenAddr  string
	CORSOrigins []string
}

// Server exposes the snapshot to the scoreboard UI. Store may be nil;
// settings then resolve to defaults and writes are no-ops.
type Server struct {
	cfg     Config
	state   StateSource
	store   settings.Store
	router  *gin.Engine
	started time.Time
}

func NewServer(cfg Config, state StateSource, store settings.Store) *Server {
	observability.RegisterMetrics()
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(observability.RequestID())
	r.Use(observability.RequestLogger(log.Logger))
	r.Use(observability.RequestMetricsMiddleware())
	r.Use(cors.New(cors.Config{
		AllowOrigins: normalizeOrigins(cfg.CORSOrigins),
		AllowMethods: []string{"GET", "PUT"},
		AllowHeaders: []string{"Origin", "Content-Type"},
		MaxAge:       12 * time.Hour,
	}))
	_ = r.SetTrustedProxies([]string{"127.0.0.1", "::1"})

	s := &Server{
		cfg:     cfg,
		state:   state,
		store:   store,
		router:  r,
		started: time.Now(),
	}
	s.registerRoutes()
	return s
}

// Router exposes the gin engine for tests.
func (s *Server) Router() *gin.Engine { return s.router }

func (s *Server) registerRoutes() {
	s.router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"uptime":  time.Since(s.started).String(),
			"version": version,
		})
	})

	s.router.GET("/ready", func(c *gin.Context) {
		snap := s.state.View()
		c.JSON(http.StatusOK, gin.H{
			"ready":        true,
			"connection":   snap.Connection,
			"initial_data": snap.InitialDataReceived,
		})
	})

	s.router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	s.router.GET("/state", func(c *gin.Context) {
		c.JSON(http.StatusOK, s.state.View())
	})

	s.router.GET("/settings", func(c *gin.Context) {
		assets, err := settings.Resolve(s.store)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, assets)
	})

	s.router.PUT("/settings", func(c *gin.Context) {
		var assets settings.Assets
		if err := c.ShouldBindJSON(&assets); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		if err := settings.Apply(s.store, assets); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		resolved, err := settings.Resolve(s.store)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, resolved)
	})
}

// Run serves until ctx is canceled, then drains in-flight requests
// before returning.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.ListenAddr,
		Handler:           s.router,
		ReadHeaderTimeout: 5 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", srv.Addr).Msg("web surface listening")
		errCh <- srv.ListenAndServe()
	}()
	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	log.Info().Msg("web surface stopped")
	return nil
}

func normalizeOrigins(origins []string) []string {
	if len(origins) == 0 {
		return []string{"http://localhost:3000"}
	}
	return origins
}
