// Package server exposes the simulator over HTTP and streams notifier
// events to WebSocket clients.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/MikeO7/HarborSim/internal/catalog"
	"github.com/MikeO7/HarborSim/internal/config"
	"github.com/MikeO7/HarborSim/internal/events"
	"github.com/MikeO7/HarborSim/internal/progress"
	"github.com/MikeO7/HarborSim/internal/session"
	"github.com/MikeO7/HarborSim/pkg/log"
)

// Deps are the collaborators the handlers call into
type Deps struct {
	Session  *session.Session
	Bus      *events.Bus
	Catalog  *catalog.Catalog
	Progress *progress.Tracker
}

// Server wires the gin engine to the simulator
type Server struct {
	cfg     config.ServerConfig
	deps    Deps
	engine  *gin.Engine
	hub     *hub
	limiter *limiterStore

	// background outlives individual requests, e.g. for injected commands
	background context.Context
	cancel     context.CancelFunc
}

// New builds the router and subscribes the WebSocket hub to the bus
func New(cfg config.ServerConfig, deps Deps) *Server {
	if cfg.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, cancel := context.WithCancel(context.Background())
	s := &Server{
		cfg:        cfg,
		deps:       deps,
		hub:        newHub(),
		limiter:    newLimiterStore(cfg.RateLimit, cfg.RateBurst),
		background: ctx,
		cancel:     cancel,
	}
	if deps.Bus != nil {
		deps.Bus.Subscribe(s.hub)
	}
	s.engine = s.routes()
	return s
}

func (s *Server) routes() *gin.Engine {
	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(requestLogger())

	corsCfg := cors.Config{
		AllowOrigins:     s.cfg.AllowOrigins,
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(corsCfg.AllowOrigins) == 0 {
		corsCfg.AllowOrigins = nil
		corsCfg.AllowAllOrigins = true
		corsCfg.AllowCredentials = false
	}
	engine.Use(cors.New(corsCfg))

	api := engine.Group("/api")
	{
		api.GET("/health", s.health)

		commands := api.Group("/commands")
		commands.Use(s.rateLimit())
		{
			commands.POST("", s.execute)
			commands.POST("/inject", s.inject)
		}

		api.GET("/state", s.state)
		api.GET("/history", s.history)
		api.GET("/catalog", s.catalog)
		api.GET("/explain", s.explain)
		api.GET("/progress", s.progress)
		api.GET("/ws", s.stream)
	}

	// Docker Engine API compatible list endpoints
	v1 := engine.Group("/v1")
	{
		v1.GET("/containers/json", s.containersJSON)
		v1.GET("/images/json", s.imagesJSON)
	}

	return engine
}

// Handler returns the HTTP handler, mainly for tests
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run serves until ctx is cancelled, then shuts down gracefully
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:         s.cfg.Addr,
		Handler:      s.engine,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Infof("HarborSim server listening on %s", s.cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		s.close()
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
	defer cancel()

	s.close()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("error during shutdown: %w", err)
	}
	log.Info("Server stopped gracefully")
	return nil
}

func (s *Server) close() {
	s.cancel()
	if s.deps.Bus != nil {
		_ = s.deps.Bus.Unsubscribe(s.hub)
	}
	s.hub.closeAll()
}

// requestLogger logs each request through the package logger
func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		l := log.Logger()
		l.Debug().
			Str("method", c.Request.Method).
			Str("path", c.FullPath()).
			Int("status", c.Writer.Status()).
			Dur("duration", time.Since(start)).
			Str("client_ip", c.ClientIP()).
			Msg("HTTP request")
	}
}
