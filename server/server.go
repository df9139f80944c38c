// Package server assembles the font tool server: the echo router, the
// memoizing cache, the artifact lifecycle manager, the publish pipeline,
// and the background scheduler that keeps cache and disk bounded.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/akari2600/macos-fonts-mcp/internal/artifact"
	"github.com/akari2600/macos-fonts-mcp/internal/cache"
	"github.com/akari2600/macos-fonts-mcp/internal/profile"
	"github.com/akari2600/macos-fonts-mcp/internal/publish"
	"github.com/akari2600/macos-fonts-mcp/plugin/fonts"
	apiv1 "github.com/akari2600/macos-fonts-mcp/server/router/api/v1"
	"github.com/akari2600/macos-fonts-mcp/server/scheduler"
)

// Server owns every long-lived component of the process. All components
// are constructed once here and passed by reference; nothing is looked up
// globally.
type Server struct {
	Profile   *profile.Profile
	Cache     *cache.Cache
	Lifecycle *artifact.Manager
	Publisher *publish.Pipeline
	Scheduler *scheduler.Scheduler

	echoServer *echo.Echo
}

// NewServer wires the components together and registers the background
// tasks: the cache sweep, the artifact sweep, and the final sweep on
// shutdown.
func NewServer(p *profile.Profile, library fonts.Library, store publish.ObjectStore) (*Server, error) {
	c := cache.New(p.CacheTTL)
	lifecycle := artifact.NewManager(artifact.Config{
		Dir:      p.OutDir,
		MaxAge:   p.ArtifactMaxAge,
		MaxCount: p.ArtifactMaxCount,
		MaxBytes: p.ArtifactMaxBytes,
	})
	publisher := publish.NewPipeline(store, p.UploadMaxRetries, p.UploadConcurrency)

	sched := scheduler.New(slog.Default())
	sched.Repeat("cache-sweep", p.CacheSweepInterval, func(context.Context) {
		if removed := c.SweepExpired(); removed > 0 {
			slog.Debug("cache sweep removed entries", "count", removed)
		}
	})
	sched.Repeat("artifact-sweep", p.ArtifactSweepInterval, func(context.Context) {
		lifecycle.FullSweep()
	})
	sched.OnShutdown(func(context.Context) {
		slog.Info("running final artifact sweep")
		result := lifecycle.FullSweep()
		slog.Info("final artifact sweep completed", "total", result.Total)
	})

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(echomw.Recover())
	e.Use(requestLogger())

	toolService := apiv1.NewToolService(p, library, c, lifecycle, publisher)
	toolService.Register(e.Group("/api/v1"))

	e.GET("/healthz", func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})

	return &Server{
		Profile:    p,
		Cache:      c,
		Lifecycle:  lifecycle,
		Publisher:  publisher,
		Scheduler:  sched,
		echoServer: e,
	}, nil
}

// Start launches the scheduler and the HTTP listener. It blocks until the
// listener stops.
func (s *Server) Start(ctx context.Context) error {
	s.Scheduler.Start(ctx)

	address := fmt.Sprintf("%s:%d", s.Profile.Addr, s.Profile.Port)
	slog.Info("server started", "address", address, "version", s.Profile.Version, "mode", s.Profile.Mode)
	if err := s.echoServer.Start(address); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown drains the HTTP server, then stops the scheduler, which runs
// the final sweep.
func (s *Server) Shutdown(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	if err := s.echoServer.Shutdown(ctx); err != nil {
		slog.Error("failed to shutdown http server", "error", err)
	}
	s.Scheduler.Stop()
	slog.Info("server shutdown complete")
}

// requestLogger tags every request with an ID and logs its outcome.
func requestLogger() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			requestID := uuid.New().String()
			c.Response().Header().Set(echo.HeaderXRequestID, requestID)
			start := time.Now()

			err := next(c)

			slog.Info("request",
				"request_id", requestID,
				"method", c.Request().Method,
				"path", c.Request().URL.Path,
				"status", c.Response().Status,
				"duration_ms", time.Since(start).Milliseconds())
			return err
		}
	}
}
