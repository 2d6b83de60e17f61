// Package api exposes the assessment engine over HTTP.
package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"golang.org/x/time/rate"

	"github.com/vocardo/vocardo/internal/config"
	"github.com/vocardo/vocardo/internal/verify"
)

// Server wraps the echo instance around one engine.
type Server struct {
	echo   *echo.Echo
	engine *verify.Engine
	logger *slog.Logger
}

// NewServer builds the HTTP server with routing, request logging, and
// per-client rate limiting.
func NewServer(engine *verify.Engine, cfg config.ServerConfig, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = errorHandler(logger)

	e.Use(middleware.Recover())
	e.Use(requestLogger(logger))
	if cfg.RateLimit > 0 {
		e.Use(middleware.RateLimiter(middleware.NewRateLimiterMemoryStoreWithConfig(
			middleware.RateLimiterMemoryStoreConfig{
				Rate:  rate.Limit(cfg.RateLimit),
				Burst: cfg.RateBurst,
			},
		)))
	}

	s := &Server{echo: e, engine: engine, logger: logger}
	s.routes()
	return s
}

func (s *Server) routes() {
	v1 := s.echo.Group("/api/v1")

	v1.POST("/cards", s.enrollCard)
	v1.POST("/cards/:id/review", s.submitReview)
	v1.GET("/cards/:id/history", s.reviewHistory)

	v1.GET("/learners/:id/due", s.dueCards)
	v1.GET("/learners/:id/next-item", s.nextItem)
	v1.GET("/learners/:id/assignment", s.assignment)
	v1.POST("/learners/:id/migrate", s.migrate)

	v1.POST("/answers", s.submitAnswer)

	v1.GET("/items/flagged", s.flaggedItems)
}

// Handler returns the HTTP handler, for tests.
func (s *Server) Handler() http.Handler { return s.echo }

// Start listens on addr until the context is canceled.
func (s *Server) Start(ctx context.Context, addr string) error {
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := s.echo.Shutdown(shutdownCtx); err != nil {
			s.logger.Error("server shutdown", "err", err)
		}
	}()
	s.logger.Info("http server listening", "addr", addr)
	if err := s.echo.Start(addr); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func requestLogger(logger *slog.Logger) echo.MiddlewareFunc {
	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogStatus:  true,
		LogURI:     true,
		LogMethod:  true,
		LogLatency: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			logger.Info("request",
				"method", v.Method,
				"uri", v.URI,
				"status", v.Status,
				"latency_ms", v.Latency.Milliseconds(),
			)
			return nil
		},
	})
}
