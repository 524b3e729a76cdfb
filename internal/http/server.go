// Package http exposes the fulfillment webhook over HTTP: one POST
// endpoint the conversational platform calls with intent events, plus
// health and metrics endpoints for operations.
package http

import (
	"context"
	"errors"
	"fmt"
	nethttp "net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/taskvoice/internal/convo"
	"github.com/fyrsmithlabs/taskvoice/internal/logging"
)

// Config holds HTTP server configuration.
type Config struct {
	Host string
	Port int

	// RateLimit is the sustained fulfillment requests per second allowed
	// per conversation session. Zero disables rate limiting.
	RateLimit float64
}

// Server serves the fulfillment webhook.
type Server struct {
	echo    *echo.Echo
	app     *convo.App
	logger  *logging.Logger
	config  Config
	limiter *sessionLimiter
}

// ErrorResponse is the body returned for transport-level failures.
// Conversational failures never reach this path; the fulfillment layer
// answers those in the prompt itself.
type ErrorResponse struct {
	Error string `json:"error"`
}

// HealthResponse is the response body for GET /health.
type HealthResponse struct {
	Status string `json:"status"`
}

// NewServer creates the webhook server and registers its routes.
func NewServer(app *convo.App, logger *logging.Logger, registry *prometheus.Registry, cfg Config) (*Server, error) {
	if app == nil {
		return nil, errors.New("app is required")
	}
	if logger == nil {
		return nil, errors.New("logger is required")
	}
	if cfg.Host == "" {
		cfg.Host = "localhost"
	}
	if cfg.Port == 0 {
		cfg.Port = 8080
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	// Slowloris protection; fulfillment exchanges are small and fast.
	e.Server.ReadTimeout = 10 * time.Second
	e.Server.WriteTimeout = 10 * time.Second
	e.Server.IdleTimeout = 120 * time.Second

	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	e.Use(middleware.BodyLimit("64K"))

	metrics := newHTTPMetrics(registry)
	e.Use(metrics.middleware())

	e.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)

			logger.Info(c.Request().Context(), "http request",
				zap.String("method", c.Request().Method),
				zap.String("uri", c.Request().RequestURI),
				zap.Int("status", c.Response().Status),
				zap.Duration("duration", time.Since(start)),
				zap.String("request_id", c.Response().Header().Get(echo.HeaderXRequestID)),
			)

			return err
		}
	})

	s := &Server{
		echo:    e,
		app:     app,
		logger:  logger.Named("http"),
		config:  cfg,
		limiter: newSessionLimiter(cfg.RateLimit),
	}

	e.POST("/fulfillment", s.handleFulfillment)
	e.GET("/health", s.handleHealth)
	if registry != nil {
		e.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})))
	}

	return s, nil
}

// handleFulfillment decodes one intent event, dispatches it, and writes
// the conversational response.
func (s *Server) handleFulfillment(c echo.Context) error {
	var req convo.Request
	if err := c.Bind(&req); err != nil {
		s.logger.Warn(c.Request().Context(), "invalid fulfillment body", zap.Error(err))
		return c.JSON(nethttp.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
	}

	// The bearer credential travels in the authorization header, not in
	// the event body.
	req.Credential = c.Request().Header.Get(echo.HeaderAuthorization)

	ctx := c.Request().Context()
	ctx = logging.WithRequestID(ctx, c.Response().Header().Get(echo.HeaderXRequestID))
	ctx = logging.WithSessionID(ctx, req.Session.ID)

	if !s.limiter.allow(req.Session.ID, c.RealIP()) {
		s.logger.Warn(ctx, "rate limit exceeded", zap.String("session.id", req.Session.ID))
		return c.JSON(nethttp.StatusTooManyRequests, ErrorResponse{Error: "rate limit exceeded"})
	}

	resp, err := s.app.Dispatch(ctx, &req)
	if err != nil {
		if errors.Is(err, convo.ErrUnknownHandler) {
			s.logger.Warn(ctx, "unknown handler", zap.String("handler", req.Handler.Name))
			return c.JSON(nethttp.StatusBadRequest, ErrorResponse{Error: "unknown handler"})
		}
		s.logger.Error(ctx, "dispatch failed", zap.Error(err))
		return c.JSON(nethttp.StatusInternalServerError, ErrorResponse{Error: "internal error"})
	}

	return c.JSON(nethttp.StatusOK, resp)
}

func (s *Server) handleHealth(c echo.Context) error {
	return c.JSON(nethttp.StatusOK, HealthResponse{Status: "ok"})
}

// Start starts the HTTP server and blocks until it stops.
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)
	s.logger.Info(context.Background(), "starting http server", zap.String("addr", addr))
	return s.echo.Start(addr)
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info(ctx, "shutting down http server")
	return s.echo.Shutdown(ctx)
}

// Echo exposes the underlying router for tests.
func (s *Server) Echo() *echo.Echo {
	return s.echo
}
