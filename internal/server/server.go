// Package server exposes the fact checker over HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/ppiankov/sportcheck/internal/metrics"
	"github.com/ppiankov/sportcheck/internal/model"
	"github.com/ppiankov/sportcheck/internal/resilience"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// Error details returned to clients
const (
	DetailInvalidBody   = "Request body must be a JSON object with a non-empty \"claim\" string."
	DetailNoEntities    = "Could not extract entities from claim."
	DetailNoResults     = "No search results found."
	DetailUnavailable   = "A required upstream service is unavailable."
	DetailInternalError = "Internal server error."
)

// Checker verifies a single claim
type Checker interface {
	Check(ctx context.Context, claim string) (*model.FactCheckResponse, error)
}

// Options configures the HTTP server
type Options struct {
	Port           int
	AllowedOrigins []string
}

// Server serves the fact-check API
type Server struct {
	echo    *echo.Echo
	checker Checker
	port    int
}

type errorBody struct {
	Detail string `json:"detail"`
}

// New builds the router for checker
func New(checker Checker, opts Options) *Server {
	origins := opts.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = errorHandler

	e.Use(middleware.Recover())
	// Request headers are reflected when AllowHeaders is empty
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     origins,
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowCredentials: true,
	}))
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogStatus:   true,
		LogURI:      true,
		LogMethod:   true,
		LogLatency:  true,
		LogError:    true,
		HandleError: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			route := c.Path()
			if route == "" {
				route = "unmatched"
			}
			metrics.RecordHTTPRequest(route, v.Status)
			fields := []zap.Field{
				zap.String("method", v.Method),
				zap.String("uri", v.URI),
				zap.Int("status", v.Status),
				zap.Int64("latency_ms", v.Latency.Milliseconds()),
			}
			if v.Error != nil {
				zap.L().Warn("request failed", append(fields, zap.Error(v.Error))...)
				return nil
			}
			zap.L().Info("request completed", fields...)
			return nil
		},
	}))

	s := &Server{echo: e, checker: checker, port: opts.Port}
	e.POST("/fact-check", s.handleFactCheck)
	e.GET("/health", handleHealth)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
	return s
}

// Handler returns the router for tests and embedding
func (s *Server) Handler() http.Handler {
	return s.echo
}

// Start listens until ctx is cancelled, then shuts down gracefully
func (s *Server) Start(ctx context.Context) error {
	address := fmt.Sprintf(":%d", s.port)
	errCh := make(chan error, 1)
	go func() {
		zap.L().Info("starting server", zap.String("address", address))
		if err := s.echo.Start(address); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	zap.L().Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return s.echo.Shutdown(shutdownCtx)
}

func (s *Server) handleFactCheck(c echo.Context) error {
	var claim model.Claim
	if err := c.Bind(&claim); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, DetailInvalidBody)
	}
	claim = claim.Normalize()
	if claim.IsEmpty() {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, DetailInvalidBody)
	}

	resp, err := s.checker.Check(c.Request().Context(), claim.Text)
	if err != nil {
		return classify(err)
	}
	return c.JSON(http.StatusOK, resp)
}

func handleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

// classify maps pipeline error kinds to HTTP errors
func classify(err error) *echo.HTTPError {
	var he *echo.HTTPError
	switch resilience.KindOf(err) {
	case resilience.KindBadInput:
		he = echo.NewHTTPError(http.StatusBadRequest, DetailNoEntities)
	case resilience.KindNotFound:
		he = echo.NewHTTPError(http.StatusNotFound, DetailNoResults)
	case resilience.KindDependencyUnavailable:
		he = echo.NewHTTPError(http.StatusServiceUnavailable, DetailUnavailable)
	default:
		he = echo.NewHTTPError(http.StatusInternalServerError, DetailInternalError)
	}
	return he.SetInternal(err)
}

func errorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	code := http.StatusInternalServerError
	detail := DetailInternalError
	var he *echo.HTTPError
	if errors.As(err, &he) {
		code = he.Code
		if msg, ok := he.Message.(string); ok {
			detail = msg
		} else {
			detail = http.StatusText(code)
		}
	}
	if code >= http.StatusInternalServerError {
		zap.L().Error("request error", zap.Int("status", code), zap.Error(err))
	}

	if c.Request().Method == http.MethodHead {
		err = c.NoContent(code)
	} else {
		err = c.JSON(code, errorBody{Detail: detail})
	}
	if err != nil {
		zap.L().Warn("write error response", zap.Error(err))
	}
}
