// Package httpapi exposes the auth service as a JSON API over echo.
package httpapi

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/dmitrijs2005/credvault/internal/logging"
	"github.com/dmitrijs2005/credvault/internal/server/metrics"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

const shutdownTimeout = 10 * time.Second

// Server is the HTTP front end of credvault.
type Server struct {
	addr    string
	auth    AuthAPI
	parser  TokenParser
	metrics *metrics.Metrics
	log     logging.Logger
	echo    *echo.Echo
}

// NewServer builds the router. m may be nil.
func NewServer(addr string, auth AuthAPI, parser TokenParser, m *metrics.Metrics, log logging.Logger) *Server {
	s := &Server{
		addr:    addr,
		auth:    auth,
		parser:  parser,
		metrics: m,
		log:     log.With("module", "http"),
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = newRequestValidator()
	e.HTTPErrorHandler = s.handleError

	e.Use(s.requestLogger())
	e.Use(middleware.Recover())

	e.GET("/health", s.health)
	e.GET("/metrics", echo.WrapHandler(m.Handler()))

	api := e.Group("/api/v1/auth")
	api.POST("/register", s.register)
	api.POST("/login", s.login)
	api.POST("/forgot-password", s.forgotPassword)
	api.POST("/reset-password", s.resetPassword)
	api.GET("/me", s.me, requireBearer(parser))

	s.echo = e
	return s
}

// Handler returns the router, for use with httptest.
func (s *Server) Handler() http.Handler {
	return s.echo
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	listener, err := net.Listen("tcp", s.addr)
	if err != nil {
		return err
	}
	s.echo.Listener = listener

	go func() {
		<-ctx.Done()
		s.log.Info(context.Background(), "Stopping HTTP server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := s.echo.Shutdown(shutdownCtx); err != nil {
			s.log.Error(context.Background(), "HTTP shutdown failed", "error", err)
		}
	}()

	s.log.Info(ctx, "Starting HTTP server", "address", listener.Addr().String())

	if err := s.echo.Start(""); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
