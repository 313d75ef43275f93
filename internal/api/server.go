package api

import (
	"context"
	"errors"
	"net/http"

	"PortfolioGuard/internal/model"
	"PortfolioGuard/internal/portfolio"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"
)

// CredentialHeader carries the quote provider API key on /check.
const CredentialHeader = "X-API-Key"

// Checker runs one portfolio check pass.
type Checker interface {
	Check(ctx context.Context, credential string) (*model.CheckResult, error)
}

// Server exposes the check operation over HTTP.
type Server struct {
	echo    *echo.Echo
	checker Checker
	log     *zap.Logger
}

type errorResponse struct {
	Error string `json:"error"`
}

// NewServer wires routes onto a fresh echo instance.
func NewServer(checker Checker, log *zap.Logger) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(middleware.Recover())

	s := &Server{echo: e, checker: checker, log: log}
	e.GET("/health", s.handleHealth)
	e.GET("/check", s.handleCheck)
	return s
}

// Handler returns the HTTP handler, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.echo
}

// Start listens on addr until Shutdown is called.
func (s *Server) Start(addr string) error {
	s.log.Info("http server listening", zap.String("addr", addr))
	if err := s.echo.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops the server gracefully.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

func (s *Server) handleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleCheck(c echo.Context) error {
	credential := c.Request().Header.Get(CredentialHeader)
	res, err := s.checker.Check(c.Request().Context(), credential)
	switch {
	case errors.Is(err, portfolio.ErrMissingCredential):
		return c.JSON(http.StatusUnauthorized, errorResponse{Error: "missing API key in headers"})
	case err != nil:
		s.log.Error("check request failed", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, errorResponse{Error: "portfolio store unavailable"})
	}
	return c.JSON(http.StatusOK, res)
}
