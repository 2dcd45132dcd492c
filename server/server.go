// Package server wires the HTTP routes, middleware and background collectors.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"

	"github.com/hrygo/studysheet/internal/profile"
	"github.com/hrygo/studysheet/server/internal/observability"
	"github.com/hrygo/studysheet/server/middleware"
	apiv1 "github.com/hrygo/studysheet/server/router/api/v1"
	"github.com/hrygo/studysheet/server/service/render"
	"github.com/hrygo/studysheet/server/stats"
	"github.com/hrygo/studysheet/store"
)

// ShutdownTimeout bounds how long in-flight requests may run after a shutdown signal.
const ShutdownTimeout = 10 * time.Second

type Server struct {
	Profile *profile.Profile
	Store   *store.Store

	echoServer *echo.Echo
	collector  *stats.Collector
	listener   net.Listener
}

func NewServer(ctx context.Context, profile *profile.Profile, store *store.Store) (*Server, error) {
	s := &Server{
		Profile:   profile,
		Store:     store,
		collector: stats.NewCollector(store),
	}

	echoServer := echo.New()
	echoServer.Debug = profile.IsDev()
	echoServer.HideBanner = true
	echoServer.HidePort = true
	s.echoServer = echoServer

	metrics := observability.NewMetrics()
	echoServer.Use(echomiddleware.Recover())
	echoServer.Use(middleware.RequestLogger(slog.Default(), metrics))

	renderer := render.NewRenderer(profile.FontPaths)
	apiV1Service := apiv1.NewAPIV1Service(profile, store, renderer, s.collector, metrics)
	apiV1Service.RegisterRoutes(echoServer)

	if _, err := store.ListCharacters(ctx); err != nil {
		return nil, errors.Wrap(err, "failed to load character list")
	}
	return s, nil
}

// Start begins serving in the background and starts the stats collector.
func (s *Server) Start(ctx context.Context) error {
	address := fmt.Sprintf("%s:%d", s.Profile.Addr, s.Profile.Port)
	listener, err := net.Listen("tcp", address)
	if err != nil {
		return errors.Wrapf(err, "failed to listen on %s", address)
	}
	s.listener = listener
	s.echoServer.Listener = listener

	s.collector.Start(ctx)
	go func() {
		if err := s.echoServer.Start(address); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("failed to start echo server", slog.String("error", err.Error()))
		}
	}()
	return nil
}

// Addr reports the address the server is listening on.
func (s *Server) Addr() string {
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// Shutdown stops accepting requests, waits for in-flight ones up to
// ShutdownTimeout and closes the store.
func (s *Server) Shutdown(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, ShutdownTimeout)
	defer cancel()

	slog.Info("server shutting down")
	if err := s.echoServer.Shutdown(ctx); err != nil {
		slog.Error("failed to shutdown server", slog.String("error", err.Error()))
	}
	s.collector.Stop()
	if err := s.Store.Close(); err != nil {
		slog.Error("failed to close store", slog.String("error", err.Error()))
	}
	slog.Info("server stopped properly")
}
