package server

import (
	"context"
	"fmt"
	"log"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/edvm/autoblogger/config"
	"github.com/edvm/autoblogger/internal/agent/core"
	"github.com/edvm/autoblogger/internal/agent/telemetry"
	"github.com/edvm/autoblogger/internal/archive"
	"github.com/edvm/autoblogger/internal/runtime"
	"github.com/edvm/autoblogger/internal/store"
	"github.com/edvm/autoblogger/internal/usage"
)

// Run wires every collaborator from config and serves the HTTP API until the
// listener stops.
func Run(cfg *config.Config) error {
	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Recover())

	// unified HTTP error handler with structured JSON and logging
	baseLogger := log.New(log.Writer(), "[HTTP] ", log.LstdFlags)
	e.HTTPErrorHandler = func(err error, c echo.Context) {
		code := http.StatusInternalServerError
		msg := err.Error()
		if he, ok := err.(*echo.HTTPError); ok {
			code = he.Code
			if he.Message != nil {
				msg = fmt.Sprint(he.Message)
			}
		}
		req := c.Request()
		baseLogger.Printf("%d %s %s from %s: %v", code, req.Method, req.URL.Path, c.RealIP(), err)
		if !c.Response().Committed {
			_ = c.JSON(code, HTTPError{Error: msg})
		}
	}
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Content-Type", "Cookie", "Authorization"},
		AllowCredentials: true,
	}))

	e.GET("/healthz", func(c echo.Context) error { return c.String(http.StatusOK, "ok") })
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	if err := cfg.Storage.Postgres.Validate(); err != nil {
		return err
	}
	dsn := cfg.Storage.Postgres.DSN()
	if err := Migrate("file://migrations", dsn, "up", 0); err != nil {
		return fmt.Errorf("migrations: %w", err)
	}

	ctx := context.Background()
	st, err := store.NewWithDSN(ctx, dsn)
	if err != nil {
		return err
	}

	tele := telemetry.New(cfg.Telemetry)
	defer tele.Shutdown()

	svc, err := core.NewService(cfg, tele)
	if err != nil {
		return err
	}

	secret, err := runtime.LoadJWTSecret(cfg)
	if err != nil {
		return err
	}

	// optional collaborators, each disabled by config rather than fatal
	var recorder *usage.Recorder
	if cfg.Storage.Redis.Validate() == nil {
		recorder, err = usage.NewRecorder(cfg.Storage.Redis)
		if err != nil {
			return fmt.Errorf("usage recorder: %w", err)
		}
		defer func() { _ = recorder.Close() }()
	}
	var idx *archive.Archive
	if cfg.Storage.Archive.Enabled {
		idx, err = archive.Open(cfg.Storage.Archive.Path)
		if err != nil {
			return fmt.Errorf("article archive: %w", err)
		}
		defer func() { _ = idx.Close() }()
	}

	api := e.Group("/api")

	auth := &AuthHandler{Store: st, Secret: secret}
	auth.Register(api.Group("/auth"))

	posts := api.Group("/posts")
	posts.Use(runtime.EchoAuthMiddleware(secret))
	ph := &PostsHandler{Store: st, Service: svc, Usage: recorder, Archive: idx}
	ph.Register(posts)

	addr := cfg.Server.Address
	if addr == "" {
		addr = ":10002"
	}
	log.Printf("listening on %s", addr)
	return e.Start(addr)
}
