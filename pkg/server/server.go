package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"shareit/pkg/log"
	"shareit/pkg/models"
	"shareit/pkg/store"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

const (
	shutdownTimeout   = 10 * time.Second
	readHeaderTimeout = 10 * time.Second

	// StaticPrefix is the path under which stored files are served.
	StaticPrefix = "/uploads"
	// UploadPath accepts multipart uploads.
	UploadPath = "/api/files/upload"
	// WelcomeMessage is the liveness response on GET /.
	WelcomeMessage = "Welcome to the ShareIt File Sharing App Backend!"

	// Room for multipart boundaries and part headers on top of the file itself.
	multipartOverhead = 64 * 1024
)

// Config holds the HTTP-facing settings of a ShareServer.
type Config struct {
	// PublicURL, when set, replaces the request's scheme and host in share links.
	PublicURL string
	// MaxUploadSize caps a single file in bytes; 0 disables the cap.
	MaxUploadSize int64
	ReadTimeout   time.Duration
	WriteTimeout  time.Duration
	IdleTimeout   time.Duration
}

type ShareServer struct {
	cfg       Config
	echo      *echo.Echo
	version   string
	store     store.Store
	startedAt time.Time
	routes    sync.Once
}

func NewShareServer(cfg Config, version string, storeImpl store.Store) *ShareServer {
	return &ShareServer{
		cfg:       cfg,
		echo:      echo.New(),
		version:   version,
		store:     storeImpl,
		startedAt: time.Now(),
	}
}

// Handler returns the fully routed HTTP handler, for embedding or tests.
func (srv *ShareServer) Handler() http.Handler {
	srv.routes.Do(srv.setupRoutes)
	return srv.echo
}

func (srv *ShareServer) Start(addr string) error {
	srv.routes.Do(srv.setupRoutes)

	srv.echo.Server.ReadHeaderTimeout = readHeaderTimeout
	srv.echo.Server.ReadTimeout = srv.cfg.ReadTimeout
	srv.echo.Server.WriteTimeout = srv.cfg.WriteTimeout
	srv.echo.Server.IdleTimeout = srv.cfg.IdleTimeout

	go func() {
		log.Info().
			Str("addr", addr).
			Str("version", srv.version).
			Str("public_url", srv.cfg.PublicURL).
			Int64("max_upload_size", srv.cfg.MaxUploadSize).
			Msg("Starting ShareIt server")

		if err := srv.echo.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Server startup failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	return srv.Shutdown()
}

func (srv *ShareServer) Shutdown() error {
	log.Info().Msg("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.echo.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Server shutdown failed")
		return err
	}

	log.Info().Msg("Server gracefully stopped")
	return nil
}

func (srv *ShareServer) setupRoutes() {
	srv.echo.HideBanner = true
	srv.echo.HidePort = true
	srv.echo.HTTPErrorHandler = srv.handleHTTPError

	srv.echo.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:   true,
		LogURI:      true,
		LogStatus:   true,
		LogLatency:  true,
		LogRemoteIP: true,
		LogError:    true,
		LogValuesFunc: func(_ echo.Context, v middleware.RequestLoggerValues) error {
			event := log.Info()
			if v.Error != nil {
				event = log.Warn().Err(v.Error)
			}
			event.
				Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Str("remote_ip", v.RemoteIP).
				Dur("latency", v.Latency).
				Msg("Request handled")
			return nil
		},
	}))
	srv.echo.Use(middleware.Recover())
	srv.echo.Use(middleware.CORS())

	uploadMiddleware := []echo.MiddlewareFunc{}
	if srv.cfg.MaxUploadSize > 0 {
		uploadMiddleware = append(uploadMiddleware, middleware.BodyLimit(bodyLimit(srv.cfg.MaxUploadSize)))
	}

	srv.echo.GET("/", srv.health)
	srv.echo.GET("/swagger.yml", srv.serveSwaggerSpec)
	srv.echo.GET("/api/status", srv.getNodeInfo)
	srv.echo.POST(UploadPath, srv.uploadFile, uploadMiddleware...)
	srv.echo.GET("/api/files/:name", srv.getFileInfo)
	srv.echo.GET(StaticPrefix+"/:name", srv.downloadFile)
	srv.echo.HEAD(StaticPrefix+"/:name", srv.downloadFile)
}

// bodyLimit renders a byte limit, plus multipart overhead, in the KiB form BodyLimit parses.
func bodyLimit(maxUpload int64) string {
	const kib = 1024
	return fmt.Sprintf("%dK", (maxUpload+multipartOverhead+kib-1)/kib)
}

// handleHTTPError renders echo errors (404 routes, 413 bodies, panics) as JSON.
func (srv *ShareServer) handleHTTPError(err error, ctx echo.Context) {
	if ctx.Response().Committed {
		return
	}

	code := http.StatusInternalServerError
	var httpErr *echo.HTTPError
	if errors.As(err, &httpErr) {
		code = httpErr.Code
	}

	message := http.StatusText(code)
	switch code {
	case http.StatusRequestEntityTooLarge:
		message = msgFileTooLarge
	case http.StatusInternalServerError:
		log.Error().Err(err).Str("uri", ctx.Request().RequestURI).Msg("Unhandled server error")
	}

	var writeErr error
	if ctx.Request().Method == http.MethodHead {
		writeErr = ctx.NoContent(code)
	} else {
		writeErr = ctx.JSON(code, models.ErrorResponse{Error: message})
	}
	if writeErr != nil {
		log.Error().Err(writeErr).Msg("Failed to write error response")
	}
}

func (srv *ShareServer) health(ctx echo.Context) error {
	return ctx.String(http.StatusOK, WelcomeMessage)
}
