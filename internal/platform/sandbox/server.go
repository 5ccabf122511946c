package sandbox

import (
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/clinicdesk/clinic-admin/internal/platform/middleware"
)

// ServerConfig tunes the sandbox HTTP server.
type ServerConfig struct {
	RequestTimeout time.Duration
	BodyLimit      string
}

// NewServer builds the echo instance serving the store.
func NewServer(store *Store, cfg ServerConfig, logger zerolog.Logger) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.RequestID())
	e.Use(middleware.Logger(logger))
	e.Use(middleware.BodyLimit(cfg.BodyLimit))
	e.Use(middleware.RequestTimeout(cfg.RequestTimeout))
	// Recovery sits inside the timeout so it shares the handler goroutine.
	e.Use(middleware.Recovery(logger))

	NewHandler(store).RegisterRoutes(e)
	return e
}
