// Package app provides application initialization and lifecycle management.
package app

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/lionpath-labs/coursecrawl/internal/cache"
	"github.com/lionpath-labs/coursecrawl/internal/config"
	"github.com/lionpath-labs/coursecrawl/internal/portal"
	"github.com/lionpath-labs/coursecrawl/internal/proxy"
	"github.com/lionpath-labs/coursecrawl/internal/ratelimit"
)

// Application holds all application dependencies and manages their lifecycle.
//
// It is created once at startup and shared across all CLI commands.
// Use Close() to ensure proper resource cleanup on shutdown.
type Application struct {
	Config      *config.Config
	Logger      *zerolog.Logger
	Cache       cache.Cache
	RateLimiter ratelimit.RateLimiter
	Proxies     *proxy.Pool
	Portal      *portal.Client
	Sessions    *portal.SessionStore
	startTime   time.Time
}

// New creates and initializes an Application with all dependencies: the
// logger, the page cache, the rate limiter, the proxy pool, and the portal
// client. A saved session named in the config is applied to the client.
func New(ctx context.Context, cfg *config.Config) (*Application, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}

	logger := newLogger(cfg)

	pages := cache.NewMemoryCache(cfg.CacheMaxSizeBytes)
	logger.Debug().
		Int64("max_size_bytes", cfg.CacheMaxSizeBytes).
		Dur("ttl", cfg.CacheTTL).
		Msg("Page cache initialized")

	limiter := ratelimit.NewHostLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)
	logger.Debug().
		Float64("rps", cfg.RateLimitRPS).
		Int("burst", cfg.RateLimitBurst).
		Msg("Rate limiter initialized")

	var proxies *proxy.Pool
	if len(cfg.Proxies) > 0 {
		proxies = proxy.NewPool(cfg.Proxies)
		logger.Debug().Int("proxies", proxies.Len()).Msg("Proxy pool initialized")
	}

	client, err := portal.New(cfg, limiter, pages, proxies)
	if err != nil {
		pages.Close()
		return nil, fmt.Errorf("portal client: %w", err)
	}

	sessions := portal.NewSessionStore()
	if cfg.SessionName != "" {
		if err := client.ApplySession(sessions, cfg.SessionName); err != nil {
			logger.Warn().
				Str("session", cfg.SessionName).
				Err(err).
				Msg("Could not apply saved session, continuing without it")
		} else {
			logger.Debug().Str("session", cfg.SessionName).Msg("Session applied")
		}
	}

	app := &Application{
		Config:      cfg,
		Logger:      &logger,
		Cache:       pages,
		RateLimiter: limiter,
		Proxies:     proxies,
		Portal:      client,
		Sessions:    sessions,
		startTime:   time.Now(),
	}

	logger.Debug().Msg("Application initialized")
	return app, nil
}

// Close gracefully shuts down the application. Errors during shutdown are
// logged but do not prevent the remaining steps.
func (a *Application) Close(ctx context.Context) error {
	a.Logger.Debug().
		Dur("uptime", time.Since(a.startTime)).
		Msg("Shutting down")

	if a.Cache != nil {
		a.Cache.Close()
	}
	return nil
}

func newLogger(cfg *config.Config) zerolog.Logger {
	level := zerolog.InfoLevel
	switch cfg.LogLevel {
	case "debug":
		level = zerolog.DebugLevel
	case "warn":
		level = zerolog.WarnLevel
	case "error":
		level = zerolog.ErrorLevel
	}
	zerolog.SetGlobalLevel(level)

	var logWriter io.Writer
	if cfg.JSONLog {
		logWriter = os.Stderr
	} else {
		logWriter = zerolog.NewConsoleWriter(func(cw *zerolog.ConsoleWriter) {
			cw.Out = os.Stderr
		})
	}

	logger := log.Output(logWriter).With().Timestamp().Logger()
	log.Logger = logger
	return logger
}
