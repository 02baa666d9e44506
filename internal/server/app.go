// Package server assembles the addon's services and runs the HTTP server.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/radamhu/stremio-musortv/internal/api"
	"github.com/radamhu/stremio-musortv/internal/catalog"
	"github.com/radamhu/stremio-musortv/internal/clock/system"
	"github.com/radamhu/stremio-musortv/internal/config"
	"github.com/radamhu/stremio-musortv/internal/enrich"
	"github.com/radamhu/stremio-musortv/internal/metrics"
	"github.com/radamhu/stremio-musortv/internal/render"
	"github.com/radamhu/stremio-musortv/internal/scrape"
	"github.com/radamhu/stremio-musortv/internal/streams"
)

const shutdownTimeout = 10 * time.Second

// App holds the long-lived services of the addon.
type App struct {
	cfg          config.Config
	logger       *zap.Logger
	orchestrator *scrape.Orchestrator
	apiServer    *api.Server
}

// NewApp initializes all services. It fails fast when the headless browser
// cannot be launched, since the addon cannot serve anything without it.
func NewApp(cfg config.Config, logger *zap.Logger) (*App, error) {
	metrics.Init()

	renderer, err := render.NewChromedp(render.Config{
		UserAgent: cfg.Scrape.UserAgent,
	}, logger.Named("render"))
	if err != nil {
		return nil, fmt.Errorf("launch browser: %w", err)
	}

	orchestrator := scrape.New(scrape.Config{
		Pages:      cfg.Scrape.Pages,
		RateLimit:  cfg.Scrape.RateLimit(),
		NavTimeout: cfg.Scrape.NavTimeout(),
	}, renderer, system.New(), logger.Named("scrape"))

	var enricher catalog.Enricher
	if cfg.TMDB.Enabled {
		client := enrich.New(enrich.Config{
			APIKey:          cfg.TMDB.APIKey,
			RateLimitPerSec: cfg.TMDB.RateLimitPerSec,
			CacheTTL:        time.Duration(cfg.TMDB.CacheTTLDays) * 24 * time.Hour,
		}, logger.Named("enrich"))
		if client == nil {
			logger.Info("tmdb enrichment disabled, no api key configured")
		} else {
			enricher = client
		}
	}

	catalogSvc := catalog.NewService(
		orchestrator,
		enricher,
		system.New(),
		cfg.Catalog.TTL(),
		logger.Named("catalog"),
	)

	resolver := streams.New(cfg.Streams)
	logger.Info("stream map loaded", zap.Int("channels", resolver.Channels()))

	return &App{
		cfg:          cfg,
		logger:       logger,
		orchestrator: orchestrator,
		apiServer:    api.NewServer(catalogSvc, resolver, orchestrator, logger.Named("api")),
	}, nil
}

// Run starts the HTTP server and blocks until the context is canceled or a
// termination signal arrives.
func (a *App) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", a.cfg.Server.Port),
		Handler:           a.apiServer.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		a.logger.Info("http server started", zap.Int("port", a.cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.logger.Error("http server error", zap.Error(err))
			stop()
		}
	}()

	<-ctx.Done()
	a.logger.Info("shutdown initiated")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		a.logger.Error("server shutdown error", zap.Error(err))
	}
	if err := a.orchestrator.Close(shutdownCtx); err != nil {
		a.logger.Warn("orchestrator close error", zap.Error(err))
	}

	a.logger.Info("shutdown complete")
	return nil
}
