package app

import (
	"context"
	"errors"
	stdhttp "net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/wangchienwei/pushchat/internal/config"
	"github.com/wangchienwei/pushchat/internal/notify"
	transporthttp "github.com/wangchienwei/pushchat/internal/transport/http"
)

// App wires the relay's provider client and transport layer.
type App struct {
	server          *stdhttp.Server
	shutdownTimeout time.Duration
	limiterStop     chan struct{}
	log             *zerolog.Logger
}

// New constructs the relay application with provided configuration.
func New(cfg config.Config, logger *zerolog.Logger) (*App, error) {
	if cfg.ProviderAppID == "" || cfg.ProviderAPIKey == "" {
		return nil, errors.New("provider app id and api key are required (PUSHCHAT_PROVIDER_APP_ID, PUSHCHAT_PROVIDER_API_KEY)")
	}

	provider := notify.NewClient(cfg.ProviderEndpoint, cfg.ProviderAppID, cfg.ProviderAPIKey, cfg.SendTimeout)
	limiter := transporthttp.NewRateLimiter(cfg.SendsPerMinute)
	server := transporthttp.NewServer(provider, limiter, cfg, logger)

	logger.Info().
		Str("endpoint", cfg.ProviderEndpoint).
		Int("sends_per_minute", cfg.SendsPerMinute).
		Msg("push provider configured")

	limiterStop := make(chan struct{})
	limiter.StartReset(limiterStop)

	return &App{
		server:          server,
		shutdownTimeout: cfg.ShutdownTimeout,
		limiterStop:     limiterStop,
		log:             logger,
	}, nil
}

// Run starts the HTTP server and blocks until context cancellation or fatal error.
func (a *App) Run(ctx context.Context) error {
	serverErr := make(chan error, 1)

	go func() {
		if err := a.server.ListenAndServe(); err != nil && err != stdhttp.ErrServerClosed {
			serverErr <- err
			return
		}
		serverErr <- nil
	}()

	select {
	case err := <-serverErr:
		a.cleanup()
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), a.shutdownTimeout)
		defer cancel()

		a.log.Info().Msg("shutting down http server")
		if err := a.server.Shutdown(shutdownCtx); err != nil {
			a.cleanup()
			return err
		}

		a.cleanup()
		return <-serverErr
	}
}

func (a *App) cleanup() {
	close(a.limiterStop)
}
