package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/wangchienwei/pushchat/internal/app"
	"github.com/wangchienwei/pushchat/internal/config"
	"github.com/wangchienwei/pushchat/internal/log"
)

func main() {
	var (
		configPath string
		overrides  config.Config
	)

	flag.StringVar(&configPath, "config", "", "path to config file")
	flag.StringVar(&overrides.Addr, "addr", "", "HTTP listen address")
	flag.DurationVar(&overrides.ReadHeaderTimeout, "read-header-timeout", 0, "HTTP read header timeout")
	flag.DurationVar(&overrides.ShutdownTimeout, "shutdown-timeout", 0, "graceful shutdown timeout")
	flag.StringVar(&overrides.LogLevel, "log-level", "", "log level (debug, info, warn, error)")
	flag.Parse()

	bootLogger := log.New("info", "console")

	cfg, path, err := config.Load(bootLogger, configPath)
	if err != nil {
		bootLogger.Fatal().Err(err).Str("path", path).Msg("failed to load config")
	}
	cfg.UpdateFrom(overrides)

	logger := log.New(cfg.LogLevel, cfg.LogFormat)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	application, err := app.New(cfg, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to build relay")
	}

	logger.Info().Str("addr", cfg.Addr).Msg("starting notification relay")
	if err := application.Run(ctx); err != nil {
		logger.Fatal().Err(err).Msg("relay exited with error")
	}
	logger.Info().Msg("relay stopped")
}
