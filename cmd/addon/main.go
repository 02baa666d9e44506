// Package main runs the Stremio addon service.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/radamhu/stremio-musortv/internal/config"
	"github.com/radamhu/stremio-musortv/internal/logging"
	"github.com/radamhu/stremio-musortv/internal/server"
)

func main() {
	cfgPath := flag.String("config", "", "Path to config file")
	flag.Parse()

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config failed: %v\n", err)
		os.Exit(1)
	}
	logger, err := logging.New(cfg.Logging.Development)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger init failed: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		if syncErr := logger.Sync(); syncErr != nil {
			fmt.Fprintf(os.Stderr, "logger sync failed: %v\n", syncErr)
		}
	}()
	zap.ReplaceGlobals(logger)

	app, err := server.NewApp(cfg, logger)
	if err != nil {
		logger.Error("init failed", zap.Error(err))
		os.Exit(1)
	}
	if err := app.Run(context.Background()); err != nil {
		logger.Error("run failed", zap.Error(err))
		os.Exit(1)
	}
}
