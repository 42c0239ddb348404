package main

import (
	"context"
	"errors"
	"flag"
	"io/fs"
	"log"
	"os"
	"os/signal"
	"syscall"

	"TrendBoard/internal/di"
	"TrendBoard/internal/domain/models"
	"TrendBoard/internal/usecase"
	"TrendBoard/pkg/config"
	applogger "TrendBoard/pkg/logger"

	"github.com/joho/godotenv"
)

const defaultConfigPath = "config/config.yaml"

func main() {
	// Parse flags
	configPath := flag.String("config", defaultConfigPath, "config file path")
	once := flag.Bool("once", false, "run a single screen, print the table and exit")
	minPrice := flag.String("min", "", "minimum last price (inclusive)")
	maxPrice := flag.String("max", "", "maximum last price (inclusive)")
	trend := flag.String("trend", "", "keep only LONG or SHORT rows")
	sortBy := flag.String("sort", "symbol", "row order: symbol, price or trend")
	flag.Parse()

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Printf("dotenv: %v", err)
	}

	// A missing default config file means "defaults + env"; an explicit one must exist.
	path := *configPath
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) && path == defaultConfigPath {
		path = ""
	}

	// Load config
	cfg, err := config.LoadWithEnv(path)
	if err != nil {
		log.Fatalf("config load failed: %v", err)
	}

	// Wire DI: Initialize all dependencies
	app, err := di.InitializeApp(cfg)
	if err != nil {
		log.Fatalf("app initialization failed: %v", err)
	}
	l := app.Logger()

	if *once {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		q := usecase.ParseScreenRequest(models.ScreenRequest{
			MinPrice: *minPrice,
			MaxPrice: *maxPrice,
			Trend:    *trend,
			Sort:     *sortBy,
		})
		if err := app.RunOnce(ctx, q, os.Stdout); err != nil {
			l.Error("screen failed", applogger.Error(err))
			stop()
			os.Exit(1)
		}
		return
	}

	l.Info("starting http server",
		applogger.String("env", cfg.Environment),
		applogger.Int("port", cfg.Server.Port),
	)

	// Run application (blocks until signal)
	if err := app.Run(); err != nil {
		l.Error("app error", applogger.Error(err))
		os.Exit(1)
	}
}
