package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/jonboulle/clockwork"

	"github.com/devricklin/privacy-guard/internal/api"
	"github.com/devricklin/privacy-guard/internal/biz"
	"github.com/devricklin/privacy-guard/internal/conf"
	"github.com/devricklin/privacy-guard/internal/data"
	"github.com/devricklin/privacy-guard/internal/logging"
	"github.com/devricklin/privacy-guard/internal/server"
	"github.com/devricklin/privacy-guard/internal/service"
)

func main() {
	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg, err := conf.Load()
	if err != nil {
		log.Fatalf("Invalid config: %v", err)
	}
	sites, err := conf.LoadSitesConfig(cfg.SitesPath)
	if err != nil {
		log.Fatalf("Invalid site table: %v", err)
	}

	logger := logging.New(cfg.Log.ToLogConfig())
	ctx := context.Background()

	db, err := data.OpenDB(ctx, cfg.Store.Path)
	if err != nil {
		log.Fatalf("Failed to open store: %v", err)
	}
	defer db.Close()
	logger.Info(ctx, "store ready", "path", cfg.Store.Path)

	// Redis is optional, markers fall back to SQLite
	redisClient, err := data.NewRedisClient(ctx, cfg.Redis.Addr)
	if err != nil {
		logger.Warn(ctx, "redis unavailable, storing markers in sqlite", "error", err)
		redisClient = nil
	}
	if redisClient != nil {
		defer redisClient.Close()
	}

	clock := clockwork.NewRealClock()
	repos := data.NewRepositories(db, data.Options{
		AnalyzerURL:     cfg.Analyzer.URL,
		AnalyzerTimeout: cfg.Analyzer.Timeout,
		Redis:           redisClient,
		Clock:           clock,
	})
	if repos.Classifier == nil {
		logger.Info(ctx, "no analyzer configured, using local patterns only")
	}

	// Initialize usecase layer
	ucs := biz.NewUsecases(repos.Settings, repos.Classifier, repos.History, clock, logger)
	opener := data.NewBrowserOpener(cfg.Admin.ClearURL)

	// Initialize service layer
	pages := service.NewPageFactory(
		ucs.Settings,
		ucs.Classifier,
		ucs.History,
		repos.Markers,
		opener,
		sites.Sites,
		cfg.Timings.ToTimings(),
		clock,
		logger,
	)

	bridge := server.NewBridgeServer(pages, cfg.Bridge.Addr, logger)
	admin := api.NewServer(ucs.Settings, ucs.History, ucs.Classifier, opener, pages, cfg.Admin.Addr, cfg.Admin.Origins(), logger)

	errCh := make(chan error, 2)
	go func() { errCh <- bridge.Start() }()
	go func() { errCh <- admin.Start() }()

	// Graceful shutdown
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		logger.Info(ctx, "shutting down", "signal", sig.String())
	case err := <-errCh:
		if err != nil {
			logger.Error(ctx, "server error", "error", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := bridge.Stop(shutdownCtx); err != nil {
		logger.Warn(ctx, "bridge shutdown", "error", err)
	}
	if err := admin.Stop(shutdownCtx); err != nil {
		logger.Warn(ctx, "admin shutdown", "error", err)
	}
}
