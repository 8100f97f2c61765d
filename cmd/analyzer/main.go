package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/devricklin/privacy-guard/internal/api"
	"github.com/devricklin/privacy-guard/internal/biz/repo"
	"github.com/devricklin/privacy-guard/internal/biz/usecase"
	"github.com/devricklin/privacy-guard/internal/conf"
	"github.com/devricklin/privacy-guard/internal/data"
	"github.com/devricklin/privacy-guard/internal/logging"
	"github.com/devricklin/privacy-guard/moonshot"
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
	logger := logging.New(cfg.Log.ToLogConfig())
	ctx := context.Background()

	var scorer repo.LabelScorer = usecase.NewPatternScorer()
	if cfg.LLM.APIKey != "" {
		sites, err := conf.LoadSitesConfig(cfg.SitesPath)
		if err != nil {
			log.Fatalf("Invalid site table: %v", err)
		}
		client := moonshot.NewClient(cfg.LLM.APIKey, cfg.LLM.BaseURL, cfg.LLM.Model)
		scorer = data.NewMoonshotScorer(client, sites.LabelPrompt)
		logger.Info(ctx, "label scorer enabled", "model", cfg.LLM.Model)
	} else {
		logger.Info(ctx, "no MOONSHOT_API_KEY, scoring with local patterns")
	}

	srv := api.NewAnalyzerServer(usecase.NewAnalyzerUsecase(scorer), cfg.Analyzer.Addr, cfg.Admin.Origins(), logger)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		shutdownCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		srv.Stop(shutdownCtx)
	}()

	if err := srv.Start(); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}
