package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/markserbol/ai-optimisation-tool/internal/analyzer"
	"github.com/markserbol/ai-optimisation-tool/internal/crawler"
	"github.com/markserbol/ai-optimisation-tool/internal/llm"
	"github.com/markserbol/ai-optimisation-tool/internal/platform/config"
	"github.com/markserbol/ai-optimisation-tool/internal/platform/logger"
	"github.com/markserbol/ai-optimisation-tool/internal/store"
	"github.com/markserbol/ai-optimisation-tool/internal/visibility"
	"github.com/markserbol/ai-optimisation-tool/pkg/firecrawl"
)

const shutdownTimeout = 15 * time.Second

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	log := logger.New(cfg.LogLevel, cfg.LogFile)
	log.Info("ai visibility service starting", "port", cfg.Port)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := store.NewPostgres(ctx, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer db.Close()
	if err := db.Migrate(ctx); err != nil {
		return err
	}

	var crawl crawler.Crawler
	if cfg.FirecrawlAPIKey != "" {
		opts := []firecrawl.Option{}
		if cfg.FirecrawlBaseURL != "" {
			opts = append(opts, firecrawl.WithBaseURL(cfg.FirecrawlBaseURL))
		}
		crawl = crawler.NewFirecrawl(firecrawl.NewClient(cfg.FirecrawlAPIKey, opts...), log)
		log.Info("using Firecrawl for crawling")
	} else {
		crawl = crawler.NewLocal(log)
		log.Info("using built-in crawler", "reason", "FIRECRAWL_API_KEY not set")
	}

	provider, err := llm.Resolve(llm.Config{
		OpenAIKey: cfg.OpenAIAPIKey,
		GroqKey:   cfg.GroqAPIKey,
	})
	if err != nil {
		if !errors.Is(err, llm.ErrNoProviderConfigured) {
			return err
		}
		log.Warn("no inference provider configured, analyses will complete without suggestions")
	} else {
		log.Info("inference provider resolved", "provider", provider.Name, "model", provider.Model)
	}

	engine := visibility.NewEngine(db, crawl, provider, cfg.CrawlPageLimit, log)
	worker := visibility.NewWorker(engine, cfg.WorkerConcurrency, cfg.AnalysisQueueSize, log)
	worker.Start(ctx)

	service := analyzer.NewService(db, worker, log)
	transport := analyzer.NewTransport(service, log)

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           transport.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		log.Info("http server listening", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	select {
	case err := <-serverErr:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("server shutdown failed", "error", err)
	}
	worker.Stop()
	log.Info("shutdown complete")
	return nil
}
