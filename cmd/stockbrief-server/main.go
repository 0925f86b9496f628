package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/stockbrief/stockbrief/internal/clients/eodhd"
	"github.com/stockbrief/stockbrief/internal/clients/gemini"
	"github.com/stockbrief/stockbrief/internal/clients/yahoo"
	"github.com/stockbrief/stockbrief/internal/common"
	"github.com/stockbrief/stockbrief/internal/server"
	"github.com/stockbrief/stockbrief/internal/services/analysis"
)

func main() {
	configPath := os.Getenv("STOCKBRIEF_CONFIG")

	config, err := common.LoadConfig(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger := common.NewLoggerFromConfig(config.Logging)
	logger.Info().
		Str("version", common.GetFullVersion()).
		Str("environment", config.Environment).
		Msg("Starting Stockbrief")

	eodhdKey, err := common.ResolveAPIKey("eodhd_api_key", config.Clients.EODHD.APIKey)
	if err != nil {
		logger.Fatal().Err(err).Msg("EODHD API key not configured")
	}

	geminiKey, err := common.ResolveAPIKey("gemini_api_key", config.Clients.Gemini.APIKey)
	if err != nil {
		logger.Fatal().Err(err).Msg("Gemini API key not configured")
	}

	quoteClient := yahoo.NewClient(
		yahoo.WithBaseURL(config.Clients.Yahoo.BaseURL),
		yahoo.WithRateLimit(config.Clients.Yahoo.RateLimit),
		yahoo.WithTimeout(config.Clients.Yahoo.GetTimeout()),
		yahoo.WithLogger(logger),
	)

	eodhdClient := eodhd.NewClient(eodhdKey,
		eodhd.WithBaseURL(config.Clients.EODHD.BaseURL),
		eodhd.WithRateLimit(config.Clients.EODHD.RateLimit),
		eodhd.WithTimeout(config.Clients.EODHD.GetTimeout()),
		eodhd.WithLogger(logger),
	)

	ctx := context.Background()
	genaiClient, err := gemini.NewClient(ctx, geminiKey,
		gemini.WithModel(config.Clients.Gemini.Model),
		gemini.WithLogger(logger),
	)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to create Gemini client")
	}

	analysisService := analysis.NewService(quoteClient, eodhdClient, genaiClient, logger)

	srv := server.NewServer(config, analysisService, logger)

	go func() {
		if err := srv.Start(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("HTTP server failed")
		}
	}()

	logger.Info().
		Str("url", fmt.Sprintf("http://localhost:%d", config.Server.Port)).
		Msg("Server ready")

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	logger.Info().Msg("Shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("HTTP server shutdown failed")
	}

	logger.Info().Msg("Server stopped")
}
