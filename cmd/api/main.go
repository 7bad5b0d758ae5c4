package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/MaximilianoIS/EconDecode/internal/config"
	httphandler "github.com/MaximilianoIS/EconDecode/internal/http"
	"github.com/MaximilianoIS/EconDecode/internal/services/insights"
	"github.com/MaximilianoIS/EconDecode/internal/services/news"
	"github.com/MaximilianoIS/EconDecode/internal/services/scrape"
	"github.com/MaximilianoIS/EconDecode/internal/services/stocks"
	"github.com/MaximilianoIS/EconDecode/internal/services/textgen"
)

func main() {
	var (
		port = flag.String("port", "", "Port to run the server on (overrides PORT)")
	)
	flag.Parse()

	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix

	// A local .env is optional; the environment wins either way.
	if err := godotenv.Load(); err == nil {
		log.Info().Msg("Loaded environment from .env file")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load config")
	}
	if *port == "" {
		*port = cfg.Server.Port
	}

	generator := newGenerator(cfg)

	newsService := news.NewService(cfg.News.APIKey)
	stocksService := stocks.NewService(cfg.Stocks.APIKey)
	articles := scrape.NewFetcher()

	var insightsService *insights.Service
	if generator != nil {
		insightsService = insights.NewService(generator)
	}

	router := httphandler.NewRouter()
	router.RegisterAPIRoutes(
		httphandler.NewNewsHandler(newsService),
		httphandler.NewAssistantHandler(generator, articles),
		httphandler.NewInsightsHandler(insightsService, stocksService),
	)
	router.RegisterHealthRoutes()

	server := &http.Server{
		Addr:         ":" + *port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		log.Info().Str("port", *port).Msg("Starting server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server shutdown error")
	}

	log.Info().Msg("Server stopped")
}

// newGenerator builds the configured text generation provider, or nil
// when no usable API key is present. AI-backed endpoints answer 503
// until a provider is configured.
func newGenerator(cfg *config.Config) textgen.Generator {
	switch cfg.LLM.Provider {
	case config.ProviderOpenAI:
		client, err := textgen.NewOpenAIClient(cfg.LLM.OpenAIAPIKey, cfg.LLM.OpenAIModel)
		if err != nil {
			log.Warn().Err(err).Msg("OpenAI provider not configured, AI features disabled")
			return nil
		}
		log.Info().Msg("Using OpenAI text generation provider")
		return client
	case config.ProviderGemini:
		client, err := textgen.NewGeminiClient(cfg.LLM.GeminiAPIKey, cfg.LLM.GeminiModel)
		if err != nil {
			log.Warn().Err(err).Msg("Gemini provider not configured, AI features disabled")
			return nil
		}
		log.Info().Msg("Using Gemini text generation provider")
		return client
	default:
		log.Warn().Str("provider", cfg.LLM.Provider).Msg("Unknown LLM provider, AI features disabled")
		return nil
	}
}
