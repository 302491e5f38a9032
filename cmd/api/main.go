package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"pebblely/internal/http/handlers"
	httpapi "pebblely/internal/http/httpapi"
	"pebblely/internal/infra"
	"pebblely/internal/processing"
	"pebblely/internal/providers/pebblely"
	"pebblely/internal/storage"
)

func main() {
	// .env is optional
	_ = godotenv.Load()

	cfg, err := infra.LoadConfig()
	if err != nil {
		panic(err)
	}
	logger := infra.NewLogger(cfg.AppEnv)

	store, err := storage.NewFileStore(cfg.StoragePath)
	if err != nil {
		logger.Fatal().Err(err).Str("path", cfg.StoragePath).Msg("failed to open storage")
	}

	client := pebblely.NewClient(pebblely.Options{
		APIKey:         cfg.PebblelyAPIKey,
		BaseURL:        cfg.PebblelyBaseURL,
		Logger:         &logger,
		RequestTimeout: cfg.PebblelyTimeout,
	})
	processor := processing.NewProcessor(store, client, &logger)
	app := handlers.NewApp(store, processor, client, &logger, cfg.PublicBaseURL, cfg.MaxUploadBytes)

	router := httpapi.NewRouter(app, httpapi.Options{
		Logger:             &logger,
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
		RateLimitPerMin:    cfg.RateLimitPerMin,
	})
	server := infra.NewHTTPServer(cfg, router)

	go func() {
		logger.Info().
			Str("storage", store.BasePath()).
			Str("public_base_url", cfg.PublicBaseURL).
			Msgf("API listening on :%s", cfg.Port)
		if err := server.Start(); err != nil {
			logger.Fatal().Err(err).Msg("http server failed")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPIdleTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("failed to shutdown server")
	}
	logger.Info().Msg("server stopped")
}
