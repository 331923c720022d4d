package main

import (
	"log"
	"log/slog"
	"net/http"
	"time"

	"airtech/internal/app"
	"airtech/internal/config"
	"airtech/internal/server"
	"airtech/internal/util"
	"airtech/pkg/storage"
)

func main() {
	cfg, err := config.Load(config.ConfigPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	sessionTTL, err := config.ParseSessionTTL(cfg.SessionTTL)
	if err != nil {
		log.Fatalf("failed to parse session TTL: %v", err)
	}

	logger := util.InitLogger(cfg.LogLevel)

	var archive storage.ReportArchive
	if cfg.MinioEndpoint != "" {
		archive, err = storage.NewMinioArchive(cfg.MinioEndpoint, cfg.MinioAccessKey, cfg.MinioSecretKey, cfg.MinioBucket, cfg.MinioUseSSL)
		if err != nil {
			log.Fatalf("failed to init report archive: %v", err)
		}
	}

	appCore, err := app.New(app.Config{
		DatabaseURL:           cfg.DatabaseURL,
		RedisAddr:             cfg.RedisAddr,
		RedisPassword:         cfg.RedisPassword,
		SessionTTL:            sessionTTL,
		SessionStrategy:       cfg.SessionStrategy,
		JWTSecret:             cfg.JWTSecret,
		GeminiAPIKey:          cfg.GeminiAPIKey,
		GenerationModel:       cfg.GenerationModel,
		CollectPartialResults: cfg.CollectPartialResults,
		MaxConcurrentSearches: cfg.MaxConcurrentSearches,
		Archive:               archive,
	})
	if err != nil {
		log.Fatalf("failed to init app: %v", err)
	}

	httpServer := server.New(server.Config{
		App: appCore,
	})

	addr := ":" + cfg.Port
	srv := &http.Server{
		Addr:        addr,
		Handler:     httpServer.Router(),
		ReadTimeout: 15 * time.Second,
		// Lead searches wait on the AI backend; give writes room.
		WriteTimeout: 180 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	slog.Info("airtech server listening", "addr", addr)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("server error", "err", err)
	}
}
