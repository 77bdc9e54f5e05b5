package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"hemapp/internal/app/server/api"
	"hemapp/internal/app/server/config"
	"hemapp/internal/infrastructure/realtime"
	"hemapp/internal/infrastructure/storage/postgres"
	"hemapp/internal/utils/logger"
)

func main() {
	cfg := config.MustLoad()
	log := logger.New(cfg.Env, cfg.Logger.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	storage, err := postgres.New(ctx, cfg, log)
	if err != nil {
		log.Error("failed to init storage", "error", err)
		os.Exit(1)
	}
	defer storage.Close()

	if cfg.LLM.APIKey == "" {
		log.Warn("LLM_API_KEY is empty, ai functions will answer with 500")
	}

	broker := realtime.NewBroker(log)
	defer broker.Close()

	srv := &http.Server{
		Addr:    cfg.Server.RunAddress,
		Handler: api.New(ctx, cfg, storage, broker, log),
	}

	go func() {
		log.Info("starting server", "address", cfg.Server.RunAddress, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	// websocket-соединения не отслеживаются Shutdown, их закрывает broker
	broker.Close()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", "error", err)
	}
}
