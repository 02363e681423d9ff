// main.go - server entry point
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"provinces/config"
	"provinces/content"
	"provinces/game"
	"provinces/logx"
	"provinces/script"
	"provinces/server"
)

func main() {
	cfg, err := config.FromEnv()
	if err != nil {
		base := logx.Base()
		base.Fatal().Err(err).Msg("configuration error")
	}
	logx.Configure(logx.Config{Level: cfg.LogLevel})
	log := logx.Base()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	library, err := content.Load(filepath.Join(cfg.DataDir, "cards.json"), log)
	if err != nil {
		log.Fatal().Err(err).Msg("loading card database failed")
	}
	if cfg.WatchContent {
		if err := library.Watch(ctx); err != nil {
			log.Warn().Err(err).Msg("card database watch unavailable")
		}
	}

	manager := game.NewManager(log)
	metrics := server.NewMetrics(manager.Count)
	manager.PerMatchOptions(func() []game.Option {
		return []game.Option{
			game.WithMetrics(metrics),
			game.WithScriptRunner(script.New(log)),
		}
	})

	hub := server.NewHub(manager, library, cfg.PingInterval, cfg.Seed, log)
	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           server.Router(hub, metrics),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, stop := context.WithTimeout(context.Background(), 10*time.Second)
		defer stop()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("shutdown error")
		}
	}()

	log.Info().Str("addr", cfg.Addr).Msg("listening")
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal().Err(err).Msg("server error")
	}
	log.Info().Msg("server stopped")
}
