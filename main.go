package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
)

const shutdownTimeout = 5 * time.Second

func main() {
	if err := loadEnvFile(".env"); err != nil {
		log.Fatal().Err(err).Msg("load .env")
	}
	cfg, err := LoadConfig(os.Args[1:])
	if err != nil {
		os.Exit(2)
	}
	setupLogging(cfg.LogLevel, os.Stdout)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.BotURL != "" {
		if err := RunBots(ctx, cfg); err != nil {
			log.Fatal().Err(err).Msg("bots")
		}
		return
	}

	if err := serve(ctx, cfg); err != nil {
		log.Fatal().Err(err).Msg("server")
	}
}

func serve(ctx context.Context, cfg Config) error {
	var db *DB
	if cfg.DBPath != "" {
		var err error
		db, err = OpenDB(cfg.DBPath)
		if err != nil {
			return err
		}
		defer db.Close()
	}

	analytics := NewAnalytics(db)
	defer analytics.Stop()

	hub := NewHub(NewRoomManager(&DropshipMap), NewAuth(db, []byte(cfg.JWTSecret)), analytics)
	go hub.Run()

	server := &http.Server{
		Addr:              cfg.Addr,
		Handler:           SetupRoutes(hub, cfg.PublicURL, cfg.ClientDir),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		log.Info().Str("addr", cfg.Addr).Str("public_url", cfg.PublicURL).Msg("server starting")
		if cfg.ClientDir != "" {
			log.Info().Str("dir", cfg.ClientDir).Msg("serving client files")
		}
		if err := server.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			errc <- err
		}
		close(errc)
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")
	shutCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return server.Shutdown(shutCtx)
}
