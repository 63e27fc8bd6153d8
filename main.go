package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"kaboo-server/auth"
	"kaboo-server/config"
	"kaboo-server/loghandler"
	"kaboo-server/server"
	"kaboo-server/storage"
)

func main() {
	level := slog.LevelInfo
	if os.Getenv("LOG_LEVEL") == "debug" {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(loghandler.NewCompactHandler(os.Stderr, level)))

	if err := godotenv.Load(); err != nil {
		slog.Info("no .env file found; using environment variables", "tag", "main")
	}

	cfg := config.Load()
	slog.Info("configuration loaded", "tag", "main",
		"hand_size", cfg.HandSize, "target_score", cfg.TargetScore, "kaboo_penalty", cfg.KabooPenalty,
		"max_players", cfg.MaxPlayers, "http_port", cfg.HTTPPort)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		slog.Error("server stopped", "tag", "main", "err", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config) error {
	store, err := storage.NewStore(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("storage: %w", err)
	}
	defer store.Close()
	if store == nil {
		slog.Warn("DATABASE_URL is not set; games live in memory only", "tag", "main")
	}

	var verifier auth.Verifier = auth.DevVerifier{}
	if cfg.AuthBaseURL == "" {
		slog.Warn("AUTH_BASE_URL is not set; bearer tokens are taken as player ids", "tag", "main")
	} else {
		v, err := auth.NewJWKSVerifier(cfg.AuthBaseURL)
		if err != nil {
			return fmt.Errorf("auth: %w", err)
		}
		verifier = v
		slog.Info("auth configured", "tag", "main", "base_url", cfg.AuthBaseURL)
	}

	srv, err := server.New(cfg, store, verifier)
	if err != nil {
		return err
	}
	httpServer := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return srv.Run(gctx)
	})
	g.Go(func() error {
		slog.Info("Kaboo server listening", "tag", "main", "addr", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
