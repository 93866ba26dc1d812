package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/b4bharath-source/faculty-admin-link/internal/config"
	"github.com/b4bharath-source/faculty-admin-link/internal/handler"
	adminmodel "github.com/b4bharath-source/faculty-admin-link/internal/model/admin"
	"github.com/b4bharath-source/faculty-admin-link/internal/service/assign"
	chatservice "github.com/b4bharath-source/faculty-admin-link/internal/service/chat"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := godotenv.Load(); err != nil {
		logrus.WithError(err).Warn("no .env file loaded, using system environment only")
	}

	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("failed to load configuration")
	}
	logrus.SetLevel(cfg.Log.Level)

	registry := adminmodel.NewMemoryRegistry(adminmodel.Seed())
	policy := assign.NewRoundRobin()
	store := chatservice.NewStore(registry, policy, chatservice.Config{
		QueueDelay:    cfg.Chat.QueueDelay,
		ReplyDelayMin: cfg.Chat.ReplyDelayMin,
		ReplyDelayMax: cfg.Chat.ReplyDelayMax,
	})

	router := handler.NewRouter(registry, store)

	startServer(ctx, cfg.Server, router)
}

func startServer(ctx context.Context, serverCfg config.ServerConfig, router http.Handler) {
	srv := &http.Server{
		Addr:              serverCfg.Addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	logrus.WithField("addr", serverCfg.Addr).Info("faculty-admin-link backend listening")
	if err := runServer(ctx, srv); err != nil {
		logrus.WithError(err).Fatal("server error")
	}
}

func runServer(ctx context.Context, srv *http.Server) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		err := <-errCh
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
