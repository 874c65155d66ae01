package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"
	"time"

	"github.com/park285/cheese-board/internal/archive"
	"github.com/park285/cheese-board/internal/board"
	appcfg "github.com/park285/cheese-board/internal/config"
	"github.com/park285/cheese-board/internal/msgcat"
	"github.com/park285/cheese-board/internal/obslog"
	"github.com/park285/cheese-board/internal/store"
	"github.com/park285/cheese-board/internal/viewer"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

func main() {
	cfg, err := appcfg.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}
	if err := obslog.Init(cfg.Log); err != nil {
		log.Fatalf("logger init error: %v", err)
	}
	logger := obslog.L()
	defer func() { _ = logger.Sync() }()

	msgs, err := msgcat.New(cfg.MessagesDir)
	if err != nil {
		logger.Fatal("message catalog", zap.Error(err))
	}

	initCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	snaps, err := store.Open(initCtx, cfg.RedisURL, cfg.SessionTTL)
	if err != nil {
		cancel()
		logger.Fatal("snapshot store init error", zap.Error(err))
	}

	// Postgres archive when configured, in-memory otherwise
	repo := archive.NewMemoryRepository()
	closeRepo := func() error { return nil }
	if cfg.DatabaseURL != "" {
		pg, closeFn, err := archive.OpenPostgres(initCtx, cfg.DatabaseURL)
		if err != nil {
			cancel()
			logger.Fatal("archive init error", zap.Error(err))
		}
		repo, closeRepo = pg, closeFn
	} else {
		logger.Warn("DATABASE_URL not set; archive kept in memory")
	}
	cancel()

	srv := viewer.New(viewer.Options{
		Snapshots:  snaps,
		Archive:    repo,
		Renderer:   board.NewPNGRenderer(cfg.PNGSquareSize),
		Messages:   msgs,
		RecentMax:  cfg.RecentGamesMax,
		Registerer: prometheus.DefaultRegisterer,
		Gatherer:   prometheus.DefaultGatherer,
	})

	ctx, stopSignals := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stopSignals()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return srv.ListenAndServe(cfg.ViewerAddr) })
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("viewer_shutdown")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	if err := g.Wait(); err != nil {
		logger.Error("viewer stopped", zap.Error(err))
	}

	_ = snaps.Close()
	_ = closeRepo()
}
