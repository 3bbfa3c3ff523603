package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"giftem/internal/util"
	"giftem/pkg/notify"
	"giftem/pkg/seed"
	"giftem/services/giftem/internal/app"
	"giftem/services/giftem/internal/config"
	"giftem/services/giftem/internal/server"
	"golang.org/x/sync/errgroup"
)

func main() {
	cfg, err := config.Load(config.ConfigPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger := util.InitLogger(cfg.LogLevel)

	var seedData *seed.Data
	if cfg.SeedPath != "" {
		data, err := seed.Load(cfg.SeedPath)
		if err != nil {
			log.Fatalf("failed to load seed: %v", err)
		}
		seedData = &data
	}

	var publisher *notify.RedisPublisher
	appCfg := app.Config{
		Seed:          seedData,
		CurrentUserID: cfg.CurrentUserID,
		RandomSeed:    cfg.RandomSeed,
		Logger:        logger,
	}
	if cfg.RedisAddr != "" {
		publisher, err = notify.NewRedisPublisher(notify.RedisPublisherConfig{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			Prefix:   cfg.EventChannelPrefix,
			Logger:   logger,
		})
		if err != nil {
			log.Fatalf("failed to init event publisher: %v", err)
		}
		defer publisher.Close()
		appCfg.Publisher = publisher
	}

	appCore, err := app.New(appCfg)
	if err != nil {
		log.Fatalf("failed to init app: %v", err)
	}

	httpServer, err := server.New(server.Config{
		App:                        appCore,
		RedisAddr:                  cfg.RedisAddr,
		RedisPassword:              cfg.RedisPassword,
		TrustedProxyCIDRs:          cfg.TrustedProxyCIDRs,
		MutationRateLimitPerMinute: cfg.MutationRateLimitPerMinute,
	})
	if err != nil {
		log.Fatalf("failed to init server: %v", err)
	}
	defer httpServer.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	g, gctx := errgroup.WithContext(ctx)

	if cfg.WatchSeed {
		watcher, err := seed.NewWatcher(seed.WatcherConfig{
			Path:   cfg.SeedPath,
			Logger: logger,
			OnChange: func(data seed.Data) {
				if err := appCore.ReloadSeed(data); err != nil {
					logger.Warn("seed reload rejected", "err", err)
				}
			},
		})
		if err != nil {
			log.Fatalf("failed to watch seed: %v", err)
		}
		g.Go(func() error { return watcher.Run(gctx) })
	}

	addr := ":" + cfg.Port
	srv := &http.Server{
		Addr:         addr,
		Handler:      httpServer.Router(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
		BaseContext:  func(net.Listener) context.Context { return util.ContextWithLogger(context.Background(), logger) },
	}
	g.Go(func() error {
		slog.Info("server listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Error("server error", "err", err)
	}
	slog.Info("server stopped")
}
