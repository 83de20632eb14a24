package cmd

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"github.com/rolltable/rolltable/internal/application/config"
	"github.com/rolltable/rolltable/internal/application/constant"
	"github.com/rolltable/rolltable/internal/application/metric"
	"github.com/rolltable/rolltable/internal/clock"
	"github.com/rolltable/rolltable/internal/infra/adapters/blob"
	"github.com/rolltable/rolltable/internal/infra/adapters/docstore"
	"github.com/rolltable/rolltable/internal/infra/ports/http/handlers"
	"github.com/rolltable/rolltable/internal/infra/ports/http/server"
	"github.com/rolltable/rolltable/internal/session"
	"github.com/rolltable/rolltable/internal/usecase"
)

func runServe() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	slog.SetDefault(
		slog.New(
			slog.NewJSONHandler(
				os.Stdout,
				&slog.HandlerOptions{Level: slog.LevelInfo},
			),
		),
	)

	cfg, err := config.New()
	if err != nil {
		slog.Error("parse config", slog.Any(constant.Error, err))
		os.Exit(1)
	}

	slog.Info("Running app", slog.Bool("debug", cfg.Debug))

	blobStore, err := blob.OpenBolt(cfg.Blob.Path)
	if err != nil {
		slog.Error("open blob store", slog.Any(constant.Error, err))
		os.Exit(1)
	}
	defer blobStore.Close()

	docStore, err := docstore.NewRedisStore(ctx, cfg.DocStore.Addr, cfg.DocStore.Password, cfg.DocStore.DB)
	if err != nil {
		slog.Error("connect to document store", slog.Any(constant.Error, err))
		os.Exit(1)
	}
	defer docStore.Close()

	clk := clock.New()
	listCache := blob.NewListCache(blobStore, blob.DefaultListTTL)

	snapshotUsecase := usecase.NewSnapshotUsecase(blobStore, listCache, clk)
	registryUsecase := usecase.NewRegistryUsecase(blobStore, listCache, snapshotUsecase, clk)
	initUsecase := usecase.NewInitUsecase(docStore)

	hub := session.NewHub(registryUsecase, snapshotUsecase, session.DefaultSnapshotInterval)

	roomHandler := handlers.NewRoomHandler(registryUsecase, cfg.JWTSecret)
	timeHandler := handlers.NewTimeHandler(clk)
	wsHandler := handlers.NewWebSocketHandler(cfg, initUsecase, hub)

	echoSrv := server.New(roomHandler, timeHandler, wsHandler)

	metricsSrv := metric.NewServer()

	echoSrvCh := make(chan error, 1)
	metricsSrvCh := make(chan error, 1)

	go func() {
		echoSrvCh <- echoSrv.Start(":" + cfg.Port)
	}()

	go func() {
		metricsSrvCh <- metricsSrv.Start(":" + cfg.MetricPort)
	}()

	select {
	case <-ctx.Done():
		slog.Info("Shutting down servers due to context cancel")
	case err := <-echoSrvCh:
		slog.Error(
			"HTTP server failed",
			slog.Any(constant.Error, err),
		)
		os.Exit(1)
	case err := <-metricsSrvCh:
		slog.Error(
			"Metrics server failed",
			slog.Any(constant.Error, err),
		)
		os.Exit(1)
	}

	timeoutCtx, timeoutCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer timeoutCancel()

	// One last fold of every live room before the process goes away.
	hub.Drain(timeoutCtx)

	if err := echoSrv.Shutdown(timeoutCtx); err != nil {
		slog.Error("Failed to gracefully shutdown HTTP server", slog.Any(constant.Error, err))
	}

	if err := metricsSrv.Shutdown(timeoutCtx); err != nil {
		slog.Error("Failed to gracefully shutdown metric server", slog.Any(constant.Error, err))
	}
}
