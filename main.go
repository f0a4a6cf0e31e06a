// Package main is the entry point for the offline-hub daemon.
package main

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"

	"offline-hub/config"
	"offline-hub/domain"
	"offline-hub/driver"
	"offline-hub/gateway"
	"offline-hub/router"
	"offline-hub/usecase"
	"offline-hub/utils/logger"
)

func main() {
	cfg := config.NewConfig()
	log := logger.Init(cfg.LogLevel)

	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Drivers
	store, err := driver.OpenSQLiteStore(cfg.DataDir)
	if err != nil {
		log.Error("failed to open article mirror", "data_dir", cfg.DataDir, "error", err)
		os.Exit(1)
	}
	defer store.Close()

	cache, err := driver.NewRedisCacheWithURL(cfg.RedisURL)
	if err != nil {
		log.Error("failed to connect to Redis", "error", err)
		os.Exit(1)
	}
	defer cache.Close()

	if err := cache.Ping(ctx); err != nil {
		log.Error("Redis is unreachable", "error", err)
		os.Exit(1)
	}

	originClient, err := driver.NewOriginClient(cfg.OriginURL, cfg.OriginCookie)
	if err != nil {
		log.Error("invalid origin URL", "origin", cfg.OriginURL, "error", err)
		os.Exit(1)
	}

	// Gateways
	storeGateway := gateway.NewStoreGateway(store)
	cacheGateway := gateway.NewCacheGateway(cache)
	originGateway := gateway.NewOriginGateway(originClient)

	// Signal bus with a logging listener so every sync and connectivity
	// transition shows up in the daemon log.
	bus := usecase.NewSignalBus()
	bus.Subscribe(func(sig domain.Signal) {
		switch sig.Type {
		case domain.SignalSyncComplete:
			log.Info("sync complete",
				"pass_id", sig.PassID,
				"new", sig.NewCount,
				"updated", sig.UpdatedCount,
				"deleted", sig.DeletedCount,
			)
		case domain.SignalSyncFailed:
			log.Error("sync failed", "pass_id", sig.PassID, "error", sig.Error)
		default:
			log.Info("signal", "type", string(sig.Type))
		}
	})

	// Usecases
	syncUsecase := usecase.NewSyncUsecase(storeGateway, cacheGateway, originGateway, bus, log)
	if cfg.IncrementalProbe {
		syncUsecase.EnableIncrementalProbe()
	}
	renderUsecase := usecase.NewRenderUsecase(storeGateway, cacheGateway, log)
	watcher := usecase.NewConnectivityWatcher(originGateway, syncUsecase, bus, cfg.HealthCheckInterval, log)
	warmup := usecase.NewShellWarmup(cacheGateway, originGateway, cfg.ShellAssetURLs, log)

	go warmup.Warm(ctx)
	go watcher.Run(ctx)

	// Router
	originURL, err := url.Parse(cfg.OriginURL)
	if err != nil {
		log.Error("invalid origin URL", "origin", cfg.OriginURL, "error", err)
		os.Exit(1)
	}
	rt := router.NewRouter(cacheGateway, storeGateway, originGateway, renderUsecase, syncUsecase, watcher, originURL, log)

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	rt.Register(e)

	addr := fmt.Sprintf(":%d", cfg.HTTPPort)
	go func() {
		log.Info("starting offline-hub", "addr", addr, "origin", cfg.OriginURL)
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			log.Error("server failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error("shutdown failed", "error", err)
	}
}
