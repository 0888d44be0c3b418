package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/livrex-com/livrexgo/internal/api"
	"github.com/livrex-com/livrexgo/internal/config"
	"github.com/livrex-com/livrexgo/internal/database"
	"github.com/livrex-com/livrexgo/internal/handlers"
	"github.com/livrex-com/livrexgo/internal/health"
	"github.com/livrex-com/livrexgo/internal/imagecache"
	"github.com/livrex-com/livrexgo/internal/manager"
	"github.com/livrex-com/livrexgo/internal/repair"
	"github.com/livrex-com/livrexgo/internal/services/data"
	"github.com/livrex-com/livrexgo/internal/store"
	syncpkg "github.com/livrex-com/livrexgo/internal/sync"
	"github.com/livrex-com/livrexgo/internal/websocket"
)

func main() {
	// 1. Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	syncCfg := config.LoadSyncConfig()

	// 2. Health monitoring and the safe-operation runner every local
	// access goes through
	monitor := health.NewMonitor(
		syncCfg.FailureAlertThreshold,
		time.Duration(syncCfg.FailureAlertWindowSec)*time.Second,
	)
	runner := store.NewSafeRunner(monitor, syncCfg.MaxRetries, time.Duration(syncCfg.BackoffBaseMs)*time.Millisecond)

	// 3. Local mirror store (Detects Embedded vs External automatically)
	localStore := store.New(cfg.Database, runner)
	kv := store.NewKV(localStore)
	images := imagecache.New(localStore, syncCfg.ImageRetentionDays)

	repairEngine := repair.NewEngine(localStore, func() database.SchemaAdmin {
		if db := localStore.DB(); db != nil {
			return database.NewSchemaAdmin(db)
		}
		return nil
	}, kv)

	mgr := manager.New(syncCfg, localStore, kv, monitor, repairEngine, images)
	if err := mgr.Initialize(); err != nil {
		log.Fatalf("Failed to initialize local persistence: %v", err)
	}

	// 4. Event hub feeding the portal UIs
	hub := websocket.NewHub()
	go hub.Run()

	monitor.SetAlertFunc(func(message string) {
		hub.Broadcast("health_alert", message)
	})
	repairEngine.SetNotifyFunc(func(message string) {
		hub.Broadcast("repair_notice", message)
	})
	mgr.SetNotifyFunc(func(message string) {
		hub.Broadcast("storage_notice", message)
	})

	// 5. Remote API client, connectivity tracking, sync engine
	remote := api.NewClient(cfg.Remote)
	conn := syncpkg.NewConnectivity(remote, kv, time.Duration(syncCfg.HealthInterval)*time.Second)
	conn.Subscribe(func(event syncpkg.Event) {
		hub.Broadcast("connectivity", event)
	})
	conn.Start()

	mirror := syncpkg.NewStoreMirror(localStore)
	syncEngine := syncpkg.NewEngine(syncCfg, remote, mirror, conn)
	syncEngine.SetImageCacher(images)
	syncEngine.SetEventFunc(hub.Broadcast)
	mgr.SetSyncEngine(syncEngine)

	if syncCfg.Enabled {
		if err := syncEngine.Start(); err != nil {
			log.Printf("⚠️ Sync Engine: Failed to start: %v", err)
		}
	}

	// 6. Data façade and HTTP router
	dataSvc := data.New(localStore, remote, conn, mirror)

	router := handlers.NewRouter(handlers.Deps{
		Cfg:     cfg,
		Store:   localStore,
		KV:      kv,
		Data:    dataSvc,
		Engine:  syncEngine,
		Conn:    conn,
		Monitor: monitor,
		Repair:  repairEngine,
		Manager: mgr,
		Hub:     hub,
	})

	server := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	// 7. Start server with graceful shutdown
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM, syscall.SIGINT)

	go func() {
		log.Printf("🚀 Server starting on port %s [%s]\n", cfg.Port, cfg.NodeEnv)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	sig := <-shutdown
	log.Printf("\n⚠️  Received signal: %v. Shutting down gracefully...\n", sig)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Printf("HTTP server shutdown error: %v", err)
	}

	syncEngine.Stop()
	conn.Stop()

	// Close local store (this also stops embedded PostgreSQL)
	log.Println("🛑 Closing local store...")
	if err := mgr.Shutdown(); err != nil {
		log.Printf("Local store close error: %v", err)
	}

	log.Println("✅ Shutdown complete")
}
