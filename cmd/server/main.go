package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/mverbaan/Virtual-Trading-Ledger-Backend/internal/api"
	"github.com/mverbaan/Virtual-Trading-Ledger-Backend/internal/config"
	"github.com/mverbaan/Virtual-Trading-Ledger-Backend/internal/database"
	"github.com/mverbaan/Virtual-Trading-Ledger-Backend/internal/pricefeed"
	"github.com/mverbaan/Virtual-Trading-Ledger-Backend/internal/repository"
	"github.com/mverbaan/Virtual-Trading-Ledger-Backend/internal/service"
	"github.com/mverbaan/Virtual-Trading-Ledger-Backend/internal/snapshot"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Open database connection and apply migrations
	db, err := database.Open(cfg.Database.Path)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}

	log.Printf("Connected to database: %s", cfg.Database.Path)

	// Persistence boundary
	codec, err := snapshot.NewCodec(cfg.Snapshot.Key)
	if err != nil {
		log.Fatalf("Failed to create snapshot codec: %v", err)
	}
	snapshotRepo := repository.NewSnapshotRepository(db, codec)

	// Restore the ledger, or start fresh with the configured balance
	startupCtx, cancelStartup := context.WithTimeout(context.Background(), 15*time.Second)
	ledgerService := service.NewLedgerService(
		service.LoadOrNewLedger(startupCtx, snapshotRepo, cfg.Ledger.InitialBalance),
		snapshotRepo,
	)

	systemService := service.NewSystemService(db)

	// Price feed: initial fetch, then refresh on the configured interval.
	// A failed fetch leaves assets unpriced; valuation surfaces that and
	// the next tick retries.
	feed := pricefeed.NewFeed(pricefeed.NewClient(cfg.PriceFeed.URL), cfg.PriceFeed.Symbols)
	if len(cfg.PriceFeed.Symbols) > 0 {
		if err := feed.Refresh(startupCtx); err != nil {
			log.Printf("Initial price fetch incomplete: %v", err)
		}
	}
	cancelStartup()

	scheduler := cron.New()
	if len(cfg.PriceFeed.Symbols) > 0 {
		_, err = scheduler.AddFunc("@every "+cfg.PriceFeed.Interval.String(), func() {
			ctx, cancel := context.WithTimeout(context.Background(), cfg.PriceFeed.Interval)
			defer cancel()
			if err := feed.Refresh(ctx); err != nil {
				log.Printf("Price refresh incomplete: %v", err)
			}
		})
		if err != nil {
			log.Fatalf("Failed to schedule price refresh: %v", err)
		}
	}
	scheduler.Start()

	// Create router
	router := api.NewRouter(systemService, ledgerService, feed, cfg)

	// Create HTTP server
	server := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		log.Printf("Starting server on %s", cfg.Server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	// Stop scheduling refreshes and wait for a running one to finish
	<-scheduler.Stop().Done()

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server exited")
}
