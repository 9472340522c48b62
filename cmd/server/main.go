package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/kjannette/apetrack-backend/internal/activity"
	"github.com/kjannette/apetrack-backend/internal/api"
	"github.com/kjannette/apetrack-backend/internal/chain"
	"github.com/kjannette/apetrack-backend/internal/config"
	"github.com/kjannette/apetrack-backend/internal/db"
	"github.com/kjannette/apetrack-backend/internal/explorer"
	"github.com/kjannette/apetrack-backend/internal/marketplace"
	"github.com/kjannette/apetrack-backend/internal/models"
	"github.com/kjannette/apetrack-backend/internal/notifications"
	"github.com/kjannette/apetrack-backend/internal/reconcile"
	"github.com/kjannette/apetrack-backend/internal/repository"
	"github.com/kjannette/apetrack-backend/internal/scheduler"
)

const banner = `
╔══════════════════════════════════════╗
║   ApeTrack Wallet Dashboard v0.1     ║
║                                      ║
╚══════════════════════════════════════╝
`

const apiPort = 3001

func main() {
	fmt.Print(banner)

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config load error: %v\n", err)
		os.Exit(1)
	}

	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}

	cfg.Print()

	// Database
	fmt.Printf("\n[DB] Connecting to %s:%d/%s ...\n", cfg.DBHost, cfg.DBPort, cfg.DBName)
	pool, err := db.Connect(cfg.DSN())
	if err != nil {
		fmt.Fprintf(os.Stderr, "[DB] Connection failed: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		pool.Close()
		fmt.Println("[DB] Connection pool closed")
	}()

	if err := db.TestConnection(pool); err != nil {
		fmt.Fprintf(os.Stderr, "[DB] Test query failed: %v\n", err)
		os.Exit(1)
	}

	// Repos
	floorRepo := repository.NewFloorPriceRepo(pool)
	runRepo := repository.NewRunSummaryRepo(pool)

	// Manual overrides and external reward events
	overrides, err := reconcile.LoadOverrides(cfg.OverridesFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "[CONFIG] %v\n", err)
		os.Exit(1)
	}
	if len(overrides) > 0 {
		fmt.Printf("[CONFIG] Loaded %d manual overrides\n", len(overrides))
	}
	rewards, err := loadRewards(cfg.RewardsFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "[CONFIG] %v\n", err)
		os.Exit(1)
	}
	if len(rewards) > 0 {
		fmt.Printf("[CONFIG] Loaded %d reward events\n", len(rewards))
	}

	// Graceful shutdown context
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// RPC balance probe (optional)
	var prober activity.BalanceProber
	if cfg.RPCEndpoint != "" {
		chainClient, err := chain.Dial(ctx, cfg.RPCEndpoint)
		if err != nil {
			fmt.Fprintf(os.Stderr, "[CHAIN] RPC dial failed, balance probe disabled: %v\n", err)
		} else {
			defer chainClient.Close()
			prober = chainClient
		}
	}

	// Activity service (explorer fetch + reconciliation + run history)
	explorerClient := explorer.NewClient(cfg.ApeScanBaseURL, cfg.ApeScanAPIKey, cfg.ExplorerRateLimit)
	svc := activity.NewService(explorerClient, activity.Options{
		Overrides:    overrides,
		Rewards:      rewards,
		NativeSymbol: cfg.NativeSymbol,
		CacheTTL:     time.Duration(cfg.LedgerCacheMinutes) * time.Minute,
		Prober:       prober,
		Runs:         runRepo,
	})

	// Notifications
	notify := notifications.NewSender(cfg.WebhookURL, cfg.AppName)

	srv := api.NewServer(pool, svc, apiPort, cfg.APIKey, cfg.CORSAllowOrigin, cfg.AppName)

	// 1. Floor-price scheduler
	var floorSched *scheduler.FloorScheduler
	if len(cfg.Collections) > 0 {
		market := marketplace.NewClient(cfg.MarketplaceBaseURL, cfg.MarketplaceAPIKey)
		filter := marketplace.NewFilter(marketplace.Thresholds{
			MinOwners:    int(cfg.FloorMinOwners),
			MaxPumpRatio: cfg.FloorMaxPumpRatio,
			MaxFloorUSD:  cfg.FloorMaxUSD,
		}, marketplace.NewCoinGeckoClient())

		collections := make([]scheduler.Collection, 0, len(cfg.Collections))
		for _, c := range cfg.Collections {
			collections = append(collections, scheduler.Collection{
				Contract: c.ContractAddress,
				Network:  c.Network,
			})
		}

		floorSched = scheduler.NewFloorScheduler(market, filter, floorRepo, notify, scheduler.FloorSchedulerConfig{
			Interval:    time.Duration(cfg.FloorRefreshMinutes) * time.Minute,
			Collections: collections,
		})
		floorSched.Start()
		srv.AttachFloorJob(floorSched)
	} else {
		fmt.Println("[SCHEDULER] Skipped - no collections configured")
	}

	// 2. API server
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			fmt.Fprintf(os.Stderr, "[API] Server error: %v\n", err)
			os.Exit(1)
		}
	}()

	fmt.Println("\nAll services started successfully")

	// Wait for shutdown signal
	<-ctx.Done()
	fmt.Println("\nShutting down gracefully...")

	if floorSched != nil {
		floorSched.Stop()
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		fmt.Fprintf(os.Stderr, "[API] Shutdown error: %v\n", err)
	}
	fmt.Println("[API] Server closed")
	fmt.Println("Shutdown complete")
}

// loadRewards reads externally tracked reward events (staking payouts and the
// like) from a JSON file. An empty path means none.
func loadRewards(path string) ([]models.RewardEvent, error) {
	if path == "" {
		return nil, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read rewards file: %w", err)
	}
	var rewards []models.RewardEvent
	if err := json.Unmarshal(data, &rewards); err != nil {
		return nil, fmt.Errorf("failed to parse rewards file: %w", err)
	}
	return rewards, nil
}
