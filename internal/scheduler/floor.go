// Package scheduler runs the recurring floor-price refresh job.
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/kjannette/apetrack-backend/internal/marketplace"
	"github.com/kjannette/apetrack-backend/internal/models"
	"github.com/kjannette/apetrack-backend/internal/notifications"
)

// Collection identifies one tracked NFT collection.
type Collection struct {
	Contract string
	Network  string
}

// StatsFetcher abstracts the marketplace client.
type StatsFetcher interface {
	FetchFloorStats(ctx context.Context, network, contract string) (*marketplace.FloorStats, error)
}

// Evaluator abstracts the suspicious-floor filter.
type Evaluator interface {
	Evaluate(ctx context.Context, stats marketplace.FloorStats) (string, error)
}

// FloorUpserter abstracts the floor-price repository.
type FloorUpserter interface {
	Upsert(ctx context.Context, fp *models.FloorPrice) (*models.FloorPrice, error)
}

type FloorSchedulerConfig struct {
	Interval    time.Duration // e.g. 30*time.Minute
	Collections []Collection
}

type FloorScheduler struct {
	market StatsFetcher
	filter Evaluator
	repo   FloorUpserter
	notify *notifications.Sender
	cfg    FloorSchedulerConfig

	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
}

func NewFloorScheduler(market StatsFetcher, filter Evaluator, repo FloorUpserter,
	notify *notifications.Sender, cfg FloorSchedulerConfig) *FloorScheduler {
	if cfg.Interval <= 0 {
		cfg.Interval = 30 * time.Minute
	}
	return &FloorScheduler{
		market: market,
		filter: filter,
		repo:   repo,
		notify: notify,
		cfg:    cfg,
	}
}

func (s *FloorScheduler) Start() {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		fmt.Println("[FLOOR-SCHEDULER] Already running")
		return
	}
	s.running = true
	s.stopCh = make(chan struct{})
	s.mu.Unlock()

	// Initial refresh on startup (fire-and-forget)
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 90*time.Second)
		defer cancel()
		s.refreshAll(ctx)
	}()

	// Recurring ticker
	go func() {
		ticker := time.NewTicker(s.cfg.Interval)
		defer ticker.Stop()
		for {
			select {
			case <-s.stopCh:
				return
			case <-ticker.C:
				ctx, cancel := context.WithTimeout(context.Background(), 90*time.Second)
				s.refreshAll(ctx)
				cancel()
			}
		}
	}()

	fmt.Printf("[FLOOR-SCHEDULER] Started (every %s, %d collections)\n",
		s.cfg.Interval, len(s.cfg.Collections))
}

func (s *FloorScheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.running {
		return
	}
	close(s.stopCh)
	s.running = false
	fmt.Println("[FLOOR-SCHEDULER] Stopped")
}

func (s *FloorScheduler) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// FetchNow manually triggers a refresh outside the normal schedule.
func (s *FloorScheduler) FetchNow(ctx context.Context) {
	fmt.Println("[FLOOR-SCHEDULER] Manual floor refresh triggered")
	s.refreshAll(ctx)
}

// refreshAll fetches and screens every tracked collection. One collection
// failing never blocks the rest.
func (s *FloorScheduler) refreshAll(ctx context.Context) {
	updated, flagged := 0, 0

	for _, col := range s.cfg.Collections {
		stats, err := s.market.FetchFloorStats(ctx, col.Network, col.Contract)
		if err != nil {
			fmt.Printf("[FLOOR-SCHEDULER] Fetch failed for %s on %s: %v\n", col.Contract, col.Network, err)
			continue
		}

		fp := &models.FloorPrice{
			ContractAddress: col.Contract,
			Network:         col.Network,
			Collection:      stats.Collection,
			FloorPrice:      stats.FloorPrice,
			Currency:        stats.Currency,
			FetchedAt:       time.Now(),
		}

		reason, err := s.filter.Evaluate(ctx, *stats)
		if err != nil {
			fmt.Printf("[FLOOR-SCHEDULER] Screen failed for %s: %v\n", stats.Collection, err)
			continue
		}
		if reason != "" {
			// Store the suspicious entry with a zeroed price so stale
			// good data doesn't masquerade as current.
			fp.FloorPrice = 0
			fp.Suspicious = true
			fp.Reason = &reason
			flagged++
			if s.notify != nil {
				s.notify.Send(fmt.Sprintf("Suspicious floor for %s: %s", stats.Collection, reason))
			}
		}

		if _, err := s.repo.Upsert(ctx, fp); err != nil {
			fmt.Printf("[FLOOR-SCHEDULER] Store failed for %s: %v\n", stats.Collection, err)
			continue
		}
		updated++

		if !fp.Suspicious {
			fmt.Printf("[FLOOR-SCHEDULER] %s floor: %.2f %s (owners: %d)\n",
				stats.Collection, stats.FloorPrice, stats.Currency, stats.OwnerCount)
		}
	}

	fmt.Printf("[FLOOR-SCHEDULER] Refresh complete: %d stored, %d flagged suspicious\n", updated, flagged)
}
