// Package activity orchestrates one wallet dashboard request: fetch the four
// explorer streams, reconcile them into a ledger, probe the live balance, and
// persist the run's roll-up.
package activity

import (
	"context"
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
	"github.com/shopspring/decimal"

	"github.com/kjannette/apetrack-backend/internal/explorer"
	"github.com/kjannette/apetrack-backend/internal/models"
	"github.com/kjannette/apetrack-backend/internal/reconcile"
	"github.com/kjannette/apetrack-backend/internal/repository"
)

// Report is everything the dashboard needs for one wallet.
type Report struct {
	RunID       string                  `json:"runId"`
	Wallet      string                  `json:"wallet"`
	GeneratedAt time.Time               `json:"generatedAt"`
	Balance     *decimal.Decimal        `json:"balance,omitempty"`
	Events      []models.LedgerEvent    `json:"events"`
	Summary     models.PortfolioSummary `json:"summary"`
}

// BalanceProber abstracts the RPC balance lookup so the service can run
// without a node (the balance is then simply omitted).
type BalanceProber interface {
	NativeBalance(ctx context.Context, wallet common.Address) (decimal.Decimal, error)
}

type Service struct {
	explorer     *explorer.Client
	runs         *repository.RunSummaryRepo
	prober       BalanceProber
	overrides    map[string]reconcile.Override
	rewards      []models.RewardEvent
	nativeSymbol string
	cache        *cache.Cache
}

type Options struct {
	Overrides    map[string]reconcile.Override
	Rewards      []models.RewardEvent
	NativeSymbol string
	CacheTTL     time.Duration
	Prober       BalanceProber
	Runs         *repository.RunSummaryRepo
}

func NewService(explorerClient *explorer.Client, opts Options) *Service {
	ttl := opts.CacheTTL
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	symbol := opts.NativeSymbol
	if symbol == "" {
		symbol = "APE"
	}
	return &Service{
		explorer:     explorerClient,
		runs:         opts.Runs,
		prober:       opts.Prober,
		overrides:    opts.Overrides,
		rewards:      opts.Rewards,
		nativeSymbol: symbol,
		cache:        cache.New(ttl, 2*ttl),
	}
}

// BuildReport produces the wallet's ledger report, serving from cache when a
// recent run exists. forceRefresh bypasses the cache.
func (s *Service) BuildReport(ctx context.Context, address string, forceRefresh bool) (*Report, error) {
	if !common.IsHexAddress(address) {
		return nil, fmt.Errorf("invalid wallet address: %s", address)
	}
	wallet := common.HexToAddress(address)
	key := wallet.Hex()

	if !forceRefresh {
		if cached, ok := s.cache.Get(key); ok {
			report := cached.(*Report)
			fmt.Printf("[ACTIVITY] Serving cached report for %s (run %s)\n", key, report.RunID)
			return report, nil
		}
	}

	started := time.Now()
	fmt.Printf("[ACTIVITY] Building report for %s\n", key)

	raw, err := s.explorer.FetchActivity(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("fetch activity: %w", err)
	}

	result, err := reconcile.Reconcile(wallet, reconcile.Input{
		Normal:       raw.Normal,
		Internal:     raw.Internal,
		Token:        raw.Token,
		NFT:          raw.NFT,
		Rewards:      s.rewards,
		Overrides:    s.overrides,
		NativeSymbol: s.nativeSymbol,
	})
	if err != nil {
		return nil, fmt.Errorf("reconcile: %w", err)
	}

	report := &Report{
		RunID:       uuid.NewString(),
		Wallet:      key,
		GeneratedAt: time.Now().UTC(),
		Events:      result.Events,
		Summary:     result.Summary,
	}

	if s.prober != nil {
		if balance, err := s.prober.NativeBalance(ctx, wallet); err != nil {
			fmt.Printf("[ACTIVITY] Balance probe failed for %s: %v\n", key, err)
		} else {
			report.Balance = &balance
		}
	}

	if s.runs != nil {
		_, err := s.runs.Record(ctx, &models.RunSummary{
			ID:                report.RunID,
			Wallet:            key,
			TotalProfit:       result.Summary.TotalProfit.String(),
			TotalLoss:         result.Summary.TotalLoss.String(),
			NetProfit:         result.Summary.NetProfit.String(),
			NFTTrades:         result.Summary.NFTTrades,
			TotalTransactions: result.Summary.TotalTransactions,
			DurationMs:        time.Since(started).Milliseconds(),
		})
		if err != nil {
			fmt.Printf("[ACTIVITY] Failed to persist run summary: %v\n", err)
		}
	}

	s.cache.Set(key, report, cache.DefaultExpiration)

	fmt.Printf("[ACTIVITY] Report ready for %s: %d events, %d trades, net %s %s (%dms)\n",
		key, len(report.Events), report.Summary.NFTTrades,
		report.Summary.NetProfit.StringFixed(4), s.nativeSymbol,
		time.Since(started).Milliseconds())

	return report, nil
}
