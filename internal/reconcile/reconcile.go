package reconcile

import (
	"errors"
	"sort"

	"github.com/ethereum/go-ethereum/common"
	"github.com/kjannette/apetrack-backend/internal/models"
	"github.com/shopspring/decimal"
)

// ErrNoWallet is returned when Reconcile is called with the zero address.
var ErrNoWallet = errors.New("reconcile: wallet address is required")

// Input bundles the four explorer streams plus the optional side channels
// (manual overrides and external reward records) for one reconciliation run.
type Input struct {
	Normal   []models.Transfer
	Internal []models.Transfer
	Token    []models.Transfer
	NFT      []models.Transfer

	Rewards   []models.RewardEvent
	Overrides map[string]Override

	NativeSymbol string
}

// Result is the reconciled ledger plus its roll-up.
type Result struct {
	Events  []models.LedgerEvent
	Summary models.PortfolioSummary
}

// Reconcile turns raw transaction streams into a labeled, profit/loss-matched
// ledger sorted newest-first. The function is pure; calling it twice with the
// same input yields identical results.
func Reconcile(wallet common.Address, in Input) (*Result, error) {
	if wallet == zeroAddress {
		return nil, ErrNoWallet
	}
	native := in.NativeSymbol
	if native == "" {
		native = "APE"
	}

	normal := normalize(in.Normal, kindNative)
	internals := normalize(in.Internal, kindInternal)
	tokens := normalize(in.Token, kindToken)
	nfts := normalize(in.NFT, kindNFT)

	idx := buildIndex(normal, nfts, internals, tokens)
	pairs := detectBurnMintPairs(wallet, nfts)

	var events []models.LedgerEvent
	events = append(events, classifyNative(wallet, normal, native)...)
	events = append(events, classifyToken(wallet, tokens, idx, native)...)
	events = append(events, classifyNFT(wallet, nfts, idx, pairs, native)...)
	events = append(events, conversionEvents(pairs, native)...)
	events = append(events, rewardEvents(in.Rewards)...)

	applyOverrides(events, in.Overrides)
	trades := matchCostBasis(events, native)

	// Newest first; hash breaks date ties so output order is stable.
	sort.SliceStable(events, func(i, j int) bool {
		if !events[i].Date.Equal(events[j].Date) {
			return events[i].Date.After(events[j].Date)
		}
		return events[i].Hash < events[j].Hash
	})

	return &Result{
		Events:  events,
		Summary: summarize(events, trades),
	}, nil
}

func summarize(events []models.LedgerEvent, trades int) models.PortfolioSummary {
	s := models.PortfolioSummary{
		TotalProfit:       decimal.Zero,
		TotalLoss:         decimal.Zero,
		NFTTrades:         trades,
		TotalTransactions: len(events),
		RewardTotals:      make(map[models.Label]decimal.Decimal),
	}
	for _, ev := range events {
		if ev.Profit != nil {
			s.TotalProfit = s.TotalProfit.Add(*ev.Profit)
		}
		if ev.Loss != nil {
			s.TotalLoss = s.TotalLoss.Add(*ev.Loss)
		}
		if models.RewardLabels[ev.Label] && ev.IncomingAmount != nil {
			s.RewardTotals[ev.Label] = s.RewardTotals[ev.Label].Add(*ev.IncomingAmount)
		}
	}
	s.NetProfit = s.TotalProfit.Sub(s.TotalLoss)
	return s
}
