package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Label is the terminal classification of a ledger event.
type Label string

const (
	LabelPayment        Label = "Payment"
	LabelDeposit        Label = "Deposit"
	LabelNFTSale        Label = "NFT Sale"
	LabelNFTPurchase    Label = "NFT Purchase"
	LabelNFTTransferIn  Label = "NFT Transfer (In)"
	LabelNFTTransferOut Label = "NFT Transfer (Out)"
	LabelNFTGift        Label = "NFT Gift (Manual Review Required)"
	LabelNFTConversion  Label = "NFT Conversion"
	LabelStakingReward  Label = "APE Staking Reward"
	LabelChurchReward   Label = "APE Church Reward"
	LabelRaffleReward   Label = "Raffle Reward"
)

// RewardLabels are the labels whose full incoming amount counts as profit
// without a cost basis.
var RewardLabels = map[Label]bool{
	LabelStakingReward: true,
	LabelChurchReward:  true,
	LabelRaffleReward:  true,
}

// LedgerEvent is one reconciled, human-readable economic event. Optional
// amounts are pointers: nil means blank, which the exporters preserve
// (a blank column is not the same as "0").
type LedgerEvent struct {
	Hash           string           `json:"hash"`
	Date           time.Time        `json:"date"`
	Label          Label            `json:"label"`
	OutgoingAsset  string           `json:"outgoingAsset,omitempty"`
	OutgoingAmount *decimal.Decimal `json:"outgoingAmount,omitempty"`
	IncomingAsset  string           `json:"incomingAsset,omitempty"`
	IncomingAmount *decimal.Decimal `json:"incomingAmount,omitempty"`
	FeeAsset       string           `json:"feeAsset,omitempty"`
	FeeAmount      *decimal.Decimal `json:"feeAmount,omitempty"`
	Comment        string           `json:"comment,omitempty"`
	TokenID        string           `json:"tokenId,omitempty"`
	Profit         *decimal.Decimal `json:"profit,omitempty"`
	Loss           *decimal.Decimal `json:"loss,omitempty"`
	IsTransfer     bool             `json:"isTransfer,omitempty"`
	IsPaidMint     bool             `json:"isPaidMint,omitempty"`
	IsGifted       bool             `json:"isGifted,omitempty"`
}

// RewardEvent is an externally supplied income event (staking payouts, church
// rewards, raffle wins) that the explorer endpoints do not report.
type RewardEvent struct {
	Hash      string          `json:"hash"`
	TimeStamp int64           `json:"timeStamp"`
	Label     Label           `json:"label"`
	Asset     string          `json:"asset"`
	Amount    decimal.Decimal `json:"amount"`
	Comment   string          `json:"comment,omitempty"`
}

// PortfolioSummary aggregates one reconciliation run.
type PortfolioSummary struct {
	TotalProfit       decimal.Decimal           `json:"totalProfit"`
	TotalLoss         decimal.Decimal           `json:"totalLoss"`
	NetProfit         decimal.Decimal           `json:"netProfit"`
	NFTTrades         int                       `json:"nftTrades"`
	TotalTransactions int                       `json:"totalTransactions"`
	RewardTotals      map[Label]decimal.Decimal `json:"rewardTotals,omitempty"`
}
