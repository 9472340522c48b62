package models

import "time"

// FloorPrice is the persisted floor quote for one collection on one network.
// A collection that failed the suspicious-collection filter is stored with
// FloorPrice forced to zero and the rejection reason recorded.
type FloorPrice struct {
	ID              int64     `json:"id"`
	ContractAddress string    `json:"contractAddress"`
	Network         string    `json:"network"`
	Collection      string    `json:"collection"`
	FloorPrice      float64   `json:"floorPrice"`
	Currency        string    `json:"currency"`
	Suspicious      bool      `json:"suspicious"`
	Reason          *string   `json:"reason,omitempty"`
	FetchedAt       time.Time `json:"fetchedAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

// RunSummary is the persisted record of one reconciliation run.
type RunSummary struct {
	ID                string    `json:"id"`
	Wallet            string    `json:"wallet"`
	TotalProfit       string    `json:"totalProfit"`
	TotalLoss         string    `json:"totalLoss"`
	NetProfit         string    `json:"netProfit"`
	NFTTrades         int       `json:"nftTrades"`
	TotalTransactions int       `json:"totalTransactions"`
	DurationMs        int64     `json:"durationMs"`
	CreatedAt         time.Time `json:"createdAt"`
}
