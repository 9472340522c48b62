// Package chain talks to an ApeChain RPC node for the one thing the explorer
// API cannot answer authoritatively: the wallet's live native balance.
package chain

import (
	"context"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/shopspring/decimal"
)

type Client struct {
	eth *ethclient.Client
}

func Dial(ctx context.Context, endpoint string) (*Client, error) {
	eth, err := ethclient.DialContext(ctx, endpoint)
	if err != nil {
		return nil, fmt.Errorf("dial rpc: %w", err)
	}
	return &Client{eth: eth}, nil
}

// NativeBalance returns the wallet's current APE balance in whole units.
func (c *Client) NativeBalance(ctx context.Context, wallet common.Address) (decimal.Decimal, error) {
	wei, err := c.eth.BalanceAt(ctx, wallet, nil)
	if err != nil {
		return decimal.Zero, fmt.Errorf("balance query: %w", err)
	}
	return decimal.NewFromBigInt(wei, -18), nil
}

func (c *Client) Close() {
	c.eth.Close()
}
