// Package marketplace fetches NFT collection floor prices from the Magic Eden
// API and screens them for wash-traded or manipulated values before they are
// persisted.
package marketplace

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/kjannette/apetrack-backend/internal/httputil"
)

// FloorStats is the subset of collection stats the floor job consumes.
type FloorStats struct {
	Collection   string  `json:"collection"`
	FloorPrice   float64 `json:"floorPrice"`
	Currency     string  `json:"currency"`
	OwnerCount   int     `json:"ownerCount"`
	Volume30d    float64 `json:"volume30d"`
	FloorSale30d float64 `json:"floorSale30d"`
}

type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	retry      httputil.RetryConfig
}

func NewClient(baseURL, apiKey string) *Client {
	return &Client{
		baseURL:    baseURL,
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: 15 * time.Second},
		retry: httputil.RetryConfig{
			MaxAttempts: 3,
			BaseDelay:   2 * time.Second,
			MaxDelay:    10 * time.Second,
		},
	}
}

// FetchFloorStats pulls current stats for one collection contract on one
// network (e.g. "apechain").
func (c *Client) FetchFloorStats(ctx context.Context, network, contract string) (*FloorStats, error) {
	reqURL := fmt.Sprintf("%s/%s/collections/v7?id=%s", c.baseURL, url.PathEscape(network), url.QueryEscape(contract))

	resp, err := httputil.Do(ctx, c.httpClient, c.retry, func() (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
		if err != nil {
			return nil, err
		}
		if c.apiKey != "" {
			req.Header.Set("Authorization", "Bearer "+c.apiKey)
		}
		return req, nil
	})
	if err != nil {
		return nil, fmt.Errorf("floor stats fetch: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("marketplace returned status %d", resp.StatusCode)
	}

	var data struct {
		Collections []struct {
			Name     string `json:"name"`
			FloorAsk struct {
				Price struct {
					Amount struct {
						Decimal float64 `json:"decimal"`
					} `json:"amount"`
					Currency struct {
						Symbol string `json:"symbol"`
					} `json:"currency"`
				} `json:"price"`
			} `json:"floorAsk"`
			OwnerCount  int     `json:"ownerCount"`
			Volume30d   float64 `json:"volume30d"`
			FloorSale30 float64 `json:"floorSale30d"`
		} `json:"collections"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return nil, fmt.Errorf("decode floor stats: %w", err)
	}
	if len(data.Collections) == 0 {
		return nil, fmt.Errorf("collection %s not found on %s", contract, network)
	}

	col := data.Collections[0]
	currency := col.FloorAsk.Price.Currency.Symbol
	if currency == "" {
		currency = "APE"
	}
	return &FloorStats{
		Collection:   col.Name,
		FloorPrice:   col.FloorAsk.Price.Amount.Decimal,
		Currency:     currency,
		OwnerCount:   col.OwnerCount,
		Volume30d:    col.Volume30d,
		FloorSale30d: col.FloorSale30,
	}, nil
}
