// Package explorer fetches a wallet's transaction history from the ApeScan
// account API: normal transactions, internal transactions, ERC-20 transfers,
// and NFT transfers.
package explorer

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/time/rate"

	"github.com/kjannette/apetrack-backend/internal/httputil"
	"github.com/kjannette/apetrack-backend/internal/models"
)

// Activity is one wallet's complete raw history, one slice per endpoint.
type Activity struct {
	Normal   []models.Transfer
	Internal []models.Transfer
	Token    []models.Transfer
	NFT      []models.Transfer
}

type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	retry      httputil.RetryConfig
}

// NewClient builds an ApeScan client. ratePerSec caps the request rate across
// all four endpoint calls so a dashboard refresh doesn't trip the API's
// per-key limit.
func NewClient(baseURL, apiKey string, ratePerSec float64) *Client {
	retry := httputil.DefaultRetry
	if ratePerSec > 0 {
		retry.Limiter = rate.NewLimiter(rate.Limit(ratePerSec), 1)
	}
	return &Client{
		baseURL:    baseURL,
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		retry:      retry,
	}
}

type apiResponse struct {
	Status  string          `json:"status"`
	Message string          `json:"message"`
	Result  json.RawMessage `json:"result"`
}

var endpoints = []struct {
	action string
	assign func(*Activity, []models.Transfer)
}{
	{"txlist", func(a *Activity, ts []models.Transfer) { a.Normal = ts }},
	{"txlistinternal", func(a *Activity, ts []models.Transfer) { a.Internal = ts }},
	{"tokentx", func(a *Activity, ts []models.Transfer) { a.Token = ts }},
	{"tokennfttx", func(a *Activity, ts []models.Transfer) { a.NFT = ts }},
}

// FetchActivity pulls all four transaction lists for one address. A list that
// still fails after retries degrades to empty rather than failing the whole
// run; the ledger is then partial, which beats no ledger at all.
func (c *Client) FetchActivity(ctx context.Context, address string) (*Activity, error) {
	activity := &Activity{}
	for _, ep := range endpoints {
		transfers, err := c.fetchList(ctx, ep.action, address)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			fmt.Printf("[EXPLORER] %s fetch failed for %s, continuing with empty list: %v\n", ep.action, address, err)
			continue
		}
		ep.assign(activity, transfers)
	}
	return activity, nil
}

func (c *Client) fetchList(ctx context.Context, action, address string) ([]models.Transfer, error) {
	q := url.Values{}
	q.Set("module", "account")
	q.Set("action", action)
	q.Set("address", address)
	q.Set("startblock", "0")
	q.Set("endblock", "99999999")
	q.Set("sort", "asc")
	if c.apiKey != "" {
		q.Set("apikey", c.apiKey)
	}
	reqURL := c.baseURL + "?" + q.Encode()

	resp, err := httputil.Do(ctx, c.httpClient, c.retry, func() (*http.Request, error) {
		return http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	})
	if err != nil {
		return nil, fmt.Errorf("%s fetch: %w", action, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%s returned status %d", action, resp.StatusCode)
	}

	var body apiResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("decode %s response: %w", action, err)
	}

	// Status "0" with this message is how the API says "empty", not an error.
	if body.Status != "1" {
		if body.Message == "No transactions found" {
			return nil, nil
		}
		return nil, fmt.Errorf("%s API error: %s", action, body.Message)
	}

	var transfers []models.Transfer
	if err := json.Unmarshal(body.Result, &transfers); err != nil {
		return nil, fmt.Errorf("decode %s result: %w", action, err)
	}
	return transfers, nil
}
