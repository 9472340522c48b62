package marketplace

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/kjannette/apetrack-backend/internal/httputil"
)

const coingeckoURL = "https://api.coingecko.com/api/v3/simple/price?ids=apecoin&vs_currencies=usd"

// CoinGeckoClient supplies the APE/USD spot rate for the filter's USD ceiling.
type CoinGeckoClient struct {
	url        string
	httpClient *http.Client
	retry      httputil.RetryConfig
}

func NewCoinGeckoClient() *CoinGeckoClient {
	return &CoinGeckoClient{
		url:        coingeckoURL,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		retry: httputil.RetryConfig{
			MaxAttempts: 3,
			BaseDelay:   2 * time.Second,
			MaxDelay:    10 * time.Second,
		},
	}
}

func (c *CoinGeckoClient) APEUSD(ctx context.Context) (float64, error) {
	resp, err := httputil.Do(ctx, c.httpClient, c.retry, func() (*http.Request, error) {
		return http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	})
	if err != nil {
		return 0, fmt.Errorf("coingecko fetch: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("coingecko returned status %d", resp.StatusCode)
	}

	var data struct {
		Apecoin struct {
			USD float64 `json:"usd"`
		} `json:"apecoin"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return 0, fmt.Errorf("decode: %w", err)
	}

	if data.Apecoin.USD <= 0 {
		return 0, fmt.Errorf("invalid price: %f", data.Apecoin.USD)
	}

	return data.Apecoin.USD, nil
}
