package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Collection identifies one NFT collection tracked by the floor-price job.
type Collection struct {
	ContractAddress string
	Network         string
}

type Config struct {
	// Secrets (from .env)
	ApeScanAPIKey     string
	MarketplaceAPIKey string
	WebhookURL        string
	AppName           string
	APIKey            string
	CORSAllowOrigin   string

	// Database
	DBHost     string
	DBPort     int
	DBName     string
	DBUser     string
	DBPassword string

	// Explorer
	ApeScanBaseURL    string
	ExplorerRateLimit float64 // requests per second against ApeScan
	DefaultWallet     string

	// Chain
	RPCEndpoint  string
	NativeSymbol string

	// Marketplace / floor-price job
	MarketplaceBaseURL  string
	Collections         []Collection
	FloorRefreshMinutes int
	FloorMinOwners      int64
	FloorMaxPumpRatio   float64
	FloorMaxUSD         float64

	// Reconciliation
	OverridesFile      string
	RewardsFile        string
	LedgerCacheMinutes int
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		// Secrets
		ApeScanAPIKey:     envStr("APESCAN_API_KEY", ""),
		MarketplaceAPIKey: envStr("MARKETPLACE_API_KEY", ""),
		WebhookURL:        envStr("WEBHOOK_URL", ""),
		AppName:           envStr("APP_NAME", "ApeTrack"),
		APIKey:            envStr("API_KEY", ""),
		CORSAllowOrigin:   envStr("CORS_ALLOW_ORIGIN", "*"),

		// Database
		DBHost:     envStr("DB_HOST", "localhost"),
		DBPort:     envInt("DB_PORT", 5432),
		DBName:     envStr("DB_NAME", "apetrack"),
		DBUser:     envStr("DB_USER", ""),
		DBPassword: envStr("DB_PASSWORD", ""),

		// Explorer
		ApeScanBaseURL:    envStr("APESCAN_BASE_URL", "https://api.apescan.io/api"),
		ExplorerRateLimit: envFloat("EXPLORER_RATE_LIMIT", 4),
		DefaultWallet:     envStr("WALLET_ADDRESS", ""),

		// Chain
		RPCEndpoint:  envStr("RPC_ENDPOINT", ""),
		NativeSymbol: envStr("NATIVE_SYMBOL", "APE"),

		// Marketplace
		MarketplaceBaseURL:  envStr("MARKETPLACE_BASE_URL", "https://api-mainnet.magiceden.dev/v3/rtp"),
		Collections:         parseCollections(envStr("COLLECTIONS", "")),
		FloorRefreshMinutes: envInt("FLOOR_REFRESH_MINUTES", 30),
		FloorMinOwners:      int64(envInt("FLOOR_MIN_OWNERS", 10)),
		FloorMaxPumpRatio:   envFloat("FLOOR_MAX_PUMP_RATIO", 100),
		FloorMaxUSD:         envFloat("FLOOR_MAX_USD", 250000),

		// Reconciliation
		OverridesFile:      envStr("OVERRIDES_FILE", ""),
		RewardsFile:        envStr("REWARDS_FILE", ""),
		LedgerCacheMinutes: envInt("LEDGER_CACHE_MINUTES", 10),
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	var errs []string

	if c.ApeScanBaseURL == "" {
		errs = append(errs, "APESCAN_BASE_URL must not be empty")
	}
	if c.ApeScanAPIKey == "" {
		fmt.Println("[WARN] APESCAN_API_KEY not set - explorer fetches will be rejected upstream")
	}
	if c.DefaultWallet != "" && !strings.HasPrefix(c.DefaultWallet, "0x") {
		errs = append(errs, "WALLET_ADDRESS must be a 0x-prefixed hex address")
	}
	if len(c.Collections) == 0 {
		fmt.Println("[WARN] COLLECTIONS not set - floor-price job disabled")
	}
	if c.RPCEndpoint == "" {
		fmt.Println("[WARN] RPC_ENDPOINT not set - wallet balance probe disabled")
	}
	if c.APIKey == "" {
		fmt.Println("[WARN] API_KEY not set - REST API has no authentication")
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  %s", strings.Join(errs, "\n  "))
	}
	return nil
}

func (c *Config) Print() {
	fmt.Println("=== ApeTrack Wallet Activity Backend ===")
	fmt.Printf("Explorer: %s\n", c.ApeScanBaseURL)
	fmt.Printf("Explorer API key: %s\n", boolLabel(c.ApeScanAPIKey != "", "configured", "not set"))
	if len(c.DefaultWallet) > 16 {
		fmt.Printf("Default wallet: %s...%s\n", c.DefaultWallet[:10], c.DefaultWallet[len(c.DefaultWallet)-6:])
	}
	fmt.Printf("Native symbol: %s\n", c.NativeSymbol)
	fmt.Println("--------------------------------------")
	fmt.Println("Floor-price job:")
	fmt.Printf("  Collections tracked: %d\n", len(c.Collections))
	fmt.Printf("  Refresh: every %d minutes\n", c.FloorRefreshMinutes)
	fmt.Printf("  Min owners: %d\n", c.FloorMinOwners)
	fmt.Printf("  Max pump ratio: %.0fx\n", c.FloorMaxPumpRatio)
	fmt.Printf("  Max floor: $%.0f\n", c.FloorMaxUSD)
	fmt.Println("--------------------------------------")
	fmt.Printf("Ledger cache TTL: %d minutes\n", c.LedgerCacheMinutes)
	fmt.Printf("Manual overrides: %s\n", boolLabel(c.OverridesFile != "", c.OverridesFile, "none"))
	fmt.Printf("Reward events: %s\n", boolLabel(c.RewardsFile != "", c.RewardsFile, "none"))
	fmt.Println("======================================")
}

func (c *Config) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=disable",
		c.DBUser, c.DBPassword, c.DBHost, c.DBPort, c.DBName)
}

// parseCollections reads "contract:network,contract:network,..." where the
// network part is optional and defaults to apechain.
func parseCollections(raw string) []Collection {
	if raw == "" {
		return nil
	}
	var out []Collection
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		network := "apechain"
		contract := part
		if idx := strings.IndexByte(part, ':'); idx >= 0 {
			contract = part[:idx]
			if part[idx+1:] != "" {
				network = part[idx+1:]
			}
		}
		if contract == "" {
			continue
		}
		out = append(out, Collection{ContractAddress: contract, Network: network})
	}
	return out
}

// --- helpers ---

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func boolLabel(cond bool, ifTrue, ifFalse string) string {
	if cond {
		return ifTrue
	}
	return ifFalse
}
