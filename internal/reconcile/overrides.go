package reconcile

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/kjannette/apetrack-backend/internal/models"
	"github.com/shopspring/decimal"
)

// Override replaces the computed sides of one ledger event, keyed by
// transaction hash. Used for marketplace quirks the classifier cannot see,
// like a sale settled off-chain or a mislabeled escrow contract.
type Override struct {
	OutgoingAsset  string `json:"outgoingAsset,omitempty"`
	OutgoingAmount string `json:"outgoingAmount,omitempty"`
	IncomingAsset  string `json:"incomingAsset,omitempty"`
	IncomingAmount string `json:"incomingAmount,omitempty"`
	Comment        string `json:"comment,omitempty"`
}

// LoadOverrides reads a hash-to-override map from a JSON file. An empty path
// means no overrides; a missing file is an error so a typo'd path doesn't
// silently disable corrections.
func LoadOverrides(path string) (map[string]Override, error) {
	if path == "" {
		return nil, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read overrides file: %w", err)
	}
	var overrides map[string]Override
	if err := json.Unmarshal(data, &overrides); err != nil {
		return nil, fmt.Errorf("failed to parse overrides file: %w", err)
	}
	return overrides, nil
}

// applyOverrides rewrites matching events in place. Hash comparison is
// case-insensitive; an unparseable amount leaves that side untouched.
func applyOverrides(events []models.LedgerEvent, overrides map[string]Override) {
	if len(overrides) == 0 {
		return
	}
	for i := range events {
		ev := &events[i]
		for hash, o := range overrides {
			if !strings.EqualFold(ev.Hash, hash) {
				continue
			}
			if o.OutgoingAsset != "" {
				ev.OutgoingAsset = o.OutgoingAsset
			}
			if o.OutgoingAmount != "" {
				if v, err := decimal.NewFromString(o.OutgoingAmount); err == nil {
					ev.OutgoingAmount = dptr(v)
				}
			}
			if o.IncomingAsset != "" {
				ev.IncomingAsset = o.IncomingAsset
			}
			if o.IncomingAmount != "" {
				if v, err := decimal.NewFromString(o.IncomingAmount); err == nil {
					ev.IncomingAmount = dptr(v)
				}
			}
			if o.Comment != "" {
				ev.Comment = o.Comment
			}
			break
		}
	}
}
