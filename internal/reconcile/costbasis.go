package reconcile

import (
	"fmt"
	"strings"

	"github.com/kjannette/apetrack-backend/internal/models"
	"github.com/shopspring/decimal"
)

// purchaseRecord is what the first cost-basis pass remembers about an NFT
// acquisition: what was paid, in what, and where.
type purchaseRecord struct {
	amount   decimal.Decimal
	currency string
	hash     string
}

// giftCurrencies are the currencies in which an unmatched sale is trusted as
// pure profit (the NFT was minted free or airdropped).
var giftCurrencies = map[string]bool{
	"APE": true, "WAPE": true, "GEM": true, "ETH": true, "WETH": true,
}

// extractTokenID digs the token id out of an event, preferring the comment
// (which survives manual overrides) over the structured field.
func extractTokenID(ev models.LedgerEvent) string {
	if i := strings.Index(ev.Comment, "Token ID:"); i >= 0 {
		rest := ev.Comment[i+len("Token ID:"):]
		if fields := strings.Fields(rest); len(fields) > 0 {
			return strings.TrimRight(fields[0], ",)")
		}
	}
	return ev.TokenID
}

// basisKey builds the lookup key a sale uses to find its purchase. The token
// id is included when known so two NFTs from the same collection don't share
// a cost basis.
func basisKey(asset string, ev models.LedgerEvent) string {
	if id := extractTokenID(ev); id != "" {
		return asset + "_ID_" + id
	}
	return asset
}

// normalizeCurrency folds the wrapped native token into the native symbol so
// a purchase in WAPE matches a sale in APE.
func normalizeCurrency(c, native string) string {
	if c == "W"+native {
		return native
	}
	return c
}

// matchCostBasis runs two passes over the ledger: first it records every
// positive NFT purchase, then it matches each sale against the recorded
// purchase and writes profit or loss onto the sale event. Rewards count their
// full amount as profit. Returns the number of matched same-currency trades.
func matchCostBasis(events []models.LedgerEvent, native string) int {
	purchases := make(map[string]purchaseRecord)

	for _, ev := range events {
		if ev.Label != models.LabelNFTPurchase || ev.OutgoingAmount == nil {
			continue
		}
		if ev.OutgoingAmount.Sign() <= 0 {
			continue
		}
		purchases[basisKey(ev.IncomingAsset, ev)] = purchaseRecord{
			amount:   *ev.OutgoingAmount,
			currency: ev.OutgoingAsset,
			hash:     ev.Hash,
		}
	}

	trades := 0
	for i := range events {
		ev := &events[i]

		if models.RewardLabels[ev.Label] {
			if ev.IncomingAmount != nil {
				ev.Profit = dptr(*ev.IncomingAmount)
			}
			continue
		}
		if ev.IsTransfer {
			if !strings.Contains(ev.Comment, "Transfer only") {
				ev.Comment = appendNote(ev.Comment, "(Transfer only - no profit/loss)")
			}
			continue
		}
		if ev.Label != models.LabelNFTSale || ev.IncomingAmount == nil {
			continue
		}

		sale := *ev.IncomingAmount
		saleCur := normalizeCurrency(ev.IncomingAsset, native)

		rec, ok := purchases[basisKey(ev.OutgoingAsset, *ev)]
		if !ok {
			// No purchase on record. A positive sale in a trusted
			// currency is treated as a gifted or free-minted NFT whose
			// whole proceeds are profit.
			if giftCurrencies[saleCur] && sale.Sign() > 0 {
				ev.Profit = dptr(sale)
				ev.IsGifted = true
				ev.Comment = appendNote(ev.Comment,
					fmt.Sprintf("(No purchase record found, treated as gifted/minted - full sale of %s %s is profit)",
						sale.StringFixed(4), ev.IncomingAsset))
			} else {
				ev.Comment = appendNote(ev.Comment,
					fmt.Sprintf("(No purchase record found, unknown currency %s)", saleCur))
			}
			continue
		}

		purchaseCur := normalizeCurrency(rec.currency, native)
		if purchaseCur != saleCur {
			ev.Comment = appendNote(ev.Comment,
				fmt.Sprintf("(Purchase: %s %s, Sale: %s %s - Different currencies, no profit/loss calculated)",
					rec.amount.StringFixed(4), rec.currency, sale.StringFixed(4), ev.IncomingAsset))
			continue
		}

		trades++
		switch diff := sale.Sub(rec.amount); {
		case diff.Sign() > 0:
			ev.Profit = dptr(diff)
			ev.Comment = appendNote(ev.Comment,
				fmt.Sprintf("(Purchase: %s %s, Profit: %s %s)",
					rec.amount.StringFixed(4), rec.currency, diff.StringFixed(4), native))
		case diff.Sign() < 0:
			ev.Loss = dptr(diff.Neg())
			ev.Comment = appendNote(ev.Comment,
				fmt.Sprintf("(Purchase: %s %s, Loss: %s %s)",
					rec.amount.StringFixed(4), rec.currency, diff.Neg().StringFixed(4), native))
		default:
			// Broke even: record a zero loss so the trade still shows
			// as matched, leave profit unset.
			ev.Loss = dptr(decimal.Zero)
			ev.Comment = appendNote(ev.Comment,
				fmt.Sprintf("(Purchase: %s %s, Loss: 0.0000 %s)",
					rec.amount.StringFixed(4), rec.currency, native))
		}
	}
	return trades
}

func appendNote(comment, note string) string {
	if comment == "" {
		return note
	}
	return comment + " " + note
}
