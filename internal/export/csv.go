// Package export renders a reconciled ledger in the formats accounting tools
// import: an Accointing-style CSV and plain JSON.
package export

import (
	"fmt"
	"strings"

	"github.com/kjannette/apetrack-backend/internal/models"
	"github.com/shopspring/decimal"
)

// header is the Accointing template column order. Downstream importers match
// on these exact strings.
var header = []string{
	"Date (UTC)",
	"Integration Name",
	"Label",
	"Outgoing Asset",
	"Outgoing Amount",
	"Incoming Asset",
	"Incoming Amount",
	"Fee Asset (optional)",
	"Fee Amount (optional)",
	"Comment (optional)",
	"Trx. ID (optional)",
}

const dateLayout = "2006-01-02 15:04:05"

// CSV renders the ledger newest-first plus a trailing Total row. Every field
// is quoted, including empty ones, because at least one importer chokes on
// bare commas inside comments.
func CSV(events []models.LedgerEvent, summary models.PortfolioSummary, integration string) string {
	var b strings.Builder
	writeRow(&b, header)

	for _, ev := range events {
		writeRow(&b, []string{
			ev.Date.UTC().Format(dateLayout),
			integration,
			string(ev.Label),
			ev.OutgoingAsset,
			amountStr(ev.OutgoingAmount),
			ev.IncomingAsset,
			amountStr(ev.IncomingAmount),
			ev.FeeAsset,
			amountStr(ev.FeeAmount),
			ev.Comment,
			ev.Hash,
		})
	}

	writeRow(&b, []string{
		"", integration, "Total", "", "", "", "", "", "",
		fmt.Sprintf("Profit: %s, Loss: %s, Net: %s, NFT Trades: %d, Transactions: %d",
			summary.TotalProfit.StringFixed(4), summary.TotalLoss.StringFixed(4),
			summary.NetProfit.StringFixed(4), summary.NFTTrades, summary.TotalTransactions),
		"",
	})

	return b.String()
}

func writeRow(b *strings.Builder, fields []string) {
	for i, f := range fields {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteByte('"')
		b.WriteString(strings.ReplaceAll(f, `"`, `""`))
		b.WriteByte('"')
	}
	b.WriteByte('\n')
}

// amountStr renders a nullable amount: nil stays a blank column, which is not
// the same thing as "0".
func amountStr(d *decimal.Decimal) string {
	if d == nil {
		return ""
	}
	return d.String()
}
