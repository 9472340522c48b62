// Package reconcile turns the four raw ApeScan transaction streams for one
// wallet into a single chronological ledger of labeled economic events and
// computes cost-basis-matched profit/loss on NFT trades.
//
// The package is pure: no I/O, no clock reads, no state shared between runs.
// Identical inputs produce identical ledgers.
package reconcile

import (
	"strconv"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/kjannette/apetrack-backend/internal/models"
	"github.com/shopspring/decimal"
)

type transferKind int

const (
	kindNative transferKind = iota
	kindInternal
	kindToken
	kindNFT
)

// zeroAddress marks mints (from) and burns (to).
var zeroAddress = common.Address{}

// transfer is the canonical normalized form of one wire record. The four
// endpoints send slightly different shapes; after normalization the rest of
// the package never looks at a raw string field again.
type transfer struct {
	seq       int // position in the original list, used for positional batch matching
	kind      transferKind
	hash      string
	timestamp int64
	from      common.Address
	to        common.Address
	value     decimal.Decimal // raw integer amount, unshifted
	decimals  int32
	gasUsed   string
	gasPrice  string

	tokenName   string
	tokenSymbol string
	tokenID     string
}

func (t transfer) date() time.Time {
	return time.Unix(t.timestamp, 0).UTC()
}

// amount shifts the raw integer value into asset units.
func (t transfer) amount() decimal.Decimal {
	return t.value.Shift(-t.decimals)
}

// normalize converts raw wire records into canonical transfers. Records with
// a missing hash, a missing address, or an unparseable timestamp are dropped
// silently; an unparseable value degrades to zero rather than dropping the
// record, since the transfer itself still happened.
func normalize(records []models.Transfer, kind transferKind) []transfer {
	out := make([]transfer, 0, len(records))
	for _, r := range records {
		if r.Hash == "" || r.From == "" || r.To == "" {
			continue
		}
		ts, err := strconv.ParseInt(r.TimeStamp, 10, 64)
		if err != nil {
			continue
		}

		t := transfer{
			seq:       len(out),
			kind:      kind,
			hash:      r.Hash,
			timestamp: ts,
			from:      common.HexToAddress(r.From),
			to:        common.HexToAddress(r.To),
			decimals:  18,
			gasUsed:   r.GasUsed,
			gasPrice:  r.GasPrice,

			tokenName:   r.TokenName,
			tokenSymbol: r.TokenSymbol,
			tokenID:     r.TokenID,
		}
		if t.gasPrice == "" {
			t.gasPrice = r.GasPriceBid
		}

		if v, err := decimal.NewFromString(r.Value); err == nil {
			t.value = v
		}

		switch kind {
		case kindToken:
			if d, err := strconv.ParseInt(r.TokenDecimal, 10, 32); err == nil {
				t.decimals = int32(d)
			}
		case kindNFT:
			t.decimals = 0
		}

		out = append(out, t)
	}
	return out
}
