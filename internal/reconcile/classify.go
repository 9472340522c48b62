package reconcile

import (
	"fmt"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/kjannette/apetrack-backend/internal/models"
	"github.com/shopspring/decimal"
)

var one = decimal.NewFromInt(1)

func dptr(d decimal.Decimal) *decimal.Decimal { return &d }

// classifyNative labels plain value transfers: money the wallet sent is a
// Payment, money it received is a Deposit. The gas fee is attached when both
// gas fields parse; a bad fee field blanks the fee, it never drops the event.
func classifyNative(wallet common.Address, normal []transfer, native string) []models.LedgerEvent {
	events := make([]models.LedgerEvent, 0, len(normal))
	for _, tx := range normal {
		ev := models.LedgerEvent{
			Hash:     tx.hash,
			Date:     tx.date(),
			FeeAsset: native,
		}

		amount := tx.amount()
		if tx.from == wallet {
			ev.Label = models.LabelPayment
			ev.OutgoingAsset = native
			ev.OutgoingAmount = dptr(amount)
		} else {
			ev.Label = models.LabelDeposit
			ev.IncomingAsset = native
			ev.IncomingAmount = dptr(amount)
		}

		gasPrice := tx.gasPrice
		if gasPrice == "" {
			gasPrice = "0"
		}
		gu, errUsed := decimal.NewFromString(tx.gasUsed)
		gp, errPrice := decimal.NewFromString(gasPrice)
		if errUsed == nil && errPrice == nil {
			ev.FeeAmount = dptr(gu.Mul(gp).Shift(-18))
		}

		events = append(events, ev)
	}
	return events
}

// classifyToken labels standalone ERC-20 transfers. Transfers whose hash also
// carries NFT transfers are absorbed into NFT classification instead, and only
// the first token transfer per remaining hash produces an event.
func classifyToken(wallet common.Address, tokens []transfer, idx *txIndex, native string) []models.LedgerEvent {
	var events []models.LedgerEvent
	processed := make(map[string]bool)

	for _, tx := range tokens {
		if _, nftTx := idx.nftByHash[tx.hash]; nftTx {
			continue
		}
		if processed[tx.hash] {
			continue
		}
		processed[tx.hash] = true

		ev := models.LedgerEvent{
			Hash:     tx.hash,
			Date:     tx.date(),
			FeeAsset: native,
		}
		amount := tx.amount()
		if tx.from == wallet {
			ev.Label = models.LabelPayment
			ev.OutgoingAsset = tx.tokenSymbol
			ev.OutgoingAmount = dptr(amount)
		} else {
			ev.Label = models.LabelDeposit
			ev.IncomingAsset = tx.tokenSymbol
			ev.IncomingAmount = dptr(amount)
		}
		events = append(events, ev)
	}
	return events
}

// classifyNFT labels every NFT transfer that was not absorbed into a burn/mint
// pair. Outgoing transfers become sales (or plain transfers when no payment is
// found); incoming transfers become purchases, paid mints, gifts, or plain
// transfers depending on origin and payment.
func classifyNFT(wallet common.Address, nfts []transfer, idx *txIndex, pairs *burnMintSet, native string) []models.LedgerEvent {
	var events []models.LedgerEvent

	for _, nft := range nfts {
		isMint := nft.from == zeroAddress

		switch {
		case nft.from == wallet && pairs.burnedIdentities[identityOf(nft)]:
			continue
		case isMint && nft.to == wallet && pairs.mintedIdentities[identityOf(nft)]:
			continue
		}

		if nft.from == wallet {
			events = append(events, classifySale(wallet, nft, idx, native))
			continue
		}
		if nft.to != wallet {
			continue
		}
		if isMint && pairs.hasPairID(nft.hash) {
			continue
		}
		events = append(events, classifyAcquisition(wallet, nft, idx, native, isMint))
	}
	return events
}

// classifySale attributes the payment received for an outgoing NFT, first from
// ERC-20 transfers into the wallet in the same hash, then from internal
// transactions. When internal payments and batch size disagree, the total is
// split evenly across the batch.
func classifySale(wallet common.Address, nft transfer, idx *txIndex, native string) models.LedgerEvent {
	ev := models.LedgerEvent{
		Hash:           nft.hash,
		Date:           nft.date(),
		Label:          models.LabelNFTSale,
		OutgoingAsset:  nft.tokenName,
		OutgoingAmount: dptr(one),
		IncomingAsset:  native,
		IncomingAmount: dptr(decimal.Zero),
		FeeAsset:       native,
		TokenID:        nft.tokenID,
	}

	comment := "Token ID: " + nft.tokenID
	var payCurrency string
	var payAmount *decimal.Decimal

	if incoming := filterTo(idx.tokenByHash[nft.hash], wallet); len(incoming) > 0 {
		first := incoming[0]
		payCurrency = first.tokenSymbol
		payAmount = dptr(first.amount())
	}

	if payAmount == nil && len(idx.internalByHash[nft.hash]) > 0 {
		internals := filterTo(idx.internalByHash[nft.hash], wallet)
		batch := filterFrom(idx.nftByHash[nft.hash], wallet)
		if len(internals) == len(batch) {
			if pos := positionOf(batch, nft); pos >= 0 && pos < len(internals) {
				payAmount = dptr(internals[pos].amount())
				comment = fmt.Sprintf("Token ID: %s (Specific sale amount)", nft.tokenID)
			}
		} else {
			total := sumAmounts(internals)
			if len(batch) > 0 {
				payAmount = dptr(total.Div(decimal.NewFromInt(int64(len(batch)))))
				comment = fmt.Sprintf("Token ID: %s (Estimated sale from batch)", nft.tokenID)
			} else {
				payAmount = dptr(total)
				comment = fmt.Sprintf("Token ID: %s (Batch sale)", nft.tokenID)
			}
		}
	}

	if payCurrency != "" {
		ev.IncomingAsset = payCurrency
	}
	if payAmount != nil {
		ev.IncomingAmount = payAmount
	}
	ev.Comment = comment

	// No payment, or a zero payment, means this was a plain transfer out.
	if payAmount == nil || payAmount.IsZero() {
		ev.Label = models.LabelNFTTransferOut
		ev.IncomingAsset = ""
		ev.IncomingAmount = nil
		ev.IsTransfer = true
	}
	return ev
}

// classifyAcquisition attributes the payment the wallet made for an incoming
// NFT. Three methods, in order: outgoing ERC-20 transfers in the same hash, a
// native payment transaction, then internal transactions. Positional matching
// applies when payment count equals batch size; otherwise the total is split
// evenly. A paid mint is a purchase; an unpaid mint is flagged as a gift for
// manual review rather than silently assigned a zero cost basis.
func classifyAcquisition(wallet common.Address, nft transfer, idx *txIndex, native string, isMint bool) models.LedgerEvent {
	ev := models.LedgerEvent{
		Hash:           nft.hash,
		Date:           nft.date(),
		Label:          models.LabelNFTPurchase,
		IncomingAsset:  nft.tokenName,
		IncomingAmount: dptr(one),
		OutgoingAsset:  native,
		FeeAsset:       native,
		TokenID:        nft.tokenID,
	}

	var price *decimal.Decimal
	currency := ""
	batch := filterTo(idx.nftByHash[nft.hash], wallet)

	// Method 1: ERC-20 transfers out of the wallet in the same hash. A
	// WAPE payment is often split into seller cut, royalties, and fees, so
	// a count mismatch sums everything and divides by the batch size.
	if ours := filterFrom(idx.tokenByHash[nft.hash], wallet); len(ours) > 0 {
		currency = ours[0].tokenSymbol
		if len(ours) == len(batch) {
			if pos := positionOf(batch, nft); pos >= 0 && pos < len(ours) {
				price = dptr(ours[pos].amount())
			}
		} else {
			total := sumAmounts(ours)
			if len(batch) > 0 {
				price = dptr(total.Div(decimal.NewFromInt(int64(len(batch)))))
			} else {
				price = dptr(total)
			}
		}
	}

	// Method 2: a native-currency payment transaction from the wallet.
	if price == nil && currency == "" {
		if payTx, ok := idx.txByHash[nft.hash]; ok && payTx.from == wallet && len(batch) > 0 {
			price = dptr(payTx.amount().Div(decimal.NewFromInt(int64(len(batch)))))
			currency = native
		}
	}

	// Method 3: internal transactions from the wallet.
	if price == nil && currency == "" {
		if ours := filterFrom(idx.internalByHash[nft.hash], wallet); len(ours) > 0 {
			currency = native
			if len(ours) == len(batch) {
				if pos := positionOf(batch, nft); pos >= 0 && pos < len(ours) {
					price = dptr(ours[pos].amount())
				}
			} else if len(batch) > 0 {
				price = dptr(sumAmounts(ours).Div(decimal.NewFromInt(int64(len(batch)))))
			}
		}
	}

	if currency != "" {
		ev.OutgoingAsset = currency
	}
	if price != nil {
		ev.OutgoingAmount = price
	}

	comment := "Token ID: " + nft.tokenID
	if n := len(idx.nftByHash[nft.hash]); n > 1 {
		comment += fmt.Sprintf(" (Part of batch purchase of %d NFTs)", n)
	}
	ev.Comment = comment

	paid := price != nil && price.Sign() > 0
	switch {
	case isMint && paid:
		ev.IsPaidMint = true
	case isMint:
		ev.Label = models.LabelNFTGift
		ev.OutgoingAsset = ""
		ev.OutgoingAmount = nil
	case !paid:
		ev.Label = models.LabelNFTTransferIn
		ev.OutgoingAsset = ""
		ev.OutgoingAmount = nil
		ev.IsTransfer = true
	}
	return ev
}

// conversionEvents emits one NFT Conversion per burn/mint pair: the burned
// side goes out, the minted side comes in, no money moves.
func conversionEvents(pairs *burnMintSet, native string) []models.LedgerEvent {
	events := make([]models.LedgerEvent, 0, len(pairs.pairs))
	for _, p := range pairs.pairs {
		all := append(append([]transfer{}, p.burned...), p.minted...)
		if len(all) == 0 {
			continue
		}

		ev := models.LedgerEvent{
			Hash:           p.id,
			Date:           all[0].date(),
			Label:          models.LabelNFTConversion,
			OutgoingAsset:  describeNFTs(p.burned),
			OutgoingAmount: dptr(decimal.NewFromInt(int64(len(p.burned)))),
			IncomingAsset:  describeNFTs(p.minted),
			IncomingAmount: dptr(decimal.NewFromInt(int64(len(p.minted)))),
			FeeAsset:       native,
		}
		if p.synthetic {
			ev.Comment = fmt.Sprintf("Burned %d NFTs in tx %s... and received %d NFTs in tx %s...",
				len(p.burned), shortHash(p.burnTx), len(p.minted), shortHash(p.mintTx))
		} else {
			ev.Comment = fmt.Sprintf("Burned %d NFTs to mint %d new NFTs", len(p.burned), len(p.minted))
		}
		events = append(events, ev)
	}
	return events
}

// rewardEvents converts externally supplied reward records (staking payouts
// and the like) into ledger events. Unknown labels are dropped.
func rewardEvents(rewards []models.RewardEvent) []models.LedgerEvent {
	var events []models.LedgerEvent
	for _, r := range rewards {
		if !models.RewardLabels[r.Label] {
			continue
		}
		events = append(events, models.LedgerEvent{
			Hash:           r.Hash,
			Date:           timeFromUnix(r.TimeStamp),
			Label:          r.Label,
			IncomingAsset:  r.Asset,
			IncomingAmount: dptr(r.Amount),
			Comment:        r.Comment,
		})
	}
	return events
}

// --- helpers ---

func filterFrom(ts []transfer, addr common.Address) []transfer {
	var out []transfer
	for _, t := range ts {
		if t.from == addr {
			out = append(out, t)
		}
	}
	return out
}

func filterTo(ts []transfer, addr common.Address) []transfer {
	var out []transfer
	for _, t := range ts {
		if t.to == addr {
			out = append(out, t)
		}
	}
	return out
}

func positionOf(batch []transfer, t transfer) int {
	for i, b := range batch {
		if b.seq == t.seq {
			return i
		}
	}
	return -1
}

func sumAmounts(ts []transfer) decimal.Decimal {
	total := decimal.Zero
	for _, t := range ts {
		total = total.Add(t.amount())
	}
	return total
}

func describeNFTs(ts []transfer) string {
	parts := make([]string, 0, len(ts))
	for _, t := range ts {
		parts = append(parts, fmt.Sprintf("%s ID:%s", t.tokenName, t.tokenID))
	}
	return strings.Join(parts, ", ")
}

func shortHash(h string) string {
	if len(h) > 8 {
		return h[:8]
	}
	return h
}

func timeFromUnix(ts int64) time.Time {
	return time.Unix(ts, 0).UTC()
}
