package reconcile

import (
	"sort"

	"github.com/ethereum/go-ethereum/common"
)

// burnWindowMinutes is how far ahead of a burn bucket the detector looks for
// the matching mint: the burn's own minute plus the next two.
const burnWindowMinutes = 2

type nftIdentity struct {
	name string
	id   string
}

func identityOf(t transfer) nftIdentity {
	return nftIdentity{name: t.tokenName, id: t.tokenID}
}

// burnMintPair groups NFTs the wallet burned and NFTs minted to the wallet
// within the detection window. A synthetic pair spans two transactions; its
// id concatenates both hashes.
type burnMintPair struct {
	id        string
	burned    []transfer
	minted    []transfer
	burnTx    string
	mintTx    string
	synthetic bool
}

// burnMintSet is the detector output consulted by the classifier.
type burnMintSet struct {
	pairs            []burnMintPair
	byID             map[string]int
	burnedIdentities map[nftIdentity]bool
	mintedIdentities map[nftIdentity]bool
}

func (s *burnMintSet) upsert(p burnMintPair) {
	if i, ok := s.byID[p.id]; ok {
		s.pairs[i] = p
		return
	}
	s.byID[p.id] = len(s.pairs)
	s.pairs = append(s.pairs, p)
}

func (s *burnMintSet) hasPairID(id string) bool {
	_, ok := s.byID[id]
	return ok
}

// detectBurnMintPairs scans the wallet's NFT transfers for burn-then-mint
// conversions: the wallet sends NFTs away and receives freshly minted NFTs
// within a couple of minutes. Such pairs are upgrades, not trades, and must
// not reach sale/purchase classification.
func detectBurnMintPairs(wallet common.Address, nfts []transfer) *burnMintSet {
	set := &burnMintSet{
		byID:             make(map[string]int),
		burnedIdentities: make(map[nftIdentity]bool),
		mintedIdentities: make(map[nftIdentity]bool),
	}

	outgoingByTime := make(map[int64][]transfer)
	incomingByTime := make(map[int64][]transfer)
	for _, t := range nfts {
		bucket := t.timestamp / 60
		switch {
		case t.from == wallet:
			outgoingByTime[bucket] = append(outgoingByTime[bucket], t)
		case t.to == wallet && t.from == zeroAddress:
			incomingByTime[bucket] = append(incomingByTime[bucket], t)
		}
	}

	// Buckets in ascending time order so the output is deterministic.
	buckets := make([]int64, 0, len(outgoingByTime))
	for b := range outgoingByTime {
		buckets = append(buckets, b)
	}
	sort.Slice(buckets, func(i, j int) bool { return buckets[i] < buckets[j] })

	for _, bucket := range buckets {
		outgoing := outgoingByTime[bucket]

		var nearbyMints []transfer
		for b := bucket; b <= bucket+burnWindowMinutes; b++ {
			nearbyMints = append(nearbyMints, incomingByTime[b]...)
		}
		if len(nearbyMints) == 0 {
			// A burn with no nearby mint is not a conversion; it falls
			// through to ordinary sale/transfer classification.
			continue
		}

		for _, burn := range outgoing {
			set.burnedIdentities[identityOf(burn)] = true

			sameTxMints := filterByHash(nearbyMints, burn.hash)
			if len(sameTxMints) > 0 {
				set.upsert(burnMintPair{
					id:     burn.hash,
					burned: filterByHash(outgoing, burn.hash),
					minted: sameTxMints,
					burnTx: burn.hash,
					mintTx: burn.hash,
				})
				continue
			}

			closest := closestMint(nearbyMints, burn.timestamp)
			set.upsert(burnMintPair{
				id:        burn.hash + "_" + closest.hash,
				burned:    []transfer{burn},
				minted:    filterByHash(nearbyMints, closest.hash),
				burnTx:    burn.hash,
				mintTx:    closest.hash,
				synthetic: true,
			})
		}
	}

	for _, p := range set.pairs {
		for _, m := range p.minted {
			set.mintedIdentities[identityOf(m)] = true
		}
	}
	return set
}

func filterByHash(ts []transfer, hash string) []transfer {
	var out []transfer
	for _, t := range ts {
		if t.hash == hash {
			out = append(out, t)
		}
	}
	return out
}

// closestMint picks the mint whose timestamp is nearest the burn's.
// Ties keep the earlier list position.
func closestMint(mints []transfer, burnTS int64) transfer {
	best := mints[0]
	bestDist := absInt64(best.timestamp - burnTS)
	for _, m := range mints[1:] {
		if d := absInt64(m.timestamp - burnTS); d < bestDist {
			best, bestDist = m, d
		}
	}
	return best
}

func absInt64(v int64) int64 {
	if v < 0 {
		return -v
	}
	return v
}
