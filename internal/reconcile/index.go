package reconcile

// txIndex holds the per-hash lookup structures the classifier cross-references
// when attributing payments. Normal transactions map one-to-one; the other
// three streams can carry several records per hash (batch sales, royalty
// splits, multi-mint transactions).
type txIndex struct {
	txByHash       map[string]transfer
	nftByHash      map[string][]transfer
	internalByHash map[string][]transfer
	tokenByHash    map[string][]transfer
}

func buildIndex(normal, nfts, internals, tokens []transfer) *txIndex {
	idx := &txIndex{
		txByHash:       make(map[string]transfer, len(normal)),
		nftByHash:      make(map[string][]transfer),
		internalByHash: make(map[string][]transfer),
		tokenByHash:    make(map[string][]transfer),
	}
	for _, t := range normal {
		idx.txByHash[t.hash] = t
	}
	for _, t := range nfts {
		idx.nftByHash[t.hash] = append(idx.nftByHash[t.hash], t)
	}
	for _, t := range internals {
		idx.internalByHash[t.hash] = append(idx.internalByHash[t.hash], t)
	}
	for _, t := range tokens {
		idx.tokenByHash[t.hash] = append(idx.tokenByHash[t.hash], t)
	}
	return idx
}
