package models

// Transfer is one record from an ApeScan account endpoint. All four endpoints
// (txlist, txlistinternal, tokentx, tokennfttx) share this wire shape; fields
// that a given endpoint does not return simply decode to "".
// Every numeric field arrives as a decimal string in the smallest unit.
type Transfer struct {
	Hash            string `json:"hash"`
	TimeStamp       string `json:"timeStamp"`
	From            string `json:"from"`
	To              string `json:"to"`
	Value           string `json:"value"`
	GasUsed         string `json:"gasUsed"`
	GasPrice        string `json:"gasPrice"`
	GasPriceBid     string `json:"gasPriceBid"`
	ContractAddress string `json:"contractAddress"`
	TokenName       string `json:"tokenName"`
	TokenSymbol     string `json:"tokenSymbol"`
	TokenDecimal    string `json:"tokenDecimal"`
	TokenID         string `json:"tokenID"`
}
