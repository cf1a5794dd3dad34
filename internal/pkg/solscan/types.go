package solscan

// StatusSuccess is the indexer's value for a transaction that landed
// successfully on chain.
const StatusSuccess = "Success"

// Transaction is the indexed transaction view the payment verifier consumes.
type Transaction struct {
	Signature string   `json:"txHash"`
	Status    string   `json:"status"`
	Lamport   int64    `json:"lamport"`
	Signer    []string `json:"signer"`
	BlockTime int64    `json:"blockTime"`
	Slot      uint64   `json:"slot"`
	Fee       int64    `json:"fee"`
}

// Succeeded reports whether the transaction landed successfully.
func (t *Transaction) Succeeded() bool {
	return t != nil && t.Status == StatusSuccess
}

// PrimarySigner returns the fee-paying wallet, or "" when the indexer did not
// report signers.
func (t *Transaction) PrimarySigner() string {
	if t == nil || len(t.Signer) == 0 {
		return ""
	}
	return t.Signer[0]
}

// AmountSOL converts the indexed lamport amount to SOL.
func (t *Transaction) AmountSOL() float64 {
	return float64(t.Lamport) / 1e9
}
