package models

import "time"

// Transaction log statuses. "completed" and "success" are both terminal
// success states: "completed" is written by the client-side submitter after
// on-chain confirmation, "success" by the server-side verifier after the
// indexer check.
const (
	TxStatusPending   = "pending"
	TxStatusCompleted = "completed"
	TxStatusSuccess   = "success"
	TxStatusFailed    = "failed"
	TxStatusError     = "error"
)

// TransactionLog is the append-only audit trail of payment attempts. A retried
// payment writes new rows; the only in-place mutation is flipping a row to
// "error" when the grant upsert for a completed transaction fails.
type TransactionLog struct {
	ID                   uint      `gorm:"primaryKey" json:"id"`
	UserID               uint      `gorm:"index" json:"user_id"`
	MemeUUID             string    `gorm:"type:varchar(36);index;column:meme_id" json:"meme_id"`
	Amount               float64   `gorm:"type:decimal(20,9)" json:"amount"`
	TransactionStatus    string    `gorm:"type:varchar(20);index" json:"transaction_status"`
	ErrorMessage         string    `gorm:"type:text" json:"error_message,omitempty"`
	WalletAddress        string    `gorm:"type:varchar(64)" json:"wallet_address,omitempty"`
	TransactionSignature string    `gorm:"type:varchar(96);index" json:"transaction_signature,omitempty"`
	CreatedAt            time.Time `gorm:"autoCreateTime;index" json:"created_at"`
}

// IsValidTxStatus reports whether s is one of the known log statuses.
func IsValidTxStatus(s string) bool {
	switch s {
	case TxStatusPending, TxStatusCompleted, TxStatusSuccess, TxStatusFailed, TxStatusError:
		return true
	}
	return false
}

// IsTerminalTxStatus reports whether s ends a payment attempt.
func IsTerminalTxStatus(s string) bool {
	return IsValidTxStatus(s) && s != TxStatusPending
}
