package models

import "time"

// TuzemoonPayment records a completed featured-listing purchase. The unique
// transaction signature is the idempotence key: re-verifying the same on-chain
// transaction can never produce a second grant.
type TuzemoonPayment struct {
	ID                   uint      `gorm:"primaryKey" json:"id"`
	UserID               uint      `gorm:"index" json:"user_id"`
	MemeUUID             string    `gorm:"type:varchar(36);index;column:meme_id" json:"meme_id"`
	Amount               float64   `gorm:"type:decimal(20,9)" json:"amount"`
	TransactionStatus    string    `gorm:"type:varchar(20)" json:"transaction_status"`
	TransactionSignature string    `gorm:"type:varchar(96);not null;uniqueIndex" json:"transaction_signature"`
	WalletAddress        string    `gorm:"type:varchar(64)" json:"wallet_address"`
	CreatedAt            time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt            time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}
