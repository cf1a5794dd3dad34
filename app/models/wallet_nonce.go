package models

import "time"

// WalletNonce is a single-use challenge bound to a wallet address. Rows are
// never deleted; a nonce is dead once used or expired but retained for audit.
type WalletNonce struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	Nonce         string    `gorm:"type:varchar(36);uniqueIndex" json:"nonce"`
	WalletAddress string    `gorm:"type:varchar(64);index" json:"wallet_address"`
	IsUsed        bool      `gorm:"default:false" json:"is_used"`
	ExpiresAt     time.Time `gorm:"type:timestamp" json:"expires_at"`
	CreatedAt     time.Time `gorm:"autoCreateTime" json:"created_at"`
}
