package walletauth

import (
	"context"
	"errors"
	"time"

	"github.com/memecahq/memeca/app/models"
	"gorm.io/gorm"
)

// NonceStore provides persistence for wallet challenge nonces.
type NonceStore interface {
	Create(ctx context.Context, nonce *models.WalletNonce) error
	Exists(ctx context.Context, nonce, walletAddress string, enforceExpiry bool, now time.Time) (bool, error)
	// Consume flips is_used on the matching unused nonce. The conditional
	// update is the compare-and-swap that makes concurrent verification
	// attempts yield at most one winner.
	Consume(ctx context.Context, nonce, walletAddress string, enforceExpiry bool, now time.Time) (bool, error)
}

type gormNonceStore struct {
	db *gorm.DB
}

// NewNonceStore creates a nonce store backed by GORM.
func NewNonceStore(db *gorm.DB) NonceStore {
	return &gormNonceStore{db: db}
}

func (s *gormNonceStore) Create(ctx context.Context, nonce *models.WalletNonce) error {
	return s.db.WithContext(ctx).Create(nonce).Error
}

func (s *gormNonceStore) Exists(ctx context.Context, nonce, walletAddress string, enforceExpiry bool, now time.Time) (bool, error) {
	q := s.db.WithContext(ctx).
		Where("nonce = ? AND wallet_address = ? AND is_used = ?", nonce, walletAddress, false)
	if enforceExpiry {
		q = q.Where("expires_at > ?", now)
	}

	var row models.WalletNonce
	if err := q.First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (s *gormNonceStore) Consume(ctx context.Context, nonce, walletAddress string, enforceExpiry bool, now time.Time) (bool, error) {
	q := s.db.WithContext(ctx).
		Model(&models.WalletNonce{}).
		Where("nonce = ? AND wallet_address = ? AND is_used = ?", nonce, walletAddress, false)
	if enforceExpiry {
		q = q.Where("expires_at > ?", now)
	}

	res := q.Update("is_used", true)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}
