package tuzemoon

import (
	"context"
	"fmt"
	"time"

	"github.com/memecahq/memeca/app/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Repository provides DB operations used by the ledger service and the
// payment verifier.
type Repository interface {
	CreateLog(ctx context.Context, row *models.TransactionLog) error
	// MarkLogError flips an existing log row to the error status. This is the
	// single permitted in-place mutation of the append-only log.
	MarkLogError(ctx context.Context, id uint, message string) error
	// UpsertPayment inserts the completed-payment grant unless the signature
	// is already claimed. Reports whether a new row was created.
	UpsertPayment(ctx context.Context, payment *models.TuzemoonPayment) (bool, error)
	// CreditFeature atomically claims the transaction signature and features
	// the meme. When the signature was already claimed it reports
	// created=false and touches nothing.
	CreditFeature(ctx context.Context, payment *models.TuzemoonPayment, until time.Time) (bool, error)
	RecentLogs(ctx context.Context, limit int) ([]models.TransactionLog, error)
}

type gormRepository struct {
	db *gorm.DB
}

// NewRepository creates a tuzemoon repository backed by GORM.
func NewRepository(db *gorm.DB) Repository {
	return &gormRepository{db: db}
}

func (r *gormRepository) CreateLog(ctx context.Context, row *models.TransactionLog) error {
	return r.db.WithContext(ctx).Create(row).Error
}

func (r *gormRepository) MarkLogError(ctx context.Context, id uint, message string) error {
	return r.db.WithContext(ctx).
		Model(&models.TransactionLog{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"transaction_status": models.TxStatusError,
			"error_message":      message,
		}).Error
}

func (r *gormRepository) UpsertPayment(ctx context.Context, payment *models.TuzemoonPayment) (bool, error) {
	tx := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "transaction_signature"}},
		DoNothing: true,
	}).Create(payment)
	if tx.Error != nil {
		return false, tx.Error
	}
	return tx.RowsAffected > 0, nil
}

func (r *gormRepository) CreditFeature(ctx context.Context, payment *models.TuzemoonPayment, until time.Time) (bool, error) {
	created := false
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "transaction_signature"}},
			DoNothing: true,
		}).Create(payment)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			// Signature already claimed by an earlier verification.
			return nil
		}
		created = true

		res = tx.Model(&models.Meme{}).
			Where("uuid = ?", payment.MemeUUID).
			Updates(map[string]interface{}{
				"is_featured":    true,
				"tuzemoon_until": until,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			// Rolls back the grant claim so a retry can succeed once the
			// meme exists.
			return fmt.Errorf("meme %s not found", payment.MemeUUID)
		}
		return nil
	})
	if err != nil {
		return false, err
	}
	return created, nil
}

func (r *gormRepository) RecentLogs(ctx context.Context, limit int) ([]models.TransactionLog, error) {
	var rows []models.TransactionLog
	err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Limit(limit).
		Find(&rows).Error
	return rows, err
}
