package tuzemoon

import (
	"context"
	"fmt"

	"github.com/memecahq/memeca/app/models"
)

// Service is the transaction ledger: an append-only log of payment attempts
// plus the idempotent completed-payment grant table.
type Service struct {
	repo Repository
}

// NewService creates a ledger service from an injected repository.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// LogInput is one ledger entry to append.
type LogInput struct {
	UserID               uint
	MemeUUID             string
	Amount               float64
	Status               string
	ErrorMessage         string
	WalletAddress        string
	TransactionSignature string
}

// LogTransaction appends a log row. A completed entry carrying a signature
// additionally upserts the payment grant; when that upsert fails the log row
// is flipped to error and the failure is returned so the caller can report
// the partial write.
func (s *Service) LogTransaction(ctx context.Context, in LogInput) (*models.TransactionLog, error) {
	if !models.IsValidTxStatus(in.Status) {
		return nil, fmt.Errorf("unknown transaction status %q", in.Status)
	}

	row := &models.TransactionLog{
		UserID:               in.UserID,
		MemeUUID:             in.MemeUUID,
		Amount:               in.Amount,
		TransactionStatus:    in.Status,
		ErrorMessage:         in.ErrorMessage,
		WalletAddress:        in.WalletAddress,
		TransactionSignature: in.TransactionSignature,
	}
	if err := s.repo.CreateLog(ctx, row); err != nil {
		return nil, fmt.Errorf("failed to insert transaction log: %w", err)
	}

	if in.Status == models.TxStatusCompleted && in.TransactionSignature != "" {
		payment := &models.TuzemoonPayment{
			UserID:               in.UserID,
			MemeUUID:             in.MemeUUID,
			Amount:               in.Amount,
			TransactionStatus:    models.TxStatusCompleted,
			TransactionSignature: in.TransactionSignature,
			WalletAddress:        in.WalletAddress,
		}
		if _, err := s.repo.UpsertPayment(ctx, payment); err != nil {
			if markErr := s.repo.MarkLogError(ctx, row.ID, fmt.Sprintf("tuzemoon payment update failed: %v", err)); markErr != nil {
				return row, fmt.Errorf("payment upsert failed (%v) and log update failed: %w", err, markErr)
			}
			return row, fmt.Errorf("transaction logged but payment update failed: %w", err)
		}
	}

	return row, nil
}

// RecentLogs returns the newest ledger entries for the admin audit view.
func (s *Service) RecentLogs(ctx context.Context, limit int) ([]models.TransactionLog, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	return s.repo.RecentLogs(ctx, limit)
}

// RecordPending satisfies the wallet auth service's logging collaborator.
func (s *Service) RecordPending(ctx context.Context, userID uint, memeUUID, walletAddress string, amount float64) error {
	_, err := s.LogTransaction(ctx, LogInput{
		UserID:        userID,
		MemeUUID:      memeUUID,
		Amount:        amount,
		Status:        models.TxStatusPending,
		WalletAddress: walletAddress,
	})
	return err
}
