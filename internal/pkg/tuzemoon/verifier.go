package tuzemoon

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math"
	"strconv"
	"time"

	"github.com/memecahq/memeca/app/models"
	"github.com/memecahq/memeca/internal/pkg/env"
	"github.com/memecahq/memeca/internal/pkg/solscan"
)

var (
	// ErrTransactionFailed means the indexer does not know the transaction
	// or reports it as failed on chain.
	ErrTransactionFailed = errors.New("transaction failed or not found")
	// ErrAmountMismatch means the indexed transfer amount disagrees with the
	// expected fee beyond the rounding epsilon.
	ErrAmountMismatch = errors.New("invalid transaction amount")
)

// Indexer is the block-explorer lookup the verifier re-validates against.
type Indexer interface {
	Transaction(ctx context.Context, signature string) (*solscan.Transaction, error)
}

// VerifierConfig carries the verification tunables.
type VerifierConfig struct {
	// IndexingDelay is a single fixed wait before the indexer lookup, giving
	// the explorer time to catch up with the chain tip.
	IndexingDelay   time.Duration
	AmountEpsilon   float64
	FeatureDuration time.Duration
}

// VerifierConfigFromEnv reads verifier settings with the production defaults:
// 5s indexing delay, 1e-9 SOL amount epsilon, 24h featured window.
func VerifierConfigFromEnv() VerifierConfig {
	delay := 5 * time.Second
	if v, err := strconv.Atoi(env.GetEnv("INDEXING_DELAY_MS", "")); err == nil && v >= 0 {
		delay = time.Duration(v) * time.Millisecond
	}
	return VerifierConfig{
		IndexingDelay:   delay,
		AmountEpsilon:   1e-9,
		FeatureDuration: 24 * time.Hour,
	}
}

// Verifier re-validates submitted payments against the indexer and credits
// the featured status.
type Verifier struct {
	indexer Indexer
	repo    Repository
	cfg     VerifierConfig
	now     func() time.Time
}

// NewVerifier creates a payment verifier.
func NewVerifier(indexer Indexer, repo Repository, cfg VerifierConfig) *Verifier {
	return &Verifier{
		indexer: indexer,
		repo:    repo,
		cfg:     cfg,
		now:     time.Now,
	}
}

// VerifyRequest identifies one payment to verify.
type VerifyRequest struct {
	TransactionSignature string
	ExpectedAmount       float64
	MemeUUID             string
	UserID               uint
}

// VerifyResult reports a successful verification.
type VerifyResult struct {
	AlreadyVerified bool
	WalletAddress   string
}

// VerifyPayment checks the transaction against the indexer and, on success,
// atomically features the meme and appends a success ledger row. Verifying
// the same signature twice is a no-op reported as AlreadyVerified.
func (v *Verifier) VerifyPayment(ctx context.Context, req VerifyRequest) (*VerifyResult, error) {
	if v.cfg.IndexingDelay > 0 {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(v.cfg.IndexingDelay):
		}
	}

	tx, err := v.indexer.Transaction(ctx, req.TransactionSignature)
	if err != nil {
		err = fmt.Errorf("indexer lookup failed: %w", err)
		v.recordFailure(ctx, req, err)
		return nil, err
	}

	if !tx.Succeeded() {
		v.recordFailure(ctx, req, ErrTransactionFailed)
		return nil, ErrTransactionFailed
	}

	amount := tx.AmountSOL()
	if math.Abs(amount-req.ExpectedAmount) > v.cfg.AmountEpsilon {
		err := fmt.Errorf("%w: expected %.9f SOL, got %.9f SOL", ErrAmountMismatch, req.ExpectedAmount, amount)
		v.recordFailure(ctx, req, err)
		return nil, err
	}

	payment := &models.TuzemoonPayment{
		UserID:               req.UserID,
		MemeUUID:             req.MemeUUID,
		Amount:               req.ExpectedAmount,
		TransactionStatus:    models.TxStatusCompleted,
		TransactionSignature: req.TransactionSignature,
		WalletAddress:        tx.PrimarySigner(),
	}

	created, err := v.repo.CreditFeature(ctx, payment, v.now().Add(v.cfg.FeatureDuration))
	if err != nil {
		err = fmt.Errorf("failed to credit feature: %w", err)
		v.recordFailure(ctx, req, err)
		return nil, err
	}
	if !created {
		return &VerifyResult{AlreadyVerified: true, WalletAddress: tx.PrimarySigner()}, nil
	}

	// The grant has taken effect; a failed success-row write must not undo
	// the caller's success.
	successRow := &models.TransactionLog{
		UserID:               req.UserID,
		MemeUUID:             req.MemeUUID,
		Amount:               req.ExpectedAmount,
		TransactionStatus:    models.TxStatusSuccess,
		WalletAddress:        tx.PrimarySigner(),
		TransactionSignature: req.TransactionSignature,
	}
	if err := v.repo.CreateLog(ctx, successRow); err != nil {
		log.Printf("tuzemoon: failed to write success ledger row for %s: %v", req.TransactionSignature, err)
	}

	return &VerifyResult{WalletAddress: tx.PrimarySigner()}, nil
}

// recordFailure appends a failed ledger row best-effort; the primary error is
// already being reported to the caller.
func (v *Verifier) recordFailure(ctx context.Context, req VerifyRequest, cause error) {
	if req.UserID == 0 && req.MemeUUID == "" {
		return
	}
	row := &models.TransactionLog{
		UserID:            req.UserID,
		MemeUUID:          req.MemeUUID,
		Amount:            req.ExpectedAmount,
		TransactionStatus: models.TxStatusFailed,
		ErrorMessage:      cause.Error(),
	}
	if err := v.repo.CreateLog(ctx, row); err != nil {
		log.Printf("tuzemoon: failed to write failure ledger row for %s: %v", req.TransactionSignature, err)
	}
}
