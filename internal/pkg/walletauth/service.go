package walletauth

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/memecahq/memeca/app/models"
	"github.com/memecahq/memeca/internal/pkg/env"
)

var (
	// ErrNonceInvalid covers never-issued, already-consumed and (when expiry
	// enforcement is on) expired nonces. Callers must not be able to tell
	// these apart.
	ErrNonceInvalid = errors.New("invalid or expired nonce")
	// ErrSignatureInvalid covers malformed and cryptographically invalid
	// signatures.
	ErrSignatureInvalid = errors.New("invalid signature")
)

// Config carries the nonce lifecycle tunables.
type Config struct {
	NonceTTL      time.Duration
	EnforceExpiry bool
}

// ConfigFromEnv reads the nonce settings with the original defaults
// (5 minute TTL, expiry enforced at verification time).
func ConfigFromEnv() Config {
	ttl := 5 * time.Minute
	if v, err := strconv.Atoi(env.GetEnv("NONCE_TTL_MINUTES", "5")); err == nil && v > 0 {
		ttl = time.Duration(v) * time.Minute
	}
	enforce := env.GetEnv("NONCE_ENFORCE_EXPIRY", "true") != "false"
	return Config{NonceTTL: ttl, EnforceExpiry: enforce}
}

// PendingRecorder logs the pending ledger entry emitted after a successful
// wallet verification that carries payment context.
type PendingRecorder interface {
	RecordPending(ctx context.Context, userID uint, memeUUID, walletAddress string, amount float64) error
}

// Service orchestrates nonce issuance and challenge/response verification.
type Service struct {
	store  NonceStore
	ledger PendingRecorder
	cfg    Config
	now    func() time.Time
}

// NewService creates a wallet auth service. ledger may be nil when no payment
// logging collaborator is wired (verification still works, nothing is logged).
func NewService(store NonceStore, ledger PendingRecorder, cfg Config) *Service {
	return &Service{
		store:  store,
		ledger: ledger,
		cfg:    cfg,
		now:    time.Now,
	}
}

// GenerateNonce issues a single-use challenge for the wallet address.
func (s *Service) GenerateNonce(ctx context.Context, walletAddress string) (string, error) {
	if walletAddress == "" {
		return "", fmt.Errorf("wallet address is required")
	}

	now := s.now()
	nonce := &models.WalletNonce{
		Nonce:         uuid.New().String(),
		WalletAddress: walletAddress,
		IsUsed:        false,
		ExpiresAt:     now.Add(s.cfg.NonceTTL),
	}
	if err := s.store.Create(ctx, nonce); err != nil {
		return "", fmt.Errorf("failed to store nonce: %w", err)
	}
	return nonce.Nonce, nil
}

// VerifyInput is one challenge/response verification request. MemeUUID and
// Amount are optional payment context; when both are present a pending ledger
// entry is written after successful verification.
type VerifyInput struct {
	WalletAddress string
	Nonce         string
	Signature     string
	UserID        uint
	MemeUUID      string
	Amount        float64
}

// VerifySignature proves the caller controls the wallet address. Success is a
// one-time authenticated action, not a session: the nonce is consumed and can
// never be replayed.
func (s *Service) VerifySignature(ctx context.Context, in VerifyInput) error {
	now := s.now()

	found, err := s.store.Exists(ctx, in.Nonce, in.WalletAddress, s.cfg.EnforceExpiry, now)
	if err != nil {
		return fmt.Errorf("nonce lookup failed: %w", err)
	}
	if !found {
		return ErrNonceInvalid
	}

	if err := VerifyNonceSignature(in.WalletAddress, in.Nonce, in.Signature); err != nil {
		return err
	}

	// The conditional update decides races: of two concurrent verifications
	// holding the same valid signature, exactly one consumes the nonce.
	consumed, err := s.store.Consume(ctx, in.Nonce, in.WalletAddress, s.cfg.EnforceExpiry, now)
	if err != nil {
		return fmt.Errorf("failed to consume nonce: %w", err)
	}
	if !consumed {
		return ErrNonceInvalid
	}

	if s.ledger != nil && in.MemeUUID != "" && in.Amount > 0 {
		if err := s.ledger.RecordPending(ctx, in.UserID, in.MemeUUID, in.WalletAddress, in.Amount); err != nil {
			// Verification already succeeded; a logging failure is not a
			// reason to reject the wallet.
			log.Printf("wallet auth: failed to record pending transaction for meme %s: %v", in.MemeUUID, err)
		}
	}

	return nil
}
