package phantom

import (
	"context"
	"errors"
	"fmt"

	"github.com/gagliardetto/solana-go"

	"github.com/memecahq/memeca/internal/pkg/env"
)

// Wallet abstracts the signing party of a payment. In the browser this is the
// injected extension object; server-side flows use a keypair-backed wallet.
type Wallet interface {
	Connect(ctx context.Context) (solana.PublicKey, error)
	SignTransaction(ctx context.Context, tx *solana.Transaction) (*solana.Transaction, error)
}

// KeypairWallet signs with an in-process private key.
type KeypairWallet struct {
	key solana.PrivateKey
}

// NewKeypairWallet wraps a private key as a Wallet.
func NewKeypairWallet(key solana.PrivateKey) *KeypairWallet {
	return &KeypairWallet{key: key}
}

// KeypairWalletFromEnv builds a wallet from PAYER_PRIVATE_KEY (base58).
// Returns nil without error when the key is not configured; the submitter
// treats a nil wallet as "extension not installed".
func KeypairWalletFromEnv() (*KeypairWallet, error) {
	raw := env.GetEnv("PAYER_PRIVATE_KEY", "")
	if raw == "" {
		return nil, nil
	}
	key, err := solana.PrivateKeyFromBase58(raw)
	if err != nil {
		return nil, fmt.Errorf("invalid PAYER_PRIVATE_KEY: %w", err)
	}
	return &KeypairWallet{key: key}, nil
}

func (w *KeypairWallet) Connect(ctx context.Context) (solana.PublicKey, error) {
	return w.key.PublicKey(), nil
}

func (w *KeypairWallet) SignTransaction(ctx context.Context, tx *solana.Transaction) (*solana.Transaction, error) {
	pub := w.key.PublicKey()
	_, err := tx.Sign(func(key solana.PublicKey) *solana.PrivateKey {
		if key.Equals(pub) {
			return &w.key
		}
		return nil
	})
	if err != nil {
		return nil, newError(KindTransactionFailed, "sign transaction", err)
	}
	return tx, nil
}

// ErrSigningRejected is what interactive wallets return when the user cancels
// the signature prompt.
var ErrSigningRejected = errors.New("transaction was rejected by the user")

// RejectionError wraps a user cancellation with its kind.
func RejectionError(op string) *Error {
	return newError(KindUserRejected, op, ErrSigningRejected)
}
