package walletauth

import (
	"context"
	"crypto/ed25519"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/memecahq/memeca/app/models"
)

// memoryNonceStore mirrors the conditional-update semantics of the GORM store
// so the race behavior of Consume can be exercised without a database.
type memoryNonceStore struct {
	mu     sync.Mutex
	nonces map[string]*models.WalletNonce
}

func newMemoryNonceStore() *memoryNonceStore {
	return &memoryNonceStore{nonces: make(map[string]*models.WalletNonce)}
}

func (s *memoryNonceStore) Create(_ context.Context, nonce *models.WalletNonce) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *nonce
	s.nonces[nonce.Nonce] = &cp
	return nil
}

func (s *memoryNonceStore) Exists(_ context.Context, nonce, walletAddress string, enforceExpiry bool, now time.Time) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.matches(nonce, walletAddress, enforceExpiry, now), nil
}

func (s *memoryNonceStore) Consume(_ context.Context, nonce, walletAddress string, enforceExpiry bool, now time.Time) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.matches(nonce, walletAddress, enforceExpiry, now) {
		return false, nil
	}
	s.nonces[nonce].IsUsed = true
	return true, nil
}

func (s *memoryNonceStore) matches(nonce, walletAddress string, enforceExpiry bool, now time.Time) bool {
	row, ok := s.nonces[nonce]
	if !ok || row.IsUsed || row.WalletAddress != walletAddress {
		return false
	}
	if enforceExpiry && !row.ExpiresAt.After(now) {
		return false
	}
	return true
}

type pendingCapture struct {
	calls []string
	err   error
}

func (p *pendingCapture) RecordPending(_ context.Context, _ uint, memeUUID, _ string, _ float64) error {
	p.calls = append(p.calls, memeUUID)
	return p.err
}

// signNonce produces the wallet wire format: the 64 ed25519 signature bytes
// over the nonce, joined as comma-separated decimals.
func signNonce(key solana.PrivateKey, nonce string) string {
	sig := ed25519.Sign(ed25519.PrivateKey(key), []byte(nonce))
	parts := make([]string, len(sig))
	for i, b := range sig {
		parts[i] = strconv.Itoa(int(b))
	}
	return strings.Join(parts, ",")
}

func newTestService(store NonceStore, ledger PendingRecorder) *Service {
	return NewService(store, ledger, Config{NonceTTL: 5 * time.Minute, EnforceExpiry: true})
}

func TestGenerateNonce(t *testing.T) {
	store := newMemoryNonceStore()
	svc := newTestService(store, nil)

	nonce, err := svc.GenerateNonce(context.Background(), "So11111111111111111111111111111111111111112")
	require.NoError(t, err)
	require.NotEmpty(t, nonce)

	row, ok := store.nonces[nonce]
	require.True(t, ok)
	assert.False(t, row.IsUsed)
	assert.Equal(t, "So11111111111111111111111111111111111111112", row.WalletAddress)
	assert.True(t, row.ExpiresAt.After(time.Now()))

	_, err = svc.GenerateNonce(context.Background(), "")
	assert.Error(t, err)
}

func TestVerifySignature_Success(t *testing.T) {
	wallet := solana.NewWallet()
	addr := wallet.PublicKey().String()

	store := newMemoryNonceStore()
	ledger := &pendingCapture{}
	svc := newTestService(store, ledger)

	nonce, err := svc.GenerateNonce(context.Background(), addr)
	require.NoError(t, err)

	err = svc.VerifySignature(context.Background(), VerifyInput{
		WalletAddress: addr,
		Nonce:         nonce,
		Signature:     signNonce(wallet.PrivateKey, nonce),
		UserID:        7,
		MemeUUID:      "meme-1",
		Amount:        0.1,
	})
	require.NoError(t, err)

	assert.True(t, store.nonces[nonce].IsUsed)
	assert.Equal(t, []string{"meme-1"}, ledger.calls)
}

func TestVerifySignature_Replay(t *testing.T) {
	wallet := solana.NewWallet()
	addr := wallet.PublicKey().String()

	store := newMemoryNonceStore()
	svc := newTestService(store, nil)

	nonce, err := svc.GenerateNonce(context.Background(), addr)
	require.NoError(t, err)

	in := VerifyInput{
		WalletAddress: addr,
		Nonce:         nonce,
		Signature:     signNonce(wallet.PrivateKey, nonce),
	}
	require.NoError(t, svc.VerifySignature(context.Background(), in))

	err = svc.VerifySignature(context.Background(), in)
	assert.ErrorIs(t, err, ErrNonceInvalid)
}

func TestVerifySignature_BadSignatureKeepsNonceAlive(t *testing.T) {
	wallet := solana.NewWallet()
	other := solana.NewWallet()
	addr := wallet.PublicKey().String()

	store := newMemoryNonceStore()
	svc := newTestService(store, nil)

	nonce, err := svc.GenerateNonce(context.Background(), addr)
	require.NoError(t, err)

	// Signed by the wrong key: rejected, but the nonce survives for a
	// correct retry.
	err = svc.VerifySignature(context.Background(), VerifyInput{
		WalletAddress: addr,
		Nonce:         nonce,
		Signature:     signNonce(other.PrivateKey, nonce),
	})
	require.ErrorIs(t, err, ErrSignatureInvalid)
	assert.False(t, store.nonces[nonce].IsUsed)

	err = svc.VerifySignature(context.Background(), VerifyInput{
		WalletAddress: addr,
		Nonce:         nonce,
		Signature:     signNonce(wallet.PrivateKey, nonce),
	})
	assert.NoError(t, err)
}

func TestVerifySignature_UnknownNonce(t *testing.T) {
	wallet := solana.NewWallet()
	svc := newTestService(newMemoryNonceStore(), nil)

	err := svc.VerifySignature(context.Background(), VerifyInput{
		WalletAddress: wallet.PublicKey().String(),
		Nonce:         "never-issued",
		Signature:     signNonce(wallet.PrivateKey, "never-issued"),
	})
	assert.ErrorIs(t, err, ErrNonceInvalid)
}

func TestVerifySignature_Expiry(t *testing.T) {
	wallet := solana.NewWallet()
	addr := wallet.PublicKey().String()

	store := newMemoryNonceStore()
	svc := newTestService(store, nil)

	nonce, err := svc.GenerateNonce(context.Background(), addr)
	require.NoError(t, err)

	// Move the service clock past the TTL.
	svc.now = func() time.Time { return time.Now().Add(10 * time.Minute) }

	in := VerifyInput{
		WalletAddress: addr,
		Nonce:         nonce,
		Signature:     signNonce(wallet.PrivateKey, nonce),
	}
	err = svc.VerifySignature(context.Background(), in)
	assert.ErrorIs(t, err, ErrNonceInvalid)

	// With enforcement off the stale nonce still verifies.
	svc.cfg.EnforceExpiry = false
	err = svc.VerifySignature(context.Background(), in)
	assert.NoError(t, err)
}

func TestVerifySignature_ConcurrentSingleWinner(t *testing.T) {
	wallet := solana.NewWallet()
	addr := wallet.PublicKey().String()

	store := newMemoryNonceStore()
	svc := newTestService(store, nil)

	nonce, err := svc.GenerateNonce(context.Background(), addr)
	require.NoError(t, err)

	in := VerifyInput{
		WalletAddress: addr,
		Nonce:         nonce,
		Signature:     signNonce(wallet.PrivateKey, nonce),
	}

	const attempts = 16
	results := make(chan error, attempts)
	var wg sync.WaitGroup
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results <- svc.VerifySignature(context.Background(), in)
		}()
	}
	wg.Wait()
	close(results)

	wins := 0
	for err := range results {
		if err == nil {
			wins++
		} else {
			assert.ErrorIs(t, err, ErrNonceInvalid)
		}
	}
	assert.Equal(t, 1, wins)
}

func TestVerifySignature_PendingFailureDoesNotReject(t *testing.T) {
	wallet := solana.NewWallet()
	addr := wallet.PublicKey().String()

	store := newMemoryNonceStore()
	ledger := &pendingCapture{err: assert.AnError}
	svc := newTestService(store, ledger)

	nonce, err := svc.GenerateNonce(context.Background(), addr)
	require.NoError(t, err)

	err = svc.VerifySignature(context.Background(), VerifyInput{
		WalletAddress: addr,
		Nonce:         nonce,
		Signature:     signNonce(wallet.PrivateKey, nonce),
		MemeUUID:      "meme-1",
		Amount:        0.1,
	})
	assert.NoError(t, err)
	assert.Len(t, ledger.calls, 1)
}
