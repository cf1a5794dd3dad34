package controllers

import (
	"bytes"
	"context"
	"crypto/ed25519"
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/memecahq/memeca/app/models"
	"github.com/memecahq/memeca/internal/pkg/walletauth"
)

type testNonceStore struct {
	mu     sync.Mutex
	nonces map[string]*models.WalletNonce
}

func newTestNonceStore() *testNonceStore {
	return &testNonceStore{nonces: make(map[string]*models.WalletNonce)}
}

func (s *testNonceStore) Create(_ context.Context, nonce *models.WalletNonce) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *nonce
	s.nonces[nonce.Nonce] = &cp
	return nil
}

func (s *testNonceStore) Exists(_ context.Context, nonce, walletAddress string, enforceExpiry bool, now time.Time) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	row, ok := s.nonces[nonce]
	if !ok || row.IsUsed || row.WalletAddress != walletAddress {
		return false, nil
	}
	if enforceExpiry && !row.ExpiresAt.After(now) {
		return false, nil
	}
	return true, nil
}

func (s *testNonceStore) Consume(ctx context.Context, nonce, walletAddress string, enforceExpiry bool, now time.Time) (bool, error) {
	ok, err := s.Exists(ctx, nonce, walletAddress, enforceExpiry, now)
	if err != nil || !ok {
		return false, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nonces[nonce].IsUsed = true
	return true, nil
}

func newWalletAuthApp() *fiber.App {
	SetWalletAuthService(walletauth.NewService(newTestNonceStore(), nil, walletauth.Config{
		NonceTTL:      5 * time.Minute,
		EnforceExpiry: true,
	}))

	app := fiber.New()
	app.Post("/api/wallet-auth", HandleWalletAuth)
	return app
}

func postJSON(t *testing.T, app *fiber.App, path string, payload map[string]interface{}) (*http.Response, map[string]interface{}) {
	t.Helper()

	body, err := json.Marshal(payload)
	require.NoError(t, err)

	req := httptestRequest(http.MethodPost, path, body)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)

	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var decoded map[string]interface{}
	if len(data) > 0 {
		require.NoError(t, json.Unmarshal(data, &decoded))
	}
	return resp, decoded
}

func httptestRequest(method, path string, body []byte) *http.Request {
	req, _ := http.NewRequest(method, path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func walletSignature(key solana.PrivateKey, nonce string) string {
	sig := ed25519.Sign(ed25519.PrivateKey(key), []byte(nonce))
	parts := make([]string, len(sig))
	for i, b := range sig {
		parts[i] = strconv.Itoa(int(b))
	}
	return strings.Join(parts, ",")
}

func TestHandleWalletAuth_GenerateNonce(t *testing.T) {
	app := newWalletAuthApp()

	resp, body := postJSON(t, app, "/api/wallet-auth", map[string]interface{}{
		"action":        "generate-nonce",
		"walletAddress": "So11111111111111111111111111111111111111112",
	})
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.NotEmpty(t, body["nonce"])
}

func TestHandleWalletAuth_VerifyRoundTrip(t *testing.T) {
	app := newWalletAuthApp()
	wallet := solana.NewWallet()
	addr := wallet.PublicKey().String()

	_, body := postJSON(t, app, "/api/wallet-auth", map[string]interface{}{
		"action":        "generate-nonce",
		"walletAddress": addr,
	})
	nonce, _ := body["nonce"].(string)
	require.NotEmpty(t, nonce)

	verify := map[string]interface{}{
		"action":        "verify-signature",
		"walletAddress": addr,
		"nonce":         nonce,
		"signature":     walletSignature(wallet.PrivateKey, nonce),
	}
	resp, body := postJSON(t, app, "/api/wallet-auth", verify)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "Wallet verified successfully", body["message"])

	// Replaying the consumed nonce is rejected.
	resp, body = postJSON(t, app, "/api/wallet-auth", verify)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "Invalid or expired nonce", body["error"])
}

func TestHandleWalletAuth_InvalidSignature(t *testing.T) {
	app := newWalletAuthApp()
	wallet := solana.NewWallet()
	intruder := solana.NewWallet()
	addr := wallet.PublicKey().String()

	_, body := postJSON(t, app, "/api/wallet-auth", map[string]interface{}{
		"action":        "generate-nonce",
		"walletAddress": addr,
	})
	nonce, _ := body["nonce"].(string)
	require.NotEmpty(t, nonce)

	resp, body := postJSON(t, app, "/api/wallet-auth", map[string]interface{}{
		"action":        "verify-signature",
		"walletAddress": addr,
		"nonce":         nonce,
		"signature":     walletSignature(intruder.PrivateKey, nonce),
	})
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "Invalid signature", body["error"])
}

func TestHandleWalletAuth_BadRequests(t *testing.T) {
	app := newWalletAuthApp()

	tests := []map[string]interface{}{
		{"action": "self-destruct"},
		{"action": "generate-nonce"},
		{"action": "verify-signature", "walletAddress": "x"},
	}
	for _, payload := range tests {
		resp, body := postJSON(t, app, "/api/wallet-auth", payload)
		assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, "Invalid request", body["error"])
	}
}
