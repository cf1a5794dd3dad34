package walletauth

import (
	"strconv"
	"strings"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSignature(t *testing.T) {
	valid := make([]string, 64)
	for i := range valid {
		valid[i] = strconv.Itoa(i * 3)
	}

	tests := []struct {
		name    string
		raw     string
		wantErr bool
	}{
		{name: "valid", raw: strings.Join(valid, ",")},
		{name: "valid with spaces", raw: strings.Join(valid, ", ")},
		{name: "too few bytes", raw: "1,2,3", wantErr: true},
		{name: "too many bytes", raw: strings.Join(append(valid, "0"), ","), wantErr: true},
		{name: "non numeric byte", raw: strings.Join(append(valid[:63], "xx"), ","), wantErr: true},
		{name: "byte out of range", raw: strings.Join(append(valid[:63], "256"), ","), wantErr: true},
		{name: "empty", raw: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sig, err := ParseSignature(tt.raw)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrSignatureInvalid)
				return
			}
			require.NoError(t, err)
			assert.Len(t, sig, 64)
		})
	}
}

func TestVerifyNonceSignature_BadWalletAddress(t *testing.T) {
	wallet := solana.NewWallet()
	sig := signNonce(wallet.PrivateKey, "nonce")

	err := VerifyNonceSignature("not-base58!!!", "nonce", sig)
	assert.ErrorIs(t, err, ErrSignatureInvalid)
}

func TestVerifyNonceSignature_WrongNonce(t *testing.T) {
	wallet := solana.NewWallet()
	sig := signNonce(wallet.PrivateKey, "nonce-a")

	err := VerifyNonceSignature(wallet.PublicKey().String(), "nonce-b", sig)
	assert.ErrorIs(t, err, ErrSignatureInvalid)
}
