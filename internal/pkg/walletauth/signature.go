package walletauth

import (
	"crypto/ed25519"
	"fmt"
	"strconv"
	"strings"

	"github.com/gagliardetto/solana-go"
)

// ParseSignature decodes the wallet wire format: the 64 signature bytes
// rendered as comma-separated decimal values (what the browser extension
// produces when a Uint8Array is joined into a string).
func ParseSignature(raw string) ([]byte, error) {
	parts := strings.Split(strings.TrimSpace(raw), ",")
	if len(parts) != ed25519.SignatureSize {
		return nil, fmt.Errorf("%w: expected %d signature bytes, got %d", ErrSignatureInvalid, ed25519.SignatureSize, len(parts))
	}

	sig := make([]byte, len(parts))
	for i, p := range parts {
		v, err := strconv.ParseUint(strings.TrimSpace(p), 10, 8)
		if err != nil {
			return nil, fmt.Errorf("%w: byte %d is not a valid uint8", ErrSignatureInvalid, i)
		}
		sig[i] = byte(v)
	}
	return sig, nil
}

// VerifyNonceSignature checks that signature is a valid ed25519 signature over
// the nonce string by the key behind the base58 wallet address.
func VerifyNonceSignature(walletAddress, nonce, signature string) error {
	pub, err := solana.PublicKeyFromBase58(walletAddress)
	if err != nil {
		return fmt.Errorf("%w: wallet address is not a valid public key: %v", ErrSignatureInvalid, err)
	}

	sig, err := ParseSignature(signature)
	if err != nil {
		return err
	}

	if !ed25519.Verify(ed25519.PublicKey(pub.Bytes()), []byte(nonce), sig) {
		return ErrSignatureInvalid
	}
	return nil
}
