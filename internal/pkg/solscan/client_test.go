package solscan

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTransaction(t *testing.T) {
	var gotPath, gotToken string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotToken = r.Header.Get("token")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"txHash": "sig123",
			"status": "Success",
			"lamport": 100000000,
			"signer": ["WalletAAA", "WalletBBB"],
			"blockTime": 1700000000,
			"slot": 424242,
			"fee": 5000
		}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "secret-token")
	tx, err := c.Transaction(context.Background(), "sig123")
	require.NoError(t, err)

	assert.Equal(t, "/transaction/sig123", gotPath)
	assert.Equal(t, "secret-token", gotToken)
	assert.Equal(t, "sig123", tx.Signature)
	assert.True(t, tx.Succeeded())
	assert.Equal(t, "WalletAAA", tx.PrimarySigner())
	assert.InDelta(t, 0.1, tx.AmountSOL(), 1e-12)
}

func TestTransaction_NoTokenHeaderWhenUnset(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := r.Header["Token"]; ok {
			t.Errorf("token header must not be sent without an API token")
		}
		_, _ = w.Write([]byte(`{"txHash":"x","status":"Success"}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "")
	_, err := c.Transaction(context.Background(), "x")
	require.NoError(t, err)
}

func TestTransaction_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"message":"transaction not found"}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "")
	_, err := c.Transaction(context.Background(), "missing")
	require.Error(t, err)

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusNotFound, apiErr.StatusCode)
	assert.Contains(t, apiErr.Body, "transaction not found")
}

func TestTransaction_MalformedBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`not json`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "")
	_, err := c.Transaction(context.Background(), "sig")
	assert.Error(t, err)
}

func TestTransactionHelpers_NilSafe(t *testing.T) {
	var tx *Transaction
	assert.False(t, tx.Succeeded())
	assert.Equal(t, "", tx.PrimarySigner())

	failed := &Transaction{Status: "Fail", Lamport: 100000000}
	assert.False(t, failed.Succeeded())
}
