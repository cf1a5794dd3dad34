package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsValidTxStatus(t *testing.T) {
	for _, s := range []string{TxStatusPending, TxStatusCompleted, TxStatusSuccess, TxStatusFailed, TxStatusError} {
		assert.True(t, IsValidTxStatus(s), "status %q should be valid", s)
	}
	assert.False(t, IsValidTxStatus("confirmed"))
	assert.False(t, IsValidTxStatus(""))
}

func TestIsTerminalTxStatus(t *testing.T) {
	assert.False(t, IsTerminalTxStatus(TxStatusPending))
	assert.True(t, IsTerminalTxStatus(TxStatusCompleted))
	assert.True(t, IsTerminalTxStatus(TxStatusSuccess))
	assert.True(t, IsTerminalTxStatus(TxStatusFailed))
	assert.True(t, IsTerminalTxStatus(TxStatusError))
	assert.False(t, IsTerminalTxStatus("bogus"))
}
