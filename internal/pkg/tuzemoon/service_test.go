package tuzemoon

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/memecahq/memeca/app/models"
)

// memoryRepository mirrors the signature-claim semantics of the GORM
// repository without a database.
type memoryRepository struct {
	mu         sync.Mutex
	logs       []*models.TransactionLog
	claimed    map[string]*models.TuzemoonPayment
	featured   map[string]time.Time
	knownMemes map[string]bool

	createLogErr error
	upsertErr    error
	creditErr    error
	markErr      error
}

func newMemoryRepository(memes ...string) *memoryRepository {
	known := make(map[string]bool, len(memes))
	for _, m := range memes {
		known[m] = true
	}
	return &memoryRepository{
		claimed:    make(map[string]*models.TuzemoonPayment),
		featured:   make(map[string]time.Time),
		knownMemes: known,
	}
}

func (r *memoryRepository) CreateLog(_ context.Context, row *models.TransactionLog) error {
	if r.createLogErr != nil {
		return r.createLogErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	row.ID = uint(len(r.logs) + 1)
	r.logs = append(r.logs, row)
	return nil
}

func (r *memoryRepository) MarkLogError(_ context.Context, id uint, message string) error {
	if r.markErr != nil {
		return r.markErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, row := range r.logs {
		if row.ID == id {
			row.TransactionStatus = models.TxStatusError
			row.ErrorMessage = message
			return nil
		}
	}
	return errors.New("log row not found")
}

func (r *memoryRepository) UpsertPayment(_ context.Context, payment *models.TuzemoonPayment) (bool, error) {
	if r.upsertErr != nil {
		return false, r.upsertErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.claimed[payment.TransactionSignature]; ok {
		return false, nil
	}
	r.claimed[payment.TransactionSignature] = payment
	return true, nil
}

func (r *memoryRepository) CreditFeature(_ context.Context, payment *models.TuzemoonPayment, until time.Time) (bool, error) {
	if r.creditErr != nil {
		return false, r.creditErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.claimed[payment.TransactionSignature]; ok {
		return false, nil
	}
	if !r.knownMemes[payment.MemeUUID] {
		// The claim rolls back with the feature update.
		return false, errors.New("meme not found")
	}
	r.claimed[payment.TransactionSignature] = payment
	r.featured[payment.MemeUUID] = until
	return true, nil
}

func (r *memoryRepository) RecentLogs(_ context.Context, limit int) ([]models.TransactionLog, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]models.TransactionLog, 0, limit)
	for i := len(r.logs) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, *r.logs[i])
	}
	return out, nil
}

func (r *memoryRepository) statuses() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.logs))
	for i, row := range r.logs {
		out[i] = row.TransactionStatus
	}
	return out
}

func TestLogTransaction_PlainStatuses(t *testing.T) {
	repo := newMemoryRepository()
	svc := NewService(repo)

	for _, status := range []string{models.TxStatusPending, models.TxStatusFailed} {
		row, err := svc.LogTransaction(context.Background(), LogInput{
			UserID:   1,
			MemeUUID: "meme-1",
			Amount:   0.1,
			Status:   status,
		})
		require.NoError(t, err)
		assert.Equal(t, status, row.TransactionStatus)
	}

	// Non-completed entries never touch the grant table.
	assert.Empty(t, repo.claimed)
}

func TestLogTransaction_UnknownStatus(t *testing.T) {
	svc := NewService(newMemoryRepository())

	_, err := svc.LogTransaction(context.Background(), LogInput{Status: "exploded"})
	assert.Error(t, err)
}

func TestLogTransaction_CompletedUpsertsPayment(t *testing.T) {
	repo := newMemoryRepository()
	svc := NewService(repo)

	_, err := svc.LogTransaction(context.Background(), LogInput{
		UserID:               1,
		MemeUUID:             "meme-1",
		Amount:               0.1,
		Status:               models.TxStatusCompleted,
		TransactionSignature: "sig-1",
		WalletAddress:        "WalletAAA",
	})
	require.NoError(t, err)
	require.Contains(t, repo.claimed, "sig-1")
	assert.Equal(t, "meme-1", repo.claimed["sig-1"].MemeUUID)

	// Logging the same completed transaction again appends a second log row
	// but cannot create a second grant.
	_, err = svc.LogTransaction(context.Background(), LogInput{
		UserID:               1,
		MemeUUID:             "meme-1",
		Amount:               0.1,
		Status:               models.TxStatusCompleted,
		TransactionSignature: "sig-1",
	})
	require.NoError(t, err)
	assert.Len(t, repo.logs, 2)
	assert.Len(t, repo.claimed, 1)
}

func TestLogTransaction_CompletedWithoutSignature(t *testing.T) {
	repo := newMemoryRepository()
	svc := NewService(repo)

	_, err := svc.LogTransaction(context.Background(), LogInput{
		Status: models.TxStatusCompleted,
	})
	require.NoError(t, err)
	assert.Empty(t, repo.claimed)
}

func TestLogTransaction_UpsertFailureFlipsRowToError(t *testing.T) {
	repo := newMemoryRepository()
	repo.upsertErr = errors.New("db down")
	svc := NewService(repo)

	row, err := svc.LogTransaction(context.Background(), LogInput{
		UserID:               1,
		MemeUUID:             "meme-1",
		Status:               models.TxStatusCompleted,
		TransactionSignature: "sig-1",
	})
	require.Error(t, err)
	require.NotNil(t, row)
	assert.Equal(t, []string{models.TxStatusError}, repo.statuses())
}

func TestRecordPending(t *testing.T) {
	repo := newMemoryRepository()
	svc := NewService(repo)

	err := svc.RecordPending(context.Background(), 7, "meme-1", "WalletAAA", 0.1)
	require.NoError(t, err)
	require.Len(t, repo.logs, 1)
	assert.Equal(t, models.TxStatusPending, repo.logs[0].TransactionStatus)
	assert.Equal(t, "WalletAAA", repo.logs[0].WalletAddress)
}
