package phantom

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/programs/system"
	"github.com/gagliardetto/solana-go/rpc"

	"github.com/memecahq/memeca/app/models"
)

// AttemptState tracks a payment attempt through the pipeline.
type AttemptState int

const (
	StateIdle AttemptState = iota
	StateWalletChecked
	StateConnected
	StateSigned
	StateBroadcast
	StateConfirmed
	StateFailed
)

func (s AttemptState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateWalletChecked:
		return "wallet_checked"
	case StateConnected:
		return "connected"
	case StateSigned:
		return "signed"
	case StateBroadcast:
		return "broadcast"
	case StateConfirmed:
		return "confirmed"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Attempt is the explicit per-payment state machine value. It carries
// everything the audit trail needs, independent of any UI.
type Attempt struct {
	State         AttemptState
	UserID        uint
	MemeUUID      string
	Amount        float64
	WalletAddress string
	Signature     string
	Err           error
}

func (a *Attempt) fail(err error) error {
	a.State = StateFailed
	a.Err = err
	return err
}

// Record is one ledger entry emitted by the submitter.
type Record struct {
	UserID               uint
	MemeUUID             string
	Amount               float64
	Status               string
	ErrorMessage         string
	WalletAddress        string
	TransactionSignature string
}

// Recorder appends payment attempt entries to the transaction ledger.
type Recorder interface {
	Record(ctx context.Context, rec Record) error
}

// Submitter drives one native-asset transfer per call: check preconditions,
// connect, sign, broadcast, confirm, and log every step to the ledger.
type Submitter struct {
	manager  *Manager
	wallet   Wallet
	recorder Recorder
	cfg      Config
}

// NewSubmitter creates a payment submitter. wallet may be nil, which is
// reported as the extension being missing on the first send.
func NewSubmitter(manager *Manager, wallet Wallet, recorder Recorder, cfg Config) *Submitter {
	return &Submitter{
		manager:  manager,
		wallet:   wallet,
		recorder: recorder,
		cfg:      cfg,
	}
}

// SendTuzemoonPayment runs the full payment attempt for a meme. The returned
// Attempt always reflects the terminal state; on failure err carries the
// categorized cause and the ledger holds a failed entry.
func (s *Submitter) SendTuzemoonPayment(ctx context.Context, userID uint, memeUUID string) (*Attempt, error) {
	a := &Attempt{
		State:    StateIdle,
		UserID:   userID,
		MemeUUID: memeUUID,
		Amount:   s.cfg.TuzemoonCost,
	}

	if userID == 0 {
		// No ledger entry here: without a user there is no row context.
		return a, a.fail(newError(KindNotAuthenticated, "payment", errors.New("no active session")))
	}

	if s.wallet == nil {
		err := newError(KindWalletMissing, "payment", errors.New("phantom wallet not installed"))
		s.recordFailed(ctx, a, err)
		return a, a.fail(err)
	}
	a.State = StateWalletChecked

	conn, err := s.manager.Connect(ctx)
	if err != nil {
		s.recordFailed(ctx, a, err)
		return a, a.fail(err)
	}
	defer conn.Close()
	a.State = StateConnected

	payer, err := s.wallet.Connect(ctx)
	if err != nil {
		err = wrapKind(err, KindWalletMissing, "wallet connect")
		s.recordFailed(ctx, a, err)
		return a, a.fail(err)
	}
	a.WalletAddress = payer.String()

	recipient, err := solana.PublicKeyFromBase58(s.cfg.RecipientAddress)
	if err != nil {
		err = newError(KindUnknown, "recipient address", err)
		s.recordFailed(ctx, a, err)
		return a, a.fail(err)
	}

	// The pending entry goes in before the signature request so a rejected
	// prompt still leaves an audit trail with the wallet address.
	s.record(ctx, a, models.TxStatusPending, "", "")

	blockhash, err := conn.Client().GetLatestBlockhash(ctx, rpc.CommitmentFinalized)
	if err != nil {
		err = wrapKind(err, KindConnectivity, "latest blockhash")
		s.recordFailed(ctx, a, err)
		return a, a.fail(err)
	}

	lamports := uint64(math.Round(s.cfg.TuzemoonCost * float64(solana.LAMPORTS_PER_SOL)))
	tx, err := solana.NewTransaction(
		[]solana.Instruction{
			system.NewTransferInstruction(lamports, payer, recipient).Build(),
		},
		blockhash.Value.Blockhash,
		solana.TransactionPayer(payer),
	)
	if err != nil {
		err = newError(KindUnknown, "build transaction", err)
		s.recordFailed(ctx, a, err)
		return a, a.fail(err)
	}

	signed, err := s.wallet.SignTransaction(ctx, tx)
	if err != nil {
		err = wrapKind(err, KindUserRejected, "sign transaction")
		s.recordFailed(ctx, a, err)
		return a, a.fail(err)
	}
	a.State = StateSigned

	sig, err := conn.Client().SendTransactionWithOpts(ctx, signed, rpc.TransactionOpts{
		SkipPreflight:       false,
		PreflightCommitment: rpc.CommitmentConfirmed,
	})
	if err != nil {
		err = classifySendError("send transaction", err)
		s.recordFailed(ctx, a, err)
		return a, a.fail(err)
	}
	a.Signature = sig.String()
	a.State = StateBroadcast

	if err := s.awaitConfirmation(ctx, conn.Client(), sig, blockhash.Value.LastValidBlockHeight); err != nil {
		s.recordFailed(ctx, a, err)
		return a, a.fail(err)
	}
	a.State = StateConfirmed

	s.record(ctx, a, models.TxStatusCompleted, "", a.Signature)
	return a, nil
}

// awaitConfirmation polls signature statuses until the transaction reaches
// the confirmed commitment, errors on chain, or the blockhash expires past
// its last valid height.
func (s *Submitter) awaitConfirmation(ctx context.Context, client RPCClient, sig solana.Signature, lastValidBlockHeight uint64) error {
	for {
		res, err := client.GetSignatureStatuses(ctx, true, sig)
		if err != nil {
			if ctx.Err() != nil {
				return newError(KindTimeout, "confirm transaction", ctx.Err())
			}
			log.Printf("solana: signature status poll failed: %v", err)
		} else if len(res.Value) > 0 && res.Value[0] != nil {
			st := res.Value[0]
			if st.Err != nil {
				return newError(KindTransactionFailed, "confirm transaction",
					fmt.Errorf("transaction failed on chain: %v", st.Err))
			}
			switch st.ConfirmationStatus {
			case rpc.ConfirmationStatusConfirmed, rpc.ConfirmationStatusFinalized:
				return nil
			}
		}

		height, err := client.GetBlockHeight(ctx, s.cfg.Commitment)
		if err == nil && height > lastValidBlockHeight {
			return newError(KindTimeout, "confirm transaction",
				fmt.Errorf("blockhash expired at height %d", lastValidBlockHeight))
		}

		select {
		case <-ctx.Done():
			return newError(KindTimeout, "confirm transaction", ctx.Err())
		case <-timeAfter(s.cfg.ConfirmPollInterval):
		}
	}
}

func (s *Submitter) record(ctx context.Context, a *Attempt, status, errMsg, signature string) {
	if s.recorder == nil {
		return
	}
	rec := Record{
		UserID:               a.UserID,
		MemeUUID:             a.MemeUUID,
		Amount:               a.Amount,
		Status:               status,
		ErrorMessage:         errMsg,
		WalletAddress:        a.WalletAddress,
		TransactionSignature: signature,
	}
	if err := s.recorder.Record(ctx, rec); err != nil {
		log.Printf("solana: failed to record %s ledger entry for meme %s: %v", status, a.MemeUUID, err)
	}
}

func (s *Submitter) recordFailed(ctx context.Context, a *Attempt, cause error) {
	s.record(ctx, a, models.TxStatusFailed, cause.Error(), "")
}

// wrapKind keeps an existing categorized error as-is and tags everything else
// with the kind of the step that failed.
func wrapKind(err error, kind ErrorKind, op string) error {
	var pe *Error
	if errors.As(err, &pe) {
		return err
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return newError(KindTimeout, op, err)
	}
	return newError(kind, op, err)
}
