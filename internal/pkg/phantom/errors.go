package phantom

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// ErrorKind categorizes a payment failure at the point where it happens, so
// user-facing messages are chosen from the kind instead of matching substrings
// of raw error text.
type ErrorKind int

const (
	KindUnknown ErrorKind = iota
	KindNotAuthenticated
	KindWalletMissing
	KindConnectivity
	KindTimeout
	KindUserRejected
	KindInsufficientFunds
	KindTransactionFailed
)

func (k ErrorKind) String() string {
	switch k {
	case KindNotAuthenticated:
		return "not_authenticated"
	case KindWalletMissing:
		return "wallet_missing"
	case KindConnectivity:
		return "connectivity"
	case KindTimeout:
		return "timeout"
	case KindUserRejected:
		return "user_rejected"
	case KindInsufficientFunds:
		return "insufficient_funds"
	case KindTransactionFailed:
		return "transaction_failed"
	default:
		return "unknown"
	}
}

// Error is a categorized payment pipeline failure.
type Error struct {
	Kind ErrorKind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}
	return e.Op
}

func (e *Error) Unwrap() error {
	return e.Err
}

func newError(kind ErrorKind, op string, err error) *Error {
	return &Error{Kind: kind, Op: op, Err: err}
}

// KindOf extracts the kind from any error in the chain. Context deadline
// errors from RPC round trips fold into the timeout kind.
func KindOf(err error) ErrorKind {
	var pe *Error
	if errors.As(err, &pe) {
		return pe.Kind
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return KindTimeout
	}
	return KindUnknown
}

// classifySendError maps a broadcast/preflight failure from the RPC node onto
// a kind. The node reports insufficiency only as message text, so this is the
// one boundary where the text is inspected; everything downstream works on
// the kind.
func classifySendError(op string, err error) *Error {
	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "insufficient"):
		return newError(KindInsufficientFunds, op, err)
	case strings.Contains(msg, "blockhash not found"):
		return newError(KindTimeout, op, err)
	default:
		return newError(KindTransactionFailed, op, err)
	}
}

// UserMessage renders the human-readable summary for a pipeline error. Raw
// internal error text is never returned to end users.
func UserMessage(err error) string {
	switch KindOf(err) {
	case KindNotAuthenticated:
		return "User not authenticated"
	case KindWalletMissing:
		return "Phantom wallet is not installed"
	case KindConnectivity:
		return "Network connection failed. Please check your internet connection and try again."
	case KindTimeout:
		return "Payment process failed. The network is responding slowly. Please try again."
	case KindUserRejected:
		return "Payment process failed. The transaction was rejected. Please try again."
	case KindInsufficientFunds:
		return "Payment process failed. Insufficient funds in your wallet."
	default:
		return "Payment process failed. Please check your connection and try again."
	}
}
