package controllers

import (
	"context"
	"errors"
	"log"

	"github.com/gofiber/fiber/v2"

	"github.com/memecahq/memeca/app/repository"
	"github.com/memecahq/memeca/internal/pkg/phantom"
	"github.com/memecahq/memeca/internal/pkg/solscan"
	"github.com/memecahq/memeca/internal/pkg/tuzemoon"
	"github.com/memecahq/memeca/internal/pkg/usercontext"
)

type verifyPaymentRequest struct {
	TransactionSignature string  `json:"transaction_signature" validate:"required"`
	ExpectedAmount       float64 `json:"expected_amount" validate:"required,gt=0"`
	MemeID               string  `json:"meme_id" validate:"required"`
}

var (
	paymentVerifier  *tuzemoon.Verifier
	paymentSubmitter *phantom.Submitter
)

// SetPaymentVerifier wires the server-side payment verifier.
func SetPaymentVerifier(v *tuzemoon.Verifier) {
	paymentVerifier = v
}

// SetPaymentSubmitter wires the payment submitter used by the server-driven
// payment endpoint.
func SetPaymentSubmitter(s *phantom.Submitter) {
	paymentSubmitter = s
}

// HandleVerifySolanaPayment re-validates a submitted transaction against the
// indexer and credits the featured status.
func HandleVerifySolanaPayment(c *fiber.Ctx) error {
	var req verifyPaymentRequest
	if err := parseAndValidate(c, &req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   "invalid verification payload",
			"details": "Payment verification failed",
		})
	}

	res, err := paymentVerifier.VerifyPayment(c.Context(), tuzemoon.VerifyRequest{
		TransactionSignature: req.TransactionSignature,
		ExpectedAmount:       req.ExpectedAmount,
		MemeUUID:             req.MemeID,
		UserID:               usercontext.GetUserID(c),
	})
	if err != nil {
		log.Printf("payment: verification of %s failed: %v", req.TransactionSignature, err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   verificationErrorMessage(err),
			"details": "Payment verification failed",
		})
	}

	if res.AlreadyVerified {
		return c.JSON(fiber.Map{
			"success": true,
			"message": "Payment already verified",
		})
	}
	return c.JSON(fiber.Map{
		"success": true,
		"message": "Payment verified and meme updated successfully",
	})
}

// verificationErrorMessage maps verifier failures to user-facing summaries;
// raw internal error text stays in the logs.
func verificationErrorMessage(err error) string {
	var apiErr *solscan.APIError
	switch {
	case errors.As(err, &apiErr):
		return "Indexer is unavailable, please try again later"
	case errors.Is(err, tuzemoon.ErrTransactionFailed):
		return "Transaction failed or not found"
	case errors.Is(err, tuzemoon.ErrAmountMismatch):
		return "Transaction amount does not match the expected payment"
	default:
		return "Payment verification failed"
	}
}

// HandleTuzemoonPayment runs the full payment attempt for a meme with the
// server-side wallet and returns the transaction signature for verification.
func HandleTuzemoonPayment(c *fiber.Ctx) error {
	userID := usercontext.GetUserID(c)

	meme, err := repository.GetGlobalFactory().GetMemeRepository().GetByUUID(c.Params("uuid"))
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"success": false,
			"error":   "meme not found",
		})
	}

	attempt, err := paymentSubmitter.SendTuzemoonPayment(c.Context(), userID, meme.UUID)
	if err != nil {
		return c.Status(paymentStatusCode(err)).JSON(fiber.Map{
			"success": false,
			"error":   phantom.UserMessage(err),
		})
	}

	return c.JSON(fiber.Map{
		"success":   true,
		"signature": attempt.Signature,
	})
}

func paymentStatusCode(err error) int {
	switch phantom.KindOf(err) {
	case phantom.KindNotAuthenticated:
		return fiber.StatusUnauthorized
	case phantom.KindConnectivity, phantom.KindTimeout:
		return fiber.StatusBadGateway
	default:
		return fiber.StatusBadRequest
	}
}

// ledgerRecorder adapts the tuzemoon ledger to the submitter's Recorder.
type ledgerRecorder struct {
	svc *tuzemoon.Service
}

// NewLedgerRecorder wraps the ledger service for submitter wiring.
func NewLedgerRecorder(svc *tuzemoon.Service) phantom.Recorder {
	return ledgerRecorder{svc: svc}
}

func (r ledgerRecorder) Record(ctx context.Context, rec phantom.Record) error {
	_, err := r.svc.LogTransaction(ctx, tuzemoon.LogInput{
		UserID:               rec.UserID,
		MemeUUID:             rec.MemeUUID,
		Amount:               rec.Amount,
		Status:               rec.Status,
		ErrorMessage:         rec.ErrorMessage,
		WalletAddress:        rec.WalletAddress,
		TransactionSignature: rec.TransactionSignature,
	})
	return err
}
