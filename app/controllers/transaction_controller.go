package controllers

import (
	"log"

	"github.com/gofiber/fiber/v2"

	"github.com/memecahq/memeca/internal/pkg/tuzemoon"
	"github.com/memecahq/memeca/internal/pkg/usercontext"
)

type logTransactionRequest struct {
	MemeID               string  `json:"meme_id" validate:"required"`
	Amount               float64 `json:"amount"`
	TransactionStatus    string  `json:"transaction_status" validate:"required"`
	ErrorMessage         string  `json:"error_message"`
	WalletAddress        string  `json:"wallet_address"`
	TransactionSignature string  `json:"transaction_signature"`
}

var ledgerService *tuzemoon.Service

// SetLedgerService wires the transaction ledger collaborator.
func SetLedgerService(svc *tuzemoon.Service) {
	ledgerService = svc
}

// HandleLogTransaction appends a payment attempt entry to the ledger. The
// user always comes from the session, never the payload.
func HandleLogTransaction(c *fiber.Ctx) error {
	var req logTransactionRequest
	if err := parseAndValidate(c, &req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "invalid transaction log payload",
		})
	}

	row, err := ledgerService.LogTransaction(c.Context(), tuzemoon.LogInput{
		UserID:               usercontext.GetUserID(c),
		MemeUUID:             req.MemeID,
		Amount:               req.Amount,
		Status:               req.TransactionStatus,
		ErrorMessage:         req.ErrorMessage,
		WalletAddress:        req.WalletAddress,
		TransactionSignature: req.TransactionSignature,
	})
	if err != nil {
		log.Printf("ledger: log-transaction failed: %v", err)
		if row != nil {
			// The log row exists but the grant upsert failed.
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"success": false,
				"message": "Transaction logged but payment update failed",
			})
		}
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "failed to log transaction",
		})
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    row,
		"message": "Transaction processed successfully",
	})
}

// HandleListTransactionLogs returns the newest ledger entries. Admin only.
func HandleListTransactionLogs(c *fiber.Ctx) error {
	rows, err := ledgerService.RecentLogs(c.Context(), c.QueryInt("limit", 100))
	if err != nil {
		log.Printf("ledger: listing transaction logs failed: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"message": "failed to list transaction logs",
		})
	}
	return c.JSON(fiber.Map{
		"success": true,
		"data":    rows,
	})
}
