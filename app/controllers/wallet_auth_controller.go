package controllers

import (
	"errors"
	"log"

	"github.com/gofiber/fiber/v2"

	"github.com/memecahq/memeca/internal/pkg/usercontext"
	"github.com/memecahq/memeca/internal/pkg/walletauth"
)

type walletAuthRequest struct {
	Action        string  `json:"action" validate:"required,oneof=generate-nonce verify-signature"`
	WalletAddress string  `json:"walletAddress"`
	Signature     string  `json:"signature"`
	Nonce         string  `json:"nonce"`
	MemeID        string  `json:"memeId"`
	Amount        float64 `json:"amount"`
}

var walletAuthService *walletauth.Service

// SetWalletAuthService wires the wallet auth collaborator; called during
// router setup and by tests.
func SetWalletAuthService(svc *walletauth.Service) {
	walletAuthService = svc
}

// HandleWalletAuth serves both wallet auth actions: nonce issuance and
// challenge/response signature verification.
func HandleWalletAuth(c *fiber.Ctx) error {
	var req walletAuthRequest
	if err := parseAndValidate(c, &req); err != nil {
		return badRequest(c, "Invalid request")
	}

	switch req.Action {
	case "generate-nonce":
		if req.WalletAddress == "" {
			return badRequest(c, "Invalid request")
		}

		nonce, err := walletAuthService.GenerateNonce(c.Context(), req.WalletAddress)
		if err != nil {
			log.Printf("wallet auth: nonce generation failed for %s: %v", req.WalletAddress, err)
			return badRequest(c, "Failed to generate nonce")
		}
		return c.JSON(fiber.Map{"nonce": nonce})

	case "verify-signature":
		if req.WalletAddress == "" || req.Signature == "" || req.Nonce == "" {
			return badRequest(c, "Invalid request")
		}

		err := walletAuthService.VerifySignature(c.Context(), walletauth.VerifyInput{
			WalletAddress: req.WalletAddress,
			Nonce:         req.Nonce,
			Signature:     req.Signature,
			UserID:        usercontext.GetUserID(c),
			MemeUUID:      req.MemeID,
			Amount:        req.Amount,
		})
		switch {
		case err == nil:
			return c.JSON(fiber.Map{
				"success": true,
				"message": "Wallet verified successfully",
			})
		case errors.Is(err, walletauth.ErrNonceInvalid):
			return badRequest(c, "Invalid or expired nonce")
		case errors.Is(err, walletauth.ErrSignatureInvalid):
			return badRequest(c, "Invalid signature")
		default:
			log.Printf("wallet auth: verification failed for %s: %v", req.WalletAddress, err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Failed to verify signature",
			})
		}
	}

	return badRequest(c, "Invalid request")
}
