package router

import (
	"log"

	"github.com/gofiber/fiber/v2"

	"github.com/memecahq/memeca/app/controllers"
	"github.com/memecahq/memeca/internal/pkg/database"
	"github.com/memecahq/memeca/internal/pkg/middleware"
	"github.com/memecahq/memeca/internal/pkg/phantom"
	"github.com/memecahq/memeca/internal/pkg/session"
	"github.com/memecahq/memeca/internal/pkg/solscan"
	"github.com/memecahq/memeca/internal/pkg/tuzemoon"
	"github.com/memecahq/memeca/internal/pkg/walletauth"
)

type HttpRouter struct {
}

func (h HttpRouter) InstallRouter(app *fiber.App) {
	// init session
	session.NewSessionStore()

	// Apply UserContext middleware globally as first middleware
	app.Use(middleware.UserContextMiddleware)

	initializePaymentServices()
}

func NewHttpRouter() *HttpRouter {
	return &HttpRouter{}
}

// initializePaymentServices builds the wallet auth, ledger, verifier, and
// submitter stack on top of the global DB handle and wires it into the
// controllers.
func initializePaymentServices() {
	db := database.GetDB()

	ledger := tuzemoon.NewService(tuzemoon.NewRepository(db))
	controllers.SetLedgerService(ledger)

	authSvc := walletauth.NewService(walletauth.NewNonceStore(db), ledger, walletauth.ConfigFromEnv())
	controllers.SetWalletAuthService(authSvc)

	verifier := tuzemoon.NewVerifier(solscan.NewClientFromEnv(), tuzemoon.NewRepository(db), tuzemoon.VerifierConfigFromEnv())
	controllers.SetPaymentVerifier(verifier)

	cfg := phantom.ConfigFromEnv()
	var wallet phantom.Wallet
	kw, err := phantom.KeypairWalletFromEnv()
	if err != nil {
		log.Printf("router: payer wallet unavailable: %v", err)
	} else if kw != nil {
		wallet = kw
	}
	submitter := phantom.NewSubmitter(phantom.NewManager(cfg), wallet, controllers.NewLedgerRecorder(ledger), cfg)
	controllers.SetPaymentSubmitter(submitter)
}
