package router

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/limiter"

	"github.com/memecahq/memeca/app/controllers"
	"github.com/memecahq/memeca/internal/pkg/middleware"
)

type ApiRouter struct {
}

func (h ApiRouter) InstallRouter(app *fiber.App) {
	api := app.Group("/api", limiter.New(), cors.New())
	api.Get("/", func(ctx *fiber.Ctx) error {
		return ctx.Status(fiber.StatusOK).JSON(fiber.Map{
			"message": "Hello from api",
		})
	})

	// public routes
	api.Post("/auth/register", controllers.HandleRegister)
	api.Post("/auth/login", controllers.HandleLogin)
	api.Post("/wallet-auth", controllers.HandleWalletAuth)
	api.Get("/memes", controllers.HandleListMemes)
	api.Get("/memes/featured", controllers.HandleListFeaturedMemes)
	api.Get("/memes/:uuid", controllers.HandleGetMeme)

	// session-protected routes
	auth := api.Group("", middleware.RequireAPISessionAuth)
	auth.Post("/auth/logout", controllers.HandleLogout)
	auth.Get("/auth/me", controllers.HandleMe)
	auth.Post("/memes", controllers.HandleCreateMeme)
	auth.Delete("/memes/:uuid", controllers.HandleDeleteMeme)
	auth.Post("/memes/:uuid/like", controllers.HandleToggleLike)
	auth.Post("/memes/:uuid/watchlist", controllers.HandleToggleWatchlist)
	auth.Get("/watchlist", controllers.HandleGetWatchlist)
	auth.Post("/memes/:uuid/tuzemoon", controllers.HandleTuzemoonPayment)
	auth.Post("/log-transaction", controllers.HandleLogTransaction)
	auth.Post("/verify-solana-payment", controllers.HandleVerifySolanaPayment)

	// admin routes
	admin := api.Group("/admin", middleware.RequireAPIAdmin)
	admin.Get("/transactions", controllers.HandleListTransactionLogs)
}

func NewApiRouter() *ApiRouter {
	return &ApiRouter{}
}
