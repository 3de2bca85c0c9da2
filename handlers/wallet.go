// handlers/wallet.go
package handlers

import (
	"github.com/gofiber/fiber/v2"

	"rap-battle-platform/middleware"
	"rap-battle-platform/services"
)

func SetupWalletRoutes(app *fiber.App, walletService *services.WalletService, arcService *services.ArcService) {
	// 🔐 Wallet routes require user context
	secured := app.Group("/", middleware.UserContextMiddleware())

	secured.Get("/wallet", walletService.GetWallet)
	secured.Get("/wallet/transactions", walletService.GetTransactions)
	secured.Post("/wallet/daily-bonus", walletService.ClaimDailyBonus)

	// SSE reward stream (query-string token auth for EventSource)
	app.Get("/rewards/stream", middleware.SSEAuthMiddleware(), walletService.StreamRewardsSSE)

	// Simulated Arc chain
	secured.Get("/arc/wallet", arcService.GetArcWallet)
	secured.Get("/arc/transactions", arcService.GetArcTransactions)
	secured.Post("/arc/transfer", arcService.TransferUSDC)
}
