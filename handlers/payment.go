// handlers/payment.go
package handlers

import (
	"github.com/gofiber/fiber/v2"

	"rap-battle-platform/middleware"
	"rap-battle-platform/services"
)

func SetupPaymentRoutes(app *fiber.App, paymentService *services.PaymentService) {
	// 🔓 Public routes
	app.Get("/payments/catalog", paymentService.GetCatalog)

	// Stripe webhook — authenticated by signature, not by session
	app.Post("/webhooks/stripe", paymentService.HandleStripeWebhook)

	// 🔐 Authenticated routes
	secured := app.Group("/", middleware.UserContextMiddleware())
	secured.Post("/payments/checkout", paymentService.CreateCheckout)
	secured.Post("/payments/subscribe", paymentService.CreateSubscriptionCheckout)
	secured.Get("/payments/subscription", paymentService.GetMySubscription)
}
