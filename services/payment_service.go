// services/payment_service.go
package services

import (
	"encoding/json"
	"errors"
	"log"
	"os"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stripe/stripe-go/v79"
	"github.com/stripe/stripe-go/v79/checkout/session"
	"github.com/stripe/stripe-go/v79/webhook"
	"gorm.io/gorm"

	"rap-battle-platform/models"
)

type PaymentService struct {
	DB     *gorm.DB
	Wallet *WalletService
}

func NewPaymentService(db *gorm.DB, wallet *WalletService) *PaymentService {
	stripe.Key = os.Getenv("STRIPE_SECRET_KEY")
	return &PaymentService{DB: db, Wallet: wallet}
}

// FindCreditPack looks up a coin pack by its catalog ID.
func FindCreditPack(id string) (*models.CreditPack, bool) {
	for i := range models.CreditPacks {
		if models.CreditPacks[i].ID == id {
			return &models.CreditPacks[i], true
		}
	}
	return nil, false
}

// FindSubscriptionPlan looks up a plan by its catalog ID.
func FindSubscriptionPlan(id string) (*models.SubscriptionPlan, bool) {
	for i := range models.SubscriptionPlans {
		if models.SubscriptionPlans[i].ID == id {
			return &models.SubscriptionPlans[i], true
		}
	}
	return nil, false
}

// GetCatalog returns the purchasable packs and plans.
func (s *PaymentService) GetCatalog(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"credit_packs": models.CreditPacks,
		"plans":        models.SubscriptionPlans,
	})
}

// CreateCheckout opens a Stripe Checkout session for a one-time coin pack.
func (s *PaymentService) CreateCheckout(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(string)

	var req struct {
		PackID string `json:"pack_id"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	pack, ok := FindCreditPack(req.PackID)
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "unknown credit pack"})
	}

	frontend := os.Getenv("FRONTEND_URL")
	params := &stripe.CheckoutSessionParams{
		Mode: stripe.String(string(stripe.CheckoutSessionModePayment)),
		LineItems: []*stripe.CheckoutSessionLineItemParams{{
			PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
				Currency:   stripe.String("usd"),
				UnitAmount: stripe.Int64(pack.PriceUSD),
				ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
					Name: stripe.String(pack.Name),
				},
			},
			Quantity: stripe.Int64(1),
		}},
		SuccessURL: stripe.String(frontend + "/wallet?checkout=success"),
		CancelURL:  stripe.String(frontend + "/wallet?checkout=cancel"),
	}
	params.AddMetadata("user_id", userID)
	params.AddMetadata("pack_id", pack.ID)

	sess, err := session.New(params)
	if err != nil {
		log.Printf("❌ Stripe checkout session failed for %s: %v", userID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to create checkout session"})
	}

	return c.JSON(fiber.Map{"checkout_url": sess.URL, "session_id": sess.ID})
}

// CreateSubscriptionCheckout opens a Stripe Checkout session for a recurring
// plan.
func (s *PaymentService) CreateSubscriptionCheckout(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(string)

	var req struct {
		PlanID string `json:"plan_id"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	plan, ok := FindSubscriptionPlan(req.PlanID)
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "unknown plan"})
	}

	var existing models.Subscription
	if err := s.DB.Where("user_id = ? AND status = ?", userID, models.SubscriptionStatusActive).
		First(&existing).Error; err == nil {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "you already have an active subscription"})
	}

	frontend := os.Getenv("FRONTEND_URL")
	params := &stripe.CheckoutSessionParams{
		Mode: stripe.String(string(stripe.CheckoutSessionModeSubscription)),
		LineItems: []*stripe.CheckoutSessionLineItemParams{{
			PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
				Currency:   stripe.String("usd"),
				UnitAmount: stripe.Int64(plan.PriceUSD),
				Recurring: &stripe.CheckoutSessionLineItemPriceDataRecurringParams{
					Interval: stripe.String("month"),
				},
				ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
					Name: stripe.String(plan.Name + " subscription"),
				},
			},
			Quantity: stripe.Int64(1),
		}},
		SuccessURL: stripe.String(frontend + "/wallet?subscription=success"),
		CancelURL:  stripe.String(frontend + "/wallet?subscription=cancel"),
	}
	params.AddMetadata("user_id", userID)
	params.AddMetadata("plan_id", plan.ID)
	params.SubscriptionData = &stripe.CheckoutSessionSubscriptionDataParams{}
	params.SubscriptionData.AddMetadata("user_id", userID)
	params.SubscriptionData.AddMetadata("plan_id", plan.ID)

	sess, err := session.New(params)
	if err != nil {
		log.Printf("❌ Stripe subscription checkout failed for %s: %v", userID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to create checkout session"})
	}

	return c.JSON(fiber.Map{"checkout_url": sess.URL, "session_id": sess.ID})
}

// GetMySubscription returns the user's subscription, or 404 if none.
func (s *PaymentService) GetMySubscription(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(string)

	var sub models.Subscription
	if err := s.DB.Where("user_id = ?", userID).First(&sub).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "no subscription"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "DB error"})
	}

	return c.JSON(sub)
}

// --- Webhook ---

// HandleStripeWebhook verifies and processes Stripe events. Duplicate
// deliveries are detected by event ID and acknowledged with 200 without
// reprocessing. Processing failures return 500 so Stripe retries.
func (s *PaymentService) HandleStripeWebhook(c *fiber.Ctx) error {
	secret := os.Getenv("STRIPE_WEBHOOK_SECRET")

	event, err := webhook.ConstructEvent(c.Body(), c.Get("Stripe-Signature"), secret)
	if err != nil {
		log.Printf("🚫 Stripe webhook signature verification failed: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid signature"})
	}

	// Idempotency: seen this event before → acknowledge and do nothing
	var seen int64
	s.DB.Model(&models.WebhookEvent{}).Where("event_id = ?", event.ID).Count(&seen)
	if seen > 0 {
		log.Printf("♻️ Duplicate Stripe event %s, skipping", event.ID)
		return c.JSON(fiber.Map{"received": true, "duplicate": true})
	}

	switch event.Type {
	case "checkout.session.completed":
		err = s.handleCheckoutCompleted(event)
	case "invoice.paid":
		err = s.handleInvoicePaid(event)
	case "customer.subscription.deleted":
		err = s.handleSubscriptionDeleted(event)
	default:
		log.Printf("ℹ️ Unhandled Stripe event type: %s", event.Type)
	}

	if err != nil {
		log.Printf("❌ Failed to process Stripe event %s (%s): %v", event.ID, event.Type, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "processing failed"})
	}

	// Record only after successful processing so retries can succeed
	record := models.WebhookEvent{
		ID:        uuid.NewString(),
		EventID:   event.ID,
		EventType: string(event.Type),
	}
	if err := s.DB.Create(&record).Error; err != nil {
		log.Printf("⚠️ Failed to record webhook event %s: %v", event.ID, err)
	}

	return c.JSON(fiber.Map{"received": true})
}

func (s *PaymentService) handleCheckoutCompleted(event stripe.Event) error {
	var sess stripe.CheckoutSession
	if err := json.Unmarshal(event.Data.Raw, &sess); err != nil {
		return err
	}

	userID := sess.Metadata["user_id"]
	if userID == "" {
		log.Printf("⚠️ Checkout session %s has no user_id metadata", sess.ID)
		return nil
	}

	// One-time coin pack purchase
	if packID := sess.Metadata["pack_id"]; packID != "" {
		pack, ok := FindCreditPack(packID)
		if !ok {
			log.Printf("⚠️ Checkout session %s references unknown pack %s", sess.ID, packID)
			return nil
		}
		_, err := s.Wallet.Credit(userID, pack.Coins, models.TxTypeCreditPurchase, sess.ID,
			"Purchased "+pack.Name)
		if err != nil {
			return err
		}
		log.Printf("💰 Credited %d coins to %s (%s)", pack.Coins, userID, pack.Name)
	}

	// Subscription checkout: create the local subscription record
	if planID := sess.Metadata["plan_id"]; planID != "" && sess.Subscription != nil {
		if err := s.activateSubscription(userID, planID, sess.Subscription.ID); err != nil {
			return err
		}
	}

	if sess.Customer != nil {
		s.DB.Model(&models.User{}).Where("id = ?", userID).
			Update("stripe_customer_id", sess.Customer.ID)
	}

	return nil
}

func (s *PaymentService) activateSubscription(userID, planID, stripeSubID string) error {
	plan, ok := FindSubscriptionPlan(planID)
	if !ok {
		log.Printf("⚠️ Unknown plan %s in subscription checkout", planID)
		return nil
	}

	periodEnd := time.Now().AddDate(0, 1, 0)
	sub := models.Subscription{
		UserID:               userID,
		PlanID:               plan.ID,
		StripeSubscriptionID: stripeSubID,
		Status:               models.SubscriptionStatusActive,
		CurrentPeriodEnd:     &periodEnd,
	}

	var existing models.Subscription
	err := s.DB.Where("user_id = ?", userID).First(&existing).Error
	switch {
	case err == nil:
		existing.PlanID = sub.PlanID
		existing.StripeSubscriptionID = stripeSubID
		existing.Status = models.SubscriptionStatusActive
		existing.CurrentPeriodEnd = &periodEnd
		existing.CanceledAt = nil
		if err := s.DB.Save(&existing).Error; err != nil {
			return err
		}
	case errors.Is(err, gorm.ErrRecordNotFound):
		sub.ID = uuid.NewString()
		if err := s.DB.Create(&sub).Error; err != nil {
			return err
		}
	default:
		return err
	}

	// First month's coins arrive with activation
	_, err = s.Wallet.Credit(userID, plan.MonthlyCoins, models.TxTypeSubscriptionBonus, stripeSubID,
		plan.Name+" monthly coins")
	if err != nil {
		return err
	}

	log.Printf("⭐ Activated %s subscription for %s", plan.ID, userID)
	return nil
}

func (s *PaymentService) handleInvoicePaid(event stripe.Event) error {
	var invoice stripe.Invoice
	if err := json.Unmarshal(event.Data.Raw, &invoice); err != nil {
		return err
	}
	if invoice.Subscription == nil {
		return nil
	}
	// The first invoice is handled by checkout.session.completed
	if invoice.BillingReason == stripe.InvoiceBillingReasonSubscriptionCreate {
		return nil
	}

	var sub models.Subscription
	if err := s.DB.Where("stripe_subscription_id = ?", invoice.Subscription.ID).
		First(&sub).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			log.Printf("⚠️ invoice.paid for unknown subscription %s", invoice.Subscription.ID)
			return nil
		}
		return err
	}

	plan, ok := FindSubscriptionPlan(sub.PlanID)
	if !ok {
		return nil
	}

	periodEnd := time.Now().AddDate(0, 1, 0)
	sub.Status = models.SubscriptionStatusActive
	sub.CurrentPeriodEnd = &periodEnd
	if err := s.DB.Save(&sub).Error; err != nil {
		return err
	}

	_, err := s.Wallet.Credit(sub.UserID, plan.MonthlyCoins, models.TxTypeSubscriptionBonus, invoice.ID,
		plan.Name+" monthly coins")
	if err != nil {
		return err
	}

	log.Printf("🔄 Renewed %s subscription for %s (+%d coins)", plan.ID, sub.UserID, plan.MonthlyCoins)
	return nil
}

func (s *PaymentService) handleSubscriptionDeleted(event stripe.Event) error {
	var stripeSub stripe.Subscription
	if err := json.Unmarshal(event.Data.Raw, &stripeSub); err != nil {
		return err
	}

	now := time.Now()
	result := s.DB.Model(&models.Subscription{}).
		Where("stripe_subscription_id = ?", stripeSub.ID).
		Updates(map[string]interface{}{
			"status":      models.SubscriptionStatusCanceled,
			"canceled_at": &now,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected > 0 {
		log.Printf("🛑 Canceled subscription %s", stripeSub.ID)
	}
	return nil
}
