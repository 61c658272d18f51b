// internal/services/payment_gateway.go
package services

import (
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/stripe/stripe-go/v74"
	"github.com/stripe/stripe-go/v74/checkout/session"
	"github.com/stripe/stripe-go/v74/webhook"

	"github.com/bizzyhq/bizzy-backend/internal/models"
)

// CheckoutInput describes one payment link to create at the gateway.
type CheckoutInput struct {
	OrderID       string
	Amount        decimal.Decimal
	Currency      string
	Description   string
	CustomerEmail string
	SuccessURL    string
	CancelURL     string
	Metadata      map[string]string
}

// CheckoutSession is the gateway's answer: a hosted payment page the
// merchant forwards to their customer.
type CheckoutSession struct {
	Reference  string
	PaymentURL string
	Raw        map[string]interface{}
}

// GatewayEvent is a normalized webhook notification.
type GatewayEvent struct {
	OrderID     string
	Reference   string
	Status      models.PaymentStatus
	PaymentType string
	Raw         map[string]interface{}
}

// Gateway abstracts the payment provider so the service layer and its
// tests never touch provider SDKs directly.
type Gateway interface {
	CreateCheckout(input *CheckoutInput) (*CheckoutSession, error)
	ParseWebhook(payload []byte, signature string) (*GatewayEvent, error)
	GetStatus(reference string) (models.PaymentStatus, error)
}

// StripeGateway implements Gateway on Stripe Checkout.
type StripeGateway struct {
	webhookSecret string
}

func NewStripeGateway(secretKey, webhookSecret string) *StripeGateway {
	stripe.Key = secretKey
	return &StripeGateway{webhookSecret: webhookSecret}
}

func (g *StripeGateway) CreateCheckout(input *CheckoutInput) (*CheckoutSession, error) {
	// Stripe amounts are in minor units
	amountMinor := input.Amount.Mul(decimal.NewFromInt(100)).IntPart()

	params := &stripe.CheckoutSessionParams{
		Mode:              stripe.String(string(stripe.CheckoutSessionModePayment)),
		ClientReferenceID: stripe.String(input.OrderID),
		SuccessURL:        stripe.String(input.SuccessURL),
		CancelURL:         stripe.String(input.CancelURL),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
					Currency:   stripe.String(input.Currency),
					UnitAmount: stripe.Int64(amountMinor),
					ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
						Name: stripe.String(input.Description),
					},
				},
				Quantity: stripe.Int64(1),
			},
		},
	}
	if input.CustomerEmail != "" {
		params.CustomerEmail = stripe.String(input.CustomerEmail)
	}
	params.AddMetadata("order_id", input.OrderID)
	for k, v := range input.Metadata {
		params.AddMetadata(k, v)
	}

	sess, err := session.New(params)
	if err != nil {
		return nil, fmt.Errorf("failed to create checkout session: %w", err)
	}

	raw := map[string]interface{}{
		"id":             sess.ID,
		"url":            sess.URL,
		"status":         string(sess.Status),
		"payment_status": string(sess.PaymentStatus),
	}

	return &CheckoutSession{
		Reference:  sess.ID,
		PaymentURL: sess.URL,
		Raw:        raw,
	}, nil
}

func (g *StripeGateway) ParseWebhook(payload []byte, signature string) (*GatewayEvent, error) {
	event, err := webhook.ConstructEvent(payload, signature, g.webhookSecret)
	if err != nil {
		return nil, fmt.Errorf("webhook signature verification failed: %w", err)
	}

	var sess stripe.CheckoutSession
	switch event.Type {
	case "checkout.session.completed", "checkout.session.expired",
		"checkout.session.async_payment_failed":
		if err := json.Unmarshal(event.Data.Raw, &sess); err != nil {
			return nil, fmt.Errorf("failed to decode event payload: %w", err)
		}
	default:
		// Events we do not subscribe to are acknowledged but ignored.
		return nil, nil
	}

	orderID := sess.ClientReferenceID
	if orderID == "" {
		orderID = sess.Metadata["order_id"]
	}

	var status models.PaymentStatus
	switch event.Type {
	case "checkout.session.completed":
		status = models.PaymentStatusSettlement
	case "checkout.session.expired":
		status = models.PaymentStatusExpire
	case "checkout.session.async_payment_failed":
		status = models.PaymentStatusFailure
	}

	var raw map[string]interface{}
	json.Unmarshal(event.Data.Raw, &raw)

	return &GatewayEvent{
		OrderID:     orderID,
		Reference:   sess.ID,
		Status:      status,
		PaymentType: string(event.Type),
		Raw:         raw,
	}, nil
}

func (g *StripeGateway) GetStatus(reference string) (models.PaymentStatus, error) {
	sess, err := session.Get(reference, nil)
	if err != nil {
		return "", fmt.Errorf("failed to fetch checkout session: %w", err)
	}

	switch {
	case sess.PaymentStatus == stripe.CheckoutSessionPaymentStatusPaid:
		return models.PaymentStatusSettlement, nil
	case sess.Status == stripe.CheckoutSessionStatusExpired:
		return models.PaymentStatusExpire, nil
	default:
		return models.PaymentStatusPending, nil
	}
}
