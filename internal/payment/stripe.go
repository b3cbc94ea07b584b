// internal/payment/stripe.go
package payment

import (
	"errors"
	"fmt"
	"strconv"

	"biteiq-bot/config"

	"github.com/stripe/stripe-go/v72"
	portalsession "github.com/stripe/stripe-go/v72/billingportal/session"
	"github.com/stripe/stripe-go/v72/checkout/session"
	subscription "github.com/stripe/stripe-go/v72/sub"
	"github.com/stripe/stripe-go/v72/webhook"
)

// MetadataTelegramID is the metadata key carrying the Telegram user id on sessions and subscriptions.
const MetadataTelegramID = "telegram_id"

type StripeClient struct {
	secretKey     string
	webhookSecret string
	priceID       string
	baseURL       string
}

func NewStripeClient(cfg config.StripeConfig, baseURL string) *StripeClient {
	// Set the secret key for backend operations
	stripe.Key = cfg.SecretKey

	return &StripeClient{
		secretKey:     cfg.SecretKey,
		webhookSecret: cfg.WebhookKey,
		priceID:       cfg.PriceID,
		baseURL:       baseURL,
	}
}

func (s *StripeClient) SuccessURL() string {
	return s.baseURL + "/payment-success?session_id={CHECKOUT_SESSION_ID}"
}

func (s *StripeClient) CancelURL() string {
	return s.baseURL + "/payment-cancelled"
}

// CreateCheckoutSession starts a subscription checkout for the Telegram user and returns its URL.
func (s *StripeClient) CreateCheckoutSession(telegramID int64) (string, error) {
	if stripe.Key != s.secretKey {
		stripe.Key = s.secretKey
	}

	tgID := strconv.FormatInt(telegramID, 10)
	params := &stripe.CheckoutSessionParams{
		PaymentMethodTypes: stripe.StringSlice([]string{
			"card",
		}),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				Price:    stripe.String(s.priceID),
				Quantity: stripe.Int64(1),
			},
		},
		Mode:              stripe.String(string(stripe.CheckoutSessionModeSubscription)),
		SuccessURL:        stripe.String(s.SuccessURL()),
		CancelURL:         stripe.String(s.CancelURL()),
		ClientReferenceID: stripe.String(tgID),
		SubscriptionData: &stripe.CheckoutSessionSubscriptionDataParams{
			Metadata: map[string]string{MetadataTelegramID: tgID},
		},
	}
	params.AddMetadata(MetadataTelegramID, tgID)
	params.AddMetadata("price_id", s.priceID)

	sess, err := session.New(params)
	if err != nil {
		return "", fmt.Errorf("failed to create checkout session: %w", err)
	}

	return sess.URL, nil
}

// CreatePortalSession returns a customer portal URL where the user can manage or cancel the plan.
func (s *StripeClient) CreatePortalSession(customerID string) (string, error) {
	if customerID == "" {
		return "", errors.New("customer id is required")
	}

	params := &stripe.BillingPortalSessionParams{
		Customer:  stripe.String(customerID),
		ReturnURL: stripe.String(s.baseURL + "/"),
	}

	sess, err := portalsession.New(params)
	if err != nil {
		return "", fmt.Errorf("failed to create portal session: %w", err)
	}

	return sess.URL, nil
}

func (s *StripeClient) FetchSubscription(id string) (*stripe.Subscription, error) {
	sub, err := subscription.Get(id, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch subscription %s: %w", id, err)
	}
	return sub, nil
}

func (s *StripeClient) VerifyWebhookSignature(payload []byte, sig string) (stripe.Event, error) {
	if s.webhookSecret == "" {
		return stripe.Event{}, errors.New("webhook secret is not configured")
	}
	return webhook.ConstructEvent(payload, sig, s.webhookSecret)
}
