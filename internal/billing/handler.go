package billing

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"biteiq-bot/internal/models"
	"biteiq-bot/pkg/logger"

	"github.com/stripe/stripe-go/v72"
)

const maxBodyBytes = 65536

var (
	// errIgnored marks events that are acknowledged without changing any state.
	errIgnored    = errors.New("event ignored")
	errBadPayload = errors.New("bad event payload")
)

type Store interface {
	GetUser(ctx context.Context, telegramID int64) (*models.User, error)
	GetUserByID(ctx context.Context, id int64) (*models.User, error)
	GetSubscriptionByStripeID(ctx context.Context, stripeSubscriptionID string) (*models.Subscription, error)
	UpsertSubscription(ctx context.Context, sub *models.Subscription) error
	UpdateSubscriptionStatus(ctx context.Context, stripeSubscriptionID string, status models.SubscriptionStatus, periodEnd *time.Time) error
	EventProcessed(ctx context.Context, eventID string) (bool, error)
	MarkEventProcessed(ctx context.Context, eventID, eventType string) error
}

// Stripe verifies webhook payloads and looks up subscriptions.
type Stripe interface {
	VerifyWebhookSignature(payload []byte, sig string) (stripe.Event, error)
	FetchSubscription(id string) (*stripe.Subscription, error)
}

// Notifier tells a Telegram user about a change in their subscription.
type Notifier interface {
	NotifySubscription(ctx context.Context, telegramID int64, status models.SubscriptionStatus) error
}

type Handler struct {
	store    Store
	stripe   Stripe
	notifier Notifier
	logger   *logger.Logger
}

func NewHandler(store Store, stripe Stripe, notifier Notifier, l *logger.Logger) *Handler {
	return &Handler{
		store:    store,
		stripe:   stripe,
		notifier: notifier,
		logger:   l.Named("billing"),
	}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	payload, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		h.logger.Errorw("Failed to read webhook body", "error", err)
		writeJSON(w, http.StatusBadRequest, "error", "failed to read request body")
		return
	}

	signature := r.Header.Get("Stripe-Signature")
	if signature == "" {
		writeJSON(w, http.StatusBadRequest, "error", "missing signature")
		return
	}

	event, err := h.stripe.VerifyWebhookSignature(payload, signature)
	if err != nil {
		h.logger.Warnw("Failed to verify webhook signature", "error", err)
		writeJSON(w, http.StatusBadRequest, "error", "invalid signature")
		return
	}

	ctx := r.Context()
	log := h.logger.With("event_id", event.ID, "event_type", event.Type)

	seen, err := h.store.EventProcessed(ctx, event.ID)
	if err != nil {
		log.Errorw("Failed to check event ledger", "error", err)
		writeJSON(w, http.StatusInternalServerError, "error", "temporary failure")
		return
	}
	if seen {
		log.Infow("Duplicate event skipped")
		writeJSON(w, http.StatusOK, "status", "duplicate")
		return
	}

	err = h.dispatch(ctx, event)
	switch {
	case errors.Is(err, errBadPayload):
		log.Warnw("Malformed event payload", "error", err)
		writeJSON(w, http.StatusBadRequest, "error", "failed to parse event data")
		return
	case errors.Is(err, errIgnored):
		log.Infow("Event ignored", "reason", err)
		writeJSON(w, http.StatusOK, "status", "ignored")
		return
	case err != nil:
		log.Errorw("Failed to process event", "error", err)
		writeJSON(w, http.StatusInternalServerError, "error", "temporary failure")
		return
	}

	if err := h.store.MarkEventProcessed(ctx, event.ID, event.Type); err != nil {
		// the state change already happened and is idempotent, so a redelivery is harmless
		log.Errorw("Failed to record event", "error", err)
	}

	log.Infow("Event processed")
	writeJSON(w, http.StatusOK, "status", "success")
}

func (h *Handler) dispatch(ctx context.Context, event stripe.Event) error {
	if event.Data == nil {
		return fmt.Errorf("%w: event %s has no data", errBadPayload, event.ID)
	}

	switch event.Type {
	case "checkout.session.completed":
		var sess stripe.CheckoutSession
		if err := json.Unmarshal(event.Data.Raw, &sess); err != nil {
			return errors.Join(errBadPayload, err)
		}
		return h.handleCheckoutCompleted(ctx, &sess)

	case "customer.subscription.updated", "customer.subscription.deleted":
		var sub stripe.Subscription
		if err := json.Unmarshal(event.Data.Raw, &sub); err != nil {
			return errors.Join(errBadPayload, err)
		}
		return h.handleSubscriptionChanged(ctx, &sub, event.Type == "customer.subscription.deleted")

	default:
		return errIgnored
	}
}

func writeJSON(w http.ResponseWriter, code int, key, value string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(map[string]string{key: value})
}
