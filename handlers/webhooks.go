package handlers

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"santodinheiro/database"
	"santodinheiro/logging"
	"santodinheiro/models"
	"santodinheiro/security"
	"santodinheiro/services"
)

// webhookSecret signs inbound webhook bodies. Set once at startup.
var webhookSecret string

// SetWebhookSecret configures the shared secret used to verify webhook
// signatures.
func SetWebhookSecret(secret string) {
	webhookSecret = secret
}

// signatureHeader carries the hex HMAC-SHA256 of the raw request body.
const signatureHeader = "X-Webhook-Signature"

// webhookEvent is the envelope both providers send. Data stays raw until the
// event type selects a concrete shape.
type webhookEvent struct {
	ID   string          `json:"id"`
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

type webhookBatch struct {
	Events []webhookEvent `json:"events"`
}

// readVerifiedBatch authenticates and decodes a webhook request. It writes
// the error response and returns nil when the request is rejected.
func readVerifiedBatch(w http.ResponseWriter, r *http.Request, source string) []webhookEvent {
	body, err := io.ReadAll(io.LimitReader(r.Body, 1<<20))
	if err != nil {
		http.Error(w, "Failed to read request body", http.StatusBadRequest)
		return nil
	}

	if !security.VerifyWebhookSignature(webhookSecret, body, r.Header.Get(signatureHeader)) {
		logging.Log.WithField("source", source).Warn("Rejected webhook with invalid signature")
		http.Error(w, "Invalid signature", http.StatusUnauthorized)
		return nil
	}

	var batch webhookBatch
	if err := json.Unmarshal(body, &batch); err != nil {
		http.Error(w, "Malformed webhook payload", http.StatusBadRequest)
		return nil
	}
	if len(batch.Events) == 0 {
		http.Error(w, "Webhook payload has no events", http.StatusBadRequest)
		return nil
	}

	return batch.Events
}

// failEvent reports which event broke the batch. Processing stops at the
// first failure so the provider retries the whole delivery.
func failEvent(w http.ResponseWriter, source string, ev webhookEvent, err error) {
	logging.Log.WithFields(map[string]interface{}{
		"source":    source,
		"eventId":   ev.ID,
		"eventType": ev.Type,
	}).WithError(err).Error("Webhook event processing failed")

	writeJSON(w, http.StatusUnprocessableEntity, map[string]string{
		"error":     err.Error(),
		"eventId":   ev.ID,
		"eventType": ev.Type,
	})
}

// IdentityWebhook ingests user lifecycle events from the identity provider.
func IdentityWebhook(w http.ResponseWriter, r *http.Request) {
	events := readVerifiedBatch(w, r, models.WebhookSourceIdentity)
	if events == nil {
		return
	}

	for _, ev := range events {
		if err := applyIdentityEvent(ev); err != nil {
			failEvent(w, models.WebhookSourceIdentity, ev, err)
			return
		}
	}

	writeJSON(w, http.StatusOK, map[string]int{"processed": len(events)})
}

func applyIdentityEvent(ev webhookEvent) error {
	switch ev.Type {
	case "user.created", "user.updated":
		var data struct {
			UserID   string `json:"userId"`
			Email    string `json:"email"`
			Name     string `json:"name"`
			Username string `json:"username"`
		}
		if err := json.Unmarshal(ev.Data, &data); err != nil {
			return fmt.Errorf("invalid user event data: %w", err)
		}
		if data.UserID == "" {
			return fmt.Errorf("user event missing userId")
		}
		if data.Username == "" {
			data.Username = data.Email
		}

		_, err := database.DB.Exec(`
			INSERT INTO users (id, username, name, email, status, is_admin, role, notify_upcoming)
			VALUES (?, ?, ?, ?, 'approved', 0, 'user', 0)
			ON CONFLICT(id) DO UPDATE SET
				username = excluded.username,
				name = excluded.name,
				email = excluded.email
		`, data.UserID, data.Username, data.Name, data.Email)
		if err != nil {
			return fmt.Errorf("failed to upsert user %s: %w", data.UserID, err)
		}
		return nil

	case "user.deleted":
		var data struct {
			UserID string `json:"userId"`
		}
		if err := json.Unmarshal(ev.Data, &data); err != nil {
			return fmt.Errorf("invalid user event data: %w", err)
		}
		if data.UserID == "" {
			return fmt.Errorf("user event missing userId")
		}

		_, err := database.DB.Exec("DELETE FROM users WHERE id = ?", data.UserID)
		if err != nil {
			return fmt.Errorf("failed to delete user %s: %w", data.UserID, err)
		}
		return nil

	default:
		return fmt.Errorf("unknown identity event type %q", ev.Type)
	}
}

// BillingWebhook ingests subscription lifecycle events from the billing
// provider so metrics stay fresh between nightly syncs.
func BillingWebhook(w http.ResponseWriter, r *http.Request) {
	events := readVerifiedBatch(w, r, models.WebhookSourceBilling)
	if events == nil {
		return
	}

	for _, ev := range events {
		if err := applyBillingEvent(ev); err != nil {
			failEvent(w, models.WebhookSourceBilling, ev, err)
			return
		}
	}

	writeJSON(w, http.StatusOK, map[string]int{"processed": len(events)})
}

func applyBillingEvent(ev webhookEvent) error {
	switch ev.Type {
	case "subscription.created", "subscription.updated", "subscription.canceled":
		var data struct {
			ID            string     `json:"id"`
			UserID        string     `json:"userId"`
			Plan          string     `json:"plan"`
			Status        string     `json:"status"`
			MonthlyAmount string     `json:"monthlyAmount"`
			Currency      string     `json:"currency"`
			StartedAt     time.Time  `json:"startedAt"`
			CanceledAt    *time.Time `json:"canceledAt"`
		}
		if err := json.Unmarshal(ev.Data, &data); err != nil {
			return fmt.Errorf("invalid subscription event data: %w", err)
		}
		if data.ID == "" {
			return fmt.Errorf("subscription event missing id")
		}

		amount, err := decimal.NewFromString(data.MonthlyAmount)
		if err != nil {
			return fmt.Errorf("invalid monthlyAmount %q: %w", data.MonthlyAmount, err)
		}

		return services.UpsertSubscription(models.Subscription{
			ID:            data.ID,
			UserID:        data.UserID,
			Plan:          data.Plan,
			Status:        data.Status,
			MonthlyAmount: amount,
			Currency:      data.Currency,
			StartedAt:     data.StartedAt,
			CanceledAt:    data.CanceledAt,
		})

	case "subscription.deleted":
		var data struct {
			ID string `json:"id"`
		}
		if err := json.Unmarshal(ev.Data, &data); err != nil {
			return fmt.Errorf("invalid subscription event data: %w", err)
		}
		if data.ID == "" {
			return fmt.Errorf("subscription event missing id")
		}
		return services.DeleteSubscription(data.ID)

	default:
		return fmt.Errorf("unknown billing event type %q", ev.Type)
	}
}
