package services

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"santodinheiro/database"
	"santodinheiro/logging"
	"santodinheiro/models"
	"santodinheiro/security"
)

// ErrBillingNotConfigured is returned when no API token has been stored yet.
var ErrBillingNotConfigured = errors.New("billing provider not configured")

// BillingConfig is the deployment-wide billing provider configuration. The
// API token is encrypted at rest and never returned in API responses.
type BillingConfig struct {
	EncryptedAPIToken string    `json:"-"`
	APIToken          string    `json:"apiToken,omitempty"` // input only
	BaseURL           string    `json:"baseUrl"`
	LastSyncTime      time.Time `json:"lastSyncTime,omitempty"`
	HasCredentials    bool      `json:"hasCredentials"`
}

// billingSubscription is the provider's wire shape for one subscription.
type billingSubscription struct {
	ID            string  `json:"id"`
	CustomerRef   string  `json:"customer_ref"` // our user id
	Plan          string  `json:"plan"`
	Status        string  `json:"status"`
	MonthlyAmount string  `json:"monthly_amount"`
	Currency      string  `json:"currency"`
	StartedAt     string  `json:"started_at"`
	CanceledAt    *string `json:"canceled_at"`
}

// GetBillingConfig loads the stored billing configuration.
func GetBillingConfig() (*BillingConfig, error) {
	var cfg BillingConfig
	var lastSync sql.NullTime

	err := database.DB.QueryRow(`
		SELECT encrypted_api_token, base_url, last_sync_time FROM billing_config WHERE id = 1
	`).Scan(&cfg.EncryptedAPIToken, &cfg.BaseURL, &lastSync)
	if err == sql.ErrNoRows {
		return nil, ErrBillingNotConfigured
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load billing config: %w", err)
	}

	if lastSync.Valid {
		cfg.LastSyncTime = lastSync.Time
	}
	cfg.HasCredentials = cfg.EncryptedAPIToken != ""
	return &cfg, nil
}

// UpdateBillingConfig stores the billing provider token (encrypted) and base URL.
func UpdateBillingConfig(apiToken, baseURL string) error {
	if apiToken == "" {
		return fmt.Errorf("apiToken is required")
	}

	encrypted, err := security.Encrypt(apiToken)
	if err != nil {
		return fmt.Errorf("failed to encrypt API token: %w", err)
	}

	_, err = database.DB.Exec(`
		INSERT INTO billing_config (id, encrypted_api_token, base_url, updated_at)
		VALUES (1, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			encrypted_api_token = excluded.encrypted_api_token,
			base_url = excluded.base_url,
			updated_at = excluded.updated_at
	`, encrypted, baseURL, time.Now())
	if err != nil {
		return fmt.Errorf("failed to store billing config: %w", err)
	}

	return nil
}

// SyncSubscriptions pulls the full subscription list from the billing
// provider and mirrors it into the subscriptions table in one transaction.
func SyncSubscriptions() error {
	cfg, err := GetBillingConfig()
	if err != nil {
		return err
	}
	if !cfg.HasCredentials {
		return ErrBillingNotConfigured
	}

	token, err := security.Decrypt(cfg.EncryptedAPIToken)
	if err != nil {
		return fmt.Errorf("failed to decrypt API token: %w", err)
	}

	url := fmt.Sprintf("%s/v1/subscriptions", cfg.BaseURL)
	req, err := http.NewRequest("GET", url, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")

	client := &http.Client{Timeout: 30 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to reach billing API: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("billing API returned status %d", resp.StatusCode)
	}

	var payload struct {
		Subscriptions []billingSubscription `json:"subscriptions"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return fmt.Errorf("failed to decode billing response: %w", err)
	}

	tx, err := database.DB.Begin()
	if err != nil {
		return fmt.Errorf("failed to start transaction: %w", err)
	}
	defer tx.Rollback()

	for _, sub := range payload.Subscriptions {
		if err := upsertSubscriptionTx(tx, sub); err != nil {
			return err
		}
	}

	_, err = tx.Exec(`UPDATE billing_config SET last_sync_time = ? WHERE id = 1`, time.Now())
	if err != nil {
		return fmt.Errorf("failed to record sync time: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit subscription sync: %w", err)
	}

	logging.Log.WithField("count", len(payload.Subscriptions)).Info("Synced subscriptions from billing provider")
	return nil
}

func upsertSubscriptionTx(tx *sql.Tx, sub billingSubscription) error {
	amount, err := decimal.NewFromString(sub.MonthlyAmount)
	if err != nil {
		return fmt.Errorf("invalid monthly amount %q for subscription %s: %w", sub.MonthlyAmount, sub.ID, err)
	}

	startedAt, err := time.Parse(time.RFC3339, sub.StartedAt)
	if err != nil {
		return fmt.Errorf("invalid started_at for subscription %s: %w", sub.ID, err)
	}

	var canceledAt *time.Time
	if sub.CanceledAt != nil {
		t, err := time.Parse(time.RFC3339, *sub.CanceledAt)
		if err != nil {
			return fmt.Errorf("invalid canceled_at for subscription %s: %w", sub.ID, err)
		}
		canceledAt = &t
	}

	_, err = tx.Exec(`
		INSERT INTO subscriptions (id, user_id, plan, status, monthly_amount, currency, started_at, canceled_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			plan = excluded.plan,
			status = excluded.status,
			monthly_amount = excluded.monthly_amount,
			currency = excluded.currency,
			canceled_at = excluded.canceled_at,
			updated_at = excluded.updated_at
	`, sub.ID, sub.CustomerRef, sub.Plan, sub.Status, amount.String(), sub.Currency, startedAt, canceledAt, time.Now())
	if err != nil {
		return fmt.Errorf("failed to upsert subscription %s: %w", sub.ID, err)
	}
	return nil
}

// UpsertSubscription applies one subscription event from the billing webhook.
func UpsertSubscription(sub models.Subscription) error {
	_, err := database.DB.Exec(`
		INSERT INTO subscriptions (id, user_id, plan, status, monthly_amount, currency, started_at, canceled_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			plan = excluded.plan,
			status = excluded.status,
			monthly_amount = excluded.monthly_amount,
			currency = excluded.currency,
			canceled_at = excluded.canceled_at,
			updated_at = excluded.updated_at
	`, sub.ID, sub.UserID, sub.Plan, sub.Status, sub.MonthlyAmount.String(), sub.Currency,
		sub.StartedAt, sub.CanceledAt, time.Now())
	if err != nil {
		return fmt.Errorf("failed to upsert subscription %s: %w", sub.ID, err)
	}
	return nil
}

// DeleteSubscription removes a subscription mirrored from the provider.
func DeleteSubscription(id string) error {
	_, err := database.DB.Exec("DELETE FROM subscriptions WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete subscription %s: %w", id, err)
	}
	return nil
}
