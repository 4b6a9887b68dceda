package migrations

import (
	"database/sql"
	"fmt"
)

// AddBillingTables creates the tables that mirror the billing provider:
// the singleton encrypted configuration row and the subscription mirror the
// admin metrics are computed from.
func AddBillingTables(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS billing_config (
			id INTEGER PRIMARY KEY CHECK (id = 1),
			encrypted_api_token TEXT NOT NULL,
			base_url TEXT NOT NULL DEFAULT '',
			last_sync_time TIMESTAMP,
			updated_at TIMESTAMP NOT NULL
		);

		CREATE TABLE IF NOT EXISTS subscriptions (
			id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL,
			plan TEXT NOT NULL,
			status TEXT NOT NULL,
			monthly_amount TEXT NOT NULL,
			currency TEXT NOT NULL DEFAULT 'BRL',
			started_at TIMESTAMP NOT NULL,
			canceled_at TIMESTAMP,
			updated_at TIMESTAMP NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_subscriptions_status ON subscriptions(status);
	`)
	if err != nil {
		return fmt.Errorf("failed to create billing tables: %w", err)
	}
	return nil
}
