package migrations

import (
	"database/sql"
	"fmt"

	"santodinheiro/logging"
)

// RunMigrations executes all migrations in order, recording each applied one
// in the migrations table so reruns are no-ops.
func RunMigrations(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS migrations (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			name TEXT NOT NULL,
			applied_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		);
	`)
	if err != nil {
		return fmt.Errorf("failed to create migrations table: %w", err)
	}

	migrations := []struct {
		name string
		fn   func(*sql.DB) error
	}{
		{"base_schema", CreateBaseSchema},
		{"add_billing_tables", AddBillingTables},
	}

	for _, migration := range migrations {
		var count int
		err := db.QueryRow("SELECT COUNT(*) FROM migrations WHERE name = ?", migration.name).Scan(&count)
		if err != nil {
			return fmt.Errorf("failed to check migration status: %w", err)
		}

		if count > 0 {
			logging.Log.Debugf("Skipping already applied migration: %s", migration.name)
			continue
		}

		logging.Log.Infof("Applying migration: %s", migration.name)
		if err := migration.fn(db); err != nil {
			return fmt.Errorf("failed to apply migration %s: %w", migration.name, err)
		}

		if _, err := db.Exec("INSERT INTO migrations (name) VALUES (?)", migration.name); err != nil {
			return fmt.Errorf("failed to record migration: %w", err)
		}
	}

	logging.Log.Info("All migrations completed")
	return nil
}
