package migrations

import (
	"database/sql"
	"fmt"
)

// CreateBaseSchema creates the core tables: users, months and the four item
// tables a month owns. Items cascade-delete with their month. Amounts are
// stored as TEXT and parsed into decimals in Go; never as floats.
func CreateBaseSchema(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS users (
			id TEXT PRIMARY KEY,
			username TEXT NOT NULL UNIQUE,
			name TEXT NOT NULL,
			email TEXT NOT NULL DEFAULT '',
			status TEXT NOT NULL DEFAULT 'approved',
			is_admin BOOLEAN NOT NULL DEFAULT 0,
			role TEXT NOT NULL DEFAULT 'user',
			notify_upcoming BOOLEAN NOT NULL DEFAULT 0
		);

		CREATE TABLE IF NOT EXISTS months (
			id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL REFERENCES users(id),
			month INTEGER NOT NULL,
			year INTEGER NOT NULL,
			is_tithe_paid BOOLEAN NOT NULL DEFAULT 0,
			tithe_paid_amount TEXT NOT NULL DEFAULT '0',
			created_at TIMESTAMP NOT NULL,
			updated_at TIMESTAMP NOT NULL,
			UNIQUE(user_id, year, month)
		);

		CREATE TABLE IF NOT EXISTS incomes (
			id TEXT PRIMARY KEY,
			month_id TEXT NOT NULL REFERENCES months(id) ON DELETE CASCADE,
			description TEXT NOT NULL,
			amount TEXT NOT NULL,
			day_of_month INTEGER,
			is_received BOOLEAN NOT NULL DEFAULT 0,
			is_tithe_paid BOOLEAN NOT NULL DEFAULT 0,
			sort_order INTEGER NOT NULL DEFAULT 0,
			created_at TIMESTAMP NOT NULL,
			updated_at TIMESTAMP NOT NULL
		);

		CREATE TABLE IF NOT EXISTS expenses (
			id TEXT PRIMARY KEY,
			month_id TEXT NOT NULL REFERENCES months(id) ON DELETE CASCADE,
			description TEXT NOT NULL,
			total_amount TEXT NOT NULL,
			paid_amount TEXT NOT NULL DEFAULT '0',
			day_of_month INTEGER,
			is_paid BOOLEAN NOT NULL DEFAULT 0,
			type TEXT NOT NULL DEFAULT 'STANDARD',
			sort_order INTEGER NOT NULL DEFAULT 0,
			created_at TIMESTAMP NOT NULL,
			updated_at TIMESTAMP NOT NULL
		);

		CREATE TABLE IF NOT EXISTS investments (
			id TEXT PRIMARY KEY,
			month_id TEXT NOT NULL REFERENCES months(id) ON DELETE CASCADE,
			description TEXT NOT NULL,
			amount TEXT NOT NULL,
			day_of_month INTEGER,
			is_paid BOOLEAN NOT NULL DEFAULT 0,
			sort_order INTEGER NOT NULL DEFAULT 0,
			created_at TIMESTAMP NOT NULL,
			updated_at TIMESTAMP NOT NULL
		);

		CREATE TABLE IF NOT EXISTS misc_expenses (
			id TEXT PRIMARY KEY,
			month_id TEXT NOT NULL REFERENCES months(id) ON DELETE CASCADE,
			description TEXT NOT NULL,
			amount TEXT NOT NULL,
			day_of_month INTEGER,
			is_paid BOOLEAN NOT NULL DEFAULT 0,
			sort_order INTEGER NOT NULL DEFAULT 0,
			created_at TIMESTAMP NOT NULL,
			updated_at TIMESTAMP NOT NULL
		);

		CREATE TABLE IF NOT EXISTS permissions (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			granted_user_id TEXT NOT NULL REFERENCES users(id),
			owner_user_id TEXT NOT NULL REFERENCES users(id),
			resource_type TEXT NOT NULL,
			permission_type TEXT NOT NULL,
			created_at TIMESTAMP NOT NULL,
			expires_at TIMESTAMP,
			UNIQUE(granted_user_id, owner_user_id, resource_type, permission_type)
		);

		CREATE INDEX IF NOT EXISTS idx_months_user ON months(user_id, year, month);
		CREATE INDEX IF NOT EXISTS idx_incomes_month ON incomes(month_id);
		CREATE INDEX IF NOT EXISTS idx_expenses_month ON expenses(month_id);
		CREATE INDEX IF NOT EXISTS idx_investments_month ON investments(month_id);
		CREATE INDEX IF NOT EXISTS idx_misc_expenses_month ON misc_expenses(month_id);
	`)
	if err != nil {
		return fmt.Errorf("failed to create base schema: %w", err)
	}
	return nil
}
