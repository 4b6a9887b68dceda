package migrations

import (
	"database/sql"
)

// SeedDevData inserts a couple of users so a fresh development database is
// usable immediately. Idempotent; main calls it outside production only.
func SeedDevData(db *sql.DB) error {
	users := []struct {
		id, username, name, role string
		isAdmin                  bool
	}{
		{"dev-user-1", "haniel", "Haniel", "admin", true},
		{"dev-user-2", "maria", "Maria", "user", false},
	}

	for _, u := range users {
		_, err := db.Exec(`
			INSERT INTO users (id, username, name, status, is_admin, role)
			VALUES (?, ?, ?, 'approved', ?, ?)
			ON CONFLICT(id) DO NOTHING
		`, u.id, u.username, u.name, u.isAdmin, u.role)
		if err != nil {
			return err
		}
	}

	return nil
}
