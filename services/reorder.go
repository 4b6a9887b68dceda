package services

import (
	"errors"
	"fmt"
	"time"

	"santodinheiro/database"
)

// ErrUnknownItemKind is returned for a reorder request outside the four
// ledger tables.
var ErrUnknownItemKind = errors.New("unknown item kind")

// itemTables whitelists the reorderable tables. Never interpolate a kind
// into SQL without going through this map.
var itemTables = map[string]string{
	"incomes":       "incomes",
	"expenses":      "expenses",
	"investments":   "investments",
	"misc-expenses": "misc_expenses",
}

// ReorderItems persists a dense zero-based sort order for one category of a
// month, in list position order. The whole batch is one transaction: an id
// that does not belong to the month rolls everything back.
func ReorderItems(userID string, year, month int, kind string, ids []string) error {
	table, ok := itemTables[kind]
	if !ok {
		return ErrUnknownItemKind
	}

	m, err := GetMonth(userID, year, month)
	if err != nil {
		return err
	}

	tx, err := database.DB.Begin()
	if err != nil {
		return fmt.Errorf("failed to start transaction: %w", err)
	}
	defer tx.Rollback()

	now := time.Now()
	query := fmt.Sprintf("UPDATE %s SET sort_order = ?, updated_at = ? WHERE id = ? AND month_id = ?", table)
	for position, id := range ids {
		res, err := tx.Exec(query, position, now, id, m.ID)
		if err != nil {
			return fmt.Errorf("failed to reorder %s: %w", kind, err)
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if affected == 0 {
			return fmt.Errorf("item %s not found in month %d-%02d", id, year, month)
		}
	}

	return tx.Commit()
}
