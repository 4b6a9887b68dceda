package services

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"santodinheiro/database"
	"santodinheiro/finance"
	"santodinheiro/logging"
	"santodinheiro/models"
)

var (
	ErrMonthNotFound = errors.New("month not found")
	ErrMonthExists   = errors.New("month already exists")
	// ErrMonthLocked guards the current and past months against deletion.
	ErrMonthLocked = errors.New("current and past months cannot be deleted")
)

// GetMonth loads a month and its four child collections.
func GetMonth(userID string, year, month int) (*models.MonthWithItems, error) {
	var m models.MonthWithItems
	var titheStr string

	// m.Month selects the embedded struct, so the calendar month needs the
	// fully qualified field.
	err := database.DB.QueryRow(`
		SELECT id, user_id, month, year, is_tithe_paid, tithe_paid_amount, created_at, updated_at
		FROM months
		WHERE user_id = ? AND year = ? AND month = ?
	`, userID, year, month).Scan(
		&m.ID, &m.UserID, &m.Month.Month, &m.Year, &m.IsTithePaid, &titheStr, &m.CreatedAt, &m.UpdatedAt)

	if err == sql.ErrNoRows {
		return nil, ErrMonthNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load month: %w", err)
	}

	m.TithePaidAmount, err = decimal.NewFromString(titheStr)
	if err != nil {
		return nil, fmt.Errorf("invalid tithe amount stored for month %s: %w", m.ID, err)
	}

	if m.Incomes, err = loadIncomes(m.ID); err != nil {
		return nil, err
	}
	if m.Expenses, err = loadExpenses(m.ID); err != nil {
		return nil, err
	}
	if m.Investments, err = loadInvestments(m.ID); err != nil {
		return nil, err
	}
	if m.MiscExpenses, err = loadMiscExpenses(m.ID); err != nil {
		return nil, err
	}

	return &m, nil
}

// GetOrProvisionMonth returns the month, creating it first when absent:
// duplicated from the immediately preceding month when one exists, empty
// otherwise. The second return value reports whether a month was created.
func GetOrProvisionMonth(userID string, year, month int) (*models.MonthWithItems, bool, error) {
	m, err := GetMonth(userID, year, month)
	if err == nil {
		return m, false, nil
	}
	if !errors.Is(err, ErrMonthNotFound) {
		return nil, false, err
	}

	prevYear, prevMonth := previousMonth(year, month)
	_, err = GetMonth(userID, prevYear, prevMonth)
	switch {
	case err == nil:
		if err := DuplicateMonth(userID, prevYear, prevMonth, year, month); err != nil {
			return nil, false, err
		}
	case errors.Is(err, ErrMonthNotFound):
		if _, err := CreateEmptyMonth(userID, year, month); err != nil {
			return nil, false, err
		}
	default:
		return nil, false, err
	}

	// Serve the freshly persisted month
	m, err = GetMonth(userID, year, month)
	if err != nil {
		return nil, false, err
	}
	return m, true, nil
}

// CreateEmptyMonth inserts a month with no items. The unique constraint on
// (user_id, year, month) turns a concurrent double-create into an error.
func CreateEmptyMonth(userID string, year, month int) (string, error) {
	id := uuid.NewString()
	now := time.Now()
	_, err := database.DB.Exec(`
		INSERT INTO months (id, user_id, month, year, is_tithe_paid, tithe_paid_amount, created_at, updated_at)
		VALUES (?, ?, ?, ?, 0, '0', ?, ?)
	`, id, userID, month, year, now, now)
	if err != nil {
		return "", fmt.Errorf("failed to create month: %w", err)
	}
	return id, nil
}

// DuplicateMonth copies a month's recurring items into a newly created
// target month inside one transaction: all incomes and investments, STANDARD
// expenses only. Paid/received flags reset, paid amounts reset to zero,
// ordering preserved. TITHE expenses are recomputed from the new month's
// incomes and misc expenses are one-off, so neither is copied.
func DuplicateMonth(userID string, srcYear, srcMonth, dstYear, dstMonth int) error {
	src, err := GetMonth(userID, srcYear, srcMonth)
	if err != nil {
		return err
	}

	_, err = GetMonth(userID, dstYear, dstMonth)
	if err == nil {
		return ErrMonthExists
	}
	if !errors.Is(err, ErrMonthNotFound) {
		return err
	}

	tx, err := database.DB.Begin()
	if err != nil {
		return fmt.Errorf("failed to start transaction: %w", err)
	}
	defer tx.Rollback()

	now := time.Now()
	monthID := uuid.NewString()
	_, err = tx.Exec(`
		INSERT INTO months (id, user_id, month, year, is_tithe_paid, tithe_paid_amount, created_at, updated_at)
		VALUES (?, ?, ?, ?, 0, '0', ?, ?)
	`, monthID, userID, dstMonth, dstYear, now, now)
	if err != nil {
		return fmt.Errorf("failed to create target month: %w", err)
	}

	for _, in := range src.Incomes {
		_, err = tx.Exec(`
			INSERT INTO incomes (id, month_id, description, amount, day_of_month, is_received, is_tithe_paid, sort_order, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, 0, 0, ?, ?, ?)
		`, uuid.NewString(), monthID, in.Description, in.Amount.String(), in.DayOfMonth, in.Order, now, now)
		if err != nil {
			return fmt.Errorf("failed to copy income %q: %w", in.Description, err)
		}
	}

	for _, e := range src.Expenses {
		if e.Type != models.ExpenseTypeStandard {
			continue
		}
		_, err = tx.Exec(`
			INSERT INTO expenses (id, month_id, description, total_amount, paid_amount, day_of_month, is_paid, type, sort_order, created_at, updated_at)
			VALUES (?, ?, ?, ?, '0', ?, 0, ?, ?, ?, ?)
		`, uuid.NewString(), monthID, e.Description, e.TotalAmount.String(), e.DayOfMonth, e.Type, e.Order, now, now)
		if err != nil {
			return fmt.Errorf("failed to copy expense %q: %w", e.Description, err)
		}
	}

	for _, v := range src.Investments {
		_, err = tx.Exec(`
			INSERT INTO investments (id, month_id, description, amount, day_of_month, is_paid, sort_order, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, 0, ?, ?, ?)
		`, uuid.NewString(), monthID, v.Description, v.Amount.String(), v.DayOfMonth, v.Order, now, now)
		if err != nil {
			return fmt.Errorf("failed to copy investment %q: %w", v.Description, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit month duplication: %w", err)
	}

	logging.Log.WithFields(map[string]interface{}{
		"userId": userID,
		"source": fmt.Sprintf("%d-%02d", srcYear, srcMonth),
		"target": fmt.Sprintf("%d-%02d", dstYear, dstMonth),
	}).Info("Duplicated month")

	return nil
}

// DeleteMonth removes a month and, via cascade, its items. The current
// real-time month and past months are locked.
func DeleteMonth(userID string, year, month int, now time.Time) error {
	if year < now.Year() || (year == now.Year() && month <= int(now.Month())) {
		return ErrMonthLocked
	}

	res, err := database.DB.Exec(`
		DELETE FROM months WHERE user_id = ? AND year = ? AND month = ?
	`, userID, year, month)
	if err != nil {
		return fmt.Errorf("failed to delete month: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrMonthNotFound
	}
	return nil
}

// SetTithePaid toggles the month's tithe flag. The paid amount is recomputed
// from a fresh read of the incomes inside the same transaction, so a stale
// total can never be persisted.
func SetTithePaid(userID string, year, month int, paid bool) error {
	tx, err := database.DB.Begin()
	if err != nil {
		return fmt.Errorf("failed to start transaction: %w", err)
	}
	defer tx.Rollback()

	var monthID string
	err = tx.QueryRow(`
		SELECT id FROM months WHERE user_id = ? AND year = ? AND month = ?
	`, userID, year, month).Scan(&monthID)
	if err == sql.ErrNoRows {
		return ErrMonthNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to load month: %w", err)
	}

	rows, err := tx.Query(`SELECT amount FROM incomes WHERE month_id = ?`, monthID)
	if err != nil {
		return fmt.Errorf("failed to load incomes: %w", err)
	}
	defer rows.Close()

	var incomes []models.Income
	for rows.Next() {
		var amountStr string
		if err := rows.Scan(&amountStr); err != nil {
			return fmt.Errorf("failed to scan income amount: %w", err)
		}
		amount, err := decimal.NewFromString(amountStr)
		if err != nil {
			return fmt.Errorf("invalid income amount stored: %w", err)
		}
		incomes = append(incomes, models.Income{Amount: amount})
	}
	if err := rows.Err(); err != nil {
		return err
	}

	titheAmount := decimal.Zero
	if paid {
		titheAmount = finance.TitheAmount(incomes)
	}

	_, err = tx.Exec(`
		UPDATE months SET is_tithe_paid = ?, tithe_paid_amount = ?, updated_at = ? WHERE id = ?
	`, paid, titheAmount.String(), time.Now(), monthID)
	if err != nil {
		return fmt.Errorf("failed to update tithe: %w", err)
	}

	return tx.Commit()
}

// ProvisionCurrentMonths makes sure every user has a row for the month that
// just started, so the first visit of the month is already warm. Per-user
// failures are logged and skipped.
func ProvisionCurrentMonths(now time.Time) error {
	rows, err := database.DB.Query(`SELECT id FROM users`)
	if err != nil {
		return fmt.Errorf("failed to list users for provisioning: %w", err)
	}
	defer rows.Close()

	var userIDs []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return fmt.Errorf("failed to scan user id: %w", err)
		}
		userIDs = append(userIDs, id)
	}
	if err := rows.Err(); err != nil {
		return err
	}

	provisioned := 0
	for _, userID := range userIDs {
		_, created, err := GetOrProvisionMonth(userID, now.Year(), int(now.Month()))
		if err != nil {
			logging.Log.WithField("userId", userID).Warnf("Failed to provision month: %v", err)
			continue
		}
		if created {
			provisioned++
		}
	}

	logging.Log.WithField("count", provisioned).Info("Provisioned months for new period")
	return nil
}

func previousMonth(year, month int) (int, int) {
	if month == 1 {
		return year - 1, 12
	}
	return year, month - 1
}

// NextMonth returns the calendar month after the given one.
func NextMonth(year, month int) (int, int) {
	if month == 12 {
		return year + 1, 1
	}
	return year, month + 1
}

func loadIncomes(monthID string) ([]models.Income, error) {
	rows, err := database.DB.Query(`
		SELECT id, month_id, description, amount, day_of_month, is_received, is_tithe_paid, sort_order, created_at, updated_at
		FROM incomes
		WHERE month_id = ?
		ORDER BY sort_order, created_at
	`, monthID)
	if err != nil {
		return nil, fmt.Errorf("failed to load incomes: %w", err)
	}
	defer rows.Close()

	var incomes []models.Income
	for rows.Next() {
		var in models.Income
		var amountStr string
		var dayOfMonth sql.NullInt64
		err := rows.Scan(&in.ID, &in.MonthID, &in.Description, &amountStr, &dayOfMonth,
			&in.IsReceived, &in.IsTithePaid, &in.Order, &in.CreatedAt, &in.UpdatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan income: %w", err)
		}
		if in.Amount, err = decimal.NewFromString(amountStr); err != nil {
			return nil, fmt.Errorf("invalid income amount stored: %w", err)
		}
		if dayOfMonth.Valid {
			day := int(dayOfMonth.Int64)
			in.DayOfMonth = &day
		}
		incomes = append(incomes, in)
	}
	return incomes, rows.Err()
}

func loadExpenses(monthID string) ([]models.Expense, error) {
	rows, err := database.DB.Query(`
		SELECT id, month_id, description, total_amount, paid_amount, day_of_month, is_paid, type, sort_order, created_at, updated_at
		FROM expenses
		WHERE month_id = ?
		ORDER BY sort_order, created_at
	`, monthID)
	if err != nil {
		return nil, fmt.Errorf("failed to load expenses: %w", err)
	}
	defer rows.Close()

	var expenses []models.Expense
	for rows.Next() {
		var e models.Expense
		var totalStr, paidStr string
		var dayOfMonth sql.NullInt64
		err := rows.Scan(&e.ID, &e.MonthID, &e.Description, &totalStr, &paidStr, &dayOfMonth,
			&e.IsPaid, &e.Type, &e.Order, &e.CreatedAt, &e.UpdatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan expense: %w", err)
		}
		if e.TotalAmount, err = decimal.NewFromString(totalStr); err != nil {
			return nil, fmt.Errorf("invalid expense total stored: %w", err)
		}
		if e.PaidAmount, err = decimal.NewFromString(paidStr); err != nil {
			return nil, fmt.Errorf("invalid expense paid amount stored: %w", err)
		}
		if dayOfMonth.Valid {
			day := int(dayOfMonth.Int64)
			e.DayOfMonth = &day
		}
		expenses = append(expenses, e)
	}
	return expenses, rows.Err()
}

func loadInvestments(monthID string) ([]models.Investment, error) {
	rows, err := database.DB.Query(`
		SELECT id, month_id, description, amount, day_of_month, is_paid, sort_order, created_at, updated_at
		FROM investments
		WHERE month_id = ?
		ORDER BY sort_order, created_at
	`, monthID)
	if err != nil {
		return nil, fmt.Errorf("failed to load investments: %w", err)
	}
	defer rows.Close()

	var investments []models.Investment
	for rows.Next() {
		var v models.Investment
		var amountStr string
		var dayOfMonth sql.NullInt64
		err := rows.Scan(&v.ID, &v.MonthID, &v.Description, &amountStr, &dayOfMonth,
			&v.IsPaid, &v.Order, &v.CreatedAt, &v.UpdatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan investment: %w", err)
		}
		if v.Amount, err = decimal.NewFromString(amountStr); err != nil {
			return nil, fmt.Errorf("invalid investment amount stored: %w", err)
		}
		if dayOfMonth.Valid {
			day := int(dayOfMonth.Int64)
			v.DayOfMonth = &day
		}
		investments = append(investments, v)
	}
	return investments, rows.Err()
}

func loadMiscExpenses(monthID string) ([]models.MiscExpense, error) {
	rows, err := database.DB.Query(`
		SELECT id, month_id, description, amount, day_of_month, is_paid, sort_order, created_at, updated_at
		FROM misc_expenses
		WHERE month_id = ?
		ORDER BY sort_order, created_at
	`, monthID)
	if err != nil {
		return nil, fmt.Errorf("failed to load misc expenses: %w", err)
	}
	defer rows.Close()

	var items []models.MiscExpense
	for rows.Next() {
		var m models.MiscExpense
		var amountStr string
		var dayOfMonth sql.NullInt64
		err := rows.Scan(&m.ID, &m.MonthID, &m.Description, &amountStr, &dayOfMonth,
			&m.IsPaid, &m.Order, &m.CreatedAt, &m.UpdatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan misc expense: %w", err)
		}
		if m.Amount, err = decimal.NewFromString(amountStr); err != nil {
			return nil, fmt.Errorf("invalid misc expense amount stored: %w", err)
		}
		if dayOfMonth.Valid {
			day := int(dayOfMonth.Int64)
			m.DayOfMonth = &day
		}
		items = append(items, m)
	}
	return items, rows.Err()
}
