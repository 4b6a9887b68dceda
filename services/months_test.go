package services

import (
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"santodinheiro/database"
	"santodinheiro/migrations"
	"santodinheiro/models"
)

const testUserID = "svc-test-user"

func setupTestDB(t *testing.T) {
	t.Helper()

	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		t.Fatal(err)
	}
	database.DB = db

	if err := migrations.RunMigrations(db); err != nil {
		t.Fatal(err)
	}

	_, err = db.Exec(`
		INSERT INTO users (id, username, name, email, status, is_admin, role, notify_upcoming)
		VALUES (?, 'svcuser', 'Service Test User', 'svc@example.com', 'approved', 0, 'user', 0)
	`, testUserID)
	if err != nil {
		t.Fatal(err)
	}

	t.Cleanup(func() { db.Close() })
}

func insertIncome(t *testing.T, monthID, description, amount string, day *int, received bool) string {
	t.Helper()
	id := uuid.NewString()
	now := time.Now()
	_, err := database.DB.Exec(`
		INSERT INTO incomes (id, month_id, description, amount, day_of_month, is_received, is_tithe_paid, sort_order, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, 0, (SELECT COALESCE(MAX(sort_order)+1, 0) FROM incomes WHERE month_id = ?), ?, ?)
	`, id, monthID, description, amount, day, received, monthID, now, now)
	if err != nil {
		t.Fatal(err)
	}
	return id
}

func insertExpense(t *testing.T, monthID, description, total, paid, expenseType string) {
	t.Helper()
	now := time.Now()
	_, err := database.DB.Exec(`
		INSERT INTO expenses (id, month_id, description, total_amount, paid_amount, day_of_month, is_paid, type, sort_order, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, 5, 0, ?, 0, ?, ?)
	`, uuid.NewString(), monthID, description, total, paid, expenseType, now, now)
	if err != nil {
		t.Fatal(err)
	}
}

func TestGetMonthLoadsCalendarFields(t *testing.T) {
	setupTestDB(t)

	id, err := CreateEmptyMonth(testUserID, 2030, 7)
	if err != nil {
		t.Fatal(err)
	}

	m, err := GetMonth(testUserID, 2030, 7)
	if err != nil {
		t.Fatalf("GetMonth failed: %v", err)
	}

	if m.ID != id {
		t.Errorf("expected id %s, got %s", id, m.ID)
	}
	if m.UserID != testUserID {
		t.Errorf("expected user %s, got %s", testUserID, m.UserID)
	}
	// The embedded struct shadows the promoted field name, so the calendar
	// month is checked through the qualified selector.
	if m.Month.Month != 7 {
		t.Errorf("expected month 7, got %d", m.Month.Month)
	}
	if m.Year != 2030 {
		t.Errorf("expected year 2030, got %d", m.Year)
	}
	if m.IsTithePaid || !m.TithePaidAmount.IsZero() {
		t.Errorf("expected fresh tithe state, got paid=%v amount=%s", m.IsTithePaid, m.TithePaidAmount)
	}
}

func TestDuplicateMonthCopiesRecurringItemsOnly(t *testing.T) {
	setupTestDB(t)

	srcID, err := CreateEmptyMonth(testUserID, 2031, 3)
	if err != nil {
		t.Fatal(err)
	}

	day := 5
	insertIncome(t, srcID, "Salary", "8500", &day, true)
	insertExpense(t, srcID, "Rent", "2000", "2000", models.ExpenseTypeStandard)
	insertExpense(t, srcID, "Tithe March", "850", "850", models.ExpenseTypeTithe)

	now := time.Now()
	_, err = database.DB.Exec(`
		INSERT INTO investments (id, month_id, description, amount, day_of_month, is_paid, sort_order, created_at, updated_at)
		VALUES (?, ?, 'Index fund', '500', 15, 1, 0, ?, ?)
	`, uuid.NewString(), srcID, now, now)
	if err != nil {
		t.Fatal(err)
	}
	_, err = database.DB.Exec(`
		INSERT INTO misc_expenses (id, month_id, description, amount, day_of_month, is_paid, sort_order, created_at, updated_at)
		VALUES (?, ?, 'Car repair', '300', 12, 1, 0, ?, ?)
	`, uuid.NewString(), srcID, now, now)
	if err != nil {
		t.Fatal(err)
	}

	if err := DuplicateMonth(testUserID, 2031, 3, 2031, 4); err != nil {
		t.Fatal(err)
	}

	dst, err := GetMonth(testUserID, 2031, 4)
	if err != nil {
		t.Fatal(err)
	}

	if len(dst.Incomes) != 1 {
		t.Fatalf("expected 1 income copied, got %d", len(dst.Incomes))
	}
	if dst.Incomes[0].IsReceived {
		t.Error("copied income should not be marked received")
	}
	if dst.Incomes[0].DayOfMonth == nil || *dst.Incomes[0].DayOfMonth != 5 {
		t.Error("copied income should keep its scheduled day")
	}

	if len(dst.Expenses) != 1 {
		t.Fatalf("expected only the standard expense copied, got %d", len(dst.Expenses))
	}
	if dst.Expenses[0].Description != "Rent" {
		t.Errorf("expected Rent, got %s", dst.Expenses[0].Description)
	}
	if !dst.Expenses[0].PaidAmount.IsZero() || dst.Expenses[0].IsPaid {
		t.Error("copied expense should have payment state reset")
	}

	if len(dst.Investments) != 1 {
		t.Fatalf("expected 1 investment copied, got %d", len(dst.Investments))
	}
	if dst.Investments[0].IsPaid {
		t.Error("copied investment should not be marked paid")
	}

	if len(dst.MiscExpenses) != 0 {
		t.Errorf("misc expenses are one-off and must not be copied, got %d", len(dst.MiscExpenses))
	}

	if dst.IsTithePaid || !dst.TithePaidAmount.IsZero() {
		t.Error("new month should start with tithe unpaid")
	}
}

func TestDuplicateMonthRefusesExistingTarget(t *testing.T) {
	setupTestDB(t)

	if _, err := CreateEmptyMonth(testUserID, 2031, 5); err != nil {
		t.Fatal(err)
	}
	if _, err := CreateEmptyMonth(testUserID, 2031, 6); err != nil {
		t.Fatal(err)
	}

	err := DuplicateMonth(testUserID, 2031, 5, 2031, 6)
	if !errors.Is(err, ErrMonthExists) {
		t.Errorf("expected ErrMonthExists, got %v", err)
	}
}

func TestGetOrProvisionMonthFallsBackToEmpty(t *testing.T) {
	setupTestDB(t)

	m, created, err := GetOrProvisionMonth(testUserID, 2031, 1)
	if err != nil {
		t.Fatal(err)
	}
	if !created {
		t.Error("expected a month to be created")
	}
	if len(m.Incomes)+len(m.Expenses)+len(m.Investments)+len(m.MiscExpenses) != 0 {
		t.Error("expected an empty month with no preceding month to copy from")
	}

	// Second visit serves the stored month
	_, created, err = GetOrProvisionMonth(testUserID, 2031, 1)
	if err != nil {
		t.Fatal(err)
	}
	if created {
		t.Error("expected no provisioning on the second visit")
	}
}

func TestProvisionCurrentMonths(t *testing.T) {
	setupTestDB(t)

	srcID, err := CreateEmptyMonth(testUserID, 2031, 11)
	if err != nil {
		t.Fatal(err)
	}
	insertExpense(t, srcID, "Rent", "2000", "0", models.ExpenseTypeStandard)

	now := time.Date(2031, 12, 1, 5, 0, 0, 0, time.UTC)
	if err := ProvisionCurrentMonths(now); err != nil {
		t.Fatal(err)
	}

	m, err := GetMonth(testUserID, 2031, 12)
	if err != nil {
		t.Fatal(err)
	}
	if len(m.Expenses) != 1 {
		t.Errorf("expected the sweep to duplicate the previous month, got %d expenses", len(m.Expenses))
	}

	// A second sweep is a no-op
	if err := ProvisionCurrentMonths(now); err != nil {
		t.Fatal(err)
	}
	var count int
	database.DB.QueryRow("SELECT COUNT(*) FROM months WHERE user_id = ?", testUserID).Scan(&count)
	if count != 2 {
		t.Errorf("expected 2 months after rerun, got %d", count)
	}
}

func TestDeleteMonthLocksCurrentAndPast(t *testing.T) {
	setupTestDB(t)

	now := time.Date(2031, 6, 15, 12, 0, 0, 0, time.UTC)

	for _, tc := range []struct {
		year, month int
	}{
		{2031, 6},  // current
		{2031, 5},  // past month, same year
		{2030, 12}, // past year
	} {
		if _, err := CreateEmptyMonth(testUserID, tc.year, tc.month); err != nil {
			t.Fatal(err)
		}
		err := DeleteMonth(testUserID, tc.year, tc.month, now)
		if !errors.Is(err, ErrMonthLocked) {
			t.Errorf("delete %d-%02d: expected ErrMonthLocked, got %v", tc.year, tc.month, err)
		}
	}

	if _, err := CreateEmptyMonth(testUserID, 2031, 7); err != nil {
		t.Fatal(err)
	}
	if err := DeleteMonth(testUserID, 2031, 7, now); err != nil {
		t.Errorf("expected future month delete to succeed, got %v", err)
	}

	err := DeleteMonth(testUserID, 2031, 8, now)
	if !errors.Is(err, ErrMonthNotFound) {
		t.Errorf("expected ErrMonthNotFound for a missing month, got %v", err)
	}
}

func TestDeleteMonthCascadesItems(t *testing.T) {
	setupTestDB(t)

	id, err := CreateEmptyMonth(testUserID, 2031, 9)
	if err != nil {
		t.Fatal(err)
	}
	insertIncome(t, id, "Salary", "100", nil, false)

	now := time.Date(2031, 1, 1, 0, 0, 0, 0, time.UTC)
	if err := DeleteMonth(testUserID, 2031, 9, now); err != nil {
		t.Fatal(err)
	}

	var count int
	database.DB.QueryRow("SELECT COUNT(*) FROM incomes").Scan(&count)
	if count != 0 {
		t.Errorf("expected cascade delete of incomes, %d rows remain", count)
	}
}

func TestReorderItemsIsAtomic(t *testing.T) {
	setupTestDB(t)

	monthID, err := CreateEmptyMonth(testUserID, 2031, 10)
	if err != nil {
		t.Fatal(err)
	}

	a := insertIncome(t, monthID, "A", "100", nil, false)
	b := insertIncome(t, monthID, "B", "200", nil, false)
	c := insertIncome(t, monthID, "C", "300", nil, false)

	// A bogus id rolls the whole batch back
	err = ReorderItems(testUserID, 2031, 10, "incomes", []string{c, "no-such-id", a})
	if err == nil {
		t.Fatal("expected reorder with an unknown id to fail")
	}

	m, err := GetMonth(testUserID, 2031, 10)
	if err != nil {
		t.Fatal(err)
	}
	if m.Incomes[0].Description != "A" || m.Incomes[1].Description != "B" || m.Incomes[2].Description != "C" {
		t.Error("failed reorder must leave the original ordering untouched")
	}

	if err := ReorderItems(testUserID, 2031, 10, "incomes", []string{c, a, b}); err != nil {
		t.Fatal(err)
	}

	m, err = GetMonth(testUserID, 2031, 10)
	if err != nil {
		t.Fatal(err)
	}
	got := []string{m.Incomes[0].Description, m.Incomes[1].Description, m.Incomes[2].Description}
	want := []string{"C", "A", "B"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected order %v, got %v", want, got)
		}
	}
	for i, in := range m.Incomes {
		if in.Order != i {
			t.Errorf("expected dense zero-based order, item %d has sort order %d", i, in.Order)
		}
	}
}

func TestReorderItemsRejectsUnknownKind(t *testing.T) {
	setupTestDB(t)

	if _, err := CreateEmptyMonth(testUserID, 2031, 11); err != nil {
		t.Fatal(err)
	}

	err := ReorderItems(testUserID, 2031, 11, "users", []string{"x"})
	if !errors.Is(err, ErrUnknownItemKind) {
		t.Errorf("expected ErrUnknownItemKind, got %v", err)
	}
}
