package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"santodinheiro/database"
	"santodinheiro/finance"
	"santodinheiro/models"
)

func monthVars(req *http.Request, year, month int) *http.Request {
	return mux.SetURLVars(req, map[string]string{
		"year":  fmt.Sprintf("%d", year),
		"month": fmt.Sprintf("%d", month),
	})
}

func seedMonth(t *testing.T, userID string, year, month int) string {
	t.Helper()
	id := uuid.NewString()
	now := time.Now()
	_, err := database.DB.Exec(`
		INSERT INTO months (id, user_id, month, year, is_tithe_paid, tithe_paid_amount, created_at, updated_at)
		VALUES (?, ?, ?, ?, 0, '0', ?, ?)
	`, id, userID, month, year, now, now)
	if err != nil {
		t.Fatal(err)
	}
	return id
}

func seedIncome(t *testing.T, monthID, description, amount string, day int, received bool) {
	t.Helper()
	now := time.Now()
	_, err := database.DB.Exec(`
		INSERT INTO incomes (id, month_id, description, amount, day_of_month, is_received, is_tithe_paid, sort_order, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, 0, 0, ?, ?)
	`, uuid.NewString(), monthID, description, amount, day, received, now, now)
	if err != nil {
		t.Fatal(err)
	}
}

func seedExpense(t *testing.T, monthID, description, total, paid, expenseType string, day int) {
	t.Helper()
	now := time.Now()
	_, err := database.DB.Exec(`
		INSERT INTO expenses (id, month_id, description, total_amount, paid_amount, day_of_month, is_paid, type, sort_order, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, 0, ?, 0, ?, ?)
	`, uuid.NewString(), monthID, description, total, paid, day, expenseType, now, now)
	if err != nil {
		t.Fatal(err)
	}
}

type monthTestResponse struct {
	models.MonthWithItems
	CurrentDay int                `json:"currentDay"`
	Created    bool               `json:"created"`
	Aggregates finance.Aggregates `json:"aggregates"`
}

func TestGetMonthProvisionsEmptyMonth(t *testing.T) {
	SetupTestDB()
	defer CleanupTestDB()

	req := NewAuthenticatedRequest("GET", "/months/2030/5?day=10", nil)
	req = monthVars(req, 2030, 5)

	rr := httptest.NewRecorder()
	GetMonth(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}

	var resp monthTestResponse
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatal(err)
	}

	if !resp.Created {
		t.Error("expected created to be true for a first visit")
	}
	if len(resp.Incomes) != 0 || len(resp.Expenses) != 0 {
		t.Errorf("expected empty month, got %d incomes and %d expenses",
			len(resp.Incomes), len(resp.Expenses))
	}
	if !resp.Aggregates.PredictedBalance.IsZero() {
		t.Errorf("expected zero predicted balance, got %s", resp.Aggregates.PredictedBalance)
	}
	if resp.CurrentDay != 10 {
		t.Errorf("expected currentDay 10, got %d", resp.CurrentDay)
	}
}

func TestGetMonthDuplicatesPreviousMonth(t *testing.T) {
	SetupTestDB()
	defer CleanupTestDB()

	prevID := seedMonth(t, TestUserID, 2030, 4)
	seedIncome(t, prevID, "Salary", "5000", 5, true)
	seedExpense(t, prevID, "Rent", "1500", "1500", models.ExpenseTypeStandard, 1)
	seedExpense(t, prevID, "Tithe April", "500", "500", models.ExpenseTypeTithe, 10)

	req := NewAuthenticatedRequest("GET", "/months/2030/5?day=1", nil)
	req = monthVars(req, 2030, 5)

	rr := httptest.NewRecorder()
	GetMonth(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}

	var resp monthTestResponse
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatal(err)
	}

	if !resp.Created {
		t.Error("expected created to be true")
	}
	if len(resp.Incomes) != 1 {
		t.Fatalf("expected 1 copied income, got %d", len(resp.Incomes))
	}
	if resp.Incomes[0].IsReceived {
		t.Error("copied income should have its received flag reset")
	}
	if len(resp.Expenses) != 1 {
		t.Fatalf("expected only the standard expense to be copied, got %d", len(resp.Expenses))
	}
	if resp.Expenses[0].Type != models.ExpenseTypeStandard {
		t.Errorf("expected standard expense, got type %s", resp.Expenses[0].Type)
	}
	if !resp.Expenses[0].PaidAmount.IsZero() {
		t.Errorf("copied expense paid amount should reset to zero, got %s", resp.Expenses[0].PaidAmount)
	}
}

func TestDeleteMonthGuardsCurrentAndPast(t *testing.T) {
	SetupTestDB()
	defer CleanupTestDB()

	now := time.Now()
	seedMonth(t, TestUserID, now.Year(), int(now.Month()))

	req := NewAuthenticatedRequest("DELETE", "/months/0/0", nil)
	req = monthVars(req, now.Year(), int(now.Month()))

	rr := httptest.NewRecorder()
	DeleteMonth(rr, req)

	if rr.Code != http.StatusConflict {
		t.Errorf("deleting the current month should return 409, got %d", rr.Code)
	}

	seedMonth(t, TestUserID, now.Year()+1, 1)
	req = NewAuthenticatedRequest("DELETE", "/months/0/0", nil)
	req = monthVars(req, now.Year()+1, 1)

	rr = httptest.NewRecorder()
	DeleteMonth(rr, req)

	if rr.Code != http.StatusOK {
		t.Errorf("deleting a future month should return 200, got %d: %s", rr.Code, rr.Body.String())
	}
}

func TestUpdateTitheRecomputesAmount(t *testing.T) {
	SetupTestDB()
	defer CleanupTestDB()

	monthID := seedMonth(t, TestUserID, 2030, 6)
	seedIncome(t, monthID, "Salary", "1000.50", 5, true)
	seedIncome(t, monthID, "Freelance", "25", 20, false)

	req := NewAuthenticatedRequest("PUT", "/months/2030/6/tithe", map[string]bool{"isTithePaid": true})
	req = monthVars(req, 2030, 6)

	rr := httptest.NewRecorder()
	UpdateTithe(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}

	var paid bool
	var amount string
	err := database.DB.QueryRow(`
		SELECT is_tithe_paid, tithe_paid_amount FROM months WHERE id = ?
	`, monthID).Scan(&paid, &amount)
	if err != nil {
		t.Fatal(err)
	}
	if !paid {
		t.Error("expected tithe flag to be set")
	}
	// 10% of all income, received or not
	if amount != "102.55" {
		t.Errorf("expected tithe amount 102.55, got %s", amount)
	}

	req = NewAuthenticatedRequest("PUT", "/months/2030/6/tithe", map[string]bool{"isTithePaid": false})
	req = monthVars(req, 2030, 6)

	rr = httptest.NewRecorder()
	UpdateTithe(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}

	err = database.DB.QueryRow(`
		SELECT is_tithe_paid, tithe_paid_amount FROM months WHERE id = ?
	`, monthID).Scan(&paid, &amount)
	if err != nil {
		t.Fatal(err)
	}
	if paid || amount != "0" {
		t.Errorf("expected tithe cleared, got paid=%v amount=%s", paid, amount)
	}
}

func TestGetMonthRequiresGrantForOtherOwner(t *testing.T) {
	SetupTestDB()
	defer CleanupTestDB()

	// The seeded test user is an admin and admins always pass the check, so
	// this test runs as a plain collaborator.
	_, err := database.DB.Exec(`
		INSERT INTO users (id, username, name, email, status, is_admin, role, notify_upcoming) VALUES
			('owner-1', 'owner', 'Owner', 'owner@example.com', 'approved', 0, 'user', 0),
			('viewer-1', 'viewer', 'Viewer', 'viewer@example.com', 'approved', 0, 'user', 0)
	`)
	if err != nil {
		t.Fatal(err)
	}
	seedMonth(t, "owner-1", 2030, 7)

	req := httptest.NewRequest("GET", "/months/2030/7?owner=owner-1", nil)
	req = MockAuthContext(req, "viewer-1")
	req = monthVars(req, 2030, 7)

	rr := httptest.NewRecorder()
	GetMonth(rr, req)

	if rr.Code != http.StatusForbidden {
		t.Errorf("expected 403 without a grant, got %d", rr.Code)
	}

	_, err = database.DB.Exec(`
		INSERT INTO permissions (granted_user_id, owner_user_id, resource_type, permission_type, created_at)
		VALUES ('viewer-1', 'owner-1', 'months', 'read', ?)
	`, time.Now())
	if err != nil {
		t.Fatal(err)
	}

	req = httptest.NewRequest("GET", "/months/2030/7?owner=owner-1", nil)
	req = MockAuthContext(req, "viewer-1")
	req = monthVars(req, 2030, 7)

	rr = httptest.NewRecorder()
	GetMonth(rr, req)

	if rr.Code != http.StatusOK {
		t.Errorf("expected 200 with a read grant, got %d: %s", rr.Code, rr.Body.String())
	}
}
