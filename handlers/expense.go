package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"santodinheiro/database"
	"santodinheiro/models"
)

// AddExpense creates an expense in the given month. The type defaults to
// STANDARD when omitted.
func AddExpense(w http.ResponseWriter, r *http.Request) {
	owner := resolveOwner(w, r, models.PermissionWrite)
	if owner == "" {
		return
	}

	year, month, err := monthParams(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	var e models.Expense
	if err := json.NewDecoder(r.Body).Decode(&e); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if e.Type == "" {
		e.Type = models.ExpenseTypeStandard
	}
	if err := e.Validate(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	monthID, err := monthIDForOwner(owner, year, month)
	if err != nil {
		serviceError(w, err)
		return
	}

	e.ID = uuid.NewString()
	e.MonthID = monthID
	e.CreatedAt = time.Now()
	e.UpdatedAt = e.CreatedAt

	err = database.DB.QueryRow(`
		SELECT COALESCE(MAX(sort_order) + 1, 0) FROM expenses WHERE month_id = ?
	`, monthID).Scan(&e.Order)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	_, err = database.DB.Exec(`
		INSERT INTO expenses (id, month_id, description, total_amount, paid_amount, day_of_month, is_paid, type, sort_order, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, e.ID, e.MonthID, e.Description, e.TotalAmount.String(), e.PaidAmount.String(),
		e.DayOfMonth, e.IsPaid, e.Type, e.Order, e.CreatedAt, e.UpdatedAt)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusCreated, e)
}

// UpdateExpense rewrites an expense's editable fields.
func UpdateExpense(w http.ResponseWriter, r *http.Request) {
	owner := resolveOwner(w, r, models.PermissionWrite)
	if owner == "" {
		return
	}

	year, month, err := monthParams(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	var e models.Expense
	if err := json.NewDecoder(r.Body).Decode(&e); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if e.Type == "" {
		e.Type = models.ExpenseTypeStandard
	}
	if err := e.Validate(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	monthID, err := monthIDForOwner(owner, year, month)
	if err != nil {
		serviceError(w, err)
		return
	}

	id := mux.Vars(r)["id"]
	res, err := database.DB.Exec(`
		UPDATE expenses
		SET description = ?, total_amount = ?, paid_amount = ?, day_of_month = ?, is_paid = ?, type = ?, updated_at = ?
		WHERE id = ? AND month_id = ?
	`, e.Description, e.TotalAmount.String(), e.PaidAmount.String(), e.DayOfMonth,
		e.IsPaid, e.Type, time.Now(), id, monthID)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	if affected, _ := res.RowsAffected(); affected == 0 {
		http.Error(w, "Expense not found", http.StatusNotFound)
		return
	}

	w.WriteHeader(http.StatusOK)
}

// DeleteExpense removes an expense from the month.
func DeleteExpense(w http.ResponseWriter, r *http.Request) {
	owner := resolveOwner(w, r, models.PermissionWrite)
	if owner == "" {
		return
	}

	year, month, err := monthParams(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	monthID, err := monthIDForOwner(owner, year, month)
	if err != nil {
		serviceError(w, err)
		return
	}

	id := mux.Vars(r)["id"]
	res, err := database.DB.Exec(`DELETE FROM expenses WHERE id = ? AND month_id = ?`, id, monthID)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	if affected, _ := res.RowsAffected(); affected == 0 {
		http.Error(w, "Expense not found", http.StatusNotFound)
		return
	}

	w.WriteHeader(http.StatusOK)
}
