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

// AddMiscExpense creates a misc expense in the given month.
func AddMiscExpense(w http.ResponseWriter, r *http.Request) {
	owner := resolveOwner(w, r, models.PermissionWrite)
	if owner == "" {
		return
	}

	year, month, err := monthParams(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	var m models.MiscExpense
	if err := json.NewDecoder(r.Body).Decode(&m); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if err := m.Validate(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	monthID, err := monthIDForOwner(owner, year, month)
	if err != nil {
		serviceError(w, err)
		return
	}

	m.ID = uuid.NewString()
	m.MonthID = monthID
	m.CreatedAt = time.Now()
	m.UpdatedAt = m.CreatedAt

	err = database.DB.QueryRow(`
		SELECT COALESCE(MAX(sort_order) + 1, 0) FROM misc_expenses WHERE month_id = ?
	`, monthID).Scan(&m.Order)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	_, err = database.DB.Exec(`
		INSERT INTO misc_expenses (id, month_id, description, amount, day_of_month, is_paid, sort_order, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, m.ID, m.MonthID, m.Description, m.Amount.String(), m.DayOfMonth, m.IsPaid, m.Order, m.CreatedAt, m.UpdatedAt)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusCreated, m)
}

// UpdateMiscExpense rewrites a misc expense's editable fields.
func UpdateMiscExpense(w http.ResponseWriter, r *http.Request) {
	owner := resolveOwner(w, r, models.PermissionWrite)
	if owner == "" {
		return
	}

	year, month, err := monthParams(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	var m models.MiscExpense
	if err := json.NewDecoder(r.Body).Decode(&m); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if err := m.Validate(); err != nil {
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
		UPDATE misc_expenses
		SET description = ?, amount = ?, day_of_month = ?, is_paid = ?, updated_at = ?
		WHERE id = ? AND month_id = ?
	`, m.Description, m.Amount.String(), m.DayOfMonth, m.IsPaid, time.Now(), id, monthID)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	if affected, _ := res.RowsAffected(); affected == 0 {
		http.Error(w, "Misc expense not found", http.StatusNotFound)
		return
	}

	w.WriteHeader(http.StatusOK)
}

// DeleteMiscExpense removes a misc expense from the month.
func DeleteMiscExpense(w http.ResponseWriter, r *http.Request) {
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
	res, err := database.DB.Exec(`DELETE FROM misc_expenses WHERE id = ? AND month_id = ?`, id, monthID)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	if affected, _ := res.RowsAffected(); affected == 0 {
		http.Error(w, "Misc expense not found", http.StatusNotFound)
		return
	}

	w.WriteHeader(http.StatusOK)
}
