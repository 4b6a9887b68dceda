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

// AddIncome creates an income in the given month.
func AddIncome(w http.ResponseWriter, r *http.Request) {
	owner := resolveOwner(w, r, models.PermissionWrite)
	if owner == "" {
		return
	}

	year, month, err := monthParams(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	var in models.Income
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if err := in.Validate(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	monthID, err := monthIDForOwner(owner, year, month)
	if err != nil {
		serviceError(w, err)
		return
	}

	in.ID = uuid.NewString()
	in.MonthID = monthID
	in.CreatedAt = time.Now()
	in.UpdatedAt = in.CreatedAt

	err = database.DB.QueryRow(`
		SELECT COALESCE(MAX(sort_order) + 1, 0) FROM incomes WHERE month_id = ?
	`, monthID).Scan(&in.Order)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	_, err = database.DB.Exec(`
		INSERT INTO incomes (id, month_id, description, amount, day_of_month, is_received, is_tithe_paid, sort_order, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, in.ID, in.MonthID, in.Description, in.Amount.String(), in.DayOfMonth,
		in.IsReceived, in.IsTithePaid, in.Order, in.CreatedAt, in.UpdatedAt)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusCreated, in)
}

// UpdateIncome rewrites an income's editable fields.
func UpdateIncome(w http.ResponseWriter, r *http.Request) {
	owner := resolveOwner(w, r, models.PermissionWrite)
	if owner == "" {
		return
	}

	year, month, err := monthParams(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	var in models.Income
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if err := in.Validate(); err != nil {
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
		UPDATE incomes
		SET description = ?, amount = ?, day_of_month = ?, is_received = ?, is_tithe_paid = ?, updated_at = ?
		WHERE id = ? AND month_id = ?
	`, in.Description, in.Amount.String(), in.DayOfMonth, in.IsReceived, in.IsTithePaid, time.Now(), id, monthID)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	if affected, _ := res.RowsAffected(); affected == 0 {
		http.Error(w, "Income not found", http.StatusNotFound)
		return
	}

	w.WriteHeader(http.StatusOK)
}

// DeleteIncome removes an income from the month.
func DeleteIncome(w http.ResponseWriter, r *http.Request) {
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
	res, err := database.DB.Exec(`DELETE FROM incomes WHERE id = ? AND month_id = ?`, id, monthID)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	if affected, _ := res.RowsAffected(); affected == 0 {
		http.Error(w, "Income not found", http.StatusNotFound)
		return
	}

	w.WriteHeader(http.StatusOK)
}
