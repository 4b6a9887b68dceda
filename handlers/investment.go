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

// AddInvestment creates an investment in the given month.
func AddInvestment(w http.ResponseWriter, r *http.Request) {
	owner := resolveOwner(w, r, models.PermissionWrite)
	if owner == "" {
		return
	}

	year, month, err := monthParams(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	var v models.Investment
	if err := json.NewDecoder(r.Body).Decode(&v); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if err := v.Validate(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	monthID, err := monthIDForOwner(owner, year, month)
	if err != nil {
		serviceError(w, err)
		return
	}

	v.ID = uuid.NewString()
	v.MonthID = monthID
	v.CreatedAt = time.Now()
	v.UpdatedAt = v.CreatedAt

	err = database.DB.QueryRow(`
		SELECT COALESCE(MAX(sort_order) + 1, 0) FROM investments WHERE month_id = ?
	`, monthID).Scan(&v.Order)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	_, err = database.DB.Exec(`
		INSERT INTO investments (id, month_id, description, amount, day_of_month, is_paid, sort_order, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, v.ID, v.MonthID, v.Description, v.Amount.String(), v.DayOfMonth, v.IsPaid, v.Order, v.CreatedAt, v.UpdatedAt)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusCreated, v)
}

// UpdateInvestment rewrites an investment's editable fields.
func UpdateInvestment(w http.ResponseWriter, r *http.Request) {
	owner := resolveOwner(w, r, models.PermissionWrite)
	if owner == "" {
		return
	}

	year, month, err := monthParams(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	var v models.Investment
	if err := json.NewDecoder(r.Body).Decode(&v); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if err := v.Validate(); err != nil {
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
		UPDATE investments
		SET description = ?, amount = ?, day_of_month = ?, is_paid = ?, updated_at = ?
		WHERE id = ? AND month_id = ?
	`, v.Description, v.Amount.String(), v.DayOfMonth, v.IsPaid, time.Now(), id, monthID)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	if affected, _ := res.RowsAffected(); affected == 0 {
		http.Error(w, "Investment not found", http.StatusNotFound)
		return
	}

	w.WriteHeader(http.StatusOK)
}

// DeleteInvestment removes an investment from the month.
func DeleteInvestment(w http.ResponseWriter, r *http.Request) {
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
	res, err := database.DB.Exec(`DELETE FROM investments WHERE id = ? AND month_id = ?`, id, monthID)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	if affected, _ := res.RowsAffected(); affected == 0 {
		http.Error(w, "Investment not found", http.StatusNotFound)
		return
	}

	w.WriteHeader(http.StatusOK)
}
