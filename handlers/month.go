package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"santodinheiro/finance"
	"santodinheiro/models"
	"santodinheiro/services"
)

// monthResponse is the month page payload: the raw month with items plus
// every aggregate figure the view displays.
type monthResponse struct {
	*models.MonthWithItems
	CurrentDay int                `json:"currentDay"`
	Created    bool               `json:"created"`
	Aggregates finance.Aggregates `json:"aggregates"`
}

// GetMonth serves a month, provisioning it on first visit: duplicated from
// the preceding month when one exists, created empty otherwise.
func GetMonth(w http.ResponseWriter, r *http.Request) {
	owner := resolveOwner(w, r, models.PermissionRead)
	if owner == "" {
		return
	}

	year, month, err := monthParams(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	m, created, err := services.GetOrProvisionMonth(owner, year, month)
	if err != nil {
		serviceError(w, err)
		return
	}

	currentDay := currentDayFromRequest(r)
	writeJSON(w, http.StatusOK, monthResponse{
		MonthWithItems: m,
		CurrentDay:     currentDay,
		Created:        created,
		Aggregates:     finance.ComputeAggregates(*m, currentDay),
	})
}

// GetSummary serves the aggregate figures only.
func GetSummary(w http.ResponseWriter, r *http.Request) {
	owner := resolveOwner(w, r, models.PermissionRead)
	if owner == "" {
		return
	}

	year, month, err := monthParams(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	m, err := services.GetMonth(owner, year, month)
	if err != nil {
		serviceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, finance.ComputeAggregates(*m, currentDayFromRequest(r)))
}

// DeleteMonth removes a future month. The current real-time month and past
// months are locked.
func DeleteMonth(w http.ResponseWriter, r *http.Request) {
	owner := resolveOwner(w, r, models.PermissionWrite)
	if owner == "" {
		return
	}

	year, month, err := monthParams(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := services.DeleteMonth(owner, year, month, time.Now()); err != nil {
		serviceError(w, err)
		return
	}

	w.WriteHeader(http.StatusOK)
}

// DuplicateMonth copies the month's recurring items into the next calendar
// month.
func DuplicateMonth(w http.ResponseWriter, r *http.Request) {
	owner := resolveOwner(w, r, models.PermissionWrite)
	if owner == "" {
		return
	}

	year, month, err := monthParams(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	dstYear, dstMonth := services.NextMonth(year, month)
	if err := services.DuplicateMonth(owner, year, month, dstYear, dstMonth); err != nil {
		serviceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]int{"year": dstYear, "month": dstMonth})
}

// UpdateTithe toggles the month's tithe-paid flag. The paid amount is
// recomputed server-side from the month's incomes.
func UpdateTithe(w http.ResponseWriter, r *http.Request) {
	owner := resolveOwner(w, r, models.PermissionWrite)
	if owner == "" {
		return
	}

	year, month, err := monthParams(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	var body struct {
		IsTithePaid bool `json:"isTithePaid"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if err := services.SetTithePaid(owner, year, month, body.IsTithePaid); err != nil {
		serviceError(w, err)
		return
	}

	w.WriteHeader(http.StatusOK)
}
