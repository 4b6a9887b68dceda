package handlers

import (
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"santodinheiro/database"
	"santodinheiro/middleware"
	"santodinheiro/services"
)

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}

// serviceError maps service-layer errors onto HTTP statuses.
func serviceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, services.ErrMonthNotFound):
		http.Error(w, "Month not found", http.StatusNotFound)
	case errors.Is(err, services.ErrMonthExists):
		http.Error(w, "Month already exists", http.StatusConflict)
	case errors.Is(err, services.ErrMonthLocked):
		http.Error(w, "Current and past months cannot be deleted", http.StatusConflict)
	case errors.Is(err, services.ErrUnknownItemKind):
		http.Error(w, "Unknown item kind", http.StatusBadRequest)
	default:
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// monthParams parses the {year}/{month} route variables.
func monthParams(r *http.Request) (int, int, error) {
	vars := mux.Vars(r)

	year, err := strconv.Atoi(vars["year"])
	if err != nil || year < 1970 || year > 9999 {
		return 0, 0, errors.New("invalid year")
	}

	month, err := strconv.Atoi(vars["month"])
	if err != nil || month < 1 || month > 12 {
		return 0, 0, errors.New("invalid month")
	}

	return year, month, nil
}

// resolveOwner decides whose data the request operates on. By default it is
// the authenticated user; a collaborator passes ?owner= and must hold the
// corresponding grant. Returns an empty string after writing the response
// when access is denied.
func resolveOwner(w http.ResponseWriter, r *http.Request, permissionType string) string {
	userID := middleware.GetUserIDFromContext(r)
	if userID == "" {
		http.Error(w, "Unauthorized: No user ID found", http.StatusUnauthorized)
		return ""
	}

	owner := r.URL.Query().Get("owner")
	if owner == "" || owner == userID {
		return userID
	}

	allowed, err := services.CheckPermission(userID, owner, "months", permissionType)
	if err != nil {
		http.Error(w, "Failed to check permission: "+err.Error(), http.StatusInternalServerError)
		return ""
	}
	if !allowed {
		http.Error(w, "Forbidden: Insufficient permissions", http.StatusForbidden)
		return ""
	}

	return owner
}

// currentDayFromRequest returns the injected "today": the ?day= override
// when present (for deterministic rendering and tests), otherwise the
// wall-clock day of month.
func currentDayFromRequest(r *http.Request) int {
	if dayParam := r.URL.Query().Get("day"); dayParam != "" {
		if day, err := strconv.Atoi(dayParam); err == nil && day >= 1 && day <= 31 {
			return day
		}
	}
	return time.Now().Day()
}

// monthIDForOwner resolves the month row id for an owner's calendar month.
func monthIDForOwner(ownerID string, year, month int) (string, error) {
	var id string
	err := database.DB.QueryRow(`
		SELECT id FROM months WHERE user_id = ? AND year = ? AND month = ?
	`, ownerID, year, month).Scan(&id)
	if err == sql.ErrNoRows {
		return "", services.ErrMonthNotFound
	}
	if err != nil {
		return "", err
	}
	return id, nil
}
