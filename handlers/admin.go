package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"santodinheiro/middleware"
	"santodinheiro/services"
)

// requireAdmin resolves the caller and checks the admin flag. Returns "" after
// writing the error response when the caller is not an admin.
func requireAdmin(w http.ResponseWriter, r *http.Request) string {
	userID := middleware.GetUserIDFromContext(r)
	if userID == "" {
		http.Error(w, "Unauthorized: No user ID found", http.StatusUnauthorized)
		return ""
	}

	isAdmin, err := services.IsAdmin(userID)
	if err != nil {
		http.Error(w, "Failed to check admin status: "+err.Error(), http.StatusInternalServerError)
		return ""
	}
	if !isAdmin {
		http.Error(w, "Forbidden: Admin access required", http.StatusForbidden)
		return ""
	}

	return userID
}

// GetBusinessMetrics returns the admin dashboard figures: MRR, ARR, churn,
// tithe volume and user counts.
func GetBusinessMetrics(w http.ResponseWriter, r *http.Request) {
	if requireAdmin(w, r) == "" {
		return
	}

	metrics, err := services.ComputeBusinessMetrics(time.Now())
	if err != nil {
		http.Error(w, "Failed to compute metrics: "+err.Error(), http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, metrics)
}

// GetBillingConfig returns the billing provider configuration without the
// stored token.
func GetBillingConfig(w http.ResponseWriter, r *http.Request) {
	if requireAdmin(w, r) == "" {
		return
	}

	cfg, err := services.GetBillingConfig()
	if err == services.ErrBillingNotConfigured {
		writeJSON(w, http.StatusOK, map[string]bool{"hasCredentials": false})
		return
	}
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, cfg)
}

// UpdateBillingConfig stores the billing provider API token and base URL.
func UpdateBillingConfig(w http.ResponseWriter, r *http.Request) {
	if requireAdmin(w, r) == "" {
		return
	}

	var request struct {
		APIToken string `json:"apiToken"`
		BaseURL  string `json:"baseUrl"`
	}
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if request.APIToken == "" || request.BaseURL == "" {
		http.Error(w, "apiToken and baseUrl are required", http.StatusBadRequest)
		return
	}

	if err := services.UpdateBillingConfig(request.APIToken, request.BaseURL); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusOK)
}

// TriggerBillingSync runs a subscription sync on demand instead of waiting
// for the nightly job.
func TriggerBillingSync(w http.ResponseWriter, r *http.Request) {
	if requireAdmin(w, r) == "" {
		return
	}

	if err := services.SyncSubscriptions(); err != nil {
		if err == services.ErrBillingNotConfigured {
			http.Error(w, err.Error(), http.StatusConflict)
			return
		}
		http.Error(w, "Sync failed: "+err.Error(), http.StatusBadGateway)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "synced"})
}
