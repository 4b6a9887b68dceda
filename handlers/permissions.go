package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"santodinheiro/middleware"
	"santodinheiro/services"
)

// GetUserPermissions returns all permissions granted to the caller, or to
// another user when an admin asks.
func GetUserPermissions(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserIDFromContext(r)
	if userID == "" {
		http.Error(w, "Unauthorized: No user ID found", http.StatusUnauthorized)
		return
	}

	targetUserID := r.URL.Query().Get("userId")
	if targetUserID != "" && targetUserID != userID {
		isAdmin, err := services.IsAdmin(userID)
		if err != nil {
			http.Error(w, "Failed to check admin status: "+err.Error(), http.StatusInternalServerError)
			return
		}
		if !isAdmin {
			http.Error(w, "Forbidden: Only admins can view other users' permissions", http.StatusForbidden)
			return
		}
		userID = targetUserID
	}

	permissions, err := services.GetUserPermissions(userID)
	if err != nil {
		http.Error(w, "Failed to get user permissions: "+err.Error(), http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, permissions)
}

// GrantPermission shares the caller's data with a collaborator.
func GrantPermission(w http.ResponseWriter, r *http.Request) {
	granterID := middleware.GetUserIDFromContext(r)
	if granterID == "" {
		http.Error(w, "Unauthorized: No user ID found", http.StatusUnauthorized)
		return
	}

	var request struct {
		GranteeID      string     `json:"granteeId"`
		ResourceType   string     `json:"resourceType"`
		PermissionType string     `json:"permissionType"`
		ExpiresAt      *time.Time `json:"expiresAt,omitempty"`
	}
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		http.Error(w, "Invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}

	if request.GranteeID == "" {
		http.Error(w, "granteeId is required", http.StatusBadRequest)
		return
	}
	if request.ResourceType == "" {
		http.Error(w, "resourceType is required", http.StatusBadRequest)
		return
	}
	if request.PermissionType == "" {
		http.Error(w, "permissionType is required", http.StatusBadRequest)
		return
	}

	err := services.GrantPermission(granterID, request.GranteeID, request.ResourceType, request.PermissionType, request.ExpiresAt)
	if err != nil {
		http.Error(w, "Failed to grant permission: "+err.Error(), http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusCreated)
}

// RevokePermission removes a collaborator grant.
func RevokePermission(w http.ResponseWriter, r *http.Request) {
	revokerID := middleware.GetUserIDFromContext(r)
	if revokerID == "" {
		http.Error(w, "Unauthorized: No user ID found", http.StatusUnauthorized)
		return
	}

	var request struct {
		GranteeID      string `json:"granteeId"`
		OwnerID        string `json:"ownerId"`
		ResourceType   string `json:"resourceType"`
		PermissionType string `json:"permissionType"`
	}
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		http.Error(w, "Invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}

	if request.OwnerID == "" {
		request.OwnerID = revokerID
	}

	err := services.RevokePermission(revokerID, request.GranteeID, request.OwnerID, request.ResourceType, request.PermissionType)
	if err != nil {
		http.Error(w, "Failed to revoke permission: "+err.Error(), http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusOK)
}
