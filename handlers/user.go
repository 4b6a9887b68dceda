package handlers

import (
	"database/sql"
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"santodinheiro/database"
	"santodinheiro/middleware"
	"santodinheiro/models"
	"santodinheiro/services"
)

// GetUsers lists all users. Admin only.
func GetUsers(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserIDFromContext(r)
	if userID == "" {
		http.Error(w, "Unauthorized: No user ID found", http.StatusUnauthorized)
		return
	}

	isAdmin, err := services.IsAdmin(userID)
	if err != nil {
		http.Error(w, "Failed to check user permissions: "+err.Error(), http.StatusInternalServerError)
		return
	}
	if !isAdmin {
		http.Error(w, "Forbidden: Admin access required", http.StatusForbidden)
		return
	}

	rows, err := database.DB.Query(`
		SELECT id, username, name, email, status, is_admin, role, notify_upcoming FROM users
	`)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	defer rows.Close()

	var users []models.User
	for rows.Next() {
		var u models.User
		if err := rows.Scan(&u.ID, &u.Username, &u.Name, &u.Email, &u.Status, &u.IsAdmin, &u.Role, &u.NotifyUpcoming); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		users = append(users, u)
	}

	writeJSON(w, http.StatusOK, users)
}

// SyncIdentityUser upserts the authenticated identity-provider user into the
// local users table. Called by the frontend after sign-in; the webhook keeps
// the row fresh afterwards.
func SyncIdentityUser(w http.ResponseWriter, r *http.Request) {
	uid := middleware.GetUserIDFromContext(r)
	if uid == "" {
		http.Error(w, "Unauthorized: No user ID found", http.StatusUnauthorized)
		return
	}

	var request struct {
		Name           string `json:"name"`
		Email          string `json:"email"`
		Username       string `json:"username,omitempty"`
		NotifyUpcoming bool   `json:"notifyUpcoming"`
	}
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if request.Username == "" {
		request.Username = request.Email
	}

	var existingID string
	err := database.DB.QueryRow("SELECT id FROM users WHERE id = ?", uid).Scan(&existingID)
	switch {
	case err == sql.ErrNoRows:
		_, err = database.DB.Exec(`
			INSERT INTO users (id, username, name, email, status, is_admin, role, notify_upcoming)
			VALUES (?, ?, ?, ?, 'approved', 0, 'user', ?)
		`, uid, request.Username, request.Name, request.Email, request.NotifyUpcoming)
		if err != nil {
			http.Error(w, "Failed to create user: "+err.Error(), http.StatusInternalServerError)
			return
		}
	case err != nil:
		http.Error(w, "Database error: "+err.Error(), http.StatusInternalServerError)
		return
	default:
		_, err = database.DB.Exec(`
			UPDATE users SET username = ?, name = ?, email = ?, notify_upcoming = ? WHERE id = ?
		`, request.Username, request.Name, request.Email, request.NotifyUpcoming, uid)
		if err != nil {
			http.Error(w, "Failed to update user: "+err.Error(), http.StatusInternalServerError)
			return
		}
	}

	writeJSON(w, http.StatusOK, map[string]string{"id": uid})
}

// SetUserRole changes a user's role, subject to the role hierarchy rules.
func SetUserRole(w http.ResponseWriter, r *http.Request) {
	actorID := middleware.GetUserIDFromContext(r)
	if actorID == "" {
		http.Error(w, "Unauthorized: No user ID found", http.StatusUnauthorized)
		return
	}

	var request struct {
		UserID string `json:"userId"`
		Role   string `json:"role"`
	}
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if request.UserID == "" || request.Role == "" {
		http.Error(w, "userId and role are required", http.StatusBadRequest)
		return
	}

	if err := services.SetUserRole(actorID, request.UserID, request.Role); err != nil {
		http.Error(w, err.Error(), http.StatusForbidden)
		return
	}

	w.WriteHeader(http.StatusOK)
}

// GetUserRole returns a user's role.
func GetUserRole(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserIDFromContext(r)
	if userID == "" {
		http.Error(w, "Unauthorized: No user ID found", http.StatusUnauthorized)
		return
	}

	targetID := mux.Vars(r)["userId"]
	if targetID != userID {
		isAdmin, err := services.IsAdmin(userID)
		if err != nil {
			http.Error(w, "Failed to check admin status: "+err.Error(), http.StatusInternalServerError)
			return
		}
		if !isAdmin {
			http.Error(w, "Forbidden: Only admins can view other users' roles", http.StatusForbidden)
			return
		}
	}

	role, err := services.GetUserRole(targetID)
	if err != nil {
		if err == sql.ErrNoRows {
			http.Error(w, "User not found", http.StatusNotFound)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"userId": targetID, "role": role})
}
