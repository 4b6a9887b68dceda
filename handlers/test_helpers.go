package handlers

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"

	_ "github.com/mattn/go-sqlite3"

	"santodinheiro/database"
	"santodinheiro/middleware"
	"santodinheiro/migrations"
)

// TestUserID is the seeded admin user every handler test runs as.
const TestUserID = "test-user-id"

// SetupTestDB points database.DB at a fresh in-memory SQLite database with
// the full schema applied and the test user seeded as admin.
func SetupTestDB() {
	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		panic(err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		panic(err)
	}
	database.DB = db

	if err := migrations.RunMigrations(db); err != nil {
		panic(err)
	}

	_, err = db.Exec(`
		INSERT INTO users (id, username, name, email, status, is_admin, role, notify_upcoming)
		VALUES (?, 'testuser', 'Test User', 'test@example.com', 'approved', 1, 'admin', 0)
	`, TestUserID)
	if err != nil {
		panic(err)
	}
}

// CleanupTestDB closes the test database connection.
func CleanupTestDB() {
	if database.DB != nil {
		database.DB.Close()
	}
}

// MockAuthContext adds a user ID to the request context for testing.
func MockAuthContext(req *http.Request, userID string) *http.Request {
	ctx := context.WithValue(req.Context(), middleware.UserIDKey, userID)
	return req.WithContext(ctx)
}

// NewAuthenticatedRequest creates a request carrying the test user's auth
// context, with an optional JSON body.
func NewAuthenticatedRequest(method, url string, body interface{}) *http.Request {
	var req *http.Request

	if body != nil {
		buf, _ := json.Marshal(body)
		req = httptest.NewRequest(method, url, bytes.NewBuffer(buf))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, url, nil)
	}

	return MockAuthContext(req, TestUserID)
}
