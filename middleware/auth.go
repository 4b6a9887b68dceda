package middleware

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/auth"
	"google.golang.org/api/option"

	"santodinheiro/logging"
)

type contextKey string

const UserIDKey contextKey = "user_id"

var firebaseAuth *auth.Client

// InitializeFirebase initializes the Firebase Admin SDK used to verify ID
// tokens. Credentials come from FIREBASE_SERVICE_ACCOUNT_JSON or its base64
// variant; with neither set the middleware runs in dev mode with auth
// checks disabled.
func InitializeFirebase() error {
	credJSON := os.Getenv("FIREBASE_SERVICE_ACCOUNT_JSON")
	if credJSON == "" {
		if credBase64 := os.Getenv("FIREBASE_SERVICE_ACCOUNT_BASE64"); credBase64 != "" {
			decoded, err := base64.StdEncoding.DecodeString(credBase64)
			if err != nil {
				return fmt.Errorf("failed to decode base64 Firebase credentials: %w", err)
			}
			credJSON = string(decoded)
		}
	}

	if credJSON == "" {
		logging.Log.Warn("No Firebase credentials found; running with auth checks disabled")
		return nil
	}

	opt := option.WithCredentialsJSON([]byte(credJSON))
	app, err := firebase.NewApp(context.Background(), nil, opt)
	if err != nil {
		return fmt.Errorf("failed to initialize Firebase app: %w", err)
	}

	firebaseAuth, err = app.Auth(context.Background())
	if err != nil {
		return fmt.Errorf("failed to get Firebase Auth client: %w", err)
	}

	logging.Log.Info("Firebase Admin SDK initialized")
	return nil
}

// AuthMiddleware verifies Firebase ID tokens from the Authorization header
// and puts the stable user id on the request context.
func AuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// CORS preflight never carries credentials
		if r.Method == http.MethodOptions {
			next.ServeHTTP(w, r)
			return
		}

		if firebaseAuth == nil {
			// Dev mode: act as the seeded admin user
			ctx := context.WithValue(r.Context(), UserIDKey, "dev-user-1")
			next.ServeHTTP(w, r.WithContext(ctx))
			return
		}

		idToken := extractToken(r.Header.Get("Authorization"))
		if idToken == "" {
			http.Error(w, "Unauthorized: No token provided", http.StatusUnauthorized)
			return
		}

		token, err := verifyToken(r.Context(), idToken)
		if err != nil {
			logging.Log.Debugf("Token verification failed: %v", err)
			http.Error(w, "Unauthorized: Invalid token", http.StatusUnauthorized)
			return
		}

		ctx := context.WithValue(r.Context(), UserIDKey, token.UID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func extractToken(authHeader string) string {
	if authHeader == "" {
		return ""
	}

	parts := strings.Split(authHeader, "Bearer ")
	if len(parts) != 2 {
		return ""
	}

	return parts[1]
}

func verifyToken(ctx context.Context, idToken string) (*auth.Token, error) {
	if firebaseAuth == nil {
		return nil, errors.New("firebase auth client not initialized")
	}

	token, err := firebaseAuth.VerifyIDToken(ctx, idToken)
	if err != nil {
		return nil, fmt.Errorf("error verifying ID token: %w", err)
	}

	return token, nil
}

// GetUserIDFromContext retrieves the user ID from the request context
func GetUserIDFromContext(r *http.Request) string {
	userID, ok := r.Context().Value(UserIDKey).(string)
	if !ok {
		return ""
	}
	return userID
}
