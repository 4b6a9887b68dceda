package main

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/joho/godotenv"

	"santodinheiro/config"
	"santodinheiro/database"
	"santodinheiro/email"
	"santodinheiro/handlers"
	"santodinheiro/logging"
	"santodinheiro/middleware"
	"santodinheiro/migrations"
	"santodinheiro/security"
	"santodinheiro/services"
	"santodinheiro/storage"
)

func main() {
	// .env is optional; real deployments configure through the environment
	_ = godotenv.Load()

	cfg, err := config.NewConfig()
	if err != nil {
		logging.Log.Fatalf("Invalid configuration: %v", err)
	}

	logging.Setup(cfg.LogLevel, cfg.IsProduction())

	encryptionKey := cfg.EncryptionKey
	if encryptionKey == "" {
		logging.Log.Warn("ENCRYPTION_KEY not set, using a default key. This is NOT secure for production!")
		encryptionKey = "default-key-for-development-only"
	}
	security.InitializeEncryption(encryptionKey)

	if cfg.WebhookSecret == "" {
		logging.Log.Warn("WEBHOOK_SECRET not set, webhook signatures use an empty secret")
	}
	handlers.SetWebhookSecret(cfg.WebhookSecret)

	if err := database.InitDB(); err != nil {
		logging.Log.Fatalf("Failed to initialize database: %v", err)
	}

	logging.Log.Info("Running migrations...")
	if err := migrations.RunMigrations(database.DB); err != nil {
		logging.Log.Fatalf("Failed to run migrations: %v", err)
	}

	if !cfg.IsProduction() {
		if err := migrations.SeedDevData(database.DB); err != nil {
			logging.Log.Warnf("Failed to seed dev data: %v", err)
		}
	}

	if err := middleware.InitializeFirebase(); err != nil {
		logging.Log.Warnf("Failed to initialize Firebase: %v", err)
		logging.Log.Warn("Auth token verification will be disabled!")
	}

	blobStore, err := storage.NewFromConfig(cfg)
	if err != nil {
		logging.Log.Fatalf("Failed to initialize storage: %v", err)
	}
	handlers.SetStorageProvider(blobStore)
	logging.Log.Infof("Using %s blob storage", blobStore.Name())

	sender := email.NewSender(cfg)
	if !sender.Enabled() {
		logging.Log.Warn("SMTP not configured, reminder emails are disabled")
	}

	scheduler := services.StartScheduler(sender)
	defer scheduler.Stop()

	r := mux.NewRouter()
	r.Use(middleware.EnableCORS)

	registerRoutes(r)
	apiRouter := r.PathPrefix("/api").Subrouter()
	registerRoutes(apiRouter)

	srv := &http.Server{
		Handler:      r,
		Addr:         ":" + cfg.Port,
		WriteTimeout: 15 * time.Second,
		ReadTimeout:  15 * time.Second,
	}

	logging.Log.Infof("Starting server on port %s...", cfg.Port)
	logging.Log.Fatal(srv.ListenAndServe())
}

// registerRoutes sets up all API routes
func registerRoutes(r *mux.Router) {
	// Public routes (no auth required)
	r.HandleFunc("/health", handlers.HealthCheck).Methods("GET", "OPTIONS")

	// Webhooks authenticate with an HMAC signature instead of a user token
	r.HandleFunc("/webhooks/identity", handlers.IdentityWebhook).Methods("POST")
	r.HandleFunc("/webhooks/billing", handlers.BillingWebhook).Methods("POST")

	// Create a subrouter for authenticated routes
	protectedRouter := r.PathPrefix("").Subrouter()
	protectedRouter.Use(middleware.AuthMiddleware)

	// Month lifecycle
	protectedRouter.HandleFunc("/months/{year}/{month}", handlers.GetMonth).Methods("GET")
	protectedRouter.HandleFunc("/months/{year}/{month}", handlers.DeleteMonth).Methods("DELETE")
	protectedRouter.HandleFunc("/months/{year}/{month}/duplicate", handlers.DuplicateMonth).Methods("POST")
	protectedRouter.HandleFunc("/months/{year}/{month}/tithe", handlers.UpdateTithe).Methods("PUT")
	protectedRouter.HandleFunc("/summary/{year}/{month}", handlers.GetSummary).Methods("GET")

	// Month items. The reorder route is registered first so "order" is never
	// taken for an item id.
	protectedRouter.HandleFunc("/months/{year}/{month}/{kind:incomes|expenses|investments|misc-expenses}/order",
		handlers.ReorderItems).Methods("PUT")
	protectedRouter.HandleFunc("/months/{year}/{month}/incomes", handlers.AddIncome).Methods("POST")
	protectedRouter.HandleFunc("/months/{year}/{month}/incomes/{id}", handlers.UpdateIncome).Methods("PUT")
	protectedRouter.HandleFunc("/months/{year}/{month}/incomes/{id}", handlers.DeleteIncome).Methods("DELETE")
	protectedRouter.HandleFunc("/months/{year}/{month}/expenses", handlers.AddExpense).Methods("POST")
	protectedRouter.HandleFunc("/months/{year}/{month}/expenses/{id}", handlers.UpdateExpense).Methods("PUT")
	protectedRouter.HandleFunc("/months/{year}/{month}/expenses/{id}", handlers.DeleteExpense).Methods("DELETE")
	protectedRouter.HandleFunc("/months/{year}/{month}/investments", handlers.AddInvestment).Methods("POST")
	protectedRouter.HandleFunc("/months/{year}/{month}/investments/{id}", handlers.UpdateInvestment).Methods("PUT")
	protectedRouter.HandleFunc("/months/{year}/{month}/investments/{id}", handlers.DeleteInvestment).Methods("DELETE")
	protectedRouter.HandleFunc("/months/{year}/{month}/misc-expenses", handlers.AddMiscExpense).Methods("POST")
	protectedRouter.HandleFunc("/months/{year}/{month}/misc-expenses/{id}", handlers.UpdateMiscExpense).Methods("PUT")
	protectedRouter.HandleFunc("/months/{year}/{month}/misc-expenses/{id}", handlers.DeleteMiscExpense).Methods("DELETE")

	// Protected user routes
	protectedRouter.HandleFunc("/users", handlers.GetUsers).Methods("GET")
	protectedRouter.HandleFunc("/users/sync", handlers.SyncIdentityUser).Methods("POST")

	// Permission management routes
	protectedRouter.HandleFunc("/permissions", handlers.GetUserPermissions).Methods("GET")
	protectedRouter.HandleFunc("/permissions", handlers.GrantPermission).Methods("POST")
	protectedRouter.HandleFunc("/permissions", handlers.RevokePermission).Methods("DELETE")
	protectedRouter.HandleFunc("/roles", handlers.SetUserRole).Methods("POST")
	protectedRouter.HandleFunc("/roles/{userId}", handlers.GetUserRole).Methods("GET")

	// Admin routes
	protectedRouter.HandleFunc("/admin/metrics", handlers.GetBusinessMetrics).Methods("GET")
	protectedRouter.HandleFunc("/admin/billing", handlers.GetBillingConfig).Methods("GET")
	protectedRouter.HandleFunc("/admin/billing", handlers.UpdateBillingConfig).Methods("PUT")
	protectedRouter.HandleFunc("/admin/billing/sync", handlers.TriggerBillingSync).Methods("POST")

	// Blob uploads
	protectedRouter.HandleFunc("/uploads", handlers.UploadFile).Methods("POST")
	protectedRouter.HandleFunc("/uploads", handlers.DeleteFile).Methods("DELETE")
}
