package database

import (
	"database/sql"
	"fmt"
	"os"
	"time"

	"santodinheiro/logging"

	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
)

var DB *sql.DB

// InitDB opens the application database. Postgres is used when DATABASE_URL
// is set; otherwise a local SQLite file (or an in-memory database when
// TEST_DB=1) keeps development self-contained.
func InitDB() error {
	if url := os.Getenv("DATABASE_URL"); url != "" {
		return initPostgres(url)
	}
	return initSQLite()
}

func initPostgres(url string) error {
	var err error
	DB, err = sql.Open("postgres", url)
	if err != nil {
		return fmt.Errorf("failed to open postgres database: %w", err)
	}

	DB.SetMaxOpenConns(10)
	DB.SetMaxIdleConns(5)
	DB.SetConnMaxLifetime(time.Minute * 5)

	if err := DB.Ping(); err != nil {
		return fmt.Errorf("failed to ping postgres database: %w", err)
	}

	logging.Log.Info("Connected to Postgres database")
	return nil
}

func initSQLite() error {
	var dbPath string
	if os.Getenv("TEST_DB") == "1" {
		dbPath = ":memory:"
	} else if path := os.Getenv("SQLITE_PATH"); path != "" {
		dbPath = path
	} else {
		dbPath = "./santodinheiro.db"
	}

	var err error
	// Connection parameters to better handle concurrent writers
	dsn := dbPath + "?_journal=WAL&_timeout=10000&_busy_timeout=10000&_foreign_keys=on"
	DB, err = sql.Open("sqlite3", dsn)
	if err != nil {
		return fmt.Errorf("failed to open sqlite database: %w", err)
	}

	DB.SetMaxOpenConns(5)
	DB.SetMaxIdleConns(5)
	DB.SetConnMaxLifetime(time.Minute * 5)

	if _, err = DB.Exec("PRAGMA journal_mode=WAL;"); err != nil {
		return err
	}
	if _, err = DB.Exec("PRAGMA busy_timeout=5000;"); err != nil {
		return err
	}
	if _, err = DB.Exec("PRAGMA foreign_keys=ON;"); err != nil {
		return err
	}

	if err := DB.Ping(); err != nil {
		return fmt.Errorf("failed to ping sqlite database: %w", err)
	}

	logging.Log.WithField("path", dbPath).Info("Connected to SQLite database")
	return nil
}
