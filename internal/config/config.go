package config

import (
	"os"
	"strconv"
	"strings"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"upi-ledger-backend/internal/logger"
)

// Config carries every process-level setting, resolved once at startup
// and passed down explicitly.
type Config struct {
	AppEnv      string
	Port        string
	DatabaseDSN string
	FrontendURL string

	// OwnIDs are the account owner's payment identifiers; a counter-party
	// matching one of these marks money flowing out of the account.
	OwnIDs []string

	// TimeLayout parses in-body transaction dates when the mail header
	// date is unavailable.
	TimeLayout string

	// FieldSchema selects the notification template: "upi" or "expense".
	FieldSchema string

	FetchWorkers int

	IMAP IMAPConfig
}

type IMAPConfig struct {
	Addr     string
	Username string
	Password string
	Mailbox  string
}

func Load() *Config {
	cfg := &Config{
		AppEnv:       getEnv("APP_ENV", "dev"),
		Port:         getEnv("PORT", "8080"),
		DatabaseDSN:  os.Getenv("DATABASE_URL"),
		FrontendURL:  os.Getenv("FRONTEND_URL"),
		TimeLayout:   getEnv("TIME_LAYOUT", "02/01/2006 15:04:05"),
		FieldSchema:  getEnv("FIELD_SCHEMA", "upi"),
		FetchWorkers: getEnvInt("FETCH_WORKERS", 4),
		IMAP: IMAPConfig{
			Addr:     getEnv("IMAP_ADDR", "imap.gmail.com:993"),
			Username: os.Getenv("IMAP_USERNAME"),
			Password: os.Getenv("IMAP_PASSWORD"),
			Mailbox:  getEnv("IMAP_MAILBOX", "INBOX"),
		},
	}

	if ids := os.Getenv("IDS"); ids != "" {
		for _, id := range strings.Split(ids, ",") {
			if id = strings.TrimSpace(id); id != "" {
				cfg.OwnIDs = append(cfg.OwnIDs, id)
			}
		}
	}

	return cfg
}

func InitDB(cfg *Config) *gorm.DB {
	log := logger.GetLogger().WithComponent("config")

	db, err := gorm.Open(postgres.Open(cfg.DatabaseDSN), &gorm.Config{})
	if err != nil {
		log.WithError(err).Fatal("failed to connect to database")
	}

	return db
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return fallback
}
