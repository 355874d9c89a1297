package main

import (
	"time"

	"upi-ledger-backend/internal/config"
	"upi-ledger-backend/internal/logger"
	"upi-ledger-backend/internal/mailbox"
	"upi-ledger-backend/internal/models"
	"upi-ledger-backend/internal/routes"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func main() {
	log := logger.GetLogger().WithComponent("server")

	// Load .env
	if err := godotenv.Load(); err != nil {
		log.Info("No .env file found, relying on system env")
	}

	cfg := config.Load()
	db := config.InitDB(cfg)

	db.AutoMigrate(
		&models.User{},
		&models.Session{},
		&models.Counterparty{},
		&models.Transaction{},
		&models.IngestionRun{},
	)

	mail, err := mailbox.DialIMAP(cfg.IMAP)
	if err != nil {
		log.WithError(err).Fatal("failed to connect to mailbox")
	}
	defer mail.Close()

	r := gin.Default()
	// CORS config: production allows only the frontend, dev allows the
	// local NextJS and API servers.
	origins := []string{"http://localhost:3000", "http://localhost:8080"}
	if cfg.AppEnv == "prd" {
		origins = []string{cfg.FrontendURL}
	}
	r.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST"},
		AllowHeaders:     []string{"Origin", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	routes.RegisterRoutes(r, db, mail, cfg)

	if err := r.Run(":" + cfg.Port); err != nil {
		log.WithError(err).Fatal("server stopped")
	}
}
