package routes

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"upi-ledger-backend/internal/config"
	"upi-ledger-backend/internal/extract"
	handler "upi-ledger-backend/internal/handlers"
	"upi-ledger-backend/internal/mailbox"
	"upi-ledger-backend/internal/middleware"
	"upi-ledger-backend/internal/repository"
	service "upi-ledger-backend/internal/services/ingestion"
)

func RegisterRoutes(r *gin.Engine, db *gorm.DB, mail mailbox.Source, cfg *config.Config) {
	counterpartyRepo := repository.NewCounterpartyRepository(db)
	transactionRepo := repository.NewTransactionRepository(db)
	sessionRepo := repository.NewSessionRepository(db)
	runRepo := repository.NewIngestionRunRepository(db)

	schema := extract.SchemaByName(cfg.FieldSchema)
	ingestionService := service.NewService(
		mail,
		extract.NewExtractor(schema),
		extract.NewNormalizer(cfg.TimeLayout),
		counterpartyRepo,
		transactionRepo,
		runRepo,
		service.Config{
			OwnIDs:       cfg.OwnIDs,
			FetchWorkers: cfg.FetchWorkers,
		},
	)

	ingestionHandler := handler.NewIngestionHandler(ingestionService)

	api := r.Group("/api")

	// Health check
	api.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	authed := api.Group("", middleware.RequireSession(sessionRepo))
	authed.GET("/transactions", ingestionHandler.GetTransactions)
	authed.POST("/new-transactions", ingestionHandler.AddNewTransactions)
	authed.POST("/all-transactions", middleware.RequireAdmin(), ingestionHandler.PopulateAllTransactions)
}
