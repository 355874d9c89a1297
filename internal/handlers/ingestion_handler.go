package handler

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"upi-ledger-backend/internal/logger"
	"upi-ledger-backend/internal/middleware"
	"upi-ledger-backend/internal/services/ingestion"
)

type IngestionHandler struct {
	service *ingestion.Service
	log     *logger.Entry
}

func NewIngestionHandler(service *ingestion.Service) *IngestionHandler {
	return &IngestionHandler{
		service: service,
		log:     logger.GetLogger().WithComponent("handlers"),
	}
}

// GetTransactions reports the session user's stored transaction count.
// Testing endpoint, not consumed by the client.
func (h *IngestionHandler) GetTransactions(c *gin.Context) {
	user := middleware.CurrentUser(c)

	count, err := h.service.TransactionCount(user.ID)
	if err != nil {
		h.fail(c, err)
		return
	}

	ok(c, http.StatusOK, fmt.Sprintf("Transactions fetched! Transaction count - %d", count), nil)
}

// PopulateAllTransactions wipes and re-ingests the whole mailbox for the
// admin user. Admin only.
func (h *IngestionHandler) PopulateAllTransactions(c *gin.Context) {
	user := middleware.CurrentUser(c)

	summary, err := h.service.FullRefresh(user.ID)
	if err != nil {
		h.fail(c, err)
		return
	}

	ok(c, http.StatusCreated, "Full refresh done", summary)
}

// AddNewTransactions ingests messages newer than the user's most recent
// stored transaction.
func (h *IngestionHandler) AddNewTransactions(c *gin.Context) {
	user := middleware.CurrentUser(c)

	summary, err := h.service.IncrementalSync(user.ID)
	if errors.Is(err, ingestion.ErrNoTransactions) {
		ok(c, http.StatusOK, "No transactions found. Please do a full refresh first", nil)
		return
	}
	if err != nil {
		h.fail(c, err)
		return
	}

	ok(c, http.StatusOK, "Transactions upserted", summary)
}

// fail logs the specific cause and answers with a generic message so
// internals never leak to end users.
func (h *IngestionHandler) fail(c *gin.Context, err error) {
	h.log.WithError(err).Error("ingestion request failed")
	c.JSON(http.StatusInternalServerError, gin.H{
		"status":  "error",
		"message": "Something went wrong",
	})
}

func ok(c *gin.Context, code int, message string, data interface{}) {
	body := gin.H{"status": "success", "message": message}
	if data != nil {
		body["data"] = data
	}
	c.JSON(code, body)
}
