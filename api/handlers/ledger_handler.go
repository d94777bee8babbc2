package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/yourusername/yt-courier-go/internal/app"
	"go.uber.org/zap"
)

// LedgerHandler exposes the failed-item ledger for inspection
type LedgerHandler struct {
	ledger *app.FailedLedger
	logger *zap.Logger
}

// NewLedgerHandler creates a new ledger handler
func NewLedgerHandler(ledger *app.FailedLedger, logger *zap.Logger) *LedgerHandler {
	return &LedgerHandler{ledger: ledger, logger: logger}
}

// List handles GET /api/v1/ledger/:chat_id
func (h *LedgerHandler) List(c *gin.Context) {
	chatID, err := strconv.ParseInt(c.Param("chat_id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid chat id"})
		return
	}

	items := h.ledger.List(chatID)
	c.JSON(http.StatusOK, gin.H{
		"chat_id": chatID,
		"count":   len(items),
		"items":   items,
	})
}

// Clear handles DELETE /api/v1/ledger/:chat_id
func (h *LedgerHandler) Clear(c *gin.Context) {
	chatID, err := strconv.ParseInt(c.Param("chat_id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid chat id"})
		return
	}

	h.ledger.Clear(chatID)
	h.logger.Info("ledger cleared via API", zap.Int64("chat_id", chatID))
	c.JSON(http.StatusOK, gin.H{"status": "cleared"})
}
