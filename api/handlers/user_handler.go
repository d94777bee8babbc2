package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/yourusername/yt-courier-go/internal/domain"
)

// UserHandler exposes user store statistics
type UserHandler struct {
	users domain.UserRepository
}

// NewUserHandler creates a new user handler
func NewUserHandler(users domain.UserRepository) *UserHandler {
	return &UserHandler{users: users}
}

// Stats handles GET /api/v1/users/stats
func (h *UserHandler) Stats(c *gin.Context) {
	stats, err := h.users.Stats()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, stats)
}

// Marketing handles GET /api/v1/users/marketing?min_downloads=N
func (h *UserHandler) Marketing(c *gin.Context) {
	minDownloads := 1
	if raw := c.Query("min_downloads"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid min_downloads"})
			return
		}
		minDownloads = n
	}

	ids, err := h.users.MarketingUsers(minDownloads)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"min_downloads": minDownloads,
		"count":         len(ids),
		"telegram_ids":  ids,
	})
}
