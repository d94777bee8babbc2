package api

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/yourusername/yt-courier-go/api/handlers"
	"github.com/yourusername/yt-courier-go/api/middleware"
	"github.com/yourusername/yt-courier-go/internal/app"
	"github.com/yourusername/yt-courier-go/internal/domain"
)

// SetupRouter sets up the admin HTTP router
func SetupRouter(
	ledger *app.FailedLedger,
	users domain.UserRepository,
	ready func() bool,
	log *zap.Logger,
) *gin.Engine {
	// Set Gin mode
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()

	// Middleware
	router.Use(middleware.Logger(log))
	router.Use(middleware.Recovery(log))

	// Health endpoints
	healthHandler := handlers.NewHealthHandler(ready)
	router.GET("/health", healthHandler.Health)
	router.GET("/ready", healthHandler.Ready)

	// API v1 routes
	v1 := router.Group("/api/v1")
	{
		ledgerHandler := handlers.NewLedgerHandler(ledger, log)
		v1.GET("/ledger/:chat_id", ledgerHandler.List)
		v1.DELETE("/ledger/:chat_id", ledgerHandler.Clear)

		userHandler := handlers.NewUserHandler(users)
		usersGroup := v1.Group("/users")
		{
			usersGroup.GET("/stats", userHandler.Stats)
			usersGroup.GET("/marketing", userHandler.Marketing)
		}
	}

	return router
}
