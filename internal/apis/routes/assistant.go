package routes

import (
	"log"

	"github.com/gin-gonic/gin"

	"github.com/capitanfeeder/BotDespensa/internal/di"
)

func SetupAssistantRoutes(router *gin.Engine) {
	assistantHandler, err := di.GetAssistantHandler()
	if err != nil {
		log.Fatalf("Failed to get assistant handler: %v", err)
	}

	router.GET("/health", assistantHandler.Health)
	router.POST("/chat", assistantHandler.Chat)

	router.GET("/tables", assistantHandler.ListTables)
	router.GET("/tables/info", assistantHandler.DatabaseStructure)

	router.GET("/cache/stats", assistantHandler.CacheStats)
	router.POST("/cache/clear", assistantHandler.ClearCache)

	router.GET("/debug/test-query", assistantHandler.TestQuery)
}
