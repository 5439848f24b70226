package routes

import (
	"github.com/gin-gonic/gin"
)

func SetupDefaultRoutes(router *gin.Engine) {
	// Setup all route groups
	SetupAssistantRoutes(router)
}
