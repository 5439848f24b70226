package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/capitanfeeder/BotDespensa/internal/apis/dtos"
	"github.com/capitanfeeder/BotDespensa/internal/constants"
	"github.com/capitanfeeder/BotDespensa/internal/services"
	"github.com/capitanfeeder/BotDespensa/internal/utils"
)

const serviceVersion = "2.0.0"

// AssistantHandler exposes the question pipeline and its auxiliary
// read-only operations over HTTP. It stays thin: all logic lives in the
// services layer.
type AssistantHandler struct {
	assistant services.AssistantService
}

func NewAssistantHandler(assistant services.AssistantService) *AssistantHandler {
	return &AssistantHandler{assistant: assistant}
}

// Chat handles POST /chat.
func (h *AssistantHandler) Chat(c *gin.Context) {
	var req dtos.ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errMsg := fmt.Sprintf("Error de validación: %v", err)
		c.JSON(http.StatusBadRequest, dtos.Response{Success: false, Error: &errMsg})
		return
	}

	if err := utils.ValidateTextInput(req.Message, constants.MaxQuestionLength, constants.MinQuestionLength); err != nil {
		errMsg := fmt.Sprintf("Error de validación: %v", err)
		c.JSON(http.StatusBadRequest, dtos.Response{Success: false, Error: &errMsg})
		return
	}

	answer := h.assistant.ProcessQuestion(c.Request.Context(), req.Message)

	c.JSON(http.StatusOK, dtos.Response{
		Success: true,
		Data:    dtos.ChatResponse{Response: answer},
	})
}

// Health handles GET /health.
func (h *AssistantHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, dtos.HealthResponse{
		Status:  "ok",
		Service: "Bot Despensa",
		Version: serviceVersion,
	})
}

// ListTables handles GET /tables.
func (h *AssistantHandler) ListTables(c *gin.Context) {
	tables := h.assistant.ListTables(c.Request.Context())
	c.JSON(http.StatusOK, dtos.Response{
		Success: true,
		Data:    dtos.TablesResponse{Tables: tables, Count: len(tables)},
	})
}

// DatabaseStructure handles GET /tables/info.
func (h *AssistantHandler) DatabaseStructure(c *gin.Context) {
	schema, err := h.assistant.GetDatabaseStructure(c.Request.Context())
	if err != nil {
		errMsg := fmt.Sprintf("Error obteniendo estructura: %v", err)
		c.JSON(http.StatusInternalServerError, dtos.Response{Success: false, Error: &errMsg})
		return
	}

	c.JSON(http.StatusOK, dtos.Response{
		Success: true,
		Data: dtos.DatabaseStructureResponse{
			DatabaseStructure: schema.Tables,
			TotalTables:       len(schema.Tables),
		},
	})
}

// CacheStats handles GET /cache/stats.
func (h *AssistantHandler) CacheStats(c *gin.Context) {
	c.JSON(http.StatusOK, dtos.Response{
		Success: true,
		Data:    h.assistant.CacheStats(),
	})
}

// ClearCache handles POST /cache/clear.
func (h *AssistantHandler) ClearCache(c *gin.Context) {
	h.assistant.ClearCache()
	c.JSON(http.StatusOK, dtos.Response{
		Success: true,
		Data:    gin.H{"message": "Caché limpiado exitosamente"},
	})
}

// TestQuery handles GET /debug/test-query.
func (h *AssistantHandler) TestQuery(c *gin.Context) {
	table := c.DefaultQuery("table", "clientes")
	question := c.DefaultQuery("question", "¿Cuántos registros hay?")

	result, err := h.assistant.TestQuery(c.Request.Context(), table, question)
	if err != nil {
		errMsg := fmt.Sprintf("Error en test: %v", err)
		status := http.StatusInternalServerError
		if utils.IsValidationError(err) {
			status = http.StatusBadRequest
		}
		c.JSON(status, dtos.Response{Success: false, Error: &errMsg})
		return
	}

	c.JSON(http.StatusOK, dtos.Response{Success: true, Data: result})
}
