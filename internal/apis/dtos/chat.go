package dtos

import "github.com/capitanfeeder/BotDespensa/pkg/dbmanager"

// Response is the common envelope for every endpoint.
type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *string     `json:"error,omitempty"`
}

// ChatRequest carries the user's question.
type ChatRequest struct {
	Message string `json:"message" binding:"required,min=5,max=500"`
}

// ChatResponse carries the assistant's answer.
type ChatResponse struct {
	Response string `json:"response"`
}

// HealthResponse reports service liveness.
type HealthResponse struct {
	Status  string `json:"status"`
	Service string `json:"service"`
	Version string `json:"version"`
}

// TablesResponse lists the available tables.
type TablesResponse struct {
	Tables []string `json:"tables"`
	Count  int      `json:"count"`
}

// DatabaseStructureResponse exposes the whole-database schema snapshot.
type DatabaseStructureResponse struct {
	DatabaseStructure map[string]dbmanager.TableSchema `json:"database_structure"`
	TotalTables       int                              `json:"total_tables"`
}
