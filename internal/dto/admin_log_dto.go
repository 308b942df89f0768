// FILE: internal/dto/admin_log_dto.go
package dto

import "time"

// Note: LogListResponse uses string for Id because log IDs are MD5 hashes, not UUIDs

// --- System Log DTOs ---

type LogListResponse struct {
	Id        string    `json:"id"` // MD5 hash, not UUID
	Level     string    `json:"level"`
	Module    string    `json:"module"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
}

type LogDetailResponse struct {
	LogListResponse
	Details map[string]interface{} `json:"details"`
}
