package models

import "github.com/google/uuid"

// WebSocket message types
type WSMessage struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}

const (
	WSTypeSessionsChanged = "sessions.changed"
	WSTypeTasksChanged    = "tasks.changed"
)

type SessionsChangedEvent struct {
	Action    string    `json:"action"` // "created" | "deleted"
	SessionID uuid.UUID `json:"session_id"`
}

type TasksChangedEvent struct {
	Action string    `json:"action"` // "created" | "toggled"
	TaskID uuid.UUID `json:"task_id"`
}

// API Error response
type APIError struct {
	Code      string            `json:"code"`
	Message   string            `json:"message"`
	Fields    map[string]string `json:"fields,omitempty"`
	RequestID string            `json:"request_id"`
}

type ErrorResponse struct {
	Error APIError `json:"error"`
}
