package models

import (
	"time"

	"cloud.google.com/go/civil"
	"github.com/google/uuid"
)

type Task struct {
	ID        uuid.UUID   `json:"id"`
	UserID    uuid.UUID   `json:"-"`
	Title     string      `json:"title"`
	Due       *civil.Date `json:"due,omitempty"`
	Notes     *string     `json:"notes,omitempty"`
	Completed bool        `json:"completed"`
	CreatedAt time.Time   `json:"created_at"`
}

type CreateTaskRequest struct {
	Title string `json:"title"`
	Due   string `json:"due"`
	Notes string `json:"notes"`
}

// TaskProgress is the share of completed tasks, rounded to a whole percent.
type TaskProgress struct {
	Total     int `json:"total"`
	Completed int `json:"completed"`
	Percent   int `json:"percent"`
}
