package models

import (
	"time"

	"cloud.google.com/go/civil"
	"github.com/google/uuid"
)

type StudySession struct {
	ID              uuid.UUID  `json:"id"`
	UserID          uuid.UUID  `json:"-"`
	SubjectID       *uuid.UUID `json:"subject_id"`
	DurationMinutes int        `json:"duration_minutes"`
	Date            civil.Date `json:"date"`
	StartHour       *int       `json:"start_hour"`
	StartMinute     *int       `json:"start_minute"`
	CreatedAt       time.Time  `json:"created_at"`
}

// CreateStudySessionRequest is the payload accepted by POST /sessions.
// Date is kept as a string so a malformed value can be reported per field.
type CreateStudySessionRequest struct {
	SubjectID       string `json:"subject_id"`
	DurationMinutes int    `json:"duration_minutes"`
	Date            string `json:"date"`
	StartHour       *int   `json:"start_hour"`
	StartMinute     *int   `json:"start_minute"`
}
