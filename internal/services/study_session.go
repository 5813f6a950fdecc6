package services

import (
	"context"
	"errors"
	"strings"

	"cloud.google.com/go/civil"
	"github.com/google/uuid"

	"github.com/rayen43500/Study-Planner-Smart-Learning-Analyzer/internal/models"
	"github.com/rayen43500/Study-Planner-Smart-Learning-Analyzer/internal/repository"
)

type StudySessionStore interface {
	Create(ctx context.Context, s *models.StudySession) error
	GetByID(ctx context.Context, id, userID uuid.UUID) (*models.StudySession, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]models.StudySession, error)
	ListByUserBetween(ctx context.Context, userID uuid.UUID, from, to civil.Date) ([]models.StudySession, error)
	Delete(ctx context.Context, id, userID uuid.UUID) error
	CountByUser(ctx context.Context, userID uuid.UUID) (int, error)
}

type StudySessionService struct {
	repo      StudySessionStore
	subjects  SubjectStore
	publisher Publisher
}

func NewStudySessionService(repo StudySessionStore, subjects SubjectStore, publisher Publisher) *StudySessionService {
	if publisher == nil {
		publisher = noopPublisher{}
	}
	return &StudySessionService{repo: repo, subjects: subjects, publisher: publisher}
}

func (s *StudySessionService) List(ctx context.Context, userID uuid.UUID) ([]models.StudySession, error) {
	return s.repo.ListByUser(ctx, userID)
}

func (s *StudySessionService) ListBetween(ctx context.Context, userID uuid.UUID, from, to civil.Date) ([]models.StudySession, error) {
	return s.repo.ListByUserBetween(ctx, userID, from, to)
}

func (s *StudySessionService) Count(ctx context.Context, userID uuid.UUID) (int, error) {
	return s.repo.CountByUser(ctx, userID)
}

func (s *StudySessionService) Create(ctx context.Context, userID uuid.UUID, req models.CreateStudySessionRequest) (*models.StudySession, error) {
	session, fields := buildSession(userID, req)
	if len(fields) > 0 {
		return nil, &ValidationError{Fields: fields}
	}

	if session.SubjectID != nil {
		if _, err := s.subjects.GetByID(ctx, *session.SubjectID, userID); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return nil, &ValidationError{Fields: map[string]string{"subject_id": "Unknown subject"}}
			}
			return nil, err
		}
	}

	if err := s.repo.Create(ctx, session); err != nil {
		return nil, err
	}

	s.publishChange(ctx, userID, "created", session.ID)
	return session, nil
}

func (s *StudySessionService) GetOwned(ctx context.Context, userID, id uuid.UUID) (*models.StudySession, error) {
	session, err := s.repo.GetByID(ctx, id, userID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, &NotFoundError{Message: "Study session not found"}
	}
	return session, err
}

func (s *StudySessionService) Delete(ctx context.Context, userID, id uuid.UUID) error {
	err := s.repo.Delete(ctx, id, userID)
	if errors.Is(err, repository.ErrNotFound) {
		return &NotFoundError{Message: "Study session not found"}
	}
	if err != nil {
		return err
	}

	s.publishChange(ctx, userID, "deleted", id)
	return nil
}

func (s *StudySessionService) publishChange(ctx context.Context, userID uuid.UUID, action string, sessionID uuid.UUID) {
	s.publisher.PublishUpdate(ctx, userID, models.WSMessage{
		Type:    models.WSTypeSessionsChanged,
		Payload: models.SessionsChangedEvent{Action: action, SessionID: sessionID},
	})
}

func buildSession(userID uuid.UUID, req models.CreateStudySessionRequest) (*models.StudySession, map[string]string) {
	fields := map[string]string{}
	session := &models.StudySession{
		UserID:          userID,
		DurationMinutes: req.DurationMinutes,
		StartHour:       req.StartHour,
		StartMinute:     req.StartMinute,
	}

	if req.DurationMinutes < 1 {
		fields["duration_minutes"] = "Duration must be at least 1 minute"
	}

	if strings.TrimSpace(req.Date) == "" {
		fields["date"] = "Date is required"
	} else if d, err := civil.ParseDate(strings.TrimSpace(req.Date)); err != nil {
		fields["date"] = "Date must use the YYYY-MM-DD format"
	} else {
		session.Date = d
	}

	if req.StartHour != nil && (*req.StartHour < 0 || *req.StartHour > 23) {
		fields["start_hour"] = "Start hour must be between 0 and 23"
	}
	if req.StartMinute != nil && (*req.StartMinute < 0 || *req.StartMinute > 59) {
		fields["start_minute"] = "Start minute must be between 0 and 59"
	}

	if raw := strings.TrimSpace(req.SubjectID); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			fields["subject_id"] = "Invalid subject id"
		} else {
			session.SubjectID = &id
		}
	}

	return session, fields
}
