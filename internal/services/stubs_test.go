package services

import (
	"context"
	"sort"
	"time"

	"cloud.google.com/go/civil"
	"github.com/google/uuid"

	"github.com/rayen43500/Study-Planner-Smart-Learning-Analyzer/internal/models"
	"github.com/rayen43500/Study-Planner-Smart-Learning-Analyzer/internal/repository"
)

type stubSubjectStore struct {
	subjects  []models.Subject
	createErr error
	batches   int
}

func (s *stubSubjectStore) CreateMany(_ context.Context, userID uuid.UUID, subjects []*models.Subject) error {
	if s.createErr != nil {
		return s.createErr
	}
	s.batches++
	for _, subject := range subjects {
		subject.ID = uuid.New()
		subject.UserID = userID
		subject.CreatedAt = time.Now()
		s.subjects = append(s.subjects, *subject)
	}
	return nil
}

func (s *stubSubjectStore) ListByUser(_ context.Context, userID uuid.UUID) ([]models.Subject, error) {
	out := []models.Subject{}
	for _, subject := range s.subjects {
		if subject.UserID == userID {
			out = append(out, subject)
		}
	}
	return out, nil
}

func (s *stubSubjectStore) GetByID(_ context.Context, id, userID uuid.UUID) (*models.Subject, error) {
	for _, subject := range s.subjects {
		if subject.ID == id && subject.UserID == userID {
			subject := subject
			return &subject, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (s *stubSubjectStore) Delete(_ context.Context, id, userID uuid.UUID) error {
	for i, subject := range s.subjects {
		if subject.ID == id && subject.UserID == userID {
			s.subjects = append(s.subjects[:i], s.subjects[i+1:]...)
			return nil
		}
	}
	return repository.ErrNotFound
}

func (s *stubSubjectStore) CountByUser(ctx context.Context, userID uuid.UUID) (int, error) {
	list, _ := s.ListByUser(ctx, userID)
	return len(list), nil
}

type stubSessionStore struct {
	sessions    []models.StudySession
	listErr     error
	betweenFrom civil.Date
	betweenTo   civil.Date
}

func (s *stubSessionStore) Create(_ context.Context, session *models.StudySession) error {
	session.ID = uuid.New()
	session.CreatedAt = time.Now()
	s.sessions = append(s.sessions, *session)
	return nil
}

func (s *stubSessionStore) GetByID(_ context.Context, id, userID uuid.UUID) (*models.StudySession, error) {
	for _, session := range s.sessions {
		if session.ID == id && session.UserID == userID {
			session := session
			return &session, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (s *stubSessionStore) ListByUser(_ context.Context, userID uuid.UUID) ([]models.StudySession, error) {
	if s.listErr != nil {
		return nil, s.listErr
	}
	out := []models.StudySession{}
	for _, session := range s.sessions {
		if session.UserID == userID {
			out = append(out, session)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date.After(out[j].Date) })
	return out, nil
}

func (s *stubSessionStore) ListByUserBetween(_ context.Context, userID uuid.UUID, from, to civil.Date) ([]models.StudySession, error) {
	if s.listErr != nil {
		return nil, s.listErr
	}
	s.betweenFrom, s.betweenTo = from, to
	out := []models.StudySession{}
	for _, session := range s.sessions {
		if session.UserID == userID && !session.Date.Before(from) && !session.Date.After(to) {
			out = append(out, session)
		}
	}
	return out, nil
}

func (s *stubSessionStore) Delete(_ context.Context, id, userID uuid.UUID) error {
	for i, session := range s.sessions {
		if session.ID == id && session.UserID == userID {
			s.sessions = append(s.sessions[:i], s.sessions[i+1:]...)
			return nil
		}
	}
	return repository.ErrNotFound
}

func (s *stubSessionStore) CountByUser(ctx context.Context, userID uuid.UUID) (int, error) {
	list, _ := s.ListByUser(ctx, userID)
	return len(list), nil
}

// stubTaskStore keeps tasks newest first, like the repository's listing.
type stubTaskStore struct {
	tasks    []models.Task
	countErr error
}

func (s *stubTaskStore) Create(_ context.Context, t *models.Task) error {
	t.ID = uuid.New()
	t.CreatedAt = time.Now()
	s.tasks = append([]models.Task{*t}, s.tasks...)
	return nil
}

func (s *stubTaskStore) ListByUser(_ context.Context, userID uuid.UUID) ([]models.Task, error) {
	out := []models.Task{}
	for _, t := range s.tasks {
		if t.UserID == userID {
			out = append(out, t)
		}
	}
	return out, nil
}

func (s *stubTaskStore) ToggleCompleted(_ context.Context, id, userID uuid.UUID) (*models.Task, error) {
	for i := range s.tasks {
		if s.tasks[i].ID == id && s.tasks[i].UserID == userID {
			s.tasks[i].Completed = !s.tasks[i].Completed
			t := s.tasks[i]
			return &t, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (s *stubTaskStore) CountByUser(_ context.Context, userID uuid.UUID) (int, int, error) {
	if s.countErr != nil {
		return 0, 0, s.countErr
	}
	var total, completed int
	for _, t := range s.tasks {
		if t.UserID != userID {
			continue
		}
		total++
		if t.Completed {
			completed++
		}
	}
	return total, completed, nil
}

type recordingPublisher struct {
	users    []uuid.UUID
	messages []models.WSMessage
}

func (p *recordingPublisher) PublishUpdate(_ context.Context, userID uuid.UUID, msg models.WSMessage) {
	p.users = append(p.users, userID)
	p.messages = append(p.messages, msg)
}

func intPtr(v int) *int { return &v }
