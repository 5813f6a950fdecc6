package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"cloud.google.com/go/civil"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/rayen43500/Study-Planner-Smart-Learning-Analyzer/internal/middleware"
	"github.com/rayen43500/Study-Planner-Smart-Learning-Analyzer/internal/models"
	"github.com/rayen43500/Study-Planner-Smart-Learning-Analyzer/internal/repository"
)

type memSubjects struct {
	subjects []models.Subject
}

func (m *memSubjects) CreateMany(_ context.Context, userID uuid.UUID, subjects []*models.Subject) error {
	for _, s := range subjects {
		s.ID = uuid.New()
		s.UserID = userID
		m.subjects = append(m.subjects, *s)
	}
	return nil
}

func (m *memSubjects) ListByUser(_ context.Context, userID uuid.UUID) ([]models.Subject, error) {
	out := []models.Subject{}
	for _, s := range m.subjects {
		if s.UserID == userID {
			out = append(out, s)
		}
	}
	return out, nil
}

func (m *memSubjects) GetByID(_ context.Context, id, userID uuid.UUID) (*models.Subject, error) {
	for _, s := range m.subjects {
		if s.ID == id && s.UserID == userID {
			s := s
			return &s, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *memSubjects) Delete(_ context.Context, id, userID uuid.UUID) error {
	for i, s := range m.subjects {
		if s.ID == id && s.UserID == userID {
			m.subjects = append(m.subjects[:i], m.subjects[i+1:]...)
			return nil
		}
	}
	return repository.ErrNotFound
}

func (m *memSubjects) CountByUser(ctx context.Context, userID uuid.UUID) (int, error) {
	list, _ := m.ListByUser(ctx, userID)
	return len(list), nil
}

type memSessions struct {
	sessions []models.StudySession
	err      error
}

func (m *memSessions) Create(_ context.Context, s *models.StudySession) error {
	s.ID = uuid.New()
	s.CreatedAt = time.Now()
	m.sessions = append(m.sessions, *s)
	return nil
}

func (m *memSessions) GetByID(_ context.Context, id, userID uuid.UUID) (*models.StudySession, error) {
	for _, s := range m.sessions {
		if s.ID == id && s.UserID == userID {
			s := s
			return &s, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *memSessions) ListByUser(_ context.Context, userID uuid.UUID) ([]models.StudySession, error) {
	if m.err != nil {
		return nil, m.err
	}
	out := []models.StudySession{}
	for _, s := range m.sessions {
		if s.UserID == userID {
			out = append(out, s)
		}
	}
	return out, nil
}

func (m *memSessions) ListByUserBetween(ctx context.Context, userID uuid.UUID, from, to civil.Date) ([]models.StudySession, error) {
	all, err := m.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	out := []models.StudySession{}
	for _, s := range all {
		if !s.Date.Before(from) && !s.Date.After(to) {
			out = append(out, s)
		}
	}
	return out, nil
}

func (m *memSessions) Delete(_ context.Context, id, userID uuid.UUID) error {
	for i, s := range m.sessions {
		if s.ID == id && s.UserID == userID {
			m.sessions = append(m.sessions[:i], m.sessions[i+1:]...)
			return nil
		}
	}
	return repository.ErrNotFound
}

func (m *memSessions) CountByUser(ctx context.Context, userID uuid.UUID) (int, error) {
	list, err := m.ListByUser(ctx, userID)
	return len(list), err
}

type memTasks struct {
	tasks []models.Task
}

func (m *memTasks) Create(_ context.Context, t *models.Task) error {
	t.ID = uuid.New()
	t.CreatedAt = time.Now()
	m.tasks = append([]models.Task{*t}, m.tasks...)
	return nil
}

func (m *memTasks) ListByUser(_ context.Context, userID uuid.UUID) ([]models.Task, error) {
	out := []models.Task{}
	for _, t := range m.tasks {
		if t.UserID == userID {
			out = append(out, t)
		}
	}
	return out, nil
}

func (m *memTasks) ToggleCompleted(_ context.Context, id, userID uuid.UUID) (*models.Task, error) {
	for i := range m.tasks {
		if m.tasks[i].ID == id && m.tasks[i].UserID == userID {
			m.tasks[i].Completed = !m.tasks[i].Completed
			t := m.tasks[i]
			return &t, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *memTasks) CountByUser(_ context.Context, userID uuid.UUID) (int, int, error) {
	var total, completed int
	for _, t := range m.tasks {
		if t.UserID == userID {
			total++
			if t.Completed {
				completed++
			}
		}
	}
	return total, completed, nil
}

// newRequest builds a request carrying the authenticated user and chi URL params.
func newRequest(t *testing.T, method, target string, userID uuid.UUID, body interface{}, params map[string]string) *http.Request {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set("Content-Type", "application/json")

	rctx := chi.NewRouteContext()
	for k, v := range params {
		rctx.URLParams.Add(k, v)
	}
	ctx := context.WithValue(req.Context(), chi.RouteCtxKey, rctx)
	ctx = context.WithValue(ctx, middleware.UserIDKey, userID)
	return req.WithContext(ctx)
}

func decodeError(t *testing.T, rr *httptest.ResponseRecorder) models.APIError {
	t.Helper()
	var resp models.ErrorResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	return resp.Error
}
