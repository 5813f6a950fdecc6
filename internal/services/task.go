package services

import (
	"context"
	"errors"
	"strings"
	"unicode/utf8"

	"cloud.google.com/go/civil"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/rayen43500/Study-Planner-Smart-Learning-Analyzer/internal/models"
	"github.com/rayen43500/Study-Planner-Smart-Learning-Analyzer/internal/repository"
)

const maxTaskTitleLength = 200

type TaskStore interface {
	Create(ctx context.Context, t *models.Task) error
	ListByUser(ctx context.Context, userID uuid.UUID) ([]models.Task, error)
	ToggleCompleted(ctx context.Context, id, userID uuid.UUID) (*models.Task, error)
	CountByUser(ctx context.Context, userID uuid.UUID) (total, completed int, err error)
}

type TaskService struct {
	repo      TaskStore
	publisher Publisher
}

func NewTaskService(repo TaskStore, publisher Publisher) *TaskService {
	if publisher == nil {
		publisher = noopPublisher{}
	}
	return &TaskService{repo: repo, publisher: publisher}
}

// List returns the user's tasks, newest first.
func (s *TaskService) List(ctx context.Context, userID uuid.UUID) ([]models.Task, error) {
	return s.repo.ListByUser(ctx, userID)
}

// Add creates an open task. Due and notes are optional; blank notes are
// stored as absent.
func (s *TaskService) Add(ctx context.Context, userID uuid.UUID, req models.CreateTaskRequest) (*models.Task, error) {
	task := &models.Task{UserID: userID, Title: strings.TrimSpace(req.Title)}
	fields := map[string]string{}

	switch {
	case task.Title == "":
		fields["title"] = "Title is required"
	case utf8.RuneCountInString(task.Title) > maxTaskTitleLength:
		fields["title"] = "Title must be at most 200 characters"
	}

	if raw := strings.TrimSpace(req.Due); raw != "" {
		d, err := civil.ParseDate(raw)
		if err != nil {
			fields["due"] = "Due date must use the YYYY-MM-DD format"
		} else {
			task.Due = &d
		}
	}

	if notes := strings.TrimSpace(req.Notes); notes != "" {
		task.Notes = &notes
	}

	if len(fields) > 0 {
		return nil, &ValidationError{Fields: fields}
	}

	if err := s.repo.Create(ctx, task); err != nil {
		return nil, err
	}
	s.publishChange(ctx, userID, "created", task.ID)
	return task, nil
}

func (s *TaskService) Toggle(ctx context.Context, userID, id uuid.UUID) (*models.Task, error) {
	task, err := s.repo.ToggleCompleted(ctx, id, userID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, &NotFoundError{Message: "Task not found"}
	}
	if err != nil {
		return nil, err
	}
	s.publishChange(ctx, userID, "toggled", task.ID)
	return task, nil
}

func (s *TaskService) Progress(ctx context.Context, userID uuid.UUID) (models.TaskProgress, error) {
	total, completed, err := s.repo.CountByUser(ctx, userID)
	if err != nil {
		return models.TaskProgress{}, err
	}
	return models.TaskProgress{Total: total, Completed: completed, Percent: progressPercent(completed, total)}, nil
}

// progressPercent rounds half up; an empty list is 0%.
func progressPercent(completed, total int) int {
	if total <= 0 {
		return 0
	}
	return int(decimal.NewFromInt(int64(completed)).
		Mul(decimal.NewFromInt(100)).
		Div(decimal.NewFromInt(int64(total))).
		Round(0).
		IntPart())
}

func (s *TaskService) publishChange(ctx context.Context, userID uuid.UUID, action string, taskID uuid.UUID) {
	s.publisher.PublishUpdate(ctx, userID, models.WSMessage{
		Type:    models.WSTypeTasksChanged,
		Payload: models.TasksChangedEvent{Action: action, TaskID: taskID},
	})
}
