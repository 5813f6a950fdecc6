package services

import (
	"context"
	"errors"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/rayen43500/Study-Planner-Smart-Learning-Analyzer/internal/models"
	"github.com/rayen43500/Study-Planner-Smart-Learning-Analyzer/internal/repository"
)

const maxSubjectNameLength = 100

type SubjectStore interface {
	CreateMany(ctx context.Context, userID uuid.UUID, subjects []*models.Subject) error
	ListByUser(ctx context.Context, userID uuid.UUID) ([]models.Subject, error)
	GetByID(ctx context.Context, id, userID uuid.UUID) (*models.Subject, error)
	Delete(ctx context.Context, id, userID uuid.UUID) error
	CountByUser(ctx context.Context, userID uuid.UUID) (int, error)
}

type SubjectService struct {
	repo SubjectStore
}

func NewSubjectService(repo SubjectStore) *SubjectService {
	return &SubjectService{repo: repo}
}

func (s *SubjectService) List(ctx context.Context, userID uuid.UUID) ([]models.Subject, error) {
	return s.repo.ListByUser(ctx, userID)
}

func (s *SubjectService) Count(ctx context.Context, userID uuid.UUID) (int, error) {
	return s.repo.CountByUser(ctx, userID)
}

func (s *SubjectService) Create(ctx context.Context, userID uuid.UUID, name string) (*models.Subject, error) {
	name = strings.TrimSpace(name)
	if fields := validateSubjectName(name); fields != nil {
		return nil, &ValidationError{Fields: fields}
	}

	subject := &models.Subject{Name: name}
	if err := s.repo.CreateMany(ctx, userID, []*models.Subject{subject}); err != nil {
		return nil, err
	}
	return subject, nil
}

// CreateMany saves every new name in one batch. Blank names and names that
// already exist for the user, compared case-insensitively, are skipped.
func (s *SubjectService) CreateMany(ctx context.Context, userID uuid.UUID, names []string) ([]models.Subject, error) {
	existing, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]struct{}, len(existing)+len(names))
	for _, subject := range existing {
		seen[strings.ToLower(strings.TrimSpace(subject.Name))] = struct{}{}
	}

	var toCreate []*models.Subject
	for _, raw := range names {
		name := strings.TrimSpace(raw)
		if name == "" {
			continue
		}
		if fields := validateSubjectName(name); fields != nil {
			return nil, &ValidationError{Fields: fields}
		}
		key := strings.ToLower(name)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		toCreate = append(toCreate, &models.Subject{Name: name})
	}

	if err := s.repo.CreateMany(ctx, userID, toCreate); err != nil {
		return nil, err
	}

	created := make([]models.Subject, 0, len(toCreate))
	for _, subject := range toCreate {
		created = append(created, *subject)
	}
	return created, nil
}

func (s *SubjectService) GetOwned(ctx context.Context, userID, id uuid.UUID) (*models.Subject, error) {
	subject, err := s.repo.GetByID(ctx, id, userID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, &NotFoundError{Message: "Subject not found"}
	}
	return subject, err
}

func (s *SubjectService) Delete(ctx context.Context, userID, id uuid.UUID) error {
	err := s.repo.Delete(ctx, id, userID)
	if errors.Is(err, repository.ErrNotFound) {
		return &NotFoundError{Message: "Subject not found"}
	}
	return err
}

func validateSubjectName(name string) map[string]string {
	switch {
	case name == "":
		return map[string]string{"name": "Name is required"}
	case utf8.RuneCountInString(name) > maxSubjectNameLength:
		return map[string]string{"name": "Name must be at most 100 characters"}
	}
	return nil
}
