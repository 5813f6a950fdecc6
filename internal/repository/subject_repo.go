package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/rayen43500/Study-Planner-Smart-Learning-Analyzer/internal/models"
)

type SubjectRepo struct {
	pool *pgxpool.Pool
}

func NewSubjectRepo(pool *pgxpool.Pool) *SubjectRepo {
	return &SubjectRepo{pool: pool}
}

// CreateMany inserts all subjects in a single transaction.
func (r *SubjectRepo) CreateMany(ctx context.Context, userID uuid.UUID, subjects []*models.Subject) error {
	if len(subjects) == 0 {
		return nil
	}

	return pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		if err := ensureUser(ctx, tx, userID); err != nil {
			return err
		}
		for _, s := range subjects {
			s.ID = uuid.New()
			s.UserID = userID
			err := tx.QueryRow(ctx, `
				INSERT INTO subjects (id, user_id, name)
				VALUES ($1, $2, $3)
				RETURNING created_at
			`, s.ID, s.UserID, s.Name).Scan(&s.CreatedAt)
			if err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *SubjectRepo) ListByUser(ctx context.Context, userID uuid.UUID) ([]models.Subject, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, user_id, name, created_at
		FROM subjects
		WHERE user_id = $1
		ORDER BY name ASC
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	subjects := []models.Subject{}
	for rows.Next() {
		var s models.Subject
		if err := rows.Scan(&s.ID, &s.UserID, &s.Name, &s.CreatedAt); err != nil {
			return nil, err
		}
		subjects = append(subjects, s)
	}
	return subjects, rows.Err()
}

func (r *SubjectRepo) GetByID(ctx context.Context, id, userID uuid.UUID) (*models.Subject, error) {
	var s models.Subject
	err := r.pool.QueryRow(ctx, `
		SELECT id, user_id, name, created_at
		FROM subjects
		WHERE id = $1 AND user_id = $2
	`, id, userID).Scan(&s.ID, &s.UserID, &s.Name, &s.CreatedAt)
	if err != nil {
		return nil, notFound(err)
	}
	return &s, nil
}

func (r *SubjectRepo) Delete(ctx context.Context, id, userID uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM subjects WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *SubjectRepo) CountByUser(ctx context.Context, userID uuid.UUID) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM subjects WHERE user_id = $1`, userID).Scan(&count)
	return count, err
}
