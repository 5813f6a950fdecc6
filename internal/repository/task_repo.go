package repository

import (
	"context"
	"time"

	"cloud.google.com/go/civil"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/rayen43500/Study-Planner-Smart-Learning-Analyzer/internal/models"
)

const taskColumns = `id, user_id, title, due_date, notes, completed, created_at`

type TaskRepo struct {
	pool *pgxpool.Pool
}

func NewTaskRepo(pool *pgxpool.Pool) *TaskRepo {
	return &TaskRepo{pool: pool}
}

func (r *TaskRepo) Create(ctx context.Context, t *models.Task) error {
	t.ID = uuid.New()

	var due *time.Time
	if t.Due != nil {
		d := t.Due.In(time.UTC)
		due = &d
	}

	return pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		if err := ensureUser(ctx, tx, t.UserID); err != nil {
			return err
		}
		return tx.QueryRow(ctx, `
			INSERT INTO tasks (id, user_id, title, due_date, notes, completed)
			VALUES ($1, $2, $3, $4, $5, $6)
			RETURNING created_at
		`, t.ID, t.UserID, t.Title, due, t.Notes, t.Completed).Scan(&t.CreatedAt)
	})
}

// ListByUser returns the user's tasks, most recently added first.
func (r *TaskRepo) ListByUser(ctx context.Context, userID uuid.UUID) ([]models.Task, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+taskColumns+`
		FROM tasks
		WHERE user_id = $1
		ORDER BY created_at DESC
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tasks := []models.Task{}
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, *t)
	}
	return tasks, rows.Err()
}

// ToggleCompleted flips the completed flag and returns the updated task.
func (r *TaskRepo) ToggleCompleted(ctx context.Context, id, userID uuid.UUID) (*models.Task, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE tasks SET completed = NOT completed
		WHERE id = $1 AND user_id = $2
		RETURNING `+taskColumns, id, userID)
	t, err := scanTask(row)
	if err != nil {
		return nil, notFound(err)
	}
	return t, nil
}

// CountByUser returns the number of tasks and how many of them are completed.
func (r *TaskRepo) CountByUser(ctx context.Context, userID uuid.UUID) (total, completed int, err error) {
	err = r.pool.QueryRow(ctx, `
		SELECT COUNT(*), COUNT(*) FILTER (WHERE completed)
		FROM tasks
		WHERE user_id = $1
	`, userID).Scan(&total, &completed)
	return total, completed, err
}

func scanTask(row pgx.Row) (*models.Task, error) {
	var (
		t   models.Task
		due *time.Time
	)
	if err := row.Scan(&t.ID, &t.UserID, &t.Title, &due, &t.Notes, &t.Completed, &t.CreatedAt); err != nil {
		return nil, err
	}
	if due != nil {
		d := civil.DateOf(*due)
		t.Due = &d
	}
	return &t, nil
}
