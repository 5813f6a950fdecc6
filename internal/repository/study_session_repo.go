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

const sessionColumns = `id, user_id, subject_id, duration_minutes, session_date, start_hour, start_minute, created_at`

type StudySessionRepo struct {
	pool *pgxpool.Pool
}

func NewStudySessionRepo(pool *pgxpool.Pool) *StudySessionRepo {
	return &StudySessionRepo{pool: pool}
}

func (r *StudySessionRepo) Create(ctx context.Context, s *models.StudySession) error {
	s.ID = uuid.New()

	return pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		if err := ensureUser(ctx, tx, s.UserID); err != nil {
			return err
		}
		return tx.QueryRow(ctx, `
			INSERT INTO study_sessions (id, user_id, subject_id, duration_minutes, session_date, start_hour, start_minute)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
			RETURNING created_at
		`, s.ID, s.UserID, s.SubjectID, s.DurationMinutes, s.Date.In(time.UTC), s.StartHour, s.StartMinute,
		).Scan(&s.CreatedAt)
	})
}

func (r *StudySessionRepo) GetByID(ctx context.Context, id, userID uuid.UUID) (*models.StudySession, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+sessionColumns+` FROM study_sessions WHERE id = $1 AND user_id = $2`, id, userID)
	s, err := scanSession(row)
	if err != nil {
		return nil, notFound(err)
	}
	return s, nil
}

// ListByUser returns every session of the user, newest date first.
func (r *StudySessionRepo) ListByUser(ctx context.Context, userID uuid.UUID) ([]models.StudySession, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+sessionColumns+`
		FROM study_sessions
		WHERE user_id = $1
		ORDER BY session_date DESC, created_at DESC
	`, userID)
	if err != nil {
		return nil, err
	}
	return collectSessions(rows)
}

// ListByUserBetween returns the user's sessions dated within [from, to].
func (r *StudySessionRepo) ListByUserBetween(ctx context.Context, userID uuid.UUID, from, to civil.Date) ([]models.StudySession, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+sessionColumns+`
		FROM study_sessions
		WHERE user_id = $1
		  AND session_date BETWEEN $2 AND $3
		ORDER BY session_date ASC
	`, userID, from.In(time.UTC), to.In(time.UTC))
	if err != nil {
		return nil, err
	}
	return collectSessions(rows)
}

func (r *StudySessionRepo) Delete(ctx context.Context, id, userID uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM study_sessions WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *StudySessionRepo) CountByUser(ctx context.Context, userID uuid.UUID) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM study_sessions WHERE user_id = $1`, userID).Scan(&count)
	return count, err
}

func scanSession(row pgx.Row) (*models.StudySession, error) {
	var (
		s    models.StudySession
		date time.Time
	)
	if err := row.Scan(
		&s.ID, &s.UserID, &s.SubjectID, &s.DurationMinutes, &date,
		&s.StartHour, &s.StartMinute, &s.CreatedAt,
	); err != nil {
		return nil, err
	}
	s.Date = civil.DateOf(date)
	return &s, nil
}

func collectSessions(rows pgx.Rows) ([]models.StudySession, error) {
	defer rows.Close()

	sessions := []models.StudySession{}
	for rows.Next() {
		s, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, *s)
	}
	return sessions, rows.Err()
}
