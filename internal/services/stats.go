package services

import (
	"context"
	"fmt"

	"cloud.google.com/go/civil"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/rayen43500/Study-Planner-Smart-Learning-Analyzer/internal/analytics"
	"github.com/rayen43500/Study-Planner-Smart-Learning-Analyzer/internal/models"
)

const dashboardDays = 7

var tracer = otel.Tracer("github.com/rayen43500/Study-Planner-Smart-Learning-Analyzer/internal/services")

type Dashboard struct {
	SubjectCount int                 `json:"subject_count"`
	SessionCount int                 `json:"session_count"`
	Daily        analytics.Series    `json:"daily"`
	Report       analytics.Report    `json:"report"`
	Tasks        models.TaskProgress `json:"tasks"`
}

// SessionSource is the read side of StudySessionService.
type SessionSource interface {
	List(ctx context.Context, userID uuid.UUID) ([]models.StudySession, error)
	ListBetween(ctx context.Context, userID uuid.UUID, from, to civil.Date) ([]models.StudySession, error)
	Count(ctx context.Context, userID uuid.UUID) (int, error)
}

type SubjectCounter interface {
	Count(ctx context.Context, userID uuid.UUID) (int, error)
}

type TaskProgressSource interface {
	Progress(ctx context.Context, userID uuid.UUID) (models.TaskProgress, error)
}

// StatsService loads the sessions a computation needs and hands them to the
// analytics engine.
type StatsService struct {
	sessions   SessionSource
	subjects   SubjectCounter
	tasks      TaskProgressSource
	aggregator *analytics.Aggregator
	analyzer   *analytics.Analyzer
}

func NewStatsService(sessions SessionSource, subjects SubjectCounter, tasks TaskProgressSource, aggregator *analytics.Aggregator, analyzer *analytics.Analyzer) *StatsService {
	if aggregator == nil {
		aggregator = analytics.NewAggregator(nil)
	}
	if analyzer == nil {
		analyzer = analytics.NewAnalyzer()
	}
	return &StatsService{
		sessions:   sessions,
		subjects:   subjects,
		tasks:      tasks,
		aggregator: aggregator,
		analyzer:   analyzer,
	}
}

func (s *StatsService) DailyTotals(ctx context.Context, userID uuid.UUID, days int) (analytics.Series, error) {
	ctx, span := tracer.Start(ctx, "StatsService.DailyTotals",
		trace.WithAttributes(attribute.String("user_id", userID.String()), attribute.Int("days", days)))
	defer span.End()

	if days < 1 {
		return analytics.Series{}, fmt.Errorf("%w: days must be at least 1, got %d", analytics.ErrInvalidArgument, days)
	}

	today := s.aggregator.Today()
	from, to := analytics.DailyWindow(today, days)
	sessions, err := s.sessions.ListBetween(ctx, userID, from, to)
	if err != nil {
		return analytics.Series{}, recordErr(span, err)
	}
	series, err := analytics.DailyTotalsAt(today, userID, sessions, days)
	return series, recordErr(span, err)
}

func (s *StatsService) WeeklyTotals(ctx context.Context, userID uuid.UUID, weeks int) (analytics.Series, error) {
	ctx, span := tracer.Start(ctx, "StatsService.WeeklyTotals",
		trace.WithAttributes(attribute.String("user_id", userID.String()), attribute.Int("weeks", weeks)))
	defer span.End()

	if weeks < 1 {
		return analytics.Series{}, fmt.Errorf("%w: weeks must be at least 1, got %d", analytics.ErrInvalidArgument, weeks)
	}

	today := s.aggregator.Today()
	from, to := analytics.WeeklyWindow(today, weeks)
	sessions, err := s.sessions.ListBetween(ctx, userID, from, to)
	if err != nil {
		return analytics.Series{}, recordErr(span, err)
	}
	series, err := analytics.WeeklyTotalsAt(today, userID, sessions, weeks)
	return series, recordErr(span, err)
}

// Report analyzes the user's complete history.
func (s *StatsService) Report(ctx context.Context, userID uuid.UUID) (analytics.Report, error) {
	ctx, span := tracer.Start(ctx, "StatsService.Report",
		trace.WithAttributes(attribute.String("user_id", userID.String())))
	defer span.End()

	sessions, err := s.sessions.List(ctx, userID)
	if err != nil {
		return analytics.Report{}, recordErr(span, err)
	}
	span.SetAttributes(attribute.Int("sessions", len(sessions)))
	return s.analyzer.Analyze(ownedBy(userID, sessions)), nil
}

func (s *StatsService) Dashboard(ctx context.Context, userID uuid.UUID) (*Dashboard, error) {
	ctx, span := tracer.Start(ctx, "StatsService.Dashboard",
		trace.WithAttributes(attribute.String("user_id", userID.String())))
	defer span.End()

	subjectCount, err := s.subjects.Count(ctx, userID)
	if err != nil {
		return nil, recordErr(span, err)
	}
	sessionCount, err := s.sessions.Count(ctx, userID)
	if err != nil {
		return nil, recordErr(span, err)
	}
	daily, err := s.DailyTotals(ctx, userID, dashboardDays)
	if err != nil {
		return nil, recordErr(span, err)
	}
	report, err := s.Report(ctx, userID)
	if err != nil {
		return nil, recordErr(span, err)
	}
	var tasks models.TaskProgress
	if s.tasks != nil {
		if tasks, err = s.tasks.Progress(ctx, userID); err != nil {
			return nil, recordErr(span, err)
		}
	}

	return &Dashboard{
		SubjectCount: subjectCount,
		SessionCount: sessionCount,
		Daily:        daily,
		Report:       report,
		Tasks:        tasks,
	}, nil
}

// ownedBy drops sessions of other users; the analyzer itself does not filter.
func ownedBy(userID uuid.UUID, sessions []models.StudySession) []models.StudySession {
	owned := sessions[:0:0]
	for _, s := range sessions {
		if s.UserID == userID {
			owned = append(owned, s)
		}
	}
	return owned
}

func recordErr(span trace.Span, err error) error {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	return err
}
