package analytics

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/rayen43500/Study-Planner-Smart-Learning-Analyzer/internal/models"
)

func TestAnalyze_EmptyInputIsCanonical(t *testing.T) {
	a := NewAnalyzer()

	for _, input := range [][]models.StudySession{nil, {}} {
		for i := 0; i < 3; i++ {
			report := a.Analyze(input)
			assert.Equal(t, 0.0, report.ConsistencyScore)
			assert.Equal(t, 0.0, report.ProductivityScore)
			assert.Equal(t, 0, report.MostActiveHour)
			assert.Equal(t, []string{SuggestionNoData}, report.Suggestions)
		}
	}
}

func TestAnalyze_ConsistentSessions(t *testing.T) {
	user := uuid.New()
	var sessions []models.StudySession
	for i := 0; i < 5; i++ {
		sessions = append(sessions, session(user, date(2025, time.January, 10+i), 60, hour(10)))
	}

	report := NewAnalyzer().Analyze(sessions)

	assert.Equal(t, 10.0, report.ConsistencyScore)
	assert.Equal(t, 10.0, report.ProductivityScore)
	assert.Equal(t, 10, report.MostActiveHour)
	assert.Equal(t, []string{SuggestionKeepGoing}, report.Suggestions)
}

func TestAnalyze_ProductivityCeiling(t *testing.T) {
	user := uuid.New()
	sessions := []models.StudySession{
		session(user, date(2025, time.February, 1), 90, nil),
		session(user, date(2025, time.February, 2), 90, nil),
		session(user, date(2025, time.February, 3), 90, nil),
	}

	report := NewAnalyzer().Analyze(sessions)
	assert.Equal(t, 10.0, report.ProductivityScore)
}

func TestAnalyze_ProductivityRoundsToOneDecimal(t *testing.T) {
	user := uuid.New()
	report := NewAnalyzer().Analyze([]models.StudySession{
		session(user, date(2025, time.February, 1), 10, nil),
	})

	assert.Equal(t, 3.3, report.ProductivityScore)
	assert.Equal(t, 10.0, report.ConsistencyScore)
	assert.Equal(t, []string{SuggestionLengthen}, report.Suggestions)
}

func TestAnalyze_LowConsistencySuggestsRegularity(t *testing.T) {
	user := uuid.New()
	sessions := []models.StudySession{
		session(user, date(2025, time.January, 10), 120, hour(10)),
		session(user, date(2025, time.January, 20), 15, hour(10)),
	}

	report := NewAnalyzer().Analyze(sessions)

	assert.Less(t, report.ConsistencyScore, 5.0)
	assert.Equal(t, 2.2, report.ConsistencyScore)
	assert.Equal(t, 10.0, report.ProductivityScore)
	assert.Equal(t, []string{SuggestionRegularity}, report.Suggestions)
}

func TestAnalyze_SessionsOnSameDayAreSummedBeforeScoring(t *testing.T) {
	user := uuid.New()
	sessions := []models.StudySession{
		session(user, date(2025, time.January, 10), 30, nil),
		session(user, date(2025, time.January, 10), 30, nil),
		session(user, date(2025, time.January, 11), 60, nil),
	}

	report := NewAnalyzer().Analyze(sessions)
	assert.Equal(t, 10.0, report.ConsistencyScore)
}

func TestAnalyze_LateNightThreshold(t *testing.T) {
	user := uuid.New()
	build := func(late int) []models.StudySession {
		var sessions []models.StudySession
		for i := 0; i < 10; i++ {
			h := 10
			if i < late {
				h = 22
			}
			sessions = append(sessions, session(user, date(2025, time.January, 1+i), 30, hour(h)))
		}
		return sessions
	}

	tests := []struct {
		name      string
		late      int
		wantSleep bool
	}{
		{"all late", 10, true},
		{"above threshold", 8, true},
		{"exactly at threshold", 7, false},
		{"below threshold", 3, false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			report := NewAnalyzer().Analyze(build(tc.late))
			if tc.wantSleep {
				assert.Contains(t, report.Suggestions, SuggestionSleep)
			} else {
				assert.NotContains(t, report.Suggestions, SuggestionSleep)
				assert.Equal(t, []string{SuggestionKeepGoing}, report.Suggestions)
			}
		})
	}
}

func TestAnalyze_LateNightRatioCountsSessionsWithoutHour(t *testing.T) {
	user := uuid.New()
	sessions := []models.StudySession{
		session(user, date(2025, time.January, 1), 30, hour(23)),
		session(user, date(2025, time.January, 2), 30, hour(22)),
		session(user, date(2025, time.January, 3), 30, nil),
	}

	report := NewAnalyzer().Analyze(sessions)
	assert.NotContains(t, report.Suggestions, SuggestionSleep)
	assert.Equal(t, 22, report.MostActiveHour)
}

func TestAnalyze_SuggestionOrder(t *testing.T) {
	user := uuid.New()
	sessions := []models.StudySession{
		session(user, date(2025, time.January, 1), 2, hour(22)),
		session(user, date(2025, time.January, 2), 30, hour(23)),
	}

	report := NewAnalyzer().Analyze(sessions)

	assert.Less(t, report.ConsistencyScore, 5.0)
	assert.Less(t, report.ProductivityScore, 6.0)
	assert.Equal(t, []string{SuggestionSleep, SuggestionRegularity, SuggestionLengthen}, report.Suggestions)
}

func TestAnalyze_MostActiveHour(t *testing.T) {
	user := uuid.New()
	d := date(2025, time.January, 1)

	t.Run("highest count wins", func(t *testing.T) {
		var sessions []models.StudySession
		for i := 0; i < 2; i++ {
			sessions = append(sessions, session(user, d, 30, hour(14)))
		}
		for i := 0; i < 5; i++ {
			sessions = append(sessions, session(user, d, 30, hour(10)))
		}
		assert.Equal(t, 10, NewAnalyzer().Analyze(sessions).MostActiveHour)
	})

	t.Run("ties resolve to lowest hour", func(t *testing.T) {
		sessions := []models.StudySession{
			session(user, d, 30, hour(15)),
			session(user, d, 30, hour(15)),
			session(user, d, 30, hour(9)),
			session(user, d, 30, hour(9)),
		}
		assert.Equal(t, 9, NewAnalyzer().Analyze(sessions).MostActiveHour)
	})

	t.Run("no recorded hour defaults to zero", func(t *testing.T) {
		sessions := []models.StudySession{
			session(user, d, 30, nil),
			session(user, d, 45, nil),
		}
		assert.Equal(t, 0, NewAnalyzer().Analyze(sessions).MostActiveHour)
	})
}

func TestAnalyze_ZeroDurationUsesUnitDivisor(t *testing.T) {
	user := uuid.New()
	report := NewAnalyzer().Analyze([]models.StudySession{
		session(user, date(2025, time.January, 1), 0, nil),
		session(user, date(2025, time.January, 2), -5, nil),
	})

	assert.Equal(t, 10.0, report.ConsistencyScore)
	assert.Equal(t, 0.0, report.ProductivityScore)
	assert.Equal(t, []string{SuggestionLengthen}, report.Suggestions)
}

func TestAnalyze_ReportsDoNotShareSuggestions(t *testing.T) {
	a := NewAnalyzer()
	user := uuid.New()
	history := []models.StudySession{session(user, date(2025, time.January, 1), 30, nil)}

	first := a.Analyze(history)
	first.Suggestions[0] = "mutated"
	assert.Equal(t, []string{SuggestionKeepGoing}, a.Analyze(history).Suggestions)

	empty := a.Analyze(nil)
	empty.Suggestions[0] = "mutated"
	assert.Equal(t, []string{SuggestionNoData}, a.Analyze(nil).Suggestions)
	assert.Equal(t, []string{SuggestionNoData}, EmptyReport().Suggestions)
}
