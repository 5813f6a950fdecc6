// Package analytics turns a user's study sessions into time-bucketed activity
// series and a heuristic productivity report. Everything here is a pure
// function of its inputs and the injected Clock; callers fetch and authorize
// sessions before handing them over.
package analytics

import (
	"fmt"
	"sort"
	"strconv"
	"time"

	"cloud.google.com/go/civil"
	"github.com/google/uuid"

	"github.com/rayen43500/Study-Planner-Smart-Learning-Analyzer/internal/models"
)

// Aggregator buckets sessions into calendar windows that end today.
type Aggregator struct {
	clock Clock
}

func NewAggregator(clock Clock) *Aggregator {
	if clock == nil {
		clock = SystemClock{}
	}
	return &Aggregator{clock: clock}
}

// DailyWindow returns the inclusive [start, today] range covered by
// DailyTotals for the given number of days.
func DailyWindow(today civil.Date, days int) (civil.Date, civil.Date) {
	return today.AddDays(-(days - 1)), today
}

// WeeklyWindow returns the inclusive [start, today] range covered by
// WeeklyTotals. The start is not aligned to a week boundary.
func WeeklyWindow(today civil.Date, weeks int) (civil.Date, civil.Date) {
	return today.AddDays(-7 * (weeks - 1)), today
}

// Today exposes the aggregator's notion of the current date so callers can
// query the store for the same window the aggregator will use.
func (a *Aggregator) Today() civil.Date {
	return a.clock.Today()
}

// DailyTotals sums the user's minutes per day over the last days days,
// oldest first. Days without sessions are present with 0.
func (a *Aggregator) DailyTotals(userID uuid.UUID, sessions []models.StudySession, days int) (Series, error) {
	return DailyTotalsAt(a.clock.Today(), userID, sessions, days)
}

// DailyTotalsAt is DailyTotals for a window ending on today. Callers that
// also query storage for the window pass the same date to both.
func DailyTotalsAt(today civil.Date, userID uuid.UUID, sessions []models.StudySession, days int) (Series, error) {
	if days < 1 {
		return Series{}, fmt.Errorf("%w: days must be at least 1, got %d", ErrInvalidArgument, days)
	}
	return dailyTotalsAt(today, userID, sessions, days), nil
}

func dailyTotalsAt(today civil.Date, userID uuid.UUID, sessions []models.StudySession, days int) Series {
	start, end := DailyWindow(today, days)

	totals := make(map[civil.Date]int)
	for _, s := range sessions {
		if s.UserID != userID || !inRange(s.Date, start, end) {
			continue
		}
		totals[s.Date] += minutesOf(s)
	}

	series := newSeries(days)
	for day := start; !day.After(end); day = day.AddDays(1) {
		series.append(day.String(), totals[day])
	}
	return series
}

// WeeklyTotals sums the user's minutes per ISO 8601 week over the last weeks
// weeks. Only weeks with at least one session appear, ordered by
// (year, week).
func (a *Aggregator) WeeklyTotals(userID uuid.UUID, sessions []models.StudySession, weeks int) (Series, error) {
	return WeeklyTotalsAt(a.clock.Today(), userID, sessions, weeks)
}

func WeeklyTotalsAt(today civil.Date, userID uuid.UUID, sessions []models.StudySession, weeks int) (Series, error) {
	if weeks < 1 {
		return Series{}, fmt.Errorf("%w: weeks must be at least 1, got %d", ErrInvalidArgument, weeks)
	}
	return weeklyTotalsAt(today, userID, sessions, weeks), nil
}

type weekKey struct {
	year int
	week int
}

func (k weekKey) label() string {
	return strconv.Itoa(k.year) + "-W" + strconv.Itoa(k.week)
}

func isoWeekOf(d civil.Date) weekKey {
	year, week := d.In(time.UTC).ISOWeek()
	return weekKey{year: year, week: week}
}

func weeklyTotalsAt(today civil.Date, userID uuid.UUID, sessions []models.StudySession, weeks int) Series {
	start, end := WeeklyWindow(today, weeks)

	totals := make(map[weekKey]int)
	for _, s := range sessions {
		if s.UserID != userID || !inRange(s.Date, start, end) {
			continue
		}
		totals[isoWeekOf(s.Date)] += minutesOf(s)
	}

	keys := make([]weekKey, 0, len(totals))
	for k := range totals {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].year != keys[j].year {
			return keys[i].year < keys[j].year
		}
		return keys[i].week < keys[j].week
	})

	series := newSeries(len(keys))
	for _, k := range keys {
		series.append(k.label(), totals[k])
	}
	return series
}

func inRange(d, start, end civil.Date) bool {
	return !d.Before(start) && !d.After(end)
}

// minutesOf clamps non-positive durations to zero.
func minutesOf(s models.StudySession) int {
	if s.DurationMinutes < 0 {
		return 0
	}
	return s.DurationMinutes
}
