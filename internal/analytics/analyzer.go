package analytics

import (
	"math"

	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"

	"github.com/rayen43500/Study-Planner-Smart-Learning-Analyzer/internal/models"
)

const (
	// ReferenceSessionMinutes is the average session length that earns a
	// productivity score of MaxScore.
	ReferenceSessionMinutes = 30.0
	MaxScore                = 10.0

	lateNightHour        = 21
	lateNightShare       = 0.7
	lowConsistencyScore  = 5.0
	lowProductivityScore = 6.0
)

const (
	SuggestionNoData     = "Start logging sessions to generate a report."
	SuggestionSleep      = "Most of your sessions start after 9 PM: try to protect your sleep."
	SuggestionRegularity = "Your sessions lack regularity: set a fixed daily study slot."
	SuggestionLengthen   = "Gradually lengthen your sessions to get more out of them."
	SuggestionKeepGoing  = "Great rhythm! Keep tracking your progress."
)

// Report is the productivity summary of a user's full session history.
type Report struct {
	MostActiveHour    int      `json:"most_active_hour"`
	ConsistencyScore  float64  `json:"consistency_score"`
	ProductivityScore float64  `json:"productivity_score"`
	Suggestions       []string `json:"suggestions"`
}

// EmptyReport is returned for a user with no sessions.
func EmptyReport() Report {
	return Report{Suggestions: []string{SuggestionNoData}}
}

// Analyzer scores session histories. The zero value is ready to use.
type Analyzer struct{}

func NewAnalyzer() *Analyzer {
	return &Analyzer{}
}

// Analyze computes the report for sessions. It never fails: an empty history
// yields EmptyReport and a zero daily average is replaced by 1 as divisor.
func (a *Analyzer) Analyze(sessions []models.StudySession) Report {
	if len(sessions) == 0 {
		return EmptyReport()
	}

	consistency := round1(consistencyScore(dailyTotals(sessions)))
	productivity := round1(productivityScore(sessions))

	var suggestions []string
	if lateNightRatio(sessions) > lateNightShare {
		suggestions = append(suggestions, SuggestionSleep)
	}
	if consistency < lowConsistencyScore {
		suggestions = append(suggestions, SuggestionRegularity)
	}
	if productivity < lowProductivityScore {
		suggestions = append(suggestions, SuggestionLengthen)
	}
	if len(suggestions) == 0 {
		suggestions = append(suggestions, SuggestionKeepGoing)
	}

	return Report{
		MostActiveHour:    mostActiveHour(sessions),
		ConsistencyScore:  consistency,
		ProductivityScore: productivity,
		Suggestions:       suggestions,
	}
}

// dailyTotals sums minutes per observed date. Days without sessions are not
// represented.
func dailyTotals(sessions []models.StudySession) []float64 {
	byDay := make(map[civil.Date]int)
	for _, s := range sessions {
		byDay[s.Date] += minutesOf(s)
	}
	totals := make([]float64, 0, len(byDay))
	for _, total := range byDay {
		totals = append(totals, float64(total))
	}
	return totals
}

func consistencyScore(totals []float64) float64 {
	if len(totals) == 0 {
		return 0
	}
	mean := 0.0
	for _, t := range totals {
		mean += t
	}
	mean /= float64(len(totals))

	variance := 0.0
	for _, t := range totals {
		diff := t - mean
		variance += diff * diff
	}
	variance /= float64(len(totals))

	divisor := mean
	if divisor == 0 {
		divisor = 1
	}
	return MaxScore - math.Min(MaxScore, math.Sqrt(variance)/divisor*MaxScore)
}

func productivityScore(sessions []models.StudySession) float64 {
	sum := 0
	for _, s := range sessions {
		sum += minutesOf(s)
	}
	average := float64(sum) / float64(len(sessions))
	return math.Min(MaxScore, average/ReferenceSessionMinutes*MaxScore)
}

// mostActiveHour returns the most frequent known start hour, the lowest hour
// on ties, and 0 when no session recorded one.
func mostActiveHour(sessions []models.StudySession) int {
	var counts [24]int
	for _, s := range sessions {
		if s.StartHour == nil || *s.StartHour < 0 || *s.StartHour > 23 {
			continue
		}
		counts[*s.StartHour]++
	}
	best := 0
	for hour := 1; hour < len(counts); hour++ {
		if counts[hour] > counts[best] {
			best = hour
		}
	}
	return best
}

// lateNightRatio is the share of all sessions, including those without a
// start hour, that started at or after 21:00.
func lateNightRatio(sessions []models.StudySession) float64 {
	late := 0
	for _, s := range sessions {
		if s.StartHour != nil && *s.StartHour >= lateNightHour {
			late++
		}
	}
	return float64(late) / float64(len(sessions))
}

func round1(v float64) float64 {
	return decimal.NewFromFloat(v).Round(1).InexactFloat64()
}
