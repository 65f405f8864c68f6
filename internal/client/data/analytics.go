package data

import (
	"fmt"
	"math"
	"time"
)

// Minutes of focused work credited per completed task.
const focusMinutesPerTask = 25

// Summary aggregates the task list into headline productivity numbers.
type Summary struct {
	Total             int     `json:"total"`
	Completed         int     `json:"completed"`
	Pending           int     `json:"pending"`
	CompletionRate    float64 `json:"completion_rate"`
	ProductivityScore int     `json:"productivity_score"`
	FocusMinutes      int     `json:"focus_minutes"`
	StreakDays        int     `json:"streak_days"`
}

// ScoreRange selects the resolution of a score series.
type ScoreRange string

const (
	RangeWeek  ScoreRange = "week"
	RangeMonth ScoreRange = "month"
	RangeYear  ScoreRange = "year"
)

// ScorePoint is one bucket of a productivity score series.
type ScorePoint struct {
	Label string `json:"label"`
	Score int    `json:"score"`
}

// Summary computes headline numbers over the whole task list as of now.
func (s *Store) Summary() Summary {
	return s.summaryAt(time.Now())
}

func (s *Store) summaryAt(now time.Time) Summary {
	tasks := s.Tasks()

	sum := Summary{Total: len(tasks)}
	for _, t := range tasks {
		if t.Completed {
			sum.Completed++
		}
	}
	sum.Pending = sum.Total - sum.Completed
	if sum.Total > 0 {
		sum.CompletionRate = float64(sum.Completed) / float64(sum.Total)
	}

	score := int(math.Round(sum.CompletionRate * 100))
	if sum.Total > 5 {
		score += 10
	}
	if score > 100 {
		score = 100
	}
	sum.ProductivityScore = score
	sum.FocusMinutes = sum.Completed * focusMinutesPerTask
	sum.StreakDays = streak(tasks, now)
	return sum
}

// streak counts consecutive calendar days ending today with at least one
// completed task.
func streak(tasks []Task, now time.Time) int {
	days := make(map[string]bool)
	for _, t := range tasks {
		if t.Completed {
			days[t.Date.Format("2006-01-02")] = true
		}
	}

	count := 0
	for day := now; days[day.Format("2006-01-02")]; day = day.AddDate(0, 0, -1) {
		count++
	}
	return count
}

// ScoreSeries buckets completed tasks into a per-range productivity score
// series ending at now: days for a week, weeks for a month, months for a
// year. Empty buckets get a baseline score rather than zero so sparse
// history still renders as a meaningful trend.
func (s *Store) ScoreSeries(r ScoreRange, now time.Time) []ScorePoint {
	tasks := s.Tasks()

	switch r {
	case RangeMonth:
		return monthSeries(tasks, now)
	case RangeYear:
		return yearSeries(tasks, now)
	default:
		return weekSeries(tasks, now)
	}
}

func weekSeries(tasks []Task, now time.Time) []ScorePoint {
	points := make([]ScorePoint, 0, 7)
	for i := 6; i >= 0; i-- {
		day := now.AddDate(0, 0, -i)
		completed := 0
		for _, t := range tasks {
			if t.Completed && sameDay(t.Date, day) {
				completed++
			}
		}
		score := 20
		if completed > 0 {
			score = clampScore(completed*20 + 20)
		}
		points = append(points, ScorePoint{Label: day.Format("Mon"), Score: score})
	}
	return points
}

func weekOfMonth(t time.Time) int {
	return (t.Day() - 1) / 7
}

func monthSeries(tasks []Task, now time.Time) []ScorePoint {
	weeks := weekOfMonth(lastDayOfMonth(now)) + 1
	points := make([]ScorePoint, 0, weeks)
	for w := 0; w < weeks; w++ {
		completed := 0
		for _, t := range tasks {
			if t.Completed && t.Date.Year() == now.Year() && t.Date.Month() == now.Month() && weekOfMonth(t.Date) == w {
				completed++
			}
		}
		score := 30 + w*5
		if completed > 0 {
			score = clampScore(completed*15 + 30)
		}
		points = append(points, ScorePoint{Label: fmt.Sprintf("W%d", w+1), Score: score})
	}
	return points
}

func yearSeries(tasks []Task, now time.Time) []ScorePoint {
	points := make([]ScorePoint, 0, 12)
	for m := time.January; m <= time.December; m++ {
		completed := 0
		for _, t := range tasks {
			if t.Completed && t.Date.Year() == now.Year() && t.Date.Month() == m {
				completed++
			}
		}
		score := 40
		if completed > 0 {
			score = clampScore(completed*10 + 40)
		}
		points = append(points, ScorePoint{Label: time.Date(now.Year(), m, 1, 0, 0, 0, 0, time.UTC).Format("Jan"), Score: score})
	}
	return points
}

func lastDayOfMonth(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location()).AddDate(0, 1, -1)
}

func clampScore(score int) int {
	if score > 100 {
		return 100
	}
	return score
}
