// Package scoring derives a user's productivity score from their task counters.
package scoring

import (
	"math"

	"teamboard/internal/domain"
)

// Score returns round((completed/total*100 + onTimeRate) / 2). The second
// return is false when total is not positive and no score can be derived.
func Score(completed, total, onTimeRate int) (int, bool) {
	if total <= 0 {
		return 0, false
	}
	completionRate := float64(completed) / float64(total) * 100
	return int(math.Round((completionRate + float64(onTimeRate)) / 2)), true
}

// Recompute returns m with ProductivityScore re-derived from its counters.
// A metric with no tasks keeps its current score.
func Recompute(m domain.Metric) domain.Metric {
	if score, ok := Score(m.TasksCompleted, m.TasksTotal, m.OnTimeRate); ok {
		m.ProductivityScore = score
	}
	return m
}
