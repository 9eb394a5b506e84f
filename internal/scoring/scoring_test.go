package scoring

import (
	"testing"

	"github.com/stretchr/testify/require"

	"teamboard/internal/domain"
)

func TestScore(t *testing.T) {
	cases := []struct {
		name                     string
		completed, total, onTime int
		want                     int
		ok                       bool
	}{
		{"no tasks", 0, 0, 80, 0, false},
		{"negative total", 1, -1, 80, 0, false},
		{"all done on time", 10, 10, 100, 100, true},
		{"half done", 5, 10, 0, 25, true},
		{"rounds to nearest", 1, 3, 0, 17, true},
		{"half rounds up", 1, 4, 0, 13, true},
		{"mixed", 24, 30, 92, 86, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := Score(tc.completed, tc.total, tc.onTime)
			require.Equal(t, tc.ok, ok)
			require.Equal(t, tc.want, got)
		})
	}
}

func TestRecomputeKeepsScoreWithoutTasks(t *testing.T) {
	m := domain.Metric{ID: 1, UserID: 7, OnTimeRate: 90, ProductivityScore: 42}
	require.Equal(t, 42, Recompute(m).ProductivityScore)
}

func TestRecomputeDerivesScore(t *testing.T) {
	m := domain.Metric{ID: 1, UserID: 7, TasksCompleted: 18, TasksTotal: 25, OnTimeRate: 78, ProductivityScore: 1}
	got := Recompute(m)
	require.Equal(t, 75, got.ProductivityScore)
	require.Equal(t, m.TasksCompleted, got.TasksCompleted)
	require.Equal(t, m.TasksTotal, got.TasksTotal)
}
