package engine

import (
	"context"

	"teamboard/internal/domain"
	"teamboard/internal/engine/auth"
	"teamboard/internal/events"
)

var errMetricsNotFound = NotFoundError{Resource: "Metrics", Message: "Metrics not found for this user"}

func (e Engine) ListMetrics(ctx context.Context, p auth.Principal) ([]domain.Metric, error) {
	if err := auth.Require(p.Role, denyRoles, auth.Managers...); err != nil {
		return nil, err
	}
	return e.Repo.ListMetrics(), nil
}

func (e Engine) GetUserMetric(ctx context.Context, p auth.Principal, userID int64) (domain.Metric, error) {
	if !auth.OwnerOrAllowed(p, userID, auth.Managers...) {
		return domain.Metric{}, auth.ForbiddenError{Message: "Not authorized to view these metrics"}
	}
	m, ok := e.Repo.GetMetricByUser(userID)
	if !ok {
		return domain.Metric{}, errMetricsNotFound
	}
	return m, nil
}

// UpdateUserMetric overwrites the supplied counters of a user's metric; the
// productivity score follows from them.
func (e Engine) UpdateUserMetric(ctx context.Context, p auth.Principal, userID int64, patch domain.MetricPatch) (domain.Metric, error) {
	if err := auth.Require(p.Role, denyRoles, auth.Managers...); err != nil {
		return domain.Metric{}, err
	}
	for _, f := range []struct {
		name string
		v    *int
	}{
		{"tasksCompleted", patch.TasksCompleted},
		{"tasksTotal", patch.TasksTotal},
		{"onTimeRate", patch.OnTimeRate},
	} {
		if f.v != nil && *f.v < 0 {
			return domain.Metric{}, ValidationError{Field: f.name, Message: "must not be negative"}
		}
	}
	if patch.OnTimeRate != nil && *patch.OnTimeRate > 100 {
		return domain.Metric{}, ValidationError{Field: "onTimeRate", Message: "must be at most 100"}
	}
	current, ok := e.Repo.GetMetricByUser(userID)
	if !ok {
		return domain.Metric{}, errMetricsNotFound
	}
	m, ok := e.Repo.UpdateMetric(current.ID, patch)
	if !ok {
		return domain.Metric{}, errMetricsNotFound
	}
	e.Events.Record(ctx, p.UserID, "Updated metrics", events.ResourceMetric, ptr(m.ID))
	return m, nil
}
