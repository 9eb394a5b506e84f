package repo

import (
	"teamboard/internal/domain"
	"teamboard/internal/scoring"
)

// CreateMetric opens the metric row for a user. A user has at most one
// metric; when one exists it is returned unchanged with created=false.
func (r *Repo) CreateMetric(in domain.MetricInput) (domain.Metric, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if id, ok := r.metricByUser[in.UserID]; ok {
		m, _ := r.metrics.get(id)
		return m, false
	}
	return r.createMetricLocked(in), true
}

func (r *Repo) createMetricLocked(in domain.MetricInput) domain.Metric {
	if id, ok := r.metricByUser[in.UserID]; ok {
		m, _ := r.metrics.get(id)
		return m
	}
	m := domain.Metric{
		ID:                r.metrics.nextID(),
		UserID:            in.UserID,
		TasksCompleted:    in.TasksCompleted,
		TasksTotal:        in.TasksTotal,
		OnTimeRate:        in.OnTimeRate,
		ProductivityScore: in.ProductivityScore,
	}
	r.metrics.insert(m.ID, m)
	r.metricByUser[m.UserID] = m.ID
	return m
}

func (r *Repo) GetMetric(id int64) (domain.Metric, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.metrics.get(id)
}

func (r *Repo) GetMetricByUser(userID int64) (domain.Metric, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.metricByUser[userID]
	if !ok {
		return domain.Metric{}, false
	}
	return r.metrics.get(id)
}

func (r *Repo) ListMetrics() []domain.Metric {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.metrics.values()
}

// UpdateMetric merges the patch and re-derives the productivity score.
func (r *Repo) UpdateMetric(id int64, patch domain.MetricPatch) (domain.Metric, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.metrics.get(id)
	if !ok {
		return domain.Metric{}, false
	}
	if patch.TasksCompleted != nil {
		m.TasksCompleted = *patch.TasksCompleted
	}
	if patch.TasksTotal != nil {
		m.TasksTotal = *patch.TasksTotal
	}
	if patch.OnTimeRate != nil {
		m.OnTimeRate = *patch.OnTimeRate
	}
	// Recomputed on every update, including onTimeRate-only patches.
	m = scoring.Recompute(m)
	r.metrics.put(id, m)
	return m, true
}

// bumpMetricLocked applies fn to the user's metric, if any, and re-derives
// the score. Callers hold the write lock.
func (r *Repo) bumpMetricLocked(userID int64, fn func(*domain.Metric)) {
	id, ok := r.metricByUser[userID]
	if !ok {
		return
	}
	m, _ := r.metrics.get(id)
	fn(&m)
	r.metrics.put(id, scoring.Recompute(m))
}
