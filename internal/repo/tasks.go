package repo

import "teamboard/internal/domain"

// CreateTask stores a task and counts it against the owner's metric.
func (r *Repo) CreateTask(in domain.TaskInput) domain.Task {
	r.mu.Lock()
	defer r.mu.Unlock()
	t := domain.Task{
		ID:          r.tasks.nextID(),
		Title:       in.Title,
		Description: clonePtr(in.Description),
		UserID:      in.UserID,
		CampaignID:  clonePtr(in.CampaignID),
		Status:      in.Status,
		DueDate:     clonePtr(in.DueDate),
		CompletedAt: clonePtr(in.CompletedAt),
	}
	if t.Status == "" {
		t.Status = domain.TaskPending
	}
	r.tasks.insert(t.ID, t)
	r.bumpMetricLocked(t.UserID, func(m *domain.Metric) { m.TasksTotal++ })
	return cloneTask(t)
}

func (r *Repo) GetTask(id int64) (domain.Task, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.tasks.get(id)
	return cloneTask(t), ok
}

func (r *Repo) ListTasks() []domain.Task {
	return r.listTasks(nil)
}

func (r *Repo) ListTasksByUser(userID int64) []domain.Task {
	return r.listTasks(func(t domain.Task) bool { return t.UserID == userID })
}

func (r *Repo) ListTasksByCampaign(campaignID int64) []domain.Task {
	return r.listTasks(func(t domain.Task) bool {
		return t.CampaignID != nil && *t.CampaignID == campaignID
	})
}

func (r *Repo) listTasks(keep func(domain.Task) bool) []domain.Task {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := r.tasks.list(keep)
	for i := range out {
		out[i] = cloneTask(out[i])
	}
	return out
}

// UpdateTask merges the patch into the task. Moving a task into completed
// from any other status counts one completion for the owner; leaving
// completed does not take it back.
func (r *Repo) UpdateTask(id int64, patch domain.TaskPatch) (domain.Task, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.tasks.get(id)
	if !ok {
		return domain.Task{}, false
	}
	wasCompleted := t.Status == domain.TaskCompleted
	// Completion is credited to the owner before any reassignment in patch.
	owner := t.UserID
	if patch.Title != nil {
		t.Title = *patch.Title
	}
	if patch.Description != nil {
		t.Description = clonePtr(patch.Description)
	}
	if patch.UserID != nil {
		t.UserID = *patch.UserID
	}
	if patch.CampaignID != nil {
		t.CampaignID = clonePtr(patch.CampaignID)
	}
	if patch.Status != nil {
		t.Status = *patch.Status
	}
	if patch.DueDate != nil {
		t.DueDate = clonePtr(patch.DueDate)
	}
	if patch.CompletedAt != nil {
		t.CompletedAt = clonePtr(patch.CompletedAt)
	}
	if !wasCompleted && t.Status == domain.TaskCompleted {
		if t.CompletedAt == nil {
			t.CompletedAt = ptr(r.now().UTC())
		}
		r.bumpMetricLocked(owner, func(m *domain.Metric) { m.TasksCompleted++ })
	}
	r.tasks.put(id, t)
	return cloneTask(t), true
}

func (r *Repo) DeleteTask(id int64) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.tasks.remove(id)
}

func cloneTask(t domain.Task) domain.Task {
	t.Description = clonePtr(t.Description)
	t.CampaignID = clonePtr(t.CampaignID)
	t.DueDate = clonePtr(t.DueDate)
	t.CompletedAt = clonePtr(t.CompletedAt)
	return t
}
