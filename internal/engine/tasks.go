package engine

import (
	"context"
	"strings"

	"teamboard/internal/domain"
	"teamboard/internal/engine/auth"
	"teamboard/internal/events"
)

// TaskFilter narrows ListTasks. UserID wins when both are set.
type TaskFilter struct {
	UserID     *int64
	CampaignID *int64
}

func (e Engine) ListTasks(ctx context.Context, p auth.Principal, f TaskFilter) ([]domain.Task, error) {
	switch {
	case f.UserID != nil:
		return e.Repo.ListTasksByUser(*f.UserID), nil
	case f.CampaignID != nil:
		return e.Repo.ListTasksByCampaign(*f.CampaignID), nil
	default:
		return e.Repo.ListTasks(), nil
	}
}

func (e Engine) GetTask(ctx context.Context, p auth.Principal, id int64) (domain.Task, error) {
	t, ok := e.Repo.GetTask(id)
	if !ok {
		return domain.Task{}, NotFoundError{Resource: "Task"}
	}
	return t, nil
}

// CreateTask lets callers create their own tasks; managers may create tasks
// for anyone.
func (e Engine) CreateTask(ctx context.Context, p auth.Principal, in domain.TaskInput) (domain.Task, error) {
	in.Title = strings.TrimSpace(in.Title)
	if err := required("title", in.Title); err != nil {
		return domain.Task{}, err
	}
	if in.UserID <= 0 {
		return domain.Task{}, ValidationError{Field: "userId", Message: "is required"}
	}
	if err := validTaskStatus(in.Status, true); err != nil {
		return domain.Task{}, err
	}
	if !auth.OwnerOrAllowed(p, in.UserID, auth.Managers...) {
		return domain.Task{}, auth.ForbiddenError{Message: "Not authorized to create tasks for other users"}
	}
	t := e.Repo.CreateTask(in)
	e.Events.Record(ctx, p.UserID, "Created task", events.ResourceTask, ptr(t.ID))
	return t, nil
}

// UpdateTask applies a partial update. A missing task is reported before the
// ownership check.
func (e Engine) UpdateTask(ctx context.Context, p auth.Principal, id int64, patch domain.TaskPatch) (domain.Task, error) {
	current, ok := e.Repo.GetTask(id)
	if !ok {
		return domain.Task{}, NotFoundError{Resource: "Task"}
	}
	if !auth.OwnerOrAllowed(p, current.UserID, auth.Managers...) {
		return domain.Task{}, auth.ForbiddenError{Message: "Not authorized to update this task"}
	}
	if patch.Title != nil {
		title := strings.TrimSpace(*patch.Title)
		if err := required("title", title); err != nil {
			return domain.Task{}, err
		}
		patch.Title = &title
	}
	if patch.Status != nil {
		if err := validTaskStatus(*patch.Status, false); err != nil {
			return domain.Task{}, err
		}
	}
	t, ok := e.Repo.UpdateTask(id, patch)
	if !ok {
		return domain.Task{}, NotFoundError{Resource: "Task"}
	}
	action := "Updated task"
	if patch.Status != nil && *patch.Status == domain.TaskCompleted {
		action = "Updated task to completed"
	}
	e.Events.Record(ctx, p.UserID, action, events.ResourceTask, ptr(id))
	return t, nil
}

func (e Engine) DeleteTask(ctx context.Context, p auth.Principal, id int64) error {
	current, ok := e.Repo.GetTask(id)
	if !ok {
		return NotFoundError{Resource: "Task"}
	}
	if !auth.OwnerOrAllowed(p, current.UserID, auth.Managers...) {
		return auth.ForbiddenError{Message: "Not authorized to delete this task"}
	}
	if !e.Repo.DeleteTask(id) {
		return NotFoundError{Resource: "Task"}
	}
	e.Events.Record(ctx, p.UserID, "Deleted task", events.ResourceTask, ptr(id))
	return nil
}

func validTaskStatus(status string, allowEmpty bool) error {
	switch status {
	case domain.TaskPending, domain.TaskInProgress, domain.TaskCompleted:
		return nil
	case "":
		if allowEmpty {
			return nil
		}
	}
	return ValidationError{Field: "status", Message: "must be one of pending, in_progress, completed"}
}
