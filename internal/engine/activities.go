package engine

import (
	"context"

	"teamboard/internal/domain"
	"teamboard/internal/engine/auth"
)

// ListActivities returns activities newest first. With a user filter the
// caller must be that user or a manager; without one, managers see every
// activity and everyone else sees their own.
func (e Engine) ListActivities(ctx context.Context, p auth.Principal, userID *int64) ([]domain.Activity, error) {
	if userID != nil {
		if !auth.OwnerOrAllowed(p, *userID, auth.Managers...) {
			return nil, auth.ForbiddenError{Message: "Not authorized to view these activities"}
		}
		return e.Repo.ListActivitiesByUser(*userID), nil
	}
	if auth.Allowed(p.Role, auth.Managers...) {
		return e.Repo.ListActivities(), nil
	}
	return e.Repo.ListActivitiesByUser(p.UserID), nil
}
