package repo

import (
	"cmp"
	"slices"

	"teamboard/internal/domain"
)

// CreateActivity appends an audit entry. A zero timestamp is replaced with the
// store clock. Activities are never updated or removed.
func (r *Repo) CreateActivity(in domain.ActivityInput) domain.Activity {
	r.mu.Lock()
	defer r.mu.Unlock()
	a := domain.Activity{
		ID:           r.activities.nextID(),
		UserID:       in.UserID,
		Action:       in.Action,
		Timestamp:    in.Timestamp,
		ResourceType: clonePtr(in.ResourceType),
		ResourceID:   clonePtr(in.ResourceID),
	}
	if a.Timestamp.IsZero() {
		a.Timestamp = r.now().UTC()
	}
	r.activities.insert(a.ID, a)
	return cloneActivity(a)
}

func (r *Repo) GetActivity(id int64) (domain.Activity, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, ok := r.activities.get(id)
	return cloneActivity(a), ok
}

// ListActivities returns all activities, newest first.
func (r *Repo) ListActivities() []domain.Activity {
	return r.listActivities(nil)
}

// ListActivitiesByUser returns the user's activities, newest first.
func (r *Repo) ListActivitiesByUser(userID int64) []domain.Activity {
	return r.listActivities(func(a domain.Activity) bool { return a.UserID == userID })
}

func (r *Repo) listActivities(keep func(domain.Activity) bool) []domain.Activity {
	r.mu.RLock()
	out := r.activities.list(keep)
	r.mu.RUnlock()
	for i := range out {
		out[i] = cloneActivity(out[i])
	}
	slices.SortFunc(out, func(a, b domain.Activity) int {
		if c := b.Timestamp.Compare(a.Timestamp); c != 0 {
			return c
		}
		return cmp.Compare(b.ID, a.ID)
	})
	return out
}

// LatestActivityID returns the highest activity id, 0 when there is none.
func (r *Repo) LatestActivityID() int64 {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if n := len(r.activities.order); n > 0 {
		return r.activities.order[n-1]
	}
	return 0
}

// ActivitiesAfter returns up to limit activities with an id greater than
// afterID, oldest first. A limit <= 0 means no limit.
func (r *Repo) ActivitiesAfter(afterID int64, limit int) []domain.Activity {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []domain.Activity
	r.activities.each(func(a domain.Activity) bool {
		if a.ID <= afterID {
			return true
		}
		out = append(out, cloneActivity(a))
		return limit <= 0 || len(out) < limit
	})
	return out
}

func cloneActivity(a domain.Activity) domain.Activity {
	a.ResourceType = clonePtr(a.ResourceType)
	a.ResourceID = clonePtr(a.ResourceID)
	return a
}
