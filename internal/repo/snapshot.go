package repo

import "teamboard/internal/domain"

// Snapshot is a point-in-time copy of every collection together with the
// next id of each kind, so burnt ids stay burnt across a restore.
type Snapshot struct {
	Users      []domain.User
	Roles      []domain.Role
	Campaigns  []domain.Campaign
	Tasks      []domain.Task
	Metrics    []domain.Metric
	Activities []domain.Activity
	NextIDs    Counters
}

// Counters holds the next id to be handed out per entity kind.
type Counters struct {
	Users      int64
	Roles      int64
	Campaigns  int64
	Tasks      int64
	Metrics    int64
	Activities int64
}

func (r *Repo) Export() Snapshot {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s := Snapshot{
		Users:      r.users.values(),
		Roles:      r.roles.values(),
		Campaigns:  r.campaigns.values(),
		Tasks:      r.tasks.values(),
		Metrics:    r.metrics.values(),
		Activities: r.activities.values(),
		NextIDs: Counters{
			Users:      r.users.next,
			Roles:      r.roles.next,
			Campaigns:  r.campaigns.next,
			Tasks:      r.tasks.next,
			Metrics:    r.metrics.next,
			Activities: r.activities.next,
		},
	}
	for i := range s.Roles {
		s.Roles[i] = cloneRole(s.Roles[i])
	}
	for i := range s.Tasks {
		s.Tasks[i] = cloneTask(s.Tasks[i])
	}
	for i := range s.Activities {
		s.Activities[i] = cloneActivity(s.Activities[i])
	}
	return s
}

// Import replaces the store contents with s. Counters lower than the highest
// restored id are raised past it.
func (r *Repo) Import(s Snapshot) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.users.restore(s.Users, func(u domain.User) int64 { return u.ID }, s.NextIDs.Users)
	r.roles.restore(mapSlice(s.Roles, cloneRole), func(v domain.Role) int64 { return v.ID }, s.NextIDs.Roles)
	r.campaigns.restore(s.Campaigns, func(c domain.Campaign) int64 { return c.ID }, s.NextIDs.Campaigns)
	r.tasks.restore(mapSlice(s.Tasks, cloneTask), func(t domain.Task) int64 { return t.ID }, s.NextIDs.Tasks)
	r.metrics.restore(s.Metrics, func(m domain.Metric) int64 { return m.ID }, s.NextIDs.Metrics)
	r.activities.restore(mapSlice(s.Activities, cloneActivity), func(a domain.Activity) int64 { return a.ID }, s.NextIDs.Activities)

	r.metricByUser = make(map[int64]int64, len(s.Metrics))
	r.metrics.each(func(m domain.Metric) bool {
		if _, dup := r.metricByUser[m.UserID]; !dup {
			r.metricByUser[m.UserID] = m.ID
		}
		return true
	})
}

func mapSlice[T any](in []T, fn func(T) T) []T {
	out := make([]T, len(in))
	for i, v := range in {
		out[i] = fn(v)
	}
	return out
}
