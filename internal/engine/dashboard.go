package engine

import (
	"context"
	"math"

	"teamboard/internal/domain"
	"teamboard/internal/engine/auth"
)

// RecentActivityLimit caps the activities returned with the dashboard.
const RecentActivityLimit = 10

type Dashboard struct {
	Campaigns       []domain.Campaign
	Metrics         []domain.Metric
	Activities      []domain.Activity
	Roles           []domain.Role
	PerformanceData PerformanceData
}

// PerformanceData summarizes the team from the stored records.
type PerformanceData struct {
	Campaigns        int
	ActiveCampaigns  int
	OpenTasks        int
	CompletedTasks   int
	TeamProductivity int
	TeamMembers      []TeamMember
}

type TeamMember struct {
	User   domain.User
	Metric domain.Metric
}

func (e Engine) Dashboard(ctx context.Context, p auth.Principal) (Dashboard, error) {
	d := Dashboard{
		Campaigns: e.Repo.ListCampaigns(),
		Metrics:   e.Repo.ListMetrics(),
		Roles:     e.Repo.ListRoles(),
	}
	activities := e.Repo.ListActivities()
	if len(activities) > RecentActivityLimit {
		activities = activities[:RecentActivityLimit]
	}
	d.Activities = activities

	perf := PerformanceData{Campaigns: len(d.Campaigns)}
	for _, c := range d.Campaigns {
		if c.Status == domain.CampaignActive {
			perf.ActiveCampaigns++
		}
	}
	for _, t := range e.Repo.ListTasks() {
		if t.Status == domain.TaskCompleted {
			perf.CompletedTasks++
		} else {
			perf.OpenTasks++
		}
	}
	if n := len(d.Metrics); n > 0 {
		sum := 0
		for _, m := range d.Metrics {
			sum += m.ProductivityScore
		}
		perf.TeamProductivity = int(math.Round(float64(sum) / float64(n)))
	}
	users := e.Repo.ListUsers()
	perf.TeamMembers = make([]TeamMember, 0, len(users))
	for _, u := range users {
		m, _ := e.Repo.GetMetricByUser(u.ID)
		perf.TeamMembers = append(perf.TeamMembers, TeamMember{User: u, Metric: m})
	}
	d.PerformanceData = perf
	return d, nil
}
