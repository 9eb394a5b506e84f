package repo

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"teamboard/internal/domain"
)

var fixedNow = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func newTestRepo() *Repo {
	return New(func() time.Time { return fixedNow })
}

func TestCreateUserDerivesAvatarAndMetric(t *testing.T) {
	r := newTestRepo()
	u := r.CreateUser(domain.UserInput{Name: "Ann Lee", Email: "ann@example.com", Password: "digest"})
	require.Equal(t, int64(1), u.ID)
	require.Equal(t, "AL", u.Avatar)
	require.Equal(t, domain.RoleDefault, u.Role)

	m, ok := r.GetMetricByUser(u.ID)
	require.True(t, ok)
	assert.Equal(t, domain.Metric{ID: m.ID, UserID: u.ID}, m)
}

func TestInitials(t *testing.T) {
	assert.Equal(t, "AL", Initials("ann lee"))
	assert.Equal(t, "JR", Initials("  John  Ronald Tolkien"))
	assert.Equal(t, "C", Initials("Cher"))
	assert.Equal(t, "", Initials(""))
	assert.Equal(t, "ÉZ", Initials("élodie zed"))
}

func TestCreateUserIfAbsent(t *testing.T) {
	r := newTestRepo()
	first, created := r.CreateUserIfAbsent(domain.UserInput{Name: "Ann", Email: "ann@example.com"})
	require.True(t, created)
	again, created := r.CreateUserIfAbsent(domain.UserInput{Name: "Other", Email: "ann@example.com"})
	require.False(t, created)
	require.Equal(t, first.ID, again.ID)
	require.Len(t, r.ListUsers(), 1)
}

func TestGetUserByEmail(t *testing.T) {
	r := newTestRepo()
	u := r.CreateUser(domain.UserInput{Name: "Ann", Email: "ann@example.com"})
	got, ok := r.GetUserByEmail("ann@example.com")
	require.True(t, ok)
	require.Equal(t, u, got)
	_, ok = r.GetUserByEmail("nobody@example.com")
	require.False(t, ok)
}

func TestIDsAreNeverReused(t *testing.T) {
	r := newTestRepo()
	a := r.CreateCampaign(domain.CampaignInput{Name: "A", StartDate: fixedNow})
	b := r.CreateCampaign(domain.CampaignInput{Name: "B", StartDate: fixedNow})
	require.True(t, r.DeleteCampaign(b.ID))
	require.False(t, r.DeleteCampaign(b.ID))
	c := r.CreateCampaign(domain.CampaignInput{Name: "C", StartDate: fixedNow})
	require.Equal(t, int64(1), a.ID)
	require.Equal(t, int64(3), c.ID)
	require.Equal(t, domain.CampaignActive, c.Status)

	names := []string{}
	for _, cp := range r.ListCampaigns() {
		names = append(names, cp.Name)
	}
	require.Equal(t, []string{"A", "C"}, names)
}

func TestRoleUpdateMergesPatch(t *testing.T) {
	r := newTestRepo()
	role := r.CreateRole(domain.RoleInput{Name: "Editor", Description: "old", Permissions: []string{"edit"}})
	desc := "new"
	updated, ok := r.UpdateRole(role.ID, domain.RolePatch{Description: &desc})
	require.True(t, ok)
	require.Equal(t, "Editor", updated.Name)
	require.Equal(t, "new", updated.Description)
	require.Equal(t, []string{"edit"}, updated.Permissions)

	got, ok := r.GetRole(role.ID)
	require.True(t, ok)
	require.Equal(t, updated, got)

	_, ok = r.UpdateRole(99, domain.RolePatch{Description: &desc})
	require.False(t, ok)
}

func TestRolePermissionsAreCopied(t *testing.T) {
	r := newTestRepo()
	perms := []string{"a", "b"}
	role := r.CreateRole(domain.RoleInput{Name: "X", Permissions: perms})
	perms[0] = "mutated"
	role.Permissions[1] = "mutated"

	got, _ := r.GetRoleByName("X")
	require.Equal(t, []string{"a", "b"}, got.Permissions)
}

func TestTaskCreateBumpsTotalOnly(t *testing.T) {
	r := newTestRepo()
	u := r.CreateUser(domain.UserInput{Name: "Ann", Email: "ann@example.com"})
	task := r.CreateTask(domain.TaskInput{Title: "write", UserID: u.ID})
	require.Equal(t, domain.TaskPending, task.Status)

	m, _ := r.GetMetricByUser(u.ID)
	require.Equal(t, 1, m.TasksTotal)
	require.Equal(t, 0, m.TasksCompleted)
	require.Equal(t, 0, m.ProductivityScore)
}

func TestCompletingTaskIsOneWayRatchet(t *testing.T) {
	r := newTestRepo()
	u := r.CreateUser(domain.UserInput{Name: "Ann", Email: "ann@example.com"})
	task := r.CreateTask(domain.TaskInput{Title: "write", UserID: u.ID})

	completed := domain.TaskCompleted
	got, ok := r.UpdateTask(task.ID, domain.TaskPatch{Status: &completed})
	require.True(t, ok)
	require.NotNil(t, got.CompletedAt)
	require.Equal(t, fixedNow, *got.CompletedAt)

	_, _ = r.UpdateTask(task.ID, domain.TaskPatch{Status: &completed})
	m, _ := r.GetMetricByUser(u.ID)
	require.Equal(t, 1, m.TasksCompleted)
	require.Equal(t, 50, m.ProductivityScore)

	pending := domain.TaskPending
	_, _ = r.UpdateTask(task.ID, domain.TaskPatch{Status: &pending})
	m, _ = r.GetMetricByUser(u.ID)
	require.Equal(t, 1, m.TasksCompleted)

	_, _ = r.UpdateTask(task.ID, domain.TaskPatch{Status: &completed})
	m, _ = r.GetMetricByUser(u.ID)
	require.Equal(t, 2, m.TasksCompleted)
}

func TestCompletionCreditsOwnerBeforeReassign(t *testing.T) {
	r := newTestRepo()
	a := r.CreateUser(domain.UserInput{Name: "Ann", Email: "ann@example.com"})
	b := r.CreateUser(domain.UserInput{Name: "Bob", Email: "bob@example.com"})
	task := r.CreateTask(domain.TaskInput{Title: "write", UserID: a.ID})

	completed := domain.TaskCompleted
	got, ok := r.UpdateTask(task.ID, domain.TaskPatch{UserID: &b.ID, Status: &completed})
	require.True(t, ok)
	require.Equal(t, b.ID, got.UserID)

	ma, _ := r.GetMetricByUser(a.ID)
	mb, _ := r.GetMetricByUser(b.ID)
	assert.Equal(t, 1, ma.TasksTotal)
	assert.Equal(t, 1, ma.TasksCompleted)
	assert.Equal(t, 0, mb.TasksTotal)
	assert.Equal(t, 0, mb.TasksCompleted)
}

func TestCompletedAtIsKeptWhenSupplied(t *testing.T) {
	r := newTestRepo()
	u := r.CreateUser(domain.UserInput{Name: "Ann", Email: "ann@example.com"})
	task := r.CreateTask(domain.TaskInput{Title: "write", UserID: u.ID})
	at := time.Date(2024, 2, 2, 0, 0, 0, 0, time.UTC)
	completed := domain.TaskCompleted
	got, _ := r.UpdateTask(task.ID, domain.TaskPatch{Status: &completed, CompletedAt: &at})
	require.Equal(t, at, *got.CompletedAt)
}

func TestTaskFilters(t *testing.T) {
	r := newTestRepo()
	campaign := int64(7)
	r.CreateTask(domain.TaskInput{Title: "a", UserID: 1, CampaignID: &campaign})
	r.CreateTask(domain.TaskInput{Title: "b", UserID: 2})
	r.CreateTask(domain.TaskInput{Title: "c", UserID: 1})

	require.Len(t, r.ListTasks(), 3)
	require.Len(t, r.ListTasksByUser(1), 2)
	byCampaign := r.ListTasksByCampaign(7)
	require.Len(t, byCampaign, 1)
	require.Equal(t, "a", byCampaign[0].Title)
}

func TestMetricUpdateDerivesScore(t *testing.T) {
	r := newTestRepo()
	u := r.CreateUser(domain.UserInput{Name: "Ann", Email: "ann@example.com"})
	m, _ := r.GetMetricByUser(u.ID)

	completed, total, onTime := 24, 30, 92
	got, ok := r.UpdateMetric(m.ID, domain.MetricPatch{TasksCompleted: &completed, TasksTotal: &total, OnTimeRate: &onTime})
	require.True(t, ok)
	require.Equal(t, 86, got.ProductivityScore)

	zero := 0
	got, _ = r.UpdateMetric(m.ID, domain.MetricPatch{TasksTotal: &zero})
	require.Equal(t, 86, got.ProductivityScore)
}

func TestCreateMetricIsUniquePerUser(t *testing.T) {
	r := newTestRepo()
	u := r.CreateUser(domain.UserInput{Name: "Ann", Email: "ann@example.com"})
	existing, _ := r.GetMetricByUser(u.ID)
	got, created := r.CreateMetric(domain.MetricInput{UserID: u.ID, TasksTotal: 5})
	require.False(t, created)
	require.Equal(t, existing, got)

	other, created := r.CreateMetric(domain.MetricInput{UserID: 42, OnTimeRate: 80})
	require.True(t, created)
	require.Equal(t, 80, other.OnTimeRate)
	require.Len(t, r.ListMetrics(), 2)
}

func TestActivitiesNewestFirst(t *testing.T) {
	r := newTestRepo()
	older := r.CreateActivity(domain.ActivityInput{UserID: 1, Action: "old", Timestamp: fixedNow.Add(-time.Hour)})
	a := r.CreateActivity(domain.ActivityInput{UserID: 1, Action: "a"})
	b := r.CreateActivity(domain.ActivityInput{UserID: 2, Action: "b"})
	require.Equal(t, fixedNow, a.Timestamp)

	all := r.ListActivities()
	require.Equal(t, []int64{b.ID, a.ID, older.ID}, activityIDs(all))

	mine := r.ListActivitiesByUser(1)
	require.Equal(t, []int64{a.ID, older.ID}, activityIDs(mine))
}

func TestActivitiesAfter(t *testing.T) {
	r := newTestRepo()
	require.Zero(t, r.LatestActivityID())
	for i := 0; i < 5; i++ {
		r.CreateActivity(domain.ActivityInput{UserID: 1, Action: "x"})
	}
	require.Equal(t, []int64{3, 4}, activityIDs(r.ActivitiesAfter(2, 2)))
	require.Equal(t, []int64{3, 4, 5}, activityIDs(r.ActivitiesAfter(2, 0)))
	require.Empty(t, r.ActivitiesAfter(5, 10))
	require.Equal(t, int64(5), r.LatestActivityID())
}

func TestExportImportKeepsCounters(t *testing.T) {
	r := newTestRepo()
	u := r.CreateUser(domain.UserInput{Name: "Ann Lee", Email: "ann@example.com", Password: "digest"})
	r.CreateRole(domain.RoleInput{Name: "Admin", Permissions: []string{"all"}})
	task := r.CreateTask(domain.TaskInput{Title: "t", UserID: u.ID})
	r.DeleteTask(task.ID)
	r.CreateActivity(domain.ActivityInput{UserID: u.ID, Action: "User registered"})

	snap := r.Export()
	restored := newTestRepo()
	restored.Import(snap)

	require.Equal(t, snap, restored.Export())
	got, ok := restored.GetUserByEmail("ann@example.com")
	require.True(t, ok)
	require.Equal(t, "digest", got.Password)

	next := restored.CreateTask(domain.TaskInput{Title: "n", UserID: u.ID})
	require.Equal(t, int64(2), next.ID)
	m, _ := restored.GetMetricByUser(u.ID)
	require.Equal(t, 2, m.TasksTotal)
}

func TestImportRaisesStaleCounters(t *testing.T) {
	r := newTestRepo()
	r.Import(Snapshot{Campaigns: []domain.Campaign{{ID: 9, Name: "x"}}})
	c := r.CreateCampaign(domain.CampaignInput{Name: "y"})
	require.Equal(t, int64(10), c.ID)
}

func TestConcurrentTaskCreatesCountEveryTask(t *testing.T) {
	r := newTestRepo()
	u := r.CreateUser(domain.UserInput{Name: "Ann", Email: "ann@example.com"})
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			r.CreateTask(domain.TaskInput{Title: "t", UserID: u.ID})
		}()
	}
	wg.Wait()
	m, _ := r.GetMetricByUser(u.ID)
	require.Equal(t, 50, m.TasksTotal)
}

func activityIDs(in []domain.Activity) []int64 {
	out := make([]int64, 0, len(in))
	for _, a := range in {
		out = append(out, a.ID)
	}
	return out
}
