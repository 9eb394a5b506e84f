package engine_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"teamboard/internal/domain"
	"teamboard/internal/engine"
	"teamboard/internal/engine/auth"
	"teamboard/internal/repo"
)

var testNow = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

type testEnv struct {
	Engine  engine.Engine
	Ctx     context.Context
	Admin   auth.Principal
	Manager auth.Principal
	Creator auth.Principal
	Other   auth.Principal
}

func newTestEnv(t *testing.T) testEnv {
	t.Helper()
	clock := func() time.Time { return testNow }
	eng := engine.New(repo.New(clock), "test-secret", zap.NewNop()).WithClock(clock)
	ctx := context.Background()
	env := testEnv{Engine: eng, Ctx: ctx}
	env.Admin = env.register(t, "Alex Morgan", "admin@example.com", domain.RoleAdmin)
	env.Manager = env.register(t, "Jane Doe", "jane@example.com", domain.RoleMarketingManager)
	env.Creator = env.register(t, "Mike Smith", "mike@example.com", domain.RoleContentCreator)
	env.Other = env.register(t, "Anna Roberts", "anna@example.com", domain.RoleContentCreator)
	return env
}

func (env testEnv) register(t *testing.T, name, email, role string) auth.Principal {
	t.Helper()
	s, err := env.Engine.Register(env.Ctx, engine.RegisterOptions{Name: name, Email: email, Password: "secret1", Role: role})
	require.NoError(t, err)
	return auth.Principal{UserID: s.User.ID, Email: s.User.Email, Role: s.User.Role}
}

func activitiesOf(env testEnv, userID int64) []domain.Activity {
	return env.Engine.Repo.ListActivitiesByUser(userID)
}

// actionsOf returns the actions of acts on the given resource type, in order.
func actionsOf(acts []domain.Activity, resourceType string) []string {
	var out []string
	for _, a := range acts {
		if a.ResourceType != nil && *a.ResourceType == resourceType {
			out = append(out, a.Action)
		}
	}
	return out
}

func actionsOn(env testEnv, resourceType string) []string {
	return actionsOf(env.Engine.Repo.ListActivities(), resourceType)
}

func TestRegister(t *testing.T) {
	env := newTestEnv(t)
	s, err := env.Engine.Register(env.Ctx, engine.RegisterOptions{Name: "Ann Lee", Email: "ann@example.com", Password: "secret1"})
	require.NoError(t, err)
	require.Equal(t, "AL", s.User.Avatar)
	require.Equal(t, domain.RoleDefault, s.User.Role)
	require.NotEqual(t, "secret1", s.User.Password)
	require.NotEmpty(t, s.Token)

	p, err := env.Engine.Authenticate(s.Token)
	require.NoError(t, err)
	require.Equal(t, s.User.ID, p.UserID)

	m, err := env.Engine.GetUserMetric(env.Ctx, p, s.User.ID)
	require.NoError(t, err)
	require.Zero(t, m.TasksTotal)
	require.Zero(t, m.ProductivityScore)

	acts := activitiesOf(env, s.User.ID)
	require.Len(t, acts, 1)
	require.Equal(t, "User registered", acts[0].Action)
}

func TestRegisterRejectsDuplicateEmail(t *testing.T) {
	env := newTestEnv(t)
	_, err := env.Engine.Register(env.Ctx, engine.RegisterOptions{Name: "Dup", Email: "admin@example.com", Password: "secret1"})
	require.ErrorIs(t, err, engine.ErrEmailTaken)
}

func TestRegisterRequiresFields(t *testing.T) {
	env := newTestEnv(t)
	_, err := env.Engine.Register(env.Ctx, engine.RegisterOptions{Email: "x@example.com", Password: "secret1"})
	var verr engine.ValidationError
	require.ErrorAs(t, err, &verr)
	require.Equal(t, "name", verr.Field)
}

func TestLogin(t *testing.T) {
	env := newTestEnv(t)
	s, err := env.Engine.Login(env.Ctx, "admin@example.com", "secret1")
	require.NoError(t, err)
	require.Equal(t, env.Admin.UserID, s.User.ID)
	require.Equal(t, "User logged in", activitiesOf(env, env.Admin.UserID)[0].Action)

	_, err = env.Engine.Login(env.Ctx, "admin@example.com", "wrong")
	require.ErrorIs(t, err, engine.ErrInvalidCredentials)
	_, err = env.Engine.Login(env.Ctx, "ghost@example.com", "secret1")
	require.ErrorIs(t, err, engine.ErrInvalidCredentials)
}

func TestMeNotFound(t *testing.T) {
	env := newTestEnv(t)
	_, err := env.Engine.Me(env.Ctx, auth.Principal{UserID: 999, Role: "admin"})
	var nf engine.NotFoundError
	require.ErrorAs(t, err, &nf)
	require.Equal(t, "User not found", nf.Error())
}

func TestRoleLifecycle(t *testing.T) {
	env := newTestEnv(t)
	role, err := env.Engine.CreateRole(env.Ctx, env.Admin, domain.RoleInput{Name: "Analyst", Description: "reads", Permissions: []string{"view_reports"}})
	require.NoError(t, err)

	desc := "reads everything"
	_, err = env.Engine.UpdateRole(env.Ctx, env.Admin, role.ID, domain.RolePatch{Description: &desc})
	require.NoError(t, err)
	got, err := env.Engine.GetRole(env.Ctx, env.Admin, role.ID)
	require.NoError(t, err)
	require.Equal(t, "Analyst", got.Name)
	require.Equal(t, desc, got.Description)

	_, err = env.Engine.CreateRole(env.Ctx, env.Admin, domain.RoleInput{Name: "Analyst"})
	require.ErrorIs(t, err, engine.ErrRoleNameTaken)

	require.NoError(t, env.Engine.DeleteRole(env.Ctx, env.Admin, role.ID))
	var nf engine.NotFoundError
	require.ErrorAs(t, env.Engine.DeleteRole(env.Ctx, env.Admin, role.ID), &nf)

	actions := []string{}
	for _, a := range activitiesOf(env, env.Admin.UserID) {
		if a.ResourceType != nil && *a.ResourceType == "role" {
			actions = append(actions, a.Action)
		}
	}
	require.ElementsMatch(t, []string{"Created role", "Updated role", "Deleted role"}, actions)
}

func TestRolesAreAdminOnly(t *testing.T) {
	env := newTestEnv(t)
	_, err := env.Engine.ListRoles(env.Ctx, env.Manager)
	var forbidden auth.ForbiddenError
	require.ErrorAs(t, err, &forbidden)
	_, err = env.Engine.CreateRole(env.Ctx, env.Creator, domain.RoleInput{Name: "x"})
	require.ErrorAs(t, err, &forbidden)
}

func TestCampaignWritesNeedManager(t *testing.T) {
	env := newTestEnv(t)
	in := domain.CampaignInput{Name: "Launch", StartDate: testNow}
	_, err := env.Engine.CreateCampaign(env.Ctx, env.Creator, in)
	var forbidden auth.ForbiddenError
	require.ErrorAs(t, err, &forbidden)

	c, err := env.Engine.CreateCampaign(env.Ctx, env.Manager, in)
	require.NoError(t, err)
	require.Equal(t, domain.CampaignActive, c.Status)

	progress := 40
	c, err = env.Engine.UpdateCampaign(env.Ctx, env.Admin, c.ID, domain.CampaignPatch{Progress: &progress})
	require.NoError(t, err)
	require.Equal(t, 40, c.Progress)
	require.Equal(t, "Launch", c.Name)

	require.Len(t, actionsOn(env, "campaign"), 2)
	require.Equal(t, []string{"Updated campaign"}, actionsOf(activitiesOf(env, env.Admin.UserID), "campaign"))
	require.Equal(t, []string{"Created campaign"}, actionsOf(activitiesOf(env, env.Manager.UserID), "campaign"))

	_, err = env.Engine.UpdateCampaign(env.Ctx, env.Admin, 999, domain.CampaignPatch{Progress: &progress})
	var nf engine.NotFoundError
	require.ErrorAs(t, err, &nf)
	require.Equal(t, "Campaign not found", nf.Error())

	_, err = env.Engine.CreateCampaign(env.Ctx, env.Manager, domain.CampaignInput{Name: "No start"})
	var verr engine.ValidationError
	require.ErrorAs(t, err, &verr)
}

func TestTaskOwnership(t *testing.T) {
	env := newTestEnv(t)
	_, err := env.Engine.CreateTask(env.Ctx, env.Creator, domain.TaskInput{Title: "x", UserID: env.Other.UserID})
	var forbidden auth.ForbiddenError
	require.ErrorAs(t, err, &forbidden)

	task, err := env.Engine.CreateTask(env.Ctx, env.Manager, domain.TaskInput{Title: "Draft post", UserID: env.Creator.UserID})
	require.NoError(t, err)

	title := "Hijack"
	_, err = env.Engine.UpdateTask(env.Ctx, env.Other, task.ID, domain.TaskPatch{Title: &title})
	require.ErrorAs(t, err, &forbidden)

	_, err = env.Engine.UpdateTask(env.Ctx, env.Other, 999, domain.TaskPatch{Title: &title})
	var nf engine.NotFoundError
	require.ErrorAs(t, err, &nf)

	require.ErrorAs(t, env.Engine.DeleteTask(env.Ctx, env.Other, task.ID), &forbidden)
	require.NoError(t, env.Engine.DeleteTask(env.Ctx, env.Creator, task.ID))
}

func TestTaskCompletionUpdatesMetrics(t *testing.T) {
	env := newTestEnv(t)
	task, err := env.Engine.CreateTask(env.Ctx, env.Creator, domain.TaskInput{Title: "Write copy", UserID: env.Creator.UserID})
	require.NoError(t, err)

	m, err := env.Engine.GetUserMetric(env.Ctx, env.Creator, env.Creator.UserID)
	require.NoError(t, err)
	require.Equal(t, 1, m.TasksTotal)
	require.Equal(t, 0, m.TasksCompleted)

	completed := domain.TaskCompleted
	for i := 0; i < 2; i++ {
		_, err = env.Engine.UpdateTask(env.Ctx, env.Creator, task.ID, domain.TaskPatch{Status: &completed})
		require.NoError(t, err)
	}
	m, err = env.Engine.GetUserMetric(env.Ctx, env.Creator, env.Creator.UserID)
	require.NoError(t, err)
	require.Equal(t, 1, m.TasksCompleted)
	require.Equal(t, 50, m.ProductivityScore)

	require.Equal(t, []string{"Updated task to completed", "Updated task to completed", "Created task"},
		actionsOf(activitiesOf(env, env.Creator.UserID), "task"))
	require.Len(t, actionsOn(env, "task"), 3)

	bogus := "done"
	_, err = env.Engine.UpdateTask(env.Ctx, env.Creator, task.ID, domain.TaskPatch{Status: &bogus})
	var verr engine.ValidationError
	require.ErrorAs(t, err, &verr)
}

func TestListTasksPrefersUserFilter(t *testing.T) {
	env := newTestEnv(t)
	campaign := int64(1)
	_, err := env.Engine.CreateTask(env.Ctx, env.Admin, domain.TaskInput{Title: "a", UserID: env.Creator.UserID, CampaignID: &campaign})
	require.NoError(t, err)
	_, err = env.Engine.CreateTask(env.Ctx, env.Admin, domain.TaskInput{Title: "b", UserID: env.Other.UserID, CampaignID: &campaign})
	require.NoError(t, err)

	tasks, err := env.Engine.ListTasks(env.Ctx, env.Creator, engine.TaskFilter{UserID: &env.Creator.UserID, CampaignID: &campaign})
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	require.Equal(t, "a", tasks[0].Title)

	tasks, err = env.Engine.ListTasks(env.Ctx, env.Creator, engine.TaskFilter{CampaignID: &campaign})
	require.NoError(t, err)
	require.Len(t, tasks, 2)
}

func TestMetricsAccess(t *testing.T) {
	env := newTestEnv(t)
	_, err := env.Engine.GetUserMetric(env.Ctx, env.Creator, env.Other.UserID)
	var forbidden auth.ForbiddenError
	require.ErrorAs(t, err, &forbidden)

	_, err = env.Engine.ListMetrics(env.Ctx, env.Creator)
	require.ErrorAs(t, err, &forbidden)

	all, err := env.Engine.ListMetrics(env.Ctx, env.Manager)
	require.NoError(t, err)
	require.Len(t, all, 4)

	_, err = env.Engine.GetUserMetric(env.Ctx, env.Admin, 999)
	var nf engine.NotFoundError
	require.ErrorAs(t, err, &nf)
	require.Equal(t, "Metrics not found for this user", nf.Error())
}

func TestUpdateUserMetric(t *testing.T) {
	env := newTestEnv(t)
	completed, total, onTime := 18, 25, 78
	m, err := env.Engine.UpdateUserMetric(env.Ctx, env.Manager, env.Creator.UserID, domain.MetricPatch{
		TasksCompleted: &completed, TasksTotal: &total, OnTimeRate: &onTime,
	})
	require.NoError(t, err)
	require.Equal(t, 75, m.ProductivityScore)

	over := 101
	_, err = env.Engine.UpdateUserMetric(env.Ctx, env.Manager, env.Creator.UserID, domain.MetricPatch{OnTimeRate: &over})
	var verr engine.ValidationError
	require.ErrorAs(t, err, &verr)

	_, err = env.Engine.UpdateUserMetric(env.Ctx, env.Creator, env.Creator.UserID, domain.MetricPatch{OnTimeRate: &onTime})
	var forbidden auth.ForbiddenError
	require.ErrorAs(t, err, &forbidden)
}

func TestListActivitiesScope(t *testing.T) {
	env := newTestEnv(t)
	mine, err := env.Engine.ListActivities(env.Ctx, env.Creator, nil)
	require.NoError(t, err)
	for _, a := range mine {
		require.Equal(t, env.Creator.UserID, a.UserID)
	}

	all, err := env.Engine.ListActivities(env.Ctx, env.Manager, nil)
	require.NoError(t, err)
	require.Len(t, all, 4)

	_, err = env.Engine.ListActivities(env.Ctx, env.Creator, &env.Other.UserID)
	var forbidden auth.ForbiddenError
	require.ErrorAs(t, err, &forbidden)
}

func TestDashboard(t *testing.T) {
	env := newTestEnv(t)
	_, err := env.Engine.CreateCampaign(env.Ctx, env.Manager, domain.CampaignInput{Name: "Live", StartDate: testNow})
	require.NoError(t, err)
	_, err = env.Engine.CreateCampaign(env.Ctx, env.Manager, domain.CampaignInput{Name: "Done", StartDate: testNow, Status: "completed"})
	require.NoError(t, err)
	task, err := env.Engine.CreateTask(env.Ctx, env.Creator, domain.TaskInput{Title: "a", UserID: env.Creator.UserID})
	require.NoError(t, err)
	_, err = env.Engine.CreateTask(env.Ctx, env.Creator, domain.TaskInput{Title: "b", UserID: env.Creator.UserID})
	require.NoError(t, err)
	completed := domain.TaskCompleted
	_, err = env.Engine.UpdateTask(env.Ctx, env.Creator, task.ID, domain.TaskPatch{Status: &completed})
	require.NoError(t, err)
	for i := 0; i < 10; i++ {
		_, err = env.Engine.Login(env.Ctx, "anna@example.com", "secret1")
		require.NoError(t, err)
	}

	d, err := env.Engine.Dashboard(env.Ctx, env.Creator)
	require.NoError(t, err)
	require.Len(t, d.Activities, engine.RecentActivityLimit)
	require.Len(t, d.Campaigns, 2)

	perf := d.PerformanceData
	require.Equal(t, 2, perf.Campaigns)
	require.Equal(t, 1, perf.ActiveCampaigns)
	require.Equal(t, 1, perf.OpenTasks)
	require.Equal(t, 1, perf.CompletedTasks)
	// creator: round((1/2*100 + 0) / 2) = 25; three other users at 0.
	require.Equal(t, 6, perf.TeamProductivity)
	require.Len(t, perf.TeamMembers, 4)
	require.Equal(t, 25, perf.TeamMembers[2].Metric.ProductivityScore)
}
