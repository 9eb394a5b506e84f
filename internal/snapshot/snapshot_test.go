package snapshot

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"teamboard/internal/domain"
	"teamboard/internal/repo"
)

func seededRepo() *repo.Repo {
	now := time.Date(2024, 4, 2, 10, 0, 0, 0, time.UTC)
	r := repo.New(func() time.Time { return now })
	u := r.CreateUser(domain.UserInput{Name: "Ann Lee", Email: "ann@example.com", Password: "digest", Role: domain.RoleContentCreator})
	r.CreateRole(domain.RoleInput{Name: "Content Creator", Description: "writes", Permissions: []string{"dashboard", "tasks"}})
	end := now.Add(30 * 24 * time.Hour)
	c := r.CreateCampaign(domain.CampaignInput{Name: "Launch", Progress: 10, StartDate: now, EndDate: &end})
	desc := "first draft"
	t1 := r.CreateTask(domain.TaskInput{Title: "Draft", Description: &desc, UserID: u.ID, CampaignID: &c.ID, DueDate: &end})
	r.CreateTask(domain.TaskInput{Title: "Scrap", UserID: u.ID})
	completed := domain.TaskCompleted
	r.UpdateTask(t1.ID, domain.TaskPatch{Status: &completed})
	r.DeleteTask(2)
	rt := "task"
	r.CreateActivity(domain.ActivityInput{UserID: u.ID, Action: "Created task", ResourceType: &rt, ResourceID: &t1.ID})
	r.CreateActivity(domain.ActivityInput{UserID: u.ID, Action: "User logged in"})
	return r
}

func TestSaveLoadRoundTrip(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "state", "teamboard.db")
	orig := seededRepo()
	require.NoError(t, Save(ctx, path, orig.Export()))

	snap, ok, err := Load(ctx, path)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, int64(3), snap.NextIDs.Tasks)

	restored := repo.New(nil)
	restored.Import(snap)
	require.Equal(t, orig.Export(), restored.Export())
}

func TestSaveOverwrites(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "teamboard.db")
	require.NoError(t, Save(ctx, path, seededRepo().Export()))

	empty := repo.New(nil)
	require.NoError(t, Save(ctx, path, empty.Export()))

	sum, err := Inspect(ctx, path)
	require.NoError(t, err)
	require.Equal(t, 1, sum.SchemaVersion)
	for table, n := range sum.Rows {
		require.Zerof(t, n, "table %s", table)
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, ok, err := Load(context.Background(), filepath.Join(t.TempDir(), "none.db"))
	require.NoError(t, err)
	require.False(t, ok)
}

func TestInspectCounts(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	require.NoError(t, Save(ctx, dir, seededRepo().Export()))

	sum, err := Inspect(ctx, dir)
	require.NoError(t, err)
	require.Equal(t, filepath.Join(dir, "teamboard.db"), sum.Path)
	require.Equal(t, map[string]int{
		"users": 1, "roles": 1, "campaigns": 1, "tasks": 1, "metrics": 1, "activities": 2,
	}, sum.Rows)
}
