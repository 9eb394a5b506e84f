package events

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"teamboard/internal/repo"
)

func TestRecordStampsAndLogs(t *testing.T) {
	now := time.Date(2024, 5, 1, 9, 30, 0, 0, time.UTC)
	core, logs := observer.New(zap.DebugLevel)
	rec := Recorder{
		Repo:   repo.New(nil),
		Now:    func() time.Time { return now },
		Logger: zap.New(core),
	}
	id := int64(4)
	a := rec.Record(context.Background(), 2, "Created task", ResourceTask, &id)

	require.Equal(t, int64(1), a.ID)
	require.Equal(t, now, a.Timestamp)
	require.Equal(t, ResourceTask, *a.ResourceType)
	require.Equal(t, int64(4), *a.ResourceID)

	entries := logs.FilterMessage("activity recorded").All()
	require.Len(t, entries, 1)
	require.Equal(t, "Created task", entries[0].ContextMap()["action"])
}

func TestRecordWithoutResource(t *testing.T) {
	r := repo.New(func() time.Time { return time.Unix(0, 0) })
	a := Recorder{Repo: r}.Record(context.Background(), 1, "User logged in", "", nil)
	require.Nil(t, a.ResourceType)
	require.Nil(t, a.ResourceID)
	require.Equal(t, time.Unix(0, 0).UTC(), a.Timestamp)

	got, ok := r.GetActivity(a.ID)
	require.True(t, ok)
	require.Equal(t, a, got)
}
