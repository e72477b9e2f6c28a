package store

import (
	"context"
	"testing"
	"time"

	"workspace-service/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedTasks(t *testing.T, tasks Collection[model.Task]) {
	t.Helper()
	base := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	for i, status := range []model.TaskStatus{model.StatusTodo, model.StatusDone, model.StatusDone, model.StatusBacklog} {
		require.NoError(t, tasks.Create(context.Background(), &model.Task{
			ID:          string(rune('a' + i)),
			Name:        "Task " + string(status),
			WorkspaceID: "ws-1",
			Status:      status,
			Position:    (i + 1) * 1000,
			CreatedAt:   base.Add(time.Duration(i) * time.Hour),
		}))
	}
}

func TestMemoryCreateConflict(t *testing.T) {
	members := NewMemory().Stores().Members
	ctx := context.Background()

	m := &model.Member{ID: "m-1", WorkspaceID: "ws-1", UserID: "u-1", Role: model.RoleMember}
	require.NoError(t, members.Create(ctx, m))
	assert.ErrorIs(t, members.Create(ctx, m), ErrConflict)
}

func TestMemoryGetReturnsCopy(t *testing.T) {
	projects := NewMemory().Stores().Projects
	ctx := context.Background()
	require.NoError(t, projects.Create(ctx, &model.Project{ID: "p-1", Name: "Alpha"}))

	got, err := projects.Get(ctx, "p-1")
	require.NoError(t, err)
	got.Name = "changed"

	again, err := projects.Get(ctx, "p-1")
	require.NoError(t, err)
	assert.Equal(t, "Alpha", again.Name)

	_, err = projects.Get(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryListFiltersOrderAndLimit(t *testing.T) {
	tasks := NewMemory().Stores().Tasks
	seedTasks(t, tasks)

	list, err := tasks.List(context.Background(), Query{
		Filters: []Filter{NotEqual("status", model.StatusBacklog)},
		OrderBy: "created_at",
		Desc:    true,
		Limit:   2,
	})
	require.NoError(t, err)
	assert.Equal(t, 3, list.Total)
	require.Len(t, list.Documents, 2)
	assert.Equal(t, "c", list.Documents[0].ID)
	assert.Equal(t, "b", list.Documents[1].ID)
}

func TestMemoryCountOperators(t *testing.T) {
	tasks := NewMemory().Stores().Tasks
	seedTasks(t, tasks)
	ctx := context.Background()
	cutoff := time.Date(2024, 5, 1, 2, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		filters []Filter
		want    int
	}{
		{"equal", []Filter{Equal("status", model.StatusDone)}, 2},
		{"not equal", []Filter{NotEqual("status", model.StatusDone)}, 2},
		{"less than", []Filter{LessThan("created_at", cutoff)}, 2},
		{"range", []Filter{GreaterOrEqual("created_at", cutoff), LessOrEqual("created_at", cutoff)}, 1},
		{"in", []Filter{In("id", []string{"a", "d", "z"})}, 2},
		{"in empty", []Filter{In("id", nil)}, 0},
		{"contains", []Filter{Contains("name", "done")}, 2},
		{"int field", []Filter{GreaterOrEqual("position", 3000)}, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n, err := tasks.Count(ctx, tt.filters...)
			require.NoError(t, err)
			assert.Equal(t, tt.want, n)
		})
	}
}

func TestMemoryUpdateAndDelete(t *testing.T) {
	tasks := NewMemory().Stores().Tasks
	seedTasks(t, tasks)
	ctx := context.Background()

	assert.ErrorIs(t, tasks.Update(ctx, &model.Task{ID: "missing"}), ErrNotFound)

	n, err := tasks.DeleteWhere(ctx, Equal("status", model.StatusDone))
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	require.NoError(t, tasks.Delete(ctx, "a"))
	assert.ErrorIs(t, tasks.Delete(ctx, "a"), ErrNotFound)

	remaining, err := tasks.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, remaining)
}
