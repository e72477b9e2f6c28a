package service

import (
	"context"
	"testing"
	"time"

	"workspace-service/internal/apperror"
	"workspace-service/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type taskFixture struct {
	*fixture
	alice   *model.User
	ws      *model.Workspace
	admin   *model.Member
	project *model.Project
}

func newTaskFixture(t *testing.T) *taskFixture {
	f := newFixture(t)
	alice := f.user(t, "alice")
	ws := f.workspace(t, alice, "W")
	project, err := f.svc.Projects.Create(context.Background(), alice.ID, CreateProjectInput{WorkspaceID: ws.ID, Name: "P"})
	require.NoError(t, err)
	return &taskFixture{fixture: f, alice: alice, ws: ws, admin: f.member(t, ws, alice), project: project}
}

func (tf *taskFixture) input(name string, status model.TaskStatus) CreateTaskInput {
	return CreateTaskInput{
		Name:        name,
		Status:      status,
		WorkspaceID: tf.ws.ID,
		ProjectID:   tf.project.ID,
		AssigneeID:  tf.admin.ID,
		DueDate:     fixedNow.AddDate(0, 0, 7),
	}
}

func TestCreateTaskPositions(t *testing.T) {
	tf := newTaskFixture(t)
	ctx := context.Background()

	first, err := tf.svc.Tasks.Create(ctx, tf.alice.ID, tf.input("one", model.StatusTodo))
	require.NoError(t, err)
	second, err := tf.svc.Tasks.Create(ctx, tf.alice.ID, tf.input("two", model.StatusTodo))
	require.NoError(t, err)
	other, err := tf.svc.Tasks.Create(ctx, tf.alice.ID, tf.input("three", model.StatusDone))
	require.NoError(t, err)

	assert.Equal(t, 1000, first.Position)
	assert.Equal(t, 2000, second.Position)
	assert.Equal(t, 1000, other.Position)
}

func TestCreateTaskValidation(t *testing.T) {
	tf := newTaskFixture(t)
	ctx := context.Background()

	tests := []struct {
		name   string
		mutate func(in *CreateTaskInput)
	}{
		{"missing name", func(in *CreateTaskInput) { in.Name = " " }},
		{"bad status", func(in *CreateTaskInput) { in.Status = "ARCHIVED" }},
		{"missing project", func(in *CreateTaskInput) { in.ProjectID = "" }},
		{"missing assignee", func(in *CreateTaskInput) { in.AssigneeID = "" }},
		{"missing due date", func(in *CreateTaskInput) { in.DueDate = time.Time{} }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := tf.input("t", model.StatusTodo)
			tt.mutate(&in)
			_, err := tf.svc.Tasks.Create(ctx, tf.alice.ID, in)
			assert.ErrorIs(t, err, apperror.ErrValidation)
		})
	}
}

func TestCreateTaskRejectsForeignReferences(t *testing.T) {
	tf := newTaskFixture(t)
	ctx := context.Background()
	otherWs := tf.workspace(t, tf.alice, "other")
	otherProject, err := tf.svc.Projects.Create(ctx, tf.alice.ID, CreateProjectInput{WorkspaceID: otherWs.ID, Name: "X"})
	require.NoError(t, err)
	otherAdmin := tf.member(t, otherWs, tf.alice)

	in := tf.input("t", model.StatusTodo)
	in.ProjectID = otherProject.ID
	_, err = tf.svc.Tasks.Create(ctx, tf.alice.ID, in)
	assert.ErrorIs(t, err, apperror.ErrValidation)

	in = tf.input("t", model.StatusTodo)
	in.AssigneeID = otherAdmin.ID
	_, err = tf.svc.Tasks.Create(ctx, tf.alice.ID, in)
	assert.ErrorIs(t, err, apperror.ErrValidation)
}

func TestListTasksFiltersAndPopulates(t *testing.T) {
	tf := newTaskFixture(t)
	ctx := context.Background()

	_, err := tf.svc.Tasks.Create(ctx, tf.alice.ID, tf.input("Fix login bug", model.StatusTodo))
	require.NoError(t, err)
	_, err = tf.svc.Tasks.Create(ctx, tf.alice.ID, tf.input("Write docs", model.StatusDone))
	require.NoError(t, err)

	all, err := tf.svc.Tasks.List(ctx, tf.alice.ID, TaskFilter{WorkspaceID: tf.ws.ID})
	require.NoError(t, err)
	require.Len(t, all, 2)
	require.NotNil(t, all[0].Project)
	require.NotNil(t, all[0].Assignee)
	assert.Equal(t, "alice", all[0].Assignee.Name)

	done, err := tf.svc.Tasks.List(ctx, tf.alice.ID, TaskFilter{WorkspaceID: tf.ws.ID, Status: model.StatusDone})
	require.NoError(t, err)
	require.Len(t, done, 1)
	assert.Equal(t, "Write docs", done[0].Name)

	search, err := tf.svc.Tasks.List(ctx, tf.alice.ID, TaskFilter{WorkspaceID: tf.ws.ID, Search: "LOGIN"})
	require.NoError(t, err)
	require.Len(t, search, 1)

	due := fixedNow.AddDate(0, 0, 7)
	byDay, err := tf.svc.Tasks.List(ctx, tf.alice.ID, TaskFilter{WorkspaceID: tf.ws.ID, DueDate: &due})
	require.NoError(t, err)
	assert.Len(t, byDay, 2)

	_, err = tf.svc.Tasks.List(ctx, tf.alice.ID, TaskFilter{})
	assert.ErrorIs(t, err, apperror.ErrValidation)
}

func TestUpdateAndDeleteTask(t *testing.T) {
	tf := newTaskFixture(t)
	ctx := context.Background()
	task, err := tf.svc.Tasks.Create(ctx, tf.alice.ID, tf.input("t", model.StatusTodo))
	require.NoError(t, err)

	status := model.StatusInReview
	desc := "details"
	updated, err := tf.svc.Tasks.Update(ctx, tf.alice.ID, task.ID, UpdateTaskInput{Status: &status, Description: &desc})
	require.NoError(t, err)
	assert.Equal(t, model.StatusInReview, updated.Status)
	assert.Equal(t, "details", updated.Description)

	got, err := tf.svc.Tasks.Get(ctx, tf.alice.ID, task.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusInReview, got.Status)

	_, err = tf.svc.Tasks.Delete(ctx, tf.alice.ID, task.ID)
	require.NoError(t, err)
	_, err = tf.svc.Tasks.Get(ctx, tf.alice.ID, task.ID)
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}

func TestUpdateTaskRejectsForeignReferences(t *testing.T) {
	tf := newTaskFixture(t)
	ctx := context.Background()
	task, err := tf.svc.Tasks.Create(ctx, tf.alice.ID, tf.input("t", model.StatusTodo))
	require.NoError(t, err)

	otherWs := tf.workspace(t, tf.alice, "other")
	otherProject, err := tf.svc.Projects.Create(ctx, tf.alice.ID, CreateProjectInput{WorkspaceID: otherWs.ID, Name: "X"})
	require.NoError(t, err)
	otherAdmin := tf.member(t, otherWs, tf.alice)

	_, err = tf.svc.Tasks.Update(ctx, tf.alice.ID, task.ID, UpdateTaskInput{ProjectID: &otherProject.ID})
	assert.ErrorIs(t, err, apperror.ErrValidation)
	_, err = tf.svc.Tasks.Update(ctx, tf.alice.ID, task.ID, UpdateTaskInput{AssigneeID: &otherAdmin.ID})
	assert.ErrorIs(t, err, apperror.ErrValidation)

	stored, err := tf.stores.Tasks.Get(ctx, task.ID)
	require.NoError(t, err)
	assert.Equal(t, tf.project.ID, stored.ProjectID)
	assert.Equal(t, tf.admin.ID, stored.AssigneeID)
}

func TestTaskRequiresMembership(t *testing.T) {
	tf := newTaskFixture(t)
	ctx := context.Background()
	mallory := tf.user(t, "mallory")
	task, err := tf.svc.Tasks.Create(ctx, tf.alice.ID, tf.input("t", model.StatusTodo))
	require.NoError(t, err)

	_, err = tf.svc.Tasks.Create(ctx, mallory.ID, tf.input("x", model.StatusTodo))
	assert.ErrorIs(t, err, apperror.ErrUnauthorized)
	_, err = tf.svc.Tasks.Get(ctx, mallory.ID, task.ID)
	assert.ErrorIs(t, err, apperror.ErrUnauthorized)
	_, err = tf.svc.Tasks.Delete(ctx, mallory.ID, task.ID)
	assert.ErrorIs(t, err, apperror.ErrUnauthorized)
	_, err = tf.svc.Tasks.BulkUpdate(ctx, mallory.ID, []TaskPosition{{ID: task.ID, Status: model.StatusDone, Position: 1000}})
	assert.ErrorIs(t, err, apperror.ErrUnauthorized)
}

func TestBulkUpdate(t *testing.T) {
	tf := newTaskFixture(t)
	ctx := context.Background()
	a, err := tf.svc.Tasks.Create(ctx, tf.alice.ID, tf.input("a", model.StatusTodo))
	require.NoError(t, err)
	b, err := tf.svc.Tasks.Create(ctx, tf.alice.ID, tf.input("b", model.StatusTodo))
	require.NoError(t, err)

	updated, err := tf.svc.Tasks.BulkUpdate(ctx, tf.alice.ID, []TaskPosition{
		{ID: a.ID, Status: model.StatusDone, Position: 3000},
		{ID: b.ID, Status: model.StatusInProgress, Position: 1000},
	})
	require.NoError(t, err)
	require.Len(t, updated, 2)

	stored, err := tf.stores.Tasks.Get(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusDone, stored.Status)
	assert.Equal(t, 3000, stored.Position)
}

func TestBulkUpdateRejectsMixedWorkspaces(t *testing.T) {
	tf := newTaskFixture(t)
	ctx := context.Background()
	a, err := tf.svc.Tasks.Create(ctx, tf.alice.ID, tf.input("a", model.StatusTodo))
	require.NoError(t, err)

	otherWs := tf.workspace(t, tf.alice, "other")
	otherProject, err := tf.svc.Projects.Create(ctx, tf.alice.ID, CreateProjectInput{WorkspaceID: otherWs.ID, Name: "X"})
	require.NoError(t, err)
	b, err := tf.svc.Tasks.Create(ctx, tf.alice.ID, CreateTaskInput{
		Name: "b", Status: model.StatusTodo, WorkspaceID: otherWs.ID, ProjectID: otherProject.ID,
		AssigneeID: tf.member(t, otherWs, tf.alice).ID, DueDate: fixedNow,
	})
	require.NoError(t, err)

	_, err = tf.svc.Tasks.BulkUpdate(ctx, tf.alice.ID, []TaskPosition{
		{ID: a.ID, Status: model.StatusDone, Position: 1000},
		{ID: b.ID, Status: model.StatusDone, Position: 2000},
	})
	assert.ErrorIs(t, err, apperror.ErrValidation)

	_, err = tf.svc.Tasks.BulkUpdate(ctx, tf.alice.ID, []TaskPosition{{ID: "missing", Status: model.StatusDone, Position: 1000}})
	assert.ErrorIs(t, err, apperror.ErrNotFound)

	_, err = tf.svc.Tasks.BulkUpdate(ctx, tf.alice.ID, []TaskPosition{{ID: a.ID, Status: model.StatusDone, Position: 10}})
	assert.ErrorIs(t, err, apperror.ErrValidation)
}
