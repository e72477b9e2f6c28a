package service

import (
	"context"
	"time"

	"workspace-service/internal/apperror"
	"workspace-service/internal/model"
	"workspace-service/internal/store"
	"workspace-service/pkg/logger"
	"workspace-service/prometheus"

	"go.uber.org/zap"
)

const positionStep = 1000

// TaskFilter narrows a task list. WorkspaceID is required.
type TaskFilter struct {
	WorkspaceID string
	ProjectID   string
	AssigneeID  string
	Status      model.TaskStatus
	DueDate     *time.Time
	Search      string
}

type CreateTaskInput struct {
	Name        string
	Status      model.TaskStatus
	WorkspaceID string
	ProjectID   string
	AssigneeID  string
	DueDate     time.Time
	Description string
}

// UpdateTaskInput leaves nil fields unchanged
type UpdateTaskInput struct {
	Name        *string
	Status      *model.TaskStatus
	ProjectID   *string
	AssigneeID  *string
	DueDate     *time.Time
	Description *string
}

// TaskPosition moves one task on the board
type TaskPosition struct {
	ID       string
	Status   model.TaskStatus
	Position int
}

type TaskService struct {
	backend Backend
	stores  store.Stores
	gate    *Gate
	clock   Clock
}

func (s *TaskService) List(ctx context.Context, userID string, f TaskFilter) ([]*model.Task, error) {
	if trimmed(f.WorkspaceID) == "" {
		return nil, apperror.Validation("workspaceId is required")
	}
	if f.Status != "" && !f.Status.Valid() {
		return nil, apperror.Validation("invalid status")
	}
	if _, err := s.gate.RequireMember(ctx, f.WorkspaceID, userID); err != nil {
		return nil, err
	}

	filters := []store.Filter{store.Equal("workspace_id", f.WorkspaceID)}
	if f.ProjectID != "" {
		filters = append(filters, store.Equal("project_id", f.ProjectID))
	}
	if f.AssigneeID != "" {
		filters = append(filters, store.Equal("assignee_id", f.AssigneeID))
	}
	if f.Status != "" {
		filters = append(filters, store.Equal("status", f.Status))
	}
	if f.DueDate != nil {
		day := f.DueDate.UTC()
		start := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, time.UTC)
		filters = append(filters,
			store.GreaterOrEqual("due_date", start),
			store.LessThan("due_date", start.AddDate(0, 0, 1)),
		)
	}
	if search := trimmed(f.Search); search != "" {
		filters = append(filters, store.Contains("name", search))
	}

	list, err := s.stores.Tasks.List(ctx, store.Query{
		Filters: filters,
		OrderBy: "created_at",
		Desc:    true,
	})
	if err != nil {
		return nil, storeError("tasks not found", err)
	}
	if err := s.populate(ctx, list.Documents); err != nil {
		return nil, err
	}
	return list.Documents, nil
}

// load fetches a task and checks the caller is a member of its workspace
func (s *TaskService) load(ctx context.Context, userID, taskID string) (*model.Task, error) {
	task, err := s.stores.Tasks.Get(ctx, taskID)
	if err != nil {
		return nil, storeError("task not found", err)
	}
	if _, err := s.gate.RequireMember(ctx, task.WorkspaceID, userID); err != nil {
		return nil, err
	}
	return task, nil
}

func (s *TaskService) Get(ctx context.Context, userID, taskID string) (*model.Task, error) {
	task, err := s.load(ctx, userID, taskID)
	if err != nil {
		return nil, err
	}
	if err := s.populate(ctx, []*model.Task{task}); err != nil {
		return nil, err
	}
	return task, nil
}

func (s *TaskService) Create(ctx context.Context, userID string, in CreateTaskInput) (*model.Task, error) {
	name := trimmed(in.Name)
	switch {
	case name == "":
		return nil, apperror.Validation("name is required")
	case !in.Status.Valid():
		return nil, apperror.Validation("invalid status")
	case trimmed(in.WorkspaceID) == "":
		return nil, apperror.Validation("workspaceId is required")
	case trimmed(in.ProjectID) == "":
		return nil, apperror.Validation("projectId is required")
	case trimmed(in.AssigneeID) == "":
		return nil, apperror.Validation("assigneeId is required")
	case in.DueDate.IsZero():
		return nil, apperror.Validation("dueDate is required")
	}

	if _, err := s.gate.RequireMember(ctx, in.WorkspaceID, userID); err != nil {
		return nil, err
	}
	if err := s.checkReferences(ctx, in.WorkspaceID, in.ProjectID, in.AssigneeID); err != nil {
		return nil, err
	}

	position, err := s.nextPosition(ctx, in.WorkspaceID, in.Status)
	if err != nil {
		return nil, err
	}

	ts := now(s.clock)
	task := &model.Task{
		ID:          newID(),
		Name:        name,
		WorkspaceID: in.WorkspaceID,
		ProjectID:   in.ProjectID,
		AssigneeID:  in.AssigneeID,
		Status:      in.Status,
		DueDate:     in.DueDate.UTC(),
		Description: in.Description,
		Position:    position,
		CreatedAt:   ts,
		UpdatedAt:   ts,
	}
	if err := s.stores.Tasks.Create(ctx, task); err != nil {
		return nil, storeError("task not found", err)
	}

	prometheus.RecordOperation("task", "create")
	logger.FromCtx(ctx).Info("Task created",
		zap.String("workspace_id", task.WorkspaceID),
		zap.String("task_id", task.ID))
	return task, nil
}

func (s *TaskService) Update(ctx context.Context, userID, taskID string, in UpdateTaskInput) (*model.Task, error) {
	if in.Name != nil && trimmed(*in.Name) == "" {
		return nil, apperror.Validation("name cannot be empty")
	}
	if in.Status != nil && !in.Status.Valid() {
		return nil, apperror.Validation("invalid status")
	}

	task, err := s.load(ctx, userID, taskID)
	if err != nil {
		return nil, err
	}

	if in.Name != nil {
		task.Name = trimmed(*in.Name)
	}
	if in.Status != nil {
		task.Status = *in.Status
	}
	if in.ProjectID != nil {
		task.ProjectID = *in.ProjectID
	}
	if in.AssigneeID != nil {
		task.AssigneeID = *in.AssigneeID
	}
	if in.DueDate != nil {
		task.DueDate = in.DueDate.UTC()
	}
	if in.Description != nil {
		task.Description = *in.Description
	}
	if in.ProjectID != nil || in.AssigneeID != nil {
		if err := s.checkReferences(ctx, task.WorkspaceID, task.ProjectID, task.AssigneeID); err != nil {
			return nil, err
		}
	}
	task.UpdatedAt = now(s.clock)

	if err := s.stores.Tasks.Update(ctx, task); err != nil {
		return nil, storeError("task not found", err)
	}
	prometheus.RecordOperation("task", "update")
	return task, nil
}

func (s *TaskService) Delete(ctx context.Context, userID, taskID string) (*model.Task, error) {
	task, err := s.load(ctx, userID, taskID)
	if err != nil {
		return nil, err
	}
	if err := s.stores.Tasks.Delete(ctx, task.ID); err != nil {
		return nil, storeError("task not found", err)
	}
	prometheus.RecordOperation("task", "delete")
	return task, nil
}

// BulkUpdate applies board moves. Every task must belong to the same workspace and
// the caller must be a member of it.
func (s *TaskService) BulkUpdate(ctx context.Context, userID string, moves []TaskPosition) ([]*model.Task, error) {
	if len(moves) == 0 {
		return nil, apperror.Validation("tasks are required")
	}
	ids := make([]string, 0, len(moves))
	for _, m := range moves {
		if !m.Status.Valid() {
			return nil, apperror.Validation("invalid status")
		}
		if m.Position < positionStep || m.Position > 1_000_000 {
			return nil, apperror.Validation("position must be between 1000 and 1000000")
		}
		ids = append(ids, m.ID)
	}

	list, err := s.stores.Tasks.List(ctx, store.Query{Filters: []store.Filter{store.In("id", ids)}})
	if err != nil {
		return nil, storeError("tasks not found", err)
	}
	byID := make(map[string]*model.Task, len(list.Documents))
	workspaces := make(map[string]struct{})
	for _, t := range list.Documents {
		byID[t.ID] = t
		workspaces[t.WorkspaceID] = struct{}{}
	}
	for _, id := range ids {
		if _, ok := byID[id]; !ok {
			return nil, apperror.NotFound("task not found", nil)
		}
	}
	if len(workspaces) != 1 {
		return nil, apperror.Validation("all tasks must belong to the same workspace")
	}

	workspaceID := list.Documents[0].WorkspaceID
	if _, err := s.gate.RequireMember(ctx, workspaceID, userID); err != nil {
		return nil, err
	}

	ts := now(s.clock)
	updated := make([]*model.Task, 0, len(moves))
	err = s.backend.WithTx(ctx, func(tx store.Stores) error {
		for _, m := range moves {
			task := byID[m.ID]
			task.Status = m.Status
			task.Position = m.Position
			task.UpdatedAt = ts
			if err := tx.Tasks.Update(ctx, task); err != nil {
				return err
			}
			updated = append(updated, task)
		}
		return nil
	})
	if err != nil {
		return nil, storeError("task not found", err)
	}

	prometheus.RecordOperation("task", "bulk_update")
	logger.FromCtx(ctx).Info("Tasks bulk updated",
		zap.String("workspace_id", workspaceID),
		zap.Int("count", len(updated)))
	return updated, nil
}

// checkReferences verifies the project and assignee belong to the task's workspace
func (s *TaskService) checkReferences(ctx context.Context, workspaceID, projectID, assigneeID string) error {
	project, err := s.stores.Projects.Get(ctx, projectID)
	if err != nil {
		return storeError("project not found", err)
	}
	if project.WorkspaceID != workspaceID {
		return apperror.Validation("project does not belong to workspace")
	}

	assignee, err := s.stores.Members.Get(ctx, assigneeID)
	if err != nil {
		return storeError("assignee not found", err)
	}
	if assignee.WorkspaceID != workspaceID {
		return apperror.Validation("assignee is not a member of workspace")
	}
	return nil
}

// nextPosition places a new task at the bottom of its status column
func (s *TaskService) nextPosition(ctx context.Context, workspaceID string, status model.TaskStatus) (int, error) {
	list, err := s.stores.Tasks.List(ctx, store.Query{
		Filters: []store.Filter{
			store.Equal("workspace_id", workspaceID),
			store.Equal("status", status),
		},
		OrderBy: "position",
		Desc:    true,
		Limit:   1,
	})
	if err != nil {
		return 0, storeError("tasks not found", err)
	}
	if len(list.Documents) == 0 {
		return positionStep, nil
	}
	return list.Documents[0].Position + positionStep, nil
}

// populate attaches project and assignee details for responses
func (s *TaskService) populate(ctx context.Context, tasks []*model.Task) error {
	if len(tasks) == 0 {
		return nil
	}
	projectIDs := make([]string, 0, len(tasks))
	memberIDs := make([]string, 0, len(tasks))
	for _, t := range tasks {
		projectIDs = append(projectIDs, t.ProjectID)
		if t.AssigneeID != "" {
			memberIDs = append(memberIDs, t.AssigneeID)
		}
	}

	projects, err := s.stores.Projects.List(ctx, store.Query{Filters: []store.Filter{store.In("id", projectIDs)}})
	if err != nil {
		return storeError("projects not found", err)
	}
	members, err := s.stores.Members.List(ctx, store.Query{Filters: []store.Filter{store.In("id", memberIDs)}})
	if err != nil {
		return storeError("members not found", err)
	}
	if err := populateMembers(ctx, s.stores.Users, members.Documents); err != nil {
		return err
	}

	projectByID := make(map[string]*model.Project, len(projects.Documents))
	for _, p := range projects.Documents {
		projectByID[p.ID] = p
	}
	memberByID := make(map[string]*model.Member, len(members.Documents))
	for _, m := range members.Documents {
		memberByID[m.ID] = m
	}
	for _, t := range tasks {
		t.Project = projectByID[t.ProjectID]
		t.Assignee = memberByID[t.AssigneeID]
	}
	return nil
}
