package service

import (
	"context"

	"workspace-service/internal/apperror"
	"workspace-service/internal/model"
	"workspace-service/internal/store"
	"workspace-service/pkg/logger"
	"workspace-service/prometheus"

	"go.uber.org/zap"
)

type CreateProjectInput struct {
	WorkspaceID string
	Name        string
	ImageURL    string
}

// UpdateProjectInput leaves nil fields unchanged
type UpdateProjectInput struct {
	Name     *string
	ImageURL *string
}

type ProjectService struct {
	backend Backend
	stores  store.Stores
	gate    *Gate
	engine  *AnalyticsEngine
	clock   Clock
}

// List returns the workspace's projects, newest first
func (s *ProjectService) List(ctx context.Context, userID, workspaceID string) ([]*model.Project, error) {
	if trimmed(workspaceID) == "" {
		return nil, apperror.Validation("workspaceId is required")
	}
	if _, err := s.gate.RequireMember(ctx, workspaceID, userID); err != nil {
		return nil, err
	}

	list, err := s.stores.Projects.List(ctx, store.Query{
		Filters: []store.Filter{store.Equal("workspace_id", workspaceID)},
		OrderBy: "created_at",
		Desc:    true,
	})
	if err != nil {
		return nil, storeError("projects not found", err)
	}
	return list.Documents, nil
}

// load fetches a project and checks the caller is a member of its workspace
func (s *ProjectService) load(ctx context.Context, userID, projectID string) (*model.Project, *model.Member, error) {
	project, err := s.stores.Projects.Get(ctx, projectID)
	if err != nil {
		return nil, nil, storeError("project not found", err)
	}
	member, err := s.gate.RequireMember(ctx, project.WorkspaceID, userID)
	if err != nil {
		return nil, nil, err
	}
	return project, member, nil
}

func (s *ProjectService) Get(ctx context.Context, userID, projectID string) (*model.Project, error) {
	project, _, err := s.load(ctx, userID, projectID)
	return project, err
}

func (s *ProjectService) Create(ctx context.Context, userID string, in CreateProjectInput) (*model.Project, error) {
	name := trimmed(in.Name)
	if name == "" {
		return nil, apperror.Validation("name is required")
	}
	if trimmed(in.WorkspaceID) == "" {
		return nil, apperror.Validation("workspaceId is required")
	}
	if _, err := s.gate.RequireMember(ctx, in.WorkspaceID, userID); err != nil {
		return nil, err
	}

	ts := now(s.clock)
	project := &model.Project{
		ID:          newID(),
		WorkspaceID: in.WorkspaceID,
		Name:        name,
		ImageURL:    in.ImageURL,
		CreatedAt:   ts,
		UpdatedAt:   ts,
	}
	if err := s.stores.Projects.Create(ctx, project); err != nil {
		return nil, storeError("project not found", err)
	}

	prometheus.RecordOperation("project", "create")
	logger.FromCtx(ctx).Info("Project created",
		zap.String("workspace_id", project.WorkspaceID),
		zap.String("project_id", project.ID))
	return project, nil
}

func (s *ProjectService) Update(ctx context.Context, userID, projectID string, in UpdateProjectInput) (*model.Project, error) {
	if in.Name != nil && trimmed(*in.Name) == "" {
		return nil, apperror.Validation("name cannot be empty")
	}
	project, _, err := s.load(ctx, userID, projectID)
	if err != nil {
		return nil, err
	}

	if in.Name != nil {
		project.Name = trimmed(*in.Name)
	}
	if in.ImageURL != nil {
		project.ImageURL = *in.ImageURL
	}
	project.UpdatedAt = now(s.clock)

	if err := s.stores.Projects.Update(ctx, project); err != nil {
		return nil, storeError("project not found", err)
	}
	prometheus.RecordOperation("project", "update")
	return project, nil
}

// Delete removes the project and its tasks
func (s *ProjectService) Delete(ctx context.Context, userID, projectID string) (*model.Project, error) {
	project, _, err := s.load(ctx, userID, projectID)
	if err != nil {
		return nil, err
	}

	err = s.backend.WithTx(ctx, func(tx store.Stores) error {
		if _, err := tx.Tasks.DeleteWhere(ctx, store.Equal("project_id", project.ID)); err != nil {
			return err
		}
		return tx.Projects.Delete(ctx, project.ID)
	})
	if err != nil {
		return nil, storeError("project not found", err)
	}

	prometheus.RecordOperation("project", "delete")
	return project, nil
}

// Analytics computes the project dashboard for the caller
func (s *ProjectService) Analytics(ctx context.Context, userID, projectID string) (model.Analytics, error) {
	project, member, err := s.load(ctx, userID, projectID)
	if err != nil {
		return model.Analytics{}, err
	}
	snapshot, err := s.engine.Compute(ctx, ProjectScope(project.ID), member.ID)
	if err != nil {
		return model.Analytics{}, err
	}
	return snapshot.Analytics(), nil
}
