package service

import (
	"context"
	"crypto/rand"
	"errors"
	"io"

	"workspace-service/internal/apperror"
	"workspace-service/internal/model"
	"workspace-service/internal/store"
	"workspace-service/internal/telemetry"
	"workspace-service/pkg/logger"
	"workspace-service/prometheus"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

const (
	inviteCodeLength   = 12
	inviteCodeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"
)

type CreateWorkspaceInput struct {
	Name     string
	ImageURL string
}

// UpdateWorkspaceInput leaves nil fields unchanged
type UpdateWorkspaceInput struct {
	Name     *string
	ImageURL *string
}

type WorkspaceService struct {
	backend Backend
	stores  store.Stores
	gate    *Gate
	engine  *AnalyticsEngine
	clock   Clock
}

// GenerateInviteCode returns a random alphanumeric invite code
func GenerateInviteCode() (string, error) {
	return generateInviteCode(rand.Reader)
}

// generateInviteCode draws uniformly from the alphabet. Bytes at or above the largest
// multiple of the alphabet size are rejected, so no character is favoured.
func generateInviteCode(r io.Reader) (string, error) {
	limit := 256 - 256%len(inviteCodeAlphabet)
	code := make([]byte, 0, inviteCodeLength)
	for len(code) < inviteCodeLength {
		buf := make([]byte, inviteCodeLength-len(code))
		if _, err := io.ReadFull(r, buf); err != nil {
			return "", err
		}
		for _, b := range buf {
			if int(b) >= limit {
				continue
			}
			code = append(code, inviteCodeAlphabet[int(b)%len(inviteCodeAlphabet)])
		}
	}
	return string(code), nil
}

// List returns the workspaces the user is a member of, newest first
func (s *WorkspaceService) List(ctx context.Context, userID string) ([]*model.Workspace, error) {
	memberships, err := s.stores.Members.List(ctx, store.Query{
		Filters: []store.Filter{store.Equal("user_id", userID)},
	})
	if err != nil {
		return nil, storeError("memberships not found", err)
	}
	if len(memberships.Documents) == 0 {
		return []*model.Workspace{}, nil
	}

	ids := make([]string, 0, len(memberships.Documents))
	for _, m := range memberships.Documents {
		ids = append(ids, m.WorkspaceID)
	}

	workspaces, err := s.stores.Workspaces.List(ctx, store.Query{
		Filters: []store.Filter{store.In("id", ids)},
		OrderBy: "created_at",
		Desc:    true,
	})
	if err != nil {
		return nil, storeError("workspaces not found", err)
	}
	return workspaces.Documents, nil
}

func (s *WorkspaceService) Get(ctx context.Context, userID, workspaceID string) (*model.Workspace, error) {
	if _, err := s.gate.RequireMember(ctx, workspaceID, userID); err != nil {
		return nil, err
	}
	ws, err := s.stores.Workspaces.Get(ctx, workspaceID)
	if err != nil {
		return nil, storeError("workspace not found", err)
	}
	return ws, nil
}

// Info returns the public subset of a workspace
func (s *WorkspaceService) Info(ctx context.Context, userID, workspaceID string) (*model.WorkspaceInfo, error) {
	ws, err := s.Get(ctx, userID, workspaceID)
	if err != nil {
		return nil, err
	}
	return &model.WorkspaceInfo{ID: ws.ID, Name: ws.Name, ImageURL: ws.ImageURL}, nil
}

// Create stores the workspace together with its creator as ADMIN member. On a
// non-transactional backend a member failure after the workspace write is reported as
// an inconsistent state and is not retried.
func (s *WorkspaceService) Create(ctx context.Context, userID string, in CreateWorkspaceInput) (*model.Workspace, error) {
	log := logger.FromCtx(ctx)
	name := trimmed(in.Name)
	if name == "" {
		return nil, apperror.Validation("name is required")
	}

	ctx, span := telemetry.Tracer().Start(ctx, "workspace.create")
	defer span.End()

	code, err := GenerateInviteCode()
	if err != nil {
		return nil, apperror.Internal("failed to generate invite code", err)
	}

	ts := now(s.clock)
	ws := &model.Workspace{
		ID:         newID(),
		Name:       name,
		UserID:     userID,
		ImageURL:   in.ImageURL,
		InviteCode: code,
		CreatedAt:  ts,
		UpdatedAt:  ts,
	}
	admin := &model.Member{
		ID:          model.MemberID(ws.ID, userID),
		WorkspaceID: ws.ID,
		UserID:      userID,
		Role:        model.RoleAdmin,
		CreatedAt:   ts,
		UpdatedAt:   ts,
	}
	span.SetAttributes(attribute.String("workspace.id", ws.ID))

	workspaceWritten := false
	err = s.backend.WithTx(ctx, func(tx store.Stores) error {
		if err := tx.Workspaces.Create(ctx, ws); err != nil {
			return err
		}
		workspaceWritten = true
		return tx.Members.Create(ctx, admin)
	})
	if err != nil {
		if workspaceWritten && !s.backend.Atomic() {
			prometheus.RecordInconsistentState()
			log.Error("Workspace created without admin member",
				zap.String("workspace_id", ws.ID),
				zap.String("user_id", userID),
				zap.Error(err))
			return nil, apperror.New(apperror.CodeInconsistentState, "workspace created without admin member", err)
		}
		return nil, storeError("workspace not found", err)
	}

	prometheus.RecordOperation("workspace", "create")
	log.Info("Workspace created", zap.String("workspace_id", ws.ID), zap.String("user_id", userID))
	return ws, nil
}

func (s *WorkspaceService) Update(ctx context.Context, userID, workspaceID string, in UpdateWorkspaceInput) (*model.Workspace, error) {
	if in.Name != nil && trimmed(*in.Name) == "" {
		return nil, apperror.Validation("name cannot be empty")
	}
	if _, err := s.gate.RequireAdmin(ctx, workspaceID, userID); err != nil {
		return nil, err
	}

	ws, err := s.stores.Workspaces.Get(ctx, workspaceID)
	if err != nil {
		return nil, storeError("workspace not found", err)
	}
	if in.Name != nil {
		ws.Name = trimmed(*in.Name)
	}
	if in.ImageURL != nil {
		ws.ImageURL = *in.ImageURL
	}
	ws.UpdatedAt = now(s.clock)

	if err := s.stores.Workspaces.Update(ctx, ws); err != nil {
		return nil, storeError("workspace not found", err)
	}
	prometheus.RecordOperation("workspace", "update")
	return ws, nil
}

// Delete removes the workspace and everything scoped to it. The workspace document goes
// first, so a failed sweep never leaves a live workspace without members.
func (s *WorkspaceService) Delete(ctx context.Context, userID, workspaceID string) error {
	if _, err := s.gate.RequireAdmin(ctx, workspaceID, userID); err != nil {
		return err
	}

	workspaceDeleted := false
	err := s.backend.WithTx(ctx, func(tx store.Stores) error {
		// A missing document with members still present is an interrupted delete; finish the sweep
		if err := tx.Workspaces.Delete(ctx, workspaceID); err != nil && !errors.Is(err, store.ErrNotFound) {
			return err
		}
		workspaceDeleted = true

		// Memberships next, so the leftover projects and tasks lose their readers
		scope := store.Equal("workspace_id", workspaceID)
		if _, err := tx.Members.DeleteWhere(ctx, scope); err != nil {
			return err
		}
		if _, err := tx.Tasks.DeleteWhere(ctx, scope); err != nil {
			return err
		}
		_, err := tx.Projects.DeleteWhere(ctx, scope)
		return err
	})
	if err != nil {
		if workspaceDeleted && !s.backend.Atomic() {
			prometheus.RecordInconsistentState()
			logger.FromCtx(ctx).Error("Workspace deleted without its contents",
				zap.String("workspace_id", workspaceID),
				zap.String("user_id", userID),
				zap.Error(err))
			return apperror.New(apperror.CodeInconsistentState, "workspace deleted but its contents were not fully removed", err)
		}
		return storeError("workspace not found", err)
	}

	prometheus.RecordOperation("workspace", "delete")
	logger.FromCtx(ctx).Info("Workspace deleted", zap.String("workspace_id", workspaceID))
	return nil
}

// ResetInviteCode rotates the code; the previous one stops working immediately
func (s *WorkspaceService) ResetInviteCode(ctx context.Context, userID, workspaceID string) (*model.Workspace, error) {
	if _, err := s.gate.RequireAdmin(ctx, workspaceID, userID); err != nil {
		return nil, err
	}

	ws, err := s.stores.Workspaces.Get(ctx, workspaceID)
	if err != nil {
		return nil, storeError("workspace not found", err)
	}
	code, err := GenerateInviteCode()
	if err != nil {
		return nil, apperror.Internal("failed to generate invite code", err)
	}
	ws.InviteCode = code
	ws.UpdatedAt = now(s.clock)

	if err := s.stores.Workspaces.Update(ctx, ws); err != nil {
		return nil, storeError("workspace not found", err)
	}
	prometheus.RecordOperation("workspace", "reset_invite_code")
	return ws, nil
}

// Join enrolls the user as a MEMBER. The member id is derived from (workspace, user), so
// a concurrent second join fails on insert and is reported as AlreadyMember.
func (s *WorkspaceService) Join(ctx context.Context, userID, workspaceID, inviteCode string) (*model.Workspace, error) {
	if trimmed(inviteCode) == "" {
		return nil, apperror.Validation("code is required")
	}

	ws, err := s.stores.Workspaces.Get(ctx, workspaceID)
	if err != nil {
		return nil, storeError("workspace not found", err)
	}
	if err := s.gate.AuthorizeJoin(ctx, ws, userID, inviteCode); err != nil {
		return nil, err
	}

	ts := now(s.clock)
	member := &model.Member{
		ID:          model.MemberID(ws.ID, userID),
		WorkspaceID: ws.ID,
		UserID:      userID,
		Role:        model.RoleMember,
		CreatedAt:   ts,
		UpdatedAt:   ts,
	}
	if err := s.stores.Members.Create(ctx, member); err != nil {
		if errors.Is(err, store.ErrConflict) {
			prometheus.RecordAuthzDenial("already_member")
			return nil, apperror.New(apperror.CodeAlreadyMember, "already a member", err)
		}
		return nil, storeError("workspace not found", err)
	}

	prometheus.RecordOperation("member", "join")
	logger.FromCtx(ctx).Info("User joined workspace",
		zap.String("workspace_id", ws.ID),
		zap.String("user_id", userID))
	return ws, nil
}

// Analytics computes the workspace dashboard for the caller
func (s *WorkspaceService) Analytics(ctx context.Context, userID, workspaceID string) (model.Analytics, error) {
	member, err := s.gate.RequireMember(ctx, workspaceID, userID)
	if err != nil {
		return model.Analytics{}, err
	}
	snapshot, err := s.engine.Compute(ctx, WorkspaceScope(workspaceID), member.ID)
	if err != nil {
		return model.Analytics{}, err
	}
	return snapshot.Analytics(), nil
}
