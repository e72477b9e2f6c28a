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

type MemberService struct {
	stores   store.Stores
	gate     *Gate
	resolver *MembershipResolver
	clock    Clock
}

// List returns the workspace members with their user name and email
func (s *MemberService) List(ctx context.Context, userID, workspaceID string) ([]*model.Member, error) {
	if trimmed(workspaceID) == "" {
		return nil, apperror.Validation("workspaceId is required")
	}
	if _, err := s.gate.RequireMember(ctx, workspaceID, userID); err != nil {
		return nil, err
	}

	members, err := s.resolver.ListMembers(ctx, workspaceID)
	if err != nil {
		return nil, storeError("members not found", err)
	}
	if err := populateMembers(ctx, s.stores.Users, members); err != nil {
		return nil, err
	}
	return members, nil
}

// Remove deletes a membership. Admins may remove anyone, members only themselves, and
// the last member stays.
func (s *MemberService) Remove(ctx context.Context, userID, memberID string) (*model.Member, error) {
	target, err := s.stores.Members.Get(ctx, memberID)
	if err != nil {
		return nil, storeError("member not found", err)
	}
	if err := s.gate.AuthorizeRemoval(ctx, userID, target); err != nil {
		return nil, err
	}

	if err := s.stores.Members.Delete(ctx, target.ID); err != nil {
		return nil, storeError("member not found", err)
	}

	prometheus.RecordOperation("member", "remove")
	logger.FromCtx(ctx).Info("Member removed",
		zap.String("workspace_id", target.WorkspaceID),
		zap.String("member_id", target.ID),
		zap.String("removed_by", userID))
	return target, nil
}

func (s *MemberService) UpdateRole(ctx context.Context, userID, memberID string, role model.Role) (*model.Member, error) {
	if !role.Valid() {
		return nil, apperror.Validation("role must be ADMIN or MEMBER")
	}

	target, err := s.stores.Members.Get(ctx, memberID)
	if err != nil {
		return nil, storeError("member not found", err)
	}
	if err := s.gate.AuthorizeRoleUpdate(ctx, userID, target); err != nil {
		return nil, err
	}

	target.Role = role
	target.UpdatedAt = now(s.clock)
	if err := s.stores.Members.Update(ctx, target); err != nil {
		return nil, storeError("member not found", err)
	}

	prometheus.RecordOperation("member", "update_role")
	return target, nil
}

// populateMembers fills Name and Email from the user records
func populateMembers(ctx context.Context, users store.Collection[model.User], members []*model.Member) error {
	if len(members) == 0 {
		return nil
	}
	ids := make([]string, 0, len(members))
	for _, m := range members {
		ids = append(ids, m.UserID)
	}

	list, err := users.List(ctx, store.Query{Filters: []store.Filter{store.In("id", ids)}})
	if err != nil {
		return storeError("users not found", err)
	}
	byID := make(map[string]*model.User, len(list.Documents))
	for _, u := range list.Documents {
		byID[u.ID] = u
	}
	for _, m := range members {
		if u, ok := byID[m.UserID]; ok {
			m.Name = u.Name
			m.Email = u.Email
			if m.Name == "" {
				m.Name = u.Email
			}
		}
	}
	return nil
}
