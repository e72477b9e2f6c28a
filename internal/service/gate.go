package service

import (
	"context"
	"crypto/subtle"

	"workspace-service/internal/apperror"
	"workspace-service/internal/model"
	"workspace-service/prometheus"
)

// Gate enforces the workspace authorization rules. Every check resolves membership
// from the store; nothing is cached between calls.
type Gate struct {
	resolver *MembershipResolver
}

func NewGate(resolver *MembershipResolver) *Gate {
	return &Gate{resolver: resolver}
}

func deny(rule, msg string) error {
	prometheus.RecordAuthzDenial(rule)
	return apperror.Unauthorized(msg)
}

// RequireMember returns the caller's membership or Unauthorized
func (g *Gate) RequireMember(ctx context.Context, workspaceID, userID string) (*model.Member, error) {
	member, err := g.resolver.ResolveMembership(ctx, workspaceID, userID)
	if err != nil {
		return nil, storeError("membership not found", err)
	}
	if member == nil {
		return nil, deny("membership", "unauthorized")
	}
	return member, nil
}

// RequireAdmin is RequireMember plus the ADMIN role. Used for workspace update, delete
// and invite code rotation.
func (g *Gate) RequireAdmin(ctx context.Context, workspaceID, userID string) (*model.Member, error) {
	member, err := g.RequireMember(ctx, workspaceID, userID)
	if err != nil {
		return nil, err
	}
	if member.Role != model.RoleAdmin {
		return nil, deny("admin_role", "unauthorized")
	}
	return member, nil
}

// AuthorizeRemoval allows an ADMIN to remove anyone and any member to remove
// themself, but never the last member of the workspace. The cardinality check reads
// the full membership list.
func (g *Gate) AuthorizeRemoval(ctx context.Context, userID string, target *model.Member) error {
	caller, err := g.RequireMember(ctx, target.WorkspaceID, userID)
	if err != nil {
		return err
	}

	members, err := g.resolver.ListMembers(ctx, target.WorkspaceID)
	if err != nil {
		return storeError("workspace not found", err)
	}
	if len(members) <= 1 {
		prometheus.RecordAuthzDenial("last_member_removal")
		return apperror.InvalidOperation("cannot remove only member")
	}

	if caller.ID != target.ID && caller.Role != model.RoleAdmin {
		return deny("member_removal", "unauthorized")
	}
	return nil
}

// AuthorizeRoleUpdate allows only an ADMIN to change roles, and never when the
// workspace has a single member.
func (g *Gate) AuthorizeRoleUpdate(ctx context.Context, userID string, target *model.Member) error {
	caller, err := g.RequireMember(ctx, target.WorkspaceID, userID)
	if err != nil {
		return err
	}

	members, err := g.resolver.ListMembers(ctx, target.WorkspaceID)
	if err != nil {
		return storeError("workspace not found", err)
	}
	if len(members) <= 1 {
		prometheus.RecordAuthzDenial("last_member_demotion")
		return apperror.InvalidOperation("cannot downgrade only member")
	}

	if caller.Role != model.RoleAdmin {
		return deny("role_update", "unauthorized")
	}
	return nil
}

// AuthorizeJoin rejects existing members and codes that do not match the workspace's
// current invite code
func (g *Gate) AuthorizeJoin(ctx context.Context, workspace *model.Workspace, userID, inviteCode string) error {
	existing, err := g.resolver.ResolveMembership(ctx, workspace.ID, userID)
	if err != nil {
		return storeError("workspace not found", err)
	}
	if existing != nil {
		prometheus.RecordAuthzDenial("already_member")
		return apperror.New(apperror.CodeAlreadyMember, "already a member", nil)
	}

	if subtle.ConstantTimeCompare([]byte(workspace.InviteCode), []byte(inviteCode)) != 1 {
		prometheus.RecordAuthzDenial("invite_code")
		return apperror.New(apperror.CodeInvalidInviteCode, "invalid invite code", nil)
	}
	return nil
}
