package service

import (
	"context"

	"workspace-service/internal/model"
	"workspace-service/internal/store"
)

// MembershipResolver looks up a caller's membership in a workspace
type MembershipResolver struct {
	members store.Collection[model.Member]
}

func NewMembershipResolver(members store.Collection[model.Member]) *MembershipResolver {
	return &MembershipResolver{members: members}
}

// ResolveMembership returns the user's membership in the workspace, or nil when there is
// none. Having no membership is not an error.
func (r *MembershipResolver) ResolveMembership(ctx context.Context, workspaceID, userID string) (*model.Member, error) {
	list, err := r.members.List(ctx, store.Query{
		Filters: []store.Filter{
			store.Equal("workspace_id", workspaceID),
			store.Equal("user_id", userID),
		},
		Limit: 1,
	})
	if err != nil {
		return nil, err
	}
	if len(list.Documents) == 0 {
		return nil, nil
	}
	return list.Documents[0], nil
}

// ListMembers reads the full membership list of a workspace, oldest first. It always
// hits the store.
func (r *MembershipResolver) ListMembers(ctx context.Context, workspaceID string) ([]*model.Member, error) {
	list, err := r.members.List(ctx, store.Query{
		Filters: []store.Filter{store.Equal("workspace_id", workspaceID)},
		OrderBy: "created_at",
	})
	if err != nil {
		return nil, err
	}
	return list.Documents, nil
}
