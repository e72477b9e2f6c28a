package service

import (
	"context"
	"testing"

	"workspace-service/internal/apperror"
	"workspace-service/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveMembershipAbsentIsNotAnError(t *testing.T) {
	f := newFixture(t)
	alice := f.user(t, "alice")
	ws := f.workspace(t, alice, "W1")

	m, err := f.svc.Gate.resolver.ResolveMembership(context.Background(), ws.ID, "stranger")
	require.NoError(t, err)
	assert.Nil(t, m)

	m, err = f.svc.Gate.resolver.ResolveMembership(context.Background(), ws.ID, alice.ID)
	require.NoError(t, err)
	require.NotNil(t, m)
	assert.Equal(t, model.RoleAdmin, m.Role)
}

func TestWorkspaceAdminScenario(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.user(t, "alice")
	bob := f.user(t, "bob")
	ws := f.workspace(t, alice, "W1")
	bobMember := f.join(t, ws, bob)
	aliceMember := f.member(t, ws, alice)

	err := f.svc.Workspaces.Delete(ctx, bob.ID, ws.ID)
	assert.ErrorIs(t, err, apperror.ErrUnauthorized)

	_, err = f.svc.Members.Remove(ctx, alice.ID, bobMember.ID)
	require.NoError(t, err)

	members, err := f.svc.Members.List(ctx, alice.ID, ws.ID)
	require.NoError(t, err)
	require.Len(t, members, 1)
	assert.Equal(t, "alice", members[0].Name)

	_, err = f.svc.Members.Remove(ctx, alice.ID, aliceMember.ID)
	assert.ErrorIs(t, err, apperror.ErrInvalidOperation)
	assert.Contains(t, err.Error(), "cannot remove only member")
}

func TestSoleMemberCannotBeRemovedOrDemoted(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.user(t, "alice")
	ws := f.workspace(t, alice, "solo")
	only := f.member(t, ws, alice)

	_, err := f.svc.Members.Remove(ctx, alice.ID, only.ID)
	assert.ErrorIs(t, err, apperror.ErrInvalidOperation)

	_, err = f.svc.Members.UpdateRole(ctx, alice.ID, only.ID, model.RoleMember)
	assert.ErrorIs(t, err, apperror.ErrInvalidOperation)

	stillThere, err := f.stores.Members.Get(ctx, only.ID)
	require.NoError(t, err)
	assert.Equal(t, model.RoleAdmin, stillThere.Role)
}

func TestNonAdminCannotRemoveOthersOrChangeRoles(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.user(t, "alice")
	bob := f.user(t, "bob")
	carol := f.user(t, "carol")
	ws := f.workspace(t, alice, "W")
	f.join(t, ws, bob)
	carolMember := f.join(t, ws, carol)
	aliceMember := f.member(t, ws, alice)

	for _, target := range []*model.Member{aliceMember, carolMember} {
		_, err := f.svc.Members.Remove(ctx, bob.ID, target.ID)
		assert.ErrorIs(t, err, apperror.ErrUnauthorized)

		_, err = f.svc.Members.UpdateRole(ctx, bob.ID, target.ID, model.RoleAdmin)
		assert.ErrorIs(t, err, apperror.ErrUnauthorized)
	}
}

func TestMemberCanRemoveThemself(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.user(t, "alice")
	bob := f.user(t, "bob")
	ws := f.workspace(t, alice, "W")
	bobMember := f.join(t, ws, bob)

	_, err := f.svc.Members.Remove(ctx, bob.ID, bobMember.ID)
	require.NoError(t, err)

	_, err = f.svc.Workspaces.Get(ctx, bob.ID, ws.ID)
	assert.ErrorIs(t, err, apperror.ErrUnauthorized)
}

func TestAdminCanPromoteMember(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.user(t, "alice")
	bob := f.user(t, "bob")
	ws := f.workspace(t, alice, "W")
	bobMember := f.join(t, ws, bob)

	updated, err := f.svc.Members.UpdateRole(ctx, alice.ID, bobMember.ID, model.RoleAdmin)
	require.NoError(t, err)
	assert.Equal(t, model.RoleAdmin, updated.Role)

	_, err = f.svc.Members.UpdateRole(ctx, alice.ID, bobMember.ID, model.Role("OWNER"))
	assert.ErrorIs(t, err, apperror.ErrValidation)
}

func TestOutsiderCannotTouchWorkspace(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.user(t, "alice")
	mallory := f.user(t, "mallory")
	ws := f.workspace(t, alice, "W")
	aliceMember := f.member(t, ws, alice)

	_, err := f.svc.Workspaces.Get(ctx, mallory.ID, ws.ID)
	assert.ErrorIs(t, err, apperror.ErrUnauthorized)

	_, err = f.svc.Members.Remove(ctx, mallory.ID, aliceMember.ID)
	assert.ErrorIs(t, err, apperror.ErrUnauthorized)

	_, err = f.svc.Workspaces.Analytics(ctx, mallory.ID, ws.ID)
	assert.ErrorIs(t, err, apperror.ErrUnauthorized)
}

func TestMemberCannotAdministerWorkspace(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.user(t, "alice")
	bob := f.user(t, "bob")
	ws := f.workspace(t, alice, "W")
	f.join(t, ws, bob)

	name := "renamed"
	_, err := f.svc.Workspaces.Update(ctx, bob.ID, ws.ID, UpdateWorkspaceInput{Name: &name})
	assert.ErrorIs(t, err, apperror.ErrUnauthorized)

	_, err = f.svc.Workspaces.ResetInviteCode(ctx, bob.ID, ws.ID)
	assert.ErrorIs(t, err, apperror.ErrUnauthorized)

	// Reads only need membership
	_, err = f.svc.Workspaces.Get(ctx, bob.ID, ws.ID)
	assert.NoError(t, err)
}
