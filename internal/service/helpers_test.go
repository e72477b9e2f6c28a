package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"workspace-service/internal/model"
	"workspace-service/internal/session"
	"workspace-service/internal/store"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2024, time.May, 15, 12, 0, 0, 0, time.UTC)

type fixture struct {
	svc     *Service
	backend *store.Memory
	stores  store.Stores
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	backend := store.NewMemory()
	clock := ClockFunc(func() time.Time { return fixedNow })
	return &fixture{
		svc:     New(backend, session.NewStore(client, time.Hour), clock),
		backend: backend,
		stores:  backend.Stores(),
	}
}

func (f *fixture) user(t *testing.T, name string) *model.User {
	t.Helper()
	u := &model.User{ID: "user-" + name, Name: name, Email: name + "@example.com", Password: "x"}
	require.NoError(t, f.stores.Users.Create(context.Background(), u))
	return u
}

func (f *fixture) workspace(t *testing.T, owner *model.User, name string) *model.Workspace {
	t.Helper()
	ws, err := f.svc.Workspaces.Create(context.Background(), owner.ID, CreateWorkspaceInput{Name: name})
	require.NoError(t, err)
	return ws
}

func (f *fixture) join(t *testing.T, ws *model.Workspace, u *model.User) *model.Member {
	t.Helper()
	ctx := context.Background()
	_, err := f.svc.Workspaces.Join(ctx, u.ID, ws.ID, ws.InviteCode)
	require.NoError(t, err)
	m, err := f.svc.Gate.resolver.ResolveMembership(ctx, ws.ID, u.ID)
	require.NoError(t, err)
	require.NotNil(t, m)
	return m
}

func (f *fixture) member(t *testing.T, ws *model.Workspace, u *model.User) *model.Member {
	t.Helper()
	m, err := f.svc.Gate.resolver.ResolveMembership(context.Background(), ws.ID, u.ID)
	require.NoError(t, err)
	require.NotNil(t, m)
	return m
}

// failingBackend wraps the memory backend and fails member inserts
type failingBackend struct {
	*store.Memory
}

type failingMembers struct {
	store.Collection[model.Member]
}

var errInsertFailed = errors.New("insert failed")

func (failingMembers) Create(context.Context, *model.Member) error {
	return errInsertFailed
}

func (b failingBackend) Stores() store.Stores {
	s := b.Memory.Stores()
	s.Members = failingMembers{s.Members}
	return s
}

func (b failingBackend) WithTx(ctx context.Context, fn func(s store.Stores) error) error {
	return fn(b.Stores())
}

// wrappedBackend swaps collections of the memory backend for failing ones
type wrappedBackend struct {
	*store.Memory
	wrap func(store.Stores) store.Stores
}

func (b wrappedBackend) Stores() store.Stores {
	return b.wrap(b.Memory.Stores())
}

func (b wrappedBackend) WithTx(ctx context.Context, fn func(s store.Stores) error) error {
	return fn(b.Stores())
}

var errDeleteFailed = errors.New("delete failed")

type failingWorkspaceDeletes struct {
	store.Collection[model.Workspace]
}

func (failingWorkspaceDeletes) Delete(context.Context, string) error {
	return errDeleteFailed
}

type failingMemberSweeps struct {
	store.Collection[model.Member]
}

func (failingMemberSweeps) DeleteWhere(context.Context, ...store.Filter) (int, error) {
	return 0, errDeleteFailed
}
