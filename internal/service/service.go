package service

import (
	"context"
	"strings"
	"time"

	"workspace-service/internal/store"

	"github.com/google/uuid"
)

// SessionStore issues and revokes login sessions
type SessionStore interface {
	Create(ctx context.Context, userID string) (string, error)
	Resolve(ctx context.Context, id string) (string, error)
	Revoke(ctx context.Context, id string) error
}

// Backend is the part of the document store the services need
type Backend interface {
	store.TxRunner
	Stores() store.Stores
}

// Service wires the resource services to one backend
type Service struct {
	Auth       *AuthService
	Workspaces *WorkspaceService
	Members    *MemberService
	Projects   *ProjectService
	Tasks      *TaskService

	Gate      *Gate
	Analytics *AnalyticsEngine
}

func New(backend Backend, sessions SessionStore, clock Clock) *Service {
	if clock == nil {
		clock = SystemClock{}
	}
	stores := backend.Stores()
	resolver := NewMembershipResolver(stores.Members)
	gate := NewGate(resolver)
	engine := NewAnalyticsEngine(stores.Tasks, clock)

	return &Service{
		Auth:       &AuthService{users: stores.Users, sessions: sessions, clock: clock},
		Workspaces: &WorkspaceService{backend: backend, stores: stores, gate: gate, engine: engine, clock: clock},
		Members:    &MemberService{stores: stores, gate: gate, resolver: resolver, clock: clock},
		Projects:   &ProjectService{backend: backend, stores: stores, gate: gate, engine: engine, clock: clock},
		Tasks:      &TaskService{backend: backend, stores: stores, gate: gate, clock: clock},
		Gate:       gate,
		Analytics:  engine,
	}
}

func newID() string {
	return uuid.NewString()
}

func now(clock Clock) time.Time {
	return clock.Now().UTC()
}

func trimmed(s string) string {
	return strings.TrimSpace(s)
}
