package service

import (
	"context"
	"errors"
	"net/mail"
	"strings"

	"workspace-service/internal/apperror"
	"workspace-service/internal/model"
	"workspace-service/internal/session"
	"workspace-service/internal/store"
	"workspace-service/pkg/jwtutil"
	"workspace-service/pkg/logger"
	"workspace-service/prometheus"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const minPasswordLength = 8

type RegisterInput struct {
	Name     string
	Email    string
	Password string
}

// AuthResult is returned by register and login
type AuthResult struct {
	Token     string
	SessionID string
	User      *model.User
}

// Identity is the authenticated caller behind a token
type Identity struct {
	UserID    string
	SessionID string
}

type AuthService struct {
	users    store.Collection[model.User]
	sessions SessionStore
	clock    Clock
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*AuthResult, error) {
	prometheus.RegisterCounter.Inc()
	name := trimmed(in.Name)
	email := normalizeEmail(in.Email)
	password := trimmed(in.Password)

	switch {
	case name == "":
		return nil, apperror.Validation("name is required")
	case email == "":
		return nil, apperror.Validation("email is required")
	case password == "":
		return nil, apperror.Validation("password is required")
	case len(password) < minPasswordLength:
		return nil, apperror.Validation("password should be of at least 8 characters")
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, apperror.Validation("invalid email")
	}

	existing, err := s.users.Count(ctx, store.Equal("email", email))
	if err != nil {
		return nil, storeError("user not found", err)
	}
	if existing > 0 {
		prometheus.RecordAuthError("email_taken")
		return nil, apperror.Validation("email already registered")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, apperror.Internal("failed to hash password", err)
	}

	ts := now(s.clock)
	user := &model.User{
		ID:        newID(),
		Name:      name,
		Email:     email,
		Password:  string(hash),
		CreatedAt: ts,
		UpdatedAt: ts,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, store.ErrConflict) {
			return nil, apperror.Validation("email already registered")
		}
		return nil, storeError("user not found", err)
	}

	logger.FromCtx(ctx).Info("User registered", zap.String("user_id", user.ID))
	return s.startSession(ctx, user)
}

func (s *AuthService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	prometheus.LoginCounter.Inc()
	log := logger.FromCtx(ctx)
	email = normalizeEmail(email)
	if email == "" || trimmed(password) == "" {
		return nil, apperror.Validation("email and password are required")
	}

	list, err := s.users.List(ctx, store.Query{
		Filters: []store.Filter{store.Equal("email", email)},
		Limit:   1,
	})
	if err != nil {
		return nil, storeError("user not found", err)
	}
	if len(list.Documents) == 0 {
		log.Warn("Login for unknown email")
		prometheus.RecordAuthError("user_not_found")
		return nil, apperror.Unauthorized("invalid credentials")
	}
	user := list.Documents[0]

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(trimmed(password))); err != nil {
		log.Warn("Invalid password", zap.String("user_id", user.ID))
		prometheus.RecordAuthError("invalid_password")
		return nil, apperror.Unauthorized("invalid credentials")
	}

	log.Info("User logged in", zap.String("user_id", user.ID))
	return s.startSession(ctx, user)
}

func (s *AuthService) startSession(ctx context.Context, user *model.User) (*AuthResult, error) {
	sessionID, err := s.sessions.Create(ctx, user.ID)
	if err != nil {
		return nil, apperror.Internal("failed to create session", err)
	}
	token, err := jwtutil.GenerateToken(sessionID, user.ID)
	if err != nil {
		prometheus.RecordAuthError("token_generation_failed")
		return nil, apperror.Internal("token error", err)
	}
	return &AuthResult{Token: token, SessionID: sessionID, User: user}, nil
}

// Authenticate resolves a token to the caller. The session must still exist, so a
// logged-out token is rejected even before it expires.
func (s *AuthService) Authenticate(ctx context.Context, token string) (*Identity, error) {
	claims, err := jwtutil.ValidateToken(token)
	if err != nil {
		prometheus.RecordAuthError("invalid_token")
		return nil, apperror.Unauthorized("invalid or expired token")
	}

	userID, err := s.sessions.Resolve(ctx, claims.SessionID)
	if errors.Is(err, session.ErrNoSession) {
		prometheus.RecordAuthError("session_revoked")
		return nil, apperror.Unauthorized("session expired")
	}
	if err != nil {
		return nil, apperror.Internal("failed to resolve session", err)
	}
	if userID != claims.UserID {
		prometheus.RecordAuthError("session_mismatch")
		return nil, apperror.Unauthorized("invalid session")
	}
	return &Identity{UserID: userID, SessionID: claims.SessionID}, nil
}

func (s *AuthService) Logout(ctx context.Context, sessionID string) error {
	err := s.sessions.Revoke(ctx, sessionID)
	if errors.Is(err, session.ErrNoSession) {
		return apperror.Unauthorized("session expired")
	}
	if err != nil {
		return apperror.Internal("failed to revoke session", err)
	}
	return nil
}

func (s *AuthService) Current(ctx context.Context, userID string) (*model.User, error) {
	user, err := s.users.Get(ctx, userID)
	if err != nil {
		return nil, storeError("user not found", err)
	}
	return user, nil
}
