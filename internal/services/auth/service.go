// Package auth authenticates staff users and resolves the role attached to a
// session token. The role is read from the user record on every resolution so
// that administrative changes apply to the very next request.
package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"water-delivery/internal/apperr"
	"water-delivery/internal/logger"
	"water-delivery/internal/models"
)

const minPasswordLength = 6

// Store persists users and sessions
type Store interface {
	CreateUser(ctx context.Context, username, passwordHash string, role models.Role) (models.User, error)
	GetUserByUsername(ctx context.Context, username string) (models.User, error)
	GetUser(ctx context.Context, id int64) (models.User, error)
	ListUsers(ctx context.Context) ([]models.User, error)
	UpdateUser(ctx context.Context, id int64, role *models.Role, active *bool) (models.User, error)
	CreateSession(ctx context.Context, s models.Session) (models.Session, error)
	GetSession(ctx context.Context, token string) (models.Session, error)
	DeleteSession(ctx context.Context, token string) error
	DeleteUserSessions(ctx context.Context, userID int64) error
}

// Service handles login, session resolution and user administration
type Service struct {
	store      Store
	logger     *logger.Logger
	sessionTTL time.Duration
	bcryptCost int
	now        func() time.Time

	// compared against when the username is unknown so both paths cost a bcrypt run
	dummyHash []byte
}

// NewService creates a new auth service
func NewService(store Store, log *logger.Logger, sessionTTL time.Duration, bcryptCost int) *Service {
	if bcryptCost < bcrypt.MinCost {
		bcryptCost = bcrypt.DefaultCost
	}
	dummy, _ := bcrypt.GenerateFromPassword([]byte("not-a-password"), bcryptCost)

	return &Service{
		store:      store,
		logger:     log,
		sessionTTL: sessionTTL,
		bcryptCost: bcryptCost,
		now:        time.Now,
		dummyHash:  dummy,
	}
}

// Login verifies credentials and opens a session
func (s *Service) Login(ctx context.Context, username, password string) (models.Session, models.User, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return models.Session{}, models.User{}, apperr.Authentication("invalid credentials")
	}

	user, err := s.store.GetUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			_ = bcrypt.CompareHashAndPassword(s.dummyHash, []byte(password))
			return models.Session{}, models.User{}, apperr.Authentication("invalid credentials")
		}
		return models.Session{}, models.User{}, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return models.Session{}, models.User{}, apperr.Authentication("invalid credentials")
	}
	if !user.Active {
		return models.Session{}, models.User{}, apperr.Authentication("user is inactive")
	}

	now := s.now().UTC()
	session, err := s.store.CreateSession(ctx, models.Session{
		Token:     uuid.NewString(),
		UserID:    user.ID,
		CreatedAt: now,
		ExpiresAt: now.Add(s.sessionTTL),
	})
	if err != nil {
		return models.Session{}, models.User{}, fmt.Errorf("failed to create session: %w", err)
	}

	s.logger.Info("user_logged_in", "User logged in", logger.RequestID(ctx), map[string]any{
		"user_id":  user.ID,
		"username": user.Username,
		"role":     user.Role,
	})

	return session, user, nil
}

// Resolve maps a session token to the current identity and role of its user
func (s *Service) Resolve(ctx context.Context, token string) (models.Principal, error) {
	if _, err := uuid.Parse(token); err != nil {
		return models.Principal{}, apperr.Authentication("invalid session token")
	}

	session, err := s.store.GetSession(ctx, token)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return models.Principal{}, apperr.Authentication("invalid session token")
		}
		return models.Principal{}, err
	}
	if session.Expired(s.now()) {
		return models.Principal{}, apperr.Authentication("session expired")
	}

	user, err := s.store.GetUser(ctx, session.UserID)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return models.Principal{}, apperr.Authentication("user no longer exists")
		}
		return models.Principal{}, err
	}
	if !user.Active {
		return models.Principal{}, apperr.Authentication("user is inactive")
	}

	return models.Principal{UserID: user.ID, Username: user.Username, Role: user.Role}, nil
}

// Logout removes the session. Unknown tokens are ignored.
func (s *Service) Logout(ctx context.Context, token string) error {
	if _, err := uuid.Parse(token); err != nil {
		return nil
	}
	return s.store.DeleteSession(ctx, token)
}

// CreateUser registers a staff account with a hashed password
func (s *Service) CreateUser(ctx context.Context, username, password string, role models.Role) (models.User, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return models.User{}, apperr.Validation("username", "username is required")
	}
	if len(username) > 50 {
		return models.User{}, apperr.Validation("username", "username must be 50 characters or less")
	}
	if len(password) < minPasswordLength {
		return models.User{}, apperr.Validation("password", fmt.Sprintf("password must be at least %d characters", minPasswordLength))
	}
	if _, err := models.ParseRole(string(role)); err != nil {
		return models.User{}, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return models.User{}, fmt.Errorf("failed to hash password: %w", err)
	}

	user, err := s.store.CreateUser(ctx, username, string(hash), role)
	if err != nil {
		return models.User{}, err
	}

	s.logger.Info("user_created", "User created", logger.RequestID(ctx), map[string]any{
		"user_id":  user.ID,
		"username": user.Username,
		"role":     user.Role,
	})
	return user, nil
}

func (s *Service) ListUsers(ctx context.Context) ([]models.User, error) {
	return s.store.ListUsers(ctx)
}

// GetUser returns a user by id
func (s *Service) GetUser(ctx context.Context, id int64) (models.User, error) {
	return s.store.GetUser(ctx, id)
}

// UserPatch holds optional administrative changes to a user
type UserPatch struct {
	Role   *models.Role
	Active *bool
}

// UpdateUser changes role or active flag. Deactivating a user also ends all of
// their sessions.
func (s *Service) UpdateUser(ctx context.Context, id int64, patch UserPatch) (models.User, error) {
	if patch.Role != nil {
		if _, err := models.ParseRole(string(*patch.Role)); err != nil {
			return models.User{}, err
		}
	}

	user, err := s.store.UpdateUser(ctx, id, patch.Role, patch.Active)
	if err != nil {
		return models.User{}, err
	}

	if !user.Active {
		if err := s.store.DeleteUserSessions(ctx, user.ID); err != nil {
			return models.User{}, fmt.Errorf("failed to end sessions: %w", err)
		}
	}

	s.logger.Info("user_updated", "User updated", logger.RequestID(ctx), map[string]any{
		"user_id": user.ID,
		"role":    user.Role,
		"active":  user.Active,
	})
	return user, nil
}

// EnsureAdmin creates the bootstrap administrator when no user with that name
// exists yet. It reports whether a user was created.
func (s *Service) EnsureAdmin(ctx context.Context, username, password string) (bool, error) {
	if username == "" || password == "" {
		return false, nil
	}

	_, err := s.store.GetUserByUsername(ctx, username)
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, apperr.ErrNotFound) {
		return false, err
	}

	if _, err := s.CreateUser(ctx, username, password, models.RoleAdmin); err != nil {
		if errors.Is(err, apperr.ErrConflict) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}
