package auth

import (
	"context"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"water-delivery/internal/apperr"
	"water-delivery/internal/logger"
	"water-delivery/internal/models"
)

type memStore struct {
	mu       sync.Mutex
	nextID   int64
	users    map[int64]models.User
	sessions map[string]models.Session
}

func newMemStore() *memStore {
	return &memStore{users: map[int64]models.User{}, sessions: map[string]models.Session{}}
}

func (m *memStore) CreateUser(_ context.Context, username, hash string, role models.Role) (models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Username == username {
			return models.User{}, apperr.Conflict("username already exists")
		}
	}
	m.nextID++
	u := models.User{ID: m.nextID, Username: username, PasswordHash: hash, Role: role, Active: true, CreatedAt: time.Now()}
	m.users[u.ID] = u
	return u, nil
}

func (m *memStore) GetUserByUsername(_ context.Context, username string) (models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Username == username {
			return u, nil
		}
	}
	return models.User{}, apperr.NotFound("user", username)
}

func (m *memStore) GetUser(_ context.Context, id int64) (models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return models.User{}, apperr.NotFound("user", id)
	}
	return u, nil
}

func (m *memStore) ListUsers(context.Context) ([]models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	users := make([]models.User, 0, len(m.users))
	for _, u := range m.users {
		users = append(users, u)
	}
	return users, nil
}

func (m *memStore) UpdateUser(_ context.Context, id int64, role *models.Role, active *bool) (models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return models.User{}, apperr.NotFound("user", id)
	}
	if role != nil {
		u.Role = *role
	}
	if active != nil {
		u.Active = *active
	}
	m.users[id] = u
	return u, nil
}

func (m *memStore) CreateSession(_ context.Context, s models.Session) (models.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[s.Token] = s
	return s, nil
}

func (m *memStore) GetSession(_ context.Context, token string) (models.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[token]
	if !ok {
		return models.Session{}, apperr.NotFound("session", "token")
	}
	return s, nil
}

func (m *memStore) DeleteSession(_ context.Context, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, token)
	return nil
}

func (m *memStore) DeleteUserSessions(_ context.Context, userID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for token, s := range m.sessions {
		if s.UserID == userID {
			delete(m.sessions, token)
		}
	}
	return nil
}

func newTestService(t *testing.T) (*Service, *memStore) {
	t.Helper()
	store := newMemStore()
	log := logger.NewWithWriter("test", "error", io.Discard)
	return NewService(store, log, time.Hour, bcrypt.MinCost), store
}

func TestLoginAndResolve(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.CreateUser(ctx, "maria", "secret123", models.RoleOrderTaker)
	require.NoError(t, err)

	session, user, err := svc.Login(ctx, "maria", "secret123")
	require.NoError(t, err)
	assert.Equal(t, "maria", user.Username)
	assert.NotEmpty(t, session.Token)

	principal, err := svc.Resolve(ctx, session.Token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, principal.UserID)
	assert.Equal(t, models.RoleOrderTaker, principal.Role)
}

func TestLoginFailures(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.CreateUser(ctx, "joao", "secret123", models.RoleCourier)
	require.NoError(t, err)

	tests := []struct {
		name     string
		username string
		password string
	}{
		{"wrong password", "joao", "nope-nope"},
		{"unknown user", "pedro", "secret123"},
		{"empty credentials", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := svc.Login(ctx, tt.username, tt.password)
			assert.ErrorIs(t, err, apperr.ErrAuthentication)
		})
	}
}

func TestRoleChangeAppliesWithoutRelogin(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	user, err := svc.CreateUser(ctx, "ana", "secret123", models.RoleCourier)
	require.NoError(t, err)
	session, _, err := svc.Login(ctx, "ana", "secret123")
	require.NoError(t, err)

	role := models.RoleAdmin
	_, err = svc.UpdateUser(ctx, user.ID, UserPatch{Role: &role})
	require.NoError(t, err)

	principal, err := svc.Resolve(ctx, session.Token)
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, principal.Role)
}

func TestDeactivatedUserIsRejected(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()

	user, err := svc.CreateUser(ctx, "carla", "secret123", models.RoleOrderTaker)
	require.NoError(t, err)
	session, _, err := svc.Login(ctx, "carla", "secret123")
	require.NoError(t, err)

	inactive := false
	_, err = svc.UpdateUser(ctx, user.ID, UserPatch{Active: &inactive})
	require.NoError(t, err)

	_, err = svc.Resolve(ctx, session.Token)
	assert.ErrorIs(t, err, apperr.ErrAuthentication)
	assert.Empty(t, store.sessions)

	_, _, err = svc.Login(ctx, "carla", "secret123")
	assert.ErrorIs(t, err, apperr.ErrAuthentication)
}

func TestResolveRejectsBadTokens(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Resolve(ctx, "not-a-uuid")
	assert.ErrorIs(t, err, apperr.ErrAuthentication)

	_, err = svc.Resolve(ctx, "6f1c2a8e-7a51-4f0b-9d43-2f8a3c1b9e10")
	assert.ErrorIs(t, err, apperr.ErrAuthentication)
}

func TestExpiredSession(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.CreateUser(ctx, "bia", "secret123", models.RoleAdmin)
	require.NoError(t, err)
	session, _, err := svc.Login(ctx, "bia", "secret123")
	require.NoError(t, err)

	svc.now = func() time.Time { return time.Now().Add(2 * time.Hour) }

	_, err = svc.Resolve(ctx, session.Token)
	assert.ErrorIs(t, err, apperr.ErrAuthentication)
}

func TestLogout(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.CreateUser(ctx, "leo", "secret123", models.RoleAdmin)
	require.NoError(t, err)
	session, _, err := svc.Login(ctx, "leo", "secret123")
	require.NoError(t, err)

	require.NoError(t, svc.Logout(ctx, session.Token))
	_, err = svc.Resolve(ctx, session.Token)
	assert.ErrorIs(t, err, apperr.ErrAuthentication)
}

func TestCreateUserValidation(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.CreateUser(ctx, " ", "secret123", models.RoleAdmin)
	assert.ErrorIs(t, err, apperr.ErrValidation)

	_, err = svc.CreateUser(ctx, "rui", "123", models.RoleAdmin)
	assert.ErrorIs(t, err, apperr.ErrValidation)

	_, err = svc.CreateUser(ctx, "rui", "secret123", models.Role("CHEF"))
	assert.ErrorIs(t, err, apperr.ErrValidation)

	_, err = svc.CreateUser(ctx, "rui", "secret123", models.RoleAdmin)
	require.NoError(t, err)
	_, err = svc.CreateUser(ctx, "rui", "secret123", models.RoleAdmin)
	assert.ErrorIs(t, err, apperr.ErrConflict)
}

func TestEnsureAdmin(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	created, err := svc.EnsureAdmin(ctx, "admin", "admin123")
	require.NoError(t, err)
	assert.True(t, created)

	created, err = svc.EnsureAdmin(ctx, "admin", "admin123")
	require.NoError(t, err)
	assert.False(t, created)

	_, user, err := svc.Login(ctx, "admin", "admin123")
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, user.Role)
}
