package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"water-delivery/internal/apperr"
	"water-delivery/internal/database"
	"water-delivery/internal/models"
)

// PostgresStore implements Store on PostgreSQL
type PostgresStore struct {
	db *database.DB
}

func NewPostgresStore(db *database.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func scanUser(row pgx.Row) (models.User, error) {
	var u models.User
	err := row.Scan(&u.ID, &u.Username, &u.PasswordHash, &u.Role, &u.Active, &u.CreatedAt)
	return u, err
}

func (s *PostgresStore) CreateUser(ctx context.Context, username, passwordHash string, role models.Role) (models.User, error) {
	user, err := scanUser(s.db.QueryRow(ctx, database.InsertUserSQL, username, passwordHash, role))
	if err != nil {
		err = database.Classify(err)
		if errors.Is(err, apperr.ErrConflict) {
			return models.User{}, apperr.Conflict(fmt.Sprintf("username %q already exists", username))
		}
		return models.User{}, fmt.Errorf("failed to insert user: %w", err)
	}
	return user, nil
}

func (s *PostgresStore) GetUserByUsername(ctx context.Context, username string) (models.User, error) {
	user, err := scanUser(s.db.QueryRow(ctx, database.GetUserByUsernameSQL, username))
	if errors.Is(err, pgx.ErrNoRows) {
		return models.User{}, apperr.NotFound("user", username)
	}
	if err != nil {
		return models.User{}, fmt.Errorf("failed to get user: %w", database.Classify(err))
	}
	return user, nil
}

func (s *PostgresStore) GetUser(ctx context.Context, id int64) (models.User, error) {
	user, err := scanUser(s.db.QueryRow(ctx, database.GetUserByIDSQL, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return models.User{}, apperr.NotFound("user", id)
	}
	if err != nil {
		return models.User{}, fmt.Errorf("failed to get user: %w", database.Classify(err))
	}
	return user, nil
}

func (s *PostgresStore) ListUsers(ctx context.Context) ([]models.User, error) {
	rows, err := s.db.Query(ctx, database.ListUsersSQL)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", database.Classify(err))
	}
	defer rows.Close()

	users := []models.User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list users: %w", database.Classify(err))
	}
	return users, nil
}

func (s *PostgresStore) UpdateUser(ctx context.Context, id int64, role *models.Role, active *bool) (models.User, error) {
	user, err := scanUser(s.db.QueryRow(ctx, database.UpdateUserSQL, role, active, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return models.User{}, apperr.NotFound("user", id)
	}
	if err != nil {
		return models.User{}, fmt.Errorf("failed to update user: %w", database.Classify(err))
	}
	return user, nil
}

func (s *PostgresStore) CreateSession(ctx context.Context, session models.Session) (models.Session, error) {
	err := s.db.QueryRow(ctx, database.InsertSessionSQL, session.Token, session.UserID, session.ExpiresAt).
		Scan(&session.CreatedAt)
	if err != nil {
		return models.Session{}, fmt.Errorf("failed to insert session: %w", database.Classify(err))
	}
	return session, nil
}

func (s *PostgresStore) GetSession(ctx context.Context, token string) (models.Session, error) {
	var session models.Session
	err := s.db.QueryRow(ctx, database.GetSessionSQL, token).
		Scan(&session.Token, &session.UserID, &session.CreatedAt, &session.ExpiresAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.Session{}, apperr.NotFound("session", "token")
	}
	if err != nil {
		return models.Session{}, fmt.Errorf("failed to get session: %w", database.Classify(err))
	}
	return session, nil
}

func (s *PostgresStore) DeleteSession(ctx context.Context, token string) error {
	if err := s.db.Exec(ctx, database.DeleteSessionSQL, token); err != nil {
		return fmt.Errorf("failed to delete session: %w", database.Classify(err))
	}
	return nil
}

func (s *PostgresStore) DeleteUserSessions(ctx context.Context, userID int64) error {
	if err := s.db.Exec(ctx, database.DeleteUserSessionsSQL, userID); err != nil {
		return fmt.Errorf("failed to delete sessions: %w", database.Classify(err))
	}
	return nil
}
