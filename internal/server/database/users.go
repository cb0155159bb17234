package database

import (
	"context"

	"github.com/jesseruder/electric-lullaby/internal/crypto"
	"github.com/jesseruder/electric-lullaby/internal/models"
)

// CreateUser inserts a new user. A duplicate username yields ErrUsernameTaken.
func (db *DB) CreateUser(ctx context.Context, username, passwordHash string) (*models.User, error) {
	user := &models.User{Username: username, PasswordHash: passwordHash}
	query := `
		INSERT INTO users (username, password_hash)
		VALUES ($1, $2)
		RETURNING id, created_at
	`
	err := db.Pool.QueryRow(ctx, query, username, passwordHash).Scan(&user.ID, &user.CreatedAt)
	if isUniqueViolation(err) {
		return nil, ErrUsernameTaken
	}
	if err != nil {
		return nil, err
	}
	return user, nil
}

// GetUserByUsername retrieves a user by their username
func (db *DB) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	user := &models.User{}
	query := `SELECT id, username, password_hash, created_at FROM users WHERE username = $1`
	err := db.Pool.QueryRow(ctx, query, username).Scan(
		&user.ID,
		&user.Username,
		&user.PasswordHash,
		&user.CreatedAt,
	)
	if err != nil {
		return nil, notFound(err)
	}
	return user, nil
}

// CreateSession records a session token for userID.
func (db *DB) CreateSession(ctx context.Context, token, userID string) error {
	query := `INSERT INTO sessions (token_hash, user_id) VALUES ($1, $2)`
	_, err := db.Pool.Exec(ctx, query, crypto.HashToken(token), userID)
	return err
}

// UserForToken resolves a session token to its user.
func (db *DB) UserForToken(ctx context.Context, token string) (*models.User, error) {
	user := &models.User{}
	query := `
		SELECT u.id, u.username, u.password_hash, u.created_at
		FROM sessions s
		JOIN users u ON u.id = s.user_id
		WHERE s.token_hash = $1
	`
	err := db.Pool.QueryRow(ctx, query, crypto.HashToken(token)).Scan(
		&user.ID,
		&user.Username,
		&user.PasswordHash,
		&user.CreatedAt,
	)
	if err != nil {
		return nil, notFound(err)
	}
	return user, nil
}

// Follow makes followerID a follower of followedID. Following twice is a no-op.
func (db *DB) Follow(ctx context.Context, followerID, followedID string) error {
	query := `
		INSERT INTO follows (follower_id, followed_id)
		VALUES ($1, $2)
		ON CONFLICT DO NOTHING
	`
	_, err := db.Pool.Exec(ctx, query, followerID, followedID)
	return err
}

// SetPushToken binds a device push token to userID, replacing any earlier owner.
func (db *DB) SetPushToken(ctx context.Context, pushToken, userID string) error {
	query := `
		INSERT INTO push_tokens (push_token, user_id)
		VALUES ($1, $2)
		ON CONFLICT (push_token) DO UPDATE SET user_id = EXCLUDED.user_id, updated_at = NOW()
	`
	_, err := db.Pool.Exec(ctx, query, pushToken, userID)
	return err
}

// UserForPushToken resolves a device push token to its owner.
func (db *DB) UserForPushToken(ctx context.Context, pushToken string) (*models.User, error) {
	user := &models.User{}
	query := `
		SELECT u.id, u.username, u.password_hash, u.created_at
		FROM push_tokens p
		JOIN users u ON u.id = p.user_id
		WHERE p.push_token = $1
	`
	err := db.Pool.QueryRow(ctx, query, pushToken).Scan(
		&user.ID,
		&user.Username,
		&user.PasswordHash,
		&user.CreatedAt,
	)
	if err != nil {
		return nil, notFound(err)
	}
	return user, nil
}
