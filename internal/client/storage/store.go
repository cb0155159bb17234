package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jesseruder/electric-lullaby/internal/models"

	_ "github.com/mattn/go-sqlite3"
)

const (
	KeyToken     = "token"
	KeyUsername  = "username"
	KeyPushToken = "pushToken"
)

// Store is the persistent key-value store for credentials.
type Store struct {
	conn *sql.DB
}

func Open(path string) (*Store, error) {
	conn, err := sql.Open("sqlite3", path+"?_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open credential store: %w", err)
	}
	conn.SetMaxOpenConns(1)

	s := &Store{conn: conn}
	if err := s.init(); err != nil {
		conn.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) init() error {
	_, err := s.conn.Exec(`CREATE TABLE IF NOT EXISTS kv (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	)`)
	if err != nil {
		return fmt.Errorf("failed to create kv table: %w", err)
	}
	return nil
}

func (s *Store) Close() error {
	return s.conn.Close()
}

// GetItem returns the value for key and whether it was present.
func (s *Store) GetItem(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := s.conn.QueryRowContext(ctx, `SELECT value FROM kv WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("get %s: %w", key, err)
	}
	return value, true, nil
}

func (s *Store) SetItem(ctx context.Context, key, value string) error {
	_, err := s.conn.ExecContext(ctx,
		`INSERT INTO kv (key, value) VALUES (?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value`, key, value)
	if err != nil {
		return fmt.Errorf("set %s: %w", key, err)
	}
	return nil
}

func (s *Store) RemoveItem(ctx context.Context, key string) error {
	if _, err := s.conn.ExecContext(ctx, `DELETE FROM kv WHERE key = ?`, key); err != nil {
		return fmt.Errorf("remove %s: %w", key, err)
	}
	return nil
}

// LoadSession returns the persisted session, or nil when no token is stored.
func (s *Store) LoadSession(ctx context.Context) (*models.Session, error) {
	token, ok, err := s.GetItem(ctx, KeyToken)
	if err != nil || !ok || token == "" {
		return nil, err
	}
	username, _, err := s.GetItem(ctx, KeyUsername)
	if err != nil {
		return nil, err
	}
	return &models.Session{Token: token, Username: username}, nil
}

func (s *Store) SaveSession(ctx context.Context, sess models.Session) error {
	if err := s.SetItem(ctx, KeyToken, sess.Token); err != nil {
		return err
	}
	return s.SetItem(ctx, KeyUsername, sess.Username)
}

func (s *Store) ClearSession(ctx context.Context) error {
	if err := s.RemoveItem(ctx, KeyToken); err != nil {
		return err
	}
	return s.RemoveItem(ctx, KeyUsername)
}
