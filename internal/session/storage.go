package session

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
)

const (
	keyQuoteData      = "quoteData"
	keyWizardPosition = "wizardPosition"
)

var ErrNotFound = errors.New("session value not found")

// Storage is a per-session key/value store. Load returns ErrNotFound for a
// key that was never saved.
type Storage interface {
	Load(ctx context.Context, key string) ([]byte, error)
	Save(ctx context.Context, key string, value []byte) error
}

// MemoryStorage keeps values in process memory.
type MemoryStorage struct {
	mu     sync.Mutex
	values map[string][]byte
}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{values: map[string][]byte{}}
}

func (m *MemoryStorage) Load(_ context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	v, ok := m.values[key]
	if !ok {
		return nil, ErrNotFound
	}
	return append([]byte(nil), v...), nil
}

func (m *MemoryStorage) Save(_ context.Context, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.values[key] = append([]byte(nil), value...)
	return nil
}

// SQLStorage keeps the values of one session in the session_state table.
type SQLStorage struct {
	db        *sql.DB
	sessionID string
}

func NewSQLStorage(db *sql.DB, sessionID string) *SQLStorage {
	return &SQLStorage{db: db, sessionID: sessionID}
}

func (s *SQLStorage) Load(ctx context.Context, key string) ([]byte, error) {
	var value []byte
	err := s.db.QueryRowContext(ctx, `
		SELECT value
		FROM session_state
		WHERE session_id = ? AND state_key = ?
	`, s.sessionID, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query session_state %s: %w", key, err)
	}
	return value, nil
}

func (s *SQLStorage) Save(ctx context.Context, key string, value []byte) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO session_state (session_id, state_key, value, updated_at)
		VALUES (?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(session_id, state_key) DO UPDATE SET
			value = excluded.value,
			updated_at = CURRENT_TIMESTAMP
	`, s.sessionID, key, value)
	if err != nil {
		return fmt.Errorf("upsert session_state %s: %w", key, err)
	}
	return nil
}
