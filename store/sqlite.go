package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/parley-sim/parley/domain"
)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore creates a new SQLite store.
func NewSQLiteStore(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Enable foreign keys
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	store := &SQLiteStore{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

// migrate runs database migrations.
func (s *SQLiteStore) migrate() error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS sessions (
			session_id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			preset TEXT NOT NULL,
			status TEXT NOT NULL,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			started_at DATETIME,
			completed_at DATETIME
		)`,
		`CREATE TABLE IF NOT EXISTS messages (
			message_id TEXT PRIMARY KEY,
			session_id TEXT NOT NULL,
			role TEXT NOT NULL,
			content TEXT NOT NULL,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			metadata TEXT,
			FOREIGN KEY (session_id) REFERENCES sessions(session_id)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_messages_session ON messages(session_id, created_at)`,
		`CREATE TABLE IF NOT EXISTS analysis_results (
			session_id TEXT PRIMARY KEY,
			summary TEXT NOT NULL,
			metrics TEXT,
			model TEXT,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			FOREIGN KEY (session_id) REFERENCES sessions(session_id)
		)`,
	}

	for _, m := range migrations {
		if _, err := s.db.Exec(m); err != nil {
			return fmt.Errorf("migration failed: %w\n%s", err, m)
		}
	}

	return nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// CreateSession creates a new session.
func (s *SQLiteStore) CreateSession(ctx context.Context, session *domain.Session) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO sessions (session_id, name, preset, status, created_at) VALUES (?, ?, ?, ?, ?)`,
		session.SessionID, session.Name, session.Preset, session.Status, session.CreatedAt)
	return err
}

// GetSession retrieves a session by ID.
func (s *SQLiteStore) GetSession(ctx context.Context, sessionID string) (*domain.Session, error) {
	var session domain.Session
	var startedAt, completedAt sql.NullTime
	err := s.db.QueryRowContext(ctx,
		`SELECT session_id, name, preset, status, created_at, started_at, completed_at FROM sessions WHERE session_id = ?`,
		sessionID).Scan(&session.SessionID, &session.Name, &session.Preset, &session.Status, &session.CreatedAt, &startedAt, &completedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if startedAt.Valid {
		session.StartedAt = &startedAt.Time
	}
	if completedAt.Valid {
		session.CompletedAt = &completedAt.Time
	}
	return &session, nil
}

// UpdateSessionStatus updates the status of a session. startedAt and
// completedAt are written only when non-nil, so a pause/resume cycle leaves
// the original timestamps intact.
func (s *SQLiteStore) UpdateSessionStatus(ctx context.Context, sessionID string, status domain.SessionStatus, startedAt, completedAt *time.Time) error {
	query := `UPDATE sessions SET status = ?`
	args := []interface{}{status}
	if startedAt != nil {
		query += `, started_at = ?`
		args = append(args, *startedAt)
	}
	if completedAt != nil {
		query += `, completed_at = ?`
		args = append(args, *completedAt)
	}
	query += ` WHERE session_id = ?`
	args = append(args, sessionID)

	_, err := s.db.ExecContext(ctx, query, args...)
	return err
}

// CreateMessage creates a new message.
func (s *SQLiteStore) CreateMessage(ctx context.Context, message *domain.Message) error {
	var metadata sql.NullString
	if message.Metadata != nil {
		metadata = sql.NullString{String: string(message.Metadata), Valid: true}
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO messages (message_id, session_id, role, content, created_at, metadata) VALUES (?, ?, ?, ?, ?, ?)`,
		message.MessageID, message.SessionID, message.Role, message.Content, message.CreatedAt, metadata)
	return err
}

// GetMessages retrieves messages for a session in chronological order. A
// limit of 0 returns all messages.
func (s *SQLiteStore) GetMessages(ctx context.Context, sessionID string, limit int) ([]domain.Message, error) {
	query := `SELECT message_id, session_id, role, content, created_at, metadata FROM messages WHERE session_id = ? ORDER BY created_at ASC, message_id ASC`
	if limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", limit)
	}

	rows, err := s.db.QueryContext(ctx, query, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var messages []domain.Message
	for rows.Next() {
		var msg domain.Message
		var metadata sql.NullString
		if err := rows.Scan(&msg.MessageID, &msg.SessionID, &msg.Role, &msg.Content, &msg.CreatedAt, &metadata); err != nil {
			return nil, err
		}
		if metadata.Valid {
			msg.Metadata = []byte(metadata.String)
		}
		messages = append(messages, msg)
	}
	return messages, rows.Err()
}

// CreateAnalysisResult persists the analysis outcome for a session.
func (s *SQLiteStore) CreateAnalysisResult(ctx context.Context, result *domain.AnalysisResult) error {
	var metrics sql.NullString
	if result.Metrics != nil {
		metrics = sql.NullString{String: string(result.Metrics), Valid: true}
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO analysis_results (session_id, summary, metrics, model, created_at) VALUES (?, ?, ?, ?, ?)`,
		result.SessionID, result.Summary, metrics, result.Model, result.CreatedAt)
	return err
}

// GetAnalysisResult retrieves the analysis result for a session.
func (s *SQLiteStore) GetAnalysisResult(ctx context.Context, sessionID string) (*domain.AnalysisResult, error) {
	var result domain.AnalysisResult
	var metrics, model sql.NullString
	err := s.db.QueryRowContext(ctx,
		`SELECT session_id, summary, metrics, model, created_at FROM analysis_results WHERE session_id = ?`,
		sessionID).Scan(&result.SessionID, &result.Summary, &metrics, &model, &result.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if metrics.Valid {
		result.Metrics = []byte(metrics.String)
	}
	if model.Valid {
		result.Model = model.String
	}
	return &result, nil
}
