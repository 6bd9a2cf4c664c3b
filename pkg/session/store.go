// Package session persists per-conversation state: the turn counter, the
// accumulated user profile, and the rolling insight list. The pipeline itself
// is stateless; this store hands it the prior state at turn start and saves
// the updated copy afterwards.
package session

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
	"github.com/pkg/errors"

	"github.com/neuraltwin/assistant-engine/pkg/assistant/insight"
	"github.com/neuraltwin/assistant-engine/pkg/assistant/profile"
)

// Session is one conversation's persisted state.
type Session struct {
	ID        string            `json:"id"`
	TurnCount int               `json:"turnCount"`
	Profile   profile.Profile   `json:"profile"`
	Insights  []insight.Insight `json:"insights"`
	CreatedAt time.Time         `json:"createdAt"`
	UpdatedAt time.Time         `json:"updatedAt"`
}

type sessionRow struct {
	ID        string    `db:"id"`
	TurnCount int       `db:"turn_count"`
	Profile   []byte    `db:"profile"`
	Insights  []byte    `db:"insights"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

type Store struct {
	db *sqlx.DB
}

// NewStore opens the SQLite database at dbPath, enables WAL mode, and runs
// pending migrations.
func NewStore(dbPath string) (*Store, error) {
	db, err := sqlx.Connect("sqlite3", dbPath)
	if err != nil {
		return nil, errors.Wrap(err, "failed to connect to SQLite")
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL;"); err != nil {
		return nil, errors.Wrap(err, "failed to enable WAL mode")
	}
	if _, err := db.Exec("PRAGMA foreign_keys=ON;"); err != nil {
		return nil, errors.Wrap(err, "failed to enable foreign keys")
	}

	if err := RunMigrations(db.DB); err != nil {
		return nil, err
	}
	return &Store{db: db}, nil
}

// DB exposes the underlying connection for collaborators sharing the same
// database file.
func (s *Store) DB() *sqlx.DB {
	return s.db
}

func (s *Store) Close() error {
	return s.db.Close()
}

// GetOrCreate loads the session, inserting a fresh one on first contact.
func (s *Store) GetOrCreate(ctx context.Context, id string) (*Session, error) {
	var row sessionRow
	err := s.db.GetContext(ctx, &row,
		`SELECT id, turn_count, profile, insights, created_at, updated_at FROM sessions WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		_, err = s.db.ExecContext(ctx, `INSERT INTO sessions (id) VALUES (?)`, id)
		if err != nil {
			return nil, errors.Wrap(err, "create session")
		}
		now := time.Now().UTC()
		return &Session{ID: id, CreatedAt: now, UpdatedAt: now}, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "load session")
	}
	return rowToSession(row)
}

// Save persists the updated session state.
func (s *Store) Save(ctx context.Context, session *Session) error {
	profileJSON, err := json.Marshal(session.Profile)
	if err != nil {
		return errors.Wrap(err, "encode profile")
	}
	insights := session.Insights
	if insights == nil {
		insights = []insight.Insight{}
	}
	insightsJSON, err := json.Marshal(insights)
	if err != nil {
		return errors.Wrap(err, "encode insights")
	}

	_, err = s.db.ExecContext(ctx, `
		UPDATE sessions
		SET turn_count = ?, profile = ?, insights = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?`,
		session.TurnCount, profileJSON, insightsJSON, session.ID)
	if err != nil {
		return errors.Wrap(err, "save session")
	}
	return nil
}

func rowToSession(row sessionRow) (*Session, error) {
	session := &Session{
		ID:        row.ID,
		TurnCount: row.TurnCount,
		CreatedAt: row.CreatedAt,
		UpdatedAt: row.UpdatedAt,
	}
	if len(row.Profile) > 0 {
		if err := json.Unmarshal(row.Profile, &session.Profile); err != nil {
			return nil, errors.Wrap(err, "decode profile")
		}
	}
	if len(row.Insights) > 0 {
		if err := json.Unmarshal(row.Insights, &session.Insights); err != nil {
			return nil, errors.Wrap(err, "decode insights")
		}
	}
	return session, nil
}
