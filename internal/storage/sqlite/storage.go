package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	msqlite "modernc.org/sqlite"
	sqlite3lib "modernc.org/sqlite/lib"

	"github.com/teamdraw/teamdraw-go/internal/model"
	"github.com/teamdraw/teamdraw-go/internal/storage"
)

// schema is the single participants table from the persisted state layout:
// one row per participant, keyed by id, with a case-insensitive unique
// username. registered_at is stored as unix milliseconds UTC.
const schema = `
CREATE TABLE IF NOT EXISTS participants (
	id            TEXT PRIMARY KEY,
	username      TEXT NOT NULL,
	username_norm TEXT NOT NULL UNIQUE,
	team          TEXT NOT NULL,
	status        TEXT NOT NULL,
	registered_at INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_participants_order ON participants (registered_at);
`

// Storage is a SQLite-backed implementation of the storage interface
type Storage struct {
	db *sql.DB
}

// Open opens (creating if necessary) a SQLite participant store at path.
// Pass ":memory:" for an ephemeral database.
func Open(path string) (*Storage, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("sqlite path is required")
	}

	dsn := path
	if path != ":memory:" {
		// modernc's _pragma form; WAL keeps readers unblocked during writes
		dsn = path + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=synchronous(NORMAL)"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}

	return &Storage{db: db}, nil
}

// Close closes the database handle
func (s *Storage) Close() error {
	return s.db.Close()
}

// Ensure Storage implements the interface
var _ storage.Store = (*Storage)(nil)

func toMillis(t time.Time) int64 {
	return t.UTC().UnixMilli()
}

func fromMillis(ms int64) time.Time {
	return time.UnixMilli(ms).UTC()
}

func (s *Storage) InsertParticipant(ctx context.Context, p *model.Participant) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO participants (id, username, username_norm, team, status, registered_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		string(p.ID), p.Username, model.NormalizeUsername(p.Username),
		string(p.Team), string(p.Status), toMillis(p.RegisteredAt),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return model.ErrDuplicateUsername
		}
		return fmt.Errorf("insert participant: %w", err)
	}
	return nil
}

func (s *Storage) GetParticipant(ctx context.Context, id model.ParticipantID) (*model.Participant, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, username, team, status, registered_at FROM participants WHERE id = ?`,
		string(id),
	)
	return scanParticipant(row)
}

func (s *Storage) GetParticipantByUsername(ctx context.Context, username string) (*model.Participant, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, username, team, status, registered_at FROM participants WHERE username_norm = ?`,
		model.NormalizeUsername(username),
	)
	return scanParticipant(row)
}

func (s *Storage) DeleteParticipant(ctx context.Context, id model.ParticipantID) error {
	result, err := s.db.ExecContext(ctx,
		`DELETE FROM participants WHERE id = ?`, string(id))
	if err != nil {
		return fmt.Errorf("delete participant: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete participant: %w", err)
	}
	if affected == 0 {
		return model.ErrParticipantNotFound
	}
	return nil
}

func (s *Storage) SetStatus(ctx context.Context, id model.ParticipantID, status model.Status) error {
	result, err := s.db.ExecContext(ctx,
		`UPDATE participants SET status = ? WHERE id = ?`,
		string(status), string(id))
	if err != nil {
		return fmt.Errorf("set status: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("set status: %w", err)
	}
	if affected == 0 {
		return model.ErrParticipantNotFound
	}
	return nil
}

func (s *Storage) ReactivateAll(ctx context.Context) (int, error) {
	result, err := s.db.ExecContext(ctx,
		`UPDATE participants SET status = ? WHERE status != ?`,
		string(model.StatusActive), string(model.StatusActive))
	if err != nil {
		return 0, fmt.Errorf("reactivate all: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("reactivate all: %w", err)
	}
	return int(affected), nil
}

func (s *Storage) DeleteAll(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM participants`); err != nil {
		return fmt.Errorf("delete all: %w", err)
	}
	return nil
}

func (s *Storage) ListParticipants(ctx context.Context) (model.Snapshot, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, username, team, status, registered_at
		 FROM participants ORDER BY registered_at ASC, rowid ASC`)
	if err != nil {
		return nil, fmt.Errorf("list participants: %w", err)
	}
	defer func() { _ = rows.Close() }()

	snapshot := model.Snapshot{}
	for rows.Next() {
		var (
			id, username, team, status string
			registeredAt               int64
		)
		if err := rows.Scan(&id, &username, &team, &status, &registeredAt); err != nil {
			return nil, fmt.Errorf("list participants: %w", err)
		}
		snapshot = append(snapshot, model.Participant{
			ID:           model.ParticipantID(id),
			Username:     username,
			Team:         model.Team(team),
			Status:       model.Status(status),
			RegisteredAt: fromMillis(registeredAt),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list participants: %w", err)
	}
	return snapshot, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanParticipant(row rowScanner) (*model.Participant, error) {
	var (
		id, username, team, status string
		registeredAt               int64
	)
	err := row.Scan(&id, &username, &team, &status, &registeredAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, model.ErrParticipantNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan participant: %w", err)
	}
	return &model.Participant{
		ID:           model.ParticipantID(id),
		Username:     username,
		Team:         model.Team(team),
		Status:       model.Status(status),
		RegisteredAt: fromMillis(registeredAt),
	}, nil
}

func isUniqueViolation(err error) bool {
	var sqliteErr *msqlite.Error
	if errors.As(err, &sqliteErr) {
		switch sqliteErr.Code() {
		case sqlite3lib.SQLITE_CONSTRAINT_PRIMARYKEY, sqlite3lib.SQLITE_CONSTRAINT_UNIQUE:
			return true
		}
	}
	return false
}
