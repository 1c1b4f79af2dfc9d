package sqlite

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/GautamAgrawal1/lets-connect/internal/store"
)

//go:embed schema.sql
var schema string

// SQLiteStore implements store.Store for SQLite.
type SQLiteStore struct {
	db  *sql.DB
	now func() time.Time
}

// New opens the database at dbPath. Call Migrate before first use.
func New(dbPath string) (*SQLiteStore, error) {
	db, err := open(dbPath)
	if err != nil {
		return nil, err
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}

	return &SQLiteStore{db: db, now: time.Now}, nil
}

// NewWithSetup creates a new SQLite store and runs a setup function.
// Useful for tests to apply schema without migrations.
func NewWithSetup(dbPath string, setup func(*sql.DB) error) (*SQLiteStore, error) {
	db, err := open(dbPath)
	if err != nil {
		return nil, err
	}

	if setup != nil {
		if err := setup(db); err != nil {
			db.Close()
			return nil, fmt.Errorf("setup: %w", err)
		}
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}

	return &SQLiteStore{db: db, now: time.Now}, nil
}

// ApplySchema creates every table the store needs. It is safe to run
// against an already migrated database.
func ApplySchema(db *sql.DB) error {
	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}

// Migrate applies the embedded schema.
func (s *SQLiteStore) Migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func open(dbPath string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// SQLite works best with a single connection; it also keeps an
	// in-memory database alive across calls.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	return db, nil
}

// ==== UserStore implementation ====

// CreateUser creates a new user with hashed password.
func (s *SQLiteStore) CreateUser(ctx context.Context, name, username, passwordHash string) (*store.User, error) {
	query := `
		INSERT INTO users (name, username, password_hash)
		VALUES (?, ?, ?)
	`
	result, err := s.db.ExecContext(ctx, query, name, username, passwordHash)
	if err != nil {
		return nil, fmt.Errorf("insert user: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("get last insert id: %w", err)
	}

	return s.GetUserByID(ctx, id)
}

// GetUserByID retrieves a user by ID.
func (s *SQLiteStore) GetUserByID(ctx context.Context, id int64) (*store.User, error) {
	query := `
		SELECT id, name, username, password_hash, created_at
		FROM users
		WHERE id = ?
	`
	return s.scanUser(s.db.QueryRowContext(ctx, query, id))
}

// GetUserByUsername retrieves a user by username.
func (s *SQLiteStore) GetUserByUsername(ctx context.Context, username string) (*store.User, error) {
	query := `
		SELECT id, name, username, password_hash, created_at
		FROM users
		WHERE username = ?
	`
	return s.scanUser(s.db.QueryRowContext(ctx, query, username))
}

func (s *SQLiteStore) scanUser(row *sql.Row) (*store.User, error) {
	var user store.User
	err := row.Scan(
		&user.ID,
		&user.Name,
		&user.Username,
		&user.PasswordHash,
		&user.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("user: %w", store.ErrNotFound)
		}
		return nil, fmt.Errorf("query user: %w", err)
	}

	return &user, nil
}

// ==== MeetingStore implementation ====

// AddMeeting records a meeting for the user, stamped with the current time.
func (s *SQLiteStore) AddMeeting(ctx context.Context, userID int64, meetingCode string) (*store.Meeting, error) {
	createdAt := s.now().UTC()
	query := `
		INSERT INTO meetings (user_id, meeting_code, created_at)
		VALUES (?, ?, ?)
	`
	result, err := s.db.ExecContext(ctx, query, userID, meetingCode, createdAt)
	if err != nil {
		return nil, fmt.Errorf("insert meeting: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("get last insert id: %w", err)
	}

	return &store.Meeting{
		ID:          id,
		UserID:      userID,
		MeetingCode: meetingCode,
		CreatedAt:   createdAt,
	}, nil
}

// ListMeetings returns the user's meetings, newest first.
func (s *SQLiteStore) ListMeetings(ctx context.Context, userID int64) ([]*store.Meeting, error) {
	query := `
		SELECT id, user_id, meeting_code, created_at
		FROM meetings
		WHERE user_id = ?
		ORDER BY created_at DESC, id DESC
	`
	rows, err := s.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("query meetings: %w", err)
	}
	defer rows.Close()

	meetings := make([]*store.Meeting, 0)
	for rows.Next() {
		var m store.Meeting
		if err := rows.Scan(&m.ID, &m.UserID, &m.MeetingCode, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan meeting: %w", err)
		}
		meetings = append(meetings, &m)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate meetings: %w", err)
	}

	return meetings, nil
}
