package store

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when a lookup matches no row.
var ErrNotFound = errors.New("not found")

// User represents a registered account.
type User struct {
	ID           int64
	Name         string
	Username     string
	PasswordHash string
	CreatedAt    time.Time
}

// Meeting is one entry of a user's meeting history.
type Meeting struct {
	ID          int64
	UserID      int64
	MeetingCode string
	CreatedAt   time.Time
}

// UserStore handles user persistence.
type UserStore interface {
	// CreateUser creates a new user with hashed password.
	CreateUser(ctx context.Context, name, username, passwordHash string) (*User, error)

	// GetUserByID retrieves a user by ID.
	GetUserByID(ctx context.Context, id int64) (*User, error)

	// GetUserByUsername retrieves a user by username.
	GetUserByUsername(ctx context.Context, username string) (*User, error)
}

// MeetingStore handles meeting history persistence.
type MeetingStore interface {
	// AddMeeting records that userID took part in meetingCode.
	AddMeeting(ctx context.Context, userID int64, meetingCode string) (*Meeting, error)

	// ListMeetings returns the user's meetings, newest first.
	ListMeetings(ctx context.Context, userID int64) ([]*Meeting, error)
}

// Store aggregates all storage interfaces.
type Store interface {
	UserStore
	MeetingStore

	// Close closes the underlying database connection.
	Close() error
}
