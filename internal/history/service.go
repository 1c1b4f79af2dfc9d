package history

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/GautamAgrawal1/lets-connect/internal/auth"
	"github.com/GautamAgrawal1/lets-connect/internal/store"
)

var (
	// ErrUnauthorized is returned when the token does not identify a user.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrInvalidMeetingCode is returned for an empty meeting code.
	ErrInvalidMeetingCode = errors.New("invalid meeting code")
)

const maxMeetingCodeLen = 128

// Entry is one meeting in a user's history.
type Entry struct {
	MeetingCode string    `json:"meetingCode"`
	Date        time.Time `json:"date"`
}

// TokenValidator resolves a bearer token to its claims.
type TokenValidator interface {
	ValidateToken(token string) (*auth.Claims, error)
}

// Service records and lists the meetings a user took part in.
type Service struct {
	tokens   TokenValidator
	meetings store.MeetingStore
}

// NewService creates a meeting history service.
func NewService(tokens TokenValidator, meetings store.MeetingStore) *Service {
	return &Service{tokens: tokens, meetings: meetings}
}

// AddToHistory records meetingCode for the user identified by token.
func (s *Service) AddToHistory(ctx context.Context, token, meetingCode string) (Entry, error) {
	claims, err := s.tokens.ValidateToken(token)
	if err != nil {
		return Entry{}, ErrUnauthorized
	}

	meetingCode = strings.TrimSpace(meetingCode)
	if meetingCode == "" || len(meetingCode) > maxMeetingCodeLen {
		return Entry{}, ErrInvalidMeetingCode
	}

	m, err := s.meetings.AddMeeting(ctx, claims.UserID, meetingCode)
	if err != nil {
		return Entry{}, fmt.Errorf("add meeting: %w", err)
	}
	return Entry{MeetingCode: m.MeetingCode, Date: m.CreatedAt}, nil
}

// GetHistory lists the user's meetings, newest first.
func (s *Service) GetHistory(ctx context.Context, token string) ([]Entry, error) {
	claims, err := s.tokens.ValidateToken(token)
	if err != nil {
		return nil, ErrUnauthorized
	}

	meetings, err := s.meetings.ListMeetings(ctx, claims.UserID)
	if err != nil {
		return nil, fmt.Errorf("list meetings: %w", err)
	}

	entries := make([]Entry, 0, len(meetings))
	for _, m := range meetings {
		entries = append(entries, Entry{MeetingCode: m.MeetingCode, Date: m.CreatedAt})
	}
	return entries, nil
}
