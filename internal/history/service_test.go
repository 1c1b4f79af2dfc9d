package history

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GautamAgrawal1/lets-connect/internal/auth"
	"github.com/GautamAgrawal1/lets-connect/internal/store/sqlite"
)

func newTestServices(t *testing.T) (*auth.Service, *Service) {
	t.Helper()

	st, err := sqlite.NewWithSetup(":memory:", sqlite.ApplySchema)
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	authSvc := auth.NewService(st, &auth.JWTConfig{
		Secret: []byte("history-secret"),
		Issuer: "test",
		TTL:    time.Hour,
	})
	return authSvc, NewService(authSvc, st)
}

func login(t *testing.T, authSvc *auth.Service, username string) string {
	t.Helper()

	ctx := context.Background()
	_, err := authSvc.Register(ctx, "User "+username, username, "password123")
	require.NoError(t, err)
	token, err := authSvc.Login(ctx, username, "password123")
	require.NoError(t, err)
	return token
}

func TestAddAndGetHistory(t *testing.T) {
	authSvc, svc := newTestServices(t)
	ctx := context.Background()

	alice := login(t, authSvc, "alice")
	bob := login(t, authSvc, "bob")

	entry, err := svc.AddToHistory(ctx, alice, " room-1 ")
	require.NoError(t, err)
	assert.Equal(t, "room-1", entry.MeetingCode)
	assert.False(t, entry.Date.IsZero())

	_, err = svc.AddToHistory(ctx, alice, "room-2")
	require.NoError(t, err)
	_, err = svc.AddToHistory(ctx, bob, "bob-room")
	require.NoError(t, err)

	entries, err := svc.GetHistory(ctx, alice)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.ElementsMatch(t, []string{"room-1", "room-2"}, []string{entries[0].MeetingCode, entries[1].MeetingCode})
	assert.False(t, entries[0].Date.Before(entries[1].Date))
}

func TestHistoryRejectsBadInput(t *testing.T) {
	authSvc, svc := newTestServices(t)
	ctx := context.Background()
	token := login(t, authSvc, "carol")

	_, err := svc.AddToHistory(ctx, "bogus", "room")
	assert.ErrorIs(t, err, ErrUnauthorized)

	_, err = svc.AddToHistory(ctx, token, "   ")
	assert.ErrorIs(t, err, ErrInvalidMeetingCode)

	_, err = svc.GetHistory(ctx, "")
	assert.ErrorIs(t, err, ErrUnauthorized)

	entries, err := svc.GetHistory(ctx, token)
	require.NoError(t, err)
	assert.Empty(t, entries)
}
