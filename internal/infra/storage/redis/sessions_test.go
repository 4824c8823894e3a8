package redis

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainauth "staybook/internal/domain/auth"
)

var now = time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)

func newStore(t *testing.T) (*SessionStore, redismock.ClientMock) {
	t.Helper()
	db, mock := redismock.NewClientMock()
	store := NewSessionStore(db)
	store.now = func() time.Time { return now }
	return store, mock
}

func session(t *testing.T) *domainauth.Session {
	t.Helper()
	s, err := domainauth.NewSession(domainauth.CreateSessionParams{ID: "sess-1", UserID: "user-1", TTL: time.Hour, Now: now})
	require.NoError(t, err)
	return s
}

func encoded(t *testing.T, s *domainauth.Session) string {
	t.Helper()
	payload, err := json.Marshal(sessionRecord{UserID: string(s.UserID), CreatedAt: s.CreatedAt, ExpiresAt: s.ExpiresAt})
	require.NoError(t, err)
	return string(payload)
}

func TestSaveSetsValueWithRemainingTTL(t *testing.T) {
	store, mock := newStore(t)
	s := session(t)
	mock.ExpectSet("staybook:session:sess-1", encoded(t, s), time.Hour).SetVal("OK")

	require.NoError(t, store.Save(context.Background(), s))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetDecodesSession(t *testing.T) {
	store, mock := newStore(t)
	s := session(t)
	mock.ExpectGet("staybook:session:sess-1").SetVal(encoded(t, s))

	got, err := store.Get(context.Background(), "sess-1")
	require.NoError(t, err)
	assert.Equal(t, s.UserID, got.UserID)
	assert.True(t, got.ExpiresAt.Equal(s.ExpiresAt))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetMissingAndFailingSessions(t *testing.T) {
	store, mock := newStore(t)
	mock.ExpectGet("staybook:session:gone").RedisNil()
	mock.ExpectGet("staybook:session:boom").SetErr(errors.New("connection reset"))

	_, err := store.Get(context.Background(), "gone")
	assert.ErrorIs(t, err, domainauth.ErrSessionNotFound)

	_, err = store.Get(context.Background(), "boom")
	assert.ErrorContains(t, err, "connection reset")
	assert.NotErrorIs(t, err, domainauth.ErrSessionNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDelete(t *testing.T) {
	store, mock := newStore(t)
	mock.ExpectDel("staybook:session:sess-1").SetVal(1)

	require.NoError(t, store.Delete(context.Background(), "sess-1"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSaveRejectsExpiredSession(t *testing.T) {
	store, _ := newStore(t)
	s := session(t)
	store.now = func() time.Time { return now.Add(2 * time.Hour) }

	assert.ErrorIs(t, store.Save(context.Background(), s), domainauth.ErrTTLInvalid)
}
