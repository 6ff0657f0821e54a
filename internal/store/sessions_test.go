package store

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionStore_CreateAndFind(t *testing.T) {
	db, mock := newMock(t)
	s := NewSessionStore(db)
	exp := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)

	mock.ExpectExec(q("INSERT INTO sessions (token_digest, expires_at) VALUES ($1, $2)")).
		WithArgs("digest", exp).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(q("FROM sessions WHERE token_digest = $1")).
		WithArgs("digest").
		WillReturnRows(sqlmock.NewRows([]string{"token_digest", "expires_at", "created_at"}).AddRow("digest", exp, exp))

	require.NoError(t, s.CreateSession(context.Background(), "digest", exp))
	got, err := s.FindSession(context.Background(), "digest")
	require.NoError(t, err)
	assert.True(t, got.ExpiresAt.Equal(exp))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSessionStore_FindMissing(t *testing.T) {
	db, mock := newMock(t)
	s := NewSessionStore(db)

	mock.ExpectQuery("FROM sessions").
		WithArgs("nope").
		WillReturnRows(sqlmock.NewRows([]string{"token_digest", "expires_at", "created_at"}))

	_, err := s.FindSession(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSessionStore_DeleteExpired(t *testing.T) {
	db, mock := newMock(t)
	s := NewSessionStore(db)
	now := time.Now()

	mock.ExpectExec(q("DELETE FROM sessions WHERE expires_at < $1")).
		WithArgs(now).
		WillReturnResult(sqlmock.NewResult(0, 3))

	n, err := s.DeleteExpiredSessions(context.Background(), now)
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)
}

func TestSessionStore_Delete(t *testing.T) {
	db, mock := newMock(t)
	s := NewSessionStore(db)

	mock.ExpectExec(q("DELETE FROM sessions WHERE token_digest = $1")).
		WithArgs("digest").
		WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, s.DeleteSession(context.Background(), "digest"))
	assert.NoError(t, mock.ExpectationsWereMet())
}
