package identity

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"
)

func newMockPGStore(t *testing.T) (*PGStore, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewPGStore(db), mock
}

func TestPGStoreCreateNullsEmptyEmail(t *testing.T) {
	store, mock := newMockPGStore(t)

	mock.ExpectExec("insert into users").
		WithArgs("u-1", "legacy", nil, "hash", KindUser, true).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := store.Create(context.Background(), &User{
		ID:           "u-1",
		Username:     "legacy",
		PasswordHash: "hash",
		Kind:         KindUser,
		Active:       true,
	})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPGStoreCreateUniqueViolation(t *testing.T) {
	store, mock := newMockPGStore(t)

	mock.ExpectExec("insert into users").
		WithArgs("u-1", "alice", "alice@example.com", "hash", KindUser, true).
		WillReturnError(errors.New(`pq: duplicate key value violates unique constraint "users_username_key" (SQLSTATE 23505)`))

	err := store.Create(context.Background(), &User{
		ID:           "u-1",
		Username:     "alice",
		Email:        "alice@example.com",
		PasswordHash: "hash",
		Kind:         KindUser,
		Active:       true,
	})
	require.ErrorIs(t, err, ErrAlreadyExists)
}

func TestPGStoreFindScansNullEmail(t *testing.T) {
	store, mock := newMockPGStore(t)

	mock.ExpectQuery("select id, username, email, password_hash, kind, active, created_at").
		WithArgs("u-1").
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "username", "email", "password_hash", "kind", "active", "created_at",
		}).AddRow("u-1", "legacy", nil, "hash", KindUser, true, time.Now().UTC()))

	user, err := store.Find(context.Background(), "u-1")
	require.NoError(t, err)
	require.Equal(t, "", user.Email)
	require.Equal(t, "legacy", user.Username)
}

func TestPGStoreFindMissing(t *testing.T) {
	store, mock := newMockPGStore(t)

	mock.ExpectQuery("select id, username, email").
		WithArgs("u-404").
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "username", "email", "password_hash", "kind", "active", "created_at",
		}))

	_, err := store.Find(context.Background(), "u-404")
	require.ErrorIs(t, err, ErrNotFound)
}
