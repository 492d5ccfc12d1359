package identity

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/anigokul432/ai-v2v-interviewer-backend/internal/ids"
)

var _ Store = (*PGStore)(nil)

// PGStore implements Store using PostgreSQL.
type PGStore struct {
	db *sql.DB
}

func NewPGStore(db *sql.DB) *PGStore {
	return &PGStore{db: db}
}

func (s *PGStore) Create(ctx context.Context, u *User) error {
	if u.ID == "" {
		u.ID = ids.New()
	}
	var email any
	if u.Email != "" {
		email = u.Email
	}
	_, err := s.db.ExecContext(ctx, `
		insert into users(id, username, email, password_hash, kind, active)
		values($1,$2,$3,$4,$5,$6)
	`, u.ID, u.Username, email, u.PasswordHash, u.Kind, u.Active)
	if err != nil && isUniqueViolation(err) {
		return ErrAlreadyExists
	}
	return err
}

func (s *PGStore) Find(ctx context.Context, id string) (*User, error) {
	return s.scanOne(s.db.QueryRowContext(ctx, `
		select id, username, email, password_hash, kind, active, created_at
		from users where id=$1
	`, id))
}

func (s *PGStore) FindByUsername(ctx context.Context, username string) (*User, error) {
	return s.scanOne(s.db.QueryRowContext(ctx, `
		select id, username, email, password_hash, kind, active, created_at
		from users where username=$1
	`, username))
}

func (s *PGStore) FindByEmail(ctx context.Context, email string) (*User, error) {
	return s.scanOne(s.db.QueryRowContext(ctx, `
		select id, username, email, password_hash, kind, active, created_at
		from users where email=$1
	`, email))
}

func (s *PGStore) scanOne(row *sql.Row) (*User, error) {
	var (
		u     User
		email sql.NullString
	)
	if err := row.Scan(&u.ID, &u.Username, &email, &u.PasswordHash, &u.Kind, &u.Active, &u.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if email.Valid {
		u.Email = email.String
	}
	return &u, nil
}

// isUniqueViolation matches the Postgres unique_violation SQLSTATE without
// depending on driver error types.
func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "23505")
}
