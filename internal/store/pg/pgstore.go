package pg

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/anigokul432/ai-v2v-interviewer-backend/internal/interview"
)

// BlobStore is an optional external home for recording bytes. When set, the
// interview row carries only an object key and the blob lives in S3-style
// storage.
type BlobStore interface {
	Put(ctx context.Context, key string, data []byte) error
	Get(ctx context.Context, key string) ([]byte, error)
}

type Store struct {
	db    *sql.DB
	blobs BlobStore
}

var _ interview.Store = (*Store)(nil)

func Open(dsn string) (*Store, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}
	// Tuned pool defaults; adjust under load tests
	db.SetMaxOpenConns(50)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(15 * time.Minute)
	db.SetConnMaxIdleTime(5 * time.Minute)
	return &Store{db: db}, nil
}

// NewStore wraps an existing connection pool.
func NewStore(db *sql.DB) *Store { return &Store{db: db} }

// WithRecordingBlobs routes recording bytes to the given blob store.
func (s *Store) WithRecordingBlobs(blobs BlobStore) *Store {
	s.blobs = blobs
	return s
}

func (s *Store) Close() error { return s.db.Close() }

func (s *Store) DB() *sql.DB { return s.db }

func (s *Store) Create(ctx context.Context, iv *interview.Interview) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `
		insert into interviews(id, user_id, title, description, taken, created_at)
		values($1,$2,$3,$4,false,$5)
	`, iv.ID, iv.OwnerID, iv.Title, iv.Description, iv.CreatedAt); err != nil {
		return err
	}
	if err := insertQuestions(ctx, tx, iv.ID, iv.Questions); err != nil {
		return err
	}
	return tx.Commit()
}

func (s *Store) Get(ctx context.Context, id string) (*interview.Interview, error) {
	iv, err := scanInterview(s.db.QueryRowContext(ctx, `
		select id, user_id, title, description, taken, score, created_at,
		       (recording is not null or recording_key is not null)
		from interviews where id=$1
	`, id))
	if err != nil {
		return nil, err
	}
	questions, err := s.loadQuestions(ctx, id)
	if err != nil {
		return nil, err
	}
	iv.Questions = questions
	return iv, nil
}

func (s *Store) ListByOwner(ctx context.Context, ownerID string) ([]*interview.Interview, error) {
	return s.list(ctx, `
		select id, user_id, title, description, taken, score, created_at,
		       (recording is not null or recording_key is not null)
		from interviews where user_id=$1 order by created_at asc
	`, ownerID)
}

func (s *Store) ListAll(ctx context.Context) ([]*interview.Interview, error) {
	return s.list(ctx, `
		select id, user_id, title, description, taken, score, created_at,
		       (recording is not null or recording_key is not null)
		from interviews order by created_at asc
	`)
}

func (s *Store) Update(ctx context.Context, iv *interview.Interview, replaceQuestions bool) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx, `
		update interviews set title=$2, description=$3 where id=$1
	`, iv.ID, iv.Title, iv.Description)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err != nil {
		return err
	} else if n == 0 {
		return interview.ErrNotFound
	}

	if replaceQuestions {
		// Full replace, never a merge.
		if _, err := tx.ExecContext(ctx, `delete from questions where interview_id=$1`, iv.ID); err != nil {
			return err
		}
		if err := insertQuestions(ctx, tx, iv.ID, iv.Questions); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func (s *Store) Delete(ctx context.Context, id string) error {
	// questions cascade via FK
	res, err := s.db.ExecContext(ctx, `delete from interviews where id=$1`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return interview.ErrNotFound
	}
	return nil
}

func (s *Store) Finalize(ctx context.Context, id string, score int, recording []byte) error {
	var (
		res sql.Result
		err error
	)
	if recording != nil && s.blobs != nil {
		key := recordingKey()
		if err := s.blobs.Put(ctx, key, recording); err != nil {
			return fmt.Errorf("store recording blob: %w", err)
		}
		res, err = s.db.ExecContext(ctx, `
			update interviews set score=$2, taken=true, recording_key=$3
			where id=$1 and taken=false
		`, id, score, key)
	} else {
		res, err = s.db.ExecContext(ctx, `
			update interviews set score=$2, taken=true, recording=$3
			where id=$1 and taken=false
		`, id, score, recording)
	}
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 1 {
		return nil
	}

	// Zero rows: either the row is gone or a concurrent submission won.
	var taken bool
	err = s.db.QueryRowContext(ctx, `select taken from interviews where id=$1`, id).Scan(&taken)
	if errors.Is(err, sql.ErrNoRows) {
		return interview.ErrNotFound
	}
	if err != nil {
		return err
	}
	return interview.ErrConflict
}

func (s *Store) GetRecording(ctx context.Context, id string) ([]byte, error) {
	var (
		data []byte
		key  sql.NullString
	)
	err := s.db.QueryRowContext(ctx, `
		select recording, recording_key from interviews where id=$1
	`, id).Scan(&data, &key)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, interview.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if key.Valid && s.blobs != nil {
		return s.blobs.Get(ctx, key.String)
	}
	if data == nil {
		return nil, interview.ErrNotFound
	}
	return data, nil
}

// --- helpers ---

func (s *Store) list(ctx context.Context, query string, args ...any) ([]*interview.Interview, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var res []*interview.Interview
	for rows.Next() {
		iv, err := scanInterview(rows)
		if err != nil {
			return nil, err
		}
		res = append(res, iv)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for _, iv := range res {
		questions, err := s.loadQuestions(ctx, iv.ID)
		if err != nil {
			return nil, err
		}
		iv.Questions = questions
	}
	return res, nil
}

func (s *Store) loadQuestions(ctx context.Context, interviewID string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `
		select text from questions where interview_id=$1 order by position asc
	`, interviewID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var questions []string
	for rows.Next() {
		var text string
		if err := rows.Scan(&text); err != nil {
			return nil, err
		}
		questions = append(questions, text)
	}
	return questions, rows.Err()
}

func insertQuestions(ctx context.Context, tx *sql.Tx, interviewID string, questions []string) error {
	for i, text := range questions {
		if _, err := tx.ExecContext(ctx, `
			insert into questions(interview_id, position, text) values($1,$2,$3)
		`, interviewID, i, text); err != nil {
			return err
		}
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanInterview(row rowScanner) (*interview.Interview, error) {
	var (
		iv    interview.Interview
		score sql.NullInt64
	)
	err := row.Scan(&iv.ID, &iv.OwnerID, &iv.Title, &iv.Description, &iv.Taken, &score, &iv.CreatedAt, &iv.HasRecording)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, interview.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if score.Valid {
		sc := int(score.Int64)
		iv.Score = &sc
	}
	return &iv, nil
}

func recordingKey() string {
	d := time.Now()
	return fmt.Sprintf("recordings/%d/%02d/%02d/%s", d.Year(), d.Month(), d.Day(), uuid.NewString())
}
