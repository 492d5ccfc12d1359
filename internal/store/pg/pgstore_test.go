package pg

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/anigokul432/ai-v2v-interviewer-backend/internal/interview"
)

func newMockStore(t *testing.T) (*Store, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return NewStore(db), mock
}

func interviewRow(id string, taken bool, score any) *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "user_id", "title", "description", "taken", "score", "created_at", "has_recording",
	}).AddRow(id, "owner-1", "Backend role", "Go position", taken, score, time.Now().UTC(), false)
}

func TestCreatePersistsQuestionsInOrder(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectBegin()
	mock.ExpectExec("insert into interviews").
		WithArgs("iv-1", "owner-1", "Backend role", "Go position", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("insert into questions").
		WithArgs("iv-1", 0, "Q1").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("insert into questions").
		WithArgs("iv-1", 1, "Q2").
		WillReturnResult(sqlmock.NewResult(2, 1))
	mock.ExpectCommit()

	err := store.Create(context.Background(), &interview.Interview{
		ID:          "iv-1",
		OwnerID:     "owner-1",
		Title:       "Backend role",
		Description: "Go position",
		Questions:   []string{"Q1", "Q2"},
		CreatedAt:   time.Now().UTC(),
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestGetLoadsQuestions(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectQuery("select id, user_id, title, description, taken, score, created_at").
		WithArgs("iv-1").
		WillReturnRows(interviewRow("iv-1", false, nil))
	mock.ExpectQuery("select text from questions").
		WithArgs("iv-1").
		WillReturnRows(sqlmock.NewRows([]string{"text"}).AddRow("Q1").AddRow("Q2"))

	iv, err := store.Get(context.Background(), "iv-1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if iv.Taken || iv.Score != nil {
		t.Fatalf("unexpected state: taken=%v score=%v", iv.Taken, iv.Score)
	}
	if len(iv.Questions) != 2 || iv.Questions[0] != "Q1" || iv.Questions[1] != "Q2" {
		t.Fatalf("unexpected questions: %v", iv.Questions)
	}
}

func TestGetMissing(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectQuery("select id, user_id, title, description").
		WithArgs("iv-404").
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "user_id", "title", "description", "taken", "score", "created_at", "has_recording",
		}))

	if _, err := store.Get(context.Background(), "iv-404"); !errors.Is(err, interview.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestUpdateReplacesQuestionSet(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectBegin()
	mock.ExpectExec("update interviews set title").
		WithArgs("iv-1", "New title", "New description").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("delete from questions").
		WithArgs("iv-1").
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec("insert into questions").
		WithArgs("iv-1", 0, "C").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	err := store.Update(context.Background(), &interview.Interview{
		ID:          "iv-1",
		Title:       "New title",
		Description: "New description",
		Questions:   []string{"C"},
	}, true)
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestUpdateMissing(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectBegin()
	mock.ExpectExec("update interviews set title").
		WithArgs("iv-404", "t", "d").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	err := store.Update(context.Background(), &interview.Interview{ID: "iv-404", Title: "t", Description: "d"}, false)
	if !errors.Is(err, interview.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestDeleteMissing(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectExec("delete from interviews").
		WithArgs("iv-404").
		WillReturnResult(sqlmock.NewResult(0, 0))

	if err := store.Delete(context.Background(), "iv-404"); !errors.Is(err, interview.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestFinalizeWritesScoreOnce(t *testing.T) {
	store, mock := newMockStore(t)
	recording := []byte("audio-bytes")

	mock.ExpectExec("update interviews set score").
		WithArgs("iv-1", 85, recording).
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := store.Finalize(context.Background(), "iv-1", 85, recording); err != nil {
		t.Fatalf("Finalize: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestFinalizeConflictWhenAlreadyTaken(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectExec("update interviews set score").
		WithArgs("iv-1", 85, []byte(nil)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery("select taken from interviews").
		WithArgs("iv-1").
		WillReturnRows(sqlmock.NewRows([]string{"taken"}).AddRow(true))

	if err := store.Finalize(context.Background(), "iv-1", 85, nil); !errors.Is(err, interview.ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}
}

func TestFinalizeMissingInterview(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectExec("update interviews set score").
		WithArgs("iv-404", 85, []byte(nil)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery("select taken from interviews").
		WithArgs("iv-404").
		WillReturnRows(sqlmock.NewRows([]string{"taken"}))

	if err := store.Finalize(context.Background(), "iv-404", 85, nil); !errors.Is(err, interview.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

type memoryBlobs struct {
	objects map[string][]byte
}

func (m *memoryBlobs) Put(ctx context.Context, key string, data []byte) error {
	if m.objects == nil {
		m.objects = make(map[string][]byte)
	}
	m.objects[key] = append([]byte(nil), data...)
	return nil
}

func (m *memoryBlobs) Get(ctx context.Context, key string) ([]byte, error) {
	data, ok := m.objects[key]
	if !ok {
		return nil, errors.New("no such key")
	}
	return data, nil
}

func TestFinalizeRoutesRecordingToBlobStore(t *testing.T) {
	store, mock := newMockStore(t)
	blobs := &memoryBlobs{}
	store = store.WithRecordingBlobs(blobs)

	mock.ExpectExec("update interviews set score").
		WithArgs("iv-1", 85, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := store.Finalize(context.Background(), "iv-1", 85, []byte("audio")); err != nil {
		t.Fatalf("Finalize: %v", err)
	}
	if len(blobs.objects) != 1 {
		t.Fatalf("expected 1 stored object, got %d", len(blobs.objects))
	}
	for key, data := range blobs.objects {
		if string(data) != "audio" {
			t.Fatalf("blob content mismatch: %q", data)
		}
		if key == "" {
			t.Fatal("empty object key")
		}
	}
}

func TestGetRecordingFromBlobStore(t *testing.T) {
	store, mock := newMockStore(t)
	blobs := &memoryBlobs{objects: map[string][]byte{"recordings/2026/09/01/abc": []byte("audio")}}
	store = store.WithRecordingBlobs(blobs)

	mock.ExpectQuery("select recording, recording_key from interviews").
		WithArgs("iv-1").
		WillReturnRows(sqlmock.NewRows([]string{"recording", "recording_key"}).
			AddRow(nil, "recordings/2026/09/01/abc"))

	data, err := store.GetRecording(context.Background(), "iv-1")
	if err != nil {
		t.Fatalf("GetRecording: %v", err)
	}
	if string(data) != "audio" {
		t.Fatalf("recording mismatch: %q", data)
	}
}

func TestGetRecordingMissing(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectQuery("select recording, recording_key from interviews").
		WithArgs("iv-1").
		WillReturnRows(sqlmock.NewRows([]string{"recording", "recording_key"}).AddRow(nil, nil))

	if _, err := store.GetRecording(context.Background(), "iv-1"); !errors.Is(err, interview.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
