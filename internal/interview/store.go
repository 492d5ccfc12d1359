package interview

import "context"

// Store describes the persistence contract the orchestrator requires.
//
// Create must persist the interview and its questions atomically: a partial
// failure leaves nothing visible to readers. Finalize must be a conditional
// write guarded by taken=false so concurrent submissions serialize without a
// long-held lock; the loser observes ErrConflict.
type Store interface {
	Create(ctx context.Context, iv *Interview) error
	Get(ctx context.Context, id string) (*Interview, error)
	ListByOwner(ctx context.Context, ownerID string) ([]*Interview, error)
	ListAll(ctx context.Context) ([]*Interview, error)
	Update(ctx context.Context, iv *Interview, replaceQuestions bool) error
	Delete(ctx context.Context, id string) error
	Finalize(ctx context.Context, id string, score int, recording []byte) error
	GetRecording(ctx context.Context, id string) ([]byte, error)
}
