package interview

import (
	"context"
	"sort"
	"sync"
)

// InMemory implements Store with in-process concurrency safety. Used by tests
// and local development.
type InMemory struct {
	mu         sync.RWMutex
	interviews map[string]*Interview
	recordings map[string][]byte
}

var _ Store = (*InMemory)(nil)

// NewInMemory creates an empty interview store.
func NewInMemory() *InMemory {
	return &InMemory{
		interviews: make(map[string]*Interview),
		recordings: make(map[string][]byte),
	}
}

func (s *InMemory) Create(ctx context.Context, iv *Interview) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := cloneInterview(iv)
	s.interviews[iv.ID] = cp
	return nil
}

func (s *InMemory) Get(ctx context.Context, id string) (*Interview, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	iv, ok := s.interviews[id]
	if !ok {
		return nil, ErrNotFound
	}
	return cloneInterview(iv), nil
}

func (s *InMemory) ListByOwner(ctx context.Context, ownerID string) ([]*Interview, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var res []*Interview
	for _, iv := range s.interviews {
		if iv.OwnerID == ownerID {
			res = append(res, cloneInterview(iv))
		}
	}
	sortByID(res)
	return res, nil
}

func (s *InMemory) ListAll(ctx context.Context) ([]*Interview, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	res := make([]*Interview, 0, len(s.interviews))
	for _, iv := range s.interviews {
		res = append(res, cloneInterview(iv))
	}
	sortByID(res)
	return res, nil
}

func (s *InMemory) Update(ctx context.Context, iv *Interview, replaceQuestions bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.interviews[iv.ID]
	if !ok {
		return ErrNotFound
	}
	existing.Title = iv.Title
	existing.Description = iv.Description
	if replaceQuestions {
		existing.Questions = append([]string(nil), iv.Questions...)
	}
	return nil
}

func (s *InMemory) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.interviews[id]; !ok {
		return ErrNotFound
	}
	delete(s.interviews, id)
	delete(s.recordings, id)
	return nil
}

func (s *InMemory) Finalize(ctx context.Context, id string, score int, recording []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	iv, ok := s.interviews[id]
	if !ok {
		return ErrNotFound
	}
	if iv.Taken {
		return ErrConflict
	}
	sc := score
	iv.Score = &sc
	iv.Taken = true
	if recording != nil {
		s.recordings[id] = append([]byte(nil), recording...)
		iv.HasRecording = true
	}
	return nil
}

func (s *InMemory) GetRecording(ctx context.Context, id string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.recordings[id]
	if !ok {
		return nil, ErrNotFound
	}
	return append([]byte(nil), rec...), nil
}

func cloneInterview(iv *Interview) *Interview {
	cp := *iv
	cp.Questions = append([]string(nil), iv.Questions...)
	if iv.Score != nil {
		sc := *iv.Score
		cp.Score = &sc
	}
	return &cp
}

func sortByID(items []*Interview) {
	sort.Slice(items, func(i, j int) bool { return items[i].ID < items[j].ID })
}
