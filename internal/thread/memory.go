package thread

import (
	"context"
	"sync"
	"time"

	"ouvidoria.app/internal/ids"
)

var _ Store = (*InMemoryStore)(nil)
var _ MessageStore = (*InMemoryMessageStore)(nil)

// InMemoryStore keeps threads in a map. It backs tests and the DSN-less demo
// mode of cmd/api.
type InMemoryStore struct {
	mu      sync.RWMutex
	threads map[string]*Thread
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{threads: make(map[string]*Thread)}
}

func (s *InMemoryStore) Create(ctx context.Context, t *Thread) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if t.ID == "" {
		t.ID = ids.New()
	}
	now := time.Now().UTC()
	t.CreatedAt = now
	t.UpdatedAt = now
	clone := *t
	s.threads[t.ID] = &clone
	return nil
}

func (s *InMemoryStore) Find(ctx context.Context, id string) (*Thread, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.threads[id]
	if !ok || t.DeletedAt != nil {
		return nil, ErrNotFound
	}
	clone := *t
	return &clone, nil
}

func (s *InMemoryStore) ListByAuthor(ctx context.Context, userID, title string) ([]*Thread, error) {
	return s.filter(func(t *Thread) bool {
		return t.UserID == userID && (title == "" || t.Title == title)
	}), nil
}

func (s *InMemoryStore) ListByCompetencia(ctx context.Context, competenciaID, title string) ([]*Thread, error) {
	return s.filter(func(t *Thread) bool {
		return t.CompetenciaID == competenciaID && (title == "" || t.Title == title)
	}), nil
}

func (s *InMemoryStore) filter(keep func(*Thread) bool) []*Thread {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var res []*Thread
	for _, t := range s.threads {
		if t.DeletedAt == nil && keep(t) {
			clone := *t
			res = append(res, &clone)
		}
	}
	return res
}

func (s *InMemoryStore) Update(ctx context.Context, t *Thread) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := s.threads[t.ID]
	if !ok || cur.DeletedAt != nil {
		return ErrNotFound
	}
	cur.Title = t.Title
	cur.Status = t.Status
	cur.CompetenciaID = t.CompetenciaID
	cur.UpdatedAt = time.Now().UTC()
	return nil
}

func (s *InMemoryStore) SoftDelete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.threads[id]
	if !ok || t.DeletedAt != nil {
		return ErrNotFound
	}
	now := time.Now().UTC()
	t.DeletedAt = &now
	t.UpdatedAt = now
	return nil
}

// InMemoryMessageStore keeps messages per thread in insertion order.
type InMemoryMessageStore struct {
	mu       sync.RWMutex
	byThread map[string][]Message
}

func NewInMemoryMessageStore() *InMemoryMessageStore {
	return &InMemoryMessageStore{byThread: make(map[string][]Message)}
}

func (s *InMemoryMessageStore) Create(ctx context.Context, m *Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if m.ID == "" {
		m.ID = ids.New()
	}
	s.byThread[m.ThreadID] = append(s.byThread[m.ThreadID], *m)
	return nil
}

func (s *InMemoryMessageStore) ListByThread(ctx context.Context, threadID string) ([]Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	msgs := s.byThread[threadID]
	res := make([]Message, len(msgs))
	copy(res, msgs)
	return res, nil
}
