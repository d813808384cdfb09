package auth

import (
	"context"
	"sync"
	"time"

	"ouvidoria.app/internal/ids"
)

var _ UserStore = (*InMemoryUserStore)(nil)
var _ CompetenciaStore = (*InMemoryCompetenciaStore)(nil)

// InMemoryUserStore keeps users in a map. It backs tests and the DSN-less
// demo mode of cmd/api.
type InMemoryUserStore struct {
	mu    sync.RWMutex
	users map[string]*User
	now   func() time.Time
}

func NewInMemoryUserStore() *InMemoryUserStore {
	return &InMemoryUserStore{
		users: make(map[string]*User),
		now:   time.Now,
	}
}

func (s *InMemoryUserStore) Create(ctx context.Context, u *User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u.ID == "" {
		u.ID = ids.New()
	}
	now := s.now().UTC()
	u.CreatedAt = now
	u.UpdatedAt = now
	clone := *u
	s.users[u.ID] = &clone
	return nil
}

// SetCompetencia rewrites the user's affiliation. Seed helper for tests and
// demo data; the REST surface never moves a user between organizations.
func (s *InMemoryUserStore) SetCompetencia(id, competenciaID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok || u.DeletedAt != nil {
		return ErrNotFound
	}
	if competenciaID == "" {
		u.CompetenciaID = nil
	} else {
		u.CompetenciaID = &competenciaID
	}
	u.UpdatedAt = s.now().UTC()
	return nil
}

func (s *InMemoryUserStore) Find(ctx context.Context, id string) (*User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[id]
	if !ok || u.DeletedAt != nil {
		return nil, ErrNotFound
	}
	clone := *u
	return &clone, nil
}

func (s *InMemoryUserStore) FindByEmail(ctx context.Context, email string) (*User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.users {
		if u.Email == email && u.DeletedAt == nil {
			clone := *u
			return &clone, nil
		}
	}
	return nil, ErrNotFound
}

func (s *InMemoryUserStore) FindForLogin(ctx context.Context, email string, kind AccountKind) (*User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.users {
		if u.Email != email || u.DeletedAt != nil {
			continue
		}
		if kind == KindOrganization && u.CompetenciaID == nil {
			continue
		}
		if kind == KindIndividual && u.CompetenciaID != nil {
			continue
		}
		clone := *u
		return &clone, nil
	}
	return nil, ErrNotFound
}

func (s *InMemoryUserStore) ListByCompetencia(ctx context.Context, competenciaID string) ([]*User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var res []*User
	for _, u := range s.users {
		if u.DeletedAt != nil || u.CompetenciaID == nil || *u.CompetenciaID != competenciaID {
			continue
		}
		clone := *u
		res = append(res, &clone)
	}
	return res, nil
}

func (s *InMemoryUserStore) FindMember(ctx context.Context, id, competenciaID string) (*User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[id]
	if !ok || u.DeletedAt != nil || u.CompetenciaID == nil || *u.CompetenciaID != competenciaID {
		return nil, ErrNotFound
	}
	clone := *u
	return &clone, nil
}

func (s *InMemoryUserStore) Update(ctx context.Context, id string, name, passwordHash, passwordSalt *string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok || u.DeletedAt != nil {
		return ErrNotFound
	}
	if name != nil {
		u.Name = *name
	}
	if passwordHash != nil {
		u.PasswordHash = *passwordHash
	}
	if passwordSalt != nil {
		u.PasswordSalt = *passwordSalt
	}
	u.UpdatedAt = s.now().UTC()
	return nil
}

func (s *InMemoryUserStore) SoftDelete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok || u.DeletedAt != nil {
		return ErrNotFound
	}
	now := s.now().UTC()
	u.DeletedAt = &now
	u.UpdatedAt = now
	return nil
}

func (s *InMemoryUserStore) SoftDeleteMember(ctx context.Context, id, competenciaID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok || u.DeletedAt != nil || u.CompetenciaID == nil || *u.CompetenciaID != competenciaID {
		return ErrNotFound
	}
	now := s.now().UTC()
	u.DeletedAt = &now
	u.UpdatedAt = now
	return nil
}

// InMemoryCompetenciaStore keeps the organization catalog in a map.
type InMemoryCompetenciaStore struct {
	mu   sync.RWMutex
	orgs map[string]*Competencia
}

func NewInMemoryCompetenciaStore() *InMemoryCompetenciaStore {
	return &InMemoryCompetenciaStore{orgs: make(map[string]*Competencia)}
}

// Put registers an organization (seed helper for demo mode and tests).
func (s *InMemoryCompetenciaStore) Put(c Competencia) Competencia {
	s.mu.Lock()
	defer s.mu.Unlock()
	if c.ID == "" {
		c.ID = ids.New()
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now().UTC()
		c.UpdatedAt = c.CreatedAt
	}
	clone := c
	s.orgs[c.ID] = &clone
	return c
}

func (s *InMemoryCompetenciaStore) Find(ctx context.Context, id string) (*Competencia, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.orgs[id]
	if !ok {
		return nil, ErrNotFound
	}
	clone := *c
	return &clone, nil
}

func (s *InMemoryCompetenciaStore) List(ctx context.Context) ([]*Competencia, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	res := make([]*Competencia, 0, len(s.orgs))
	for _, c := range s.orgs {
		clone := *c
		res = append(res, &clone)
	}
	return res, nil
}
