package thread

import (
	"context"
	"fmt"

	"ouvidoria.app/internal/auth"
)

// Service implements the role-dependent thread operations. Authorization
// decisions switch on the principal variant: organization members see and
// manage every thread of their competência, individuals only their own.
type Service struct {
	threads  Store
	messages MessageStore
}

func NewService(threads Store, messages MessageStore) *Service {
	return &Service{threads: threads, messages: messages}
}

// List returns the threads visible to the principal.
func (s *Service) List(ctx context.Context, p auth.Principal, title string) ([]*Thread, error) {
	switch principal := p.(type) {
	case auth.OrganizationMember:
		return s.threads.ListByCompetencia(ctx, principal.CompetenciaID, title)
	case auth.Individual:
		return s.threads.ListByAuthor(ctx, principal.Profile.ID, title)
	default:
		return nil, auth.ErrUnauthorized
	}
}

// Create opens a new complaint thread. Organization accounts cannot author
// complaints; the initial status is always aberto.
func (s *Service) Create(ctx context.Context, p auth.Principal, title, competenciaID string) (*Thread, error) {
	individual, ok := p.(auth.Individual)
	if !ok {
		return nil, ErrForbidden
	}
	if title == "" || competenciaID == "" {
		return nil, fmt.Errorf("%w: title and competenciaId are required", ErrInvalidInput)
	}
	t := &Thread{
		Title:         title,
		Status:        StatusAberto,
		CompetenciaID: competenciaID,
		UserID:        individual.Profile.ID,
	}
	if err := s.threads.Create(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

// Get returns one thread by id.
func (s *Service) Get(ctx context.Context, id string) (*Thread, error) {
	return s.threads.Find(ctx, id)
}

// Update mutates a thread according to the caller's role: an organization
// member may change the status of threads under its competência, the
// authoring individual may retitle or reassign the thread.
type Update struct {
	Status        *Status
	Title         *string
	CompetenciaID *string
}

func (s *Service) Update(ctx context.Context, p auth.Principal, id string, upd Update) (*Thread, error) {
	t, err := s.threads.Find(ctx, id)
	if err != nil {
		return nil, err
	}

	switch principal := p.(type) {
	case auth.OrganizationMember:
		if t.CompetenciaID != principal.CompetenciaID {
			// Threads of other organizations are invisible, not forbidden.
			return nil, ErrNotFound
		}
		if upd.Status == nil || upd.Title != nil || upd.CompetenciaID != nil {
			return nil, ErrForbidden
		}
		if !upd.Status.Valid() {
			return nil, fmt.Errorf("%w: unknown status %q", ErrInvalidInput, *upd.Status)
		}
		t.Status = *upd.Status
	case auth.Individual:
		if t.UserID != principal.Profile.ID {
			return nil, ErrForbidden
		}
		if upd.Status != nil {
			return nil, ErrForbidden
		}
		if upd.Title != nil {
			t.Title = *upd.Title
		}
		if upd.CompetenciaID != nil {
			t.CompetenciaID = *upd.CompetenciaID
		}
	default:
		return nil, auth.ErrUnauthorized
	}

	if err := s.threads.Update(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

// Delete soft-deletes a thread. Only the authoring user may do it; everyone
// else gets ErrForbidden when the thread exists and ErrNotFound otherwise.
func (s *Service) Delete(ctx context.Context, p auth.Principal, id string) error {
	t, err := s.threads.Find(ctx, id)
	if err != nil {
		return err
	}
	if t.UserID != p.Snapshot().ID {
		return ErrForbidden
	}
	return s.threads.SoftDelete(ctx, id)
}

// Messages returns the thread's full history. An empty history reads as
// ErrNotFound on the REST surface.
func (s *Service) Messages(ctx context.Context, threadID string) ([]Message, error) {
	msgs, err := s.messages.ListByThread(ctx, threadID)
	if err != nil {
		return nil, err
	}
	if len(msgs) == 0 {
		return nil, ErrNotFound
	}
	return msgs, nil
}

// History loads the thread and its full message set for the socket replay
// handshake. Unlike Messages, an empty history is fine here: a connecting
// client simply receives the Reclamacao frame and nothing else.
func (s *Service) History(ctx context.Context, threadID string) (*Thread, []Message, error) {
	t, err := s.threads.Find(ctx, threadID)
	if err != nil {
		return nil, nil, err
	}
	msgs, err := s.messages.ListByThread(ctx, threadID)
	if err != nil {
		return nil, nil, err
	}
	return t, msgs, nil
}
