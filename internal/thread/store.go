package thread

import (
	"context"
	"errors"
)

var (
	ErrNotFound     = errors.New("thread: not found")
	ErrForbidden    = errors.New("thread: forbidden")
	ErrInvalidInput = errors.New("thread: invalid input")
)

// Store describes thread persistence. Lookups skip soft-deleted rows.
type Store interface {
	Create(ctx context.Context, t *Thread) error
	Find(ctx context.Context, id string) (*Thread, error)
	// ListByAuthor returns the active threads opened by the user, optionally
	// filtered by exact title.
	ListByAuthor(ctx context.Context, userID, title string) ([]*Thread, error)
	// ListByCompetencia returns the active threads of one organization,
	// optionally filtered by exact title.
	ListByCompetencia(ctx context.Context, competenciaID, title string) ([]*Thread, error)
	// Update persists Title, Status and CompetenciaID of the thread.
	Update(ctx context.Context, t *Thread) error
	SoftDelete(ctx context.Context, id string) error
}

// MessageStore persists thread messages. ListByThread returns them in
// insertion order; that order is the replay order for connecting sockets.
type MessageStore interface {
	Create(ctx context.Context, m *Message) error
	ListByThread(ctx context.Context, threadID string) ([]Message, error)
}
