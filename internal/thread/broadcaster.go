package thread

import (
	"context"
	"encoding/json"
	"hash/fnv"
	"sync"
	"time"

	"ouvidoria.app/internal/ids"
	"ouvidoria.app/internal/registry"
)

const broadcasterShards = 32

// Broadcaster persists new messages and fans them out to every connection
// enrolled on the thread, sender included. Persist and broadcast happen under
// a per-thread lock so that, within one thread, broadcast order matches
// persistence order for all messages that pass through this instance.
//
// The timestamp is assigned here, before the insert. Two writers on
// different broadcaster instances (or different processes) can therefore
// persist in an order that disagrees with their timestamps; that race is
// part of the observable contract, not a bug to fix in the store.
type Broadcaster struct {
	messages MessageStore
	registry *registry.Registry
	now      func() time.Time

	locks [broadcasterShards]sync.Mutex
}

func NewBroadcaster(messages MessageStore, reg *registry.Registry) *Broadcaster {
	return &Broadcaster{messages: messages, registry: reg, now: time.Now}
}

// WithClock overrides the timestamp source (tests).
func (b *Broadcaster) WithClock(fn func() time.Time) *Broadcaster {
	if fn != nil {
		b.now = fn
	}
	return b
}

// Publish validates the inbound frame, persists it as a message authored by
// the given user and broadcasts the resulting Mensagem frame.
func (b *Broadcaster) Publish(ctx context.Context, threadID, authorID string, in Inbound) (Message, error) {
	if err := in.Validate(); err != nil {
		return Message{}, err
	}

	lock := &b.locks[b.shard(threadID)]
	lock.Lock()
	defer lock.Unlock()

	m := Message{
		ID:       ids.New(),
		ThreadID: threadID,
		UserID:   authorID,
		Text:     in.Text,
		Image:    in.Image,
		Lat:      in.Lat,
		Lng:      in.Lng,
		DTH:      b.now().UTC(),
	}
	if err := b.messages.Create(ctx, &m); err != nil {
		return Message{}, err
	}

	payload, err := json.Marshal(NewMessageFrame(m))
	if err != nil {
		return Message{}, err
	}
	b.registry.Broadcast(threadID, payload)
	return m, nil
}

func (b *Broadcaster) shard(threadID string) uint32 {
	h := fnv.New32a()
	_, _ = h.Write([]byte(threadID))
	return h.Sum32() % broadcasterShards
}
