// Package registry tracks the live WebSocket subscribers of each complaint
// thread and fans written messages out to them. It is process-local state:
// nothing here survives a restart and nothing is shared across processes.
package registry

import (
	"hash/fnv"
	"sync"
)

// Conn is one live subscriber connection. Send must be safe for concurrent
// use by the registry; a non-nil error marks the connection dead.
type Conn interface {
	Send(payload []byte) error
}

const shardCount = 32

// Registry maps thread ids to their enrolled connections. The map is sharded
// by thread id so operations on different threads do not contend on a single
// lock; operations on the same thread serialize on that thread's shard.
type Registry struct {
	shards [shardCount]shard
}

type shard struct {
	mu      sync.RWMutex
	members map[string]map[Conn]struct{}
}

// New initialises an empty registry.
func New() *Registry {
	r := &Registry{}
	for i := range r.shards {
		r.shards[i].members = make(map[string]map[Conn]struct{})
	}
	return r
}

func (r *Registry) shard(threadID string) *shard {
	h := fnv.New32a()
	_, _ = h.Write([]byte(threadID))
	return &r.shards[h.Sum32()%shardCount]
}

// Enroll adds the connection to the thread's member set.
func (r *Registry) Enroll(threadID string, c Conn) {
	s := r.shard(threadID)
	s.mu.Lock()
	defer s.mu.Unlock()
	set, ok := s.members[threadID]
	if !ok {
		set = make(map[Conn]struct{})
		s.members[threadID] = set
	}
	set[c] = struct{}{}
}

// Remove drops the connection from the thread's member set. Removing a
// connection that was never enrolled is a no-op, so teardown paths do not
// need to track whether enrollment completed.
func (r *Registry) Remove(threadID string, c Conn) {
	s := r.shard(threadID)
	s.mu.Lock()
	defer s.mu.Unlock()
	set, ok := s.members[threadID]
	if !ok {
		return
	}
	delete(set, c)
	if len(set) == 0 {
		delete(s.members, threadID)
	}
}

// Broadcast sends the payload to every connection currently enrolled on the
// thread. Sends are best-effort: a failure on one connection does not block
// delivery to the rest, and the failing connection is evicted.
func (r *Registry) Broadcast(threadID string, payload []byte) {
	s := r.shard(threadID)

	s.mu.RLock()
	set := s.members[threadID]
	conns := make([]Conn, 0, len(set))
	for c := range set {
		conns = append(conns, c)
	}
	s.mu.RUnlock()

	var dead []Conn
	for _, c := range conns {
		if err := c.Send(payload); err != nil {
			dead = append(dead, c)
		}
	}
	for _, c := range dead {
		r.Remove(threadID, c)
	}
}

// Count reports how many connections are enrolled on the thread.
func (r *Registry) Count(threadID string) int {
	s := r.shard(threadID)
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.members[threadID])
}
