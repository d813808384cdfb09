package registry

import (
	"errors"
	"fmt"
	"sync"
	"testing"
)

// fakeConn records delivered payloads and can be told to fail.
type fakeConn struct {
	mu       sync.Mutex
	payloads [][]byte
	fail     bool
}

func (c *fakeConn) Send(payload []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.fail {
		return errors.New("send failed")
	}
	c.payloads = append(c.payloads, payload)
	return nil
}

func (c *fakeConn) delivered() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.payloads)
}

func TestEnrollThenRemoveLeavesEmptySet(t *testing.T) {
	r := New()
	c := &fakeConn{}

	r.Enroll("t1", c)
	if got := r.Count("t1"); got != 1 {
		t.Fatalf("Count after enroll = %d", got)
	}
	r.Remove("t1", c)
	if got := r.Count("t1"); got != 0 {
		t.Fatalf("Count after remove = %d", got)
	}

	// Removing a non-member and broadcasting to an empty thread are no-ops.
	r.Remove("t1", c)
	r.Remove("never-seen", c)
	r.Broadcast("t1", []byte("x"))
	if c.delivered() != 0 {
		t.Fatalf("removed connection received %d payloads", c.delivered())
	}
}

func TestBroadcastReachesOnlyEnrolledThread(t *testing.T) {
	r := New()
	a1, a2 := &fakeConn{}, &fakeConn{}
	b := &fakeConn{}

	r.Enroll("thread-a", a1)
	r.Enroll("thread-a", a2)
	r.Enroll("thread-b", b)

	r.Broadcast("thread-a", []byte("hello"))

	if a1.delivered() != 1 || a2.delivered() != 1 {
		t.Fatalf("thread-a members got %d/%d payloads", a1.delivered(), a2.delivered())
	}
	if b.delivered() != 0 {
		t.Fatalf("thread-b member got %d payloads", b.delivered())
	}
}

func TestBroadcastEvictsFailingConnection(t *testing.T) {
	r := New()
	healthy := &fakeConn{}
	broken := &fakeConn{fail: true}

	r.Enroll("t1", healthy)
	r.Enroll("t1", broken)

	r.Broadcast("t1", []byte("one"))
	if healthy.delivered() != 1 {
		t.Fatalf("healthy connection missed the broadcast: %d", healthy.delivered())
	}
	if got := r.Count("t1"); got != 1 {
		t.Fatalf("failing connection not evicted, count = %d", got)
	}

	r.Broadcast("t1", []byte("two"))
	if healthy.delivered() != 2 {
		t.Fatalf("second broadcast lost: %d", healthy.delivered())
	}
}

func TestConcurrentEnrollRemoveBroadcast(t *testing.T) {
	r := New()
	const threads = 8
	const workers = 16

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < 200; i++ {
				threadID := fmt.Sprintf("t%d", i%threads)
				c := &fakeConn{}
				r.Enroll(threadID, c)
				r.Broadcast(threadID, []byte("m"))
				r.Remove(threadID, c)
			}
		}(w)
	}
	wg.Wait()

	for i := 0; i < threads; i++ {
		threadID := fmt.Sprintf("t%d", i)
		if got := r.Count(threadID); got != 0 {
			t.Fatalf("thread %s leaked %d connections", threadID, got)
		}
	}
}
