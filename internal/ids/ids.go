// Package ids generates the identifiers used for users, competências,
// reclamações and mensagens. ULIDs sort by creation time, which the message
// store relies on for insertion-order history reads.
package ids

import (
	"crypto/rand"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

var (
	entropyMu sync.Mutex
	entropy   = ulid.Monotonic(rand.Reader, 0)
)

// New returns a fresh ULID. Callers within one process get monotonically
// increasing ids even inside the same millisecond.
func New() string {
	entropyMu.Lock()
	defer entropyMu.Unlock()
	return ulid.MustNew(ulid.Timestamp(time.Now()), entropy).String()
}
