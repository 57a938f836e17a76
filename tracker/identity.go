package tracker

import (
	"fmt"
	"math/rand"
	"strings"
	"time"
)

// SessionID returns the session identifier, generating and persisting one on
// first use. The value is stable for the life of the session store.
func (t *Tracker) SessionID() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.sessionID()
}

func (t *Tracker) sessionID() string {
	if id, ok := t.session.Get(sessionIDKey); ok && id != "" {
		return id
	}
	id := newID("mz_", t.now())
	t.session.Set(sessionIDKey, id)
	return id
}

// UserID returns the durable user identifier with the same read-or-create
// contract as SessionID, backed by the durable store so it survives the
// session.
func (t *Tracker) UserID() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.userID()
}

func (t *Tracker) userID() string {
	if id, ok := t.durable.Get(userIDKey); ok && id != "" {
		return id
	}
	id := newID("user_", t.now())
	t.durable.Set(userIDKey, id)
	return id
}

// newID builds an opaque identifier in the form
// "<prefix><epoch-ms>_<random-base36>".
func newID(prefix string, now time.Time) string {
	return fmt.Sprintf("%s%d_%s", prefix, now.UnixMilli(), randomBase36(9))
}

func randomBase36(length int) string {
	const chars = "0123456789abcdefghijklmnopqrstuvwxyz"
	var b strings.Builder
	b.Grow(length)
	for i := 0; i < length; i++ {
		b.WriteByte(chars[rand.Intn(len(chars))])
	}
	return b.String()
}
