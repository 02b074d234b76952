package store

import "sync"

// AuthID is one authentication principal, (scheme, id).
type AuthID struct {
	Scheme string
	ID     string
}

// SessionTable maps session id to timeout-in-milliseconds, with a
// companion auth table keyed by the same session id. The two are kept as
// separate orderedMaps — matching the source system's separate session
// and auth tables — but combined behind one SessionTable so callers
// acquire both locks in the order spec.md §5 requires: session before
// auth, consistently, to avoid deadlocking against other components that
// follow the same order.
type SessionTable struct {
	sessions *orderedMap[int64, int64]
	auth     *orderedMap[int64, []AuthID]

	mu      sync.Mutex
	nextID  int64
}

// NewSessionTable returns an empty session table. Session ids are
// assigned starting from 1.
func NewSessionTable() *SessionTable {
	return &SessionTable{
		sessions: newOrderedMap[int64, int64](),
		auth:     newOrderedMap[int64, []AuthID](),
		nextID:   1,
	}
}

// NextSessionID atomically allocates and returns the next session id
// without creating a session entry for it. The snapshot session
// serializer does not allocate; it samples PeekNextSessionID instead.
func (t *SessionTable) NextSessionID() int64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	id := t.nextID
	t.nextID++
	return id
}

// PeekNextSessionID returns the next id that would be allocated, without
// allocating it.
func (t *SessionTable) PeekNextSessionID() int64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.nextID
}

// SetNextSessionID installs id as the next id to allocate, used when
// restoring a snapshot that recorded the counter separately from the
// session entries themselves.
func (t *SessionTable) SetNextSessionID(id int64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.nextID = id
}

// CreateSession installs a session with the given timeout, using an
// explicit id (as restored from a snapshot) rather than allocating one.
func (t *SessionTable) CreateSession(id int64, timeoutMS int64) {
	t.sessions.set(id, timeoutMS)
}

// SetAuth replaces the auth principal list for a session.
func (t *SessionTable) SetAuth(id int64, auth []AuthID) {
	t.auth.set(id, auth)
}

// Timeout returns the timeout for a session, if it exists.
func (t *SessionTable) Timeout(id int64) (int64, bool) {
	return t.sessions.get(id)
}

// Auth returns the auth principal list for a session. Sessions with no
// recorded auth return an empty, non-nil slice.
func (t *SessionTable) Auth(id int64) []AuthID {
	auth, ok := t.auth.get(id)
	if !ok {
		return []AuthID{}
	}
	return auth
}

// Remove deletes a session and its auth entry.
func (t *SessionTable) Remove(id int64) {
	t.sessions.delete(id)
	t.auth.delete(id)
}

// Len reports the number of sessions.
func (t *SessionTable) Len() int {
	return t.sessions.len()
}

// ForEach iterates sessions in insertion order, calling fn with each
// session's timeout and auth list. It holds the session lock for the
// whole call and, per spec.md §5's lock ordering, only then touches the
// auth table — mirroring the source system's session-then-auth
// discipline.
func (t *SessionTable) ForEach(fn func(id int64, timeoutMS int64, auth []AuthID)) {
	t.sessions.forEach(func(id int64, timeoutMS int64) {
		fn(id, timeoutMS, t.Auth(id))
	})
}
