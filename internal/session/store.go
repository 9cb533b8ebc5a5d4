package session

import "sync"

// Store keeps one session per user id. Sessions for different users are fully
// independent; events for the same user must be applied through Update, which
// serializes them on a per-user lock.
type Store struct {
	mu      sync.RWMutex
	entries map[int64]*entry
}

type entry struct {
	mu   sync.Mutex
	sess Session
}

// NewStore constructs an empty in-memory session store.
func NewStore() *Store {
	return &Store{entries: make(map[int64]*entry)}
}

func (s *Store) entryFor(userID int64) *entry {
	s.mu.RLock()
	e, ok := s.entries[userID]
	s.mu.RUnlock()
	if ok {
		return e
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if e, ok = s.entries[userID]; ok {
		return e
	}
	e = &entry{sess: NewIdle()}
	s.entries[userID] = e
	return e
}

// Get returns the user's session, creating an idle one if absent.
func (s *Store) Get(userID int64) Session {
	e := s.entryFor(userID)
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.sess
}

// Put atomically replaces the user's session.
func (s *Store) Put(userID int64, sess Session) {
	e := s.entryFor(userID)
	e.mu.Lock()
	defer e.mu.Unlock()
	e.sess = sess
}

// Update applies fn to the user's session while holding that user's lock, so
// two in-flight events for the same user can never interleave. The session is
// replaced with fn's result even when fn returns an error, which lets callers
// reset a corrupted session and still surface the failure.
func (s *Store) Update(userID int64, fn func(Session) (Session, error)) error {
	e := s.entryFor(userID)
	e.mu.Lock()
	defer e.mu.Unlock()
	next, err := fn(e.sess)
	e.sess = next
	return err
}

// InProgress reports whether the user currently has an active dialog.
func (s *Store) InProgress(userID int64) bool {
	s.mu.RLock()
	e, ok := s.entries[userID]
	s.mu.RUnlock()
	if !ok {
		return false
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.sess.InProgress()
}

// Reset puts the user back to an idle session with an empty draft.
func (s *Store) Reset(userID int64) {
	s.Put(userID, NewIdle())
}
