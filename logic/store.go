package logic

import (
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// SessionEntry pairs a session with the form it writes to.
type SessionEntry struct {
	Session *Session
	Form    *FormState
}

// SessionSnapshot is a point-in-time view of a session and its form.
type SessionSnapshot struct {
	Form      FormValues
	Instances []ProductInstance
	Mode      QuotaMode
}

// Snapshot reads the form and the ledger under the session lock. Form
// writes happen under the same lock, so both sides reflect the same
// operation.
func (e SessionEntry) Snapshot() SessionSnapshot {
	var snap SessionSnapshot
	e.Session.view(func() {
		snap.Form = e.Form.Snapshot()
		snap.Instances = e.Session.ledger.Instances()
		snap.Mode = e.Session.field.Mode()
	})
	return snap
}

// SessionStore holds the open form sessions by id.
type SessionStore struct {
	mu       sync.RWMutex
	sessions map[string]SessionEntry
	opts     []SessionOption
	logger   *zap.Logger
}

// NewSessionStore creates a store whose sessions are built with opts.
func NewSessionStore(logger *zap.Logger, opts ...SessionOption) *SessionStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SessionStore{
		sessions: make(map[string]SessionEntry),
		opts:     append([]SessionOption{WithSessionLogger(logger)}, opts...),
		logger:   logger,
	}
}

// Open starts a session with the given guest count.
func (st *SessionStore) Open(guestCount int) SessionEntry {
	id := uuid.NewString()
	form := NewFormState()
	s := NewSession(id, form, st.opts...)
	if guestCount > 0 {
		s.SetGuests(guestCount)
	}
	entry := SessionEntry{Session: s, Form: form}

	st.mu.Lock()
	st.sessions[id] = entry
	st.mu.Unlock()

	st.logger.Info("session opened", zap.String("session_id", id), zap.Int("guest_count", guestCount))
	return entry
}

// Get looks up a session.
func (st *SessionStore) Get(id string) (SessionEntry, bool) {
	st.mu.RLock()
	defer st.mu.RUnlock()
	e, ok := st.sessions[id]
	return e, ok
}

// Close drops a session. It reports whether the session existed.
func (st *SessionStore) Close(id string) bool {
	st.mu.Lock()
	_, ok := st.sessions[id]
	delete(st.sessions, id)
	st.mu.Unlock()
	if ok {
		st.logger.Info("session closed", zap.String("session_id", id))
	}
	return ok
}

// Len returns the number of open sessions.
func (st *SessionStore) Len() int {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return len(st.sessions)
}
