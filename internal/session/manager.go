package session

import (
	"context"
	"sync"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Manager owns at most one live session per user. Starting a new session
// discards and tears down whatever session the user had before, so timers
// never outlive the screen that created them.
type Manager struct {
	mu       sync.Mutex
	store    Store
	sessions map[primitive.ObjectID]*Session

	// onRestComplete, when set, receives every expired rest countdown
	// together with the owning user — the integration point for push/audio
	// cues.
	onRestComplete func(userID primitive.ObjectID, key string)
}

// NewManager creates an empty session manager over the given store.
func NewManager(store Store, onRestComplete func(userID primitive.ObjectID, key string)) *Manager {
	return &Manager{
		store:          store,
		sessions:       make(map[primitive.ObjectID]*Session),
		onRestComplete: onRestComplete,
	}
}

// Start loads a routine into a fresh workout session for the user and starts
// its tickers. Any previous session of the user is discarded first.
func (m *Manager) Start(ctx context.Context, userID, routineID primitive.ObjectID) (*Session, error) {
	sess := m.replace(userID, ModeWorkout)
	if err := sess.Load(ctx, routineID); err != nil {
		m.remove(userID, sess)
		return nil, err
	}
	sess.Run()
	return sess, nil
}

// StartEmpty begins a routine-less workout session for the user.
func (m *Manager) StartEmpty(userID primitive.ObjectID, title string) (*Session, error) {
	sess := m.replace(userID, ModeWorkout)
	if err := sess.StartEmpty(title); err != nil {
		m.remove(userID, sess)
		return nil, err
	}
	sess.Run()
	return sess, nil
}

// StartEdit loads a routine into an edit session: the same machine without
// the elapsed clock, countdowns and Finish.
func (m *Manager) StartEdit(ctx context.Context, userID, routineID primitive.ObjectID) (*Session, error) {
	sess := m.replace(userID, ModeRoutineEdit)
	if err := sess.Load(ctx, routineID); err != nil {
		m.remove(userID, sess)
		return nil, err
	}
	return sess, nil
}

// Get returns the user's live session, if any.
func (m *Manager) Get(userID primitive.ObjectID) (*Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	sess, ok := m.sessions[userID]
	return sess, ok
}

// Release drops the user's session from the manager after discarding it.
func (m *Manager) Release(userID primitive.ObjectID) {
	m.mu.Lock()
	sess, ok := m.sessions[userID]
	delete(m.sessions, userID)
	m.mu.Unlock()
	if ok {
		sess.Discard()
	}
}

// Remove forgets a finished session without touching its state.
func (m *Manager) Remove(userID primitive.ObjectID) {
	m.mu.Lock()
	delete(m.sessions, userID)
	m.mu.Unlock()
}

// Shutdown tears every live session down. Used on server stop.
func (m *Manager) Shutdown() {
	m.mu.Lock()
	sessions := make([]*Session, 0, len(m.sessions))
	for _, sess := range m.sessions {
		sessions = append(sessions, sess)
	}
	m.sessions = make(map[primitive.ObjectID]*Session)
	m.mu.Unlock()

	for _, sess := range sessions {
		sess.Close()
	}
}

// replace installs a fresh session for the user, tearing down the previous
// one if present.
func (m *Manager) replace(userID primitive.ObjectID, mode Mode) *Session {
	var onComplete func(key string)
	if m.onRestComplete != nil {
		cb := m.onRestComplete
		onComplete = func(key string) { cb(userID, key) }
	}
	sess := New(m.store, userID, mode, onComplete)

	m.mu.Lock()
	prev := m.sessions[userID]
	m.sessions[userID] = sess
	m.mu.Unlock()

	if prev != nil {
		prev.Discard()
	}
	return sess
}

// remove uninstalls a session that failed to start, but only if it is still
// the user's current one.
func (m *Manager) remove(userID primitive.ObjectID, sess *Session) {
	m.mu.Lock()
	if m.sessions[userID] == sess {
		delete(m.sessions, userID)
	}
	m.mu.Unlock()
	sess.Close()
}
