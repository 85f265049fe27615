package call

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Registry owns every live session, keyed by call id. Creation and lookup
// only; sessions live for the registry's lifetime (no eviction, no
// persistence).
type Registry struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	now      func() time.Time
}

func NewRegistry() *Registry {
	return &Registry{
		sessions: make(map[string]*Session),
		now:      time.Now,
	}
}

// WithClock replaces the registry clock. Sessions created afterwards stamp
// turns with it; intended for tests.
func (r *Registry) WithClock(now func() time.Time) *Registry {
	r.now = now
	return r
}

// Create makes a new active session with a fresh 128-bit random id and seeds
// the transcript with the agent greeting.
func (r *Registry) Create(customerName, phoneNumber, greeting string) (*Session, error) {
	s := &Session{
		id:           uuid.NewString(),
		customerName: customerName,
		phoneNumber:  phoneNumber,
		now:          r.now,
		active:       true,
	}
	s.startedAt = r.now()
	if _, err := s.appendTurn(SpeakerAgent, greeting); err != nil {
		return nil, err
	}

	r.mu.Lock()
	r.sessions[s.id] = s
	r.mu.Unlock()
	return s, nil
}

// Get looks up a session by id.
func (r *Registry) Get(id string) (*Session, error) {
	r.mu.RLock()
	s, ok := r.sessions[id]
	r.mu.RUnlock()
	if !ok {
		return nil, ErrSessionNotFound
	}
	return s, nil
}

// Count reports the number of sessions ever created and still held.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}
