package call

import (
	"errors"
	"sync"
	"time"
)

// Speaker identifies who produced a turn.
type Speaker string

const (
	SpeakerAgent    Speaker = "agent"
	SpeakerCustomer Speaker = "customer"
)

var (
	// ErrSessionNotFound is returned when a call id is unknown to the registry.
	ErrSessionNotFound = errors.New("call not found")
	// ErrSessionClosed is returned when a turn is attempted after the call ended.
	ErrSessionClosed = errors.New("call has ended")
	// ErrEmptyTurnText is returned when a turn carries no content.
	ErrEmptyTurnText = errors.New("turn text required")
)

// Turn is one utterance within a call.
type Turn struct {
	Speaker Speaker   `json:"sender"`
	Text    string    `json:"text"`
	At      time.Time `json:"timestamp"`
}

// Snapshot is a point-in-time copy of a session, safe to hand outside the
// package.
type Snapshot struct {
	ID           string
	CustomerName string
	PhoneNumber  string
	Active       bool
	StartedAt    time.Time
	EndedAt      time.Time // zero unless Active is false
	Turns        []Turn
}

// Session holds the state of one call. All mutation goes through appendTurn
// and close; both are package-private so the turn protocol in Orchestrator
// is the only writer.
type Session struct {
	id           string
	customerName string
	phoneNumber  string
	startedAt    time.Time
	now          func() time.Time

	// turnMu serializes whole turns: at most one HandleTurn runs against a
	// session at a time. It is never held by readers.
	turnMu sync.Mutex

	// mu guards the fields below. It is held only around field access, never
	// across a response-source call.
	mu      sync.Mutex
	turns   []Turn
	active  bool
	endedAt time.Time
}

func (s *Session) ID() string           { return s.id }
func (s *Session) CustomerName() string { return s.customerName }
func (s *Session) PhoneNumber() string  { return s.phoneNumber }
func (s *Session) StartedAt() time.Time { return s.startedAt }

// Active reports whether the call can still accept turns.
func (s *Session) Active() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active
}

// EndedAt returns the end timestamp; ok is false while the call is active.
func (s *Session) EndedAt() (t time.Time, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.active {
		return time.Time{}, false
	}
	return s.endedAt, true
}

// Turns returns a copy of the transcript in chronological order.
func (s *Session) Turns() []Turn {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Turn, len(s.turns))
	copy(out, s.turns)
	return out
}

// Snapshot copies the full session state.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	turns := make([]Turn, len(s.turns))
	copy(turns, s.turns)
	return Snapshot{
		ID:           s.id,
		CustomerName: s.customerName,
		PhoneNumber:  s.phoneNumber,
		Active:       s.active,
		StartedAt:    s.startedAt,
		EndedAt:      s.endedAt,
		Turns:        turns,
	}
}

// appendTurn records an utterance. Timestamps are clamped so they never run
// backwards within a transcript.
func (s *Session) appendTurn(speaker Speaker, text string) (Turn, error) {
	if text == "" {
		return Turn{}, ErrEmptyTurnText
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.active {
		return Turn{}, ErrSessionClosed
	}
	at := s.now()
	if n := len(s.turns); n > 0 && at.Before(s.turns[n-1].At) {
		at = s.turns[n-1].At
	}
	t := Turn{Speaker: speaker, Text: text, At: at}
	s.turns = append(s.turns, t)
	return t, nil
}

// close ends the call. Calling it again is a no-op: the first end timestamp
// wins.
func (s *Session) close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.active {
		return
	}
	s.active = false
	s.endedAt = s.now()
}
