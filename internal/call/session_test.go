package call

import (
	"errors"
	"testing"
	"time"
)

// testClock returns a clock that replays the given instants, repeating the
// last one forever.
func testClock(times ...time.Time) func() time.Time {
	i := 0
	return func() time.Time {
		t := times[i]
		if i < len(times)-1 {
			i++
		}
		return t
	}
}

func newTestSession(t *testing.T, clock func() time.Time) *Session {
	t.Helper()
	reg := NewRegistry()
	if clock != nil {
		reg.WithClock(clock)
	}
	s, err := reg.Create("Alice", "+15551234", "Hi Alice")
	if err != nil {
		t.Fatalf("create session: %v", err)
	}
	return s
}

func TestCreateSeedsGreeting(t *testing.T) {
	s := newTestSession(t, nil)

	if s.ID() == "" {
		t.Fatal("expected non-empty id")
	}
	if !s.Active() {
		t.Fatal("new session must be active")
	}
	turns := s.Turns()
	if len(turns) != 1 {
		t.Fatalf("expected 1 seeded turn, got %d", len(turns))
	}
	if turns[0].Speaker != SpeakerAgent || turns[0].Text != "Hi Alice" {
		t.Fatalf("unexpected greeting turn: %+v", turns[0])
	}
}

func TestEndedAtSetIffInactive(t *testing.T) {
	s := newTestSession(t, nil)

	if _, ok := s.EndedAt(); ok {
		t.Fatal("active session must not have endedAt")
	}
	s.close()
	if s.Active() {
		t.Fatal("session still active after close")
	}
	if _, ok := s.EndedAt(); !ok {
		t.Fatal("closed session must have endedAt")
	}
}

func TestCloseIsIdempotent(t *testing.T) {
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	s := newTestSession(t, testClock(base, base.Add(time.Second), base.Add(2*time.Second)))

	s.close()
	first, _ := s.EndedAt()
	s.close()
	second, _ := s.EndedAt()
	if !first.Equal(second) {
		t.Fatalf("endedAt overwritten: %v vs %v", first, second)
	}
}

func TestAppendOnClosedFails(t *testing.T) {
	s := newTestSession(t, nil)
	s.close()

	if _, err := s.appendTurn(SpeakerCustomer, "hello?"); !errors.Is(err, ErrSessionClosed) {
		t.Fatalf("expected ErrSessionClosed, got %v", err)
	}
	if len(s.Turns()) != 1 {
		t.Fatalf("closed session transcript changed: %d turns", len(s.Turns()))
	}
}

func TestAppendRejectsEmptyText(t *testing.T) {
	s := newTestSession(t, nil)
	if _, err := s.appendTurn(SpeakerCustomer, ""); !errors.Is(err, ErrEmptyTurnText) {
		t.Fatalf("expected ErrEmptyTurnText, got %v", err)
	}
}

func TestTimestampsNeverRunBackwards(t *testing.T) {
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	// The clock jumps backwards between the second and third reading.
	s := newTestSession(t, testClock(base, base.Add(time.Second), base.Add(-time.Minute), base.Add(2*time.Second)))

	for _, text := range []string{"one", "two", "three"} {
		if _, err := s.appendTurn(SpeakerCustomer, text); err != nil {
			t.Fatalf("append %q: %v", text, err)
		}
	}

	turns := s.Turns()
	for i := 1; i < len(turns); i++ {
		if turns[i].At.Before(turns[i-1].At) {
			t.Fatalf("turn %d timestamp %v before turn %d timestamp %v", i, turns[i].At, i-1, turns[i-1].At)
		}
	}
}

func TestRegistryGetUnknownID(t *testing.T) {
	reg := NewRegistry()
	if _, err := reg.Get("nope"); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound, got %v", err)
	}
}

func TestRegistryCreatesUniqueIDs(t *testing.T) {
	reg := NewRegistry()
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		s, err := reg.Create("Bob", "+1555", "hi")
		if err != nil {
			t.Fatalf("create: %v", err)
		}
		if seen[s.ID()] {
			t.Fatalf("duplicate id %s", s.ID())
		}
		seen[s.ID()] = true
	}
	if reg.Count() != 100 {
		t.Fatalf("expected 100 sessions, got %d", reg.Count())
	}
}

func TestSnapshotIsACopy(t *testing.T) {
	s := newTestSession(t, nil)
	snap := s.Snapshot()
	snap.Turns[0].Text = "mutated"
	if s.Turns()[0].Text != "Hi Alice" {
		t.Fatal("snapshot mutation leaked into session")
	}
}
