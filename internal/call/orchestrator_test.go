package call

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"ai-sales-agent/internal/response"
)

type recordingArchiver struct {
	snaps []Snapshot
	err   error
}

func (a *recordingArchiver) ArchiveCall(_ context.Context, snap Snapshot) error {
	a.snaps = append(a.snaps, snap)
	return a.err
}

func newTestOrchestrator(archiver Archiver) *Orchestrator {
	logger := slog.New(slog.NewTextHandler(new(strings.Builder), nil))
	return NewOrchestrator(NewRegistry(), NewEndDetector(), archiver, logger)
}

func TestStartCallSeedsGreetingTurn(t *testing.T) {
	o := newTestOrchestrator(nil)

	s, greeting, err := o.StartCall("Alice", "+15551234")
	if err != nil {
		t.Fatalf("start call: %v", err)
	}
	if !strings.Contains(greeting, "Alice") {
		t.Fatalf("greeting does not address the customer: %q", greeting)
	}
	turns := s.Turns()
	if len(turns) != 1 || turns[0].Speaker != SpeakerAgent || turns[0].Text != greeting {
		t.Fatalf("greeting not seeded: %+v", turns)
	}
}

func TestStartCallRequiresName(t *testing.T) {
	o := newTestOrchestrator(nil)
	if _, _, err := o.StartCall("", "+15551234"); err == nil {
		t.Fatal("expected error for empty customer name")
	}
}

func TestHandleTurnPriceQuestion(t *testing.T) {
	o := newTestOrchestrator(nil)
	s, _, err := o.StartCall("Alice", "+15551234")
	if err != nil {
		t.Fatalf("start call: %v", err)
	}

	res, err := o.HandleTurn(context.Background(), s.ID(), "How much does it cost?", response.NewRuleBased())
	if err != nil {
		t.Fatalf("handle turn: %v", err)
	}
	if !strings.Contains(res.Reply, "299") {
		t.Fatalf("expected pricing reply, got %q", res.Reply)
	}
	if res.ShouldEnd {
		t.Fatal("price question must not end the call")
	}
	if !s.Active() {
		t.Fatal("session closed after a normal turn")
	}

	turns := s.Turns()
	if len(turns) != 3 {
		t.Fatalf("expected greeting + 2 turns, got %d", len(turns))
	}
	if turns[1].Speaker != SpeakerCustomer || turns[2].Speaker != SpeakerAgent {
		t.Fatalf("turn order wrong: %+v", turns)
	}
}

func TestHandleTurnGoodbyeEndsCall(t *testing.T) {
	arch := &recordingArchiver{}
	o := newTestOrchestrator(arch)
	s, _, err := o.StartCall("Alice", "+15551234")
	if err != nil {
		t.Fatalf("start call: %v", err)
	}

	res, err := o.HandleTurn(context.Background(), s.ID(), "Not interested, goodbye", response.NewRuleBased())
	if err != nil {
		t.Fatalf("handle turn: %v", err)
	}
	if !res.ShouldEnd {
		t.Fatal("goodbye must end the call")
	}
	if s.Active() {
		t.Fatal("session still active after goodbye")
	}

	// The farewell reply is still recorded, so the transcript ends on an
	// agent turn.
	turns := s.Turns()
	if turns[len(turns)-1].Speaker != SpeakerAgent {
		t.Fatalf("transcript must end on agent turn, got %+v", turns[len(turns)-1])
	}

	if len(arch.snaps) != 1 {
		t.Fatalf("expected 1 archived call, got %d", len(arch.snaps))
	}
	if arch.snaps[0].ID != s.ID() || arch.snaps[0].Active {
		t.Fatalf("archived snapshot wrong: %+v", arch.snaps[0])
	}
}

func TestHandleTurnUnknownCall(t *testing.T) {
	o := newTestOrchestrator(nil)
	_, err := o.HandleTurn(context.Background(), "missing", "hello", response.NewRuleBased())
	if !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound, got %v", err)
	}
}

func TestHandleTurnAfterEnd(t *testing.T) {
	o := newTestOrchestrator(nil)
	s, _, err := o.StartCall("Alice", "+15551234")
	if err != nil {
		t.Fatalf("start call: %v", err)
	}
	if _, err := o.HandleTurn(context.Background(), s.ID(), "goodbye", response.NewRuleBased()); err != nil {
		t.Fatalf("handle turn: %v", err)
	}

	_, err = o.HandleTurn(context.Background(), s.ID(), "wait, one more question", response.NewRuleBased())
	if !errors.Is(err, ErrSessionClosed) {
		t.Fatalf("expected ErrSessionClosed, got %v", err)
	}
}

func TestHandleTurnArchiveFailureDoesNotFailTurn(t *testing.T) {
	arch := &recordingArchiver{err: errors.New("disk full")}
	o := newTestOrchestrator(arch)
	s, _, err := o.StartCall("Alice", "+15551234")
	if err != nil {
		t.Fatalf("start call: %v", err)
	}

	res, err := o.HandleTurn(context.Background(), s.ID(), "goodbye", response.NewRuleBased())
	if err != nil {
		t.Fatalf("archive failure leaked into turn: %v", err)
	}
	if !res.ShouldEnd {
		t.Fatal("call should have ended")
	}
}

func TestSubscribeReceivesTurnEvents(t *testing.T) {
	o := newTestOrchestrator(nil)
	s, _, err := o.StartCall("Alice", "+15551234")
	if err != nil {
		t.Fatalf("start call: %v", err)
	}

	ch, unsubscribe := o.Subscribe(s.ID())
	defer unsubscribe()

	if _, err := o.HandleTurn(context.Background(), s.ID(), "goodbye now", response.NewRuleBased()); err != nil {
		t.Fatalf("handle turn: %v", err)
	}

	customer := <-ch
	if customer.Speaker != SpeakerCustomer || customer.Text != "goodbye now" || customer.CallEnded {
		t.Fatalf("unexpected customer event: %+v", customer)
	}
	agent := <-ch
	if agent.Speaker != SpeakerAgent || !agent.CallEnded {
		t.Fatalf("unexpected agent event: %+v", agent)
	}
}

func TestUnsubscribeTwiceIsSafe(t *testing.T) {
	o := newTestOrchestrator(nil)
	s, _, err := o.StartCall("Alice", "+15551234")
	if err != nil {
		t.Fatalf("start call: %v", err)
	}
	_, unsubscribe := o.Subscribe(s.ID())
	unsubscribe()
	unsubscribe()
}
