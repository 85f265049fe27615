package call

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"ai-sales-agent/internal/response"
)

const greetingFormat = "Hi %s, this is your AI assistant calling about our AI Mastery Bootcamp. Can I share a quick detail with you?"

// Archiver persists a finished call. Failures are logged and swallowed: the
// live registry stays authoritative.
type Archiver interface {
	ArchiveCall(ctx context.Context, snap Snapshot) error
}

// TurnEvent is published to stream subscribers after a turn is recorded.
type TurnEvent struct {
	CallID    string    `json:"call_id"`
	Speaker   Speaker   `json:"sender"`
	Text      string    `json:"text"`
	At        time.Time `json:"timestamp"`
	CallEnded bool      `json:"call_ended"`
}

// TurnResult is what HandleTurn hands back to the transport.
type TurnResult struct {
	Reply     string
	Outcome   response.Outcome
	ShouldEnd bool
}

// Orchestrator composes the registry, the end-of-call detector and an
// injected response source into the per-turn protocol. Sessions transition
// to ended only inside HandleTurn, never externally.
type Orchestrator struct {
	registry *Registry
	detector *EndDetector
	archiver Archiver
	logger   *slog.Logger

	subMu sync.Mutex
	subs  map[string]map[chan TurnEvent]struct{}
}

func NewOrchestrator(registry *Registry, detector *EndDetector, archiver Archiver, logger *slog.Logger) *Orchestrator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Orchestrator{
		registry: registry,
		detector: detector,
		archiver: archiver,
		logger:   logger,
		subs:     make(map[string]map[chan TurnEvent]struct{}),
	}
}

// StartCall creates a session seeded with the agent greeting and returns it
// together with the greeting text for voice playback by the caller.
func (o *Orchestrator) StartCall(customerName, phoneNumber string) (*Session, string, error) {
	if customerName == "" {
		return nil, "", fmt.Errorf("customer name required")
	}
	greeting := fmt.Sprintf(greetingFormat, customerName)
	s, err := o.registry.Create(customerName, phoneNumber, greeting)
	if err != nil {
		return nil, "", err
	}
	o.logger.Info("call started", "call_id", s.ID(), "customer", customerName)
	return s, greeting, nil
}

// Lookup returns the session for a call id.
func (o *Orchestrator) Lookup(callID string) (*Session, error) {
	return o.registry.Get(callID)
}

// HandleTurn runs one exchange against the named call:
//
//  1. look up the session
//  2. reject if the call already ended
//  3. append the customer turn
//  4. ask the source for a reply
//  5. decide end-of-call from the customer's words, not the reply
//  6. append the agent turn
//  7. end the call if step 5 said so
//  8. return the reply and the end flag
//
// End-of-call is evaluated before the agent turn is appended so a finished
// transcript always ends on an agent turn. Turns against the same session
// never interleave; the session's state lock is not held while the source
// runs.
func (o *Orchestrator) HandleTurn(ctx context.Context, callID, customerText string, src response.Source) (TurnResult, error) {
	s, err := o.registry.Get(callID)
	if err != nil {
		return TurnResult{}, err
	}

	s.turnMu.Lock()
	defer s.turnMu.Unlock()

	if !s.Active() {
		return TurnResult{}, ErrSessionClosed
	}

	customerTurn, err := s.appendTurn(SpeakerCustomer, customerText)
	if err != nil {
		return TurnResult{}, err
	}

	reply := src.Respond(ctx, customerText)
	shouldEnd := o.detector.ShouldEnd(customerText)

	agentTurn, err := s.appendTurn(SpeakerAgent, reply.Text)
	if err != nil {
		return TurnResult{}, err
	}

	if shouldEnd {
		s.close()
	}

	o.publish(TurnEvent{CallID: callID, Speaker: customerTurn.Speaker, Text: customerTurn.Text, At: customerTurn.At})
	o.publish(TurnEvent{CallID: callID, Speaker: agentTurn.Speaker, Text: agentTurn.Text, At: agentTurn.At, CallEnded: shouldEnd})

	if shouldEnd {
		o.archive(ctx, s)
	}

	if reply.Outcome != response.OutcomeOK {
		o.logger.Warn("degraded reply", "call_id", callID, "outcome", reply.Outcome, "reason", reply.Reason)
	}

	return TurnResult{Reply: reply.Text, Outcome: reply.Outcome, ShouldEnd: shouldEnd}, nil
}

func (o *Orchestrator) archive(ctx context.Context, s *Session) {
	if o.archiver == nil {
		return
	}
	if err := o.archiver.ArchiveCall(ctx, s.Snapshot()); err != nil {
		o.logger.Error("archive call", "call_id", s.ID(), "err", err)
		return
	}
	o.logger.Info("call archived", "call_id", s.ID())
}

// Subscribe returns a channel of turn events for one call plus an
// unsubscribe func. Slow consumers drop events rather than block the turn
// protocol.
func (o *Orchestrator) Subscribe(callID string) (<-chan TurnEvent, func()) {
	ch := make(chan TurnEvent, 16)
	o.subMu.Lock()
	if o.subs[callID] == nil {
		o.subs[callID] = make(map[chan TurnEvent]struct{})
	}
	o.subs[callID][ch] = struct{}{}
	o.subMu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			o.subMu.Lock()
			delete(o.subs[callID], ch)
			if len(o.subs[callID]) == 0 {
				delete(o.subs, callID)
			}
			o.subMu.Unlock()
			close(ch)
		})
	}
}

func (o *Orchestrator) publish(evt TurnEvent) {
	o.subMu.Lock()
	defer o.subMu.Unlock()
	for ch := range o.subs[evt.CallID] {
		select {
		case ch <- evt:
		default:
		}
	}
}
