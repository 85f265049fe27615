// Package response maps a customer utterance to agent reply text. Sources
// never return errors from Respond: every failure mode degrades to a reply
// value the caller can hand straight to the customer.
package response

import "context"

// Outcome classifies how a reply was produced.
type Outcome string

const (
	// OutcomeOK: the source produced a real answer.
	OutcomeOK Outcome = "ok"
	// OutcomeDegraded: the source ran but fell back to a fixed message.
	OutcomeDegraded Outcome = "degraded"
	// OutcomeUnavailable: the source is not configured at all.
	OutcomeUnavailable Outcome = "unavailable"
)

// Reply is the result of one Respond call. Text is always non-empty and
// customer-presentable regardless of Outcome.
type Reply struct {
	Text    string
	Outcome Outcome
	// Reason carries detail for degraded/unavailable replies; empty on OK.
	Reason string
}

// Source is the strategy that turns a customer message into an agent reply.
type Source interface {
	Respond(ctx context.Context, message string) Reply
	// Available reports whether the source is configured to answer at all.
	Available() bool
	// UnavailableReason explains a false Available; empty otherwise.
	UnavailableReason() string
}
