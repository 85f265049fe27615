package call

import "strings"

// endPhrases are the customer utterances that terminate a call. Matching is
// case-insensitive substring; the set is part of the observable contract.
var endPhrases = []string{
	"not interested",
	"no thanks",
	"goodbye",
	"stop calling",
	"remove me",
	"don't call",
	"not now",
	"maybe later",
}

// EndDetector decides from customer text whether the call should end.
type EndDetector struct {
	phrases []string
}

func NewEndDetector() *EndDetector {
	return &EndDetector{phrases: endPhrases}
}

// ShouldEnd is a pure predicate over the customer's words; it never looks at
// agent replies.
func (d *EndDetector) ShouldEnd(text string) bool {
	lower := strings.ToLower(text)
	for _, p := range d.phrases {
		if strings.Contains(lower, p) {
			return true
		}
	}
	return false
}
