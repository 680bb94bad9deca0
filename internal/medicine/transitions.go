package medicine

import (
	"fmt"

	dErrors "medcycle/pkg/domain-errors"
)

// transitions is the directed status graph. A status absent from the map is
// terminal. Legality-of-transition lives here; business-rule overrides
// (import/expiry blocks) live in ApplyRegulatoryRules so each is testable on
// its own.
var transitions = map[Status][]Status{
	StatusSubmitted:                 {StatusPharmacyVerified, StatusPharmacyRejected},
	StatusPharmacyVerified:          {StatusApprovedForRedistribution, StatusRestrictedUse, StatusRejectedRegulatory},
	StatusApprovedForRedistribution: {StatusDistributed},
}

// CanTransition reports whether the edge from→to exists in the graph.
func CanTransition(from, to Status) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// NextStatuses returns the statuses reachable from s, nil when s is terminal.
func NextStatuses(s Status) []Status {
	next := transitions[s]
	if len(next) == 0 {
		return nil
	}
	out := make([]Status, len(next))
	copy(out, next)
	return out
}

// Terminal reports whether no engine-driven transition leaves s.
func Terminal(s Status) bool {
	return len(transitions[s]) == 0
}

// Transition validates the edge and returns an InvalidState error naming both
// ends when the move is not in the graph.
func Transition(from, to Status) error {
	if !CanTransition(from, to) {
		return dErrors.New(dErrors.CodeInvalidState,
			fmt.Sprintf("cannot transition medicine from %s to %s", from, to))
	}
	return nil
}

// TargetStatus maps a regulatory decision to the status it requests.
func (d ReviewDecision) TargetStatus() (Status, error) {
	switch d {
	case DecisionApproved:
		return StatusApprovedForRedistribution, nil
	case DecisionRestricted:
		return StatusRestrictedUse, nil
	case DecisionRejected:
		return StatusRejectedRegulatory, nil
	}
	return "", dErrors.New(dErrors.CodeValidation, fmt.Sprintf("unknown regulatory decision %q", d))
}
