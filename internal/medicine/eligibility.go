package medicine

import (
	"fmt"
	"time"
)

// Eligibility is the outcome of evaluating a record for redistribution.
type Eligibility struct {
	Eligible bool
	Reasons  []string
}

// Disqualifying and affirmative reason strings. Stable so clients and tests
// can match on them.
const (
	ReasonImported = "imported medicines are not eligible for redistribution"
	ReasonExpired  = "medicine has expired"
	ReasonEligible = "approved for redistribution and within expiry"
)

// Evaluate computes redistribution eligibility from the record's current
// fields alone. It is deterministic and side-effect free: the same record and
// evaluation time always produce the same result. All applicable
// disqualifiers are collected rather than short-circuiting on the first, and
// the import check defends independently even though the transition engine
// should never let an imported medicine reach APPROVED_FOR_REDISTRIBUTION.
func Evaluate(rec *Record, now time.Time) Eligibility {
	var reasons []string

	if rec.Status != StatusApprovedForRedistribution {
		reasons = append(reasons, fmt.Sprintf("medicine is not approved for redistribution (status %s)", rec.Status))
	}
	if rec.IsImported {
		reasons = append(reasons, ReasonImported)
	}
	if rec.IsExpired(now) {
		reasons = append(reasons, ReasonExpired)
	}

	if len(reasons) > 0 {
		return Eligibility{Eligible: false, Reasons: reasons}
	}
	return Eligibility{Eligible: true, Reasons: []string{ReasonEligible}}
}
