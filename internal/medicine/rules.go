package medicine

import "time"

// Override reasons recorded in the audit trail when a safety block forces the
// regulatory outcome.
const (
	OverrideImported = "imported medicines are blocked from redistribution"
	OverrideExpired  = "medicine expired before regulatory review"
)

// ApplyRegulatoryRules computes the effective outcome of a regulatory review.
// The requested status is taken as-is unless an automatic safety block
// applies: imported or expired medicines are forced to REJECTED_REGULATORY
// regardless of the requested decision. Both override reasons are reported
// when both apply, but the record still lands on exactly one terminal status.
// Pure domain logic - no I/O, no side effects.
func ApplyRegulatoryRules(rec *Record, requested Status, now time.Time) (Status, []string) {
	var overrides []string
	if rec.IsImported {
		overrides = append(overrides, OverrideImported)
	}
	if rec.IsExpired(now) {
		overrides = append(overrides, OverrideExpired)
	}
	if len(overrides) > 0 {
		return StatusRejectedRegulatory, overrides
	}
	return requested, nil
}
