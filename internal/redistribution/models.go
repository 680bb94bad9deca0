// Package redistribution exposes approved medicines to health facilities and
// records who received them. The medicine status change itself runs through
// the transition engine; this package keeps the request-side bookkeeping.
package redistribution

import (
	"time"

	"github.com/google/uuid"
)

// Proposition is the public face of an approved medicine plus the facility
// request that consumed it.
type Proposition struct {
	ID          uuid.UUID
	MedicineID  uuid.UUID
	RequestedBy uuid.UUID
	RequestedAt time.Time
}
