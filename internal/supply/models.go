// Package supply covers donated or resold orthopedic supplies. Supplies are
// independent of the medicine workflow graph: they carry a condition grade
// instead of statuses and are soft-deactivated rather than deleted.
package supply

import (
	"time"

	"github.com/google/uuid"
)

// Condition grades the physical state of a supply.
type Condition string

const (
	ConditionNew      Condition = "NEW"
	ConditionVeryGood Condition = "VERY_GOOD"
	ConditionGood     Condition = "GOOD"
)

// Valid reports whether c is a known condition.
func (c Condition) Valid() bool {
	switch c {
	case ConditionNew, ConditionVeryGood, ConditionGood:
		return true
	}
	return false
}

// Supply is one listed orthopedic item.
type Supply struct {
	ID          uuid.UUID
	DonorID     uuid.UUID
	Name        string
	Description string
	Condition   Condition
	Quantity    int
	ForSale     bool
	// Price is set iff ForSale is true.
	Price         float64
	Active        bool
	DeactivatedAt *time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

func (s *Supply) Clone() *Supply {
	out := *s
	if s.DeactivatedAt != nil {
		t := *s.DeactivatedAt
		out.DeactivatedAt = &t
	}
	return &out
}
