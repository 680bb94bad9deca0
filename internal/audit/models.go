// Package audit captures an immutable trail of every state-changing action.
// Events are emitted from domain services and fanned out to a store and
// optional sinks; they are never updated or deleted.
package audit

import (
	"time"

	"github.com/google/uuid"
)

// Action labels what happened.
type Action string

const (
	ActionUserRegistered      Action = "USER_REGISTERED"
	ActionUserLoggedIn        Action = "USER_LOGGED_IN"
	ActionMedicineDeclared    Action = "MEDICINE_DECLARED"
	ActionDeclarationRejected Action = "MEDICINE_DECLARATION_REJECTED"
	ActionMedicineVerified    Action = "MEDICINE_VERIFIED"
	ActionMedicineRejected    Action = "MEDICINE_REJECTED"
	ActionMedicineValidated   Action = "MEDICINE_REGULATORY_VALIDATED"
	ActionMedicineDistributed Action = "MEDICINE_DISTRIBUTED"
	ActionSupplyListed        Action = "SUPPLY_LISTED"
	ActionSupplyDeactivated   Action = "SUPPLY_DEACTIVATED"
)

// Event is a single append-only audit entry. FromStatus is empty for actions
// that create an entity.
type Event struct {
	ID         uuid.UUID
	Timestamp  time.Time
	ActorID    uuid.UUID
	Action     Action
	EntityType string
	EntityID   string
	FromStatus string
	ToStatus   string
	Notes      string
	RequestID  string
	ClientIP   string
	UserAgent  string
}

// Entity types recorded in the trail.
const (
	EntityMedicine = "MEDICINE"
	EntityUser     = "USER"
	EntitySupply   = "ORTHOPEDIC_SUPPLY"
)
