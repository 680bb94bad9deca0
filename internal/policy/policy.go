// Package policy is the static capability table mapping each operation to the
// roles permitted to invoke it. Services check it before running any
// state-changing logic, so a denied actor causes no partial side effects.
package policy

import (
	"fmt"

	"medcycle/internal/domain"
	dErrors "medcycle/pkg/domain-errors"
)

// Operation names a role-gated service operation.
type Operation string

const (
	OpDeclareMedicine      Operation = "medicine.declare"
	OpListOwnDeclarations  Operation = "medicine.list_own"
	OpPharmacyReview       Operation = "medicine.pharmacy_review"
	OpRegulatoryReview     Operation = "medicine.regulatory_review"
	OpListPendingPharmacy  Operation = "medicine.list_pending_pharmacy"
	OpListPendingRegulator Operation = "medicine.list_pending_regulatory"
	OpRequestDistribution  Operation = "redistribution.request"
	OpListSupplies         Operation = "supply.list"
	OpCreateSupply         Operation = "supply.create"
	OpDeactivateSupply     Operation = "supply.deactivate"
)

// permitted is the capability table. ADMIN is implicitly permitted for every
// operation and is deliberately not listed per row.
var permitted = map[Operation][]domain.Role{
	OpDeclareMedicine:      {domain.RoleCitizen},
	OpListOwnDeclarations:  {domain.RoleCitizen},
	OpPharmacyReview:       {domain.RolePharmacist},
	OpRegulatoryReview:     {domain.RoleRegulatoryAgent},
	OpListPendingPharmacy:  {domain.RolePharmacist},
	OpListPendingRegulator: {domain.RoleRegulatoryAgent},
	OpRequestDistribution:  {domain.RoleHealthFacility},
	OpListSupplies:         {domain.RoleCitizen, domain.RolePharmacist, domain.RoleRegulatoryAgent, domain.RoleHealthFacility},
	OpCreateSupply:         {domain.RoleCitizen},
	OpDeactivateSupply:     {domain.RoleCitizen},
}

// Allowed reports whether role may invoke op.
func Allowed(role domain.Role, op Operation) bool {
	if role == domain.RoleAdmin {
		return true
	}
	for _, r := range permitted[op] {
		if r == role {
			return true
		}
	}
	return false
}

// Require returns a permission error when role may not invoke op, nil
// otherwise.
func Require(role domain.Role, op Operation) error {
	if Allowed(role, op) {
		return nil
	}
	return dErrors.New(dErrors.CodePermissionDenied,
		fmt.Sprintf("role %s is not permitted to perform %s", role, op))
}

// RolesFor exposes the permitted roles for an operation, ADMIN excluded.
// Informational endpoints use it to describe the workflow.
func RolesFor(op Operation) []domain.Role {
	roles := permitted[op]
	out := make([]domain.Role, len(roles))
	copy(out, roles)
	return out
}
