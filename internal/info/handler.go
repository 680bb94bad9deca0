// Package info serves the static workflow description: statuses, transitions,
// role capabilities, and the automatic safety rules. Useful for client
// developers and for smoke-checking a deployment.
package info

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"medcycle/internal/domain"
	"medcycle/internal/medicine"
	"medcycle/internal/policy"
	"medcycle/pkg/platform/httputil"
)

// Handler serves the workflow description.
type Handler struct{}

func New() *Handler {
	return &Handler{}
}

// Register mounts the info endpoint on the router.
func (h *Handler) Register(r chi.Router) {
	r.Get("/workflow", h.HandleWorkflow)
}

type workflowResponse struct {
	Statuses    []statusInfo        `json:"statuses"`
	Roles       []string            `json:"roles"`
	Operations  map[string][]string `json:"operations"`
	SafetyRules []string            `json:"safety_rules"`
}

type statusInfo struct {
	Status   string   `json:"status"`
	Terminal bool     `json:"terminal"`
	Next     []string `json:"next,omitempty"`
}

// HandleWorkflow handles GET /workflow requests.
func (h *Handler) HandleWorkflow(w http.ResponseWriter, r *http.Request) {
	statuses := make([]statusInfo, 0, len(medicine.AllStatuses()))
	for _, s := range medicine.AllStatuses() {
		next := medicine.NextStatuses(s)
		names := make([]string, 0, len(next))
		for _, n := range next {
			names = append(names, string(n))
		}
		statuses = append(statuses, statusInfo{
			Status:   string(s),
			Terminal: medicine.Terminal(s),
			Next:     names,
		})
	}

	roles := make([]string, 0, len(domain.AllRoles()))
	for _, role := range domain.AllRoles() {
		roles = append(roles, string(role))
	}

	ops := map[string][]string{}
	for _, op := range []policy.Operation{
		policy.OpDeclareMedicine,
		policy.OpListOwnDeclarations,
		policy.OpPharmacyReview,
		policy.OpRegulatoryReview,
		policy.OpListPendingPharmacy,
		policy.OpListPendingRegulator,
		policy.OpRequestDistribution,
		policy.OpListSupplies,
		policy.OpCreateSupply,
		policy.OpDeactivateSupply,
	} {
		permitted := policy.RolesFor(op)
		names := make([]string, 0, len(permitted))
		for _, role := range permitted {
			names = append(names, string(role))
		}
		ops[string(op)] = names
	}

	httputil.WriteJSON(w, http.StatusOK, &workflowResponse{
		Statuses:   statuses,
		Roles:      roles,
		Operations: ops,
		SafetyRules: []string{
			medicine.OverrideImported,
			medicine.OverrideExpired,
		},
	})
}
