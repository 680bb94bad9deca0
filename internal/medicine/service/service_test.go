package service

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"medcycle/internal/audit"
	"medcycle/internal/domain"
	"medcycle/internal/medicine"
	dErrors "medcycle/pkg/domain-errors"
	"medcycle/pkg/requestcontext"
)

var fixedNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type fixture struct {
	svc        *Service
	store      *medicine.InMemoryStore
	auditStore *audit.InMemoryStore

	citizen    domain.Actor
	pharmacist domain.Actor
	regulator  domain.Actor
	facility   domain.Actor
	admin      domain.Actor
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := medicine.NewInMemoryStore()
	auditStore := audit.NewInMemoryStore()
	logger := testLogger()
	auditor := audit.NewPublisher(auditStore, logger, nil)
	return &fixture{
		svc:        New(store, auditor, nil),
		store:      store,
		auditStore: auditStore,
		citizen:    domain.Actor{ID: uuid.New(), Role: domain.RoleCitizen},
		pharmacist: domain.Actor{ID: uuid.New(), Role: domain.RolePharmacist},
		regulator:  domain.Actor{ID: uuid.New(), Role: domain.RoleRegulatoryAgent},
		facility:   domain.Actor{ID: uuid.New(), Role: domain.RoleHealthFacility},
		admin:      domain.Actor{ID: uuid.New(), Role: domain.RoleAdmin},
	}
}

func ctxAt(now time.Time) context.Context {
	return requestcontext.WithTime(context.Background(), now)
}

func validInput() DeclareInput {
	return DeclareInput{
		Name:           "Paracetamol 500mg",
		AMM:            "AMM-1001",
		BatchNumber:    "B42",
		ExpirationDate: fixedNow.AddDate(1, 0, 0),
		Quantity:       10,
	}
}

func (f *fixture) declare(t *testing.T, in DeclareInput) *medicine.Record {
	t.Helper()
	rec, err := f.svc.Declare(ctxAt(fixedNow), f.citizen, in)
	require.NoError(t, err)
	return rec
}

func (f *fixture) declareVerified(t *testing.T, in DeclareInput) *medicine.Record {
	t.Helper()
	rec := f.declare(t, in)
	rec, err := f.svc.PharmacyReview(ctxAt(fixedNow), f.pharmacist, rec.ID, true, "packaging intact")
	require.NoError(t, err)
	return rec
}

func (f *fixture) auditActions(t *testing.T, entityID string) []audit.Action {
	t.Helper()
	events, err := f.auditStore.ListByEntity(context.Background(), audit.EntityMedicine, entityID)
	require.NoError(t, err)
	actions := make([]audit.Action, 0, len(events))
	for _, e := range events {
		actions = append(actions, e.Action)
	}
	return actions
}

func TestDeclare(t *testing.T) {
	t.Run("creates record in submitted", func(t *testing.T) {
		f := newFixture(t)
		rec := f.declare(t, validInput())

		assert.Equal(t, medicine.StatusSubmitted, rec.Status)
		assert.Equal(t, f.citizen.ID, rec.DeclaredBy)
		assert.NotEmpty(t, rec.DeclarationCode)
		assert.Equal(t, "MED-", rec.DeclarationCode[:4])
		assert.Equal(t, fixedNow, rec.CreatedAt)

		actions := f.auditActions(t, rec.ID.String())
		assert.Equal(t, []audit.Action{audit.ActionMedicineDeclared}, actions)
	})

	t.Run("rejects non-citizen roles", func(t *testing.T) {
		f := newFixture(t)
		for _, actor := range []domain.Actor{f.pharmacist, f.regulator, f.facility} {
			_, err := f.svc.Declare(ctxAt(fixedNow), actor, validInput())
			require.Error(t, err, "role %s must not declare", actor.Role)
			assert.True(t, dErrors.Is(err, dErrors.CodePermissionDenied))
		}
	})

	t.Run("admin may declare", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.svc.Declare(ctxAt(fixedNow), f.admin, validInput())
		assert.NoError(t, err)
	})

	t.Run("rejects already-expired medicine and audits the attempt", func(t *testing.T) {
		f := newFixture(t)
		in := validInput()
		in.ExpirationDate = fixedNow.AddDate(0, 0, -1)

		_, err := f.svc.Declare(ctxAt(fixedNow), f.citizen, in)
		require.Error(t, err)
		assert.True(t, dErrors.Is(err, dErrors.CodeValidation))

		var rejected bool
		for _, e := range f.auditStore.All() {
			if e.Action == audit.ActionDeclarationRejected {
				rejected = true
			}
		}
		assert.True(t, rejected, "rejected declaration must leave an audit entry")
	})

	t.Run("validation failures", func(t *testing.T) {
		f := newFixture(t)
		tests := []struct {
			name   string
			mutate func(*DeclareInput)
		}{
			{"missing name", func(in *DeclareInput) { in.Name = "" }},
			{"missing amm", func(in *DeclareInput) { in.AMM = "" }},
			{"missing batch", func(in *DeclareInput) { in.BatchNumber = "" }},
			{"zero quantity", func(in *DeclareInput) { in.Quantity = 0 }},
			{"negative quantity", func(in *DeclareInput) { in.Quantity = -3 }},
			{"zero expiration", func(in *DeclareInput) { in.ExpirationDate = time.Time{} }},
			{"imported without origin", func(in *DeclareInput) { in.IsImported = true }},
			{"origin without imported", func(in *DeclareInput) { in.CountryOfOrigin = "FR" }},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				in := validInput()
				tt.mutate(&in)
				_, err := f.svc.Declare(ctxAt(fixedNow), f.citizen, in)
				require.Error(t, err)
				assert.True(t, dErrors.Is(err, dErrors.CodeValidation))
			})
		}
	})
}

func TestPharmacyReview(t *testing.T) {
	t.Run("verify moves to pharmacy verified", func(t *testing.T) {
		f := newFixture(t)
		rec := f.declare(t, validInput())

		updated, err := f.svc.PharmacyReview(ctxAt(fixedNow), f.pharmacist, rec.ID, true, "sealed")
		require.NoError(t, err)
		assert.Equal(t, medicine.StatusPharmacyVerified, updated.Status)
		require.NotNil(t, updated.PharmacyReviewedBy)
		assert.Equal(t, f.pharmacist.ID, *updated.PharmacyReviewedBy)
		require.NotNil(t, updated.PharmacyReviewedAt)
		assert.Equal(t, fixedNow, *updated.PharmacyReviewedAt)
		assert.Equal(t, "sealed", updated.PharmacyNotes)

		actions := f.auditActions(t, rec.ID.String())
		assert.Equal(t, []audit.Action{audit.ActionMedicineDeclared, audit.ActionMedicineVerified}, actions)
	})

	t.Run("reject moves to pharmacy rejected", func(t *testing.T) {
		f := newFixture(t)
		rec := f.declare(t, validInput())

		updated, err := f.svc.PharmacyReview(ctxAt(fixedNow), f.pharmacist, rec.ID, false, "damaged blister")
		require.NoError(t, err)
		assert.Equal(t, medicine.StatusPharmacyRejected, updated.Status)

		actions := f.auditActions(t, rec.ID.String())
		assert.Equal(t, []audit.Action{audit.ActionMedicineDeclared, audit.ActionMedicineRejected}, actions)
	})

	t.Run("citizen cannot review", func(t *testing.T) {
		f := newFixture(t)
		rec := f.declare(t, validInput())

		_, err := f.svc.PharmacyReview(ctxAt(fixedNow), f.citizen, rec.ID, true, "")
		require.Error(t, err)
		assert.True(t, dErrors.Is(err, dErrors.CodePermissionDenied))

		stored, getErr := f.store.GetByID(context.Background(), rec.ID)
		require.NoError(t, getErr)
		assert.Equal(t, medicine.StatusSubmitted, stored.Status, "denied review must not change state")
		assert.Equal(t, []audit.Action{audit.ActionMedicineDeclared}, f.auditActions(t, rec.ID.String()),
			"denied review must not add an audit entry")
	})

	t.Run("second review fails and leaves record unchanged", func(t *testing.T) {
		f := newFixture(t)
		rec := f.declareVerified(t, validInput())

		_, err := f.svc.PharmacyReview(ctxAt(fixedNow), f.pharmacist, rec.ID, false, "changed my mind")
		require.Error(t, err)
		assert.True(t, dErrors.Is(err, dErrors.CodeInvalidState))

		stored, getErr := f.store.GetByID(context.Background(), rec.ID)
		require.NoError(t, getErr)
		assert.Equal(t, medicine.StatusPharmacyVerified, stored.Status)
		assert.Equal(t, "packaging intact", stored.PharmacyNotes, "failed review must not overwrite notes")
	})

	t.Run("unknown record", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.svc.PharmacyReview(ctxAt(fixedNow), f.pharmacist, uuid.New(), true, "")
		require.Error(t, err)
		assert.True(t, dErrors.Is(err, dErrors.CodeNotFound))
	})
}

func TestRegulatoryReview(t *testing.T) {
	t.Run("approval lands on approved for redistribution", func(t *testing.T) {
		f := newFixture(t)
		rec := f.declareVerified(t, validInput())

		updated, err := f.svc.RegulatoryReview(ctxAt(fixedNow), f.regulator, rec.ID, medicine.DecisionApproved, "dossier complete")
		require.NoError(t, err)
		assert.Equal(t, medicine.StatusApprovedForRedistribution, updated.Status)
		require.NotNil(t, updated.RegulatoryReviewedBy)
		assert.Equal(t, f.regulator.ID, *updated.RegulatoryReviewedBy)
	})

	t.Run("restricted decision lands on restricted use", func(t *testing.T) {
		f := newFixture(t)
		rec := f.declareVerified(t, validInput())

		updated, err := f.svc.RegulatoryReview(ctxAt(fixedNow), f.regulator, rec.ID, medicine.DecisionRestricted, "")
		require.NoError(t, err)
		assert.Equal(t, medicine.StatusRestrictedUse, updated.Status)
	})

	t.Run("imported medicine is force-rejected despite approval", func(t *testing.T) {
		f := newFixture(t)
		in := validInput()
		in.IsImported = true
		in.CountryOfOrigin = "DE"
		rec := f.declareVerified(t, in)

		updated, err := f.svc.RegulatoryReview(ctxAt(fixedNow), f.regulator, rec.ID, medicine.DecisionApproved, "looks fine")
		require.NoError(t, err)
		assert.Equal(t, medicine.StatusRejectedRegulatory, updated.Status)

		events, err := f.auditStore.ListByEntity(context.Background(), audit.EntityMedicine, rec.ID.String())
		require.NoError(t, err)
		last := events[len(events)-1]
		assert.Contains(t, last.Notes, medicine.OverrideImported)
	})

	t.Run("expired medicine is force-rejected with both reasons when imported too", func(t *testing.T) {
		f := newFixture(t)
		in := validInput()
		in.IsImported = true
		in.CountryOfOrigin = "DE"
		in.ExpirationDate = fixedNow.AddDate(0, 0, 10)
		rec := f.declareVerified(t, in)

		// Review happens after the medicine expired.
		later := fixedNow.AddDate(0, 1, 0)
		updated, err := f.svc.RegulatoryReview(ctxAt(later), f.regulator, rec.ID, medicine.DecisionApproved, "")
		require.NoError(t, err)
		assert.Equal(t, medicine.StatusRejectedRegulatory, updated.Status)

		events, err := f.auditStore.ListByEntity(context.Background(), audit.EntityMedicine, rec.ID.String())
		require.NoError(t, err)
		last := events[len(events)-1]
		assert.Contains(t, last.Notes, medicine.OverrideImported)
		assert.Contains(t, last.Notes, medicine.OverrideExpired)
	})

	t.Run("requires pharmacy verified status", func(t *testing.T) {
		f := newFixture(t)
		rec := f.declare(t, validInput())

		_, err := f.svc.RegulatoryReview(ctxAt(fixedNow), f.regulator, rec.ID, medicine.DecisionApproved, "")
		require.Error(t, err)
		assert.True(t, dErrors.Is(err, dErrors.CodeInvalidState))
	})

	t.Run("pharmacist cannot validate", func(t *testing.T) {
		f := newFixture(t)
		rec := f.declareVerified(t, validInput())

		_, err := f.svc.RegulatoryReview(ctxAt(fixedNow), f.pharmacist, rec.ID, medicine.DecisionApproved, "")
		require.Error(t, err)
		assert.True(t, dErrors.Is(err, dErrors.CodePermissionDenied))
	})

	t.Run("unknown decision", func(t *testing.T) {
		f := newFixture(t)
		rec := f.declareVerified(t, validInput())

		_, err := f.svc.RegulatoryReview(ctxAt(fixedNow), f.regulator, rec.ID, medicine.ReviewDecision("MAYBE"), "")
		require.Error(t, err)
		assert.True(t, dErrors.Is(err, dErrors.CodeValidation))
	})
}

func TestDistribute(t *testing.T) {
	approve := func(t *testing.T, f *fixture) *medicine.Record {
		rec := f.declareVerified(t, validInput())
		rec, err := f.svc.RegulatoryReview(ctxAt(fixedNow), f.regulator, rec.ID, medicine.DecisionApproved, "")
		require.NoError(t, err)
		return rec
	}

	t.Run("facility receives approved medicine", func(t *testing.T) {
		f := newFixture(t)
		rec := approve(t, f)

		updated, err := f.svc.Distribute(ctxAt(fixedNow), f.facility, rec.ID)
		require.NoError(t, err)
		assert.Equal(t, medicine.StatusDistributed, updated.Status)

		actions := f.auditActions(t, rec.ID.String())
		assert.Equal(t, audit.ActionMedicineDistributed, actions[len(actions)-1])
	})

	t.Run("second distribution fails", func(t *testing.T) {
		f := newFixture(t)
		rec := approve(t, f)

		_, err := f.svc.Distribute(ctxAt(fixedNow), f.facility, rec.ID)
		require.NoError(t, err)

		_, err = f.svc.Distribute(ctxAt(fixedNow), f.facility, rec.ID)
		require.Error(t, err)
		assert.True(t, dErrors.Is(err, dErrors.CodeInvalidState))
	})

	t.Run("expired after approval is refused", func(t *testing.T) {
		f := newFixture(t)
		rec := approve(t, f)

		afterExpiry := rec.ExpirationDate.Add(time.Hour)
		_, err := f.svc.Distribute(ctxAt(afterExpiry), f.facility, rec.ID)
		require.Error(t, err)
		assert.True(t, dErrors.Is(err, dErrors.CodeInvalidState))
		assert.Contains(t, err.Error(), medicine.ReasonExpired)
	})

	t.Run("citizen cannot request distribution", func(t *testing.T) {
		f := newFixture(t)
		rec := approve(t, f)

		_, err := f.svc.Distribute(ctxAt(fixedNow), f.citizen, rec.ID)
		require.Error(t, err)
		assert.True(t, dErrors.Is(err, dErrors.CodePermissionDenied))
	})
}

func TestLifecycleAuditTrail(t *testing.T) {
	f := newFixture(t)
	rec := f.declareVerified(t, validInput())
	_, err := f.svc.RegulatoryReview(ctxAt(fixedNow), f.regulator, rec.ID, medicine.DecisionApproved, "")
	require.NoError(t, err)
	_, err = f.svc.Distribute(ctxAt(fixedNow), f.facility, rec.ID)
	require.NoError(t, err)

	events, err := f.auditStore.ListByEntity(context.Background(), audit.EntityMedicine, rec.ID.String())
	require.NoError(t, err)
	require.Len(t, events, 4)

	// From/To statuses chain through the graph in order.
	assert.Equal(t, "", events[0].FromStatus)
	assert.Equal(t, string(medicine.StatusSubmitted), events[0].ToStatus)
	assert.Equal(t, string(medicine.StatusSubmitted), events[1].FromStatus)
	assert.Equal(t, string(medicine.StatusPharmacyVerified), events[1].ToStatus)
	assert.Equal(t, string(medicine.StatusPharmacyVerified), events[2].FromStatus)
	assert.Equal(t, string(medicine.StatusApprovedForRedistribution), events[2].ToStatus)
	assert.Equal(t, string(medicine.StatusApprovedForRedistribution), events[3].FromStatus)
	assert.Equal(t, string(medicine.StatusDistributed), events[3].ToStatus)
}

func TestListPending(t *testing.T) {
	f := newFixture(t)
	submitted := f.declare(t, validInput())
	verified := f.declareVerified(t, validInput())

	pharmacyQueue, err := f.svc.ListPendingPharmacy(ctxAt(fixedNow), f.pharmacist)
	require.NoError(t, err)
	require.Len(t, pharmacyQueue, 1)
	assert.Equal(t, submitted.ID, pharmacyQueue[0].ID)

	regulatoryQueue, err := f.svc.ListPendingRegulatory(ctxAt(fixedNow), f.regulator)
	require.NoError(t, err)
	require.Len(t, regulatoryQueue, 1)
	assert.Equal(t, verified.ID, regulatoryQueue[0].ID)

	_, err = f.svc.ListPendingPharmacy(ctxAt(fixedNow), f.citizen)
	assert.True(t, dErrors.Is(err, dErrors.CodePermissionDenied))

	_, err = f.svc.ListPendingRegulatory(ctxAt(fixedNow), f.pharmacist)
	assert.True(t, dErrors.Is(err, dErrors.CodePermissionDenied))

	// Admin sees both queues.
	_, err = f.svc.ListPendingPharmacy(ctxAt(fixedNow), f.admin)
	assert.NoError(t, err)
	_, err = f.svc.ListPendingRegulatory(ctxAt(fixedNow), f.admin)
	assert.NoError(t, err)
}

func TestListApprovedFiltersExpired(t *testing.T) {
	f := newFixture(t)

	fresh := f.declareVerified(t, validInput())
	_, err := f.svc.RegulatoryReview(ctxAt(fixedNow), f.regulator, fresh.ID, medicine.DecisionApproved, "")
	require.NoError(t, err)

	in := validInput()
	in.ExpirationDate = fixedNow.AddDate(0, 0, 5)
	shortLived := f.declareVerified(t, in)
	_, err = f.svc.RegulatoryReview(ctxAt(fixedNow), f.regulator, shortLived.ID, medicine.DecisionApproved, "")
	require.NoError(t, err)

	// A week later the short-lived unit has expired.
	later := fixedNow.AddDate(0, 0, 7)
	approved, err := f.svc.ListApproved(ctxAt(later))
	require.NoError(t, err)
	require.Len(t, approved, 1)
	assert.Equal(t, fresh.ID, approved[0].ID)
}

func TestGetOwnership(t *testing.T) {
	f := newFixture(t)
	rec := f.declare(t, validInput())

	got, err := f.svc.Get(ctxAt(fixedNow), f.citizen, rec.ID)
	require.NoError(t, err)
	assert.Equal(t, rec.ID, got.ID)

	other := domain.Actor{ID: uuid.New(), Role: domain.RoleCitizen}
	_, err = f.svc.Get(ctxAt(fixedNow), other, rec.ID)
	require.Error(t, err)
	assert.True(t, dErrors.Is(err, dErrors.CodePermissionDenied))

	_, err = f.svc.Get(ctxAt(fixedNow), f.pharmacist, rec.ID)
	assert.NoError(t, err, "reviewer roles may read any record")
}

func TestListMine(t *testing.T) {
	f := newFixture(t)
	mine := f.declare(t, validInput())

	other := domain.Actor{ID: uuid.New(), Role: domain.RoleCitizen}
	_, err := f.svc.Declare(ctxAt(fixedNow), other, validInput())
	require.NoError(t, err)

	recs, err := f.svc.ListMine(ctxAt(fixedNow), f.citizen)
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, mine.ID, recs[0].ID)
}

func TestEvaluateEndpointSemantics(t *testing.T) {
	f := newFixture(t)
	rec := f.declare(t, validInput())

	got, elig, err := f.svc.Evaluate(ctxAt(fixedNow), rec.ID)
	require.NoError(t, err)
	assert.Equal(t, rec.ID, got.ID)
	assert.False(t, elig.Eligible)
	require.NotEmpty(t, elig.Reasons)
	assert.Contains(t, elig.Reasons[0], string(medicine.StatusSubmitted))
}

func TestTimeSnapshotConsistency(t *testing.T) {
	// One operation must judge expiry exactly once: a context pinned before
	// the expiration instant accepts the declaration even if the wall clock
	// has moved past it.
	f := newFixture(t)
	in := validInput()
	in.ExpirationDate = fixedNow.Add(time.Minute)

	rec, err := f.svc.Declare(ctxAt(fixedNow), f.citizen, in)
	require.NoError(t, err)
	assert.Equal(t, medicine.StatusSubmitted, rec.Status)
}
