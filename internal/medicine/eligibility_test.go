package medicine

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newApprovedRecord(expiry time.Time) *Record {
	return &Record{
		ID:             uuid.New(),
		DeclaredBy:     uuid.New(),
		Name:           "Paracetamol 500mg",
		AMM:            "AMM-1001",
		BatchNumber:    "B42",
		ExpirationDate: expiry,
		Quantity:       10,
		Status:         StatusApprovedForRedistribution,
	}
}

func TestEvaluateEligible(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	rec := newApprovedRecord(now.AddDate(1, 0, 0))

	result := Evaluate(rec, now)
	assert.True(t, result.Eligible)
	assert.Equal(t, []string{ReasonEligible}, result.Reasons)
}

func TestEvaluateCollectsAllReasons(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	rec := newApprovedRecord(now.AddDate(0, 0, -1))
	rec.Status = StatusSubmitted
	rec.IsImported = true
	rec.CountryOfOrigin = "FR"

	result := Evaluate(rec, now)
	require.False(t, result.Eligible)
	require.Len(t, result.Reasons, 3)
	assert.Contains(t, result.Reasons[0], string(StatusSubmitted))
	assert.Equal(t, ReasonImported, result.Reasons[1])
	assert.Equal(t, ReasonExpired, result.Reasons[2])
}

func TestEvaluateExpiryBoundary(t *testing.T) {
	expiry := time.Date(2026, 6, 30, 0, 0, 0, 0, time.UTC)
	rec := newApprovedRecord(expiry)

	// Exactly at the expiration instant the medicine is still usable.
	result := Evaluate(rec, expiry)
	assert.True(t, result.Eligible)

	result = Evaluate(rec, expiry.Add(time.Nanosecond))
	assert.False(t, result.Eligible)
	assert.Equal(t, []string{ReasonExpired}, result.Reasons)
}

func TestEvaluateIsDeterministic(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	rec := newApprovedRecord(now.AddDate(0, 6, 0))

	first := Evaluate(rec, now)
	second := Evaluate(rec, now)
	assert.Equal(t, first, second)
}

func TestApplyRegulatoryRules(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	t.Run("no overrides keeps requested status", func(t *testing.T) {
		rec := newApprovedRecord(now.AddDate(1, 0, 0))
		rec.Status = StatusPharmacyVerified

		effective, overrides := ApplyRegulatoryRules(rec, StatusApprovedForRedistribution, now)
		assert.Equal(t, StatusApprovedForRedistribution, effective)
		assert.Empty(t, overrides)
	})

	t.Run("imported forces rejection", func(t *testing.T) {
		rec := newApprovedRecord(now.AddDate(1, 0, 0))
		rec.Status = StatusPharmacyVerified
		rec.IsImported = true

		effective, overrides := ApplyRegulatoryRules(rec, StatusApprovedForRedistribution, now)
		assert.Equal(t, StatusRejectedRegulatory, effective)
		assert.Equal(t, []string{OverrideImported}, overrides)
	})

	t.Run("expired forces rejection", func(t *testing.T) {
		rec := newApprovedRecord(now.AddDate(0, 0, -1))
		rec.Status = StatusPharmacyVerified

		effective, overrides := ApplyRegulatoryRules(rec, StatusRestrictedUse, now)
		assert.Equal(t, StatusRejectedRegulatory, effective)
		assert.Equal(t, []string{OverrideExpired}, overrides)
	})

	t.Run("imported and expired report both reasons", func(t *testing.T) {
		rec := newApprovedRecord(now.AddDate(0, 0, -1))
		rec.Status = StatusPharmacyVerified
		rec.IsImported = true

		effective, overrides := ApplyRegulatoryRules(rec, StatusApprovedForRedistribution, now)
		assert.Equal(t, StatusRejectedRegulatory, effective)
		assert.Equal(t, []string{OverrideImported, OverrideExpired}, overrides)
	})
}

func TestRecordClone(t *testing.T) {
	now := time.Now().UTC()
	reviewer := uuid.New()
	rec := newApprovedRecord(now.AddDate(1, 0, 0))
	rec.PharmacyReviewedBy = &reviewer
	rec.PharmacyReviewedAt = &now

	clone := rec.Clone()
	*clone.PharmacyReviewedBy = uuid.New()
	*clone.PharmacyReviewedAt = now.Add(time.Hour)

	assert.Equal(t, reviewer, *rec.PharmacyReviewedBy, "clone must not alias reviewer pointer")
	assert.Equal(t, now, *rec.PharmacyReviewedAt, "clone must not alias review time pointer")
}
