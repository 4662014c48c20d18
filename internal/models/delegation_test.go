package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func daysFromNow(days int) time.Time {
	return time.Now().AddDate(0, 0, days)
}

func TestIsEffectiveOn_DateRange(t *testing.T) {
	rule := DelegationRule{
		IsActive:  true,
		StartDate: daysFromNow(-2),
		EndDate:   daysFromNow(2),
	}

	assert.True(t, rule.IsEffectiveOn(time.Now(), "LEAVE_REQUEST"))
	assert.False(t, rule.IsEffectiveOn(daysFromNow(-3), "LEAVE_REQUEST"))
	assert.False(t, rule.IsEffectiveOn(daysFromNow(3), "LEAVE_REQUEST"))
}

func TestIsEffectiveOn_BoundaryDatesInclusive(t *testing.T) {
	start := time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC)
	end := time.Date(2026, 1, 20, 0, 0, 0, 0, time.UTC)
	rule := DelegationRule{IsActive: true, StartDate: start, EndDate: end}

	assert.True(t, rule.IsEffectiveOn(start, ""))
	assert.True(t, rule.IsEffectiveOn(end, ""))
	assert.False(t, rule.IsEffectiveOn(end.Add(time.Second), ""))
}

func TestIsEffectiveOn_DocumentTypeFilter(t *testing.T) {
	rule := DelegationRule{
		IsActive:     true,
		DocumentType: "EXPENSE_CLAIM",
		StartDate:    daysFromNow(-1),
		EndDate:      daysFromNow(1),
	}

	assert.True(t, rule.IsEffectiveOn(time.Now(), "EXPENSE_CLAIM"))
	assert.False(t, rule.IsEffectiveOn(time.Now(), "LEAVE_REQUEST"))

	// Empty filter matches every document type
	rule.DocumentType = ""
	assert.True(t, rule.IsEffectiveOn(time.Now(), "LEAVE_REQUEST"))
}

func TestIsEffectiveOn_InactiveOrRevoked(t *testing.T) {
	revokedAt := time.Now()
	rule := DelegationRule{
		IsActive:  true,
		StartDate: daysFromNow(-1),
		EndDate:   daysFromNow(1),
		RevokedAt: &revokedAt,
	}
	assert.False(t, rule.IsEffectiveOn(time.Now(), ""))

	rule.RevokedAt = nil
	rule.IsActive = false
	assert.False(t, rule.IsEffectiveOn(time.Now(), ""))
}

func TestGetStatus(t *testing.T) {
	revokedAt := time.Now()

	tests := []struct {
		name string
		rule DelegationRule
		want string
	}{
		{"active now", DelegationRule{IsActive: true, StartDate: daysFromNow(-1), EndDate: daysFromNow(1)}, DelegationStatusActive},
		{"scheduled", DelegationRule{IsActive: true, StartDate: daysFromNow(1), EndDate: daysFromNow(5)}, DelegationStatusScheduled},
		{"expired", DelegationRule{IsActive: true, StartDate: daysFromNow(-5), EndDate: daysFromNow(-1)}, DelegationStatusExpired},
		{"revoked", DelegationRule{IsActive: true, StartDate: daysFromNow(-1), EndDate: daysFromNow(1), RevokedAt: &revokedAt}, DelegationStatusRevoked},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.rule.GetStatus())
		})
	}
}
