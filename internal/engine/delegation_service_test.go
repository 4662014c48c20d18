package engine

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"hr-approval-service/internal/models"
)

func TestCreateDelegation_Success(t *testing.T) {
	rules := new(MockRuleRepository)
	service := NewDelegationService(rules, nil)

	rules.On("CheckOverlappingDelegation", ctxArg(), "tenant-1", mock.Anything, "LEAVE_REQUEST", mock.Anything, mock.Anything).
		Return(false, nil)
	rules.On("CreateDelegationRule", ctxArg(), mock.Anything).Return(nil)

	rule, err := service.CreateDelegation(context.Background(), CreateDelegationInput{
		TenantID:     "tenant-1",
		DelegatorID:  uuid.New(),
		DelegateID:   uuid.New(),
		DocumentType: "LEAVE_REQUEST",
		StartDate:    dayOffset(1),
		EndDate:      dayOffset(10),
	})

	assert.NoError(t, err)
	assert.True(t, rule.IsActive)
	rules.AssertExpectations(t)
}

func TestCreateDelegation_SelfDelegationRejected(t *testing.T) {
	service := NewDelegationService(new(MockRuleRepository), nil)
	id := uuid.New()

	_, err := service.CreateDelegation(context.Background(), CreateDelegationInput{
		TenantID:    "tenant-1",
		DelegatorID: id,
		DelegateID:  id,
		StartDate:   dayOffset(1),
		EndDate:     dayOffset(2),
	})

	assert.ErrorIs(t, err, ErrInvalidDelegation)
}

func TestCreateDelegation_InvertedDateRangeRejected(t *testing.T) {
	service := NewDelegationService(new(MockRuleRepository), nil)

	_, err := service.CreateDelegation(context.Background(), CreateDelegationInput{
		TenantID:    "tenant-1",
		DelegatorID: uuid.New(),
		DelegateID:  uuid.New(),
		StartDate:   dayOffset(10),
		EndDate:     dayOffset(1),
	})

	assert.ErrorIs(t, err, ErrInvalidDelegation)
}

func TestCreateDelegation_OverlapRejected(t *testing.T) {
	rules := new(MockRuleRepository)
	service := NewDelegationService(rules, nil)

	rules.On("CheckOverlappingDelegation", ctxArg(), "tenant-1", mock.Anything, "", mock.Anything, mock.Anything).
		Return(true, nil)

	_, err := service.CreateDelegation(context.Background(), CreateDelegationInput{
		TenantID:    "tenant-1",
		DelegatorID: uuid.New(),
		DelegateID:  uuid.New(),
		StartDate:   dayOffset(1),
		EndDate:     dayOffset(5),
	})

	assert.ErrorIs(t, err, ErrDelegationOverlap)
}

func TestRevokeDelegation_OnlyDelegatorMayRevoke(t *testing.T) {
	rules := new(MockRuleRepository)
	service := NewDelegationService(rules, nil)

	rule := &models.DelegationRule{
		ID:          uuid.New(),
		TenantID:    "tenant-1",
		DelegatorID: uuid.New(),
		DelegateID:  uuid.New(),
		IsActive:    true,
	}
	rules.On("GetDelegationRuleByID", ctxArg(), rule.ID).Return(rule, nil)

	_, err := service.RevokeDelegation(context.Background(), "tenant-1", rule.ID, uuid.New(), "cleanup")
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestRevokeDelegation_AlreadyRevoked(t *testing.T) {
	rules := new(MockRuleRepository)
	service := NewDelegationService(rules, nil)

	delegatorID := uuid.New()
	revokedAt := time.Now().Add(-time.Hour)
	rule := &models.DelegationRule{
		ID:          uuid.New(),
		TenantID:    "tenant-1",
		DelegatorID: delegatorID,
		RevokedAt:   &revokedAt,
	}
	rules.On("GetDelegationRuleByID", ctxArg(), rule.ID).Return(rule, nil)

	_, err := service.RevokeDelegation(context.Background(), "tenant-1", rule.ID, delegatorID, "")
	assert.ErrorIs(t, err, ErrInvalidDelegation)
}

func TestSubstitute_PicksMostRecentRule(t *testing.T) {
	rules := new(MockRuleRepository)
	resolver := NewDelegationResolver(rules, nil)

	approverID := uuid.New()
	newerDelegate := uuid.New()
	olderDelegate := uuid.New()

	// Repository orders by created_at DESC, newest first
	rules.On("FindEffectiveDelegations", ctxArg(), "tenant-1", approverID, "LEAVE_REQUEST", mock.Anything).
		Return([]models.DelegationRule{
			{ID: uuid.New(), DelegatorID: approverID, DelegateID: newerDelegate, IsActive: true, StartDate: dayOffset(-1), EndDate: dayOffset(1)},
			{ID: uuid.New(), DelegatorID: approverID, DelegateID: olderDelegate, IsActive: true, StartDate: dayOffset(-5), EndDate: dayOffset(5)},
		}, nil)

	rule, err := resolver.Substitute(context.Background(), "tenant-1", approverID, "LEAVE_REQUEST", time.Now())
	assert.NoError(t, err)
	assert.NotNil(t, rule)
	assert.Equal(t, newerDelegate, rule.DelegateID)
}

func TestSubstitute_NoEffectiveRule(t *testing.T) {
	rules := new(MockRuleRepository)
	resolver := NewDelegationResolver(rules, nil)

	approverID := uuid.New()
	rules.On("FindEffectiveDelegations", ctxArg(), "tenant-1", approverID, "LEAVE_REQUEST", mock.Anything).
		Return([]models.DelegationRule{}, nil)

	rule, err := resolver.Substitute(context.Background(), "tenant-1", approverID, "LEAVE_REQUEST", time.Now())
	assert.NoError(t, err)
	assert.Nil(t, rule)
}
