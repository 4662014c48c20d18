package engine

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"hr-approval-service/internal/clients"
	"hr-approval-service/internal/models"
)

func newTestBuilder(org *MockOrganizationDirectory, emp *MockEmployeeDirectory, rules *MockRuleRepository) *LineBuilder {
	resolver := NewApproverResolver(org, emp, nil)
	delegations := NewDelegationResolver(rules, nil)
	return NewLineBuilder(resolver, delegations, nil)
}

func specificUserLine(sequence int, userID uuid.UUID) models.ApprovalTemplateLine {
	return models.ApprovalTemplateLine{
		Sequence:       sequence,
		LineType:       models.LineTypeSequential,
		ApproverType:   models.ApproverSpecificUser,
		ApproverUserID: &userID,
	}
}

func TestBuild_PreservesSequenceGaps(t *testing.T) {
	rules := new(MockRuleRepository)
	rules.On("FindEffectiveDelegations", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return([]models.DelegationRule{}, nil)
	builder := newTestBuilder(new(MockOrganizationDirectory), new(MockEmployeeDirectory), rules)

	template := &models.ApprovalTemplate{
		ID: uuid.New(),
		Lines: []models.ApprovalTemplateLine{
			specificUserLine(1, uuid.New()),
			specificUserLine(5, uuid.New()),
			specificUserLine(10, uuid.New()),
		},
	}

	lines, err := builder.Build(context.Background(), "tenant-1", template, DrafterContext{ID: uuid.New()}, "LEAVE_REQUEST")
	assert.NoError(t, err)
	assert.Len(t, lines, 3)
	assert.Equal(t, 1, lines[0].Sequence)
	assert.Equal(t, 5, lines[1].Sequence)
	assert.Equal(t, 10, lines[2].Sequence)
	for _, line := range lines {
		assert.Equal(t, models.LineStatusPending, line.Status)
	}
}

func TestBuild_DropsUnresolvableLines(t *testing.T) {
	org := new(MockOrganizationDirectory)
	rules := new(MockRuleRepository)
	rules.On("FindEffectiveDelegations", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return([]models.DelegationRule{}, nil)
	builder := newTestBuilder(org, new(MockEmployeeDirectory), rules)

	dept := uuid.New()
	org.On("GetDepartmentHead", mock.Anything, "tenant-1", dept).Return(nil, errors.New("directory unavailable"))

	template := &models.ApprovalTemplate{
		ID: uuid.New(),
		Lines: []models.ApprovalTemplateLine{
			specificUserLine(1, uuid.New()),
			{Sequence: 2, ApproverType: models.ApproverDepartmentHead, DepartmentID: &dept},
			specificUserLine(3, uuid.New()),
		},
	}

	lines, err := builder.Build(context.Background(), "tenant-1", template, DrafterContext{ID: uuid.New()}, "LEAVE_REQUEST")
	assert.NoError(t, err)
	assert.Len(t, lines, 2)
	assert.Equal(t, 1, lines[0].Sequence)
	assert.Equal(t, 3, lines[1].Sequence)
}

func TestBuild_AppliesDelegation(t *testing.T) {
	approverID := uuid.New()
	delegateID := uuid.New()

	rules := new(MockRuleRepository)
	rules.On("FindEffectiveDelegations", mock.Anything, "tenant-1", approverID, "LEAVE_REQUEST", mock.Anything).
		Return([]models.DelegationRule{{
			ID:           uuid.New(),
			DelegatorID:  approverID,
			DelegateID:   delegateID,
			DelegateName: "Jung Deputy",
			IsActive:     true,
			StartDate:    dayOffset(-1),
			EndDate:      dayOffset(1),
		}}, nil)
	builder := newTestBuilder(new(MockOrganizationDirectory), new(MockEmployeeDirectory), rules)

	template := &models.ApprovalTemplate{
		ID:    uuid.New(),
		Lines: []models.ApprovalTemplateLine{specificUserLine(1, approverID)},
	}

	lines, err := builder.Build(context.Background(), "tenant-1", template, DrafterContext{ID: uuid.New()}, "LEAVE_REQUEST")
	assert.NoError(t, err)
	assert.Len(t, lines, 1)
	assert.Equal(t, approverID, lines[0].ApproverID)
	assert.NotNil(t, lines[0].DelegateID)
	assert.Equal(t, delegateID, *lines[0].DelegateID)
	assert.Equal(t, "Jung Deputy", lines[0].DelegateName)
}

func TestBuild_EmptyResultWhenNothingResolves(t *testing.T) {
	emp := new(MockEmployeeDirectory)
	rules := new(MockRuleRepository)
	builder := newTestBuilder(new(MockOrganizationDirectory), emp, rules)

	drafterID := uuid.New()
	emp.On("GetManager", mock.Anything, "tenant-1", drafterID).Return(nil, clients.ErrNotFound)

	template := &models.ApprovalTemplate{
		ID:    uuid.New(),
		Lines: []models.ApprovalTemplateLine{{Sequence: 1, ApproverType: models.ApproverDrafterManager}},
	}

	lines, err := builder.Build(context.Background(), "tenant-1", template, DrafterContext{ID: drafterID}, "LEAVE_REQUEST")
	assert.NoError(t, err)
	assert.Empty(t, lines)
}
