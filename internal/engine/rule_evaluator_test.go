package engine

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"hr-approval-service/internal/models"
)

func TestEvaluate_AmountBelowThresholdSkips(t *testing.T) {
	rules := new(MockRuleRepository)
	evaluator := NewRuleEvaluator(rules, nil)

	rules.On("ListActiveRules", ctxArg(), "tenant-1", "EXPENSE_CLAIM").Return([]models.ArbitraryApprovalRule{
		{ConditionType: "AMOUNT", Operator: models.OperatorLT, Value: "1000000", SkipToSequence: 2, Priority: 1},
	}, nil)

	skipTo, err := evaluator.Evaluate(context.Background(), "tenant-1", "EXPENSE_CLAIM", map[string]string{"AMOUNT": "500000"})
	assert.NoError(t, err)
	assert.Equal(t, 2, skipTo)
}

func TestEvaluate_AmountAtThresholdDoesNotSkip(t *testing.T) {
	rules := new(MockRuleRepository)
	evaluator := NewRuleEvaluator(rules, nil)

	rules.On("ListActiveRules", ctxArg(), "tenant-1", "EXPENSE_CLAIM").Return([]models.ArbitraryApprovalRule{
		{ConditionType: "AMOUNT", Operator: models.OperatorLT, Value: "1000000", SkipToSequence: 2},
	}, nil)

	skipTo, err := evaluator.Evaluate(context.Background(), "tenant-1", "EXPENSE_CLAIM", map[string]string{"AMOUNT": "1000000"})
	assert.NoError(t, err)
	assert.Equal(t, 0, skipTo)
}

func TestEvaluate_FirstMatchInPriorityOrderWins(t *testing.T) {
	rules := new(MockRuleRepository)
	evaluator := NewRuleEvaluator(rules, nil)

	// Repository returns rules already ordered by priority
	rules.On("ListActiveRules", ctxArg(), "tenant-1", "EXPENSE_CLAIM").Return([]models.ArbitraryApprovalRule{
		{ConditionType: "AMOUNT", Operator: models.OperatorLT, Value: "100000", SkipToSequence: 3, Priority: 1},
		{ConditionType: "AMOUNT", Operator: models.OperatorLT, Value: "1000000", SkipToSequence: 2, Priority: 2},
	}, nil)

	skipTo, err := evaluator.Evaluate(context.Background(), "tenant-1", "EXPENSE_CLAIM", map[string]string{"AMOUNT": "50000"})
	assert.NoError(t, err)
	assert.Equal(t, 3, skipTo)
}

func TestEvaluate_MissingConditionKeyIsNoMatch(t *testing.T) {
	rules := new(MockRuleRepository)
	evaluator := NewRuleEvaluator(rules, nil)

	rules.On("ListActiveRules", ctxArg(), "tenant-1", "EXPENSE_CLAIM").Return([]models.ArbitraryApprovalRule{
		{ConditionType: "AMOUNT", Operator: models.OperatorLT, Value: "1000000", SkipToSequence: 2},
	}, nil)

	skipTo, err := evaluator.Evaluate(context.Background(), "tenant-1", "EXPENSE_CLAIM", map[string]string{"URGENCY": "HIGH"})
	assert.NoError(t, err)
	assert.Equal(t, 0, skipTo)
}

func TestEvaluate_UnevaluableRuleIsSkippedNotFatal(t *testing.T) {
	rules := new(MockRuleRepository)
	evaluator := NewRuleEvaluator(rules, nil)

	rules.On("ListActiveRules", ctxArg(), "tenant-1", "EXPENSE_CLAIM").Return([]models.ArbitraryApprovalRule{
		{ConditionType: "AMOUNT", Operator: models.OperatorLT, Value: "not-a-number", SkipToSequence: 3, Priority: 1},
		{ConditionType: "AMOUNT", Operator: models.OperatorLT, Value: "1000000", SkipToSequence: 2, Priority: 2},
	}, nil)

	skipTo, err := evaluator.Evaluate(context.Background(), "tenant-1", "EXPENSE_CLAIM", map[string]string{"AMOUNT": "500000"})
	assert.NoError(t, err)
	assert.Equal(t, 2, skipTo)
}
