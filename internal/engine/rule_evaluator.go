package engine

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"hr-approval-service/internal/models"
	"hr-approval-service/internal/repository"
)

// RuleEvaluator matches a document's conditions against the tenant's
// arbitrary-approval rules to determine a sequence to skip to. Rules are
// evaluated in priority order and the first match wins.
type RuleEvaluator struct {
	rules  repository.RuleRepositoryInterface
	logger *logrus.Entry
}

// NewRuleEvaluator creates a new RuleEvaluator
func NewRuleEvaluator(rules repository.RuleRepositoryInterface, logger *logrus.Logger) *RuleEvaluator {
	if logger == nil {
		logger = logrus.New()
	}
	return &RuleEvaluator{
		rules:  rules,
		logger: logger.WithField("component", "rule-evaluator"),
	}
}

// Evaluate returns the sequence the document may skip to, or 0 when no rule
// matches. A rule that cannot be evaluated against the conditions is logged
// and treated as a non-match rather than failing the whole evaluation.
func (e *RuleEvaluator) Evaluate(ctx context.Context, tenantID, documentType string, conditions map[string]string) (int, error) {
	rules, err := e.rules.ListActiveRules(ctx, tenantID, documentType)
	if err != nil {
		return 0, fmt.Errorf("failed to load approval rules: %w", err)
	}
	return e.evaluateRules(rules, conditions), nil
}

func (e *RuleEvaluator) evaluateRules(rules []models.ArbitraryApprovalRule, conditions map[string]string) int {
	for _, rule := range rules {
		value, ok := conditions[rule.ConditionType]
		if !ok {
			continue
		}
		matched, err := compareValues(rule.Operator, value, rule.Value)
		if err != nil {
			e.logger.WithFields(logrus.Fields{
				"ruleId":        rule.ID,
				"conditionType": rule.ConditionType,
				"operator":      rule.Operator,
			}).WithError(err).Warn("rule evaluation failed, skipping rule")
			continue
		}
		if matched {
			return rule.SkipToSequence
		}
	}
	return 0
}
