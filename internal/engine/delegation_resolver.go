package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"hr-approval-service/internal/models"
	"hr-approval-service/internal/repository"
)

// DelegationResolver finds the delegation rule, if any, that substitutes an
// approver on a given date. When several rules cover the same date the most
// recently created one wins.
type DelegationResolver struct {
	rules  repository.RuleRepositoryInterface
	logger *logrus.Entry
}

// NewDelegationResolver creates a new DelegationResolver
func NewDelegationResolver(rules repository.RuleRepositoryInterface, logger *logrus.Logger) *DelegationResolver {
	if logger == nil {
		logger = logrus.New()
	}
	return &DelegationResolver{
		rules:  rules,
		logger: logger.WithField("component", "delegation-resolver"),
	}
}

// Substitute returns the winning delegation rule for the approver, or nil when
// no rule is in effect on the given date for the document type.
func (r *DelegationResolver) Substitute(ctx context.Context, tenantID string, approverID uuid.UUID, documentType string, onDate time.Time) (*models.DelegationRule, error) {
	rules, err := r.rules.FindEffectiveDelegations(ctx, tenantID, approverID, documentType, onDate)
	if err != nil {
		return nil, fmt.Errorf("failed to query delegations for %s: %w", approverID, err)
	}

	for i := range rules {
		if rules[i].IsEffectiveOn(onDate, documentType) {
			r.logger.WithFields(logrus.Fields{
				"delegatorId": approverID,
				"delegateId":  rules[i].DelegateID,
				"ruleId":      rules[i].ID,
			}).Debug("delegation rule applied")
			return &rules[i], nil
		}
	}
	return nil, nil
}
