package engine

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"hr-approval-service/internal/repository"
)

// ConditionalRouter redirects a document from its source template to a
// different template when the document's conditions match a configured route.
type ConditionalRouter struct {
	rules  repository.RuleRepositoryInterface
	logger *logrus.Entry
}

// NewConditionalRouter creates a new ConditionalRouter
func NewConditionalRouter(rules repository.RuleRepositoryInterface, logger *logrus.Logger) *ConditionalRouter {
	if logger == nil {
		logger = logrus.New()
	}
	return &ConditionalRouter{
		rules:  rules,
		logger: logger.WithField("component", "conditional-router"),
	}
}

// Route returns the target template to use instead of the source template, or
// nil when no route matches. Routes are checked in priority order and the
// first match wins; unevaluable routes are logged and skipped.
func (r *ConditionalRouter) Route(ctx context.Context, tenantID string, sourceTemplateID uuid.UUID, conditions map[string]string) (*uuid.UUID, error) {
	routes, err := r.rules.ListRoutesForTemplate(ctx, tenantID, sourceTemplateID)
	if err != nil {
		return nil, fmt.Errorf("failed to load conditional routes: %w", err)
	}

	for _, route := range routes {
		value, ok := conditions[route.ConditionField]
		if !ok {
			continue
		}
		matched, err := compareValues(route.Operator, value, route.Value)
		if err != nil {
			r.logger.WithFields(logrus.Fields{
				"routeId":        route.ID,
				"conditionField": route.ConditionField,
				"operator":       route.Operator,
			}).WithError(err).Warn("route evaluation failed, skipping route")
			continue
		}
		if matched {
			target := route.TargetTemplateID
			r.logger.WithFields(logrus.Fields{
				"sourceTemplateId": sourceTemplateID,
				"targetTemplateId": target,
			}).Debug("conditional route applied")
			return &target, nil
		}
	}
	return nil, nil
}
