package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"hr-approval-service/internal/models"
	"hr-approval-service/internal/repository"
)

var (
	// ErrDelegationNotFound is returned when a delegation rule does not exist
	ErrDelegationNotFound = errors.New("delegation rule not found")

	// ErrDelegationOverlap is returned when a new rule's date range overlaps
	// an existing active rule for the same delegator and document type
	ErrDelegationOverlap = errors.New("an active delegation already covers this period")

	// ErrInvalidDelegation is returned for rules that fail validation
	ErrInvalidDelegation = errors.New("invalid delegation rule")
)

// DelegationService manages delegation rules on behalf of approvers
type DelegationService struct {
	rules  repository.RuleRepositoryInterface
	logger *logrus.Entry
}

// NewDelegationService creates a new DelegationService
func NewDelegationService(rules repository.RuleRepositoryInterface, logger *logrus.Logger) *DelegationService {
	if logger == nil {
		logger = logrus.New()
	}
	return &DelegationService{
		rules:  rules,
		logger: logger.WithField("component", "delegation-service"),
	}
}

// CreateDelegationInput carries a new delegation rule request
type CreateDelegationInput struct {
	TenantID      string
	DelegatorID   uuid.UUID
	DelegatorName string
	DelegateID    uuid.UUID
	DelegateName  string
	DocumentType  string
	Reason        string
	StartDate     time.Time
	EndDate       time.Time
}

// CreateDelegation validates and persists a new delegation rule
func (s *DelegationService) CreateDelegation(ctx context.Context, input CreateDelegationInput) (*models.DelegationRule, error) {
	if input.DelegatorID == input.DelegateID {
		return nil, fmt.Errorf("%w: delegator and delegate must differ", ErrInvalidDelegation)
	}
	if input.EndDate.Before(input.StartDate) {
		return nil, fmt.Errorf("%w: end date precedes start date", ErrInvalidDelegation)
	}

	overlaps, err := s.rules.CheckOverlappingDelegation(ctx, input.TenantID, input.DelegatorID, input.DocumentType, input.StartDate, input.EndDate)
	if err != nil {
		return nil, fmt.Errorf("failed to check overlapping delegations: %w", err)
	}
	if overlaps {
		return nil, ErrDelegationOverlap
	}

	rule := &models.DelegationRule{
		TenantID:      input.TenantID,
		DelegatorID:   input.DelegatorID,
		DelegatorName: input.DelegatorName,
		DelegateID:    input.DelegateID,
		DelegateName:  input.DelegateName,
		DocumentType:  input.DocumentType,
		Reason:        input.Reason,
		StartDate:     input.StartDate,
		EndDate:       input.EndDate,
		IsActive:      true,
	}
	if err := s.rules.CreateDelegationRule(ctx, rule); err != nil {
		return nil, fmt.Errorf("failed to create delegation rule: %w", err)
	}

	s.logger.WithFields(logrus.Fields{
		"ruleId":      rule.ID,
		"delegatorId": rule.DelegatorID,
		"delegateId":  rule.DelegateID,
	}).Info("Delegation rule created")
	return rule, nil
}

// RevokeDelegation revokes a rule. Only the delegator may revoke their own
// rule; future line builds stop substituting immediately, already-built lines
// keep their delegate.
func (s *DelegationService) RevokeDelegation(ctx context.Context, tenantID string, ruleID, actorID uuid.UUID, reason string) (*models.DelegationRule, error) {
	rule, err := s.rules.GetDelegationRuleByID(ctx, ruleID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrDelegationNotFound
		}
		return nil, err
	}
	if rule.TenantID != tenantID {
		return nil, ErrDelegationNotFound
	}
	if rule.DelegatorID != actorID {
		return nil, ErrForbidden
	}
	if rule.RevokedAt != nil {
		return nil, fmt.Errorf("%w: rule already revoked", ErrInvalidDelegation)
	}

	if err := s.rules.RevokeDelegation(ctx, ruleID, actorID, reason); err != nil {
		return nil, fmt.Errorf("failed to revoke delegation rule: %w", err)
	}
	return s.rules.GetDelegationRuleByID(ctx, ruleID)
}

// ListForDelegator returns rules created by the delegator
func (s *DelegationService) ListForDelegator(ctx context.Context, tenantID string, delegatorID uuid.UUID, includeExpired bool) ([]models.DelegationRule, error) {
	return s.rules.ListDelegationsByDelegator(ctx, tenantID, delegatorID, includeExpired)
}

// ListForDelegate returns rules naming the employee as delegate
func (s *DelegationService) ListForDelegate(ctx context.Context, tenantID string, delegateID uuid.UUID, includeExpired bool) ([]models.DelegationRule, error) {
	return s.rules.ListDelegationsByDelegate(ctx, tenantID, delegateID, includeExpired)
}
