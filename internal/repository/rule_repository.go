package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"hr-approval-service/internal/models"
)

// RuleRepository handles database operations for delegation rules,
// conditional routes and arbitrary approval rules
type RuleRepository struct {
	db *gorm.DB
}

// NewRuleRepository creates a new RuleRepository
func NewRuleRepository(db *gorm.DB) *RuleRepository {
	return &RuleRepository{db: db}
}

// --- Delegation Rules ---

// CreateDelegationRule creates a new delegation rule
func (r *RuleRepository) CreateDelegationRule(ctx context.Context, rule *models.DelegationRule) error {
	return r.db.WithContext(ctx).Create(rule).Error
}

// GetDelegationRuleByID retrieves a delegation rule by ID
func (r *RuleRepository) GetDelegationRuleByID(ctx context.Context, id uuid.UUID) (*models.DelegationRule, error) {
	var rule models.DelegationRule
	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&rule).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &rule, nil
}

// FindEffectiveDelegations finds delegation rules covering the given
// delegator, document type and date, newest first. Callers that need a
// single substitute take the first row; ordering by creation time makes the
// tie-break deterministic when ranges overlap.
func (r *RuleRepository) FindEffectiveDelegations(ctx context.Context, tenantID string, delegatorID uuid.UUID, documentType string, onDate time.Time) ([]models.DelegationRule, error) {
	var rules []models.DelegationRule
	err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND delegator_id = ? AND is_active = ?", tenantID, delegatorID, true).
		Where("start_date <= ? AND end_date >= ?", onDate, onDate).
		Where("revoked_at IS NULL").
		Where("(document_type = '' OR document_type = ?)", documentType).
		Order("created_at DESC").
		Find(&rules).Error
	return rules, err
}

// ListDelegationsByDelegator retrieves all delegation rules created by a user
func (r *RuleRepository) ListDelegationsByDelegator(ctx context.Context, tenantID string, delegatorID uuid.UUID, includeExpired bool) ([]models.DelegationRule, error) {
	var rules []models.DelegationRule

	query := r.db.WithContext(ctx).
		Where("tenant_id = ? AND delegator_id = ?", tenantID, delegatorID)

	if !includeExpired {
		query = query.Where("is_active = ? AND end_date >= ?", true, time.Now())
	}

	err := query.Order("created_at DESC").Find(&rules).Error
	return rules, err
}

// ListDelegationsByDelegate retrieves all delegation rules granted to a user
func (r *RuleRepository) ListDelegationsByDelegate(ctx context.Context, tenantID string, delegateID uuid.UUID, includeExpired bool) ([]models.DelegationRule, error) {
	var rules []models.DelegationRule

	query := r.db.WithContext(ctx).
		Where("tenant_id = ? AND delegate_id = ?", tenantID, delegateID)

	if !includeExpired {
		query = query.Where("is_active = ? AND end_date >= ?", true, time.Now())
	}

	err := query.Order("created_at DESC").Find(&rules).Error
	return rules, err
}

// RevokeDelegation revokes an existing delegation rule
func (r *RuleRepository) RevokeDelegation(ctx context.Context, id uuid.UUID, revokedBy uuid.UUID, reason string) error {
	now := time.Now()
	result := r.db.WithContext(ctx).Model(&models.DelegationRule{}).
		Where("id = ? AND is_active = ?", id, true).
		Updates(map[string]interface{}{
			"is_active":     false,
			"revoked_at":    now,
			"revoked_by":    revokedBy,
			"revoke_reason": reason,
			"updated_at":    now,
		})

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// CheckOverlappingDelegation checks whether an active rule already covers the
// same delegator, document type and an overlapping date range
func (r *RuleRepository) CheckOverlappingDelegation(ctx context.Context, tenantID string, delegatorID uuid.UUID, documentType string, startDate, endDate time.Time) (bool, error) {
	var count int64

	err := r.db.WithContext(ctx).Model(&models.DelegationRule{}).
		Where("tenant_id = ? AND delegator_id = ? AND is_active = ?", tenantID, delegatorID, true).
		Where("revoked_at IS NULL").
		Where("(document_type = '' OR document_type = ?)", documentType).
		Where("start_date <= ? AND end_date >= ?", endDate, startDate).
		Count(&count).Error
	return count > 0, err
}

// --- Conditional Routes ---

// CreateRoute creates a new conditional route
func (r *RuleRepository) CreateRoute(ctx context.Context, route *models.ConditionalRoute) error {
	return r.db.WithContext(ctx).Create(route).Error
}

// ListRoutesForTemplate retrieves active routes for a source template in
// evaluation order
func (r *RuleRepository) ListRoutesForTemplate(ctx context.Context, tenantID string, sourceTemplateID uuid.UUID) ([]models.ConditionalRoute, error) {
	var routes []models.ConditionalRoute
	err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND source_template_id = ? AND is_active = ?", tenantID, sourceTemplateID, true).
		Order("priority ASC, created_at ASC").
		Find(&routes).Error
	return routes, err
}

// --- Arbitrary Approval Rules ---

// CreateArbitraryRule creates a new arbitrary approval rule
func (r *RuleRepository) CreateArbitraryRule(ctx context.Context, rule *models.ArbitraryApprovalRule) error {
	return r.db.WithContext(ctx).Create(rule).Error
}

// ListActiveRules retrieves active arbitrary approval rules for a document
// type in evaluation order
func (r *RuleRepository) ListActiveRules(ctx context.Context, tenantID, documentType string) ([]models.ArbitraryApprovalRule, error) {
	var rules []models.ArbitraryApprovalRule
	err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND document_type = ? AND is_active = ?", tenantID, documentType, true).
		Order("priority ASC, created_at ASC").
		Find(&rules).Error
	return rules, err
}
