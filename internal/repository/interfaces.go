package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"hr-approval-service/internal/models"
)

// DocumentRepositoryInterface abstracts document persistence for the engine
// and for test mocks
type DocumentRepositoryInterface interface {
	CreateDocument(ctx context.Context, doc *models.ApprovalDocument) error
	GetDocumentByID(ctx context.Context, id uuid.UUID) (*models.ApprovalDocument, error)
	GetDocumentByNo(ctx context.Context, tenantID, documentNo string) (*models.ApprovalDocument, error)
	ListByDrafter(ctx context.Context, tenantID string, drafterID uuid.UUID, limit, offset int) ([]models.ApprovalDocument, int64, error)
	ListPendingForApprover(ctx context.Context, tenantID string, approverID uuid.UUID, limit, offset int) ([]models.ApprovalDocument, int64, error)
	SaveDocumentWithVersion(ctx context.Context, doc *models.ApprovalDocument, expectedVersion int) error
	FindPastDeadline(ctx context.Context) ([]models.ApprovalDocument, error)
	MarkEscalated(ctx context.Context, documentID uuid.UUID) (bool, error)
	CreateAuditLog(ctx context.Context, log *models.ApprovalAuditLog) error
	GetDocumentHistory(ctx context.Context, documentID uuid.UUID) ([]models.ApprovalAuditLog, error)
}

// TemplateRepositoryInterface abstracts template persistence
type TemplateRepositoryInterface interface {
	CreateTemplate(ctx context.Context, template *models.ApprovalTemplate) error
	GetTemplateByID(ctx context.Context, id uuid.UUID) (*models.ApprovalTemplate, error)
	GetDefaultForDocumentType(ctx context.Context, tenantID, documentType string) (*models.ApprovalTemplate, error)
	ListTemplates(ctx context.Context, tenantID string) ([]models.ApprovalTemplate, error)
}

// RuleRepositoryInterface abstracts delegation-rule, route and arbitrary-rule
// persistence
type RuleRepositoryInterface interface {
	CreateDelegationRule(ctx context.Context, rule *models.DelegationRule) error
	GetDelegationRuleByID(ctx context.Context, id uuid.UUID) (*models.DelegationRule, error)
	FindEffectiveDelegations(ctx context.Context, tenantID string, delegatorID uuid.UUID, documentType string, onDate time.Time) ([]models.DelegationRule, error)
	ListDelegationsByDelegator(ctx context.Context, tenantID string, delegatorID uuid.UUID, includeExpired bool) ([]models.DelegationRule, error)
	ListDelegationsByDelegate(ctx context.Context, tenantID string, delegateID uuid.UUID, includeExpired bool) ([]models.DelegationRule, error)
	RevokeDelegation(ctx context.Context, id uuid.UUID, revokedBy uuid.UUID, reason string) error
	CheckOverlappingDelegation(ctx context.Context, tenantID string, delegatorID uuid.UUID, documentType string, startDate, endDate time.Time) (bool, error)
	CreateRoute(ctx context.Context, route *models.ConditionalRoute) error
	ListRoutesForTemplate(ctx context.Context, tenantID string, sourceTemplateID uuid.UUID) ([]models.ConditionalRoute, error)
	CreateArbitraryRule(ctx context.Context, rule *models.ArbitraryApprovalRule) error
	ListActiveRules(ctx context.Context, tenantID, documentType string) ([]models.ArbitraryApprovalRule, error)
}

var (
	_ DocumentRepositoryInterface = (*DocumentRepository)(nil)
	_ TemplateRepositoryInterface = (*TemplateRepository)(nil)
	_ RuleRepositoryInterface     = (*RuleRepository)(nil)
)
