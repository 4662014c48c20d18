package engine

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"gorm.io/datatypes"

	"hr-approval-service/internal/clients"
	"hr-approval-service/internal/models"
	"hr-approval-service/internal/repository"
)

// mustJSON encodes a condition map for test documents
func mustJSON(conditions map[string]string) datatypes.JSON {
	raw, err := json.Marshal(conditions)
	if err != nil {
		panic(err)
	}
	return datatypes.JSON(raw)
}

// ctxArg matches any context argument in mock expectations
func ctxArg() interface{} {
	return mock.Anything
}

// dayOffset returns now shifted by the given number of days
func dayOffset(days int) time.Time {
	return time.Now().AddDate(0, 0, days)
}

// MockDocumentRepository is a mock implementation of DocumentRepositoryInterface
type MockDocumentRepository struct {
	mock.Mock
}

var _ repository.DocumentRepositoryInterface = (*MockDocumentRepository)(nil)

func (m *MockDocumentRepository) CreateDocument(ctx context.Context, doc *models.ApprovalDocument) error {
	args := m.Called(ctx, doc)
	if args.Error(0) == nil && doc.ID == uuid.Nil {
		doc.ID = uuid.New()
		doc.CreatedAt = time.Now()
	}
	return args.Error(0)
}

func (m *MockDocumentRepository) GetDocumentByID(ctx context.Context, id uuid.UUID) (*models.ApprovalDocument, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ApprovalDocument), args.Error(1)
}

func (m *MockDocumentRepository) GetDocumentByNo(ctx context.Context, tenantID, documentNo string) (*models.ApprovalDocument, error) {
	args := m.Called(ctx, tenantID, documentNo)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ApprovalDocument), args.Error(1)
}

func (m *MockDocumentRepository) ListByDrafter(ctx context.Context, tenantID string, drafterID uuid.UUID, limit, offset int) ([]models.ApprovalDocument, int64, error) {
	args := m.Called(ctx, tenantID, drafterID, limit, offset)
	return args.Get(0).([]models.ApprovalDocument), args.Get(1).(int64), args.Error(2)
}

func (m *MockDocumentRepository) ListPendingForApprover(ctx context.Context, tenantID string, approverID uuid.UUID, limit, offset int) ([]models.ApprovalDocument, int64, error) {
	args := m.Called(ctx, tenantID, approverID, limit, offset)
	return args.Get(0).([]models.ApprovalDocument), args.Get(1).(int64), args.Error(2)
}

func (m *MockDocumentRepository) SaveDocumentWithVersion(ctx context.Context, doc *models.ApprovalDocument, expectedVersion int) error {
	args := m.Called(ctx, doc, expectedVersion)
	if args.Error(0) == nil {
		doc.Version = expectedVersion + 1
	}
	return args.Error(0)
}

func (m *MockDocumentRepository) FindPastDeadline(ctx context.Context) ([]models.ApprovalDocument, error) {
	args := m.Called(ctx)
	return args.Get(0).([]models.ApprovalDocument), args.Error(1)
}

func (m *MockDocumentRepository) MarkEscalated(ctx context.Context, documentID uuid.UUID) (bool, error) {
	args := m.Called(ctx, documentID)
	return args.Bool(0), args.Error(1)
}

func (m *MockDocumentRepository) CreateAuditLog(ctx context.Context, log *models.ApprovalAuditLog) error {
	args := m.Called(ctx, log)
	return args.Error(0)
}

func (m *MockDocumentRepository) GetDocumentHistory(ctx context.Context, documentID uuid.UUID) ([]models.ApprovalAuditLog, error) {
	args := m.Called(ctx, documentID)
	return args.Get(0).([]models.ApprovalAuditLog), args.Error(1)
}

// MockTemplateRepository is a mock implementation of TemplateRepositoryInterface
type MockTemplateRepository struct {
	mock.Mock
}

var _ repository.TemplateRepositoryInterface = (*MockTemplateRepository)(nil)

func (m *MockTemplateRepository) CreateTemplate(ctx context.Context, template *models.ApprovalTemplate) error {
	args := m.Called(ctx, template)
	return args.Error(0)
}

func (m *MockTemplateRepository) GetTemplateByID(ctx context.Context, id uuid.UUID) (*models.ApprovalTemplate, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ApprovalTemplate), args.Error(1)
}

func (m *MockTemplateRepository) GetDefaultForDocumentType(ctx context.Context, tenantID, documentType string) (*models.ApprovalTemplate, error) {
	args := m.Called(ctx, tenantID, documentType)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ApprovalTemplate), args.Error(1)
}

func (m *MockTemplateRepository) ListTemplates(ctx context.Context, tenantID string) ([]models.ApprovalTemplate, error) {
	args := m.Called(ctx, tenantID)
	return args.Get(0).([]models.ApprovalTemplate), args.Error(1)
}

// MockRuleRepository is a mock implementation of RuleRepositoryInterface
type MockRuleRepository struct {
	mock.Mock
}

var _ repository.RuleRepositoryInterface = (*MockRuleRepository)(nil)

func (m *MockRuleRepository) CreateDelegationRule(ctx context.Context, rule *models.DelegationRule) error {
	args := m.Called(ctx, rule)
	if args.Error(0) == nil && rule.ID == uuid.Nil {
		rule.ID = uuid.New()
		rule.CreatedAt = time.Now()
	}
	return args.Error(0)
}

func (m *MockRuleRepository) GetDelegationRuleByID(ctx context.Context, id uuid.UUID) (*models.DelegationRule, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.DelegationRule), args.Error(1)
}

func (m *MockRuleRepository) FindEffectiveDelegations(ctx context.Context, tenantID string, delegatorID uuid.UUID, documentType string, onDate time.Time) ([]models.DelegationRule, error) {
	args := m.Called(ctx, tenantID, delegatorID, documentType, onDate)
	return args.Get(0).([]models.DelegationRule), args.Error(1)
}

func (m *MockRuleRepository) ListDelegationsByDelegator(ctx context.Context, tenantID string, delegatorID uuid.UUID, includeExpired bool) ([]models.DelegationRule, error) {
	args := m.Called(ctx, tenantID, delegatorID, includeExpired)
	return args.Get(0).([]models.DelegationRule), args.Error(1)
}

func (m *MockRuleRepository) ListDelegationsByDelegate(ctx context.Context, tenantID string, delegateID uuid.UUID, includeExpired bool) ([]models.DelegationRule, error) {
	args := m.Called(ctx, tenantID, delegateID, includeExpired)
	return args.Get(0).([]models.DelegationRule), args.Error(1)
}

func (m *MockRuleRepository) RevokeDelegation(ctx context.Context, id uuid.UUID, revokedBy uuid.UUID, reason string) error {
	args := m.Called(ctx, id, revokedBy, reason)
	return args.Error(0)
}

func (m *MockRuleRepository) CheckOverlappingDelegation(ctx context.Context, tenantID string, delegatorID uuid.UUID, documentType string, startDate, endDate time.Time) (bool, error) {
	args := m.Called(ctx, tenantID, delegatorID, documentType, startDate, endDate)
	return args.Bool(0), args.Error(1)
}

func (m *MockRuleRepository) CreateRoute(ctx context.Context, route *models.ConditionalRoute) error {
	args := m.Called(ctx, route)
	return args.Error(0)
}

func (m *MockRuleRepository) ListRoutesForTemplate(ctx context.Context, tenantID string, sourceTemplateID uuid.UUID) ([]models.ConditionalRoute, error) {
	args := m.Called(ctx, tenantID, sourceTemplateID)
	return args.Get(0).([]models.ConditionalRoute), args.Error(1)
}

func (m *MockRuleRepository) CreateArbitraryRule(ctx context.Context, rule *models.ArbitraryApprovalRule) error {
	args := m.Called(ctx, rule)
	return args.Error(0)
}

func (m *MockRuleRepository) ListActiveRules(ctx context.Context, tenantID, documentType string) ([]models.ArbitraryApprovalRule, error) {
	args := m.Called(ctx, tenantID, documentType)
	return args.Get(0).([]models.ArbitraryApprovalRule), args.Error(1)
}

// MockOrganizationDirectory is a mock implementation of clients.OrganizationDirectory
type MockOrganizationDirectory struct {
	mock.Mock
}

var _ clients.OrganizationDirectory = (*MockOrganizationDirectory)(nil)

func (m *MockOrganizationDirectory) GetDepartmentHead(ctx context.Context, tenantID string, departmentID uuid.UUID) (*clients.DirectoryEmployee, error) {
	args := m.Called(ctx, tenantID, departmentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*clients.DirectoryEmployee), args.Error(1)
}

func (m *MockOrganizationDirectory) GetPositionHolder(ctx context.Context, tenantID string, positionCode string, departmentID uuid.UUID) (*clients.DirectoryEmployee, error) {
	args := m.Called(ctx, tenantID, positionCode, departmentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*clients.DirectoryEmployee), args.Error(1)
}

// MockEmployeeDirectory is a mock implementation of clients.EmployeeDirectory
type MockEmployeeDirectory struct {
	mock.Mock
}

var _ clients.EmployeeDirectory = (*MockEmployeeDirectory)(nil)

func (m *MockEmployeeDirectory) GetManager(ctx context.Context, tenantID string, employeeID uuid.UUID) (*clients.DirectoryEmployee, error) {
	args := m.Called(ctx, tenantID, employeeID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*clients.DirectoryEmployee), args.Error(1)
}
