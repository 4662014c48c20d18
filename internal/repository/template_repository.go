package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"hr-approval-service/internal/models"
)

// TemplateRepository handles database operations for approval templates
type TemplateRepository struct {
	db *gorm.DB
}

// NewTemplateRepository creates a new TemplateRepository
func NewTemplateRepository(db *gorm.DB) *TemplateRepository {
	return &TemplateRepository{db: db}
}

// CreateTemplate persists a template together with its lines
func (r *TemplateRepository) CreateTemplate(ctx context.Context, template *models.ApprovalTemplate) error {
	return r.db.WithContext(ctx).Create(template).Error
}

// GetTemplateByID loads a template with its lines in sequence order
func (r *TemplateRepository) GetTemplateByID(ctx context.Context, id uuid.UUID) (*models.ApprovalTemplate, error) {
	var template models.ApprovalTemplate
	err := r.db.WithContext(ctx).
		Preload("Lines", func(db *gorm.DB) *gorm.DB {
			return db.Order("sequence ASC, created_at ASC")
		}).
		Where("id = ?", id).
		First(&template).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &template, nil
}

// GetDefaultForDocumentType finds the default active template for a document
// type. Tenant-specific templates win over system templates.
func (r *TemplateRepository) GetDefaultForDocumentType(ctx context.Context, tenantID, documentType string) (*models.ApprovalTemplate, error) {
	var template models.ApprovalTemplate
	orderClause := fmt.Sprintf("CASE WHEN tenant_id = '%s' THEN 0 ELSE 1 END", tenantID)
	err := r.db.WithContext(ctx).
		Preload("Lines", func(db *gorm.DB) *gorm.DB {
			return db.Order("sequence ASC, created_at ASC")
		}).
		Where("(tenant_id = ? OR tenant_id = 'system') AND document_type = ? AND is_default = true AND is_active = true", tenantID, documentType).
		Order(orderClause).
		First(&template).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &template, nil
}

// ListTemplates retrieves all active templates visible to a tenant
func (r *TemplateRepository) ListTemplates(ctx context.Context, tenantID string) ([]models.ApprovalTemplate, error) {
	var templates []models.ApprovalTemplate
	orderClause := fmt.Sprintf("CASE WHEN tenant_id = '%s' THEN 0 ELSE 1 END, created_at DESC", tenantID)
	err := r.db.WithContext(ctx).
		Preload("Lines", func(db *gorm.DB) *gorm.DB {
			return db.Order("sequence ASC, created_at ASC")
		}).
		Where("(tenant_id = ? OR tenant_id = 'system') AND is_active = true", tenantID).
		Order(orderClause).
		Find(&templates).Error
	return templates, err
}
