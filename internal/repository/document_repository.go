package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"hr-approval-service/internal/models"
)

var (
	ErrNotFound        = errors.New("not found")
	ErrVersionConflict = errors.New("version conflict - document was modified by another request")
)

// DocumentRepository handles database operations for approval documents.
// The document and its lines form one aggregate: they are created, loaded and
// saved together so a line never exists without its document.
type DocumentRepository struct {
	db *gorm.DB
}

// NewDocumentRepository creates a new DocumentRepository
func NewDocumentRepository(db *gorm.DB) *DocumentRepository {
	return &DocumentRepository{db: db}
}

// CreateDocument persists a new document together with its lines
func (r *DocumentRepository) CreateDocument(ctx context.Context, doc *models.ApprovalDocument) error {
	return r.db.WithContext(ctx).Create(doc).Error
}

// GetDocumentByID loads a document aggregate with its lines in sequence order
func (r *DocumentRepository) GetDocumentByID(ctx context.Context, id uuid.UUID) (*models.ApprovalDocument, error) {
	var doc models.ApprovalDocument
	err := r.db.WithContext(ctx).
		Preload("Lines", func(db *gorm.DB) *gorm.DB {
			return db.Order("sequence ASC, created_at ASC")
		}).
		Where("id = ?", id).
		First(&doc).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &doc, nil
}

// GetDocumentByNo loads a document by its tenant-scoped document number
func (r *DocumentRepository) GetDocumentByNo(ctx context.Context, tenantID, documentNo string) (*models.ApprovalDocument, error) {
	var doc models.ApprovalDocument
	err := r.db.WithContext(ctx).
		Preload("Lines", func(db *gorm.DB) *gorm.DB {
			return db.Order("sequence ASC, created_at ASC")
		}).
		Where("tenant_id = ? AND document_no = ?", tenantID, documentNo).
		First(&doc).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &doc, nil
}

// ListByDrafter retrieves documents drafted by a specific user
func (r *DocumentRepository) ListByDrafter(ctx context.Context, tenantID string, drafterID uuid.UUID, limit, offset int) ([]models.ApprovalDocument, int64, error) {
	var docs []models.ApprovalDocument
	var total int64

	query := r.db.WithContext(ctx).Model(&models.ApprovalDocument{}).
		Where("tenant_id = ? AND drafter_id = ?", tenantID, drafterID)

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&docs).Error

	return docs, total, err
}

// ListPendingForApprover retrieves documents with an active line assigned to
// the given approver (directly or as delegate)
func (r *DocumentRepository) ListPendingForApprover(ctx context.Context, tenantID string, approverID uuid.UUID, limit, offset int) ([]models.ApprovalDocument, int64, error) {
	var docs []models.ApprovalDocument
	var total int64

	sub := r.db.Model(&models.ApprovalLine{}).
		Select("document_id").
		Where("status = ? AND (approver_id = ? OR delegate_id = ?)", models.LineStatusActive, approverID, approverID)

	query := r.db.WithContext(ctx).Model(&models.ApprovalDocument{}).
		Where("tenant_id = ? AND status = ?", tenantID, models.DocStatusPendingApproval).
		Where("id IN (?)", sub)

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.
		Preload("Lines", func(db *gorm.DB) *gorm.DB {
			return db.Order("sequence ASC, created_at ASC")
		}).
		Order("submitted_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&docs).Error

	return docs, total, err
}

// SaveDocumentWithVersion persists a mutated aggregate with optimistic
// locking. The document row is updated only when its stored version still
// equals expectedVersion; zero rows affected means a concurrent writer won
// and the caller gets ErrVersionConflict. Lines are upserted in the same
// transaction so the aggregate is saved as one unit.
func (r *DocumentRepository) SaveDocumentWithVersion(ctx context.Context, doc *models.ApprovalDocument, expectedVersion int) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&models.ApprovalDocument{}).
			Where("id = ? AND version = ?", doc.ID, expectedVersion).
			Updates(map[string]interface{}{
				"status":             doc.Status,
				"version":            expectedVersion + 1,
				"return_count":       doc.ReturnCount,
				"escalated":          doc.Escalated,
				"notified_approvers": doc.NotifiedApprovers,
				"submitted_at":       doc.SubmittedAt,
				"completed_at":       doc.CompletedAt,
				"conditions":         doc.Conditions,
				"updated_at":         time.Now(),
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrVersionConflict
		}

		for i := range doc.Lines {
			line := &doc.Lines[i]
			if err := tx.Clauses(clause.OnConflict{
				Columns: []clause.Column{{Name: "id"}},
				DoUpdates: clause.AssignmentColumns([]string{
					"status", "action_type", "comment", "acted_by_id",
					"delegate_id", "delegate_name", "activated_at",
					"completed_at", "updated_at",
				}),
			}).Create(line).Error; err != nil {
				return err
			}
		}

		doc.Version = expectedVersion + 1
		return nil
	})
}

// FindPastDeadline finds pending documents whose deadline has passed and
// which have not been escalated yet
func (r *DocumentRepository) FindPastDeadline(ctx context.Context) ([]models.ApprovalDocument, error) {
	var docs []models.ApprovalDocument
	err := r.db.WithContext(ctx).
		Where("status = ? AND escalated = false", models.DocStatusPendingApproval).
		Where("deadline_at IS NOT NULL AND deadline_at < ?", time.Now()).
		Find(&docs).Error
	return docs, err
}

// MarkEscalated sets the escalation flag on a document. Returns false when
// another instance already escalated it.
func (r *DocumentRepository) MarkEscalated(ctx context.Context, documentID uuid.UUID) (bool, error) {
	result := r.db.WithContext(ctx).Model(&models.ApprovalDocument{}).
		Where("id = ? AND status = ? AND escalated = false", documentID, models.DocStatusPendingApproval).
		Updates(map[string]interface{}{
			"escalated":  true,
			"updated_at": time.Now(),
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// --- Audit Methods ---

// CreateAuditLog creates an audit log entry
func (r *DocumentRepository) CreateAuditLog(ctx context.Context, log *models.ApprovalAuditLog) error {
	return r.db.WithContext(ctx).Create(log).Error
}

// GetDocumentHistory retrieves audit history for a document
func (r *DocumentRepository) GetDocumentHistory(ctx context.Context, documentID uuid.UUID) ([]models.ApprovalAuditLog, error) {
	var logs []models.ApprovalAuditLog
	err := r.db.WithContext(ctx).
		Where("document_id = ?", documentID).
		Order("created_at ASC").
		Find(&logs).Error
	return logs, err
}
