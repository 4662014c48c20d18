package engine

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/datatypes"

	"hr-approval-service/internal/models"
	"hr-approval-service/internal/repository"
)

// EventPublisher publishes document lifecycle events. Implementations must be
// non-blocking; publishing failures are the publisher's concern, not the
// caller's.
type EventPublisher interface {
	PublishDocumentEvent(eventType string, doc *models.ApprovalDocument)
}

// DocumentService drives the document state machine: creation from a
// template, submission, per-line approval and rejection, recall and
// cancellation. Every mutation goes through optimistic-locked persistence.
type DocumentService struct {
	docs      repository.DocumentRepositoryInterface
	templates repository.TemplateRepositoryInterface
	builder   *LineBuilder
	router    *ConditionalRouter
	evaluator *RuleEvaluator
	events    EventPublisher
	logger    *logrus.Entry
}

// NewDocumentService creates a new DocumentService
func NewDocumentService(
	docs repository.DocumentRepositoryInterface,
	templates repository.TemplateRepositoryInterface,
	builder *LineBuilder,
	router *ConditionalRouter,
	evaluator *RuleEvaluator,
	events EventPublisher,
	logger *logrus.Logger,
) *DocumentService {
	if logger == nil {
		logger = logrus.New()
	}
	return &DocumentService{
		docs:      docs,
		templates: templates,
		builder:   builder,
		router:    router,
		evaluator: evaluator,
		events:    events,
		logger:    logger.WithField("component", "document-service"),
	}
}

// CreateDocumentInput carries everything needed to draft a new document
type CreateDocumentInput struct {
	TenantID      string
	Title         string
	Content       string
	DocumentType  string
	TemplateID    *uuid.UUID // nil = default template for the document type
	Drafter       DrafterContext
	ReferenceType string
	ReferenceID   *uuid.UUID
	Conditions    map[string]string
	DeadlineAt    *time.Time
}

// CreateDocument drafts a new document: pick the template (explicit or
// default), apply conditional routing, build the line set and persist the
// draft. The document stays in draft until submitted.
func (s *DocumentService) CreateDocument(ctx context.Context, input CreateDocumentInput) (*models.ApprovalDocument, error) {
	template, err := s.resolveTemplate(ctx, input)
	if err != nil {
		return nil, err
	}

	// Conditional routing may swap the template before any line is built
	if s.router != nil && len(input.Conditions) > 0 {
		targetID, err := s.router.Route(ctx, input.TenantID, template.ID, input.Conditions)
		if err != nil {
			return nil, err
		}
		if targetID != nil && *targetID != template.ID {
			routed, err := s.templates.GetTemplateByID(ctx, *targetID)
			if err != nil {
				if errors.Is(err, repository.ErrNotFound) {
					return nil, fmt.Errorf("%w: routed template %s", ErrTemplateNotFound, targetID)
				}
				return nil, err
			}
			template = routed
		}
	}

	lines, err := s.builder.Build(ctx, input.TenantID, template, input.Drafter, input.DocumentType)
	if err != nil {
		return nil, err
	}
	if len(lines) == 0 {
		return nil, ErrNoLinesResolved
	}

	doc := &models.ApprovalDocument{
		TenantID:            input.TenantID,
		DocumentNo:          generateDocumentNo(input.DocumentType),
		Title:               input.Title,
		Content:             input.Content,
		DocumentType:        input.DocumentType,
		Status:              models.DocStatusDraft,
		Version:             1,
		DrafterID:           input.Drafter.ID,
		DrafterName:         input.Drafter.Name,
		DrafterDepartmentID: input.Drafter.DepartmentID,
		ReferenceType:       input.ReferenceType,
		ReferenceID:         input.ReferenceID,
		DeadlineAt:          input.DeadlineAt,
		Lines:               lines,
	}
	if len(input.Conditions) > 0 {
		raw, err := json.Marshal(input.Conditions)
		if err != nil {
			return nil, fmt.Errorf("failed to encode conditions: %w", err)
		}
		doc.Conditions = datatypes.JSON(raw)
	}

	if err := s.docs.CreateDocument(ctx, doc); err != nil {
		return nil, fmt.Errorf("failed to create document: %w", err)
	}

	s.audit(ctx, doc, models.AuditEventCreated, &input.Drafter.ID, map[string]interface{}{
		"templateId": template.ID.String(),
		"lineCount":  len(lines),
	})
	s.publish(models.AuditEventCreated, doc)

	s.logger.WithFields(logrus.Fields{
		"documentId": doc.ID,
		"documentNo": doc.DocumentNo,
		"tenantId":   doc.TenantID,
	}).Info("Approval document created")
	return doc, nil
}

// Submit moves a draft into pending_approval: evaluate arbitrary-approval
// rules, skip lines below the granted sequence, and activate the first
// remaining sequence. A document whose every line is skipped is approved
// outright.
func (s *DocumentService) Submit(ctx context.Context, tenantID string, documentID, actorID uuid.UUID) (*models.ApprovalDocument, error) {
	doc, err := s.getOwned(ctx, tenantID, documentID)
	if err != nil {
		return nil, err
	}
	if doc.DrafterID != actorID {
		return nil, ErrForbidden
	}
	if doc.Status != models.DocStatusDraft {
		return nil, fmt.Errorf("%w: cannot submit document in status %s", ErrInvalidState, doc.Status)
	}

	now := time.Now()
	if s.evaluator != nil {
		skipTo, err := s.evaluator.Evaluate(ctx, tenantID, doc.DocumentType, doc.ConditionMap())
		if err != nil {
			return nil, err
		}
		s.applySkip(doc, skipTo, now)
	}

	doc.SubmittedAt = &now
	if s.activateNextSequence(doc, now) {
		doc.Status = models.DocStatusPendingApproval
	} else {
		// Every line was skipped by rule evaluation
		doc.Status = models.DocStatusApproved
		doc.CompletedAt = &now
	}

	if err := s.docs.SaveDocumentWithVersion(ctx, doc, doc.Version); err != nil {
		return nil, err
	}

	s.audit(ctx, doc, models.AuditEventSubmitted, &actorID, map[string]interface{}{
		"activeSequence": doc.ActiveSequence(),
	})
	s.publish(models.AuditEventSubmitted, doc)
	return doc, nil
}

// Approve records an approval on the actor's active line. When every line at
// the sequence is approved, rules are re-evaluated and the next sequence
// activates; when no line remains the document is approved.
func (s *DocumentService) Approve(ctx context.Context, tenantID string, documentID, actorID uuid.UUID, comment string) (*models.ApprovalDocument, error) {
	return s.processLine(ctx, tenantID, documentID, actorID, models.LineActionApproved, comment)
}

// Reject records a rejection on the actor's active line. Rejection is final:
// all remaining lines are skipped and the document is rejected.
func (s *DocumentService) Reject(ctx context.Context, tenantID string, documentID, actorID uuid.UUID, comment string) (*models.ApprovalDocument, error) {
	return s.processLine(ctx, tenantID, documentID, actorID, models.LineActionRejected, comment)
}

func (s *DocumentService) processLine(ctx context.Context, tenantID string, documentID, actorID uuid.UUID, action, comment string) (*models.ApprovalDocument, error) {
	doc, err := s.getOwned(ctx, tenantID, documentID)
	if err != nil {
		return nil, err
	}
	if doc.Status != models.DocStatusPendingApproval {
		return nil, fmt.Errorf("%w: document is %s", ErrInvalidState, doc.Status)
	}

	line := s.findActionableLine(doc, actorID)
	if line == nil {
		// Distinguish "not your turn yet" from "not on this document at all"
		for i := range doc.Lines {
			if doc.Lines[i].CanBeActedOnBy(actorID) {
				return nil, ErrLineNotActive
			}
		}
		return nil, ErrForbidden
	}

	now := time.Now()
	line.ActionType = action
	line.Comment = comment
	line.ActedByID = &actorID
	line.CompletedAt = &now

	var eventType string
	if action == models.LineActionRejected {
		eventType = models.AuditEventLineRejected
		line.Status = models.LineStatusRejected
		s.skipRemaining(doc, now)
		doc.Status = models.DocStatusRejected
		doc.CompletedAt = &now
		doc.ReturnCount++
	} else {
		eventType = models.AuditEventLineApproved
		line.Status = models.LineStatusApproved
		if s.sequenceSatisfied(doc, line.Sequence) {
			// Re-evaluate skip rules at each sequence boundary so that rules
			// added while the document was in flight still apply
			if s.evaluator != nil {
				skipTo, err := s.evaluator.Evaluate(ctx, tenantID, doc.DocumentType, doc.ConditionMap())
				if err != nil {
					return nil, err
				}
				s.applySkip(doc, skipTo, now)
			}
			if !s.activateNextSequence(doc, now) {
				doc.Status = models.DocStatusApproved
				doc.CompletedAt = &now
			}
		}
	}

	if err := s.docs.SaveDocumentWithVersion(ctx, doc, doc.Version); err != nil {
		return nil, err
	}

	s.audit(ctx, doc, eventType, &actorID, map[string]interface{}{
		"lineId":   line.ID.String(),
		"sequence": line.Sequence,
		"comment":  comment,
	})
	s.publish(eventType, doc)
	return doc, nil
}

// Recall pulls a pending document back to draft. Only the drafter may recall,
// and only while no line has been approved or rejected. All lines reset to
// pending with their action fields cleared.
func (s *DocumentService) Recall(ctx context.Context, tenantID string, documentID, actorID uuid.UUID) (*models.ApprovalDocument, error) {
	doc, err := s.getOwned(ctx, tenantID, documentID)
	if err != nil {
		return nil, err
	}
	if doc.DrafterID != actorID {
		return nil, ErrForbidden
	}
	if doc.Status != models.DocStatusPendingApproval {
		return nil, fmt.Errorf("%w: cannot recall document in status %s", ErrInvalidState, doc.Status)
	}
	for i := range doc.Lines {
		status := doc.Lines[i].Status
		if status == models.LineStatusApproved || status == models.LineStatusRejected {
			return nil, fmt.Errorf("%w: document already has acted-on lines", ErrInvalidState)
		}
	}

	for i := range doc.Lines {
		line := &doc.Lines[i]
		line.Status = models.LineStatusPending
		line.ActionType = ""
		line.Comment = ""
		line.ActedByID = nil
		line.ActivatedAt = nil
		line.CompletedAt = nil
	}
	doc.Status = models.DocStatusDraft
	doc.SubmittedAt = nil
	doc.Escalated = false
	doc.NotifiedApprovers = nil

	if err := s.docs.SaveDocumentWithVersion(ctx, doc, doc.Version); err != nil {
		return nil, err
	}

	s.audit(ctx, doc, models.AuditEventRecalled, &actorID, nil)
	s.publish(models.AuditEventRecalled, doc)
	return doc, nil
}

// Cancel terminally withdraws a document. Only the drafter may cancel, and
// only from draft or pending_approval.
func (s *DocumentService) Cancel(ctx context.Context, tenantID string, documentID, actorID uuid.UUID, reason string) (*models.ApprovalDocument, error) {
	doc, err := s.getOwned(ctx, tenantID, documentID)
	if err != nil {
		return nil, err
	}
	if doc.DrafterID != actorID {
		return nil, ErrForbidden
	}
	if doc.Status != models.DocStatusDraft && doc.Status != models.DocStatusPendingApproval {
		return nil, fmt.Errorf("%w: cannot cancel document in status %s", ErrInvalidState, doc.Status)
	}

	now := time.Now()
	s.skipRemaining(doc, now)
	doc.Status = models.DocStatusCancelled
	doc.CompletedAt = &now

	if err := s.docs.SaveDocumentWithVersion(ctx, doc, doc.Version); err != nil {
		return nil, err
	}

	s.audit(ctx, doc, models.AuditEventCancelled, &actorID, map[string]interface{}{
		"reason": reason,
	})
	s.publish(models.AuditEventCancelled, doc)
	return doc, nil
}

// GetDocument loads a document with its lines, tenant-scoped
func (s *DocumentService) GetDocument(ctx context.Context, tenantID string, documentID uuid.UUID) (*models.ApprovalDocument, error) {
	return s.getOwned(ctx, tenantID, documentID)
}

// ListMyDocuments returns the drafter's documents, newest first
func (s *DocumentService) ListMyDocuments(ctx context.Context, tenantID string, drafterID uuid.UUID, limit, offset int) ([]models.ApprovalDocument, int64, error) {
	return s.docs.ListByDrafter(ctx, tenantID, drafterID, limit, offset)
}

// ListPendingApprovals returns documents with an active line assigned to the
// approver or delegated to them
func (s *DocumentService) ListPendingApprovals(ctx context.Context, tenantID string, approverID uuid.UUID, limit, offset int) ([]models.ApprovalDocument, int64, error) {
	return s.docs.ListPendingForApprover(ctx, tenantID, approverID, limit, offset)
}

// GetHistory returns the document's audit trail, oldest first
func (s *DocumentService) GetHistory(ctx context.Context, tenantID string, documentID uuid.UUID) ([]models.ApprovalAuditLog, error) {
	if _, err := s.getOwned(ctx, tenantID, documentID); err != nil {
		return nil, err
	}
	return s.docs.GetDocumentHistory(ctx, documentID)
}

// ---- internal helpers ----

func (s *DocumentService) resolveTemplate(ctx context.Context, input CreateDocumentInput) (*models.ApprovalTemplate, error) {
	if input.TemplateID != nil {
		template, err := s.templates.GetTemplateByID(ctx, *input.TemplateID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return nil, ErrTemplateNotFound
			}
			return nil, err
		}
		if template.TenantID != input.TenantID && template.TenantID != "system" {
			return nil, ErrTemplateNotFound
		}
		if !template.IsActive {
			return nil, ErrTemplateNotFound
		}
		return template, nil
	}

	template, err := s.templates.GetDefaultForDocumentType(ctx, input.TenantID, input.DocumentType)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%w: no default template for document type %s", ErrTemplateNotFound, input.DocumentType)
		}
		return nil, err
	}
	return template, nil
}

// findActionableLine returns the active line the actor may act on, or nil
func (s *DocumentService) findActionableLine(doc *models.ApprovalDocument, actorID uuid.UUID) *models.ApprovalLine {
	for i := range doc.Lines {
		line := &doc.Lines[i]
		if line.Status == models.LineStatusActive && line.CanBeActedOnBy(actorID) {
			return line
		}
	}
	return nil
}

// applySkip marks every pending line below skipTo as skipped. A skipTo of 0
// means no rule matched.
func (s *DocumentService) applySkip(doc *models.ApprovalDocument, skipTo int, now time.Time) {
	if skipTo <= 0 {
		return
	}
	for i := range doc.Lines {
		line := &doc.Lines[i]
		if line.Sequence < skipTo && line.Status == models.LineStatusPending {
			line.Status = models.LineStatusSkipped
			line.CompletedAt = &now
		}
	}
}

// activateNextSequence activates every pending line at the lowest pending
// sequence. Returns false when no pending line remains.
func (s *DocumentService) activateNextSequence(doc *models.ApprovalDocument, now time.Time) bool {
	next := 0
	for i := range doc.Lines {
		line := &doc.Lines[i]
		if line.Status != models.LineStatusPending {
			continue
		}
		if next == 0 || line.Sequence < next {
			next = line.Sequence
		}
	}
	if next == 0 {
		return false
	}
	for i := range doc.Lines {
		line := &doc.Lines[i]
		if line.Sequence == next && line.Status == models.LineStatusPending {
			line.Status = models.LineStatusActive
			activatedAt := now
			line.ActivatedAt = &activatedAt
			s.recordNotified(doc, line)
		}
	}
	return true
}

// recordNotified appends the line's approver and delegate to the document's
// notified list so notification consumers know who was pinged
func (s *DocumentService) recordNotified(doc *models.ApprovalDocument, line *models.ApprovalLine) {
	appendUnique := func(id string) {
		for _, existing := range doc.NotifiedApprovers {
			if existing == id {
				return
			}
		}
		doc.NotifiedApprovers = append(doc.NotifiedApprovers, id)
	}
	appendUnique(line.ApproverID.String())
	if line.DelegateID != nil {
		appendUnique(line.DelegateID.String())
	}
}

// sequenceSatisfied reports whether every line at the sequence is terminal
// with no rejection. Parallel groups require all approvals.
func (s *DocumentService) sequenceSatisfied(doc *models.ApprovalDocument, sequence int) bool {
	for _, line := range doc.LinesAt(sequence) {
		if line.Status == models.LineStatusRejected {
			return false
		}
		if !line.IsTerminal() {
			return false
		}
	}
	return true
}

// skipRemaining marks every non-terminal line as skipped
func (s *DocumentService) skipRemaining(doc *models.ApprovalDocument, now time.Time) {
	for i := range doc.Lines {
		line := &doc.Lines[i]
		if !line.IsTerminal() {
			line.Status = models.LineStatusSkipped
			line.CompletedAt = &now
		}
	}
}

func (s *DocumentService) getOwned(ctx context.Context, tenantID string, documentID uuid.UUID) (*models.ApprovalDocument, error) {
	doc, err := s.docs.GetDocumentByID(ctx, documentID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrDocumentNotFound
		}
		return nil, err
	}
	if doc.TenantID != tenantID {
		return nil, ErrDocumentNotFound
	}
	return doc, nil
}

func (s *DocumentService) audit(ctx context.Context, doc *models.ApprovalDocument, eventType string, actorID *uuid.UUID, metadata map[string]interface{}) {
	entry := &models.ApprovalAuditLog{
		DocumentID: doc.ID,
		TenantID:   doc.TenantID,
		EventType:  eventType,
		ActorID:    actorID,
	}
	if metadata != nil {
		if raw, err := json.Marshal(metadata); err == nil {
			entry.Metadata = datatypes.JSON(raw)
		}
	}
	if err := s.docs.CreateAuditLog(ctx, entry); err != nil {
		s.logger.WithError(err).WithField("documentId", doc.ID).Warn("Failed to write audit log entry")
	}
}

func (s *DocumentService) publish(eventType string, doc *models.ApprovalDocument) {
	if s.events == nil {
		return
	}
	s.events.PublishDocumentEvent(eventType, doc)
}

// generateDocumentNo builds a human-readable document number from the type
// prefix, date and a uuid fragment, e.g. LEA-20260115-4F2A9C1B
func generateDocumentNo(documentType string) string {
	prefix := "DOC"
	if len(documentType) >= 3 {
		prefix = strings.ToUpper(documentType[:3])
	}
	fragment := strings.ToUpper(strings.ReplaceAll(uuid.New().String(), "-", "")[:8])
	return fmt.Sprintf("%s-%s-%s", prefix, time.Now().Format("20060102"), fragment)
}
