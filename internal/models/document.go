package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/datatypes"
)

// ApprovalDocument is the aggregate root for one unit of work requiring
// approval. Its lines are owned by the document and loaded/persisted with it.
type ApprovalDocument struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	TenantID   string    `gorm:"type:varchar(255);not null;index" json:"tenantId"`
	DocumentNo string    `gorm:"type:varchar(50);not null;uniqueIndex:idx_documents_tenant_no" json:"documentNo"`
	Title      string    `gorm:"type:varchar(255);not null" json:"title"`
	Content    string    `gorm:"type:text" json:"content,omitempty"`

	// DocumentType is the routing/rule key (e.g. LEAVE_REQUEST, EXPENSE_CLAIM)
	DocumentType string `gorm:"type:varchar(100);not null;index" json:"documentType"`
	Status       string `gorm:"type:varchar(30);not null;default:'draft';index" json:"status"`
	Version      int    `gorm:"not null;default:1" json:"version"` // Optimistic locking

	// Drafter context (immutable after creation)
	DrafterID           uuid.UUID  `gorm:"type:uuid;not null;index" json:"drafterId"`
	DrafterName         string     `gorm:"type:varchar(100)" json:"drafterName,omitempty"`
	DrafterDepartmentID *uuid.UUID `gorm:"type:uuid" json:"drafterDepartmentId,omitempty"`

	// Optional reference to an external business object
	ReferenceType string     `gorm:"type:varchar(50)" json:"referenceType,omitempty"`
	ReferenceID   *uuid.UUID `gorm:"type:uuid" json:"referenceId,omitempty"`

	// Condition snapshot used for conditional routing and arbitrary-rule
	// evaluation (string values keyed by condition type, e.g. {"AMOUNT":"500000"})
	Conditions datatypes.JSON `gorm:"type:jsonb" json:"conditions,omitempty"`

	// Escalation tracking. Deadlines are computed by the scheduler collaborator;
	// this core only carries the flag.
	DeadlineAt *time.Time `json:"deadlineAt,omitempty"`
	Escalated  bool       `gorm:"default:false" json:"escalated"`

	ReturnCount       int            `gorm:"default:0" json:"returnCount"`
	NotifiedApprovers pq.StringArray `gorm:"type:uuid[]" json:"notifiedApprovers,omitempty"`

	SubmittedAt *time.Time `json:"submittedAt,omitempty"`
	CompletedAt *time.Time `json:"completedAt,omitempty"`
	CreatedAt   time.Time  `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt   time.Time  `gorm:"autoUpdateTime" json:"updatedAt"`

	// Owned approval lines, ordered by sequence
	Lines []ApprovalLine `gorm:"foreignKey:DocumentID" json:"lines,omitempty"`
}

// TableName returns the table name for ApprovalDocument
func (ApprovalDocument) TableName() string {
	return "approval_documents"
}

// Document status constants
const (
	DocStatusDraft           = "draft"
	DocStatusPendingApproval = "pending_approval"
	DocStatusApproved        = "approved"
	DocStatusRejected        = "rejected"
	DocStatusCancelled       = "cancelled"
)

// IsTerminal returns true if the document status is a terminal state
func (d *ApprovalDocument) IsTerminal() bool {
	return d.Status == DocStatusApproved ||
		d.Status == DocStatusRejected ||
		d.Status == DocStatusCancelled
}

// LinesAt returns all lines sharing the given sequence number
func (d *ApprovalDocument) LinesAt(sequence int) []*ApprovalLine {
	var lines []*ApprovalLine
	for i := range d.Lines {
		if d.Lines[i].Sequence == sequence {
			lines = append(lines, &d.Lines[i])
		}
	}
	return lines
}

// ActiveSequence returns the sequence number currently active, or 0 if none
func (d *ApprovalDocument) ActiveSequence() int {
	for i := range d.Lines {
		if d.Lines[i].Status == LineStatusActive {
			return d.Lines[i].Sequence
		}
	}
	return 0
}

// ConditionMap decodes the condition snapshot. A nil/empty snapshot decodes
// to an empty map so evaluators can treat missing keys as "no match".
func (d *ApprovalDocument) ConditionMap() map[string]string {
	conditions := map[string]string{}
	if len(d.Conditions) > 0 {
		// Decode errors leave the map empty; a malformed snapshot must not
		// break rule evaluation.
		_ = json.Unmarshal(d.Conditions, &conditions)
	}
	return conditions
}

// ApprovalLine is one approval step within a document. Parallel lines share a
// sequence number and are resolved as a quorum.
type ApprovalLine struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	DocumentID uuid.UUID `gorm:"type:uuid;not null;index" json:"documentId"`
	Sequence   int       `gorm:"not null" json:"sequence"`
	LineType   string    `gorm:"type:varchar(20);not null;default:'sequential'" json:"lineType"`

	// Resolved approver identity
	ApproverID         uuid.UUID `gorm:"type:uuid;not null;index" json:"approverId"`
	ApproverName       string    `gorm:"type:varchar(100)" json:"approverName,omitempty"`
	ApproverPosition   string    `gorm:"type:varchar(100)" json:"approverPosition,omitempty"`
	ApproverDepartment string    `gorm:"type:varchar(100)" json:"approverDepartment,omitempty"`

	// Delegate substituted for the approver, if a delegation rule was in
	// effect at line-build time. The original approver is kept for audit.
	DelegateID   *uuid.UUID `gorm:"type:uuid;index" json:"delegateId,omitempty"`
	DelegateName string     `gorm:"type:varchar(100)" json:"delegateName,omitempty"`

	Status     string     `gorm:"type:varchar(20);not null;default:'pending';index" json:"status"`
	ActionType string     `gorm:"type:varchar(20)" json:"actionType,omitempty"`
	Comment    string     `gorm:"type:text" json:"comment,omitempty"`
	ActedByID  *uuid.UUID `gorm:"type:uuid" json:"actedById,omitempty"`

	ActivatedAt *time.Time `json:"activatedAt,omitempty"`
	CompletedAt *time.Time `json:"completedAt,omitempty"`
	CreatedAt   time.Time  `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt   time.Time  `gorm:"autoUpdateTime" json:"updatedAt"`
}

// TableName returns the table name for ApprovalLine
func (ApprovalLine) TableName() string {
	return "approval_lines"
}

// Line type constants
const (
	LineTypeSequential = "sequential"
	LineTypeParallel   = "parallel"
)

// Line status constants
const (
	LineStatusPending  = "pending"
	LineStatusActive   = "active"
	LineStatusApproved = "approved"
	LineStatusRejected = "rejected"
	LineStatusSkipped  = "skipped"
)

// Line action constants, recorded when the approver or delegate acts
const (
	LineActionApproved = "approved"
	LineActionRejected = "rejected"
)

// IsTerminal returns true if the line status is a terminal state
func (l *ApprovalLine) IsTerminal() bool {
	return l.Status == LineStatusApproved ||
		l.Status == LineStatusRejected ||
		l.Status == LineStatusSkipped
}

// CanBeActedOnBy reports whether the given actor is the line's resolved
// approver or its current delegate
func (l *ApprovalLine) CanBeActedOnBy(actorID uuid.UUID) bool {
	if l.ApproverID == actorID {
		return true
	}
	return l.DelegateID != nil && *l.DelegateID == actorID
}
