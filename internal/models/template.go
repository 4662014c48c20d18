package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ApprovalTemplate is a reusable blueprint for a document's approval line
// sequence. Templates are immutable once referenced by a live document; edits
// only affect future documents.
type ApprovalTemplate struct {
	ID           uuid.UUID      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	TenantID     string         `gorm:"type:varchar(255);not null;uniqueIndex:idx_templates_tenant_name" json:"tenantId"`
	Name         string         `gorm:"type:varchar(100);not null;uniqueIndex:idx_templates_tenant_name" json:"name"`
	Description  string         `gorm:"type:text" json:"description,omitempty"`
	DocumentType string         `gorm:"type:varchar(100);not null;index" json:"documentType"`
	IsDefault    bool           `gorm:"default:false" json:"isDefault"`
	IsSystem     bool           `gorm:"default:false" json:"isSystem"`
	IsActive     bool           `gorm:"default:true" json:"isActive"`
	CreatedAt    time.Time      `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt    time.Time      `gorm:"autoUpdateTime" json:"updatedAt"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`

	Lines []ApprovalTemplateLine `gorm:"foreignKey:TemplateID" json:"lines,omitempty"`
}

// TableName returns the table name for ApprovalTemplate
func (ApprovalTemplate) TableName() string {
	return "approval_templates"
}

// ApproverType enumerates the approver-resolution strategies a template line
// may use. The set is closed; resolution does an exhaustive switch over it.
type ApproverType string

const (
	ApproverSpecificUser   ApproverType = "specific_user"
	ApproverDepartmentHead ApproverType = "department_head"
	ApproverDrafterManager ApproverType = "drafter_manager"
	ApproverPositionHolder ApproverType = "position_holder"
)

// ApprovalTemplateLine specifies one step of a template: how to resolve the
// approver and at which sequence position the resulting line sits.
type ApprovalTemplateLine struct {
	ID           uuid.UUID    `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	TemplateID   uuid.UUID    `gorm:"type:uuid;not null;index" json:"templateId"`
	Sequence     int          `gorm:"not null" json:"sequence"`
	LineType     string       `gorm:"type:varchar(20);not null;default:'sequential'" json:"lineType"`
	ApproverType ApproverType `gorm:"type:varchar(30);not null" json:"approverType"`

	// Type-specific parameters: user for specific_user, department for
	// department_head / position_holder (nil means the drafter's department),
	// position code for position_holder
	ApproverUserID   *uuid.UUID `gorm:"type:uuid" json:"approverUserId,omitempty"`
	ApproverUserName string     `gorm:"type:varchar(100)" json:"approverUserName,omitempty"`
	DepartmentID     *uuid.UUID `gorm:"type:uuid" json:"departmentId,omitempty"`
	PositionCode     string     `gorm:"type:varchar(50)" json:"positionCode,omitempty"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updatedAt"`
}

// TableName returns the table name for ApprovalTemplateLine
func (ApprovalTemplateLine) TableName() string {
	return "approval_template_lines"
}
