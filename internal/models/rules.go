package models

import (
	"time"

	"github.com/google/uuid"
)

// Comparison operators shared by conditional routes and arbitrary rules.
// LT/LTE/GT/GTE compare numeric string values; EQ is string equality.
const (
	OperatorLT  = "LT"
	OperatorLTE = "LTE"
	OperatorGT  = "GT"
	OperatorGTE = "GTE"
	OperatorEQ  = "EQ"
)

// ConditionalRoute redirects document creation from a source template to a
// target template when the document's condition snapshot matches. Routes for
// a template are evaluated in priority order; first match wins.
type ConditionalRoute struct {
	ID               uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	TenantID         string    `gorm:"type:varchar(255);not null;index" json:"tenantId"`
	SourceTemplateID uuid.UUID `gorm:"type:uuid;not null;index" json:"sourceTemplateId"`
	ConditionField   string    `gorm:"type:varchar(100);not null" json:"conditionField"`
	Operator         string    `gorm:"type:varchar(10);not null" json:"operator"`
	Value            string    `gorm:"type:varchar(255);not null" json:"value"`
	TargetTemplateID uuid.UUID `gorm:"type:uuid;not null" json:"targetTemplateId"`
	Priority         int       `gorm:"not null;default:0" json:"priority"`
	IsActive         bool      `gorm:"default:true" json:"isActive"`
	CreatedAt        time.Time `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt        time.Time `gorm:"autoUpdateTime" json:"updatedAt"`
}

// TableName returns the table name for ConditionalRoute
func (ConditionalRoute) TableName() string {
	return "conditional_routes"
}

// ArbitraryApprovalRule grants authority-based sequence skipping: when a
// document of the given type satisfies the condition, lines below
// SkipToSequence are skipped at activation time. Rules for a type are
// evaluated in priority order; first match wins.
type ArbitraryApprovalRule struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	TenantID       string    `gorm:"type:varchar(255);not null;index" json:"tenantId"`
	DocumentType   string    `gorm:"type:varchar(100);not null;index" json:"documentType"`
	ConditionType  string    `gorm:"type:varchar(100);not null" json:"conditionType"`
	Operator       string    `gorm:"type:varchar(10);not null" json:"operator"`
	Value          string    `gorm:"type:varchar(255);not null" json:"value"`
	SkipToSequence int       `gorm:"not null" json:"skipToSequence"`
	Priority       int       `gorm:"not null;default:0" json:"priority"`
	IsActive       bool      `gorm:"default:true" json:"isActive"`
	CreatedAt      time.Time `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt      time.Time `gorm:"autoUpdateTime" json:"updatedAt"`
}

// TableName returns the table name for ArbitraryApprovalRule
func (ArbitraryApprovalRule) TableName() string {
	return "arbitrary_approval_rules"
}
