package models

import (
	"time"

	"github.com/google/uuid"
)

// DelegationRule is a temporal substitution of approval authority: while the
// rule is effective, lines resolved to the delegator are assigned to the
// delegate instead. The original approver identity is kept on the line for
// audit.
type DelegationRule struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	TenantID      string    `gorm:"type:varchar(255);not null;index" json:"tenantId"`
	DelegatorID   uuid.UUID `gorm:"type:uuid;not null;index" json:"delegatorId"`
	DelegatorName string    `gorm:"type:varchar(100)" json:"delegatorName,omitempty"`
	DelegateID    uuid.UUID `gorm:"type:uuid;not null;index" json:"delegateId"`
	DelegateName  string    `gorm:"type:varchar(100)" json:"delegateName,omitempty"`

	// DocumentType restricts the delegation to matching documents; empty = all
	DocumentType string `gorm:"type:varchar(100);index" json:"documentType,omitempty"`

	Reason    string    `gorm:"type:text" json:"reason,omitempty"`
	StartDate time.Time `gorm:"not null" json:"startDate"`
	EndDate   time.Time `gorm:"not null" json:"endDate"`
	IsActive  bool      `gorm:"default:true" json:"isActive"`

	RevokedAt    *time.Time `json:"revokedAt,omitempty"`
	RevokedBy    *uuid.UUID `gorm:"type:uuid" json:"revokedBy,omitempty"`
	RevokeReason string     `gorm:"type:text" json:"revokeReason,omitempty"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updatedAt"`
}

// TableName returns the table name for DelegationRule
func (DelegationRule) TableName() string {
	return "delegation_rules"
}

// IsEffectiveOn reports whether the rule applies to the given date and
// document type. The date range is inclusive on both ends.
func (r *DelegationRule) IsEffectiveOn(date time.Time, documentType string) bool {
	if !r.IsActive || r.RevokedAt != nil {
		return false
	}
	if date.Before(r.StartDate) || date.After(r.EndDate) {
		return false
	}
	return r.DocumentType == "" || r.DocumentType == documentType
}

// DelegationStatus constants
const (
	DelegationStatusActive    = "active"
	DelegationStatusExpired   = "expired"
	DelegationStatusRevoked   = "revoked"
	DelegationStatusScheduled = "scheduled"
)

// GetStatus returns the current status of the delegation rule
func (r *DelegationRule) GetStatus() string {
	now := time.Now()

	if r.RevokedAt != nil || !r.IsActive {
		return DelegationStatusRevoked
	}
	if now.Before(r.StartDate) {
		return DelegationStatusScheduled
	}
	if now.After(r.EndDate) {
		return DelegationStatusExpired
	}
	return DelegationStatusActive
}
