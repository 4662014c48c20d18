package clients

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

// ErrNotFound is returned when a directory lookup has no result
var ErrNotFound = errors.New("directory entry not found")

// DirectoryEmployee is the shape returned by org/employee directory lookups
type DirectoryEmployee struct {
	EmployeeID     uuid.UUID `json:"employeeId"`
	EmployeeName   string    `json:"employeeName"`
	PositionCode   string    `json:"positionCode,omitempty"`
	PositionName   string    `json:"positionName,omitempty"`
	DepartmentName string    `json:"departmentName,omitempty"`
}

// OrganizationDirectory resolves approvers from the organization structure
type OrganizationDirectory interface {
	GetDepartmentHead(ctx context.Context, tenantID string, departmentID uuid.UUID) (*DirectoryEmployee, error)
	GetPositionHolder(ctx context.Context, tenantID string, positionCode string, departmentID uuid.UUID) (*DirectoryEmployee, error)
}

// EmployeeDirectory resolves reporting-line relationships
type EmployeeDirectory interface {
	GetManager(ctx context.Context, tenantID string, employeeID uuid.UUID) (*DirectoryEmployee, error)
}
