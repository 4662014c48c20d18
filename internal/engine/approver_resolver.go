package engine

import (
	"context"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"hr-approval-service/internal/clients"
	"hr-approval-service/internal/models"
)

// DrafterContext carries the identity of the drafting employee, threaded
// explicitly through resolution instead of ambient state
type DrafterContext struct {
	ID           uuid.UUID
	Name         string
	DepartmentID *uuid.UUID
}

// ApproverResolver turns a template line into a concrete approver by
// querying the organization and employee directories. Resolution is
// side-effect-free and safe to call concurrently.
type ApproverResolver struct {
	org    clients.OrganizationDirectory
	emp    clients.EmployeeDirectory
	logger *logrus.Entry
}

// NewApproverResolver creates a new ApproverResolver
func NewApproverResolver(org clients.OrganizationDirectory, emp clients.EmployeeDirectory, logger *logrus.Logger) *ApproverResolver {
	if logger == nil {
		logger = logrus.New()
	}
	return &ApproverResolver{
		org:    org,
		emp:    emp,
		logger: logger.WithField("component", "approver-resolver"),
	}
}

// Resolve returns a pending approval line for the template line, or nil when
// no approver can be determined. Directory failures are logged and reduce to
// nil: a lookup that fails for one line must not abort resolution of the
// rest of the set.
func (r *ApproverResolver) Resolve(ctx context.Context, tenantID string, line models.ApprovalTemplateLine, drafter DrafterContext) *models.ApprovalLine {
	switch line.ApproverType {
	case models.ApproverSpecificUser:
		if line.ApproverUserID == nil {
			r.logger.WithField("templateLineId", line.ID).Warn("specific_user line has no user id configured")
			return nil
		}
		return newPendingLine(line, *line.ApproverUserID, line.ApproverUserName, "", "")

	case models.ApproverDepartmentHead:
		departmentID := line.DepartmentID
		if departmentID == nil {
			departmentID = drafter.DepartmentID
		}
		if departmentID == nil {
			r.logger.WithField("templateLineId", line.ID).Warn("department_head line has no department and drafter has none")
			return nil
		}
		head, err := r.org.GetDepartmentHead(ctx, tenantID, *departmentID)
		if err != nil {
			r.logger.WithFields(logrus.Fields{
				"templateLineId": line.ID,
				"departmentId":   departmentID,
			}).WithError(err).Warn("department head lookup failed, dropping line")
			return nil
		}
		return newPendingLine(line, head.EmployeeID, head.EmployeeName, head.PositionName, head.DepartmentName)

	case models.ApproverDrafterManager:
		manager, err := r.emp.GetManager(ctx, tenantID, drafter.ID)
		if err != nil {
			r.logger.WithFields(logrus.Fields{
				"templateLineId": line.ID,
				"drafterId":      drafter.ID,
			}).WithError(err).Warn("drafter manager lookup failed, dropping line")
			return nil
		}
		return newPendingLine(line, manager.EmployeeID, manager.EmployeeName, manager.PositionName, manager.DepartmentName)

	case models.ApproverPositionHolder:
		if line.PositionCode == "" {
			r.logger.WithField("templateLineId", line.ID).Warn("position_holder line has no position code configured")
			return nil
		}
		departmentID := line.DepartmentID
		if departmentID == nil {
			departmentID = drafter.DepartmentID
		}
		if departmentID == nil {
			r.logger.WithField("templateLineId", line.ID).Warn("position_holder line has no department and drafter has none")
			return nil
		}
		holder, err := r.org.GetPositionHolder(ctx, tenantID, line.PositionCode, *departmentID)
		if err != nil {
			r.logger.WithFields(logrus.Fields{
				"templateLineId": line.ID,
				"positionCode":   line.PositionCode,
			}).WithError(err).Warn("position holder lookup failed, dropping line")
			return nil
		}
		return newPendingLine(line, holder.EmployeeID, holder.EmployeeName, holder.PositionName, holder.DepartmentName)

	default:
		// The approver-type set is closed; an unknown value is misconfigured
		// template data, not a resolvable strategy
		r.logger.WithFields(logrus.Fields{
			"templateLineId": line.ID,
			"approverType":   line.ApproverType,
		}).Error("unknown approver type in template line")
		return nil
	}
}

func newPendingLine(templateLine models.ApprovalTemplateLine, approverID uuid.UUID, name, position, department string) *models.ApprovalLine {
	return &models.ApprovalLine{
		Sequence:           templateLine.Sequence,
		LineType:           templateLine.LineType,
		ApproverID:         approverID,
		ApproverName:       name,
		ApproverPosition:   position,
		ApproverDepartment: department,
		Status:             models.LineStatusPending,
	}
}
