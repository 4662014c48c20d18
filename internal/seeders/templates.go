package seeders

import (
	"log"

	"gorm.io/gorm"

	"hr-approval-service/internal/models"
)

// SeedSystemTemplates creates system-level approval templates. These use
// tenant_id 'system' and serve as fallback defaults for every tenant. Seeding
// is skip-if-exists: template lines are only written on first creation so a
// redeploy does not duplicate or reorder them.
func SeedSystemTemplates(db *gorm.DB) error {
	templates := []models.ApprovalTemplate{
		{
			TenantID:     "system",
			Name:         "leave_request_default",
			Description:  "Manager then department head sign-off for leave requests",
			DocumentType: "LEAVE_REQUEST",
			IsDefault:    true,
			IsSystem:     true,
			IsActive:     true,
			Lines: []models.ApprovalTemplateLine{
				{Sequence: 1, LineType: models.LineTypeSequential, ApproverType: models.ApproverDrafterManager},
				{Sequence: 2, LineType: models.LineTypeSequential, ApproverType: models.ApproverDepartmentHead},
			},
		},
		{
			TenantID:     "system",
			Name:         "expense_claim_default",
			Description:  "Three-step expense approval ending at the finance director",
			DocumentType: "EXPENSE_CLAIM",
			IsDefault:    true,
			IsSystem:     true,
			IsActive:     true,
			Lines: []models.ApprovalTemplateLine{
				{Sequence: 1, LineType: models.LineTypeSequential, ApproverType: models.ApproverDrafterManager},
				{Sequence: 2, LineType: models.LineTypeSequential, ApproverType: models.ApproverDepartmentHead},
				{Sequence: 3, LineType: models.LineTypeSequential, ApproverType: models.ApproverPositionHolder, PositionCode: "FIN_DIRECTOR"},
			},
		},
	}

	for _, template := range templates {
		var count int64
		if err := db.Model(&models.ApprovalTemplate{}).
			Where("tenant_id = ? AND name = ?", template.TenantID, template.Name).
			Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			continue
		}

		if err := db.Create(&template).Error; err != nil {
			log.Printf("Failed to seed template %s: %v", template.Name, err)
			return err
		}
		log.Printf("Seeded template: %s (tenant: %s)", template.Name, template.TenantID)
	}

	return nil
}
