package engine

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"hr-approval-service/internal/models"
)

// LineBuilder materializes a template's line set into concrete pending
// approval lines for a new document: resolve each approver, then apply any
// delegation in effect on the build date.
type LineBuilder struct {
	resolver    *ApproverResolver
	delegations *DelegationResolver
	logger      *logrus.Entry
}

// NewLineBuilder creates a new LineBuilder
func NewLineBuilder(resolver *ApproverResolver, delegations *DelegationResolver, logger *logrus.Logger) *LineBuilder {
	if logger == nil {
		logger = logrus.New()
	}
	return &LineBuilder{
		resolver:    resolver,
		delegations: delegations,
		logger:      logger.WithField("component", "line-builder"),
	}
}

// Build resolves the template into pending lines in template order. Template
// sequence numbers are kept as-is, gaps included. Lines whose approver cannot
// be resolved are dropped; the caller decides whether an empty result is an
// error.
func (b *LineBuilder) Build(ctx context.Context, tenantID string, template *models.ApprovalTemplate, drafter DrafterContext, documentType string) ([]models.ApprovalLine, error) {
	now := time.Now()
	lines := make([]models.ApprovalLine, 0, len(template.Lines))

	for _, templateLine := range template.Lines {
		line := b.resolver.Resolve(ctx, tenantID, templateLine, drafter)
		if line == nil {
			continue
		}

		rule, err := b.delegations.Substitute(ctx, tenantID, line.ApproverID, documentType, now)
		if err != nil {
			return nil, err
		}
		if rule != nil {
			line.DelegateID = &rule.DelegateID
			line.DelegateName = rule.DelegateName
		}

		lines = append(lines, *line)
	}

	b.logger.WithFields(logrus.Fields{
		"templateId":    template.ID,
		"templateLines": len(template.Lines),
		"builtLines":    len(lines),
	}).Debug("line set built")
	return lines, nil
}
