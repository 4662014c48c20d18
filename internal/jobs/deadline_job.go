package jobs

import (
	"context"
	"encoding/json"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/datatypes"

	"hr-approval-service/internal/engine"
	"hr-approval-service/internal/models"
	"hr-approval-service/internal/repository"
)

// DeadlineJob flags pending documents whose deadline has passed. Escalation
// is idempotent: the escalated flag is flipped exactly once per document via
// a conditional update, so concurrent pods cannot double-publish.
type DeadlineJob struct {
	repo     repository.DocumentRepositoryInterface
	events   engine.EventPublisher
	logger   *logrus.Logger
	interval time.Duration
	stopCh   chan struct{}
}

// NewDeadlineJob creates a new deadline job
func NewDeadlineJob(repo repository.DocumentRepositoryInterface, events engine.EventPublisher, logger *logrus.Logger) *DeadlineJob {
	if logger == nil {
		logger = logrus.New()
	}
	return &DeadlineJob{
		repo:     repo,
		events:   events,
		logger:   logger,
		interval: 15 * time.Minute, // Check every 15 minutes
		stopCh:   make(chan struct{}),
	}
}

// Start begins the deadline job
func (j *DeadlineJob) Start(ctx context.Context) {
	j.logger.Info("Deadline job started")

	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	// Run immediately on start
	j.runDeadlineCheck(ctx)

	for {
		select {
		case <-ticker.C:
			j.runDeadlineCheck(ctx)
		case <-j.stopCh:
			j.logger.Info("Deadline job stopped")
			return
		case <-ctx.Done():
			j.logger.Info("Deadline job context cancelled")
			return
		}
	}
}

// Stop signals the job to stop
func (j *DeadlineJob) Stop() {
	close(j.stopCh)
}

// runDeadlineCheck finds and escalates past-deadline documents
func (j *DeadlineJob) runDeadlineCheck(ctx context.Context) {
	j.logger.Debug("Running deadline check...")

	docs, err := j.repo.FindPastDeadline(ctx)
	if err != nil {
		j.logger.Errorf("Failed to find past-deadline documents: %v", err)
		return
	}
	if len(docs) == 0 {
		j.logger.Debug("No documents past deadline")
		return
	}

	j.logger.Infof("Found %d documents past deadline", len(docs))

	for i := range docs {
		doc := &docs[i]
		escalated, err := j.repo.MarkEscalated(ctx, doc.ID)
		if err != nil {
			j.logger.Errorf("Failed to escalate document %s: %v", doc.ID, err)
			continue
		}
		if !escalated {
			// Another pod got there first
			continue
		}
		doc.Escalated = true

		j.writeAudit(ctx, doc)
		if j.events != nil {
			j.events.PublishDocumentEvent(models.AuditEventEscalated, doc)
		}
		j.logger.Infof("Escalated document %s (deadline %s)", doc.DocumentNo, doc.DeadlineAt)
	}
}

func (j *DeadlineJob) writeAudit(ctx context.Context, doc *models.ApprovalDocument) {
	metadata, _ := json.Marshal(map[string]interface{}{
		"deadlineAt":     doc.DeadlineAt,
		"activeSequence": doc.ActiveSequence(),
	})
	entry := &models.ApprovalAuditLog{
		DocumentID: doc.ID,
		TenantID:   doc.TenantID,
		EventType:  models.AuditEventEscalated,
		Metadata:   datatypes.JSON(metadata),
	}
	if err := j.repo.CreateAuditLog(ctx, entry); err != nil {
		j.logger.Errorf("Failed to write escalation audit entry for %s: %v", doc.ID, err)
	}
}
