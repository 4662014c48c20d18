package events

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/sirupsen/logrus"

	"hr-approval-service/internal/models"
)

// Publisher publishes document lifecycle events to NATS. Events are
// fire-and-forget: a publish failure is logged and never propagated to the
// workflow that triggered it.
type Publisher struct {
	conn   *nats.Conn
	logger *logrus.Entry
}

// DocumentEvent is the wire payload for approval.document.* subjects
type DocumentEvent struct {
	EventType    string    `json:"eventType"`
	DocumentID   string    `json:"documentId"`
	DocumentNo   string    `json:"documentNo"`
	TenantID     string    `json:"tenantId"`
	DocumentType string    `json:"documentType"`
	Status       string    `json:"status"`
	DrafterID    string    `json:"drafterId"`
	Timestamp    time.Time `json:"timestamp"`
}

// NewPublisher connects to NATS. Returns an error when the server is
// unreachable; callers may choose to run without events.
func NewPublisher(url string, logger *logrus.Logger) (*Publisher, error) {
	if logger == nil {
		logger = logrus.New()
	}
	conn, err := nats.Connect(url,
		nats.Name("hr-approval-service"),
		nats.ReconnectWait(2*time.Second),
		nats.MaxReconnects(-1),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS at %s: %w", url, err)
	}
	return &Publisher{
		conn:   conn,
		logger: logger.WithField("component", "event-publisher"),
	}, nil
}

// PublishDocumentEvent publishes to approval.document.<eventType>
func (p *Publisher) PublishDocumentEvent(eventType string, doc *models.ApprovalDocument) {
	if p == nil || p.conn == nil {
		return
	}
	event := DocumentEvent{
		EventType:    eventType,
		DocumentID:   doc.ID.String(),
		DocumentNo:   doc.DocumentNo,
		TenantID:     doc.TenantID,
		DocumentType: doc.DocumentType,
		Status:       doc.Status,
		DrafterID:    doc.DrafterID.String(),
		Timestamp:    time.Now(),
	}
	payload, err := json.Marshal(event)
	if err != nil {
		p.logger.WithError(err).Error("Failed to encode document event")
		return
	}

	subject := fmt.Sprintf("approval.document.%s", eventType)
	if err := p.conn.Publish(subject, payload); err != nil {
		p.logger.WithFields(logrus.Fields{
			"subject":    subject,
			"documentId": doc.ID,
		}).WithError(err).Error("Failed to publish document event")
		return
	}
	p.logger.WithFields(logrus.Fields{
		"subject":    subject,
		"documentId": doc.ID,
	}).Debug("Document event published")
}

// Close drains the connection
func (p *Publisher) Close() {
	if p != nil && p.conn != nil {
		p.conn.Close()
	}
}
