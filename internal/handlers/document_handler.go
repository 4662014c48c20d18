package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"hr-approval-service/internal/engine"
	"hr-approval-service/internal/repository"
)

// DocumentHandler handles HTTP requests for approval documents
type DocumentHandler struct {
	service *engine.DocumentService
}

// NewDocumentHandler creates a new DocumentHandler
func NewDocumentHandler(service *engine.DocumentService) *DocumentHandler {
	return &DocumentHandler{service: service}
}

// CreateDocumentRequest is the request body for creating a document
type CreateDocumentRequest struct {
	Title               string            `json:"title" binding:"required"`
	Content             string            `json:"content"`
	DocumentType        string            `json:"documentType" binding:"required"`
	TemplateID          *uuid.UUID        `json:"templateId"`
	DrafterDepartmentID *uuid.UUID        `json:"drafterDepartmentId"`
	ReferenceType       string            `json:"referenceType"`
	ReferenceID         *uuid.UUID        `json:"referenceId"`
	Conditions          map[string]string `json:"conditions"`
	DeadlineAt          *time.Time        `json:"deadlineAt"`
}

// ActionRequest is the request body for approve/cancel actions
type ActionRequest struct {
	Comment string `json:"comment"`
}

// RejectRequest is the request body for rejecting a line. A rejection must
// carry a comment so the drafter knows why the document came back.
type RejectRequest struct {
	Comment string `json:"comment" binding:"required"`
}

// CreateDocument creates a new approval document in draft
// @Summary Create approval document
// @Tags Documents
// @Accept json
// @Produce json
// @Param request body CreateDocumentRequest true "Create Document"
// @Success 201 {object} models.ApprovalDocument
// @Router /api/v1/documents [post]
func (h *DocumentHandler) CreateDocument(c *gin.Context) {
	tenantID, actorID, ok := requireIdentity(c)
	if !ok {
		return
	}

	var req CreateDocumentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	doc, err := h.service.CreateDocument(c.Request.Context(), engine.CreateDocumentInput{
		TenantID:     tenantID,
		Title:        req.Title,
		Content:      req.Content,
		DocumentType: req.DocumentType,
		TemplateID:   req.TemplateID,
		Drafter: engine.DrafterContext{
			ID:           actorID,
			Name:         c.GetString("user_name"),
			DepartmentID: req.DrafterDepartmentID,
		},
		ReferenceType: req.ReferenceType,
		ReferenceID:   req.ReferenceID,
		Conditions:    req.Conditions,
		DeadlineAt:    req.DeadlineAt,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, doc)
}

// GetDocument retrieves a document with its lines
// @Summary Get approval document
// @Tags Documents
// @Produce json
// @Param id path string true "Document ID"
// @Success 200 {object} models.ApprovalDocument
// @Router /api/v1/documents/{id} [get]
func (h *DocumentHandler) GetDocument(c *gin.Context) {
	tenantID, _, ok := requireIdentity(c)
	if !ok {
		return
	}
	documentID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid document id"})
		return
	}

	doc, err := h.service.GetDocument(c.Request.Context(), tenantID, documentID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, doc)
}

// ListMyDocuments lists the caller's drafted documents
// @Summary List my documents
// @Tags Documents
// @Produce json
// @Param limit query int false "Page size"
// @Param offset query int false "Offset"
// @Success 200 {object} map[string]interface{}
// @Router /api/v1/documents/mine [get]
func (h *DocumentHandler) ListMyDocuments(c *gin.Context) {
	tenantID, actorID, ok := requireIdentity(c)
	if !ok {
		return
	}
	limit, offset := pagination(c)

	docs, total, err := h.service.ListMyDocuments(c.Request.Context(), tenantID, actorID, limit, offset)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"documents": docs, "total": total, "limit": limit, "offset": offset})
}

// ListPendingApprovals lists documents awaiting the caller's approval
// @Summary List documents pending my approval
// @Tags Documents
// @Produce json
// @Param limit query int false "Page size"
// @Param offset query int false "Offset"
// @Success 200 {object} map[string]interface{}
// @Router /api/v1/documents/pending [get]
func (h *DocumentHandler) ListPendingApprovals(c *gin.Context) {
	tenantID, actorID, ok := requireIdentity(c)
	if !ok {
		return
	}
	limit, offset := pagination(c)

	docs, total, err := h.service.ListPendingApprovals(c.Request.Context(), tenantID, actorID, limit, offset)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"documents": docs, "total": total, "limit": limit, "offset": offset})
}

// SubmitDocument submits a draft for approval
// @Summary Submit document
// @Tags Documents
// @Produce json
// @Param id path string true "Document ID"
// @Success 200 {object} models.ApprovalDocument
// @Router /api/v1/documents/{id}/submit [post]
func (h *DocumentHandler) SubmitDocument(c *gin.Context) {
	h.act(c, func(tenantID string, documentID, actorID uuid.UUID, _ string) (interface{}, error) {
		return h.service.Submit(c.Request.Context(), tenantID, documentID, actorID)
	})
}

// ApproveLine approves the caller's active line
// @Summary Approve active line
// @Tags Documents
// @Accept json
// @Produce json
// @Param id path string true "Document ID"
// @Param request body ActionRequest false "Approval comment"
// @Success 200 {object} models.ApprovalDocument
// @Router /api/v1/documents/{id}/approve [post]
func (h *DocumentHandler) ApproveLine(c *gin.Context) {
	h.act(c, func(tenantID string, documentID, actorID uuid.UUID, comment string) (interface{}, error) {
		return h.service.Approve(c.Request.Context(), tenantID, documentID, actorID, comment)
	})
}

// RejectLine rejects the caller's active line
// @Summary Reject active line
// @Tags Documents
// @Accept json
// @Produce json
// @Param id path string true "Document ID"
// @Param request body RejectRequest true "Rejection comment"
// @Success 200 {object} models.ApprovalDocument
// @Router /api/v1/documents/{id}/reject [post]
func (h *DocumentHandler) RejectLine(c *gin.Context) {
	tenantID, actorID, ok := requireIdentity(c)
	if !ok {
		return
	}
	documentID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid document id"})
		return
	}

	var req RejectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "comment is required when rejecting"})
		return
	}

	doc, err := h.service.Reject(c.Request.Context(), tenantID, documentID, actorID, req.Comment)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, doc)
}

// RecallDocument pulls a pending document back to draft
// @Summary Recall document
// @Tags Documents
// @Produce json
// @Param id path string true "Document ID"
// @Success 200 {object} models.ApprovalDocument
// @Router /api/v1/documents/{id}/recall [post]
func (h *DocumentHandler) RecallDocument(c *gin.Context) {
	h.act(c, func(tenantID string, documentID, actorID uuid.UUID, _ string) (interface{}, error) {
		return h.service.Recall(c.Request.Context(), tenantID, documentID, actorID)
	})
}

// CancelDocument terminally withdraws a document
// @Summary Cancel document
// @Tags Documents
// @Accept json
// @Produce json
// @Param id path string true "Document ID"
// @Param request body ActionRequest false "Cancellation reason"
// @Success 200 {object} models.ApprovalDocument
// @Router /api/v1/documents/{id}/cancel [post]
func (h *DocumentHandler) CancelDocument(c *gin.Context) {
	h.act(c, func(tenantID string, documentID, actorID uuid.UUID, comment string) (interface{}, error) {
		return h.service.Cancel(c.Request.Context(), tenantID, documentID, actorID, comment)
	})
}

// GetDocumentHistory returns the document's audit trail
// @Summary Get document history
// @Tags Documents
// @Produce json
// @Param id path string true "Document ID"
// @Success 200 {array} models.ApprovalAuditLog
// @Router /api/v1/documents/{id}/history [get]
func (h *DocumentHandler) GetDocumentHistory(c *gin.Context) {
	tenantID, _, ok := requireIdentity(c)
	if !ok {
		return
	}
	documentID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid document id"})
		return
	}

	history, err := h.service.GetHistory(c.Request.Context(), tenantID, documentID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, history)
}

// act runs a state-machine action with a parsed document id, actor identity
// and optional comment body
func (h *DocumentHandler) act(c *gin.Context, fn func(tenantID string, documentID, actorID uuid.UUID, comment string) (interface{}, error)) {
	tenantID, actorID, ok := requireIdentity(c)
	if !ok {
		return
	}
	documentID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid document id"})
		return
	}

	var req ActionRequest
	if c.Request.Body != nil && c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}

	result, err := fn(tenantID, documentID, actorID, req.Comment)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// requireIdentity pulls tenant and actor identity set by middleware
func requireIdentity(c *gin.Context) (string, uuid.UUID, bool) {
	tenantID := c.GetString("tenant_id")
	userIDStr := c.GetString("user_id")
	if tenantID == "" || userIDStr == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "tenant_id and user_id are required"})
		return "", uuid.Nil, false
	}
	userID, err := uuid.Parse(userIDStr)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user_id"})
		return "", uuid.Nil, false
	}
	return tenantID, userID, true
}

func pagination(c *gin.Context) (int, int) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}

// respondError maps engine and repository errors onto HTTP statuses
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, engine.ErrDocumentNotFound),
		errors.Is(err, engine.ErrTemplateNotFound),
		errors.Is(err, engine.ErrDelegationNotFound),
		errors.Is(err, repository.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, engine.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, engine.ErrInvalidState),
		errors.Is(err, engine.ErrLineNotActive),
		errors.Is(err, engine.ErrDelegationOverlap),
		errors.Is(err, repository.ErrVersionConflict):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, engine.ErrNoLinesResolved),
		errors.Is(err, engine.ErrInvalidDelegation):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "An internal error occurred"})
	}
}
