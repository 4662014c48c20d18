package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"hr-approval-service/internal/models"
	"hr-approval-service/internal/repository"
)

// AdminHandler handles HTTP requests for approval configuration: templates,
// conditional routes and arbitrary-approval rules
type AdminHandler struct {
	templates repository.TemplateRepositoryInterface
	rules     repository.RuleRepositoryInterface
}

// NewAdminHandler creates a new AdminHandler
func NewAdminHandler(templates repository.TemplateRepositoryInterface, rules repository.RuleRepositoryInterface) *AdminHandler {
	return &AdminHandler{templates: templates, rules: rules}
}

// CreateTemplateRequest is the request body for creating a template
type CreateTemplateRequest struct {
	Name         string                `json:"name" binding:"required"`
	Description  string                `json:"description"`
	DocumentType string                `json:"documentType" binding:"required"`
	IsDefault    bool                  `json:"isDefault"`
	Lines        []TemplateLineRequest `json:"lines" binding:"required,min=1,dive"`
}

// TemplateLineRequest is one template line in a create request
type TemplateLineRequest struct {
	Sequence         int                 `json:"sequence" binding:"required,min=1"`
	LineType         string              `json:"lineType"`
	ApproverType     models.ApproverType `json:"approverType" binding:"required"`
	ApproverUserID   *uuid.UUID          `json:"approverUserId"`
	ApproverUserName string              `json:"approverUserName"`
	DepartmentID     *uuid.UUID          `json:"departmentId"`
	PositionCode     string              `json:"positionCode"`
}

// CreateRouteRequest is the request body for creating a conditional route
type CreateRouteRequest struct {
	SourceTemplateID uuid.UUID `json:"sourceTemplateId" binding:"required"`
	ConditionField   string    `json:"conditionField" binding:"required"`
	Operator         string    `json:"operator" binding:"required,oneof=LT LTE GT GTE EQ"`
	Value            string    `json:"value" binding:"required"`
	TargetTemplateID uuid.UUID `json:"targetTemplateId" binding:"required"`
	Priority         int       `json:"priority"`
}

// CreateRuleRequest is the request body for creating an arbitrary rule
type CreateRuleRequest struct {
	DocumentType   string `json:"documentType" binding:"required"`
	ConditionType  string `json:"conditionType" binding:"required"`
	Operator       string `json:"operator" binding:"required,oneof=LT LTE GT GTE EQ"`
	Value          string `json:"value" binding:"required"`
	SkipToSequence int    `json:"skipToSequence" binding:"required,min=1"`
	Priority       int    `json:"priority"`
}

// CreateTemplate creates an approval template with its lines
// @Summary Create approval template
// @Tags Admin
// @Accept json
// @Produce json
// @Param request body CreateTemplateRequest true "Create Template"
// @Success 201 {object} models.ApprovalTemplate
// @Router /api/v1/admin/templates [post]
func (h *AdminHandler) CreateTemplate(c *gin.Context) {
	tenantID, _, ok := requireIdentity(c)
	if !ok {
		return
	}

	var req CreateTemplateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	template := &models.ApprovalTemplate{
		TenantID:     tenantID,
		Name:         req.Name,
		Description:  req.Description,
		DocumentType: req.DocumentType,
		IsDefault:    req.IsDefault,
		IsActive:     true,
	}
	for _, line := range req.Lines {
		lineType := line.LineType
		if lineType == "" {
			lineType = models.LineTypeSequential
		}
		template.Lines = append(template.Lines, models.ApprovalTemplateLine{
			Sequence:         line.Sequence,
			LineType:         lineType,
			ApproverType:     line.ApproverType,
			ApproverUserID:   line.ApproverUserID,
			ApproverUserName: line.ApproverUserName,
			DepartmentID:     line.DepartmentID,
			PositionCode:     line.PositionCode,
		})
	}

	if err := h.templates.CreateTemplate(c.Request.Context(), template); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, template)
}

// ListTemplates lists the tenant's templates, system templates included
// @Summary List approval templates
// @Tags Admin
// @Produce json
// @Success 200 {array} models.ApprovalTemplate
// @Router /api/v1/admin/templates [get]
func (h *AdminHandler) ListTemplates(c *gin.Context) {
	tenantID, _, ok := requireIdentity(c)
	if !ok {
		return
	}
	templates, err := h.templates.ListTemplates(c.Request.Context(), tenantID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, templates)
}

// GetTemplate retrieves a template with its lines
// @Summary Get approval template
// @Tags Admin
// @Produce json
// @Param id path string true "Template ID"
// @Success 200 {object} models.ApprovalTemplate
// @Router /api/v1/admin/templates/{id} [get]
func (h *AdminHandler) GetTemplate(c *gin.Context) {
	tenantID, _, ok := requireIdentity(c)
	if !ok {
		return
	}
	templateID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid template id"})
		return
	}

	template, err := h.templates.GetTemplateByID(c.Request.Context(), templateID)
	if err != nil {
		respondError(c, err)
		return
	}
	if template.TenantID != tenantID && template.TenantID != "system" {
		c.JSON(http.StatusNotFound, gin.H{"error": "template not found"})
		return
	}
	c.JSON(http.StatusOK, template)
}

// CreateRoute creates a conditional route between templates
// @Summary Create conditional route
// @Tags Admin
// @Accept json
// @Produce json
// @Param request body CreateRouteRequest true "Create Route"
// @Success 201 {object} models.ConditionalRoute
// @Router /api/v1/admin/routes [post]
func (h *AdminHandler) CreateRoute(c *gin.Context) {
	tenantID, _, ok := requireIdentity(c)
	if !ok {
		return
	}

	var req CreateRouteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	route := &models.ConditionalRoute{
		TenantID:         tenantID,
		SourceTemplateID: req.SourceTemplateID,
		ConditionField:   req.ConditionField,
		Operator:         req.Operator,
		Value:            req.Value,
		TargetTemplateID: req.TargetTemplateID,
		Priority:         req.Priority,
		IsActive:         true,
	}
	if err := h.rules.CreateRoute(c.Request.Context(), route); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, route)
}

// CreateRule creates an arbitrary-approval rule
// @Summary Create arbitrary-approval rule
// @Tags Admin
// @Accept json
// @Produce json
// @Param request body CreateRuleRequest true "Create Rule"
// @Success 201 {object} models.ArbitraryApprovalRule
// @Router /api/v1/admin/rules [post]
func (h *AdminHandler) CreateRule(c *gin.Context) {
	tenantID, _, ok := requireIdentity(c)
	if !ok {
		return
	}

	var req CreateRuleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	rule := &models.ArbitraryApprovalRule{
		TenantID:       tenantID,
		DocumentType:   req.DocumentType,
		ConditionType:  req.ConditionType,
		Operator:       req.Operator,
		Value:          req.Value,
		SkipToSequence: req.SkipToSequence,
		Priority:       req.Priority,
		IsActive:       true,
	}
	if err := h.rules.CreateArbitraryRule(c.Request.Context(), rule); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, rule)
}

// ListRules lists active arbitrary-approval rules for a document type
// @Summary List arbitrary-approval rules
// @Tags Admin
// @Produce json
// @Param documentType query string true "Document type"
// @Success 200 {array} models.ArbitraryApprovalRule
// @Router /api/v1/admin/rules [get]
func (h *AdminHandler) ListRules(c *gin.Context) {
	tenantID, _, ok := requireIdentity(c)
	if !ok {
		return
	}
	documentType := c.Query("documentType")
	if documentType == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "documentType query parameter is required"})
		return
	}

	rules, err := h.rules.ListActiveRules(c.Request.Context(), tenantID, documentType)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, rules)
}
