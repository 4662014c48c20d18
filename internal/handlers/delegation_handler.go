package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"hr-approval-service/internal/engine"
)

// DelegationHandler handles HTTP requests for delegation rules
type DelegationHandler struct {
	service *engine.DelegationService
}

// NewDelegationHandler creates a new DelegationHandler
func NewDelegationHandler(service *engine.DelegationService) *DelegationHandler {
	return &DelegationHandler{service: service}
}

// CreateDelegationRequest is the request body for creating a delegation rule
type CreateDelegationRequest struct {
	DelegateID   uuid.UUID `json:"delegateId" binding:"required"`
	DelegateName string    `json:"delegateName"`
	DocumentType string    `json:"documentType"`
	Reason       string    `json:"reason"`
	StartDate    time.Time `json:"startDate" binding:"required"`
	EndDate      time.Time `json:"endDate" binding:"required"`
}

// RevokeDelegationRequest is the request body for revoking a delegation rule
type RevokeDelegationRequest struct {
	Reason string `json:"reason"`
}

// CreateDelegation creates a delegation rule with the caller as delegator
// @Summary Create delegation rule
// @Tags Delegations
// @Accept json
// @Produce json
// @Param request body CreateDelegationRequest true "Create Delegation"
// @Success 201 {object} models.DelegationRule
// @Router /api/v1/delegations [post]
func (h *DelegationHandler) CreateDelegation(c *gin.Context) {
	tenantID, actorID, ok := requireIdentity(c)
	if !ok {
		return
	}

	var req CreateDelegationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	rule, err := h.service.CreateDelegation(c.Request.Context(), engine.CreateDelegationInput{
		TenantID:      tenantID,
		DelegatorID:   actorID,
		DelegatorName: c.GetString("user_name"),
		DelegateID:    req.DelegateID,
		DelegateName:  req.DelegateName,
		DocumentType:  req.DocumentType,
		Reason:        req.Reason,
		StartDate:     req.StartDate,
		EndDate:       req.EndDate,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, rule)
}

// ListDelegations lists the caller's delegation rules
// @Summary List my delegation rules
// @Tags Delegations
// @Produce json
// @Param role query string false "delegator (default) or delegate"
// @Param includeExpired query bool false "Include expired and revoked rules"
// @Success 200 {array} models.DelegationRule
// @Router /api/v1/delegations [get]
func (h *DelegationHandler) ListDelegations(c *gin.Context) {
	tenantID, actorID, ok := requireIdentity(c)
	if !ok {
		return
	}
	includeExpired := c.Query("includeExpired") == "true"

	var err error
	var rules interface{}
	if c.DefaultQuery("role", "delegator") == "delegate" {
		rules, err = h.service.ListForDelegate(c.Request.Context(), tenantID, actorID, includeExpired)
	} else {
		rules, err = h.service.ListForDelegator(c.Request.Context(), tenantID, actorID, includeExpired)
	}
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, rules)
}

// RevokeDelegation revokes one of the caller's delegation rules
// @Summary Revoke delegation rule
// @Tags Delegations
// @Accept json
// @Produce json
// @Param id path string true "Rule ID"
// @Param request body RevokeDelegationRequest false "Revocation reason"
// @Success 200 {object} models.DelegationRule
// @Router /api/v1/delegations/{id} [delete]
func (h *DelegationHandler) RevokeDelegation(c *gin.Context) {
	tenantID, actorID, ok := requireIdentity(c)
	if !ok {
		return
	}
	ruleID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid rule id"})
		return
	}

	var req RevokeDelegationRequest
	if c.Request.Body != nil && c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}

	rule, err := h.service.RevokeDelegation(c.Request.Context(), tenantID, ruleID, actorID, req.Reason)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, rule)
}
