package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"budgetwise/internal/pagination"
	"budgetwise/internal/services"
)

// AuditHandler serves the audit trail of mutating requests.
type AuditHandler struct {
	auditService services.AuditServicer
}

// NewAuditHandler creates a new AuditHandler.
func NewAuditHandler(auditService services.AuditServicer) *AuditHandler {
	return &AuditHandler{auditService: auditService}
}

// AuditQuery holds the audit log filters.
type AuditQuery struct {
	pagination.PageRequest
	ResourceType string `form:"resource_type" binding:"max=50"`
	ResourceID   string `form:"resource_id" binding:"omitempty,uuid"`
	Action       string `form:"action" binding:"max=50"`
}

// GetAuditLogs handles listing audit log entries.
// @Summary     List audit logs
// @Tags        audit
// @Produce     json
// @Param       resource_type query string false "Resource type (category, transaction, ...)"
// @Param       resource_id   query string false "Resource ID"
// @Param       action        query string false "Action (CREATE_CATEGORY, ...)"
// @Param       page          query int    false "Page number (default 1)"
// @Param       page_size     query int    false "Items per page (default 20, max 100)"
// @Success     200 {object} pagination.PageResponse[models.AuditLog] "Paginated audit logs"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Router      /audit-logs [get]
func (h *AuditHandler) GetAuditLogs(c *gin.Context) {
	var q AuditQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		respondWithError(c, bindError(err))
		return
	}

	result, err := h.auditService.GetAuditLogs(services.AuditFilter{
		ResourceType: q.ResourceType,
		ResourceID:   q.ResourceID,
		Action:       q.Action,
	}, q.PageRequest)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}
