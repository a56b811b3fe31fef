package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"budgetwise/internal/engine"
	"budgetwise/internal/models"
	"budgetwise/internal/pagination"
	"budgetwise/internal/services"
)

// AlertHandler handles alert lifecycle and notification preference requests.
type AlertHandler struct {
	alertService services.AlertServicer
	auditService services.AuditServicer
	loc          *time.Location
}

// NewAlertHandler creates a new AlertHandler.
func NewAlertHandler(alertService services.AlertServicer, auditService services.AuditServicer, loc *time.Location) *AlertHandler {
	if loc == nil {
		loc = time.UTC
	}
	return &AlertHandler{alertService: alertService, auditService: auditService, loc: loc}
}

// AlertQuery holds the alert list filters.
type AlertQuery struct {
	pagination.PageRequest
	Status     string               `form:"status" binding:"omitempty,alert_status"`
	Severity   models.AlertSeverity `form:"severity" binding:"omitempty,alert_severity"`
	Type       models.AlertType     `form:"type" binding:"omitempty,alert_type"`
	CategoryID string               `form:"category_id" binding:"omitempty,uuid"`
}

// CreateAlertRequest represents the request payload for raising an alert manually.
type CreateAlertRequest struct {
	Type       models.AlertType     `json:"type" binding:"required,alert_type"`
	CategoryID *string              `json:"category_id" binding:"omitempty,uuid"`
	Severity   models.AlertSeverity `json:"severity" binding:"omitempty,alert_severity"`
	Message    string               `json:"message" binding:"required,min=1,max=500"`
	Metadata   map[string]any       `json:"metadata"`
}

// SnoozeRequest represents the request payload for snoozing an alert.
type SnoozeRequest struct {
	Hours float64 `json:"hours" binding:"required,gt=0,lte=720"`
}

// EvaluateRequest represents the optional payload for an evaluation run.
type EvaluateRequest struct {
	Date string `json:"date"`
}

// DetectAnomalyRequest represents the request payload for anomaly detection.
type DetectAnomalyRequest struct {
	CategoryID  string  `json:"category_id" binding:"required,uuid"`
	Amount      float64 `json:"amount" binding:"required,gt=0"`
	Date        string  `json:"date"`
	RecordAlert bool    `json:"record_alert"`
}

// UpdatePreferencesRequest represents the request payload for notification preferences.
type UpdatePreferencesRequest struct {
	InAppEnabled    *bool   `json:"in_app_enabled"`
	EmailEnabled    *bool   `json:"email_enabled"`
	SMSEnabled      *bool   `json:"sms_enabled"`
	PushEnabled     *bool   `json:"push_enabled"`
	QuietHoursStart *string `json:"quiet_hours_start" binding:"omitempty,clock_time"`
	QuietHoursEnd   *string `json:"quiet_hours_end" binding:"omitempty,clock_time"`
}

// GetAlerts handles listing alerts.
// @Summary     List alerts
// @Description Expired snoozes are reopened before filtering. An empty status lists active alerts.
// @Tags        alerts
// @Produce     json
// @Param       status      query string false "active, dismissed, snoozed or all"
// @Param       severity    query string false "high, medium or low"
// @Param       type        query string false "Alert type"
// @Param       category_id query string false "Category"
// @Param       page        query int    false "Page number (default 1)"
// @Param       page_size   query int    false "Items per page (default 20, max 100)"
// @Success     200 {object} pagination.PageResponse[models.Alert] "Paginated alerts"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Router      /alerts [get]
func (h *AlertHandler) GetAlerts(c *gin.Context) {
	var q AlertQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		respondWithError(c, bindError(err))
		return
	}

	result, err := h.alertService.GetAlerts(engine.AlertFilter{
		Status:     q.Status,
		Severity:   q.Severity,
		Type:       q.Type,
		CategoryID: q.CategoryID,
	}, q.PageRequest)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// CreateAlert handles raising an alert manually.
// @Summary     Create an alert
// @Tags        alerts
// @Accept      json
// @Produce     json
// @Param       request body CreateAlertRequest true "Alert details"
// @Success     201 {object} models.Alert "Alert created"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     404 {object} ErrorResponse "Category not found"
// @Router      /alerts [post]
func (h *AlertHandler) CreateAlert(c *gin.Context) {
	var req CreateAlertRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, bindError(err))
		return
	}

	alert, err := h.alertService.CreateAlert(services.AlertInput{
		Type:       req.Type,
		CategoryID: req.CategoryID,
		Severity:   req.Severity,
		Message:    req.Message,
		Metadata:   req.Metadata,
	})
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"alert": alert})
}

// DismissAlert handles dismissing an alert.
// @Summary     Dismiss an alert
// @Tags        alerts
// @Produce     json
// @Param       id path string true "Alert ID"
// @Success     200 {object} models.Alert "Dismissed alert"
// @Failure     404 {object} ErrorResponse "Alert not found"
// @Failure     409 {object} ErrorResponse "Alert already dismissed"
// @Router      /alerts/{id}/dismiss [post]
func (h *AlertHandler) DismissAlert(c *gin.Context) {
	alertID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	alert, err := h.alertService.DismissAlert(alertID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log("DISMISS_ALERT", "alert", alertID, c.ClientIP(), nil)

	c.JSON(http.StatusOK, gin.H{"alert": alert})
}

// SnoozeAlert handles snoozing an alert.
// @Summary     Snooze an alert
// @Tags        alerts
// @Accept      json
// @Produce     json
// @Param       id      path string        true "Alert ID"
// @Param       request body SnoozeRequest true "Snooze duration"
// @Success     200 {object} models.Alert "Snoozed alert"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     404 {object} ErrorResponse "Alert not found"
// @Failure     409 {object} ErrorResponse "Alert dismissed"
// @Router      /alerts/{id}/snooze [post]
func (h *AlertHandler) SnoozeAlert(c *gin.Context) {
	alertID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req SnoozeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, bindError(err))
		return
	}

	alert, err := h.alertService.SnoozeAlert(alertID, req.Hours)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log("SNOOZE_ALERT", "alert", alertID, c.ClientIP(), map[string]any{"hours": req.Hours})

	c.JSON(http.StatusOK, gin.H{"alert": alert})
}

// EvaluateAlerts handles an evaluation run over current progress.
// @Summary     Evaluate alerts
// @Description Raise threshold and predictive alerts for categories without an open alert of the same type
// @Tags        alerts
// @Accept      json
// @Produce     json
// @Param       request body EvaluateRequest false "Reference date"
// @Success     200 {array}  models.Alert "Raised alerts"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Router      /alerts/evaluate [post]
func (h *AlertHandler) EvaluateAlerts(c *gin.Context) {
	var req EvaluateRequest
	if err := bindCalculateBody(c, &req); err != nil {
		respondWithError(c, err)
		return
	}
	ref, err := refDate(req.Date, h.loc)
	if err != nil {
		respondWithError(c, err)
		return
	}

	alerts, err := h.alertService.EvaluateAlerts(ref)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"alerts": alerts, "count": len(alerts)})
}

// DetectAnomaly handles checking an amount against a category's daily average.
// @Summary     Detect a spending anomaly
// @Tags        alerts
// @Accept      json
// @Produce     json
// @Param       request body DetectAnomalyRequest true "Amount to check"
// @Success     200 {object} services.AnomalyReport "Detection result"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     404 {object} ErrorResponse "Category not found"
// @Router      /alerts/anomalies/detect [post]
func (h *AlertHandler) DetectAnomaly(c *gin.Context) {
	var req DetectAnomalyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, bindError(err))
		return
	}
	ref, err := refDate(req.Date, h.loc)
	if err != nil {
		respondWithError(c, err)
		return
	}

	report, err := h.alertService.DetectAnomaly(services.AnomalyInput{
		CategoryID:  req.CategoryID,
		Amount:      req.Amount,
		Ref:         ref,
		RecordAlert: req.RecordAlert,
	})
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, report)
}

// GetPreferences handles reading notification preferences.
// @Summary     Get notification preferences
// @Tags        alerts
// @Produce     json
// @Success     200 {object} models.NotificationPreference "Preferences"
// @Router      /alerts/preferences [get]
func (h *AlertHandler) GetPreferences(c *gin.Context) {
	pref, err := h.alertService.GetPreferences()
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"preferences": pref})
}

// UpdatePreferences handles updating notification preferences.
// @Summary     Update notification preferences
// @Description Quiet hours must be given as a pair of HH:MM values
// @Tags        alerts
// @Accept      json
// @Produce     json
// @Param       request body UpdatePreferencesRequest true "Preferences"
// @Success     200 {object} models.NotificationPreference "Updated preferences"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Router      /alerts/preferences [put]
func (h *AlertHandler) UpdatePreferences(c *gin.Context) {
	var req UpdatePreferencesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, bindError(err))
		return
	}

	pref, err := h.alertService.UpdatePreferences(services.PreferenceInput{
		InAppEnabled:    req.InAppEnabled,
		EmailEnabled:    req.EmailEnabled,
		SMSEnabled:      req.SMSEnabled,
		PushEnabled:     req.PushEnabled,
		QuietHoursStart: req.QuietHoursStart,
		QuietHoursEnd:   req.QuietHoursEnd,
	})
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log("UPDATE_PREFERENCES", "notification_preference", pref.ID, c.ClientIP(), nil)

	c.JSON(http.StatusOK, gin.H{"preferences": pref})
}
