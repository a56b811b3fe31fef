package engine

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	apperrors "budgetwise/internal/errors"
	"budgetwise/internal/models"
)

// Metadata keys stored on alerts
const (
	MetaCondition = "condition"
	MetaSpent     = "spent_amount"
	MetaLimit     = "budget_limit"
	MetaPercent   = "spent_percentage"
)

// Conditions used to deduplicate predictive alerts
const (
	ConditionProjectedOver  = "projected_over"
	ConditionLowHealth      = "low_health"
	ConditionCriticalHealth = "critical_health"
	ConditionAnomaly        = "anomaly"
)

const (
	lowHealthScore      = 60.0
	criticalHealthScore = 40.0
)

// EffectiveStatus is the alert's status as observed at now: a snooze whose
// time has passed reads as active.
func EffectiveStatus(a *models.Alert, now time.Time) models.AlertStatus {
	if a.Status == models.AlertStatusSnoozed && (a.SnoozeUntil == nil || !now.Before(*a.SnoozeUntil)) {
		return models.AlertStatusActive
	}
	return a.Status
}

// Refresh reopens an expired snooze in place and reports whether it changed.
func Refresh(a *models.Alert, now time.Time) bool {
	if a.Status == models.AlertStatusSnoozed && EffectiveStatus(a, now) == models.AlertStatusActive {
		a.Status = models.AlertStatusActive
		a.SnoozeUntil = nil
		return true
	}
	return false
}

// Dismiss moves an alert to the terminal dismissed state.
func Dismiss(a *models.Alert, now time.Time) error {
	Refresh(a, now)
	if a.Status == models.AlertStatusDismissed {
		return apperrors.WithMessage(apperrors.ErrInvalidAlertTransition, "alert is already dismissed")
	}
	a.Status = models.AlertStatusDismissed
	a.SnoozeUntil = nil
	return nil
}

// Snooze hides an alert until now + hours. Snoozing again extends from now.
func Snooze(a *models.Alert, hours float64, now time.Time) error {
	if hours <= 0 || math.IsNaN(hours) || math.IsInf(hours, 0) {
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "snooze hours must be greater than zero")
	}
	if a.Status == models.AlertStatusDismissed {
		return apperrors.WithMessage(apperrors.ErrInvalidAlertTransition, "dismissed alerts cannot be snoozed")
	}
	until := now.Add(time.Duration(hours * float64(time.Hour)))
	a.Status = models.AlertStatusSnoozed
	a.SnoozeUntil = &until
	return nil
}

// AlertFilter selects alerts for listing. An empty Status means active;
// "all" matches every status.
type AlertFilter struct {
	Status     string
	Severity   models.AlertSeverity
	Type       models.AlertType
	CategoryID string
}

// StatusAll matches alerts in any status.
const StatusAll = "all"

// Matches evaluates the filter against the alert's effective status at now.
func (f AlertFilter) Matches(a *models.Alert, now time.Time) bool {
	status := f.Status
	if status == "" {
		status = string(models.AlertStatusActive)
	}
	if status != StatusAll && string(EffectiveStatus(a, now)) != status {
		return false
	}
	if f.Severity != "" && a.Severity != f.Severity {
		return false
	}
	if f.Type != "" && a.Type != f.Type {
		return false
	}
	if f.CategoryID != "" && (a.CategoryID == nil || *a.CategoryID != f.CategoryID) {
		return false
	}
	return true
}

// FilterAlerts refreshes each alert in place and returns those matching f.
func FilterAlerts(alerts []models.Alert, f AlertFilter, now time.Time) []models.Alert {
	out := make([]models.Alert, 0, len(alerts))
	for i := range alerts {
		Refresh(&alerts[i], now)
		if f.Matches(&alerts[i], now) {
			out = append(out, alerts[i])
		}
	}
	return out
}

// ThresholdSeverity maps a progress status to alert severity.
func ThresholdSeverity(status ProgressStatus) (models.AlertSeverity, bool) {
	switch status {
	case StatusCritical:
		return models.AlertSeverityHigh, true
	case StatusOver:
		return models.AlertSeverityMedium, true
	case StatusWarning:
		return models.AlertSeverityLow, true
	}
	return "", false
}

type dedupeKey struct {
	categoryID string
	alertType  models.AlertType
	condition  string
}

func keyOf(a *models.Alert) dedupeKey {
	k := dedupeKey{alertType: a.Type}
	if a.CategoryID != nil {
		k.categoryID = *a.CategoryID
	}
	if v, ok := a.Metadata[MetaCondition]; ok {
		k.condition = fmt.Sprint(v)
	}
	return k
}

// openKeys indexes the active and snoozed alerts.
func openKeys(existing []models.Alert, now time.Time) map[dedupeKey]bool {
	keys := make(map[dedupeKey]bool, len(existing))
	for i := range existing {
		if EffectiveStatus(&existing[i], now) == models.AlertStatusDismissed {
			continue
		}
		keys[keyOf(&existing[i])] = true
	}
	return keys
}

// EvaluateAlerts raises threshold alerts for records past their warning
// boundary, pace alerts for projected overspend, and health alerts for low
// health scores. Nothing is raised for a (category, type, condition) that
// already has an active or snoozed alert in existing.
func EvaluateAlerts(records []ProgressRecord, forecasts []ForecastRecord, existing []models.Alert, now time.Time) []models.Alert {
	keys := openKeys(existing, now)
	var raised []models.Alert
	add := func(a models.Alert) {
		k := keyOf(&a)
		if keys[k] {
			return
		}
		keys[k] = true
		raised = append(raised, a)
	}

	for _, r := range records {
		if !r.HasBudget() {
			continue
		}
		if sev, ok := ThresholdSeverity(r.Status); ok {
			add(newCategoryAlert(models.AlertTypeBudgetThreshold, r.CategoryID, sev,
				thresholdMessage(r), map[string]any{
					MetaCondition: string(r.Status),
					MetaSpent:     r.SpentAmount,
					MetaLimit:     r.BudgetLimit,
					MetaPercent:   r.SpentPercentage,
				}))
		}
		switch {
		case r.HealthScore < criticalHealthScore:
			add(newCategoryAlert(models.AlertTypeHealth, r.CategoryID, models.AlertSeverityHigh,
				fmt.Sprintf("%s budget health is critical (%.0f/100).", r.CategoryName, r.HealthScore),
				map[string]any{MetaCondition: ConditionCriticalHealth, "health_score": r.HealthScore}))
		case r.HealthScore < lowHealthScore:
			add(newCategoryAlert(models.AlertTypeHealth, r.CategoryID, models.AlertSeverityMedium,
				fmt.Sprintf("%s budget health is low (%.0f/100).", r.CategoryName, r.HealthScore),
				map[string]any{MetaCondition: ConditionLowHealth, "health_score": r.HealthScore}))
		}
	}

	for _, f := range forecasts {
		if f.Status != ForecastProjectedOver {
			continue
		}
		sev := models.AlertSeverityMedium
		if f.BudgetLimit > 0 && f.ProjectedOverAmount/f.BudgetLimit >= 0.5 {
			sev = models.AlertSeverityHigh
		}
		add(newCategoryAlert(models.AlertTypePace, f.CategoryID, sev,
			fmt.Sprintf("At the current pace %s will end the period %s over its %s budget.",
				f.CategoryName, FormatMoney(f.ProjectedOverAmount), FormatMoney(f.BudgetLimit)),
			map[string]any{
				MetaCondition:           ConditionProjectedOver,
				"forecasted_spend":      f.ForecastedSpend,
				"projected_over_amount": f.ProjectedOverAmount,
				MetaLimit:               f.BudgetLimit,
			}))
	}
	return raised
}

func thresholdMessage(r ProgressRecord) string {
	switch r.Status {
	case StatusCritical:
		return fmt.Sprintf("%s is far over budget: %s spent of %s (%s).", r.CategoryName, FormatMoney(r.SpentAmount), FormatMoney(r.BudgetLimit), FormatPercent(r.SpentPercentage))
	case StatusOver:
		return fmt.Sprintf("%s is over budget: %s spent of %s (%s).", r.CategoryName, FormatMoney(r.SpentAmount), FormatMoney(r.BudgetLimit), FormatPercent(r.SpentPercentage))
	default:
		return fmt.Sprintf("%s is approaching its budget: %s spent of %s (%s).", r.CategoryName, FormatMoney(r.SpentAmount), FormatMoney(r.BudgetLimit), FormatPercent(r.SpentPercentage))
	}
}

func newCategoryAlert(t models.AlertType, categoryID string, sev models.AlertSeverity, msg string, meta map[string]any) models.Alert {
	id := categoryID
	return models.Alert{
		Type:       t,
		CategoryID: &id,
		Severity:   sev,
		Message:    msg,
		Status:     models.AlertStatusActive,
		Metadata:   meta,
		Channels:   []string{},
	}
}

// AnomalyResult is the outcome of DetectAnomaly.
type AnomalyResult struct {
	IsAnomaly    bool                 `json:"is_anomaly"`
	Amount       float64              `json:"amount"`
	AverageDaily float64              `json:"average_daily"`
	Multiplier   float64              `json:"multiplier"`
	Threshold    float64              `json:"threshold"`
	Severity     models.AlertSeverity `json:"severity,omitempty"`
	Message      string               `json:"message"`
}

// DetectAnomaly flags amount when it exceeds multiplier times the average
// daily spend. Severity grows with amount/threshold: 2x is high, 1.5x medium.
func DetectAnomaly(amount, averageDaily, multiplier float64) AnomalyResult {
	if multiplier <= 0 {
		multiplier = DefaultSettings().AnomalyMultiplier
	}
	amount = math.Abs(amount)
	threshold := multiplier * averageDaily
	res := AnomalyResult{
		Amount:       amount,
		AverageDaily: roundMoney(averageDaily),
		Multiplier:   multiplier,
		Threshold:    roundMoney(threshold),
		IsAnomaly:    amount > threshold,
	}
	if !res.IsAnomaly {
		res.Message = fmt.Sprintf("%s is within the usual range (threshold %s).", FormatMoney(amount), FormatMoney(threshold))
		return res
	}

	ratio := math.Inf(1)
	if threshold > 0 {
		ratio = amount / threshold
	}
	switch {
	case ratio >= 2:
		res.Severity = models.AlertSeverityHigh
	case ratio >= 1.5:
		res.Severity = models.AlertSeverityMedium
	default:
		res.Severity = models.AlertSeverityLow
	}
	res.Message = fmt.Sprintf("%s is unusually large: more than %.1fx the average daily spend of %s.",
		FormatMoney(amount), multiplier, FormatMoney(averageDaily))
	return res
}

// AverageDailySpend is the category's expense total over the lookback window
// ending with ref's day, divided by the window length.
func AverageDailySpend(categoryID string, txns []models.Transaction, ref time.Time, lookbackDays int) float64 {
	if lookbackDays <= 0 {
		lookbackDays = DefaultSettings().AnomalyLookbackDays
	}
	end := startOfDay(ref).AddDate(0, 0, 1)
	window := NewPeriod(end.AddDate(0, 0, -lookbackDays), end, end)
	return SpentInPeriod(categoryID, window, txns) / float64(lookbackDays)
}

// AnomalyAlert builds the alert recorded for a flagged anomaly.
func AnomalyAlert(res AnomalyResult, c models.Category) models.Alert {
	a := newCategoryAlert(models.AlertTypeAnomaly, c.ID, res.Severity,
		fmt.Sprintf("%s: %s", c.Name, res.Message),
		map[string]any{
			MetaCondition:   ConditionAnomaly,
			"amount":        res.Amount,
			"average_daily": res.AverageDaily,
			"threshold":     res.Threshold,
		})
	return a
}

// InQuietHours reports whether now's wall clock falls in the preference's
// quiet window. Windows may wrap midnight; equal start and end mean none.
func InQuietHours(p models.NotificationPreference, now time.Time) bool {
	start, ok1 := parseClock(p.QuietHoursStart)
	end, ok2 := parseClock(p.QuietHoursEnd)
	if !ok1 || !ok2 || start == end {
		return false
	}
	minute := now.Hour()*60 + now.Minute()
	if start < end {
		return minute >= start && minute < end
	}
	return minute >= start || minute < end
}

// DeliveryChannels lists the channels a new alert is forwarded to at now.
// Nothing is delivered during quiet hours.
func DeliveryChannels(p models.NotificationPreference, now time.Time) []string {
	channels := []string{}
	if InQuietHours(p, now) {
		return channels
	}
	if p.InAppEnabled {
		channels = append(channels, models.ChannelInApp)
	}
	if p.EmailEnabled {
		channels = append(channels, models.ChannelEmail)
	}
	if p.SMSEnabled {
		channels = append(channels, models.ChannelSMS)
	}
	if p.PushEnabled {
		channels = append(channels, models.ChannelPush)
	}
	return channels
}

func parseClock(s string) (int, bool) {
	h, m, ok := strings.Cut(strings.TrimSpace(s), ":")
	if !ok {
		return 0, false
	}
	hour, err := strconv.Atoi(h)
	if err != nil || hour < 0 || hour > 23 {
		return 0, false
	}
	minute, err := strconv.Atoi(m)
	if err != nil || minute < 0 || minute > 59 {
		return 0, false
	}
	return hour*60 + minute, true
}
