package services

import (
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"

	"budgetwise/internal/engine"
	apperrors "budgetwise/internal/errors"
	"budgetwise/internal/logger"
	"budgetwise/internal/models"
	"budgetwise/internal/pagination"
)

// alertService persists alerts and evaluates new ones from budget progress.
type alertService struct {
	db            *gorm.DB
	budgetService BudgetServicer
	settings      engine.Settings
	loc           *time.Location
	now           func() time.Time
}

// NewAlertService creates a new AlertServicer. Quiet hours are read in loc.
func NewAlertService(db *gorm.DB, budgetService BudgetServicer, settings engine.Settings, loc *time.Location) AlertServicer {
	if loc == nil {
		loc = time.UTC
	}
	return &alertService{
		db:            db,
		budgetService: budgetService,
		settings:      settings.Normalize(),
		loc:           loc,
		now:           time.Now,
	}
}

// GetAlerts lists alerts matching filter, newest first. Snoozes that have
// expired are reopened and written back before filtering.
func (s *alertService) GetAlerts(filter engine.AlertFilter, page pagination.PageRequest) (*pagination.PageResponse[models.Alert], error) {
	q := s.db.Model(&models.Alert{})
	if filter.Severity != "" {
		q = q.Where("severity = ?", filter.Severity)
	}
	if filter.Type != "" {
		q = q.Where("type = ?", filter.Type)
	}
	if filter.CategoryID != "" {
		q = q.Where("category_id = ?", filter.CategoryID)
	}

	var alerts []models.Alert
	if err := q.Order("created_at DESC").Find(&alerts).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	now := s.now()
	s.reopenExpired(alerts, now)
	result := pagination.Slice(engine.FilterAlerts(alerts, filter, now), page)
	return &result, nil
}

// GetAlertByID returns an alert with its status as of now.
func (s *alertService) GetAlertByID(alertID string) (*models.Alert, error) {
	alert, err := s.find(alertID)
	if err != nil {
		return nil, err
	}
	alerts := []models.Alert{*alert}
	s.reopenExpired(alerts, s.now())
	return &alerts[0], nil
}

// CreateAlert records a manually raised alert for delivery on the channels
// enabled in the notification preferences.
func (s *alertService) CreateAlert(in AlertInput) (*models.Alert, error) {
	if strings.TrimSpace(in.Message) == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "alert message is required")
	}
	if in.Type == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "alert type is required")
	}
	switch in.Severity {
	case models.AlertSeverityHigh, models.AlertSeverityMedium, models.AlertSeverityLow:
	case "":
		in.Severity = models.AlertSeverityMedium
	default:
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "severity must be high, medium or low")
	}
	if in.CategoryID != nil {
		var count int64
		if err := s.db.Model(&models.Category{}).Where("id = ?", *in.CategoryID).Count(&count).Error; err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		if count == 0 {
			return nil, apperrors.ErrCategoryNotFound
		}
	}

	pref, err := s.GetPreferences()
	if err != nil {
		return nil, err
	}
	alert := &models.Alert{
		Type:       in.Type,
		CategoryID: in.CategoryID,
		Severity:   in.Severity,
		Message:    strings.TrimSpace(in.Message),
		Status:     models.AlertStatusActive,
		Channels:   engine.DeliveryChannels(*pref, s.now().In(s.loc)),
		Metadata:   in.Metadata,
	}
	if err := s.db.Create(alert).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return alert, nil
}

// DismissAlert moves the alert to the terminal dismissed state.
func (s *alertService) DismissAlert(alertID string) (*models.Alert, error) {
	alert, err := s.find(alertID)
	if err != nil {
		return nil, err
	}
	if err := engine.Dismiss(alert, s.now()); err != nil {
		return nil, err
	}
	if err := s.saveStatus(alert); err != nil {
		return nil, err
	}
	return alert, nil
}

// SnoozeAlert hides the alert for hours from now.
func (s *alertService) SnoozeAlert(alertID string, hours float64) (*models.Alert, error) {
	alert, err := s.find(alertID)
	if err != nil {
		return nil, err
	}
	if err := engine.Snooze(alert, hours, s.now()); err != nil {
		return nil, err
	}
	if err := s.saveStatus(alert); err != nil {
		return nil, err
	}
	return alert, nil
}

// EvaluateAlerts raises threshold, health and pace alerts for the periods
// containing ref and stores the ones that are not already open.
func (s *alertService) EvaluateAlerts(ref time.Time) ([]models.Alert, error) {
	report, err := s.budgetService.GetProgress(ProgressQuery{Ref: ref})
	if err != nil {
		return nil, err
	}
	forecasts := engine.Forecast(report.Records, s.settings.TightPercentage)

	var open []models.Alert
	if err := s.db.Where("status IN ?", []models.AlertStatus{models.AlertStatusActive, models.AlertStatusSnoozed}).
		Find(&open).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	now := s.now()
	raised := engine.EvaluateAlerts(report.Records, forecasts, open, now)
	if len(raised) == 0 {
		return []models.Alert{}, nil
	}

	pref, err := s.GetPreferences()
	if err != nil {
		return nil, err
	}
	channels := engine.DeliveryChannels(*pref, now.In(s.loc))
	for i := range raised {
		raised[i].Channels = channels
	}
	if err := s.db.Create(&raised).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	logger.Get().Infow("raised budget alerts", "count", len(raised), "channels", channels)
	return raised, nil
}

// DetectAnomaly compares amount with the category's average daily spend over
// the lookback window and optionally records an anomaly alert.
func (s *alertService) DetectAnomaly(in AnomalyInput) (*AnomalyReport, error) {
	if in.Amount <= 0 {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "amount must be greater than zero")
	}
	var category models.Category
	if err := s.db.Where("id = ?", in.CategoryID).First(&category).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrCategoryNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	ref := in.Ref
	if ref.IsZero() {
		ref = s.now()
	}
	ref = ref.In(s.loc)
	lookback := s.settings.AnomalyLookbackDays

	var txns []models.Transaction
	from := ref.AddDate(0, 0, -lookback-1)
	to := ref.AddDate(0, 0, 2)
	if err := s.db.Where("category_id = ? AND date >= ? AND date < ?", category.ID, from.UTC(), to.UTC()).
		Find(&txns).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	avg := engine.AverageDailySpend(category.ID, txns, ref, lookback)
	report := &AnomalyReport{
		AnomalyResult: engine.DetectAnomaly(in.Amount, avg, s.settings.AnomalyMultiplier),
		CategoryID:    category.ID,
	}
	if !report.IsAnomaly || !in.RecordAlert {
		return report, nil
	}

	pref, err := s.GetPreferences()
	if err != nil {
		return nil, err
	}
	alert := engine.AnomalyAlert(report.AnomalyResult, category)
	alert.Channels = engine.DeliveryChannels(*pref, s.now().In(s.loc))
	if err := s.db.Create(&alert).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	report.Alert = &alert
	return report, nil
}

// GetPreferences returns the stored preferences or the defaults when none
// have been saved.
func (s *alertService) GetPreferences() (*models.NotificationPreference, error) {
	var pref models.NotificationPreference
	if err := s.db.Order("created_at ASC").First(&pref).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			def := models.DefaultNotificationPreference()
			return &def, nil
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &pref, nil
}

// UpdatePreferences merges in over the current preferences and saves them.
func (s *alertService) UpdatePreferences(in PreferenceInput) (*models.NotificationPreference, error) {
	pref, err := s.GetPreferences()
	if err != nil {
		return nil, err
	}

	if in.InAppEnabled != nil {
		pref.InAppEnabled = *in.InAppEnabled
	}
	if in.EmailEnabled != nil {
		pref.EmailEnabled = *in.EmailEnabled
	}
	if in.SMSEnabled != nil {
		pref.SMSEnabled = *in.SMSEnabled
	}
	if in.PushEnabled != nil {
		pref.PushEnabled = *in.PushEnabled
	}
	if in.QuietHoursStart != nil {
		pref.QuietHoursStart = strings.TrimSpace(*in.QuietHoursStart)
	}
	if in.QuietHoursEnd != nil {
		pref.QuietHoursEnd = strings.TrimSpace(*in.QuietHoursEnd)
	}

	for _, clock := range []string{pref.QuietHoursStart, pref.QuietHoursEnd} {
		if clock == "" {
			continue
		}
		if _, err := time.Parse("15:04", clock); err != nil {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "quiet hours must use HH:MM")
		}
	}
	if (pref.QuietHoursStart == "") != (pref.QuietHoursEnd == "") {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "quiet hours need both a start and an end")
	}

	if err := s.db.Save(pref).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return pref, nil
}

func (s *alertService) find(alertID string) (*models.Alert, error) {
	var alert models.Alert
	if err := s.db.Where("id = ?", alertID).First(&alert).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrAlertNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &alert, nil
}

func (s *alertService) saveStatus(alert *models.Alert) error {
	if err := s.db.Model(alert).Select("status", "snooze_until").Updates(alert).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}

// reopenExpired refreshes alerts in place and persists the ones whose snooze
// ran out. Write failures are logged; the in-memory status is still correct.
func (s *alertService) reopenExpired(alerts []models.Alert, now time.Time) {
	var ids []string
	for i := range alerts {
		if engine.Refresh(&alerts[i], now) {
			ids = append(ids, alerts[i].ID)
		}
	}
	if len(ids) == 0 {
		return
	}
	err := s.db.Model(&models.Alert{}).
		Where("id IN ? AND status = ?", ids, models.AlertStatusSnoozed).
		Updates(map[string]any{"status": models.AlertStatusActive, "snooze_until": nil}).Error
	if err != nil {
		logger.Get().Warnw("failed to reopen expired snoozes", "error", err, "count", len(ids))
	}
}
