package services

import (
	"testing"
	"time"

	"budgetwise/internal/engine"
	"budgetwise/internal/models"
	"budgetwise/internal/pagination"
	"budgetwise/internal/testutil"

	"gorm.io/gorm"
)

// newAlertService returns the concrete service with its clock pinned to now.
func newAlertService(db *gorm.DB, now time.Time) *alertService {
	settings := engine.DefaultSettings()
	svc := NewAlertService(db, NewBudgetService(db, settings, time.UTC), settings, time.UTC).(*alertService)
	svc.now = func() time.Time { return now }
	return svc
}

func TestSnoozeAlert(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	cat := testutil.CreateTestCategory(t, db, 100)
	alert := testutil.CreateTestAlert(t, db, cat.ID, models.AlertTypeBudgetThreshold, models.AlertStatusActive)

	t0 := time.Date(2024, 9, 20, 9, 0, 0, 0, time.UTC)
	svc := newAlertService(db, t0)

	snoozed, err := svc.SnoozeAlert(alert.ID, 1)
	testutil.AssertNoError(t, err)
	if snoozed.Status != models.AlertStatusSnoozed || snoozed.SnoozeUntil == nil {
		t.Fatalf("expected snoozed alert, got %+v", snoozed)
	}

	t.Run("hidden_while_snoozed", func(t *testing.T) {
		page, err := svc.GetAlerts(engine.AlertFilter{}, pagination.PageRequest{})
		testutil.AssertNoError(t, err)
		if page.TotalItems != 0 {
			t.Errorf("expected no active alerts, got %d", page.TotalItems)
		}
	})

	t.Run("reopens_after_expiry", func(t *testing.T) {
		svc.now = func() time.Time { return t0.Add(2 * time.Hour) }

		page, err := svc.GetAlerts(engine.AlertFilter{}, pagination.PageRequest{})
		testutil.AssertNoError(t, err)
		if page.TotalItems != 1 || page.Data[0].Status != models.AlertStatusActive {
			t.Fatalf("expected the alert to be active again, got %+v", page.Data)
		}

		var stored models.Alert
		db.First(&stored, "id = ?", alert.ID)
		if stored.Status != models.AlertStatusActive || stored.SnoozeUntil != nil {
			t.Errorf("expected reopened status to be written back, got %s", stored.Status)
		}
	})

	t.Run("invalid_hours", func(t *testing.T) {
		_, err := svc.SnoozeAlert(alert.ID, 0)
		testutil.AssertAppError(t, err, "INVALID_INPUT")
	})
}

func TestDismissAlert(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	cat := testutil.CreateTestCategory(t, db, 100)
	alert := testutil.CreateTestAlert(t, db, cat.ID, models.AlertTypeHealth, models.AlertStatusActive)
	svc := newAlertService(db, time.Now())

	dismissed, err := svc.DismissAlert(alert.ID)
	testutil.AssertNoError(t, err)
	if dismissed.Status != models.AlertStatusDismissed {
		t.Errorf("expected dismissed, got %s", dismissed.Status)
	}

	_, err = svc.DismissAlert(alert.ID)
	testutil.AssertAppError(t, err, "INVALID_ALERT_TRANSITION")

	_, err = svc.SnoozeAlert(alert.ID, 4)
	testutil.AssertAppError(t, err, "INVALID_ALERT_TRANSITION")

	_, err = svc.DismissAlert("00000000-0000-0000-0000-000000000000")
	testutil.AssertAppError(t, err, "ALERT_NOT_FOUND")

	page, err := svc.GetAlerts(engine.AlertFilter{Status: engine.StatusAll}, pagination.PageRequest{})
	testutil.AssertNoError(t, err)
	if page.TotalItems != 1 {
		t.Errorf("expected dismissed alert under status=all, got %d", page.TotalItems)
	}
}

func TestEvaluateAlerts(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	ref := time.Date(2024, 9, 20, 12, 0, 0, 0, time.UTC)
	svc := newAlertService(db, ref)

	cat := testutil.CreateTestCategory(t, db, 100)
	testutil.CreateTestTransaction(t, db, cat.ID, 95, time.Date(2024, 9, 3, 0, 0, 0, 0, time.UTC))

	raised, err := svc.EvaluateAlerts(ref)
	testutil.AssertNoError(t, err)
	if len(raised) == 0 {
		t.Fatal("expected alerts for a category at 95% of its budget")
	}

	var sawThreshold bool
	for _, a := range raised {
		if a.Type == models.AlertTypeBudgetThreshold {
			sawThreshold = true
		}
		if len(a.Channels) != 1 || a.Channels[0] != models.ChannelInApp {
			t.Errorf("expected default in_app channel, got %v", a.Channels)
		}
	}
	if !sawThreshold {
		t.Error("expected a budget threshold alert")
	}

	again, err := svc.EvaluateAlerts(ref)
	testutil.AssertNoError(t, err)
	if len(again) != 0 {
		t.Errorf("expected open alerts to suppress duplicates, got %d", len(again))
	}
}

func TestDetectAnomaly(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	ref := time.Date(2024, 9, 20, 12, 0, 0, 0, time.UTC)
	svc := newAlertService(db, ref)

	cat := testutil.CreateTestCategory(t, db, 0)
	// 900 over the 90 day lookback averages 10 a day
	testutil.CreateTestTransaction(t, db, cat.ID, 900, time.Date(2024, 8, 1, 0, 0, 0, 0, time.UTC))

	t.Run("within_range", func(t *testing.T) {
		report, err := svc.DetectAnomaly(AnomalyInput{CategoryID: cat.ID, Amount: 25, Ref: ref, RecordAlert: true})
		testutil.AssertNoError(t, err)
		if report.IsAnomaly || report.Alert != nil {
			t.Errorf("expected no anomaly, got %+v", report)
		}
	})

	t.Run("recorded", func(t *testing.T) {
		report, err := svc.DetectAnomaly(AnomalyInput{CategoryID: cat.ID, Amount: 100, Ref: ref, RecordAlert: true})
		testutil.AssertNoError(t, err)
		if !report.IsAnomaly || report.Severity != models.AlertSeverityHigh {
			t.Fatalf("expected a high severity anomaly, got %+v", report.AnomalyResult)
		}
		if report.Alert == nil || report.Alert.ID == "" {
			t.Fatal("expected the anomaly alert to be stored")
		}

		page, err := svc.GetAlerts(engine.AlertFilter{Type: models.AlertTypeAnomaly}, pagination.PageRequest{})
		testutil.AssertNoError(t, err)
		if page.TotalItems != 1 {
			t.Errorf("expected 1 anomaly alert, got %d", page.TotalItems)
		}
	})

	t.Run("invalid_amount", func(t *testing.T) {
		_, err := svc.DetectAnomaly(AnomalyInput{CategoryID: cat.ID, Amount: 0})
		testutil.AssertAppError(t, err, "INVALID_INPUT")
	})

	t.Run("unknown_category", func(t *testing.T) {
		_, err := svc.DetectAnomaly(AnomalyInput{CategoryID: "00000000-0000-0000-0000-000000000000", Amount: 10})
		testutil.AssertAppError(t, err, "CATEGORY_NOT_FOUND")
	})
}

func TestNotificationPreferences(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	svc := newAlertService(db, time.Date(2024, 9, 20, 23, 30, 0, 0, time.UTC))

	pref, err := svc.GetPreferences()
	testutil.AssertNoError(t, err)
	if !pref.InAppEnabled || pref.EmailEnabled {
		t.Errorf("expected in-app only defaults, got %+v", pref)
	}

	t.Run("quiet_hours_need_both_bounds", func(t *testing.T) {
		_, err := svc.UpdatePreferences(PreferenceInput{QuietHoursStart: str("22:00")})
		testutil.AssertAppError(t, err, "INVALID_INPUT")
	})

	t.Run("bad_clock", func(t *testing.T) {
		_, err := svc.UpdatePreferences(PreferenceInput{QuietHoursStart: str("25:00"), QuietHoursEnd: str("07:00")})
		testutil.AssertAppError(t, err, "INVALID_INPUT")
	})

	updated, err := svc.UpdatePreferences(PreferenceInput{
		EmailEnabled:    boolean(true),
		QuietHoursStart: str("22:00"),
		QuietHoursEnd:   str("07:00"),
	})
	testutil.AssertNoError(t, err)
	if !updated.EmailEnabled || updated.ID == "" {
		t.Fatalf("expected saved preferences, got %+v", updated)
	}

	t.Run("quiet_hours_suppress_delivery", func(t *testing.T) {
		alert, err := svc.CreateAlert(AlertInput{Type: models.AlertTypeVariance, Message: "Check utilities"})
		testutil.AssertNoError(t, err)
		if len(alert.Channels) != 0 {
			t.Errorf("expected no channels during quiet hours, got %v", alert.Channels)
		}
	})

	t.Run("delivered_outside_quiet_hours", func(t *testing.T) {
		svc.now = func() time.Time { return time.Date(2024, 9, 20, 12, 0, 0, 0, time.UTC) }
		alert, err := svc.CreateAlert(AlertInput{Type: models.AlertTypeVariance, Message: "Check utilities"})
		testutil.AssertNoError(t, err)
		if len(alert.Channels) != 2 {
			t.Errorf("expected in_app and email, got %v", alert.Channels)
		}
		if alert.Severity != models.AlertSeverityMedium {
			t.Errorf("expected default medium severity, got %s", alert.Severity)
		}
	})

	t.Run("single_row", func(t *testing.T) {
		_, err := svc.UpdatePreferences(PreferenceInput{PushEnabled: boolean(true)})
		testutil.AssertNoError(t, err)
		var count int64
		db.Model(&models.NotificationPreference{}).Count(&count)
		if count != 1 {
			t.Errorf("expected a single preference row, got %d", count)
		}
	})
}

func TestCreateAlert_Validation(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	svc := newAlertService(db, time.Now())

	missing := "00000000-0000-0000-0000-000000000000"
	tests := []struct {
		name string
		in   AlertInput
		code string
	}{
		{"empty_message", AlertInput{Type: models.AlertTypeVariance}, "INVALID_INPUT"},
		{"missing_type", AlertInput{Message: "x"}, "INVALID_INPUT"},
		{"bad_severity", AlertInput{Type: models.AlertTypeVariance, Message: "x", Severity: "urgent"}, "INVALID_INPUT"},
		{"unknown_category", AlertInput{Type: models.AlertTypeVariance, Message: "x", CategoryID: &missing}, "CATEGORY_NOT_FOUND"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.CreateAlert(tt.in)
			testutil.AssertAppError(t, err, tt.code)
		})
	}
}
