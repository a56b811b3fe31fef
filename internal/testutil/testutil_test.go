package testutil_test

import (
	"testing"
	"time"

	"budgetwise/internal/errors"
	"budgetwise/internal/models"
	"budgetwise/internal/testutil"
)

func TestSetupTestDB(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)

	// Verify all tables exist by doing a simple count query on each model.
	var count int64
	for _, table := range []string{"categories", "transactions", "incomes", "budget_methodologies", "alerts", "notification_preferences", "audit_logs"} {
		if err := db.Table(table).Count(&count).Error; err != nil {
			t.Errorf("table %q should exist after migration: %v", table, err)
		}
	}
}

func TestSetupTestDBIsolated(t *testing.T) {
	first := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, first)
	second := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, second)

	testutil.CreateTestCategory(t, first, 100)

	var count int64
	second.Model(&models.Category{}).Count(&count)
	if count != 0 {
		t.Errorf("expected databases to be isolated, found %d categories", count)
	}
}

func TestFixtures(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)

	category := testutil.CreateTestCategory(t, db, 400)
	if category.ID == "" {
		t.Fatal("category should have an ID")
	}
	if !category.HasBudget() {
		t.Error("expected category with a positive limit to be budgeted")
	}

	tx := testutil.CreateTestTransaction(t, db, category.ID, 12.5, time.Now())
	if tx.Amount != 12.5 || tx.Type != models.TransactionTypeExpense {
		t.Errorf("unexpected transaction %+v", tx)
	}

	income := testutil.CreateTestIncome(t, db, 2000, models.IncomeFrequencyBiweekly)
	if income.Frequency != models.IncomeFrequencyBiweekly {
		t.Errorf("expected biweekly income, got %s", income.Frequency)
	}

	m := testutil.CreateTestMethodology(t, db, models.MethodologyZeroBased, true, models.MethodologyConfig{})
	var stored models.BudgetMethodology
	if err := db.First(&stored, "id = ?", m.ID).Error; err != nil {
		t.Fatalf("failed to reload methodology: %v", err)
	}
	if !stored.IsActive {
		t.Error("expected methodology to be stored as active")
	}

	alert := testutil.CreateTestAlert(t, db, category.ID, models.AlertTypeBudgetThreshold, models.AlertStatusActive)
	var reloaded models.Alert
	if err := db.First(&reloaded, "id = ?", alert.ID).Error; err != nil {
		t.Fatalf("failed to reload alert: %v", err)
	}
	if reloaded.Metadata["condition"] != "warning" {
		t.Errorf("expected metadata to round trip, got %v", reloaded.Metadata)
	}
	if len(reloaded.Channels) != 1 || reloaded.Channels[0] != models.ChannelInApp {
		t.Errorf("expected channels to round trip, got %v", reloaded.Channels)
	}
}

func TestAssertAppError(t *testing.T) {
	err := errors.WithMessage(errors.ErrCategoryNotFound, "custom message")
	testutil.AssertAppError(t, err, "CATEGORY_NOT_FOUND")
}

func TestAssertNoError(t *testing.T) {
	testutil.AssertNoError(t, nil)
}
