package testutil

import (
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"budgetwise/internal/models"

	"gorm.io/gorm"
)

// counter provides unique values across fixtures within a test run.
var counter atomic.Int64

func nextID() int64 {
	return counter.Add(1)
}

// CreateTestCategory creates an expense category with the given monthly limit.
// A limit of zero leaves the category unbudgeted.
func CreateTestCategory(t *testing.T, db *gorm.DB, limit float64) *models.Category {
	t.Helper()
	return CreateTestCategoryWith(t, db, func(c *models.Category) {
		c.BudgetLimit = limit
	})
}

// CreateTestCategoryWith creates an expense category and lets the caller
// adjust it before it is saved.
func CreateTestCategoryWith(t *testing.T, db *gorm.DB, opts ...func(*models.Category)) *models.Category {
	t.Helper()

	category := &models.Category{
		Name:           fmt.Sprintf("Test Category %d", nextID()),
		Type:           models.CategoryTypeExpense,
		BudgetPeriod:   models.BudgetPeriodMonthly,
		BudgetType:     models.BudgetTypeFixed,
		BudgetPriority: models.BudgetPriorityEssential,
	}
	for _, opt := range opts {
		opt(category)
	}
	if err := db.Create(category).Error; err != nil {
		t.Fatalf("failed to create test category: %v", err)
	}
	return category
}

// CreateTestIncomeCategory creates an income category.
func CreateTestIncomeCategory(t *testing.T, db *gorm.DB) *models.Category {
	t.Helper()
	return CreateTestCategoryWith(t, db, func(c *models.Category) {
		c.Type = models.CategoryTypeIncome
	})
}

// CreateTestTransaction creates an expense of amount in the category on date.
func CreateTestTransaction(t *testing.T, db *gorm.DB, categoryID string, amount float64, date time.Time) *models.Transaction {
	t.Helper()

	tx := &models.Transaction{
		CategoryID:  categoryID,
		Type:        models.TransactionTypeExpense,
		Amount:      amount,
		Description: fmt.Sprintf("Test Transaction %d", nextID()),
		Date:        date,
	}
	if err := db.Create(tx).Error; err != nil {
		t.Fatalf("failed to create test transaction: %v", err)
	}
	return tx
}

// CreateTestIncome creates an income source.
func CreateTestIncome(t *testing.T, db *gorm.DB, amount float64, frequency models.IncomeFrequency) *models.Income {
	t.Helper()

	income := &models.Income{
		Amount:     amount,
		IncomeType: "salary",
		Frequency:  frequency,
		SourceName: fmt.Sprintf("Employer %d", nextID()),
	}
	if err := db.Create(income).Error; err != nil {
		t.Fatalf("failed to create test income: %v", err)
	}
	return income
}

// CreateTestMethodology creates a methodology of the given type.
func CreateTestMethodology(t *testing.T, db *gorm.DB, methodologyType models.MethodologyType, active bool, cfg models.MethodologyConfig) *models.BudgetMethodology {
	t.Helper()

	m := &models.BudgetMethodology{
		Name:            fmt.Sprintf("Test Methodology %d", nextID()),
		MethodologyType: methodologyType,
		IsActive:        active,
		Configuration:   cfg,
	}
	if err := db.Create(m).Error; err != nil {
		t.Fatalf("failed to create test methodology: %v", err)
	}
	return m
}

// CreateTestAlert creates an alert in the given status for the category.
func CreateTestAlert(t *testing.T, db *gorm.DB, categoryID string, alertType models.AlertType, status models.AlertStatus) *models.Alert {
	t.Helper()

	id := categoryID
	alert := &models.Alert{
		Type:       alertType,
		CategoryID: &id,
		Severity:   models.AlertSeverityMedium,
		Message:    fmt.Sprintf("Test Alert %d", nextID()),
		Channels:   []string{models.ChannelInApp},
		Status:     status,
		Metadata:   map[string]any{"condition": "warning"},
	}
	if err := db.Create(alert).Error; err != nil {
		t.Fatalf("failed to create test alert: %v", err)
	}
	return alert
}
