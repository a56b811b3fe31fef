package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "budgetwise/internal/errors"
	"budgetwise/internal/models"
)

func TestSuggestBudgets(t *testing.T) {
	ref := date(2026, time.September, 30)
	steady := expense("steady", "Streaming", models.BudgetPriorityImportant, 0)
	bumpy := expense("bumpy", "Dining", models.BudgetPriorityImportant, 0)
	review := expense("review", "Fuel", models.BudgetPriorityEssential, 80)
	review.NeedsReview = true
	set := expense("set", "Rent", models.BudgetPriorityCritical, 1200)
	quiet := expense("quiet", "Hobbies", models.BudgetPriorityDiscretionary, 0)

	txns := []models.Transaction{
		spend("s1", "steady", 100, date(2026, time.July, 15)),
		spend("s2", "steady", 100, date(2026, time.August, 15)),
		spend("s3", "steady", 100, date(2026, time.September, 15)),
		spend("b1", "bumpy", 50, date(2026, time.July, 15)),
		spend("b2", "bumpy", 100, date(2026, time.August, 15)),
		spend("b3", "bumpy", 150, date(2026, time.September, 15)),
		spend("v1", "review", 90, date(2026, time.September, 3)),
		spend("r1", "set", 1200, date(2026, time.September, 1)),
		spend("q0", "quiet", 75, date(2026, time.May, 1)),
	}

	out := SuggestBudgets([]models.Category{steady, bumpy, review, set, quiet}, txns, ref, DefaultSettings())
	require.Len(t, out, 3)
	byID := map[string]BudgetSuggestion{}
	for _, s := range out {
		byID[s.CategoryID] = s
	}

	assert.Equal(t, 100.0, byID["steady"].AverageSpend)
	assert.Equal(t, 110.0, byID["steady"].SuggestedAmount)
	assert.Equal(t, 1.0, byID["steady"].Confidence)
	assert.Equal(t, []float64{100, 100, 100}, byID["steady"].MonthlySpend)

	assert.Equal(t, 110.0, byID["bumpy"].SuggestedAmount)
	assert.InDelta(t, 0.59, byID["bumpy"].Confidence, 0.005)

	assert.Equal(t, 30.0, byID["review"].AverageSpend)
	assert.Equal(t, 0.0, byID["review"].Confidence)
	assert.Contains(t, byID["review"].Reason, "Flagged for review")

	assert.NotContains(t, byID, "set")
	assert.NotContains(t, byID, "quiet")
}

func TestBuildProfile(t *testing.T) {
	records := []ProgressRecord{
		{SpentAmount: 500, Status: StatusOver},
		{SpentAmount: 300, Status: StatusCritical},
		{SpentAmount: 200, Status: StatusUnder},
	}

	p := BuildProfile(4000, records)
	assert.Equal(t, 1000.0, p.TotalExpenses)
	assert.Equal(t, 0.75, p.SavingsRate)
	assert.Equal(t, 3, p.CategoriesCount)
	assert.Equal(t, 2, p.OverspendingCategoriesCount)

	assert.Equal(t, -1.0, BuildProfile(0, records).SavingsRate)
	assert.Equal(t, 0.0, BuildProfile(0, nil).SavingsRate)
}

func TestRankMethodologies(t *testing.T) {
	s := DefaultSettings()

	t.Run("overspending favors envelope", func(t *testing.T) {
		out := RankMethodologies(UserFinancialProfile{TotalIncome: 5000, SavingsRate: 0.3, OverspendingCategoriesCount: 3}, s)
		assert.Equal(t, models.MethodologyEnvelope, out[0].MethodologyType)
		assert.Equal(t, 90.0, out[0].Confidence)
		assert.True(t, out[0].Recommended)
		assert.False(t, out[1].Recommended)
	})

	t.Run("negative savings favors zero-based", func(t *testing.T) {
		out := RankMethodologies(UserFinancialProfile{TotalIncome: 3000, SavingsRate: -0.2}, s)
		assert.Equal(t, models.MethodologyZeroBased, out[0].MethodologyType)
		assert.Equal(t, 95.0, out[0].Confidence)
	})

	t.Run("low savings favors zero-based", func(t *testing.T) {
		out := RankMethodologies(UserFinancialProfile{TotalIncome: 3000, SavingsRate: 0.05}, s)
		assert.Equal(t, models.MethodologyZeroBased, out[0].MethodologyType)
		assert.Equal(t, 85.0, out[0].Confidence)
	})

	t.Run("balanced favors percentage-based", func(t *testing.T) {
		out := RankMethodologies(UserFinancialProfile{TotalIncome: 6000, SavingsRate: 0.3, OverspendingCategoriesCount: 1}, s)
		require.Len(t, out, 3)
		assert.Equal(t, models.MethodologyPercentageBased, out[0].MethodologyType)
		assert.Equal(t, 75.0, out[0].Confidence)
		for _, r := range out {
			assert.NotEmpty(t, r.BestFor)
		}
	})
}

func TestCompare(t *testing.T) {
	methods := DefaultMethodologies()
	for i := range methods {
		methods[i].ID = methods[i].Name
	}
	before := make([]bool, len(methods))
	for i, m := range methods {
		before[i] = m.IsActive
	}

	out, err := Compare(5000, scenarioCategories(), methods, SpendingHistory{})
	require.NoError(t, err)
	require.Len(t, out, len(methods))
	for i, r := range out {
		assert.Equal(t, methods[i].ID, r.MethodologyID)
		assert.Equal(t, methods[i].MethodologyType, r.MethodologyType)
		assert.Equal(t, 5000.0, r.Plan.TotalIncome)
		assert.Equal(t, before[i], methods[i].IsActive)
	}

	again, err := Compare(5000, scenarioCategories(), methods, SpendingHistory{})
	require.NoError(t, err)
	assert.Equal(t, out, again)

	broken := []models.BudgetMethodology{{Name: "Broken", MethodologyType: models.MethodologyPercentageBased}}
	_, err = Compare(5000, scenarioCategories(), broken, SpendingHistory{})
	assert.True(t, apperrors.Is(err, apperrors.ErrInvalidConfiguration))
}

func TestFindInSnapshot(t *testing.T) {
	_, err := FindCategory(scenarioCategories(), "missing")
	assert.True(t, apperrors.Is(err, apperrors.ErrCategoryNotFound))

	c, err := FindCategory(scenarioCategories(), "c-rent")
	require.NoError(t, err)
	assert.Equal(t, "Rent", c.Name)

	_, err = FindMethodology(nil, "missing")
	assert.True(t, apperrors.Is(err, apperrors.ErrMethodologyNotFound))
}
