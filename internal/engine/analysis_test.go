package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"budgetwise/internal/models"
)

func TestVariance(t *testing.T) {
	records := []ProgressRecord{
		{CategoryID: "a", CategoryName: "Dining", BudgetLimit: 200, SpentAmount: 260, SpentPercentage: 130, Status: StatusCritical},
		{CategoryID: "b", CategoryName: "Fuel", BudgetLimit: 100, SpentAmount: 85, RemainingAmount: 15, SpentPercentage: 85, Status: StatusWarning, DaysRemaining: 5},
		{CategoryID: "c", CategoryName: "Books", BudgetLimit: 100, SpentAmount: 10, RemainingAmount: 90, SpentPercentage: 10, Status: StatusUnder},
		{CategoryID: "d", CategoryName: "Gifts", SpentAmount: 30, Status: StatusNoBudget},
	}
	out := Variance(records)
	require.Len(t, out, 4)

	assert.Equal(t, StatusOver, out[0].Status)
	assert.Equal(t, 60.0, out[0].VarianceAmount)
	assert.Equal(t, 30.0, out[0].VariancePercentage)
	assert.Equal(t, "Reduce Dining spending by $60.00 to get back within budget.", out[0].Recommendation)

	assert.Equal(t, StatusWarning, out[1].Status)
	assert.Contains(t, out[1].Recommendation, "$3.00 per day")

	assert.Equal(t, StatusUnder, out[2].Status)
	assert.Contains(t, out[2].Recommendation, "on track")

	assert.Equal(t, StatusNoBudget, out[3].Status)
	assert.Equal(t, 0.0, out[3].VarianceAmount)
	assert.Contains(t, out[3].Recommendation, "Set a budget for Gifts")
}

func TestAnalyzePatterns(t *testing.T) {
	ref := date(2026, time.September, 30)
	cats := []models.Category{
		expense("rent", "Rent", models.BudgetPriorityCritical, 1000),
		expense("food", "Food", models.BudgetPriorityEssential, 400),
		expense("fun", "Fun", models.BudgetPriorityDiscretionary, 100),
		expense("idle", "Idle", models.BudgetPriorityDiscretionary, 100),
	}
	txns := []models.Transaction{
		spend("r1", "rent", 900, date(2026, time.September, 5)),
		// food: prior week 40, last week 100
		spend("f1", "food", 40, date(2026, time.September, 18)),
		spend("f2", "food", 100, date(2026, time.September, 27)),
		// fun: nothing the week before
		spend("g1", "fun", 60, date(2026, time.September, 29)),
		// outside the window
		spend("old", "idle", 500, date(2026, time.July, 1)),
	}

	p := AnalyzePatterns(cats, txns, ref, DefaultSettings())
	assert.Equal(t, 30, p.WindowDays)
	assert.Equal(t, date(2026, time.October, 1), p.End)
	assert.Equal(t, 1100.0, p.TotalSpent)

	require.Len(t, p.TopCategories, 3)
	assert.Equal(t, "rent", p.TopCategories[0].CategoryID)
	assert.InDelta(t, 81.82, p.TopCategories[0].Share, 0.001)
	assert.Equal(t, "food", p.TopCategories[1].CategoryID)

	require.Len(t, p.Spikes, 2)
	assert.Equal(t, "food", p.Spikes[0].CategoryID)
	assert.Equal(t, 2.5, p.Spikes[0].Ratio)
	assert.Equal(t, "fun", p.Spikes[1].CategoryID)
	assert.Equal(t, 0.0, p.Spikes[1].Prior7Spent)
	assert.Equal(t, 6000.0, p.Spikes[1].Ratio)
}

func TestDetectSpike(t *testing.T) {
	t.Run("zero prior spend with recent spend is a spike", func(t *testing.T) {
		s, ok := detectSpike(25, 0, 2)
		assert.True(t, ok)
		assert.Equal(t, 2500.0, s.Ratio)
	})

	t.Run("ratio must exceed the multiplier", func(t *testing.T) {
		_, ok := detectSpike(80, 40, 2)
		assert.False(t, ok)
		_, ok = detectSpike(80.01, 40, 2)
		assert.True(t, ok)
	})

	t.Run("no recent spend", func(t *testing.T) {
		_, ok := detectSpike(0, 0, 2)
		assert.False(t, ok)
	})
}

func TestForecast(t *testing.T) {
	p := september()
	records := []ProgressRecord{
		{CategoryID: "over", BudgetLimit: 200, SpentAmount: 150, Status: StatusUnder, Period: p, DaysRemaining: p.DaysRemaining},
		{CategoryID: "tight", BudgetLimit: 100, SpentAmount: 30, Status: StatusUnder, Period: p, DaysRemaining: p.DaysRemaining},
		{CategoryID: "ok", BudgetLimit: 100, SpentAmount: 20, Status: StatusUnder, Period: p, DaysRemaining: p.DaysRemaining},
		{CategoryID: "none", SpentAmount: 20, Status: StatusNoBudget, Period: p},
	}
	out := Forecast(records, 90)
	require.Len(t, out, 3)

	assert.Equal(t, 15.0, out[0].DailyPace)
	assert.Equal(t, 450.0, out[0].ForecastedSpend)
	assert.Equal(t, 250.0, out[0].ProjectedOverAmount)
	assert.Equal(t, ForecastProjectedOver, out[0].Status)
	assert.Equal(t, 2.5, out[0].RecommendedDailyLimit)

	assert.Equal(t, 90.0, out[1].ForecastedSpend)
	assert.Equal(t, ForecastTight, out[1].Status)

	assert.Equal(t, ForecastOnTrack, out[2].Status)
}
