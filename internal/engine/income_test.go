package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"budgetwise/internal/models"
)

func TestMonthlyIncome(t *testing.T) {
	incomes := []models.Income{
		{Amount: 1000, Frequency: models.IncomeFrequencyWeekly},
		{Amount: 2000, Frequency: models.IncomeFrequencyBiweekly},
		{Amount: 12000, Frequency: models.IncomeFrequencyAnnually},
		{Amount: 500, Frequency: models.IncomeFrequencyMonthly, IsBonus: true},
	}

	assert.Equal(t, 4330.0, MonthlyAmount(incomes[0]))
	assert.Equal(t, 4330.0, MonthlyAmount(incomes[1]))
	assert.Equal(t, 1000.0, MonthlyAmount(incomes[2]))
	assert.Equal(t, 10160.0, MonthlyIncome(incomes))
	assert.Equal(t, 0.0, MonthlyIncome(nil))

	uneven := models.Income{Amount: 1000, Frequency: models.IncomeFrequencyAnnually}
	assert.Equal(t, 83.33, MonthlyAmount(uneven))
	assert.Equal(t, 2.17, MonthlyAmount(models.Income{Amount: 1, Frequency: models.IncomeFrequencyBiweekly}))

	s := SummarizeIncome(incomes)
	assert.Equal(t, 10160.0, s.TotalMonthly)
	assert.Equal(t, 9660.0, s.RecurringMonthly)
	assert.Equal(t, 500.0, s.BonusMonthly)
	assert.Equal(t, 4, s.SourceCount)
	assert.Equal(t, 4330.0, s.ByFrequency["weekly"])
}

func TestEffectiveLimit(t *testing.T) {
	h := history(map[string][]float64{"roll": {0, 0, 100, 200, 300}})

	fixed := expense("fixed", "Fixed", models.BudgetPriorityEssential, 250)
	assert.Equal(t, 250.0, EffectiveLimit(fixed, 5000, h))

	pctCat := expense("pct", "Pct", models.BudgetPriorityEssential, 100)
	pctCat.BudgetType = models.BudgetTypePercentage
	pctCat.BudgetPercentage = f(10)
	assert.Equal(t, 500.0, EffectiveLimit(pctCat, 5000, h))
	assert.Equal(t, 100.0, EffectiveLimit(pctCat, 0, h))

	roll := expense("roll", "Roll", models.BudgetPriorityEssential, 50)
	roll.BudgetType = models.BudgetTypeRollingAverage
	assert.Equal(t, 200.0, EffectiveLimit(roll, 5000, h))
	roll.BudgetRollingMonths = 5
	assert.Equal(t, 120.0, EffectiveLimit(roll, 5000, h))

	roll.ID = "unknown"
	assert.Equal(t, 50.0, EffectiveLimit(roll, 5000, h))

	income := fixed
	income.Type = models.CategoryTypeIncome
	assert.Equal(t, 0.0, EffectiveLimit(income, 5000, h))
}

func TestBuildSpendingHistory(t *testing.T) {
	ref := date(2026, time.September, 30)
	roll := expense("roll", "Roll", models.BudgetPriorityEssential, 0)
	roll.BudgetType = models.BudgetTypeRollingAverage
	roll.BudgetRollingMonths = 6
	food := expense("food", "Food", models.BudgetPriorityEssential, 0)

	txns := []models.Transaction{
		spend("a", "food", 100, date(2026, time.September, 3)),
		spend("b", "food", 50, date(2026, time.August, 3)),
		spend("c", "roll", 600, date(2026, time.April, 3)),
	}
	h := BuildSpendingHistory([]models.Category{roll, food}, txns, ref, 3)

	assert.Len(t, h.Monthly["food"], 6)
	assert.Equal(t, 50.0, h.Average("food"))
	assert.True(t, h.Has("food"))
	assert.False(t, h.Has("roll"))
	assert.Equal(t, 100.0, h.AverageOver("roll", 6))

	budgets := EffectiveBudgets([]models.Category{roll, food}, 0, h)
	assert.Len(t, budgets, 2)
	assert.Equal(t, 100.0, budgets[1].EffectiveLimit)
}
