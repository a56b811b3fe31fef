package engine

import (
	"time"

	"budgetwise/internal/models"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func expense(id, name string, priority models.BudgetPriority, limit float64) models.Category {
	c := models.Category{
		Name:           name,
		Type:           models.CategoryTypeExpense,
		BudgetLimit:    limit,
		BudgetPeriod:   models.BudgetPeriodMonthly,
		BudgetType:     models.BudgetTypeFixed,
		BudgetPriority: priority,
	}
	c.ID = id
	return c
}

func spend(id, categoryID string, amount float64, on time.Time) models.Transaction {
	t := models.Transaction{
		CategoryID: categoryID,
		Type:       models.TransactionTypeExpense,
		Amount:     amount,
		Date:       on,
	}
	t.ID = id
	return t
}

func history(monthly map[string][]float64) SpendingHistory {
	return SpendingHistory{Window: 3, Monthly: monthly}
}

func f(v float64) *float64 { return &v }

func percentageMethod(needs, wants, savings float64) Methodology {
	return Methodology{
		Type: models.MethodologyPercentageBased,
		Config: models.MethodologyConfig{
			NeedsPercentage:   f(needs),
			WantsPercentage:   f(wants),
			SavingsPercentage: f(savings),
		},
	}
}

var zeroBased = Methodology{Type: models.MethodologyZeroBased}
