package engine

import (
	"math"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"budgetwise/internal/models"
)

// SpendingHistory holds trailing monthly expense totals per category id,
// oldest month first.
type SpendingHistory struct {
	// Window is the number of trailing months Average looks at.
	Window  int                  `json:"window"`
	Monthly map[string][]float64 `json:"monthly"`
}

// BuildSpendingHistory buckets expense transactions into `months` trailing
// month-long windows ending at the day after ref. Buckets older than window
// are kept so rolling averages with longer horizons can be served.
func BuildSpendingHistory(categories []models.Category, txns []models.Transaction, ref time.Time, window int) SpendingHistory {
	if window <= 0 {
		window = 3
	}
	months := window
	for i := range categories {
		if categories[i].BudgetType == models.BudgetTypeRollingAverage && categories[i].RollingMonths() > months {
			months = categories[i].RollingMonths()
		}
	}

	h := SpendingHistory{Window: window, Monthly: make(map[string][]float64, len(categories))}
	for i := range categories {
		if !categories[i].IsExpense() {
			continue
		}
		h.Monthly[categories[i].ID] = MonthlySpend(categories[i].ID, txns, ref, months)
	}
	return h
}

// MonthlySpend returns the category's expense totals for `months` trailing
// month-long windows ending at the day after ref, oldest first.
func MonthlySpend(categoryID string, txns []models.Transaction, ref time.Time, months int) []float64 {
	if months <= 0 {
		return nil
	}
	end := startOfDay(ref).AddDate(0, 0, 1)
	sums := make([]decimal.Decimal, months)
	for i := range sums {
		sums[i] = decimal.Zero
	}
	bounds := make([]time.Time, months+1)
	for i := 0; i <= months; i++ {
		bounds[i] = end.AddDate(0, -(months - i), 0)
	}

	for i := range txns {
		t := &txns[i]
		if t.CategoryID != categoryID || !t.IsExpense() {
			continue
		}
		if t.Date.Before(bounds[0]) || !t.Date.Before(end) {
			continue
		}
		idx := sort.Search(months, func(j int) bool { return t.Date.Before(bounds[j+1]) })
		if idx < months {
			sums[idx] = sums[idx].Add(dec(t.AbsoluteAmount()))
		}
	}

	out := make([]float64, months)
	for i, s := range sums {
		out[i] = toFloat(s.Round(2))
	}
	return out
}

// Average is the mean monthly spend over the default window.
func (h SpendingHistory) Average(categoryID string) float64 {
	return h.AverageOver(categoryID, h.Window)
}

// AverageOver is the mean monthly spend over the last n months.
func (h SpendingHistory) AverageOver(categoryID string, n int) float64 {
	months := h.Monthly[categoryID]
	if n <= 0 || len(months) == 0 {
		return 0
	}
	if n > len(months) {
		n = len(months)
	}
	sum := decimal.Zero
	for _, v := range months[len(months)-n:] {
		sum = sum.Add(dec(v))
	}
	return toFloat(sum.Div(decimal.NewFromInt(int64(n))).Round(2))
}

// Has reports whether the category has any spend in the default window.
func (h SpendingHistory) Has(categoryID string) bool {
	return h.Average(categoryID) > 0
}

// EffectiveLimit resolves a category's budget limit for its budget type.
// Percentage budgets need income; rolling averages need history. Both fall
// back to the declared limit.
func EffectiveLimit(c models.Category, monthlyIncome float64, history SpendingHistory) float64 {
	if !c.IsExpense() {
		return 0
	}
	switch c.BudgetType {
	case models.BudgetTypePercentage:
		if c.BudgetPercentage != nil && monthlyIncome > 0 {
			return roundMoney(monthlyIncome * *c.BudgetPercentage / 100)
		}
	case models.BudgetTypeRollingAverage:
		if avg := history.AverageOver(c.ID, c.RollingMonths()); avg > 0 {
			return avg
		}
	}
	return math.Max(0, c.BudgetLimit)
}

// EffectiveBudget pairs a category's declared and effective limits.
type EffectiveBudget struct {
	CategoryID     string                `json:"category_id"`
	CategoryName   string                `json:"category_name"`
	BudgetType     models.BudgetType     `json:"budget_type"`
	BudgetPeriod   models.BudgetPeriod   `json:"budget_period"`
	Priority       models.BudgetPriority `json:"priority"`
	DeclaredLimit  float64               `json:"declared_limit"`
	EffectiveLimit float64               `json:"effective_limit"`
}

// EffectiveBudgets lists effective limits for every expense category.
func EffectiveBudgets(categories []models.Category, monthlyIncome float64, history SpendingHistory) []EffectiveBudget {
	out := make([]EffectiveBudget, 0, len(categories))
	for _, c := range sortedExpenses(categories) {
		budgetType := c.BudgetType
		if budgetType == "" {
			budgetType = models.BudgetTypeFixed
		}
		out = append(out, EffectiveBudget{
			CategoryID:     c.ID,
			CategoryName:   c.Name,
			BudgetType:     budgetType,
			BudgetPeriod:   c.Period(),
			Priority:       c.BudgetPriority,
			DeclaredLimit:  c.BudgetLimit,
			EffectiveLimit: EffectiveLimit(c, monthlyIncome, history),
		})
	}
	return out
}

// sortedExpenses returns expense categories ordered by priority rank, then
// declared limit descending, then id.
func sortedExpenses(categories []models.Category) []models.Category {
	out := make([]models.Category, 0, len(categories))
	for _, c := range categories {
		if c.IsExpense() {
			out = append(out, c)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		ri, rj := out[i].BudgetPriority.Rank(), out[j].BudgetPriority.Rank()
		if ri != rj {
			return ri < rj
		}
		if out[i].BudgetLimit != out[j].BudgetLimit {
			return out[i].BudgetLimit > out[j].BudgetLimit
		}
		return out[i].ID < out[j].ID
	})
	return out
}
