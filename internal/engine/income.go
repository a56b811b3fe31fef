package engine

import (
	"github.com/shopspring/decimal"

	"budgetwise/internal/models"
)

var monthlyFactors = map[models.IncomeFrequency]decimal.Decimal{
	models.IncomeFrequencyWeekly:   decimal.RequireFromString("4.33"),
	models.IncomeFrequencyBiweekly: decimal.RequireFromString("2.165"),
	models.IncomeFrequencyMonthly:  decimal.NewFromInt(1),
}

// MonthlyAmount normalizes a single income to a monthly figure, rounded to
// cents.
func MonthlyAmount(in models.Income) float64 {
	return toFloat(monthlyAmount(in).Round(2))
}

func monthlyAmount(in models.Income) decimal.Decimal {
	amount := dec(in.Amount)
	if in.Frequency == models.IncomeFrequencyAnnually {
		return amount.Div(decimal.NewFromInt(12))
	}
	factor, ok := monthlyFactors[in.Frequency]
	if !ok {
		factor = decimal.NewFromInt(1)
	}
	return amount.Mul(factor)
}

// MonthlyIncome is the frequency-normalized monthly total of all incomes,
// bonuses included, rounded to cents.
func MonthlyIncome(incomes []models.Income) float64 {
	total := decimal.Zero
	for _, in := range incomes {
		total = total.Add(monthlyAmount(in))
	}
	return toFloat(total.Round(2))
}

// IncomeSummary breaks the monthly income figure down by kind.
type IncomeSummary struct {
	TotalMonthly     float64            `json:"total_monthly_income"`
	RecurringMonthly float64            `json:"recurring_monthly_income"`
	BonusMonthly     float64            `json:"bonus_monthly_income"`
	SourceCount      int                `json:"source_count"`
	ByFrequency      map[string]float64 `json:"by_frequency"`
}

// SummarizeIncome normalizes incomes and splits recurring from bonus income.
func SummarizeIncome(incomes []models.Income) IncomeSummary {
	recurring, bonus := decimal.Zero, decimal.Zero
	byFreq := map[string]decimal.Decimal{}
	for _, in := range incomes {
		m := monthlyAmount(in)
		if in.IsBonus {
			bonus = bonus.Add(m)
		} else {
			recurring = recurring.Add(m)
		}
		byFreq[string(in.Frequency)] = byFreq[string(in.Frequency)].Add(m)
	}

	out := IncomeSummary{
		TotalMonthly:     toFloat(recurring.Add(bonus).Round(2)),
		RecurringMonthly: toFloat(recurring.Round(2)),
		BonusMonthly:     toFloat(bonus.Round(2)),
		SourceCount:      len(incomes),
		ByFrequency:      make(map[string]float64, len(byFreq)),
	}
	for k, v := range byFreq {
		out.ByFrequency[k] = toFloat(v.Round(2))
	}
	return out
}
