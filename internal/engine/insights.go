package engine

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"budgetwise/internal/models"
)

// TrendCategory is one category's result in a trend month.
type TrendCategory struct {
	CategoryID   string         `json:"category_id"`
	CategoryName string         `json:"category_name"`
	BudgetLimit  float64        `json:"budget_limit"`
	Spent        float64        `json:"spent_amount"`
	Percentage   float64        `json:"spent_percentage"`
	Status       ProgressStatus `json:"status"`
	HealthScore  float64        `json:"health_score"`
}

// TrendPoint is one calendar month of budget performance.
type TrendPoint struct {
	Period        string          `json:"period"`
	Start         time.Time       `json:"period_start"`
	End           time.Time       `json:"period_end"`
	TotalBudgeted float64         `json:"total_budgeted"`
	TotalSpent    float64         `json:"total_spent"`
	Categories    []TrendCategory `json:"categories"`
}

// HistoricalTrends measures every budgeted expense category for each of the
// last `months` calendar months up to and including ref's month, oldest first.
func HistoricalTrends(categories []models.Category, txns []models.Transaction, ref time.Time, months int, th Thresholds) []TrendPoint {
	if months <= 0 {
		months = DefaultSettings().TrendMonths
	}
	resolver := NewPeriodResolver()
	current := resolver.Resolve(models.BudgetPeriodMonthly, ref)

	out := make([]TrendPoint, 0, months)
	for i := months - 1; i >= 0; i-- {
		start := current.Start.AddDate(0, -i, 0)
		end := start.AddDate(0, 1, 0)
		asOf := end
		if ref.Before(end) {
			asOf = ref
		}
		period := NewPeriod(start, end, asOf)

		point := TrendPoint{
			Period:     start.Format("2006-01"),
			Start:      start,
			End:        end,
			Categories: []TrendCategory{},
		}
		budgeted, spent := decimal.Zero, decimal.Zero
		for _, c := range sortedExpenses(categories) {
			if !c.HasBudget() {
				continue
			}
			r := Progress(c, c.BudgetLimit, period, txns, th)
			budgeted = budgeted.Add(dec(r.BudgetLimit))
			spent = spent.Add(dec(r.SpentAmount))
			point.Categories = append(point.Categories, TrendCategory{
				CategoryID:   c.ID,
				CategoryName: c.Name,
				BudgetLimit:  r.BudgetLimit,
				Spent:        r.SpentAmount,
				Percentage:   r.SpentPercentage,
				Status:       r.Status,
				HealthScore:  r.HealthScore,
			})
		}
		point.TotalBudgeted = toFloat(budgeted)
		point.TotalSpent = toFloat(spent)
		out = append(out, point)
	}
	return out
}

// Performance grades
const (
	GradeExcellent      = "excellent"
	GradeGood           = "good"
	GradeFair           = "fair"
	GradeNeedsAttention = "needs_attention"
)

// PerformanceScore is the overall budget adherence grade.
type PerformanceScore struct {
	Score              float64                `json:"score"`
	Grade              string                 `json:"grade"`
	Interpretation     string                 `json:"interpretation"`
	BudgetedCategories int                    `json:"budgeted_categories"`
	StatusCounts       map[ProgressStatus]int `json:"status_counts"`
}

// ScorePerformance averages the health of budgeted records. With nothing
// budgeted the score is 100.
func ScorePerformance(records []ProgressRecord) PerformanceScore {
	summary := Summarize(records)
	score := 100.0
	if summary.BudgetedCount > 0 {
		score = summary.AverageHealthScore
	}
	p := PerformanceScore{
		Score:              score,
		BudgetedCategories: summary.BudgetedCount,
		StatusCounts:       summary.StatusCounts,
	}
	switch {
	case score >= 90:
		p.Grade, p.Interpretation = GradeExcellent, "Spending is well within budget across categories."
	case score >= 75:
		p.Grade, p.Interpretation = GradeGood, "Most categories are on track with minor pressure points."
	case score >= 60:
		p.Grade, p.Interpretation = GradeFair, "Several categories are running ahead of budget."
	default:
		p.Grade, p.Interpretation = GradeNeedsAttention, "Spending is outpacing budgets; review over-budget categories."
	}
	return p
}

// Impact severities
const (
	ImpactCritical = "critical"
	ImpactWarning  = "warning"
	ImpactLow      = "low"
)

// TransactionImpact describes how one transaction moves its category's budget.
type TransactionImpact struct {
	TransactionID    string   `json:"transaction_id"`
	CategoryID       string   `json:"category_id"`
	CategoryName     string   `json:"category_name"`
	Amount           float64  `json:"amount"`
	BudgetLimit      float64  `json:"budget_limit"`
	SpentBefore      float64  `json:"spent_before"`
	SpentAfter       float64  `json:"spent_after"`
	PercentageBefore float64  `json:"percentage_before"`
	PercentageAfter  float64  `json:"percentage_after"`
	Severity         string   `json:"severity"`
	Message          string   `json:"message"`
	Recommendations  []string `json:"recommendations"`
}

// ImpactOf measures the budget position of txn's category with and without
// txn over the period.
func ImpactOf(txn models.Transaction, c models.Category, limit float64, period Period, txns []models.Transaction) TransactionImpact {
	others := make([]models.Transaction, 0, len(txns))
	for _, t := range txns {
		if t.ID != txn.ID {
			others = append(others, t)
		}
	}
	before := SpentInPeriod(c.ID, period, others)
	after := before
	if txn.IsExpense() && txn.CategoryID == c.ID {
		after = toFloat(dec(before).Add(dec(txn.AbsoluteAmount())))
	}

	imp := TransactionImpact{
		TransactionID:   txn.ID,
		CategoryID:      c.ID,
		CategoryName:    c.Name,
		Amount:          txn.AbsoluteAmount(),
		SpentBefore:     roundMoney(before),
		SpentAfter:      roundMoney(after),
		Severity:        ImpactLow,
		Recommendations: []string{},
	}
	if limit <= 0 {
		imp.Message = fmt.Sprintf("%s has no budget; this transaction is not measured against a limit.", c.Name)
		imp.Recommendations = append(imp.Recommendations, fmt.Sprintf("Set a budget for %s to track its impact.", c.Name))
		return imp
	}

	imp.BudgetLimit = roundMoney(limit)
	imp.PercentageBefore = roundPct(percentOf(before, limit))
	pctAfter := percentOf(after, limit)
	imp.PercentageAfter = roundPct(pctAfter)

	switch {
	case pctAfter > 100:
		imp.Severity = ImpactCritical
		imp.Message = fmt.Sprintf("This transaction puts %s over budget at %s.", c.Name, FormatPercent(pctAfter))
		imp.Recommendations = append(imp.Recommendations,
			fmt.Sprintf("Cut %s from %s for the rest of the period.", FormatMoney(after-limit), c.Name),
			"Consider moving money from an under-used category.")
	case pctAfter > 80:
		imp.Severity = ImpactWarning
		imp.Message = fmt.Sprintf("%s is now at %s of budget.", c.Name, FormatPercent(pctAfter))
		imp.Recommendations = append(imp.Recommendations,
			fmt.Sprintf("Only %s remains in %s this period.", FormatMoney(limit-after), c.Name))
	default:
		imp.Message = fmt.Sprintf("%s remains comfortably within budget at %s.", c.Name, FormatPercent(pctAfter))
	}
	return imp
}
