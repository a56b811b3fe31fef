package engine

import (
	"fmt"

	"github.com/shopspring/decimal"

	"budgetwise/internal/models"
)

// allocateZeroBased funds categories in priority order until income runs out.
// Each category asks for its effective limit, or its trailing average spend
// when no limit is set.
func allocateZeroBased(income float64, categories []models.Category, cfg models.MethodologyConfig, history SpendingHistory) *AllocationPlan {
	threshold := defaultUnallocatedThreshold
	if cfg.UnallocatedThreshold != nil {
		threshold = *cfg.UnallocatedThreshold
	}

	plan := &AllocationPlan{}
	remaining := dec(income)
	var underfunded []CategoryAllocation

	for _, c := range sortedExpenses(categories) {
		a := newAllocation(c)
		if limit := EffectiveLimit(c, income, history); limit > 0 {
			a.Requested, a.Source = roundMoney(limit), SourceLimit
		} else if avg := history.Average(c.ID); avg > 0 {
			a.Requested, a.Source = roundMoney(avg), SourceHistory
		}

		requested := dec(a.Requested)
		if income > 0 && remaining.IsPositive() {
			a.Allocated = toFloat(decimal.Min(requested, remaining))
			remaining = remaining.Sub(dec(a.Allocated))
		}
		if a.Allocated < a.Requested {
			a.Underfunded = true
			underfunded = append(underfunded, a)
		}
		plan.Allocations = append(plan.Allocations, a)
	}

	unallocated := toFloat(remaining)
	if income > 0 && unallocated > threshold {
		plan.Recommendations = append(plan.Recommendations,
			fmt.Sprintf("%s is still unassigned. Give every dollar a job by directing it to savings or debt repayment.", FormatMoney(unallocated)))
	}
	if income > 0 {
		for _, a := range underfunded {
			plan.Recommendations = append(plan.Recommendations,
				fmt.Sprintf("%s (%s) is underfunded: requested %s, allocated %s.",
					a.CategoryName, a.Priority, FormatMoney(a.Requested), FormatMoney(a.Allocated)))
		}
	}
	return plan
}
