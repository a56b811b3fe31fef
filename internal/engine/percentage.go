package engine

import (
	"fmt"

	"github.com/shopspring/decimal"

	"budgetwise/internal/models"
)

// bucketFor tags a category as needs, wants or savings. An explicit
// configuration entry (by id, then by name) wins over the priority mapping.
func bucketFor(c models.Category, cfg models.MethodologyConfig) string {
	if b, ok := cfg.CategoryBuckets[c.ID]; ok {
		return b
	}
	if b, ok := cfg.CategoryBuckets[c.Name]; ok {
		return b
	}
	switch c.BudgetPriority {
	case models.BudgetPriorityImportant:
		return models.BucketWants
	case models.BudgetPriorityDiscretionary:
		return models.BucketSavings
	default:
		return models.BucketNeeds
	}
}

// allocatePercentage splits income into needs/wants/savings buckets and
// divides each bucket among its categories by historical spend share.
func allocatePercentage(income float64, categories []models.Category, cfg models.MethodologyConfig, history SpendingHistory) *AllocationPlan {
	pcts := map[string]float64{
		models.BucketNeeds:   *cfg.NeedsPercentage,
		models.BucketWants:   *cfg.WantsPercentage,
		models.BucketSavings: *cfg.SavingsPercentage,
	}
	total := dec(income)
	needs := total.Mul(dec(pcts[models.BucketNeeds])).Div(decimal.NewFromInt(100)).Round(2)
	wants := total.Mul(dec(pcts[models.BucketWants])).Div(decimal.NewFromInt(100)).Round(2)
	budgets := map[string]decimal.Decimal{
		models.BucketNeeds:   needs,
		models.BucketWants:   wants,
		models.BucketSavings: total.Sub(needs).Sub(wants),
	}

	members := map[string][]models.Category{}
	for _, c := range sortedExpenses(categories) {
		b := bucketFor(c, cfg)
		members[b] = append(members[b], c)
	}

	plan := &AllocationPlan{}
	for _, name := range []string{models.BucketNeeds, models.BucketWants, models.BucketSavings} {
		budget := budgets[name]
		amounts := splitBucket(budget, members[name], history)

		bucket := BucketAllocation{
			Name:        name,
			Percentage:  pcts[name],
			Budget:      toFloat(budget),
			CategoryIDs: []string{},
		}
		allocated := decimal.Zero
		for i, c := range members[name] {
			a := newAllocation(c)
			a.Bucket = name
			a.Requested = roundMoney(EffectiveLimit(c, income, history))
			a.Allocated = toFloat(amounts[i])
			if history.Has(c.ID) {
				a.Source = SourceHistory
			} else {
				a.Source = SourceShare
			}
			allocated = allocated.Add(amounts[i])
			bucket.CategoryIDs = append(bucket.CategoryIDs, c.ID)
			plan.Allocations = append(plan.Allocations, a)
		}
		bucket.Allocated = toFloat(allocated)
		bucket.Remaining = toFloat(budget.Sub(allocated))
		plan.Buckets = append(plan.Buckets, bucket)

		if income > 0 && len(members[name]) == 0 && budget.IsPositive() {
			plan.Recommendations = append(plan.Recommendations,
				fmt.Sprintf("No categories are assigned to %s; its %s budget is unallocated.", name, FormatMoney(toFloat(budget))))
		}
	}

	if income > 0 {
		for _, a := range plan.Allocations {
			if a.Requested > 0 && a.Allocated < a.Requested {
				plan.Recommendations = append(plan.Recommendations,
					fmt.Sprintf("%s receives %s from the %s bucket, below its %s limit.",
						a.CategoryName, FormatMoney(a.Allocated), a.Bucket, FormatMoney(a.Requested)))
			}
		}
	}
	return plan
}

// splitBucket divides budget among members, which arrive in priority order.
// Members with history take their proportional share (or their average, when
// some members have none, scaled down to fit); members without history split
// what is left evenly. Amounts are rounded to cents and the rounding remainder
// lands on the lowest-priority member that can absorb it.
func splitBucket(budget decimal.Decimal, members []models.Category, history SpendingHistory) []decimal.Decimal {
	out := make([]decimal.Decimal, len(members))
	if len(members) == 0 || !budget.IsPositive() {
		for i := range out {
			out[i] = decimal.Zero
		}
		return out
	}

	hist := make([]decimal.Decimal, len(members))
	histTotal := decimal.Zero
	var without []int
	for i, c := range members {
		hist[i] = dec(history.Average(c.ID))
		if hist[i].IsPositive() {
			histTotal = histTotal.Add(hist[i])
		} else {
			without = append(without, i)
		}
	}

	raw := make([]decimal.Decimal, len(members))
	switch {
	case len(without) == 0:
		for i := range members {
			raw[i] = budget.Mul(hist[i]).Div(histTotal)
		}
	case len(without) == len(members):
		even := budget.Div(decimal.NewFromInt(int64(len(members))))
		for i := range members {
			raw[i] = even
		}
	default:
		scale := decimal.NewFromInt(1)
		if histTotal.GreaterThan(budget) {
			scale = budget.Div(histTotal)
		}
		used := decimal.Zero
		for i := range members {
			raw[i] = decimal.Zero
			if hist[i].IsPositive() {
				raw[i] = hist[i].Mul(scale)
				used = used.Add(raw[i])
			}
		}
		residual := budget.Sub(used)
		if residual.IsNegative() {
			residual = decimal.Zero
		}
		even := residual.Div(decimal.NewFromInt(int64(len(without))))
		for _, i := range without {
			raw[i] = even
		}
	}

	sum := decimal.Zero
	for i := range raw {
		out[i] = raw[i].Truncate(2)
		sum = sum.Add(out[i])
	}
	remainder := budget.Sub(sum)
	if remainder.IsZero() {
		return out
	}
	for i := len(out) - 1; i >= 0; i-- {
		if next := out[i].Add(remainder); !next.IsNegative() {
			out[i] = next
			break
		}
	}
	return out
}
