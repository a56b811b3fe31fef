package engine

import (
	"fmt"
	"sort"

	"github.com/shopspring/decimal"

	"budgetwise/internal/models"
)

const donorUtilizationCeiling = 0.5

// allocateEnvelope sizes one envelope per expense category. Categories with a
// limit use it; the rest share whatever income the limits leave, weighted by
// priority. The total may exceed income and is reported as over-allocated.
func allocateEnvelope(income float64, categories []models.Category, cfg models.MethodologyConfig, history SpendingHistory) *AllocationPlan {
	plan := &AllocationPlan{}
	sorted := sortedExpenses(categories)
	amounts := make([]decimal.Decimal, len(sorted))

	declared := decimal.Zero
	var unset []int
	weightTotal := decimal.Zero
	for i, c := range sorted {
		a := newAllocation(c)
		amounts[i] = decimal.Zero
		if limit := EffectiveLimit(c, income, history); limit > 0 {
			a.Requested, a.Source = roundMoney(limit), SourceLimit
			if income > 0 {
				amounts[i] = dec(a.Requested)
			}
			declared = declared.Add(dec(a.Requested))
		} else {
			a.Source = SourceWeight
			unset = append(unset, i)
			weightTotal = weightTotal.Add(dec(c.BudgetPriority.Weight()))
		}
		plan.Allocations = append(plan.Allocations, a)
	}

	pool := dec(income).Sub(declared)
	if income > 0 && pool.IsPositive() && len(unset) > 0 {
		shared := decimal.Zero
		for _, i := range unset {
			w := dec(sorted[i].BudgetPriority.Weight())
			amounts[i] = pool.Mul(w).Div(weightTotal).Truncate(2)
			shared = shared.Add(amounts[i])
		}
		last := unset[len(unset)-1]
		amounts[last] = amounts[last].Add(pool.Sub(shared))
		for _, i := range unset {
			plan.Allocations[i].Requested = toFloat(amounts[i])
		}
	}

	if income > 0 && cfg.AllowEnvelopeTransfer {
		maxPct := defaultMaxTransferPercentage
		if cfg.MaxTransferPercentage != nil {
			maxPct = *cfg.MaxTransferPercentage
		}
		plan.Transfers = transferSurplus(sorted, amounts, history, maxPct)
	}

	for i := range plan.Allocations {
		plan.Allocations[i].Allocated = toFloat(amounts[i])
	}

	if income > 0 {
		plan.Recommendations = envelopeRecommendations(income, plan, cfg)
	}
	return plan
}

// transferSurplus moves money from envelopes that were historically under half
// used into envelopes whose historical spend exceeds their size. Each donor
// gives at most maxPct percent of its envelope. amounts is updated in place.
func transferSurplus(sorted []models.Category, amounts []decimal.Decimal, history SpendingHistory, maxPct float64) []EnvelopeTransfer {
	type donor struct {
		idx      int
		capacity decimal.Decimal
	}
	type recipient struct {
		idx     int
		deficit decimal.Decimal
	}

	var donors []donor
	var recipients []recipient
	for i, c := range sorted {
		if !history.Has(c.ID) || !amounts[i].IsPositive() {
			continue
		}
		avg := dec(history.Average(c.ID))
		switch {
		case avg.Div(amounts[i]).LessThan(dec(donorUtilizationCeiling)):
			capacity := decimal.Min(amounts[i].Sub(avg), amounts[i].Mul(dec(maxPct)).Div(decimal.NewFromInt(100))).Truncate(2)
			if capacity.IsPositive() {
				donors = append(donors, donor{idx: i, capacity: capacity})
			}
		case avg.GreaterThan(amounts[i]):
			recipients = append(recipients, recipient{idx: i, deficit: avg.Sub(amounts[i])})
		}
	}

	sort.SliceStable(recipients, func(a, b int) bool {
		ra, rb := sorted[recipients[a].idx].BudgetPriority.Rank(), sorted[recipients[b].idx].BudgetPriority.Rank()
		if ra != rb {
			return ra < rb
		}
		if !recipients[a].deficit.Equal(recipients[b].deficit) {
			return recipients[a].deficit.GreaterThan(recipients[b].deficit)
		}
		return sorted[recipients[a].idx].ID < sorted[recipients[b].idx].ID
	})
	sort.SliceStable(donors, func(a, b int) bool {
		ra, rb := sorted[donors[a].idx].BudgetPriority.Rank(), sorted[donors[b].idx].BudgetPriority.Rank()
		if ra != rb {
			return ra > rb
		}
		return sorted[donors[a].idx].ID < sorted[donors[b].idx].ID
	})

	var transfers []EnvelopeTransfer
	for _, r := range recipients {
		need := r.deficit
		for d := range donors {
			if !need.IsPositive() {
				break
			}
			if !donors[d].capacity.IsPositive() {
				continue
			}
			move := decimal.Min(need, donors[d].capacity)
			donors[d].capacity = donors[d].capacity.Sub(move)
			amounts[donors[d].idx] = amounts[donors[d].idx].Sub(move)
			amounts[r.idx] = amounts[r.idx].Add(move)
			need = need.Sub(move)
			transfers = append(transfers, EnvelopeTransfer{
				FromCategoryID: sorted[donors[d].idx].ID,
				ToCategoryID:   sorted[r.idx].ID,
				Amount:         toFloat(move),
			})
		}
	}
	return transfers
}

func envelopeRecommendations(income float64, plan *AllocationPlan, cfg models.MethodologyConfig) []string {
	var recs []string
	total := decimal.Zero
	for _, a := range plan.Allocations {
		total = total.Add(dec(a.Allocated))
	}
	unallocated := toFloat(dec(income).Sub(total))

	switch {
	case unallocated < 0:
		recs = append(recs, fmt.Sprintf("Over-allocated: envelopes exceed income by %s. Lower some envelope limits.", FormatMoney(-unallocated)))
	case unallocated > defaultUnallocatedThreshold:
		recs = append(recs, fmt.Sprintf("Unallocated: %s is not assigned to any envelope.", FormatMoney(unallocated)))
	}
	if n := len(plan.Transfers); n > 0 {
		moved := decimal.Zero
		for _, t := range plan.Transfers {
			moved = moved.Add(dec(t.Amount))
		}
		recs = append(recs, fmt.Sprintf("Moved %s across %d envelope transfer(s) from under-used envelopes.", FormatMoney(toFloat(moved)), n))
	}
	if cfg.RolloverUnused {
		recs = append(recs, "Unused envelope balances roll over to the next period.")
	}
	return recs
}
