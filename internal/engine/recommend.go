package engine

import (
	"fmt"
	"math"
	"sort"
	"time"

	apperrors "budgetwise/internal/errors"
	"budgetwise/internal/models"
)

// BudgetSuggestion proposes a limit from historical spend.
type BudgetSuggestion struct {
	CategoryID      string    `json:"category_id"`
	CategoryName    string    `json:"category_name"`
	CurrentLimit    float64   `json:"current_limit"`
	AverageSpend    float64   `json:"average_monthly_spend"`
	SuggestedAmount float64   `json:"suggested_amount"`
	Confidence      float64   `json:"confidence"`
	MonthlySpend    []float64 `json:"monthly_spend"`
	Reason          string    `json:"reason"`
}

// SuggestBudgets proposes limits for expense categories without one, or
// flagged for review, from their trailing monthly average plus a buffer.
// Confidence is 1 minus the coefficient of variation, clipped to [0, 1].
// Categories with no spend in the window are skipped.
func SuggestBudgets(categories []models.Category, txns []models.Transaction, ref time.Time, s Settings) []BudgetSuggestion {
	s = s.Normalize()
	out := []BudgetSuggestion{}
	for _, c := range sortedExpenses(categories) {
		if c.HasBudget() && !c.NeedsReview {
			continue
		}
		months := MonthlySpend(c.ID, txns, ref, s.SuggestionMonths)
		mean, cv := meanAndCV(months)
		if mean <= 0 {
			continue
		}
		reason := "No budget set; suggested from recent spending."
		if c.HasBudget() {
			reason = fmt.Sprintf("Flagged for review; current limit is %s.", FormatMoney(c.BudgetLimit))
		}
		out = append(out, BudgetSuggestion{
			CategoryID:      c.ID,
			CategoryName:    c.Name,
			CurrentLimit:    c.BudgetLimit,
			AverageSpend:    roundMoney(mean),
			SuggestedAmount: roundMoney(mean * (1 + s.SuggestionBuffer)),
			Confidence:      roundPct(math.Min(1, math.Max(0, 1-cv))),
			MonthlySpend:    months,
			Reason:          reason,
		})
	}
	return out
}

func meanAndCV(values []float64) (float64, float64) {
	if len(values) == 0 {
		return 0, 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	mean := sum / float64(len(values))
	if mean == 0 {
		return 0, 0
	}
	var sq float64
	for _, v := range values {
		sq += (v - mean) * (v - mean)
	}
	return mean, math.Sqrt(sq/float64(len(values))) / mean
}

// UserFinancialProfile summarizes the household's position for ranking.
type UserFinancialProfile struct {
	TotalIncome                 float64 `json:"total_income"`
	TotalExpenses               float64 `json:"total_expenses"`
	SavingsRate                 float64 `json:"savings_rate"`
	CategoriesCount             int     `json:"categories_count"`
	OverspendingCategoriesCount int     `json:"overspending_categories_count"`
}

// BuildProfile derives a profile from monthly income and progress records.
// With no income the savings rate is -1 when anything was spent, else 0.
func BuildProfile(income float64, records []ProgressRecord) UserFinancialProfile {
	p := UserFinancialProfile{TotalIncome: income, CategoriesCount: len(records)}
	var expenses float64
	for _, r := range records {
		expenses += r.SpentAmount
		if r.Status == StatusOver || r.Status == StatusCritical {
			p.OverspendingCategoriesCount++
		}
	}
	p.TotalExpenses = roundMoney(expenses)
	switch {
	case income > 0:
		p.SavingsRate = roundPct((income - expenses) / income)
	case expenses > 0:
		p.SavingsRate = -1
	}
	return p
}

// MethodologyRecommendation ranks one methodology type for a profile.
type MethodologyRecommendation struct {
	MethodologyType models.MethodologyType `json:"methodology_type"`
	Confidence      float64                `json:"confidence"`
	Recommended     bool                   `json:"recommended"`
	BestFor         string                 `json:"best_for"`
	Reason          string                 `json:"reason"`
}

// RankMethodologies scores each methodology type against the profile, highest
// confidence first. Envelope wins when several categories overspend, zero-based
// when savings are thin, percentage-based otherwise.
func RankMethodologies(p UserFinancialProfile, s Settings) []MethodologyRecommendation {
	s = s.Normalize()

	envelope := MethodologyRecommendation{
		MethodologyType: models.MethodologyEnvelope,
		BestFor:         "Households that overspend in a few categories and need hard spending ceilings",
	}
	envelopeTriggered := p.OverspendingCategoriesCount >= s.OverspendingThreshold
	if envelopeTriggered {
		envelope.Confidence = 90
		envelope.Reason = fmt.Sprintf("%d categories are over budget; fixed envelopes cap each one.", p.OverspendingCategoriesCount)
	} else {
		envelope.Confidence = math.Min(85, 40+10*float64(p.OverspendingCategoriesCount))
		envelope.Reason = "Useful if spending in specific categories becomes hard to control."
	}

	zero := MethodologyRecommendation{
		MethodologyType: models.MethodologyZeroBased,
		BestFor:         "Tight budgets where every dollar needs an explicit job",
	}
	zeroTriggered := p.SavingsRate < s.LowSavingsRate
	switch {
	case p.SavingsRate < 0:
		zero.Confidence = 95
		zero.Reason = "Spending exceeds income; assigning every dollar exposes where to cut."
	case zeroTriggered:
		zero.Confidence = 85
		zero.Reason = fmt.Sprintf("Savings rate of %s is low; full allocation keeps money from leaking.", FormatPercent(p.SavingsRate*100))
	default:
		zero.Confidence = 50
		zero.Reason = "Works at any income level but takes the most upkeep."
	}

	pct := MethodologyRecommendation{
		MethodologyType: models.MethodologyPercentageBased,
		Confidence:      75,
		BestFor:         "Balanced finances that want a simple needs, wants and savings split",
		Reason:          "Income covers spending with room to save; fixed ratios keep things simple.",
	}
	if envelopeTriggered || zeroTriggered {
		pct.Confidence = 60
		pct.Reason = "A balanced split is still an option once spending is under control."
	}

	out := []MethodologyRecommendation{zero, pct, envelope}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Confidence > out[j].Confidence })
	out[0].Recommended = true
	return out
}

// ComparisonResult is one methodology's plan in a side-by-side comparison.
type ComparisonResult struct {
	MethodologyID   string                 `json:"methodology_id"`
	MethodologyName string                 `json:"methodology_name"`
	MethodologyType models.MethodologyType `json:"methodology_type"`
	Plan            *AllocationPlan        `json:"plan"`
}

// Compare allocates the same snapshot under each methodology. It only reads
// its inputs.
func Compare(income float64, categories []models.Category, methodologies []models.BudgetMethodology, history SpendingHistory) ([]ComparisonResult, error) {
	out := make([]ComparisonResult, 0, len(methodologies))
	for _, m := range methodologies {
		plan, err := Allocate(income, categories, MethodologyOf(m), history)
		if err != nil {
			if apperrors.Is(err, apperrors.ErrInvalidConfiguration) {
				return nil, apperrors.WithMessage(apperrors.ErrInvalidConfiguration, fmt.Sprintf("%s: %s", m.Name, err.Error()))
			}
			return nil, err
		}
		out = append(out, ComparisonResult{
			MethodologyID:   m.ID,
			MethodologyName: m.Name,
			MethodologyType: m.MethodologyType,
			Plan:            plan,
		})
	}
	return out, nil
}

// FindMethodology looks up id in a snapshot.
func FindMethodology(methodologies []models.BudgetMethodology, id string) (models.BudgetMethodology, error) {
	for _, m := range methodologies {
		if m.ID == id {
			return m, nil
		}
	}
	return models.BudgetMethodology{}, apperrors.ErrMethodologyNotFound
}

// FindCategory looks up id in a snapshot.
func FindCategory(categories []models.Category, id string) (models.Category, error) {
	for _, c := range categories {
		if c.ID == id {
			return c, nil
		}
	}
	return models.Category{}, apperrors.ErrCategoryNotFound
}
