package engine

import (
	"math"

	"github.com/shopspring/decimal"

	"budgetwise/internal/models"
)

// ProgressStatus classifies spend against a limit.
type ProgressStatus string

const (
	StatusUnder    ProgressStatus = "under"
	StatusWarning  ProgressStatus = "warning"
	StatusOver     ProgressStatus = "over"
	StatusCritical ProgressStatus = "critical"
	StatusNoBudget ProgressStatus = "no_budget"
)

var allStatuses = []ProgressStatus{StatusUnder, StatusWarning, StatusOver, StatusCritical, StatusNoBudget}

const (
	maxOveragePenalty = 60.0
	maxPacePenalty    = 40.0
)

// For applies the category's threshold overrides.
func (t Thresholds) For(c models.Category) Thresholds {
	out := t
	if c.WarningThreshold != nil {
		out.Warning = *c.WarningThreshold
	}
	if c.OverThreshold != nil {
		out.Over = *c.OverThreshold
	}
	if c.CriticalThreshold != nil {
		out.Critical = *c.CriticalThreshold
	}
	if out.Warning <= 0 || out.Over < out.Warning || out.Critical < out.Over {
		return t
	}
	return out
}

// Status classifies a spent percentage.
func (t Thresholds) Status(pct float64) ProgressStatus {
	switch {
	case pct >= t.Critical:
		return StatusCritical
	case pct >= t.Over:
		return StatusOver
	case pct >= t.Warning:
		return StatusWarning
	default:
		return StatusUnder
	}
}

// VarianceAnalysis compares actual spend with the time-prorated expectation.
type VarianceAnalysis struct {
	ExpectedSpent      float64 `json:"expected_spent"`
	VarianceAmount     float64 `json:"variance_amount"`
	VariancePercentage float64 `json:"variance_percentage"`
}

// PaceAnalysis compares the daily spend rate with the budgeted rate.
type PaceAnalysis struct {
	DailyPace          float64 `json:"daily_pace"`
	ExpectedDaily      float64 `json:"expected_daily"`
	PaceRatio          float64 `json:"pace_ratio"`
	ProjectedOverspend float64 `json:"projected_overspend"`
}

// ProgressRecord is a category's spending position within a period.
type ProgressRecord struct {
	CategoryID         string            `json:"category_id"`
	CategoryName       string            `json:"category_name"`
	BudgetLimit        float64           `json:"budget_limit"`
	SpentAmount        float64           `json:"spent_amount"`
	RemainingAmount    float64           `json:"remaining_amount"`
	SpentPercentage    float64           `json:"spent_percentage"`
	Status             ProgressStatus    `json:"status"`
	DaysRemaining      int               `json:"days_remaining"`
	DailyPace          float64           `json:"daily_pace"`
	ProjectedOverspend float64           `json:"projected_overspend"`
	HealthScore        float64           `json:"health_score"`
	Period             Period            `json:"period_info"`
	VarianceAnalysis   *VarianceAnalysis `json:"variance_analysis,omitempty"`
	PaceAnalysis       *PaceAnalysis     `json:"pace_analysis,omitempty"`
}

// HasBudget reports whether the record was measured against a limit.
func (r ProgressRecord) HasBudget() bool {
	return r.Status != StatusNoBudget
}

// SpentInPeriod sums absolute expense amounts of the category inside the period.
func SpentInPeriod(categoryID string, period Period, txns []models.Transaction) float64 {
	sum := decimal.Zero
	for i := range txns {
		t := &txns[i]
		if t.CategoryID == categoryID && t.IsExpense() && period.Contains(t.Date) {
			sum = sum.Add(dec(t.AbsoluteAmount()))
		}
	}
	return toFloat(sum)
}

// Progress measures a category against limit over the period. A limit of
// zero or less, or a window shorter than one calendar day, yields a
// no_budget record.
func Progress(c models.Category, limit float64, period Period, txns []models.Transaction, th Thresholds) ProgressRecord {
	spent := SpentInPeriod(c.ID, period, txns)
	rec := ProgressRecord{
		CategoryID:    c.ID,
		CategoryName:  c.Name,
		SpentAmount:   roundMoney(spent),
		DaysRemaining: period.DaysRemaining,
		Period:        period,
	}
	if limit <= 0 || math.IsNaN(limit) || period.TotalDays <= 0 {
		rec.Status = StatusNoBudget
		rec.HealthScore = 100
		return rec
	}

	pct := spent / limit * 100
	pace := spent / float64(period.DaysElapsed)

	rec.BudgetLimit = roundMoney(limit)
	rec.RemainingAmount = roundMoney(limit - spent)
	rec.SpentPercentage = roundPct(pct)
	rec.Status = th.For(c).Status(pct)
	rec.DailyPace = roundMoney(pace)
	rec.ProjectedOverspend = roundMoney(math.Max(0, pace*float64(period.TotalDays)-limit))
	rec.HealthScore = HealthScore(spent, limit, period)
	return rec
}

// ProgressAdvanced is Progress plus variance and pace analysis for budgeted
// categories.
func ProgressAdvanced(c models.Category, limit float64, period Period, txns []models.Transaction, th Thresholds) ProgressRecord {
	rec := Progress(c, limit, period, txns, th)
	if !rec.HasBudget() {
		return rec
	}
	spent := SpentInPeriod(c.ID, period, txns)
	expected := limit * period.ElapsedFraction()
	variance := spent - expected
	rec.VarianceAnalysis = &VarianceAnalysis{
		ExpectedSpent:      roundMoney(expected),
		VarianceAmount:     roundMoney(variance),
		VariancePercentage: roundPct(percentOf(variance, expected)),
	}

	pace := spent / float64(period.DaysElapsed)
	expectedDaily := limit / float64(period.TotalDays)
	ratio := 0.0
	if expectedDaily > 0 {
		ratio = pace / expectedDaily
	}
	rec.PaceAnalysis = &PaceAnalysis{
		DailyPace:          rec.DailyPace,
		ExpectedDaily:      roundMoney(expectedDaily),
		PaceRatio:          roundPct(ratio),
		ProjectedOverspend: rec.ProjectedOverspend,
	}
	return rec
}

// HealthScore starts at 100 and loses up to 60 points for overage beyond the
// limit and up to 40 points for spending ahead of the prorated pace.
func HealthScore(spent, limit float64, period Period) float64 {
	if limit <= 0 {
		return 100
	}
	score := 100.0
	if spent > limit {
		score -= math.Min(maxOveragePenalty, maxOveragePenalty*(spent-limit)/limit)
	}
	expected := limit * period.ElapsedFraction()
	if expected > 0 && spent > expected {
		score -= math.Min(maxPacePenalty, maxPacePenalty*(spent-expected)/expected)
	}
	if math.IsNaN(score) || score < 0 {
		return 0
	}
	return math.Min(100, toFloat(dec(score).Round(1)))
}

// ProgressSummary aggregates records. Money totals cover budgeted records;
// status counts cover all of them.
type ProgressSummary struct {
	TotalBudgeted             float64                `json:"total_budgeted"`
	TotalSpent                float64                `json:"total_spent"`
	TotalRemaining            float64                `json:"total_remaining"`
	OverallProgressPercentage float64                `json:"overall_progress_percentage"`
	StatusCounts              map[ProgressStatus]int `json:"status_counts"`
	AverageHealthScore        float64                `json:"average_health_score"`
	CategoryCount             int                    `json:"category_count"`
	BudgetedCount             int                    `json:"budgeted_count"`
}

// Summarize aggregates progress records.
func Summarize(records []ProgressRecord) ProgressSummary {
	s := ProgressSummary{StatusCounts: make(map[ProgressStatus]int, len(allStatuses)), CategoryCount: len(records)}
	for _, st := range allStatuses {
		s.StatusCounts[st] = 0
	}

	budgeted, spent, health := decimal.Zero, decimal.Zero, decimal.Zero
	for _, r := range records {
		s.StatusCounts[r.Status]++
		if !r.HasBudget() {
			continue
		}
		s.BudgetedCount++
		budgeted = budgeted.Add(dec(r.BudgetLimit))
		spent = spent.Add(dec(r.SpentAmount))
		health = health.Add(dec(r.HealthScore))
	}

	s.TotalBudgeted = toFloat(budgeted)
	s.TotalSpent = toFloat(spent)
	s.TotalRemaining = toFloat(budgeted.Sub(spent))
	if budgeted.IsPositive() {
		s.OverallProgressPercentage = roundPct(toFloat(spent.Div(budgeted).Mul(decimal.NewFromInt(100))))
	}
	if s.BudgetedCount > 0 {
		s.AverageHealthScore = toFloat(health.Div(decimal.NewFromInt(int64(s.BudgetedCount))).Round(1))
	}
	return s
}
