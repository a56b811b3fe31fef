package engine

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"budgetwise/internal/models"
)

// spikeEpsilon stands in for a zero prior-week spend: one cent.
const spikeEpsilon = 0.01

// VarianceRecord is budget vs actual for one category.
type VarianceRecord struct {
	CategoryID         string         `json:"category_id"`
	CategoryName       string         `json:"category_name"`
	BudgetLimit        float64        `json:"budget_limit"`
	SpentAmount        float64        `json:"spent_amount"`
	VarianceAmount     float64        `json:"variance_amount"`
	VariancePercentage float64        `json:"variance_percentage"`
	Status             ProgressStatus `json:"status"`
	Recommendation     string         `json:"recommendation"`
}

// Variance classifies each record as over, warning, under or no_budget and
// attaches a recommendation. Critical records are reported as over.
func Variance(records []ProgressRecord) []VarianceRecord {
	out := make([]VarianceRecord, 0, len(records))
	for _, r := range records {
		v := VarianceRecord{
			CategoryID:   r.CategoryID,
			CategoryName: r.CategoryName,
			BudgetLimit:  r.BudgetLimit,
			SpentAmount:  r.SpentAmount,
			Status:       r.Status,
		}
		if r.Status == StatusCritical {
			v.Status = StatusOver
		}
		if r.HasBudget() {
			v.VarianceAmount = roundMoney(r.SpentAmount - r.BudgetLimit)
			v.VariancePercentage = roundPct(percentOf(v.VarianceAmount, r.BudgetLimit))
		}
		v.Recommendation = varianceRecommendation(r, v.Status)
		out = append(out, v)
	}
	return out
}

func varianceRecommendation(r ProgressRecord, status ProgressStatus) string {
	switch status {
	case StatusOver:
		return fmt.Sprintf("Reduce %s spending by %s to get back within budget.", r.CategoryName, FormatMoney(r.SpentAmount-r.BudgetLimit))
	case StatusWarning:
		if r.DaysRemaining > 0 {
			return fmt.Sprintf("%s is at %s of budget. Keep spending under %s per day to stay on track.",
				r.CategoryName, FormatPercent(r.SpentPercentage), FormatMoney(r.RemainingAmount/float64(r.DaysRemaining)))
		}
		return fmt.Sprintf("%s is at %s of budget with %s left.", r.CategoryName, FormatPercent(r.SpentPercentage), FormatMoney(r.RemainingAmount))
	case StatusNoBudget:
		if r.SpentAmount > 0 {
			return fmt.Sprintf("Set a budget for %s; %s spent so far without a limit.", r.CategoryName, FormatMoney(r.SpentAmount))
		}
		return fmt.Sprintf("Set a budget for %s to start tracking it.", r.CategoryName)
	default:
		return fmt.Sprintf("%s is on track with %s remaining.", r.CategoryName, FormatMoney(r.RemainingAmount))
	}
}

// CategoryShare is one category's share of spend in the pattern window.
type CategoryShare struct {
	CategoryID   string  `json:"category_id"`
	CategoryName string  `json:"category_name"`
	Spent        float64 `json:"spent"`
	Share        float64 `json:"share_percentage"`
}

// SpendingSpike flags a category whose last 7 days outpaced the 7 before.
type SpendingSpike struct {
	CategoryID   string  `json:"category_id"`
	CategoryName string  `json:"category_name"`
	Last7Spent   float64 `json:"last_7_days_spent"`
	Prior7Spent  float64 `json:"prior_7_days_spent"`
	Ratio        float64 `json:"ratio"`
}

// SpendingPatterns is the result of AnalyzePatterns.
type SpendingPatterns struct {
	WindowDays    int             `json:"window_days"`
	Start         time.Time       `json:"start_date"`
	End           time.Time       `json:"end_date"`
	TotalSpent    float64         `json:"total_spent"`
	DailyAverage  float64         `json:"daily_average"`
	TopCategories []CategoryShare `json:"top_categories"`
	Spikes        []SpendingSpike `json:"spikes"`
}

// AnalyzePatterns ranks expense categories by share of spend over the window
// ending with ref's day and flags week-over-week spikes.
func AnalyzePatterns(categories []models.Category, txns []models.Transaction, ref time.Time, s Settings) SpendingPatterns {
	s = s.Normalize()
	end := startOfDay(ref).AddDate(0, 0, 1)
	start := end.AddDate(0, 0, -s.PatternWindowDays)
	window := NewPeriod(start, end, end)
	last7 := NewPeriod(end.AddDate(0, 0, -7), end, end)
	prior7 := NewPeriod(end.AddDate(0, 0, -14), end.AddDate(0, 0, -7), end)

	out := SpendingPatterns{
		WindowDays:    s.PatternWindowDays,
		Start:         start,
		End:           end,
		TopCategories: []CategoryShare{},
		Spikes:        []SpendingSpike{},
	}

	total := decimal.Zero
	var shares []CategoryShare
	for _, c := range sortedExpenses(categories) {
		spent := SpentInPeriod(c.ID, window, txns)
		total = total.Add(dec(spent))
		if spent > 0 {
			shares = append(shares, CategoryShare{CategoryID: c.ID, CategoryName: c.Name, Spent: roundMoney(spent)})
		}

		l7 := SpentInPeriod(c.ID, last7, txns)
		p7 := SpentInPeriod(c.ID, prior7, txns)
		if spike, ok := detectSpike(l7, p7, s.SpikeMultiplier); ok {
			spike.CategoryID, spike.CategoryName = c.ID, c.Name
			out.Spikes = append(out.Spikes, spike)
		}
	}

	out.TotalSpent = toFloat(total)
	out.DailyAverage = roundMoney(out.TotalSpent / float64(s.PatternWindowDays))
	for i := range shares {
		shares[i].Share = roundPct(percentOf(shares[i].Spent, out.TotalSpent))
	}
	sort.SliceStable(shares, func(i, j int) bool {
		if shares[i].Spent != shares[j].Spent {
			return shares[i].Spent > shares[j].Spent
		}
		return shares[i].CategoryID < shares[j].CategoryID
	})
	if len(shares) > s.TopCategories {
		shares = shares[:s.TopCategories]
	}
	out.TopCategories = append(out.TopCategories, shares...)
	return out
}

// detectSpike flags last7 against prior7. A zero prior week with any recent
// spend is always a spike; its ratio is taken against one cent.
func detectSpike(last7, prior7, multiplier float64) (SpendingSpike, bool) {
	if last7 <= 0 {
		return SpendingSpike{}, false
	}
	ratio := last7 / math.Max(prior7, spikeEpsilon)
	if prior7 > 0 && ratio <= multiplier {
		return SpendingSpike{}, false
	}
	return SpendingSpike{
		Last7Spent:  roundMoney(last7),
		Prior7Spent: roundMoney(prior7),
		Ratio:       roundPct(ratio),
	}, true
}

// ForecastStatus is the end-of-period outlook for a category.
type ForecastStatus string

const (
	ForecastProjectedOver ForecastStatus = "projected_over"
	ForecastTight         ForecastStatus = "tight"
	ForecastOnTrack       ForecastStatus = "on_track"
)

// ForecastRecord projects a budgeted category to the end of its period.
type ForecastRecord struct {
	CategoryID            string         `json:"category_id"`
	CategoryName          string         `json:"category_name"`
	BudgetLimit           float64        `json:"budget_limit"`
	SpentAmount           float64        `json:"spent_amount"`
	DailyPace             float64        `json:"daily_pace"`
	ForecastedSpend       float64        `json:"forecasted_spend"`
	ProjectedOverAmount   float64        `json:"projected_over_amount"`
	DaysRemaining         int            `json:"days_remaining"`
	RecommendedDailyLimit float64        `json:"recommended_daily_limit"`
	Status                ForecastStatus `json:"status"`
}

// Forecast projects each budgeted record linearly at its daily pace.
// tightPct is the share of the limit, in percent, above which a category on
// course to stay within budget is still reported as tight.
func Forecast(records []ProgressRecord, tightPct float64) []ForecastRecord {
	if tightPct <= 0 {
		tightPct = DefaultSettings().TightPercentage
	}
	out := make([]ForecastRecord, 0, len(records))
	for _, r := range records {
		if !r.HasBudget() {
			continue
		}
		pace := r.SpentAmount / float64(max(r.Period.DaysElapsed, 1))
		forecast := pace * float64(r.Period.TotalDays)
		over := math.Max(0, forecast-r.BudgetLimit)

		f := ForecastRecord{
			CategoryID:          r.CategoryID,
			CategoryName:        r.CategoryName,
			BudgetLimit:         r.BudgetLimit,
			SpentAmount:         r.SpentAmount,
			DailyPace:           roundMoney(pace),
			ForecastedSpend:     roundMoney(forecast),
			ProjectedOverAmount: roundMoney(over),
			DaysRemaining:       r.DaysRemaining,
		}
		if r.DaysRemaining > 0 {
			f.RecommendedDailyLimit = roundMoney(math.Max(0, r.BudgetLimit-r.SpentAmount) / float64(r.DaysRemaining))
		}
		switch {
		case over > 0:
			f.Status = ForecastProjectedOver
		case forecast >= r.BudgetLimit*tightPct/100:
			f.Status = ForecastTight
		default:
			f.Status = ForecastOnTrack
		}
		out = append(out, f)
	}
	return out
}
