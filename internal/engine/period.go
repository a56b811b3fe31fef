package engine

import (
	"time"

	"budgetwise/internal/models"
)

// Period is a budget window. Start is inclusive and End exclusive.
type Period struct {
	Start         time.Time `json:"start_date"`
	End           time.Time `json:"end_date"`
	TotalDays     int       `json:"total_days"`
	DaysElapsed   int       `json:"days_elapsed"`
	DaysRemaining int       `json:"days_remaining"`
}

// Contains reports whether t falls inside the window.
func (p Period) Contains(t time.Time) bool {
	return !t.Before(p.Start) && t.Before(p.End)
}

// ElapsedFraction is DaysElapsed / TotalDays, or 1 for a zero-day period.
func (p Period) ElapsedFraction() float64 {
	if p.TotalDays <= 0 {
		return 1
	}
	return float64(p.DaysElapsed) / float64(p.TotalDays)
}

// PeriodResolver maps a cadence and reference date to a Period.
type PeriodResolver struct {
	WeekStart time.Weekday
	// Location used for calendar boundaries. Nil means the reference date's own.
	Location *time.Location
}

// NewPeriodResolver returns a resolver with Monday-aligned weeks.
func NewPeriodResolver() PeriodResolver {
	return PeriodResolver{WeekStart: time.Monday}
}

// Resolve returns the period of the given cadence that contains ref.
// Unknown cadences resolve as monthly.
func (r PeriodResolver) Resolve(cadence models.BudgetPeriod, ref time.Time) Period {
	if r.Location != nil {
		ref = ref.In(r.Location)
	}
	day := startOfDay(ref)

	var start, end time.Time
	switch cadence {
	case models.BudgetPeriodDaily:
		start = day
		end = day.AddDate(0, 0, 1)
	case models.BudgetPeriodWeekly:
		offset := (int(day.Weekday()) - int(r.WeekStart) + 7) % 7
		start = day.AddDate(0, 0, -offset)
		end = start.AddDate(0, 0, 7)
	case models.BudgetPeriodYearly:
		start = time.Date(day.Year(), time.January, 1, 0, 0, 0, 0, day.Location())
		end = start.AddDate(1, 0, 0)
	default:
		start = time.Date(day.Year(), day.Month(), 1, 0, 0, 0, 0, day.Location())
		end = start.AddDate(0, 1, 0)
	}
	return NewPeriod(start, end, ref)
}

// NewPeriod frames an explicit window. Elapsed days are whole calendar days
// from start to ref, clamped to [1, total]; remaining days never go negative.
func NewPeriod(start, end, ref time.Time) Period {
	total := calendarDays(start, end)
	if total < 0 {
		total = 0
	}
	raw := calendarDays(start, ref)

	elapsed := raw
	if elapsed > total {
		elapsed = total
	}
	if elapsed < 1 {
		elapsed = 1
	}
	remaining := total - raw
	if remaining < 0 {
		remaining = 0
	}
	if remaining > total {
		remaining = total
	}
	return Period{
		Start:         start,
		End:           end,
		TotalDays:     total,
		DaysElapsed:   elapsed,
		DaysRemaining: remaining,
	}
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// calendarDays counts date boundaries between a and b, ignoring clock time
// and DST shifts.
func calendarDays(a, b time.Time) int {
	da := time.Date(a.Year(), a.Month(), a.Day(), 0, 0, 0, 0, time.UTC)
	bb := b.In(a.Location())
	db := time.Date(bb.Year(), bb.Month(), bb.Day(), 0, 0, 0, 0, time.UTC)
	return int(db.Sub(da).Hours() / 24)
}
