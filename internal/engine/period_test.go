package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"budgetwise/internal/models"
)

func TestResolve(t *testing.T) {
	r := NewPeriodResolver()

	t.Run("monthly uses the calendar month", func(t *testing.T) {
		p := r.Resolve(models.BudgetPeriodMonthly, date(2026, time.February, 10))
		assert.Equal(t, date(2026, time.February, 1), p.Start)
		assert.Equal(t, date(2026, time.March, 1), p.End)
		assert.Equal(t, 28, p.TotalDays)
		assert.Equal(t, 9, p.DaysElapsed)
		assert.Equal(t, 19, p.DaysRemaining)
	})

	t.Run("weekly is Monday aligned", func(t *testing.T) {
		p := r.Resolve(models.BudgetPeriodWeekly, date(2026, time.October, 14))
		assert.Equal(t, date(2026, time.October, 12), p.Start)
		assert.Equal(t, date(2026, time.October, 19), p.End)
		assert.Equal(t, 7, p.TotalDays)
		assert.Equal(t, 2, p.DaysElapsed)
		assert.Equal(t, 5, p.DaysRemaining)
	})

	t.Run("weekly on a Sunday belongs to the week started the Monday before", func(t *testing.T) {
		p := r.Resolve(models.BudgetPeriodWeekly, date(2026, time.October, 18))
		assert.Equal(t, date(2026, time.October, 12), p.Start)
	})

	t.Run("weekly honors a configured week start", func(t *testing.T) {
		sunday := PeriodResolver{WeekStart: time.Sunday}
		p := sunday.Resolve(models.BudgetPeriodWeekly, date(2026, time.October, 14))
		assert.Equal(t, date(2026, time.October, 11), p.Start)
		assert.Equal(t, 4, p.DaysRemaining)
	})

	t.Run("daily on its first hour", func(t *testing.T) {
		ref := time.Date(2026, time.October, 14, 0, 30, 0, 0, time.UTC)
		p := r.Resolve(models.BudgetPeriodDaily, ref)
		assert.Equal(t, 1, p.TotalDays)
		assert.Equal(t, 1, p.DaysElapsed)
		assert.Equal(t, 1, p.DaysRemaining)
	})

	t.Run("yearly", func(t *testing.T) {
		p := r.Resolve(models.BudgetPeriodYearly, date(2026, time.July, 1))
		assert.Equal(t, date(2026, time.January, 1), p.Start)
		assert.Equal(t, date(2027, time.January, 1), p.End)
		assert.Equal(t, 365, p.TotalDays)
	})

	t.Run("location moves the boundary", func(t *testing.T) {
		loc := time.FixedZone("UTC+10", 10*3600)
		tz := PeriodResolver{WeekStart: time.Monday, Location: loc}
		ref := time.Date(2026, time.September, 30, 20, 0, 0, 0, time.UTC)
		p := tz.Resolve(models.BudgetPeriodMonthly, ref)
		assert.Equal(t, time.October, p.Start.Month())
	})
}

func TestNewPeriod(t *testing.T) {
	t.Run("zero-day period", func(t *testing.T) {
		p := NewPeriod(date(2026, time.May, 1), date(2026, time.May, 1), date(2026, time.May, 1))
		assert.Equal(t, 0, p.TotalDays)
		assert.Equal(t, 1, p.DaysElapsed)
		assert.Equal(t, 0, p.DaysRemaining)
		assert.Equal(t, 1.0, p.ElapsedFraction())
	})

	t.Run("reference after the end", func(t *testing.T) {
		p := NewPeriod(date(2026, time.May, 1), date(2026, time.May, 11), date(2026, time.June, 1))
		assert.Equal(t, 10, p.DaysElapsed)
		assert.Equal(t, 0, p.DaysRemaining)
	})

	t.Run("reference before the start", func(t *testing.T) {
		p := NewPeriod(date(2026, time.May, 1), date(2026, time.May, 11), date(2026, time.April, 1))
		assert.Equal(t, 1, p.DaysElapsed)
		assert.Equal(t, 10, p.DaysRemaining)
	})

	t.Run("contains is start inclusive and end exclusive", func(t *testing.T) {
		p := NewPeriod(date(2026, time.May, 1), date(2026, time.May, 11), date(2026, time.May, 5))
		assert.True(t, p.Contains(date(2026, time.May, 1)))
		assert.False(t, p.Contains(date(2026, time.May, 11)))
	})
}

func TestSettingsNormalize(t *testing.T) {
	s := Settings{SpikeMultiplier: 4, WeekStart: "Sunday"}.Normalize()
	assert.Equal(t, 4.0, s.SpikeMultiplier)
	assert.Equal(t, DefaultThresholds(), s.Thresholds)
	assert.Equal(t, 30, s.PatternWindowDays)
	assert.Equal(t, time.Sunday, s.Resolver(nil).WeekStart)

	bad := Settings{WeekStart: "someday"}.Normalize()
	assert.Equal(t, "monday", bad.WeekStart)
}
