package engine

import (
	"strings"
	"time"
)

// Thresholds are the spent-percentage boundaries for progress statuses.
type Thresholds struct {
	Warning  float64 `mapstructure:"warning" json:"warning"`
	Over     float64 `mapstructure:"over" json:"over"`
	Critical float64 `mapstructure:"critical" json:"critical"`
}

// DefaultThresholds returns the 80/100/120 boundaries.
func DefaultThresholds() Thresholds {
	return Thresholds{Warning: 80, Over: 100, Critical: 120}
}

// Settings tunes the analytics. Zero values are replaced by defaults in
// Normalize, so a partially filled Settings is safe to use.
type Settings struct {
	Thresholds Thresholds `mapstructure:"thresholds" json:"thresholds"`
	WeekStart  string     `mapstructure:"week_start" json:"week_start"`

	// Trailing calendar months used for history based fallbacks
	HistoryMonths int `mapstructure:"history_months" json:"history_months"`

	SuggestionMonths int     `mapstructure:"suggestion_months" json:"suggestion_months"`
	SuggestionBuffer float64 `mapstructure:"suggestion_buffer" json:"suggestion_buffer"`

	PatternWindowDays int     `mapstructure:"pattern_window_days" json:"pattern_window_days"`
	TopCategories     int     `mapstructure:"top_categories" json:"top_categories"`
	SpikeMultiplier   float64 `mapstructure:"spike_multiplier" json:"spike_multiplier"`

	// Forecasts at or above this percentage of the limit are tight
	TightPercentage float64 `mapstructure:"tight_percentage" json:"tight_percentage"`

	AnomalyMultiplier   float64 `mapstructure:"anomaly_multiplier" json:"anomaly_multiplier"`
	AnomalyLookbackDays int     `mapstructure:"anomaly_lookback_days" json:"anomaly_lookback_days"`

	OverspendingThreshold int     `mapstructure:"overspending_threshold" json:"overspending_threshold"`
	LowSavingsRate        float64 `mapstructure:"low_savings_rate" json:"low_savings_rate"`

	TrendMonths int `mapstructure:"trend_months" json:"trend_months"`
}

// DefaultSettings returns the stock tuning.
func DefaultSettings() Settings {
	return Settings{
		Thresholds:            DefaultThresholds(),
		WeekStart:             "monday",
		HistoryMonths:         3,
		SuggestionMonths:      3,
		SuggestionBuffer:      0.10,
		PatternWindowDays:     30,
		TopCategories:         5,
		SpikeMultiplier:       2.0,
		TightPercentage:       90,
		AnomalyMultiplier:     3.0,
		AnomalyLookbackDays:   90,
		OverspendingThreshold: 3,
		LowSavingsRate:        0.10,
		TrendMonths:           6,
	}
}

// Normalize fills unset or invalid fields from DefaultSettings.
func (s Settings) Normalize() Settings {
	d := DefaultSettings()
	if s.Thresholds.Warning <= 0 || s.Thresholds.Over <= s.Thresholds.Warning || s.Thresholds.Critical <= s.Thresholds.Over {
		s.Thresholds = d.Thresholds
	}
	if _, ok := parseWeekday(s.WeekStart); !ok {
		s.WeekStart = d.WeekStart
	}
	if s.HistoryMonths <= 0 {
		s.HistoryMonths = d.HistoryMonths
	}
	if s.SuggestionMonths <= 0 {
		s.SuggestionMonths = d.SuggestionMonths
	}
	if s.SuggestionBuffer < 0 {
		s.SuggestionBuffer = d.SuggestionBuffer
	}
	if s.PatternWindowDays <= 0 {
		s.PatternWindowDays = d.PatternWindowDays
	}
	if s.TopCategories <= 0 {
		s.TopCategories = d.TopCategories
	}
	if s.SpikeMultiplier <= 0 {
		s.SpikeMultiplier = d.SpikeMultiplier
	}
	if s.TightPercentage <= 0 {
		s.TightPercentage = d.TightPercentage
	}
	if s.AnomalyMultiplier <= 0 {
		s.AnomalyMultiplier = d.AnomalyMultiplier
	}
	if s.AnomalyLookbackDays <= 0 {
		s.AnomalyLookbackDays = d.AnomalyLookbackDays
	}
	if s.OverspendingThreshold <= 0 {
		s.OverspendingThreshold = d.OverspendingThreshold
	}
	if s.LowSavingsRate <= 0 {
		s.LowSavingsRate = d.LowSavingsRate
	}
	if s.TrendMonths <= 0 {
		s.TrendMonths = d.TrendMonths
	}
	return s
}

// Resolver returns a period resolver honoring the configured week start.
func (s Settings) Resolver(loc *time.Location) PeriodResolver {
	day, ok := parseWeekday(s.WeekStart)
	if !ok {
		day = time.Monday
	}
	return PeriodResolver{WeekStart: day, Location: loc}
}

func parseWeekday(name string) (time.Weekday, bool) {
	for d := time.Sunday; d <= time.Saturday; d++ {
		if strings.EqualFold(d.String(), strings.TrimSpace(name)) {
			return d, true
		}
	}
	return time.Sunday, false
}
