package main

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"budgetwise/internal/config"
	"budgetwise/internal/engine"
)

// options holds the persistent flags shared by every command.
type options struct {
	snapshot string
	settings string
	date     string
	timezone string
	income   float64
}

// session is the loaded snapshot plus the tuning every command runs with.
type session struct {
	household *household
	settings  engine.Settings
	resolver  engine.PeriodResolver
	ref       time.Time
	income    float64
}

func newRootCmd() *cobra.Command {
	opts := &options{}
	root := &cobra.Command{
		Use:          "budgetctl",
		Short:        "Household budget calculator",
		Long:         "Run budget allocations, progress tracking and insights over a TOML household snapshot.",
		SilenceUsage: true,
	}

	flags := root.PersistentFlags()
	flags.StringVarP(&opts.snapshot, "file", "f", "household.toml", "Household snapshot (TOML)")
	flags.StringVar(&opts.settings, "settings", "", "Engine settings file (toml, yaml or json)")
	flags.StringVarP(&opts.date, "date", "d", "", "Reference date YYYY-MM-DD (default: snapshot date, then today)")
	flags.StringVar(&opts.timezone, "tz", "UTC", "Time zone for calendar periods")
	flags.Float64Var(&opts.income, "income", -1, "Monthly income override (default: sum of snapshot incomes)")

	root.AddCommand(
		newAllocateCmd(opts),
		newCompareCmd(opts),
		newProgressCmd(opts),
		newForecastCmd(opts),
		newSuggestCmd(opts),
		newRecommendCmd(opts),
	)
	return root
}

// open loads the snapshot and settings named by opts.
func (o *options) open() (*session, error) {
	loc, err := time.LoadLocation(o.timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid time zone %q", o.timezone)
	}
	settings, err := config.LoadEngineSettings(o.settings)
	if err != nil {
		return nil, err
	}
	h, err := loadSnapshot(o.snapshot, loc)
	if err != nil {
		return nil, err
	}

	ref := h.Ref
	if o.date != "" {
		ref, err = time.ParseInLocation(dateLayout, o.date, loc)
		if err != nil {
			return nil, fmt.Errorf("invalid date %q, expected YYYY-MM-DD", o.date)
		}
	}
	if ref.IsZero() {
		ref = time.Now().In(loc)
	}

	income := engine.MonthlyIncome(h.Incomes)
	if o.income >= 0 {
		income = o.income
	}

	return &session{
		household: h,
		settings:  settings,
		resolver:  settings.Resolver(loc),
		ref:       ref,
		income:    income,
	}, nil
}

func (s *session) history() engine.SpendingHistory {
	return engine.BuildSpendingHistory(s.household.Categories, s.household.Transactions, s.ref, s.settings.HistoryMonths)
}

// progress measures every expense category in the period containing ref.
func (s *session) progress() []engine.ProgressRecord {
	history := s.history()
	records := []engine.ProgressRecord{}
	for _, c := range s.household.Categories {
		if !c.IsExpense() {
			continue
		}
		period := s.resolver.Resolve(c.Period(), s.ref)
		limit := engine.EffectiveLimit(c, s.income, history)
		records = append(records, engine.Progress(c, limit, period, s.household.Transactions, s.settings.Thresholds))
	}
	return records
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
