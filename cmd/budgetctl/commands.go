package main

import (
	"github.com/spf13/cobra"

	"budgetwise/internal/engine"
	"budgetwise/internal/models"
)

func newAllocateCmd(opts *options) *cobra.Command {
	var methodology string
	cmd := &cobra.Command{
		Use:   "allocate",
		Short: "Allocate monthly income with a methodology",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := opts.open()
			if err != nil {
				return err
			}
			var m models.BudgetMethodology
			if methodology != "" {
				m, err = s.household.find(methodology)
			} else {
				m, err = s.household.active()
			}
			if err != nil {
				return err
			}
			plan, err := engine.Allocate(s.income, s.household.Categories, engine.MethodologyOf(m), s.history())
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), plan)
		},
	}
	cmd.Flags().StringVarP(&methodology, "methodology", "m", "", "Methodology id, name or type (default: active)")
	return cmd
}

func newCompareCmd(opts *options) *cobra.Command {
	var keys []string
	cmd := &cobra.Command{
		Use:   "compare",
		Short: "Compare allocations across methodologies",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := opts.open()
			if err != nil {
				return err
			}
			selected := s.household.Methodologies
			if len(keys) > 0 {
				selected = make([]models.BudgetMethodology, 0, len(keys))
				for _, k := range keys {
					m, err := s.household.find(k)
					if err != nil {
						return err
					}
					selected = append(selected, m)
				}
			}
			results, err := engine.Compare(s.income, s.household.Categories, selected, s.history())
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), results)
		},
	}
	cmd.Flags().StringSliceVarP(&keys, "methodology", "m", nil, "Methodologies to compare (default: all)")
	return cmd
}

func newProgressCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "progress",
		Short: "Show budget progress for the current period",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := opts.open()
			if err != nil {
				return err
			}
			records := s.progress()
			return printJSON(cmd.OutOrStdout(), map[string]any{
				"categories": records,
				"summary":    engine.Summarize(records),
			})
		},
	}
}

func newForecastCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "forecast",
		Short: "Project end of period spending",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := opts.open()
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), engine.Forecast(s.progress(), s.settings.TightPercentage))
		},
	}
}

func newSuggestCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "suggest",
		Short: "Suggest limits from recent spending",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := opts.open()
			if err != nil {
				return err
			}
			suggestions := engine.SuggestBudgets(s.household.Categories, s.household.Transactions, s.ref, s.settings)
			return printJSON(cmd.OutOrStdout(), suggestions)
		},
	}
}

func newRecommendCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "recommend",
		Short: "Rank methodologies for the household",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := opts.open()
			if err != nil {
				return err
			}
			profile := engine.BuildProfile(s.income, s.progress())
			return printJSON(cmd.OutOrStdout(), map[string]any{
				"user_profile":    profile,
				"recommendations": engine.RankMethodologies(profile, s.settings),
			})
		},
	}
}
