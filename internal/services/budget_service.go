package services

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"budgetwise/internal/engine"
	apperrors "budgetwise/internal/errors"
	"budgetwise/internal/models"
)

// budgetService runs the budget analytics over stored categories,
// transactions and incomes.
type budgetService struct {
	db       *gorm.DB
	settings engine.Settings
	resolver engine.PeriodResolver
	loc      *time.Location
}

// NewBudgetService creates a new BudgetServicer. Calendar periods are
// resolved in loc.
func NewBudgetService(db *gorm.DB, settings engine.Settings, loc *time.Location) BudgetServicer {
	if loc == nil {
		loc = time.UTC
	}
	settings = settings.Normalize()
	return &budgetService{
		db:       db,
		settings: settings,
		resolver: settings.Resolver(loc),
		loc:      loc,
	}
}

// GetProgress measures every expense category, or just q.CategoryID, against
// its effective limit.
func (s *budgetService) GetProgress(q ProgressQuery) (*ProgressReport, error) {
	records, err := s.progress(q)
	if err != nil {
		return nil, err
	}
	return &ProgressReport{Records: records, Summary: engine.Summarize(records)}, nil
}

func (s *budgetService) GetVariance(q ProgressQuery) ([]engine.VarianceRecord, error) {
	records, err := s.progress(q)
	if err != nil {
		return nil, err
	}
	return engine.Variance(records), nil
}

func (s *budgetService) GetPatterns(ref time.Time) (*engine.SpendingPatterns, error) {
	ref = s.refOrNow(ref)
	snap, err := s.snapshot(ref)
	if err != nil {
		return nil, err
	}
	patterns := engine.AnalyzePatterns(snap.categories, snap.transactions, ref, s.settings)
	return &patterns, nil
}

func (s *budgetService) GetForecast(q ProgressQuery) ([]engine.ForecastRecord, error) {
	records, err := s.progress(q)
	if err != nil {
		return nil, err
	}
	return engine.Forecast(records, s.settings.TightPercentage), nil
}

func (s *budgetService) GetSuggestions(ref time.Time) ([]engine.BudgetSuggestion, error) {
	ref = s.refOrNow(ref)
	snap, err := s.snapshot(ref)
	if err != nil {
		return nil, err
	}
	return engine.SuggestBudgets(snap.categories, snap.transactions, ref, s.settings), nil
}

// GetTrends reports month by month spending for the trailing months ending
// with ref's month. months outside 1..24 falls back to the configured default.
func (s *budgetService) GetTrends(ref time.Time, months int) ([]engine.TrendPoint, error) {
	if months <= 0 || months > maxRollingMonths {
		months = s.settings.TrendMonths
	}
	ref = s.refOrNow(ref)
	snap, err := s.snapshot(ref)
	if err != nil {
		return nil, err
	}
	return engine.HistoricalTrends(snap.categories, snap.transactions, ref, months, s.settings.Thresholds), nil
}

func (s *budgetService) GetPerformanceScore(q ProgressQuery) (*engine.PerformanceScore, error) {
	records, err := s.progress(q)
	if err != nil {
		return nil, err
	}
	score := engine.ScorePerformance(records)
	return &score, nil
}

// GetTransactionImpact measures the transaction's effect on its category's
// budget for the period containing the transaction date.
func (s *budgetService) GetTransactionImpact(transactionID string) (*engine.TransactionImpact, error) {
	var txn models.Transaction
	if err := s.db.Where("id = ?", transactionID).First(&txn).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrTransactionNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	ref := txn.Date.In(s.loc)
	snap, err := s.snapshot(ref)
	if err != nil {
		return nil, err
	}
	category, err := engine.FindCategory(snap.categories, txn.CategoryID)
	if err != nil {
		return nil, err
	}

	history := engine.BuildSpendingHistory(snap.categories, snap.transactions, ref, s.settings.HistoryMonths)
	limit := engine.EffectiveLimit(category, engine.MonthlyIncome(snap.incomes), history)
	period := s.resolver.Resolve(category.Period(), ref)

	impact := engine.ImpactOf(txn, category, limit, period, snap.transactions)
	return &impact, nil
}

// GetEffectiveBudgets lists the limit each expense category resolves to. A
// non-nil income overrides the stored income sources.
func (s *budgetService) GetEffectiveBudgets(ref time.Time, income *float64) ([]engine.EffectiveBudget, error) {
	ref = s.refOrNow(ref)
	snap, err := s.snapshot(ref)
	if err != nil {
		return nil, err
	}
	monthly := engine.MonthlyIncome(snap.incomes)
	if income != nil {
		if *income < 0 {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "income must not be negative")
		}
		monthly = *income
	}
	history := engine.BuildSpendingHistory(snap.categories, snap.transactions, ref, s.settings.HistoryMonths)
	return engine.EffectiveBudgets(snap.categories, monthly, history), nil
}

func (s *budgetService) progress(q ProgressQuery) ([]engine.ProgressRecord, error) {
	q.Ref = s.refOrNow(q.Ref)
	window, err := s.window(q)
	if err != nil {
		return nil, err
	}

	snap, err := s.snapshot(q.Ref, window)
	if err != nil {
		return nil, err
	}
	categories := snap.categories
	if q.CategoryID != "" {
		c, err := engine.FindCategory(snap.categories, q.CategoryID)
		if err != nil {
			return nil, err
		}
		categories = []models.Category{c}
	}

	income := engine.MonthlyIncome(snap.incomes)
	history := engine.BuildSpendingHistory(snap.categories, snap.transactions, q.Ref, s.settings.HistoryMonths)

	records := make([]engine.ProgressRecord, 0, len(categories))
	for _, c := range categories {
		if !c.IsExpense() {
			continue
		}
		period := s.resolver.Resolve(c.Period(), q.Ref)
		switch {
		case window != nil:
			period = *window
		case q.Cadence != "":
			period = s.resolver.Resolve(q.Cadence, q.Ref)
		}

		limit := engine.EffectiveLimit(c, income, history)
		if q.Advanced {
			records = append(records, engine.ProgressAdvanced(c, limit, period, snap.transactions, s.settings.Thresholds))
		} else {
			records = append(records, engine.Progress(c, limit, period, snap.transactions, s.settings.Thresholds))
		}
	}
	return records, nil
}

// window returns the explicit period requested by q, if any.
func (s *budgetService) window(q ProgressQuery) (*engine.Period, error) {
	if q.Start == nil && q.End == nil {
		return nil, nil
	}
	if q.Start == nil || q.End == nil {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "start_date and end_date must be given together")
	}
	if !q.End.After(*q.Start) {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "end_date must be after start_date")
	}
	p := engine.NewPeriod(q.Start.In(s.loc), q.End.In(s.loc), q.Ref)
	return &p, nil
}

// snapshot loads the data around ref, widened to cover any explicit windows.
func (s *budgetService) snapshot(ref time.Time, windows ...*engine.Period) (*snapshot, error) {
	from, to := snapshotWindow(ref)
	for _, w := range windows {
		if w == nil {
			continue
		}
		if w.Start.Before(from) {
			from = w.Start
		}
		if w.End.After(to) {
			to = w.End
		}
	}
	return loadSnapshot(s.db, from, to)
}

func (s *budgetService) refOrNow(ref time.Time) time.Time {
	if ref.IsZero() {
		return time.Now().In(s.loc)
	}
	return ref.In(s.loc)
}
