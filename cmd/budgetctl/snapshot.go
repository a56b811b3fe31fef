package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"budgetwise/internal/engine"
	apperrors "budgetwise/internal/errors"
	"budgetwise/internal/models"
)

const dateLayout = "2006-01-02"

// snapshotFile is the on-disk household snapshot.
//
//	date = "2024-09-20"
//
//	[[incomes]]
//	amount = 5200
//	frequency = "monthly"
//	source_name = "Salary"
//
//	[[categories]]
//	name = "Groceries"
//	type = "expense"
//	budget_limit = 600
//
//	[[transactions]]
//	category = "Groceries"
//	amount = 84.20
//	date = "2024-09-03"
type snapshotFile struct {
	Date          string             `toml:"date"`
	Incomes       []incomeEntry      `toml:"incomes"`
	Categories    []categoryEntry    `toml:"categories"`
	Transactions  []transactionEntry `toml:"transactions"`
	Methodologies []methodologyEntry `toml:"methodologies"`
}

type incomeEntry struct {
	Amount     float64 `toml:"amount"`
	Frequency  string  `toml:"frequency"`
	SourceName string  `toml:"source_name"`
	IncomeType string  `toml:"income_type"`
	IsBonus    bool    `toml:"is_bonus"`
}

type categoryEntry struct {
	ID                string   `toml:"id"`
	Name              string   `toml:"name"`
	Type              string   `toml:"type"`
	BudgetLimit       float64  `toml:"budget_limit"`
	BudgetPeriod      string   `toml:"budget_period"`
	BudgetType        string   `toml:"budget_type"`
	BudgetPriority    string   `toml:"budget_priority"`
	BudgetPercentage  *float64 `toml:"budget_percentage"`
	RollingMonths     int      `toml:"rolling_months"`
	WarningThreshold  *float64 `toml:"warning_threshold"`
	OverThreshold     *float64 `toml:"over_threshold"`
	CriticalThreshold *float64 `toml:"critical_threshold"`
	NeedsReview       bool     `toml:"needs_review"`
}

type transactionEntry struct {
	// Category is a category id or name.
	Category    string  `toml:"category"`
	Type        string  `toml:"type"`
	Amount      float64 `toml:"amount"`
	Date        string  `toml:"date"`
	Description string  `toml:"description"`
}

type methodologyEntry struct {
	ID                    string            `toml:"id"`
	Name                  string            `toml:"name"`
	Type                  string            `toml:"type"`
	Active                bool              `toml:"active"`
	NeedsPercentage       *float64          `toml:"needs_percentage"`
	WantsPercentage       *float64          `toml:"wants_percentage"`
	SavingsPercentage     *float64          `toml:"savings_percentage"`
	CategoryBuckets       map[string]string `toml:"category_buckets"`
	AllowEnvelopeTransfer bool              `toml:"allow_envelope_transfer"`
	RolloverUnused        bool              `toml:"rollover_unused"`
	MaxTransferPercentage *float64          `toml:"max_transfer_percentage"`
	UnallocatedThreshold  *float64          `toml:"unallocated_threshold"`
}

// household is a decoded snapshot in engine terms.
type household struct {
	Ref           time.Time
	Incomes       []models.Income
	Categories    []models.Category
	Transactions  []models.Transaction
	Methodologies []models.BudgetMethodology
}

// loadSnapshot decodes the TOML file at path. Dates are read in loc.
func loadSnapshot(path string, loc *time.Location) (*household, error) {
	var f snapshotFile
	md, err := toml.DecodeFile(path, &f)
	if err != nil {
		return nil, fmt.Errorf("failed to read snapshot: %w", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return nil, fmt.Errorf("unknown snapshot keys: %v", undecoded)
	}
	return f.household(loc)
}

func (f snapshotFile) household(loc *time.Location) (*household, error) {
	h := &household{}
	if f.Date != "" {
		ref, err := time.ParseInLocation(dateLayout, f.Date, loc)
		if err != nil {
			return nil, fmt.Errorf("invalid snapshot date %q", f.Date)
		}
		h.Ref = ref
	}

	for _, in := range f.Incomes {
		income := models.Income{
			Amount:     in.Amount,
			Frequency:  models.IncomeFrequency(orDefault(in.Frequency, string(models.IncomeFrequencyMonthly))),
			SourceName: in.SourceName,
			IncomeType: orDefault(in.IncomeType, "salary"),
			IsBonus:    in.IsBonus,
		}
		h.Incomes = append(h.Incomes, income)
	}

	byKey := make(map[string]models.Category, len(f.Categories))
	for i, c := range f.Categories {
		if strings.TrimSpace(c.Name) == "" {
			return nil, fmt.Errorf("category %d has no name", i+1)
		}
		category := models.Category{
			Name:                c.Name,
			Type:                models.CategoryType(orDefault(c.Type, string(models.CategoryTypeExpense))),
			BudgetLimit:         c.BudgetLimit,
			BudgetPeriod:        models.BudgetPeriod(orDefault(c.BudgetPeriod, string(models.BudgetPeriodMonthly))),
			BudgetType:          models.BudgetType(orDefault(c.BudgetType, string(models.BudgetTypeFixed))),
			BudgetPriority:      models.BudgetPriority(orDefault(c.BudgetPriority, string(models.BudgetPriorityEssential))),
			BudgetPercentage:    c.BudgetPercentage,
			BudgetRollingMonths: c.RollingMonths,
			WarningThreshold:    c.WarningThreshold,
			OverThreshold:       c.OverThreshold,
			CriticalThreshold:   c.CriticalThreshold,
			NeedsReview:         c.NeedsReview,
		}
		category.ID = orDefault(c.ID, c.Name)
		if _, dup := byKey[strings.ToLower(category.ID)]; dup {
			return nil, fmt.Errorf("duplicate category %q", category.ID)
		}
		byKey[strings.ToLower(category.ID)] = category
		byKey[strings.ToLower(category.Name)] = category
		h.Categories = append(h.Categories, category)
	}

	for i, t := range f.Transactions {
		category, ok := byKey[strings.ToLower(t.Category)]
		if !ok {
			return nil, fmt.Errorf("transaction %d: unknown category %q", i+1, t.Category)
		}
		date, err := time.ParseInLocation(dateLayout, t.Date, loc)
		if err != nil {
			return nil, fmt.Errorf("transaction %d: invalid date %q", i+1, t.Date)
		}
		txnType := models.TransactionType(orDefault(t.Type, string(category.Type)))
		if string(txnType) != string(category.Type) {
			return nil, fmt.Errorf("transaction %d: %s transaction in %s category %q", i+1, txnType, category.Type, category.Name)
		}
		txn := models.Transaction{
			CategoryID:  category.ID,
			Type:        txnType,
			Amount:      t.Amount,
			Description: t.Description,
			Date:        date,
		}
		txn.ID = fmt.Sprintf("txn-%d", i+1)
		h.Transactions = append(h.Transactions, txn)
	}

	activeCount := 0
	for _, m := range f.Methodologies {
		if m.Active {
			activeCount++
		}
		methodology := models.BudgetMethodology{
			Name:            m.Name,
			MethodologyType: models.MethodologyType(m.Type),
			IsActive:        m.Active,
			Configuration: models.MethodologyConfig{
				NeedsPercentage:       m.NeedsPercentage,
				WantsPercentage:       m.WantsPercentage,
				SavingsPercentage:     m.SavingsPercentage,
				CategoryBuckets:       m.CategoryBuckets,
				AllowEnvelopeTransfer: m.AllowEnvelopeTransfer,
				RolloverUnused:        m.RolloverUnused,
				MaxTransferPercentage: m.MaxTransferPercentage,
				UnallocatedThreshold:  m.UnallocatedThreshold,
			},
		}
		if !methodology.MethodologyType.Valid() {
			return nil, fmt.Errorf("methodology %q: unknown type %q", m.Name, m.Type)
		}
		methodology.ID = orDefault(m.ID, m.Name)
		h.Methodologies = append(h.Methodologies, methodology)
	}
	if activeCount > 1 {
		return nil, fmt.Errorf("%d methodologies are marked active, at most one may be", activeCount)
	}
	if len(h.Methodologies) == 0 {
		h.Methodologies = engine.DefaultMethodologies()
		for i := range h.Methodologies {
			h.Methodologies[i].ID = h.Methodologies[i].Name
		}
	}
	return h, nil
}

// active returns the methodology marked active.
func (h *household) active() (models.BudgetMethodology, error) {
	for _, m := range h.Methodologies {
		if m.IsActive {
			return m, nil
		}
	}
	return models.BudgetMethodology{}, apperrors.ErrNoActiveMethodology
}

// find matches a methodology by id, name or type.
func (h *household) find(key string) (models.BudgetMethodology, error) {
	for _, m := range h.Methodologies {
		if strings.EqualFold(m.ID, key) || strings.EqualFold(m.Name, key) || string(m.MethodologyType) == key {
			return m, nil
		}
	}
	return models.BudgetMethodology{}, apperrors.WithMessage(apperrors.ErrMethodologyNotFound,
		fmt.Sprintf("no methodology matches %q", key))
}

func orDefault(v, def string) string {
	if strings.TrimSpace(v) == "" {
		return def
	}
	return v
}
