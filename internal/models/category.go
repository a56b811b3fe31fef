package models

// CategoryType represents the type of category
type CategoryType string

const (
	CategoryTypeIncome  CategoryType = "income"
	CategoryTypeExpense CategoryType = "expense"
)

// BudgetPeriod is the cadence a category's budget limit applies to
type BudgetPeriod string

const (
	BudgetPeriodDaily   BudgetPeriod = "daily"
	BudgetPeriodWeekly  BudgetPeriod = "weekly"
	BudgetPeriodMonthly BudgetPeriod = "monthly"
	BudgetPeriodYearly  BudgetPeriod = "yearly"
)

// BudgetType controls how a category's effective limit is derived
type BudgetType string

const (
	BudgetTypeFixed          BudgetType = "fixed"
	BudgetTypePercentage     BudgetType = "percentage"
	BudgetTypeRollingAverage BudgetType = "rolling_average"
)

// BudgetPriority ranks categories for allocation ordering and bucket tagging
type BudgetPriority string

const (
	BudgetPriorityCritical      BudgetPriority = "critical"
	BudgetPriorityEssential     BudgetPriority = "essential"
	BudgetPriorityImportant     BudgetPriority = "important"
	BudgetPriorityDiscretionary BudgetPriority = "discretionary"
)

// Rank returns 0 for the most important priority. Unknown values rank as essential.
func (p BudgetPriority) Rank() int {
	switch p {
	case BudgetPriorityCritical:
		return 0
	case BudgetPriorityImportant:
		return 2
	case BudgetPriorityDiscretionary:
		return 3
	default:
		return 1
	}
}

// Weight is the default envelope sizing weight for the priority.
func (p BudgetPriority) Weight() float64 {
	return float64(4 - p.Rank())
}

// Category represents a transaction category and its optional budget settings.
// Budget fields are only meaningful for expense categories.
type Category struct {
	Base
	Name        string       `gorm:"not null;index" json:"name"`
	Type        CategoryType `gorm:"not null" json:"type"`
	Description string       `json:"description"`
	Color       string       `json:"color"`

	BudgetLimit         float64        `gorm:"not null;default:0" json:"budget_limit"`
	BudgetPeriod        BudgetPeriod   `gorm:"not null;default:monthly" json:"budget_period"`
	BudgetType          BudgetType     `gorm:"not null;default:fixed" json:"budget_type"`
	BudgetPriority      BudgetPriority `gorm:"not null;default:essential" json:"budget_priority"`
	BudgetPercentage    *float64       `json:"budget_percentage,omitempty"`
	BudgetRollingMonths int            `gorm:"not null;default:3" json:"budget_rolling_months"`

	// Per-category status threshold overrides, in percent of the limit
	WarningThreshold  *float64 `json:"warning_threshold,omitempty"`
	OverThreshold     *float64 `json:"over_threshold,omitempty"`
	CriticalThreshold *float64 `json:"critical_threshold,omitempty"`

	// NeedsReview marks a category for budget suggestions even when a limit is set
	NeedsReview bool `gorm:"not null;default:false" json:"needs_review"`
}

// IsExpense reports whether the category tracks spending.
func (c *Category) IsExpense() bool {
	return c.Type == CategoryTypeExpense
}

// HasBudget reports whether a positive limit is declared.
func (c *Category) HasBudget() bool {
	return c.IsExpense() && c.BudgetLimit > 0
}

// Period returns the category's budget cadence, defaulting to monthly.
func (c *Category) Period() BudgetPeriod {
	if c.BudgetPeriod == "" {
		return BudgetPeriodMonthly
	}
	return c.BudgetPeriod
}

// RollingMonths returns the trailing window for rolling_average budgets.
func (c *Category) RollingMonths() int {
	if c.BudgetRollingMonths <= 0 {
		return 3
	}
	return c.BudgetRollingMonths
}
