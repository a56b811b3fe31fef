package engine

import (
	"fmt"
	"math"

	"github.com/shopspring/decimal"

	apperrors "budgetwise/internal/errors"
	"budgetwise/internal/models"
)

const (
	percentageTolerance          = 0.01
	defaultUnallocatedThreshold  = 1.0
	defaultMaxTransferPercentage = 20.0
)

// Methodology is the tagged variant the allocation engine dispatches on.
type Methodology struct {
	Type   models.MethodologyType   `json:"methodology_type"`
	Config models.MethodologyConfig `json:"configuration"`
}

// MethodologyOf extracts the variant from a stored methodology.
func MethodologyOf(m models.BudgetMethodology) Methodology {
	return Methodology{Type: m.MethodologyType, Config: m.Configuration}
}

// CategoryAllocation is one category's share of a plan.
type CategoryAllocation struct {
	CategoryID   string                `json:"category_id"`
	CategoryName string                `json:"category_name"`
	Priority     models.BudgetPriority `json:"priority"`
	Requested    float64               `json:"requested_amount"`
	Allocated    float64               `json:"allocated_amount"`
	Percentage   float64               `json:"percentage_of_income"`
	Bucket       string                `json:"bucket,omitempty"`
	Source       string                `json:"source"`
	Underfunded  bool                  `json:"underfunded,omitempty"`
}

// Allocation sources
const (
	SourceLimit   = "limit"
	SourceHistory = "history"
	SourceShare   = "share"
	SourceWeight  = "priority_weight"
	SourceNone    = "none"
)

// BucketAllocation is the needs/wants/savings breakdown of a percentage plan.
type BucketAllocation struct {
	Name        string   `json:"name"`
	Percentage  float64  `json:"percentage"`
	Budget      float64  `json:"budget"`
	Allocated   float64  `json:"allocated"`
	Remaining   float64  `json:"remaining"`
	CategoryIDs []string `json:"category_ids"`
}

// EnvelopeTransfer moves surplus between envelopes.
type EnvelopeTransfer struct {
	FromCategoryID string  `json:"from_category_id"`
	ToCategoryID   string  `json:"to_category_id"`
	Amount         float64 `json:"amount"`
}

// AllocationPlan is the output of Allocate. Unallocated is negative when an
// envelope plan is over-allocated.
type AllocationPlan struct {
	MethodologyType models.MethodologyType `json:"methodology_type"`
	TotalIncome     float64                `json:"total_income"`
	TotalAllocated  float64                `json:"total_allocated"`
	Unallocated     float64                `json:"unallocated"`
	NoIncome        bool                   `json:"no_income"`
	OverAllocated   bool                   `json:"over_allocated"`
	Allocations     []CategoryAllocation   `json:"allocations"`
	Buckets         []BucketAllocation     `json:"buckets,omitempty"`
	Transfers       []EnvelopeTransfer     `json:"transfers,omitempty"`
	Recommendations []string               `json:"recommendations"`
}

// Allocation returns the category's entry, if present.
func (p *AllocationPlan) Allocation(categoryID string) (CategoryAllocation, bool) {
	for _, a := range p.Allocations {
		if a.CategoryID == categoryID {
			return a, true
		}
	}
	return CategoryAllocation{}, false
}

// Allocate turns income and expense categories into a plan using the
// methodology's algorithm. It is deterministic: identical inputs produce
// identical plans.
func Allocate(income float64, categories []models.Category, m Methodology, history SpendingHistory) (*AllocationPlan, error) {
	if math.IsNaN(income) || math.IsInf(income, 0) || income < 0 {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "total income must be a non-negative amount")
	}
	if err := ValidateConfig(m); err != nil {
		return nil, err
	}

	var plan *AllocationPlan
	switch m.Type {
	case models.MethodologyZeroBased:
		plan = allocateZeroBased(income, categories, m.Config, history)
	case models.MethodologyPercentageBased:
		plan = allocatePercentage(income, categories, m.Config, history)
	case models.MethodologyEnvelope:
		plan = allocateEnvelope(income, categories, m.Config, history)
	}
	plan.MethodologyType = m.Type
	plan.TotalIncome = income
	plan.NoIncome = income == 0
	finalize(plan)
	return plan, nil
}

// finalize computes totals and percentages from the per-category amounts so
// that TotalAllocated + Unallocated == TotalIncome.
func finalize(plan *AllocationPlan) {
	total := decimal.Zero
	for i := range plan.Allocations {
		a := &plan.Allocations[i]
		total = total.Add(dec(a.Allocated))
		a.Percentage = roundPct(percentOf(a.Allocated, plan.TotalIncome))
	}
	plan.TotalAllocated = toFloat(total)
	plan.Unallocated = toFloat(dec(plan.TotalIncome).Sub(total))
	plan.OverAllocated = plan.Unallocated < 0
	if plan.NoIncome {
		plan.Recommendations = append([]string{"No income recorded. Add income sources to build a budget."}, plan.Recommendations...)
	}
	if plan.Recommendations == nil {
		plan.Recommendations = []string{}
	}
	if plan.Allocations == nil {
		plan.Allocations = []CategoryAllocation{}
	}
}

// ValidateConfig checks the configuration required by the methodology type.
func ValidateConfig(m Methodology) error {
	cfg := m.Config
	switch m.Type {
	case models.MethodologyZeroBased:
		if cfg.UnallocatedThreshold != nil && *cfg.UnallocatedThreshold < 0 {
			return invalidConfig("unallocated_threshold must not be negative")
		}
	case models.MethodologyPercentageBased:
		if cfg.NeedsPercentage == nil || cfg.WantsPercentage == nil || cfg.SavingsPercentage == nil {
			return invalidConfig("needs_percentage, wants_percentage and savings_percentage are required")
		}
		n, w, s := *cfg.NeedsPercentage, *cfg.WantsPercentage, *cfg.SavingsPercentage
		if n < 0 || w < 0 || s < 0 {
			return invalidConfig("bucket percentages must not be negative")
		}
		if sum := n + w + s; math.Abs(sum-100) > percentageTolerance {
			return invalidConfig(fmt.Sprintf("bucket percentages must sum to 100, got %.2f", sum))
		}
		for id, bucket := range cfg.CategoryBuckets {
			switch bucket {
			case models.BucketNeeds, models.BucketWants, models.BucketSavings:
			default:
				return invalidConfig(fmt.Sprintf("category %s has unknown bucket %q", id, bucket))
			}
		}
	case models.MethodologyEnvelope:
		if p := cfg.MaxTransferPercentage; p != nil && (*p < 0 || *p > 100) {
			return invalidConfig("max_transfer_percentage must be between 0 and 100")
		}
	default:
		return invalidConfig(fmt.Sprintf("unknown methodology type %q", m.Type))
	}
	return nil
}

// ValidationResult reports whether a methodology is usable.
type ValidationResult struct {
	IsValid bool   `json:"is_valid"`
	Message string `json:"message"`
}

// ValidateMethodology wraps ValidateConfig for display.
func ValidateMethodology(m Methodology) ValidationResult {
	if err := ValidateConfig(m); err != nil {
		return ValidationResult{IsValid: false, Message: err.Error()}
	}
	return ValidationResult{IsValid: true, Message: "Configuration is valid"}
}

func invalidConfig(msg string) error {
	return apperrors.WithMessage(apperrors.ErrInvalidConfiguration, msg)
}

func newAllocation(c models.Category) CategoryAllocation {
	priority := c.BudgetPriority
	if priority == "" {
		priority = models.BudgetPriorityEssential
	}
	return CategoryAllocation{
		CategoryID:   c.ID,
		CategoryName: c.Name,
		Priority:     priority,
		Source:       SourceNone,
	}
}
