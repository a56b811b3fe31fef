package services

import (
	"time"

	"budgetwise/internal/engine"
	"budgetwise/internal/models"
	"budgetwise/internal/pagination"
)

// CategoryInput carries the writable category fields. Nil pointers and empty
// strings leave the stored value untouched on update.
type CategoryInput struct {
	Name                string
	Type                models.CategoryType
	Description         string
	Color               string
	BudgetLimit         *float64
	BudgetPeriod        models.BudgetPeriod
	BudgetType          models.BudgetType
	BudgetPriority      models.BudgetPriority
	BudgetPercentage    *float64
	BudgetRollingMonths *int
	WarningThreshold    *float64
	OverThreshold       *float64
	CriticalThreshold   *float64
	NeedsReview         *bool
}

// CategoryServicer defines the contract for category-related business logic.
type CategoryServicer interface {
	CreateCategory(in CategoryInput) (*models.Category, error)
	GetCategories(page pagination.PageRequest, categoryType *models.CategoryType) (*pagination.PageResponse[models.Category], error)
	GetCategoryByID(categoryID string) (*models.Category, error)
	UpdateCategory(categoryID string, in CategoryInput) (*models.Category, error)
	DeleteCategory(categoryID string) error
}

// TransactionFilter holds optional filter parameters for listing transactions.
type TransactionFilter struct {
	FromDate   *time.Time
	ToDate     *time.Time
	Type       *models.TransactionType
	CategoryID *string
}

// TransactionServicer defines the contract for transaction-related business logic.
type TransactionServicer interface {
	CreateTransaction(categoryID string, transactionType models.TransactionType, amount float64, description string, date time.Time) (*models.Transaction, error)
	GetTransactions(page pagination.PageRequest, filter TransactionFilter) (*pagination.PageResponse[models.Transaction], error)
	GetTransactionByID(transactionID string) (*models.Transaction, error)
	DeleteTransaction(transactionID string) error
}

// IncomeInput carries the writable income fields.
type IncomeInput struct {
	Amount     *float64
	IncomeType string
	Frequency  models.IncomeFrequency
	SourceName string
	IsBonus    *bool
	Notes      *string
}

// IncomeServicer defines the contract for income sources.
type IncomeServicer interface {
	CreateIncome(in IncomeInput) (*models.Income, error)
	GetIncomes(page pagination.PageRequest) (*pagination.PageResponse[models.Income], error)
	GetIncomeByID(incomeID string) (*models.Income, error)
	UpdateIncome(incomeID string, in IncomeInput) (*models.Income, error)
	DeleteIncome(incomeID string) error
	GetIncomeSummary() (*engine.IncomeSummary, error)
}

// MethodologyInput carries the writable methodology fields.
type MethodologyInput struct {
	Name            string
	Description     *string
	MethodologyType models.MethodologyType
	Configuration   *models.MethodologyConfig
	IsDefault       *bool
}

// CalculateRequest parameterizes an allocation run. A nil Income uses the
// normalized monthly income of all sources; Configuration is merged over the
// methodology's stored configuration for this run only.
type CalculateRequest struct {
	Income        *float64
	Configuration *models.MethodologyConfig
	Ref           time.Time
}

// ApplyResult is the plan that was applied and how many category limits changed.
type ApplyResult struct {
	Plan              *engine.AllocationPlan `json:"plan"`
	AutoUpdated       bool                   `json:"auto_updated"`
	UpdatedCategories int                    `json:"updated_categories"`
}

// MethodologyRecommendations pairs the profile with the ranked methodology types.
type MethodologyRecommendations struct {
	Profile         engine.UserFinancialProfile        `json:"user_profile"`
	Recommendations []engine.MethodologyRecommendation `json:"recommendations"`
}

// MethodologyServicer defines the contract for budget methodologies and allocation.
type MethodologyServicer interface {
	GetMethodologies() ([]models.BudgetMethodology, error)
	GetMethodologyByID(methodologyID string) (*models.BudgetMethodology, error)
	GetActiveMethodology() (*models.BudgetMethodology, error)
	CreateMethodology(in MethodologyInput) (*models.BudgetMethodology, error)
	UpdateMethodology(methodologyID string, in MethodologyInput) (*models.BudgetMethodology, error)
	DeleteMethodology(methodologyID string) error
	ActivateMethodology(methodologyID string) (*models.BudgetMethodology, error)
	ValidateMethodology(methodologyID string) (*engine.ValidationResult, error)
	Calculate(methodologyID string, req CalculateRequest) (*engine.AllocationPlan, error)
	CalculateActive(req CalculateRequest) (*engine.AllocationPlan, error)
	Allocate(methodologyType *models.MethodologyType, req CalculateRequest) (*engine.AllocationPlan, error)
	Apply(methodologyID string, req CalculateRequest, updateLimits bool) (*ApplyResult, error)
	Compare(methodologyIDs []string, req CalculateRequest) ([]engine.ComparisonResult, error)
	Recommend(ref time.Time) (*MethodologyRecommendations, error)
	SeedDefaults() (int, error)
}

// ProgressQuery selects the period and categories for progress style reports.
// Start and End, when both set, override each category's own cadence.
type ProgressQuery struct {
	Ref        time.Time
	Cadence    models.BudgetPeriod
	Start      *time.Time
	End        *time.Time
	CategoryID string
	Advanced   bool
}

// ProgressReport holds per-category records and their aggregate.
type ProgressReport struct {
	Records []engine.ProgressRecord `json:"categories"`
	Summary engine.ProgressSummary  `json:"summary"`
}

// BudgetServicer defines the contract for budget analytics over stored data.
type BudgetServicer interface {
	GetProgress(q ProgressQuery) (*ProgressReport, error)
	GetVariance(q ProgressQuery) ([]engine.VarianceRecord, error)
	GetPatterns(ref time.Time) (*engine.SpendingPatterns, error)
	GetForecast(q ProgressQuery) ([]engine.ForecastRecord, error)
	GetSuggestions(ref time.Time) ([]engine.BudgetSuggestion, error)
	GetTrends(ref time.Time, months int) ([]engine.TrendPoint, error)
	GetPerformanceScore(q ProgressQuery) (*engine.PerformanceScore, error)
	GetTransactionImpact(transactionID string) (*engine.TransactionImpact, error)
	GetEffectiveBudgets(ref time.Time, income *float64) ([]engine.EffectiveBudget, error)
}

// AlertInput carries a manually raised alert.
type AlertInput struct {
	Type       models.AlertType
	CategoryID *string
	Severity   models.AlertSeverity
	Message    string
	Metadata   map[string]any
}

// AnomalyInput asks whether amount is unusual for the category.
type AnomalyInput struct {
	CategoryID  string
	Amount      float64
	Ref         time.Time
	RecordAlert bool
}

// AnomalyReport is the detection outcome and the alert raised for it, if any.
type AnomalyReport struct {
	engine.AnomalyResult
	CategoryID string        `json:"category_id"`
	Alert      *models.Alert `json:"alert,omitempty"`
}

// PreferenceInput carries notification preference updates.
type PreferenceInput struct {
	InAppEnabled    *bool
	EmailEnabled    *bool
	SMSEnabled      *bool
	PushEnabled     *bool
	QuietHoursStart *string
	QuietHoursEnd   *string
}

// AlertServicer defines the contract for alert lifecycle and evaluation.
type AlertServicer interface {
	GetAlerts(filter engine.AlertFilter, page pagination.PageRequest) (*pagination.PageResponse[models.Alert], error)
	GetAlertByID(alertID string) (*models.Alert, error)
	CreateAlert(in AlertInput) (*models.Alert, error)
	DismissAlert(alertID string) (*models.Alert, error)
	SnoozeAlert(alertID string, hours float64) (*models.Alert, error)
	EvaluateAlerts(ref time.Time) ([]models.Alert, error)
	DetectAnomaly(in AnomalyInput) (*AnomalyReport, error)
	GetPreferences() (*models.NotificationPreference, error)
	UpdatePreferences(in PreferenceInput) (*models.NotificationPreference, error)
}

// AuditFilter narrows an audit log listing. Empty fields match everything.
type AuditFilter struct {
	ResourceType string
	ResourceID   string
	Action       string
}

// AuditServicer defines the contract for audit logging.
type AuditServicer interface {
	Log(action, resourceType, resourceID, ipAddress string, changes map[string]any)
	GetAuditLogs(filter AuditFilter, page pagination.PageRequest) (*pagination.PageResponse[models.AuditLog], error)
}
