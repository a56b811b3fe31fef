package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	apperrors "budgetwise/internal/errors"
	"budgetwise/internal/models"
	"budgetwise/internal/services"
)

// BudgetHandler serves budget analytics over stored categories and transactions.
type BudgetHandler struct {
	budgetService services.BudgetServicer
	loc           *time.Location
}

// NewBudgetHandler creates a new BudgetHandler.
func NewBudgetHandler(budgetService services.BudgetServicer, loc *time.Location) *BudgetHandler {
	if loc == nil {
		loc = time.UTC
	}
	return &BudgetHandler{budgetService: budgetService, loc: loc}
}

// EffectiveBudgetRequest represents the request payload for resolving
// effective budgets.
type EffectiveBudgetRequest struct {
	Income *float64 `json:"income"`
	Date   string   `json:"date"`
}

// progressQuery reads the shared analytics query parameters: date, period,
// start_date, end_date, category_id and advanced.
func (h *BudgetHandler) progressQuery(c *gin.Context) (services.ProgressQuery, error) {
	var q services.ProgressQuery
	var err error

	if q.Ref, err = refDate(c.Query("date"), h.loc); err != nil {
		return q, err
	}
	if v := c.Query("period"); v != "" {
		switch p := models.BudgetPeriod(v); p {
		case models.BudgetPeriodDaily, models.BudgetPeriodWeekly, models.BudgetPeriodMonthly, models.BudgetPeriodYearly:
			q.Cadence = p
		default:
			return q, apperrors.WithMessage(apperrors.ErrInvalidInput, "period must be one of daily, weekly, monthly, yearly")
		}
	}
	if q.Start, err = queryDate(c, "start_date", h.loc); err != nil {
		return q, err
	}
	if q.End, err = queryDate(c, "end_date", h.loc); err != nil {
		return q, err
	}
	if v := c.Query("category_id"); v != "" {
		q.CategoryID = v
	}
	if v := c.Query("advanced"); v != "" {
		if q.Advanced, err = strconv.ParseBool(v); err != nil {
			return q, apperrors.WithMessage(apperrors.ErrInvalidInput, "advanced must be a boolean")
		}
	}
	return q, nil
}

// GetProgress handles per-category budget progress.
// @Summary     Budget progress
// @Description Spending against each expense category's effective limit for the period containing date
// @Tags        budget
// @Produce     json
// @Param       date        query string false "Reference date (default today)"
// @Param       period      query string false "Override cadence (daily/weekly/monthly/yearly)"
// @Param       start_date  query string false "Explicit window start, requires end_date"
// @Param       end_date    query string false "Explicit window end (exclusive)"
// @Param       category_id query string false "Single category"
// @Param       advanced    query bool   false "Include variance and pace analysis"
// @Success     200 {object} services.ProgressReport "Progress report"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     404 {object} ErrorResponse "Category not found"
// @Router      /budget/progress [get]
func (h *BudgetHandler) GetProgress(c *gin.Context) {
	q, err := h.progressQuery(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	report, err := h.budgetService.GetProgress(q)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, report)
}

// GetVariance handles the variance report.
// @Summary     Budget variance
// @Tags        budget
// @Produce     json
// @Param       date        query string false "Reference date"
// @Param       period      query string false "Override cadence"
// @Param       category_id query string false "Single category"
// @Success     200 {array}  engine.VarianceRecord "Variance per category"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Router      /budget/variance [get]
func (h *BudgetHandler) GetVariance(c *gin.Context) {
	q, err := h.progressQuery(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	records, err := h.budgetService.GetVariance(q)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"variance": records})
}

// GetPatterns handles spending pattern analysis.
// @Summary     Spending patterns
// @Tags        budget
// @Produce     json
// @Param       date query string false "Reference date"
// @Success     200 {object} engine.SpendingPatterns "Spending patterns"
// @Router      /budget/patterns [get]
func (h *BudgetHandler) GetPatterns(c *gin.Context) {
	ref, err := refDate(c.Query("date"), h.loc)
	if err != nil {
		respondWithError(c, err)
		return
	}

	patterns, err := h.budgetService.GetPatterns(ref)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, patterns)
}

// GetForecast handles end-of-period spending forecasts.
// @Summary     Budget forecast
// @Tags        budget
// @Produce     json
// @Param       date        query string false "Reference date"
// @Param       period      query string false "Override cadence"
// @Param       category_id query string false "Single category"
// @Success     200 {array}  engine.ForecastRecord "Forecast per category"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Router      /budget/forecast [get]
func (h *BudgetHandler) GetForecast(c *gin.Context) {
	q, err := h.progressQuery(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	forecasts, err := h.budgetService.GetForecast(q)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"forecasts": forecasts})
}

// GetSuggestions handles budget suggestions from spending history.
// @Summary     Budget suggestions
// @Tags        budget
// @Produce     json
// @Param       date query string false "Reference date"
// @Success     200 {array} engine.BudgetSuggestion "Suggestions"
// @Router      /budget/suggestions [get]
func (h *BudgetHandler) GetSuggestions(c *gin.Context) {
	ref, err := refDate(c.Query("date"), h.loc)
	if err != nil {
		respondWithError(c, err)
		return
	}

	suggestions, err := h.budgetService.GetSuggestions(ref)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"suggestions": suggestions})
}

// GetTrends handles monthly spending trends.
// @Summary     Historical trends
// @Tags        budget
// @Produce     json
// @Param       date   query string false "Reference date"
// @Param       months query int    false "Number of months (default from settings)"
// @Success     200 {array}  engine.TrendPoint "Monthly trend points, oldest first"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Router      /budget/trends [get]
func (h *BudgetHandler) GetTrends(c *gin.Context) {
	ref, err := refDate(c.Query("date"), h.loc)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var months int
	if v := c.Query("months"); v != "" {
		months, err = strconv.Atoi(v)
		if err != nil || months < 1 || months > 24 {
			respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "months must be between 1 and 24"))
			return
		}
	}

	trends, err := h.budgetService.GetTrends(ref, months)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"trends": trends})
}

// GetPerformanceScore handles the overall budget performance score.
// @Summary     Performance score
// @Tags        budget
// @Produce     json
// @Param       date   query string false "Reference date"
// @Param       period query string false "Override cadence"
// @Success     200 {object} engine.PerformanceScore "Score and grade"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Router      /budget/performance-score [get]
func (h *BudgetHandler) GetPerformanceScore(c *gin.Context) {
	q, err := h.progressQuery(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	score, err := h.budgetService.GetPerformanceScore(q)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, score)
}

// GetTransactionImpact handles the effect of one transaction on its budget.
// @Summary     Transaction impact
// @Tags        budget
// @Produce     json
// @Param       id path string true "Transaction ID"
// @Success     200 {object} engine.TransactionImpact "Impact"
// @Failure     400 {object} ErrorResponse "Invalid ID"
// @Failure     404 {object} ErrorResponse "Transaction not found"
// @Router      /budget/transaction-impact/{id} [get]
func (h *BudgetHandler) GetTransactionImpact(c *gin.Context) {
	transactionID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	impact, err := h.budgetService.GetTransactionImpact(transactionID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, impact)
}

// GetEffectiveBudgets handles resolving each category's effective limit.
// @Summary     Effective budgets
// @Description Resolve fixed, percentage and rolling average budgets to amounts
// @Tags        budget
// @Accept      json
// @Produce     json
// @Param       request body EffectiveBudgetRequest false "Income override and reference date"
// @Success     200 {array}  engine.EffectiveBudget "Effective budgets"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Router      /budget/effective [post]
func (h *BudgetHandler) GetEffectiveBudgets(c *gin.Context) {
	var req EffectiveBudgetRequest
	if err := bindCalculateBody(c, &req); err != nil {
		respondWithError(c, err)
		return
	}

	ref, err := refDate(req.Date, h.loc)
	if err != nil {
		respondWithError(c, err)
		return
	}

	budgets, err := h.budgetService.GetEffectiveBudgets(ref, req.Income)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"budgets": budgets})
}
