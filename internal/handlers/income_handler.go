package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"budgetwise/internal/models"
	"budgetwise/internal/pagination"
	"budgetwise/internal/services"
)

// IncomeHandler handles income source requests.
type IncomeHandler struct {
	incomeService services.IncomeServicer
	auditService  services.AuditServicer
}

// NewIncomeHandler creates a new IncomeHandler.
func NewIncomeHandler(incomeService services.IncomeServicer, auditService services.AuditServicer) *IncomeHandler {
	return &IncomeHandler{incomeService: incomeService, auditService: auditService}
}

// CreateIncomeRequest represents the request payload for declaring an income source.
type CreateIncomeRequest struct {
	Amount     float64                `json:"amount" binding:"required,gt=0"`
	IncomeType string                 `json:"income_type" binding:"max=50"`
	Frequency  models.IncomeFrequency `json:"frequency" binding:"omitempty,income_frequency"`
	SourceName string                 `json:"source_name" binding:"required,min=1,max=100"`
	IsBonus    bool                   `json:"is_bonus"`
	Notes      string                 `json:"notes" binding:"max=500"`
}

// UpdateIncomeRequest represents the request payload for updating an income source.
type UpdateIncomeRequest struct {
	Amount     *float64               `json:"amount" binding:"omitempty,gt=0"`
	IncomeType string                 `json:"income_type" binding:"max=50"`
	Frequency  models.IncomeFrequency `json:"frequency" binding:"omitempty,income_frequency"`
	SourceName string                 `json:"source_name" binding:"max=100"`
	IsBonus    *bool                  `json:"is_bonus"`
	Notes      *string                `json:"notes" binding:"omitempty,max=500"`
}

// CreateIncome handles declaring an income source.
// @Summary     Create an income source
// @Tags        incomes
// @Accept      json
// @Produce     json
// @Param       request body CreateIncomeRequest true "Income details"
// @Success     201 {object} models.Income "Income created"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /incomes [post]
func (h *IncomeHandler) CreateIncome(c *gin.Context) {
	var req CreateIncomeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, bindError(err))
		return
	}

	income, err := h.incomeService.CreateIncome(services.IncomeInput{
		Amount:     &req.Amount,
		IncomeType: req.IncomeType,
		Frequency:  req.Frequency,
		SourceName: req.SourceName,
		IsBonus:    &req.IsBonus,
		Notes:      &req.Notes,
	})
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log("CREATE_INCOME", "income", income.ID, c.ClientIP(),
		map[string]any{"amount": income.Amount, "frequency": income.Frequency, "source_name": income.SourceName})

	c.JSON(http.StatusCreated, gin.H{"income": income})
}

// GetIncomes handles listing income sources.
// @Summary     List income sources
// @Tags        incomes
// @Produce     json
// @Param       page      query int false "Page number (default 1)"
// @Param       page_size query int false "Items per page (default 20, max 100)"
// @Success     200 {object} pagination.PageResponse[models.Income] "Paginated incomes"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Router      /incomes [get]
func (h *IncomeHandler) GetIncomes(c *gin.Context) {
	var page pagination.PageRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		respondWithError(c, bindError(err))
		return
	}

	result, err := h.incomeService.GetIncomes(page)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetIncomeSummary handles the normalized monthly income summary.
// @Summary     Monthly income summary
// @Description Normalize every income source to a monthly amount and split recurring from bonus income
// @Tags        incomes
// @Produce     json
// @Success     200 {object} engine.IncomeSummary "Income summary"
// @Router      /incomes/summary [get]
func (h *IncomeHandler) GetIncomeSummary(c *gin.Context) {
	summary, err := h.incomeService.GetIncomeSummary()
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"summary": summary})
}

// GetIncome handles retrieving a single income source.
// @Summary     Get income source by ID
// @Tags        incomes
// @Produce     json
// @Param       id path string true "Income ID"
// @Success     200 {object} models.Income "Income"
// @Failure     404 {object} ErrorResponse "Income not found"
// @Router      /incomes/{id} [get]
func (h *IncomeHandler) GetIncome(c *gin.Context) {
	incomeID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	income, err := h.incomeService.GetIncomeByID(incomeID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"income": income})
}

// UpdateIncome handles updating an income source.
// @Summary     Update an income source
// @Tags        incomes
// @Accept      json
// @Produce     json
// @Param       id      path string              true "Income ID"
// @Param       request body UpdateIncomeRequest true "Fields to update"
// @Success     200 {object} models.Income "Updated income"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     404 {object} ErrorResponse "Income not found"
// @Router      /incomes/{id} [put]
func (h *IncomeHandler) UpdateIncome(c *gin.Context) {
	incomeID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req UpdateIncomeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, bindError(err))
		return
	}

	income, err := h.incomeService.UpdateIncome(incomeID, services.IncomeInput{
		Amount:     req.Amount,
		IncomeType: req.IncomeType,
		Frequency:  req.Frequency,
		SourceName: req.SourceName,
		IsBonus:    req.IsBonus,
		Notes:      req.Notes,
	})
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log("UPDATE_INCOME", "income", incomeID, c.ClientIP(),
		map[string]any{"amount": income.Amount, "frequency": income.Frequency})

	c.JSON(http.StatusOK, gin.H{"income": income})
}

// DeleteIncome handles deleting an income source.
// @Summary     Delete an income source
// @Tags        incomes
// @Produce     json
// @Param       id path string true "Income ID"
// @Success     200 {object} MessageResponse "Income deleted"
// @Failure     404 {object} ErrorResponse "Income not found"
// @Router      /incomes/{id} [delete]
func (h *IncomeHandler) DeleteIncome(c *gin.Context) {
	incomeID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	if err := h.incomeService.DeleteIncome(incomeID); err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log("DELETE_INCOME", "income", incomeID, c.ClientIP(), nil)

	c.JSON(http.StatusOK, MessageResponse{Message: "Income deleted successfully"})
}
