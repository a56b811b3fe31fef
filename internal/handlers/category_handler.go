package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "budgetwise/internal/errors"
	"budgetwise/internal/models"
	"budgetwise/internal/pagination"
	"budgetwise/internal/services"
)

// CategoryHandler handles category-related requests.
type CategoryHandler struct {
	categoryService services.CategoryServicer
	auditService    services.AuditServicer
}

// NewCategoryHandler creates a new CategoryHandler.
func NewCategoryHandler(categoryService services.CategoryServicer, auditService services.AuditServicer) *CategoryHandler {
	return &CategoryHandler{categoryService: categoryService, auditService: auditService}
}

// CategoryBudgetFields are the budget settings shared by create and update.
type CategoryBudgetFields struct {
	Description         string                `json:"description" binding:"max=500"`
	Color               string                `json:"color" binding:"omitempty,hex_color"`
	BudgetLimit         *float64              `json:"budget_limit" binding:"omitempty,gte=0"`
	BudgetPeriod        models.BudgetPeriod   `json:"budget_period" binding:"omitempty,budget_period"`
	BudgetType          models.BudgetType     `json:"budget_type" binding:"omitempty,budget_type"`
	BudgetPriority      models.BudgetPriority `json:"budget_priority" binding:"omitempty,budget_priority"`
	BudgetPercentage    *float64              `json:"budget_percentage" binding:"omitempty,gt=0,lte=100"`
	BudgetRollingMonths *int                  `json:"budget_rolling_months" binding:"omitempty,min=1,max=24"`
	WarningThreshold    *float64              `json:"warning_threshold" binding:"omitempty,gt=0"`
	OverThreshold       *float64              `json:"over_threshold" binding:"omitempty,gt=0"`
	CriticalThreshold   *float64              `json:"critical_threshold" binding:"omitempty,gt=0"`
	NeedsReview         *bool                 `json:"needs_review"`
}

// CreateCategoryRequest represents the request payload for creating a category.
type CreateCategoryRequest struct {
	Name string              `json:"name" binding:"required,min=1,max=100"`
	Type models.CategoryType `json:"type" binding:"required,category_type"`
	CategoryBudgetFields
}

// UpdateCategoryRequest represents the request payload for updating a category.
// Omitted fields keep their stored values.
type UpdateCategoryRequest struct {
	Name string              `json:"name" binding:"omitempty,min=1,max=100"`
	Type models.CategoryType `json:"type" binding:"omitempty,category_type"`
	CategoryBudgetFields
}

func (f CategoryBudgetFields) input(name string, categoryType models.CategoryType) services.CategoryInput {
	return services.CategoryInput{
		Name:                name,
		Type:                categoryType,
		Description:         f.Description,
		Color:               f.Color,
		BudgetLimit:         f.BudgetLimit,
		BudgetPeriod:        f.BudgetPeriod,
		BudgetType:          f.BudgetType,
		BudgetPriority:      f.BudgetPriority,
		BudgetPercentage:    f.BudgetPercentage,
		BudgetRollingMonths: f.BudgetRollingMonths,
		WarningThreshold:    f.WarningThreshold,
		OverThreshold:       f.OverThreshold,
		CriticalThreshold:   f.CriticalThreshold,
		NeedsReview:         f.NeedsReview,
	}
}

// CreateCategory handles the creation of a new category.
// @Summary     Create a category
// @Description Create an income or expense category with its budget settings
// @Tags        categories
// @Accept      json
// @Produce     json
// @Param       request body CreateCategoryRequest true "Category details"
// @Success     201 {object} models.Category "Category created"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     409 {object} ErrorResponse "Duplicate name"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /categories [post]
func (h *CategoryHandler) CreateCategory(c *gin.Context) {
	var req CreateCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, bindError(err))
		return
	}

	category, err := h.categoryService.CreateCategory(req.input(req.Name, req.Type))
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log("CREATE_CATEGORY", "category", category.ID, c.ClientIP(),
		map[string]any{"name": category.Name, "type": category.Type, "budget_limit": category.BudgetLimit})

	c.JSON(http.StatusCreated, gin.H{"category": category})
}

// GetCategories handles listing categories.
// @Summary     List categories
// @Description Get a paginated list of categories ordered by name
// @Tags        categories
// @Produce     json
// @Param       type      query string false "Filter by category type (income/expense)"
// @Param       page      query int    false "Page number (default 1)"
// @Param       page_size query int    false "Items per page (default 20, max 100)"
// @Success     200 {object} pagination.PageResponse[models.Category] "Paginated categories"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /categories [get]
func (h *CategoryHandler) GetCategories(c *gin.Context) {
	var page pagination.PageRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		respondWithError(c, bindError(err))
		return
	}

	var categoryType *models.CategoryType
	if v := c.Query("type"); v != "" {
		t := models.CategoryType(v)
		if t != models.CategoryTypeIncome && t != models.CategoryTypeExpense {
			respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "type must be 'income' or 'expense'"))
			return
		}
		categoryType = &t
	}

	result, err := h.categoryService.GetCategories(page, categoryType)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetCategory handles retrieving a single category.
// @Summary     Get category by ID
// @Tags        categories
// @Produce     json
// @Param       id path string true "Category ID"
// @Success     200 {object} models.Category "Category"
// @Failure     400 {object} ErrorResponse "Invalid ID"
// @Failure     404 {object} ErrorResponse "Category not found"
// @Router      /categories/{id} [get]
func (h *CategoryHandler) GetCategory(c *gin.Context) {
	categoryID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	category, err := h.categoryService.GetCategoryByID(categoryID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"category": category})
}

// UpdateCategory handles updating a category.
// @Summary     Update a category
// @Description Partially update a category. The update is rejected as a whole if the result is invalid.
// @Tags        categories
// @Accept      json
// @Produce     json
// @Param       id      path string                true "Category ID"
// @Param       request body UpdateCategoryRequest true "Fields to update"
// @Success     200 {object} models.Category "Updated category"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     404 {object} ErrorResponse "Category not found"
// @Failure     409 {object} ErrorResponse "Duplicate name or category in use"
// @Router      /categories/{id} [put]
func (h *CategoryHandler) UpdateCategory(c *gin.Context) {
	categoryID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req UpdateCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, bindError(err))
		return
	}

	category, err := h.categoryService.UpdateCategory(categoryID, req.input(req.Name, req.Type))
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log("UPDATE_CATEGORY", "category", categoryID, c.ClientIP(),
		map[string]any{"name": category.Name, "budget_limit": category.BudgetLimit, "budget_type": category.BudgetType})

	c.JSON(http.StatusOK, gin.H{"category": category})
}

// DeleteCategory handles deleting a category.
// @Summary     Delete a category
// @Description Delete a category that no transaction references
// @Tags        categories
// @Produce     json
// @Param       id path string true "Category ID"
// @Success     200 {object} MessageResponse "Category deleted"
// @Failure     404 {object} ErrorResponse "Category not found"
// @Failure     409 {object} ErrorResponse "Category in use"
// @Router      /categories/{id} [delete]
func (h *CategoryHandler) DeleteCategory(c *gin.Context) {
	categoryID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	if err := h.categoryService.DeleteCategory(categoryID); err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log("DELETE_CATEGORY", "category", categoryID, c.ClientIP(), nil)

	c.JSON(http.StatusOK, MessageResponse{Message: "Category deleted successfully"})
}
