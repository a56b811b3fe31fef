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

// MethodologyHandler handles budget methodology and allocation requests.
type MethodologyHandler struct {
	methodologyService services.MethodologyServicer
	auditService       services.AuditServicer
	loc                *time.Location
}

// NewMethodologyHandler creates a new MethodologyHandler.
func NewMethodologyHandler(methodologyService services.MethodologyServicer, auditService services.AuditServicer, loc *time.Location) *MethodologyHandler {
	if loc == nil {
		loc = time.UTC
	}
	return &MethodologyHandler{methodologyService: methodologyService, auditService: auditService, loc: loc}
}

// CreateMethodologyRequest represents the request payload for creating a methodology.
type CreateMethodologyRequest struct {
	Name            string                    `json:"name" binding:"required,min=1,max=100"`
	Description     string                    `json:"description" binding:"max=500"`
	MethodologyType models.MethodologyType    `json:"methodology_type" binding:"required,methodology_type"`
	Configuration   *models.MethodologyConfig `json:"configuration"`
	IsDefault       bool                      `json:"is_default"`
}

// UpdateMethodologyRequest represents the request payload for updating a methodology.
type UpdateMethodologyRequest struct {
	Name            string                    `json:"name" binding:"max=100"`
	Description     *string                   `json:"description" binding:"omitempty,max=500"`
	MethodologyType models.MethodologyType    `json:"methodology_type" binding:"omitempty,methodology_type"`
	Configuration   *models.MethodologyConfig `json:"configuration"`
	IsDefault       *bool                     `json:"is_default"`
}

// CalculateBody is the optional body of calculate, apply and allocate.
// Configuration overrides the stored configuration for this run only.
type CalculateBody struct {
	Income        *float64                  `json:"income"`
	Configuration *models.MethodologyConfig `json:"configuration"`
	Date          string                    `json:"date"`
}

// ApplyRequest represents the request payload for applying a methodology.
type ApplyRequest struct {
	CalculateBody
	AutoUpdate bool `json:"auto_update"`
}

// AllocateRequest represents the request payload for an allocation run.
type AllocateRequest struct {
	CalculateBody
	MethodologyType *models.MethodologyType `json:"methodology_type" binding:"omitempty,methodology_type"`
}

// CompareRequest represents the request payload for comparing methodologies.
type CompareRequest struct {
	CalculateBody
	MethodologyIDs []string `json:"methodology_ids" binding:"required,min=1,dive,uuid"`
}

func (b CalculateBody) request(loc *time.Location) (services.CalculateRequest, error) {
	ref, err := refDate(b.Date, loc)
	if err != nil {
		return services.CalculateRequest{}, err
	}
	return services.CalculateRequest{Income: b.Income, Configuration: b.Configuration, Ref: ref}, nil
}

// bindCalculateBody binds an optional JSON body. An empty body is allowed.
func bindCalculateBody(c *gin.Context, obj any) error {
	if c.Request.ContentLength == 0 {
		return nil
	}
	if err := c.ShouldBindJSON(obj); err != nil {
		return bindError(err)
	}
	return nil
}

// GetMethodologies handles listing methodologies.
// @Summary     List budget methodologies
// @Tags        methodologies
// @Produce     json
// @Success     200 {array}  models.BudgetMethodology "Methodologies"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /budget/methodologies [get]
func (h *MethodologyHandler) GetMethodologies(c *gin.Context) {
	methodologies, err := h.methodologyService.GetMethodologies()
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"methodologies": methodologies})
}

// GetActiveMethodology handles retrieving the active methodology.
// @Summary     Get the active methodology
// @Tags        methodologies
// @Produce     json
// @Success     200 {object} models.BudgetMethodology "Active methodology"
// @Failure     404 {object} ErrorResponse "No active methodology"
// @Router      /budget/methodologies/active [get]
func (h *MethodologyHandler) GetActiveMethodology(c *gin.Context) {
	methodology, err := h.methodologyService.GetActiveMethodology()
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"methodology": methodology})
}

// GetMethodology handles retrieving a single methodology.
// @Summary     Get methodology by ID
// @Tags        methodologies
// @Produce     json
// @Param       id path string true "Methodology ID"
// @Success     200 {object} models.BudgetMethodology "Methodology"
// @Failure     404 {object} ErrorResponse "Methodology not found"
// @Router      /budget/methodologies/{id} [get]
func (h *MethodologyHandler) GetMethodology(c *gin.Context) {
	methodologyID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	methodology, err := h.methodologyService.GetMethodologyByID(methodologyID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"methodology": methodology})
}

// CreateMethodology handles creating a methodology.
// @Summary     Create a methodology
// @Description The configuration is validated before the methodology is stored
// @Tags        methodologies
// @Accept      json
// @Produce     json
// @Param       request body CreateMethodologyRequest true "Methodology details"
// @Success     201 {object} models.BudgetMethodology "Methodology created"
// @Failure     400 {object} ErrorResponse "Invalid input or configuration"
// @Failure     409 {object} ErrorResponse "Duplicate name"
// @Router      /budget/methodologies [post]
func (h *MethodologyHandler) CreateMethodology(c *gin.Context) {
	var req CreateMethodologyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, bindError(err))
		return
	}

	methodology, err := h.methodologyService.CreateMethodology(services.MethodologyInput{
		Name:            req.Name,
		Description:     &req.Description,
		MethodologyType: req.MethodologyType,
		Configuration:   req.Configuration,
		IsDefault:       &req.IsDefault,
	})
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log("CREATE_METHODOLOGY", "methodology", methodology.ID, c.ClientIP(),
		map[string]any{"name": methodology.Name, "methodology_type": methodology.MethodologyType})

	c.JSON(http.StatusCreated, gin.H{"methodology": methodology})
}

// UpdateMethodology handles updating a methodology.
// @Summary     Update a methodology
// @Description The merged result is validated and nothing is saved when it is invalid
// @Tags        methodologies
// @Accept      json
// @Produce     json
// @Param       id      path string                   true "Methodology ID"
// @Param       request body UpdateMethodologyRequest true "Fields to update"
// @Success     200 {object} models.BudgetMethodology "Updated methodology"
// @Failure     400 {object} ErrorResponse "Invalid input or configuration"
// @Failure     404 {object} ErrorResponse "Methodology not found"
// @Router      /budget/methodologies/{id} [put]
func (h *MethodologyHandler) UpdateMethodology(c *gin.Context) {
	methodologyID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req UpdateMethodologyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, bindError(err))
		return
	}

	methodology, err := h.methodologyService.UpdateMethodology(methodologyID, services.MethodologyInput{
		Name:            req.Name,
		Description:     req.Description,
		MethodologyType: req.MethodologyType,
		Configuration:   req.Configuration,
		IsDefault:       req.IsDefault,
	})
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log("UPDATE_METHODOLOGY", "methodology", methodologyID, c.ClientIP(),
		map[string]any{"name": methodology.Name, "configuration": methodology.Configuration})

	c.JSON(http.StatusOK, gin.H{"methodology": methodology})
}

// DeleteMethodology handles deleting a methodology.
// @Summary     Delete a methodology
// @Tags        methodologies
// @Produce     json
// @Param       id path string true "Methodology ID"
// @Success     200 {object} MessageResponse "Methodology deleted"
// @Failure     404 {object} ErrorResponse "Methodology not found"
// @Failure     409 {object} ErrorResponse "Methodology is active"
// @Router      /budget/methodologies/{id} [delete]
func (h *MethodologyHandler) DeleteMethodology(c *gin.Context) {
	methodologyID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	if err := h.methodologyService.DeleteMethodology(methodologyID); err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log("DELETE_METHODOLOGY", "methodology", methodologyID, c.ClientIP(), nil)

	c.JSON(http.StatusOK, MessageResponse{Message: "Methodology deleted successfully"})
}

// ActivateMethodology handles making a methodology the active one.
// @Summary     Activate a methodology
// @Description Deactivates every other methodology in the same transaction
// @Tags        methodologies
// @Produce     json
// @Param       id path string true "Methodology ID"
// @Success     200 {object} models.BudgetMethodology "Activated methodology"
// @Failure     404 {object} ErrorResponse "Methodology not found"
// @Router      /budget/methodologies/{id}/activate [post]
func (h *MethodologyHandler) ActivateMethodology(c *gin.Context) {
	methodologyID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	methodology, err := h.methodologyService.ActivateMethodology(methodologyID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log("ACTIVATE_METHODOLOGY", "methodology", methodologyID, c.ClientIP(),
		map[string]any{"name": methodology.Name})

	c.JSON(http.StatusOK, gin.H{"methodology": methodology})
}

// ValidateMethodology handles validating a stored configuration.
// @Summary     Validate a methodology configuration
// @Tags        methodologies
// @Produce     json
// @Param       id path string true "Methodology ID"
// @Success     200 {object} engine.ValidationResult "Validation result"
// @Failure     404 {object} ErrorResponse "Methodology not found"
// @Router      /budget/methodologies/{id}/validate [get]
func (h *MethodologyHandler) ValidateMethodology(c *gin.Context) {
	methodologyID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	result, err := h.methodologyService.ValidateMethodology(methodologyID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// Calculate handles an allocation preview for one methodology. GET reads
// income and date from the query string, POST from the body.
// @Summary     Calculate an allocation
// @Tags        methodologies
// @Accept      json
// @Produce     json
// @Param       id      path  string        true  "Methodology ID"
// @Param       income  query number        false "Monthly income override (GET)"
// @Param       date    query string        false "Reference date (GET)"
// @Param       request body  CalculateBody false "Calculation parameters (POST)"
// @Success     200 {object} engine.AllocationPlan "Allocation plan"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     404 {object} ErrorResponse "Methodology not found"
// @Router      /budget/methodologies/{id}/calculate [post]
func (h *MethodologyHandler) Calculate(c *gin.Context) {
	methodologyID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var body CalculateBody
	if c.Request.Method == http.MethodGet {
		body.Date = c.Query("date")
		if v := c.Query("income"); v != "" {
			income, err := strconv.ParseFloat(v, 64)
			if err != nil {
				respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "income must be a number"))
				return
			}
			body.Income = &income
		}
	} else if err := bindCalculateBody(c, &body); err != nil {
		respondWithError(c, err)
		return
	}

	req, err := body.request(h.loc)
	if err != nil {
		respondWithError(c, err)
		return
	}

	plan, err := h.methodologyService.Calculate(methodologyID, req)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, plan)
}

// Apply handles applying a methodology's allocation.
// @Summary     Apply an allocation
// @Description Calculates the plan and, with auto_update, writes the allocations into category limits
// @Tags        methodologies
// @Accept      json
// @Produce     json
// @Param       id      path string       true  "Methodology ID"
// @Param       request body ApplyRequest false "Apply parameters"
// @Success     200 {object} services.ApplyResult "Applied plan"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     404 {object} ErrorResponse "Methodology not found"
// @Router      /budget/methodologies/{id}/apply [post]
func (h *MethodologyHandler) Apply(c *gin.Context) {
	methodologyID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var body ApplyRequest
	if err := bindCalculateBody(c, &body); err != nil {
		respondWithError(c, err)
		return
	}
	req, err := body.request(h.loc)
	if err != nil {
		respondWithError(c, err)
		return
	}

	result, err := h.methodologyService.Apply(methodologyID, req, body.AutoUpdate)
	if err != nil {
		respondWithError(c, err)
		return
	}

	if result.AutoUpdated {
		h.auditService.Log("APPLY_METHODOLOGY", "methodology", methodologyID, c.ClientIP(),
			map[string]any{"updated_categories": result.UpdatedCategories, "total_income": result.Plan.TotalIncome})
	}

	c.JSON(http.StatusOK, result)
}

// Compare handles comparing several methodologies on the same income.
// @Summary     Compare methodologies
// @Tags        methodologies
// @Accept      json
// @Produce     json
// @Param       request body CompareRequest true "Methodologies to compare"
// @Success     200 {array}  engine.ComparisonResult "Comparison"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     404 {object} ErrorResponse "Methodology not found"
// @Router      /budget/methodologies/compare [post]
func (h *MethodologyHandler) Compare(c *gin.Context) {
	var body CompareRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		respondWithError(c, bindError(err))
		return
	}
	req, err := body.request(h.loc)
	if err != nil {
		respondWithError(c, err)
		return
	}

	results, err := h.methodologyService.Compare(body.MethodologyIDs, req)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"comparisons": results})
}

// Recommend handles ranking methodology types for the household.
// @Summary     Recommend methodologies
// @Tags        methodologies
// @Produce     json
// @Param       date query string false "Reference date"
// @Success     200 {object} services.MethodologyRecommendations "Recommendations"
// @Router      /budget/methodologies/recommendations [get]
func (h *MethodologyHandler) Recommend(c *gin.Context) {
	ref, err := refDate(c.Query("date"), h.loc)
	if err != nil {
		respondWithError(c, err)
		return
	}

	result, err := h.methodologyService.Recommend(ref)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// Allocate handles an allocation with the active methodology, or with the
// preferred methodology of the requested type.
// @Summary     Allocate income
// @Tags        methodologies
// @Accept      json
// @Produce     json
// @Param       request body AllocateRequest false "Allocation parameters"
// @Success     200 {object} engine.AllocationPlan "Allocation plan"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     404 {object} ErrorResponse "No methodology available"
// @Router      /budget/allocate [post]
func (h *MethodologyHandler) Allocate(c *gin.Context) {
	var body AllocateRequest
	if err := bindCalculateBody(c, &body); err != nil {
		respondWithError(c, err)
		return
	}
	req, err := body.request(h.loc)
	if err != nil {
		respondWithError(c, err)
		return
	}

	plan, err := h.methodologyService.Allocate(body.MethodologyType, req)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, plan)
}
