package services

import (
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	apperrors "budgetwise/internal/errors"
	"budgetwise/internal/models"
	"budgetwise/internal/pagination"
)

const maxRollingMonths = 24

// categoryService handles category-related business logic.
type categoryService struct {
	db *gorm.DB
}

// NewCategoryService creates a new CategoryServicer.
func NewCategoryService(db *gorm.DB) CategoryServicer {
	return &categoryService{db: db}
}

// CreateCategory creates a new category
func (s *categoryService) CreateCategory(in CategoryInput) (*models.Category, error) {
	category := &models.Category{
		BudgetPeriod:        models.BudgetPeriodMonthly,
		BudgetType:          models.BudgetTypeFixed,
		BudgetPriority:      models.BudgetPriorityEssential,
		BudgetRollingMonths: 3,
	}
	applyCategoryInput(category, in)
	if err := validateCategory(category); err != nil {
		return nil, err
	}
	if err := s.ensureUniqueName(category.Name, ""); err != nil {
		return nil, err
	}

	if err := s.db.Create(category).Error; err != nil {
		if isUniqueConstraintError(err) {
			return nil, apperrors.ErrDuplicateCategory
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	return category, nil
}

// GetCategories retrieves a paginated list of categories, optionally of one type.
func (s *categoryService) GetCategories(page pagination.PageRequest, categoryType *models.CategoryType) (*pagination.PageResponse[models.Category], error) {
	page.Defaults()

	base := s.db.Model(&models.Category{})
	if categoryType != nil {
		base = base.Where("type = ?", *categoryType)
	}

	var totalItems int64
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var categories []models.Category
	if err := base.Order("name ASC").Scopes(pagination.Paginate(page)).Find(&categories).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(categories, page.Page, page.PageSize, totalItems)
	return &result, nil
}

// GetCategoryByID retrieves a category by ID
func (s *categoryService) GetCategoryByID(categoryID string) (*models.Category, error) {
	var category models.Category
	if err := s.db.Where("id = ?", categoryID).First(&category).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrCategoryNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &category, nil
}

// UpdateCategory applies in to an existing category. The merged result is
// validated as a whole before anything is written.
func (s *categoryService) UpdateCategory(categoryID string, in CategoryInput) (*models.Category, error) {
	category, err := s.GetCategoryByID(categoryID)
	if err != nil {
		return nil, err
	}

	if in.Type != "" && in.Type != category.Type {
		var count int64
		if err := s.db.Model(&models.Transaction{}).Where("category_id = ?", categoryID).Count(&count).Error; err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		if count > 0 {
			return nil, apperrors.WithMessage(apperrors.ErrCategoryInUse, "category type cannot change while transactions reference it")
		}
	}

	updated := *category
	applyCategoryInput(&updated, in)
	if err := validateCategory(&updated); err != nil {
		return nil, err
	}
	if updated.Name != category.Name {
		if err := s.ensureUniqueName(updated.Name, categoryID); err != nil {
			return nil, err
		}
	}

	if err := s.db.Save(&updated).Error; err != nil {
		if isUniqueConstraintError(err) {
			return nil, apperrors.ErrDuplicateCategory
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	return &updated, nil
}

// DeleteCategory soft-deletes a category that no transaction references.
func (s *categoryService) DeleteCategory(categoryID string) error {
	category, err := s.GetCategoryByID(categoryID)
	if err != nil {
		return err
	}

	var count int64
	if err := s.db.Model(&models.Transaction{}).Where("category_id = ?", categoryID).Count(&count).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if count > 0 {
		return apperrors.WithMessage(apperrors.ErrCategoryInUse,
			fmt.Sprintf("category is used by %d transaction(s)", count))
	}

	if err := s.db.Delete(category).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}

// ensureUniqueName rejects a name already used by another live category,
// compared case-insensitively.
func (s *categoryService) ensureUniqueName(name, exceptID string) error {
	q := s.db.Model(&models.Category{}).Where("LOWER(name) = LOWER(?)", name)
	if exceptID != "" {
		q = q.Where("id <> ?", exceptID)
	}
	var count int64
	if err := q.Count(&count).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if count > 0 {
		return apperrors.ErrDuplicateCategory
	}
	return nil
}

func applyCategoryInput(c *models.Category, in CategoryInput) {
	if name := strings.TrimSpace(in.Name); name != "" {
		c.Name = name
	}
	if in.Type != "" {
		c.Type = in.Type
	}
	if in.Description != "" {
		c.Description = in.Description
	}
	if in.Color != "" {
		c.Color = in.Color
	}
	if in.BudgetLimit != nil {
		c.BudgetLimit = *in.BudgetLimit
	}
	if in.BudgetPeriod != "" {
		c.BudgetPeriod = in.BudgetPeriod
	}
	if in.BudgetType != "" {
		c.BudgetType = in.BudgetType
	}
	if in.BudgetPriority != "" {
		c.BudgetPriority = in.BudgetPriority
	}
	if in.BudgetPercentage != nil {
		c.BudgetPercentage = in.BudgetPercentage
	}
	if in.BudgetRollingMonths != nil {
		c.BudgetRollingMonths = *in.BudgetRollingMonths
	}
	if in.WarningThreshold != nil {
		c.WarningThreshold = in.WarningThreshold
	}
	if in.OverThreshold != nil {
		c.OverThreshold = in.OverThreshold
	}
	if in.CriticalThreshold != nil {
		c.CriticalThreshold = in.CriticalThreshold
	}
	if in.NeedsReview != nil {
		c.NeedsReview = *in.NeedsReview
	}
}

func validateCategory(c *models.Category) error {
	if c.Name == "" {
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "category name is required")
	}
	if c.Type != models.CategoryTypeIncome && c.Type != models.CategoryTypeExpense {
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "category type must be income or expense")
	}
	if c.BudgetLimit < 0 {
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "budget limit cannot be negative")
	}
	if c.BudgetType == models.BudgetTypePercentage {
		if c.BudgetPercentage == nil || *c.BudgetPercentage <= 0 || *c.BudgetPercentage > 100 {
			return apperrors.WithMessage(apperrors.ErrInvalidInput, "percentage budgets need a budget percentage between 0 and 100")
		}
	}
	if c.BudgetRollingMonths < 1 || c.BudgetRollingMonths > maxRollingMonths {
		return apperrors.WithMessage(apperrors.ErrInvalidInput,
			fmt.Sprintf("budget rolling months must be between 1 and %d", maxRollingMonths))
	}

	// Overrides that are set must keep warning < over < critical.
	bounds := []*float64{c.WarningThreshold, c.OverThreshold, c.CriticalThreshold}
	prev := 0.0
	for _, b := range bounds {
		if b == nil {
			continue
		}
		if *b <= prev {
			return apperrors.WithMessage(apperrors.ErrInvalidInput, "thresholds must be positive and increase from warning to over to critical")
		}
		prev = *b
	}
	return nil
}
