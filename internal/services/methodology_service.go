package services

import (
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"

	"budgetwise/internal/engine"
	apperrors "budgetwise/internal/errors"
	"budgetwise/internal/logger"
	"budgetwise/internal/models"
)

// methodologyService stores methodologies and runs allocations against the
// current categories, incomes and spending history.
type methodologyService struct {
	db            *gorm.DB
	budgetService BudgetServicer
	settings      engine.Settings
}

// NewMethodologyService creates a new MethodologyServicer.
func NewMethodologyService(db *gorm.DB, budgetService BudgetServicer, settings engine.Settings) MethodologyServicer {
	return &methodologyService{
		db:            db,
		budgetService: budgetService,
		settings:      settings.Normalize(),
	}
}

func (s *methodologyService) GetMethodologies() ([]models.BudgetMethodology, error) {
	var methodologies []models.BudgetMethodology
	if err := s.db.Order("created_at ASC").Find(&methodologies).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return methodologies, nil
}

func (s *methodologyService) GetMethodologyByID(methodologyID string) (*models.BudgetMethodology, error) {
	var m models.BudgetMethodology
	if err := s.db.Where("id = ?", methodologyID).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrMethodologyNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &m, nil
}

// GetActiveMethodology returns the single active methodology.
func (s *methodologyService) GetActiveMethodology() (*models.BudgetMethodology, error) {
	var m models.BudgetMethodology
	if err := s.db.Where("is_active = ?", true).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNoActiveMethodology
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &m, nil
}

// CreateMethodology stores a new, inactive methodology after validating its
// configuration.
func (s *methodologyService) CreateMethodology(in MethodologyInput) (*models.BudgetMethodology, error) {
	m := &models.BudgetMethodology{}
	applyMethodologyInput(m, in)
	if err := s.validate(m, ""); err != nil {
		return nil, err
	}

	if err := s.db.Create(m).Error; err != nil {
		if isUniqueConstraintError(err) {
			return nil, apperrors.ErrDuplicateMethodology
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return m, nil
}

// UpdateMethodology merges in over the stored methodology. An invalid result
// leaves the stored row untouched.
func (s *methodologyService) UpdateMethodology(methodologyID string, in MethodologyInput) (*models.BudgetMethodology, error) {
	m, err := s.GetMethodologyByID(methodologyID)
	if err != nil {
		return nil, err
	}

	updated := *m
	applyMethodologyInput(&updated, in)
	if err := s.validate(&updated, methodologyID); err != nil {
		return nil, err
	}

	if err := s.db.Save(&updated).Error; err != nil {
		if isUniqueConstraintError(err) {
			return nil, apperrors.ErrDuplicateMethodology
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &updated, nil
}

func (s *methodologyService) DeleteMethodology(methodologyID string) error {
	m, err := s.GetMethodologyByID(methodologyID)
	if err != nil {
		return err
	}
	if m.IsActive {
		return apperrors.ErrMethodologyActive
	}
	if err := s.db.Delete(m).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}

// ActivateMethodology makes methodologyID the only active methodology. Both
// writes happen in one database transaction.
func (s *methodologyService) ActivateMethodology(methodologyID string) (*models.BudgetMethodology, error) {
	var activated models.BudgetMethodology
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ?", methodologyID).First(&activated).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.ErrMethodologyNotFound
			}
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		if err := tx.Model(&models.BudgetMethodology{}).
			Where("is_active = ? AND id <> ?", true, methodologyID).
			Update("is_active", false).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		if err := tx.Model(&activated).Update("is_active", true).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	activated.IsActive = true
	return &activated, nil
}

func (s *methodologyService) ValidateMethodology(methodologyID string) (*engine.ValidationResult, error) {
	m, err := s.GetMethodologyByID(methodologyID)
	if err != nil {
		return nil, err
	}
	result := engine.ValidateMethodology(engine.MethodologyOf(*m))
	return &result, nil
}

// Calculate allocates under the methodology without persisting anything.
func (s *methodologyService) Calculate(methodologyID string, req CalculateRequest) (*engine.AllocationPlan, error) {
	m, err := s.GetMethodologyByID(methodologyID)
	if err != nil {
		return nil, err
	}
	return s.calculate(*m, req)
}

func (s *methodologyService) CalculateActive(req CalculateRequest) (*engine.AllocationPlan, error) {
	m, err := s.GetActiveMethodology()
	if err != nil {
		return nil, err
	}
	return s.calculate(*m, req)
}

// Allocate runs the active methodology, or when methodologyType is given the
// stored methodology of that type (active first, then defaults). A type with
// no stored methodology runs with the request's configuration alone.
func (s *methodologyService) Allocate(methodologyType *models.MethodologyType, req CalculateRequest) (*engine.AllocationPlan, error) {
	if methodologyType == nil {
		return s.CalculateActive(req)
	}
	if !methodologyType.Valid() {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "unknown methodology type")
	}

	var m models.BudgetMethodology
	err := s.db.Where("methodology_type = ?", *methodologyType).
		Order("is_active DESC, is_default DESC, created_at ASC").
		First(&m).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		m = models.BudgetMethodology{MethodologyType: *methodologyType}
	case err != nil:
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return s.calculate(m, req)
}

// Apply calculates a plan and, when updateLimits is set, writes each
// category's allocation back as its budget limit.
func (s *methodologyService) Apply(methodologyID string, req CalculateRequest, updateLimits bool) (*ApplyResult, error) {
	plan, err := s.Calculate(methodologyID, req)
	if err != nil {
		return nil, err
	}
	result := &ApplyResult{Plan: plan, AutoUpdated: updateLimits}
	if !updateLimits {
		return result, nil
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		for _, a := range plan.Allocations {
			res := tx.Model(&models.Category{}).
				Where("id = ? AND budget_limit <> ?", a.CategoryID, a.Allocated).
				Update("budget_limit", a.Allocated)
			if res.Error != nil {
				return apperrors.Wrap(apperrors.ErrInternalServer, res.Error)
			}
			result.UpdatedCategories += int(res.RowsAffected)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Get().Infow("applied methodology to category limits",
		"methodology_id", methodologyID,
		"updated_categories", result.UpdatedCategories,
	)
	return result, nil
}

// Compare allocates the same snapshot under each requested methodology, or
// every stored one when ids is empty. Nothing is written.
func (s *methodologyService) Compare(methodologyIDs []string, req CalculateRequest) ([]engine.ComparisonResult, error) {
	all, err := s.GetMethodologies()
	if err != nil {
		return nil, err
	}
	selected := all
	if len(methodologyIDs) > 0 {
		selected = make([]models.BudgetMethodology, 0, len(methodologyIDs))
		for _, id := range methodologyIDs {
			m, err := engine.FindMethodology(all, id)
			if err != nil {
				return nil, err
			}
			selected = append(selected, m)
		}
	}
	for i := range selected {
		selected[i].Configuration = selected[i].Configuration.Merge(req.Configuration)
	}

	income, categories, history, err := s.inputs(req)
	if err != nil {
		return nil, err
	}
	return engine.Compare(income, categories, selected, history)
}

// Recommend profiles current spending against income and ranks the
// methodology types.
func (s *methodologyService) Recommend(ref time.Time) (*MethodologyRecommendations, error) {
	report, err := s.budgetService.GetProgress(ProgressQuery{Ref: ref})
	if err != nil {
		return nil, err
	}
	var incomes []models.Income
	if err := s.db.Find(&incomes).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	profile := engine.BuildProfile(engine.MonthlyIncome(incomes), report.Records)
	return &MethodologyRecommendations{
		Profile:         profile,
		Recommendations: engine.RankMethodologies(profile, s.settings),
	}, nil
}

// SeedDefaults inserts the default catalog into an empty store and returns
// how many methodologies were created.
func (s *methodologyService) SeedDefaults() (int, error) {
	created := 0
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.BudgetMethodology{}).Count(&count).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		if count > 0 {
			return nil
		}
		defaults := engine.DefaultMethodologies()
		if err := tx.Create(&defaults).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		created = len(defaults)
		return nil
	})
	if err != nil {
		return 0, err
	}
	if created > 0 {
		logger.Get().Infow("seeded default budget methodologies", "count", created)
	}
	return created, nil
}

func (s *methodologyService) calculate(m models.BudgetMethodology, req CalculateRequest) (*engine.AllocationPlan, error) {
	income, categories, history, err := s.inputs(req)
	if err != nil {
		return nil, err
	}
	method := engine.MethodologyOf(m)
	method.Config = method.Config.Merge(req.Configuration)
	return engine.Allocate(income, categories, method, history)
}

// inputs loads the categories, spending history and monthly income an
// allocation runs over. A request income overrides the stored sources.
func (s *methodologyService) inputs(req CalculateRequest) (float64, []models.Category, engine.SpendingHistory, error) {
	ref := req.Ref
	if ref.IsZero() {
		ref = time.Now()
	}
	from, to := snapshotWindow(ref)
	snap, err := loadSnapshot(s.db, from, to)
	if err != nil {
		return 0, nil, engine.SpendingHistory{}, err
	}

	income := engine.MonthlyIncome(snap.incomes)
	if req.Income != nil {
		income = *req.Income
	}
	history := engine.BuildSpendingHistory(snap.categories, snap.transactions, ref, s.settings.HistoryMonths)
	return income, snap.categories, history, nil
}

func (s *methodologyService) validate(m *models.BudgetMethodology, exceptID string) error {
	if m.Name == "" {
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "methodology name is required")
	}
	if !m.MethodologyType.Valid() {
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "methodology type must be zero_based, percentage_based or envelope")
	}
	if err := engine.ValidateConfig(engine.MethodologyOf(*m)); err != nil {
		return err
	}

	q := s.db.Model(&models.BudgetMethodology{}).Where("LOWER(name) = LOWER(?)", m.Name)
	if exceptID != "" {
		q = q.Where("id <> ?", exceptID)
	}
	var count int64
	if err := q.Count(&count).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if count > 0 {
		return apperrors.ErrDuplicateMethodology
	}
	return nil
}

func applyMethodologyInput(m *models.BudgetMethodology, in MethodologyInput) {
	if name := strings.TrimSpace(in.Name); name != "" {
		m.Name = name
	}
	if in.Description != nil {
		m.Description = *in.Description
	}
	if in.MethodologyType != "" {
		m.MethodologyType = in.MethodologyType
	}
	if in.Configuration != nil {
		m.Configuration = *in.Configuration
	}
	if in.IsDefault != nil {
		m.IsDefault = *in.IsDefault
	}
}
