package services

import (
	"errors"
	"math"
	"strings"

	"gorm.io/gorm"

	"budgetwise/internal/engine"
	apperrors "budgetwise/internal/errors"
	"budgetwise/internal/models"
	"budgetwise/internal/pagination"
)

type incomeService struct {
	db *gorm.DB
}

// NewIncomeService creates a new IncomeServicer.
func NewIncomeService(db *gorm.DB) IncomeServicer {
	return &incomeService{db: db}
}

func (s *incomeService) CreateIncome(in IncomeInput) (*models.Income, error) {
	income := &models.Income{
		IncomeType: "salary",
		Frequency:  models.IncomeFrequencyMonthly,
	}
	applyIncomeInput(income, in)
	if in.Amount == nil {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "amount is required")
	}
	if err := validateIncome(income); err != nil {
		return nil, err
	}

	if err := s.db.Create(income).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return income, nil
}

func (s *incomeService) GetIncomes(page pagination.PageRequest) (*pagination.PageResponse[models.Income], error) {
	page.Defaults()

	base := s.db.Model(&models.Income{})
	var totalItems int64
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var incomes []models.Income
	if err := base.Order("created_at ASC").Scopes(pagination.Paginate(page)).Find(&incomes).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(incomes, page.Page, page.PageSize, totalItems)
	return &result, nil
}

func (s *incomeService) GetIncomeByID(incomeID string) (*models.Income, error) {
	var income models.Income
	if err := s.db.Where("id = ?", incomeID).First(&income).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrIncomeNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &income, nil
}

func (s *incomeService) UpdateIncome(incomeID string, in IncomeInput) (*models.Income, error) {
	income, err := s.GetIncomeByID(incomeID)
	if err != nil {
		return nil, err
	}

	updated := *income
	applyIncomeInput(&updated, in)
	if err := validateIncome(&updated); err != nil {
		return nil, err
	}
	if err := s.db.Save(&updated).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &updated, nil
}

func (s *incomeService) DeleteIncome(incomeID string) error {
	income, err := s.GetIncomeByID(incomeID)
	if err != nil {
		return err
	}
	if err := s.db.Delete(income).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}

// GetIncomeSummary normalizes every income source to a monthly amount.
func (s *incomeService) GetIncomeSummary() (*engine.IncomeSummary, error) {
	var incomes []models.Income
	if err := s.db.Find(&incomes).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	summary := engine.SummarizeIncome(incomes)
	return &summary, nil
}

func applyIncomeInput(income *models.Income, in IncomeInput) {
	if in.Amount != nil {
		income.Amount = *in.Amount
	}
	if t := strings.TrimSpace(in.IncomeType); t != "" {
		income.IncomeType = t
	}
	if in.Frequency != "" {
		income.Frequency = in.Frequency
	}
	if name := strings.TrimSpace(in.SourceName); name != "" {
		income.SourceName = name
	}
	if in.IsBonus != nil {
		income.IsBonus = *in.IsBonus
	}
	if in.Notes != nil {
		income.Notes = *in.Notes
	}
}

func validateIncome(income *models.Income) error {
	if income.Amount <= 0 || math.IsNaN(income.Amount) || math.IsInf(income.Amount, 0) {
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "income amount must be greater than zero")
	}
	if income.SourceName == "" {
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "source name is required")
	}
	switch income.Frequency {
	case models.IncomeFrequencyWeekly, models.IncomeFrequencyBiweekly,
		models.IncomeFrequencyMonthly, models.IncomeFrequencyAnnually:
	default:
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "frequency must be weekly, biweekly, monthly or annually")
	}
	return nil
}
