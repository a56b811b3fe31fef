package models

// IncomeFrequency is how often an income source pays out
type IncomeFrequency string

const (
	IncomeFrequencyWeekly   IncomeFrequency = "weekly"
	IncomeFrequencyBiweekly IncomeFrequency = "biweekly"
	IncomeFrequencyMonthly  IncomeFrequency = "monthly"
	IncomeFrequencyAnnually IncomeFrequency = "annually"
)

// Income represents a declared income source
type Income struct {
	Base
	Amount     float64         `gorm:"not null" json:"amount"`
	IncomeType string          `gorm:"not null;default:salary" json:"income_type"`
	Frequency  IncomeFrequency `gorm:"not null;default:monthly" json:"frequency"`
	SourceName string          `gorm:"not null" json:"source_name"`
	IsBonus    bool            `gorm:"not null;default:false" json:"is_bonus"`
	Notes      string          `json:"notes,omitempty"`
}
