package models

import (
	"math"
	"time"
)

// TransactionType represents the type of transaction
type TransactionType string

const (
	TransactionTypeIncome  TransactionType = "income"
	TransactionTypeExpense TransactionType = "expense"
)

// Transaction represents a financial transaction. Amount may be signed; the
// derived views below are computed on read and never stored.
type Transaction struct {
	Base
	CategoryID  string          `gorm:"type:uuid;not null;index" json:"category_id"`
	Type        TransactionType `gorm:"not null" json:"type"`
	Amount      float64         `gorm:"not null" json:"amount"`
	Description string          `json:"description"`
	Date        time.Time       `gorm:"not null;index" json:"date"`

	// Relationships
	Category *Category `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
}

// IsIncome reports whether the transaction is income.
func (t *Transaction) IsIncome() bool {
	return t.Type == TransactionTypeIncome
}

// IsExpense reports whether the transaction is spending.
func (t *Transaction) IsExpense() bool {
	return t.Type == TransactionTypeExpense
}

// AbsoluteAmount returns the unsigned amount.
func (t *Transaction) AbsoluteAmount() float64 {
	return math.Abs(t.Amount)
}
