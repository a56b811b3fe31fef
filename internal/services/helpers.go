package services

import (
	"strings"
	"time"

	"gorm.io/gorm"

	apperrors "budgetwise/internal/errors"
	"budgetwise/internal/models"
)

// isUniqueConstraintError checks if a GORM error is a unique constraint violation.
func isUniqueConstraintError(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") || // SQLite
		strings.Contains(msg, "duplicate key value violates unique constraint") // PostgreSQL
}

// snapshot is the stored data the engine computes over.
type snapshot struct {
	categories   []models.Category
	transactions []models.Transaction
	incomes      []models.Income
}

// loadSnapshot reads all categories and incomes plus the transactions dated
// in [from, to).
func loadSnapshot(db *gorm.DB, from, to time.Time) (*snapshot, error) {
	snap := &snapshot{}
	if err := db.Order("name ASC").Find(&snap.categories).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if err := db.Find(&snap.incomes).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if err := db.Where("date >= ? AND date < ?", from.UTC(), to.UTC()).
		Order("date ASC").
		Find(&snap.transactions).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return snap, nil
}

// snapshotWindow spans every period and history window anchored at ref:
// rolling averages reach back at most maxRollingMonths and yearly periods end
// within a year.
func snapshotWindow(ref time.Time) (time.Time, time.Time) {
	return ref.AddDate(0, -(maxRollingMonths + 1), 0), ref.AddDate(1, 0, 1)
}
