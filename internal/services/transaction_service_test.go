package services

import (
	"testing"
	"time"

	"budgetwise/internal/models"
	"budgetwise/internal/pagination"
	"budgetwise/internal/testutil"
)

func TestCreateTransaction(t *testing.T) {
	t.Run("valid_expense", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewTransactionService(db, NewCategoryService(db))
		cat := testutil.CreateTestCategory(t, db, 400)

		date := time.Date(2024, 9, 10, 12, 0, 0, 0, time.UTC)
		tx, err := svc.CreateTransaction(cat.ID, models.TransactionTypeExpense, 42.5, "Weekly shop", date)
		testutil.AssertNoError(t, err)

		if tx.ID == "" {
			t.Fatal("expected transaction ID to be set")
		}
		if tx.Amount != 42.5 {
			t.Errorf("expected amount 42.5, got %v", tx.Amount)
		}
		if !tx.Date.Equal(date) {
			t.Errorf("expected date %v, got %v", date, tx.Date)
		}
		if tx.Category == nil || tx.Category.ID != cat.ID {
			t.Error("expected category to be attached")
		}
	})

	t.Run("signed_amount_kept", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewTransactionService(db, NewCategoryService(db))
		cat := testutil.CreateTestCategory(t, db, 400)

		tx, err := svc.CreateTransaction(cat.ID, models.TransactionTypeExpense, -20, "", time.Now())
		testutil.AssertNoError(t, err)
		if tx.Amount != -20 || tx.AbsoluteAmount() != 20 {
			t.Errorf("expected signed amount -20 with absolute 20, got %v", tx.Amount)
		}
	})

	t.Run("zero_amount", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewTransactionService(db, NewCategoryService(db))
		cat := testutil.CreateTestCategory(t, db, 400)

		_, err := svc.CreateTransaction(cat.ID, models.TransactionTypeExpense, 0, "", time.Now())
		testutil.AssertAppError(t, err, "INVALID_INPUT")
	})

	t.Run("type_mismatch", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewTransactionService(db, NewCategoryService(db))
		cat := testutil.CreateTestCategory(t, db, 400)

		_, err := svc.CreateTransaction(cat.ID, models.TransactionTypeIncome, 100, "", time.Now())
		testutil.AssertAppError(t, err, "TRANSACTION_TYPE_MISMATCH")
	})

	t.Run("unknown_category", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewTransactionService(db, NewCategoryService(db))

		_, err := svc.CreateTransaction("00000000-0000-0000-0000-000000000000", models.TransactionTypeExpense, 10, "", time.Now())
		testutil.AssertAppError(t, err, "CATEGORY_NOT_FOUND")
	})

	t.Run("zero_date_defaults_to_now", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewTransactionService(db, NewCategoryService(db))
		cat := testutil.CreateTestCategory(t, db, 400)

		before := time.Now().Add(-time.Second)
		tx, err := svc.CreateTransaction(cat.ID, models.TransactionTypeExpense, 10, "", time.Time{})
		testutil.AssertNoError(t, err)
		if tx.Date.Before(before) {
			t.Errorf("expected date close to now, got %v", tx.Date)
		}
	})
}

func TestGetTransactions(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	svc := NewTransactionService(db, NewCategoryService(db))

	food := testutil.CreateTestCategory(t, db, 400)
	fuel := testutil.CreateTestCategory(t, db, 200)
	testutil.CreateTestTransaction(t, db, food.ID, 10, time.Date(2024, 9, 1, 0, 0, 0, 0, time.UTC))
	testutil.CreateTestTransaction(t, db, food.ID, 20, time.Date(2024, 9, 15, 0, 0, 0, 0, time.UTC))
	testutil.CreateTestTransaction(t, db, fuel.ID, 30, time.Date(2024, 9, 20, 0, 0, 0, 0, time.UTC))

	t.Run("newest_first", func(t *testing.T) {
		result, err := svc.GetTransactions(pagination.PageRequest{}, TransactionFilter{})
		testutil.AssertNoError(t, err)
		if result.TotalItems != 3 {
			t.Fatalf("expected 3 transactions, got %d", result.TotalItems)
		}
		if result.Data[0].Amount != 30 {
			t.Errorf("expected newest transaction first, got amount %v", result.Data[0].Amount)
		}
	})

	t.Run("category_filter", func(t *testing.T) {
		result, err := svc.GetTransactions(pagination.PageRequest{}, TransactionFilter{CategoryID: &food.ID})
		testutil.AssertNoError(t, err)
		if result.TotalItems != 2 {
			t.Errorf("expected 2 food transactions, got %d", result.TotalItems)
		}
	})

	t.Run("date_range", func(t *testing.T) {
		from := time.Date(2024, 9, 10, 0, 0, 0, 0, time.UTC)
		to := time.Date(2024, 9, 16, 0, 0, 0, 0, time.UTC)
		result, err := svc.GetTransactions(pagination.PageRequest{}, TransactionFilter{FromDate: &from, ToDate: &to})
		testutil.AssertNoError(t, err)
		if result.TotalItems != 1 || result.Data[0].Amount != 20 {
			t.Errorf("expected only the 9/15 transaction, got %+v", result.Data)
		}
	})

	t.Run("type_filter", func(t *testing.T) {
		income := models.TransactionTypeIncome
		result, err := svc.GetTransactions(pagination.PageRequest{}, TransactionFilter{Type: &income})
		testutil.AssertNoError(t, err)
		if result.TotalItems != 0 {
			t.Errorf("expected no income transactions, got %d", result.TotalItems)
		}
	})
}

func TestDeleteTransaction(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	svc := NewTransactionService(db, NewCategoryService(db))
	cat := testutil.CreateTestCategory(t, db, 400)
	tx := testutil.CreateTestTransaction(t, db, cat.ID, 10, time.Now())

	testutil.AssertNoError(t, svc.DeleteTransaction(tx.ID))

	_, err := svc.GetTransactionByID(tx.ID)
	testutil.AssertAppError(t, err, "TRANSACTION_NOT_FOUND")

	err = svc.DeleteTransaction(tx.ID)
	testutil.AssertAppError(t, err, "TRANSACTION_NOT_FOUND")
}
