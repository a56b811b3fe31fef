package handlers

import (
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	apperrors "budgetwise/internal/errors"
	"budgetwise/internal/models"
	"budgetwise/internal/pagination"
	"budgetwise/internal/services"
)

// --- mock transaction service ---

type mockTransactionService struct {
	createTransactionFn  func(categoryID string, transactionType models.TransactionType, amount float64, description string, date time.Time) (*models.Transaction, error)
	getTransactionsFn    func(page pagination.PageRequest, filter services.TransactionFilter) (*pagination.PageResponse[models.Transaction], error)
	getTransactionByIDFn func(transactionID string) (*models.Transaction, error)
	deleteTransactionFn  func(transactionID string) error
}

func (m *mockTransactionService) CreateTransaction(categoryID string, transactionType models.TransactionType, amount float64, description string, date time.Time) (*models.Transaction, error) {
	if m.createTransactionFn != nil {
		return m.createTransactionFn(categoryID, transactionType, amount, description, date)
	}
	return &models.Transaction{}, nil
}

func (m *mockTransactionService) GetTransactions(page pagination.PageRequest, filter services.TransactionFilter) (*pagination.PageResponse[models.Transaction], error) {
	if m.getTransactionsFn != nil {
		return m.getTransactionsFn(page, filter)
	}
	resp := pagination.NewPageResponse([]models.Transaction{}, 1, 20, 0)
	return &resp, nil
}

func (m *mockTransactionService) GetTransactionByID(transactionID string) (*models.Transaction, error) {
	if m.getTransactionByIDFn != nil {
		return m.getTransactionByIDFn(transactionID)
	}
	return &models.Transaction{}, nil
}

func (m *mockTransactionService) DeleteTransaction(transactionID string) error {
	if m.deleteTransactionFn != nil {
		return m.deleteTransactionFn(transactionID)
	}
	return nil
}

var _ services.TransactionServicer = (*mockTransactionService)(nil)

func setupTransactionRouter(handler *TransactionHandler) *gin.Engine {
	r := gin.New()
	r.POST("/transactions", handler.CreateTransaction)
	r.GET("/transactions", handler.GetTransactions)
	r.GET("/transactions/:id", handler.GetTransaction)
	r.DELETE("/transactions/:id", handler.DeleteTransaction)
	return r
}

func TestTransactionHandler_CreateTransaction(t *testing.T) {
	loc := time.FixedZone("UTC+8", 8*3600)

	t.Run("returns 201 and reads date-only in the configured zone", func(t *testing.T) {
		var capturedDate time.Time
		var capturedAmount float64
		txnSvc := &mockTransactionService{
			createTransactionFn: func(categoryID string, typ models.TransactionType, amount float64, desc string, date time.Time) (*models.Transaction, error) {
				capturedDate = date
				capturedAmount = amount
				return &models.Transaction{Base: models.Base{ID: testID}, CategoryID: categoryID, Type: typ, Amount: amount, Date: date}, nil
			},
		}
		r := setupTransactionRouter(NewTransactionHandler(txnSvc, &mockAuditService{}, loc))

		rec := doRequest(r, "POST", "/transactions",
			`{"category_id":"`+testID+`","type":"expense","amount":-42.5,"description":"refund","date":"2024-09-10"}`)

		if rec.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
		}
		want := time.Date(2024, 9, 10, 0, 0, 0, 0, loc)
		if !capturedDate.Equal(want) {
			t.Errorf("expected %v, got %v", want, capturedDate)
		}
		if capturedAmount != -42.5 {
			t.Errorf("expected signed amount to be kept, got %v", capturedAmount)
		}
	})

	t.Run("missing date passes zero time", func(t *testing.T) {
		var capturedDate time.Time
		txnSvc := &mockTransactionService{
			createTransactionFn: func(_ string, _ models.TransactionType, _ float64, _ string, date time.Time) (*models.Transaction, error) {
				capturedDate = date
				return &models.Transaction{Base: models.Base{ID: testID}}, nil
			},
		}
		r := setupTransactionRouter(NewTransactionHandler(txnSvc, &mockAuditService{}, nil))

		rec := doRequest(r, "POST", "/transactions", `{"category_id":"`+testID+`","type":"income","amount":10}`)

		if rec.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d", rec.Code)
		}
		if !capturedDate.IsZero() {
			t.Errorf("expected zero date, got %v", capturedDate)
		}
	})

	tests := []struct {
		name string
		body string
	}{
		{"zero amount", `{"category_id":"` + testID + `","type":"expense","amount":0}`},
		{"invalid type", `{"category_id":"` + testID + `","type":"transfer","amount":5}`},
		{"invalid category id", `{"category_id":"abc","type":"expense","amount":5}`},
		{"invalid date", `{"category_id":"` + testID + `","type":"expense","amount":5,"date":"10/09/2024"}`},
	}
	for _, tt := range tests {
		t.Run("returns 400 on "+tt.name, func(t *testing.T) {
			r := setupTransactionRouter(NewTransactionHandler(&mockTransactionService{}, &mockAuditService{}, nil))

			rec := doRequest(r, "POST", "/transactions", tt.body)

			if rec.Code != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d: %s", rec.Code, rec.Body.String())
			}
			assertErrorCode(t, parseJSON(t, rec), "INVALID_INPUT")
		})
	}

	t.Run("returns 400 on type mismatch", func(t *testing.T) {
		txnSvc := &mockTransactionService{
			createTransactionFn: func(string, models.TransactionType, float64, string, time.Time) (*models.Transaction, error) {
				return nil, apperrors.ErrTransactionTypeMismatch
			},
		}
		r := setupTransactionRouter(NewTransactionHandler(txnSvc, &mockAuditService{}, nil))

		rec := doRequest(r, "POST", "/transactions", `{"category_id":"`+testID+`","type":"income","amount":5}`)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "TRANSACTION_TYPE_MISMATCH")
	})
}

func TestTransactionHandler_GetTransactions(t *testing.T) {
	t.Run("parses filters", func(t *testing.T) {
		var captured services.TransactionFilter
		var capturedPage pagination.PageRequest
		txnSvc := &mockTransactionService{
			getTransactionsFn: func(page pagination.PageRequest, filter services.TransactionFilter) (*pagination.PageResponse[models.Transaction], error) {
				captured = filter
				capturedPage = page
				resp := pagination.NewPageResponse([]models.Transaction{}, 2, 10, 0)
				return &resp, nil
			},
		}
		r := setupTransactionRouter(NewTransactionHandler(txnSvc, &mockAuditService{}, time.UTC))

		rec := doRequest(r, "GET",
			"/transactions?from_date=2024-09-01&to_date=2024-10-01T00:00:00Z&type=expense&category_id="+testID+"&page=2&page_size=10", "")

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		if captured.FromDate == nil || !captured.FromDate.Equal(time.Date(2024, 9, 1, 0, 0, 0, 0, time.UTC)) {
			t.Errorf("unexpected from date %v", captured.FromDate)
		}
		if captured.ToDate == nil || !captured.ToDate.Equal(time.Date(2024, 10, 1, 0, 0, 0, 0, time.UTC)) {
			t.Errorf("unexpected to date %v", captured.ToDate)
		}
		if captured.Type == nil || *captured.Type != models.TransactionTypeExpense {
			t.Errorf("expected expense filter, got %v", captured.Type)
		}
		if captured.CategoryID == nil || *captured.CategoryID != testID {
			t.Errorf("expected category filter, got %v", captured.CategoryID)
		}
		if capturedPage.Page != 2 || capturedPage.PageSize != 10 {
			t.Errorf("unexpected page %+v", capturedPage)
		}
	})

	t.Run("no filters", func(t *testing.T) {
		var captured services.TransactionFilter
		txnSvc := &mockTransactionService{
			getTransactionsFn: func(_ pagination.PageRequest, filter services.TransactionFilter) (*pagination.PageResponse[models.Transaction], error) {
				captured = filter
				resp := pagination.NewPageResponse([]models.Transaction{}, 1, 20, 0)
				return &resp, nil
			},
		}
		r := setupTransactionRouter(NewTransactionHandler(txnSvc, &mockAuditService{}, nil))

		rec := doRequest(r, "GET", "/transactions", "")

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		if captured.FromDate != nil || captured.ToDate != nil || captured.Type != nil || captured.CategoryID != nil {
			t.Errorf("expected empty filter, got %+v", captured)
		}
	})

	t.Run("returns 400 on bad date", func(t *testing.T) {
		r := setupTransactionRouter(NewTransactionHandler(&mockTransactionService{}, &mockAuditService{}, nil))

		rec := doRequest(r, "GET", "/transactions?from_date=yesterday", "")

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})

	t.Run("returns 400 on bad type", func(t *testing.T) {
		r := setupTransactionRouter(NewTransactionHandler(&mockTransactionService{}, &mockAuditService{}, nil))

		rec := doRequest(r, "GET", "/transactions?type=transfer", "")

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})
}

func TestTransactionHandler_GetAndDelete(t *testing.T) {
	t.Run("get returns 404 when not found", func(t *testing.T) {
		txnSvc := &mockTransactionService{
			getTransactionByIDFn: func(string) (*models.Transaction, error) {
				return nil, apperrors.ErrTransactionNotFound
			},
		}
		r := setupTransactionRouter(NewTransactionHandler(txnSvc, &mockAuditService{}, nil))

		rec := doRequest(r, "GET", "/transactions/"+missingID, "")

		if rec.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "TRANSACTION_NOT_FOUND")
	})

	t.Run("get returns the transaction", func(t *testing.T) {
		txnSvc := &mockTransactionService{
			getTransactionByIDFn: func(id string) (*models.Transaction, error) {
				return &models.Transaction{Base: models.Base{ID: id}, Amount: 12}, nil
			},
		}
		r := setupTransactionRouter(NewTransactionHandler(txnSvc, &mockAuditService{}, nil))

		rec := doRequest(r, "GET", "/transactions/"+testID, "")

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		txn := parseJSON(t, rec)["transaction"].(map[string]interface{})
		if txn["amount"] != 12.0 {
			t.Errorf("expected amount 12, got %v", txn["amount"])
		}
	})

	t.Run("delete audits", func(t *testing.T) {
		var deleted string
		txnSvc := &mockTransactionService{
			deleteTransactionFn: func(id string) error {
				deleted = id
				return nil
			},
		}
		audit := &mockAuditService{}
		r := setupTransactionRouter(NewTransactionHandler(txnSvc, audit, nil))

		rec := doRequest(r, "DELETE", "/transactions/"+testID, "")

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		if deleted != testID {
			t.Errorf("expected %s deleted, got %s", testID, deleted)
		}
		if len(audit.entries) != 1 || audit.entries[0].action != "DELETE_TRANSACTION" {
			t.Errorf("expected DELETE_TRANSACTION audit entry, got %+v", audit.entries)
		}
	})
}
