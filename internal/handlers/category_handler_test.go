package handlers

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"

	apperrors "budgetwise/internal/errors"
	"budgetwise/internal/models"
	"budgetwise/internal/pagination"
	"budgetwise/internal/services"
)

// --- mock category service ---

type mockCategoryService struct {
	createCategoryFn  func(in services.CategoryInput) (*models.Category, error)
	getCategoriesFn   func(page pagination.PageRequest, categoryType *models.CategoryType) (*pagination.PageResponse[models.Category], error)
	getCategoryByIDFn func(categoryID string) (*models.Category, error)
	updateCategoryFn  func(categoryID string, in services.CategoryInput) (*models.Category, error)
	deleteCategoryFn  func(categoryID string) error
}

func (m *mockCategoryService) CreateCategory(in services.CategoryInput) (*models.Category, error) {
	if m.createCategoryFn != nil {
		return m.createCategoryFn(in)
	}
	return &models.Category{}, nil
}

func (m *mockCategoryService) GetCategories(page pagination.PageRequest, categoryType *models.CategoryType) (*pagination.PageResponse[models.Category], error) {
	if m.getCategoriesFn != nil {
		return m.getCategoriesFn(page, categoryType)
	}
	resp := pagination.NewPageResponse([]models.Category{}, 1, 20, 0)
	return &resp, nil
}

func (m *mockCategoryService) GetCategoryByID(categoryID string) (*models.Category, error) {
	if m.getCategoryByIDFn != nil {
		return m.getCategoryByIDFn(categoryID)
	}
	return &models.Category{}, nil
}

func (m *mockCategoryService) UpdateCategory(categoryID string, in services.CategoryInput) (*models.Category, error) {
	if m.updateCategoryFn != nil {
		return m.updateCategoryFn(categoryID, in)
	}
	return &models.Category{}, nil
}

func (m *mockCategoryService) DeleteCategory(categoryID string) error {
	if m.deleteCategoryFn != nil {
		return m.deleteCategoryFn(categoryID)
	}
	return nil
}

var _ services.CategoryServicer = (*mockCategoryService)(nil)

func setupCategoryRouter(handler *CategoryHandler) *gin.Engine {
	r := gin.New()
	r.POST("/categories", handler.CreateCategory)
	r.GET("/categories", handler.GetCategories)
	r.GET("/categories/:id", handler.GetCategory)
	r.PUT("/categories/:id", handler.UpdateCategory)
	r.DELETE("/categories/:id", handler.DeleteCategory)
	return r
}

func TestCategoryHandler_CreateCategory(t *testing.T) {
	t.Run("returns 201 on success", func(t *testing.T) {
		var captured services.CategoryInput
		catSvc := &mockCategoryService{
			createCategoryFn: func(in services.CategoryInput) (*models.Category, error) {
				captured = in
				return &models.Category{Base: models.Base{ID: testID}, Name: in.Name, Type: in.Type}, nil
			},
		}
		audit := &mockAuditService{}
		r := setupCategoryRouter(NewCategoryHandler(catSvc, audit))

		rec := doRequest(r, "POST", "/categories",
			`{"name":"Groceries","type":"expense","color":"#00AA00","budget_limit":500,"budget_priority":"essential","budget_type":"fixed"}`)

		if rec.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
		}
		result := parseJSON(t, rec)
		cat := result["category"].(map[string]interface{})
		if cat["name"] != "Groceries" {
			t.Errorf("expected Groceries, got %v", cat["name"])
		}
		if captured.BudgetLimit == nil || *captured.BudgetLimit != 500 {
			t.Errorf("expected budget limit 500 passed through, got %v", captured.BudgetLimit)
		}
		if captured.BudgetPriority != models.BudgetPriorityEssential {
			t.Errorf("expected essential priority, got %s", captured.BudgetPriority)
		}
		if len(audit.entries) != 1 || audit.entries[0].action != "CREATE_CATEGORY" {
			t.Errorf("expected CREATE_CATEGORY audit entry, got %+v", audit.entries)
		}
	})

	tests := []struct {
		name string
		body string
	}{
		{"missing name", `{"type":"expense"}`},
		{"missing type", `{"name":"Food"}`},
		{"invalid type", `{"name":"Food","type":"invalid"}`},
		{"invalid color", `{"name":"Food","type":"expense","color":"red"}`},
		{"negative limit", `{"name":"Food","type":"expense","budget_limit":-5}`},
		{"invalid period", `{"name":"Food","type":"expense","budget_period":"hourly"}`},
		{"percentage over 100", `{"name":"Food","type":"expense","budget_type":"percentage","budget_percentage":120}`},
		{"rolling months over 24", `{"name":"Food","type":"expense","budget_rolling_months":30}`},
	}
	for _, tt := range tests {
		t.Run("returns 400 on "+tt.name, func(t *testing.T) {
			r := setupCategoryRouter(NewCategoryHandler(&mockCategoryService{}, &mockAuditService{}))

			rec := doRequest(r, "POST", "/categories", tt.body)

			if rec.Code != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d: %s", rec.Code, rec.Body.String())
			}
			assertErrorCode(t, parseJSON(t, rec), "INVALID_INPUT")
		})
	}

	t.Run("returns 409 on duplicate name", func(t *testing.T) {
		catSvc := &mockCategoryService{
			createCategoryFn: func(services.CategoryInput) (*models.Category, error) {
				return nil, apperrors.ErrDuplicateCategory
			},
		}
		r := setupCategoryRouter(NewCategoryHandler(catSvc, &mockAuditService{}))

		rec := doRequest(r, "POST", "/categories", `{"name":"Food","type":"expense"}`)

		if rec.Code != http.StatusConflict {
			t.Fatalf("expected 409, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "DUPLICATE_CATEGORY")
	})
}

func TestCategoryHandler_GetCategories(t *testing.T) {
	t.Run("returns 200 with all categories", func(t *testing.T) {
		catSvc := &mockCategoryService{
			getCategoriesFn: func(_ pagination.PageRequest, categoryType *models.CategoryType) (*pagination.PageResponse[models.Category], error) {
				if categoryType != nil {
					t.Errorf("expected no type filter, got %v", *categoryType)
				}
				resp := pagination.NewPageResponse([]models.Category{
					{Base: models.Base{ID: testID}, Name: "Food", Type: models.CategoryTypeExpense},
					{Base: models.Base{ID: missingID}, Name: "Salary", Type: models.CategoryTypeIncome},
				}, 1, 20, 2)
				return &resp, nil
			},
		}
		r := setupCategoryRouter(NewCategoryHandler(catSvc, &mockAuditService{}))

		rec := doRequest(r, "GET", "/categories", "")

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		data := parseJSON(t, rec)["data"].([]interface{})
		if len(data) != 2 {
			t.Errorf("expected 2 categories, got %d", len(data))
		}
	})

	t.Run("filters by type", func(t *testing.T) {
		var capturedType models.CategoryType
		catSvc := &mockCategoryService{
			getCategoriesFn: func(_ pagination.PageRequest, categoryType *models.CategoryType) (*pagination.PageResponse[models.Category], error) {
				capturedType = *categoryType
				resp := pagination.NewPageResponse([]models.Category{}, 1, 20, 0)
				return &resp, nil
			},
		}
		r := setupCategoryRouter(NewCategoryHandler(catSvc, &mockAuditService{}))

		rec := doRequest(r, "GET", "/categories?type=income", "")

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		if capturedType != models.CategoryTypeIncome {
			t.Errorf("expected income filter, got %s", capturedType)
		}
	})

	t.Run("returns 400 on invalid type filter", func(t *testing.T) {
		r := setupCategoryRouter(NewCategoryHandler(&mockCategoryService{}, &mockAuditService{}))

		rec := doRequest(r, "GET", "/categories?type=savings", "")

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})

	t.Run("returns 400 on page size over limit", func(t *testing.T) {
		r := setupCategoryRouter(NewCategoryHandler(&mockCategoryService{}, &mockAuditService{}))

		rec := doRequest(r, "GET", "/categories?page_size=500", "")

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})
}

func TestCategoryHandler_GetCategory(t *testing.T) {
	t.Run("returns 200", func(t *testing.T) {
		catSvc := &mockCategoryService{
			getCategoryByIDFn: func(id string) (*models.Category, error) {
				return &models.Category{Base: models.Base{ID: id}, Name: "Rent"}, nil
			},
		}
		r := setupCategoryRouter(NewCategoryHandler(catSvc, &mockAuditService{}))

		rec := doRequest(r, "GET", "/categories/"+testID, "")

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		cat := parseJSON(t, rec)["category"].(map[string]interface{})
		if cat["id"] != testID {
			t.Errorf("expected id %s, got %v", testID, cat["id"])
		}
	})

	t.Run("returns 400 on invalid id", func(t *testing.T) {
		r := setupCategoryRouter(NewCategoryHandler(&mockCategoryService{}, &mockAuditService{}))

		rec := doRequest(r, "GET", "/categories/abc", "")

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "INVALID_INPUT")
	})

	t.Run("returns 404 when not found", func(t *testing.T) {
		catSvc := &mockCategoryService{
			getCategoryByIDFn: func(string) (*models.Category, error) {
				return nil, apperrors.ErrCategoryNotFound
			},
		}
		r := setupCategoryRouter(NewCategoryHandler(catSvc, &mockAuditService{}))

		rec := doRequest(r, "GET", "/categories/"+missingID, "")

		if rec.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "CATEGORY_NOT_FOUND")
	})
}

func TestCategoryHandler_UpdateCategory(t *testing.T) {
	t.Run("passes partial fields through", func(t *testing.T) {
		var captured services.CategoryInput
		catSvc := &mockCategoryService{
			updateCategoryFn: func(id string, in services.CategoryInput) (*models.Category, error) {
				captured = in
				return &models.Category{Base: models.Base{ID: id}, Name: "Dining", BudgetLimit: 250}, nil
			},
		}
		audit := &mockAuditService{}
		r := setupCategoryRouter(NewCategoryHandler(catSvc, audit))

		rec := doRequest(r, "PUT", "/categories/"+testID, `{"budget_limit":250,"needs_review":true}`)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		if captured.Name != "" || captured.BudgetLimit == nil || *captured.BudgetLimit != 250 {
			t.Errorf("expected only the limit to change, got %+v", captured)
		}
		if captured.NeedsReview == nil || !*captured.NeedsReview {
			t.Error("expected needs_review to be passed")
		}
		if len(audit.entries) != 1 || audit.entries[0].resourceID != testID {
			t.Errorf("expected UPDATE_CATEGORY audit entry, got %+v", audit.entries)
		}
	})

	t.Run("returns 409 when type change is refused", func(t *testing.T) {
		catSvc := &mockCategoryService{
			updateCategoryFn: func(string, services.CategoryInput) (*models.Category, error) {
				return nil, apperrors.ErrCategoryInUse
			},
		}
		r := setupCategoryRouter(NewCategoryHandler(catSvc, &mockAuditService{}))

		rec := doRequest(r, "PUT", "/categories/"+testID, `{"type":"income"}`)

		if rec.Code != http.StatusConflict {
			t.Fatalf("expected 409, got %d", rec.Code)
		}
	})
}

func TestCategoryHandler_DeleteCategory(t *testing.T) {
	t.Run("returns 200 on success", func(t *testing.T) {
		audit := &mockAuditService{}
		r := setupCategoryRouter(NewCategoryHandler(&mockCategoryService{}, audit))

		rec := doRequest(r, "DELETE", "/categories/"+testID, "")

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		if parseJSON(t, rec)["message"] != "Category deleted successfully" {
			t.Error("expected deletion message")
		}
		if len(audit.entries) != 1 || audit.entries[0].action != "DELETE_CATEGORY" {
			t.Errorf("expected DELETE_CATEGORY audit entry, got %+v", audit.entries)
		}
	})

	t.Run("returns 409 when in use", func(t *testing.T) {
		catSvc := &mockCategoryService{
			deleteCategoryFn: func(string) error { return apperrors.ErrCategoryInUse },
		}
		audit := &mockAuditService{}
		r := setupCategoryRouter(NewCategoryHandler(catSvc, audit))

		rec := doRequest(r, "DELETE", "/categories/"+testID, "")

		if rec.Code != http.StatusConflict {
			t.Fatalf("expected 409, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "CATEGORY_IN_USE")
		if len(audit.entries) != 0 {
			t.Error("expected no audit entry on failure")
		}
	})
}
