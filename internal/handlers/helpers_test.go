package handlers

import (
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"budgetwise/internal/models"
	"budgetwise/internal/pagination"
	"budgetwise/internal/services"
	"budgetwise/internal/validator"
)

// --- shared mocks ---

type auditEntry struct {
	action       string
	resourceType string
	resourceID   string
	changes      map[string]any
}

type mockAuditService struct {
	entries       []auditEntry
	getAuditLogsFn func(filter services.AuditFilter, page pagination.PageRequest) (*pagination.PageResponse[models.AuditLog], error)
}

func (m *mockAuditService) Log(action, resourceType, resourceID, _ string, changes map[string]any) {
	m.entries = append(m.entries, auditEntry{action: action, resourceType: resourceType, resourceID: resourceID, changes: changes})
}

func (m *mockAuditService) GetAuditLogs(filter services.AuditFilter, page pagination.PageRequest) (*pagination.PageResponse[models.AuditLog], error) {
	if m.getAuditLogsFn != nil {
		return m.getAuditLogsFn(filter, page)
	}
	resp := pagination.NewPageResponse([]models.AuditLog{}, 1, 20, 0)
	return &resp, nil
}

var _ services.AuditServicer = (*mockAuditService)(nil)

// --- test helpers ---

func init() {
	gin.SetMode(gin.TestMode)
	validator.Register()
}

func doRequest(r *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func parseJSON(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var result map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("failed to parse JSON response: %v\nbody: %s", err, rec.Body.String())
	}
	return result
}

func assertErrorCode(t *testing.T, result map[string]interface{}, code string) {
	t.Helper()
	errObj, ok := result["error"].(map[string]interface{})
	if !ok {
		t.Fatalf("expected error object in response, got: %v", result)
	}
	if errObj["code"] != code {
		t.Errorf("expected error code %q, got %q", code, errObj["code"])
	}
}

func float(v float64) *float64 { return &v }

const (
	testID    = "0190a1b2-c3d4-7e5f-8a9b-0c1d2e3f4a5b"
	missingID = "00000000-0000-0000-0000-000000000000"
)
