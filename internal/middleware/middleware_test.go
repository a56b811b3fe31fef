package middleware

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	apperrors "budgetwise/internal/errors"
	"budgetwise/internal/logger"
)

func init() {
	gin.SetMode(gin.TestMode)
	logger.Set(zap.NewNop().Sugar())
}

func newRouter(h gin.HandlerFunc) *gin.Engine {
	r := gin.New()
	r.Use(RequestLogging(), ErrorHandler())
	r.GET("/x", h)
	r.NoRoute(NotFound())
	return r
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) map[string]string {
	t.Helper()
	var body struct {
		Error map[string]string `json:"error"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to parse body %q: %v", w.Body.String(), err)
	}
	return body.Error
}

func TestErrorHandler(t *testing.T) {
	t.Run("app error keeps its code", func(t *testing.T) {
		r := newRouter(func(c *gin.Context) { _ = c.Error(apperrors.ErrNoActiveMethodology) })
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x", nil))

		if w.Code != http.StatusConflict {
			t.Errorf("expected 409, got %d", w.Code)
		}
		if got := decodeError(t, w)["code"]; got != "NO_ACTIVE_METHODOLOGY" {
			t.Errorf("expected NO_ACTIVE_METHODOLOGY, got %q", got)
		}
	})

	t.Run("unknown error becomes internal", func(t *testing.T) {
		r := newRouter(func(c *gin.Context) { _ = c.Error(errors.New("db exploded")) })
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x", nil))

		if w.Code != http.StatusInternalServerError {
			t.Errorf("expected 500, got %d", w.Code)
		}
		body := decodeError(t, w)
		if body["code"] != "INTERNAL_ERROR" {
			t.Errorf("expected INTERNAL_ERROR, got %q", body["code"])
		}
		if body["message"] == "db exploded" {
			t.Error("internal details leaked to the client")
		}
	})

	t.Run("unknown route", func(t *testing.T) {
		r := newRouter(func(c *gin.Context) {})
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/missing", nil))
		if w.Code != http.StatusNotFound {
			t.Errorf("expected 404, got %d", w.Code)
		}
	})
}

func TestRequestLogging(t *testing.T) {
	r := newRouter(func(c *gin.Context) { c.String(http.StatusOK, RequestID(c)) })

	t.Run("generates an id", func(t *testing.T) {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x", nil))
		id := w.Header().Get(requestIDHeader)
		if id == "" || w.Body.String() != id {
			t.Errorf("expected generated request id echoed, header %q body %q", id, w.Body.String())
		}
	})

	t.Run("reuses an incoming id", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/x", nil)
		req.Header.Set(requestIDHeader, "trace-123")
		r.ServeHTTP(w, req)
		if got := w.Header().Get(requestIDHeader); got != "trace-123" {
			t.Errorf("expected trace-123, got %q", got)
		}
	})
}
