package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	apperrors "reelhub/pkg/errors"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func serve(handler gin.HandlerFunc) *httptest.ResponseRecorder {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(ErrorHandlerMiddleware(zap.NewNop().Sugar()), RecoveryMiddleware(zap.NewNop().Sugar()))
	router.GET("/x", handler)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x", nil))
	return w
}

func TestErrorHandler_RendersAppError(t *testing.T) {
	w := serve(func(c *gin.Context) {
		_ = c.Error(apperrors.NewNotFoundError("show").WithContext("show_id", 42))
	})

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{"error":"NOT_FOUND","message":"show not found"}`, w.Body.String())
}

func TestErrorHandler_HidesUpstreamCause(t *testing.T) {
	w := serve(func(c *gin.Context) {
		_ = c.Error(apperrors.NewUpstreamError(errors.New("dial tcp 10.0.0.5:6379: connection refused")))
	})

	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.NotContains(t, w.Body.String(), "10.0.0.5")
}

func TestErrorHandler_PlainErrorIsInternal(t *testing.T) {
	w := serve(func(c *gin.Context) {
		_ = c.Error(errors.New("boom"))
	})

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"error":"INTERNAL_ERROR","message":"Internal server error"}`, w.Body.String())
}

func TestErrorHandler_LeavesWrittenResponses(t *testing.T) {
	w := serve(func(c *gin.Context) {
		c.JSON(http.StatusAccepted, gin.H{"ok": true})
		_ = c.Error(errors.New("late"))
	})

	assert.Equal(t, http.StatusAccepted, w.Code)
	assert.JSONEq(t, `{"ok":true}`, w.Body.String())
}

func TestRecoveryMiddleware(t *testing.T) {
	w := serve(func(c *gin.Context) {
		panic("unexpected")
	})

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"error":"INTERNAL_ERROR","message":"Internal server error"}`, w.Body.String())
}
