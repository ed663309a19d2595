package api

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/yourname/sleepdiary/internal"
)

func TestRecoveryMiddleware_GenericServerError(t *testing.T) {
	gin.SetMode(gin.TestMode)
	logger := internal.NewNopLogger()

	r := gin.New()
	r.Use(RequestIDMiddleware(), RecoveryMiddleware(logger))
	r.GET("/boom", func(c *gin.Context) { panic("kaboom") })

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/boom", nil)
	req.Header.Set("X-Request-ID", "req-1")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"message":"Server Error. Try again later."}`, w.Body.String())
	assert.Equal(t, "req-1", w.Header().Get("X-Request-ID"))
}

func TestIsJSON(t *testing.T) {
	assert.True(t, isJSON("application/json"))
	assert.True(t, isJSON("application/merge-patch+json"))
	assert.False(t, isJSON("text/plain"))
	assert.False(t, isJSON(""))
}
