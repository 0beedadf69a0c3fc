package middleware

import (
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func contextWithAuthHeader(value string) *gin.Context {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest("GET", "/", nil)
	if value != "" {
		c.Request.Header.Set("Authorization", value)
	}
	return c
}

func TestExtractToken(t *testing.T) {
	assert.Equal(t, "abc.def.ghi", ExtractToken(contextWithAuthHeader("Bearer abc.def.ghi")))
	assert.Equal(t, "abc.def.ghi", ExtractToken(contextWithAuthHeader("bearer abc.def.ghi")))
	assert.Equal(t, "", ExtractToken(contextWithAuthHeader("")))
	assert.Equal(t, "", ExtractToken(contextWithAuthHeader("Basic dXNlcjpwYXNz")))
	assert.Equal(t, "", ExtractToken(contextWithAuthHeader("Bearer")))
}
