package utils

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func testContext(t *testing.T) *gin.Context {
	t.Helper()
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	return c
}

func TestExtractToken(t *testing.T) {
	c := testContext(t)
	require.Equal(t, "", ExtractToken(c))

	c = testContext(t)
	c.Request.Header.Set("Authorization", "Bearer abc123")
	require.Equal(t, "abc123", ExtractToken(c))

	c = testContext(t)
	c.Request.Header.Set("Authorization", "Basic abc123")
	require.Equal(t, "", ExtractToken(c))

	c = testContext(t)
	c.Request.AddCookie(&http.Cookie{Name: "access_token", Value: "cookie-token"})
	require.Equal(t, "cookie-token", ExtractToken(c))
}

func TestGetUserIDFromContext(t *testing.T) {
	id := uuid.New()

	c := testContext(t)
	c.Set("user_id", id.String())
	got, err := GetUserIDFromContext(c)
	require.NoError(t, err)
	require.Equal(t, id, got)

	c = testContext(t)
	c.Set("user_id", id)
	got, err = GetUserIDFromContext(c)
	require.NoError(t, err)
	require.Equal(t, id, got)

	c = testContext(t)
	c.Set("user_id", "not-a-uuid")
	_, err = GetUserIDFromContext(c)
	require.Error(t, err)

	c = testContext(t)
	_, err = GetUserIDFromContext(c)
	require.Error(t, err)
}
