// middleware/auth_test.go
package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func newAuthRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	viper.Set("auth.jwtSecret", testSecret)

	router := gin.New()
	router.Use(Auth())
	router.GET("/whoami", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"userID":         c.GetString("userID"),
			"organizationID": c.GetString("organizationID"),
		})
	})
	return router
}

func signToken(t *testing.T, subject, organizationID, secret string) string {
	t.Helper()
	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
		OrganizationID: organizationID,
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return token
}

func authRequest(router *gin.Engine, token string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	router.ServeHTTP(w, req)
	return w
}

func TestAuthSetsIdentityFromClaims(t *testing.T) {
	router := newAuthRouter(t)

	w := authRequest(router, signToken(t, "u1", "org-a", testSecret))
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"userID":"u1","organizationID":"org-a"}`, w.Body.String())
}

func TestAuthRejectsMissingToken(t *testing.T) {
	router := newAuthRouter(t)
	w := authRequest(router, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthRejectsBadSignature(t *testing.T) {
	router := newAuthRouter(t)
	w := authRequest(router, signToken(t, "u1", "org-a", "wrong-secret"))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthRejectsExpiredToken(t *testing.T) {
	router := newAuthRouter(t)

	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "u1",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)

	w := authRequest(router, token)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthRejectsEmptySubject(t *testing.T) {
	router := newAuthRouter(t)
	w := authRequest(router, signToken(t, "", "org-a", testSecret))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
