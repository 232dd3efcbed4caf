package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/creditbazaar/marketplace-api/auth"
)

func newProtectedRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/protected", ValidateToken, func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"user_id": c.GetString("user_id")})
	})
	return r
}

func TestValidateTokenAcceptsSignedToken(t *testing.T) {
	auth.SetJWTSecret("test-secret")
	r := newProtectedRouter()

	token, err := auth.IssueToken("user-42", false)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "user-42")
}

func TestValidateTokenRejectsMissingHeader(t *testing.T) {
	auth.SetJWTSecret("test-secret")
	r := newProtectedRouter()

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestValidateTokenRejectsGarbage(t *testing.T) {
	auth.SetJWTSecret("test-secret")
	r := newProtectedRouter()

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer not.a.token")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

// The installed key is the single source: a divergent JWT_SECRET in the
// environment must not affect verification.
func TestValidateTokenUsesInstalledSecretNotEnvironment(t *testing.T) {
	t.Setenv("JWT_SECRET", "stale-env-value")
	auth.SetJWTSecret("configured-secret")
	r := newProtectedRouter()

	token, err := auth.IssueToken("user-42", false)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestValidateTokenRejectsWrongSecret(t *testing.T) {
	auth.SetJWTSecret("first-secret")
	token, err := auth.IssueToken("user-42", false)
	require.NoError(t, err)

	auth.SetJWTSecret("second-secret")
	r := newProtectedRouter()

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
