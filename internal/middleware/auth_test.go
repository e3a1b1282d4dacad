package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const testSecret = "unit-test-secret"

func signToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(testSecret))
	require.NoError(t, err)
	return signed
}

func runAuth(t *testing.T, header string, handlers ...gin.HandlerFunc) *httptest.ResponseRecorder {
	t.Helper()
	gin.SetMode(gin.TestMode)

	r := gin.New()
	chain := append(handlers, func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"success": true})
	})
	r.GET("/protected", chain...)

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestIsAuthenticatedMissingToken(t *testing.T) {
	w := runAuth(t, "", IsAuthenticated(testSecret))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), `"success":false`)
}

func TestIsAuthenticatedRejectsMalformedHeader(t *testing.T) {
	w := runAuth(t, "Token abcdef", IsAuthenticated(testSecret))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestIsAuthenticatedRejectsExpiredToken(t *testing.T) {
	token := signToken(t, jwt.MapClaims{
		"userId": primitive.NewObjectID().Hex(),
		"role":   "user",
		"exp":    time.Now().Add(-time.Minute).Unix(),
	})
	w := runAuth(t, "Bearer "+token, IsAuthenticated(testSecret))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestIsAuthenticatedAcceptsValidToken(t *testing.T) {
	token := signToken(t, jwt.MapClaims{
		"userId": primitive.NewObjectID().Hex(),
		"role":   "breeder",
		"exp":    time.Now().Add(time.Hour).Unix(),
	})
	w := runAuth(t, "Bearer "+token, IsAuthenticated(testSecret))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAuthorizeRolesBlocksWrongRole(t *testing.T) {
	token := signToken(t, jwt.MapClaims{
		"userId": primitive.NewObjectID().Hex(),
		"role":   "user",
		"exp":    time.Now().Add(time.Hour).Unix(),
	})
	w := runAuth(t, "Bearer "+token, IsAuthenticated(testSecret), AuthorizeRoles("breeder", "admin"))
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestAuthorizeRolesAllowsListedRole(t *testing.T) {
	token := signToken(t, jwt.MapClaims{
		"userId": primitive.NewObjectID().Hex(),
		"role":   "admin",
		"exp":    time.Now().Add(time.Hour).Unix(),
	})
	w := runAuth(t, "Bearer "+token, IsAuthenticated(testSecret), AuthorizeRoles("breeder", "admin"))
	assert.Equal(t, http.StatusOK, w.Code)
}
