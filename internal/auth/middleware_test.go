package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SAP-F-2025/backoffice-service/internal/models"
	"github.com/SAP-F-2025/backoffice-service/internal/utils"
)

func newProtectedRouter(tokens *TokenService, perm string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	group := router.Group("/", Authenticate(tokens, utils.Discard()))
	group.GET("/resource", RequirePermission(NewChecker(nil), perm), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"user_id": c.GetUint(ContextUserID)})
	})
	return router
}

func TestAuthenticate(t *testing.T) {
	tokens := NewTokenService("secret", time.Hour)
	router := newProtectedRouter(tokens, PermLinkPayment)

	t.Run("missing token", func(t *testing.T) {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/resource", nil))
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("garbage token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/resource", nil)
		req.Header.Set("Authorization", "Bearer not-a-jwt")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("role without permission", func(t *testing.T) {
		token, _, err := tokens.Issue(&models.User{ID: 5, Username: "staff", Role: models.RoleStaff})
		require.NoError(t, err)

		req := httptest.NewRequest(http.MethodGet, "/resource", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("manager allowed", func(t *testing.T) {
		token, _, err := tokens.Issue(&models.User{ID: 9, Username: "boss", Role: models.RoleManager})
		require.NoError(t, err)

		req := httptest.NewRequest(http.MethodGet, "/resource", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"user_id":9}`, w.Body.String())
	})
}
