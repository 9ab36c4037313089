package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/tutorhub/class-ledger-api/internal/models"
)

func performWithRole(t *testing.T, handler gin.HandlerFunc, role models.Role, path, target string) int {
	t.Helper()
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET(path, func(c *gin.Context) {
		c.Set(ContextUserKey, &models.JWTClaims{UserID: "u1", Role: role})
	}, handler, func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	router.ServeHTTP(rec, req)
	return rec.Code
}

func TestRequireRoleOrdering(t *testing.T) {
	gate := RequireRole(models.RoleTeacher)

	assert.Equal(t, http.StatusOK, performWithRole(t, gate, models.RoleTeacher, "/x", "/x"))
	assert.Equal(t, http.StatusOK, performWithRole(t, gate, models.RolePrincipal, "/x", "/x"))
	assert.Equal(t, http.StatusOK, performWithRole(t, gate, models.RoleAdmin, "/x", "/x"))
	assert.Equal(t, http.StatusForbidden, performWithRole(t, gate, models.RoleStudent, "/x", "/x"))
	assert.Equal(t, http.StatusForbidden, performWithRole(t, gate, models.RoleParent, "/x", "/x"))
}

func TestRequireRoleOrSelf(t *testing.T) {
	gate := RequireRoleOrSelf(models.RolePrincipal, "id")

	// u1 acting on itself passes despite a low role.
	assert.Equal(t, http.StatusOK, performWithRole(t, gate, models.RoleStudent, "/students/:id", "/students/u1"))
	assert.Equal(t, http.StatusForbidden, performWithRole(t, gate, models.RoleStudent, "/students/:id", "/students/u2"))
	assert.Equal(t, http.StatusOK, performWithRole(t, gate, models.RolePrincipal, "/students/:id", "/students/u2"))
}

func TestRequireRoleWithoutClaims(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/x", RequireRole(models.RoleTeacher), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/x", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
