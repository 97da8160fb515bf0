package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"cartside/api/internal/models"
)

func gateRouter(principal *models.User, allowed ...models.UserRole) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()

	inject := func(c *gin.Context) {
		if principal != nil {
			c.Set(CtxUserKey, *principal)
		}
		c.Next()
	}

	router.GET("/admin", inject, RequireRoles(allowed...), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	return router
}

func TestRequireRolesAllows(t *testing.T) {
	t.Parallel()

	router := gateRouter(&models.User{ID: "u1", Role: models.UserRoleAdmin}, models.UserRoleAdmin)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/admin", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
}

func TestRequireRolesRejectsNamingRole(t *testing.T) {
	t.Parallel()

	router := gateRouter(&models.User{ID: "u1", Role: models.UserRoleUser}, models.UserRoleAdmin)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/admin", nil))
	if rec.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want 403", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `user`) {
		t.Fatalf("rejection does not name the principal's role: %s", rec.Body.String())
	}
}

func TestRequireRolesWithoutPrincipal(t *testing.T) {
	t.Parallel()

	router := gateRouter(nil, models.UserRoleAdmin)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/admin", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
}
