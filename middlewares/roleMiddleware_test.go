package middlewares

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"cityfix-be/models"
)

func performWithUser(t *testing.T, user *models.User, handler gin.HandlerFunc) *httptest.ResponseRecorder {
	t.Helper()
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.GET("/probe", func(c *gin.Context) {
		if user != nil {
			c.Set(UserKey, user)
		}
	}, handler, func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "ok"})
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/probe", nil)
	r.ServeHTTP(w, req)
	return w
}

func TestRequireRoleAllowsMatchingRole(t *testing.T) {
	admin := &models.User{Role: models.RoleAdmin2}
	w := performWithUser(t, admin, RequireRole(models.RoleAdmin2))
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
}

func TestRequireRoleAllowsAnyListedRole(t *testing.T) {
	admin := &models.User{Role: models.RoleAdmin1}
	w := performWithUser(t, admin, RequireRole(models.RoleAdmin1, models.RoleAdmin2))
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
}

func TestRequireRoleRejectsOtherRoles(t *testing.T) {
	citizen := &models.User{Role: models.RoleCitizen}
	w := performWithUser(t, citizen, RequireRole(models.RoleAdmin1, models.RoleAdmin2))
	if w.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want 403", w.Code)
	}
}

func TestRequireRoleRejectsUnauthenticated(t *testing.T) {
	w := performWithUser(t, nil, RequireRole(models.RoleAdmin2))
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", w.Code)
	}
}
