package routes

import (
	"github.com/gin-gonic/gin"

	"cityfix-be/controllers"
	"cityfix-be/middlewares"
	"cityfix-be/models"
)

// IssueRoutes sets up the issue lifecycle routes
func IssueRoutes(r *gin.Engine, ctrl *controllers.IssueController, auth, rateLimiter gin.HandlerFunc) {
	group := r.Group("/api/issues")
	{
		group.POST("", auth, middlewares.RequireRole(models.RoleCitizen), rateLimiter, ctrl.Create)
		group.GET("", auth, ctrl.List)
		group.GET("/user/:userId", auth, ctrl.UserIssues)
		group.GET("/admin/:adminId/progress", auth, middlewares.RequireRole(models.RoleAdmin2), ctrl.Progress)
		group.GET("/:id", auth, ctrl.Get)
		group.PATCH("/:id/status", auth, middlewares.RequireRole(models.RoleAdmin1, models.RoleAdmin2), ctrl.UpdateStatus)
		group.PATCH("/:id/resolve", auth, middlewares.RequireRole(models.RoleCitizen), ctrl.Resolve)
		group.PATCH("/:id/confirm-resolution", auth, middlewares.RequireRole(models.RoleCitizen), ctrl.Confirm)
	}
}
