package routes

import (
	"github.com/gin-gonic/gin"

	"cityfix-be/controllers"
	"cityfix-be/middlewares"
	"cityfix-be/models"
)

// AuthRoutes sets up the authentication and account routes
func AuthRoutes(r *gin.Engine, ctrl *controllers.AuthController, auth gin.HandlerFunc) {
	group := r.Group("/api/auth")
	{
		group.POST("/register", ctrl.Register)
		group.POST("/login", ctrl.Login)
		group.GET("/me", auth, ctrl.Me)
		group.GET("/admins", auth, middlewares.RequireRole(models.RoleAdmin2), ctrl.ListAdmins)
		group.POST("/admins", auth, middlewares.RequireRole(models.RoleAdmin2), ctrl.CreateAdmin)
		group.GET("/zones", auth, ctrl.ListZones)
	}
}
