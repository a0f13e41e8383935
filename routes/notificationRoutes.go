package routes

import (
	"github.com/gin-gonic/gin"

	"cityfix-be/controllers"
)

// NotificationRoutes sets up the notification routes
func NotificationRoutes(r *gin.Engine, ctrl *controllers.NotificationController, auth gin.HandlerFunc) {
	group := r.Group("/api/notifications")
	{
		group.GET("", auth, ctrl.List)
		group.PATCH("/read-all", auth, ctrl.MarkAllRead)
		group.PATCH("/:id/read", auth, ctrl.MarkRead)
	}
}
