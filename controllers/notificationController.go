package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"cityfix-be/middlewares"
	"cityfix-be/services"
)

// NotificationController handles the self-scoped notification endpoints.
type NotificationController struct {
	service *services.NotificationService
}

func NewNotificationController(service *services.NotificationService) *NotificationController {
	return &NotificationController{service: service}
}

// List returns the authenticated user's notifications
func (ctrl *NotificationController) List(c *gin.Context) {
	actor, ok := middlewares.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "User not authenticated"})
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	unreadOnly := c.Query("unreadOnly") == "true"

	ctx, cancel := requestContext()
	defer cancel()

	result, err := ctrl.service.List(ctx, actor, unreadOnly, page, limit)
	if err != nil {
		handleServiceError(c, err, "Notification not found")
		return
	}

	c.JSON(http.StatusOK, result)
}

// MarkRead flips one owned notification to read
func (ctrl *NotificationController) MarkRead(c *gin.Context) {
	actor, ok := middlewares.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "User not authenticated"})
		return
	}

	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid notification ID"})
		return
	}

	ctx, cancel := requestContext()
	defer cancel()

	if err := ctrl.service.MarkRead(ctx, actor, id); err != nil {
		handleServiceError(c, err, "Notification not found")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Notification marked as read"})
}

// MarkAllRead flips all of the user's unread notifications
func (ctrl *NotificationController) MarkAllRead(c *gin.Context) {
	actor, ok := middlewares.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "User not authenticated"})
		return
	}

	ctx, cancel := requestContext()
	defer cancel()

	if err := ctrl.service.MarkAllRead(ctx, actor); err != nil {
		handleServiceError(c, err, "Notification not found")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "All notifications marked as read"})
}
