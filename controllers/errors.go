package controllers

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"cityfix-be/services"
)

// handleServiceError maps domain errors to HTTP responses. notFound is the
// endpoint-specific wording for unknown ids.
func handleServiceError(c *gin.Context, err error, notFound string) {
	var verr *services.ValidationError
	switch {
	case errors.As(err, &verr):
		c.JSON(http.StatusBadRequest, gin.H{"errors": verr.Fields})
	case errors.Is(err, services.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"message": notFound})
	case errors.Is(err, services.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"message": "Access denied"})
	case errors.Is(err, services.ErrInvalidState):
		c.JSON(http.StatusBadRequest, gin.H{"message": "Issue is not awaiting confirmation"})
	default:
		log.Println("Request failed:", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Server error"})
	}
}
