package controllers

import (
	"log"
	"net/http"
	"path/filepath"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"cityfix-be/middlewares"
	"cityfix-be/services"
)

// IssueController handles the issue lifecycle endpoints.
type IssueController struct {
	service   *services.IssueService
	uploadDir string
}

func NewIssueController(service *services.IssueService, uploadDir string) *IssueController {
	return &IssueController{service: service, uploadDir: uploadDir}
}

// Create handles a citizen's issue submission (multipart, optional photo)
func (ctrl *IssueController) Create(c *gin.Context) {
	actor, ok := middlewares.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "User not authenticated"})
		return
	}

	latitude, latErr := strconv.ParseFloat(c.PostForm("latitude"), 64)
	longitude, lngErr := strconv.ParseFloat(c.PostForm("longitude"), 64)
	if latErr != nil || lngErr != nil {
		errs := gin.H{}
		if latErr != nil {
			errs["latitude"] = "Valid latitude required"
		}
		if lngErr != nil {
			errs["longitude"] = "Valid longitude required"
		}
		c.JSON(http.StatusBadRequest, gin.H{"errors": errs})
		return
	}

	var photoURL *string
	if file, err := c.FormFile("photo"); err == nil {
		filename := primitive.NewObjectID().Hex() + filepath.Ext(file.Filename)
		if err := c.SaveUploadedFile(file, filepath.Join(ctrl.uploadDir, filename)); err != nil {
			log.Println("Error saving photo:", err)
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Server error during issue submission"})
			return
		}
		url := "/uploads/" + filename
		photoURL = &url
	}

	ctx, cancel := requestContext()
	defer cancel()

	issue, err := ctrl.service.Submit(ctx, actor, services.SubmitInput{
		Category:    c.PostForm("category"),
		Zone:        c.PostForm("zone"),
		Description: c.PostForm("description"),
		Latitude:    latitude,
		Longitude:   longitude,
		Address:     c.PostForm("address"),
		Priority:    c.PostForm("priority"),
		PhotoURL:    photoURL,
	})
	if err != nil {
		handleServiceError(c, err, "Issue not found")
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Issue submitted successfully",
		"issue": gin.H{
			"id":          issue.ID,
			"category":    issue.Category,
			"description": issue.Description,
			"status":      issue.Status,
			"location":    issue.Location,
			"photoUrl":    issue.PhotoURL,
			"createdAt":   issue.CreatedAt,
		},
	})
}

// List returns a filtered, paginated issue listing
func (ctrl *IssueController) List(c *gin.Context) {
	actor, ok := middlewares.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "User not authenticated"})
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	ctx, cancel := requestContext()
	defer cancel()

	result, err := ctrl.service.List(ctx, actor, services.ListInput{
		Category:   c.Query("category"),
		Status:     c.Query("status"),
		AssignedTo: c.Query("assignedTo"),
		Location:   c.Query("location"),
		Page:       page,
		Limit:      limit,
	})
	if err != nil {
		handleServiceError(c, err, "Issue not found")
		return
	}

	c.JSON(http.StatusOK, result)
}

// Get returns one issue with its full update history
func (ctrl *IssueController) Get(c *gin.Context) {
	issueID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid issue ID"})
		return
	}

	ctx, cancel := requestContext()
	defer cancel()

	detail, err := ctrl.service.Get(ctx, issueID)
	if err != nil {
		handleServiceError(c, err, "Issue not found")
		return
	}

	c.JSON(http.StatusOK, detail)
}

// UserIssues returns all issues created by a user (self or admin)
func (ctrl *IssueController) UserIssues(c *gin.Context) {
	actor, ok := middlewares.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "User not authenticated"})
		return
	}

	userID, err := primitive.ObjectIDFromHex(c.Param("userId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid user ID"})
		return
	}

	ctx, cancel := requestContext()
	defer cancel()

	issues, err := ctrl.service.UserIssues(ctx, actor, userID)
	if err != nil {
		handleServiceError(c, err, "User not found")
		return
	}

	c.JSON(http.StatusOK, gin.H{"issues": issues})
}

// UpdateStatus moves an issue through the workflow (admin roles only)
func (ctrl *IssueController) UpdateStatus(c *gin.Context) {
	actor, ok := middlewares.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "User not authenticated"})
		return
	}

	issueID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid issue ID"})
		return
	}

	var input struct {
		Status  string `json:"status" binding:"required"`
		Comment string `json:"comment,omitempty"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}

	ctx, cancel := requestContext()
	defer cancel()

	issue, err := ctrl.service.UpdateStatus(ctx, actor, issueID, input.Status, input.Comment)
	if err != nil {
		handleServiceError(c, err, "Issue not found")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Issue status updated successfully",
		"issue": gin.H{
			"id":                  issue.ID,
			"status":              issue.Status,
			"resolutionConfirmed": issue.ResolutionConfirmed,
		},
	})
}

// Resolve lets the reporting citizen mark their own issue resolved
func (ctrl *IssueController) Resolve(c *gin.Context) {
	actor, ok := middlewares.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "User not authenticated"})
		return
	}

	issueID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid issue ID"})
		return
	}

	ctx, cancel := requestContext()
	defer cancel()

	issue, err := ctrl.service.ResolveOwn(ctx, actor, issueID)
	if err != nil {
		handleServiceError(c, err, "Issue not found")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Issue marked as resolved",
		"issue": gin.H{
			"id":                  issue.ID,
			"status":              issue.Status,
			"resolutionConfirmed": issue.ResolutionConfirmed,
		},
	})
}

// Confirm records the citizen's confirmation of an admin-reported resolution
func (ctrl *IssueController) Confirm(c *gin.Context) {
	actor, ok := middlewares.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "User not authenticated"})
		return
	}

	issueID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid issue ID"})
		return
	}

	ctx, cancel := requestContext()
	defer cancel()

	issue, err := ctrl.service.ConfirmResolution(ctx, actor, issueID)
	if err != nil {
		handleServiceError(c, err, "Issue not found")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Resolution confirmed",
		"issue": gin.H{
			"id":                  issue.ID,
			"status":              issue.Status,
			"resolutionConfirmed": issue.ResolutionConfirmed,
		},
	})
}

// Progress returns the supervisor view over one zone admin's workload
func (ctrl *IssueController) Progress(c *gin.Context) {
	actor, ok := middlewares.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "User not authenticated"})
		return
	}

	adminID, err := primitive.ObjectIDFromHex(c.Param("adminId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid admin ID"})
		return
	}

	ctx, cancel := requestContext()
	defer cancel()

	progress, err := ctrl.service.Progress(ctx, actor, adminID)
	if err != nil {
		handleServiceError(c, err, "Admin1 not found")
		return
	}

	c.JSON(http.StatusOK, progress)
}
