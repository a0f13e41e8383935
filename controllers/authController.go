package controllers

import (
	"context"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"cityfix-be/middlewares"
	"cityfix-be/models"
	"cityfix-be/repository"
	authUtils "cityfix-be/utils"
)

// AuthController handles registration, login and admin account management.
type AuthController struct {
	users repository.UserRepository
}

func NewAuthController(users repository.UserRepository) *AuthController {
	return &AuthController{users: users}
}

func requestContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 10*time.Second)
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Register handles user registration
func (ctrl *AuthController) Register(c *gin.Context) {
	var input struct {
		Name     string `json:"name" binding:"required,min=2,max=100"`
		Email    string `json:"email" binding:"required,email"`
		Password string `json:"password" binding:"required,min=6"`
		Role     string `json:"role,omitempty"`
	}

	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}

	role := models.RoleCitizen
	if input.Role != "" {
		if !models.ValidRole(input.Role) {
			c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid role"})
			return
		}
		role = models.UserRole(input.Role)
	}

	ctx, cancel := requestContext()
	defer cancel()

	email := normalizeEmail(input.Email)

	count, err := ctrl.users.CountByEmail(ctx, email)
	if err != nil {
		log.Println("Error checking existing user:", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Server error during registration"})
		return
	}
	if count > 0 {
		c.JSON(http.StatusBadRequest, gin.H{"message": "User already exists with this email"})
		return
	}

	user := models.User{
		Name:      input.Name,
		Email:     email,
		Password:  input.Password,
		Role:      role,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}

	if err := user.HashPassword(); err != nil {
		log.Println("Error hashing password:", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Server error during registration"})
		return
	}

	id, err := ctrl.users.Insert(ctx, &user)
	if err != nil {
		log.Println("Error inserting user:", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Server error during registration"})
		return
	}

	token, err := authUtils.GenerateToken(id.Hex())
	if err != nil {
		log.Println("Error generating token:", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Server error during registration"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "User registered successfully",
		"token":   token,
		"user": gin.H{
			"id":    id,
			"name":  user.Name,
			"email": user.Email,
			"role":  user.Role,
		},
	})
}

// Login handles user login
func (ctrl *AuthController) Login(c *gin.Context) {
	var input struct {
		Email    string `json:"email" binding:"required,email"`
		Password string `json:"password" binding:"required"`
	}

	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}

	ctx, cancel := requestContext()
	defer cancel()

	user, err := ctrl.users.FindByEmail(ctx, normalizeEmail(input.Email))
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Invalid credentials"})
		return
	}

	if !user.ComparePassword(input.Password) {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Invalid credentials"})
		return
	}

	token, err := authUtils.GenerateToken(user.ID.Hex())
	if err != nil {
		log.Println("Error generating token:", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Server error during login"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Login successful",
		"token":   token,
		"user": gin.H{
			"id":    user.ID,
			"name":  user.Name,
			"email": user.Email,
			"role":  user.Role,
		},
	})
}

// Me returns the authenticated user's identity
func (ctrl *AuthController) Me(c *gin.Context) {
	user, ok := middlewares.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "User not authenticated"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"user": gin.H{
			"id":    user.ID,
			"name":  user.Name,
			"email": user.Email,
			"role":  user.Role,
			"zone":  user.Zone,
		},
	})
}

// ListAdmins lists admin accounts of the requested role (admin2 only)
func (ctrl *AuthController) ListAdmins(c *gin.Context) {
	role := c.DefaultQuery("role", string(models.RoleAdmin1))
	if !models.ValidRole(role) {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid role"})
		return
	}

	ctx, cancel := requestContext()
	defer cancel()

	admins, err := ctrl.users.FindByRole(ctx, models.UserRole(role))
	if err != nil {
		log.Println("Error listing admins:", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Server error"})
		return
	}

	result := make([]gin.H, 0, len(admins))
	for _, a := range admins {
		result = append(result, gin.H{
			"id":    a.ID,
			"name":  a.Name,
			"email": a.Email,
			"role":  a.Role,
			"zone":  a.Zone,
		})
	}

	c.JSON(http.StatusOK, gin.H{"admins": result})
}

// CreateAdmin creates a zone admin account (admin2 only; role is always admin1)
func (ctrl *AuthController) CreateAdmin(c *gin.Context) {
	var input struct {
		Name     string `json:"name" binding:"required,min=2,max=100"`
		Email    string `json:"email" binding:"required,email"`
		Password string `json:"password" binding:"required,min=6"`
		Zone     string `json:"zone" binding:"required,max=100"`
	}

	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}

	ctx, cancel := requestContext()
	defer cancel()

	email := normalizeEmail(input.Email)

	count, err := ctrl.users.CountByEmail(ctx, email)
	if err != nil {
		log.Println("Error checking existing user:", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Server error"})
		return
	}
	if count > 0 {
		c.JSON(http.StatusBadRequest, gin.H{"message": "User already exists with this email"})
		return
	}

	user := models.User{
		Name:      input.Name,
		Email:     email,
		Password:  input.Password,
		Role:      models.RoleAdmin1,
		Zone:      strings.TrimSpace(input.Zone),
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}

	if err := user.HashPassword(); err != nil {
		log.Println("Error hashing password:", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Server error"})
		return
	}

	id, err := ctrl.users.Insert(ctx, &user)
	if err != nil {
		log.Println("Error inserting admin:", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Server error"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Admin created",
		"admin": gin.H{
			"id":    id,
			"name":  user.Name,
			"email": user.Email,
			"role":  user.Role,
			"zone":  user.Zone,
		},
	})
}

// ListZones derives the zone list from existing admin1 users
func (ctrl *AuthController) ListZones(c *gin.Context) {
	ctx, cancel := requestContext()
	defer cancel()

	admins, err := ctrl.users.FindByRole(ctx, models.RoleAdmin1)
	if err != nil {
		log.Println("Error listing zones:", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Server error"})
		return
	}

	zones := make([]gin.H, 0, len(admins))
	for _, a := range admins {
		if a.Zone == "" {
			continue
		}
		zones = append(zones, gin.H{"zone": a.Zone, "adminName": a.Name})
	}

	c.JSON(http.StatusOK, gin.H{"zones": zones})
}
