package main

import (
	"log"
	"net/http"
	"os"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"cityfix-be/config"
	"cityfix-be/controllers"
	"cityfix-be/middlewares"
	"cityfix-be/repository"
	"cityfix-be/routes"
	"cityfix-be/services"
)

const dailyIssueLimit = 10

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}

	db := config.ConnectDB()
	if db == nil {
		log.Fatal("Failed to connect to MongoDB")
	}
	config.ConnectRedis()

	users := repository.NewUserRepository(db.Collection(config.UsersCollection))
	issues := repository.NewIssueRepository(db.Collection(config.IssuesCollection))
	updates := repository.NewIssueUpdateRepository(db.Collection(config.IssueUpdatesCollection))
	notifications := repository.NewNotificationRepository(db.Collection(config.NotificationsCollection))

	if err := config.EnsureUserEmailIndex(db.Collection(config.UsersCollection)); err != nil {
		log.Printf("Failed to ensure user email index: %v", err)
	}

	uploadDir := config.UploadDir()
	if err := os.MkdirAll(uploadDir, 0o755); err != nil {
		log.Fatalf("Failed to create uploads directory: %v", err)
	}

	issueService := services.NewIssueService(issues, updates, notifications, users,
		config.ProgressUpdateScanLimit(), config.ProgressRecentIssueLimit())
	notificationService := services.NewNotificationService(notifications, issues)

	authController := controllers.NewAuthController(users)
	issueController := controllers.NewIssueController(issueService, uploadDir)
	notificationController := controllers.NewNotificationController(notificationService)

	auth := middlewares.AuthMiddleware(users)
	rateLimiter := middlewares.IssueRateLimiter(dailyIssueLimit)

	r := gin.Default()
	r.Use(cors.New(cors.Config{
		AllowAllOrigins: true,
		AllowMethods:    []string{"GET", "POST", "PATCH", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:    []string{"Origin", "Content-Type", "Authorization"},
		MaxAge:          12 * time.Hour,
	}))

	r.Static("/uploads", uploadDir)

	routes.AuthRoutes(r, authController, auth)
	routes.IssueRoutes(r, issueController, auth, rateLimiter)
	routes.NotificationRoutes(r, notificationController, auth)

	r.GET("/api/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message":   "Server is running",
			"timestamp": time.Now().Format(time.RFC3339),
		})
	})

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"message": "Route not found"})
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	if err := r.Run(":" + port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
