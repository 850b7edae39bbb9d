package main

import (
	"log"
	"os"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echoMiddleware "github.com/labstack/echo/v4/middleware"

	"github.com/medisetu/medisetu_backend/config"
	"github.com/medisetu/medisetu_backend/controllers"
	"github.com/medisetu/medisetu_backend/middleware"
	"github.com/medisetu/medisetu_backend/repositories"
	"github.com/medisetu/medisetu_backend/routes"
	"github.com/medisetu/medisetu_backend/services"
	"github.com/medisetu/medisetu_backend/utils"
	"github.com/medisetu/medisetu_backend/websocket"
)

// CustomValidator is a custom validator for Echo
type CustomValidator struct {
	validator *validator.Validate
}

// Validate validates the request body
func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.validator.Struct(i)
}

func main() {
	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found")
	}

	// Connect to Redis
	if err := config.ConnectRedis(); err != nil {
		log.Fatalf("Redis connection failed: %v", err)
	}
	defer config.CloseRedis()
	redisClient := config.GetRedisClient()

	// Connect to database
	client, err := config.ConnectDB()
	if err != nil {
		log.Fatalf("MongoDB connection failed: %v", err)
	}

	// Ensure uploads directory exists
	if err := utils.InitializeStorage(); err != nil {
		log.Fatalf("Failed to initialize upload storage: %v", err)
	}

	// Create WebSocket hub for admin notifications
	wsHub := websocket.NewHub(log.New(os.Stdout, "[WS] ", log.LstdFlags))
	go wsHub.Run()

	// Start the expired token sweeper
	go middleware.CleanupBlacklist()

	// Create a new Echo instance
	e := echo.New()
	e.Validator = &CustomValidator{validator: validator.New()}

	// Initialize rate limiter
	rateLimiter := middleware.NewRateLimiter()

	// Middleware
	e.Use(echoMiddleware.Logger())
	e.Use(echoMiddleware.Recover())
	e.Use(middleware.GlobalCORS())
	e.Use(rateLimiter.RateLimit())
	e.Use(middleware.SecurityHeadersWithConfig(middleware.SecurityConfig{
		AllowedDomains: []string{"*"},
		AllowInlineJS:  false,
	}))
	e.Use(httpsRedirect())

	e.Match([]string{"GET", "HEAD"}, "/", func(c echo.Context) error {
		return c.JSON(200, map[string]string{
			"status":  "OK",
			"message": "Medisetu Backend is running",
			"version": "1.0",
		})
	})

	e.Match([]string{"GET", "HEAD"}, "/health", func(c echo.Context) error {
		return c.JSON(200, map[string]string{
			"status":   "healthy",
			"database": "connected",
		})
	})

	// Initialize repositories and stores
	userRepo := repositories.NewUserRepository(client)
	adminRepo := repositories.NewMongoAdminRepository(client)
	draftStore := repositories.NewRedisDraftStore(redisClient)
	sessionStore := utils.NewRedisSessionStore(redisClient)

	// Initialize services
	smsService := services.NewSMSService()
	emailService := services.NewEmailService()

	// Initialize controllers
	wizardController := controllers.NewWizardController(draftStore, userRepo, wsHub, emailService)
	authController := controllers.NewAuthController(userRepo, adminRepo, sessionStore, smsService, redisClient)
	adminController := controllers.NewAdminController(userRepo, wsHub, emailService)

	// Register routes
	routes.RegisterSignupRoutes(e, wizardController)
	routes.RegisterAuthRoutes(e, authController)
	routes.RegisterAdminRoutes(e, authController, adminController)

	e.Static("/uploads", "uploads")

	// Start server
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	e.Logger.Fatal(e.Start(":" + port))
}

func httpsRedirect() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if c.Request().Header.Get("X-Forwarded-Proto") == "http" {
				return c.Redirect(301, "https://"+c.Request().Host+c.Request().RequestURI)
			}
			return next(c)
		}
	}
}
