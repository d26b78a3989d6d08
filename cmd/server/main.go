package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	swagger "github.com/gofiber/swagger"
	"github.com/renthaven/renthaven/internal/cache"
	"github.com/renthaven/renthaven/internal/config"
	"github.com/renthaven/renthaven/internal/database"
	"github.com/renthaven/renthaven/internal/handlers"
	"github.com/renthaven/renthaven/internal/middleware"

	_ "github.com/renthaven/renthaven/docs/api" // Swagger docs
)

// @title RentHaven API
// @version 1.0.0
// @description Property rental listing service
// @termsOfService http://swagger.io/terms/

// @contact.name API Support
// @contact.url https://github.com/renthaven/renthaven

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:3000
// @BasePath /api
// @schemes http https

// @securityDefinitions.apikey CookieAuth
// @in cookie
// @name cookie_session

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Connect to database
	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer database.Close(db)

	// Run auto-migrations
	if err := database.AutoMigrate(db); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	// Optional Redis cache for listing queries
	listCache := cache.New(cfg.RedisAddr, cfg.RedisPassword, time.Duration(cfg.CacheTTL)*time.Second)
	if listCache == nil {
		log.Println("Redis cache disabled (REDIS_ADDR not set)")
	}

	// Create Fiber app
	app := fiber.New(fiber.Config{
		ErrorHandler:          customErrorHandler,
		DisableStartupMessage: false,
	})

	// Global middleware
	app.Use(recover.New())
	app.Use(logger.New())
	app.Use(compress.New())

	// Prometheus metrics
	prometheus := fiberprometheus.New("renthaven")
	prometheus.RegisterAt(app, "/metrics")
	app.Use(prometheus.Middleware)

	// Swagger documentation
	app.Get("/swagger/*", swagger.HandlerDefault)

	// Health check
	healthHandler := &handlers.HealthHandler{Cfg: cfg, DB: db}
	app.Get("/health", healthHandler.Check)

	// Uploaded files are served statically from the storage root
	app.Static("/files", cfg.StorageRoot)

	// API routes under /api
	api := app.Group("/api")

	// Version middleware
	api.Use(middleware.VersionMiddleware())

	// Create handlers
	authHandler := &handlers.AuthHandler{Cfg: cfg}
	propertyHandler := &handlers.PropertyHandler{DB: db, Cache: listCache}
	favoriteHandler := &handlers.FavoriteHandler{DB: db}
	uploadHandler := &handlers.UploadHandler{Cfg: cfg}

	// Auth routes
	auth := api.Group("/auth")
	auth.Post("/login", authHandler.Login)
	auth.Post("/signup", authHandler.Signup)
	auth.Post("/logout", authHandler.Logout)
	auth.Post("/forgot-password", authHandler.ForgotPassword)
	auth.Get("/me", middleware.RequireUser(cfg), authHandler.Me)

	// Property routes (public reads, authenticated writes).
	// "/mine" must be registered before "/:id" so it is not captured
	// as a property id.
	properties := api.Group("/properties")
	properties.Get("/", propertyHandler.List)
	properties.Get("/mine", middleware.RequireUser(cfg), propertyHandler.Mine)
	properties.Get("/:id", propertyHandler.Get)
	properties.Post("/", middleware.RequireUser(cfg), propertyHandler.Create)
	properties.Put("/:id", middleware.RequireUser(cfg), propertyHandler.Update)
	properties.Delete("/:id", middleware.RequireUser(cfg), propertyHandler.Delete)

	// Favorite routes (all require authentication)
	favorites := api.Group("/favorites", middleware.RequireUser(cfg))
	favorites.Get("/", favoriteHandler.List)
	favorites.Post("/", favoriteHandler.Create)
	favorites.Post("/toggle", favoriteHandler.Toggle)
	favorites.Delete("/", favoriteHandler.Delete)

	// Upload routes (all require authentication)
	upload := api.Group("/upload", middleware.RequireUser(cfg))
	upload.Post("/", uploadHandler.Create)
	upload.Delete("/", uploadHandler.Delete)

	// Page navigation guard for protected pages
	app.Use(middleware.RouteGuard(cfg))

	// 404 handler
	app.Use(func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Resource not found",
		})
	})

	// Authorizer is initialized lazily on the first authenticated request
	log.Printf("Authorizer will be initialized on first authenticated request")

	// Graceful shutdown
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-c
		log.Println("Gracefully shutting down...")
		_ = app.Shutdown()
	}()

	// Start server
	port := cfg.Port
	log.Printf("Starting server on port %s", port)
	if err := app.Listen(":" + port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}

	log.Println("Server stopped")
}

// customErrorHandler keeps unhandled errors on the same wire contract as the
// handlers: a JSON body with a single "error" field.
func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := err.Error()

	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
		message = e.Message
	}

	return c.Status(code).JSON(fiber.Map{
		"error": message,
	})
}
