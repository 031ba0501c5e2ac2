package server

import (
	"context"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"

	"github.com/make-it-kro/lunch-poll/backend/internal/database"
	"github.com/make-it-kro/lunch-poll/backend/internal/handlers"
	"github.com/make-it-kro/lunch-poll/backend/internal/middleware"
	"github.com/make-it-kro/lunch-poll/backend/internal/notify"
)

type Server struct {
	db      database.Service
	handler *handlers.Handler
}

// New wires a Server from existing components. NewServer builds those
// components from the environment; tests inject their own.
func New(db database.Service, dispatcher *notify.Dispatcher) *Server {
	return &Server{
		db:      db,
		handler: handlers.NewHandler(db.GetDB(), dispatcher),
	}
}

// NewServer creates and configures a new server
func NewServer() *http.Server {
	// Initialize database
	db := database.New()
	gormDB := db.GetDB()

	// Push provider; the service stays up without one
	var messenger notify.Messenger
	fcm, err := notify.NewFCM(context.Background(), os.Getenv("FCM_CREDENTIALS_FILE"), os.Getenv("APP_URL"))
	if err != nil {
		log.Printf("⚠️ Push notifications disabled: %v", err)
		messenger = notify.Disabled{}
	} else {
		messenger = fcm
	}

	var dedupe *redis.Client
	if addr := os.Getenv("REDIS_ADDR"); addr != "" {
		dedupe = redis.NewClient(&redis.Options{Addr: addr})
	}

	dispatcher := notify.NewDispatcher(gormDB, messenger, notify.Config{
		Topic:  os.Getenv("FCM_TOPIC"),
		AppURL: os.Getenv("APP_URL"),
		SMS:    notify.NewTwilioSenderFromEnv(),
		Redis:  dedupe,
	})

	// Create server instance
	newServer := New(db, dispatcher)

	// Configure Gin router
	router := newServer.RegisterRoutes()

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080" // local dev fallback
	}

	// Create HTTP server
	server := &http.Server{
		Addr:         "0.0.0.0:" + port,
		Handler:      router,
		IdleTimeout:  time.Minute,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	log.Printf("🚀 Server starting on port %s\n", port)

	return server
}

// RegisterRoutes sets up all application routes
func (s *Server) RegisterRoutes() *gin.Engine {
	r := gin.Default()

	// CORS configuration
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS", "PATCH"},
		AllowHeaders:     []string{"Accept", "Authorization", "Content-Type", "X-Requested-With"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * 3600,
	}))

	// Health check endpoint
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, s.db.Health())
	})

	// API routes
	api := r.Group("/api")
	{
		// Auth routes (public)
		api.POST("/auth/google", s.handler.Auth.GoogleLogin)
		api.POST("/login", s.handler.Auth.Login)

		// Cron trigger (shared-secret bearer token)
		api.POST("/cron/lunch-notify", middleware.CronAuth(os.Getenv("CRON_SECRET")), s.handler.Notify.CronNotify)

		// Protected routes (authentication required)
		protected := api.Group("")
		protected.Use(middleware.AuthMiddleware())
		{
			protected.GET("/me", s.handler.Auth.GetMe)

			// Voting
			protected.GET("/poll/today", s.handler.Vote.GetToday)
			protected.POST("/poll/vote", s.handler.Vote.Vote)
			protected.DELETE("/poll/vote", s.handler.Vote.Cancel)

			// Reports
			protected.GET("/reports/weekly", s.handler.Report.Weekly)

			// Push registration
			protected.POST("/fcm/subscribe", s.handler.Notify.Subscribe)
			protected.POST("/fcm/test", s.handler.Notify.TestPush)

			// Admin routes
			admin := protected.Group("/admin")
			admin.Use(middleware.AdminRequired(s.db.GetDB()))
			{
				admin.GET("/users", s.handler.Admin.ListUsers)
				admin.POST("/users", s.handler.Admin.CreateUser)
				admin.POST("/users/:uid/vote", s.handler.Admin.OverrideVote)
				admin.DELETE("/users/:uid/vote", s.handler.Admin.ClearVote)
			}
		}
	}

	return r
}
