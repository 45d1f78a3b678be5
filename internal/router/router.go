package router

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/roomgate-dev/roomgate/internal/handlers"
	"github.com/roomgate-dev/roomgate/internal/middleware"
	"github.com/roomgate-dev/roomgate/internal/types"
)

// NewRouter assembles the HTTP surface. extra middleware (e.g. the Redis rate
// limiter) is applied globally when provided.
func NewRouter(roomHandler *handlers.RoomHandler, extra ...gin.HandlerFunc) *gin.Engine {
	r := gin.Default()

	r.Use(cors.New(cors.Config{
		AllowOrigins:     types.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Length", "Content-Type", "Authorization", "Accept", "X-Requested-With"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	for _, mw := range extra {
		r.Use(mw)
	}

	r.GET("/health", handlers.HealthCheck)

	auth := r.Group("/auth")
	{
		auth.POST("/register", handlers.Register)
		auth.POST("/login", handlers.Login)
		auth.GET("/me", middleware.AuthMiddleware(), handlers.Me)
	}

	rooms := r.Group("/rooms", middleware.AuthMiddleware())
	{
		rooms.POST("", roomHandler.Create)
		rooms.GET("", roomHandler.List)
		rooms.GET("/:id", roomHandler.Get)
		rooms.POST("/:id/join", roomHandler.Join)
		rooms.POST("/:id/leave", roomHandler.Leave)
		rooms.DELETE("/:id", roomHandler.Delete)
	}

	return r
}
