package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/roomgate-dev/roomgate/internal/types"
)

func HealthCheck(c *gin.Context) {
	c.JSON(200, gin.H{
		"status":  "healthy",
		"service": types.ServiceName,
	})
}
