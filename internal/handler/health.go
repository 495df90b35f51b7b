package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/scanview/frontend/internal/version"
)

func Ping(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "pong"})
}

func Healthz(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func Info(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"message": "scanview is running",
		"version": version.Version,
	})
}
