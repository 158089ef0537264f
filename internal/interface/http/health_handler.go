package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/shenase/shenase/pkg/response"
)

// Health GET /api/health
func Health(c *gin.Context) {
	response.OK(c, http.StatusOK, gin.H{"status": "ok"}, "")
}
