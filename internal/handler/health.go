package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/MohiniChauhan09/Task-Management-System/backend/internal/model"
)

// Health godoc
// @Summary Health check
// @Description Uptime is in seconds since process start.
// @Tags health
// @Produce json
// @Success 200 {object} model.HealthResponse
// @Router /api/health [get]
func Health(startedAt time.Time) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, model.HealthResponse{
			Status: "ok",
			Uptime: time.Since(startedAt).Seconds(),
		})
	}
}
