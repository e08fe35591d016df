package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/quizwhiz/quizwhiz-backend/models"
	"github.com/quizwhiz/quizwhiz-backend/ws"
)

// Features records which optional services the server was started with.
type Features struct {
	Generator   bool `json:"generator"`
	Avatars     bool `json:"avatars"`
	RateLimit   bool `json:"rateLimit"`
	GoogleLogin bool `json:"googleLogin"`
}

// HealthCheck reports database reachability, stored results and the
// optional services. Quiz generation missing only degrades the status.
func HealthCheck(features Features) gin.HandlerFunc {
	return func(c *gin.Context) {
		db := c.MustGet("db").(*gorm.DB)

		status := "ok"
		if !features.Generator {
			status = "degraded"
		}
		response := gin.H{
			"status":    status,
			"timestamp": time.Now().Unix(),
			"db":        "ok",
			"features":  features,
			"websocket": ws.H.Stats(),
		}

		sqlDB, err := db.DB()
		if err == nil {
			err = sqlDB.PingContext(c.Request.Context())
		}
		if err != nil {
			response["db"] = "unreachable"
			response["status"] = "down"
			c.JSON(http.StatusServiceUnavailable, response)
			return
		}

		var results int64
		if err := db.Model(&models.Result{}).Count(&results).Error; err != nil {
			response["db"] = "error: results table unavailable"
			response["status"] = "down"
			c.JSON(http.StatusServiceUnavailable, response)
			return
		}
		response["results"] = results

		c.JSON(http.StatusOK, response)
	}
}
