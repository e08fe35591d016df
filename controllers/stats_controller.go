package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/quizwhiz/quizwhiz-backend/services"
)

// GetStats returns the dashboard summary. ?tz=Europe/Paris buckets days
// in that zone; unknown zones fall back to UTC.
func GetStats(c *gin.Context) {
	db := c.MustGet("db").(*gorm.DB)

	loc := time.UTC
	if tz := c.Query("tz"); tz != "" {
		if l, err := time.LoadLocation(tz); err == nil {
			loc = l
		}
	}

	results, err := loadResults(db, c.GetString("user_id"), false)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, services.ComputeStats(results, time.Now(), loc))
}
