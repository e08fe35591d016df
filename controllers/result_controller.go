package controllers

import (
	"log"
	"math"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/quizwhiz/quizwhiz-backend/models"
	"github.com/quizwhiz/quizwhiz-backend/ws"
)

type ResultQuestionInput struct {
	QuestionText  string   `json:"questionText"`
	Options       []string `json:"options"`
	CorrectAnswer string   `json:"correctAnswer"`
	UserAnswer    string   `json:"userAnswer"`
	IsCorrect     bool     `json:"isCorrect"`
}

type SaveResultInput struct {
	Date           *time.Time            `json:"date"`
	Topic          string                `json:"topic" binding:"required"`
	Difficulty     models.Difficulty     `json:"difficulty" binding:"required"`
	TimeTaken      float64               `json:"timeTaken" binding:"gte=0"`
	Score          *int                  `json:"score" binding:"required"`
	TotalQuestions int                   `json:"totalQuestions" binding:"required,gt=0"`
	Questions      []ResultQuestionInput `json:"questions"`
}

func percentage(score, total int) int {
	if total <= 0 {
		return 0
	}
	return int(math.Round(float64(score) / float64(total) * 100))
}

func SaveQuizResults(c *gin.Context) {
	db := c.MustGet("db").(*gorm.DB)
	userID, err := uuid.Parse(c.GetString("user_id"))
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid user id"})
		return
	}

	var input SaveResultInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if !input.Difficulty.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "difficulty must be easy, medium or hard"})
		return
	}
	if *input.Score < 0 || *input.Score > input.TotalQuestions {
		c.JSON(http.StatusBadRequest, gin.H{"error": "score must be between 0 and totalQuestions"})
		return
	}
	if len(input.Questions) > 0 && len(input.Questions) != input.TotalQuestions {
		c.JSON(http.StatusBadRequest, gin.H{"error": "questions must list every question of the quiz"})
		return
	}

	date := time.Now()
	if input.Date != nil && !input.Date.IsZero() {
		date = *input.Date
	}

	result := models.Result{
		UserID:         userID,
		Date:           date,
		Topic:          strings.TrimSpace(input.Topic),
		Difficulty:     input.Difficulty,
		TimeTaken:      input.TimeTaken,
		Score:          *input.Score,
		TotalQuestions: input.TotalQuestions,
		Percentage:     percentage(*input.Score, input.TotalQuestions),
	}
	for i, q := range input.Questions {
		result.Questions = append(result.Questions, models.ResultQuestion{
			Position:      i,
			QuestionText:  q.QuestionText,
			Options:       q.Options,
			CorrectAnswer: q.CorrectAnswer,
			UserAnswer:    q.UserAnswer,
			IsCorrect:     q.IsCorrect,
		})
	}

	if err := db.Create(&result).Error; err != nil {
		log.Printf("save result for %s: %v", userID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error saving results"})
		return
	}

	ws.NotifyResultSaved(userID.String(), result)
	c.JSON(http.StatusCreated, gin.H{
		"message": "Results saved successfully",
		"result":  result,
	})
}

func loadResults(db *gorm.DB, userID string, withQuestions bool) ([]models.Result, error) {
	q := db.Where("user_id = ?", userID).Order("date DESC")
	if withQuestions {
		q = q.Preload("Questions", func(tx *gorm.DB) *gorm.DB {
			return tx.Order("position ASC")
		})
	}
	results := []models.Result{}
	err := q.Find(&results).Error
	return results, err
}

func GetUserResults(c *gin.Context) {
	db := c.MustGet("db").(*gorm.DB)

	results, err := loadResults(db, c.GetString("user_id"), true)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, results)
}

// deleteResultsOf removes a user's results and their question rows.
func deleteResultsOf(tx *gorm.DB, userID string) (int64, error) {
	ids := tx.Model(&models.Result{}).Select("id").Where("user_id = ?", userID)
	if err := tx.Where("result_id IN (?)", ids).Delete(&models.ResultQuestion{}).Error; err != nil {
		return 0, err
	}
	res := tx.Where("user_id = ?", userID).Delete(&models.Result{})
	return res.RowsAffected, res.Error
}

func ClearUserResults(c *gin.Context) {
	db := c.MustGet("db").(*gorm.DB)
	userID := c.GetString("user_id")

	var removed int64
	err := db.Transaction(func(tx *gorm.DB) error {
		n, err := deleteResultsOf(tx, userID)
		removed = n
		return err
	})
	if err != nil {
		log.Printf("clear results for %s: %v", userID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error clearing results"})
		return
	}

	ws.NotifyResultsCleared(userID, removed)
	c.JSON(http.StatusOK, gin.H{"message": "Results cleared", "removed": removed})
}
