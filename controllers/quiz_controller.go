package controllers

import (
	"context"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/quizwhiz/quizwhiz-backend/models"
	"github.com/quizwhiz/quizwhiz-backend/services"
)

const defaultQuestionCount = 10

type QuestionGenerator interface {
	Generate(ctx context.Context, topic string, difficulty models.Difficulty, count int) ([]models.Question, error)
}

type GenerateQuizInput struct {
	Topic      string            `json:"topic" binding:"required"`
	Difficulty models.Difficulty `json:"difficulty"`
	Count      int               `json:"count"`
}

// GenerateQuiz asks the model for a validated question set.
func GenerateQuiz(gen QuestionGenerator) gin.HandlerFunc {
	return func(c *gin.Context) {
		if gen == nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Question generation is not configured"})
			return
		}

		var input GenerateQuizInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		input.Topic = services.CleanTopic(input.Topic)
		if input.Topic == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "topic is required"})
			return
		}
		if input.Difficulty == "" {
			input.Difficulty = models.DifficultyEasy
		}
		if !input.Difficulty.Valid() {
			c.JSON(http.StatusBadRequest, gin.H{"error": "difficulty must be easy, medium or hard"})
			return
		}
		if input.Count == 0 {
			input.Count = defaultQuestionCount
		}
		if input.Count < 0 || input.Count > services.MaxQuestionsPerRequest {
			c.JSON(http.StatusBadRequest, gin.H{"error": "count must be between 1 and 50"})
			return
		}

		questions, err := gen.Generate(c.Request.Context(), input.Topic, input.Difficulty, input.Count)
		if err != nil {
			log.Printf("generate %d %s questions on %q: %v", input.Count, input.Difficulty, input.Topic, err)
			c.JSON(http.StatusBadGateway, gin.H{"error": "Failed to generate questions"})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"topic":      input.Topic,
			"difficulty": input.Difficulty,
			"questions":  questions,
		})
	}
}
