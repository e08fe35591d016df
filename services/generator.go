package services

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/quizwhiz/quizwhiz-backend/models"
)

const MaxQuestionsPerRequest = 50

// QuestionGenerator asks a TextGenerator for quiz questions. Identical
// concurrent requests share one model call.
type QuestionGenerator struct {
	model   TextGenerator
	retries int
	backoff time.Duration
	timeout time.Duration
	sf      singleflight.Group
}

func NewQuestionGenerator(model TextGenerator) *QuestionGenerator {
	return &QuestionGenerator{model: model, retries: 3, backoff: time.Second, timeout: 90 * time.Second}
}

// WithTimeout bounds one shared model call, independent of the callers waiting on it.
func (g *QuestionGenerator) WithTimeout(d time.Duration) *QuestionGenerator {
	g.timeout = d
	return g
}

// WithBackoff overrides the linear retry delay step.
func (g *QuestionGenerator) WithBackoff(d time.Duration) *QuestionGenerator {
	g.backoff = d
	return g
}

func (g *QuestionGenerator) Generate(ctx context.Context, topic string, difficulty models.Difficulty, count int) ([]models.Question, error) {
	if count > MaxQuestionsPerRequest {
		count = MaxQuestionsPerRequest
	}
	key := fmt.Sprintf("%s|%s|%d", strings.ToLower(strings.TrimSpace(topic)), difficulty, count)

	// The shared call outlives any single caller; each caller still gives
	// up on its own context.
	ch := g.sf.DoChan(key, func() (interface{}, error) {
		callCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), g.timeout)
		defer cancel()
		return g.generate(callCtx, topic, difficulty, count)
	})

	var res singleflight.Result
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res = <-ch:
	}
	if res.Err != nil {
		return nil, res.Err
	}
	questions := res.Val.([]models.Question)
	out := make([]models.Question, len(questions))
	copy(out, questions)
	return out, nil
}

func (g *QuestionGenerator) generate(ctx context.Context, topic string, difficulty models.Difficulty, count int) ([]models.Question, error) {
	prompt := BuildQuestionPrompt(topic, difficulty, count)

	var lastErr error
	for attempt := 0; attempt < g.retries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(time.Duration(attempt) * g.backoff):
			}
		}

		raw, err := g.model.GenerateText(ctx, prompt)
		if err != nil {
			lastErr = err
			log.Printf("question generation attempt %d failed: %v", attempt+1, err)
			continue
		}
		questions, err := ParseQuestions(raw)
		if err != nil {
			lastErr = err
			log.Printf("question generation attempt %d unparsable: %v", attempt+1, err)
			continue
		}
		if len(questions) > count {
			questions = questions[:count]
		}
		return questions, nil
	}
	return nil, fmt.Errorf("generate questions: %w", lastErr)
}
