package session

import (
	"fmt"
	"strings"

	"github.com/gosimple/slug"
)

type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

func (d Difficulty) Valid() bool {
	switch d {
	case DifficultyEasy, DifficultyMedium, DifficultyHard:
		return true
	}
	return false
}

// TimerMode selects which countdown drives a session.
type TimerMode string

const (
	// TimerIndividual counts TimerDuration seconds per question.
	TimerIndividual TimerMode = "individual"
	// TimerCollective counts TimerDuration minutes for the whole quiz.
	TimerCollective TimerMode = "collective"
)

func (m TimerMode) Valid() bool {
	return m == TimerIndividual || m == TimerCollective
}

// MaxQuestions matches the largest set the question service generates.
const MaxQuestions = 50

type Config struct {
	Topic         string     `json:"topic" yaml:"topic"`
	Difficulty    Difficulty `json:"difficulty" yaml:"difficulty"`
	NumQuestions  int        `json:"numQuestions" yaml:"numQuestions"`
	TimerType     TimerMode  `json:"timerType" yaml:"timerType"`
	TimerDuration int        `json:"timerDuration" yaml:"timerDuration"`
}

// DefaultConfig is the configuration offered before anything was saved.
func DefaultConfig() Config {
	return Config{
		Difficulty:    DifficultyEasy,
		NumQuestions:  5,
		TimerType:     TimerIndividual,
		TimerDuration: 10,
	}
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.Topic) == "" {
		return fmt.Errorf("%w: topic is required", ErrInvalidConfig)
	}
	if !c.Difficulty.Valid() {
		return fmt.Errorf("%w: unknown difficulty %q", ErrInvalidConfig, c.Difficulty)
	}
	if c.NumQuestions <= 0 {
		return fmt.Errorf("%w: question count must be positive", ErrInvalidConfig)
	}
	if c.NumQuestions > MaxQuestions {
		return fmt.Errorf("%w: at most %d questions per quiz", ErrInvalidConfig, MaxQuestions)
	}
	if !c.TimerType.Valid() {
		return fmt.Errorf("%w: unknown timer type %q", ErrInvalidConfig, c.TimerType)
	}
	if c.TimerDuration <= 0 {
		return fmt.Errorf("%w: timer duration must be positive", ErrInvalidConfig)
	}
	return nil
}

// WithSaved restores the last-used topic, difficulty and question count.
// Timer settings are never restored.
func (c Config) WithSaved(saved Config) Config {
	if saved.Topic != "" {
		c.Topic = saved.Topic
	}
	if saved.Difficulty.Valid() {
		c.Difficulty = saved.Difficulty
	}
	if saved.NumQuestions > 0 {
		c.NumQuestions = saved.NumQuestions
	}
	return c
}

// QuestionSeconds is the per-question countdown in individual mode.
func (c Config) QuestionSeconds() int {
	if c.TimerType == TimerIndividual {
		return c.TimerDuration
	}
	return 0
}

// TotalSeconds is the whole-quiz budget shown to the player.
func (c Config) TotalSeconds() int {
	if c.TimerType == TimerCollective {
		return c.TimerDuration * 60
	}
	return c.TimerDuration * c.NumQuestions
}

// CacheKey identifies cached question sets for a topic and difficulty.
func CacheKey(topic string, difficulty Difficulty) string {
	return slug.Make(topic) + "|" + string(difficulty)
}
