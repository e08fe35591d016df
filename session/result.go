package session

import (
	"math"
	"time"
)

// NotAnswered is recorded as the user answer of a skipped question.
const NotAnswered = "Not answered"

type Result struct {
	Date           time.Time      `json:"date"`
	Topic          string         `json:"topic"`
	Difficulty     Difficulty     `json:"difficulty"`
	TimeTaken      float64        `json:"timeTaken"`
	Score          int            `json:"score"`
	TotalQuestions int            `json:"totalQuestions"`
	Percentage     int            `json:"percentage"`
	Questions      []AnswerDetail `json:"questions"`
}

type AnswerDetail struct {
	QuestionText  string   `json:"questionText"`
	Options       []string `json:"options"`
	CorrectAnswer string   `json:"correctAnswer"`
	UserAnswer    string   `json:"userAnswer"`
	IsCorrect     bool     `json:"isCorrect"`
}

// Feedback is the one-line verdict shown next to a percentage.
func Feedback(percentage int) string {
	switch {
	case percentage >= 90:
		return "Excellent!"
	case percentage >= 70:
		return "Great job!"
	case percentage >= 50:
		return "Good effort!"
	}
	return "Keep practicing!"
}

// Percentage rounds score/total to a whole percent.
func Percentage(score, total int) int {
	if total <= 0 {
		return 0
	}
	return int(math.Round(float64(score) / float64(total) * 100))
}

// Score counts answers equal to the correct answer. Unanswered slots never count.
func Score(questions []Question, answers []string, answered []bool) int {
	score := 0
	for i, q := range questions {
		if i < len(answered) && answered[i] && answers[i] == q.CorrectAnswer {
			score++
		}
	}
	return score
}

func buildResult(cfg Config, questions []Question, answers []string, answered []bool, started, finished time.Time) Result {
	details := make([]AnswerDetail, 0, len(questions))
	for i, q := range questions {
		userAnswer := NotAnswered
		correct := false
		if answered[i] {
			userAnswer = answers[i]
			correct = answers[i] == q.CorrectAnswer
		}
		details = append(details, AnswerDetail{
			QuestionText:  q.Text,
			Options:       append([]string(nil), q.Options...),
			CorrectAnswer: q.CorrectAnswer,
			UserAnswer:    userAnswer,
			IsCorrect:     correct,
		})
	}

	score := Score(questions, answers, answered)
	return Result{
		Date:           finished.UTC(),
		Topic:          cfg.Topic,
		Difficulty:     cfg.Difficulty,
		TimeTaken:      finished.Sub(started).Seconds(),
		Score:          score,
		TotalQuestions: len(questions),
		Percentage:     Percentage(score, len(questions)),
		Questions:      details,
	}
}

// SubmitKind records what happened to a result after the session finished.
type SubmitKind int

const (
	SubmitSaved SubmitKind = iota
	// SubmitSkipped means no token was available, so nothing was sent.
	SubmitSkipped
	SubmitFailed
)

type SubmitStatus struct {
	Kind SubmitKind
	Err  error
}

func (s SubmitStatus) String() string {
	switch s.Kind {
	case SubmitSaved:
		return "saved"
	case SubmitSkipped:
		return "not signed in, results won't be saved"
	case SubmitFailed:
		if s.Err == nil {
			return "save failed"
		}
		return "save failed: " + s.Err.Error()
	}
	return "unknown"
}
