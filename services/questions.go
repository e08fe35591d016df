package services

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/quizwhiz/quizwhiz-backend/models"
)

var (
	ErrNotAnArray       = errors.New("model output is not a JSON array")
	ErrNoValidQuestions = errors.New("model output contains no valid questions")
)

// BuildQuestionPrompt renders the instruction sent to the model.
func BuildQuestionPrompt(topic string, difficulty models.Difficulty, count int) string {
	return fmt.Sprintf(`Generate %d multiple-choice questions (MCQs) with difficulty level "%s" on the topic "%s".
Each question must have exactly 4 options and correctAnswer must repeat one of the options word for word.
Return JSON only in the format:
[
  {
    "id": 1,
    "text": "Question text?",
    "options": ["Option 1", "Option 2", "Option 3", "Option 4"],
    "correctAnswer": "Option X"
  }
]`, count, difficulty, topic)
}

var reCodeFence = regexp.MustCompile("```(?:json|JSON)?")

// StripCodeFence removes Markdown code fences the model tends to wrap JSON in.
func StripCodeFence(raw string) string {
	return strings.TrimSpace(reCodeFence.ReplaceAllString(raw, ""))
}

type rawQuestion struct {
	ID            json.RawMessage `json:"id"`
	Text          string          `json:"text"`
	Question      string          `json:"question"`
	Options       []string        `json:"options"`
	CorrectAnswer json.RawMessage `json:"correctAnswer"`
}

// ParseQuestions decodes model output into questions. Items are repaired
// where the intent is unambiguous (whitespace, answer casing, answer given
// as a letter or 1-based index) and dropped otherwise. Ids are renumbered.
func ParseQuestions(raw string) ([]models.Question, error) {
	clean := StripCodeFence(raw)
	if start, end := strings.Index(clean, "["), strings.LastIndex(clean, "]"); start >= 0 && end > start {
		clean = clean[start : end+1]
	}

	var items []rawQuestion
	if err := json.Unmarshal([]byte(clean), &items); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotAnArray, err)
	}

	out := make([]models.Question, 0, len(items))
	for _, item := range items {
		q, ok := repairQuestion(item)
		if !ok {
			continue
		}
		q.ID = len(out) + 1
		out = append(out, q)
	}
	if len(out) == 0 {
		return nil, ErrNoValidQuestions
	}
	return out, nil
}

func repairQuestion(item rawQuestion) (models.Question, bool) {
	text := strings.TrimSpace(item.Text)
	if text == "" {
		text = strings.TrimSpace(item.Question)
	}
	if text == "" || len(item.Options) != 4 {
		return models.Question{}, false
	}

	options := make([]string, len(item.Options))
	for i, opt := range item.Options {
		options[i] = strings.TrimSpace(opt)
		if options[i] == "" {
			return models.Question{}, false
		}
	}

	answer, ok := resolveAnswer(item.CorrectAnswer, options)
	if !ok {
		return models.Question{}, false
	}
	return models.Question{Text: text, Options: options, CorrectAnswer: answer}, true
}

func resolveAnswer(raw json.RawMessage, options []string) (string, bool) {
	var answer string
	if err := json.Unmarshal(raw, &answer); err != nil {
		var idx int
		if err := json.Unmarshal(raw, &idx); err != nil {
			return "", false
		}
		answer = strconv.Itoa(idx)
	}
	answer = strings.TrimSpace(answer)
	if answer == "" {
		return "", false
	}

	for _, opt := range options {
		if opt == answer {
			return opt, true
		}
	}
	for _, opt := range options {
		if strings.EqualFold(opt, answer) {
			return opt, true
		}
	}
	if len(answer) == 1 && !optionsLookLikeKeys(options) {
		switch c := strings.ToUpper(answer)[0]; {
		case c >= 'A' && c <= 'D':
			return options[c-'A'], true
		case c >= '1' && c <= '4':
			return options[c-'1'], true
		}
	}
	// Answers like "B) Paris".
	if m := reAnswerPrefix.FindStringSubmatch(answer); m != nil {
		rest := strings.TrimSpace(m[2])
		for _, opt := range options {
			if strings.EqualFold(opt, rest) {
				return opt, true
			}
		}
	}
	return "", false
}

var reAnswerPrefix = regexp.MustCompile(`(?i)^([A-D])[).:]\s*(.+)$`)

// optionsLookLikeKeys reports whether an option could itself be read as a
// letter or index, in which case a one-character answer is ambiguous.
func optionsLookLikeKeys(options []string) bool {
	for _, opt := range options {
		if len([]rune(opt)) == 1 {
			return true
		}
		if _, err := strconv.ParseFloat(opt, 64); err == nil {
			return true
		}
	}
	return false
}
