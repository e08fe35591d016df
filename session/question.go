package session

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// OptionsPerQuestion is the fixed number of choices every question carries.
const OptionsPerQuestion = 4

type Question struct {
	ID            int      `json:"id" yaml:"id"`
	Text          string   `json:"text" yaml:"text"`
	Options       []string `json:"options" yaml:"options"`
	CorrectAnswer string   `json:"correctAnswer" yaml:"correctAnswer"`
}

// WellFormed reports whether q has text, four options and a correct answer
// that is one of them.
func (q Question) WellFormed() bool {
	if strings.TrimSpace(q.Text) == "" || len(q.Options) != OptionsPerQuestion {
		return false
	}
	for _, opt := range q.Options {
		if opt == q.CorrectAnswer {
			return true
		}
	}
	return false
}

// QuestionSource produces questions for a topic, usually by asking the backend.
type QuestionSource interface {
	FetchQuestions(ctx context.Context, topic string, difficulty Difficulty, count int) ([]Question, error)
}

// ResultSubmitter persists a finished result under the given token.
type ResultSubmitter interface {
	SubmitResult(ctx context.Context, token string, result Result) error
}

// Store is the client-local persistent state shared across sessions.
type Store interface {
	LastConfig(ctx context.Context) (Config, bool, error)
	SaveLastConfig(ctx context.Context, cfg Config) error
	CachedQuestions(ctx context.Context, key string) ([]Question, error)
	SaveQuestions(ctx context.Context, key string, questions []Question) error
	Token(ctx context.Context) (string, error)
	SaveToken(ctx context.Context, token string) error
	ClearToken(ctx context.Context) error
}

// Placeholders synthesizes n generic questions so a session can proceed
// without any source.
func Placeholders(n int) []Question {
	out := make([]Question, 0, n)
	for i := 1; i <= n; i++ {
		out = append(out, placeholder(i))
	}
	return out
}

func placeholder(id int) Question {
	return Question{
		ID:            id,
		Text:          fmt.Sprintf("Question %d: What is the answer?", id),
		Options:       []string{"Option 1", "Option 2", "Option 3", "Option 4"},
		CorrectAnswer: "Option 1",
	}
}

func wellFormed(questions []Question) []Question {
	out := make([]Question, 0, len(questions))
	for _, q := range questions {
		if q.WellFormed() {
			out = append(out, q)
		}
	}
	return out
}

// fit truncates or pads questions to exactly n and renumbers them.
// It returns how many placeholders were appended.
func fit(questions []Question, n int) ([]Question, int) {
	if len(questions) > n {
		questions = questions[:n]
	}
	out := make([]Question, n)
	copy(out, questions)
	padded := 0
	for i := len(questions); i < n; i++ {
		out[i] = placeholder(i + 1)
		padded++
	}
	for i := range out {
		out[i].ID = i + 1
		out[i].Options = append([]string(nil), out[i].Options...)
	}
	return out, padded
}

// OutcomeKind tells where the questions of a session came from.
type OutcomeKind int

const (
	OutcomeFetched OutcomeKind = iota
	OutcomeCached
	OutcomePlaceholder
)

func (k OutcomeKind) String() string {
	switch k {
	case OutcomeFetched:
		return "fetched"
	case OutcomeCached:
		return "cached"
	case OutcomePlaceholder:
		return "placeholder"
	}
	return "unknown"
}

// Outcome describes how Configure obtained its questions. Reason is set
// whenever a fallback tier was used.
type Outcome struct {
	Kind   OutcomeKind
	Reason error
	Padded int
}

func (o Outcome) FallbackUsed() bool {
	return o.Kind != OutcomeFetched || o.Padded > 0
}

const defaultFetchTimeout = 30 * time.Second
