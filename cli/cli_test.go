package cli

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quizwhiz/quizwhiz-backend/models"
	"github.com/quizwhiz/quizwhiz-backend/session"
	"github.com/quizwhiz/quizwhiz-backend/store"
)

type staticSource struct {
	questions []session.Question
	err       error
}

func (s staticSource) FetchQuestions(ctx context.Context, topic string, difficulty session.Difficulty, count int) ([]session.Question, error) {
	return s.questions, s.err
}

func mathQuestions() []session.Question {
	opts := []string{"A", "B", "C", "D"}
	return []session.Question{
		{ID: 1, Text: "1+1?", Options: opts, CorrectAnswer: "B"},
		{ID: 2, Text: "2+2?", Options: opts, CorrectAnswer: "A"},
		{ID: 3, Text: "3+3?", Options: opts, CorrectAnswer: "C"},
	}
}

func mathConfig() session.Config {
	return session.Config{
		Topic:         "Math",
		Difficulty:    session.DifficultyEasy,
		NumQuestions:  3,
		TimerType:     session.TimerIndividual,
		TimerDuration: 10,
	}
}

func TestPlayQuiz(t *testing.T) {
	ctrl := session.NewController(staticSource{questions: mathQuestions()}, store.NewMemory(), nil, session.Options{})
	// Q1 correct, Q2 skipped, Q3 wrong.
	in := strings.NewReader("b\n\n\nd\n\n")
	var out bytes.Buffer

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, playQuiz(ctx, ctrl, mathConfig(), in, &out))

	result, status, ok := ctrl.Result()
	require.True(t, ok)
	assert.Equal(t, 1, result.Score)
	assert.Equal(t, session.NotAnswered, result.Questions[1].UserAnswer)
	assert.Equal(t, "D", result.Questions[2].UserAnswer)
	assert.Equal(t, session.SubmitSkipped, status.Kind)

	text := out.String()
	assert.Contains(t, text, "Question 1/3")
	assert.Contains(t, text, "Question 3/3")
	assert.Contains(t, text, "Selected B) B")
	assert.Contains(t, text, "Score: 1/3 (33%)")
	assert.Contains(t, text, "log in to keep your history")
}

func TestPlayQuizInputClosedFinishes(t *testing.T) {
	ctrl := session.NewController(staticSource{questions: mathQuestions()}, store.NewMemory(), nil, session.Options{})
	var out bytes.Buffer

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, playQuiz(ctx, ctrl, mathConfig(), strings.NewReader("a\n"), &out))

	result, _, ok := ctrl.Result()
	require.True(t, ok)
	assert.Equal(t, 0, result.Score)
	assert.Equal(t, "A", result.Questions[0].UserAnswer)
	assert.Equal(t, session.NotAnswered, result.Questions[2].UserAnswer)
}

func TestPlayQuizReportsPlaceholderFallback(t *testing.T) {
	ctrl := session.NewController(staticSource{err: errors.New("offline")}, store.NewMemory(), nil, session.Options{})
	var out bytes.Buffer

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, playQuiz(ctx, ctrl, mathConfig(), strings.NewReader("q\n"), &out))

	assert.Contains(t, out.String(), "using placeholder questions")
	assert.Contains(t, out.String(), "Question 1: What is the answer?")
}

func TestPlayQuizReturnsOnCancelWhileInputBlocks(t *testing.T) {
	ctrl := session.NewController(staticSource{questions: mathQuestions()}, store.NewMemory(), nil, session.Options{})
	pr, pw := io.Pipe()
	defer pw.Close()

	ctx, cancel := context.WithCancel(context.Background())
	errc := make(chan error, 1)
	go func() { errc <- playQuiz(ctx, ctrl, mathConfig(), pr, &bytes.Buffer{}) }()
	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-errc:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("playQuiz did not return after cancel")
	}
}

func TestReadLinesStopsAfterCancel(t *testing.T) {
	pr, pw := io.Pipe()
	ctx, cancel := context.WithCancel(context.Background())
	lines := readLines(ctx, pr)
	cancel()

	go func() {
		pw.Write([]byte("a\n"))
		pw.Close()
	}()

	closed := make(chan struct{})
	go func() {
		for range lines {
		}
		close(closed)
	}()
	select {
	case <-closed:
	case <-time.After(2 * time.Second):
		t.Fatal("line reader did not exit")
	}
}

func TestPlayQuizRejectsInvalidConfig(t *testing.T) {
	ctrl := session.NewController(staticSource{questions: mathQuestions()}, store.NewMemory(), nil, session.Options{})
	cfg := mathConfig()
	cfg.NumQuestions = 0
	err := playQuiz(context.Background(), ctrl, cfg, strings.NewReader(""), &bytes.Buffer{})
	assert.ErrorIs(t, err, session.ErrInvalidConfig)
}

func TestOptionIndex(t *testing.T) {
	assert.Equal(t, 0, optionIndex("a"))
	assert.Equal(t, 3, optionIndex("d"))
	assert.Equal(t, 1, optionIndex("2"))
	assert.Equal(t, -1, optionIndex("e"))
	assert.Equal(t, -1, optionIndex("ab"))
}

func TestApplyPlayFlags(t *testing.T) {
	cmd := &cobra.Command{Use: "play"}
	pf := &playFlags{}
	bindPlayFlags(cmd, pf)
	require.NoError(t, cmd.Flags().Parse([]string{"--topic", "Space", "--timer", "Collective", "--duration", "2"}))

	saved := mathConfig()
	cfg := applyPlayFlags(cmd, saved, pf)
	assert.Equal(t, "Space", cfg.Topic)
	assert.Equal(t, session.TimerCollective, cfg.TimerType)
	assert.Equal(t, 2, cfg.TimerDuration)
	assert.Equal(t, saved.NumQuestions, cfg.NumQuestions, "unset flags keep restored values")
	assert.Equal(t, saved.Difficulty, cfg.Difficulty)
}

func TestRenderResults(t *testing.T) {
	var out bytes.Buffer
	renderResults(&out, nil)
	assert.Contains(t, out.String(), "No results yet")

	out.Reset()
	renderResults(&out, []models.Result{{
		Date: time.Now(), Topic: "Math", Difficulty: models.DifficultyEasy,
		Score: 2, TotalQuestions: 4, Percentage: 50, TimeTaken: 75,
	}})
	assert.Contains(t, out.String(), "2/4 (50%)")
	assert.Contains(t, out.String(), "1:15")
}

func TestRootCommandRegistersSubcommands(t *testing.T) {
	root := newRootCmd()
	names := map[string]bool{}
	for _, c := range root.Commands() {
		names[c.Name()] = true
	}
	for _, want := range []string{"serve", "migrate", "signup", "login", "logout", "play", "results"} {
		assert.True(t, names[want], want)
	}
}

func TestLogoutClearsStoredToken(t *testing.T) {
	path := t.TempDir() + "/state.yaml"
	flags := &globalFlags{statePath: path}
	ctx := context.Background()
	require.NoError(t, saveToken(ctx, flags, "tok"))

	cmd := newLogoutCmd(flags)
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetContext(ctx)
	require.NoError(t, cmd.RunE(cmd, nil))

	token, err := store.NewFile(path).Token(ctx)
	require.NoError(t, err)
	assert.Empty(t, token)
	assert.Contains(t, out.String(), "Logged out")
}
