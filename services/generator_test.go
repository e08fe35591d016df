package services

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quizwhiz/quizwhiz-backend/models"
)

type scriptedModel struct {
	calls   int32
	replies []string
	errs    []error
	gate    chan struct{}
}

func (m *scriptedModel) GenerateText(ctx context.Context, prompt string) (string, error) {
	n := int(atomic.AddInt32(&m.calls, 1)) - 1
	if m.gate != nil {
		<-m.gate
	}
	if n < len(m.errs) && m.errs[n] != nil {
		return "", m.errs[n]
	}
	if n < len(m.replies) {
		return m.replies[n], nil
	}
	return m.replies[len(m.replies)-1], nil
}

const twoQuestions = `[
	{"id":1,"text":"a?","options":["1","2","3","4"],"correctAnswer":"1"},
	{"id":2,"text":"b?","options":["1","2","3","4"],"correctAnswer":"2"}
]`

func TestGeneratorRetriesUntilParsable(t *testing.T) {
	model := &scriptedModel{
		replies: []string{"", "not json", twoQuestions},
		errs:    []error{errors.New("quota exceeded")},
	}
	gen := NewQuestionGenerator(model).WithBackoff(time.Millisecond)

	questions, err := gen.Generate(context.Background(), "Numbers", models.DifficultyEasy, 2)
	require.NoError(t, err)
	assert.Len(t, questions, 2)
	assert.EqualValues(t, 3, atomic.LoadInt32(&model.calls))
}

func TestGeneratorGivesUpAfterRetries(t *testing.T) {
	model := &scriptedModel{replies: []string{"nope"}}
	gen := NewQuestionGenerator(model).WithBackoff(time.Millisecond)

	_, err := gen.Generate(context.Background(), "Numbers", models.DifficultyEasy, 2)
	assert.ErrorIs(t, err, ErrNotAnArray)
	assert.EqualValues(t, 3, atomic.LoadInt32(&model.calls))
}

func TestGeneratorTruncatesToCount(t *testing.T) {
	model := &scriptedModel{replies: []string{twoQuestions}}
	gen := NewQuestionGenerator(model)

	questions, err := gen.Generate(context.Background(), "Numbers", models.DifficultyEasy, 1)
	require.NoError(t, err)
	assert.Len(t, questions, 1)
}

func TestGeneratorSharesConcurrentIdenticalRequests(t *testing.T) {
	model := &scriptedModel{replies: []string{twoQuestions}, gate: make(chan struct{})}
	gen := NewQuestionGenerator(model)

	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			questions, err := gen.Generate(context.Background(), "Numbers", models.DifficultyEasy, 2)
			assert.NoError(t, err)
			assert.Len(t, questions, 2)
		}()
	}
	// Let every caller reach the singleflight group before the model answers.
	time.Sleep(50 * time.Millisecond)
	close(model.gate)
	wg.Wait()

	assert.EqualValues(t, 1, atomic.LoadInt32(&model.calls))
}

func TestGeneratorLeaderCancellationDoesNotFailFollowers(t *testing.T) {
	model := &scriptedModel{replies: []string{twoQuestions}, gate: make(chan struct{})}
	gen := NewQuestionGenerator(model)

	leaderCtx, cancelLeader := context.WithCancel(context.Background())
	leaderErr := make(chan error, 1)
	go func() {
		_, err := gen.Generate(leaderCtx, "Numbers", models.DifficultyEasy, 2)
		leaderErr <- err
	}()
	time.Sleep(20 * time.Millisecond)

	type outcome struct {
		questions []models.Question
		err       error
	}
	follower := make(chan outcome, 1)
	go func() {
		questions, err := gen.Generate(context.Background(), "Numbers", models.DifficultyEasy, 2)
		follower <- outcome{questions, err}
	}()
	time.Sleep(20 * time.Millisecond)

	cancelLeader()
	assert.ErrorIs(t, <-leaderErr, context.Canceled)

	close(model.gate)
	got := <-follower
	require.NoError(t, got.err)
	assert.Len(t, got.questions, 2)
	assert.EqualValues(t, 1, atomic.LoadInt32(&model.calls))
}

func TestGeneratorSharedCallHonoursTimeout(t *testing.T) {
	model := &blockingModel{}
	gen := NewQuestionGenerator(model).WithTimeout(20 * time.Millisecond).WithBackoff(time.Millisecond)
	gen.retries = 1

	_, err := gen.Generate(context.Background(), "Numbers", models.DifficultyEasy, 2)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

type blockingModel struct{}

func (blockingModel) GenerateText(ctx context.Context, prompt string) (string, error) {
	<-ctx.Done()
	return "", ctx.Err()
}
