package utils

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestStartCleanupJobRunsImmediatelyAndPeriodically(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var runs int32
	StartCleanupJob(ctx, "test", 10*time.Millisecond, func() { atomic.AddInt32(&runs, 1) })
	assert.EqualValues(t, 1, atomic.LoadInt32(&runs))

	assert.Eventually(t, func() bool { return atomic.LoadInt32(&runs) >= 3 }, time.Second, 5*time.Millisecond)
}

func TestStartCleanupJobStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	var runs int32
	StartCleanupJob(ctx, "test", 5*time.Millisecond, func() { atomic.AddInt32(&runs, 1) })
	cancel()
	time.Sleep(20 * time.Millisecond)
	settled := atomic.LoadInt32(&runs)
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, settled, atomic.LoadInt32(&runs))
}

func TestWelcomeEmailBodyEscapesName(t *testing.T) {
	body := WelcomeEmailBody("<b>Ann</b>")
	assert.Contains(t, body, "&lt;b&gt;Ann&lt;/b&gt;")
}
