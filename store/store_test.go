package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quizwhiz/quizwhiz-backend/session"
)

var _ session.Store = (*Memory)(nil)
var _ session.Store = (*File)(nil)
var _ session.Store = (*Redis)(nil)

func exerciseStore(t *testing.T, s session.Store) {
	t.Helper()
	ctx := context.Background()

	_, ok, err := s.LastConfig(ctx)
	require.NoError(t, err)
	assert.False(t, ok, "fresh store should have no config")

	cfg := session.Config{
		Topic:         "Go channels",
		Difficulty:    session.DifficultyHard,
		NumQuestions:  7,
		TimerType:     session.TimerCollective,
		TimerDuration: 3,
	}
	require.NoError(t, s.SaveLastConfig(ctx, cfg))
	got, ok, err := s.LastConfig(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, cfg, got)

	key := session.CacheKey(cfg.Topic, cfg.Difficulty)
	cached, err := s.CachedQuestions(ctx, key)
	require.NoError(t, err)
	assert.Empty(t, cached)

	questions := session.Placeholders(2)
	require.NoError(t, s.SaveQuestions(ctx, key, questions))
	cached, err = s.CachedQuestions(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, questions, cached)

	other, err := s.CachedQuestions(ctx, session.CacheKey(cfg.Topic, session.DifficultyEasy))
	require.NoError(t, err)
	assert.Empty(t, other)

	token, err := s.Token(ctx)
	require.NoError(t, err)
	assert.Empty(t, token)

	require.NoError(t, s.SaveToken(ctx, "tok-123"))
	token, err = s.Token(ctx)
	require.NoError(t, err)
	assert.Equal(t, "tok-123", token)

	require.NoError(t, s.ClearToken(ctx))
	token, err = s.Token(ctx)
	require.NoError(t, err)
	assert.Empty(t, token)
}

func TestMemoryStore(t *testing.T) {
	exerciseStore(t, NewMemory())
}

func TestMemoryStoreReturnsCopies(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	questions := session.Placeholders(1)
	require.NoError(t, m.SaveQuestions(ctx, "k", questions))

	questions[0].Options[0] = "mutated"
	cached, err := m.CachedQuestions(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "Option 1", cached[0].Options[0])
}

func TestFileStore(t *testing.T) {
	exerciseStore(t, NewFile(filepath.Join(t.TempDir(), "nested", "state.yaml")))
}

func TestFileStoreSurvivesReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "state.yaml")

	require.NoError(t, NewFile(path).SaveToken(ctx, "persisted"))

	token, err := NewFile(path).Token(ctx)
	require.NoError(t, err)
	assert.Equal(t, "persisted", token)
}

func newMiniRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	t.Cleanup(mr.Close)
	return mr, redis.NewClient(&redis.Options{Addr: mr.Addr()})
}

func TestRedisStore(t *testing.T) {
	_, client := newMiniRedis(t)
	exerciseStore(t, NewRedis(client, "alice", time.Hour))
}

func TestRedisStoreQuestionTTL(t *testing.T) {
	mr, client := newMiniRedis(t)
	s := NewRedis(client, "", time.Minute)
	ctx := context.Background()

	require.NoError(t, s.SaveQuestions(ctx, "math|easy", session.Placeholders(1)))
	if !mr.Exists("quizwhiz:default:questions:math|easy") {
		t.Fatalf("expected question key under default profile")
	}

	mr.FastForward(2 * time.Minute)
	cached, err := s.CachedQuestions(ctx, "math|easy")
	require.NoError(t, err)
	assert.Empty(t, cached)
}
