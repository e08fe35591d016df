package store

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/quizwhiz/quizwhiz-backend/session"
	"github.com/redis/go-redis/v9"
)

// Redis keeps client state under quizwhiz:<profile>:*, so several terminals
// logged into the same profile share their last config and question cache.
// Cached question sets expire after ttl; a zero ttl keeps them forever.
type Redis struct {
	client  *redis.Client
	profile string
	ttl     time.Duration
}

func NewRedis(client *redis.Client, profile string, ttl time.Duration) *Redis {
	if profile == "" {
		profile = "default"
	}
	return &Redis{client: client, profile: profile, ttl: ttl}
}

func (r *Redis) key(parts ...string) string {
	k := "quizwhiz:" + r.profile
	for _, p := range parts {
		k += ":" + p
	}
	return k
}

func (r *Redis) LastConfig(ctx context.Context) (session.Config, bool, error) {
	var cfg session.Config
	raw, err := r.client.Get(ctx, r.key("config")).Bytes()
	if errors.Is(err, redis.Nil) {
		return cfg, false, nil
	}
	if err != nil {
		return cfg, false, err
	}
	if err := json.Unmarshal(raw, &cfg); err != nil {
		return cfg, false, err
	}
	return cfg, true, nil
}

func (r *Redis) SaveLastConfig(ctx context.Context, cfg session.Config) error {
	raw, err := json.Marshal(cfg)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, r.key("config"), raw, 0).Err()
}

func (r *Redis) CachedQuestions(ctx context.Context, key string) ([]session.Question, error) {
	raw, err := r.client.Get(ctx, r.key("questions", key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var questions []session.Question
	if err := json.Unmarshal(raw, &questions); err != nil {
		return nil, err
	}
	return questions, nil
}

func (r *Redis) SaveQuestions(ctx context.Context, key string, questions []session.Question) error {
	raw, err := json.Marshal(questions)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, r.key("questions", key), raw, r.ttl).Err()
}

func (r *Redis) Token(ctx context.Context) (string, error) {
	token, err := r.client.Get(ctx, r.key("token")).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	return token, err
}

func (r *Redis) SaveToken(ctx context.Context, token string) error {
	return r.client.Set(ctx, r.key("token"), token, 0).Err()
}

func (r *Redis) ClearToken(ctx context.Context) error {
	return r.client.Del(ctx, r.key("token")).Err()
}
