package store

import (
	"context"
	"sync"

	"github.com/quizwhiz/quizwhiz-backend/session"
)

// Memory keeps client state in process memory.
type Memory struct {
	mu        sync.RWMutex
	config    *session.Config
	questions map[string][]session.Question
	token     string
}

func NewMemory() *Memory {
	return &Memory{questions: make(map[string][]session.Question)}
}

func (m *Memory) LastConfig(_ context.Context) (session.Config, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.config == nil {
		return session.Config{}, false, nil
	}
	return *m.config, true, nil
}

func (m *Memory) SaveLastConfig(_ context.Context, cfg session.Config) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.config = &cfg
	return nil
}

func (m *Memory) CachedQuestions(_ context.Context, key string) ([]session.Question, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return cloneQuestions(m.questions[key]), nil
}

func (m *Memory) SaveQuestions(_ context.Context, key string, questions []session.Question) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.questions[key] = cloneQuestions(questions)
	return nil
}

func (m *Memory) Token(_ context.Context) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.token, nil
}

func (m *Memory) SaveToken(_ context.Context, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.token = token
	return nil
}

func (m *Memory) ClearToken(_ context.Context) error {
	return m.SaveToken(context.Background(), "")
}

func cloneQuestions(in []session.Question) []session.Question {
	if in == nil {
		return nil
	}
	out := make([]session.Question, len(in))
	for i, q := range in {
		q.Options = append([]string(nil), q.Options...)
		out[i] = q
	}
	return out
}
