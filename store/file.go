package store

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/quizwhiz/quizwhiz-backend/session"
	"gopkg.in/yaml.v3"
)

type fileState struct {
	Token     string                        `yaml:"token,omitempty"`
	Config    *session.Config               `yaml:"config,omitempty"`
	Questions map[string][]session.Question `yaml:"questions,omitempty"`
}

// File persists client state in a YAML document, rewritten on every change.
type File struct {
	path string
	mu   sync.Mutex
}

func NewFile(path string) *File {
	return &File{path: path}
}

// DefaultFilePath is ~/.quizwhiz/state.yaml.
func DefaultFilePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".quizwhiz", "state.yaml")
	}
	return filepath.Join(home, ".quizwhiz", "state.yaml")
}

func (f *File) load() (fileState, error) {
	var st fileState
	data, err := os.ReadFile(f.path)
	if errors.Is(err, os.ErrNotExist) {
		return st, nil
	}
	if err != nil {
		return st, err
	}
	if err := yaml.Unmarshal(data, &st); err != nil {
		return st, fmt.Errorf("parse %s: %w", f.path, err)
	}
	return st, nil
}

func (f *File) save(st fileState) error {
	data, err := yaml.Marshal(st)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(f.path), 0o700); err != nil {
		return err
	}
	tmp := f.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return err
	}
	return os.Rename(tmp, f.path)
}

func (f *File) update(fn func(*fileState)) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	st, err := f.load()
	if err != nil {
		return err
	}
	fn(&st)
	return f.save(st)
}

func (f *File) LastConfig(_ context.Context) (session.Config, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	st, err := f.load()
	if err != nil || st.Config == nil {
		return session.Config{}, false, err
	}
	return *st.Config, true, nil
}

func (f *File) SaveLastConfig(_ context.Context, cfg session.Config) error {
	return f.update(func(st *fileState) { st.Config = &cfg })
}

func (f *File) CachedQuestions(_ context.Context, key string) ([]session.Question, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	st, err := f.load()
	if err != nil {
		return nil, err
	}
	return st.Questions[key], nil
}

func (f *File) SaveQuestions(_ context.Context, key string, questions []session.Question) error {
	return f.update(func(st *fileState) {
		if st.Questions == nil {
			st.Questions = make(map[string][]session.Question)
		}
		st.Questions[key] = cloneQuestions(questions)
	})
}

func (f *File) Token(_ context.Context) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	st, err := f.load()
	return st.Token, err
}

func (f *File) SaveToken(_ context.Context, token string) error {
	return f.update(func(st *fileState) { st.Token = token })
}

func (f *File) ClearToken(ctx context.Context) error {
	return f.SaveToken(ctx, "")
}
