// Package apiclient talks to the QuizWhiz REST backend. Client satisfies
// session.QuestionSource and session.ResultSubmitter.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/quizwhiz/quizwhiz-backend/models"
	"github.com/quizwhiz/quizwhiz-backend/session"
)

const authHeader = "auth-token"

// APIError is a non-2xx reply from the backend.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("quizwhiz api returned status %d", e.Status)
	}
	return fmt.Sprintf("quizwhiz api returned status %d: %s", e.Status, e.Message)
}

type Client struct {
	baseURL string
	http    *http.Client
	token   string
}

// NewClient uses a client with a 60s timeout when httpClient is nil.
func NewClient(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 60 * time.Second}
	}
	return &Client{baseURL: strings.TrimRight(baseURL, "/"), http: httpClient}
}

// WithToken returns a copy that authenticates question requests, so the
// backend rate-limits per user instead of per address.
func (c *Client) WithToken(token string) *Client {
	cp := *c
	cp.token = token
	return &cp
}

func (c *Client) do(ctx context.Context, method, path, token string, in, out interface{}) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set(authHeader, token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var e struct {
			Error   string `json:"error"`
			Message string `json:"message"`
		}
		_ = json.Unmarshal(data, &e)
		msg := e.Error
		if msg == "" {
			msg = e.Message
		}
		return &APIError{Status: resp.StatusCode, Message: msg}
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode %s response: %w", path, err)
	}
	return nil
}

type tokenReply struct {
	AuthToken string `json:"authToken"`
}

func (c *Client) CreateUser(ctx context.Context, name, email, password string) (string, error) {
	var out tokenReply
	err := c.do(ctx, http.MethodPost, "/user/createuser", "", map[string]string{
		"name": name, "email": email, "password": password,
	}, &out)
	return out.AuthToken, err
}

func (c *Client) CheckUser(ctx context.Context, email, password string) (string, error) {
	var out tokenReply
	err := c.do(ctx, http.MethodPost, "/user/checkuser", "", map[string]string{
		"email": email, "password": password,
	}, &out)
	return out.AuthToken, err
}

func (c *Client) GetUser(ctx context.Context, token string) (models.User, error) {
	var user models.User
	err := c.do(ctx, http.MethodPost, "/user/getuser", token, nil, &user)
	return user, err
}

func (c *Client) FetchQuestions(ctx context.Context, topic string, difficulty session.Difficulty, count int) ([]session.Question, error) {
	var out struct {
		Questions []models.Question `json:"questions"`
	}
	err := c.do(ctx, http.MethodPost, "/quiz/generate", c.token, map[string]interface{}{
		"topic": topic, "difficulty": difficulty, "count": count,
	}, &out)
	if err != nil {
		return nil, err
	}

	questions := make([]session.Question, 0, len(out.Questions))
	for _, q := range out.Questions {
		questions = append(questions, session.Question{
			ID:            q.ID,
			Text:          q.Text,
			Options:       q.Options,
			CorrectAnswer: q.CorrectAnswer,
		})
	}
	return questions, nil
}

func (c *Client) SubmitResult(ctx context.Context, token string, result session.Result) error {
	return c.do(ctx, http.MethodPost, "/results/SaveQuizResults", token, result, nil)
}

func (c *Client) GetResults(ctx context.Context, token string) ([]models.Result, error) {
	var results []models.Result
	err := c.do(ctx, http.MethodGet, "/results/GetUserResults", token, nil, &results)
	return results, err
}

func (c *Client) ClearResults(ctx context.Context, token string) (int64, error) {
	var out struct {
		Removed int64 `json:"removed"`
	}
	err := c.do(ctx, http.MethodDelete, "/results/ClearUserResults", token, nil, &out)
	return out.Removed, err
}

func (c *Client) Stats(ctx context.Context, token string) (models.QuizStats, error) {
	var stats models.QuizStats
	err := c.do(ctx, http.MethodGet, "/results/stats", token, nil, &stats)
	return stats, err
}
