package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/quizwhiz/quizwhiz-backend/models"
	"github.com/quizwhiz/quizwhiz-backend/utils"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestMemoryLimiterWindow(t *testing.T) {
	now := time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)
	l := NewMemoryLimiter(2, time.Minute)
	l.now = func() time.Time { return now }

	ctx := context.Background()
	for i := 0; i < 2; i++ {
		ok, err := l.Allow(ctx, "ip:1")
		require.NoError(t, err)
		assert.True(t, ok)
	}
	ok, _ := l.Allow(ctx, "ip:1")
	assert.False(t, ok)

	ok, _ = l.Allow(ctx, "ip:2")
	assert.True(t, ok, "keys are independent")

	now = now.Add(time.Minute)
	ok, _ = l.Allow(ctx, "ip:1")
	assert.True(t, ok, "new window")
}

func TestMemoryLimiterSweep(t *testing.T) {
	now := time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)
	l := NewMemoryLimiter(5, time.Minute)
	l.now = func() time.Time { return now }

	_, _ = l.Allow(context.Background(), "a")
	_, _ = l.Allow(context.Background(), "b")
	assert.Equal(t, 0, l.Sweep())

	now = now.Add(2 * time.Minute)
	assert.Equal(t, 2, l.Sweep())
}

func TestRedisLimiter(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	l := NewRedisLimiter(client, 2, time.Minute)
	ctx := context.Background()

	ok, err := l.Allow(ctx, "user:1")
	require.NoError(t, err)
	assert.True(t, ok)
	ok, _ = l.Allow(ctx, "user:1")
	assert.True(t, ok)
	ok, _ = l.Allow(ctx, "user:1")
	assert.False(t, ok)

	assert.Equal(t, time.Minute, mr.TTL("quizwhiz:ratelimit:user:1"))
	mr.FastForward(time.Minute)

	ok, err = l.Allow(ctx, "user:1")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestRedisLimiterErrorLetsRequestThrough(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()
	mr.Close()

	r := gin.New()
	r.GET("/x", RateLimit(NewRedisLimiter(client, 1, time.Minute)), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x", nil))
	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestRateLimitMiddleware(t *testing.T) {
	r := gin.New()
	r.GET("/x", RateLimit(NewMemoryLimiter(1, time.Minute)), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x", nil))
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "1", w.Header().Get("X-RateLimit-Limit"))

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x", nil))
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
}

func TestRateLimitKeyPrefersUser(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	c.Request.RemoteAddr = "10.0.0.1:1234"
	assert.Equal(t, "ip:10.0.0.1", rateLimitKey(c))

	c.Set("user_id", "abc")
	assert.Equal(t, "user:abc", rateLimitKey(c))
}

func newAuthTestRouter(t *testing.T) (*gin.Engine, models.User) {
	t.Helper()
	utils.InitJWT("middleware-secret", time.Hour)

	db, err := gorm.Open(sqlite.Open("file:middleware_auth?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.User{}))
	user := models.User{Name: "Alice", Email: t.Name() + "@example.com", Password: "x"}
	require.NoError(t, db.Create(&user).Error)

	r := gin.New()
	r.Use(DBMiddleware(db))
	r.GET("/private", AuthMiddleware(), func(c *gin.Context) {
		c.String(http.StatusOK, c.GetString("user_id"))
	})
	r.GET("/optional", OptionalAuthMiddleware(), func(c *gin.Context) {
		c.String(http.StatusOK, c.GetString("user_id"))
	})
	return r, user
}

func TestAuthMiddleware(t *testing.T) {
	r, user := newAuthTestRouter(t)
	token, err := utils.GenerateToken(user.ID.String())
	require.NoError(t, err)

	cases := []struct {
		name   string
		header string
		value  string
		status int
	}{
		{"missing", "", "", http.StatusUnauthorized},
		{"auth-token header", AuthHeader, token, http.StatusOK},
		{"bearer", "Authorization", "Bearer " + token, http.StatusOK},
		{"garbage", AuthHeader, "garbage", http.StatusUnauthorized},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/private", nil)
			if tc.header != "" {
				req.Header.Set(tc.header, tc.value)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			assert.Equal(t, tc.status, w.Code)
			if tc.status == http.StatusOK {
				assert.Equal(t, user.ID.String(), w.Body.String())
			}
		})
	}
}

func TestAuthMiddlewareRejectsDeletedUser(t *testing.T) {
	r, _ := newAuthTestRouter(t)
	token, err := utils.GenerateToken("00000000-0000-0000-0000-000000000001")
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/private", nil)
	req.Header.Set(AuthHeader, token)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestOptionalAuthMiddleware(t *testing.T) {
	r, user := newAuthTestRouter(t)
	token, err := utils.GenerateToken(user.ID.String())
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/optional", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Body.String())

	req = httptest.NewRequest(http.MethodGet, "/optional", nil)
	req.Header.Set(AuthHeader, "garbage")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Body.String())

	req = httptest.NewRequest(http.MethodGet, "/optional", nil)
	req.Header.Set(AuthHeader, token)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, user.ID.String(), w.Body.String())
}
