package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yukikurage/taskboard-api/internal/constants"
	"github.com/yukikurage/taskboard-api/internal/models"
	"github.com/yukikurage/taskboard-api/internal/services"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

type fakeAuth struct {
	tokens map[string]*models.User
	users  map[uint64]*models.User
}

func (f fakeAuth) Authenticate(_ context.Context, key string) (*models.User, error) {
	if user, ok := f.tokens[key]; ok {
		return user, nil
	}
	return nil, services.ErrInvalidToken
}

func (f fakeAuth) GetUser(_ context.Context, id uint64) (*models.User, error) {
	if user, ok := f.users[id]; ok {
		return user, nil
	}
	return nil, services.ErrUserNotFound
}

func newFakeAuth() fakeAuth {
	alice := &models.User{ID: 1, Username: "alice", IsActive: true}
	guest := &models.User{ID: 2, Username: constants.GuestUsername, IsActive: true}
	return fakeAuth{
		tokens: map[string]*models.User{"alice-key": alice, "guest-key": guest},
		users:  map[uint64]*models.User{1: alice, 2: guest},
	}
}

func newRouter(handlers ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(sessions.Sessions(constants.SessionCookieName, cookie.NewStore([]byte("secret"))))
	r.GET("/login/:id", func(c *gin.Context) {
		session := sessions.Default(c)
		session.Set(constants.ContextKeyUserID, uint64(1))
		_ = session.Save()
		c.Status(http.StatusOK)
	})
	handlers = append(handlers, func(c *gin.Context) {
		user, ok := GetCurrentUser(c)
		if !ok {
			c.String(http.StatusOK, "anonymous")
			return
		}
		c.String(http.StatusOK, user.Username)
	})
	r.Any("/probe", handlers...)
	return r
}

func serve(r *gin.Engine, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRequireAuth(t *testing.T) {
	r := newRouter(RequireAuth(newFakeAuth()))

	tests := []struct {
		name   string
		header string
		status int
		body   string
	}{
		{"token", "Token alice-key", http.StatusOK, "alice"},
		{"scheme is case insensitive", "token alice-key", http.StatusOK, "alice"},
		{"unknown token", "Token nope", http.StatusUnauthorized, ""},
		{"no credentials", "", http.StatusUnauthorized, ""},
		{"other scheme ignored", "Bearer alice-key", http.StatusUnauthorized, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/probe", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := serve(r, req)

			assert.Equal(t, tt.status, w.Code)
			if tt.body != "" {
				assert.Equal(t, tt.body, w.Body.String())
			}
		})
	}
}

func TestRequireAuth_SessionFallback(t *testing.T) {
	r := newRouter(RequireAuth(newFakeAuth()))

	login := serve(r, httptest.NewRequest(http.MethodGet, "/login/1", nil))
	require.NotEmpty(t, login.Result().Cookies())

	req := httptest.NewRequest(http.MethodGet, "/probe", nil)
	for _, c := range login.Result().Cookies() {
		req.AddCookie(c)
	}
	w := serve(r, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "alice", w.Body.String())
}

func TestOptionalAuth(t *testing.T) {
	r := newRouter(OptionalAuth(newFakeAuth()))

	req := httptest.NewRequest(http.MethodGet, "/probe", nil)
	req.Header.Set("Authorization", "Token nope")
	w := serve(r, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "anonymous", w.Body.String())
}

func TestRequireContactAccess(t *testing.T) {
	aliceID := uint64(1)
	linked := &models.Contact{ID: "c1", UserID: &aliceID, IsAccountLinked: true}
	unlinked := &models.Contact{ID: "c2"}

	tests := []struct {
		name    string
		token   string
		contact *models.Contact
		method  string
		status  int
	}{
		{"owner edits linked", "alice-key", linked, http.MethodPatch, http.StatusOK},
		{"guest reads linked", "guest-key", linked, http.MethodGet, http.StatusOK},
		{"guest edits linked", "guest-key", linked, http.MethodPut, http.StatusForbidden},
		{"user edits unlinked", "alice-key", unlinked, http.MethodDelete, http.StatusOK},
		{"guest edits unlinked", "guest-key", unlinked, http.MethodPatch, http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			load := func(c *gin.Context) { c.Set(constants.ContextKeyContact, tt.contact) }
			r := newRouter(RequireAuth(newFakeAuth()), load, RequireContactAccess())

			req := httptest.NewRequest(tt.method, "/probe", nil)
			req.Header.Set("Authorization", "Token "+tt.token)
			assert.Equal(t, tt.status, serve(r, req).Code)
		})
	}
}

type fakeTasks struct{}

func (fakeTasks) GetTask(_ context.Context, id string) (*models.Task, error) {
	if id == "t1" {
		return &models.Task{ID: "t1", Title: "found"}, nil
	}
	return nil, services.ErrTaskNotFound
}

func TestLoadTask(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/tasks/:id", LoadTask(fakeTasks{}), func(c *gin.Context) {
		task, ok := GetTask(c)
		require.True(t, ok)
		c.String(http.StatusOK, task.Title)
	})

	w := serve(r, httptest.NewRequest(http.MethodGet, "/tasks/t1", nil))
	assert.Equal(t, "found", w.Body.String())

	w = serve(r, httptest.NewRequest(http.MethodGet, "/tasks/t2", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRequestLogger(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	r := newRouter(RequestLogger(zap.New(core)), RequireAuth(newFakeAuth()))

	serve(r, httptest.NewRequest(http.MethodGet, "/probe", nil))

	entries := logs.FilterMessage("request").All()
	require.Len(t, entries, 1)
	assert.Equal(t, zap.WarnLevel, entries[0].Level)
	assert.EqualValues(t, http.StatusUnauthorized, entries[0].ContextMap()["status"])
	assert.Equal(t, "/probe", entries[0].ContextMap()["path"])
}
