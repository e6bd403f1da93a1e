package handlers

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"github.com/yukikurage/taskboard-api/internal/avatar"
	"github.com/yukikurage/taskboard-api/internal/constants"
	"github.com/yukikurage/taskboard-api/internal/contactsync"
	"github.com/yukikurage/taskboard-api/internal/dto"
	apierrors "github.com/yukikurage/taskboard-api/internal/errors"
	"github.com/yukikurage/taskboard-api/internal/repository"
	"github.com/yukikurage/taskboard-api/internal/services"
	"github.com/yukikurage/taskboard-api/internal/testutil"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const testPassword = "Secret#123"

type testEnv struct {
	t      *testing.T
	db     *gorm.DB
	router *gin.Engine
	svc    Services
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := testutil.NewDB(t)
	store := repository.NewStore(db)
	log := zap.NewNop()
	syncer := contactsync.New(log, avatar.NewGenerator(func(int) int { return 0 }))

	svc := Services{
		Auth:     services.NewAuthService(store, syncer, log, "guest"),
		Accounts: services.NewAccountService(store, syncer, log),
		Contacts: services.NewContactService(store, syncer, log),
		Tasks:    services.NewTaskService(store, nil, log),
	}

	r := gin.New()
	r.Use(sessions.Sessions(constants.SessionCookieName, cookie.NewStore([]byte("secret"))))
	RegisterRoutes(r, svc)

	return &testEnv{t: t, db: db, router: r, svc: svc}
}

type requestOption func(*http.Request)

func withToken(token string) requestOption {
	return func(r *http.Request) {
		r.Header.Set("Authorization", "Token "+token)
	}
}

func withCookies(cookies []*http.Cookie) requestOption {
	return func(r *http.Request) {
		for _, c := range cookies {
			r.AddCookie(c)
		}
	}
}

func (e *testEnv) do(method, path string, body any, opts ...requestOption) *httptest.ResponseRecorder {
	e.t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(e.t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for _, opt := range opts {
		opt(req)
	}

	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func (e *testEnv) register(email, name string) dto.AuthResponse {
	e.t.Helper()

	w := e.do(http.MethodPost, "/api/auth/register", map[string]string{
		"email":             email,
		"name":              name,
		"password":          testPassword,
		"repeated_password": testPassword,
	})
	require.Equal(e.t, http.StatusCreated, w.Code, w.Body.String())

	var resp dto.AuthResponse
	decode(e.t, w, &resp)
	return resp
}

func (e *testEnv) guestToken() string {
	e.t.Helper()

	w := e.do(http.MethodPost, "/api/auth/guest", nil)
	require.Contains(e.t, []int{http.StatusOK, http.StatusCreated}, w.Code)

	var resp dto.AuthResponse
	decode(e.t, w, &resp)
	return resp.Token
}

func decode(t *testing.T, w *httptest.ResponseRecorder, dst any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), dst), w.Body.String())
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) apierrors.APIError {
	t.Helper()
	var body apierrors.APIError
	decode(t, w, &body)
	return body
}

func fieldErrors(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	body := decodeError(t, w)
	fields, ok := body.Details.(map[string]any)
	require.True(t, ok, "expected field errors, got %s", w.Body.String())
	return fields
}
