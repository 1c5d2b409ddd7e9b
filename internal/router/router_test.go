package router

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/deppfellow/app-functions/internal/config"
	"github.com/deppfellow/app-functions/internal/handler"
	"github.com/deppfellow/app-functions/internal/model"
	"github.com/deppfellow/app-functions/internal/repository"
	"github.com/deppfellow/app-functions/internal/server"
	"github.com/deppfellow/app-functions/internal/service"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "router-test-secret-0123"

type testApp struct {
	router   *echo.Echo
	repo     *repository.MemoryProfileRepository
	verifier *service.JWTVerifier
}

func newTestApp(t *testing.T, mutate func(*config.Config), seed ...model.UserProfile) *testApp {
	t.Helper()

	cfg := &config.Config{
		Primary: config.Primary{Env: "test"},
		Server: config.ServerConfig{
			Port:               "0",
			ReadTimeout:        5,
			WriteTimeout:       5,
			IdleTimeout:        5,
			CORSAllowedOrigins: []string{"*"},
		},
		Storage:       config.StorageConfig{Driver: config.StorageMemory},
		Auth:          config.AuthConfig{Provider: config.AuthProviderJWT, JWTSecret: testSecret},
		Observability: config.DefaultObservabilityConfig(),
	}
	if mutate != nil {
		mutate(cfg)
	}

	log := zerolog.Nop()
	s := &server.Server{Config: cfg, Logger: &log}

	auth, err := service.NewAuthService(s)
	require.NoError(t, err)
	verifier, ok := auth.Verifier.(*service.JWTVerifier)
	require.True(t, ok)

	repo := repository.NewMemoryProfileRepository(seed...)
	services := &service.Services{
		Auth:    auth,
		Profile: service.NewProfileService(repo, &log),
	}

	return &testApp{
		router:   NewRouter(s, handler.NewHandlers(s, services), services),
		repo:     repo,
		verifier: verifier,
	}
}

var ann = model.Claims{UID: "u1", Email: "a@b.c", Name: "Ann", Picture: "http://img/ann.png"}

func (a *testApp) token(t *testing.T, c model.Claims) string {
	t.Helper()
	token, err := a.verifier.Sign(c, time.Minute)
	require.NoError(t, err)
	return token
}

func (a *testApp) do(method, path, token, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	a.router.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Status  int    `json:"status"`
}

func TestProfile_RequiresBearer(t *testing.T) {
	app := newTestApp(t, nil, model.UserProfile{Key: "u1", UID: "u1", Role: 1})

	for name, header := range map[string]string{
		"missing":      "",
		"wrong scheme": "Basic dXNlcjpwYXNz",
		"empty token":  "Bearer ",
		"bad token":    "Bearer not-a-jwt",
	} {
		t.Run(name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/user", strings.NewReader(`{"name":"x"}`))
			if header != "" {
				req.Header.Set(echo.HeaderAuthorization, header)
			}
			rec := httptest.NewRecorder()
			app.router.ServeHTTP(rec, req)

			assert.Equal(t, http.StatusForbidden, rec.Code)
			body := decode[errorBody](t, rec)
			assert.Equal(t, "Unauthorized", body.Message)
			assert.Equal(t, "FORBIDDEN", body.Code)
		})
	}
}

func TestProfile_GetSynthesizesDefault(t *testing.T) {
	app := newTestApp(t, nil)

	rec := app.do(http.MethodGet, "/user", app.token(t, ann), "")
	require.Equal(t, http.StatusOK, rec.Code)

	assert.Equal(t, model.ProfileResponse{
		Email: "a@b.c",
		Name:  "Ann",
		Role:  1,
		Image: "http://img/ann.png",
		UID:   "u1",
	}, decode[model.ProfileResponse](t, rec))
	assert.Equal(t, 0, app.repo.Len())
}

func TestProfile_GetStored(t *testing.T) {
	stored := model.UserProfile{Key: "k1", UID: "u1", Email: "stored@b.c", Name: "Stored", Image: "s.png", Role: 2}
	app := newTestApp(t, nil, stored)

	rec := app.do(http.MethodGet, "/v1/user", app.token(t, ann), "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, model.NewProfileResponse(stored), decode[model.ProfileResponse](t, rec))
}

func TestProfile_PostUpdatesNameOnly(t *testing.T) {
	stored := model.UserProfile{Key: "k1", UID: "u1", Email: "a@b.c", Name: "Old", Image: "old.png", Role: 2}
	app := newTestApp(t, nil, stored)

	rec := app.do(http.MethodPost, "/user", app.token(t, ann), `{"name":"X"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	want := stored
	want.Name = "X"
	assert.Equal(t, model.NewProfileResponse(want), decode[model.ProfileResponse](t, rec))

	got, _ := app.repo.Get("k1")
	assert.Equal(t, want, got)
}

func TestProfile_PostEmptyBodyIsNoop(t *testing.T) {
	stored := model.UserProfile{Key: "k1", UID: "u1", Email: "a@b.c", Name: "Keep", Role: 1}
	app := newTestApp(t, nil, stored)

	for _, body := range []string{"", "{}", `{"name":null,"image":null}`} {
		rec := app.do(http.MethodPost, "/user", app.token(t, ann), body)
		require.Equal(t, http.StatusOK, rec.Code, body)
		assert.Equal(t, model.NewProfileResponse(stored), decode[model.ProfileResponse](t, rec))
	}
	assert.Equal(t, 0, app.repo.Writes())
}

func TestProfile_PostMissingProfileIs404(t *testing.T) {
	app := newTestApp(t, nil)

	rec := app.do(http.MethodPost, "/user", app.token(t, ann), `{"name":"X"}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Not found", decode[errorBody](t, rec).Message)
	assert.Equal(t, 0, app.repo.Len())
}

func TestProfile_PostValidation(t *testing.T) {
	app := newTestApp(t, nil, model.UserProfile{Key: "u1", UID: "u1", Role: 1})

	rec := app.do(http.MethodPost, "/user", app.token(t, ann), `{"name":"`+strings.Repeat("n", 101)+`"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, 0, app.repo.Writes())
}

func TestProfile_OtherMethodsAre405(t *testing.T) {
	app := newTestApp(t, nil)

	for _, method := range []string{http.MethodPut, http.MethodDelete, http.MethodPatch} {
		t.Run(method, func(t *testing.T) {
			rec := app.do(method, "/user", "", "")
			assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
			assert.Equal(t, "GET, POST", rec.Header().Get("Allow"))
			assert.Equal(t, http.StatusMethodNotAllowed, decode[errorBody](t, rec).Status)
		})
	}
}

func TestProfile_NotRegisteredForOtherFunctions(t *testing.T) {
	app := newTestApp(t, func(c *config.Config) {
		c.Primary.FunctionName = config.FunctionNewsNotify
	})

	rec := app.do(http.MethodGet, "/user", app.token(t, ann), "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestProfile_RateLimited(t *testing.T) {
	app := newTestApp(t, func(c *config.Config) {
		c.Server.RateLimit = 1
	})
	token := app.token(t, ann)

	limited := false
	for i := 0; i < 10; i++ {
		if rec := app.do(http.MethodGet, "/user", token, ""); rec.Code == http.StatusTooManyRequests {
			limited = true
			break
		}
	}
	assert.True(t, limited)
}

func TestSystemRoutes(t *testing.T) {
	app := newTestApp(t, nil)

	rec := app.do(http.MethodGet, "/status", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	status := decode[map[string]any](t, rec)
	assert.Equal(t, "healthy", status["status"])
	assert.Equal(t, "memory", status["storage"])

	rec = app.do(http.MethodGet, "/static/openapi.json", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, json.Valid(rec.Body.Bytes()))

	rec = app.do(http.MethodGet, "/docs", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "no-cache", rec.Header().Get("Cache-Control"))

	rec = app.do(http.MethodGet, "/nowhere", "", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Route not found", decode[errorBody](t, rec).Message)
}

func TestRequestIDEchoed(t *testing.T) {
	app := newTestApp(t, nil)

	req := httptest.NewRequest(http.MethodGet, "/status", nil)
	req.Header.Set("X-Request-ID", "req-123")
	rec := httptest.NewRecorder()
	app.router.ServeHTTP(rec, req)

	assert.Equal(t, "req-123", rec.Header().Get("X-Request-ID"))
}
