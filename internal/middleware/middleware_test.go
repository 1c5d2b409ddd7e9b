package middleware

import (
	"bytes"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/deppfellow/app-functions/internal/config"
	"github.com/deppfellow/app-functions/internal/errs"
	"github.com/deppfellow/app-functions/internal/server"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBearerToken(t *testing.T) {
	tests := []struct {
		header string
		token  string
		ok     bool
	}{
		{"Bearer abc.def.ghi", "abc.def.ghi", true},
		{"bearer abc", "abc", true},
		{"  Bearer   abc  ", "abc", true},
		{"Bearer", "", false},
		{"Bearer ", "", false},
		{"Basic abc", "", false},
		{"abc", "", false},
		{"", "", false},
	}

	for _, tt := range tests {
		token, ok := bearerToken(tt.header)
		assert.Equal(t, tt.ok, ok, tt.header)
		assert.Equal(t, tt.token, token, tt.header)
	}
}

func TestErrorStatus(t *testing.T) {
	assert.Equal(t, http.StatusNotFound, errorStatus(errs.NewNotFoundError("Not found", false, nil)))
	assert.Equal(t, http.StatusTeapot, errorStatus(echo.NewHTTPError(http.StatusTeapot)))
	assert.Equal(t, http.StatusInternalServerError, errorStatus(errors.New("boom")))
}

func newTestServer() *server.Server {
	log := zerolog.New(io.Discard)
	return &server.Server{
		Config: &config.Config{Primary: config.Primary{Env: "test"}},
		Logger: &log,
	}
}

func TestGlobalErrorHandler(t *testing.T) {
	global := NewGlobalMiddlewares(newTestServer())
	e := echo.New()

	tests := []struct {
		name    string
		err     error
		status  int
		message string
		allow   string
	}{
		{"http error", errs.NewNotFoundError("Not found", false, nil), http.StatusNotFound, "Not found", ""},
		{"method not allowed", errs.NewMethodNotAllowedError(http.MethodGet, http.MethodPost), http.StatusMethodNotAllowed, "Method Not Allowed", "GET, POST"},
		{"route miss", echo.ErrNotFound, http.StatusNotFound, "Route not found", ""},
		{"unsupported media", echo.ErrUnsupportedMediaType, http.StatusUnsupportedMediaType, "Unsupported Media Type", ""},
		{"backend", errors.New("connection refused"), http.StatusInternalServerError, "Internal Server Error", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)

			global.GlobalErrorHandler(tt.err, c)

			assert.Equal(t, tt.status, rec.Code)
			assert.Contains(t, rec.Body.String(), tt.message)
			assert.Equal(t, tt.allow, rec.Header().Get("Allow"))
		})
	}
}

func TestContextEnhancer_StoresLoggerInRequestContext(t *testing.T) {
	var buf bytes.Buffer
	srv := newTestServer()
	log := zerolog.New(&buf)
	srv.Logger = &log

	enhancer := NewContextEnhancer(srv)
	e := echo.New()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())

	var fromCtx *zerolog.Logger
	h := enhancer.EnhanceContext()(func(c echo.Context) error {
		fromCtx = zerolog.Ctx(c.Request().Context())
		return nil
	})
	require.NoError(t, h(c))

	assert.Same(t, GetLogger(c), fromCtx)
	assert.NotEqual(t, zerolog.Disabled, fromCtx.GetLevel())

	fromCtx.Info().Msg("from request context")
	assert.Contains(t, buf.String(), "from request context")
	assert.Contains(t, buf.String(), `"method":"GET"`)
}

func TestRequestID(t *testing.T) {
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)

	h := RequestID()(func(c echo.Context) error { return nil })
	require.NoError(t, h(c))

	id := GetRequestID(c)
	assert.NotEmpty(t, id)
	assert.Equal(t, id, rec.Header().Get(RequestIDHeader))
}
