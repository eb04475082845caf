package echomw

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/andybalholm/brotli"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func okHandler(c echo.Context) error {
	return c.String(http.StatusOK, "ok:"+OwnerID(c))
}

func serve(e *echo.Echo, request *http.Request) *httptest.ResponseRecorder {
	recorder := httptest.NewRecorder()
	e.ServeHTTP(recorder, request)
	return recorder
}

func TestBearerToken(t *testing.T) {
	e := echo.New()
	e.GET("/api/clients", okHandler, BearerToken("secret"))

	cases := []struct {
		name   string
		header string
		status int
	}{
		{"missing", "", http.StatusUnauthorized},
		{"wrong scheme", "Basic secret", http.StatusUnauthorized},
		{"wrong token", "Bearer nope", http.StatusUnauthorized},
		{"empty token", "Bearer   ", http.StatusUnauthorized},
		{"valid", "Bearer secret", http.StatusOK},
		{"case-insensitive scheme", "bEaReR   secret", http.StatusOK},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			request := httptest.NewRequest(http.MethodGet, "/api/clients", nil)
			if tc.header != "" {
				request.Header.Set(echo.HeaderAuthorization, tc.header)
			}
			response := serve(e, request)
			assert.Equal(t, tc.status, response.Code)
			if tc.status == http.StatusUnauthorized {
				assert.Equal(t, `Bearer realm="sima-reports"`, response.Header().Get(echo.HeaderWWWAuthenticate))
			}
		})
	}
}

func TestBearerTokenFailsClosedWithoutToken(t *testing.T) {
	e := echo.New()
	e.GET("/api/clients", okHandler, BearerToken(""))

	request := httptest.NewRequest(http.MethodGet, "/api/clients", nil)
	request.Header.Set(echo.HeaderAuthorization, "Bearer ")
	assert.Equal(t, http.StatusUnauthorized, serve(e, request).Code)
}

func TestOwnerScope(t *testing.T) {
	e := echo.New()
	e.GET("/owner", okHandler, OwnerScope("default"))

	response := serve(e, httptest.NewRequest(http.MethodGet, "/owner", nil))
	assert.Equal(t, "ok:default", response.Body.String())

	request := httptest.NewRequest(http.MethodGet, "/owner", nil)
	request.Header.Set(HeaderOwnerID, "tech-7")
	assert.Equal(t, "ok:tech-7", serve(e, request).Body.String())
}

func TestRateLimiter(t *testing.T) {
	limiter := NewRateLimiter(1, 2)
	e := echo.New()
	e.GET("/", okHandler, limiter.Middleware)

	statuses := []int{}
	for range 3 {
		statuses = append(statuses, serve(e, httptest.NewRequest(http.MethodGet, "/", nil)).Code)
	}
	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, statuses)

	other := httptest.NewRequest(http.MethodGet, "/", nil)
	other.Header.Set(echo.HeaderXRealIP, "10.0.0.9")
	assert.Equal(t, http.StatusOK, serve(e, other).Code)
}

func TestRateLimiterDropsIdleVisitors(t *testing.T) {
	limiter := NewRateLimiter(1, 1)
	current := time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC)
	limiter.now = func() time.Time { return current }

	limiter.limiter("10.0.0.1")
	current = current.Add(2 * time.Minute)
	limiter.limiter("10.0.0.2")

	assert.Len(t, limiter.visitors, 1)
	assert.Contains(t, limiter.visitors, "10.0.0.2")
}

func TestBrotli(t *testing.T) {
	body := strings.Repeat("Total de tareas completadas: 2. ", 100)
	e := echo.New()
	e.Use(Brotli(5))
	e.GET("/report", func(c echo.Context) error { return c.HTML(http.StatusOK, body) })

	request := httptest.NewRequest(http.MethodGet, "/report", nil)
	request.Header.Set(echo.HeaderAcceptEncoding, "gzip, br")
	response := serve(e, request)

	require.Equal(t, http.StatusOK, response.Code)
	assert.Equal(t, "br", response.Header().Get(echo.HeaderContentEncoding))
	assert.Less(t, response.Body.Len(), len(body))

	decoded, err := io.ReadAll(brotli.NewReader(response.Body))
	require.NoError(t, err)
	assert.Equal(t, body, string(decoded))
}

func TestBrotliSkipsClientsWithoutSupport(t *testing.T) {
	e := echo.New()
	e.Use(Brotli(5))
	e.GET("/report", func(c echo.Context) error { return c.String(http.StatusOK, "plain") })

	response := serve(e, httptest.NewRequest(http.MethodGet, "/report", nil))
	assert.Empty(t, response.Header().Get(echo.HeaderContentEncoding))
	assert.Equal(t, "plain", response.Body.String())
}

func TestBrotliEmptyBody(t *testing.T) {
	e := echo.New()
	e.Use(Brotli(5))
	e.DELETE("/task", func(c echo.Context) error { return c.NoContent(http.StatusNoContent) })

	request := httptest.NewRequest(http.MethodDelete, "/task", nil)
	request.Header.Set(echo.HeaderAcceptEncoding, "br")
	response := serve(e, request)

	assert.Equal(t, http.StatusNoContent, response.Code)
	assert.Zero(t, response.Body.Len())
}
