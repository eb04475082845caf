// Package echomw provides the Echo middlewares of the report service.
package echomw

import (
	"crypto/subtle"
	"net/http"
	"os"
	"strings"

	"github.com/labstack/echo/v4"

	tl "github.com/tuumbleweed/tintlog/logger"
	"github.com/tuumbleweed/tintlog/palette"
)

const (
	// Env var holding the API token.
	EnvBearerToken = "SIMA_REPORTS_BEARER_TOKEN"

	// Realm for WWW-Authenticate header.
	authRealm = "sima-reports"

	// Header selecting whose records a request works on.
	HeaderOwnerID = "X-Owner-ID"

	ownerIDKey = "owner_id"
)

// RequireBearerToken checks requests against the SIMA_REPORTS_BEARER_TOKEN env var.
func RequireBearerToken() echo.MiddlewareFunc {
	return BearerToken(os.Getenv(EnvBearerToken))
}

// BearerToken validates Authorization: Bearer <token> against expected.
// On failure responds 401. An empty expected token rejects every request.
func BearerToken(expected string) echo.MiddlewareFunc {
	expected = strings.TrimSpace(expected)
	if expected == "" {
		tl.Log(tl.Warning, palette.YellowBold, "%s is %s, every API request will be rejected", EnvBearerToken, "empty")
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if expected == "" {
				return unauthorized(c)
			}

			auth := strings.TrimSpace(c.Request().Header.Get(echo.HeaderAuthorization))

			// Case-insensitive scheme per RFC; allow extra spaces.
			const bearer = "bearer "
			if len(auth) < len(bearer) || !strings.EqualFold(auth[:len(bearer)], bearer) {
				return unauthorized(c)
			}
			received := strings.TrimSpace(auth[len(bearer):])

			// Constant-time compare.
			if received == "" || subtle.ConstantTimeCompare([]byte(received), []byte(expected)) != 1 {
				return unauthorized(c)
			}

			return next(c)
		}
	}
}

func unauthorized(c echo.Context) error {
	LogRouteAccess(c, tl.Info, "Unauthorized access attempt", palette.Yellow)

	// Avoids browser basic-auth popups.
	c.Response().Header().Set(echo.HeaderWWWAuthenticate, `Bearer realm="`+authRealm+`"`)
	return c.JSON(http.StatusUnauthorized, map[string]string{
		"error": "unauthorized",
	})
}

// OwnerScope stores the X-Owner-ID header (or defaultOwnerID) on the context.
func OwnerScope(defaultOwnerID string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ownerID := strings.TrimSpace(c.Request().Header.Get(HeaderOwnerID))
			if ownerID == "" {
				ownerID = defaultOwnerID
			}
			c.Set(ownerIDKey, ownerID)
			return next(c)
		}
	}
}

// OwnerID returns the owner OwnerScope selected for this request.
func OwnerID(c echo.Context) string {
	ownerID, _ := c.Get(ownerIDKey).(string)
	return ownerID
}
