package echomw

import (
	"fmt"
	"time"

	"github.com/labstack/echo/v4"

	tl "github.com/tuumbleweed/tintlog/logger"
	"github.com/tuumbleweed/tintlog/palette"
)

func RouteAccessLoggerMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		started := time.Now()
		LogRouteAccess(c, tl.Info, "Accessing route", palette.Blue)

		err := next(c)
		if err != nil {
			// Let the error handler write the response before logging the status.
			c.Error(err)
		}

		status := c.Response().Status
		level, colorizer := tl.Info1, palette.Green
		if status >= 400 {
			level, colorizer = tl.Warning, palette.Yellow
		}
		LogRouteAccess(c, level, fmt.Sprintf("Route accessed (%d in %s)", status, time.Since(started).Round(time.Millisecond)), colorizer)
		return nil
	}
}

// Log route access
func LogRouteAccess(c echo.Context, logLevel tl.LogLevel, actionName string, colorizer palette.Colorizer) {
	if c.Path() == "/health" {
		logLevel = tl.Verbose
		colorizer = palette.CyanDim
	}
	tl.Log(logLevel, colorizer, "%s: Method='%s', Path='%s', ClientIP='%s'", actionName, c.Request().Method, c.Path(), c.RealIP())
}
