package httpapi

import (
	"strconv"
	"strings"

	"github.com/dmitrijs2005/credvault/internal/common"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

const userIDKey = "user_id"

// requireBearer rejects requests without a valid access token and stores
// the token subject in the context under userIDKey.
func requireBearer(parser TokenParser) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			header := c.Request().Header.Get(echo.HeaderAuthorization)
			scheme, token, ok := strings.Cut(header, " ")
			if !ok || !strings.EqualFold(scheme, common.BearerScheme) || strings.TrimSpace(token) == "" {
				return common.ErrorUnauthorized
			}

			subject, err := parser.Parse(strings.TrimSpace(token))
			if err != nil {
				return err
			}

			c.Set(userIDKey, subject)
			return next(c)
		}
	}
}

// requestLogger logs every request and feeds the HTTP metrics. HandleError
// runs the error handler first so the logged status is the one sent.
func (s *Server) requestLogger() echo.MiddlewareFunc {
	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		HandleError:  true,
		LogURI:       true,
		LogRoutePath: true,
		LogStatus:    true,
		LogMethod:    true,
		LogLatency:   true,
		LogRemoteIP:  true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			route := v.RoutePath
			if route == "" {
				route = "unmatched"
			}
			s.metrics.HTTPRequest(v.Method, route, strconv.Itoa(v.Status), v.Latency.Seconds())

			ctx := c.Request().Context()
			args := []any{
				"method", v.Method,
				"uri", v.URI,
				"status", v.Status,
				"latency_ms", float64(v.Latency.Microseconds()) / 1000.0,
				"remote_ip", v.RemoteIP,
			}
			switch {
			case v.Status >= 500:
				s.log.Error(ctx, "request", args...)
			case v.Status >= 400:
				s.log.Warn(ctx, "request", args...)
			default:
				s.log.Info(ctx, "request", args...)
			}
			return nil
		},
	})
}
