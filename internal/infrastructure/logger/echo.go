package logger

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// EchoMiddleware logs one line per request and puts a request scoped
// logger into the request context.
func EchoMiddleware(l *zap.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			req := c.Request()
			rid := req.Header.Get(echo.HeaderXRequestID)
			if rid == "" {
				rid = c.Response().Header().Get(echo.HeaderXRequestID)
			}
			ctx := WithRequestID(req.Context(), l, rid)
			c.SetRequest(req.WithContext(ctx))

			err := next(c)
			if err != nil {
				c.Error(err)
			}

			status := c.Response().Status
			fields := []zap.Field{
				zap.String("method", req.Method),
				zap.String("path", c.Path()),
				zap.Int("status", status),
				zap.Duration("latency", time.Since(start)),
				zap.String("client_ip", c.RealIP()),
				zap.Int64("bytes_out", c.Response().Size),
			}
			if err != nil {
				fields = append(fields, zap.Error(err))
			}
			rl := FromContext(ctx, l)
			switch {
			case status >= 500:
				rl.Error("http request", fields...)
			case status >= 400:
				rl.Warn("http request", fields...)
			default:
				rl.Info("http request", fields...)
			}
			return nil
		}
	}
}

// Recovery turns a handler panic into a 500 and logs it with the stack.
func Recovery(l *zap.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) (err error) {
			defer func() {
				if r := recover(); r != nil {
					FromContext(c.Request().Context(), l).Error("panic recovered",
						zap.String("method", c.Request().Method),
						zap.String("path", c.Path()),
						zap.Any("panic", r),
						zap.Stack("stacktrace"),
					)
					err = echo.NewHTTPError(http.StatusInternalServerError, "internal error")
				}
			}()
			return next(c)
		}
	}
}
