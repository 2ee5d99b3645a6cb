package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime"
	"net/http"
	"net/url"
	"strings"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"material-tracker/internal/domain/actor"
	"material-tracker/internal/infrastructure/logger"
)

const (
	actorKey = "actor"
	tokenKey = "session_token"
)

// Resolver maps a bearer token to the caller.
type Resolver interface {
	Resolve(ctx context.Context, token string) (actor.Actor, error)
}

// Toucher refreshes admin presence.
type Toucher interface {
	Touch(ctx context.Context, a actor.Actor)
}

// Auth requires "Authorization: Bearer <token>" and stores the resolved
// actor on the echo context.
func Auth(r Resolver, log *zap.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token := bearer(c.Request().Header.Get(echo.HeaderAuthorization))
			if token == "" {
				return c.JSON(http.StatusUnauthorized, map[string]string{"error": actor.ErrUnauthenticated.Error()})
			}
			a, err := r.Resolve(c.Request().Context(), token)
			if errors.Is(err, actor.ErrUnauthenticated) {
				return c.JSON(http.StatusUnauthorized, map[string]string{"error": err.Error()})
			}
			if err != nil {
				logger.FromContext(c.Request().Context(), log).Error("resolve session", zap.Error(err))
				return c.JSON(http.StatusServiceUnavailable, map[string]string{"error": "session store unavailable"})
			}
			c.Set(actorKey, a)
			c.Set(tokenKey, token)
			return next(c)
		}
	}
}

// maxBeaconBody bounds how much of a beacon body is read for a token.
const maxBeaconBody = 4 << 10

// BeaconToken lets navigator.sendBeacon, which cannot set headers, carry the
// session token in its body as JSON {"token": ...}, a form field named
// token, or plain text. It only fills a missing Authorization header, so it
// must run before Auth. The body is restored for the handler.
func BeaconToken() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			if req.Header.Get(echo.HeaderAuthorization) == "" {
				if token := beaconToken(req); token != "" {
					req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
				}
			}
			return next(c)
		}
	}
}

func beaconToken(req *http.Request) string {
	if req.Body == nil {
		return ""
	}
	b, err := io.ReadAll(io.LimitReader(req.Body, maxBeaconBody))
	_ = req.Body.Close()
	req.Body = io.NopCloser(bytes.NewReader(b))
	if err != nil || len(b) == 0 {
		return ""
	}

	mt, _, _ := mime.ParseMediaType(req.Header.Get(echo.HeaderContentType))
	switch mt {
	case echo.MIMEApplicationJSON:
		var p struct {
			Token string `json:"token"`
		}
		if json.Unmarshal(b, &p) == nil {
			return strings.TrimSpace(p.Token)
		}
	case echo.MIMEApplicationForm:
		if v, err := url.ParseQuery(string(b)); err == nil {
			return strings.TrimSpace(v.Get("token"))
		}
	case echo.MIMETextPlain, "":
		return strings.TrimSpace(string(b))
	}
	return ""
}

// AdminOnly must run after Auth.
func AdminOnly() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if !ActorFrom(c).IsAdmin() {
				return c.JSON(http.StatusForbidden, map[string]string{"error": "admin access required"})
			}
			return next(c)
		}
	}
}

// PresenceTouch counts every authenticated admin request as a heartbeat.
func PresenceTouch(t Toucher) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if a := ActorFrom(c); a.IsAdmin() {
				t.Touch(c.Request().Context(), a)
			}
			return next(c)
		}
	}
}

// ActorFrom returns the caller set by Auth, or the zero Actor.
func ActorFrom(c echo.Context) actor.Actor {
	a, _ := c.Get(actorKey).(actor.Actor)
	return a
}

// TokenFrom returns the bearer token accepted by Auth.
func TokenFrom(c echo.Context) string {
	t, _ := c.Get(tokenKey).(string)
	return t
}

func bearer(h string) string {
	const prefix = "bearer "
	if len(h) <= len(prefix) || !strings.EqualFold(h[:len(prefix)], prefix) {
		return ""
	}
	return strings.TrimSpace(h[len(prefix):])
}
