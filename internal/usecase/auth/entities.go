package auth

import (
	"context"
	"errors"
	"time"

	"material-tracker/internal/domain/actor"
	"material-tracker/internal/domain/requester"
	"material-tracker/internal/infrastructure/session"
)

var ErrInvalidCredentials = errors.New("invalid credentials")

type LoginDTO struct {
	Token     string      `json:"token"`
	Actor     actor.Actor `json:"actor"`
	ExpiresAt time.Time   `json:"expires_at"`
}

type SessionStore interface {
	Create(ctx context.Context, token string, a actor.Actor) (*session.Session, error)
	Get(ctx context.Context, token string) (*session.Session, error)
	Delete(ctx context.Context, token string) error
}

type RequesterAuthenticator interface {
	Authenticate(ctx context.Context, requesterID, password string) (*requester.Requester, error)
}

// Presence is told about admin logins and logouts.
type Presence interface {
	Heartbeat(ctx context.Context, a actor.Actor) error
	Offline(ctx context.Context, a actor.Actor) error
}
