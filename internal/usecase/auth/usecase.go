package auth

import (
	"context"
	"crypto/subtle"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"material-tracker/internal/domain/actor"
	"material-tracker/internal/domain/transaction"
	"material-tracker/internal/infrastructure/session"
	"material-tracker/pkg/id"
)

type Usecase struct {
	sessions      SessionStore
	requesters    RequesterAuthenticator
	presence      Presence
	adminPassword string
	log           *zap.Logger
	newToken      func() (string, error)
}

func NewUsecase(sessions SessionStore, requesters RequesterAuthenticator, presence Presence, adminPassword string, log *zap.Logger) *Usecase {
	if log == nil {
		log = zap.NewNop()
	}
	return &Usecase{
		sessions:      sessions,
		requesters:    requesters,
		presence:      presence,
		adminPassword: adminPassword,
		log:           log,
		newToken:      id.NewToken,
	}
}

// LoginWorker opens a session for any name and worker id. Workers are not
// registered anywhere; the pair is their identity.
func (u *Usecase) LoginWorker(ctx context.Context, name, workerID string) (*LoginDTO, error) {
	a := actor.Worker(strings.TrimSpace(name), strings.TrimSpace(workerID))
	if !a.Valid() {
		return nil, transaction.ErrMissingWorker
	}
	return u.open(ctx, a)
}

func (u *Usecase) LoginRequester(ctx context.Context, requesterID, password string) (*LoginDTO, error) {
	r, err := u.requesters.Authenticate(ctx, requesterID, password)
	if err != nil {
		return nil, err
	}
	return u.open(ctx, actor.Worker(r.Name, r.RequesterID))
}

func (u *Usecase) LoginAdmin(ctx context.Context, name, email, password string) (*LoginDTO, error) {
	a := actor.Admin(strings.TrimSpace(name), strings.TrimSpace(email))
	if !a.Valid() || u.adminPassword == "" ||
		subtle.ConstantTimeCompare([]byte(password), []byte(u.adminPassword)) != 1 {
		return nil, ErrInvalidCredentials
	}
	out, err := u.open(ctx, a)
	if err != nil {
		return nil, err
	}
	if u.presence != nil {
		if err := u.presence.Heartbeat(ctx, a); err != nil {
			u.log.Warn("mark admin online failed", zap.String("actor", a.Key()), zap.Error(err))
		}
	}
	return out, nil
}

// Resolve maps a bearer token to its actor. Unknown and expired tokens both
// give actor.ErrUnauthenticated.
func (u *Usecase) Resolve(ctx context.Context, token string) (actor.Actor, error) {
	if token == "" {
		return actor.Actor{}, actor.ErrUnauthenticated
	}
	s, err := u.sessions.Get(ctx, token)
	if errors.Is(err, session.ErrNotFound) {
		return actor.Actor{}, actor.ErrUnauthenticated
	}
	if err != nil {
		return actor.Actor{}, err
	}
	return s.Actor, nil
}

func (u *Usecase) Logout(ctx context.Context, token string) error {
	a, err := u.Resolve(ctx, token)
	if err != nil {
		return err
	}
	if err := u.sessions.Delete(ctx, token); err != nil {
		return err
	}
	if a.IsAdmin() && u.presence != nil {
		if err := u.presence.Offline(ctx, a); err != nil {
			u.log.Warn("mark admin offline failed", zap.String("actor", a.Key()), zap.Error(err))
		}
	}
	u.log.Info("logout", zap.String("actor", a.Key()))
	return nil
}

func (u *Usecase) open(ctx context.Context, a actor.Actor) (*LoginDTO, error) {
	token, err := u.newToken()
	if err != nil {
		return nil, err
	}
	s, err := u.sessions.Create(ctx, token, a)
	if err != nil {
		return nil, err
	}
	u.log.Info("login", zap.String("actor", a.Key()), zap.String("role", string(a.Role)))
	return &LoginDTO{Token: token, Actor: a, ExpiresAt: time.Unix(s.ExpiresAt, 0).UTC()}, nil
}
