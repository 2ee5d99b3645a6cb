package requester

import (
	"context"

	"material-tracker/internal/domain/actor"
)

type CreateInput struct {
	RequesterID string
	Name        string
	Password    string
}

// UpdateInput leaves the password untouched when Password is empty.
type UpdateInput struct {
	RequesterID string
	Name        string
	Password    string
}

// SessionRevoker ends every open session of an identity.
type SessionRevoker interface {
	RevokeAll(ctx context.Context, a actor.Actor) error
}
