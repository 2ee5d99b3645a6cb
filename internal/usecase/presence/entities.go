package presence

import (
	"context"
	"time"
)

// StatusDTO is what workers see before submitting: whether an admin is
// around to approve.
type StatusDTO struct {
	Online     bool       `json:"online"`
	AdminEmail string     `json:"admin_email,omitempty"`
	LastSeen   *time.Time `json:"last_seen,omitempty"`
}

// Throttler lets one call per key through every window.
type Throttler interface {
	Allow(ctx context.Context, key string) (bool, error)
}
