package presencemock

import (
	"context"
	"time"

	"material-tracker/internal/domain/presence"
)

var _ presence.Repository = (*Repo)(nil)

// Repo is a function-backed mock that satisfies presence.Repository.
// Unset functions behave like an empty table.
type Repo struct {
	GetFn              func(ctx context.Context) (*presence.AdminStatus, error)
	UpsertFn           func(ctx context.Context, s *presence.AdminStatus) error
	MarkStaleOfflineFn func(ctx context.Context, cutoff time.Time) (int64, error)
}

func (m *Repo) Get(ctx context.Context) (*presence.AdminStatus, error) {
	if m.GetFn != nil {
		return m.GetFn(ctx)
	}
	return nil, nil
}

func (m *Repo) Upsert(ctx context.Context, s *presence.AdminStatus) error {
	if m.UpsertFn != nil {
		return m.UpsertFn(ctx, s)
	}
	return nil
}

func (m *Repo) MarkStaleOffline(ctx context.Context, cutoff time.Time) (int64, error) {
	if m.MarkStaleOfflineFn != nil {
		return m.MarkStaleOfflineFn(ctx, cutoff)
	}
	return 0, nil
}
