package presence

import (
	"context"
	"time"

	"go.uber.org/zap"

	"material-tracker/internal/domain/actor"
	domain "material-tracker/internal/domain/presence"
	"material-tracker/internal/domain/transaction"
)

type Usecase struct {
	repo     domain.Repository
	throttle Throttler
	stale    time.Duration
	log      *zap.Logger
	now      func() time.Time
}

// NewUsecase builds the presence use case. throttle may be nil, in which case
// Touch writes on every call.
func NewUsecase(repo domain.Repository, throttle Throttler, stale time.Duration, log *zap.Logger) *Usecase {
	if log == nil {
		log = zap.NewNop()
	}
	return &Usecase{repo: repo, throttle: throttle, stale: stale, log: log, now: time.Now}
}

func (u *Usecase) Heartbeat(ctx context.Context, a actor.Actor) error {
	if !a.IsAdmin() {
		return transaction.ErrForbidden
	}
	return u.repo.Upsert(ctx, &domain.AdminStatus{
		AdminEmail: adminEmail(a),
		LastSeen:   u.now().UTC(),
		IsOnline:   true,
	})
}

// Offline clears the flag on logout or when the dashboard is closed.
func (u *Usecase) Offline(ctx context.Context, a actor.Actor) error {
	if !a.IsAdmin() {
		return transaction.ErrForbidden
	}
	return u.repo.Upsert(ctx, &domain.AdminStatus{
		AdminEmail: adminEmail(a),
		LastSeen:   u.now().UTC(),
		IsOnline:   false,
	})
}

func (u *Usecase) Status(ctx context.Context) (*StatusDTO, error) {
	s, err := u.repo.Get(ctx)
	if err != nil {
		return nil, err
	}
	if s == nil {
		return &StatusDTO{}, nil
	}
	last := s.LastSeen
	return &StatusDTO{
		Online:     s.OnlineAt(u.now(), u.stale),
		AdminEmail: s.AdminEmail,
		LastSeen:   &last,
	}, nil
}

// Touch is Heartbeat at most once per throttle window per admin. Failures
// are logged and swallowed; a missed touch only delays presence.
func (u *Usecase) Touch(ctx context.Context, a actor.Actor) {
	if !a.IsAdmin() {
		return
	}
	if u.throttle != nil {
		ok, err := u.throttle.Allow(ctx, a.Key())
		if err != nil {
			u.log.Warn("presence throttle failed", zap.String("actor", a.Key()), zap.Error(err))
			return
		}
		if !ok {
			return
		}
	}
	if err := u.Heartbeat(ctx, a); err != nil {
		u.log.Warn("presence touch failed", zap.String("actor", a.Key()), zap.Error(err))
	}
}

// Sweep marks the admin offline once the last heartbeat is older than the
// stale window. It covers tabs that were killed without an offline call.
func (u *Usecase) Sweep(ctx context.Context) (int64, error) {
	return u.repo.MarkStaleOffline(ctx, u.now().UTC().Add(-u.stale))
}

// Run sweeps every interval until ctx is done.
func (u *Usecase) Run(ctx context.Context, every time.Duration) {
	t := time.NewTicker(every)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			n, err := u.Sweep(ctx)
			if err != nil {
				if ctx.Err() == nil {
					u.log.Warn("presence sweep failed", zap.Error(err))
				}
				continue
			}
			if n > 0 {
				u.log.Info("admin marked offline", zap.Int64("rows", n))
			}
		}
	}
}

func adminEmail(a actor.Actor) string {
	if a.Email != "" {
		return a.Email
	}
	return a.Name
}
