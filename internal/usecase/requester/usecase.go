package requester

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"material-tracker/internal/domain/actor"
	domain "material-tracker/internal/domain/requester"
	"material-tracker/internal/domain/transaction"
)

type Usecase struct {
	repo     domain.Repository
	sessions SessionRevoker
	log      *zap.Logger
}

func NewUsecase(repo domain.Repository, sessions SessionRevoker, log *zap.Logger) *Usecase {
	if log == nil {
		log = zap.NewNop()
	}
	return &Usecase{repo: repo, sessions: sessions, log: log}
}

func (u *Usecase) Create(ctx context.Context, a actor.Actor, in CreateInput) (*domain.Requester, error) {
	if !a.IsAdmin() {
		return nil, transaction.ErrForbidden
	}
	r := &domain.Requester{
		RequesterID: strings.TrimSpace(in.RequesterID),
		Name:        strings.TrimSpace(in.Name),
	}
	if r.RequesterID == "" || r.Name == "" {
		return nil, domain.ErrMissingFields
	}
	if err := r.SetPassword(in.Password); err != nil {
		return nil, err
	}
	if err := u.repo.Create(ctx, r); err != nil {
		return nil, err
	}
	return r, nil
}

// Update changes a requester. Renaming or changing the password signs the
// old identity out everywhere.
func (u *Usecase) Update(ctx context.Context, a actor.Actor, id uint64, in UpdateInput) (*domain.Requester, error) {
	if !a.IsAdmin() {
		return nil, transaction.ErrForbidden
	}
	r, err := u.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	before := actor.Worker(r.Name, r.RequesterID)

	r.RequesterID = strings.TrimSpace(in.RequesterID)
	r.Name = strings.TrimSpace(in.Name)
	if r.RequesterID == "" || r.Name == "" {
		return nil, domain.ErrMissingFields
	}
	if in.Password != "" {
		if err := r.SetPassword(in.Password); err != nil {
			return nil, err
		}
	}
	if err := u.repo.Update(ctx, r); err != nil {
		return nil, err
	}

	if in.Password != "" || before != actor.Worker(r.Name, r.RequesterID) {
		u.revoke(ctx, before)
	}
	return r, nil
}

func (u *Usecase) Delete(ctx context.Context, a actor.Actor, id uint64) error {
	if !a.IsAdmin() {
		return transaction.ErrForbidden
	}
	r, err := u.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := u.repo.Delete(ctx, id); err != nil {
		return err
	}
	u.revoke(ctx, actor.Worker(r.Name, r.RequesterID))
	return nil
}

func (u *Usecase) List(ctx context.Context, a actor.Actor) ([]domain.Requester, error) {
	if !a.IsAdmin() {
		return nil, transaction.ErrForbidden
	}
	return u.repo.List(ctx)
}

// Authenticate never tells an unknown id apart from a wrong password.
func (u *Usecase) Authenticate(ctx context.Context, requesterID, password string) (*domain.Requester, error) {
	requesterID = strings.TrimSpace(requesterID)
	if requesterID == "" || password == "" {
		return nil, domain.ErrInvalidCredentials
	}
	r, err := u.repo.GetByRequesterID(ctx, requesterID)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, domain.ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if !r.CheckPassword(password) {
		return nil, domain.ErrInvalidCredentials
	}
	return r, nil
}

func (u *Usecase) revoke(ctx context.Context, a actor.Actor) {
	if u.sessions == nil {
		return
	}
	if err := u.sessions.RevokeAll(ctx, a); err != nil {
		u.log.Warn("revoke requester sessions", zap.String("worker_id", a.WorkerID), zap.Error(err))
	}
}
