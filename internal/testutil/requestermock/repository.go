package requestermock

import (
	"context"
	"errors"

	"material-tracker/internal/domain/requester"
)

var _ requester.Repository = (*Repo)(nil)

var errUnimplemented = errors.New("requestermock: method not implemented")

// Repo is a function-backed mock that satisfies requester.Repository.
type Repo struct {
	CreateFn           func(ctx context.Context, r *requester.Requester) error
	GetByIDFn          func(ctx context.Context, id uint64) (*requester.Requester, error)
	GetByRequesterIDFn func(ctx context.Context, requesterID string) (*requester.Requester, error)
	UpdateFn           func(ctx context.Context, r *requester.Requester) error
	DeleteFn           func(ctx context.Context, id uint64) error
	ListFn             func(ctx context.Context) ([]requester.Requester, error)
}

func (m *Repo) Create(ctx context.Context, r *requester.Requester) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, r)
	}
	return nil
}

func (m *Repo) GetByID(ctx context.Context, id uint64) (*requester.Requester, error) {
	if m.GetByIDFn != nil {
		return m.GetByIDFn(ctx, id)
	}
	return nil, errUnimplemented
}

func (m *Repo) GetByRequesterID(ctx context.Context, requesterID string) (*requester.Requester, error) {
	if m.GetByRequesterIDFn != nil {
		return m.GetByRequesterIDFn(ctx, requesterID)
	}
	return nil, errUnimplemented
}

func (m *Repo) Update(ctx context.Context, r *requester.Requester) error {
	if m.UpdateFn != nil {
		return m.UpdateFn(ctx, r)
	}
	return nil
}

func (m *Repo) Delete(ctx context.Context, id uint64) error {
	if m.DeleteFn != nil {
		return m.DeleteFn(ctx, id)
	}
	return nil
}

func (m *Repo) List(ctx context.Context) ([]requester.Requester, error) {
	if m.ListFn != nil {
		return m.ListFn(ctx)
	}
	return nil, errUnimplemented
}
