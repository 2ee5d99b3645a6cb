package transactionmock

import (
	"context"
	"errors"

	domain "material-tracker/internal/domain/transaction"
)

var _ domain.Repository = (*Repo)(nil)

var errUnimplemented = errors.New("transactionmock: method not implemented")

// Repo is a function-backed mock that satisfies domain.Repository.
// Unset writers succeed; unset readers return errUnimplemented.
type Repo struct {
	CreateFn           func(ctx context.Context, t *domain.Transaction) error
	GetByIDFn          func(ctx context.Context, id string) (*domain.Transaction, error)
	GetByIDForUpdateFn func(ctx context.Context, id string) (*domain.Transaction, error)
	ListByIDsFn        func(ctx context.Context, ids []string, forUpdate bool) ([]domain.Transaction, error)
	ListApprovedFn     func(ctx context.Context, typ domain.Type) ([]domain.Transaction, error)
	ListFn             func(ctx context.Context, q domain.Query) ([]domain.Transaction, error)
	UpdateFn           func(ctx context.Context, t *domain.Transaction) error
	DeleteFn           func(ctx context.Context, id string) error
	DeleteAllFn        func(ctx context.Context) (int64, error)
	CountByStatusFn    func(ctx context.Context, s domain.Status) (int64, error)
}

func (m *Repo) Create(ctx context.Context, t *domain.Transaction) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, t)
	}
	return nil
}

func (m *Repo) GetByID(ctx context.Context, id string) (*domain.Transaction, error) {
	if m.GetByIDFn != nil {
		return m.GetByIDFn(ctx, id)
	}
	return nil, errUnimplemented
}

func (m *Repo) GetByIDForUpdate(ctx context.Context, id string) (*domain.Transaction, error) {
	if m.GetByIDForUpdateFn != nil {
		return m.GetByIDForUpdateFn(ctx, id)
	}
	return nil, errUnimplemented
}

func (m *Repo) ListByIDs(ctx context.Context, ids []string, forUpdate bool) ([]domain.Transaction, error) {
	if m.ListByIDsFn != nil {
		return m.ListByIDsFn(ctx, ids, forUpdate)
	}
	return nil, errUnimplemented
}

func (m *Repo) ListApproved(ctx context.Context, typ domain.Type) ([]domain.Transaction, error) {
	if m.ListApprovedFn != nil {
		return m.ListApprovedFn(ctx, typ)
	}
	return nil, errUnimplemented
}

func (m *Repo) List(ctx context.Context, q domain.Query) ([]domain.Transaction, error) {
	if m.ListFn != nil {
		return m.ListFn(ctx, q)
	}
	return nil, errUnimplemented
}

func (m *Repo) Update(ctx context.Context, t *domain.Transaction) error {
	if m.UpdateFn != nil {
		return m.UpdateFn(ctx, t)
	}
	return nil
}

func (m *Repo) Delete(ctx context.Context, id string) error {
	if m.DeleteFn != nil {
		return m.DeleteFn(ctx, id)
	}
	return nil
}

func (m *Repo) DeleteAll(ctx context.Context) (int64, error) {
	if m.DeleteAllFn != nil {
		return m.DeleteAllFn(ctx)
	}
	return 0, nil
}

func (m *Repo) CountByStatus(ctx context.Context, s domain.Status) (int64, error) {
	if m.CountByStatusFn != nil {
		return m.CountByStatusFn(ctx, s)
	}
	return 0, errUnimplemented
}
