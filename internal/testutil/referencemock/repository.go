package referencemock

import (
	"context"
	"errors"

	"material-tracker/internal/domain/reference"
)

var _ reference.Repository = (*Repo)(nil)

var errUnimplemented = errors.New("referencemock: method not implemented")

// Repo is a function-backed mock that satisfies reference.Repository.
type Repo struct {
	ExistsFn               func(ctx context.Context, numbers []string) ([]string, error)
	ReserveFn              func(ctx context.Context, txID string, numbers []string) error
	ResolveFn              func(ctx context.Context, numbers []string) (map[string]string, error)
	ReleaseByTransactionFn func(ctx context.Context, txID string) error
	ReleaseAllFn           func(ctx context.Context) error
}

// Exists defaults to "nothing taken".
func (m *Repo) Exists(ctx context.Context, numbers []string) ([]string, error) {
	if m.ExistsFn != nil {
		return m.ExistsFn(ctx, numbers)
	}
	return nil, nil
}

func (m *Repo) Reserve(ctx context.Context, txID string, numbers []string) error {
	if m.ReserveFn != nil {
		return m.ReserveFn(ctx, txID, numbers)
	}
	return nil
}

func (m *Repo) Resolve(ctx context.Context, numbers []string) (map[string]string, error) {
	if m.ResolveFn != nil {
		return m.ResolveFn(ctx, numbers)
	}
	return nil, errUnimplemented
}

func (m *Repo) ReleaseByTransaction(ctx context.Context, txID string) error {
	if m.ReleaseByTransactionFn != nil {
		return m.ReleaseByTransactionFn(ctx, txID)
	}
	return nil
}

func (m *Repo) ReleaseAll(ctx context.Context) error {
	if m.ReleaseAllFn != nil {
		return m.ReleaseAllFn(ctx)
	}
	return nil
}
