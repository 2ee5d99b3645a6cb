package uow

import (
	"context"

	"material-tracker/internal/domain/reference"
	"material-tracker/internal/domain/transaction"
)

// domain/uow/uow.go
type Repos struct {
	Transactions transaction.Repository
	References   reference.Repository
}

type UnitOfWork interface {
	// plain tx
	WithinTx(ctx context.Context, fn func(r Repos) error) error
	// convenience: lock the transaction row first, then pass it in
	WithinTransactionTx(ctx context.Context, id string, fn func(r Repos, t *transaction.Transaction) error) error
}
