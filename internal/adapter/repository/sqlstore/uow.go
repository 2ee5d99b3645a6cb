package sqlstore

import (
	"context"
	"database/sql"

	"gorm.io/gorm"

	txDomain "material-tracker/internal/domain/transaction"
	"material-tracker/internal/domain/uow"
)

// TxOptions begins every unit of work at READ COMMITTED, so a decider that
// waited on a take's row lock reads the returns approved in the meantime.
var TxOptions = &sql.TxOptions{Isolation: sql.LevelReadCommitted}

type GormUoW struct{ db *gorm.DB }

func NewGormUoW(db *gorm.DB) *GormUoW { return &GormUoW{db: db} }

func repos(tx *gorm.DB) uow.Repos {
	return uow.Repos{
		Transactions: &TransactionRepository{db: tx},
		References:   &ReferenceRepository{db: tx},
	}
}

func (u *GormUoW) WithinTx(ctx context.Context, fn func(r uow.Repos) error) error {
	return u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(repos(tx))
	}, TxOptions)
}

func (u *GormUoW) WithinTransactionTx(ctx context.Context, id string, fn func(r uow.Repos, t *txDomain.Transaction) error) error {
	return u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		r := repos(tx)
		// lock the row up-front so deciders and editors serialize on it
		t, err := r.Transactions.GetByIDForUpdate(ctx, id)
		if err != nil {
			return err
		}
		return fn(r, t)
	}, TxOptions)
}
