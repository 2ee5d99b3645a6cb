package report

import (
	"context"
	"time"

	"go.uber.org/zap"

	"material-tracker/internal/domain/actor"
	"material-tracker/internal/domain/ledger"
	"material-tracker/internal/domain/transaction"
)

type Usecase struct {
	txs  transaction.Repository
	head Letterhead
	log  *zap.Logger
	now  func() time.Time
}

func NewUsecase(txs transaction.Repository, head Letterhead, log *zap.Logger) *Usecase {
	if log == nil {
		log = zap.NewNop()
	}
	return &Usecase{txs: txs, head: head, log: log, now: time.Now}
}

// List returns matching transactions newest first. Workers only ever see
// their own.
func (u *Usecase) List(ctx context.Context, a actor.Actor, f Filter) ([]transaction.Transaction, error) {
	if !a.Valid() {
		return nil, actor.ErrUnauthenticated
	}
	if err := f.Validate(); err != nil {
		return nil, err
	}
	q := transaction.Query{
		Type:     f.Type,
		Status:   f.Status,
		DateFrom: f.DateFrom,
		DateTo:   f.DateTo,
		Limit:    transaction.MaxRows,
	}
	if a.IsWorker() {
		q.WorkerID, q.WorkerName = a.WorkerID, a.Name
	}
	rows, err := u.txs.List(ctx, q)
	if err != nil {
		return nil, err
	}

	now := u.now()
	out := make([]transaction.Transaction, 0, len(rows))
	for i := range rows {
		if f.match(&rows[i], now) {
			out = append(out, rows[i])
		}
	}
	return out, nil
}

// ReturnHistory lists approved returns against ref, oldest first.
func (u *Usecase) ReturnHistory(ctx context.Context, a actor.Actor, ref string) ([]ledger.HistoryEntry, error) {
	if !a.Valid() {
		return nil, actor.ErrUnauthenticated
	}
	l, err := ledger.Load(ctx, u.txs)
	if err != nil {
		return nil, err
	}
	if a.IsWorker() {
		if _, err := l.AvailableFor(ref, a.WorkerID); err != nil {
			return nil, err
		}
	} else if _, err := l.Available(ref); err != nil {
		return nil, err
	}
	return l.History(ref), nil
}

// Summary feeds the admin pending badge.
func (u *Usecase) Summary(ctx context.Context, a actor.Actor) (*SummaryDTO, error) {
	if !a.IsAdmin() {
		return nil, transaction.ErrForbidden
	}
	n, err := u.txs.CountByStatus(ctx, transaction.StatusPending)
	if err != nil {
		return nil, err
	}
	return &SummaryDTO{Pending: n}, nil
}
