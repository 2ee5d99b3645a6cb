package approval

import (
	"context"
	"sort"
	"time"

	"go.uber.org/zap"

	"material-tracker/internal/domain/actor"
	"material-tracker/internal/domain/ledger"
	"material-tracker/internal/domain/transaction"
	"material-tracker/internal/domain/uow"
)

type Usecase struct {
	uow    uow.UnitOfWork
	pw     Passwords
	notify Notifier
	log    *zap.Logger
	now    func() time.Time
}

func NewUsecase(tx uow.UnitOfWork, pw Passwords, n Notifier, log *zap.Logger) *Usecase {
	if log == nil {
		log = zap.NewNop()
	}
	return &Usecase{uow: tx, pw: pw, notify: n, log: log, now: time.Now}
}

// Decide approves or declines a transaction. For returns the affected take
// rows are locked in id order and rewritten from the ledger in the same db
// transaction as the status change.
func (u *Usecase) Decide(ctx context.Context, a actor.Actor, id string, decision transaction.Status) (*transaction.Transaction, error) {
	if !a.IsAdmin() {
		return nil, transaction.ErrForbidden
	}
	var out *transaction.Transaction
	err := u.uow.WithinTransactionTx(ctx, id, func(r uow.Repos, t *transaction.Transaction) error {
		if err := t.CanTransition(decision); err != nil {
			return err
		}
		now := u.now().UTC()

		switch t.Type {
		case transaction.TypeTake:
			if t.ApprovalStatus == transaction.StatusApproved {
				cited, err := citedByApprovedReturns(ctx, r.Transactions, t.ReferenceNumbers())
				if err != nil {
					return err
				}
				if cited {
					return transaction.ErrTakeHasReturns
				}
			}
		case transaction.TypeReturn:
			err := u.rewriteTakes(ctx, r, t, func(l *ledger.Ledger) ([]ledger.Settlement, error) {
				return l.Settle(t, decision, a.Name, now)
			})
			if err != nil {
				return err
			}
		default:
			return transaction.ErrInvalidType
		}

		t.ApprovalStatus = decision
		t.ApprovedBy = a.Name
		t.ApprovalDate = &now
		if err := r.Transactions.Update(ctx, t); err != nil {
			return err
		}
		out = t
		return nil
	})
	if err != nil {
		return nil, err
	}

	u.log.Info("transaction decided",
		zap.String("transaction_id", out.ID),
		zap.String("type", string(out.Type)),
		zap.String("status", string(out.ApprovalStatus)),
		zap.String("by", a.Name))
	if u.notify != nil {
		u.notify.Decided(ctx, out)
	}
	return out, nil
}

// Delete removes any transaction. An approved return is withdrawn from the
// take lines first. A take keeps its reference numbers reserved while an
// approved return still cites them.
func (u *Usecase) Delete(ctx context.Context, a actor.Actor, id, password string) error {
	if !a.IsAdmin() {
		return transaction.ErrForbidden
	}
	if password != u.pw.Delete {
		return transaction.ErrIncorrectPassword
	}
	err := u.uow.WithinTransactionTx(ctx, id, func(r uow.Repos, t *transaction.Transaction) error {
		switch {
		case t.Type == transaction.TypeReturn && t.ApprovalStatus == transaction.StatusApproved:
			now := u.now().UTC()
			err := u.rewriteTakes(ctx, r, t, func(l *ledger.Ledger) ([]ledger.Settlement, error) {
				return l.Withdraw(t, now)
			})
			if err != nil {
				return err
			}
		case t.Type == transaction.TypeTake:
			cited, err := citedByApprovedReturns(ctx, r.Transactions, t.ReferenceNumbers())
			if err != nil {
				return err
			}
			if !cited {
				if err := r.References.ReleaseByTransaction(ctx, t.ID); err != nil {
					return err
				}
			}
		}
		return r.Transactions.Delete(ctx, t.ID)
	})
	if err != nil {
		return err
	}
	u.log.Info("transaction deleted", zap.String("transaction_id", id), zap.String("by", a.Name))
	return nil
}

// DeleteAll wipes every transaction and every reference number.
func (u *Usecase) DeleteAll(ctx context.Context, a actor.Actor, password string) (int64, error) {
	if !a.IsAdmin() {
		return 0, transaction.ErrForbidden
	}
	if password == "" || (password != u.pw.Delete && password != u.pw.History) {
		return 0, transaction.ErrIncorrectPassword
	}
	var n int64
	err := u.uow.WithinTx(ctx, func(r uow.Repos) error {
		var err error
		if n, err = r.Transactions.DeleteAll(ctx); err != nil {
			return err
		}
		return r.References.ReleaseAll(ctx)
	})
	if err != nil {
		return 0, err
	}
	u.log.Warn("all transactions deleted", zap.Int64("count", n), zap.String("by", a.Name))
	return n, nil
}

// rewriteTakes locks the take rows ret cites, replays the ledger step and
// writes every touched take back with a version check.
func (u *Usecase) rewriteTakes(ctx context.Context, r uow.Repos, ret *transaction.Transaction, step func(*ledger.Ledger) ([]ledger.Settlement, error)) error {
	owners, err := r.References.Resolve(ctx, ret.ReferenceNumbers())
	if err != nil {
		return err
	}
	ids := make([]string, 0, len(owners))
	seen := make(map[string]struct{}, len(owners))
	for _, takeID := range owners {
		if _, ok := seen[takeID]; ok {
			continue
		}
		seen[takeID] = struct{}{}
		ids = append(ids, takeID)
	}
	sort.Strings(ids)

	takes, err := r.Transactions.ListByIDs(ctx, ids, true)
	if err != nil {
		return err
	}
	returns, err := r.Transactions.ListApproved(ctx, transaction.TypeReturn)
	if err != nil {
		return err
	}

	settlements, err := step(ledger.New(takes, returns))
	if err != nil {
		return err
	}

	byID := make(map[string]*transaction.Transaction, len(takes))
	for i := range takes {
		byID[takes[i].ID] = &takes[i]
	}
	for _, s := range settlements {
		take, ok := byID[s.TakeID]
		if !ok {
			continue
		}
		s.Apply(take)
		if err := r.Transactions.Update(ctx, take); err != nil {
			return err
		}
	}
	return nil
}

func citedByApprovedReturns(ctx context.Context, txs transaction.Repository, refs []string) (bool, error) {
	if len(refs) == 0 {
		return false, nil
	}
	mine := make(map[string]struct{}, len(refs))
	for _, ref := range refs {
		mine[ref] = struct{}{}
	}
	returns, err := txs.ListApproved(ctx, transaction.TypeReturn)
	if err != nil {
		return false, err
	}
	for _, r := range returns {
		for _, m := range r.Materials {
			if _, ok := mine[m.ReferenceNumber]; ok {
				return true, nil
			}
		}
	}
	return false, nil
}
