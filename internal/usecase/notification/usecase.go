package notification

import (
	"context"

	"go.uber.org/zap"

	"material-tracker/internal/domain/actor"
	domain "material-tracker/internal/domain/notification"
	"material-tracker/internal/domain/transaction"
)

type Usecase struct {
	pub  domain.Publisher
	sub  domain.Subscriber
	seen domain.SeenStore
	txs  transaction.Repository
	log  *zap.Logger
}

func NewUsecase(pub domain.Publisher, sub domain.Subscriber, seen domain.SeenStore, txs transaction.Repository, log *zap.Logger) *Usecase {
	if log == nil {
		log = zap.NewNop()
	}
	return &Usecase{pub: pub, sub: sub, seen: seen, txs: txs, log: log}
}

// NewRequest tells admin dashboards about a fresh submission. Delivery is
// best effort: the submission already committed.
func (u *Usecase) NewRequest(ctx context.Context, t *transaction.Transaction) {
	u.publish(ctx, domain.FromTransaction(domain.KindNewRequest, t))
}

func (u *Usecase) Decided(ctx context.Context, t *transaction.Transaction) {
	u.publish(ctx, domain.FromTransaction(domain.KindDecided, t))
}

func (u *Usecase) publish(ctx context.Context, e domain.Event) {
	if u.pub == nil {
		return
	}
	if err := u.pub.Publish(ctx, e); err != nil {
		u.log.Warn("publish event failed",
			zap.String("kind", string(e.Kind)),
			zap.String("transaction_id", e.TransactionID),
			zap.Error(err))
	}
}

// Unseen lists the caller's approved or declined requests that were not
// acknowledged yet.
func (u *Usecase) Unseen(ctx context.Context, a actor.Actor) (*UnseenDTO, error) {
	if !a.IsWorker() {
		return nil, transaction.ErrForbidden
	}
	decided, err := u.decided(ctx, a)
	if err != nil {
		return nil, err
	}
	seen, err := u.seen.Seen(ctx, a.Key())
	if err != nil {
		return nil, err
	}

	items := make([]Decision, 0)
	for _, t := range decided {
		if _, ok := seen[t.ID]; ok {
			continue
		}
		items = append(items, Decision{
			TransactionID:  t.ID,
			Type:           t.Type,
			ApprovalStatus: t.ApprovalStatus,
			ApprovedBy:     t.ApprovedBy,
			ApprovalDate:   t.ApprovalDate,
		})
	}
	return &UnseenDTO{Count: len(items), Badge: badge(len(items)), Items: items}, nil
}

// MarkSeen acknowledges ids, or every decided request of the caller when
// ids is empty (opening the history screen).
func (u *Usecase) MarkSeen(ctx context.Context, a actor.Actor, ids []string) error {
	if !a.IsWorker() {
		return transaction.ErrForbidden
	}
	if len(ids) == 0 {
		decided, err := u.decided(ctx, a)
		if err != nil {
			return err
		}
		for _, t := range decided {
			ids = append(ids, t.ID)
		}
	}
	return u.seen.MarkSeen(ctx, a.Key(), ids)
}

func (u *Usecase) decided(ctx context.Context, a actor.Actor) ([]transaction.Transaction, error) {
	rows, err := u.txs.List(ctx, transaction.Query{WorkerID: a.WorkerID, WorkerName: a.Name})
	if err != nil {
		return nil, err
	}
	out := rows[:0]
	for _, t := range rows {
		if t.ApprovalStatus == transaction.StatusApproved || t.ApprovalStatus == transaction.StatusDeclined {
			out = append(out, t)
		}
	}
	return out, nil
}

// Stream feeds an admin dashboard until ctx is done.
func (u *Usecase) Stream(ctx context.Context, a actor.Actor) (<-chan domain.Event, error) {
	if !a.IsAdmin() {
		return nil, transaction.ErrForbidden
	}
	return u.sub.Subscribe(ctx)
}
