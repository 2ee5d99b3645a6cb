package request

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"material-tracker/internal/domain/actor"
	"material-tracker/internal/domain/ledger"
	"material-tracker/internal/domain/reference"
	"material-tracker/internal/domain/transaction"
	"material-tracker/internal/domain/uow"
)

type Usecase struct {
	uow    uow.UnitOfWork
	txs    transaction.Repository
	alloc  *reference.Allocator
	notify Notifier
	log    *zap.Logger
	now    func() time.Time
}

func NewUsecase(tx uow.UnitOfWork, txs transaction.Repository, alloc *reference.Allocator, n Notifier, log *zap.Logger) *Usecase {
	if log == nil {
		log = zap.NewNop()
	}
	return &Usecase{uow: tx, txs: txs, alloc: alloc, notify: n, log: log, now: time.Now}
}

// SubmitTake allocates one sequential reference number per material line and
// stores a pending take.
func (u *Usecase) SubmitTake(ctx context.Context, a actor.Actor, in SubmitInput) (*transaction.Transaction, error) {
	name, workerID, err := identity(a, in)
	if err != nil {
		return nil, err
	}
	date, tm, err := u.stamp(in)
	if err != nil {
		return nil, err
	}
	lines, err := takeLines(in.Materials)
	if err != nil {
		return nil, err
	}

	t := &transaction.Transaction{
		ID:              uuid.NewString(),
		WorkerName:      name,
		WorkerID:        workerID,
		Type:            transaction.TypeTake,
		TransactionDate: date,
		TransactionTime: tm,
		Materials:       lines,
		Notes:           strings.TrimSpace(in.Notes),
		ApprovalStatus:  transaction.StatusPending,
	}
	err = u.uow.WithinTx(ctx, func(r uow.Repos) error {
		if err := u.assignReferences(ctx, r, t); err != nil {
			return err
		}
		return r.Transactions.Create(ctx, t)
	})
	if err != nil {
		return nil, err
	}

	u.log.Info("take submitted",
		zap.String("transaction_id", t.ID),
		zap.String("worker_id", t.WorkerID),
		zap.Strings("reference_numbers", t.ReferenceNumbers()))
	u.published(ctx, t)
	return t, nil
}

// SubmitReturn validates the whole submission against the approved ledgers
// before anything is written. Take lines are left untouched until approval.
func (u *Usecase) SubmitReturn(ctx context.Context, a actor.Actor, in SubmitInput) (*transaction.Transaction, error) {
	name, workerID, err := identity(a, in)
	if err != nil {
		return nil, err
	}
	date, tm, err := u.stamp(in)
	if err != nil {
		return nil, err
	}
	requested := returnLines(in.Materials)

	t := &transaction.Transaction{
		ID:              uuid.NewString(),
		WorkerName:      name,
		WorkerID:        workerID,
		Type:            transaction.TypeReturn,
		TransactionDate: date,
		TransactionTime: tm,
		Notes:           strings.TrimSpace(in.Notes),
		ApprovalStatus:  transaction.StatusPending,
	}
	err = u.uow.WithinTx(ctx, func(r uow.Repos) error {
		lines, err := validateReturn(ctx, r.Transactions, a, requested)
		if err != nil {
			return err
		}
		t.Materials = lines
		return r.Transactions.Create(ctx, t)
	})
	if err != nil {
		return nil, err
	}

	u.log.Info("return submitted",
		zap.String("transaction_id", t.ID),
		zap.String("worker_id", t.WorkerID),
		zap.Strings("reference_numbers", t.ReferenceNumbers()))
	u.published(ctx, t)
	return t, nil
}

// Edit replaces the content of a pending transaction. Take edits draw fresh
// reference numbers; return edits are validated again.
func (u *Usecase) Edit(ctx context.Context, a actor.Actor, id string, in SubmitInput) (*transaction.Transaction, error) {
	if !a.Valid() {
		return nil, actor.ErrUnauthenticated
	}
	var out *transaction.Transaction
	err := u.uow.WithinTransactionTx(ctx, id, func(r uow.Repos, t *transaction.Transaction) error {
		if !mayChange(a, t) {
			return transaction.ErrForbidden
		}
		if !t.Pending() {
			return transaction.ErrNotPending
		}

		if a.IsAdmin() {
			if name := strings.TrimSpace(in.WorkerName); name != "" {
				t.WorkerName = name
			}
			if wid := strings.TrimSpace(in.WorkerID); wid != "" {
				t.WorkerID = wid
			}
		}
		if in.TransactionDate != "" || in.TransactionTime != "" {
			if in.TransactionDate == "" {
				in.TransactionDate = t.TransactionDate
			}
			if in.TransactionTime == "" {
				in.TransactionTime = t.TransactionTime
			}
			date, tm, err := u.stamp(in)
			if err != nil {
				return err
			}
			t.TransactionDate, t.TransactionTime = date, tm
		}
		t.Notes = strings.TrimSpace(in.Notes)

		switch t.Type {
		case transaction.TypeTake:
			lines, err := takeLines(in.Materials)
			if err != nil {
				return err
			}
			if err := r.References.ReleaseByTransaction(ctx, t.ID); err != nil {
				return err
			}
			t.Materials = lines
			if err := u.assignReferences(ctx, r, t); err != nil {
				return err
			}
		case transaction.TypeReturn:
			lines, err := validateReturn(ctx, r.Transactions, a, returnLines(in.Materials))
			if err != nil {
				return err
			}
			t.Materials = lines
		}

		if err := r.Transactions.Update(ctx, t); err != nil {
			return err
		}
		out = t
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Delete removes the caller's own pending request and frees its reference
// numbers. Admin deletes go through the password-gated approval flow.
func (u *Usecase) Delete(ctx context.Context, a actor.Actor, id string) error {
	if !a.Valid() {
		return actor.ErrUnauthenticated
	}
	return u.uow.WithinTransactionTx(ctx, id, func(r uow.Repos, t *transaction.Transaction) error {
		if !a.IsWorker() || !t.OwnedBy(a.Name, a.WorkerID) {
			return transaction.ErrForbidden
		}
		if !t.Pending() {
			return transaction.ErrNotPending
		}
		if err := r.References.ReleaseByTransaction(ctx, t.ID); err != nil {
			return err
		}
		return r.Transactions.Delete(ctx, t.ID)
	})
}

func (u *Usecase) Get(ctx context.Context, a actor.Actor, id string) (*transaction.Transaction, error) {
	if !a.Valid() {
		return nil, actor.ErrUnauthenticated
	}
	t, err := u.txs.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !mayChange(a, t) {
		return nil, transaction.ErrForbidden
	}
	return t, nil
}

// Lookup backs the return form auto-fill. Workers only see numbers from
// their own take transactions.
func (u *Usecase) Lookup(ctx context.Context, a actor.Actor, ref string) (*ledger.Availability, error) {
	if !a.Valid() {
		return nil, actor.ErrUnauthenticated
	}
	ref = strings.TrimSpace(ref)
	if !transaction.ValidReferenceNumber(ref) {
		return nil, &transaction.LineError{Reason: "a 6-digit reference number is required"}
	}
	l, err := ledger.Load(ctx, u.txs)
	if err != nil {
		return nil, err
	}
	var av ledger.Availability
	if a.IsAdmin() {
		av, err = l.Available(ref)
	} else {
		av, err = l.AvailableFor(ref, a.WorkerID)
	}
	if err != nil {
		return nil, err
	}
	return &av, nil
}

func (u *Usecase) assignReferences(ctx context.Context, r uow.Repos, t *transaction.Transaction) error {
	refs, err := u.alloc.Allocate(ctx, r.References, t.ID, len(t.Materials))
	if err != nil {
		return err
	}
	taken := u.now().UTC()
	for i := range t.Materials {
		t.Materials[i].ReferenceNumber = refs[i]
		t.Materials[i].TakenDate = &taken
	}
	return nil
}

func (u *Usecase) published(ctx context.Context, t *transaction.Transaction) {
	if u.notify != nil {
		u.notify.NewRequest(ctx, t)
	}
}

func (u *Usecase) stamp(in SubmitInput) (string, string, error) {
	now := u.now()
	date := strings.TrimSpace(in.TransactionDate)
	if date == "" {
		date = now.Format(DateLayout)
	} else if _, err := time.Parse(DateLayout, date); err != nil {
		return "", "", fmt.Errorf("%w: transaction_date must be YYYY-MM-DD", transaction.ErrValidation)
	}
	tm := strings.TrimSpace(in.TransactionTime)
	if tm == "" {
		tm = now.Format(TimeLayout)
	} else if _, err := time.Parse(TimeLayout, tm); err != nil {
		return "", "", fmt.Errorf("%w: transaction_time must be HH:MM", transaction.ErrValidation)
	}
	return date, tm, nil
}

// identity is the worker a submission is recorded for.
func identity(a actor.Actor, in SubmitInput) (string, string, error) {
	switch {
	case a.IsWorker():
		return a.Name, a.WorkerID, nil
	case a.IsAdmin():
		name, id := strings.TrimSpace(in.WorkerName), strings.TrimSpace(in.WorkerID)
		if name == "" || id == "" {
			return "", "", transaction.ErrMissingWorker
		}
		return name, id, nil
	}
	return "", "", actor.ErrUnauthenticated
}

func mayChange(a actor.Actor, t *transaction.Transaction) bool {
	return a.IsAdmin() || (a.IsWorker() && t.OwnedBy(a.Name, a.WorkerID))
}

// takeLines drops rows with a blank name, the way the request form does.
func takeLines(in []MaterialInput) ([]transaction.MaterialLine, error) {
	out := make([]transaction.MaterialLine, 0, len(in))
	for _, m := range in {
		name := strings.TrimSpace(m.Name)
		if name == "" {
			continue
		}
		unit := strings.TrimSpace(m.Unit)
		if unit == "" {
			unit = DefaultUnit
		}
		line := transaction.MaterialLine{Name: name, Unit: unit, Quantity: m.Quantity}
		if err := line.Validate(transaction.TypeTake); err != nil {
			return nil, err
		}
		out = append(out, line)
	}
	if len(out) == 0 {
		return nil, transaction.ErrNoMaterials
	}
	return out, nil
}

func returnLines(in []MaterialInput) []transaction.MaterialLine {
	out := make([]transaction.MaterialLine, 0, len(in))
	for _, m := range in {
		out = append(out, transaction.MaterialLine{
			Name:            strings.TrimSpace(m.Name),
			ReferenceNumber: strings.TrimSpace(m.ReferenceNumber),
			ReturnQuantity:  m.ReturnQuantity,
		})
	}
	return out
}

// validateReturn checks a return for a against the approved ledgers. A
// worker may only cite numbers from their own takes.
func validateReturn(ctx context.Context, txs transaction.Repository, a actor.Actor, lines []transaction.MaterialLine) ([]transaction.MaterialLine, error) {
	l, err := ledger.Load(ctx, txs)
	if err != nil {
		return nil, err
	}
	if a.IsWorker() {
		for _, m := range lines {
			if !transaction.ValidReferenceNumber(m.ReferenceNumber) {
				continue
			}
			if _, err := l.AvailableFor(m.ReferenceNumber, a.WorkerID); err != nil {
				return nil, err
			}
		}
	}
	return l.ValidateReturn(lines)
}
