package ledger

import (
	"sort"
	"time"

	"material-tracker/internal/domain/transaction"
)

// LineUpdate is the new derived state of one take line.
type LineUpdate struct {
	Index              int
	ReferenceNumber    string
	ReturnedQuantity   int
	Returned           bool
	ReturnDate         *time.Time
	ReturnDeclined     bool
	ReturnDeclinedBy   string
	ReturnDeclinedDate *time.Time
}

func (u LineUpdate) apply(m *transaction.MaterialLine) {
	m.ReturnedQuantity = u.ReturnedQuantity
	m.Returned = u.Returned
	m.ReturnDate = u.ReturnDate
	m.ReturnDeclined = u.ReturnDeclined
	m.ReturnDeclinedBy = u.ReturnDeclinedBy
	m.ReturnDeclinedDate = u.ReturnDeclinedDate
}

// Settlement groups the line updates of one take transaction.
type Settlement struct {
	TakeID string
	Lines  []LineUpdate
}

// Apply writes the updates onto t, which must be the take identified by
// TakeID.
func (s Settlement) Apply(t *transaction.Transaction) {
	for _, u := range s.Lines {
		if u.Index < 0 || u.Index >= len(t.Materials) || t.Materials[u.Index].ReferenceNumber != u.ReferenceNumber {
			if idx := t.LineIndex(u.ReferenceNumber); idx >= 0 {
				u.Index = idx
			} else {
				continue
			}
		}
		u.apply(&t.Materials[u.Index])
	}
}

// Settle computes the take line updates caused by deciding ret.
//
// Approving counts ret's quantities on top of every other approved return
// and fails with OverReturnError when that would exceed the taken quantity.
// Declining recomputes the totals without ret and marks the take lines as
// having a declined return. Whatever ret's previous status was, its earlier
// contribution is replaced, so approve and decline may be repeated.
//
// On success the ledger reflects the decision. Settlements are ordered by
// take id.
func (l *Ledger) Settle(ret *transaction.Transaction, decision transaction.Status, by string, now time.Time) ([]Settlement, error) {
	switch decision {
	case transaction.StatusApproved:
		return l.settle(ret, modeApprove, by, now)
	case transaction.StatusDeclined:
		return l.settle(ret, modeDecline, by, now)
	}
	return nil, transaction.ErrInvalidTransition
}

// Withdraw removes ret's contribution without marking a declined return on
// the take lines. It is used when a return is deleted outright.
func (l *Ledger) Withdraw(ret *transaction.Transaction, now time.Time) ([]Settlement, error) {
	return l.settle(ret, modeWithdraw, "", now)
}

type mode int

const (
	modeApprove mode = iota
	modeDecline
	modeWithdraw
)

func (l *Ledger) settle(ret *transaction.Transaction, m mode, by string, now time.Time) ([]Settlement, error) {
	if ret.Type != transaction.TypeReturn {
		return nil, transaction.ErrInvalidType
	}

	own := make(map[string]int)
	order := make([]string, 0, len(ret.Materials))
	for _, ml := range ret.Materials {
		if ml.ReferenceNumber == "" {
			continue
		}
		if _, seen := own[ml.ReferenceNumber]; !seen {
			order = append(order, ml.ReferenceNumber)
		}
		own[ml.ReferenceNumber] += ml.ReturnQuantity
	}

	byTake := make(map[string]*Settlement)
	for _, ref := range order {
		g, ok := l.grants[ref]
		if !ok {
			if m == modeApprove {
				return nil, &transaction.ReferenceError{ReferenceNumber: ref}
			}
			// nothing left to unwind for a number whose take is gone
			continue
		}
		line := g.take.Materials[g.index]
		others := l.total(ref, ret.ID)

		u := LineUpdate{Index: g.index, ReferenceNumber: ref}
		switch m {
		case modeApprove:
			total := others + own[ref]
			if total > line.Quantity {
				remaining := line.Quantity - others
				if remaining < 0 {
					remaining = 0
				}
				return nil, &transaction.OverReturnError{
					Material:        line.Name,
					Unit:            line.Unit,
					ReferenceNumber: ref,
					Requested:       own[ref],
					Remaining:       remaining,
				}
			}
			u.ReturnedQuantity = total
			u.Returned = total >= line.Quantity
			u.ReturnDate = line.ReturnDate
			if u.Returned {
				u.ReturnDate = timePtr(now)
			}
		case modeDecline, modeWithdraw:
			u.ReturnedQuantity = others
			u.Returned = others >= line.Quantity
			if u.Returned {
				u.ReturnDate = line.ReturnDate
			}
			if m == modeDecline {
				u.ReturnDeclined = true
				u.ReturnDeclinedBy = by
				u.ReturnDeclinedDate = timePtr(now)
			} else {
				u.ReturnDeclined = line.ReturnDeclined
				u.ReturnDeclinedBy = line.ReturnDeclinedBy
				u.ReturnDeclinedDate = line.ReturnDeclinedDate
			}
		}

		s := byTake[g.take.ID]
		if s == nil {
			s = &Settlement{TakeID: g.take.ID}
			byTake[g.take.ID] = s
		}
		s.Lines = append(s.Lines, u)
	}

	out := make([]Settlement, 0, len(byTake))
	for _, s := range byTake {
		out = append(out, *s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].TakeID < out[j].TakeID })

	l.removeReturn(ret.ID)
	if m == modeApprove {
		decided := *ret
		decided.ApprovalStatus = transaction.StatusApproved
		decided.ApprovedBy = by
		decided.ApprovalDate = timePtr(now)
		l.addReturn(decided)
		for _, ref := range order {
			sortHistory(l.history[ref])
		}
	}
	for _, s := range out {
		s.Apply(l.grants[s.Lines[0].ReferenceNumber].take)
	}
	return out, nil
}

// TakeIDs lists the distinct take transactions a set of settlements touch.
func TakeIDs(settlements []Settlement) []string {
	ids := make([]string, len(settlements))
	for i, s := range settlements {
		ids[i] = s.TakeID
	}
	return ids
}

func timePtr(t time.Time) *time.Time { return &t }
