// Package ledger reconciles approved take lines against approved returns.
//
// A Ledger is built from the approved take transactions (grants) and the
// approved return transactions (settlements). The returned quantity of a
// reference number is always the sum of return_quantity over approved returns
// citing it; the value cached on the take line is derived from that sum and
// never read back.
package ledger

import (
	"context"
	"sort"
	"time"

	"material-tracker/internal/domain/transaction"
)

type Availability struct {
	ReferenceNumber string `json:"reference_number"`
	Name            string `json:"name"`
	Unit            string `json:"unit"`
	Quantity        int    `json:"quantity"`
	Returned        int    `json:"returned_quantity"`
	Remaining       int    `json:"remaining"`
	FullyReturned   bool   `json:"fully_returned"`
	TakeID          string `json:"take_transaction_id"`
	WorkerName      string `json:"worker_name"`
	WorkerID        string `json:"worker_id"`
}

// HistoryEntry is one approved return against a reference number.
type HistoryEntry struct {
	ReturnID        string     `json:"return_transaction_id"`
	WorkerName      string     `json:"worker_name"`
	WorkerID        string     `json:"worker_id"`
	Quantity        int        `json:"return_quantity"`
	TransactionDate string     `json:"transaction_date"`
	TransactionTime string     `json:"transaction_time"`
	ApprovedBy      string     `json:"approved_by,omitempty"`
	ApprovalDate    *time.Time `json:"approval_date,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
}

type grant struct {
	take  *transaction.Transaction
	index int
}

type Ledger struct {
	grants map[string]grant
	// contributions[ref][returnID] = return_quantity of an approved return
	contributions map[string]map[string]int
	history       map[string][]HistoryEntry
}

// New keeps only approved transactions of the matching type. When a number
// appears on more than one approved take line, the oldest line wins.
func New(takes, returns []transaction.Transaction) *Ledger {
	l := &Ledger{
		grants:        make(map[string]grant),
		contributions: make(map[string]map[string]int),
		history:       make(map[string][]HistoryEntry),
	}

	sorted := make([]transaction.Transaction, 0, len(takes))
	for _, t := range takes {
		if t.Type == transaction.TypeTake && t.ApprovalStatus == transaction.StatusApproved {
			sorted = append(sorted, t)
		}
	}
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].CreatedAt.Before(sorted[j].CreatedAt) })
	for i := range sorted {
		t := &sorted[i]
		t.Materials = append(t.Materials[:0:0], t.Materials...)
		for idx, m := range t.Materials {
			if m.Legacy() {
				continue
			}
			if _, dup := l.grants[m.ReferenceNumber]; dup {
				continue
			}
			l.grants[m.ReferenceNumber] = grant{take: t, index: idx}
		}
	}

	for _, r := range returns {
		if r.Type != transaction.TypeReturn || r.ApprovalStatus != transaction.StatusApproved {
			continue
		}
		l.addReturn(r)
	}
	for ref := range l.history {
		sortHistory(l.history[ref])
	}
	return l
}

func (l *Ledger) addReturn(r transaction.Transaction) {
	for _, m := range r.Materials {
		if m.ReferenceNumber == "" || m.ReturnQuantity <= 0 {
			continue
		}
		c := l.contributions[m.ReferenceNumber]
		if c == nil {
			c = make(map[string]int)
			l.contributions[m.ReferenceNumber] = c
		}
		c[r.ID] += m.ReturnQuantity
		l.history[m.ReferenceNumber] = append(l.history[m.ReferenceNumber], HistoryEntry{
			ReturnID:        r.ID,
			WorkerName:      r.WorkerName,
			WorkerID:        r.WorkerID,
			Quantity:        m.ReturnQuantity,
			TransactionDate: r.TransactionDate,
			TransactionTime: r.TransactionTime,
			ApprovedBy:      r.ApprovedBy,
			ApprovalDate:    r.ApprovalDate,
			CreatedAt:       r.CreatedAt,
		})
	}
}

func (l *Ledger) removeReturn(returnID string) {
	for ref, c := range l.contributions {
		delete(c, returnID)
		entries := l.history[ref][:0]
		for _, e := range l.history[ref] {
			if e.ReturnID != returnID {
				entries = append(entries, e)
			}
		}
		l.history[ref] = entries
	}
}

func sortHistory(h []HistoryEntry) {
	sort.SliceStable(h, func(i, j int) bool { return h[i].CreatedAt.Before(h[j].CreatedAt) })
}

func (l *Ledger) total(ref, excludeReturnID string) int {
	sum := 0
	for id, q := range l.contributions[ref] {
		if id == excludeReturnID {
			continue
		}
		sum += q
	}
	return sum
}

// Available computes the returnable balance of ref. It is a pure function of
// the approved ledgers.
func (l *Ledger) Available(ref string) (Availability, error) {
	g, ok := l.grants[ref]
	if !ok {
		return Availability{}, &transaction.ReferenceError{ReferenceNumber: ref}
	}
	line := g.take.Materials[g.index]
	returned := l.total(ref, "")
	remaining := line.Quantity - returned
	if remaining < 0 {
		remaining = 0
	}
	return Availability{
		ReferenceNumber: ref,
		Name:            line.Name,
		Unit:            line.Unit,
		Quantity:        line.Quantity,
		Returned:        returned,
		Remaining:       remaining,
		FullyReturned:   remaining <= 0,
		TakeID:          g.take.ID,
		WorkerName:      g.take.WorkerName,
		WorkerID:        g.take.WorkerID,
	}, nil
}

// AvailableFor is Available narrowed to take transactions of one worker.
// Another worker's number looks exactly like an unknown one.
func (l *Ledger) AvailableFor(ref, workerID string) (Availability, error) {
	a, err := l.Available(ref)
	if err != nil {
		return Availability{}, err
	}
	if a.WorkerID != workerID {
		return Availability{}, &transaction.ReferenceError{ReferenceNumber: ref}
	}
	return a, nil
}

// ValidateReturn checks a return submission as a whole and returns the lines
// with name, unit and quantity copied from the take lines. Requested
// quantities for the same number are summed before comparing with the
// remaining balance.
func (l *Ledger) ValidateReturn(lines []transaction.MaterialLine) ([]transaction.MaterialLine, error) {
	if len(lines) == 0 {
		return nil, transaction.ErrNoMaterials
	}
	requested := make(map[string]int, len(lines))
	order := make([]string, 0, len(lines))
	for _, m := range lines {
		if m.ReturnQuantity <= 0 {
			return nil, transaction.ErrInvalidQuantity
		}
		if err := m.Validate(transaction.TypeReturn); err != nil {
			return nil, err
		}
		if _, seen := requested[m.ReferenceNumber]; !seen {
			order = append(order, m.ReferenceNumber)
		}
		requested[m.ReferenceNumber] += m.ReturnQuantity
	}

	avail := make(map[string]Availability, len(order))
	for _, ref := range order {
		a, err := l.Available(ref)
		if err != nil {
			return nil, err
		}
		if requested[ref] > a.Remaining {
			return nil, &transaction.OverReturnError{
				Material:        a.Name,
				Unit:            a.Unit,
				ReferenceNumber: ref,
				Requested:       requested[ref],
				Remaining:       a.Remaining,
			}
		}
		avail[ref] = a
	}

	out := make([]transaction.MaterialLine, len(lines))
	for i, m := range lines {
		a := avail[m.ReferenceNumber]
		out[i] = transaction.MaterialLine{
			Name:            a.Name,
			Unit:            a.Unit,
			Quantity:        a.Quantity,
			ReferenceNumber: m.ReferenceNumber,
			ReturnQuantity:  m.ReturnQuantity,
		}
	}
	return out, nil
}

// History lists approved returns against ref, oldest first.
func (l *Ledger) History(ref string) []HistoryEntry {
	h := l.history[ref]
	out := make([]HistoryEntry, len(h))
	copy(out, h)
	return out
}

// Grant returns the take transaction holding ref, if any.
func (l *Ledger) Grant(ref string) (*transaction.Transaction, bool) {
	g, ok := l.grants[ref]
	if !ok {
		return nil, false
	}
	return g.take, true
}

// Source is the part of a transaction store a ledger is loaded from.
type Source interface {
	ListApproved(ctx context.Context, typ transaction.Type) ([]transaction.Transaction, error)
}

// Load reads every approved take and return from src.
func Load(ctx context.Context, src Source) (*Ledger, error) {
	takes, err := src.ListApproved(ctx, transaction.TypeTake)
	if err != nil {
		return nil, err
	}
	returns, err := src.ListApproved(ctx, transaction.TypeReturn)
	if err != nil {
		return nil, err
	}
	return New(takes, returns), nil
}
