package transaction

import "context"

// Query holds the filters the store can evaluate itself. Everything that
// needs to look inside the materials document is filtered in memory by the
// report use case.
type Query struct {
	Type       Type
	Status     Status
	WorkerID   string // exact match
	WorkerName string // exact match, paired with WorkerID for requester views
	DateFrom   string // inclusive, YYYY-MM-DD
	DateTo     string // inclusive, YYYY-MM-DD
	Limit      int
}

// MaxRows caps every list query, matching the store's response cap.
const MaxRows = 1000

type Repository interface {
	Create(ctx context.Context, t *Transaction) error
	GetByID(ctx context.Context, id string) (*Transaction, error)

	// Row lock for the remainder of the surrounding db transaction.
	GetByIDForUpdate(ctx context.Context, id string) (*Transaction, error)

	// ListByIDs returns rows ordered by id; forUpdate locks them.
	ListByIDs(ctx context.Context, ids []string, forUpdate bool) ([]Transaction, error)

	// ListApproved returns every approved transaction of a type, oldest first.
	ListApproved(ctx context.Context, typ Type) ([]Transaction, error)

	// List returns newest first, capped at MaxRows.
	List(ctx context.Context, q Query) ([]Transaction, error)

	// Update writes t only if the stored version still equals t.Version and
	// bumps it; otherwise ErrConcurrentUpdate.
	Update(ctx context.Context, t *Transaction) error

	Delete(ctx context.Context, id string) error
	DeleteAll(ctx context.Context) (int64, error)
	CountByStatus(ctx context.Context, s Status) (int64, error)
}
