package approval

import (
	"context"

	"material-tracker/internal/domain/transaction"
)

// Passwords gate the destructive admin operations. Delete-all accepts
// either one.
type Passwords struct {
	Delete  string
	History string
}

type Notifier interface {
	Decided(ctx context.Context, t *transaction.Transaction)
}
