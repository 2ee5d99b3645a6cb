package request

import (
	"context"

	"material-tracker/internal/domain/transaction"
)

type MaterialInput struct {
	Name            string `json:"name"`
	Unit            string `json:"unit"`
	Quantity        int    `json:"quantity"`
	ReferenceNumber string `json:"reference_number"`
	ReturnQuantity  int    `json:"return_quantity"`
}

// SubmitInput is shared by take and return submissions and edits. Worker
// identity fields are only read for admin callers; workers always submit as
// themselves. Empty date and time default to now.
type SubmitInput struct {
	WorkerName      string
	WorkerID        string
	TransactionDate string
	TransactionTime string
	Materials       []MaterialInput
	Notes           string
}

// Notifier is told about every committed submission.
type Notifier interface {
	NewRequest(ctx context.Context, t *transaction.Transaction)
}

const (
	DateLayout  = "2006-01-02"
	TimeLayout  = "15:04"
	DefaultUnit = "pcs"
)
