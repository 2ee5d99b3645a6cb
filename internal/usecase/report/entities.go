package report

import (
	"fmt"
	"time"

	"material-tracker/internal/domain/transaction"
)

// Filter combines the store-side filters with the dashboard's in-memory
// ones.
type Filter struct {
	Type     transaction.Type
	Status   transaction.Status
	DateFrom string
	DateTo   string

	// WorkerID matches as a case-insensitive substring.
	WorkerID string
	// Search matches worker name, worker id, material name or reference
	// number; a leading "/" searches approved_by instead.
	Search string
	// Preset is week, month or year.
	Preset string
	// ReturnState is returned, partially_returned or not_returned and only
	// ever matches take transactions.
	ReturnState string
}

const (
	PresetWeek  = "week"
	PresetMonth = "month"
	PresetYear  = "year"

	StateReturned          = "returned"
	StatePartiallyReturned = "partially_returned"
	StateNotReturned       = "not_returned"
)

func (f Filter) Validate() error {
	if f.Type != "" && !f.Type.Valid() {
		return transaction.ErrInvalidType
	}
	if f.Status != "" && !f.Status.Valid() {
		return fmt.Errorf("%w: unknown status %q", transaction.ErrValidation, f.Status)
	}
	switch f.Preset {
	case "", "all", PresetWeek, PresetMonth, PresetYear:
	default:
		return fmt.Errorf("%w: unknown date preset %q", transaction.ErrValidation, f.Preset)
	}
	switch f.ReturnState {
	case "", "all", StateReturned, StatePartiallyReturned, StateNotReturned:
	default:
		return fmt.Errorf("%w: unknown return state %q", transaction.ErrValidation, f.ReturnState)
	}
	return nil
}

type SummaryDTO struct {
	Pending int64 `json:"pending"`
}

// Letterhead is printed at the top of every receipt.
type Letterhead struct {
	Company string
	Address string
}

// ExportFilename names the workbook after the export day.
func ExportFilename(now time.Time) string {
	return fmt.Sprintf("Materials_%s.xlsx", now.Format("2006-01-02"))
}
