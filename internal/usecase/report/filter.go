package report

import (
	"strings"
	"time"

	"material-tracker/internal/domain/transaction"
)

const dateLayout = "2006-01-02"

func (f Filter) match(t *transaction.Transaction, now time.Time) bool {
	return matchSearch(t, f.Search) &&
		matchWorkerID(t, f.WorkerID) &&
		matchPreset(t, f.Preset, now) &&
		matchReturnState(t, f.ReturnState)
}

func matchSearch(t *transaction.Transaction, term string) bool {
	if term == "" {
		return true
	}
	if strings.HasPrefix(term, "/") {
		who := strings.ToLower(strings.TrimSpace(term[1:]))
		return t.ApprovedBy != "" && strings.Contains(strings.ToLower(t.ApprovedBy), who)
	}
	needle := strings.ToLower(term)
	if strings.Contains(strings.ToLower(t.WorkerName), needle) ||
		strings.Contains(strings.ToLower(t.WorkerID), needle) {
		return true
	}
	for _, m := range t.Materials {
		if strings.Contains(strings.ToLower(m.Name), needle) {
			return true
		}
		if m.ReferenceNumber != "" && strings.Contains(m.ReferenceNumber, term) {
			return true
		}
	}
	return false
}

func matchWorkerID(t *transaction.Transaction, id string) bool {
	return id == "" || strings.Contains(strings.ToLower(t.WorkerID), strings.ToLower(id))
}

// matchPreset compares against the transaction date. Rows without a date are
// never filtered out; rows with an unreadable one always are.
func matchPreset(t *transaction.Transaction, preset string, now time.Time) bool {
	if preset == "" || preset == "all" || t.TransactionDate == "" {
		return true
	}
	d, err := time.ParseInLocation(dateLayout, t.TransactionDate, now.Location())
	if err != nil {
		return false
	}
	switch preset {
	case PresetWeek:
		return !d.Before(now.AddDate(0, 0, -7))
	case PresetMonth:
		return d.Year() == now.Year() && d.Month() == now.Month()
	case PresetYear:
		return d.Year() == now.Year()
	}
	return true
}

func matchReturnState(t *transaction.Transaction, state string) bool {
	if state == "" || state == "all" {
		return true
	}
	if t.Type != transaction.TypeTake {
		return false
	}
	switch state {
	case StateReturned:
		for _, m := range t.Materials {
			if !m.Returned {
				return false
			}
		}
		return true
	case StatePartiallyReturned:
		some, short := false, false
		for _, m := range t.Materials {
			if m.ReturnedQuantity > 0 {
				some = true
			}
			if m.ReturnedQuantity < m.Quantity {
				short = true
			}
		}
		return some && short
	case StateNotReturned:
		for _, m := range t.Materials {
			if m.ReturnedQuantity != 0 {
				return false
			}
		}
		return true
	}
	return true
}
