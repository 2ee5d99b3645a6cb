package notification

import (
	"time"

	"material-tracker/internal/domain/transaction"
)

// Decision is one decided request of the caller.
type Decision struct {
	TransactionID  string             `json:"transaction_id"`
	Type           transaction.Type   `json:"transaction_type"`
	ApprovalStatus transaction.Status `json:"approval_status"`
	ApprovedBy     string             `json:"approved_by,omitempty"`
	ApprovalDate   *time.Time         `json:"approval_date,omitempty"`
}

type UnseenDTO struct {
	Count int        `json:"count"`
	Badge string     `json:"badge"`
	Items []Decision `json:"items"`
}

// badge caps the label the way the portal header shows it.
func badge(n int) string {
	switch {
	case n == 0:
		return ""
	case n > 4:
		return "4+"
	}
	return string(rune('0' + n))
}
