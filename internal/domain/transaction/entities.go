package transaction

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Type string

const (
	TypeTake   Type = "take"
	TypeReturn Type = "return"
)

func (t Type) Valid() bool { return t == TypeTake || t == TypeReturn }

type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusDeclined Status = "declined"
)

func (s Status) Valid() bool {
	return s == StatusPending || s == StatusApproved || s == StatusDeclined
}

// MaterialLine is one element of Transaction.Materials. Take lines carry the
// reference number and the cached return bookkeeping; return lines carry the
// quantity being returned against a reference number.
type MaterialLine struct {
	Name     string `json:"name"`
	Unit     string `json:"unit"`
	Quantity int    `json:"quantity"`

	ReferenceNumber string `json:"reference_number,omitempty"`

	// take lines
	Returned           bool       `json:"returned,omitempty"`
	ReturnedQuantity   int        `json:"returned_quantity,omitempty"`
	ReturnDeclined     bool       `json:"return_declined,omitempty"`
	ReturnDeclinedBy   string     `json:"return_declined_by,omitempty"`
	ReturnDeclinedDate *time.Time `json:"return_declined_date,omitempty"`
	ReturnDate         *time.Time `json:"return_date,omitempty"`
	TakenDate          *time.Time `json:"taken_date,omitempty"`

	// return lines
	ReturnQuantity int `json:"return_quantity,omitempty"`
}

// Legacy lines predate reference numbers and can never be returned.
func (m MaterialLine) Legacy() bool { return m.ReferenceNumber == "" }

// Validate checks the line at the application boundary; the JSON column
// itself enforces nothing.
func (m MaterialLine) Validate(kind Type) error {
	switch kind {
	case TypeTake:
		if strings.TrimSpace(m.Name) == "" {
			return &LineError{Material: m.Name, Reason: "material name is required"}
		}
		if m.Quantity <= 0 {
			return &LineError{Material: m.Name, Reason: "quantity must be greater than 0"}
		}
	case TypeReturn:
		if !ValidReferenceNumber(m.ReferenceNumber) {
			return &LineError{Material: m.Name, Reason: "a 6-digit reference number is required"}
		}
		if m.ReturnQuantity <= 0 {
			return &LineError{Material: m.Name, Reason: "return quantity must be greater than 0"}
		}
	default:
		return ErrInvalidType
	}
	return nil
}

// ValidReferenceNumber reports whether s is a 6-digit decimal string.
func ValidReferenceNumber(s string) bool {
	if len(s) != 6 || s[0] == '0' {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// Table: transactions
type Transaction struct {
	ID              string                            `gorm:"column:id;type:varchar(36);primaryKey" json:"id"`
	CreatedAt       time.Time                         `gorm:"column:created_at;autoCreateTime;index" json:"created_at"`
	UpdatedAt       time.Time                         `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
	WorkerName      string                            `gorm:"column:worker_name;size:200;not null" json:"worker_name"`
	WorkerID        string                            `gorm:"column:worker_id;size:100;not null;index" json:"worker_id"`
	Type            Type                              `gorm:"column:transaction_type;size:10;not null;index" json:"transaction_type"`
	TransactionDate string                            `gorm:"column:transaction_date;size:10;not null" json:"transaction_date"`
	TransactionTime string                            `gorm:"column:transaction_time;size:5;not null" json:"transaction_time"`
	Materials       datatypes.JSONSlice[MaterialLine] `gorm:"column:materials;not null" json:"materials"`
	Notes           string                            `gorm:"column:notes;type:text" json:"notes,omitempty"`
	ApprovalStatus  Status                            `gorm:"column:approval_status;size:10;not null;default:pending;index" json:"approval_status"`
	ApprovedBy      string                            `gorm:"column:approved_by;size:200" json:"approved_by,omitempty"`
	ApprovalDate    *time.Time                        `gorm:"column:approval_date" json:"approval_date,omitempty"`
	Version         uint64                            `gorm:"column:version;not null;default:1" json:"-"`
}

func (Transaction) TableName() string { return "transactions" }

func (t *Transaction) BeforeCreate(*gorm.DB) error {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	if t.ApprovalStatus == "" {
		t.ApprovalStatus = StatusPending
	}
	if t.Materials == nil {
		t.Materials = datatypes.JSONSlice[MaterialLine]{}
	}
	if t.Version == 0 {
		t.Version = 1
	}
	return nil
}

func (t *Transaction) Pending() bool { return t.ApprovalStatus == StatusPending }

// OwnedBy matches the requester identity the same way the worker history
// screen does: both name and id must agree.
func (t *Transaction) OwnedBy(workerName, workerID string) bool {
	return t.WorkerID == workerID && t.WorkerName == workerName
}

// CanTransition enforces pending -> {approved, declined}. Already decided
// transactions may be re-reviewed to the opposite decision; callers apply any
// extra guard the type needs (see approval use case).
func (t *Transaction) CanTransition(to Status) error {
	switch {
	case to != StatusApproved && to != StatusDeclined:
		return ErrInvalidTransition
	case t.ApprovalStatus == to:
		return ErrAlreadyDecided
	}
	return nil
}

// LineIndex returns the index of the material line carrying ref, or -1.
func (t *Transaction) LineIndex(ref string) int {
	for i, m := range t.Materials {
		if m.ReferenceNumber == ref {
			return i
		}
	}
	return -1
}

// ReferenceNumbers lists the non-empty reference numbers in line order,
// without duplicates.
func (t *Transaction) ReferenceNumbers() []string {
	seen := make(map[string]struct{}, len(t.Materials))
	out := make([]string, 0, len(t.Materials))
	for _, m := range t.Materials {
		if m.ReferenceNumber == "" {
			continue
		}
		if _, ok := seen[m.ReferenceNumber]; ok {
			continue
		}
		seen[m.ReferenceNumber] = struct{}{}
		out = append(out, m.ReferenceNumber)
	}
	return out
}
