package notification

import (
	"context"
	"fmt"
	"strings"
	"time"

	"material-tracker/internal/domain/transaction"
)

type Kind string

const (
	KindNewRequest Kind = "new_request"
	KindDecided    Kind = "decided"
)

// Event is what admin dashboards receive when something needs a look.
type Event struct {
	Kind           Kind               `json:"kind"`
	TransactionID  string             `json:"transaction_id"`
	Type           transaction.Type   `json:"transaction_type"`
	WorkerName     string             `json:"worker_name"`
	WorkerID       string             `json:"worker_id"`
	Title          string             `json:"title"`
	Body           string             `json:"body"`
	Materials      []string           `json:"materials,omitempty"`
	ApprovalStatus transaction.Status `json:"approval_status,omitempty"`
	CreatedAt      time.Time          `json:"created_at"`
}

// FromTransaction summarises t as an event of the given kind.
func FromTransaction(kind Kind, t *transaction.Transaction) Event {
	names := make([]string, 0, len(t.Materials))
	for _, m := range t.Materials {
		names = append(names, m.Name)
	}
	return Event{
		Kind:           kind,
		Title:          title(kind, t),
		Body:           body(t),
		TransactionID:  t.ID,
		Type:           t.Type,
		WorkerName:     t.WorkerName,
		WorkerID:       t.WorkerID,
		Materials:      names,
		ApprovalStatus: t.ApprovalStatus,
		CreatedAt:      t.CreatedAt,
	}
}

func title(kind Kind, t *transaction.Transaction) string {
	label := "Take"
	if t.Type == transaction.TypeReturn {
		label = "Return"
	}
	if kind == KindDecided {
		return fmt.Sprintf("%s Request %s", label, t.ApprovalStatus)
	}
	return fmt.Sprintf("New %s Request", label)
}

// body lists the worker and at most two materials.
func body(t *transaction.Transaction) string {
	shown := make([]string, 0, 2)
	for i, m := range t.Materials {
		if i == 2 {
			break
		}
		shown = append(shown, fmt.Sprintf("%s (%d %s)", m.Name, m.Quantity, m.Unit))
	}
	more := ""
	if n := len(t.Materials); n > 2 {
		more = fmt.Sprintf(" and %d more", n-2)
	}
	return fmt.Sprintf("%s (ID: %s)\n%s%s", t.WorkerName, t.WorkerID, strings.Join(shown, ", "), more)
}

type Publisher interface {
	Publish(ctx context.Context, e Event) error
}

type Subscriber interface {
	// Subscribe delivers events until ctx is done, then closes the channel.
	Subscribe(ctx context.Context) (<-chan Event, error)
}

// SeenStore remembers which decided transactions a worker has already
// acknowledged.
type SeenStore interface {
	Seen(ctx context.Context, owner string) (map[string]struct{}, error)
	MarkSeen(ctx context.Context, owner string, ids []string) error
}
