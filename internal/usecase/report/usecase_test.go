package report

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"material-tracker/internal/domain/actor"
	"material-tracker/internal/domain/transaction"
	"material-tracker/internal/testutil/transactionmock"
)

var (
	admin  = actor.Admin("Siti", "siti@example.com")
	worker = actor.Worker("Budi", "W-1")
	now    = time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
)

func fixtures() (takes, returns []transaction.Transaction) {
	approvedAt := now.Add(-time.Hour)
	takes = []transaction.Transaction{{
		ID: "take-1", Type: transaction.TypeTake, WorkerName: "Budi", WorkerID: "W-1",
		TransactionDate: "2025-03-08", TransactionTime: "08:30", CreatedAt: now.Add(-48 * time.Hour),
		ApprovalStatus: transaction.StatusApproved, ApprovedBy: "Siti", ApprovalDate: &approvedAt,
		Notes: "site B",
		Materials: []transaction.MaterialLine{
			{Name: "Cement", Unit: "bags", Quantity: 10, ReferenceNumber: "482739", ReturnedQuantity: 4},
			{Name: "Old stock", Unit: "pcs", Quantity: 1},
		},
	}}
	returns = []transaction.Transaction{{
		ID: "ret-1", Type: transaction.TypeReturn, WorkerName: "Budi", WorkerID: "W-1",
		TransactionDate: "2025-03-09", TransactionTime: "16:00", CreatedAt: now.Add(-24 * time.Hour),
		ApprovalStatus: transaction.StatusApproved, ApprovedBy: "Siti",
		Materials: []transaction.MaterialLine{{Name: "Cement", Unit: "bags", Quantity: 10, ReferenceNumber: "482739", ReturnQuantity: 4}},
	}}
	return takes, returns
}

func newRepo() *transactionmock.Repo {
	takes, returns := fixtures()
	all := append(append([]transaction.Transaction{}, returns...), takes...)
	return &transactionmock.Repo{
		ListFn: func(context.Context, transaction.Query) ([]transaction.Transaction, error) {
			return append([]transaction.Transaction{}, all...), nil
		},
		ListApprovedFn: func(_ context.Context, typ transaction.Type) ([]transaction.Transaction, error) {
			if typ == transaction.TypeTake {
				return takes, nil
			}
			return returns, nil
		},
		GetByIDFn: func(_ context.Context, id string) (*transaction.Transaction, error) {
			for i := range all {
				if all[i].ID == id {
					t := all[i]
					return &t, nil
				}
			}
			return nil, transaction.ErrNotFound
		},
		CountByStatusFn: func(context.Context, transaction.Status) (int64, error) { return 3, nil },
	}
}

func newTestUsecase(repo *transactionmock.Repo) *Usecase {
	u := NewUsecase(repo, Letterhead{Company: "ACME Works", Address: "1 Yard Road"}, nil)
	u.now = func() time.Time { return now }
	return u
}

func TestUsecase_List(t *testing.T) {
	repo := newRepo()
	var q transaction.Query
	inner := repo.ListFn
	repo.ListFn = func(ctx context.Context, query transaction.Query) ([]transaction.Transaction, error) {
		q = query
		return inner(ctx, query)
	}
	u := newTestUsecase(repo)
	ctx := context.Background()

	rows, err := u.List(ctx, worker, Filter{Type: transaction.TypeTake, Search: "cement"})
	require.NoError(t, err)
	assert.Equal(t, "W-1", q.WorkerID)
	assert.Equal(t, "Budi", q.WorkerName)
	assert.Equal(t, transaction.TypeTake, q.Type)
	assert.Len(t, rows, 2, "type is filtered by the store, the mock returns both rows")

	rows, err = u.List(ctx, admin, Filter{ReturnState: StatePartiallyReturned})
	require.NoError(t, err)
	assert.Empty(t, q.WorkerID)
	require.Len(t, rows, 1)
	assert.Equal(t, "take-1", rows[0].ID)

	_, err = u.List(ctx, actor.Actor{}, Filter{})
	assert.ErrorIs(t, err, actor.ErrUnauthenticated)
	_, err = u.List(ctx, admin, Filter{Preset: "decade"})
	assert.ErrorIs(t, err, transaction.ErrValidation)
}

func TestUsecase_Export(t *testing.T) {
	u := newTestUsecase(newRepo())
	var buf bytes.Buffer
	require.NoError(t, u.Export(context.Background(), admin, Filter{}, &buf))

	x, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer x.Close()

	rows, err := x.GetRows("Transactions")
	require.NoError(t, err)
	require.Len(t, rows, 4, "header, one return line, two take lines")
	assert.Equal(t, []string{"Date", "Time", "Type", "Worker Name", "Worker ID", "Material",
		"Reference", "Quantity", "Returned", "Unit", "Status", "Notes"}, rows[0])
	assert.Equal(t, "return", rows[1][2])
	assert.Equal(t, "4", rows[1][8])
	assert.Equal(t, "482739", rows[2][6])
	assert.Equal(t, "site B", rows[2][11])

	err = u.Export(context.Background(), worker, Filter{}, &buf)
	assert.ErrorIs(t, err, transaction.ErrForbidden)
}

func TestExportRows_NoMaterials(t *testing.T) {
	rows := exportRows(&transaction.Transaction{Type: transaction.TypeTake, WorkerName: "Budi", ApprovalStatus: transaction.StatusPending})
	require.Len(t, rows, 1)
	assert.Len(t, rows[0], 12)
	assert.Equal(t, "pending", rows[0][10])
}

func TestUsecase_Receipt(t *testing.T) {
	u := newTestUsecase(newRepo())
	var buf bytes.Buffer
	require.NoError(t, u.Receipt(context.Background(), worker, "take-1", &buf))
	html := buf.String()

	for _, want := range []string{
		"<title>W-1 08/03/25 08:30</title>",
		"ACME Works",
		"Returned 4/10 by Budi",
		"Partially returned 4/10 Cement",
		"Remaining qty to return: 6/10",
		"<td>N/A</td>",
		"This request was APPROVED",
		"site B",
	} {
		assert.Contains(t, html, want)
	}

	err := u.Receipt(context.Background(), actor.Worker("Ani", "W-2"), "take-1", &buf)
	assert.ErrorIs(t, err, transaction.ErrForbidden)
}

func TestUsecase_BulkReceiptLoadsLedgerOnce(t *testing.T) {
	repo := newRepo()
	calls := 0
	inner := repo.ListApprovedFn
	repo.ListApprovedFn = func(ctx context.Context, typ transaction.Type) ([]transaction.Transaction, error) {
		calls++
		return inner(ctx, typ)
	}
	u := newTestUsecase(repo)
	var buf bytes.Buffer
	require.NoError(t, u.BulkReceipt(context.Background(), admin, Filter{}, &buf))
	assert.Equal(t, 2, calls, "one read per type for the whole job")
	assert.Equal(t, 2, strings.Count(buf.String(), `<div class="receipt">`))
	assert.Contains(t, buf.String(), `<span class="status-returned">Returned 4/10</span>`)
}

func TestUsecase_ReturnHistoryAndSummary(t *testing.T) {
	u := newTestUsecase(newRepo())
	ctx := context.Background()

	h, err := u.ReturnHistory(ctx, worker, "482739")
	require.NoError(t, err)
	require.Len(t, h, 1)
	assert.Equal(t, "ret-1", h[0].ReturnID)

	_, err = u.ReturnHistory(ctx, actor.Worker("Ani", "W-2"), "482739")
	assert.ErrorIs(t, err, transaction.ErrReferenceNotFound)

	s, err := u.Summary(ctx, admin)
	require.NoError(t, err)
	assert.Equal(t, int64(3), s.Pending)
	_, err = u.Summary(ctx, worker)
	assert.True(t, errors.Is(err, transaction.ErrForbidden))
}

func TestReceiptTitle(t *testing.T) {
	assert.Equal(t, "W-1 08/03/25 08:30", ReceiptTitle(&transaction.Transaction{WorkerID: "W-1", TransactionDate: "2025-03-08", TransactionTime: "08:30"}))
	assert.Equal(t, "W-1 soon 08:30", ReceiptTitle(&transaction.Transaction{WorkerID: "W-1", TransactionDate: "soon", TransactionTime: "08:30"}))
	assert.Equal(t, "Materials_2025-03-10.xlsx", ExportFilename(now))
}
