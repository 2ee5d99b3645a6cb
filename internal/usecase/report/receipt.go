package report

import (
	"context"
	"embed"
	"fmt"
	"html/template"
	"io"
	"strings"

	"material-tracker/internal/domain/actor"
	"material-tracker/internal/domain/ledger"
	"material-tracker/internal/domain/transaction"
)

//go:embed templates/receipt.html.tmpl
var templateFS embed.FS

var receiptTmpl = template.Must(template.ParseFS(templateFS, "templates/receipt.html.tmpl"))

type receiptPage struct {
	Title    string
	Company  string
	Address  string
	Receipts []receiptView
}

type receiptView struct {
	T            transaction.Transaction
	TypeLabel    string
	StatusLabel  string
	Decided      bool
	ApprovalDate string
	Lines        []receiptLine
}

type receiptLine struct {
	Name           string
	Unit           string
	Reference      string
	Quantity       int
	IsReturn       bool
	ReturnQuantity int
	Returned       bool
	ReturnDate     string
	History        []ledger.HistoryEntry
	Total          int
	Remaining      int
	Fully          bool
}

// Receipt renders one transaction for the browser print dialog.
func (u *Usecase) Receipt(ctx context.Context, a actor.Actor, id string, w io.Writer) error {
	if !a.Valid() {
		return actor.ErrUnauthenticated
	}
	t, err := u.txs.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if a.IsWorker() && !t.OwnedBy(a.Name, a.WorkerID) {
		return transaction.ErrForbidden
	}
	return u.render(ctx, ReceiptTitle(t), []transaction.Transaction{*t}, w)
}

// BulkReceipt renders every transaction the filter selects into one
// document.
func (u *Usecase) BulkReceipt(ctx context.Context, a actor.Actor, f Filter, w io.Writer) error {
	if !a.IsAdmin() {
		return transaction.ErrForbidden
	}
	rows, err := u.List(ctx, a, f)
	if err != nil {
		return err
	}
	title := fmt.Sprintf("Materials %s", u.now().Format(dateLayout))
	return u.render(ctx, title, rows, w)
}

// ReceiptTitle doubles as the suggested PDF file name:
// "<worker id> dd/mm/yy hh:mm".
func ReceiptTitle(t *transaction.Transaction) string {
	date := t.TransactionDate
	if parts := strings.Split(t.TransactionDate, "-"); len(parts) == 3 && len(parts[0]) == 4 {
		date = fmt.Sprintf("%s/%s/%s", parts[2], parts[1], parts[0][2:])
	}
	return fmt.Sprintf("%s %s %s", t.WorkerID, date, t.TransactionTime)
}

// render builds a single ledger for the whole print job.
func (u *Usecase) render(ctx context.Context, title string, rows []transaction.Transaction, w io.Writer) error {
	l, err := ledger.Load(ctx, u.txs)
	if err != nil {
		return err
	}
	page := receiptPage{Title: title, Company: u.head.Company, Address: u.head.Address}
	for i := range rows {
		page.Receipts = append(page.Receipts, buildView(l, &rows[i]))
	}
	return receiptTmpl.Execute(w, page)
}

func buildView(l *ledger.Ledger, t *transaction.Transaction) receiptView {
	v := receiptView{
		T:           *t,
		TypeLabel:   strings.ToUpper(string(t.Type)),
		StatusLabel: strings.ToUpper(string(t.ApprovalStatus)),
		Decided:     t.ApprovalStatus != transaction.StatusPending,
	}
	if t.ApprovalDate != nil {
		v.ApprovalDate = t.ApprovalDate.Format("2006-01-02 15:04")
	}
	for _, m := range t.Materials {
		line := receiptLine{
			Name:           m.Name,
			Unit:           m.Unit,
			Reference:      m.ReferenceNumber,
			Quantity:       m.Quantity,
			IsReturn:       t.Type == transaction.TypeReturn,
			ReturnQuantity: m.ReturnQuantity,
			Returned:       m.Returned,
		}
		if m.ReturnDate != nil {
			line.ReturnDate = m.ReturnDate.Format(dateLayout)
		}
		if line.IsReturn && line.ReturnQuantity == 0 {
			line.ReturnQuantity = m.Quantity
		}
		if !line.IsReturn && m.ReferenceNumber != "" {
			line.History = l.History(m.ReferenceNumber)
			for _, h := range line.History {
				line.Total += h.Quantity
			}
			line.Remaining = m.Quantity - line.Total
			line.Fully = line.Remaining <= 0
		}
		v.Lines = append(v.Lines, line)
	}
	return v
}
