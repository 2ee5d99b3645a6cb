package report

import (
	"context"
	"io"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"material-tracker/internal/domain/actor"
	"material-tracker/internal/domain/transaction"
)

const exportSheet = "Transactions"

var exportHeader = []interface{}{
	"Date", "Time", "Type", "Worker Name", "Worker ID", "Material",
	"Reference", "Quantity", "Returned", "Unit", "Status", "Notes",
}

// Export writes the filtered transactions as an xlsx workbook, one row per
// material line.
func (u *Usecase) Export(ctx context.Context, a actor.Actor, f Filter, w io.Writer) error {
	if !a.IsAdmin() {
		return transaction.ErrForbidden
	}
	rows, err := u.List(ctx, a, f)
	if err != nil {
		return err
	}

	x := excelize.NewFile()
	defer func() {
		if err := x.Close(); err != nil {
			u.log.Warn("close workbook", zap.Error(err))
		}
	}()
	if err := x.SetSheetName(x.GetSheetName(0), exportSheet); err != nil {
		return err
	}
	if err := x.SetSheetRow(exportSheet, "A1", &exportHeader); err != nil {
		return err
	}

	r := 2
	for i := range rows {
		for _, rec := range exportRows(&rows[i]) {
			cell, err := excelize.CoordinatesToCellName(1, r)
			if err != nil {
				return err
			}
			if err := x.SetSheetRow(exportSheet, cell, &rec); err != nil {
				return err
			}
			r++
		}
	}
	return x.Write(w)
}

func exportRows(t *transaction.Transaction) [][]interface{} {
	base := func() []interface{} {
		return []interface{}{t.TransactionDate, t.TransactionTime, string(t.Type), t.WorkerName, t.WorkerID}
	}
	tail := []interface{}{string(t.ApprovalStatus), t.Notes}

	if len(t.Materials) == 0 {
		rec := append(base(), "", "", "", "", "")
		return [][]interface{}{append(rec, tail...)}
	}
	out := make([][]interface{}, 0, len(t.Materials))
	for _, m := range t.Materials {
		returned := m.ReturnedQuantity
		if t.Type == transaction.TypeReturn {
			returned = m.ReturnQuantity
		}
		rec := append(base(), m.Name, m.ReferenceNumber, m.Quantity, returned, m.Unit)
		out = append(out, append(rec, tail...))
	}
	return out
}
