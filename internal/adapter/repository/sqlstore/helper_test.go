package sqlstore

import (
	"testing"
	"time"

	"gorm.io/gorm"

	txDomain "material-tracker/internal/domain/transaction"
	"material-tracker/internal/testutil/sqlitetest"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	return sqlitetest.Open(t)
}

func makeTake(worker string, status txDomain.Status, lines ...txDomain.MaterialLine) *txDomain.Transaction {
	return &txDomain.Transaction{
		WorkerName:      worker + " name",
		WorkerID:        worker,
		Type:            txDomain.TypeTake,
		TransactionDate: "2025-03-01",
		TransactionTime: "08:30",
		Materials:       lines,
		ApprovalStatus:  status,
	}
}

func makeReturn(worker string, status txDomain.Status, lines ...txDomain.MaterialLine) *txDomain.Transaction {
	t := makeTake(worker, status, lines...)
	t.Type = txDomain.TypeReturn
	return t
}

func line(name, ref string, qty int) txDomain.MaterialLine {
	now := time.Now().UTC()
	return txDomain.MaterialLine{Name: name, Unit: "pcs", Quantity: qty, ReferenceNumber: ref, TakenDate: &now}
}
