package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"gorm.io/gorm"

	txDomain "material-tracker/internal/domain/transaction"
	"material-tracker/internal/domain/uow"
	"material-tracker/internal/testutil/mysqltest"
)

func openMySQLMock(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, _ := mysqltest.Open(t)
	return db, mock
}

func txRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "worker_id", "transaction_type", "materials", "approval_status", "version"}).
		AddRow("tx-1", "W-1", "take", `[{"name":"Cement","unit":"pcs","quantity":10,"reference_number":"482739"}]`, "pending", 3)
}

func TestMySQL_GetByIDForUpdateLocksRow(t *testing.T) {
	db, mock := openMySQLMock(t)
	repo := NewTransactionRepository(db)

	mock.ExpectQuery("SELECT \\* FROM `transactions` WHERE id = \\? .*FOR UPDATE").
		WillReturnRows(txRows())

	got, err := repo.GetByIDForUpdate(context.Background(), "tx-1")
	if err != nil {
		t.Fatalf("GetByIDForUpdate: %v", err)
	}
	if got.Version != 3 || len(got.Materials) != 1 || got.Materials[0].ReferenceNumber != "482739" {
		t.Fatalf("row not scanned: %+v", got)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestMySQL_GetByIDNotFound(t *testing.T) {
	db, mock := openMySQLMock(t)
	repo := NewTransactionRepository(db)

	mock.ExpectQuery("SELECT \\* FROM `transactions` WHERE id = \\?").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	if _, err := repo.GetByID(context.Background(), "missing"); !errors.Is(err, txDomain.ErrNotFound) {
		t.Fatalf("want ErrNotFound, got %v", err)
	}
}

func TestMySQL_UpdateIsCompareAndSwap(t *testing.T) {
	db, mock := openMySQLMock(t)
	repo := NewTransactionRepository(db)

	mock.ExpectExec("UPDATE `transactions` SET .* WHERE id = \\? AND version = \\?").
		WillReturnResult(sqlmock.NewResult(0, 1))

	tx := &txDomain.Transaction{ID: "tx-1", Type: txDomain.TypeTake, Version: 3, ApprovalStatus: txDomain.StatusApproved}
	if err := repo.Update(context.Background(), tx); err != nil {
		t.Fatalf("Update: %v", err)
	}
	if tx.Version != 4 {
		t.Fatalf("Version = %d, want 4", tx.Version)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestMySQL_UpdateStaleVersion(t *testing.T) {
	db, mock := openMySQLMock(t)
	repo := NewTransactionRepository(db)

	mock.ExpectExec("UPDATE `transactions` SET .* WHERE id = \\? AND version = \\?").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery("SELECT count\\(\\*\\) FROM `transactions` WHERE id = \\?").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	tx := &txDomain.Transaction{ID: "tx-1", Version: 2}
	if err := repo.Update(context.Background(), tx); !errors.Is(err, txDomain.ErrConcurrentUpdate) {
		t.Fatalf("want ErrConcurrentUpdate, got %v", err)
	}
	if tx.Version != 2 {
		t.Fatalf("version advanced on failed CAS: %d", tx.Version)
	}

	mock.ExpectExec("UPDATE `transactions` SET").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery("SELECT count\\(\\*\\) FROM `transactions`").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	if err := repo.Update(context.Background(), tx); !errors.Is(err, txDomain.ErrNotFound) {
		t.Fatalf("want ErrNotFound, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestMySQL_UnitOfWorkBeginsReadCommitted(t *testing.T) {
	db, mock, pool := mysqltest.Open(t)
	guow := NewGormUoW(db)

	mock.ExpectBegin()
	mock.ExpectCommit()
	if err := guow.WithinTx(context.Background(), func(uow.Repos) error { return nil }); err != nil {
		t.Fatalf("WithinTx: %v", err)
	}

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT \\* FROM `transactions` WHERE id = \\? .*FOR UPDATE").
		WillReturnRows(txRows())
	mock.ExpectCommit()
	err := guow.WithinTransactionTx(context.Background(), "tx-1", func(uow.Repos, *txDomain.Transaction) error { return nil })
	if err != nil {
		t.Fatalf("WithinTransactionTx: %v", err)
	}

	began := pool.Began()
	if len(began) != 2 {
		t.Fatalf("BeginTx calls = %d, want 2", len(began))
	}
	for i, o := range began {
		if o == nil || o.Isolation != sql.LevelReadCommitted {
			t.Fatalf("unit of work %d began with %+v, want READ COMMITTED", i, o)
		}
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}
