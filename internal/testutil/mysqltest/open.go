// Package mysqltest runs gorm's MySQL dialect over go-sqlmock so locking,
// isolation and CAS statements can be asserted without a server.
package mysqltest

import (
	"context"
	"database/sql"
	"sync"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

// Pool records the options every transaction was begun with. sqlmock drops
// them at the driver boundary, so they are captured before delegating.
type Pool struct {
	*sql.DB

	mu   sync.Mutex
	opts []*sql.TxOptions
}

func (p *Pool) BeginTx(ctx context.Context, opts *sql.TxOptions) (*sql.Tx, error) {
	p.mu.Lock()
	p.opts = append(p.opts, opts)
	p.mu.Unlock()
	return p.DB.BeginTx(ctx, opts)
}

// Began returns the options of every BeginTx so far, in call order.
func (p *Pool) Began() []*sql.TxOptions {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]*sql.TxOptions(nil), p.opts...)
}

func Open(t testing.TB) (*gorm.DB, sqlmock.Sqlmock, *Pool) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = sqlDB.Close() })

	pool := &Pool{DB: sqlDB}
	db, err := gorm.Open(mysql.New(mysql.Config{
		Conn:                      pool,
		SkipInitializeWithVersion: true,
	}), &gorm.Config{SkipDefaultTransaction: true})
	if err != nil {
		t.Fatalf("gorm.Open: %v", err)
	}
	return db, mock, pool
}
