package reference

import (
	"context"
	"errors"
	"time"
)

var (
	ErrExhausted = errors.New("could not allocate unique reference numbers")
	ErrTaken     = errors.New("reference number already allocated")
	ErrBatchSize = errors.New("too many material lines for one take")
)

// Table: reference_numbers. The primary key is what makes reference numbers
// globally unique.
type ReferenceNumber struct {
	Number        string    `gorm:"column:number;type:char(6);primaryKey"`
	TransactionID string    `gorm:"column:transaction_id;type:varchar(36);not null;index"`
	CreatedAt     time.Time `gorm:"column:created_at;autoCreateTime"`
}

func (ReferenceNumber) TableName() string { return "reference_numbers" }

type Repository interface {
	// Exists reports which of numbers are already allocated.
	Exists(ctx context.Context, numbers []string) ([]string, error)
	Reserve(ctx context.Context, txID string, numbers []string) error
	// Resolve maps each allocated number to its take transaction id.
	Resolve(ctx context.Context, numbers []string) (map[string]string, error)
	ReleaseByTransaction(ctx context.Context, txID string) error
	ReleaseAll(ctx context.Context) error
}
