package sqlstore

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	txDomain "material-tracker/internal/domain/transaction"
)

type TransactionRepository struct{ db *gorm.DB }

func NewTransactionRepository(db *gorm.DB) *TransactionRepository {
	return &TransactionRepository{db: db}
}

func (r *TransactionRepository) Create(ctx context.Context, t *txDomain.Transaction) error {
	return r.db.WithContext(ctx).Create(t).Error
}

func (r *TransactionRepository) GetByID(ctx context.Context, id string) (*txDomain.Transaction, error) {
	return r.get(r.db.WithContext(ctx), id)
}

func (r *TransactionRepository) GetByIDForUpdate(ctx context.Context, id string) (*txDomain.Transaction, error) {
	return r.get(r.db.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"}), id)
}

func (r *TransactionRepository) get(q *gorm.DB, id string) (*txDomain.Transaction, error) {
	var out txDomain.Transaction
	if err := q.Where("id = ?", id).First(&out).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, txDomain.ErrNotFound
		}
		return nil, err
	}
	return &out, nil
}

func (r *TransactionRepository) ListByIDs(ctx context.Context, ids []string, forUpdate bool) ([]txDomain.Transaction, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	q := r.db.WithContext(ctx)
	if forUpdate {
		q = q.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	var out []txDomain.Transaction
	err := q.Where("id IN ?", ids).Order("id ASC").Find(&out).Error
	return out, err
}

func (r *TransactionRepository) ListApproved(ctx context.Context, typ txDomain.Type) ([]txDomain.Transaction, error) {
	var out []txDomain.Transaction
	err := r.db.WithContext(ctx).
		Where("transaction_type = ? AND approval_status = ?", typ, txDomain.StatusApproved).
		Order("created_at ASC, id ASC").
		Find(&out).Error
	return out, err
}

func (r *TransactionRepository) List(ctx context.Context, q txDomain.Query) ([]txDomain.Transaction, error) {
	db := r.db.WithContext(ctx)
	if q.Type != "" {
		db = db.Where("transaction_type = ?", q.Type)
	}
	if q.Status != "" {
		db = db.Where("approval_status = ?", q.Status)
	}
	if q.WorkerID != "" {
		db = db.Where("worker_id = ?", q.WorkerID)
	}
	if q.WorkerName != "" {
		db = db.Where("worker_name = ?", q.WorkerName)
	}
	if q.DateFrom != "" {
		db = db.Where("transaction_date >= ?", q.DateFrom)
	}
	if q.DateTo != "" {
		db = db.Where("transaction_date <= ?", q.DateTo)
	}
	limit := q.Limit
	if limit <= 0 || limit > txDomain.MaxRows {
		limit = txDomain.MaxRows
	}
	var out []txDomain.Transaction
	err := db.Order("created_at DESC, id DESC").Limit(limit).Find(&out).Error
	return out, err
}

// Update is a compare-and-swap on the version column.
func (r *TransactionRepository) Update(ctx context.Context, t *txDomain.Transaction) error {
	res := r.db.WithContext(ctx).
		Model(&txDomain.Transaction{}).
		Where("id = ? AND version = ?", t.ID, t.Version).
		Updates(map[string]any{
			"worker_name":      t.WorkerName,
			"worker_id":        t.WorkerID,
			"transaction_date": t.TransactionDate,
			"transaction_time": t.TransactionTime,
			"materials":        t.Materials,
			"notes":            t.Notes,
			"approval_status":  t.ApprovalStatus,
			"approved_by":      t.ApprovedBy,
			"approval_date":    t.ApprovalDate,
			"version":          t.Version + 1,
			"updated_at":       time.Now().UTC(),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		var n int64
		if err := r.db.WithContext(ctx).Model(&txDomain.Transaction{}).Where("id = ?", t.ID).Count(&n).Error; err != nil {
			return err
		}
		if n == 0 {
			return txDomain.ErrNotFound
		}
		return txDomain.ErrConcurrentUpdate
	}
	t.Version++
	return nil
}

func (r *TransactionRepository) Delete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&txDomain.Transaction{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return txDomain.ErrNotFound
	}
	return nil
}

func (r *TransactionRepository) DeleteAll(ctx context.Context) (int64, error) {
	res := r.db.WithContext(ctx).Where("1 = 1").Delete(&txDomain.Transaction{})
	return res.RowsAffected, res.Error
}

func (r *TransactionRepository) CountByStatus(ctx context.Context, s txDomain.Status) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&txDomain.Transaction{}).Where("approval_status = ?", s).Count(&n).Error
	return n, err
}
