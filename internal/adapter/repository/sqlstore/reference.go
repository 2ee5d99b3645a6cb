package sqlstore

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"material-tracker/internal/domain/reference"
)

type ReferenceRepository struct{ db *gorm.DB }

func NewReferenceRepository(db *gorm.DB) *ReferenceRepository { return &ReferenceRepository{db: db} }

func (r *ReferenceRepository) Exists(ctx context.Context, numbers []string) ([]string, error) {
	if len(numbers) == 0 {
		return nil, nil
	}
	var out []string
	err := r.db.WithContext(ctx).
		Model(&reference.ReferenceNumber{}).
		Where("number IN ?", numbers).
		Pluck("number", &out).Error
	return out, err
}

func (r *ReferenceRepository) Reserve(ctx context.Context, txID string, numbers []string) error {
	if len(numbers) == 0 {
		return nil
	}
	rows := make([]reference.ReferenceNumber, len(numbers))
	for i, n := range numbers {
		rows[i] = reference.ReferenceNumber{Number: n, TransactionID: txID}
	}
	if err := r.db.WithContext(ctx).Create(&rows).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return reference.ErrTaken
		}
		return err
	}
	return nil
}

func (r *ReferenceRepository) Resolve(ctx context.Context, numbers []string) (map[string]string, error) {
	out := make(map[string]string, len(numbers))
	if len(numbers) == 0 {
		return out, nil
	}
	var rows []reference.ReferenceNumber
	if err := r.db.WithContext(ctx).Where("number IN ?", numbers).Find(&rows).Error; err != nil {
		return nil, err
	}
	for _, row := range rows {
		out[row.Number] = row.TransactionID
	}
	return out, nil
}

func (r *ReferenceRepository) ReleaseByTransaction(ctx context.Context, txID string) error {
	return r.db.WithContext(ctx).Where("transaction_id = ?", txID).Delete(&reference.ReferenceNumber{}).Error
}

func (r *ReferenceRepository) ReleaseAll(ctx context.Context) error {
	return r.db.WithContext(ctx).Where("1 = 1").Delete(&reference.ReferenceNumber{}).Error
}
