package sqlstore

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"material-tracker/internal/domain/requester"
)

type RequesterRepository struct{ db *gorm.DB }

func NewRequesterRepository(db *gorm.DB) *RequesterRepository { return &RequesterRepository{db: db} }

func (r *RequesterRepository) Create(ctx context.Context, req *requester.Requester) error {
	return mapRequesterErr(r.db.WithContext(ctx).Create(req).Error)
}

func (r *RequesterRepository) GetByID(ctx context.Context, id uint64) (*requester.Requester, error) {
	var out requester.Requester
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&out).Error; err != nil {
		return nil, mapRequesterErr(err)
	}
	return &out, nil
}

func (r *RequesterRepository) GetByRequesterID(ctx context.Context, requesterID string) (*requester.Requester, error) {
	var out requester.Requester
	if err := r.db.WithContext(ctx).Where("requester_id = ?", requesterID).First(&out).Error; err != nil {
		return nil, mapRequesterErr(err)
	}
	return &out, nil
}

func (r *RequesterRepository) Update(ctx context.Context, req *requester.Requester) error {
	res := r.db.WithContext(ctx).
		Model(&requester.Requester{}).
		Where("id = ?", req.ID).
		Updates(map[string]any{
			"requester_id":  req.RequesterID,
			"name":          req.Name,
			"password_hash": req.PasswordHash,
		})
	if res.Error != nil {
		return mapRequesterErr(res.Error)
	}
	if res.RowsAffected == 0 {
		return requester.ErrNotFound
	}
	return nil
}

func (r *RequesterRepository) Delete(ctx context.Context, id uint64) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&requester.Requester{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return requester.ErrNotFound
	}
	return nil
}

func (r *RequesterRepository) List(ctx context.Context) ([]requester.Requester, error) {
	var out []requester.Requester
	err := r.db.WithContext(ctx).Order("created_at DESC, id DESC").Find(&out).Error
	return out, err
}

func mapRequesterErr(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return requester.ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return requester.ErrDuplicateID
	}
	return err
}
