package sqlstore

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"material-tracker/internal/domain/presence"
)

type PresenceRepository struct{ db *gorm.DB }

func NewPresenceRepository(db *gorm.DB) *PresenceRepository { return &PresenceRepository{db: db} }

func (r *PresenceRepository) Get(ctx context.Context) (*presence.AdminStatus, error) {
	var out presence.AdminStatus
	err := r.db.WithContext(ctx).Order("id ASC").First(&out).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// Upsert writes onto the first row; a fresh table gets one inserted.
func (r *PresenceRepository) Upsert(ctx context.Context, s *presence.AdminStatus) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var first presence.AdminStatus
		err := tx.Order("id ASC").First(&first).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			s.ID = 0
			return tx.Create(s).Error
		}
		if err != nil {
			return err
		}
		s.ID = first.ID
		return tx.Model(&presence.AdminStatus{}).
			Where("id = ?", first.ID).
			Updates(map[string]any{
				"admin_email": s.AdminEmail,
				"last_seen":   s.LastSeen,
				"is_online":   s.IsOnline,
			}).Error
	})
}

func (r *PresenceRepository) MarkStaleOffline(ctx context.Context, cutoff time.Time) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&presence.AdminStatus{}).
		Where("is_online = ? AND last_seen < ?", true, cutoff).
		Update("is_online", false)
	return res.RowsAffected, res.Error
}
