package presence

import (
	"context"
	"time"
)

// Table: admin_status. Only the first row is meaningful.
type AdminStatus struct {
	ID         uint64    `gorm:"column:id;primaryKey;autoIncrement" json:"-"`
	CreatedAt  time.Time `gorm:"column:created_at;autoCreateTime" json:"-"`
	UpdatedAt  time.Time `gorm:"column:updated_at;autoUpdateTime" json:"-"`
	AdminEmail string    `gorm:"column:admin_email;size:200" json:"admin_email"`
	LastSeen   time.Time `gorm:"column:last_seen" json:"last_seen"`
	IsOnline   bool      `gorm:"column:is_online;not null;default:false" json:"is_online"`
}

func (AdminStatus) TableName() string { return "admin_status" }

// OnlineAt reports whether the admin counts as online at now given the
// stale window.
func (s AdminStatus) OnlineAt(now time.Time, stale time.Duration) bool {
	return s.IsOnline && now.Sub(s.LastSeen) <= stale
}

type Repository interface {
	// Get returns the singleton row, or nil when none exists yet.
	Get(ctx context.Context) (*AdminStatus, error)
	// Upsert updates the first row or inserts one.
	Upsert(ctx context.Context, s *AdminStatus) error
	// MarkStaleOffline clears is_online on rows last seen before cutoff.
	MarkStaleOffline(ctx context.Context, cutoff time.Time) (int64, error)
}
