package requester

import (
	"context"
	"errors"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
)

var (
	ErrNotFound           = errors.New("requester not found")
	ErrDuplicateID        = errors.New("requester id already exists")
	ErrInvalidCredentials = errors.New("invalid requester id or password")
	ErrMissingFields      = errors.New("requester id, name and password are required")
)

// Table: requesters
type Requester struct {
	ID           uint64    `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	CreatedAt    time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	RequesterID  string    `gorm:"column:requester_id;size:100;not null;uniqueIndex" json:"requester_id"`
	Name         string    `gorm:"column:name;size:200;not null" json:"name"`
	PasswordHash string    `gorm:"column:password_hash;size:100;not null" json:"-"`
}

func (Requester) TableName() string { return "requesters" }

// SetPassword stores a bcrypt hash of plain.
func (r *Requester) SetPassword(plain string) error {
	if strings.TrimSpace(plain) == "" {
		return ErrMissingFields
	}
	h, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	r.PasswordHash = string(h)
	return nil
}

func (r *Requester) CheckPassword(plain string) bool {
	return bcrypt.CompareHashAndPassword([]byte(r.PasswordHash), []byte(plain)) == nil
}

type Repository interface {
	Create(ctx context.Context, r *Requester) error
	GetByID(ctx context.Context, id uint64) (*Requester, error)
	GetByRequesterID(ctx context.Context, requesterID string) (*Requester, error)
	Update(ctx context.Context, r *Requester) error
	Delete(ctx context.Context, id uint64) error
	// List is newest first.
	List(ctx context.Context) ([]Requester, error)
}
