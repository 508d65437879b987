package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Invitation statuses. Expiry is computed on read from ExpiresAt, never
// persisted as a state of its own.
const (
	InvitationPending  = "PENDING"
	InvitationAccepted = "ACCEPTED"
)

// Invitation captures a pending project invitation keyed by a signed token.
type Invitation struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Email     string    `gorm:"type:text;not null;index" json:"email"`
	ProjectID uuid.UUID `gorm:"type:uuid;not null;index" json:"projectId"`
	Token     string    `gorm:"type:text;uniqueIndex;not null" json:"-"`
	Role      string    `gorm:"type:text;not null;default:'MEMBER'" json:"role"`
	Status    string    `gorm:"type:text;not null;default:'PENDING'" json:"status"`
	ExpiresAt time.Time `gorm:"not null" json:"expiresAt"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updatedAt"`

	Project *Project `gorm:"foreignKey:ProjectID;constraint:OnDelete:CASCADE" json:"project,omitempty"`
}

func (i *Invitation) BeforeCreate(*gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}

// Expired reports whether the invitation lapsed at the given instant.
func (i *Invitation) Expired(now time.Time) bool {
	return now.After(i.ExpiresAt)
}
