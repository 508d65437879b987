package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Project types.
const (
	ProjectTypeSingle       = "SINGLE"
	ProjectTypeOrganization = "ORGANIZATION"
)

// Membership roles.
const (
	RoleAdmin  = "ADMIN"
	RoleMember = "MEMBER"
)

// Project groups uploads and members under a creator.
type Project struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Name        string    `gorm:"type:text;not null" json:"name"`
	Description string    `gorm:"type:text" json:"description"`
	Type        string    `gorm:"type:text;not null" json:"type"`
	CreatorID   uuid.UUID `gorm:"type:uuid;not null;index" json:"creatorId"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime" json:"updatedAt"`

	Creator *User           `gorm:"foreignKey:CreatorID" json:"creator,omitempty"`
	Members []ProjectMember `gorm:"constraint:OnDelete:CASCADE" json:"members,omitempty"`
	Uploads []Upload        `gorm:"constraint:OnDelete:CASCADE" json:"-"`
}

func (p *Project) BeforeCreate(*gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

// ProjectMember links a user to a project with a role. The composite unique
// index prevents duplicate membership under concurrent accepts.
type ProjectMember struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_member_user_project" json:"userId"`
	ProjectID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_member_user_project" json:"projectId"`
	Role      string    `gorm:"type:text;not null;default:'MEMBER'" json:"role"`
	JoinedAt  time.Time `gorm:"autoCreateTime" json:"joinedAt"`

	User    *User    `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Project *Project `gorm:"foreignKey:ProjectID" json:"project,omitempty"`
}

func (m *ProjectMember) BeforeCreate(*gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}
