package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Chart persists a generated chart: the user's axis/title selection in
// Config and the derived point series plus renderer descriptor in Data.
type Chart struct {
	ID        uuid.UUID         `gorm:"type:uuid;primaryKey" json:"id"`
	UploadID  uuid.UUID         `gorm:"type:uuid;not null;index" json:"uploadId"`
	Name      string            `gorm:"type:text;not null" json:"name"`
	Type      string            `gorm:"type:text;not null" json:"type"`
	Config    datatypes.JSONMap `json:"config"`
	Data      datatypes.JSON    `json:"data"`
	CreatedAt time.Time         `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt time.Time         `gorm:"autoUpdateTime" json:"updatedAt"`

	Upload *Upload `gorm:"foreignKey:UploadID" json:"upload,omitempty"`
}

func (c *Chart) BeforeCreate(*gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}
