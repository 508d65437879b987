package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Upload statuses.
const (
	UploadStatusProcessing = "PROCESSING"
	UploadStatusCompleted  = "COMPLETED"
	UploadStatusFailed     = "FAILED"
)

// Upload records a spreadsheet file received from a user. The parsed table
// lives in the associated SheetData row, created exactly once per upload.
type Upload struct {
	ID           uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	FileName     string     `gorm:"type:text;not null" json:"fileName"`
	OriginalName string     `gorm:"type:text;not null" json:"originalName"`
	FilePath     string     `gorm:"type:text;not null" json:"-"`
	FileSize     int64      `gorm:"not null" json:"fileSize"`
	Status       string     `gorm:"type:text;not null;default:'PROCESSING'" json:"status"`
	UserID       uuid.UUID  `gorm:"type:uuid;not null;index" json:"userId"`
	ProjectID    uuid.UUID  `gorm:"type:uuid;not null;index" json:"projectId"`
	UploadedAt   time.Time  `gorm:"autoCreateTime" json:"uploadedAt"`
	ProcessedAt  *time.Time `json:"processedAt,omitempty"`

	User    *User      `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Project *Project   `gorm:"foreignKey:ProjectID" json:"project,omitempty"`
	Data    *SheetData `gorm:"constraint:OnDelete:CASCADE" json:"data,omitempty"`
	Charts  []Chart    `gorm:"constraint:OnDelete:CASCADE" json:"charts,omitempty"`
}

func (u *Upload) BeforeCreate(*gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}

// SheetData is the normalized table produced by parsing an upload. Headers
// and rows are stored as opaque JSON documents; metadata is a flat map of
// totalRows, totalColumns, and fileName.
type SheetData struct {
	ID       uuid.UUID         `gorm:"type:uuid;primaryKey" json:"id"`
	UploadID uuid.UUID         `gorm:"type:uuid;not null;uniqueIndex" json:"uploadId"`
	Headers  datatypes.JSON    `gorm:"not null" json:"headers"`
	Rows     datatypes.JSON    `gorm:"not null" json:"rows"`
	Metadata datatypes.JSONMap `json:"metadata"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"createdAt"`
}

func (d *SheetData) BeforeCreate(*gorm.DB) error {
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	return nil
}
