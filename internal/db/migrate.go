package db

import (
	"context"

	"gorm.io/gorm"

	"github.com/gourab8389/excel-analytics-server/internal/models"
)

// Migrate performs schema migrations for the persistent models.
func Migrate(ctx context.Context, database *gorm.DB) error {
	return database.WithContext(ctx).AutoMigrate(
		&models.User{},
		&models.Project{},
		&models.ProjectMember{},
		&models.Upload{},
		&models.SheetData{},
		&models.Chart{},
		&models.Invitation{},
	)
}
