package db

import (
	"github.com/eduymaz/aller-mind/internal/domain/history"
	"gorm.io/gorm"
)

func AutoMigrateAll(db *gorm.DB) error {
	return db.AutoMigrate(
		&history.PredictionRecord{},
	)
}
