package db

import (
	"github.com/yi-nology/lab_portal/biz/dal/model"
	"gorm.io/gorm"
)

// Migrate creates or updates the service tables.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(&model.UploadFile{})
}
