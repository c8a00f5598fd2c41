package models

import "gorm.io/gorm"

// Migrate creates or updates the occupancy tables.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(&Room{}, &Bed{}, &Patient{})
}
