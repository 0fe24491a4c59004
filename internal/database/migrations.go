package database

import (
	"github.com/chachabrian/ridehail-backend/internal/models"
	"gorm.io/gorm"
)

func RunMigrations(db *gorm.DB) error {
	err := db.AutoMigrate(
		&models.User{},
		&models.Driver{},
		&models.Ride{},
		&models.FareConfig{},
		&models.DeviceToken{},
	)
	if err != nil {
		return err
	}

	// Enum columns are plain varchar; the checks keep hand-written SQL honest.
	constraints := []struct {
		table, name, check string
	}{
		{"users", "users_role_check", "role IN ('rider', 'admin')"},
		{"drivers", "drivers_status_check", "status IN ('pending', 'approved', 'suspended')"},
		{"rides", "rides_status_check", "status IN ('pending', 'assigned', 'accepted', 'ongoing', 'completed', 'cancelled')"},
		{"rides", "rides_payment_status_check", "payment_status IN ('pending', 'approved', 'rejected')"},
		{"rides", "rides_driver_required_check", "status IN ('pending', 'cancelled') OR driver_id IS NOT NULL"},
	}
	for _, c := range constraints {
		if err := db.Exec(`ALTER TABLE ` + c.table + ` DROP CONSTRAINT IF EXISTS ` + c.name).Error; err != nil {
			return err
		}
		if err := db.Exec(`ALTER TABLE ` + c.table + ` ADD CONSTRAINT ` + c.name + ` CHECK (` + c.check + `)`).Error; err != nil {
			return err
		}
	}

	return nil
}
