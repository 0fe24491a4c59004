package database

import (
	"context"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/chachabrian/ridehail-backend/internal/models"
)

func (s *Store) CreateDriver(ctx context.Context, driver *models.Driver) error {
	driver.Email = strings.ToLower(driver.Email)
	return translate(s.conn(ctx).Create(driver).Error, "Driver not found", "Driver already exists")
}

func (s *Store) GetDriver(ctx context.Context, id uint) (*models.Driver, error) {
	var driver models.Driver
	if err := s.conn(ctx).First(&driver, id).Error; err != nil {
		return nil, translate(err, "Driver not found", "")
	}
	return &driver, nil
}

func (s *Store) FindDriverByEmail(ctx context.Context, email string) (*models.Driver, error) {
	var driver models.Driver
	err := s.conn(ctx).Where("email = ?", strings.ToLower(email)).First(&driver).Error
	if err != nil {
		return nil, translate(err, "Driver not found", "")
	}
	return &driver, nil
}

func (s *Store) ListDrivers(ctx context.Context) ([]models.Driver, error) {
	var drivers []models.Driver
	if err := s.conn(ctx).Order("id").Find(&drivers).Error; err != nil {
		return nil, err
	}
	return drivers, nil
}

func (s *Store) SaveDriver(ctx context.Context, driver *models.Driver) error {
	res := s.conn(ctx).Omit(clause.Associations).Save(driver)
	if res.Error != nil {
		return translate(res.Error, "Driver not found", "Driver already exists")
	}
	return nil
}

// DeleteDriver soft-deletes; past rides keep their driver_id.
func (s *Store) DeleteDriver(ctx context.Context, id uint) error {
	res := s.conn(ctx).Delete(&models.Driver{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return translate(gorm.ErrRecordNotFound, "Driver not found", "")
	}
	return nil
}
