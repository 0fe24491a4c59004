package database

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/chachabrian/ridehail-backend/internal/models"
)

func (s *Store) CreateRide(ctx context.Context, ride *models.Ride) error {
	return translate(s.conn(ctx).Omit(clause.Associations).Create(ride).Error, "Ride not found", "Ride already exists")
}

func (s *Store) GetRide(ctx context.Context, id uint) (*models.Ride, error) {
	var ride models.Ride
	if err := s.withParties(s.conn(ctx)).First(&ride, id).Error; err != nil {
		return nil, translate(err, "Ride not found", "")
	}
	return &ride, nil
}

// SaveRide writes the ride's own columns in one UPDATE.
func (s *Store) SaveRide(ctx context.Context, ride *models.Ride) error {
	res := s.conn(ctx).Omit(clause.Associations).Save(ride)
	return translate(res.Error, "Ride not found", "")
}

func (s *Store) ListRides(ctx context.Context, filter models.RideFilter) ([]models.Ride, error) {
	q := s.withParties(s.conn(ctx))
	if filter.RiderID != nil {
		q = q.Where("rides.rider_id = ?", *filter.RiderID)
	}
	if filter.DriverID != nil {
		q = q.Where("rides.driver_id = ?", *filter.DriverID)
	}
	if len(filter.Statuses) > 0 {
		q = q.Where("rides.status IN ?", filter.Statuses)
	}
	if filter.PaymentStatus != "" {
		q = q.Where("rides.payment_status = ?", filter.PaymentStatus)
	}
	if !filter.CreatedSince.IsZero() {
		q = q.Where("rides.created_at >= ?", filter.CreatedSince)
	}

	var rides []models.Ride
	if err := q.Order("rides.created_at DESC, rides.id DESC").Find(&rides).Error; err != nil {
		return nil, err
	}
	return rides, nil
}

func (s *Store) withParties(q *gorm.DB) *gorm.DB {
	return q.Preload("Rider").Preload("Driver")
}
