package database

import (
	"context"

	"gorm.io/gorm/clause"

	"github.com/chachabrian/ridehail-backend/internal/models"
)

const fareConfigID = 1

// GetOrCreateFareConfig inserts the default row if it is missing. The
// insert is ON CONFLICT DO NOTHING so concurrent first reads agree.
func (s *Store) GetOrCreateFareConfig(ctx context.Context) (*models.FareConfig, error) {
	cfg := models.DefaultFareConfig()
	cfg.ID = fareConfigID
	if err := s.conn(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&cfg).Error; err != nil {
		return nil, err
	}

	var current models.FareConfig
	if err := s.conn(ctx).First(&current, fareConfigID).Error; err != nil {
		return nil, err
	}
	return &current, nil
}

func (s *Store) SaveFareConfig(ctx context.Context, cfg *models.FareConfig) error {
	cfg.ID = fareConfigID
	return s.conn(ctx).Save(cfg).Error
}
