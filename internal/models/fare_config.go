package models

import (
	"time"

	"github.com/chachabrian/ridehail-backend/pkg/utils"
)

const (
	DefaultBaseFare    = 30.0
	DefaultPerKmRate   = 12.0
	DefaultMinimumFare = 50.0
)

// FareConfig is a single-row table holding the live pricing.
type FareConfig struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	BaseFare    float64   `gorm:"column:base_fare;not null;default:30" json:"baseFare"`
	PerKmRate   float64   `gorm:"column:per_km_rate;not null;default:12" json:"perKmRate"`
	MinimumFare float64   `gorm:"column:minimum_fare;not null;default:50" json:"minimumFare"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// TableName specifies the table name
func (FareConfig) TableName() string {
	return "fare_configs"
}

func DefaultFareConfig() FareConfig {
	return FareConfig{
		BaseFare:    DefaultBaseFare,
		PerKmRate:   DefaultPerKmRate,
		MinimumFare: DefaultMinimumFare,
	}
}

func (c FareConfig) Rates() utils.FareRates {
	return utils.FareRates{
		BaseFare:    c.BaseFare,
		PerKmRate:   c.PerKmRate,
		MinimumFare: c.MinimumFare,
	}
}
