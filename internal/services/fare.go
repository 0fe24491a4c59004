package services

import (
	"context"
	"errors"
	"log/slog"
	"math"
	"time"

	"github.com/chachabrian/ridehail-backend/internal/apperrors"
	"github.com/chachabrian/ridehail-backend/internal/models"
	"github.com/chachabrian/ridehail-backend/pkg/utils"
)

// FareCache is a read-through cache in front of the fare config row.
// Get returns (nil, nil) on a miss.
type FareCache interface {
	Get(ctx context.Context) (*models.FareConfig, error)
	Set(ctx context.Context, cfg *models.FareConfig) error
}

// FareConfigPatch carries the fields an admin wants to change.
type FareConfigPatch struct {
	BaseFare    *float64 `json:"baseFare"`
	PerKmRate   *float64 `json:"perKmRate"`
	MinimumFare *float64 `json:"minimumFare"`
}

// FareQuote is a priced trip plus the config it was priced with
type FareQuote struct {
	Fare       float64           `json:"fare"`
	DistanceKm float64           `json:"distanceKm"`
	Config     models.FareConfig `json:"config"`
}

type FareService struct {
	store FareConfigStore
	cache FareCache
	log   *slog.Logger
	now   func() time.Time
}

// NewFareService builds the service; cache may be nil.
func NewFareService(store FareConfigStore, cache FareCache, log *slog.Logger) *FareService {
	return &FareService{store: store, cache: cache, log: log, now: time.Now}
}

// Current returns the live config, creating the default row on first use.
func (s *FareService) Current(ctx context.Context) (*models.FareConfig, error) {
	if s.cache != nil {
		cfg, err := s.cache.Get(ctx)
		if err != nil {
			s.log.WarnContext(ctx, "fare config cache read failed", "error", err)
		} else if cfg != nil {
			return cfg, nil
		}
	}

	cfg, err := s.store.GetOrCreateFareConfig(ctx)
	if err != nil {
		return nil, apperrors.Internal("Error fetching fare config", err)
	}
	s.remember(ctx, cfg)
	return cfg, nil
}

// Update applies an admin patch.
func (s *FareService) Update(ctx context.Context, p Principal, patch FareConfigPatch) (*models.FareConfig, error) {
	if err := requireRole(p, models.RoleAdmin, "update fare config"); err != nil {
		return nil, err
	}

	cfg, err := s.store.GetOrCreateFareConfig(ctx)
	if err != nil {
		return nil, apperrors.Internal("Error updating fare config", err)
	}

	for name, v := range map[string]*float64{
		"baseFare":    patch.BaseFare,
		"perKmRate":   patch.PerKmRate,
		"minimumFare": patch.MinimumFare,
	} {
		if v != nil && (math.IsNaN(*v) || math.IsInf(*v, 0) || *v < 0) {
			return nil, apperrors.InvalidInput("%s must be a non-negative number", name)
		}
	}
	if patch.BaseFare != nil {
		cfg.BaseFare = *patch.BaseFare
	}
	if patch.PerKmRate != nil {
		cfg.PerKmRate = *patch.PerKmRate
	}
	if patch.MinimumFare != nil {
		cfg.MinimumFare = *patch.MinimumFare
	}
	cfg.UpdatedAt = s.now()

	if err := s.store.SaveFareConfig(ctx, cfg); err != nil {
		return nil, apperrors.Internal("Error updating fare config", err)
	}
	s.remember(ctx, cfg)

	s.log.InfoContext(ctx, "fare config updated",
		"baseFare", cfg.BaseFare, "perKmRate", cfg.PerKmRate, "minimumFare", cfg.MinimumFare)
	return cfg, nil
}

// Estimate prices a trip with the live config.
func (s *FareService) Estimate(ctx context.Context, pickup, drop utils.Point) (*FareQuote, error) {
	cfg, err := s.Current(ctx)
	if err != nil {
		return nil, err
	}

	est, err := utils.EstimateFare(pickup, drop, cfg.Rates())
	switch {
	case errors.Is(err, utils.ErrInvalidCoordinates):
		return nil, apperrors.InvalidInput("Pickup and drop coordinates must be valid lat/lng values")
	case err != nil:
		return nil, apperrors.Internal("Stored fare config is invalid", err)
	}

	return &FareQuote{Fare: est.Fare, DistanceKm: est.DistanceKm, Config: *cfg}, nil
}

func (s *FareService) remember(ctx context.Context, cfg *models.FareConfig) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Set(ctx, cfg); err != nil {
		s.log.WarnContext(ctx, "fare config cache write failed", "error", err)
	}
}
