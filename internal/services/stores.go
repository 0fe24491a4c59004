package services

import (
	"context"

	"github.com/chachabrian/ridehail-backend/internal/models"
)

// Stores report missing records as apperrors NotFound and duplicate
// emails/tokens as apperrors Conflict. Both internal/database (postgres)
// and internal/store/memstore implement every interface here.

type UserStore interface {
	CreateUser(ctx context.Context, user *models.User) error
	GetUser(ctx context.Context, id uint) (*models.User, error)
	FindUserByEmail(ctx context.Context, email string) (*models.User, error)
	ListUsers(ctx context.Context) ([]models.User, error)
	SaveUser(ctx context.Context, user *models.User) error
}

type DriverStore interface {
	CreateDriver(ctx context.Context, driver *models.Driver) error
	GetDriver(ctx context.Context, id uint) (*models.Driver, error)
	FindDriverByEmail(ctx context.Context, email string) (*models.Driver, error)
	ListDrivers(ctx context.Context) ([]models.Driver, error)
	SaveDriver(ctx context.Context, driver *models.Driver) error
	DeleteDriver(ctx context.Context, id uint) error
}

type RideStore interface {
	CreateRide(ctx context.Context, ride *models.Ride) error
	GetRide(ctx context.Context, id uint) (*models.Ride, error)
	// SaveRide writes the ride's own columns; associations are not touched.
	SaveRide(ctx context.Context, ride *models.Ride) error
	// ListRides returns matching rides newest first.
	ListRides(ctx context.Context, filter models.RideFilter) ([]models.Ride, error)
}

type FareConfigStore interface {
	// GetOrCreateFareConfig is idempotent: the first call persists the defaults.
	GetOrCreateFareConfig(ctx context.Context) (*models.FareConfig, error)
	SaveFareConfig(ctx context.Context, cfg *models.FareConfig) error
}

type DeviceTokenStore interface {
	SaveDeviceToken(ctx context.Context, token *models.DeviceToken) error
	DeviceTokens(ctx context.Context, role models.Role, principalID uint) ([]string, error)
}

type LocationStore interface {
	ListLocations(ctx context.Context) ([]models.NamedLocation, error)
	AddLocation(ctx context.Context, loc models.NamedLocation) error
	RemoveLocation(ctx context.Context, name string) error
}
