package services

import (
	"context"
	"log/slog"
	"strings"

	"github.com/chachabrian/ridehail-backend/internal/apperrors"
	"github.com/chachabrian/ridehail-backend/internal/models"
)

// ProfilePatch updates only the fields that are set. Vehicle applies to
// drivers only.
type ProfilePatch struct {
	Name    *string         `json:"name"`
	Phone   *string         `json:"phone"`
	Vehicle *models.Vehicle `json:"vehicle"`
}

// Profile is the caller's own account view.
type Profile struct {
	Principal
	Phone string `json:"phone"`

	Status      models.DriverStatus `json:"status,omitempty"`
	Vehicle     *models.Vehicle     `json:"vehicle,omitempty"`
	IsAvailable *bool               `json:"isAvailable,omitempty"`
	Rating      *float64            `json:"rating,omitempty"`
}

// ProfileService serves a principal's reads and writes of its own record.
type ProfileService struct {
	users   UserStore
	drivers DriverStore
	log     *slog.Logger
}

func NewProfileService(users UserStore, drivers DriverStore, log *slog.Logger) *ProfileService {
	return &ProfileService{users: users, drivers: drivers, log: log}
}

func (s *ProfileService) Get(ctx context.Context, p Principal) (*Profile, error) {
	if p.ID == 0 {
		return nil, apperrors.Unauthenticated("Not authorized")
	}
	if p.Role == models.RoleDriver {
		driver, err := s.driver(ctx, p.ID)
		if err != nil {
			return nil, err
		}
		return driverProfile(driver), nil
	}
	user, err := s.user(ctx, p.ID)
	if err != nil {
		return nil, err
	}
	return userProfile(user), nil
}

func (s *ProfileService) Update(ctx context.Context, p Principal, patch ProfilePatch) (*Profile, error) {
	if p.ID == 0 {
		return nil, apperrors.Unauthenticated("Not authorized")
	}
	if patch.Name != nil {
		name := strings.TrimSpace(*patch.Name)
		if name == "" {
			return nil, apperrors.InvalidInput("name must not be empty")
		}
		patch.Name = &name
	}
	if patch.Vehicle != nil && p.Role != models.RoleDriver {
		return nil, apperrors.InvalidInput("only drivers have a vehicle")
	}

	if p.Role == models.RoleDriver {
		driver, err := s.driver(ctx, p.ID)
		if err != nil {
			return nil, err
		}
		if patch.Name != nil {
			driver.Name = *patch.Name
		}
		if patch.Phone != nil {
			driver.Phone = strings.TrimSpace(*patch.Phone)
		}
		if patch.Vehicle != nil {
			driver.Vehicle = *patch.Vehicle
		}
		if err := s.drivers.SaveDriver(ctx, driver); err != nil {
			return nil, s.internal(ctx, "Failed to update profile", err)
		}
		return driverProfile(driver), nil
	}

	user, err := s.user(ctx, p.ID)
	if err != nil {
		return nil, err
	}
	if patch.Name != nil {
		user.Name = *patch.Name
	}
	if patch.Phone != nil {
		user.Phone = strings.TrimSpace(*patch.Phone)
	}
	if err := s.users.SaveUser(ctx, user); err != nil {
		return nil, s.internal(ctx, "Failed to update profile", err)
	}
	return userProfile(user), nil
}

// SetAvailability toggles whether a driver is taking rides. Only approved
// drivers can go available; going offline is always allowed. Assignment
// does not consult the flag.
func (s *ProfileService) SetAvailability(ctx context.Context, p Principal, available bool) (*Profile, error) {
	if err := requireRole(p, models.RoleDriver, "update availability"); err != nil {
		return nil, err
	}
	driver, err := s.driver(ctx, p.ID)
	if err != nil {
		return nil, err
	}
	if available && driver.Status != models.DriverStatusApproved {
		return nil, apperrors.InvalidState("Driver is %s and cannot go available", driver.Status)
	}

	driver.IsAvailable = available
	if err := s.drivers.SaveDriver(ctx, driver); err != nil {
		return nil, s.internal(ctx, "Failed to update availability", err)
	}
	s.log.InfoContext(ctx, "driver availability changed", "driverId", driver.ID, "isAvailable", available)
	return driverProfile(driver), nil
}

func (s *ProfileService) user(ctx context.Context, id uint) (*models.User, error) {
	user, err := s.users.GetUser(ctx, id)
	if err != nil {
		if apperrors.Is(err, apperrors.KindNotFound) {
			return nil, apperrors.NotFound("User not found")
		}
		return nil, s.internal(ctx, "Server error", err)
	}
	return user, nil
}

func (s *ProfileService) driver(ctx context.Context, id uint) (*models.Driver, error) {
	driver, err := s.drivers.GetDriver(ctx, id)
	if err != nil {
		if apperrors.Is(err, apperrors.KindNotFound) {
			return nil, apperrors.NotFound("Driver not found")
		}
		return nil, s.internal(ctx, "Server error", err)
	}
	return driver, nil
}

func (s *ProfileService) internal(ctx context.Context, msg string, err error) error {
	s.log.ErrorContext(ctx, msg, "error", err)
	return apperrors.Internal(msg, err)
}

func userProfile(u *models.User) *Profile {
	return &Profile{Principal: principalFromUser(u), Phone: u.Phone}
}

func driverProfile(d *models.Driver) *Profile {
	vehicle := d.Vehicle
	available := d.IsAvailable
	rating := d.Rating
	return &Profile{
		Principal:   principalFromDriver(d),
		Phone:       d.Phone,
		Status:      d.Status,
		Vehicle:     &vehicle,
		IsAvailable: &available,
		Rating:      &rating,
	}
}
