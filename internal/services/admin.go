package services

import (
	"context"
	"log/slog"
	"net/mail"
	"strings"

	"github.com/chachabrian/ridehail-backend/internal/apperrors"
	"github.com/chachabrian/ridehail-backend/internal/models"
	"github.com/chachabrian/ridehail-backend/pkg/utils"
)

// CreateDriverInput is the admin form for onboarding a driver.
type CreateDriverInput struct {
	Name     string         `json:"name"`
	Email    string         `json:"email"`
	Password string         `json:"password"`
	Phone    string         `json:"phone"`
	Vehicle  models.Vehicle `json:"vehicle"`
}

// AdminService covers driver management, listings and the named-location
// list. Ride creation and assignment live on RideService.
type AdminService struct {
	users     UserStore
	drivers   DriverStore
	locations LocationStore
	log       *slog.Logger
}

func NewAdminService(users UserStore, drivers DriverStore, locations LocationStore, log *slog.Logger) *AdminService {
	return &AdminService{users: users, drivers: drivers, locations: locations, log: log}
}

func (s *AdminService) ListUsers(ctx context.Context, p Principal) ([]models.User, error) {
	if err := requireRole(p, models.RoleAdmin, "list users"); err != nil {
		return nil, err
	}
	users, err := s.users.ListUsers(ctx)
	if err != nil {
		return nil, s.internal(ctx, "Error fetching users", err)
	}
	return users, nil
}

func (s *AdminService) ListDrivers(ctx context.Context, p Principal) ([]models.Driver, error) {
	if err := requireRole(p, models.RoleAdmin, "list drivers"); err != nil {
		return nil, err
	}
	drivers, err := s.drivers.ListDrivers(ctx)
	if err != nil {
		return nil, s.internal(ctx, "Error fetching drivers", err)
	}
	return drivers, nil
}

// CreateDriver onboards a driver in pending status.
func (s *AdminService) CreateDriver(ctx context.Context, p Principal, in CreateDriverInput) (*models.Driver, error) {
	if err := requireRole(p, models.RoleAdmin, "create drivers"); err != nil {
		return nil, err
	}

	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	in.Phone = strings.TrimSpace(in.Phone)
	switch {
	case in.Name == "":
		return nil, apperrors.InvalidInput("name is required")
	case !validEmail(in.Email):
		return nil, apperrors.InvalidInput("a valid email is required")
	case len(in.Password) < 6:
		return nil, apperrors.InvalidInput("password must be at least 6 characters")
	case in.Phone == "":
		return nil, apperrors.InvalidInput("phone is required")
	}

	driver := &models.Driver{
		Name:    in.Name,
		Email:   in.Email,
		Phone:   in.Phone,
		Vehicle: in.Vehicle,
		Status:  models.DriverStatusPending,
		Rating:  5,
	}
	if err := driver.SetPassword(in.Password); err != nil {
		return nil, s.internal(ctx, "Error hashing password", err)
	}
	if err := s.drivers.CreateDriver(ctx, driver); err != nil {
		if apperrors.Is(err, apperrors.KindConflict) {
			return nil, apperrors.Conflict("Driver already exists")
		}
		return nil, s.internal(ctx, "Error creating driver", err)
	}

	s.log.InfoContext(ctx, "driver created", "driverId", driver.ID, "email", driver.Email)
	return driver, nil
}

func (s *AdminService) ApproveDriver(ctx context.Context, p Principal, id uint) (*models.Driver, error) {
	return s.setDriverStatus(ctx, p, id, models.DriverStatusApproved)
}

// SuspendDriver blocks further assignments; rides already assigned keep
// their driver.
func (s *AdminService) SuspendDriver(ctx context.Context, p Principal, id uint) (*models.Driver, error) {
	return s.setDriverStatus(ctx, p, id, models.DriverStatusSuspended)
}

func (s *AdminService) setDriverStatus(ctx context.Context, p Principal, id uint, status models.DriverStatus) (*models.Driver, error) {
	if err := requireRole(p, models.RoleAdmin, "manage drivers"); err != nil {
		return nil, err
	}
	driver, err := s.drivers.GetDriver(ctx, id)
	if err != nil {
		return nil, s.lookupErr(ctx, "Driver not found", err)
	}

	driver.Status = status
	if err := s.drivers.SaveDriver(ctx, driver); err != nil {
		return nil, s.internal(ctx, "Error updating driver", err)
	}

	s.log.InfoContext(ctx, "driver status changed", "driverId", id, "status", status)
	return driver, nil
}

func (s *AdminService) DeleteDriver(ctx context.Context, p Principal, id uint) error {
	if err := requireRole(p, models.RoleAdmin, "delete drivers"); err != nil {
		return err
	}
	if err := s.drivers.DeleteDriver(ctx, id); err != nil {
		return s.lookupErr(ctx, "Driver not found", err)
	}
	s.log.InfoContext(ctx, "driver removed", "driverId", id)
	return nil
}

func (s *AdminService) ListLocations(ctx context.Context, p Principal) ([]models.NamedLocation, error) {
	if err := requireRole(p, models.RoleAdmin, "manage locations"); err != nil {
		return nil, err
	}
	return s.allLocations(ctx)
}

// SearchLocations is the booking autocomplete: any signed-in principal,
// case-insensitive substring match on the name. An empty query lists all.
func (s *AdminService) SearchLocations(ctx context.Context, p Principal, query string) ([]models.NamedLocation, error) {
	if p.ID == 0 {
		return nil, apperrors.Unauthenticated("Not authorized")
	}
	all, err := s.allLocations(ctx)
	if err != nil {
		return nil, err
	}

	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return all, nil
	}
	matches := make([]models.NamedLocation, 0)
	for _, loc := range all {
		if strings.Contains(strings.ToLower(loc.Name), query) {
			matches = append(matches, loc)
		}
	}
	return matches, nil
}

func (s *AdminService) AddLocation(ctx context.Context, p Principal, loc models.NamedLocation) (*models.NamedLocation, error) {
	if err := requireRole(p, models.RoleAdmin, "manage locations"); err != nil {
		return nil, err
	}
	loc.Name = strings.TrimSpace(loc.Name)
	if loc.Name == "" {
		return nil, apperrors.InvalidInput("Name, lat and lng are required")
	}
	if !(utils.Point{Lat: loc.Lat, Lng: loc.Lng}).Valid() {
		return nil, apperrors.InvalidInput("lat/lng must be valid coordinates")
	}

	if err := s.locations.AddLocation(ctx, loc); err != nil {
		if apperrors.Is(err, apperrors.KindConflict) {
			return nil, err
		}
		return nil, s.internal(ctx, "Error adding location", err)
	}
	return &loc, nil
}

func (s *AdminService) RemoveLocation(ctx context.Context, p Principal, name string) error {
	if err := requireRole(p, models.RoleAdmin, "manage locations"); err != nil {
		return err
	}
	if err := s.locations.RemoveLocation(ctx, strings.TrimSpace(name)); err != nil {
		return s.lookupErr(ctx, "Location not found", err)
	}
	return nil
}

func (s *AdminService) allLocations(ctx context.Context) ([]models.NamedLocation, error) {
	locs, err := s.locations.ListLocations(ctx)
	if err != nil {
		return nil, s.internal(ctx, "Error reading locations", err)
	}
	return locs, nil
}

func (s *AdminService) lookupErr(ctx context.Context, notFound string, err error) error {
	if apperrors.Is(err, apperrors.KindNotFound) {
		return apperrors.NotFound("%s", notFound)
	}
	return s.internal(ctx, "Server error", err)
}

func (s *AdminService) internal(ctx context.Context, msg string, err error) error {
	s.log.ErrorContext(ctx, msg, "error", err)
	return apperrors.Internal(msg, err)
}

func validEmail(email string) bool {
	addr, err := mail.ParseAddress(email)
	return err == nil && addr.Address == email
}
