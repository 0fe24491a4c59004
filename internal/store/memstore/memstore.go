// Package memstore keeps every record in process memory. It backs
// STORE_DRIVER=memory for local runs and the service/handler tests.
package memstore

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/chachabrian/ridehail-backend/internal/apperrors"
	"github.com/chachabrian/ridehail-backend/internal/models"
)

type Store struct {
	mu      sync.RWMutex
	nextID  uint
	users   map[uint]models.User
	drivers map[uint]models.Driver
	rides   map[uint]models.Ride
	fare    *models.FareConfig
	tokens  map[string]models.DeviceToken
	now     func() time.Time
}

func New() *Store {
	return &Store{
		users:   make(map[uint]models.User),
		drivers: make(map[uint]models.Driver),
		rides:   make(map[uint]models.Ride),
		tokens:  make(map[string]models.DeviceToken),
		now:     time.Now,
	}
}

func (s *Store) id() uint {
	s.nextID++
	return s.nextID
}

func (s *Store) stamp(createdAt *time.Time, updatedAt *time.Time) {
	now := s.now()
	if createdAt.IsZero() {
		*createdAt = now
	}
	*updatedAt = now
}

// Users

func (s *Store) CreateUser(_ context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.userEmailTaken(user.Email, 0) {
		return apperrors.Conflict("User already exists")
	}
	user.ID = s.id()
	s.stamp(&user.CreatedAt, &user.UpdatedAt)
	s.users[user.ID] = *user
	return nil
}

func (s *Store) GetUser(_ context.Context, id uint) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	user, ok := s.users[id]
	if !ok {
		return nil, apperrors.NotFound("User not found")
	}
	return &user, nil
}

func (s *Store) FindUserByEmail(_ context.Context, email string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, user := range s.users {
		if strings.EqualFold(user.Email, email) {
			u := user
			return &u, nil
		}
	}
	return nil, apperrors.NotFound("User not found")
}

func (s *Store) ListUsers(_ context.Context) ([]models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	users := make([]models.User, 0, len(s.users))
	for _, user := range s.users {
		users = append(users, user)
	}
	sort.Slice(users, func(i, j int) bool { return users[i].ID < users[j].ID })
	return users, nil
}

func (s *Store) SaveUser(_ context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[user.ID]; !ok {
		return apperrors.NotFound("User not found")
	}
	if s.userEmailTaken(user.Email, user.ID) {
		return apperrors.Conflict("User already exists")
	}
	user.UpdatedAt = s.now()
	s.users[user.ID] = *user
	return nil
}

func (s *Store) userEmailTaken(email string, except uint) bool {
	for id, user := range s.users {
		if id != except && strings.EqualFold(user.Email, email) {
			return true
		}
	}
	return false
}

// Drivers

func (s *Store) CreateDriver(_ context.Context, driver *models.Driver) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.driverEmailTaken(driver.Email, 0) {
		return apperrors.Conflict("Driver already exists")
	}
	if driver.Status == "" {
		driver.Status = models.DriverStatusPending
	}
	if driver.Rating == 0 {
		driver.Rating = 5
	}
	driver.ID = s.id()
	s.stamp(&driver.CreatedAt, &driver.UpdatedAt)
	s.drivers[driver.ID] = *driver
	return nil
}

func (s *Store) GetDriver(_ context.Context, id uint) (*models.Driver, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	driver, ok := s.drivers[id]
	if !ok {
		return nil, apperrors.NotFound("Driver not found")
	}
	return &driver, nil
}

func (s *Store) FindDriverByEmail(_ context.Context, email string) (*models.Driver, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, driver := range s.drivers {
		if strings.EqualFold(driver.Email, email) {
			d := driver
			return &d, nil
		}
	}
	return nil, apperrors.NotFound("Driver not found")
}

func (s *Store) ListDrivers(_ context.Context) ([]models.Driver, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	drivers := make([]models.Driver, 0, len(s.drivers))
	for _, driver := range s.drivers {
		drivers = append(drivers, driver)
	}
	sort.Slice(drivers, func(i, j int) bool { return drivers[i].ID < drivers[j].ID })
	return drivers, nil
}

func (s *Store) SaveDriver(_ context.Context, driver *models.Driver) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.drivers[driver.ID]; !ok {
		return apperrors.NotFound("Driver not found")
	}
	if s.driverEmailTaken(driver.Email, driver.ID) {
		return apperrors.Conflict("Driver already exists")
	}
	driver.UpdatedAt = s.now()
	s.drivers[driver.ID] = *driver
	return nil
}

func (s *Store) DeleteDriver(_ context.Context, id uint) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.drivers[id]; !ok {
		return apperrors.NotFound("Driver not found")
	}
	delete(s.drivers, id)
	return nil
}

func (s *Store) driverEmailTaken(email string, except uint) bool {
	for id, driver := range s.drivers {
		if id != except && strings.EqualFold(driver.Email, email) {
			return true
		}
	}
	return false
}

// Rides

func (s *Store) CreateRide(_ context.Context, ride *models.Ride) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if ride.Status == "" {
		ride.Status = models.RideStatusPending
	}
	if ride.PaymentStatus == "" {
		ride.PaymentStatus = models.PaymentStatusPending
	}
	ride.ID = s.id()
	s.stamp(&ride.CreatedAt, &ride.UpdatedAt)
	s.rides[ride.ID] = detachRide(*ride)
	return nil
}

func (s *Store) GetRide(_ context.Context, id uint) (*models.Ride, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ride, ok := s.rides[id]
	if !ok {
		return nil, apperrors.NotFound("Ride not found")
	}
	out := s.populate(ride)
	return &out, nil
}

func (s *Store) SaveRide(_ context.Context, ride *models.Ride) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.rides[ride.ID]; !ok {
		return apperrors.NotFound("Ride not found")
	}
	ride.UpdatedAt = s.now()
	s.rides[ride.ID] = detachRide(*ride)
	return nil
}

func (s *Store) ListRides(_ context.Context, filter models.RideFilter) ([]models.Ride, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rides := make([]models.Ride, 0)
	for _, ride := range s.rides {
		if filter.Matches(&ride) {
			rides = append(rides, s.populate(ride))
		}
	}
	sort.Slice(rides, func(i, j int) bool {
		if rides[i].CreatedAt.Equal(rides[j].CreatedAt) {
			return rides[i].ID > rides[j].ID
		}
		return rides[i].CreatedAt.After(rides[j].CreatedAt)
	})
	return rides, nil
}

// detachRide copies pointer fields so callers never share memory with the
// stored record, and drops associations.
func detachRide(r models.Ride) models.Ride {
	if r.DriverID != nil {
		id := *r.DriverID
		r.DriverID = &id
	}
	if r.Rating != nil {
		v := *r.Rating
		r.Rating = &v
	}
	if r.DriverRating != nil {
		v := *r.DriverRating
		r.DriverRating = &v
	}
	r.Rider = nil
	r.Driver = nil
	return r
}

func (s *Store) populate(r models.Ride) models.Ride {
	r = detachRide(r)
	if user, ok := s.users[r.RiderID]; ok {
		r.Rider = &user
	}
	if r.DriverID != nil {
		if driver, ok := s.drivers[*r.DriverID]; ok {
			r.Driver = &driver
		}
	}
	return r
}

// Fare config

func (s *Store) GetOrCreateFareConfig(_ context.Context) (*models.FareConfig, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.fare == nil {
		cfg := models.DefaultFareConfig()
		cfg.ID = 1
		cfg.UpdatedAt = s.now()
		s.fare = &cfg
	}
	cfg := *s.fare
	return &cfg, nil
}

func (s *Store) SaveFareConfig(_ context.Context, cfg *models.FareConfig) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	saved := *cfg
	saved.ID = 1
	cfg.ID = 1
	s.fare = &saved
	return nil
}

// Device tokens

func (s *Store) SaveDeviceToken(_ context.Context, token *models.DeviceToken) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if existing, ok := s.tokens[token.Token]; ok {
		token.ID = existing.ID
		token.CreatedAt = existing.CreatedAt
	} else {
		token.ID = s.id()
	}
	s.stamp(&token.CreatedAt, &token.UpdatedAt)
	s.tokens[token.Token] = *token
	return nil
}

func (s *Store) DeviceTokens(_ context.Context, role models.Role, principalID uint) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var tokens []string
	for _, t := range s.tokens {
		if t.Role == role && t.PrincipalID == principalID {
			tokens = append(tokens, t.Token)
		}
	}
	sort.Strings(tokens)
	return tokens, nil
}
