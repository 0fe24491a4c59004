package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/chachabrian/ridehail-backend/internal/logging"
	"github.com/chachabrian/ridehail-backend/internal/models"
	"github.com/chachabrian/ridehail-backend/internal/store/memstore"
)

var (
	kolkataPickup = models.Location{Address: "Esplanade", Lat: 22.57, Lng: 88.36}
	kolkataDrop   = models.Location{Address: "Salt Lake", Lat: 22.58, Lng: 88.42}
)

type recordingNotifier struct {
	mu     sync.Mutex
	events []RideEvent
}

func (r *recordingNotifier) RideChanged(_ context.Context, ev RideEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
}

func (r *recordingNotifier) types() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.events))
	for _, ev := range r.events {
		out = append(out, ev.Type)
	}
	return out
}

type fixture struct {
	store  *memstore.Store
	fares  *FareService
	rides  *RideService
	admin  *AdminService
	events *recordingNotifier
	now    time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	log := logging.Discard()
	f := &fixture{
		store:  memstore.New(),
		events: &recordingNotifier{},
		now:    time.Date(2024, time.March, 15, 10, 0, 0, 0, time.UTC),
	}
	f.fares = NewFareService(f.store, nil, log)
	f.rides = NewRideService(f.store, f.store, f.store, f.fares, f.events, log,
		WithClock(func() time.Time { return f.now }))
	f.admin = NewAdminService(f.store, f.store, nil, log)
	return f
}

func (f *fixture) user(t *testing.T, name string, role models.Role) Principal {
	t.Helper()
	u := &models.User{Name: name, Email: name + "@ride.test", Role: role}
	require.NoError(t, u.SetPassword("secret123"))
	require.NoError(t, f.store.CreateUser(context.Background(), u))
	return principalFromUser(u)
}

func (f *fixture) rider(t *testing.T, name string) Principal {
	return f.user(t, name, models.RoleRider)
}

func (f *fixture) adminPrincipal(t *testing.T) Principal {
	return f.user(t, "admin", models.RoleAdmin)
}

func (f *fixture) driver(t *testing.T, name string, status models.DriverStatus) Principal {
	t.Helper()
	d := &models.Driver{Name: name, Email: name + "@drivers.test", Phone: "555", Status: status}
	require.NoError(t, d.SetPassword("secret123"))
	require.NoError(t, f.store.CreateDriver(context.Background(), d))
	return principalFromDriver(d)
}

// book creates a pending ride for rider through the public path.
func (f *fixture) book(t *testing.T, rider Principal) *models.Ride {
	t.Helper()
	ride, err := f.rides.RequestRide(context.Background(), rider, BookRideInput{
		PickupLocation: kolkataPickup,
		DropLocation:   kolkataDrop,
	})
	require.NoError(t, err)
	return ride
}

// seedRide stores a ride directly in the given state.
func (f *fixture) seedRide(t *testing.T, r models.Ride) *models.Ride {
	t.Helper()
	if r.PickupLocation.Address == "" {
		r.PickupLocation = kolkataPickup
		r.DropLocation = kolkataDrop
	}
	require.NoError(t, f.store.CreateRide(context.Background(), &r))
	return &r
}

func (f *fixture) reload(t *testing.T, id uint) *models.Ride {
	t.Helper()
	ride, err := f.store.GetRide(context.Background(), id)
	require.NoError(t, err)
	return ride
}

func uintPtr(v uint) *uint { return &v }
