package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/chachabrian/ridehail-backend/internal/apperrors"
	"github.com/chachabrian/ridehail-backend/internal/models"
)

func requireKind(t *testing.T, err error, kind apperrors.Kind) {
	t.Helper()
	require.Error(t, err)
	assert.Equal(t, kind, apperrors.KindOf(err), "error: %v", err)
}

func TestRequestRidePricesServerSide(t *testing.T) {
	f := newFixture(t)
	rider := f.rider(t, "asha")

	ride := f.book(t, rider)

	assert.Equal(t, models.RideStatusPending, ride.Status)
	assert.Equal(t, models.PaymentStatusPending, ride.PaymentStatus)
	assert.Equal(t, 105.0, ride.Fare)
	assert.Nil(t, ride.DriverID)
	assert.Equal(t, rider.ID, ride.RiderID)
	require.NotNil(t, ride.Rider)
	assert.Equal(t, "asha", ride.Rider.Name)
	assert.Equal(t, []string{EventRideRequested}, f.events.types())
}

func TestRequestRideGuards(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	rider := f.rider(t, "asha")
	driver := f.driver(t, "dev", models.DriverStatusApproved)
	admin := f.adminPrincipal(t)

	in := BookRideInput{PickupLocation: kolkataPickup, DropLocation: kolkataDrop}

	_, err := f.rides.RequestRide(ctx, driver, in)
	requireKind(t, err, apperrors.KindForbidden)
	_, err = f.rides.RequestRide(ctx, admin, in)
	requireKind(t, err, apperrors.KindForbidden)

	bad := in
	bad.PickupLocation.Lat = 91
	_, err = f.rides.RequestRide(ctx, rider, bad)
	requireKind(t, err, apperrors.KindInvalidInput)

	bad = in
	bad.DropLocation.Address = "  "
	_, err = f.rides.RequestRide(ctx, rider, bad)
	requireKind(t, err, apperrors.KindInvalidInput)

	rides, err := f.store.ListRides(ctx, models.RideFilter{})
	require.NoError(t, err)
	assert.Empty(t, rides)
}

func TestAssignThenAcceptOnlyByAssignedDriver(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	rider := f.rider(t, "asha")
	admin := f.adminPrincipal(t)
	d1 := f.driver(t, "d1", models.DriverStatusApproved)
	d2 := f.driver(t, "d2", models.DriverStatusApproved)
	ride := f.book(t, rider)

	assigned, err := f.rides.Assign(ctx, admin, ride.ID, d1.ID)
	require.NoError(t, err)
	assert.Equal(t, models.RideStatusAssigned, assigned.Status)
	require.NotNil(t, assigned.DriverID)
	assert.Equal(t, d1.ID, *assigned.DriverID)
	require.NotNil(t, assigned.Driver)
	assert.Equal(t, "d1", assigned.Driver.Name)

	_, err = f.rides.Accept(ctx, d2, ride.ID)
	requireKind(t, err, apperrors.KindForbidden)
	assert.Equal(t, models.RideStatusAssigned, f.reload(t, ride.ID).Status)

	accepted, err := f.rides.Accept(ctx, d1, ride.ID)
	require.NoError(t, err)
	assert.Equal(t, models.RideStatusAccepted, accepted.Status)

	_, err = f.rides.Accept(ctx, d1, ride.ID)
	requireKind(t, err, apperrors.KindInvalidState)

	assert.Equal(t, []string{EventRideRequested, EventRideAssigned, EventRideAccepted}, f.events.types())
}

func TestAssignGuards(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	rider := f.rider(t, "asha")
	admin := f.adminPrincipal(t)
	d1 := f.driver(t, "d1", models.DriverStatusApproved)
	d2 := f.driver(t, "d2", models.DriverStatusPending)
	suspended := f.driver(t, "gone", models.DriverStatusSuspended)
	ride := f.book(t, rider)

	_, err := f.rides.Assign(ctx, rider, ride.ID, d1.ID)
	requireKind(t, err, apperrors.KindForbidden)
	_, err = f.rides.Assign(ctx, d1, ride.ID, d1.ID)
	requireKind(t, err, apperrors.KindForbidden)

	_, err = f.rides.Assign(ctx, admin, 9999, d1.ID)
	requireKind(t, err, apperrors.KindNotFound)
	_, err = f.rides.Assign(ctx, admin, ride.ID, 9999)
	requireKind(t, err, apperrors.KindNotFound)
	_, err = f.rides.Assign(ctx, admin, ride.ID, 0)
	requireKind(t, err, apperrors.KindInvalidInput)
	_, err = f.rides.Assign(ctx, admin, ride.ID, suspended.ID)
	requireKind(t, err, apperrors.KindInvalidState)
	assert.Equal(t, models.RideStatusPending, f.reload(t, ride.ID).Status)

	_, err = f.rides.Assign(ctx, admin, ride.ID, d1.ID)
	require.NoError(t, err)

	// reassignment before acceptance
	again, err := f.rides.Assign(ctx, admin, ride.ID, d2.ID)
	require.NoError(t, err)
	assert.True(t, again.AssignedTo(d2.ID))
	assert.Equal(t, models.RideStatusAssigned, again.Status)

	_, err = f.rides.Accept(ctx, d2, ride.ID)
	require.NoError(t, err)
	_, err = f.rides.Assign(ctx, admin, ride.ID, d1.ID)
	requireKind(t, err, apperrors.KindInvalidState)
	assert.True(t, f.reload(t, ride.ID).AssignedTo(d2.ID))
}

func TestUpdateStatusFollowsTransitionTable(t *testing.T) {
	all := []models.RideStatus{
		models.RideStatusPending, models.RideStatusAssigned, models.RideStatusAccepted,
		models.RideStatusOngoing, models.RideStatusCompleted, models.RideStatusCancelled,
	}

	for _, from := range all {
		for _, to := range all {
			t.Run(string(from)+"->"+string(to), func(t *testing.T) {
				f := newFixture(t)
				ctx := context.Background()
				rider := f.rider(t, "asha")
				admin := f.adminPrincipal(t)
				driver := f.driver(t, "d1", models.DriverStatusApproved)

				seed := models.Ride{RiderID: rider.ID, Fare: 100, Status: from}
				if from != models.RideStatusPending {
					seed.DriverID = uintPtr(driver.ID)
				}
				ride := f.seedRide(t, seed)

				got, err := f.rides.UpdateStatus(ctx, admin, ride.ID, to)
				allowed := to != models.RideStatusAssigned && CanTransition(from, to)
				if allowed {
					require.NoError(t, err)
					assert.Equal(t, to, got.Status)
					return
				}
				requireKind(t, err, apperrors.KindInvalidState)
				assert.Equal(t, from, f.reload(t, ride.ID).Status)
			})
		}
	}
}

// The generic status write no longer accepts arbitrary values: rewinding
// an ongoing ride or leaving a terminal state is refused.
func TestUpdateStatusRejectsRewinds(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	rider := f.rider(t, "asha")
	admin := f.adminPrincipal(t)
	driver := f.driver(t, "d1", models.DriverStatusApproved)

	ongoing := f.seedRide(t, models.Ride{RiderID: rider.ID, DriverID: uintPtr(driver.ID), Fare: 100, Status: models.RideStatusOngoing})
	_, err := f.rides.UpdateStatus(ctx, driver, ongoing.ID, models.RideStatusPending)
	requireKind(t, err, apperrors.KindInvalidState)
	_, err = f.rides.UpdateStatus(ctx, admin, ongoing.ID, models.RideStatusPending)
	requireKind(t, err, apperrors.KindInvalidState)
	assert.Equal(t, models.RideStatusOngoing, f.reload(t, ongoing.ID).Status)

	for _, terminal := range []models.RideStatus{models.RideStatusCompleted, models.RideStatusCancelled} {
		ride := f.seedRide(t, models.Ride{RiderID: rider.ID, DriverID: uintPtr(driver.ID), Fare: 100, Status: terminal})
		for _, to := range []models.RideStatus{
			models.RideStatusPending, models.RideStatusAccepted, models.RideStatusOngoing,
			models.RideStatusCompleted, models.RideStatusCancelled,
		} {
			_, err := f.rides.UpdateStatus(ctx, admin, ride.ID, to)
			requireKind(t, err, apperrors.KindInvalidState)
		}
		assert.Equal(t, terminal, f.reload(t, ride.ID).Status)
	}
}

func TestUpdateStatusOwnership(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	rider := f.rider(t, "asha")
	d1 := f.driver(t, "d1", models.DriverStatusApproved)
	d2 := f.driver(t, "d2", models.DriverStatusApproved)

	accepted := f.seedRide(t, models.Ride{RiderID: rider.ID, DriverID: uintPtr(d1.ID), Fare: 100, Status: models.RideStatusAccepted})
	pending := f.seedRide(t, models.Ride{RiderID: rider.ID, Fare: 100, Status: models.RideStatusPending})

	_, err := f.rides.UpdateStatus(ctx, d2, accepted.ID, models.RideStatusOngoing)
	requireKind(t, err, apperrors.KindForbidden)
	_, err = f.rides.UpdateStatus(ctx, d1, pending.ID, models.RideStatusCancelled)
	requireKind(t, err, apperrors.KindForbidden)
	_, err = f.rides.UpdateStatus(ctx, rider, accepted.ID, models.RideStatusCancelled)
	requireKind(t, err, apperrors.KindForbidden)
	_, err = f.rides.UpdateStatus(ctx, d1, accepted.ID, models.RideStatus("flying"))
	requireKind(t, err, apperrors.KindInvalidInput)
	_, err = f.rides.UpdateStatus(ctx, d1, 9999, models.RideStatusOngoing)
	requireKind(t, err, apperrors.KindNotFound)

	assert.Equal(t, models.RideStatusAccepted, f.reload(t, accepted.ID).Status)

	ride, err := f.rides.UpdateStatus(ctx, d1, accepted.ID, models.RideStatusOngoing)
	require.NoError(t, err)
	assert.Equal(t, models.RideStatusOngoing, ride.Status)
	ride, err = f.rides.UpdateStatus(ctx, d1, accepted.ID, models.RideStatusCompleted)
	require.NoError(t, err)
	assert.Equal(t, models.RideStatusCompleted, ride.Status)
}

func TestCollectCash(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	rider := f.rider(t, "asha")
	d1 := f.driver(t, "d1", models.DriverStatusApproved)
	d2 := f.driver(t, "d2", models.DriverStatusApproved)

	done := f.seedRide(t, models.Ride{RiderID: rider.ID, DriverID: uintPtr(d1.ID), Fare: 104, Status: models.RideStatusCompleted})

	_, err := f.rides.CollectCash(ctx, d2, done.ID)
	requireKind(t, err, apperrors.KindForbidden)
	_, err = f.rides.CollectCash(ctx, rider, done.ID)
	requireKind(t, err, apperrors.KindForbidden)

	ride, err := f.rides.CollectCash(ctx, d1, done.ID)
	require.NoError(t, err)
	assert.Equal(t, models.PaymentStatusApproved, ride.PaymentStatus)
	assert.Equal(t, models.PaymentMethodCash, ride.PaymentMethod)
	assert.Equal(t, models.RideStatusCompleted, ride.Status)

	_, err = f.rides.CollectCash(ctx, d1, done.ID)
	requireKind(t, err, apperrors.KindInvalidState)

	for _, status := range []models.RideStatus{
		models.RideStatusAssigned, models.RideStatusAccepted, models.RideStatusOngoing, models.RideStatusCancelled,
	} {
		ride := f.seedRide(t, models.Ride{RiderID: rider.ID, DriverID: uintPtr(d1.ID), Fare: 100, Status: status})
		_, err := f.rides.CollectCash(ctx, d1, ride.ID)
		requireKind(t, err, apperrors.KindInvalidState)
		assert.Equal(t, models.PaymentStatusPending, f.reload(t, ride.ID).PaymentStatus)
	}

	rejected := f.seedRide(t, models.Ride{
		RiderID: rider.ID, DriverID: uintPtr(d1.ID), Fare: 100,
		Status: models.RideStatusCompleted, PaymentStatus: models.PaymentStatusRejected,
	})
	_, err = f.rides.CollectCash(ctx, d1, rejected.ID)
	requireKind(t, err, apperrors.KindInvalidState)
}

func TestSetPaymentStatus(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	rider := f.rider(t, "asha")
	admin := f.adminPrincipal(t)
	driver := f.driver(t, "d1", models.DriverStatusApproved)
	ride := f.book(t, rider)

	_, err := f.rides.SetPaymentStatus(ctx, driver, ride.ID, models.PaymentStatusApproved)
	requireKind(t, err, apperrors.KindForbidden)
	_, err = f.rides.SetPaymentStatus(ctx, admin, ride.ID, models.PaymentStatusPending)
	requireKind(t, err, apperrors.KindInvalidInput)
	_, err = f.rides.SetPaymentStatus(ctx, admin, 9999, models.PaymentStatusApproved)
	requireKind(t, err, apperrors.KindNotFound)

	// no status precondition for admins
	got, err := f.rides.SetPaymentStatus(ctx, admin, ride.ID, models.PaymentStatusRejected)
	require.NoError(t, err)
	assert.Equal(t, models.PaymentStatusRejected, got.PaymentStatus)
	assert.Equal(t, models.RideStatusPending, got.Status)

	got, err = f.rides.SetPaymentStatus(ctx, admin, ride.ID, models.PaymentStatusApproved)
	require.NoError(t, err)
	assert.Equal(t, models.PaymentStatusApproved, got.PaymentStatus)
}

func TestCreateForRider(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	rider := f.rider(t, "asha")
	admin := f.adminPrincipal(t)
	driver := f.driver(t, "d1", models.DriverStatusApproved)
	suspended := f.driver(t, "gone", models.DriverStatusSuspended)

	in := AdminRideInput{RiderID: rider.ID, PickupLocation: kolkataPickup, DropLocation: kolkataDrop}

	priced, err := f.rides.CreateForRider(ctx, admin, in)
	require.NoError(t, err)
	assert.Equal(t, 105.0, priced.Fare)
	assert.Equal(t, models.RideStatusPending, priced.Status)
	assert.Nil(t, priced.DriverID)

	withDriver := in
	withDriver.Fare = 250
	withDriver.DriverID = uintPtr(driver.ID)
	assigned, err := f.rides.CreateForRider(ctx, admin, withDriver)
	require.NoError(t, err)
	assert.Equal(t, 250.0, assigned.Fare)
	assert.Equal(t, models.RideStatusAssigned, assigned.Status)
	assert.True(t, assigned.AssignedTo(driver.ID))

	_, err = f.rides.CreateForRider(ctx, rider, in)
	requireKind(t, err, apperrors.KindForbidden)

	notRider := in
	notRider.RiderID = admin.ID
	_, err = f.rides.CreateForRider(ctx, admin, notRider)
	requireKind(t, err, apperrors.KindNotFound)

	negative := in
	negative.Fare = -1
	_, err = f.rides.CreateForRider(ctx, admin, negative)
	requireKind(t, err, apperrors.KindInvalidInput)

	blocked := in
	blocked.DriverID = uintPtr(suspended.ID)
	_, err = f.rides.CreateForRider(ctx, admin, blocked)
	requireKind(t, err, apperrors.KindInvalidState)
}

func TestRate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	rider := f.rider(t, "asha")
	other := f.rider(t, "ben")
	driver := f.driver(t, "d1", models.DriverStatusApproved)

	done := f.seedRide(t, models.Ride{RiderID: rider.ID, DriverID: uintPtr(driver.ID), Fare: 100, Status: models.RideStatusCompleted})
	ongoing := f.seedRide(t, models.Ride{RiderID: rider.ID, DriverID: uintPtr(driver.ID), Fare: 100, Status: models.RideStatusOngoing})

	_, err := f.rides.Rate(ctx, rider, done.ID, 6)
	requireKind(t, err, apperrors.KindInvalidInput)
	_, err = f.rides.Rate(ctx, other, done.ID, 4)
	requireKind(t, err, apperrors.KindForbidden)
	_, err = f.rides.Rate(ctx, rider, ongoing.ID, 4)
	requireKind(t, err, apperrors.KindInvalidState)

	ride, err := f.rides.Rate(ctx, rider, done.ID, 5)
	require.NoError(t, err)
	require.NotNil(t, ride.Rating)
	assert.Equal(t, 5, *ride.Rating)
	assert.Nil(t, ride.DriverRating)

	_, err = f.rides.Rate(ctx, rider, done.ID, 3)
	requireKind(t, err, apperrors.KindInvalidState)

	ride, err = f.rides.Rate(ctx, driver, done.ID, 4)
	require.NoError(t, err)
	require.NotNil(t, ride.DriverRating)
	assert.Equal(t, 4, *ride.DriverRating)
	assert.Equal(t, 5, *ride.Rating)
}

func TestReadViews(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	asha := f.rider(t, "asha")
	ben := f.rider(t, "ben")
	admin := f.adminPrincipal(t)
	d1 := f.driver(t, "d1", models.DriverStatusApproved)
	d2 := f.driver(t, "d2", models.DriverStatusApproved)

	r1 := f.seedRide(t, models.Ride{RiderID: asha.ID, DriverID: uintPtr(d1.ID), Fare: 100, Status: models.RideStatusAssigned, Model: modelAt(f.now.Add(-3 * time.Hour))})
	r2 := f.seedRide(t, models.Ride{RiderID: asha.ID, DriverID: uintPtr(d1.ID), Fare: 100, Status: models.RideStatusAccepted, Model: modelAt(f.now.Add(-2 * time.Hour))})
	r3 := f.seedRide(t, models.Ride{RiderID: ben.ID, DriverID: uintPtr(d2.ID), Fare: 100, Status: models.RideStatusAssigned, Model: modelAt(f.now.Add(-1 * time.Hour))})

	mine, err := f.rides.MyRides(ctx, asha)
	require.NoError(t, err)
	assert.Equal(t, []uint{r2.ID, r1.ID}, rideIDs(mine))

	mine, err = f.rides.MyRides(ctx, d2)
	require.NoError(t, err)
	assert.Equal(t, []uint{r3.ID}, rideIDs(mine))

	_, err = f.rides.MyRides(ctx, admin)
	requireKind(t, err, apperrors.KindForbidden)

	pending, err := f.rides.PendingForDriver(ctx, d1)
	require.NoError(t, err)
	assert.Equal(t, []uint{r1.ID}, rideIDs(pending))

	_, err = f.rides.PendingForDriver(ctx, asha)
	requireKind(t, err, apperrors.KindForbidden)

	all, err := f.rides.AllRides(ctx, admin)
	require.NoError(t, err)
	assert.Equal(t, []uint{r3.ID, r2.ID, r1.ID}, rideIDs(all))

	_, err = f.rides.AllRides(ctx, d1)
	requireKind(t, err, apperrors.KindForbidden)

	_, err = f.rides.Get(ctx, ben, r1.ID)
	requireKind(t, err, apperrors.KindForbidden)
	got, err := f.rides.Get(ctx, d1, r1.ID)
	require.NoError(t, err)
	assert.Equal(t, r1.ID, got.ID)
}

func TestRiderStats(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	rider := f.rider(t, "asha")
	other := f.rider(t, "ben")
	driver := f.driver(t, "d1", models.DriverStatusApproved)

	for _, r := range []models.Ride{
		{RiderID: rider.ID, Fare: 100, Status: models.RideStatusCompleted, PaymentStatus: models.PaymentStatusApproved},
		{RiderID: rider.ID, Fare: 200, Status: models.RideStatusCompleted, PaymentStatus: models.PaymentStatusApproved},
		{RiderID: rider.ID, Fare: 50, Status: models.RideStatusCompleted, PaymentStatus: models.PaymentStatusPending},
		{RiderID: other.ID, Fare: 999, Status: models.RideStatusCompleted, PaymentStatus: models.PaymentStatusApproved},
	} {
		r.DriverID = uintPtr(driver.ID)
		f.seedRide(t, r)
	}

	stats, err := f.rides.RiderStats(ctx, rider)
	require.NoError(t, err)
	assert.Equal(t, &RiderStats{TotalSpent: 300, TotalRides: 2, PendingPayments: 1}, stats)

	_, err = f.rides.RiderStats(ctx, driver)
	requireKind(t, err, apperrors.KindForbidden)
}

func TestDriverStatsWindows(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	rider := f.rider(t, "asha")
	driver := f.driver(t, "d1", models.DriverStatusApproved)
	other := f.driver(t, "d2", models.DriverStatusApproved)

	approved := func(fare float64, at time.Time, d Principal) models.Ride {
		return models.Ride{
			Model:   modelAt(at),
			RiderID: rider.ID, DriverID: uintPtr(d.ID), Fare: fare,
			Status: models.RideStatusCompleted, PaymentStatus: models.PaymentStatusApproved,
		}
	}
	for _, r := range []models.Ride{
		approved(100, time.Date(2024, time.March, 15, 8, 0, 0, 0, time.UTC), driver),
		approved(200, time.Date(2024, time.March, 3, 12, 0, 0, 0, time.UTC), driver),
		approved(50, time.Date(2024, time.February, 20, 12, 0, 0, 0, time.UTC), driver),
		approved(999, time.Date(2024, time.March, 15, 9, 0, 0, 0, time.UTC), other),
		{Model: modelAt(f.now), RiderID: rider.ID, DriverID: uintPtr(driver.ID), Fare: 70, Status: models.RideStatusCompleted},
		{Model: modelAt(f.now), RiderID: rider.ID, DriverID: uintPtr(driver.ID), Fare: 80, Status: models.RideStatusOngoing},
	} {
		f.seedRide(t, r)
	}

	stats, err := f.rides.DriverStats(ctx, driver)
	require.NoError(t, err)
	assert.Equal(t, &DriverStats{
		TotalEarned:     350,
		TodayEarnings:   100,
		MonthEarnings:   300,
		TotalRides:      3,
		TodayRides:      1,
		MonthRides:      2,
		PendingPayments: 1,
	}, stats)
}

func TestEventsCarryRideParties(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	rider := f.rider(t, "asha")
	admin := f.adminPrincipal(t)
	driver := f.driver(t, "d1", models.DriverStatusApproved)
	ride := f.book(t, rider)

	_, err := f.rides.Assign(ctx, admin, ride.ID, driver.ID)
	require.NoError(t, err)
	_, err = f.rides.Accept(ctx, driver, ride.ID)
	require.NoError(t, err)
	_, err = f.rides.UpdateStatus(ctx, driver, ride.ID, models.RideStatusOngoing)
	require.NoError(t, err)
	_, err = f.rides.UpdateStatus(ctx, driver, ride.ID, models.RideStatusCompleted)
	require.NoError(t, err)
	_, err = f.rides.CollectCash(ctx, driver, ride.ID)
	require.NoError(t, err)

	// refused operations emit nothing
	_, err = f.rides.CollectCash(ctx, driver, ride.ID)
	require.Error(t, err)

	assert.Equal(t, []string{
		EventRideRequested, EventRideAssigned, EventRideAccepted,
		EventRideStatus, EventRideStatus, EventPaymentCollected,
	}, f.events.types())

	last := f.events.events[len(f.events.events)-1]
	assert.Equal(t, ride.ID, last.RideID)
	assert.Equal(t, rider.ID, last.RiderID)
	require.NotNil(t, last.DriverID)
	assert.Equal(t, driver.ID, *last.DriverID)
	assert.Equal(t, models.PaymentStatusApproved, last.PaymentStatus)
	assert.Equal(t, models.RoleDriver, last.ActorRole)
	assert.Equal(t, f.now, last.At)
}

func TestReassignCarriesReplacedDriver(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	rider := f.rider(t, "asha")
	admin := f.adminPrincipal(t)
	first := f.driver(t, "d1", models.DriverStatusApproved)
	second := f.driver(t, "d2", models.DriverStatusApproved)
	ride := f.book(t, rider)

	_, err := f.rides.Assign(ctx, admin, ride.ID, first.ID)
	require.NoError(t, err)
	assigned := f.events.events[len(f.events.events)-1]
	assert.Nil(t, assigned.PreviousDriverID)

	// same driver again is not a replacement
	_, err = f.rides.Assign(ctx, admin, ride.ID, first.ID)
	require.NoError(t, err)
	assert.Nil(t, f.events.events[len(f.events.events)-1].PreviousDriverID)

	_, err = f.rides.Assign(ctx, admin, ride.ID, second.ID)
	require.NoError(t, err)
	reassigned := f.events.events[len(f.events.events)-1]
	assert.Equal(t, EventRideAssigned, reassigned.Type)
	require.NotNil(t, reassigned.DriverID)
	assert.Equal(t, second.ID, *reassigned.DriverID)
	require.NotNil(t, reassigned.PreviousDriverID)
	assert.Equal(t, first.ID, *reassigned.PreviousDriverID)
	assert.Equal(t, models.RideStatusAssigned, reassigned.Status)
}

func modelAt(at time.Time) gorm.Model {
	return gorm.Model{CreatedAt: at}
}

func rideIDs(rides []models.Ride) []uint {
	ids := make([]uint, 0, len(rides))
	for _, r := range rides {
		ids = append(ids, r.ID)
	}
	return ids
}
