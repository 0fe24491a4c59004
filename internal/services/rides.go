package services

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/chachabrian/ridehail-backend/internal/apperrors"
	"github.com/chachabrian/ridehail-backend/internal/models"
	"github.com/chachabrian/ridehail-backend/internal/observability"
	"github.com/chachabrian/ridehail-backend/pkg/utils"
)

// BookRideInput is what a rider sends to request a trip. The fare is
// always priced server side.
type BookRideInput struct {
	PickupLocation models.Location `json:"pickupLocation"`
	DropLocation   models.Location `json:"dropLocation"`
}

// AdminRideInput books a ride on a rider's behalf. A zero Fare means
// "price it"; a DriverID assigns the ride immediately.
type AdminRideInput struct {
	RiderID        uint            `json:"riderId"`
	PickupLocation models.Location `json:"pickupLocation"`
	DropLocation   models.Location `json:"dropLocation"`
	Fare           float64         `json:"fare"`
	DriverID       *uint           `json:"driverId"`
}

type RiderStats struct {
	TotalSpent      float64 `json:"totalSpent"`
	TotalRides      int     `json:"totalRides"`
	PendingPayments int     `json:"pendingPayments"`
}

type DriverStats struct {
	TotalEarned     float64 `json:"totalEarned"`
	TodayEarnings   float64 `json:"todayEarnings"`
	MonthEarnings   float64 `json:"monthEarnings"`
	TotalRides      int     `json:"totalRides"`
	TodayRides      int     `json:"todayRides"`
	MonthRides      int     `json:"monthRides"`
	PendingPayments int     `json:"pendingPayments"`
}

// RideService owns every change to a ride's status and payment status.
// Each operation is a single read-modify-write of one ride; concurrent
// assignments of the same ride are last-write-wins.
type RideService struct {
	rides    RideStore
	drivers  DriverStore
	users    UserStore
	fares    *FareService
	notifier RideNotifier
	log      *slog.Logger
	now      func() time.Time
}

type RideServiceOption func(*RideService)

// WithClock replaces time.Now, used for stats windows and event times.
func WithClock(now func() time.Time) RideServiceOption {
	return func(s *RideService) { s.now = now }
}

func NewRideService(rides RideStore, drivers DriverStore, users UserStore, fares *FareService, notifier RideNotifier, log *slog.Logger, opts ...RideServiceOption) *RideService {
	s := &RideService{
		rides:    rides,
		drivers:  drivers,
		users:    users,
		fares:    fares,
		notifier: notifier,
		log:      log,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// RequestRide books a pending ride for the calling rider.
func (s *RideService) RequestRide(ctx context.Context, p Principal, in BookRideInput) (*models.Ride, error) {
	if err := s.guard("request", requireRole(p, models.RoleRider, "book rides")); err != nil {
		return nil, err
	}
	if err := validateLocations(in.PickupLocation, in.DropLocation); err != nil {
		return nil, err
	}

	quote, err := s.fares.Estimate(ctx, pointOf(in.PickupLocation), pointOf(in.DropLocation))
	if err != nil {
		return nil, err
	}

	ride := &models.Ride{
		RiderID:        p.ID,
		PickupLocation: in.PickupLocation,
		DropLocation:   in.DropLocation,
		Fare:           quote.Fare,
		Status:         models.RideStatusPending,
		PaymentStatus:  models.PaymentStatusPending,
	}
	if err := s.rides.CreateRide(ctx, ride); err != nil {
		return nil, s.internal(ctx, "Error creating ride", err)
	}

	s.log.InfoContext(ctx, "ride requested", "rideId", ride.ID, "riderId", p.ID, "fare", ride.Fare)
	s.emit(ctx, EventRideRequested, ride, p)
	return s.reload(ctx, ride)
}

// CreateForRider books a ride on behalf of a rider, optionally assigning
// a driver straight away.
func (s *RideService) CreateForRider(ctx context.Context, p Principal, in AdminRideInput) (*models.Ride, error) {
	if err := s.guard("admin_create", requireRole(p, models.RoleAdmin, "create rides for riders")); err != nil {
		return nil, err
	}
	if in.RiderID == 0 {
		return nil, apperrors.InvalidInput("riderId is required")
	}
	if in.Fare < 0 {
		return nil, apperrors.InvalidInput("fare must not be negative")
	}
	if err := validateLocations(in.PickupLocation, in.DropLocation); err != nil {
		return nil, err
	}

	rider, err := s.users.GetUser(ctx, in.RiderID)
	if err != nil {
		return nil, s.lookupErr(ctx, "Rider not found", err)
	}
	if rider.Role != models.RoleRider {
		return nil, apperrors.NotFound("Rider not found")
	}

	var driver *models.Driver
	if in.DriverID != nil {
		if driver, err = s.assignableDriver(ctx, *in.DriverID); err != nil {
			return nil, err
		}
	}

	fare := in.Fare
	if fare == 0 {
		quote, err := s.fares.Estimate(ctx, pointOf(in.PickupLocation), pointOf(in.DropLocation))
		if err != nil {
			return nil, err
		}
		fare = quote.Fare
	}

	ride := &models.Ride{
		RiderID:        rider.ID,
		PickupLocation: in.PickupLocation,
		DropLocation:   in.DropLocation,
		Fare:           fare,
		Status:         models.RideStatusPending,
		PaymentStatus:  models.PaymentStatusPending,
	}
	if driver != nil {
		id := driver.ID
		ride.DriverID = &id
		ride.Status = models.RideStatusAssigned
	}
	if err := s.rides.CreateRide(ctx, ride); err != nil {
		return nil, s.internal(ctx, "Error creating ride", err)
	}

	s.log.InfoContext(ctx, "ride created by admin", "rideId", ride.ID, "riderId", rider.ID, "status", ride.Status)
	if driver != nil {
		observability.RideTransitionsTotal.WithLabelValues(string(models.RideStatusPending), string(models.RideStatusAssigned)).Inc()
		s.emit(ctx, EventRideAssigned, ride, p)
	} else {
		s.emit(ctx, EventRideRequested, ride, p)
	}
	return s.reload(ctx, ride)
}

// Assign sets the ride's driver. Pending rides move to assigned; assigned
// rides are reassigned.
func (s *RideService) Assign(ctx context.Context, p Principal, rideID, driverID uint) (*models.Ride, error) {
	const op = "assign"
	if err := s.guard(op, requireRole(p, models.RoleAdmin, "assign drivers")); err != nil {
		return nil, err
	}
	if driverID == 0 {
		return nil, apperrors.InvalidInput("driverId is required")
	}

	ride, err := s.getRide(ctx, rideID)
	if err != nil {
		return nil, err
	}
	driver, err := s.assignableDriver(ctx, driverID)
	if err != nil {
		return nil, s.guard(op, err)
	}
	if !CanTransition(ride.Status, models.RideStatusAssigned) {
		return nil, s.guard(op, apperrors.InvalidState("Cannot assign a driver to a %s ride", ride.Status))
	}

	from := ride.Status
	var previous *uint
	if ride.DriverID != nil && *ride.DriverID != driver.ID {
		prev := *ride.DriverID
		previous = &prev
	}
	id := driver.ID
	ride.DriverID = &id
	ride.Driver = nil
	ride.Status = models.RideStatusAssigned

	ev := newRideEvent(EventRideAssigned, ride, p, s.now())
	ev.PreviousDriverID = previous
	return s.commitEvent(ctx, p, from, ride, ev)
}

// Accept is the assigned driver taking the ride.
func (s *RideService) Accept(ctx context.Context, p Principal, rideID uint) (*models.Ride, error) {
	const op = "accept"
	if err := s.guard(op, requireRole(p, models.RoleDriver, "accept rides")); err != nil {
		return nil, err
	}

	ride, err := s.getRide(ctx, rideID)
	if err != nil {
		return nil, err
	}
	if !ride.AssignedTo(p.ID) {
		return nil, s.guard(op, apperrors.Forbidden("Not authorized for this ride"))
	}
	if ride.Status != models.RideStatusAssigned {
		return nil, s.guard(op, apperrors.InvalidState("Ride is %s, only assigned rides can be accepted", ride.Status))
	}

	ride.Status = models.RideStatusAccepted
	return s.commit(ctx, p, EventRideAccepted, models.RideStatusAssigned, ride)
}

// UpdateStatus is the generic status write for the ride's driver or an
// admin. Only edges of the status graph are allowed, and assigned can
// only be entered through Assign.
func (s *RideService) UpdateStatus(ctx context.Context, p Principal, rideID uint, status models.RideStatus) (*models.Ride, error) {
	const op = "update_status"
	if !p.Is(models.RoleDriver) && !p.Is(models.RoleAdmin) {
		return nil, s.guard(op, apperrors.Forbidden("Only drivers and admins can update ride status"))
	}
	if !status.Valid() {
		return nil, apperrors.InvalidInput("Invalid ride status %q", status)
	}

	ride, err := s.getRide(ctx, rideID)
	if err != nil {
		return nil, err
	}
	if p.Role == models.RoleDriver && !ride.AssignedTo(p.ID) {
		return nil, s.guard(op, apperrors.Forbidden("Not authorized for this ride"))
	}
	if !canSetStatus(ride.Status, status) {
		return nil, s.guard(op, apperrors.InvalidState("Cannot move ride from %s to %s", ride.Status, status))
	}

	from := ride.Status
	ride.Status = status
	return s.commit(ctx, p, EventRideStatus, from, ride)
}

// CollectCash marks a completed ride's cash as received by its driver.
func (s *RideService) CollectCash(ctx context.Context, p Principal, rideID uint) (*models.Ride, error) {
	const op = "collect_cash"
	if err := s.guard(op, requireRole(p, models.RoleDriver, "collect payments")); err != nil {
		return nil, err
	}

	ride, err := s.getRide(ctx, rideID)
	if err != nil {
		return nil, err
	}
	if !ride.AssignedTo(p.ID) {
		return nil, s.guard(op, apperrors.Forbidden("Not authorized for this ride"))
	}
	if ride.Status != models.RideStatusCompleted {
		return nil, s.guard(op, apperrors.InvalidState("Ride must be completed before collecting payment"))
	}
	if ride.PaymentStatus != models.PaymentStatusPending {
		return nil, s.guard(op, apperrors.InvalidState("Payment is already %s", ride.PaymentStatus))
	}

	ride.PaymentStatus = models.PaymentStatusApproved
	ride.PaymentMethod = models.PaymentMethodCash
	if err := s.rides.SaveRide(ctx, ride); err != nil {
		return nil, s.internal(ctx, "Error updating payment", err)
	}

	observability.PaymentsTotal.WithLabelValues(string(ride.PaymentStatus), string(p.Role)).Inc()
	s.log.InfoContext(ctx, "cash collected", "rideId", ride.ID, "driverId", p.ID, "fare", ride.Fare)
	s.emit(ctx, EventPaymentCollected, ride, p)
	return s.reload(ctx, ride)
}

// SetPaymentStatus lets an admin approve or reject a payment whatever the
// ride status.
func (s *RideService) SetPaymentStatus(ctx context.Context, p Principal, rideID uint, status models.PaymentStatus) (*models.Ride, error) {
	if err := s.guard("set_payment", requireRole(p, models.RoleAdmin, "set payment status")); err != nil {
		return nil, err
	}
	if status != models.PaymentStatusApproved && status != models.PaymentStatusRejected {
		return nil, apperrors.InvalidInput("paymentStatus must be approved or rejected")
	}

	ride, err := s.getRide(ctx, rideID)
	if err != nil {
		return nil, err
	}

	ride.PaymentStatus = status
	if err := s.rides.SaveRide(ctx, ride); err != nil {
		return nil, s.internal(ctx, "Error updating payment", err)
	}

	observability.PaymentsTotal.WithLabelValues(string(status), string(p.Role)).Inc()
	s.log.InfoContext(ctx, "payment status set", "rideId", ride.ID, "paymentStatus", status)
	s.emit(ctx, EventPaymentUpdated, ride, p)
	return s.reload(ctx, ride)
}

// Rate records post-trip feedback. Riders rate the driver, drivers rate
// the rider; each side rates a completed ride once.
func (s *RideService) Rate(ctx context.Context, p Principal, rideID uint, score int) (*models.Ride, error) {
	const op = "rate"
	if !p.Is(models.RoleRider) && !p.Is(models.RoleDriver) {
		return nil, s.guard(op, apperrors.Forbidden("Only riders and drivers can rate rides"))
	}
	if score < 1 || score > 5 {
		return nil, apperrors.InvalidInput("rating must be between 1 and 5")
	}

	ride, err := s.getRide(ctx, rideID)
	if err != nil {
		return nil, err
	}

	slot := &ride.Rating
	owner := ride.RiderID == p.ID
	if p.Role == models.RoleDriver {
		slot = &ride.DriverRating
		owner = ride.AssignedTo(p.ID)
	}
	if !owner {
		return nil, s.guard(op, apperrors.Forbidden("Not authorized for this ride"))
	}
	if ride.Status != models.RideStatusCompleted {
		return nil, s.guard(op, apperrors.InvalidState("Only completed rides can be rated"))
	}
	if *slot != nil {
		return nil, s.guard(op, apperrors.InvalidState("Ride already rated"))
	}

	*slot = &score
	if err := s.rides.SaveRide(ctx, ride); err != nil {
		return nil, s.internal(ctx, "Error saving rating", err)
	}

	s.emit(ctx, EventRideRated, ride, p)
	return s.reload(ctx, ride)
}

// MyRides lists the caller's rides, newest first.
func (s *RideService) MyRides(ctx context.Context, p Principal) ([]models.Ride, error) {
	var filter models.RideFilter
	switch {
	case p.Is(models.RoleRider):
		filter.RiderID = &p.ID
	case p.Is(models.RoleDriver):
		filter.DriverID = &p.ID
	default:
		return nil, apperrors.Forbidden("Only riders and drivers have rides")
	}
	return s.list(ctx, filter)
}

// PendingForDriver lists rides assigned to the driver that are waiting
// for acceptance.
func (s *RideService) PendingForDriver(ctx context.Context, p Principal) ([]models.Ride, error) {
	if err := requireRole(p, models.RoleDriver, "view assigned rides"); err != nil {
		return nil, err
	}
	return s.list(ctx, models.RideFilter{
		DriverID: &p.ID,
		Statuses: []models.RideStatus{models.RideStatusAssigned},
	})
}

func (s *RideService) AllRides(ctx context.Context, p Principal) ([]models.Ride, error) {
	if err := requireRole(p, models.RoleAdmin, "list all rides"); err != nil {
		return nil, err
	}
	return s.list(ctx, models.RideFilter{})
}

func (s *RideService) Get(ctx context.Context, p Principal, rideID uint) (*models.Ride, error) {
	ride, err := s.getRide(ctx, rideID)
	if err != nil {
		return nil, err
	}
	switch {
	case p.Is(models.RoleAdmin),
		p.Is(models.RoleRider) && ride.RiderID == p.ID,
		p.Is(models.RoleDriver) && ride.AssignedTo(p.ID):
		return ride, nil
	}
	return nil, apperrors.Forbidden("Not authorized for this ride")
}

// RiderStats sums the rider's approved payments.
func (s *RideService) RiderStats(ctx context.Context, p Principal) (*RiderStats, error) {
	if err := requireRole(p, models.RoleRider, "view rider stats"); err != nil {
		return nil, err
	}
	rides, err := s.list(ctx, models.RideFilter{RiderID: &p.ID})
	if err != nil {
		return nil, err
	}

	stats := &RiderStats{}
	for i := range rides {
		switch rides[i].PaymentStatus {
		case models.PaymentStatusApproved:
			stats.TotalSpent += rides[i].Fare
			stats.TotalRides++
		case models.PaymentStatusPending:
			stats.PendingPayments++
		}
	}
	return stats, nil
}

// DriverStats sums the driver's approved payments overall, since local
// midnight and since the first of the month.
func (s *RideService) DriverStats(ctx context.Context, p Principal) (*DriverStats, error) {
	if err := requireRole(p, models.RoleDriver, "view driver stats"); err != nil {
		return nil, err
	}
	rides, err := s.list(ctx, models.RideFilter{DriverID: &p.ID})
	if err != nil {
		return nil, err
	}

	now := s.now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())

	stats := &DriverStats{}
	for i := range rides {
		r := &rides[i]
		if r.PaymentStatus == models.PaymentStatusPending && r.Status == models.RideStatusCompleted {
			stats.PendingPayments++
		}
		if r.PaymentStatus != models.PaymentStatusApproved {
			continue
		}
		stats.TotalEarned += r.Fare
		stats.TotalRides++
		if !r.CreatedAt.Before(today) {
			stats.TodayEarnings += r.Fare
			stats.TodayRides++
		}
		if !r.CreatedAt.Before(monthStart) {
			stats.MonthEarnings += r.Fare
			stats.MonthRides++
		}
	}
	return stats, nil
}

func (s *RideService) commit(ctx context.Context, p Principal, event string, from models.RideStatus, ride *models.Ride) (*models.Ride, error) {
	return s.commitEvent(ctx, p, from, ride, newRideEvent(event, ride, p, s.now()))
}

func (s *RideService) commitEvent(ctx context.Context, p Principal, from models.RideStatus, ride *models.Ride, ev RideEvent) (*models.Ride, error) {
	if err := s.rides.SaveRide(ctx, ride); err != nil {
		return nil, s.internal(ctx, "Error updating ride", err)
	}

	observability.RideTransitionsTotal.WithLabelValues(string(from), string(ride.Status)).Inc()
	s.log.InfoContext(ctx, "ride transition",
		"rideId", ride.ID, "from", from, "to", ride.Status, "actor", p.Role, "actorId", p.ID)
	if s.notifier != nil {
		s.notifier.RideChanged(ctx, ev)
	}
	return s.reload(ctx, ride)
}

func (s *RideService) emit(ctx context.Context, event string, ride *models.Ride, p Principal) {
	if s.notifier == nil {
		return
	}
	s.notifier.RideChanged(ctx, newRideEvent(event, ride, p, s.now()))
}

// reload returns the saved ride with rider and driver attached.
func (s *RideService) reload(ctx context.Context, ride *models.Ride) (*models.Ride, error) {
	fresh, err := s.rides.GetRide(ctx, ride.ID)
	if err != nil {
		s.log.WarnContext(ctx, "ride reload failed", "rideId", ride.ID, "error", err)
		return ride, nil
	}
	return fresh, nil
}

func (s *RideService) getRide(ctx context.Context, id uint) (*models.Ride, error) {
	ride, err := s.rides.GetRide(ctx, id)
	if err != nil {
		return nil, s.lookupErr(ctx, "Ride not found", err)
	}
	return ride, nil
}

func (s *RideService) assignableDriver(ctx context.Context, id uint) (*models.Driver, error) {
	driver, err := s.drivers.GetDriver(ctx, id)
	if err != nil {
		return nil, s.lookupErr(ctx, "Driver not found", err)
	}
	if driver.Status == models.DriverStatusSuspended {
		return nil, apperrors.InvalidState("Driver is suspended")
	}
	return driver, nil
}

func (s *RideService) list(ctx context.Context, filter models.RideFilter) ([]models.Ride, error) {
	rides, err := s.rides.ListRides(ctx, filter)
	if err != nil {
		return nil, s.internal(ctx, "Error fetching rides", err)
	}
	return rides, nil
}

func (s *RideService) lookupErr(ctx context.Context, notFound string, err error) error {
	if apperrors.Is(err, apperrors.KindNotFound) {
		return apperrors.NotFound("%s", notFound)
	}
	return s.internal(ctx, "Server error", err)
}

func (s *RideService) internal(ctx context.Context, msg string, err error) error {
	s.log.ErrorContext(ctx, msg, "error", err)
	return apperrors.Internal(msg, err)
}

// guard counts refusals by role, ownership and state checks.
func (s *RideService) guard(op string, err error) error {
	if err == nil {
		return nil
	}
	kind := apperrors.KindOf(err)
	if kind == apperrors.KindForbidden || kind == apperrors.KindInvalidState {
		observability.RideGuardRejectionsTotal.WithLabelValues(op, string(kind)).Inc()
	}
	return err
}

func validateLocations(pickup, drop models.Location) error {
	if strings.TrimSpace(pickup.Address) == "" || strings.TrimSpace(drop.Address) == "" {
		return apperrors.InvalidInput("Pickup and drop addresses are required")
	}
	if !pointOf(pickup).Valid() || !pointOf(drop).Valid() {
		return apperrors.InvalidInput("Pickup and drop coordinates must be valid lat/lng values")
	}
	return nil
}

func pointOf(l models.Location) utils.Point {
	return utils.Point{Lat: l.Lat, Lng: l.Lng}
}
