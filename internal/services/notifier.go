package services

import (
	"context"
	"time"

	"github.com/chachabrian/ridehail-backend/internal/models"
)

// Ride event types
const (
	EventRideRequested    = "ride_requested"
	EventRideAssigned     = "ride_assigned"
	EventRideAccepted     = "ride_accepted"
	EventRideStatus       = "ride_status_changed"
	EventPaymentCollected = "payment_collected"
	EventPaymentUpdated   = "payment_updated"
	EventRideRated        = "ride_rated"
)

// RideEvent is emitted after a ride change has been committed.
type RideEvent struct {
	Type             string               `json:"type"`
	RideID           uint                 `json:"rideId"`
	RiderID          uint                 `json:"riderId"`
	DriverID         *uint                `json:"driverId,omitempty"`
	PreviousDriverID *uint                `json:"previousDriverId,omitempty"` // driver replaced by a reassignment
	Status           models.RideStatus    `json:"status"`
	PaymentStatus    models.PaymentStatus `json:"paymentStatus"`
	Fare             float64              `json:"fare"`
	ActorRole        models.Role          `json:"actorRole"`
	At               time.Time            `json:"at"`
}

func newRideEvent(eventType string, ride *models.Ride, actor Principal, at time.Time) RideEvent {
	ev := RideEvent{
		Type:          eventType,
		RideID:        ride.ID,
		RiderID:       ride.RiderID,
		Status:        ride.Status,
		PaymentStatus: ride.PaymentStatus,
		Fare:          ride.Fare,
		ActorRole:     actor.Role,
		At:            at,
	}
	if ride.DriverID != nil {
		id := *ride.DriverID
		ev.DriverID = &id
	}
	return ev
}

// RideNotifier delivers ride events. Implementations log their own
// failures; a failed delivery never fails the operation that caused it.
type RideNotifier interface {
	RideChanged(ctx context.Context, ev RideEvent)
}

// Notifiers fans an event out to every channel in order.
type Notifiers []RideNotifier

func (n Notifiers) RideChanged(ctx context.Context, ev RideEvent) {
	for _, notifier := range n {
		if notifier != nil {
			notifier.RideChanged(ctx, ev)
		}
	}
}
