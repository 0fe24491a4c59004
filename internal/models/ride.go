package models

import (
	"time"

	"gorm.io/gorm"
)

type RideStatus string

const (
	RideStatusPending   RideStatus = "pending"
	RideStatusAssigned  RideStatus = "assigned"
	RideStatusAccepted  RideStatus = "accepted"
	RideStatusOngoing   RideStatus = "ongoing"
	RideStatusCompleted RideStatus = "completed"
	RideStatusCancelled RideStatus = "cancelled"
)

func (s RideStatus) Valid() bool {
	switch s {
	case RideStatusPending, RideStatusAssigned, RideStatusAccepted,
		RideStatusOngoing, RideStatusCompleted, RideStatusCancelled:
		return true
	}
	return false
}

// Terminal states are never left.
func (s RideStatus) Terminal() bool {
	return s == RideStatusCompleted || s == RideStatusCancelled
}

type PaymentStatus string

const (
	PaymentStatusPending  PaymentStatus = "pending"
	PaymentStatusApproved PaymentStatus = "approved"
	PaymentStatusRejected PaymentStatus = "rejected"
)

type PaymentMethod string

const PaymentMethodCash PaymentMethod = "cash"

// Location is a pickup or drop point
type Location struct {
	Address string  `gorm:"column:address;not null" json:"address"`
	Lat     float64 `gorm:"column:lat;not null" json:"lat"`
	Lng     float64 `gorm:"column:lng;not null" json:"lng"`
}

type Ride struct {
	gorm.Model
	RiderID        uint          `gorm:"column:rider_id;not null;index" json:"riderId"`
	Rider          *User         `gorm:"foreignKey:RiderID" json:"rider,omitempty"`
	DriverID       *uint         `gorm:"column:driver_id;index" json:"driverId,omitempty"`
	Driver         *Driver       `gorm:"foreignKey:DriverID" json:"driver,omitempty"`
	PickupLocation Location      `gorm:"embedded;embeddedPrefix:pickup_" json:"pickupLocation"`
	DropLocation   Location      `gorm:"embedded;embeddedPrefix:drop_" json:"dropLocation"`
	Fare           float64       `gorm:"column:fare;not null" json:"fare"`
	Status         RideStatus    `gorm:"column:status;type:varchar(16);not null;default:'pending';index" json:"status"`
	PaymentStatus  PaymentStatus `gorm:"column:payment_status;type:varchar(16);not null;default:'pending'" json:"paymentStatus"`
	PaymentMethod  PaymentMethod `gorm:"column:payment_method;type:varchar(16)" json:"paymentMethod,omitempty"`

	// Rating is the rider's score for the driver, DriverRating the reverse.
	Rating       *int `gorm:"column:rating" json:"rating,omitempty"`
	DriverRating *int `gorm:"column:driver_rating" json:"driverRating,omitempty"`
}

// TableName specifies the table name
func (Ride) TableName() string {
	return "rides"
}

// AssignedTo reports whether driverID is the ride's driver.
func (r *Ride) AssignedTo(driverID uint) bool {
	return r.DriverID != nil && *r.DriverID == driverID
}

// RideFilter selects rides; nil/empty fields do not filter.
type RideFilter struct {
	RiderID       *uint
	DriverID      *uint
	Statuses      []RideStatus
	PaymentStatus PaymentStatus
	CreatedSince  time.Time
}

// Matches applies the filter to a single ride.
func (f RideFilter) Matches(r *Ride) bool {
	if f.RiderID != nil && r.RiderID != *f.RiderID {
		return false
	}
	if f.DriverID != nil && !r.AssignedTo(*f.DriverID) {
		return false
	}
	if len(f.Statuses) > 0 {
		found := false
		for _, s := range f.Statuses {
			if r.Status == s {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if f.PaymentStatus != "" && r.PaymentStatus != f.PaymentStatus {
		return false
	}
	if !f.CreatedSince.IsZero() && r.CreatedAt.Before(f.CreatedSince) {
		return false
	}
	return true
}
