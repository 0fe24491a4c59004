package models

import (
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type DriverStatus string

const (
	DriverStatusPending   DriverStatus = "pending"
	DriverStatusApproved  DriverStatus = "approved"
	DriverStatusSuspended DriverStatus = "suspended"
)

// Vehicle describes the car a driver operates
type Vehicle struct {
	Model       string `gorm:"column:model" json:"model"`
	PlateNumber string `gorm:"column:plate_number" json:"plateNumber"`
	Type        string `gorm:"column:type" json:"type"` // Sedan, SUV, ...
}

// Driver accounts are created by an admin; there is no public registration.
type Driver struct {
	gorm.Model
	Name         string       `gorm:"column:name;not null" json:"name"`
	Email        string       `gorm:"column:email;uniqueIndex;not null" json:"email"`
	PasswordHash string       `gorm:"column:password_hash;not null" json:"-"`
	Phone        string       `gorm:"column:phone;not null" json:"phone"`
	Vehicle      Vehicle      `gorm:"embedded;embeddedPrefix:vehicle_" json:"vehicle"`
	Status       DriverStatus `gorm:"column:status;type:varchar(16);not null;default:'pending'" json:"status"`
	IsAvailable  bool         `gorm:"column:is_available;not null;default:false" json:"isAvailable"`
	Rating       float64      `gorm:"column:rating;not null;default:5" json:"rating"`
	CurrentLat   *float64     `gorm:"column:current_lat" json:"currentLat,omitempty"`
	CurrentLng   *float64     `gorm:"column:current_lng" json:"currentLng,omitempty"`
}

// TableName specifies the table name
func (Driver) TableName() string {
	return "drivers"
}

// Role is fixed for every driver record.
func (Driver) Role() Role {
	return RoleDriver
}

func (d *Driver) SetPassword(password string) error {
	hash, err := hashPassword(password)
	if err != nil {
		return err
	}
	d.PasswordHash = hash
	return nil
}

func (d *Driver) CheckPassword(password string) error {
	return bcrypt.CompareHashAndPassword([]byte(d.PasswordHash), []byte(password))
}
