package models

import "gorm.io/gorm"

// NamedLocation is an entry of the admin-curated place list used for
// booking autocomplete.
type NamedLocation struct {
	Name string  `json:"name"`
	Lat  float64 `json:"lat"`
	Lng  float64 `json:"lng"`
}

// DeviceToken is an FCM registration token for a principal
type DeviceToken struct {
	gorm.Model
	PrincipalID uint   `gorm:"column:principal_id;not null;index:idx_device_owner" json:"principalId"`
	Role        Role   `gorm:"column:role;type:varchar(16);not null;index:idx_device_owner" json:"role"`
	Token       string `gorm:"column:token;uniqueIndex;not null" json:"token"`
}

// TableName specifies the table name
func (DeviceToken) TableName() string {
	return "device_tokens"
}
