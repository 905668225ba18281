package models

import "time"

type Sensor struct {
	UUID       string    `gorm:"primaryKey" json:"uuid"`
	UserID     uint      `gorm:"index;not null" json:"associated_user"`
	LastActive time.Time `json:"last_active"`
}

// Reading is append-only.
type Reading struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	SensorUUID  string    `gorm:"index;not null" json:"associated_uuid"`
	TakenAt     time.Time `gorm:"index;not null" json:"date"`
	GasType     string    `gorm:"index" json:"gas_type"`
	GasValue    float64   `json:"gas_value"`
	Temperature float64   `json:"temperature_value"`
	Position    *string   `json:"position,omitempty"`
}
