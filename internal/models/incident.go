package models

import "time"

// Well-known incident states. The column is a free label; handlers may set
// values outside this list.
const (
	IncidentOpen       = "OPEN"
	IncidentInProgress = "IN_PROGRESS"
	IncidentClosed     = "CLOSED"
)

type Incident struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	UserID      uint      `gorm:"index;not null" json:"user_id"`
	Subject     string    `gorm:"not null" json:"subject"`
	Description string    `json:"description"`
	UserHandled *uint     `gorm:"index" json:"user_handled"`
	State       string    `gorm:"index;not null" json:"state"`
	SubmittedAt time.Time `gorm:"index" json:"submit_date"`
	ChangedAt   time.Time `json:"change_date"`
}
