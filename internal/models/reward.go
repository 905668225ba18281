package models

import "time"

const (
	RewardUnclaimed = "UNCLAIMED"
	RewardClaimed   = "CLAIMED"
)

type Reward struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	UserID      uint      `gorm:"index;not null" json:"associated_user"`
	Description string    `json:"description"`
	State       string    `gorm:"not null;default:UNCLAIMED" json:"state"`
	CreatedAt   time.Time `json:"created_at"`
}
