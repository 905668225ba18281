package models

import (
	"time"

	"gorm.io/datatypes"
)

type Track struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"index;not null" json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
}

type TrackPoint struct {
	ID         uint           `gorm:"primaryKey" json:"-"`
	TrackID    uint           `gorm:"index:idx_track_time,priority:1;not null" json:"recorrido_id"`
	Location   datatypes.JSON `json:"location"` // GeoJSON Point
	RecordedAt time.Time      `gorm:"index:idx_track_time,priority:2;not null" json:"time"`
}
