// Package tracks stores user travel tracks and their geolocated points.
package tracks

import (
	"context"
	"encoding/json"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"oxigo-server/internal/apperr"
	"oxigo-server/internal/logging"
	"oxigo-server/internal/models"
	"oxigo-server/internal/users"
)

// Point is a GeoJSON Point: coordinates are [longitude, latitude].
type Point struct {
	Type        string     `json:"type"`
	Coordinates [2]float64 `json:"coordinates"`
}

func NewPoint(lon, lat float64) Point {
	return Point{Type: "Point", Coordinates: [2]float64{lon, lat}}
}

type Created struct {
	ID      uint   `json:"id"`
	Message string `json:"message"`
}

type Deleted struct {
	Deleted int    `json:"deleted"`
	Message string `json:"message"`
}

type PointAdded struct {
	TrackID  uint      `json:"recorrido_id"`
	Location Point     `json:"location"`
	Time     time.Time `json:"time"`
	Message  string    `json:"message"`
}

type Service struct {
	db  *gorm.DB
	log logging.Logger
	now func() time.Time
}

func NewService(db *gorm.DB, log logging.Logger) *Service {
	return &Service{db: db, log: log, now: time.Now}
}

func trackExists(ctx context.Context, db *gorm.DB, id uint) error {
	var n int64
	if err := db.WithContext(ctx).Model(&models.Track{}).Where("id = ?", id).Count(&n).Error; err != nil {
		return apperr.Internal("error en la base de datos", err)
	}
	if n == 0 {
		return apperr.NotFound("Track not found")
	}
	return nil
}

func (s *Service) Create(ctx context.Context, userID uint) (*Created, error) {
	t := &models.Track{UserID: userID, CreatedAt: s.now()}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		ok, err := users.NewRepo(tx).Exists(ctx, userID)
		if err != nil {
			return err
		}
		if !ok {
			return apperr.NotFound("User not found")
		}
		if err := tx.Create(t).Error; err != nil {
			return apperr.Internal("error creando el recorrido", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.log.Info(ctx, "track created", "track_id", t.ID, "user_id", userID)
	return &Created{ID: t.ID, Message: "Track created successfully"}, nil
}

// Delete removes a track with its points. A missing track is not an error.
func (s *Service) Delete(ctx context.Context, id uint) (*Deleted, error) {
	var deleted int64
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("track_id = ?", id).Delete(&models.TrackPoint{}).Error; err != nil {
			return apperr.Internal("error eliminando el recorrido", err)
		}
		res := tx.Delete(&models.Track{}, id)
		if res.Error != nil {
			return apperr.Internal("error eliminando el recorrido", res.Error)
		}
		deleted = res.RowsAffected
		return nil
	})
	if err != nil {
		return nil, err
	}
	if deleted == 0 {
		return &Deleted{Deleted: 0, Message: "Track not found"}, nil
	}
	return &Deleted{Deleted: 1, Message: "Track deleted successfully"}, nil
}

func (s *Service) AddPoint(ctx context.Context, trackID uint, p Point) (*PointAdded, error) {
	if p.Type != "Point" {
		return nil, apperr.BadRequest("La ubicación debe ser un GeoJSON Point")
	}
	raw, err := json.Marshal(p)
	if err != nil {
		return nil, apperr.Internal("error codificando la ubicación", err)
	}

	pt := &models.TrackPoint{TrackID: trackID, Location: datatypes.JSON(raw), RecordedAt: s.now()}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := trackExists(ctx, tx, trackID); err != nil {
			return err
		}
		if err := tx.Create(pt).Error; err != nil {
			return apperr.Internal("error guardando el punto", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &PointAdded{
		TrackID:  trackID,
		Location: p,
		Time:     pt.RecordedAt,
		Message:  "Punto de recorrido created successfully",
	}, nil
}

func (s *Service) ListByUser(ctx context.Context, userID uint) ([]models.Track, error) {
	out := []models.Track{}
	if err := s.db.WithContext(ctx).Where("user_id = ?", userID).Order("id").Find(&out).Error; err != nil {
		return nil, apperr.Internal("error en la base de datos", err)
	}
	return out, nil
}

// Points lists the points of a track oldest first.
func (s *Service) Points(ctx context.Context, trackID uint) ([]models.TrackPoint, error) {
	if err := trackExists(ctx, s.db, trackID); err != nil {
		return nil, err
	}
	out := []models.TrackPoint{}
	err := s.db.WithContext(ctx).
		Where("track_id = ?", trackID).
		Order("recorded_at ASC").
		Find(&out).Error
	if err != nil {
		return nil, apperr.Internal("error en la base de datos", err)
	}
	return out, nil
}
