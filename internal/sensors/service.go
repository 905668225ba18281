// Package sensors binds sensors to users and records their readings.
package sensors

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"oxigo-server/internal/apperr"
	"oxigo-server/internal/database"
	"oxigo-server/internal/logging"
	"oxigo-server/internal/models"
	"oxigo-server/internal/users"
)

// EraseAll is reported as the deleted target when every sensor of a user
// was removed.
const EraseAll = "todos"

type Service struct {
	db  *gorm.DB
	log logging.Logger
	now func() time.Time
}

func NewService(db *gorm.DB, log logging.Logger) *Service {
	return &Service{db: db, log: log, now: time.Now}
}

// Bind registers sensor uuid under userID.
func (s *Service) Bind(ctx context.Context, userID uint, uuid string) (*models.Sensor, error) {
	sensor := &models.Sensor{UUID: uuid, UserID: userID, LastActive: s.now()}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := users.NewRepo(tx).Require(ctx, userID); err != nil {
			return err
		}
		err := tx.Create(sensor).Error
		if database.IsDuplicate(err) {
			return apperr.Conflict("El sensor '%s' ya está vinculado", uuid)
		}
		if err != nil {
			return apperr.Internal("error en la base de datos", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.log.Info(ctx, "sensor bound", "uuid", uuid, "user_id", userID)
	return sensor, nil
}

type Unbound struct {
	Message string
	Target  string
}

// Unbind deletes one sensor of userID, or all of them when eraseAll is set.
func (s *Service) Unbind(ctx context.Context, userID uint, eraseAll bool, uuid string) (*Unbound, error) {
	var out Unbound
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := users.NewRepo(tx).Require(ctx, userID); err != nil {
			return err
		}
		var owned int64
		if err := tx.Model(&models.Sensor{}).Where("user_id = ?", userID).Count(&owned).Error; err != nil {
			return apperr.Internal("error en la base de datos", err)
		}
		if owned == 0 {
			return apperr.NotFound("El usuario no tiene sensores asociados")
		}

		if eraseAll {
			if err := tx.Where("user_id = ?", userID).Delete(&models.Sensor{}).Error; err != nil {
				return apperr.Internal("error en la base de datos", err)
			}
			out = Unbound{
				Message: fmt.Sprintf("Todos los sensores del usuario %d han sido eliminados", userID),
				Target:  EraseAll,
			}
			return nil
		}

		if uuid == "" {
			return apperr.BadRequest("Debe proporcionar un UUID para borrar un sensor específico")
		}
		res := tx.Where("uuid = ? AND user_id = ?", uuid, userID).Delete(&models.Sensor{})
		if res.Error != nil {
			return apperr.Internal("error en la base de datos", res.Error)
		}
		if res.RowsAffected == 0 {
			return apperr.NotFound("El sensor '%s' no está asociado al usuario %d", uuid, userID)
		}
		out = Unbound{
			Message: fmt.Sprintf("El sensor '%s' ha sido eliminado del usuario %d", uuid, userID),
			Target:  uuid,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.log.Info(ctx, "sensors unbound", "user_id", userID, "target", out.Target)
	return &out, nil
}

func (s *Service) ListByUser(ctx context.Context, userID uint) ([]models.Sensor, error) {
	out := []models.Sensor{}
	if err := s.db.WithContext(ctx).Where("user_id = ?", userID).Order("uuid").Find(&out).Error; err != nil {
		return nil, apperr.Internal("error en la base de datos", err)
	}
	return out, nil
}

// ListAll is the admin view, most recently active first.
func (s *Service) ListAll(ctx context.Context) ([]models.Sensor, error) {
	out := []models.Sensor{}
	if err := s.db.WithContext(ctx).Order("last_active DESC").Find(&out).Error; err != nil {
		return nil, apperr.Internal("error en la base de datos", err)
	}
	return out, nil
}

type ReadingInput struct {
	UUID        string  `json:"associated_uuid"`
	GasType     string  `json:"gasType"`
	Gas         float64 `json:"gas"`
	Temperature float64 `json:"temperature"`
	Position    *string `json:"position,omitempty"`
}

// AddReading appends a reading and bumps the sensor's last_active in the
// same transaction.
func (s *Service) AddReading(ctx context.Context, in ReadingInput) (*models.Reading, error) {
	now := s.now()
	r := &models.Reading{
		SensorUUID:  in.UUID,
		TakenAt:     now,
		GasType:     in.GasType,
		GasValue:    in.Gas,
		Temperature: in.Temperature,
		Position:    in.Position,
	}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var sensor models.Sensor
		err := tx.Where("uuid = ?", in.UUID).First(&sensor).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.NotFound("Sensor no encontrado")
		}
		if err != nil {
			return apperr.Internal("error en la base de datos", err)
		}
		if err := tx.Create(r).Error; err != nil {
			return apperr.Internal("error en la base de datos", err)
		}
		if err := tx.Model(&models.Sensor{}).Where("uuid = ?", in.UUID).Update("last_active", now).Error; err != nil {
			return apperr.Internal("error en la base de datos", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.log.Debug(ctx, "reading stored", "uuid", in.UUID, "gas_type", in.GasType)
	return r, nil
}

func dayBounds(day time.Time) (time.Time, time.Time) {
	start := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
	return start, start.AddDate(0, 0, 1)
}

// ReadingsForDay returns every reading taken on day, optionally for one gas
// type, in chronological order.
func (s *Service) ReadingsForDay(ctx context.Context, day time.Time, gasType string) ([]models.Reading, error) {
	from, to := dayBounds(day)
	q := s.db.WithContext(ctx).Where("taken_at >= ? AND taken_at < ?", from, to)
	if gasType != "" {
		q = q.Where("gas_type = ?", gasType)
	}
	out := []models.Reading{}
	if err := q.Order("taken_at").Find(&out).Error; err != nil {
		return nil, apperr.Internal("error en la base de datos", err)
	}
	return out, nil
}

// ReadingsForUser returns the readings of userID's sensors taken on day.
func (s *Service) ReadingsForUser(ctx context.Context, userID uint, day time.Time) ([]models.Reading, error) {
	if err := users.NewRepo(s.db).Require(ctx, userID); err != nil {
		return nil, err
	}
	from, to := dayBounds(day)
	owned := s.db.Model(&models.Sensor{}).Select("uuid").Where("user_id = ?", userID)

	out := []models.Reading{}
	err := s.db.WithContext(ctx).
		Where("sensor_uuid IN (?)", owned).
		Where("taken_at >= ? AND taken_at < ?", from, to).
		Order("taken_at").
		Find(&out).Error
	if err != nil {
		return nil, apperr.Internal("error en la base de datos", err)
	}
	return out, nil
}

func (s *Service) TodayForUser(ctx context.Context, userID uint) ([]models.Reading, error) {
	return s.ReadingsForUser(ctx, userID, s.now())
}
