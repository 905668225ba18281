// Package incidents tracks support incidents and notifies the reporter of
// creation and of every update that actually changed something.
package incidents

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"oxigo-server/internal/apperr"
	"oxigo-server/internal/logging"
	"oxigo-server/internal/models"
	"oxigo-server/internal/notify"
)

const (
	msgCreated  = "Incident created successfully"
	msgUpdated  = "Incident updated successfully"
	msgNotFound = "Incident not found"
)

// Directory resolves a reporter's e-mail address.
type Directory interface {
	EmailOf(ctx context.Context, userID uint) (email string, ok bool, err error)
}

type CreateInput struct {
	UserID      uint
	Subject     string
	Description string
	UserHandled *uint
	State       string
}

type Created struct {
	ID      uint   `json:"id"`
	Message string `json:"message"`
}

type Updated struct {
	Updated int             `json:"updated"`
	Message string          `json:"message"`
	Changes []notify.Change `json:"-"`
}

// Filter narrows List. Nil fields are ignored; the date bounds are inclusive.
type Filter struct {
	ID            *uint
	UserID        *uint
	UserHandled   *uint
	State         *string
	SubmittedFrom *time.Time
	SubmittedTo   *time.Time
}

type Service struct {
	db       *gorm.DB
	dir      Directory
	notifier notify.Notifier
	log      logging.Logger
	now      func() time.Time
}

func NewService(db *gorm.DB, dir Directory, notifier notify.Notifier, log logging.Logger) *Service {
	return &Service{db: db, dir: dir, notifier: notifier, log: log, now: time.Now}
}

func (s *Service) Create(ctx context.Context, in CreateInput) (*Created, error) {
	if in.State == "" {
		in.State = models.IncidentOpen
	}
	now := s.now()
	inc := &models.Incident{
		UserID:      in.UserID,
		Subject:     in.Subject,
		Description: in.Description,
		UserHandled: in.UserHandled,
		State:       in.State,
		SubmittedAt: now,
		ChangedAt:   now,
	}
	if err := s.db.WithContext(ctx).Create(inc).Error; err != nil {
		return nil, apperr.Internal("error creando la incidencia", err)
	}

	s.log.Info(ctx, "incident created", "incident_id", inc.ID, "user_id", inc.UserID)
	if to, ok := s.reporterEmail(ctx, inc.UserID); ok {
		s.notifier.Enqueue(notify.IncidentCreated(to, inc.ID, inc.Subject))
	}
	return &Created{ID: inc.ID, Message: msgCreated}, nil
}

// Update applies p to incident id and bumps its change date even when no
// field actually changes. A missing incident is reported through Updated,
// not as an error.
func (s *Service) Update(ctx context.Context, id uint, p Patch) (*Updated, error) {
	var (
		cur     models.Incident
		changes []notify.Change
		found   = true
	)
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&cur, id).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			found = false
			return nil
		}
		if err != nil {
			return apperr.Internal("error leyendo la incidencia", err)
		}

		changes = Diff(cur, p)
		cols := p.columns()
		cols["changed_at"] = s.now()
		if err := tx.Model(&models.Incident{}).Where("id = ?", id).Updates(cols).Error; err != nil {
			return apperr.Internal("error actualizando la incidencia", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if !found {
		return &Updated{Updated: 0, Message: msgNotFound}, nil
	}

	s.log.Info(ctx, "incident updated", "incident_id", id, "changes", len(changes))
	if len(changes) > 0 {
		if to, ok := s.reporterEmail(ctx, cur.UserID); ok {
			s.notifier.Enqueue(notify.IncidentUpdated(to, id, changes))
		}
	}
	return &Updated{Updated: 1, Message: msgUpdated, Changes: changes}, nil
}

func (s *Service) List(ctx context.Context, f Filter) ([]models.Incident, error) {
	q := s.db.WithContext(ctx).Model(&models.Incident{})
	if f.ID != nil {
		q = q.Where("id = ?", *f.ID)
	}
	if f.UserID != nil {
		q = q.Where("user_id = ?", *f.UserID)
	}
	if f.UserHandled != nil {
		q = q.Where("user_handled = ?", *f.UserHandled)
	}
	if f.State != nil {
		q = q.Where("state = ?", *f.State)
	}
	if f.SubmittedFrom != nil {
		q = q.Where("submitted_at >= ?", *f.SubmittedFrom)
	}
	if f.SubmittedTo != nil {
		q = q.Where("submitted_at <= ?", *f.SubmittedTo)
	}

	out := []models.Incident{}
	if err := q.Order("id").Find(&out).Error; err != nil {
		return nil, apperr.Internal("error listando incidencias", err)
	}
	return out, nil
}

// reporterEmail never fails the caller; a lookup error only skips the
// notification.
func (s *Service) reporterEmail(ctx context.Context, userID uint) (string, bool) {
	to, ok, err := s.dir.EmailOf(ctx, userID)
	if err != nil {
		s.log.Warn(ctx, "reporter lookup failed", "user_id", userID, "error", err)
		return "", false
	}
	return to, ok
}
