// Package registration implements signup with e-mail verification: a
// pending record with a one-time code that is later promoted to a user.
package registration

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"oxigo-server/internal/apperr"
	"oxigo-server/internal/models"
)

// Ledger stores pending registrations keyed by email.
type Ledger struct {
	db *gorm.DB
}

func NewLedger(db *gorm.DB) *Ledger {
	return &Ledger{db: db}
}

// Upsert writes p, replacing any pending row for the same email.
func (l *Ledger) Upsert(ctx context.Context, p *models.PendingRegistration) error {
	err := l.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "email"}},
		UpdateAll: true,
	}).Create(p).Error
	if err != nil {
		return apperr.Internal("error guardando el registro pendiente", err)
	}
	return nil
}

// Get loads the pending row for email. With lock set the row is read FOR
// UPDATE on engines that support it.
func (l *Ledger) Get(ctx context.Context, email string, lock bool) (*models.PendingRegistration, error) {
	q := l.db.WithContext(ctx)
	if lock {
		q = q.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	var p models.PendingRegistration
	err := q.Where("email = ?", email).First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("No hay un registro pendiente para este correo")
	}
	if err != nil {
		return nil, apperr.Internal("error en la base de datos", err)
	}
	return &p, nil
}

func (l *Ledger) Delete(ctx context.Context, email string) error {
	if err := l.db.WithContext(ctx).Where("email = ?", email).Delete(&models.PendingRegistration{}).Error; err != nil {
		return apperr.Internal("error eliminando el registro pendiente", err)
	}
	return nil
}
