package registration

import (
	"context"
	"crypto/rand"
	"math/big"
	"strconv"
	"strings"
	"time"

	"gorm.io/gorm"

	"oxigo-server/internal/apperr"
	"oxigo-server/internal/logging"
	"oxigo-server/internal/models"
	"oxigo-server/internal/notify"
	"oxigo-server/internal/users"
)

const (
	codeMin = 100000
	codeMax = 999999
)

// NewCode draws a uniform 6-digit code.
func NewCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(codeMax-codeMin+1))
	if err != nil {
		return "", err
	}
	return strconv.FormatInt(n.Int64()+codeMin, 10), nil
}

type Service struct {
	db       *gorm.DB
	hasher   users.Hasher
	notifier notify.Notifier
	log      logging.Logger
	ttl      time.Duration

	now     func() time.Time
	newCode func() (string, error)
}

func NewService(db *gorm.DB, hasher users.Hasher, notifier notify.Notifier, log logging.Logger, ttl time.Duration) *Service {
	return &Service{
		db:       db,
		hasher:   hasher,
		notifier: notifier,
		log:      log,
		ttl:      ttl,
		now:      time.Now,
		newCode:  NewCode,
	}
}

// Request records a pending signup for email and sends the code to it once
// the row is committed. It returns the email the code was sent to; the code
// itself is never returned.
func (s *Service) Request(ctx context.Context, email, username, password string) (string, error) {
	hash, err := s.hasher.Hash(password)
	if err != nil {
		return "", err
	}
	code, err := s.newCode()
	if err != nil {
		return "", apperr.Internal("error generando el código", err)
	}

	pending := &models.PendingRegistration{
		Email:        email,
		Username:     username,
		PasswordHash: hash,
		Code:         code,
		ExpiresAt:    s.now().Add(s.ttl),
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		usernameTaken, emailTaken, err := users.NewRepo(tx).Taken(ctx, username, email)
		if err != nil {
			return err
		}
		if emailTaken {
			return apperr.BadRequest("El correo ya está registrado")
		}
		if usernameTaken {
			return apperr.BadRequest("El nombre de usuario ya está en uso")
		}
		return NewLedger(tx).Upsert(ctx, pending)
	})
	if err != nil {
		return "", err
	}

	s.log.Info(ctx, "registration pending", "email", email, "expires_at", pending.ExpiresAt)
	if !s.notifier.Enqueue(notify.VerificationCode(email, code, s.ttl)) {
		s.log.Warn(ctx, "verification code not queued", "email", email)
	}
	return email, nil
}

// Verify promotes the pending row for email into a user when code matches
// and has not expired. An expired row is deleted before the error returns,
// so a retry reports NotFound.
func (s *Service) Verify(ctx context.Context, email string, code int) (*models.User, error) {
	var (
		user    *models.User
		expired bool
	)
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		ledger := NewLedger(tx)
		p, err := ledger.Get(ctx, email, true)
		if err != nil {
			return err
		}
		if strconv.Itoa(code) != strings.TrimSpace(p.Code) {
			return apperr.BadRequest("Código de verificación incorrecto")
		}

		now := s.now()
		if now.After(p.ExpiresAt) {
			expired = true
			return ledger.Delete(ctx, email)
		}

		u := &models.User{
			Username:     p.Username,
			Email:        p.Email,
			PasswordHash: p.PasswordHash,
			RegisteredAt: now,
			LastLoginAt:  now,
		}
		if err := users.NewRepo(tx).Insert(ctx, u); err != nil {
			return err
		}
		if err := ledger.Delete(ctx, email); err != nil {
			return err
		}
		user = u
		return nil
	})
	if err != nil {
		return nil, err
	}
	if expired {
		s.log.Info(ctx, "registration code expired", "email", email)
		return nil, apperr.BadRequest("El código de verificación ha expirado")
	}

	s.log.Info(ctx, "registration verified", "email", email, "user_id", user.ID)
	return user, nil
}
