package users

import (
	"context"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"

	"oxigo-server/internal/apperr"
	"oxigo-server/internal/models"
)

type Service struct {
	db     *gorm.DB
	hasher Hasher
	now    func() time.Time
}

func NewService(db *gorm.DB, hasher Hasher) *Service {
	return &Service{db: db, hasher: hasher, now: time.Now}
}

// Register inserts a user directly, without e-mail verification.
func (s *Service) Register(ctx context.Context, username, email, password string) (*models.User, error) {
	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, err
	}

	now := s.now()
	u := &models.User{Username: username, Email: email, PasswordHash: hash, RegisteredAt: now, LastLoginAt: now}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repo := NewRepo(tx)
		userTaken, emailTaken, err := repo.Taken(ctx, username, email)
		if err != nil {
			return err
		}
		if userTaken || emailTaken {
			return apperr.Conflict("El usuario o el correo ya existen")
		}
		return repo.Insert(ctx, u)
	})
	if err != nil {
		return nil, err
	}
	return u, nil
}

// Login authenticates by username or e-mail and records the login time.
func (s *Service) Login(ctx context.Context, login, password string) (*models.User, error) {
	repo := NewRepo(s.db)
	u, err := repo.ByLogin(ctx, login)
	if err != nil {
		return nil, err
	}
	if !s.hasher.Compare(u.PasswordHash, password) {
		return nil, apperr.Unauthorized("Contraseña incorrecta")
	}

	now := s.now()
	if err := repo.TouchLogin(ctx, u.ID, now); err != nil {
		return nil, err
	}
	u.LastLoginAt = now
	return u, nil
}

type UpdateInput struct {
	Username       string
	Email          string
	Password       *string
	ProfilePicture *string
}

// Update changes the username, password and profile picture of the user
// owning in.Email. Empty optional fields are left untouched.
func (s *Service) Update(ctx context.Context, in UpdateInput) (*models.User, error) {
	var out *models.User
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repo := NewRepo(tx)
		u, err := repo.ByEmail(ctx, in.Email)
		if err != nil {
			return err
		}

		if name := strings.TrimSpace(in.Username); name != "" && name != u.Username {
			taken, _, err := repo.Taken(ctx, name, "")
			if err != nil {
				return err
			}
			if taken {
				return apperr.Conflict("El nombre de usuario ya está en uso")
			}
			u.Username = name
		}
		if in.Password != nil && *in.Password != "" {
			hash, err := s.hasher.Hash(*in.Password)
			if err != nil {
				return err
			}
			u.PasswordHash = hash
		}
		if in.ProfilePicture != nil && *in.ProfilePicture != "" {
			u.ProfilePicture = in.ProfilePicture
		}

		if err := repo.Save(ctx, u); err != nil {
			return err
		}
		out = u
		return nil
	})
	return out, err
}

// DeleteInput selects the user by the first non-nil field among ID,
// Username and Email.
type DeleteInput struct {
	ID       *uint
	Username *string
	Email    *string
}

// Delete removes the user with their sensors, tracks and rewards. Readings
// and incidents are history and stay.
func (s *Service) Delete(ctx context.Context, in DeleteInput) (*models.User, error) {
	var deleted *models.User
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repo := NewRepo(tx)
		var (
			u   *models.User
			err error
		)
		switch {
		case in.ID != nil:
			u, err = repo.ByID(ctx, *in.ID)
		case in.Username != nil && *in.Username != "":
			u, err = repo.first(ctx, "username = ?", *in.Username)
		case in.Email != nil && *in.Email != "":
			u, err = repo.ByEmail(ctx, *in.Email)
		default:
			return apperr.BadRequest("Debe indicar user_id, username o email")
		}
		if err != nil {
			return err
		}

		var trackIDs []uint
		if err := tx.Model(&models.Track{}).Where("user_id = ?", u.ID).Pluck("id", &trackIDs).Error; err != nil {
			return apperr.Internal("error en la base de datos", err)
		}
		if err := tx.Where("user_id = ?", u.ID).Delete(&models.Sensor{}).Error; err != nil {
			return apperr.Internal("error eliminando sensores", err)
		}
		if err := tx.Where("user_id = ?", u.ID).Delete(&models.Reward{}).Error; err != nil {
			return apperr.Internal("error eliminando recompensas", err)
		}
		if len(trackIDs) > 0 {
			if err := tx.Where("track_id IN ?", trackIDs).Delete(&models.TrackPoint{}).Error; err != nil {
				return apperr.Internal("error eliminando recorridos", err)
			}
			if err := tx.Where("id IN ?", trackIDs).Delete(&models.Track{}).Error; err != nil {
				return apperr.Internal("error eliminando recorridos", err)
			}
		}
		if err := tx.Delete(&models.User{}, u.ID).Error; err != nil {
			return apperr.Internal("error eliminando usuario", err)
		}
		deleted = u
		return nil
	})
	return deleted, err
}

func (s *Service) Get(ctx context.Context, id uint) (*models.User, error) {
	return NewRepo(s.db).ByID(ctx, id)
}

func (s *Service) List(ctx context.Context) ([]models.User, error) {
	return NewRepo(s.db).List(ctx)
}

// EmailOf resolves the e-mail of user id. ok is false when no such user exists.
func (s *Service) EmailOf(ctx context.Context, id uint) (email string, ok bool, err error) {
	u, err := NewRepo(s.db).ByID(ctx, id)
	if errors.Is(err, apperr.ErrNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return u.Email, true, nil
}
