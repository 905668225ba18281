// Package users is the credential store: user records, login and password
// checks. Password hashing is delegated to a Hasher.
package users

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"oxigo-server/internal/apperr"
	"oxigo-server/internal/database"
	"oxigo-server/internal/models"
)

// Repo runs user queries against whatever handle it was built with, either
// the root *gorm.DB or an open transaction.
type Repo struct {
	db *gorm.DB
}

func NewRepo(db *gorm.DB) *Repo {
	return &Repo{db: db}
}

func (r *Repo) first(ctx context.Context, query string, args ...any) (*models.User, error) {
	var u models.User
	err := r.db.WithContext(ctx).Where(query, args...).First(&u).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("Usuario no encontrado")
	}
	if err != nil {
		return nil, apperr.Internal("error en la base de datos", err)
	}
	return &u, nil
}

func (r *Repo) ByID(ctx context.Context, id uint) (*models.User, error) {
	return r.first(ctx, "id = ?", id)
}

func (r *Repo) ByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.first(ctx, "email = ?", email)
}

// ByLogin matches either the username or the e-mail.
func (r *Repo) ByLogin(ctx context.Context, login string) (*models.User, error) {
	return r.first(ctx, "username = ? OR email = ?", login, login)
}

func (r *Repo) Exists(ctx context.Context, id uint) (bool, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).Count(&n).Error; err != nil {
		return false, apperr.Internal("error en la base de datos", err)
	}
	return n > 0, nil
}

// Require is Exists reporting a missing user as NotFound.
func (r *Repo) Require(ctx context.Context, id uint) error {
	ok, err := r.Exists(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return apperr.NotFound("Usuario no encontrado")
	}
	return nil
}

// Taken reports which of username and email already belong to a user.
func (r *Repo) Taken(ctx context.Context, username, email string) (usernameTaken, emailTaken bool, err error) {
	var found []models.User
	err = r.db.WithContext(ctx).
		Select("username", "email").
		Where("username = ? OR email = ?", username, email).
		Find(&found).Error
	if err != nil {
		return false, false, apperr.Internal("error en la base de datos", err)
	}
	for _, u := range found {
		if u.Username == username {
			usernameTaken = true
		}
		if u.Email == email {
			emailTaken = true
		}
	}
	return usernameTaken, emailTaken, nil
}

func (r *Repo) Insert(ctx context.Context, u *models.User) error {
	err := r.db.WithContext(ctx).Create(u).Error
	if database.IsDuplicate(err) {
		return apperr.Conflict("El usuario o el correo ya existen")
	}
	if err != nil {
		return apperr.Internal("error en la base de datos", err)
	}
	return nil
}

func (r *Repo) Save(ctx context.Context, u *models.User) error {
	err := r.db.WithContext(ctx).Save(u).Error
	if database.IsDuplicate(err) {
		return apperr.Conflict("El usuario o el correo ya existen")
	}
	if err != nil {
		return apperr.Internal("error en la base de datos", err)
	}
	return nil
}

func (r *Repo) TouchLogin(ctx context.Context, id uint, at time.Time) error {
	err := r.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).Update("last_login_at", at).Error
	if err != nil {
		return apperr.Internal("error actualizando último login", err)
	}
	return nil
}

func (r *Repo) List(ctx context.Context) ([]models.User, error) {
	var out []models.User
	if err := r.db.WithContext(ctx).Order("id").Find(&out).Error; err != nil {
		return nil, apperr.Internal("error en la base de datos", err)
	}
	return out, nil
}
