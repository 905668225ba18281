package users

import (
	"errors"

	"golang.org/x/crypto/bcrypt"

	"oxigo-server/internal/apperr"
)

// MaxPasswordBytes is the longest password bcrypt accepts.
const MaxPasswordBytes = 72

// Hasher turns plaintext passwords into storable hashes and checks them.
// Hash returns apperr kinds: BadRequest for unusable input, Internal otherwise.
type Hasher interface {
	Hash(password string) (string, error)
	Compare(hash, password string) bool
}

type BcryptHasher struct {
	Cost int
}

func NewBcryptHasher() *BcryptHasher {
	return &BcryptHasher{Cost: bcrypt.DefaultCost}
}

func (h *BcryptHasher) Hash(password string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(password), h.Cost)
	if errors.Is(err, bcrypt.ErrPasswordTooLong) {
		return "", apperr.BadRequest("La contraseña no puede superar %d bytes", MaxPasswordBytes)
	}
	if err != nil {
		return "", apperr.Internal("error cifrando la contraseña", err)
	}
	return string(b), nil
}

func (h *BcryptHasher) Compare(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
