package apperr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKinds_MatchWithErrorsIs(t *testing.T) {
	tests := []struct {
		err  error
		kind error
	}{
		{Conflict("email %s taken", "a@x.com"), ErrConflict},
		{NotFound("no sensor"), ErrNotFound},
		{BadRequest("expired"), ErrBadRequest},
		{Forbidden("not yours"), ErrForbidden},
		{Unauthorized("wrong password"), ErrUnauthorized},
		{Internal("db error", errors.New("boom")), ErrInternal},
	}
	for _, tt := range tests {
		assert.ErrorIs(t, tt.err, tt.kind)
		assert.ErrorIs(t, fmt.Errorf("wrapped: %w", tt.err), tt.kind)
	}
}

func TestMessage_HidesInternalCause(t *testing.T) {
	cause := errors.New("pq: relation users does not exist")
	err := Internal("error en la base de datos", cause)

	assert.Equal(t, "error en la base de datos", Message(err))
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "relation users")
}

func TestMessage_PlainErrorIsGeneric(t *testing.T) {
	assert.Equal(t, "internal error", Message(errors.New("raw driver text")))
	assert.Equal(t, "email a@x.com taken", Message(Conflict("email %s taken", "a@x.com")))
}
