package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatus(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{Validation("bad input", "name"), http.StatusBadRequest},
		{New(ErrAlreadyReviewed, "already reviewed"), http.StatusBadRequest},
		{Conflict("email taken"), http.StatusBadRequest},
		{Unauthorized("no token"), http.StatusUnauthorized},
		{Forbidden("nope"), http.StatusForbidden},
		{NotFound("missing"), http.StatusNotFound},
		{Unavailable("uploads off"), http.StatusServiceUnavailable},
		{fmt.Errorf("lookup: %w", NotFound("missing")), http.StatusNotFound},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, Status(tc.err), tc.err.Error())
	}
}

func TestMessage(t *testing.T) {
	assert.Equal(t, "facility not found", Message(NotFound("facility not found")))
	assert.Equal(t, "missing fields: name, capacity", Message(Validation("missing fields", "name", "capacity")))
	assert.Equal(t, "internal server error", Message(errors.New("connection reset")))
	assert.Equal(t, "forbidden", Message(ErrForbidden))
}

func TestValidationError_IsAndFields(t *testing.T) {
	err := fmt.Errorf("create: %w", Validation("invalid", "days"))
	assert.True(t, errors.Is(err, ErrValidation))
	assert.Equal(t, []string{"days"}, Fields(err))
	assert.Nil(t, Fields(errors.New("x")))
}
