package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidationErrorMatchesSentinel(t *testing.T) {
	err := fmt.Errorf("create artist: %w", Invalid("name", "is required"))

	assert.True(t, errors.Is(err, ErrValidation))
	assert.False(t, errors.Is(err, ErrNotFound))

	var ve *ValidationError
	assert.True(t, errors.As(err, &ve))
	assert.Equal(t, "is required", ve.Fields["name"])
}

func TestValidationErrorMessageIsSorted(t *testing.T) {
	v := NewValidationError()
	v.Add("email", "must be a valid email")
	v.Add("name", "is required")
	v.Add("name", "ignored second message")

	assert.Equal(t, "validation failed: email: must be a valid email; name: is required", v.Error())
	assert.False(t, v.Empty())
}
