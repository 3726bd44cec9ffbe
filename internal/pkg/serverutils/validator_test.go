package serverutils

import (
	"errors"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sampleRequest struct {
	Email string `validate:"required,email"`
	Name  string `validate:"required,min=3"`
}

func TestValidateRequest_Valid(t *testing.T) {
	err := ValidateRequest(sampleRequest{Email: "a@b.com", Name: "Alice"})
	assert.NoError(t, err)
}

func TestValidateRequest_Invalid(t *testing.T) {
	err := ValidateRequest(sampleRequest{Email: "not-an-email"})
	require.Error(t, err)

	var fiberErr *fiber.Error
	require.True(t, errors.As(err, &fiberErr))
	assert.Equal(t, fiber.StatusBadRequest, fiberErr.Code)
	assert.Contains(t, fiberErr.Message, "Email")
	assert.Contains(t, fiberErr.Message, "Name")
}
