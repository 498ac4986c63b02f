package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type validatedRequest struct {
	Email string `validate:"required,email"`
	Kind  string `validate:"omitempty,oneof=contact career"`
	Note  string `validate:"omitempty,max=5"`
}

func TestValidateStruct(t *testing.T) {
	assert.NoError(t, ValidateStruct(validatedRequest{Email: "jane@x.com"}))

	err := ValidateStruct(validatedRequest{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "email is required")

	err = ValidateStruct(validatedRequest{Email: "not-an-email"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "email must be a valid email")

	err = ValidateStruct(validatedRequest{Email: "jane@x.com", Kind: "demo"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "kind must be one of: contact career")

	err = ValidateStruct(validatedRequest{Email: "jane@x.com", Note: "too long"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "note must be at most 5 characters")
}

func TestValidateStructMessageWithPercent(t *testing.T) {
	type discountRequest struct {
		Rate string `validate:"required,oneof=10% 25%"`
	}

	// Percent signs in tag params must survive into the message verbatim.
	err := ValidateStruct(discountRequest{Rate: "50%"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "rate must be one of: 10% 25%")
}
