package apperr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorKinds(t *testing.T) {
	tests := []struct {
		name string
		err  error
		kind error
		code string
	}{
		{"validation", Validation("name", "name is required"), ErrValidation, "validation_error"},
		{"not found", NotFound("product", 7), ErrNotFound, "not_found"},
		{"permission", Permission("couriers cannot dispatch orders"), ErrPermission, "permission_denied"},
		{"transition", InvalidTransition("DELIVERED", "OPEN"), ErrInvalidTransition, "invalid_transition"},
		{"negative", NegativeAmount("result below zero"), ErrNegativeAmount, "negative_amount"},
		{"authentication", Authentication("invalid credentials"), ErrAuthentication, "authentication_failed"},
		{"conflict", Conflict("username already exists"), ErrConflict, "conflict"},
		{"storage", StorageUnavailable(errors.New("dial tcp: refused")), ErrStorageUnavailable, "storage_unavailable"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			wrapped := fmt.Errorf("handler: %w", tt.err)
			assert.ErrorIs(t, wrapped, tt.kind)
			assert.Equal(t, tt.code, Code(wrapped))
		})
	}
}

func TestCodeUnknown(t *testing.T) {
	assert.Equal(t, "internal_error", Code(errors.New("boom")))
}

func TestStorageUnavailableKeepsCause(t *testing.T) {
	cause := errors.New("connection reset")
	err := StorageUnavailable(cause)

	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "connection reset")
}

func TestDetails(t *testing.T) {
	err := fmt.Errorf("wrap: %w", InvalidValue("status", "unknown status", []string{"OPEN", "CANCELED"}))

	d, ok := Details(err)
	require.True(t, ok)
	assert.Equal(t, "status", d.Field)
	assert.Equal(t, []string{"OPEN", "CANCELED"}, d.Allowed)
	assert.Equal(t, "status: unknown status", d.Error())
}
