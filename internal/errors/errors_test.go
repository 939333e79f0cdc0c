package errors

import (
	"fmt"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTypedErrorsMatchSentinels(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		target error
	}{
		{"not found", NewNotFoundError("municipality", "Wien"), ErrNotFound},
		{"validation", NewValidationError("rules", "", "empty"), ErrInvalidInput},
		{"api status", NewAPIError("overpass", 504, "gateway timeout"), ErrUpstream},
		{"api transport", WrapAPIError("overpass", io.ErrUnexpectedEOF), ErrUpstream},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			wrapped := fmt.Errorf("caller: %w", tt.err)
			assert.ErrorIs(t, wrapped, tt.target)
		})
	}
}

func TestAPIErrorUnwrap(t *testing.T) {
	err := WrapAPIError("overpass", io.ErrUnexpectedEOF)
	assert.ErrorIs(t, err, io.ErrUnexpectedEOF)
	assert.Equal(t, "API error from overpass: unexpected EOF", err.Error())
}

func TestErrorMessages(t *testing.T) {
	assert.Equal(t, `municipality "Graz" not found`, NewNotFoundError("municipality", "Graz").Error())
	assert.Equal(t, "validation failed for field gkz: not a number", NewValidationError("gkz", "x", "not a number").Error())
	assert.Equal(t, "validation failed: bad", NewValidationError("", nil, "bad").Error())
	assert.Equal(t, "API error from overpass (status 429): slow down", NewAPIError("overpass", 429, "slow down").Error())
}
