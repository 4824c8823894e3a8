package validation

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"staybook/internal/pkg/apperror"
)

type sampleCommand struct {
	BookingID       string `validate:"required"`
	Reason          string `validate:"max=5"`
	IdempotencyKeyV string `validate:"max=3"`
}

func TestValidateReportsFirstField(t *testing.T) {
	v := New()
	err := v.Validate(context.Background(), sampleCommand{Reason: "too long"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrFieldInvalid))
	assert.True(t, errors.Is(err, apperror.ErrInvalidRequest))
	assert.Equal(t, "bookingID is invalid (required)", err.Error())
}

func TestValidateRendersParam(t *testing.T) {
	err := New().Validate(context.Background(), &sampleCommand{BookingID: "b-1", IdempotencyKeyV: "abcd"})
	require.Error(t, err)
	assert.Equal(t, "idempotencyKey is invalid (max=3)", err.Error())
}

func TestValidatePassesValidAndNonStructMessages(t *testing.T) {
	v := New()
	assert.NoError(t, v.Validate(context.Background(), sampleCommand{BookingID: "b-1"}))
	assert.NoError(t, v.Validate(context.Background(), "not a struct"))
	assert.NoError(t, v.Validate(context.Background(), nil))
}
