package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

var errCapacity = Invalid("test.capacity", "maximum guest count is %d")

func TestIsMatchesCodeAndKind(t *testing.T) {
	err := fmt.Errorf("create: %w", errCapacity.With(4))

	assert.True(t, errors.Is(err, errCapacity))
	assert.True(t, errors.Is(err, ErrInvalidRequest))
	assert.False(t, errors.Is(err, ErrNotFound))
	assert.False(t, errors.Is(err, Invalid("test.other", "other")))
	assert.Equal(t, "create: maximum guest count is 4", err.Error())
}

func TestWithDoesNotMutateSentinel(t *testing.T) {
	_ = errCapacity.With(9)
	assert.Empty(t, errCapacity.Args)
}

func TestHTTPStatus(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{Invalid("a", "a"), http.StatusBadRequest},
		{NotFound("b", "b"), http.StatusNotFound},
		{Forbidden("c", "c"), http.StatusForbidden},
		{Unauthorized("d", "d"), http.StatusUnauthorized},
		{errors.New("disk is on fire"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, HTTPStatus(fmt.Errorf("wrapped: %w", tc.err)), tc.err.Error())
	}
}
