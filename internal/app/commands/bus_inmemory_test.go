package commands

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type pingCommand struct{ Msg string }

func (pingCommand) Key() string { return "test.ping" }

type otherCommand struct{}

func (otherCommand) Key() string { return "test.other" }

func TestDispatchTypedHandler(t *testing.T) {
	bus := NewInMemoryBus()
	RegisterHandler[pingCommand, string](bus, pingCommand{}.Key(), HandlerFunc[pingCommand, string](func(_ context.Context, cmd pingCommand) (string, error) {
		return "pong:" + cmd.Msg, nil
	}))

	out, err := Dispatch[pingCommand, string](context.Background(), bus, pingCommand{Msg: "hi"})
	require.NoError(t, err)
	assert.Equal(t, "pong:hi", out)
	assert.Equal(t, []string{"test.ping"}, bus.Keys())
}

func TestDispatchErrors(t *testing.T) {
	bus := NewInMemoryBus()
	RegisterHandler[pingCommand, string](bus, pingCommand{}.Key(), HandlerFunc[pingCommand, string](func(context.Context, pingCommand) (string, error) {
		return "x", nil
	}))

	_, err := Dispatch[otherCommand, string](context.Background(), bus, otherCommand{})
	assert.True(t, errors.Is(err, ErrHandlerNotFound))

	_, err = Dispatch[pingCommand, int](context.Background(), bus, pingCommand{})
	assert.ErrorIs(t, err, ErrResultType)

	_, err = Dispatch[pingCommand, string](context.Background(), nil, pingCommand{})
	assert.ErrorIs(t, err, ErrNilBus)
}

func TestRegisterTwicePanics(t *testing.T) {
	bus := NewInMemoryBus()
	h := HandlerFunc[pingCommand, string](func(context.Context, pingCommand) (string, error) { return "", nil })
	RegisterHandler[pingCommand, string](bus, "k", h)
	assert.Panics(t, func() { RegisterHandler[pingCommand, string](bus, "k", h) })
}
