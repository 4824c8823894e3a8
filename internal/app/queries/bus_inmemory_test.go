package queries

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countQuery struct{ Of string }

func (countQuery) Key() string { return "test.count" }

type aliasQuery struct{}

func (aliasQuery) Key() string { return "test.count" }

func TestAskTypedHandler(t *testing.T) {
	bus := NewInMemoryBus()
	RegisterHandler[countQuery, int](bus, countQuery{}.Key(), HandlerFunc[countQuery, int](func(_ context.Context, q countQuery) (int, error) {
		return len(q.Of), nil
	}))

	n, err := Ask[countQuery, int](context.Background(), bus, countQuery{Of: "abc"})
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	assert.Equal(t, []string{"test.count"}, bus.Keys())

	_, err = bus.Ask(context.Background(), aliasQuery{})
	assert.ErrorIs(t, err, ErrInvalidQuery)
	_, err = Ask[countQuery, string](context.Background(), bus, countQuery{})
	assert.ErrorIs(t, err, ErrResultType)
	_, err = Ask[countQuery, int](context.Background(), nil, countQuery{})
	assert.ErrorIs(t, err, ErrNilBus)
}

func TestUnknownQuery(t *testing.T) {
	_, err := NewInMemoryBus().Ask(context.Background(), countQuery{})
	assert.ErrorIs(t, err, ErrHandlerNotFound)
	assert.Panics(t, func() { NewInMemoryBus().RegisterRaw("", nil) })
}
