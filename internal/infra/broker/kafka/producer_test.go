package kafka

import (
	"context"
	"errors"
	"testing"

	"github.com/IBM/sarama"
	"github.com/IBM/sarama/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPublishSendsKeyPayloadAndHeaders(t *testing.T) {
	cfg := mocks.NewTestConfig()
	cfg.Producer.Return.Successes = true
	sync := mocks.NewSyncProducer(t, cfg)

	var got *sarama.ProducerMessage
	sync.ExpectSendMessageWithMessageCheckerFunctionAndSucceed(func(msg *sarama.ProducerMessage) error {
		got = msg
		return nil
	})
	p := NewProducerFrom(sync)
	defer p.Close()

	err := p.Publish(context.Background(), "booking.events.v1", "b-1", []byte(`{"id":"ev-1"}`), map[string]string{
		"traceparent":  "00-abc",
		"content-type": "application/cloudevents+json",
	})
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "booking.events.v1", got.Topic)
	key, _ := got.Key.Encode()
	assert.Equal(t, "b-1", string(key))
	require.Len(t, got.Headers, 2)
	assert.Equal(t, "content-type", string(got.Headers[0].Key))
	assert.Equal(t, "traceparent", string(got.Headers[1].Key))
}

func TestPublishReturnsBrokerError(t *testing.T) {
	cfg := mocks.NewTestConfig()
	cfg.Producer.Return.Successes = true
	sync := mocks.NewSyncProducer(t, cfg)
	sync.ExpectSendMessageAndFail(sarama.ErrOutOfBrokers)

	p := NewProducerFrom(sync)
	defer p.Close()
	err := p.Publish(context.Background(), "t", "k", []byte("{}"), nil)
	assert.True(t, errors.Is(err, sarama.ErrOutOfBrokers))
}

func TestPublishHonoursCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	p := NewProducerFrom(mocks.NewSyncProducer(t, nil))
	defer p.Close()
	assert.ErrorIs(t, p.Publish(ctx, "t", "k", nil, nil), context.Canceled)
}
