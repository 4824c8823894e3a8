package outbox

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"

	appoutbox "staybook/internal/app/outbox"
	"staybook/internal/infra/storage/memory"
)

type published struct {
	topic   string
	key     string
	payload string
	headers map[string]string
}

type fakeProducer struct {
	sent []published
	fail error
}

func (p *fakeProducer) Publish(_ context.Context, topic, key string, payload []byte, headers map[string]string) error {
	if p.fail != nil {
		return p.fail
	}
	p.sent = append(p.sent, published{topic: topic, key: key, payload: string(payload), headers: headers})
	return nil
}

func queued(t *testing.T, box *memory.Outbox, recs ...appoutbox.EventRecord) {
	t.Helper()
	ctx := context.Background()
	for _, rec := range recs {
		require.NoError(t, box.Add(ctx, rec))
	}
	require.NoError(t, box.Flush(ctx))
}

func record(id, name string) appoutbox.EventRecord {
	return appoutbox.EventRecord{
		ID:         id,
		Name:       name,
		Payload:    []byte(`{"BookingID":"b-1","Status":"confirmed"}`),
		OccurredAt: time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC),
		Aggregate:  "b-1",
		Headers:    map[string]string{"traceparent": "00-abc-def-01"},
	}
}

func TestDrainPublishesCloudEvents(t *testing.T) {
	box := memory.NewOutbox()
	queued(t, box, record("ev-1", "booking.status_changed"), record("ev-2", "review.created"))
	producer := &fakeProducer{}
	w := &Worker{Store: box, Producer: producer, TopicPrefix: "dev.", ID: "w-1"}

	sent, err := w.Drain(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, sent)
	require.Len(t, producer.sent, 2)

	first := producer.sent[0]
	assert.Equal(t, "dev.booking.events.v1", first.topic)
	assert.Equal(t, "dev.review.events.v1", producer.sent[1].topic)
	assert.Equal(t, "b-1", first.key)
	assert.Equal(t, "application/cloudevents+json", first.headers["content-type"])
	assert.Equal(t, "1.0", gjson.Get(first.payload, "specversion").String())
	assert.Equal(t, "ev-1", gjson.Get(first.payload, "id").String())
	assert.Equal(t, "booking.status_changed.v1", gjson.Get(first.payload, "type").String())
	assert.Equal(t, "confirmed", gjson.Get(first.payload, "data.Status").String())
	assert.Equal(t, "00-abc-def-01", gjson.Get(first.payload, "traceparent").String())
	assert.Empty(t, box.Queued())
}

func TestDrainSchedulesRetryOnFailure(t *testing.T) {
	box := memory.NewOutbox()
	queued(t, box, record("ev-1", "booking.created"))
	producer := &fakeProducer{fail: errors.New("broker down")}
	now := time.Now()
	w := &Worker{Store: box, Producer: producer, Backoff: []time.Duration{time.Hour}, Now: func() time.Time { return now }}

	sent, err := w.Drain(context.Background())
	require.NoError(t, err)
	assert.Zero(t, sent)
	assert.Len(t, box.Queued(), 1)

	// not due again until the backoff passes
	producer.fail = nil
	sent, err = w.Drain(context.Background())
	require.NoError(t, err)
	assert.Zero(t, sent)
	assert.Empty(t, producer.sent)
}

func TestNextRetryUsesLastBackoffStep(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	w := &Worker{Backoff: []time.Duration{time.Second, time.Minute}, Now: func() time.Time { return now }}
	assert.Equal(t, now.Add(time.Second), w.nextRetry(0))
	assert.Equal(t, now.Add(time.Minute), w.nextRetry(5))
	assert.Equal(t, now.Add(5*time.Second), (&Worker{Now: w.Now}).nextRetry(0))
}

func TestRunRequiresDependencies(t *testing.T) {
	assert.ErrorIs(t, (&Worker{}).Run(context.Background()), ErrWorkerNotConfigured)
}
