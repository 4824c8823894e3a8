package outbox

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"

	"staybook/internal/domain/shared/events"
)

type sampleEvent struct {
	BookingID string `json:"booking_id"`
	At        time.Time
}

func (e sampleEvent) EventName() string     { return "booking.created" }
func (e sampleEvent) AggregateID() string   { return e.BookingID }
func (e sampleEvent) OccurredAt() time.Time { return e.At }

type captureOutbox struct {
	records []EventRecord
}

func (c *captureOutbox) Add(_ context.Context, rec EventRecord) error {
	c.records = append(c.records, rec)
	return nil
}

func (c *captureOutbox) Flush(context.Context) error { return nil }

func TestRecordDomainEventsEncodesJSON(t *testing.T) {
	box := &captureOutbox{}
	at := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)
	enc := JSONEventEncoder{IDGenerator: func() string { return "evt-1" }}

	err := RecordDomainEvents(context.Background(), box, enc, []events.DomainEvent{sampleEvent{BookingID: "b-1", At: at}})
	require.NoError(t, err)
	require.Len(t, box.records, 1)

	rec := box.records[0]
	assert.Equal(t, "evt-1", rec.ID)
	assert.Equal(t, "booking.created", rec.Name)
	assert.Equal(t, "b-1", rec.Aggregate)
	assert.Equal(t, at, rec.OccurredAt)
	assert.Equal(t, "b-1", gjson.GetBytes(rec.Payload, "booking_id").String())
}

func TestRecordDomainEventsNilOutbox(t *testing.T) {
	err := RecordDomainEvents(context.Background(), nil, nil, []events.DomainEvent{sampleEvent{}})
	assert.NoError(t, err)
}
