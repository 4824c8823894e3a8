package memory

import (
	"context"
	"sync"
	"time"

	"staybook/internal/app/middleware"
	appoutbox "staybook/internal/app/outbox"
)

type outboxState int

const (
	outboxReady outboxState = iota
	outboxClaimed
	outboxFailed
)

type outboxEntry struct {
	record    appoutbox.EventRecord
	state     outboxState
	attempts  int
	nextTry   time.Time
	lastError string
}

// Outbox stages records added during a command and queues them for the relay
// worker on Flush. Sent records are removed. Records added under a context
// from Scope are staged apart from every other command.
type Outbox struct {
	mu     sync.Mutex
	staged []appoutbox.EventRecord
	queue  []*outboxEntry
}

type stagingKey struct{}

type batch struct {
	owner   *Outbox
	records []appoutbox.EventRecord
}

func NewOutbox() *Outbox {
	return &Outbox{}
}

func (o *Outbox) Scope(ctx context.Context) context.Context {
	return context.WithValue(ctx, stagingKey{}, &batch{owner: o})
}

// buffer returns the staging slice for ctx. Callers hold o.mu.
func (o *Outbox) buffer(ctx context.Context) *[]appoutbox.EventRecord {
	if b, ok := ctx.Value(stagingKey{}).(*batch); ok && b.owner == o {
		return &b.records
	}
	return &o.staged
}

func (o *Outbox) Add(ctx context.Context, record appoutbox.EventRecord) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	buf := o.buffer(ctx)
	*buf = append(*buf, record)
	return nil
}

func (o *Outbox) Flush(ctx context.Context) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	buf := o.buffer(ctx)
	now := time.Now().UTC()
	for _, rec := range *buf {
		o.queue = append(o.queue, &outboxEntry{record: rec, nextTry: now})
	}
	*buf = nil
	return nil
}

func (o *Outbox) Discard(ctx context.Context) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	*o.buffer(ctx) = nil
	return nil
}

// Claim hands the oldest due record to a relay worker.
func (o *Outbox) Claim(ctx context.Context, workerID string) (*appoutbox.Pending, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	now := time.Now().UTC()
	for _, entry := range o.queue {
		if entry.state == outboxClaimed || entry.nextTry.After(now) {
			continue
		}
		entry.state = outboxClaimed
		return &appoutbox.Pending{EventRecord: entry.record, Attempts: entry.attempts}, nil
	}
	return nil, nil
}

func (o *Outbox) MarkSent(ctx context.Context, id string) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	for i, entry := range o.queue {
		if entry.record.ID == id {
			o.queue = append(o.queue[:i], o.queue[i+1:]...)
			return nil
		}
	}
	return nil
}

func (o *Outbox) MarkFailed(ctx context.Context, id string, next time.Time, errMsg string) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	for _, entry := range o.queue {
		if entry.record.ID == id {
			entry.state = outboxFailed
			entry.attempts++
			entry.nextTry = next.UTC()
			entry.lastError = errMsg
			return nil
		}
	}
	return nil
}

// Queued returns flushed records that have not been relayed yet.
func (o *Outbox) Queued() []appoutbox.EventRecord {
	o.mu.Lock()
	defer o.mu.Unlock()
	out := make([]appoutbox.EventRecord, 0, len(o.queue))
	for _, entry := range o.queue {
		out = append(out, entry.record)
	}
	return out
}

var (
	_ appoutbox.Outbox     = (*Outbox)(nil)
	_ middleware.Discarder = (*Outbox)(nil)
	_ middleware.Scoper    = (*Outbox)(nil)
)
