package reviews

import (
	"time"

	"staybook/internal/domain/booking"
)

type ReviewCreated struct {
	ReviewID  ReviewID
	Angle     Angle
	TargetID  string
	BookingID booking.BookingID
	Rating    int
	At        time.Time
}

func (e ReviewCreated) EventName() string     { return "review.created" }
func (e ReviewCreated) AggregateID() string   { return string(e.ReviewID) }
func (e ReviewCreated) OccurredAt() time.Time { return e.At }

type ReviewResponded struct {
	ReviewID ReviewID
	At       time.Time
}

func (e ReviewResponded) EventName() string     { return "review.responded" }
func (e ReviewResponded) AggregateID() string   { return string(e.ReviewID) }
func (e ReviewResponded) OccurredAt() time.Time { return e.At }

type VisibilityChanged struct {
	ReviewID ReviewID
	Public   bool
	At       time.Time
}

func (e VisibilityChanged) EventName() string     { return "review.visibility_changed" }
func (e VisibilityChanged) AggregateID() string   { return string(e.ReviewID) }
func (e VisibilityChanged) OccurredAt() time.Time { return e.At }

type ReviewDeleted struct {
	ReviewID ReviewID
	Angle    Angle
	TargetID string
	At       time.Time
}

func (e ReviewDeleted) EventName() string     { return "review.deleted" }
func (e ReviewDeleted) AggregateID() string   { return string(e.ReviewID) }
func (e ReviewDeleted) OccurredAt() time.Time { return e.At }
