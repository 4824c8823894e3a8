package listings

import (
	"time"

	"staybook/internal/domain/shared/money"
	"staybook/internal/domain/user"
)

type ListingCreated struct {
	ListingID ListingID
	Kind      Kind
	Host      user.ID
	At        time.Time
}

func (e ListingCreated) EventName() string     { return "listing.created" }
func (e ListingCreated) AggregateID() string   { return string(e.ListingID) }
func (e ListingCreated) OccurredAt() time.Time { return e.At }

// ListingUpdated carries the fields bookings are priced and checked against.
type ListingUpdated struct {
	ListingID ListingID
	Price     money.Money
	MaxGuests int
	Active    bool
	At        time.Time
}

func (e ListingUpdated) EventName() string     { return "listing.updated" }
func (e ListingUpdated) AggregateID() string   { return string(e.ListingID) }
func (e ListingUpdated) OccurredAt() time.Time { return e.At }

type ListingDeactivated struct {
	ListingID ListingID
	At        time.Time
}

func (e ListingDeactivated) EventName() string     { return "listing.deactivated" }
func (e ListingDeactivated) AggregateID() string   { return string(e.ListingID) }
func (e ListingDeactivated) OccurredAt() time.Time { return e.At }

type RatingRecomputed struct {
	ListingID   ListingID
	Rating      float64
	ReviewCount int
	At          time.Time
}

func (e RatingRecomputed) EventName() string     { return "listing.rating_recomputed" }
func (e RatingRecomputed) AggregateID() string   { return string(e.ListingID) }
func (e RatingRecomputed) OccurredAt() time.Time { return e.At }
