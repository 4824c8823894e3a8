package booking

import (
	"time"

	"staybook/internal/domain/listings"
	"staybook/internal/domain/shared/money"
	"staybook/internal/domain/user"
)

type BookingCreated struct {
	BookingID BookingID
	Kind      listings.Kind
	ListingID listings.ListingID
	GuestID   user.ID
	Guests    int
	Total     money.Money
	At        time.Time
}

func (e BookingCreated) EventName() string     { return "booking.created" }
func (e BookingCreated) AggregateID() string   { return string(e.BookingID) }
func (e BookingCreated) OccurredAt() time.Time { return e.At }

type StatusChanged struct {
	BookingID BookingID
	From      Status
	To        Status
	Reason    string
	At        time.Time
}

func (e StatusChanged) EventName() string     { return "booking.status_changed" }
func (e StatusChanged) AggregateID() string   { return string(e.BookingID) }
func (e StatusChanged) OccurredAt() time.Time { return e.At }

type PaymentChanged struct {
	BookingID BookingID
	Status    PaymentStatus
	Method    PaymentMethod
	At        time.Time
}

func (e PaymentChanged) EventName() string     { return "booking.payment_changed" }
func (e PaymentChanged) AggregateID() string   { return string(e.BookingID) }
func (e PaymentChanged) OccurredAt() time.Time { return e.At }

type BookingDeleted struct {
	BookingID BookingID
	ListingID listings.ListingID
	At        time.Time
}

func (e BookingDeleted) EventName() string     { return "booking.deleted" }
func (e BookingDeleted) AggregateID() string   { return string(e.BookingID) }
func (e BookingDeleted) OccurredAt() time.Time { return e.At }
