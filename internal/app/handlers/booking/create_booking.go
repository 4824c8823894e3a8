package booking

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"staybook/internal/app/commands"
	"staybook/internal/app/dto"
	"staybook/internal/app/handlers/support"
	"staybook/internal/app/middleware"
	"staybook/internal/app/outbox"
	"staybook/internal/app/policies"
	"staybook/internal/app/uow"
	domainbooking "staybook/internal/domain/booking"
	domainlistings "staybook/internal/domain/listings"
)

const createBookingKey = "booking.create"

// CreateBookingCommand carries the flat booking request. Only the fields valid
// for Type are used.
type CreateBookingCommand struct {
	Actor           policies.Actor
	Type            string
	PropertyID      string
	ExperienceID    string
	StartDate       time.Time
	EndDate         time.Time
	StartTime       string
	EndTime         string
	Guests          int
	Notes           string `validate:"max=1000"`
	IdempotencyKeyV string `validate:"max=128"`
}

func (c CreateBookingCommand) Key() string { return createBookingKey }

// IdempotencyKey is scoped to the guest so two users cannot collide on a key.
func (c CreateBookingCommand) IdempotencyKey() string {
	if c.IdempotencyKeyV == "" {
		return ""
	}
	return string(c.Actor.ID) + ":" + c.IdempotencyKeyV
}

func (c CreateBookingCommand) ResultPrototype() any { return &dto.Booking{} }

type CreateBookingHandler struct {
	UoWFactory uow.UoWFactory
	Outbox     outbox.Outbox
	Encoder    outbox.EventEncoder
	Logger     *slog.Logger
	Clock      func() time.Time
	IDs        func() string
}

func (h *CreateBookingHandler) Handle(ctx context.Context, cmd CreateBookingCommand) (*dto.Booking, error) {
	if !cmd.Actor.Authenticated() {
		return nil, policies.ErrAuthRequired
	}
	target, err := domainbooking.NewTarget(domainbooking.TargetParams{
		Kind:         cmd.Type,
		PropertyID:   cmd.PropertyID,
		ExperienceID: cmd.ExperienceID,
		StartDate:    cmd.StartDate,
		EndDate:      cmd.EndDate,
		StartTime:    cmd.StartTime,
		EndTime:      cmd.EndTime,
	})
	if err != nil {
		return nil, err
	}
	if err := domainbooking.ValidateGuestCount(cmd.Guests); err != nil {
		return nil, err
	}

	unit, ctx, err := support.BeginUnit(ctx, h.UoWFactory, uow.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer unit.Release(ctx)

	listing, err := unit.Listings().ByID(ctx, target.ListingID())
	if err != nil {
		if errors.Is(err, domainlistings.ErrNotFound) {
			return nil, domainlistings.NotFoundFor(target.Kind())
		}
		return nil, err
	}

	now := support.Now(h.Clock)
	booking, err := domainbooking.NewBooking(domainbooking.CreateParams{
		ID:      domainbooking.BookingID(support.NewID(h.IDs)),
		GuestID: cmd.Actor.ID,
		Target:  target,
		Guests:  cmd.Guests,
		Notes:   cmd.Notes,
		Listing: listing,
		Now:     now,
	})
	if err != nil {
		return nil, err
	}
	if err := unit.Bookings().Save(ctx, booking); err != nil {
		return nil, err
	}
	listing.AttachBooking(string(booking.ID), now)
	if err := unit.Listings().Save(ctx, listing); err != nil {
		return nil, err
	}
	if err := support.RecordEvents(ctx, h.Outbox, h.Encoder, booking, listing); err != nil {
		return nil, err
	}
	if err := unit.Complete(ctx); err != nil {
		return nil, err
	}

	if h.Logger != nil {
		h.Logger.Info("booking created",
			"booking_id", booking.ID,
			"listing_id", listing.ID,
			"type", booking.Kind(),
			"guest_id", booking.GuestID,
			"total", booking.Total.Amount,
			"currency", booking.Total.Currency,
		)
	}
	out := dto.MapBooking(booking)
	return &out, nil
}

var (
	_ commands.Handler[CreateBookingCommand, *dto.Booking] = (*CreateBookingHandler)(nil)
	_ middleware.IdempotentCommand                         = CreateBookingCommand{}
)
