package booking

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"staybook/internal/app/commands"
	"staybook/internal/app/dto"
	"staybook/internal/app/handlers/support"
	"staybook/internal/app/outbox"
	"staybook/internal/app/policies"
	"staybook/internal/app/uow"
	domainbooking "staybook/internal/domain/booking"
	domainlistings "staybook/internal/domain/listings"
	domainuser "staybook/internal/domain/user"
)

const (
	updateStatusKey  = "booking.update_status"
	updatePaymentKey = "booking.update_payment"
	deleteBookingKey = "booking.delete"
)

type UpdateStatusCommand struct {
	Actor     policies.Actor
	BookingID string `validate:"required"`
	Status    string `validate:"required"`
	Reason    string `validate:"max=500"`
}

func (c UpdateStatusCommand) Key() string { return updateStatusKey }

// UpdateStatusHandler lets the host of the booked listing or an admin move a
// booking to any status.
type UpdateStatusHandler struct {
	UoWFactory uow.UoWFactory
	Outbox     outbox.Outbox
	Encoder    outbox.EventEncoder
	Logger     *slog.Logger
	Clock      func() time.Time
}

func (h *UpdateStatusHandler) Handle(ctx context.Context, cmd UpdateStatusCommand) (*dto.Booking, error) {
	if !cmd.Actor.Authenticated() {
		return nil, policies.ErrAuthRequired
	}
	unit, ctx, err := support.BeginUnit(ctx, h.UoWFactory, uow.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer unit.Release(ctx)

	booking, err := unit.Bookings().ByID(ctx, domainbooking.BookingID(cmd.BookingID))
	if err != nil {
		return nil, err
	}
	host, err := listingHost(ctx, unit, booking.ListingID())
	if err != nil {
		return nil, err
	}
	if !cmd.Actor.CanManage(host) {
		return nil, policies.ErrForbidden
	}
	status, err := domainbooking.ParseStatus(cmd.Status)
	if err != nil {
		return nil, err
	}
	if err := booking.UpdateStatus(status, cmd.Reason, support.Now(h.Clock)); err != nil {
		return nil, err
	}
	if err := unit.Bookings().Save(ctx, booking); err != nil {
		return nil, err
	}
	if err := support.RecordEvents(ctx, h.Outbox, h.Encoder, booking); err != nil {
		return nil, err
	}
	if err := unit.Complete(ctx); err != nil {
		return nil, err
	}
	if h.Logger != nil {
		h.Logger.Info("booking status updated", "booking_id", booking.ID, "status", status, "actor_id", cmd.Actor.ID)
	}
	out := dto.MapBooking(booking)
	return &out, nil
}

type UpdatePaymentCommand struct {
	Actor         policies.Actor
	BookingID     string `validate:"required"`
	PaymentStatus string `validate:"required"`
	PaymentMethod string
}

func (c UpdatePaymentCommand) Key() string                      { return updatePaymentKey }
func (c UpdatePaymentCommand) Principal() policies.Actor        { return c.Actor }
func (c UpdatePaymentCommand) RequiredRoles() []domainuser.Role { return adminOnly }

type UpdatePaymentHandler struct {
	UoWFactory uow.UoWFactory
	Outbox     outbox.Outbox
	Encoder    outbox.EventEncoder
	Logger     *slog.Logger
	Clock      func() time.Time
}

func (h *UpdatePaymentHandler) Handle(ctx context.Context, cmd UpdatePaymentCommand) (*dto.Booking, error) {
	if !cmd.Actor.IsAdmin() {
		return nil, policies.ErrAdminOnly
	}
	unit, ctx, err := support.BeginUnit(ctx, h.UoWFactory, uow.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer unit.Release(ctx)

	booking, err := unit.Bookings().ByID(ctx, domainbooking.BookingID(cmd.BookingID))
	if err != nil {
		return nil, err
	}
	status, err := domainbooking.ParsePaymentStatus(cmd.PaymentStatus)
	if err != nil {
		return nil, err
	}
	var method domainbooking.PaymentMethod
	if cmd.PaymentMethod != "" {
		if method, err = domainbooking.ParsePaymentMethod(cmd.PaymentMethod); err != nil {
			return nil, err
		}
	}
	if err := booking.UpdatePayment(status, method, support.Now(h.Clock)); err != nil {
		return nil, err
	}
	if err := unit.Bookings().Save(ctx, booking); err != nil {
		return nil, err
	}
	if err := support.RecordEvents(ctx, h.Outbox, h.Encoder, booking); err != nil {
		return nil, err
	}
	if err := unit.Complete(ctx); err != nil {
		return nil, err
	}
	if h.Logger != nil {
		h.Logger.Info("booking payment updated", "booking_id", booking.ID, "payment_status", status, "payment_method", booking.PaymentMethod)
	}
	out := dto.MapBooking(booking)
	return &out, nil
}

type DeleteBookingCommand struct {
	Actor     policies.Actor
	BookingID string `validate:"required"`
}

func (c DeleteBookingCommand) Key() string                      { return deleteBookingKey }
func (c DeleteBookingCommand) Principal() policies.Actor        { return c.Actor }
func (c DeleteBookingCommand) RequiredRoles() []domainuser.Role { return adminOnly }

type DeleteBookingResult struct {
	BookingID string `json:"booking_id"`
}

// DeleteBookingHandler hard deletes a booking and pulls it from its listing.
type DeleteBookingHandler struct {
	UoWFactory uow.UoWFactory
	Outbox     outbox.Outbox
	Encoder    outbox.EventEncoder
	Logger     *slog.Logger
	Clock      func() time.Time
}

func (h *DeleteBookingHandler) Handle(ctx context.Context, cmd DeleteBookingCommand) (*DeleteBookingResult, error) {
	if !cmd.Actor.IsAdmin() {
		return nil, policies.ErrAdminOnly
	}
	unit, ctx, err := support.BeginUnit(ctx, h.UoWFactory, uow.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer unit.Release(ctx)

	booking, err := unit.Bookings().ByID(ctx, domainbooking.BookingID(cmd.BookingID))
	if err != nil {
		return nil, err
	}
	now := support.Now(h.Clock)
	if err := unit.Bookings().Delete(ctx, booking.ID); err != nil {
		return nil, err
	}
	booking.MarkDeleted(now)
	sources := []support.EventSource{booking}

	listing, err := unit.Listings().ByID(ctx, booking.ListingID())
	switch {
	case err == nil:
		if listing.DetachBooking(string(booking.ID), now) {
			if err := unit.Listings().Save(ctx, listing); err != nil {
				return nil, err
			}
		}
		sources = append(sources, listing)
	case !errors.Is(err, domainlistings.ErrNotFound):
		return nil, err
	}
	if err := support.RecordEvents(ctx, h.Outbox, h.Encoder, sources...); err != nil {
		return nil, err
	}
	if err := unit.Complete(ctx); err != nil {
		return nil, err
	}
	if h.Logger != nil {
		h.Logger.Info("booking deleted", "booking_id", booking.ID, "listing_id", booking.ListingID())
	}
	return &DeleteBookingResult{BookingID: string(booking.ID)}, nil
}

var adminOnly = []domainuser.Role{domainuser.RoleAdmin}

// listingHost resolves the owner of a listing. A listing that no longer exists
// has no owner, so only admins pass the owner-or-admin check.
func listingHost(ctx context.Context, unit uow.UnitOfWork, id domainlistings.ListingID) (domainuser.ID, error) {
	listing, err := unit.Listings().ByID(ctx, id)
	if err != nil {
		if errors.Is(err, domainlistings.ErrNotFound) {
			return "", nil
		}
		return "", err
	}
	return listing.Host, nil
}

var (
	_ commands.Handler[UpdateStatusCommand, *dto.Booking]          = (*UpdateStatusHandler)(nil)
	_ commands.Handler[UpdatePaymentCommand, *dto.Booking]         = (*UpdatePaymentHandler)(nil)
	_ commands.Handler[DeleteBookingCommand, *DeleteBookingResult] = (*DeleteBookingHandler)(nil)
	_ policies.Restricted                                          = UpdatePaymentCommand{}
	_ policies.Restricted                                          = DeleteBookingCommand{}
)
