package booking

import (
	"context"
	"log/slog"

	"staybook/internal/app/dto"
	"staybook/internal/app/handlers/support"
	"staybook/internal/app/policies"
	"staybook/internal/app/queries"
	"staybook/internal/app/uow"
	domainbooking "staybook/internal/domain/booking"
	domainlistings "staybook/internal/domain/listings"
	domainuser "staybook/internal/domain/user"
)

const (
	listBookingsKey     = "booking.list_all"
	listMyBookingsKey   = "booking.list_mine"
	listHostBookingsKey = "booking.list_host"
	getBookingKey       = "booking.get"
)

type ListBookingsQuery struct {
	Actor policies.Actor
	Page  int `validate:"gte=0"`
	Limit int `validate:"gte=0"`
}

func (q ListBookingsQuery) Key() string                      { return listBookingsKey }
func (q ListBookingsQuery) Principal() policies.Actor        { return q.Actor }
func (q ListBookingsQuery) RequiredRoles() []domainuser.Role { return adminOnly }

// ListBookingsHandler pages through every booking for admins.
type ListBookingsHandler struct {
	UoWFactory      uow.UoWFactory
	Logger          *slog.Logger
	DefaultPageSize int
}

func (h *ListBookingsHandler) Handle(ctx context.Context, q ListBookingsQuery) (dto.BookingPage, error) {
	if !q.Actor.IsAdmin() {
		return dto.BookingPage{}, policies.ErrAdminOnly
	}
	page, limit := dto.NormalizePage(q.Page, q.Limit, h.DefaultPageSize)

	unit, ctx, err := support.BeginReadOnlyUnit(ctx, h.UoWFactory)
	if err != nil {
		return dto.BookingPage{}, err
	}
	defer unit.Release(ctx)

	items, total, err := unit.Bookings().List(ctx, dto.Offset(page, limit), limit)
	if err != nil {
		return dto.BookingPage{}, err
	}
	if h.Logger != nil {
		h.Logger.Debug("bookings listed", "page", page, "limit", limit, "total", total)
	}
	return dto.BookingPage{
		Bookings: dto.MapBookings(items),
		Page:     page,
		Pages:    dto.PageCount(total, limit),
		Total:    total,
	}, nil
}

type ListMyBookingsQuery struct {
	Actor policies.Actor
}

func (q ListMyBookingsQuery) Key() string { return listMyBookingsKey }

type ListMyBookingsHandler struct {
	UoWFactory uow.UoWFactory
	Logger     *slog.Logger
}

func (h *ListMyBookingsHandler) Handle(ctx context.Context, q ListMyBookingsQuery) ([]dto.Booking, error) {
	if !q.Actor.Authenticated() {
		return nil, policies.ErrAuthRequired
	}
	unit, ctx, err := support.BeginReadOnlyUnit(ctx, h.UoWFactory)
	if err != nil {
		return nil, err
	}
	defer unit.Release(ctx)

	items, err := unit.Bookings().ListByGuest(ctx, q.Actor.ID)
	if err != nil {
		return nil, err
	}
	if h.Logger != nil {
		h.Logger.Debug("guest bookings listed", "guest_id", q.Actor.ID, "count", len(items))
	}
	return dto.MapBookings(items), nil
}

type ListHostBookingsQuery struct {
	Actor policies.Actor
}

func (q ListHostBookingsQuery) Key() string               { return listHostBookingsKey }
func (q ListHostBookingsQuery) Principal() policies.Actor { return q.Actor }
func (q ListHostBookingsQuery) RequiredRoles() []domainuser.Role {
	return []domainuser.Role{domainuser.RoleHost, domainuser.RoleAdmin}
}

// ListHostBookingsHandler returns bookings on any property or experience the
// caller hosts, newest first.
type ListHostBookingsHandler struct {
	UoWFactory uow.UoWFactory
	Logger     *slog.Logger
}

func (h *ListHostBookingsHandler) Handle(ctx context.Context, q ListHostBookingsQuery) ([]dto.Booking, error) {
	if !q.Actor.Authenticated() {
		return nil, policies.ErrAuthRequired
	}
	unit, ctx, err := support.BeginReadOnlyUnit(ctx, h.UoWFactory)
	if err != nil {
		return nil, err
	}
	defer unit.Release(ctx)

	owned, err := unit.Listings().ListByHost(ctx, q.Actor.ID, "")
	if err != nil {
		return nil, err
	}
	if len(owned) == 0 {
		return []dto.Booking{}, nil
	}
	ids := make([]domainlistings.ListingID, 0, len(owned))
	for _, l := range owned {
		ids = append(ids, l.ID)
	}
	items, err := unit.Bookings().ListByListings(ctx, ids)
	if err != nil {
		return nil, err
	}
	if h.Logger != nil {
		h.Logger.Debug("host bookings listed", "host_id", q.Actor.ID, "listings", len(ids), "count", len(items))
	}
	return dto.MapBookings(items), nil
}

type GetBookingQuery struct {
	Actor     policies.Actor
	BookingID string `validate:"required"`
}

func (q GetBookingQuery) Key() string { return getBookingKey }

// GetBookingHandler shows a booking to its guest, the listing host or an admin.
type GetBookingHandler struct {
	UoWFactory uow.UoWFactory
}

func (h *GetBookingHandler) Handle(ctx context.Context, q GetBookingQuery) (dto.Booking, error) {
	if !q.Actor.Authenticated() {
		return dto.Booking{}, policies.ErrAuthRequired
	}
	unit, ctx, err := support.BeginReadOnlyUnit(ctx, h.UoWFactory)
	if err != nil {
		return dto.Booking{}, err
	}
	defer unit.Release(ctx)

	booking, err := unit.Bookings().ByID(ctx, domainbooking.BookingID(q.BookingID))
	if err != nil {
		return dto.Booking{}, err
	}
	if booking.GuestID != q.Actor.ID {
		host, err := listingHost(ctx, unit, booking.ListingID())
		if err != nil {
			return dto.Booking{}, err
		}
		if !q.Actor.CanManage(host) {
			return dto.Booking{}, policies.ErrForbidden
		}
	}
	return dto.MapBooking(booking), nil
}

var (
	_ queries.Handler[ListBookingsQuery, dto.BookingPage]   = (*ListBookingsHandler)(nil)
	_ queries.Handler[ListMyBookingsQuery, []dto.Booking]   = (*ListMyBookingsHandler)(nil)
	_ queries.Handler[ListHostBookingsQuery, []dto.Booking] = (*ListHostBookingsHandler)(nil)
	_ queries.Handler[GetBookingQuery, dto.Booking]         = (*GetBookingHandler)(nil)
	_ policies.Restricted                                   = ListBookingsQuery{}
	_ policies.Restricted                                   = ListHostBookingsQuery{}
)
