package booking

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"staybook/internal/app/commands"
	"staybook/internal/app/dto"
	"staybook/internal/app/middleware"
	"staybook/internal/app/policies"
	domainbooking "staybook/internal/domain/booking"
	domainlistings "staybook/internal/domain/listings"
	"staybook/internal/domain/shared/money"
	domainuser "staybook/internal/domain/user"
	"staybook/internal/infra/storage/memory"
	"staybook/internal/pkg/apperror"
)

var (
	now   = time.Date(2024, 1, 10, 9, 0, 0, 0, time.UTC)
	guest = policies.Actor{ID: "guest-1", Roles: []domainuser.Role{domainuser.RoleGuest}}
	host  = policies.Actor{ID: "host-1", Roles: []domainuser.Role{domainuser.RoleGuest, domainuser.RoleHost}}
	admin = policies.Actor{ID: "admin-1", Roles: []domainuser.Role{domainuser.RoleAdmin}}
)

type fixture struct {
	factory memory.Factory
	outbox  *memory.Outbox
	seq     int
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{factory: memory.NewFactory(), outbox: memory.NewOutbox()}
	f.addListing(t, "prop-1", domainlistings.KindProperty, 100, 4)
	f.addListing(t, "exp-1", domainlistings.KindExperience, 250, 2)
	return f
}

func (f *fixture) addListing(t *testing.T, id string, kind domainlistings.Kind, price int64, maxGuests int) *domainlistings.Listing {
	t.Helper()
	l, err := domainlistings.NewListing(domainlistings.CreateParams{
		ID:        domainlistings.ListingID(id),
		Kind:      kind,
		Host:      host.ID,
		Title:     "Listing " + id,
		Price:     money.Must(price, money.Lira),
		MaxGuests: maxGuests,
		Now:       now.Add(-24 * time.Hour),
	})
	require.NoError(t, err)
	require.NoError(t, f.factory.ListingsRepo.Save(context.Background(), l))
	return l
}

func (f *fixture) ids() string {
	f.seq++
	return fmt.Sprintf("booking-%d", f.seq)
}

func (f *fixture) createHandler() *CreateBookingHandler {
	return &CreateBookingHandler{
		UoWFactory: f.factory,
		Outbox:     f.outbox,
		Clock:      func() time.Time { return now },
		IDs:        f.ids,
	}
}

func stayCommand(actor policies.Actor, guests int) CreateBookingCommand {
	return CreateBookingCommand{
		Actor:      actor,
		Type:       "property",
		PropertyID: "prop-1",
		StartDate:  time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		EndDate:    time.Date(2024, 1, 4, 0, 0, 0, 0, time.UTC),
		Guests:     guests,
	}
}

func (f *fixture) book(t *testing.T) *dto.Booking {
	t.Helper()
	out, err := f.createHandler().Handle(context.Background(), stayCommand(guest, 2))
	require.NoError(t, err)
	return out
}

func TestCreatePropertyBooking(t *testing.T) {
	f := newFixture(t)

	out := f.book(t)

	assert.Equal(t, "booking-1", out.ID)
	assert.Equal(t, dto.MoneyDTO{Amount: 300, Currency: "₺"}, out.TotalPrice)
	assert.Equal(t, "pending", out.Status)
	assert.Equal(t, "pending", out.PaymentStatus)
	assert.False(t, out.HasReview)

	listing, err := f.factory.ListingsRepo.ByID(context.Background(), "prop-1")
	require.NoError(t, err)
	assert.Equal(t, []string{"booking-1"}, listing.BookingIDs)

	require.NoError(t, f.outbox.Flush(context.Background()))
	queued := f.outbox.Queued()
	require.Len(t, queued, 1)
	assert.Equal(t, "booking.created", queued[0].Name)
}

func TestCreateExperienceBookingFlatPrice(t *testing.T) {
	f := newFixture(t)
	out, err := f.createHandler().Handle(context.Background(), CreateBookingCommand{
		Actor:        guest,
		Type:         "experience",
		ExperienceID: "exp-1",
		StartDate:    time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC),
		StartTime:    "10:00",
		EndTime:      "12:00",
		Guests:       2,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(250), out.TotalPrice.Amount)
	require.NotNil(t, out.TimeSlot)
	assert.Equal(t, "10:00", out.TimeSlot.StartTime)
}

func TestCreateBookingRejections(t *testing.T) {
	f := newFixture(t)
	h := f.createHandler()
	ctx := context.Background()

	_, err := h.Handle(ctx, stayCommand(guest, 5))
	require.ErrorIs(t, err, domainbooking.ErrCapacityExceeded)
	assert.Equal(t, "maximum guest count for this listing is 4", err.Error())

	_, err = h.Handle(ctx, stayCommand(guest, 0))
	assert.ErrorIs(t, err, domainbooking.ErrGuestCountInvalid)

	noEnd := stayCommand(guest, 1)
	noEnd.EndDate = time.Time{}
	_, err = h.Handle(ctx, noEnd)
	assert.ErrorIs(t, err, domainbooking.ErrEndDateRequired)

	missing := stayCommand(guest, 1)
	missing.PropertyID = "nope"
	_, err = h.Handle(ctx, missing)
	assert.ErrorIs(t, err, domainlistings.ErrPropertyNotFound)
	assert.ErrorIs(t, err, apperror.ErrNotFound)

	_, err = h.Handle(ctx, CreateBookingCommand{Actor: guest, Type: "experience", ExperienceID: "exp-1", StartDate: now, StartTime: "10:00", Guests: 1})
	assert.ErrorIs(t, err, domainbooking.ErrTimeSlotRequired)

	_, err = h.Handle(ctx, stayCommand(policies.Actor{}, 1))
	assert.ErrorIs(t, err, policies.ErrAuthRequired)

	bookings, _, err := f.factory.BookingsRepo.List(ctx, 0, 0)
	require.NoError(t, err)
	assert.Empty(t, bookings)
}

func TestCreateBookingIdempotentThroughBus(t *testing.T) {
	f := newFixture(t)
	bus := commands.NewInMemoryBus()
	commands.RegisterHandler[CreateBookingCommand, *dto.Booking](bus, CreateBookingCommand{}.Key(), f.createHandler())
	chained := middleware.ChainCommands(bus,
		middleware.Idempotency(memory.NewIdempotencyStore(), nil, time.Hour),
		middleware.Transaction(f.factory, nil),
		middleware.OutboxFlush(f.outbox),
	)

	cmd := stayCommand(guest, 2)
	cmd.IdempotencyKeyV = "retry-1"
	first, err := commands.Dispatch[CreateBookingCommand, *dto.Booking](context.Background(), chained, cmd)
	require.NoError(t, err)
	second, err := commands.Dispatch[CreateBookingCommand, *dto.Booking](context.Background(), chained, cmd)
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	all, total, err := f.factory.BookingsRepo.List(context.Background(), 0, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	assert.Len(t, all, 1)
	assert.Len(t, f.outbox.Queued(), 1)
}

func TestUpdateStatus(t *testing.T) {
	f := newFixture(t)
	booked := f.book(t)
	h := &UpdateStatusHandler{UoWFactory: f.factory, Outbox: f.outbox, Clock: func() time.Time { return now }}
	ctx := context.Background()

	_, err := h.Handle(ctx, UpdateStatusCommand{Actor: guest, BookingID: booked.ID, Status: "confirmed"})
	assert.ErrorIs(t, err, policies.ErrForbidden)

	_, err = h.Handle(ctx, UpdateStatusCommand{Actor: host, BookingID: booked.ID, Status: "cancelled"})
	assert.ErrorIs(t, err, domainbooking.ErrCancelReasonRequired)

	_, err = h.Handle(ctx, UpdateStatusCommand{Actor: host, BookingID: booked.ID, Status: "archived"})
	assert.ErrorIs(t, err, domainbooking.ErrInvalidStatus)

	out, err := h.Handle(ctx, UpdateStatusCommand{Actor: host, BookingID: booked.ID, Status: "cancelled", Reason: "roof leak"})
	require.NoError(t, err)
	assert.Equal(t, "cancelled", out.Status)
	assert.Equal(t, "roof leak", out.CancellationReason)
	require.NotNil(t, out.CancellationDate)
	assert.Equal(t, now, *out.CancellationDate)

	out, err = h.Handle(ctx, UpdateStatusCommand{Actor: admin, BookingID: booked.ID, Status: "completed"})
	require.NoError(t, err)
	assert.Equal(t, "completed", out.Status)
	assert.Empty(t, out.CancellationReason)

	_, err = h.Handle(ctx, UpdateStatusCommand{Actor: admin, BookingID: "missing", Status: "completed"})
	assert.ErrorIs(t, err, domainbooking.ErrNotFound)
}

func TestUpdatePayment(t *testing.T) {
	f := newFixture(t)
	booked := f.book(t)
	h := &UpdatePaymentHandler{UoWFactory: f.factory, Outbox: f.outbox}
	ctx := context.Background()

	_, err := h.Handle(ctx, UpdatePaymentCommand{Actor: host, BookingID: booked.ID, PaymentStatus: "paid"})
	assert.ErrorIs(t, err, policies.ErrAdminOnly)

	out, err := h.Handle(ctx, UpdatePaymentCommand{Actor: admin, BookingID: booked.ID, PaymentStatus: "paid", PaymentMethod: "paypal"})
	require.NoError(t, err)
	assert.Equal(t, "paid", out.PaymentStatus)
	assert.Equal(t, "paypal", out.PaymentMethod)

	out, err = h.Handle(ctx, UpdatePaymentCommand{Actor: admin, BookingID: booked.ID, PaymentStatus: "refunded"})
	require.NoError(t, err)
	assert.Equal(t, "paypal", out.PaymentMethod, "method is kept when not supplied")

	_, err = h.Handle(ctx, UpdatePaymentCommand{Actor: admin, BookingID: booked.ID, PaymentStatus: "paid", PaymentMethod: "cash"})
	assert.ErrorIs(t, err, domainbooking.ErrInvalidPaymentMethod)
}

func TestDeleteBookingDetachesFromListing(t *testing.T) {
	f := newFixture(t)
	booked := f.book(t)
	h := &DeleteBookingHandler{UoWFactory: f.factory, Outbox: f.outbox}
	ctx := context.Background()

	res, err := h.Handle(ctx, DeleteBookingCommand{Actor: admin, BookingID: booked.ID})
	require.NoError(t, err)
	assert.Equal(t, booked.ID, res.BookingID)

	listing, err := f.factory.ListingsRepo.ByID(ctx, "prop-1")
	require.NoError(t, err)
	assert.Empty(t, listing.BookingIDs)

	_, err = h.Handle(ctx, DeleteBookingCommand{Actor: admin, BookingID: booked.ID})
	assert.ErrorIs(t, err, domainbooking.ErrNotFound)
}

func TestBookingQueries(t *testing.T) {
	f := newFixture(t)
	booked := f.book(t)
	f.addListing(t, "other-prop", domainlistings.KindProperty, 50, 2)
	ctx := context.Background()

	page, err := (&ListBookingsHandler{UoWFactory: f.factory, DefaultPageSize: 10}).Handle(ctx, ListBookingsQuery{Actor: admin})
	require.NoError(t, err)
	assert.Equal(t, 1, page.Total)
	assert.Equal(t, 1, page.Pages)
	assert.Equal(t, 1, page.Page)

	_, err = (&ListBookingsHandler{UoWFactory: f.factory}).Handle(ctx, ListBookingsQuery{Actor: guest})
	assert.ErrorIs(t, err, policies.ErrAdminOnly)

	mine, err := (&ListMyBookingsHandler{UoWFactory: f.factory}).Handle(ctx, ListMyBookingsQuery{Actor: guest})
	require.NoError(t, err)
	require.Len(t, mine, 1)

	hosted, err := (&ListHostBookingsHandler{UoWFactory: f.factory}).Handle(ctx, ListHostBookingsQuery{Actor: host})
	require.NoError(t, err)
	require.Len(t, hosted, 1)
	assert.Equal(t, booked.ID, hosted[0].ID)

	none, err := (&ListHostBookingsHandler{UoWFactory: f.factory}).Handle(ctx, ListHostBookingsQuery{Actor: policies.Actor{ID: "host-2", Roles: []domainuser.Role{domainuser.RoleHost}}})
	require.NoError(t, err)
	assert.Empty(t, none)

	get := &GetBookingHandler{UoWFactory: f.factory}
	for _, actor := range []policies.Actor{guest, host, admin} {
		got, err := get.Handle(ctx, GetBookingQuery{Actor: actor, BookingID: booked.ID})
		require.NoError(t, err, actor.ID)
		assert.Equal(t, booked.ID, got.ID)
	}
	_, err = get.Handle(ctx, GetBookingQuery{Actor: policies.Actor{ID: "stranger"}, BookingID: booked.ID})
	assert.ErrorIs(t, err, policies.ErrForbidden)
}
