package booking

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"staybook/internal/domain/listings"
	"staybook/internal/domain/shared/money"
)

var jan1 = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

func listingFixture(t *testing.T, kind listings.Kind, price int64, currency string, maxGuests int) *listings.Listing {
	t.Helper()
	l, err := listings.NewListing(listings.CreateParams{
		ID:        listings.ListingID(string(kind) + "-1"),
		Kind:      kind,
		Host:      "host-1",
		Title:     "fixture",
		Price:     money.Money{Amount: price, Currency: currency},
		MaxGuests: maxGuests,
		Now:       jan1,
	})
	require.NoError(t, err)
	return l
}

func propertyTarget(t *testing.T, start, end time.Time) Target {
	t.Helper()
	target, err := NewTarget(TargetParams{Kind: "property", PropertyID: "property-1", StartDate: start, EndDate: end})
	require.NoError(t, err)
	return target
}

func TestPropertyBookingPricesPerStartedDay(t *testing.T) {
	listing := listingFixture(t, listings.KindProperty, 100, money.Lira, 4)

	b, err := NewBooking(CreateParams{
		ID:      "b-1",
		GuestID: "guest-1",
		Target:  propertyTarget(t, jan1, time.Date(2024, 1, 4, 0, 0, 0, 0, time.UTC)),
		Guests:  2,
		Listing: listing,
		Now:     jan1,
	})
	require.NoError(t, err)

	assert.Equal(t, money.Money{Amount: 300, Currency: money.Lira}, b.Total)
	assert.Equal(t, StatusPending, b.Status)
	assert.Equal(t, PaymentPending, b.PaymentStatus)
	assert.False(t, b.HasReview)
	assert.Nil(t, b.Cancellation)
	assert.Equal(t, listings.KindProperty, b.Kind())
	require.Len(t, b.PendingEvents(), 1)
	assert.Equal(t, "booking.created", b.PendingEvents()[0].EventName())
}

func TestPropertyBookingPartialDayCountsAsFullDay(t *testing.T) {
	listing := listingFixture(t, listings.KindProperty, 250, money.Euro, 2)
	end := jan1.Add(49 * time.Hour)

	b, err := NewBooking(CreateParams{ID: "b-2", GuestID: "g", Target: propertyTarget(t, jan1, end), Guests: 1, Listing: listing, Now: jan1})
	require.NoError(t, err)
	assert.Equal(t, int64(750), b.Total.Amount)
	assert.Equal(t, money.Euro, b.Total.Currency)
}

func TestExperienceBookingIsFlatPrice(t *testing.T) {
	listing := listingFixture(t, listings.KindExperience, 4500, "", 10)
	target, err := NewTarget(TargetParams{
		Kind:         "experience",
		ExperienceID: "experience-1",
		StartDate:    jan1,
		StartTime:    "10:00",
		EndTime:      "13:00",
	})
	require.NoError(t, err)

	for _, guests := range []int{1, 5, 10} {
		b, err := NewBooking(CreateParams{ID: "b", GuestID: "g", Target: target, Guests: guests, Listing: listing, Now: jan1})
		require.NoError(t, err)
		assert.Equal(t, money.Money{Amount: 4500, Currency: money.Lira}, b.Total)
	}
}

func TestNewTargetKindSpecificRequirements(t *testing.T) {
	cases := []struct {
		name   string
		params TargetParams
		want   error
	}{
		{"unknown kind", TargetParams{Kind: "boat", PropertyID: "x", StartDate: jan1}, ErrInvalidKind},
		{"property without id", TargetParams{Kind: "property", StartDate: jan1, EndDate: jan1.AddDate(0, 0, 1)}, ErrPropertyIDRequired},
		{"property without end", TargetParams{Kind: "property", PropertyID: "p", StartDate: jan1}, ErrEndDateRequired},
		{"property without start", TargetParams{Kind: "property", PropertyID: "p", EndDate: jan1}, ErrStartDateRequired},
		{"experience without slot", TargetParams{Kind: "experience", ExperienceID: "e", StartDate: jan1, StartTime: "10:00"}, ErrTimeSlotRequired},
		{"experience without id", TargetParams{Kind: "experience", StartDate: jan1, StartTime: "1", EndTime: "2"}, ErrExperienceIDRequired},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewTarget(tc.params)
			assert.ErrorIs(t, err, tc.want)
		})
	}
}

func TestExperienceTargetDropsPropertyFields(t *testing.T) {
	target, err := NewTarget(TargetParams{
		Kind:         "experience",
		PropertyID:   "ignored",
		ExperienceID: "e-1",
		StartDate:    jan1,
		EndDate:      jan1.AddDate(0, 0, 5),
		StartTime:    "09:00",
		EndTime:      "11:00",
	})
	require.NoError(t, err)
	slot, ok := target.(ExperienceSlot)
	require.True(t, ok)
	assert.Equal(t, listings.ListingID("e-1"), slot.ListingID())
	assert.Equal(t, TimeSlot{StartTime: "09:00", EndTime: "11:00"}, slot.Slot)
}

func TestNewBookingRejectsCapacityOverflow(t *testing.T) {
	listing := listingFixture(t, listings.KindProperty, 100, money.Lira, 3)

	_, err := NewBooking(CreateParams{ID: "b", GuestID: "g", Target: propertyTarget(t, jan1, jan1.AddDate(0, 0, 1)), Guests: 4, Listing: listing, Now: jan1})
	require.ErrorIs(t, err, ErrCapacityExceeded)
	assert.Contains(t, err.Error(), "3")

	_, err = NewBooking(CreateParams{ID: "b", GuestID: "g", Target: propertyTarget(t, jan1, jan1.AddDate(0, 0, 1)), Guests: 0, Listing: listing, Now: jan1})
	assert.ErrorIs(t, err, ErrGuestCountInvalid)
}

func TestNewBookingRejectsMismatchedOrInactiveListing(t *testing.T) {
	experience := listingFixture(t, listings.KindExperience, 100, money.Lira, 3)
	experience.ID = "property-1"

	_, err := NewBooking(CreateParams{ID: "b", GuestID: "g", Target: propertyTarget(t, jan1, jan1.AddDate(0, 0, 1)), Guests: 1, Listing: experience, Now: jan1})
	assert.ErrorIs(t, err, listings.ErrPropertyNotFound)

	property := listingFixture(t, listings.KindProperty, 100, money.Lira, 3)
	property.Deactivate(jan1)
	_, err = NewBooking(CreateParams{ID: "b", GuestID: "g", Target: propertyTarget(t, jan1, jan1.AddDate(0, 0, 1)), Guests: 1, Listing: property, Now: jan1})
	assert.ErrorIs(t, err, listings.ErrNotAcceptingGuests)
}

func newPendingBooking(t *testing.T) *Booking {
	t.Helper()
	listing := listingFixture(t, listings.KindProperty, 100, money.Lira, 3)
	b, err := NewBooking(CreateParams{ID: "b", GuestID: "g", Target: propertyTarget(t, jan1, jan1.AddDate(0, 0, 2)), Guests: 1, Listing: listing, Now: jan1})
	require.NoError(t, err)
	b.PullEvents()
	return b
}

func TestCancelRequiresReasonAndStampsDate(t *testing.T) {
	b := newPendingBooking(t)
	now := time.Date(2024, 2, 2, 15, 4, 5, 0, time.UTC)

	err := b.UpdateStatus(StatusCancelled, "  ", now)
	require.ErrorIs(t, err, ErrCancelReasonRequired)
	assert.Equal(t, StatusPending, b.Status)

	require.NoError(t, b.UpdateStatus(StatusCancelled, "plans changed", now))
	assert.Equal(t, StatusCancelled, b.Status)
	require.NotNil(t, b.Cancellation)
	assert.Equal(t, "plans changed", b.Cancellation.Reason)
	assert.Equal(t, now, b.Cancellation.At)
}

func TestStatusTransitionsAreUnconstrained(t *testing.T) {
	b := newPendingBooking(t)
	now := jan1.AddDate(0, 1, 0)

	require.NoError(t, b.UpdateStatus(StatusCompleted, "", now))
	require.NoError(t, b.UpdateStatus(StatusCancelled, "host unavailable", now))
	require.NoError(t, b.UpdateStatus(StatusConfirmed, "", now))
	assert.Equal(t, StatusConfirmed, b.Status)
	assert.Nil(t, b.Cancellation)
	assert.Len(t, b.PendingEvents(), 3)

	assert.ErrorIs(t, b.UpdateStatus("archived", "", now), ErrInvalidStatus)
}

func TestUpdatePaymentKeepsMethodWhenOmitted(t *testing.T) {
	b := newPendingBooking(t)

	require.NoError(t, b.UpdatePayment(PaymentPaid, MethodPayPal, jan1))
	require.NoError(t, b.UpdatePayment(PaymentRefunded, "", jan1))
	assert.Equal(t, PaymentRefunded, b.PaymentStatus)
	assert.Equal(t, MethodPayPal, b.PaymentMethod)

	assert.ErrorIs(t, b.UpdatePayment("lost", "", jan1), ErrInvalidPaymentStatus)
	assert.ErrorIs(t, b.UpdatePayment(PaymentPaid, "cash", jan1), ErrInvalidPaymentMethod)
}

func TestMarkReviewedOnlyOnce(t *testing.T) {
	b := newPendingBooking(t)

	require.NoError(t, b.MarkReviewed(jan1))
	assert.True(t, b.HasReview)
	assert.ErrorIs(t, b.MarkReviewed(jan1), ErrAlreadyReviewed)
}

func TestParseEnums(t *testing.T) {
	s, err := ParseStatus(" Confirmed ")
	require.NoError(t, err)
	assert.Equal(t, StatusConfirmed, s)

	p, err := ParsePaymentStatus("FAILED")
	require.NoError(t, err)
	assert.Equal(t, PaymentFailed, p)

	m, err := ParsePaymentMethod("bank_transfer")
	require.NoError(t, err)
	assert.Equal(t, MethodBankTransfer, m)
}
